package acquire

import (
	"bytes"
	"compress/zlib"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rfqContent = "BT /F1 12 Tf 72 720 Td (Item 1: Product Name: Oak Table) Tj\n" +
	"0 -14 Td (Length \\(in\\): 24 Depth \\(in\\): 30 Height \\(in\\): 28) Tj\n" +
	"0 -14 Td [(Quantity: 2 Primary) -300 (Material: Oak)] TJ\n" +
	"(Finishes: Matte) '\n" +
	"ET"

// buildPDF writes a one-page PDF whose page content is content
func buildPDF(t *testing.T, content string, compress bool) []byte {
	t.Helper()

	stream, filter := []byte(content), ""
	if compress {
		var zb bytes.Buffer
		zw := zlib.NewWriter(&zb)
		_, err := zw.Write([]byte(content))
		require.NoError(t, err)
		require.NoError(t, zw.Close())
		stream, filter = zb.Bytes(), " /Filter /FlateDecode"
	}

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d%s >>\nstream\n%s\nendstream", len(stream), filter, stream),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestStructural_Extract(t *testing.T) {
	for _, compress := range []bool{false, true} {
		t.Run(fmt.Sprintf("compressed=%v", compress), func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "rfq.pdf", buildPDF(t, rfqContent, compress))

			text, err := (&Structural{}).Extract(context.Background(), path)
			require.NoError(t, err)
			assert.Contains(t, text, "Item 1: Product Name: Oak Table")
			assert.Contains(t, text, "Length (in): 24 Depth (in): 30 Height (in): 28")
			assert.Contains(t, text, "Quantity: 2 Primary Material: Oak")
			assert.Contains(t, text, "\nFinishes: Matte")
		})
	}
}

func TestStructural_GarbageInput(t *testing.T) {
	path := writeFile(t, t.TempDir(), "junk.pdf", []byte("definitely not a pdf"))

	text, err := (&Structural{}).Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(text))
}

func TestStructural_MissingFile(t *testing.T) {
	_, err := (&Structural{}).Extract(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))

	var be *BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "structural", be.Backend)
	assert.Equal(t, "read", be.Op)
}

func TestRawStreams(t *testing.T) {
	data := buildPDF(t, "BT (Hello) Tj ET", true)

	streams := rawStreams(data)
	require.Len(t, streams, 1)
	assert.Equal(t, "BT (Hello) Tj ET", string(streams[0]))
}

func TestScanContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"lines from Td", "BT 72 700 Td (Hello) Tj 0 -14 Td (World) Tj ET", "Hello\nWorld"},
		{"horizontal Td is a space", "BT (Oak) Tj 40 0 Td (Table) Tj ET", "Oak Table"},
		{"T star", "BT (Oak) Tj T* (Table) Tj ET", "Oak\nTable"},
		{"TJ kerning gap", "BT [(Oak) -250 (Table)] TJ ET", "Oak Table"},
		{"TJ small kerning", "BT [(Ta) 20 (ble)] TJ ET", "Table"},
		{"quote operator", "BT (First) Tj (Second) ' ET", "First\nSecond"},
		{"double quote operator", "BT (First) Tj 2 0 (Second) \" ET", "First\nSecond"},
		{"escaped parentheses", `BT (Length \(in\): 24) Tj ET`, "Length (in): 24"},
		{"octal escape", `BT (caf\351) Tj ET`, "caf\xe9"},
		{"hex string", "BT <48656C6C6F> Tj ET", "Hello"},
		{"utf16 hex string", "BT <FEFF004F0061006B> Tj ET", "Oak"},
		{"Tm rows", "BT 1 0 0 1 72 700 Tm (A1) Tj 1 0 0 1 200 700 Tm (B1) Tj 1 0 0 1 72 680 Tm (C1) Tj ET", "A1 B1\nC1"},
		{"no text", "q 1 0 0 1 0 0 cm Q", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w textWriter
			scanContent([]byte(tt.content), &w)
			assert.Equal(t, tt.want, strings.TrimSpace(w.String()))
		})
	}
}

func TestDecodeLiteral(t *testing.T) {
	assert.Equal(t, "a\nb", string(decodeLiteral([]byte(`a\nb`))))
	assert.Equal(t, "ab", string(decodeLiteral([]byte("a\\\nb"))))
	assert.Equal(t, " ", string(decodeLiteral([]byte(`\040`))))
	assert.Equal(t, `\`, string(decodeLiteral([]byte(`\\`))))
}
