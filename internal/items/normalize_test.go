package items

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const scenarioA = "Item 1: Product Name: Oak Table Length (in): 24 Depth (in): 30 Height (in): 28 " +
	"Quantity: 2 Primary Material: Oak Finishes: Matte Construction Notes: Reinforced legs"

// fragment splits every word into characters joined by sep and separates
// words by a wider gap, the way broken PDF text layers come out.
func fragment(s, sep string) string {
	return fragmentWith(s, sep, "   ")
}

// fragmentWith is fragment with an explicit word gap. A gap equal to sep
// loses the word boundaries entirely.
func fragmentWith(s, sep, gap string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.Join(strings.Split(w, ""), sep)
	}
	return strings.Join(words, gap)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain text untouched", scenarioA, scenarioA},
		{"control characters stripped", "abc\x00def\x07", "abcdef"},
		{"crlf unified", "first line\r\nsecond line\rthird line", "first line\nsecond line\nthird line"},
		{"tab runs kept as one tab", "Product \t  Quantity", "Product\tQuantity"},
		{"space runs collapsed", "Oak    Table", "Oak Table"},
		{"newlines capped at two", "Oak Table\n\n\n\nPine Bench", "Oak Table\n\nPine Bench"},
		{"spaces around newlines dropped", "Oak Table  \n   Pine Bench", "Oak Table\nPine Bench"},
		{"multiplication sign", "Size 24×30×28 inches", "Size 24x30x28 inches"},
		{"accents folded", "Café crème finish", "Cafe creme finish"},
		{"windows-1252 bytes", "\x93Walnut\x94 veneer", `"Walnut" veneer`},
		{"latin-1 accent byte", "caf\xe9 table", "cafe table"},
		{"trimmed", "  \n Oak Table \n ", "Oak Table"},
		{"fragmented scenario", fragment(scenarioA, " "), scenarioA},
		{"fragmented by newlines", fragment(scenarioA, "\n"), scenarioA},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		scenarioA,
		fragment(scenarioA, " "),
		fragment(scenarioA, "\n"),
		"O f f i c e C h a i r   Q t y :   4",
		"Line 1 - Oak Table - 24 x 30 x 28 - Qty 2 - Oak - Matte",
		"| Product | Qty |\n|---|---|\n| Oak Table | 2 |",
		"a b c d e f g 1 2 3 x y z",
		"\x93smart\x94 – dash nbsp ½ inch",
		"Item 1:\n\n\n\nProduct Name:\tOak\r\nLength: 24",
		"l e n g t h : 2 4 i n x 3 0",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestFragmentationRatio(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{"empty", "", 0},
		{"no single tokens", "Oak Table", 0},
		{"all single", "O a k", 1},
		{"mixed", "a b c dd", 0.75},
		{"punctuation-only tokens ignored", "Oak | Table | x", 1.0 / 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, FragmentationRatio(tt.input), 1e-9)
		})
	}
}

func TestNormalizeWith_Threshold(t *testing.T) {
	in := "Oak T a b l e"

	// 5 of 6 tokens are single characters
	assert.Equal(t, "Oak Table", NormalizeWith(in, NormalizeOptions{FragmentationThreshold: 0.3}))
	assert.Equal(t, in, NormalizeWith(in, NormalizeOptions{FragmentationThreshold: 0.9}))
}

func TestCleanHelpers(t *testing.T) {
	assert.Equal(t, "Oak Table", cleanValue("  Oak*   Table# "))
	assert.Equal(t, "Glue, then clamp (24h)!", cleanNotes("Glue,  then clamp (24h)! ~"))
	assert.Equal(t, "a b", collapse(" a \n\t b "))
}
