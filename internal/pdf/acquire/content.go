package acquire

import (
	"bytes"
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

const (
	literal = `\(((?:\\.|[^\\)])*)\)`
	hexStr  = `<([0-9A-Fa-f\s]*)>`
	number  = `-?\d*\.?\d+`
)

// kerningGap is the TJ adjustment, in thousandths of an em, treated as a word gap
const kerningGap = -200

var (
	textOpRe = regexp.MustCompile(`(?s)` +
		`(?P<lit>` + literal + `)\s*(?P<litop>Tj|'|")` +
		`|(?P<hex>` + hexStr + `)\s*(?P<hexop>Tj|'|")` +
		`|\[(?P<arr>(?:\\.|[^\]\\])*)\]\s*TJ` +
		`|(?P<tdx>` + number + `)\s+(?P<tdy>` + number + `)\s+T[dD]\b` +
		`|(?:` + number + `\s+){4}(?P<tmx>` + number + `)\s+(?P<tmy>` + number + `)\s+Tm\b` +
		`|(?P<tstar>T\*)` +
		`|\b(?P<et>ET)\b`)

	arrayPartRe = regexp.MustCompile(`(?s)` + literal + `|` + hexStr + `|(` + number + `)`)

	gLit, gLitOp = opGroup("lit"), opGroup("litop")
	gHex, gHexOp = opGroup("hex"), opGroup("hexop")
	gArr         = opGroup("arr")
	gTdY         = opGroup("tdy")
	gTmY         = opGroup("tmy")
	gTStar       = opGroup("tstar")
	gET          = opGroup("et")
)

func opGroup(name string) int {
	return textOpRe.SubexpIndex(name)
}

// textWriter assembles scanned fragments without doubled separators
type textWriter struct {
	b    strings.Builder
	last byte
}

func (w *textWriter) write(s string) {
	if s == "" {
		return
	}
	w.b.WriteString(s)
	w.last = s[len(s)-1]
}

func (w *textWriter) space() {
	if w.b.Len() > 0 && w.last != ' ' && w.last != '\n' {
		w.write(" ")
	}
}

func (w *textWriter) newline() {
	if w.b.Len() > 0 && w.last != '\n' {
		w.write("\n")
	}
}

func (w *textWriter) String() string {
	return w.b.String()
}

// scanContent walks a content stream and appends the text shown by Tj,
// TJ, ' and " in stream order. Td/TD and Tm moves with a vertical
// component and T* start a new line; other moves and ET insert a space.
func scanContent(data []byte, w *textWriter) {
	var lastTmY string
	for _, m := range textOpRe.FindAllSubmatchIndex(data, -1) {
		group := func(i int) []byte {
			if m[2*i] < 0 {
				return nil
			}
			return data[m[2*i]:m[2*i+1]]
		}

		switch {
		case group(gLit) != nil:
			if op := string(group(gLitOp)); op == "'" || op == `"` {
				w.newline()
			}
			lit := group(gLit)
			w.write(decodeText(decodeLiteral(lit[1 : len(lit)-1])))

		case group(gHex) != nil:
			if op := string(group(gHexOp)); op == "'" || op == `"` {
				w.newline()
			}
			hx := group(gHex)
			w.write(decodeText(decodeHex(hx[1 : len(hx)-1])))

		case group(gArr) != nil:
			scanArray(group(gArr), w)

		case group(gTdY) != nil:
			if y, err := strconv.ParseFloat(string(group(gTdY)), 64); err == nil && y != 0 {
				w.newline()
			} else {
				w.space()
			}

		case group(gTmY) != nil:
			y := string(group(gTmY))
			if lastTmY != "" && y != lastTmY {
				w.newline()
			} else {
				w.space()
			}
			lastTmY = y

		case group(gTStar) != nil:
			w.newline()

		case group(gET) != nil:
			w.space()
		}
	}
}

// scanArray handles the operand of TJ: strings interleaved with kerning
func scanArray(arr []byte, w *textWriter) {
	for _, m := range arrayPartRe.FindAllSubmatch(arr, -1) {
		switch {
		case m[1] != nil || bytes.HasPrefix(m[0], []byte("(")):
			w.write(decodeText(decodeLiteral(m[1])))
		case m[2] != nil || bytes.HasPrefix(m[0], []byte("<")):
			w.write(decodeText(decodeHex(m[2])))
		case m[3] != nil:
			if n, err := strconv.ParseFloat(string(m[3]), 64); err == nil && n <= kerningGap {
				w.space()
			}
		}
	}
}

// decodeLiteral resolves the escape sequences of a PDF literal string
func decodeLiteral(raw []byte) []byte {
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			out = append(out, raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		case '\n':
			// line continuation
		case '\r':
			if i+1 < len(raw) && raw[i+1] == '\n' {
				i++
			}
		default:
			if raw[i] >= '0' && raw[i] <= '7' {
				val := int(raw[i] - '0')
				for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				out = append(out, byte(val))
			} else {
				out = append(out, raw[i])
			}
		}
	}
	return out
}

func decodeHex(raw []byte) []byte {
	digits := strings.Join(strings.Fields(string(raw)), "")
	if len(digits)%2 == 1 {
		digits += "0"
	}
	out, err := hex.DecodeString(digits)
	if err != nil {
		return nil
	}
	return out
}

var utf16Decoder = unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)

// decodeText turns string bytes into Go text. UTF-16BE strings carry a
// byte order mark; anything else is passed through and left for the
// normalizer to re-encode.
func decodeText(b []byte) string {
	if len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF {
		if out, err := utf16Decoder.NewDecoder().Bytes(b); err == nil {
			return string(out)
		}
	}
	return string(b)
}
