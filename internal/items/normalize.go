package items

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultFragmentationThreshold is the share of single-character tokens
	// above which text is treated as character-fragmented.
	DefaultFragmentationThreshold = 0.3

	// maxNormalizePasses bounds the fixed-point loop in NormalizeWith
	maxNormalizePasses = 8
)

// NormalizeOptions tunes the normalizer heuristics
type NormalizeOptions struct {
	FragmentationThreshold float64
}

// DefaultNormalizeOptions returns the stock normalizer settings
func DefaultNormalizeOptions() NormalizeOptions {
	return NormalizeOptions{FragmentationThreshold: DefaultFragmentationThreshold}
}

// Normalize cleans extracted document text with the default options
func Normalize(text string) string {
	return NormalizeWith(text, DefaultNormalizeOptions())
}

// NormalizeWith cleans extracted text: it strips control characters,
// folds the text to printable ASCII, repairs character fragmentation when
// detected and collapses whitespace. The single pass is repeated until it
// no longer changes the text, so Normalize(Normalize(x)) == Normalize(x).
func NormalizeWith(text string, opts NormalizeOptions) string {
	if opts.FragmentationThreshold <= 0 {
		opts.FragmentationThreshold = DefaultFragmentationThreshold
	}

	out := normalizePass(text, opts)
	for i := 1; i < maxNormalizePasses; i++ {
		next := normalizePass(out, opts)
		if next == out {
			break
		}
		out = next
	}
	return out
}

func normalizePass(text string, opts NormalizeOptions) string {
	text = sanitize(text)
	if IsFragmented(text, opts.FragmentationThreshold) {
		text = repairFragmentation(text)
	}
	text = collapseWhitespace(text)
	return strings.TrimSpace(text)
}

// FragmentationRatio returns single-character word tokens / all word tokens.
// A word token is a whitespace-delimited token holding a letter or digit.
func FragmentationRatio(text string) float64 {
	total, single := 0, 0
	for _, tok := range strings.Fields(text) {
		if strings.IndexFunc(tok, isWordRune) < 0 {
			continue
		}
		total++
		if utf8.RuneCountInString(tok) == 1 {
			single++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(single) / float64(total)
}

// IsFragmented reports whether text looks character-fragmented
func IsFragmented(text string, threshold float64) bool {
	return FragmentationRatio(text) > threshold
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// typographic maps characters PDF producers emit in place of ASCII.
// Vulgar fractions are expanded before accent folding would mangle them.
var typographic = strings.NewReplacer(
	"\u00d7", "x", // multiplication sign
	"\u2010", "-",
	"\u2011", "-",
	"\u2013", "-",
	"\u2014", "-",
	"\u2212", "-",
	"\u2018", "'",
	"\u2019", "'",
	"\u2032", "'",
	"\u201c", `"`,
	"\u201d", `"`,
	"\u2033", `"`,
	"\u00a0", " ",
	"\u2022", "-",
	"\u2026", "...",
	"\u2044", "/",
	"\u00bd", " 1/2",
	"\u00bc", " 1/4",
	"\u00be", " 3/4",
	"\f", "\n",
	"\r\n", "\n",
	"\r", "\n",
)

// foldAccents builds a fresh transformer per call: transform chains carry
// state and must not be shared between goroutines.
func foldAccents() transform.Transformer {
	return transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// sanitize re-encodes text to printable ASCII plus newline and tab
func sanitize(text string) string {
	if !utf8.ValidString(text) {
		decoded, err := charmap.Windows1252.NewDecoder().String(text)
		if err != nil {
			decoded = strings.ToValidUTF8(text, "")
		}
		text = decoded
	}

	text = typographic.Replace(text)
	if folded, _, err := transform.String(foldAccents(), text); err == nil {
		text = folded
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == '\n' || r == '\t' || (r >= 0x20 && r < 0x7f) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// labelRule rebuilds a field label whose characters were split apart
type labelRule struct {
	re      *regexp.Regexp
	replace func(match string) string
}

// fragmentedLabels lists the labels rebuilt during repair, longest form
// first so "Length (in)" wins over "Length".
var fragmentedLabels = []string{
	"Product Name",
	"Length (in)",
	"Depth (in)",
	"Height (in)",
	"Length",
	"Depth",
	"Height",
	"Quantity",
	"Qty",
	"Primary Material",
	"Material",
	"Finishes",
	"Finish",
	"Construction Notes",
}

var (
	labelRules = buildLabelRules()

	digitsRe          = regexp.MustCompile(`\d`)
	canonicalLabelRe  = buildCanonicalLabelRe()
	letterDigitRe     = regexp.MustCompile(`([A-Za-z])([0-9])`)
	digitLetterRe     = regexp.MustCompile(`([0-9])([A-Za-z])`)
	colonSpacingRe    = regexp.MustCompile(`[ \t]*:[ \t]*`)
	camelBoundaryRe   = regexp.MustCompile(`([a-z])([A-Z])`)
	tabRunRe          = regexp.MustCompile(` *\t[ \t]*`)
	spaceRunRe        = regexp.MustCompile(` {2,}`)
	newlinePaddingRe  = regexp.MustCompile(`[ \t]*\n[ \t]*`)
	excessNewlinesRe  = regexp.MustCompile(`\n{3,}`)
	whitespaceRunRe   = regexp.MustCompile(`\s+`)
	nonCleanCharsRe   = regexp.MustCompile(`[^A-Za-z0-9 _.\-]`)
	nonNotesCharsRe   = regexp.MustCompile(`[^A-Za-z0-9 _.\-,!?()]`)
	nonMaterialCharRe = regexp.MustCompile(`[^\w\s.\-]`)
)

// spacedPattern turns "Product Name" into P\s*r\s*o...e, tolerating any
// whitespace between characters.
func spacedPattern(label string) string {
	var parts []string
	for _, r := range label {
		if unicode.IsSpace(r) {
			continue
		}
		parts = append(parts, regexp.QuoteMeta(string(r)))
	}
	return strings.Join(parts, `\s*`)
}

func buildLabelRules() []labelRule {
	rules := []labelRule{
		markerRule("Item"),
		markerRule("Line"),
	}
	for _, label := range fragmentedLabels {
		canonical := " " + label + ": "
		rules = append(rules, labelRule{
			re:      regexp.MustCompile(`(?i)` + spacedPattern(label) + `\s*:`),
			replace: func(string) string { return canonical },
		})
	}
	return rules
}

// markerRule rebuilds "I t e m 1 2 :" as "Item 12:"
func markerRule(word string) labelRule {
	return labelRule{
		re: regexp.MustCompile(`(?i)\b` + spacedPattern(word) + `\s*#?\s*((?:\d\s*)+):`),
		replace: func(match string) string {
			return " " + word + " " + strings.Join(digitsRe.FindAllString(match, -1), "") + ": "
		},
	}
}

func buildCanonicalLabelRe() *regexp.Regexp {
	alts := []string{`Item \d+`, `Line \d+`}
	for _, label := range fragmentedLabels {
		alts = append(alts, regexp.QuoteMeta(label))
	}
	return regexp.MustCompile(`^[ \t]*(?:` + strings.Join(alts, "|") + `)[ \t]*:`)
}

// repairFragmentation undoes character-level splitting, in order:
// labels, newline joins, intra-word spaces, letter/digit spacing,
// colon spacing, then merged-word splitting.
func repairFragmentation(text string) string {
	for _, rule := range labelRules {
		text = rule.re.ReplaceAllStringFunc(text, rule.replace)
	}
	text = joinBrokenLines(text)
	text = joinSpacedCharacters(text)
	text = letterDigitRe.ReplaceAllString(text, "$1 $2")
	text = digitLetterRe.ReplaceAllString(text, "$1 $2")
	text = colonSpacingRe.ReplaceAllString(text, ": ")
	text = camelBoundaryRe.ReplaceAllString(text, "$1 $2")
	return text
}

// joinBrokenLines drops newlines sitting between two alphanumerics unless
// the next line opens with a field label.
func joinBrokenLines(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '\n' && i > 0 && i+1 < len(text) &&
			isAlnum(text[i-1]) && isAlnum(text[i+1]) &&
			!canonicalLabelRe.MatchString(text[i+1:]) {
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// joinSpacedCharacters removes lone spaces or tabs between alphanumerics.
// Runs of two or more whitespace characters mark word gaps and survive.
func joinSpacedCharacters(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if (c == ' ' || c == '\t') && i > 0 && i+1 < len(text) &&
			isAlnum(text[i-1]) && isAlnum(text[i+1]) {
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// collapseWhitespace squeezes space runs, keeps one tab per tab run (tables
// rely on it), strips padding around newlines and caps blank lines at one.
func collapseWhitespace(text string) string {
	text = tabRunRe.ReplaceAllString(text, "\t")
	text = spaceRunRe.ReplaceAllString(text, " ")
	text = newlinePaddingRe.ReplaceAllString(text, "\n")
	text = excessNewlinesRe.ReplaceAllString(text, "\n\n")
	return text
}

// cleanValue is the shared cleanup for captured field strings
func cleanValue(s string) string {
	s = nonCleanCharsRe.ReplaceAllString(collapse(s), "")
	return collapse(s)
}

// cleanNotes keeps the sentence punctuation construction notes rely on
func cleanNotes(s string) string {
	s = nonNotesCharsRe.ReplaceAllString(collapse(s), "")
	return collapse(s)
}

// collapse trims and squeezes all whitespace to single spaces
func collapse(s string) string {
	return strings.TrimSpace(whitespaceRunRe.ReplaceAllString(s, " "))
}
