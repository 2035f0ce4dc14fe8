package items

import (
	"regexp"
	"strings"
)

// stopRule decides where a label-anchored capture ends
type stopRule int

const (
	// stopAtLabel ends the value at the next recognized field label
	stopAtLabel stopRule = iota
	// stopAtLabelOrEOL additionally ends the value at the end of the line
	stopAtLabelOrEOL
	// stopAtMarker ends the value only at the next item/line marker
	stopAtMarker
)

// fieldPattern is one entry of a per-field cascade. Cascades are tried in
// order and the first pattern yielding an accepted value wins.
type fieldPattern struct {
	name   string
	label  *regexp.Regexp
	stop   stopRule
	post   func(string) string
	accept func(string) bool
}

const inchesSuffix = `(?:\s*\(\s*in(?:ches|\.)?\s*\))?`

var (
	// fieldLabelRe matches any recognized label, used as a capture terminator
	fieldLabelRe = regexp.MustCompile(`(?i)\b(?:product\s+name|product|item\s+name|description|` +
		`length` + inchesSuffix + `|width` + inchesSuffix + `|depth` + inchesSuffix + `|height` + inchesSuffix + `|` +
		`quantity|qty|primary\s+material|materials?|finish(?:es)?|construction\s+notes|notes)\s*:` +
		`|\b(?:item|line)\s*#?\s*\d+\s*:` +
		`|={10,}|-{10,}`)

	// itemBoundaryRe ends free-text captures such as construction notes
	itemBoundaryRe = regexp.MustCompile(`(?i)\b(?:item|line)\s*#?\s*\d+\s*:|={10,}|-{10,}`)

	// dimensionTripleRe matches a combined "24 x 30 x 28" token
	dimensionTripleRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*"?\s*[xX×]\s*(\d+(?:\.\d+)?)\s*"?\s*[xX×]\s*(\d+(?:\.\d+)?)`)

	// dimensionLabelTailRe detects a triple sitting directly after a dimension label
	dimensionLabelTailRe = regexp.MustCompile(`(?i)\b(?:length|width|depth|height)` + inchesSuffix + `\s*:?\s*$`)
)

func labelRe(expr string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + expr + `\s*:`)
}

var titlePatterns = []fieldPattern{
	{name: "product_name", label: labelRe(`product\s+name`), stop: stopAtLabel, accept: usableTitle},
	{name: "product", label: labelRe(`product`), stop: stopAtLabel, accept: usableTitle},
	{name: "item_name", label: labelRe(`item\s+name`), stop: stopAtLabel, accept: usableTitle},
	{name: "description", label: labelRe(`description`), stop: stopAtLabelOrEOL, accept: usableTitle},
}

var lengthPatterns = []fieldPattern{
	{name: "length_in", label: labelRe(`length\s*\(\s*in(?:ches|\.)?\s*\)`), stop: stopAtLabelOrEOL},
	{name: "length", label: labelRe(`length`), stop: stopAtLabelOrEOL},
	{name: "width", label: labelRe(`width` + inchesSuffix), stop: stopAtLabelOrEOL},
}

var depthPatterns = []fieldPattern{
	{name: "depth_in", label: labelRe(`depth\s*\(\s*in(?:ches|\.)?\s*\)`), stop: stopAtLabelOrEOL},
	{name: "depth", label: labelRe(`depth`), stop: stopAtLabelOrEOL},
}

var heightPatterns = []fieldPattern{
	{name: "height_in", label: labelRe(`height\s*\(\s*in(?:ches|\.)?\s*\)`), stop: stopAtLabelOrEOL},
	{name: "height", label: labelRe(`height`), stop: stopAtLabelOrEOL},
}

var quantityPatterns = []fieldPattern{
	{name: "quantity", label: labelRe(`quantity`), stop: stopAtLabel},
	{name: "qty", label: labelRe(`qty`), stop: stopAtLabel},
	{name: "qty_bare", label: regexp.MustCompile(`(?i)\b(?:qty|quantity)\.?\s+`), stop: stopAtLabelOrEOL},
}

var materialPatterns = []fieldPattern{
	{name: "primary_material", label: labelRe(`primary\s+material`), stop: stopAtLabel},
	{name: "material", label: labelRe(`materials?`), stop: stopAtLabel, post: firstCommaToken},
}

var finishPatterns = []fieldPattern{
	{name: "finishes", label: labelRe(`finish(?:es)?`), stop: stopAtLabel},
}

var notesPatterns = []fieldPattern{
	{name: "construction_notes", label: labelRe(`construction\s+notes`), stop: stopAtMarker},
	{name: "notes", label: labelRe(`notes`), stop: stopAtMarker},
}

// capture returns the raw text following the first label match, cut at the
// pattern's stop rule. ok is false when the label is absent or the value
// is empty or rejected.
func (p fieldPattern) capture(text string) (string, bool) {
	loc := p.label.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	rest := text[loc[1]:]

	end := len(rest)
	terminator := fieldLabelRe
	if p.stop == stopAtMarker {
		terminator = itemBoundaryRe
	}
	if m := terminator.FindStringIndex(rest); m != nil {
		end = m[0]
	}
	if p.stop == stopAtLabelOrEOL {
		if nl := strings.IndexByte(rest[:end], '\n'); nl >= 0 {
			end = nl
		}
	}

	value := rest[:end]
	if p.post != nil {
		value = p.post(value)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	if p.accept != nil && !p.accept(value) {
		return "", false
	}
	return value, true
}

// firstMatch runs a cascade and returns the first accepted value
func firstMatch(text string, cascade []fieldPattern) (string, bool) {
	for _, p := range cascade {
		if v, ok := p.capture(text); ok {
			return v, true
		}
	}
	return "", false
}

func firstCommaToken(s string) string {
	if i := strings.IndexByte(s, ','); i >= 0 {
		return s[:i]
	}
	return s
}

func usableTitle(s string) bool {
	return len(cleanTitle(s)) > 2
}
