package items

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	rangeRe         = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(?:-|to)\s*(\d+(?:\.\d+)?)(?:$|[^\d./])`)
	mixedFractionRe = regexp.MustCompile(`^(\d+)(?:\s+|-)(\d+)/(\d+)`)
	fractionRe      = regexp.MustCompile(`^(\d+)/(\d+)`)
	leadingNumberRe = regexp.MustCompile(`^[+-]?(?:\d+(?:\.\d+)?|\.\d+)`)
	leadingIntRe    = regexp.MustCompile(`^\d+`)
)

// DefaultTitle is the placeholder used when a section carries no usable title
func DefaultTitle(ordinal int) string {
	return fmt.Sprintf("Item %d", ordinal)
}

// Extract parses one section into an item. Status is a draft: it is
// needs_review when the title had to be defaulted and extracted otherwise.
// Validate assigns the final status.
func Extract(section Section) Item {
	text := section.Text
	var item Item

	if v, ok := firstMatch(text, titlePatterns); ok {
		item.Title = v
	}
	item = draftTitle(item, section.Ordinal)

	lv, lok := firstMatch(text, lengthPatterns)
	dv, dok := firstMatch(text, depthPatterns)
	hv, hok := firstMatch(text, heightPatterns)
	item.Length = parseDimension(lv)
	item.Depth = parseDimension(dv)
	item.Height = parseHeight(hv)
	if !lok && !dok && !hok {
		if l, d, h, ok := combinedDimensions(text); ok {
			item.Length, item.Depth, item.Height = l, d, h
		}
	}

	if v, ok := firstMatch(text, quantityPatterns); ok {
		item.Quantity = parseQuantity(v)
	}
	if v, ok := firstMatch(text, materialPatterns); ok {
		item.PrimaryMaterial = cleanMaterial(v)
	}
	if v, ok := firstMatch(text, finishPatterns); ok {
		item.Finishes = cleanValue(v)
	}
	if v, ok := firstMatch(text, notesPatterns); ok {
		item.ConstructionNotes = cleanNotes(v)
	}

	return item
}

// combinedDimensions finds the first "L x D x H" triple that is not the
// value of a dimension label.
func combinedDimensions(text string) (float64, float64, float64, bool) {
	for _, m := range dimensionTripleRe.FindAllStringSubmatchIndex(text, -1) {
		if dimensionLabelTailRe.MatchString(text[:m[0]]) {
			continue
		}
		return parseDimension(text[m[2]:m[3]]),
			parseDimension(text[m[4]:m[5]]),
			parseDimension(text[m[6]:m[7]]),
			true
	}
	return 0, 0, 0, false
}

// parseDimension coerces a captured value to a non-negative float. It reads
// the leading number only and understands "24 1/2", "24-1/2" and "3/4".
func parseDimension(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	var v float64
	switch {
	case mixedFractionRe.MatchString(s):
		m := mixedFractionRe.FindStringSubmatch(s)
		v = atof(m[1]) + ratio(m[2], m[3])
	case fractionRe.MatchString(s):
		m := fractionRe.FindStringSubmatch(s)
		v = ratio(m[1], m[2])
	default:
		v = atof(leadingNumberRe.FindString(s))
	}

	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// parseHeight is parseDimension plus ranges: "28.5 - 48.0" yields 28.5
func parseHeight(s string) float64 {
	s = strings.TrimSpace(s)
	if m := rangeRe.FindStringSubmatch(s); m != nil {
		return math.Min(atof(m[1]), atof(m[2]))
	}
	return parseDimension(s)
}

func parseQuantity(s string) int {
	n, err := strconv.Atoi(leadingIntRe.FindString(strings.TrimSpace(s)))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func atof(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func ratio(num, den string) float64 {
	d := atof(den)
	if d == 0 {
		return 0
	}
	return atof(num) / d
}

// cleanTitle strips stray punctuation and splits merged words
func cleanTitle(s string) string {
	s = cleanValue(s)
	s = camelBoundaryRe.ReplaceAllString(s, "$1 $2")
	return strings.Trim(s, " .-_")
}

func cleanMaterial(s string) string {
	return cleanValue(nonMaterialCharRe.ReplaceAllString(s, ""))
}
