package items

import (
	"regexp"
	"strings"
)

const (
	// DefaultMinMarkerSectionLength is the collapsed length a marker
	// section must exceed to be accepted.
	DefaultMinMarkerSectionLength = 20

	// DefaultMinSectionLength applies to separator and blank-line sections
	DefaultMinSectionLength = 50
)

// SegmentOptions tunes the segmenter acceptance rules
type SegmentOptions struct {
	MinMarkerSectionLength int
	MinSectionLength       int
}

// DefaultSegmentOptions returns the stock acceptance thresholds
func DefaultSegmentOptions() SegmentOptions {
	return SegmentOptions{
		MinMarkerSectionLength: DefaultMinMarkerSectionLength,
		MinSectionLength:       DefaultMinSectionLength,
	}
}

var (
	// markerFamilies are tried in order; families are never mixed
	markerFamilies = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bitem\s*#?\s*\d+\s*:`),
		regexp.MustCompile(`(?i)\bline\s*#?\s*\d+\s*:`),
	}

	terminalRe     = regexp.MustCompile(`(?im)^[ \t]*(?:grand\s+total|subtotal|total)\s*[:$]`)
	separatorRe    = regexp.MustCompile(`={10,}|-{10,}`)
	blankLineRe    = regexp.MustCompile(`\n[ \t]*\n`)
	fieldKeywordRe = regexp.MustCompile(`(?i)\b(?:length|depth|height|materials?|quantity|qty|construction\s+notes)\b`)
)

// Segment splits normalized text with the default options
func Segment(text string) Segmentation {
	return SegmentWith(text, DefaultSegmentOptions())
}

// SegmentWith tries each strategy in priority order and returns the first
// one that yields at least one accepted section or item:
// markers, table, invoice lines, numbered list, separator lines, blank
// lines and finally the whole text as a single section.
func SegmentWith(text string, opts SegmentOptions) Segmentation {
	if opts.MinMarkerSectionLength <= 0 {
		opts.MinMarkerSectionLength = DefaultMinMarkerSectionLength
	}
	if opts.MinSectionLength <= 0 {
		opts.MinSectionLength = DefaultMinSectionLength
	}

	if sections := markerSections(text, opts.MinMarkerSectionLength); len(sections) > 0 {
		return Segmentation{Strategy: StrategyMarkers, Sections: sections}
	}

	for _, parser := range formatParsers {
		if parsed := parser.parse(text); len(parsed) > 0 {
			return Segmentation{Strategy: parser.strategy, Items: parsed}
		}
	}

	if sections := splitSections(text, separatorRe, opts.MinSectionLength); len(sections) > 0 {
		return Segmentation{Strategy: StrategySeparatorLine, Sections: sections}
	}
	if sections := splitSections(text, blankLineRe, opts.MinSectionLength); len(sections) > 0 {
		return Segmentation{Strategy: StrategyBlankLines, Sections: sections}
	}

	if strings.TrimSpace(text) == "" {
		return Segmentation{Strategy: StrategyNone}
	}
	return Segmentation{
		Strategy: StrategyFallback,
		Sections: []Section{{Text: strings.TrimSpace(text), Ordinal: 1}},
	}
}

// markerSections returns the sections of the first marker family with at
// least one accepted section. A section excludes its own marker and ends at
// the next marker, a terminal total line or the end of the text. Ordinals
// count accepted sections only, so they run 1..n in document order
// regardless of the numbers printed in the markers.
func markerSections(text string, minLen int) []Section {
	for _, family := range markerFamilies {
		locs := family.FindAllStringIndex(text, -1)
		if len(locs) == 0 {
			continue
		}

		var sections []Section
		for i, loc := range locs {
			end := len(text)
			if i+1 < len(locs) {
				end = locs[i+1][0]
			}
			body := text[loc[1]:end]
			if t := terminalRe.FindStringIndex(body); t != nil {
				body = body[:t[0]]
			}
			body = strings.TrimSpace(body)
			if len(collapse(body)) <= minLen {
				continue
			}
			sections = append(sections, Section{Text: body, Ordinal: len(sections) + 1})
		}
		if len(sections) > 0 {
			return sections
		}
	}
	return nil
}

// splitSections splits on sep and keeps parts that mention a field keyword
// and exceed minLen. Text that sep does not actually split yields nothing.
func splitSections(text string, sep *regexp.Regexp, minLen int) []Section {
	parts := sep.Split(text, -1)
	if len(parts) < 2 {
		return nil
	}

	var sections []Section
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if len(collapse(part)) <= minLen || !fieldKeywordRe.MatchString(part) {
			continue
		}
		sections = append(sections, Section{Text: part, Ordinal: len(sections) + 1})
	}
	return sections
}
