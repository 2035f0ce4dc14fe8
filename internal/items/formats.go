package items

import (
	"regexp"
	"strings"
)

// formatParser turns a whole document of a known layout into items
type formatParser struct {
	strategy Strategy
	parse    func(text string) []Item
}

var formatParsers = []formatParser{
	{StrategyTable, parseTable},
	{StrategyInvoiceLines, parseInvoiceLines},
	{StrategyNumberedList, parseNumberedList},
}

var (
	invoiceLineRe  = regexp.MustCompile(`(?im)^[ \t]*line[ \t]*#?[ \t]*\d+[ \t]*-[ \t]+(.+)$`)
	invoiceSplitRe = regexp.MustCompile(`\s+-\s+`)
	numberedLineRe = regexp.MustCompile(`(?m)^[ \t]*\d+[.)][ \t]+(.+)$`)
	qtySegmentRe   = regexp.MustCompile(`(?i)^(?:qty|quantity)\.?\s*:?\s*(\d+)$|^(\d+)\s*(?:pcs|pieces|units|ea|each)\.?$`)
	ruleRowRe      = regexp.MustCompile(`^[\s:\-=+|]*$`)
)

type column int

const (
	colIgnore column = iota
	colTitle
	colLength
	colDepth
	colHeight
	colDimensions
	colQuantity
	colMaterial
	colFinishes
	colNotes
)

// headerKeywords is checked in order; the first keyword contained in a
// lowercased header cell decides the column.
var headerKeywords = []struct {
	keyword string
	col     column
}{
	{"note", colNotes},
	{"finish", colFinishes},
	{"material", colMaterial},
	{"qty", colQuantity},
	{"quantity", colQuantity},
	{"dimension", colDimensions},
	{"size", colDimensions},
	{"length", colLength},
	{"width", colLength},
	{"depth", colDepth},
	{"height", colHeight},
	{"product", colTitle},
	{"description", colTitle},
	{"name", colTitle},
	{"title", colTitle},
	{"item", colTitle},
}

func classifyHeader(cell string) column {
	cell = strings.ToLower(cell)
	for _, hk := range headerKeywords {
		if strings.Contains(cell, hk.keyword) {
			return hk.col
		}
	}
	return colIgnore
}

func splitRow(line, delim string) []string {
	if delim == "|" {
		line = strings.TrimSpace(line)
		line = strings.TrimSuffix(strings.TrimPrefix(line, "|"), "|")
	} else {
		// leading tabs are empty cells
		line = strings.Trim(line, " \r\n")
	}
	cells := strings.Split(line, delim)
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells
}

// tableHeader recognizes a header row: at least three known columns, one
// of which is a title or a dimension.
func tableHeader(line string) ([]column, string, bool) {
	for _, delim := range []string{"|", "\t"} {
		if !strings.Contains(line, delim) {
			continue
		}
		cols := make([]column, 0, 8)
		known, anchor := 0, false
		for _, cell := range splitRow(line, delim) {
			c := classifyHeader(cell)
			cols = append(cols, c)
			if c == colIgnore {
				continue
			}
			known++
			if c == colTitle || c == colLength || c == colDimensions {
				anchor = true
			}
		}
		if known >= 3 && anchor {
			return cols, delim, true
		}
	}
	return nil, "", false
}

// parseTable reads the first pipe or tab delimited table with a header
func parseTable(text string) []Item {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		cols, delim, ok := tableHeader(line)
		if !ok {
			continue
		}

		var out []Item
		for _, row := range lines[i+1:] {
			if !strings.Contains(row, delim) {
				if len(out) > 0 {
					break
				}
				continue
			}
			if ruleRowRe.MatchString(row) {
				continue
			}
			if it, ok := tableRowItem(cols, splitRow(row, delim)); ok {
				out = append(out, draftTitle(it, len(out)+1))
			}
		}
		return out
	}
	return nil
}

func tableRowItem(cols []column, cells []string) (Item, bool) {
	var it Item
	filled := false
	for i, cell := range cells {
		if i >= len(cols) || cell == "" {
			continue
		}
		switch cols[i] {
		case colTitle:
			if it.Title == "" {
				it.Title = cell
			}
		case colLength:
			it.Length = parseDimension(cell)
		case colDepth:
			it.Depth = parseDimension(cell)
		case colHeight:
			it.Height = parseHeight(cell)
		case colDimensions:
			if m := dimensionTripleRe.FindStringSubmatch(cell); m != nil {
				it.Length, it.Depth, it.Height = parseDimension(m[1]), parseDimension(m[2]), parseDimension(m[3])
			}
		case colQuantity:
			it.Quantity = parseQuantity(cell)
		case colMaterial:
			it.PrimaryMaterial = cleanMaterial(cell)
		case colFinishes:
			it.Finishes = cleanValue(cell)
		case colNotes:
			it.ConstructionNotes = cleanNotes(cell)
		default:
			continue
		}
		filled = true
	}
	return it, filled
}

// parseInvoiceLines reads "Line 3 - Oak Table - 24 x 30 x 28 - Qty 2 - Oak - Matte"
func parseInvoiceLines(text string) []Item {
	return parseListRows(text, invoiceLineRe, func(body string) []string {
		return invoiceSplitRe.Split(body, -1)
	})
}

// parseNumberedList reads "1. Oak Table, 24 x 30 x 28, Qty 2, Oak, Matte"
func parseNumberedList(text string) []Item {
	return parseListRows(text, numberedLineRe, func(body string) []string {
		return strings.Split(body, ",")
	})
}

func parseListRows(text string, rowRe *regexp.Regexp, split func(string) []string) []Item {
	var out []Item
	for _, m := range rowRe.FindAllStringSubmatch(text, -1) {
		if it, ok := itemFromSegments(split(m[1])); ok {
			out = append(out, draftTitle(it, len(out)+1))
		}
	}
	return out
}

// itemFromSegments classifies list segments: a dimension triple and a
// quantity are recognized by shape, the remaining segments fill title,
// material, finishes and notes in that order. Rows with neither
// dimensions nor quantity are rejected.
func itemFromSegments(segments []string) (Item, bool) {
	var it Item
	var dims, qty bool
	var rest []string

	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		if !dims {
			if m := dimensionTripleRe.FindStringSubmatch(seg); m != nil {
				it.Length, it.Depth, it.Height = parseDimension(m[1]), parseDimension(m[2]), parseDimension(m[3])
				dims = true
				continue
			}
		}
		if !qty {
			if m := qtySegmentRe.FindStringSubmatch(seg); m != nil {
				it.Quantity = parseQuantity(m[1] + m[2])
				qty = true
				continue
			}
		}
		rest = append(rest, seg)
	}
	if !dims && !qty {
		return Item{}, false
	}

	if len(rest) > 0 {
		it.Title = rest[0]
	}
	if len(rest) > 1 {
		it.PrimaryMaterial = cleanMaterial(rest[1])
	}
	if len(rest) > 2 {
		it.Finishes = cleanValue(rest[2])
	}
	if len(rest) > 3 {
		it.ConstructionNotes = cleanNotes(strings.Join(rest[3:], ", "))
	}
	return it, true
}

// draftTitle cleans the raw title and assigns the draft status: a
// defaulted "Item N" title is flagged for review.
func draftTitle(it Item, ordinal int) Item {
	it.Title = cleanTitle(it.Title)
	if len(it.Title) <= 2 {
		it.Title = DefaultTitle(ordinal)
		it.titleDefaulted = true
		it.Status = StatusNeedsReview
		it.ReviewReason = stringPtr(reasonFor(fieldTitle))
		return it
	}
	it.titleDefaulted = false
	it.Status = StatusExtracted
	it.ReviewReason = nil
	return it
}
