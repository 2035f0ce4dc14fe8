package items

// Status is the review state of a single extracted item
type Status string

const (
	StatusExtracted   Status = "extracted"
	StatusNeedsReview Status = "needs_review"
)

// ResultStatus is the outcome of one extraction run
type ResultStatus string

const (
	ResultSuccess        ResultStatus = "success"
	ResultPartialFailure ResultStatus = "partial_failure"
	ResultFullFailure    ResultStatus = "full_failure"
)

// Item is one structured line item recovered from a document.
// Dimensions are in inches and never negative.
type Item struct {
	Title             string  `json:"title"`
	Length            float64 `json:"length"`
	Depth             float64 `json:"depth"`
	Height            float64 `json:"height"`
	Quantity          int     `json:"quantity"`
	PrimaryMaterial   string  `json:"primary_material"`
	Finishes          string  `json:"finishes"`
	ConstructionNotes string  `json:"construction_notes"`
	Status            Status  `json:"status"`
	ReviewReason      *string `json:"review_reason"`

	// set when Title is the "Item N" placeholder
	titleDefaulted bool
}

// Reason returns the review reason or an empty string
func (it Item) Reason() string {
	if it.ReviewReason == nil {
		return ""
	}
	return *it.ReviewReason
}

// NeedsReview reports whether the item was flagged for human correction
func (it Item) NeedsReview() bool {
	return it.Status == StatusNeedsReview
}

// Section is the slice of normalized text believed to describe one item
type Section struct {
	Text    string `json:"text"`
	Ordinal int    `json:"ordinal"` // 1-based
}

// Strategy names the segmentation strategy that produced a Segmentation
type Strategy string

const (
	StrategyNone          Strategy = "none"
	StrategyMarkers       Strategy = "markers"
	StrategyTable         Strategy = "table"
	StrategyInvoiceLines  Strategy = "invoice_lines"
	StrategyNumberedList  Strategy = "numbered_list"
	StrategySeparatorLine Strategy = "separator_lines"
	StrategyBlankLines    Strategy = "blank_lines"
	StrategyFallback      Strategy = "fallback"
)

// Segmentation is the output of the segmenter. Exactly one of Sections
// or Items is populated: format-specific parsers emit fully formed items.
type Segmentation struct {
	Strategy Strategy  `json:"strategy"`
	Sections []Section `json:"sections,omitempty"`
	Items    []Item    `json:"items,omitempty"`
}

// Len returns the number of candidate items in the segmentation
func (s Segmentation) Len() int {
	if len(s.Items) > 0 {
		return len(s.Items)
	}
	return len(s.Sections)
}

func stringPtr(s string) *string {
	return &s
}
