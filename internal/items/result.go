package items

import "fmt"

// Result is the JSON-serializable outcome of one extraction run
type Result struct {
	ItemsDetected int          `json:"items_detected"`
	Items         []Item       `json:"items"`
	Status        ResultStatus `json:"status"`
	Message       string       `json:"message"`
	Errors        []string     `json:"errors"`
}

// NewResult aggregates validated items. Zero items is a full failure,
// which is reported through Status rather than an error.
func NewResult(items []Item) Result {
	if items == nil {
		items = []Item{}
	}
	r := Result{
		ItemsDetected: len(items),
		Items:         items,
		Errors:        []string{},
	}
	if len(items) == 0 {
		r.Status = ResultFullFailure
		r.Message = "No items could be extracted"
		return r
	}
	r.Status = ResultSuccess
	r.Message = fmt.Sprintf("Successfully extracted %d item(s)", len(items))
	return r
}

// NeedsReview counts the items flagged for human correction
func (r Result) NeedsReview() int {
	n := 0
	for _, it := range r.Items {
		if it.NeedsReview() {
			n++
		}
	}
	return n
}

// Succeeded reports whether at least one item was extracted
func (r Result) Succeeded() bool {
	return r.Status == ResultSuccess || r.Status == ResultPartialFailure
}
