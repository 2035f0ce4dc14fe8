package items

// MinTitleLength is the shortest title accepted without review
const MinTitleLength = 3

type criticalField string

const (
	fieldLength   criticalField = "length"
	fieldDepth    criticalField = "depth"
	fieldHeight   criticalField = "height"
	fieldMaterial criticalField = "primary material"
	fieldQuantity criticalField = "quantity"
	fieldTitle    criticalField = "title"
)

// criticalCheck pairs a field with its pass condition. Checks run in slice
// order and stop at the first failure.
type criticalCheck struct {
	field criticalField
	ok    func(Item) bool
}

var criticalChecks = []criticalCheck{
	{fieldLength, func(it Item) bool { return it.Length > 0 }},
	{fieldDepth, func(it Item) bool { return it.Depth > 0 }},
	{fieldHeight, func(it Item) bool { return it.Height > 0 }},
	{fieldMaterial, func(it Item) bool { return it.PrimaryMaterial != "" }},
	{fieldQuantity, func(it Item) bool { return it.Quantity > 0 }},
	{fieldTitle, func(it Item) bool { return !it.titleDefaulted && len(it.Title) >= MinTitleLength }},
}

func reasonFor(f criticalField) string {
	return "Missing or invalid " + string(f)
}

// Validate assigns the final status. The review reason names only the
// first failing critical field. A title defaulted by Extract fails the
// title check.
func Validate(item Item) Item {
	for _, check := range criticalChecks {
		if !check.ok(item) {
			item.Status = StatusNeedsReview
			item.ReviewReason = stringPtr(reasonFor(check.field))
			return item
		}
	}
	item.Status = StatusExtracted
	item.ReviewReason = nil
	return item
}

// ValidateAll validates items in place order and returns a new slice
func ValidateAll(items []Item) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = Validate(it)
	}
	return out
}
