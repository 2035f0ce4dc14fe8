package pdf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/a3tai/mcp-rfq-extractor/internal/items"
)

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatItems renders an extraction result for people to read
func FormatItems(result *ExtractItemsResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "RFQ items for: %s\n", result.Path)
	fmt.Fprintf(&b, "Backend: %s\n", result.Backend)
	fmt.Fprintf(&b, "Status: %s - %s\n", result.Status, result.Message)
	fmt.Fprintf(&b, "Items detected: %d (%d need review)\n", result.ItemsDetected, result.NeedsReview())

	for i, it := range result.Items {
		fmt.Fprintf(&b, "\n%d. %s [%s]\n", i+1, it.Title, it.Status)
		fmt.Fprintf(&b, "   Dimensions (L x D x H): %s x %s x %s in\n",
			formatNumber(it.Length), formatNumber(it.Depth), formatNumber(it.Height))
		fmt.Fprintf(&b, "   Quantity: %d\n", it.Quantity)
		if it.PrimaryMaterial != "" {
			fmt.Fprintf(&b, "   Material: %s\n", it.PrimaryMaterial)
		}
		if it.Finishes != "" {
			fmt.Fprintf(&b, "   Finishes: %s\n", it.Finishes)
		}
		if it.ConstructionNotes != "" {
			fmt.Fprintf(&b, "   Notes: %s\n", it.ConstructionNotes)
		}
		if it.Status == items.StatusNeedsReview {
			fmt.Fprintf(&b, "   Review: %s\n", it.Reason())
		}
	}
	for _, e := range result.Errors {
		fmt.Fprintf(&b, "\nError: %s", e)
	}

	return b.String()
}
