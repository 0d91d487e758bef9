package course

import (
	"fmt"

	"github.com/trezcool/masomo-storefront/core/listing"
)

// Showing returns the count line of a catalog page, eg. "Showing 8 of 42 courses".
func Showing(page listing.Response[Course]) string {
	return fmt.Sprintf("Showing %d of %d courses", len(page.Items), page.Pagination.Total)
}

// PageSummary returns eg. "Page 2 of 6 • 42 total courses"; it is empty when everything fits on one page.
func PageSummary(pg listing.Pagination) string {
	if pg.TotalPages <= 1 {
		return ""
	}
	return fmt.Sprintf("Page %d of %d • %d total courses", pg.Page, pg.TotalPages, pg.Total)
}
