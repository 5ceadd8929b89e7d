package bill

import (
	"slices"
	"strings"
)

// Compare orders bills by date, most recent first.
// Dates are ISO strings so they compare lexically.
func Compare(a, b Bill) int {
	return -strings.Compare(a.Date, b.Date)
}

// SortByDateDesc returns a copy of bills ordered most recent first.
// Bills sharing a date keep the order the store returned them in.
func SortByDateDesc(bills []Bill) []Bill {
	sorted := slices.Clone(bills)
	slices.SortStableFunc(sorted, Compare)
	return sorted
}
