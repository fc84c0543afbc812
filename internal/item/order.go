package item

import (
	"slices"
	"strings"
)

// Compare orders items inside a day: by time ascending (no time sorts as
// "00:00"), then by title.
func Compare(a, b Item) int {
	if c := strings.Compare(a.SortTime(), b.SortTime()); c != 0 {
		return c
	}
	return strings.Compare(a.Title, b.Title)
}

// CompareStart orders items across days by their composed date and time,
// then by title.
func CompareStart(a, b Item) int {
	if c := a.StartsAt().Compare(b.StartsAt()); c != 0 {
		return c
	}
	return strings.Compare(a.Title, b.Title)
}

// Sort sorts items in place with Compare. The sort is stable so items with
// equal time and title keep their input order.
func Sort(items []Item) {
	slices.SortStableFunc(items, Compare)
}

// SortByStart sorts items in place with CompareStart.
func SortByStart(items []Item) {
	slices.SortStableFunc(items, CompareStart)
}
