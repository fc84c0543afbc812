package agenda

import "github.com/cuida-app/cuida/internal/item"

// GroupByDate partitions the items dated inside w into per-day buckets.
// Items outside the window are left out. Only days with at least one item get
// a bucket, and every bucket is ordered with item.Compare.
func GroupByDate(items []item.Item, w Window) map[string][]item.Item {
	buckets := make(map[string][]item.Item)
	for _, it := range items {
		if !w.Contains(it.Date) {
			continue
		}
		buckets[it.Date] = append(buckets[it.Date], it)
	}
	for _, bucket := range buckets {
		item.Sort(bucket)
	}
	return buckets
}

// FilterAndSort keeps the items dated inside w and orders them by composed
// date-time, then title.
func FilterAndSort(items []item.Item, w Window) []item.Item {
	result := make([]item.Item, 0, len(items))
	for _, it := range items {
		if w.Contains(it.Date) {
			result = append(result, it)
		}
	}
	item.SortByStart(result)
	return result
}
