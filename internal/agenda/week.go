package agenda

import (
	"github.com/cuida-app/cuida/internal/item"
)

// Day holds the ordered bucket of one window day.
type Day struct {
	Date  string
	items []item.Item
}

// Items returns a copy of the day's bucket.
func (d *Day) Items() []item.Item {
	result := make([]item.Item, len(d.items))
	copy(result, d.items)
	return result
}

// Len returns the number of items in the day.
func (d *Day) Len() int {
	return len(d.items)
}

// IsToday reports whether the day is the current local day.
func (d *Day) IsToday() bool {
	return IsToday(d.Date)
}

// Week is a window with its items bucketed per day.
type Week struct {
	Window Window
	Policy Policy
	Days   [WindowDays]*Day
}

// NewWeek buckets items into the window. Items outside the window are ignored.
func NewWeek(w Window, policy Policy, items []item.Item) *Week {
	buckets := GroupByDate(items, w)
	week := &Week{Window: w, Policy: policy}
	for i, key := range w {
		week.Days[i] = &Day{Date: key, items: buckets[key]}
	}
	return week
}

// Day returns the i-th day of the window, nil if out of range.
func (w *Week) Day(i int) *Day {
	if i < 0 || i >= WindowDays {
		return nil
	}
	return w.Days[i]
}

// DayByDate returns the Day for the given key, nil if not in this window.
func (w *Week) DayByDate(key string) *Day {
	if i := w.Window.Index(key); i >= 0 {
		return w.Days[i]
	}
	return nil
}

// AllItems returns every item of the window in day order.
func (w *Week) AllItems() []item.Item {
	var result []item.Item
	for _, d := range w.Days {
		result = append(result, d.items...)
	}
	return result
}

// FindItem returns the first item with the given ID.
func (w *Week) FindItem(id string) (item.Item, bool) {
	for _, d := range w.Days {
		for _, it := range d.items {
			if it.ID == id {
				return it, true
			}
		}
	}
	return item.Item{}, false
}

// Stats summarizes a week's load.
type Stats struct {
	Total      int
	Events     int
	Meds       int
	Repeating  int
	DayCounts  [WindowDays]int
	BusiestDay int // index into the window, -1 when empty
}

// Stats counts the items of the week.
func (w *Week) Stats() Stats {
	s := Stats{BusiestDay: -1}
	best := 0
	for i, d := range w.Days {
		s.DayCounts[i] = len(d.items)
		if len(d.items) > best {
			best = len(d.items)
			s.BusiestDay = i
		}
		for _, it := range d.items {
			s.Total++
			if it.IsMed() {
				s.Meds++
			} else {
				s.Events++
			}
			if it.Recurrence.Repeats() {
				s.Repeating++
			}
		}
	}
	return s
}
