package agenda

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/cuida-app/cuida/internal/dateutil"
	"github.com/cuida-app/cuida/internal/item"
)

// maxOccurrences caps how many copies one repeating item can produce per window.
const maxOccurrences = 64

// Expand replaces every repeating item with one copy per occurrence inside the
// window. Non-repeating items pass through untouched. Copies keep the ID of
// the item they came from.
func Expand(items []item.Item, w Window) ([]item.Item, error) {
	result := make([]item.Item, 0, len(items))
	for _, it := range items {
		if !it.Recurrence.Repeats() {
			result = append(result, it)
			continue
		}
		occ, err := occurrences(it, w)
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", it.Title, err)
		}
		result = append(result, occ...)
	}
	return result, nil
}

func occurrences(it item.Item, w Window) ([]item.Item, error) {
	rule, err := ruleFor(it)
	if err != nil {
		return nil, err
	}

	from := dateutil.Decode(w.Start())
	to := dateutil.Decode(w.End()).AddDate(0, 0, 1).Add(-time.Second)

	var out []item.Item
	for _, t := range rule.Between(from, to, true) {
		out = append(out, it.Occurrence(dateutil.Encode(t.In(time.Local))))
		if len(out) == maxOccurrences {
			break
		}
	}
	return out, nil
}

func ruleFor(it item.Item) (*rrule.RRule, error) {
	opt := rrule.ROption{
		Dtstart:  it.StartsAt(),
		Interval: it.Recurrence.Frequency,
	}
	switch it.Recurrence.Unit {
	case item.FrequencyDaily:
		opt.Freq = rrule.DAILY
	case item.FrequencyWeekly:
		opt.Freq = rrule.WEEKLY
	case item.FrequencyMonthly:
		opt.Freq = rrule.MONTHLY
	case item.FrequencyQuarterly:
		opt.Freq = rrule.MONTHLY
		opt.Interval = 3 * it.Recurrence.Frequency
	case item.FrequencyYearly:
		opt.Freq = rrule.YEARLY
	default:
		return nil, item.ErrInvalidFrequency
	}
	return rrule.NewRRule(opt)
}
