package remote

import (
	"context"

	"github.com/cuida-app/cuida/internal/agenda"
	"github.com/cuida-app/cuida/internal/item"
)

// Feed adapts a Backend to agenda.Source.
type Feed struct {
	backend Backend
}

// NewFeed returns a Feed reading tasks from b.
func NewFeed(b Backend) *Feed {
	return &Feed{backend: b}
}

// ListItemsByDateRange fetches every task, dates it with the year of start,
// and keeps the ones inside the seven days beginning at start.
func (f *Feed) ListItemsByDateRange(ctx context.Context, start, _ string) ([]item.Item, error) {
	w := agenda.ComputeWindow(start, agenda.PolicyRolling)
	items, err := f.backend.ListTasks(ctx, w.StartYear())
	if err != nil {
		return nil, err
	}
	return agenda.FilterAndSort(items, w), nil
}
