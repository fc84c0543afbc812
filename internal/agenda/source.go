package agenda

import (
	"context"
	"fmt"

	"github.com/cuida-app/cuida/internal/item"
)

// Source supplies the items of a window, from local storage or a remote feed.
type Source interface {
	ListItemsByDateRange(ctx context.Context, start, end string) ([]item.Item, error)
}

// Load computes the window for refKey, fetches its items from src, expands
// repeating items and buckets the result.
func Load(ctx context.Context, src Source, refKey string, policy Policy) (*Week, error) {
	w := ComputeWindow(refKey, policy)
	items, err := src.ListItemsByDateRange(ctx, w.Start(), w.End())
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	expanded, err := Expand(items, w)
	if err != nil {
		return nil, err
	}
	return NewWeek(w, policy, expanded), nil
}

// EmptyWeek returns the window for refKey with no items, used when a fetch
// fails and the period must still render.
func EmptyWeek(refKey string, policy Policy) *Week {
	return NewWeek(ComputeWindow(refKey, policy), policy, nil)
}
