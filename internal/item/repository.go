package item

import "context"

// Repository defines the local storage interface for items.
// Upsert by ID is the only mutation besides deletion.
type Repository interface {
	// UpsertItem inserts the item, or replaces the stored item with the same ID.
	UpsertItem(ctx context.Context, it *Item) error

	// GetItem retrieves an item by ID. Returns ErrItemNotFound when missing.
	GetItem(ctx context.Context, id string) (*Item, error)

	// DeleteItem removes an item by ID. Returns ErrItemNotFound when missing.
	DeleteItem(ctx context.Context, id string) error

	// ListItems returns every stored item ordered by date, time and title.
	ListItems(ctx context.Context) ([]Item, error)

	// ListItemsByDateRange returns items dated within [start, end] (inclusive
	// date keys), plus every repeating item that starts on or before end.
	ListItemsByDateRange(ctx context.Context, start, end string) ([]Item, error)

	// Close releases any resources held by the repository.
	Close() error
}
