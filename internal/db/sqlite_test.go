package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/cuida-app/cuida/internal/item"
)

func newTestRepo(t *testing.T) *SQLite {
	t.Helper()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	repo, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create test repo: %v", err)
	}

	t.Cleanup(func() {
		_ = repo.Close()
	})

	return repo
}

func TestUpsertItem(t *testing.T) {
	repo := newTestRepo(t)

	it := &item.Item{
		Kind:  item.KindEvent,
		Title: "Cardiologist",
		Date:  "2025-09-13",
		Time:  "14:00",
	}

	if err := repo.UpsertItem(context.Background(), it); err != nil {
		t.Fatalf("UpsertItem failed: %v", err)
	}

	if it.ID == "" {
		t.Error("expected ID to be set after insert")
	}
	if it.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set after insert")
	}
}

func TestGetItem(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	it := &item.Item{
		ID:          "med-1",
		Kind:        item.KindMed,
		Title:       "Losartana",
		Date:        "2025-09-13",
		Time:        "08:00",
		Description: "after breakfast",
		Dose:        "50mg",
		Recurrence:  &item.Recurrence{Frequency: 1, Unit: item.FrequencyDaily},
		CreatedAt:   created,
	}
	if err := repo.UpsertItem(ctx, it); err != nil {
		t.Fatalf("UpsertItem failed: %v", err)
	}

	got, err := repo.GetItem(ctx, "med-1")
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}

	if got.Kind != item.KindMed {
		t.Errorf("Kind = %q, want med", got.Kind)
	}
	if got.Title != "Losartana" || got.Dose != "50mg" || got.Description != "after breakfast" {
		t.Errorf("unexpected fields: %+v", got)
	}
	if got.Date != "2025-09-13" {
		t.Errorf("Date = %q, want 2025-09-13", got.Date)
	}
	if got.Time != "08:00" {
		t.Errorf("Time = %q, want 08:00", got.Time)
	}
	if got.Recurrence == nil || got.Recurrence.Unit != item.FrequencyDaily || got.Recurrence.Frequency != 1 {
		t.Errorf("Recurrence = %+v, want 1 DAILY", got.Recurrence)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
	}
}

func TestGetItem_WithoutOptionalFields(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	it := &item.Item{ID: "ev-1", Kind: item.KindEvent, Title: "Visit", Date: "2025-09-14"}
	if err := repo.UpsertItem(ctx, it); err != nil {
		t.Fatalf("UpsertItem failed: %v", err)
	}

	got, err := repo.GetItem(ctx, "ev-1")
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if got.Time != "" {
		t.Errorf("Time = %q, want empty", got.Time)
	}
	if got.Recurrence != nil {
		t.Errorf("Recurrence = %+v, want nil", got.Recurrence)
	}
}

func TestGetItem_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetItem(context.Background(), "missing")
	if !errors.Is(err, item.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
}

func TestUpsertItem_ReplacesExisting(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	it := &item.Item{ID: "ev-1", Kind: item.KindEvent, Title: "Visit", Date: "2025-09-14", Time: "10:00"}
	if err := repo.UpsertItem(ctx, it); err != nil {
		t.Fatalf("UpsertItem failed: %v", err)
	}

	edited := &item.Item{ID: "ev-1", Kind: item.KindEvent, Title: "Visit (moved)", Date: "2025-09-15", Time: "11:30"}
	if err := repo.UpsertItem(ctx, edited); err != nil {
		t.Fatalf("UpsertItem failed: %v", err)
	}

	all, err := repo.ListItems(ctx)
	if err != nil {
		t.Fatalf("ListItems failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 item after replace, got %d", len(all))
	}
	if all[0].Title != "Visit (moved)" || all[0].Date != "2025-09-15" || all[0].Time != "11:30" {
		t.Errorf("item not replaced: %+v", all[0])
	}
}

func TestDeleteItem(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	it := &item.Item{ID: "ev-1", Kind: item.KindEvent, Title: "Visit", Date: "2025-09-14"}
	if err := repo.UpsertItem(ctx, it); err != nil {
		t.Fatalf("UpsertItem failed: %v", err)
	}

	if err := repo.DeleteItem(ctx, "ev-1"); err != nil {
		t.Fatalf("DeleteItem failed: %v", err)
	}

	if _, err := repo.GetItem(ctx, "ev-1"); !errors.Is(err, item.ErrItemNotFound) {
		t.Errorf("expected item to be gone, got %v", err)
	}
}

func TestDeleteItem_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.DeleteItem(context.Background(), "missing")
	if !errors.Is(err, item.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
}

func TestListItemsByDateRange(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	items := []item.Item{
		{ID: "before", Kind: item.KindEvent, Title: "Before", Date: "2025-09-12"},
		{ID: "first", Kind: item.KindEvent, Title: "First day", Date: "2025-09-13", Time: "09:00"},
		{ID: "last", Kind: item.KindMed, Title: "Last day", Date: "2025-09-19"},
		{ID: "after", Kind: item.KindEvent, Title: "After", Date: "2025-09-20"},
		{
			ID: "daily", Kind: item.KindMed, Title: "Daily pill", Date: "2025-08-01", Time: "08:00",
			Recurrence: &item.Recurrence{Frequency: 1, Unit: item.FrequencyDaily},
		},
		{
			ID: "future", Kind: item.KindMed, Title: "Starts later", Date: "2025-10-01",
			Recurrence: &item.Recurrence{Frequency: 1, Unit: item.FrequencyWeekly},
		},
		{
			ID: "once", Kind: item.KindEvent, Title: "Unique", Date: "2025-08-01",
			Recurrence: &item.Recurrence{Frequency: 0, Unit: item.FrequencyUnique},
		},
	}
	if err := repo.UpsertItems(ctx, items); err != nil {
		t.Fatalf("UpsertItems failed: %v", err)
	}

	got, err := repo.ListItemsByDateRange(ctx, "2025-09-13", "2025-09-19")
	if err != nil {
		t.Fatalf("ListItemsByDateRange failed: %v", err)
	}

	ids := make(map[string]bool, len(got))
	for _, it := range got {
		ids[it.ID] = true
	}

	for _, want := range []string{"first", "last", "daily"} {
		if !ids[want] {
			t.Errorf("expected %q in range result", want)
		}
	}
	for _, notWant := range []string{"before", "after", "future", "once"} {
		if ids[notWant] {
			t.Errorf("did not expect %q in range result", notWant)
		}
	}
}

func TestListItemsByDateRange_Empty(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.ListItemsByDateRange(context.Background(), "2025-09-13", "2025-09-19")
	if err != nil {
		t.Fatalf("ListItemsByDateRange failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no items, got %d", len(got))
	}
}

func TestUpsertItems_Empty(t *testing.T) {
	repo := newTestRepo(t)

	if err := repo.UpsertItems(context.Background(), nil); err != nil {
		t.Errorf("UpsertItems(nil) failed: %v", err)
	}
}

func TestListItems_Ordered(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	items := []item.Item{
		{ID: "c", Kind: item.KindEvent, Title: "Late", Date: "2025-09-13", Time: "18:00"},
		{ID: "b", Kind: item.KindEvent, Title: "Untimed", Date: "2025-09-13"},
		{ID: "a", Kind: item.KindEvent, Title: "Next day", Date: "2025-09-14", Time: "07:00"},
	}
	if err := repo.UpsertItems(ctx, items); err != nil {
		t.Fatalf("UpsertItems failed: %v", err)
	}

	got, err := repo.ListItems(ctx)
	if err != nil {
		t.Fatalf("ListItems failed: %v", err)
	}

	want := []string{"b", "c", "a"}
	if len(got) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("item %d = %q, want %q", i, got[i].ID, id)
		}
	}
}

func TestKV(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, ok, err := repo.Get(ctx, "auth_basic"); err != nil || ok {
		t.Fatalf("Get on empty store = ok %v, err %v", ok, err)
	}

	if err := repo.Set(ctx, "auth_basic", "Basic YWJjOjEyMw=="); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := repo.Set(ctx, "auth_user", `{"username":"ana"}`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := repo.Set(ctx, "auth_basic", "Basic bmV3OjEyMw=="); err != nil {
		t.Fatalf("Set overwrite failed: %v", err)
	}

	v, ok, err := repo.Get(ctx, "auth_basic")
	if err != nil || !ok {
		t.Fatalf("Get failed: ok %v, err %v", ok, err)
	}
	if v != "Basic bmV3OjEyMw==" {
		t.Errorf("Get = %q, want overwritten value", v)
	}

	if err := repo.Delete(ctx, "auth_basic", "auth_user", "missing"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	for _, key := range []string{"auth_basic", "auth_user"} {
		if _, ok, _ := repo.Get(ctx, key); ok {
			t.Errorf("expected %s to be deleted", key)
		}
	}
}
