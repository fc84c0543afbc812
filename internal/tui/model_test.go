package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cuida-app/cuida/internal/agenda"
	"github.com/cuida-app/cuida/internal/item"
	"github.com/cuida-app/cuida/internal/session"
	"github.com/cuida-app/cuida/internal/tui/commands"
)

type fakeSource struct {
	items []item.Item
	err   error
}

func (f *fakeSource) ListItemsByDateRange(context.Context, string, string) ([]item.Item, error) {
	return f.items, f.err
}

type fakeRepo struct {
	item.Repository
	deleted []string
}

func (f *fakeRepo) DeleteItem(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func sampleItems() []item.Item {
	return []item.Item{
		{ID: "a", Kind: item.KindEvent, Title: "Cardiologist", Date: "2025-09-13", Time: "09:00"},
		{ID: "b", Kind: item.KindMed, Title: "Losartan", Dose: "50mg", Date: "2025-09-13", Time: "20:00"},
		{ID: "c", Kind: item.KindEvent, Title: "Physio", Date: "2025-09-21", Time: "10:00"},
	}
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// loadedModel returns a board with the window around 2025-09-13 loaded.
func loadedModel(t *testing.T, opts Options) Model {
	t.Helper()
	if opts.Source == nil {
		opts.Source = &fakeSource{items: sampleItems()}
	}
	opts.Today = "2025-09-13"
	m := New(context.Background(), opts)

	msg := commands.LoadWindow(context.Background(), opts.Source, m.ref, m.opts.Policy, m.gen)()
	updated, _ := m.Update(msg)
	return updated.(Model)
}

func press(t *testing.T, m Model, k string) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(keyMsg(k))
	return updated.(Model), cmd
}

func TestNewDefaults(t *testing.T) {
	m := New(context.Background(), Options{Source: &fakeSource{}, Today: "2025-09-13"})
	if m.opts.Policy != agenda.PolicyRolling {
		t.Errorf("policy = %q, want rolling", m.opts.Policy)
	}
	if !m.Loading() {
		t.Error("expected the board to start loading")
	}
	if got := m.Week().Window.Start(); got != "2025-09-13" {
		t.Errorf("empty period starts %s", got)
	}
	if m.Init() == nil {
		t.Error("Init should return the first load")
	}
}

func TestWindowLoaded(t *testing.T) {
	m := loadedModel(t, Options{})
	if m.Loading() {
		t.Fatal("still loading after the window arrived")
	}
	if got := m.Week().Stats().Total; got != 2 {
		t.Errorf("current week has %d items, want 2", got)
	}
	it, ok := m.SelectedItem()
	if !ok || it.ID != "a" {
		t.Errorf("selected = %+v, %v; want item a", it, ok)
	}
}

func TestStaleLoadIsDropped(t *testing.T) {
	src := &fakeSource{items: sampleItems()}
	m := New(context.Background(), Options{Source: src, Today: "2025-09-13"})

	// Navigate before the first load returns; the window is not cached yet.
	m, _ = press(t, m, "n")
	if m.Ref() != "2025-09-20" || m.gen != 1 {
		t.Fatalf("ref = %s gen = %d", m.Ref(), m.gen)
	}

	stale := commands.LoadWindow(context.Background(), src, "2025-09-13", agenda.PolicyRolling, 0)()
	updated, _ := m.Update(stale)
	m = updated.(Model)
	if !m.Loading() {
		t.Fatal("stale response ended the load")
	}
	if got := m.Week().Window.Start(); got != "2025-09-20" {
		t.Fatalf("stale response replaced the period: starts %s", got)
	}

	fresh := commands.LoadWindow(context.Background(), src, "2025-09-20", agenda.PolicyRolling, 1)()
	updated, _ = m.Update(fresh)
	m = updated.(Model)
	if m.Loading() {
		t.Fatal("fresh response did not end the load")
	}
	if got := m.Week().Window.Start(); got != "2025-09-20" {
		t.Errorf("period starts %s, want 2025-09-20", got)
	}
	if got := m.Week().Stats().Total; got != 1 {
		t.Errorf("period has %d items, want 1", got)
	}
}

func TestShiftUsesCachedNeighbour(t *testing.T) {
	m := loadedModel(t, Options{})

	m, cmd := press(t, m, "]")
	if m.Loading() {
		t.Error("cached neighbour should show without loading")
	}
	if got := m.Week().Window.Start(); got != "2025-09-20" {
		t.Fatalf("period starts %s, want 2025-09-20", got)
	}
	if m.window.HasNext() {
		t.Error("new edge should be pending")
	}
	if cmd == nil {
		t.Fatal("expected an edge load")
	}

	shifted, ok := cmd().(commands.WeekShiftedMsg)
	if !ok {
		t.Fatal("expected WeekShiftedMsg")
	}
	updated, _ := m.Update(shifted)
	m = updated.(Model)
	if !m.window.HasNext() || m.window.Next().Window.Start() != "2025-09-27" {
		t.Error("edge week not stored")
	}

	m, _ = press(t, m, "[")
	m, _ = press(t, m, "[")
	if got := m.Week().Window.Start(); got != "2025-09-06" {
		t.Errorf("period starts %s, want 2025-09-06", got)
	}
}

func TestStaleEdgeIsDropped(t *testing.T) {
	m := loadedModel(t, Options{})
	m, _ = press(t, m, "]")
	gen := m.gen
	m, _ = press(t, m, "[")

	edge := &agenda.Week{}
	updated, _ := m.Update(commands.WeekShiftedMsg{Gen: gen, Week: edge, Forward: true})
	m = updated.(Model)
	if m.window.Next() == edge {
		t.Error("edge from an older generation was stored")
	}
}

func TestLoadErrorShowsEmptyPeriod(t *testing.T) {
	src := &fakeSource{err: errors.New("HTTP 500")}
	m := loadedModel(t, Options{Source: src})

	if m.Loading() {
		t.Error("load error should end loading")
	}
	if m.loadErr == nil {
		t.Error("expected the load error to be kept")
	}
	if got := m.Week().Stats().Total; got != 0 {
		t.Errorf("period has %d items, want 0", got)
	}
	if got := m.Week().Window.Start(); got != "2025-09-13" {
		t.Errorf("period starts %s", got)
	}
	if !strings.Contains(m.Status(), "HTTP 500") {
		t.Errorf("status = %q", m.Status())
	}
}

func TestCursorNavigation(t *testing.T) {
	m := loadedModel(t, Options{})

	m, _ = press(t, m, "j")
	if it, _ := m.SelectedItem(); it.ID != "b" {
		t.Errorf("after j selected %s, want b", it.ID)
	}
	m, _ = press(t, m, "j")
	if m.Cursor().Index != 1 {
		t.Errorf("index = %d, want clamped to 1", m.Cursor().Index)
	}
	m, _ = press(t, m, "k")
	if m.Cursor().Index != 0 {
		t.Errorf("index = %d, want 0", m.Cursor().Index)
	}

	m, _ = press(t, m, "l")
	if m.Cursor().Day != 1 {
		t.Errorf("day = %d, want 1", m.Cursor().Day)
	}
	if _, ok := m.SelectedItem(); ok {
		t.Error("day 1 has no items")
	}

	m, _ = press(t, m, "h")
	m, _ = press(t, m, "h")
	if m.Cursor().Day != agenda.WindowDays-1 {
		t.Errorf("day = %d, want last day of previous week", m.Cursor().Day)
	}
	if m.Ref() != "2025-09-06" {
		t.Errorf("ref = %s, want 2025-09-06", m.Ref())
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	repo := &fakeRepo{}
	m := loadedModel(t, Options{Repo: repo})

	m, _ = press(t, m, "d")
	if m.pendingDelete != "a" {
		t.Fatalf("pending delete = %q, want a", m.pendingDelete)
	}

	m, cmd := press(t, m, "d")
	if m.pendingDelete != "" || cmd == nil {
		t.Fatal("second press should delete")
	}
	msg := cmd()
	if len(repo.deleted) != 1 || repo.deleted[0] != "a" {
		t.Fatalf("deleted = %v", repo.deleted)
	}

	updated, _ := m.Update(msg)
	m = updated.(Model)
	if !m.Loading() {
		t.Error("delete should reload the period")
	}
	if !strings.Contains(m.Status(), "Deleted item a") {
		t.Errorf("status = %q", m.Status())
	}
}

func TestDeleteCancelledByOtherKey(t *testing.T) {
	m := loadedModel(t, Options{Repo: &fakeRepo{}})
	m, _ = press(t, m, "d")
	m, _ = press(t, m, "j")
	if m.pendingDelete != "" {
		t.Error("moving should cancel the pending delete")
	}
}

func TestDeleteIsLocalOnly(t *testing.T) {
	repo := &fakeRepo{}
	m := loadedModel(t, Options{Repo: repo, Remote: true})

	m, _ = press(t, m, "d")
	m, _ = press(t, m, "d")
	if len(repo.deleted) != 0 {
		t.Error("remote board must not delete")
	}
	if m.Status() != "Delete is local only" {
		t.Errorf("status = %q", m.Status())
	}
}

func TestCopyWeek(t *testing.T) {
	var copied string
	prev := commands.WriteClipboard
	commands.WriteClipboard = func(s string) error {
		copied = s
		return nil
	}
	t.Cleanup(func() { commands.WriteClipboard = prev })

	m := loadedModel(t, Options{})
	m, cmd := press(t, m, "c")
	if cmd == nil {
		t.Fatal("expected copy command")
	}
	updated, _ := m.Update(cmd())
	m = updated.(Model)

	for _, want := range []string{"Saturday, Sep 13", "09:00  Cardiologist", "Losartan (50mg)"} {
		if !strings.Contains(copied, want) {
			t.Errorf("copied text missing %q:\n%s", want, copied)
		}
	}
	if m.Status() != "Week copied to clipboard" {
		t.Errorf("status = %q", m.Status())
	}
}

func TestSessionChange(t *testing.T) {
	user := &session.User{Username: "ana"}

	local := loadedModel(t, Options{})
	updated, _ := local.Update(commands.SessionChangedMsg{State: session.State{SignedIn: true, User: user}})
	local = updated.(Model)
	if local.user == nil || local.user.Username != "ana" {
		t.Error("user not updated")
	}
	if local.Loading() {
		t.Error("local board should not reload on session change")
	}

	remote := loadedModel(t, Options{Remote: true})
	gen := remote.gen
	updated, _ = remote.Update(commands.SessionChangedMsg{State: session.State{}})
	remote = updated.(Model)
	if !remote.Loading() || remote.gen != gen+1 {
		t.Error("remote board should reload on session change")
	}
}

func TestQuit(t *testing.T) {
	m := loadedModel(t, Options{})
	_, cmd := press(t, m, "q")
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}
