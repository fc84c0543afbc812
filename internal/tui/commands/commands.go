// Package commands provides board command constructors and message types.
//
// Every load carries the generation it was issued for. The board bumps its
// generation on each navigation and drops messages from older ones, so a
// slow response can never overwrite a newer week.
package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/cuida-app/cuida/internal/agenda"
	"github.com/cuida-app/cuida/internal/item"
	"github.com/cuida-app/cuida/internal/session"
)

// WriteClipboard is replaced in tests.
var WriteClipboard = clipboard.WriteAll

// WindowLoadedMsg is sent when the previous, current and next weeks are loaded.
// On error Window is nil and the board shows the empty period.
type WindowLoadedMsg struct {
	Gen    int
	Ref    string
	Window *agenda.WeekWindow
	Err    error
}

// WeekShiftedMsg is sent when a new edge week is loaded after navigation.
type WeekShiftedMsg struct {
	Gen     int
	Week    *agenda.Week
	Forward bool // true if shifted forward, false if backward
	Err     error
}

// ItemDeletedMsg is sent after a local delete.
type ItemDeletedMsg struct {
	ID  string
	Err error
}

// CopiedMsg is sent after the week was copied to the clipboard.
type CopiedMsg struct {
	Err error
}

// SessionChangedMsg carries a session change, local or from another process.
type SessionChangedMsg struct {
	State session.State
}

// SessionTickMsg triggers a session refresh.
type SessionTickMsg struct{}

// StatusMsg is sent for temporary status messages.
type StatusMsg struct {
	Msg string
}

// ClearStatusMsg is sent to clear the status message.
type ClearStatusMsg struct{}

// LoadWindow loads the week around ref together with its neighbours.
func LoadWindow(ctx context.Context, src agenda.Source, ref string, policy agenda.Policy, gen int) tea.Cmd {
	return func() tea.Msg {
		current, err := agenda.Load(ctx, src, ref, policy)
		if err != nil {
			return WindowLoadedMsg{Gen: gen, Ref: ref, Err: err}
		}

		// neighbours are best effort; a nil edge is reloaded on navigation
		prev, _ := agenda.Load(ctx, src, agenda.ShiftWeek(ref, -1), policy)
		next, _ := agenda.Load(ctx, src, agenda.ShiftWeek(ref, 1), policy)

		return WindowLoadedMsg{
			Gen:    gen,
			Ref:    ref,
			Window: agenda.NewWeekWindow(prev, current, next),
		}
	}
}

// LoadEdge loads the week that becomes the new neighbour after a shift.
// ref is the reference date of the week now current.
func LoadEdge(ctx context.Context, src agenda.Source, ref string, policy agenda.Policy, forward bool, gen int) tea.Cmd {
	return func() tea.Msg {
		n := -1
		if forward {
			n = 1
		}
		week, err := agenda.Load(ctx, src, agenda.ShiftWeek(ref, n), policy)
		return WeekShiftedMsg{Gen: gen, Week: week, Forward: forward, Err: err}
	}
}

// DeleteItem removes an item from the local repository.
func DeleteItem(ctx context.Context, repo item.Repository, id string) tea.Cmd {
	return func() tea.Msg {
		if err := repo.DeleteItem(ctx, id); err != nil {
			return ItemDeletedMsg{ID: id, Err: fmt.Errorf("deleting item: %w", err)}
		}
		return ItemDeletedMsg{ID: id}
	}
}

// CopyText writes text to the system clipboard.
func CopyText(text string) tea.Cmd {
	return func() tea.Msg {
		return CopiedMsg{Err: WriteClipboard(text)}
	}
}

// RefreshSession re-reads the shared session store. Subscribers are notified
// by the session itself when something changed.
func RefreshSession(ctx context.Context, s *session.Session) tea.Cmd {
	return func() tea.Msg {
		if _, err := s.Refresh(ctx); err != nil {
			return StatusMsg{Msg: "session: " + err.Error()}
		}
		return nil
	}
}

// TickSession schedules the next session refresh.
func TickSession(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(time.Time) tea.Msg {
		return SessionTickMsg{}
	})
}

// ClearStatusAfter clears the status line after d.
func ClearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
