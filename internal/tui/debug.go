package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cuida-app/cuida/internal/agenda"
	"github.com/cuida-app/cuida/internal/debuglog"
	"github.com/cuida-app/cuida/internal/session"
)

// LogKeyPress logs a key press event.
func LogKeyPress(msg tea.KeyMsg) {
	if !debuglog.Enabled() {
		return
	}
	debuglog.Log("KEY_PRESS", map[string]any{
		"key":  msg.String(),
		"type": fmt.Sprintf("%T", msg.Type),
	})
}

// LogCursorMove logs cursor movement.
func LogCursorMove(pos Position, reason string) {
	if !debuglog.Enabled() {
		return
	}
	debuglog.Log("CURSOR_MOVE", map[string]any{
		"day":    pos.Day,
		"index":  pos.Index,
		"reason": reason,
	})
}

// LogStale logs a load response dropped because a newer one was requested.
func LogStale(kind string, got, current int) {
	debuglog.Log("STALE_LOAD", map[string]any{
		"kind":    kind,
		"gen":     got,
		"current": current,
	})
}

// LogSession logs a session change seen by the board.
func LogSession(s session.State) {
	data := map[string]any{"signed_in": s.SignedIn}
	if s.User != nil {
		data["user"] = s.User.Username
	}
	debuglog.Log("SESSION", data)
}

// LogWeekWindow logs the current WeekWindow state.
func LogWeekWindow(ww *agenda.WeekWindow, action string) {
	if !debuglog.Enabled() {
		return
	}
	if ww == nil {
		debuglog.Log("WEEK_WINDOW", map[string]any{
			"action": action,
			"status": "nil",
		})
		return
	}

	data := map[string]any{
		"action":   action,
		"has_prev": ww.HasPrevious(),
		"has_next": ww.HasNext(),
	}

	if curr := ww.Current(); curr != nil {
		var items []map[string]any
		for dayIdx, d := range curr.Days {
			for _, it := range d.Items() {
				items = append(items, map[string]any{
					"day":   dayIdx,
					"id":    it.ID,
					"title": truncateStr(it.Title, 20),
					"time":  it.Time,
				})
			}
		}
		data["start"] = curr.Window.Start()
		data["current_week_items"] = items
	}

	debuglog.Log("WEEK_WINDOW", data)
}

// truncateStr truncates a string to max runes.
func truncateStr(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
