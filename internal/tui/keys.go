package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/cuida-app/cuida/internal/agenda"
	"github.com/cuida-app/cuida/internal/dateutil"
	"github.com/cuida-app/cuida/internal/summary"
	"github.com/cuida-app/cuida/internal/tui/commands"
)

type keyMap struct {
	Left     key.Binding
	Right    key.Binding
	Up       key.Binding
	Down     key.Binding
	PrevWeek key.Binding
	NextWeek key.Binding
	Today    key.Binding
	Reload   key.Binding
	Delete   key.Binding
	Copy     key.Binding
	Help     key.Binding
	Cancel   key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Left:     key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("←/h", "prev day")),
		Right:    key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("→/l", "next day")),
		Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "prev item")),
		Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "next item")),
		PrevWeek: key.NewBinding(key.WithKeys("[", "p"), key.WithHelp("[/p", "prev week")),
		NextWeek: key.NewBinding(key.WithKeys("]", "n"), key.WithHelp("]/n", "next week")),
		Today:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),
		Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Copy:     key.NewBinding(key.WithKeys("c", "y"), key.WithHelp("c", "copy week")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Cancel:   key.NewBinding(key.WithKeys("esc")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.PrevWeek, k.NextWeek, k.Copy, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down},
		{k.PrevWeek, k.NextWeek, k.Today, k.Reload},
		{k.Delete, k.Copy, k.Help, k.Quit},
	}
}

// handleKeyMsg handles keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	LogKeyPress(msg)

	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	// Any key other than a second "d" cancels a pending delete
	if m.pendingDelete != "" && !key.Matches(msg, m.keys.Delete) {
		m.pendingDelete = ""
		if key.Matches(msg, m.keys.Cancel) {
			status := m.setStatus("Delete cancelled", false)
			return m, status
		}
	}

	switch {
	case key.Matches(msg, m.keys.Left):
		if m.cursor.Day > 0 {
			m.cursor.Day--
			m.clampCursor()
			LogCursorMove(m.cursor, "left")
			return m, nil
		}
		m.cursor.Day = agenda.WindowDays - 1
		return m.shiftWeek(false)

	case key.Matches(msg, m.keys.Right):
		if m.cursor.Day < agenda.WindowDays-1 {
			m.cursor.Day++
			m.clampCursor()
			LogCursorMove(m.cursor, "right")
			return m, nil
		}
		m.cursor.Day = 0
		return m.shiftWeek(true)

	case key.Matches(msg, m.keys.Up):
		if m.cursor.Index > 0 {
			m.cursor.Index--
		}
		LogCursorMove(m.cursor, "up")
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.cursor.Index++
		m.clampCursor()
		LogCursorMove(m.cursor, "down")
		return m, nil

	case key.Matches(msg, m.keys.PrevWeek):
		return m.shiftWeek(false)

	case key.Matches(msg, m.keys.NextWeek):
		return m.shiftWeek(true)

	case key.Matches(msg, m.keys.Today):
		m.ref = m.opts.Today
		if m.ref == "" {
			m.ref = dateutil.Today()
		}
		m.cursor = Position{Day: m.todayIndex()}
		return m.reload("today")

	case key.Matches(msg, m.keys.Reload):
		return m.reload("reload")

	case key.Matches(msg, m.keys.Delete):
		return m.handleDelete()

	case key.Matches(msg, m.keys.Copy):
		text := summary.SummarizeWeek(m.Week()).PlainText(m.opts.Locale)
		return m, commands.CopyText(text)

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	return m, nil
}

// shiftWeek moves the displayed period one week. When the neighbour is
// already loaded it is shown at once and only the new edge is fetched.
func (m Model) shiftWeek(forward bool) (tea.Model, tea.Cmd) {
	n := -1
	if forward {
		n = 1
	}
	m.ref = agenda.ShiftWeek(m.ref, n)
	m.gen++
	m.loadErr = nil

	ww := m.window
	if ww != nil && ww.Current() != nil && ((forward && ww.HasNext()) || (!forward && ww.HasPrevious())) {
		if forward {
			ww.ShiftForward(nil)
		} else {
			ww.ShiftBackward(nil)
		}
		m.clampCursor()
		LogWeekWindow(ww, "shift")
		return m, commands.LoadEdge(m.ctx, m.opts.Source, m.ref, m.opts.Policy, forward, m.gen)
	}

	// Fallback: full reload
	m.window = nil
	m.loading = true
	m.clampCursor()
	return m, tea.Batch(
		commands.LoadWindow(m.ctx, m.opts.Source, m.ref, m.opts.Policy, m.gen),
		m.spin.Tick,
	)
}

// reload drops the cached weeks and loads the period around ref again.
func (m Model) reload(reason string) (tea.Model, tea.Cmd) {
	m.gen++
	m.loading = true
	m.loadErr = nil
	if m.window != nil {
		m.window.Invalidate()
	}
	LogWeekWindow(m.window, reason)
	return m, tea.Batch(
		commands.LoadWindow(m.ctx, m.opts.Source, m.ref, m.opts.Policy, m.gen),
		m.spin.Tick,
	)
}

// handleDelete asks for confirmation on the first press and deletes on the second.
func (m Model) handleDelete() (tea.Model, tea.Cmd) {
	it, ok := m.SelectedItem()
	if !ok {
		return m, nil
	}
	if m.opts.Remote || m.opts.Repo == nil {
		status := m.setStatus("Delete is local only", true)
		return m, status
	}
	if m.pendingDelete != it.ID {
		m.pendingDelete = it.ID
		status := m.setStatus("Press d again to delete "+it.Title, false)
		return m, status
	}
	m.pendingDelete = ""
	return m, commands.DeleteItem(m.ctx, m.opts.Repo, it.ID)
}
