package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/cuida-app/cuida/internal/agenda"
	"github.com/cuida-app/cuida/internal/debuglog"
	"github.com/cuida-app/cuida/internal/tui/commands"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case commands.WindowLoadedMsg:
		if msg.Gen != m.gen {
			LogStale("window", msg.Gen, m.gen)
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			// Keep the UI stable: show the empty period and say why
			debuglog.Error("load window", msg.Err)
			m.window = agenda.NewWeekWindow(nil, agenda.EmptyWeek(msg.Ref, m.opts.Policy), nil)
			m.loadErr = msg.Err
			m.clampCursor()
			status := m.setStatus(fmt.Sprintf("Error: %v", msg.Err), true)
			return m, status
		}
		m.window = msg.Window
		m.loadErr = nil
		m.clampCursor()
		LogWeekWindow(m.window, "loaded")
		return m, nil

	case commands.WeekShiftedMsg:
		if msg.Gen != m.gen || m.window == nil {
			LogStale("edge", msg.Gen, m.gen)
			return m, nil
		}
		if msg.Err != nil {
			// The edge stays empty and is reloaded on the next move
			debuglog.Error("load edge", msg.Err)
			return m, nil
		}
		if msg.Forward {
			m.window.SetNext(msg.Week)
		} else {
			m.window.SetPrevious(msg.Week)
		}
		LogWeekWindow(m.window, "edge")
		return m, nil

	case commands.ItemDeletedMsg:
		if msg.Err != nil {
			status := m.setStatus(fmt.Sprintf("Error: %v", msg.Err), true)
			return m, status
		}
		updated, cmd := m.reload("delete")
		model := updated.(Model)
		status := model.setStatus("Deleted item "+msg.ID, false)
		return model, tea.Batch(cmd, status)

	case commands.CopiedMsg:
		if msg.Err != nil {
			status := m.setStatus(fmt.Sprintf("Copy failed: %v", msg.Err), true)
			return m, status
		}
		status := m.setStatus("Week copied to clipboard", false)
		return m, status

	case commands.SessionTickMsg:
		if m.opts.Session == nil {
			return m, nil
		}
		return m, tea.Batch(
			commands.RefreshSession(m.ctx, m.opts.Session),
			commands.TickSession(SessionRefreshInterval),
		)

	case commands.SessionChangedMsg:
		m.user = msg.State.User
		LogSession(msg.State)
		if m.opts.Remote {
			// The remote period depends on the credential
			return m.reload("session")
		}
		return m, nil

	case commands.StatusMsg:
		status := m.setStatus(msg.Msg, false)
		return m, status

	case commands.ClearStatusMsg:
		if !time.Now().Before(m.statusTime) {
			m.statusMsg = ""
			m.isError = false
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}
