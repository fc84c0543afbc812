package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cuida-app/cuida/internal/session"
	"github.com/cuida-app/cuida/internal/tui/commands"
)

// Run starts the board and blocks until the user quits or ctx is done.
func Run(ctx context.Context, opts Options) error {
	if opts.Source == nil {
		return errors.New("board needs an item source")
	}

	p := tea.NewProgram(New(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))

	if opts.Session != nil {
		cancel := opts.Session.Subscribe(func(s session.State) {
			p.Send(commands.SessionChangedMsg{State: s})
		})
		defer cancel()
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running board: %w", err)
	}
	return nil
}
