// Package tui provides the terminal board for cuida.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/cuida-app/cuida/internal/tui/theme"
)

// Column widths; the actual width is recalculated from the terminal.
const (
	defaultColWidth = 18
	minColWidth     = 12
)

// Styles holds all lipgloss styles for the board, derived from a theme.
type Styles struct {
	palette *theme.Palette

	// Title style
	TitleStyle lipgloss.Style

	// Header styles
	HeaderStyle         lipgloss.Style
	DayHeaderStyle      lipgloss.Style
	DayHeaderTodayStyle lipgloss.Style

	// Item cell styles
	ItemCellStyle     lipgloss.Style
	ItemEventStyle    lipgloss.Style
	ItemMedStyle      lipgloss.Style
	ItemSelectedEvent lipgloss.Style
	ItemSelectedMed   lipgloss.Style
	ItemPendingDelete lipgloss.Style
	EmptyCellStyle    lipgloss.Style
	ColumnStyle       lipgloss.Style
	ColumnTodayStyle  lipgloss.Style
	DetailStyle       lipgloss.Style
	DetailLabelStyle  lipgloss.Style
	StatsBarStyle     lipgloss.Style
	StatsEventStyle   lipgloss.Style
	StatsMedStyle     lipgloss.Style
	StatusStyle       lipgloss.Style
	ErrorStyle        lipgloss.Style
	HelpStyle         lipgloss.Style
	SpinnerStyle      lipgloss.Style
	SeparatorStyle    lipgloss.Style
	SessionStyle      lipgloss.Style
	SessionSignedOut  lipgloss.Style
}

// NewStyles creates a new Styles instance from a theme.
func NewStyles(t *theme.Theme) *Styles {
	p := theme.NewPalette(t)
	s := &Styles{palette: p}

	s.TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Accent)

	s.HeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Fg)

	// Day column header
	s.DayHeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Align(lipgloss.Center).
		Foreground(p.Fg).
		Width(defaultColWidth)

	s.DayHeaderTodayStyle = s.DayHeaderStyle.
		Foreground(p.TextOnToday).
		Background(p.Today)

	s.ItemCellStyle = lipgloss.NewStyle().
		Width(defaultColWidth).
		Align(lipgloss.Left)

	s.ItemEventStyle = s.ItemCellStyle.Foreground(p.Event)
	s.ItemMedStyle = s.ItemCellStyle.Foreground(p.Med)

	// Selected items get a tinted background in their kind's color
	s.ItemSelectedEvent = s.ItemCellStyle.
		Background(p.EventBg).
		Foreground(p.TextOnEvent).
		Bold(true)
	s.ItemSelectedMed = s.ItemCellStyle.
		Background(p.MedBg).
		Foreground(p.TextOnMed).
		Bold(true)

	s.ItemPendingDelete = s.ItemCellStyle.
		Background(p.Warning).
		Foreground(p.TextOnWarning).
		Bold(true)

	s.EmptyCellStyle = s.ItemCellStyle.
		Foreground(p.FgMuted).
		Italic(true)

	s.ColumnStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.BgSelection).
		Padding(0, 0)

	s.ColumnTodayStyle = s.ColumnStyle.
		BorderForeground(p.Today)

	s.DetailStyle = lipgloss.NewStyle().
		Foreground(p.Fg).
		Padding(0, 1)

	s.DetailLabelStyle = lipgloss.NewStyle().
		Foreground(p.FgMuted)

	s.StatsBarStyle = lipgloss.NewStyle().
		Foreground(p.FgMuted).
		Padding(0, 1)
	s.StatsEventStyle = lipgloss.NewStyle().Foreground(p.Event).Bold(true)
	s.StatsMedStyle = lipgloss.NewStyle().Foreground(p.Med).Bold(true)

	s.StatusStyle = lipgloss.NewStyle().
		Foreground(p.Accent).
		Padding(0, 1)

	s.ErrorStyle = lipgloss.NewStyle().
		Foreground(p.Warning).
		Bold(true).
		Padding(0, 1)

	s.HelpStyle = lipgloss.NewStyle().
		Foreground(p.FgMuted).
		Padding(0, 1)

	s.SpinnerStyle = lipgloss.NewStyle().Foreground(p.Accent)

	s.SeparatorStyle = lipgloss.NewStyle().Foreground(p.BgSelection)

	s.SessionStyle = lipgloss.NewStyle().Foreground(p.Today)
	s.SessionSignedOut = lipgloss.NewStyle().Foreground(p.FgMuted).Italic(true)

	return s
}

// WithColWidth returns a copy of s with every column style sized to width.
func (s *Styles) WithColWidth(width int) *Styles {
	c := *s
	c.DayHeaderStyle = s.DayHeaderStyle.Width(width)
	c.DayHeaderTodayStyle = s.DayHeaderTodayStyle.Width(width)
	c.ItemCellStyle = s.ItemCellStyle.Width(width)
	c.ItemEventStyle = s.ItemEventStyle.Width(width)
	c.ItemMedStyle = s.ItemMedStyle.Width(width)
	c.ItemSelectedEvent = s.ItemSelectedEvent.Width(width)
	c.ItemSelectedMed = s.ItemSelectedMed.Width(width)
	c.ItemPendingDelete = s.ItemPendingDelete.Width(width)
	c.EmptyCellStyle = s.EmptyCellStyle.Width(width)
	return &c
}
