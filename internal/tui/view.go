package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"

	"github.com/cuida-app/cuida/internal/agenda"
	"github.com/cuida-app/cuida/internal/dateutil"
	"github.com/cuida-app/cuida/internal/item"
)

// Below this width the board lists days vertically instead of in columns.
const minGridWidth = agenda.WindowDays*(minColWidth+1) + 1

// View renders the board.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	week := m.Week()
	sections := []string{m.renderHeader(week)}

	if m.width >= minGridWidth {
		sections = append(sections, m.renderGrid(week))
	} else {
		sections = append(sections, m.renderList(week))
	}

	sections = append(sections,
		m.renderDetail(),
		m.renderStats(week),
		m.renderStatus(),
		m.help.View(m.keys),
	)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader(week *agenda.Week) string {
	title := m.styles.TitleStyle.Render("cuida")
	rng := m.styles.HeaderStyle.Render(dateutil.RangeLabel(week.Window.Start(), week.Window.End(), m.opts.Locale))

	source := "local"
	if m.opts.Remote {
		source = "remote"
	}
	parts := []string{title, rng, m.styles.DetailLabelStyle.Render("[" + source + "]")}

	if m.user != nil {
		name := m.user.Name
		if name == "" {
			name = m.user.Username
		}
		parts = append(parts, m.styles.SessionStyle.Render(name))
	} else if m.opts.Session != nil {
		parts = append(parts, m.styles.SessionSignedOut.Render("signed out"))
	}

	if m.loading {
		parts = append(parts, m.spin.View())
	}
	return strings.Join(parts, "  ")
}

// colWidth splits the terminal width over the seven day columns.
func (m Model) colWidth() int {
	w := (m.width - (agenda.WindowDays + 1)) / agenda.WindowDays
	if w < minColWidth {
		return minColWidth
	}
	return w
}

func (m Model) renderGrid(week *agenda.Week) string {
	cw := m.colWidth()
	styles := m.styles.WithColWidth(cw)

	headers := make([]string, agenda.WindowDays)
	headerStyles := make([]lipgloss.Style, agenda.WindowDays)
	rowCount := 1
	for i, d := range week.Days {
		headers[i] = dateutil.ShortDayLabel(d.Date, m.opts.Locale)
		headerStyles[i] = styles.DayHeaderStyle
		if d.IsToday() {
			headerStyles[i] = styles.DayHeaderTodayStyle
		}
		if d.Len() > rowCount {
			rowCount = d.Len()
		}
	}

	rows := make([][]string, rowCount)
	cellStyles := make([][]lipgloss.Style, rowCount)
	for r := range rows {
		rows[r] = make([]string, agenda.WindowDays)
		cellStyles[r] = make([]lipgloss.Style, agenda.WindowDays)
	}
	for col, d := range week.Days {
		items := d.Items()
		if len(items) == 0 {
			rows[0][col] = "·"
			cellStyles[0][col] = styles.EmptyCellStyle
			for r := 1; r < rowCount; r++ {
				cellStyles[r][col] = styles.ItemCellStyle
			}
			continue
		}
		for r := 0; r < rowCount; r++ {
			if r >= len(items) {
				cellStyles[r][col] = styles.ItemCellStyle
				continue
			}
			rows[r][col] = ansi.Truncate(cellText(items[r]), cw, "…")
			cellStyles[r][col] = m.itemStyle(styles, items[r], col, r)
		}
	}

	t := table.New().
		Headers(headers...).
		Border(lipgloss.RoundedBorder()).
		BorderHeader(true).
		BorderColumn(true).
		BorderRow(false).
		BorderStyle(m.styles.SeparatorStyle).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				if col >= 0 && col < len(headerStyles) {
					return headerStyles[col]
				}
				return lipgloss.NewStyle()
			}
			if row < 0 || row >= len(cellStyles) || col < 0 || col >= len(cellStyles[row]) {
				return lipgloss.NewStyle()
			}
			return cellStyles[row][col]
		})

	return t.Render()
}

// renderList is the narrow-terminal layout: one block per day.
func (m Model) renderList(week *agenda.Week) string {
	width := m.width - 2
	if width < minColWidth {
		width = minColWidth
	}
	styles := m.styles.WithColWidth(width)

	var lines []string
	for col, d := range week.Days {
		heading := styles.DayHeaderStyle.Align(lipgloss.Left)
		if d.IsToday() {
			heading = styles.DayHeaderTodayStyle.Align(lipgloss.Left)
		}
		lines = append(lines, heading.Render(dateutil.DayLabel(d.Date, m.opts.Locale)))

		items := d.Items()
		if len(items) == 0 {
			lines = append(lines, styles.EmptyCellStyle.Render("  ·"))
			continue
		}
		for r, it := range items {
			text := ansi.Truncate("  "+cellText(it), width, "…")
			lines = append(lines, m.itemStyle(styles, it, col, r).Render(text))
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) itemStyle(s *Styles, it item.Item, day, index int) lipgloss.Style {
	selected := day == m.cursor.Day && index == m.cursor.Index
	switch {
	case selected && m.pendingDelete == it.ID:
		return s.ItemPendingDelete
	case selected && it.IsMed():
		return s.ItemSelectedMed
	case selected:
		return s.ItemSelectedEvent
	case it.IsMed():
		return s.ItemMedStyle
	default:
		return s.ItemEventStyle
	}
}

// cellText is the compact label of an item in a day column.
func cellText(it item.Item) string {
	t := it.Time
	if t == "" {
		t = "--:--"
	}
	return t + " " + it.Title
}

// renderDetail describes the selected item on one line.
func (m Model) renderDetail() string {
	it, ok := m.SelectedItem()
	if !ok {
		return m.styles.DetailStyle.Render(m.styles.DetailLabelStyle.Render("No item selected"))
	}

	parts := []string{m.styles.DetailLabelStyle.Render(it.Kind.Label() + ":"), it.Title}
	if it.Dose != "" {
		parts = append(parts, "("+it.Dose+")")
	}
	when := dateutil.DayLabel(it.Date, m.opts.Locale)
	if it.Time != "" {
		when += " " + it.Time
	}
	parts = append(parts, m.styles.DetailLabelStyle.Render("·"), when)
	if it.Recurrence.Repeats() {
		parts = append(parts, m.styles.DetailLabelStyle.Render(
			fmt.Sprintf("↻ every %d %s", it.Recurrence.Frequency, strings.ToLower(string(it.Recurrence.Unit)))))
	}
	if it.Description != "" {
		parts = append(parts, m.styles.DetailLabelStyle.Render("-"), it.Description)
	}

	line := strings.Join(parts, " ")
	if m.width > 2 {
		line = ansi.Truncate(line, m.width-2, "…")
	}
	return m.styles.DetailStyle.Render(line)
}

func (m Model) renderStats(week *agenda.Week) string {
	st := week.Stats()
	text := fmt.Sprintf("%d items  %s events  %s meds",
		st.Total,
		m.styles.StatsEventStyle.Render(fmt.Sprint(st.Events)),
		m.styles.StatsMedStyle.Render(fmt.Sprint(st.Meds)))
	if st.BusiestDay >= 0 {
		text += "  busiest " + dateutil.ShortDayLabel(week.Window[st.BusiestDay], m.opts.Locale)
	}
	return m.styles.StatsBarStyle.Render(text)
}

func (m Model) renderStatus() string {
	if m.statusMsg == "" {
		return ""
	}
	if m.isError {
		return m.styles.ErrorStyle.Render(m.statusMsg)
	}
	return m.styles.StatusStyle.Render(m.statusMsg)
}
