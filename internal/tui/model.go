package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/cuida-app/cuida/internal/agenda"
	"github.com/cuida-app/cuida/internal/dateutil"
	"github.com/cuida-app/cuida/internal/item"
	"github.com/cuida-app/cuida/internal/session"
	"github.com/cuida-app/cuida/internal/tui/commands"
	"github.com/cuida-app/cuida/internal/tui/theme"
)

// SessionRefreshInterval is how often the board re-reads the shared session.
const SessionRefreshInterval = 2 * time.Second

// statusTimeout is how long a status message stays on screen.
const statusTimeout = 3 * time.Second

// Options configures the board.
type Options struct {
	Source  agenda.Source
	Repo    item.Repository // local store; nil disables deletion
	Session *session.Session
	Remote  bool // Source reads the remote service
	Policy  agenda.Policy
	Locale  string
	Theme   string
	Today   string // reference date, defaults to the local day
}

// Position is the selected cell: a day of the window and an item in it.
type Position struct {
	Day   int // index into the window
	Index int // item within the day, clamped to the bucket
}

// Model is the board model.
type Model struct {
	ctx  context.Context
	opts Options

	theme  *theme.Theme
	styles *Styles
	keys   keyMap
	help   help.Model
	spin   spinner.Model

	// Navigation state
	ref     string // reference date of the displayed period
	window  *agenda.WeekWindow
	gen     int // bumped on every navigation, stale loads are dropped
	loading bool
	loadErr error
	cursor  Position

	// Pending delete confirmation (item ID)
	pendingDelete string

	user *session.User

	statusMsg  string
	statusTime time.Time
	isError    bool

	width  int
	height int
}

// New creates the board model.
func New(ctx context.Context, opts Options) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Policy == "" {
		opts.Policy = agenda.PolicyRolling
	}
	if opts.Locale == "" {
		opts.Locale = dateutil.LocaleEnglish
	}
	ref := opts.Today
	if ref == "" {
		ref = dateutil.Today()
	}

	t, _ := theme.Load(opts.Theme)
	h := help.New()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:     ctx,
		opts:    opts,
		theme:   t,
		styles:  NewStyles(t),
		keys:    defaultKeyMap(),
		help:    h,
		spin:    sp,
		ref:     ref,
		loading: true,
	}
	m.spin.Style = m.styles.SpinnerStyle
	m.help.Styles.ShortKey = m.styles.HelpStyle.Bold(true)
	m.help.Styles.ShortDesc = m.styles.HelpStyle
	m.help.Styles.FullKey = m.styles.HelpStyle.Bold(true)
	m.help.Styles.FullDesc = m.styles.HelpStyle
	if opts.Session != nil {
		m.user = opts.Session.User()
	}
	m.cursor.Day = m.todayIndex()
	return m
}

// Init starts the first load.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		commands.LoadWindow(m.ctx, m.opts.Source, m.ref, m.opts.Policy, m.gen),
		m.spin.Tick,
	}
	if m.opts.Session != nil {
		cmds = append(cmds, commands.TickSession(SessionRefreshInterval))
	}
	return tea.Batch(cmds...)
}

// Week returns the displayed period; the empty period while nothing is loaded.
func (m Model) Week() *agenda.Week {
	if m.window != nil && m.window.Current() != nil {
		return m.window.Current()
	}
	return agenda.EmptyWeek(m.ref, m.opts.Policy)
}

// Ref returns the reference date of the displayed period.
func (m Model) Ref() string {
	return m.ref
}

// Cursor returns the selected position.
func (m Model) Cursor() Position {
	return m.cursor
}

// Loading reports whether a load is in flight.
func (m Model) Loading() bool {
	return m.loading
}

// Status returns the current status line.
func (m Model) Status() string {
	return m.statusMsg
}

// SelectedItem returns the item under the cursor, if any.
func (m Model) SelectedItem() (item.Item, bool) {
	d := m.Week().Day(m.cursor.Day)
	if d == nil || d.Len() == 0 {
		return item.Item{}, false
	}
	items := d.Items()
	idx := m.cursor.Index
	if idx >= len(items) {
		idx = len(items) - 1
	}
	return items[idx], true
}

// todayIndex returns the column of today in the displayed period, or 0.
func (m Model) todayIndex() int {
	w := agenda.ComputeWindow(m.ref, m.opts.Policy)
	if i := w.Index(dateutil.Today()); i >= 0 {
		return i
	}
	if i := w.Index(m.ref); i >= 0 {
		return i
	}
	return 0
}

// clampCursor keeps the item index inside the selected day.
func (m *Model) clampCursor() {
	if m.cursor.Day < 0 {
		m.cursor.Day = 0
	}
	if m.cursor.Day >= agenda.WindowDays {
		m.cursor.Day = agenda.WindowDays - 1
	}
	n := 0
	if d := m.Week().Day(m.cursor.Day); d != nil {
		n = d.Len()
	}
	if m.cursor.Index >= n {
		m.cursor.Index = n - 1
	}
	if m.cursor.Index < 0 {
		m.cursor.Index = 0
	}
}

func (m *Model) setStatus(msg string, isErr bool) tea.Cmd {
	m.statusMsg = msg
	m.statusTime = time.Now().Add(statusTimeout)
	m.isError = isErr
	return commands.ClearStatusAfter(statusTimeout)
}
