package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/cuida-app/cuida/internal/agenda"
	"github.com/cuida-app/cuida/internal/dateutil"
	"github.com/cuida-app/cuida/internal/item"
	"github.com/cuida-app/cuida/internal/summary"
)

const ruleWidth = 74

// PrintOpts configures item printing behavior.
type PrintOpts struct {
	Locale       string
	Verbose      bool // Show full descriptions
	ShowIDs      bool // Append the item ID, needed for delete and edit
	MaxDescWidth int  // Maximum text width (0 = auto)
}

// CalcMaxDescWidth calculates the maximum text width based on options.
func (o PrintOpts) CalcMaxDescWidth(defaultWidth int) int {
	if o.MaxDescWidth > 0 {
		return o.MaxDescWidth
	}
	if !o.Verbose {
		return defaultWidth
	}
	// "  HH:MM  [E]  " is 14 columns, the repeat marker about 16 more
	available := termWidth() - 30
	if o.ShowIDs {
		available -= 38
	}
	if available > defaultWidth {
		return available
	}
	return defaultWidth
}

// ItemRow renders a single item line.
func ItemRow(it item.Item, opts PrintOpts, maxDescWidth int) string {
	clock := it.Time
	if clock == "" {
		clock = "--:--"
	}

	var tag string
	if it.IsMed() {
		tag = formatMed("[M]")
	} else {
		tag = formatEvent("[E]")
	}

	text := it.Title
	if it.Dose != "" {
		text += " · " + it.Dose
	}
	if it.Description != "" {
		text += " - " + it.Description
	}
	if maxDescWidth > 0 {
		text = ansi.Truncate(text, maxDescWidth, "...")
	}

	row := fmt.Sprintf("  %s  %s  %s", clock, tag, text)
	if it.Recurrence.Repeats() {
		row += "  " + formatMuted("↻ "+RepeatLabel(it.Recurrence))
	}
	if opts.ShowIDs {
		row += "  " + formatMuted(it.ID)
	}
	return row
}

// RepeatLabel describes a recurrence, e.g. "daily" or "every 2 weeks".
func RepeatLabel(r *item.Recurrence) string {
	if !r.Repeats() {
		return "once"
	}

	var single, plural string
	switch r.Unit {
	case item.FrequencyDaily:
		single, plural = "daily", "days"
	case item.FrequencyWeekly:
		single, plural = "weekly", "weeks"
	case item.FrequencyMonthly:
		single, plural = "monthly", "months"
	case item.FrequencyQuarterly:
		single, plural = "quarterly", "quarters"
	case item.FrequencyYearly:
		single, plural = "yearly", "years"
	default:
		return strings.ToLower(string(r.Unit))
	}

	if r.Frequency == 1 {
		return single
	}
	return fmt.Sprintf("every %d %s", r.Frequency, plural)
}

// PrintWeek prints the window heading followed by every day and its items.
func PrintWeek(w io.Writer, ws *summary.WeekSummary, opts PrintOpts) {
	maxDescWidth := opts.CalcMaxDescWidth(44)

	fmt.Fprintf(w, "\n  %s\n", formatHeader(strings.ToUpper(ws.Headline(opts.Locale))))
	fmt.Fprintln(w, strings.Repeat("─", ruleWidth))

	for i := 0; i < agenda.WindowDays; i++ {
		day := ws.Week.Day(i)
		if i > 0 {
			fmt.Fprintln(w)
		}
		PrintDayHeading(w, day, opts.Locale)

		if day.Len() == 0 {
			fmt.Fprintf(w, "  %s\n", formatMuted("No items."))
			continue
		}
		for _, it := range day.Items() {
			fmt.Fprintln(w, ItemRow(it, opts, maxDescWidth))
		}
	}

	fmt.Fprintln(w, strings.Repeat("─", ruleWidth))
	PrintStats(w, ws, opts.Locale)
}

// PrintDayHeading prints a day label, highlighting today.
func PrintDayHeading(w io.Writer, day *agenda.Day, locale string) {
	label := dateutil.DayLabel(day.Date, locale)
	if day.IsToday() {
		fmt.Fprintf(w, "  %s %s\n", formatToday(label), formatMuted("(today)"))
		return
	}
	fmt.Fprintf(w, "  %s\n", formatHeader(label))
}

// PrintStats prints the week's counts and busiest day.
func PrintStats(w io.Writer, ws *summary.WeekSummary, locale string) {
	st := ws.Stats
	fmt.Fprintf(w, "  %s  |  %s  |  %s  |  Repeating: %d\n",
		formatStats(fmt.Sprintf("Week total: %d", st.Total)),
		formatEvent(fmt.Sprintf("Events: %d", st.Events)),
		formatMed(fmt.Sprintf("Meds: %d", st.Meds)),
		st.Repeating)

	if st.BusiestDay >= 0 {
		day := ws.Week.Day(st.BusiestDay)
		fmt.Fprintf(w, "  Busiest day: %s (%s)\n",
			dateutil.DayLabel(day.Date, locale),
			formatStats(pluralize(st.DayCounts[st.BusiestDay], "item")))
	}
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// PrintInsightWrapped formats and prints insight text preserving structure.
func PrintInsightWrapped(w io.Writer, text string, width int) {
	// Strip markdown code blocks
	text = stripMarkdownCodeBlocks(text)

	lines := strings.Split(text, "\n")
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			fmt.Fprintln(w)
			continue
		}

		// Detect and format special line types
		prefix, content, contentWidth, isHeader := parseInsightLine(trimmed, width)
		if isHeader {
			fmt.Fprintln(w)
			fmt.Fprintln(w, formatHeader("  "+content))
			continue
		}

		wrapAndPrint(w, content, prefix, contentWidth)
	}
}

// parseInsightLine parses a line and returns formatting info.
// Returns: prefix, content, contentWidth, isHeader
func parseInsightLine(trimmed string, width int) (prefix, content string, contentWidth int, isHeader bool) {
	prefix = "  "
	content = trimmed
	contentWidth = width - 2

	switch {
	case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
		// Bullet point
		prefix = "    • "
		content = strings.TrimPrefix(strings.TrimPrefix(trimmed, "- "), "* ")
		contentWidth = width - 6

	case strings.HasPrefix(trimmed, "#"):
		content = strings.TrimLeft(trimmed, "# ")
		isHeader = true

	case strings.HasPrefix(trimmed, ">"):
		content = strings.TrimPrefix(trimmed, "> ")
		prefix = "  │ "
		contentWidth = width - 4

	case isNumberedItem(trimmed):
		// Numbered item (1. or 10.)
		idx := strings.Index(trimmed, ".")
		prefix = "  " + trimmed[:idx+1] + " "
		content = strings.TrimSpace(trimmed[idx+1:])
		contentWidth = width - len(prefix)
	}

	return prefix, content, contentWidth, isHeader
}

// isNumberedItem checks if a line starts with a number followed by a period.
func isNumberedItem(s string) bool {
	if len(s) < 3 {
		return false
	}
	if s[0] < '1' || s[0] > '9' {
		return false
	}
	if s[1] == '.' {
		return true
	}
	if s[1] >= '0' && s[1] <= '9' && len(s) > 3 && s[2] == '.' {
		return true
	}
	return false
}

// wrapAndPrint wraps text to width and prints with the given prefix.
func wrapAndPrint(w io.Writer, text, prefix string, width int) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return
	}

	line := ""
	continuationPrefix := strings.Repeat(" ", ansi.StringWidth(prefix))
	isFirstLine := true

	for _, word := range words {
		switch {
		case line == "":
			line = word
		case ansi.StringWidth(line)+1+ansi.StringWidth(word) <= width:
			line += " " + word
		default:
			printLine(w, prefix, continuationPrefix, line, isFirstLine)
			isFirstLine = false
			line = word
		}
	}

	if line != "" {
		printLine(w, prefix, continuationPrefix, line, isFirstLine)
	}
}

func printLine(w io.Writer, prefix, continuationPrefix, line string, isFirstLine bool) {
	if isFirstLine {
		fmt.Fprintln(w, formatInsight(prefix+line))
	} else {
		fmt.Fprintln(w, formatInsight(continuationPrefix+line))
	}
}

// stripMarkdownCodeBlocks removes ```...``` fences from text.
func stripMarkdownCodeBlocks(text string) string {
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inCodeBlock = !inCodeBlock
			continue // Skip the fence line
		}
		if !inCodeBlock {
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}
