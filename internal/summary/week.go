// Package summary provides shared week summary utilities.
package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cuida-app/cuida/internal/agenda"
	"github.com/cuida-app/cuida/internal/dateutil"
	"github.com/cuida-app/cuida/internal/llm"
)

// WeekSummary holds a loaded week, its counts and an optional insight.
type WeekSummary struct {
	Week    *agenda.Week
	Stats   agenda.Stats
	Insight string

	// InsightErr is set when an insight was requested but could not be produced.
	InsightErr error
}

// BuildWeekSummaryOptions configures the source-backed summary builder.
type BuildWeekSummaryOptions struct {
	Ref            string // reference date key, default today
	Policy         agenda.Policy
	IncludeInsight bool
	Locale         string
	LLM            llm.Options

	// Client overrides the client built from LLM.
	Client llm.Client
}

// SummarizeWeek computes the counts of an already loaded week.
func SummarizeWeek(week *agenda.Week) *WeekSummary {
	return &WeekSummary{
		Week:  week,
		Stats: week.Stats(),
	}
}

// BuildWeekSummary loads the window around opts.Ref from src and optionally
// adds an LLM insight. Insight is skipped for an empty week. Only a load
// failure is returned as an error; insight failures land in InsightErr.
func BuildWeekSummary(ctx context.Context, src agenda.Source, opts BuildWeekSummaryOptions) (*WeekSummary, error) {
	ref := opts.Ref
	if ref == "" {
		ref = dateutil.Today()
	}

	week, err := agenda.Load(ctx, src, ref, opts.Policy)
	if err != nil {
		return nil, fmt.Errorf("loading week: %w", err)
	}
	summary := SummarizeWeek(week)

	if opts.IncludeInsight && summary.Stats.Total > 0 {
		summary.Insight, summary.InsightErr = insight(ctx, week, opts)
	}

	return summary, nil
}

func insight(ctx context.Context, week *agenda.Week, opts BuildWeekSummaryOptions) (string, error) {
	client := opts.Client
	if client == nil {
		if opts.LLM.Model == "" {
			return "", errors.New("model is required for insight")
		}
		var err error
		client, err = llm.NewClient(opts.LLM)
		if err != nil {
			return "", fmt.Errorf("creating LLM client: %w", err)
		}
	}
	return llm.NewDigester(client, opts.Locale).Summarize(ctx, week)
}

// Headline returns the window label, e.g. "Sep 13 – Sep 19, 2025".
func (s *WeekSummary) Headline(locale string) string {
	return dateutil.RangeLabel(s.Week.Window.Start(), s.Week.Window.End(), locale)
}

// PlainText renders the week without colors, for the clipboard.
func (s *WeekSummary) PlainText(locale string) string {
	var sb strings.Builder

	sb.WriteString(s.Headline(locale) + "\n")
	for i := 0; i < agenda.WindowDays; i++ {
		day := s.Week.Day(i)
		label := dateutil.DayLabel(day.Date, locale)
		if day.IsToday() {
			label += " (" + todayWord(locale) + ")"
		}
		sb.WriteString("\n" + label + "\n")

		if day.Len() == 0 {
			sb.WriteString("  " + emptyWord(locale) + "\n")
			continue
		}
		for _, it := range day.Items() {
			line := fmt.Sprintf("  %s  %s", it.SortTime(), it.Title)
			if it.Dose != "" {
				line += " (" + it.Dose + ")"
			}
			if it.Description != "" {
				line += " - " + it.Description
			}
			sb.WriteString(line + "\n")
		}
	}

	fmt.Fprintf(&sb, "\n%s\n", s.TotalsLine(locale))
	if s.Insight != "" {
		sb.WriteString("\n" + s.Insight + "\n")
	}
	return sb.String()
}

// TotalsLine renders the week's counts on one line.
func (s *WeekSummary) TotalsLine(locale string) string {
	st := s.Stats
	if locale == dateutil.LocalePortuguese {
		return fmt.Sprintf("Total semana: %d · eventos %d · remédios %d", st.Total, st.Events, st.Meds)
	}
	return fmt.Sprintf("Week total: %d · events %d · meds %d", st.Total, st.Events, st.Meds)
}

func todayWord(locale string) string {
	if locale == dateutil.LocalePortuguese {
		return "hoje"
	}
	return "today"
}

func emptyWord(locale string) string {
	if locale == dateutil.LocalePortuguese {
		return "Sem itens."
	}
	return "No items."
}
