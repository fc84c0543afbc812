package ui

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/cuida-app/cuida/internal/agenda"
	"github.com/cuida-app/cuida/internal/calexport"
	"github.com/cuida-app/cuida/internal/dateutil"
	"github.com/cuida-app/cuida/internal/debuglog"
	"github.com/cuida-app/cuida/internal/summary"
)

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

type windowFlags struct {
	ref    string
	next   bool
	prev   bool
	policy string
	source string
}

func (f *windowFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.ref, "ref", "", "Reference date (YYYY-MM-DD, today, tomorrow, weekday name; default: today)")
	cmd.Flags().BoolVar(&f.next, "next", false, "Show the week after the reference date")
	cmd.Flags().BoolVar(&f.prev, "prev", false, "Show the week before the reference date")
	cmd.Flags().StringVar(&f.policy, "policy", "", "Window policy: rolling or sunday (default from config)")
	cmd.Flags().StringVar(&f.source, "source", "", "Item source: local or remote (default from config)")
}

// refKey resolves the reference date and applies --next/--prev.
func (f *windowFlags) refKey(now time.Time) (string, error) {
	if f.next && f.prev {
		return "", errors.New("--next and --prev cannot be combined")
	}
	key, err := dateutil.ParseRelativeDate(f.ref, now)
	if err != nil {
		return "", err
	}
	switch {
	case f.next:
		key = agenda.ShiftWeek(key, 1)
	case f.prev:
		key = agenda.ShiftWeek(key, -1)
	}
	return key, nil
}

func (a *App) weekCmd() *cobra.Command {
	var (
		wf       windowFlags
		model    string
		insight  bool
		copyWeek bool
		verbose  bool
		noColor  bool
	)

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Show the seven-day agenda",
		Long: `Display seven days of appointments and reminders with their counts.

The rolling policy starts at the reference date; the sunday policy shows
the Sunday-to-Saturday week holding it. Repeating items appear on every
day they occur. A failed fetch still shows the empty window.`,
		Example: `  cuida week
  cuida week --next
  cuida week --ref=2025-09-13 --policy=sunday
  cuida week --source=remote --insight --copy`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if noColor {
				DisableColor()
			}
			ctx := cmd.Context()

			ref, err := wf.refKey(time.Now())
			if err != nil {
				return err
			}
			policy, err := a.policy(wf.policy)
			if err != nil {
				return err
			}
			src, _, err := a.source(ctx, wf.source)
			if err != nil {
				return err
			}
			locale := a.config.Agenda.Locale

			ws, err := summary.BuildWeekSummary(ctx, src, summary.BuildWeekSummaryOptions{
				Ref:            ref,
				Policy:         policy,
				IncludeInsight: insight,
				Locale:         locale,
				LLM:            a.llmOptions(model),
			})
			if err != nil {
				debuglog.Error("week", err)
				fmt.Fprintln(cmd.ErrOrStderr(), formatWarn("could not load items: "+explain(err).Error()))
				ws = summary.SummarizeWeek(agenda.EmptyWeek(ref, policy))
			}

			out := cmd.OutOrStdout()
			PrintWeek(out, ws, PrintOpts{Locale: locale, Verbose: verbose})

			if ws.InsightErr != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), formatWarn("insight unavailable: "+ws.InsightErr.Error()))
			}
			if ws.Insight != "" {
				fmt.Fprintln(out)
				fmt.Fprintf(out, "  %s\n", formatHeader("INSIGHT"))
				fmt.Fprintln(out, strings.Repeat("─", ruleWidth))
				PrintInsightWrapped(out, ws.Insight, 72)
			}

			if copyWeek {
				if err := writeClipboard(ws.PlainText(locale)); err != nil {
					return fmt.Errorf("copying to clipboard: %w", err)
				}
				fmt.Fprintln(out, formatMuted("  Copied to clipboard."))
			}

			fmt.Fprintln(out)
			return nil
		},
	}

	wf.register(cmd)
	cmd.Flags().StringVar(&model, "model", "", "LLM model to use (default from config)")
	cmd.Flags().BoolVar(&insight, "insight", false, "Add an LLM caregiving digest")
	cmd.Flags().BoolVar(&copyWeek, "copy", false, "Copy the week as plain text to the clipboard")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show full descriptions")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable color output")
	return cmd
}

func (a *App) exportCmd() *cobra.Command {
	var (
		wf      windowFlags
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the week as an iCalendar file",
		Long: `Write the seven-day window as iCalendar (.ics), one event per
occurrence, to stdout or to --out.`,
		Example: `  cuida export --out week.ics
  cuida export --next --source=remote > next-week.ics`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			ref, err := wf.refKey(time.Now())
			if err != nil {
				return err
			}
			policy, err := a.policy(wf.policy)
			if err != nil {
				return err
			}
			src, _, err := a.source(ctx, wf.source)
			if err != nil {
				return err
			}

			week, err := agenda.Load(ctx, src, ref, policy)
			if err != nil {
				return explain(err)
			}

			if outPath == "" {
				return calexport.Write(cmd.OutOrStdout(), week, time.Now())
			}

			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("creating %s: %w", outPath, err)
			}
			if err := calexport.Write(f, week, time.Now()); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("closing %s: %w", outPath, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", pluralize(week.Stats().Total, "item"), outPath)
			return nil
		},
	}

	wf.register(cmd)
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default: stdout)")
	return cmd
}
