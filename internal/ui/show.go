package ui

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cuida-app/cuida/internal/agenda"
	"github.com/cuida-app/cuida/internal/dateutil"
)

func (a *App) showCmd() *cobra.Command {
	var (
		verbose bool
		noColor bool
		source  string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show today's items",
		Long: `Display today's appointments and reminders, repeating items included.

This is a quick view of one day. Use 'cuida week' for the whole window.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if noColor {
				DisableColor()
			}
			ctx := cmd.Context()

			src, _, err := a.source(ctx, source)
			if err != nil {
				return err
			}

			today := dateutil.Today()
			week, err := agenda.Load(ctx, src, today, agenda.PolicyRolling)
			if err != nil {
				return explain(fmt.Errorf("fetching items: %w", err))
			}

			out := cmd.OutOrStdout()
			day := week.DayByDate(today)
			if day.Len() == 0 {
				fmt.Fprintln(out, "Nothing scheduled for today.")
				return nil
			}

			fmt.Fprintf(out, "=== %s ===\n\n", formatHeader(dateutil.DayLabel(today, a.config.Agenda.Locale)))

			opts := PrintOpts{Locale: a.config.Agenda.Locale, Verbose: verbose}
			maxDescWidth := opts.CalcMaxDescWidth(50)
			meds := 0
			for _, it := range day.Items() {
				fmt.Fprintln(out, ItemRow(it, opts, maxDescWidth))
				if it.IsMed() {
					meds++
				}
			}

			fmt.Fprintln(out)
			fmt.Fprintf(out, "%s | %s\n",
				formatEvent(fmt.Sprintf("Events: %d", day.Len()-meds)),
				formatMed(fmt.Sprintf("Meds: %d", meds)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show full descriptions")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable color output")
	cmd.Flags().StringVar(&source, "source", "", "Item source: local or remote (default from config)")
	return cmd
}
