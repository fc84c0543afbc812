package ui

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cuida-app/cuida/internal/dateutil"
	"github.com/cuida-app/cuida/internal/item"
)

func (a *App) listCmd() *cobra.Command {
	var (
		startDate string
		endDate   string
		all       bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List local items with their IDs",
		Long: `List the items stored locally within a date range.

If no dates are specified, lists today's items.
If only --start is specified, lists items for that single day.
If both --start and --end are specified, lists items in that range (inclusive).
Repeating items are listed once, on the date they start.`,
		Example: `  cuida list
  cuida list --start=2025-09-13
  cuida list --start=2025-09-13 --end=2025-09-19
  cuida list --all`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			ctx := cmd.Context()

			var (
				items     []item.Item
				dateRange *dateutil.DateRange
				err       error
			)
			if all {
				items, err = a.repo.ListItems(ctx)
			} else {
				dateRange, err = dateutil.NewDateRange(startDate, endDate)
				if err != nil {
					return err
				}
				items, err = a.repo.ListItemsByDateRange(ctx, dateRange.Start, dateRange.End)
			}
			if err != nil {
				return fmt.Errorf("listing items: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(items) == 0 {
				if dateRange == nil {
					fmt.Fprintln(out, "No items found.")
				} else {
					fmt.Fprintf(out, "No items found in %s (%s).\n",
						rangeLabel(*dateRange), pluralize(dateRange.Days(), "day"))
				}
				return nil
			}

			opts := PrintOpts{Locale: a.config.Agenda.Locale, ShowIDs: true}
			maxDescWidth := opts.CalcMaxDescWidth(36)

			// Print items grouped by date
			var currentDate string
			for _, it := range items {
				if it.Date != currentDate {
					if currentDate != "" {
						fmt.Fprintln(out)
					}
					fmt.Fprintf(out, "=== %s ===\n", it.Date)
					currentDate = it.Date
				}
				fmt.Fprintln(out, ItemRow(it, opts, maxDescWidth))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&startDate, "start", "", "Start date (YYYY-MM-DD, defaults to today)")
	cmd.Flags().StringVar(&endDate, "end", "", "End date (YYYY-MM-DD, defaults to start date)")
	cmd.Flags().BoolVar(&all, "all", false, "List every stored item")

	return cmd
}

func rangeLabel(r dateutil.DateRange) string {
	if r.Start == r.End {
		return r.Start
	}
	return r.Start + " to " + r.End
}
