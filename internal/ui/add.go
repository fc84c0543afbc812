package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cuida-app/cuida/internal/agenda"
	"github.com/cuida-app/cuida/internal/dateutil"
	"github.com/cuida-app/cuida/internal/debuglog"
	"github.com/cuida-app/cuida/internal/item"
	"github.com/cuida-app/cuida/internal/llm"
)

type addFlags struct {
	id          string
	date        string
	clock       string
	description string
	dose        string
	every       int
	unit        string
	remote      bool
	ai          bool
}

func (a *App) addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an event or a medication reminder",
		Long: `Add an agenda item. Passing --id of an existing item replaces it,
since every edit resubmits the whole form.

With --remote the item is also sent to the caregiving service.
With --ai the argument is a free-text note turned into an item by the LLM.`,
	}

	cmd.AddCommand(a.addKindCmd(item.KindEvent))
	cmd.AddCommand(a.addKindCmd(item.KindMed))
	return cmd
}

func (a *App) addKindCmd(kind item.Kind) *cobra.Command {
	var f addFlags

	use, short, example := "event [title]", "Add an event", `  cuida add event "Cardiologist" --date=2025-09-15 --time=14:00
  cuida add event "Physiotherapy" --date=monday --every=1 --unit=weekly
  cuida add event --ai "dentist next friday at 9"`
	if kind == item.KindMed {
		use, short, example = "med [name]", "Add a medication or procedure reminder", `  cuida add med "Losartana" --dose=50mg --time=08:00 --every=1 --unit=daily
  cuida add med "Blood test" --date=2025-09-20 --desc="fasting"`
	}

	cmd := &cobra.Command{
		Use:     use,
		Short:   short,
		Example: example,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.ensureRepo(); err != nil {
				return err
			}

			var form item.Form
			if f.ai {
				drafted, err := a.draftForm(ctx, kind, args[0])
				if err != nil {
					return err
				}
				form = drafted
			} else {
				form = f.form(kind, args[0], time.Now())
			}
			form.ID = f.id

			it, err := item.New(form)
			if err != nil {
				return err
			}

			if err := a.saveItem(ctx, it, f.remote); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s %q on %s at %s (id %s)\n",
				strings.ToLower(it.Kind.Label()),
				it.Title,
				dateutil.DayLabel(it.Date, a.config.Agenda.Locale),
				it.SortTime(),
				it.ID,
			)
			if it.Recurrence.Repeats() {
				fmt.Fprintf(cmd.OutOrStdout(), "  repeats %s\n", RepeatLabel(it.Recurrence))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&f.id, "id", "", "ID of an item to replace")
	cmd.Flags().StringVar(&f.date, "date", "", "Date (YYYY-MM-DD, today, tomorrow, weekday name; default: today)")
	cmd.Flags().StringVar(&f.clock, "time", "", "Time (HH:MM, optional)")
	cmd.Flags().StringVar(&f.description, "desc", "", "Description")
	cmd.Flags().IntVar(&f.every, "every", 0, "Repeat every N units (requires --unit)")
	cmd.Flags().StringVar(&f.unit, "unit", "", "Repeat unit: daily, weekly, monthly, quarterly, yearly or unique")
	cmd.Flags().BoolVar(&f.remote, "remote", a.config.UsesRemote(), "Also save to the caregiving service")
	cmd.Flags().BoolVar(&f.ai, "ai", false, "Draft the item from a free-text note with the LLM")
	if kind == item.KindMed {
		cmd.Flags().StringVar(&f.dose, "dose", "", "Dose, e.g. 500mg")
	}

	return cmd
}

// form builds the item form from flags. A relative date is resolved against
// now; anything unparseable is passed through so validation reports it.
func (f addFlags) form(kind item.Kind, title string, now time.Time) item.Form {
	date := f.date
	if resolved, err := dateutil.ParseRelativeDate(f.date, now); err == nil {
		date = resolved
	}

	unit := strings.TrimSpace(f.unit)
	repeated := unit != "" && !strings.EqualFold(unit, string(item.FrequencyUnique))
	frequency := f.every
	if !repeated {
		frequency = 0
	}

	return item.Form{
		Kind:          string(kind),
		Title:         title,
		Date:          date,
		Time:          f.clock,
		Description:   f.description,
		Dose:          f.dose,
		Repeated:      repeated,
		Frequency:     frequency,
		FrequencyUnit: unit,
	}
}

// llmOptions builds provider options from the config. A non-empty model
// replaces the configured one.
func (a *App) llmOptions(model string) llm.Options {
	timeout, _ := a.config.LLMTimeout()
	if model == "" {
		model = a.config.LLM.Model
	}
	return llm.Options{
		Provider: a.config.LLM.Provider,
		Model:    model,
		BaseURL:  a.config.LLM.BaseURL,
		Timeout:  timeout,
	}
}

// draftForm asks the LLM to turn a note into a form. The subcommand decides
// the kind.
func (a *App) draftForm(ctx context.Context, kind item.Kind, note string) (item.Form, error) {
	client, err := llm.NewClient(a.llmOptions(""))
	if err != nil {
		return item.Form{}, fmt.Errorf("creating LLM client: %w", err)
	}

	now := time.Now()
	var existing []item.Item
	if week, err := agenda.Load(ctx, a.repo, dateutil.Encode(now), agenda.PolicyRolling); err == nil {
		existing = week.AllItems()
	}

	draft, err := llm.NewAssistant(client).Draft(ctx, llm.DraftRequest{
		Input:    note,
		Now:      now,
		Existing: existing,
	})
	if err != nil {
		return item.Form{}, err
	}
	debuglog.Log("AI_DRAFT", map[string]any{"note": debuglog.Truncate(note, 120), "title": draft.Title})

	draft.Type = string(kind)
	return draft.Form(now), nil
}

// saveItem sends the item to the service when asked, then upserts it locally.
// A failed remote save stores nothing.
func (a *App) saveItem(ctx context.Context, it *item.Item, toRemote bool) error {
	if toRemote {
		if err := a.ensureBackend(ctx); err != nil {
			return err
		}
		if err := a.backend.CreateTask(ctx, it); err != nil {
			return explain(fmt.Errorf("saving to the service: %w", err))
		}
	}

	if err := a.repo.UpsertItem(ctx, it); err != nil {
		return fmt.Errorf("saving item: %w", err)
	}
	return nil
}

func (a *App) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a local item",
		Long: `Delete an item from the local agenda.

The caregiving service has no delete operation, so remote copies stay.
Item IDs are shown by 'cuida list'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			id := strings.TrimSpace(args[0])
			if err := a.repo.DeleteItem(cmd.Context(), id); err != nil {
				if errors.Is(err, item.ErrItemNotFound) {
					return fmt.Errorf("no item with id %q", id)
				}
				return fmt.Errorf("deleting item: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted item %s\n", id)
			return nil
		},
	}
}
