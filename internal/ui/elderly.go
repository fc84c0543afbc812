package ui

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cuida-app/cuida/internal/remote"
)

func (a *App) elderlyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "elderly",
		Short: "Show or register the person you care for",
	}
	cmd.AddCommand(a.elderlyShowCmd())
	cmd.AddCommand(a.elderlyRegisterCmd())
	return cmd
}

func (a *App) elderlyShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the registered elderly person",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.ensureBackend(ctx); err != nil {
				return err
			}

			e, err := a.backend.LookupElderly(ctx)
			if err != nil {
				return explain(err)
			}

			out := cmd.OutOrStdout()
			if e == nil {
				fmt.Fprintln(out, "No elderly person registered yet.")
				fmt.Fprintln(out, formatMuted("Run 'cuida elderly register' to add one."))
				return nil
			}
			printElderly(cmd, e)
			return nil
		},
	}
}

func (a *App) elderlyRegisterCmd() *cobra.Command {
	var form remote.ElderlyForm

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register the elderly person",
		Long: `Register the person you care for. Name, e-mail and password are
required; the password is prompted when not given.`,
		Example: `  cuida elderly register --name "Maria Souza" --email maria@example.com`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.ensureBackend(ctx); err != nil {
				return err
			}

			if form.Password == "" {
				p, err := readSecret(cmd, "Password: ")
				if err != nil {
					return err
				}
				form.Password = p
				if form.Confirm == "" {
					c, err := readSecret(cmd, "Confirm password: ")
					if err != nil {
						return err
					}
					form.Confirm = c
				}
			}

			e, err := a.backend.RegisterElderly(ctx, form)
			if err != nil {
				return explain(err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Registered.")
			printElderly(cmd, e)
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Name, "name", "", "Full name (required)")
	cmd.Flags().StringVar(&form.Email, "email", "", "E-mail address (required)")
	cmd.Flags().StringVarP(&form.Password, "password", "p", "", "Password (prompted when empty)")
	cmd.Flags().StringVar(&form.Confirm, "confirm", "", "Password confirmation")

	return cmd
}

func printElderly(cmd *cobra.Command, e *remote.Elderly) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "  %s\n", formatHeader(e.Name))
	if e.Email != "" {
		fmt.Fprintf(out, "  %s\n", formatMuted(e.Email))
	}

	lastCheckIn := e.LastCheckIn
	if lastCheckIn == "" {
		lastCheckIn = "never"
	}
	fmt.Fprintf(out, "  Last check-in: %s\n", lastCheckIn)

	if e.TodayCheckInDone {
		fmt.Fprintf(out, "  Today: %s\n", formatStats("checked in"))
	} else {
		fmt.Fprintf(out, "  Today: %s\n", formatWarn("no check-in yet"))
	}
}
