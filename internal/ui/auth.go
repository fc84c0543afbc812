package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cuida-app/cuida/internal/session"
)

func (a *App) loginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the caregiving service",
		Long: `Sign in with your caregiver account.

The credential is kept in the local database and shared by every
cuida process using it. The password is prompted when not given.`,
		Example: `  cuida login --username ana`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.ensureBackend(ctx); err != nil {
				return err
			}

			if password == "" {
				p, err := readSecret(cmd, "Password: ")
				if err != nil {
					return err
				}
				password = p
			}

			form := session.LoginForm{Username: username, Password: password}
			if err := a.session.Login(ctx, a.backend, form); err != nil {
				return explain(err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", userLabel(a.session.User()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username (required)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when empty)")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func (a *App) registerCmd() *cobra.Command {
	var form session.RegisterForm

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a caregiver account",
		Long: `Create a caregiver account and sign in with it.

Name and username need at least 2 characters, the password at least 3.`,
		Example: `  cuida register --name "Ana Souza" --username ana --email ana@example.com`,
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

			if err := a.session.Register(ctx, a.backend, form); err != nil {
				return explain(err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Account created. Signed in as %s\n", userLabel(a.session.User()))
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Name, "name", "", "Full name (required)")
	cmd.Flags().StringVarP(&form.Username, "username", "u", "", "Username (required)")
	cmd.Flags().StringVar(&form.Email, "email", "", "E-mail address")
	cmd.Flags().StringVarP(&form.Password, "password", "p", "", "Password (prompted when empty)")
	cmd.Flags().StringVar(&form.Confirm, "confirm", "", "Password confirmation")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func (a *App) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored credential",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.ensureSession(ctx); err != nil {
				return err
			}
			if err := a.session.Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func (a *App) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in caregiver",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureSession(cmd.Context()); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !a.session.SignedIn() {
				fmt.Fprintln(out, "Not signed in.")
				return nil
			}
			u := a.session.User()
			fmt.Fprintln(out, userLabel(u))
			if u != nil && u.Email != "" {
				fmt.Fprintf(out, "  %s\n", formatMuted(u.Email))
			}
			return nil
		},
	}
}

func userLabel(u *session.User) string {
	if u == nil {
		return "unknown user"
	}
	if u.Name != "" && u.Name != u.Username {
		return fmt.Sprintf("%s (%s)", u.Name, u.Username)
	}
	return u.Username
}

// readSecret prompts for a password. Input is hidden on a terminal and read
// as a plain line otherwise.
func readSecret(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)

	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
