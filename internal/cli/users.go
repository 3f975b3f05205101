package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"hrhelper/recruiter-service/internal/model"
	"hrhelper/recruiter-service/internal/store"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

func (c *cli) usersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage recruiter accounts",
	}
	cmd.AddCommand(
		c.usersCreateCommand(),
		c.usersListCommand(),
		c.usersSetPasswordCommand(),
		c.usersDeleteCommand(),
	)
	return cmd
}

// withRuntime loads config, opens storage and runs fn.
func (c *cli) withRuntime(cmd *cobra.Command, fn func(ctx context.Context, rt *runtime) error) error {
	cfg, log, err := c.load()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	rt, err := open(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(cmd.Context(), rt)
}

func (c *cli) usersCreateCommand() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" {
				return errors.New("--email is required")
			}
			return c.withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
				if password == "" {
					p, err := promptPassword(cmd)
					if err != nil {
						return err
					}
					password = p
				}
				u, err := rt.identity.CreateUser(ctx, email, password)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", u.Email, u.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when empty)")
	return cmd
}

func (c *cli) usersListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
				users, err := rt.store.ListUsers(ctx)
				if err != nil {
					return fmt.Errorf("list users: %w", err)
				}
				return printUsers(cmd.OutOrStdout(), users)
			})
		},
	}
}

func (c *cli) usersSetPasswordCommand() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "set-password",
		Short: "Replace an account's password and sign it out everywhere",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" {
				return errors.New("--email is required")
			}
			return c.withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
				u, err := findUser(ctx, rt, email)
				if err != nil {
					return err
				}
				if password == "" {
					p, err := promptPassword(cmd)
					if err != nil {
						return err
					}
					password = p
				}
				if err := rt.identity.SetPassword(ctx, u.ID, password); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "password updated for %s\n", u.Email)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "new password (prompted when empty)")
	return cmd
}

func (c *cli) usersDeleteCommand() *cobra.Command {
	var (
		email string
		yes   bool
	)
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete an account together with its offers and CVs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" {
				return errors.New("--email is required")
			}
			return c.withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
				u, err := findUser(ctx, rt, email)
				if err != nil {
					return err
				}
				if !yes {
					ok, err := confirm(cmd, fmt.Sprintf("Delete %s and all of their offers?", u.Email))
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintln(cmd.OutOrStdout(), "aborted")
						return nil
					}
				}
				if err := rt.identity.DeleteUser(ctx, u.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", u.Email)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func findUser(ctx context.Context, rt *runtime, email string) (*model.User, error) {
	u, err := rt.store.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("user %s not found", email)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return u, nil
}

func printUsers(w io.Writer, users []model.User) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEMAIL\tCREATED")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", u.ID, u.Email, u.CreatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

func promptPassword(cmd *cobra.Command) (string, error) {
	p := promptui.Prompt{
		Label:  "Password",
		Mask:   '*',
		Stdin:  io.NopCloser(cmd.InOrStdin()),
		Stdout: nopWriteCloser{cmd.OutOrStdout()},
		Validate: func(s string) error {
			if len(s) == 0 {
				return errors.New("password is required")
			}
			return nil
		},
	}
	return p.Run()
}

func confirm(cmd *cobra.Command, label string) (bool, error) {
	prompt := promptui.Select{
		Label:  label,
		Items:  []string{PromptNo, PromptYes},
		Stdin:  io.NopCloser(cmd.InOrStdin()),
		Stdout: nopWriteCloser{cmd.OutOrStdout()},
	}
	_, choice, err := prompt.Run()
	if err != nil {
		return false, err
	}
	return choice == PromptYes, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
