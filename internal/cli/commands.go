// Package cli implements the npresec-admin maintenance commands.
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Azechum30/npresec-app/internal/app/models/dto"
	"github.com/Azechum30/npresec-app/internal/bootstrap"
)

type rootOptions struct {
	configPath string
	open       Opener
}

// withAdmin opens a connection for the duration of fn
func (o *rootOptions) withAdmin(cmd *cobra.Command, fn func(ctx context.Context, a Admin) error) error {
	a, err := o.open(o.configPath)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(cmd.Context(), a)
}

// NewRootCommand builds the admin command tree; open connects to the database
func NewRootCommand(open Opener) *cobra.Command {
	opts := &rootOptions{open: open}

	root := &cobra.Command{
		Use:           "npresec-admin",
		Short:         "Maintenance tasks for the NPRESEC school management system",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", bootstrap.DefaultConfigPath, "path to the YAML configuration file")

	root.AddCommand(
		newMigrateCommand(opts),
		newSeedCommand(opts),
		newCreateUserCommand(opts),
		newResetPasswordCommand(opts),
		newCleanupTokensCommand(opts),
	)
	return root
}

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	var status bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withAdmin(cmd, func(ctx context.Context, a Admin) error {
				out := cmd.OutOrStdout()
				if status {
					pending, err := a.Pending(ctx)
					if err != nil {
						return err
					}
					if len(pending) == 0 {
						fmt.Fprintln(out, "Database is up to date")
						return nil
					}
					fmt.Fprintf(out, "%d pending migration(s):\n", len(pending))
					for _, p := range pending {
						fmt.Fprintln(out, "  "+p)
					}
					return nil
				}

				applied, err := a.Migrate(ctx)
				if err != nil {
					return fmt.Errorf("migration failed after %d applied: %w", applied, err)
				}
				fmt.Fprintf(out, "Applied %d migration(s)\n", applied)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&status, "status", false, "only list pending migrations")
	return cmd
}

func newSeedCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the permission catalog, built-in roles, administrator and departments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withAdmin(cmd, func(ctx context.Context, a Admin) error {
				if err := a.Seed(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Default data is in place")
				return nil
			})
		},
	}
}

func newCreateUserCommand(opts *rootOptions) *cobra.Command {
	var (
		req      dto.CreateUserRequest
		role     string
		inactive bool
	)
	cmd := &cobra.Command{
		Use:     "create-user",
		Short:   "Create a login account",
		Example: "npresec-admin create-user --email a.mensah@npresec.edu.gh --username amensah --first-name Ama --last-name Mensah --role teacher --password Passw0rd1",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(role) == "" {
				return fmt.Errorf("--role is required")
			}
			active := !inactive
			req.IsActive = &active

			return opts.withAdmin(cmd, func(ctx context.Context, a Admin) error {
				u, err := a.CreateUser(ctx, &req, role)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (id %d, role %s)\n", u.Username, u.ID, role)
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.Email, "email", "", "email address")
	f.StringVar(&req.Username, "username", "", "login name")
	f.StringVar(&req.FirstName, "first-name", "", "first name")
	f.StringVar(&req.LastName, "last-name", "", "last name")
	f.StringVar(&req.Password, "password", "", "initial password")
	f.StringVar(&role, "role", "", "role name, e.g. admin or teacher")
	f.BoolVar(&inactive, "inactive", false, "create the account disabled")
	for _, name := range []string{"email", "username", "first-name", "last-name", "password"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newResetPasswordCommand(opts *rootOptions) *cobra.Command {
	var login, password string
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password and end the account's sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withAdmin(cmd, func(ctx context.Context, a Admin) error {
				if err := a.ResetPassword(ctx, login, password); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Password reset for %s\n", login)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&login, "login", "", "email or username")
	cmd.Flags().StringVar(&password, "password", "", "new password")
	_ = cmd.MarkFlagRequired("login")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newCleanupTokensCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup-tokens",
		Short: "Remove expired and long-revoked refresh tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withAdmin(cmd, func(ctx context.Context, a Admin) error {
				removed, err := a.CleanupTokens(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d refresh token(s)\n", removed)
				return nil
			})
		},
	}
}
