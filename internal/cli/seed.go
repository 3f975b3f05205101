package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"hrhelper/recruiter-service/internal/fixtures"
	"hrhelper/recruiter-service/internal/model"
	"hrhelper/recruiter-service/internal/store"
)

func (c *cli) seedCommand() *cobra.Command {
	var (
		file     string
		email    string
		password string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo offers and CVs for a user",
		Long: "Load offers and CVs from a YAML file (or the built-in demo data) on behalf of --email.\n" +
			"The account is created when it does not exist and --password is given.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" {
				return errors.New("--email is required")
			}
			cfg, log, err := c.load()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			data, err := loadFixtures(file)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			rt, err := open(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer rt.Close()

			u, err := ensureUser(ctx, rt, email, password)
			if err != nil {
				return err
			}

			res, err := fixtures.Seed(ctx, rt.recruiting, u.ID.String(), data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d offer(s) and %d CV(s) for %s\n", res.Offers, res.CVs, u.Email)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML fixtures file (default: built-in demo data)")
	cmd.Flags().StringVar(&email, "email", "", "owner of the seeded offers")
	cmd.Flags().StringVar(&password, "password", "", "password used when the owner has to be created")
	return cmd
}

func loadFixtures(path string) (*fixtures.File, error) {
	if path == "" {
		return fixtures.Sample()
	}
	return fixtures.LoadFile(path)
}

func ensureUser(ctx context.Context, rt *runtime, email, password string) (*model.User, error) {
	u, err := rt.store.GetUserByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if password == "" {
		return nil, fmt.Errorf("user %s does not exist; pass --password to create it", email)
	}
	return rt.identity.CreateUser(ctx, email, password)
}
