package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (c *cli) rescoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rescore",
		Short: "Recompute the match scores of every stored CV once",
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			start := time.Now()
			changed, err := rt.recruiting.RescoreAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("rescore: %w", err)
			}
			log.Info("rescore complete", zap.Int("changed", changed), zap.Duration("took", time.Since(start)))
			fmt.Fprintf(cmd.OutOrStdout(), "rescored %d CV(s)\n", changed)
			return nil
		},
	}
}
