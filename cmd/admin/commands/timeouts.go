package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/stillwater-dev/inboxd/internal/config"
	"github.com/stillwater-dev/inboxd/internal/database"
	"github.com/stillwater-dev/inboxd/internal/services/retention"
	"go.uber.org/zap"
)

// NewTimeoutsCmd creates the stuck-processing sweep command
func NewTimeoutsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timeouts",
		Short: "Fail items stuck in processing",
		Long:  "Move items that have sat in processing past the timeout window to the error queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer func() {
				if err := db.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
				}
			}()

			itemRepo := database.NewItemRepository(db)
			svc := retention.NewService(itemRepo, retention.DefaultSettingsResolver{}, cfg.ProcessingTimeout, zap.NewNop())

			failed, err := svc.SweepStuckProcessing(context.Background())
			if err != nil {
				return fmt.Errorf("timeout sweep failed: %w", err)
			}

			fmt.Printf("Failed %d stuck item(s) after %s in processing\n", failed, cfg.ProcessingTimeout)
			return nil
		},
	}

	return cmd
}
