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

// NewSweepCmd creates the auto-archive sweep command
func NewSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run the auto-archive retention sweep",
		Long:  "Archive every user's pending and reviewed items older than their retention threshold",
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

			result, err := svc.SweepAutoArchive(context.Background())
			if err != nil {
				return fmt.Errorf("auto-archive sweep failed: %w", err)
			}

			fmt.Printf("Swept %d user(s), archived %d item(s)\n", result.UsersSwept, result.ItemsArchived)
			return nil
		},
	}

	return cmd
}
