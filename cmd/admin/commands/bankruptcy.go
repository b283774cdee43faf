package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stillwater-dev/inboxd/internal/config"
	"github.com/stillwater-dev/inboxd/internal/database"
	"github.com/stillwater-dev/inboxd/internal/services/retention"
	"go.uber.org/zap"
)

// NewBankruptcyCmd creates the inbox bankruptcy command
func NewBankruptcyCmd() *cobra.Command {
	var userFlag string

	cmd := &cobra.Command{
		Use:   "bankruptcy",
		Short: "Declare inbox bankruptcy for a user",
		Long:  "Archive all of a user's pending items in one pass. Items can be restored individually afterwards",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(userFlag)
			if err != nil {
				return fmt.Errorf("invalid --user value %q: %w", userFlag, err)
			}

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

			archived, err := svc.Bankruptcy(context.Background(), userID)
			if err != nil {
				return fmt.Errorf("bankruptcy failed: %w", err)
			}

			fmt.Printf("Archived %d pending item(s) for user %s\n", archived, userID)
			return nil
		},
	}

	cmd.Flags().StringVar(&userFlag, "user", "", "User ID to declare bankruptcy for (required)")
	if err := cmd.MarkFlagRequired("user"); err != nil {
		panic(err)
	}

	return cmd
}
