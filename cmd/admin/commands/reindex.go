package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/stillwater-dev/inboxd/internal/config"
	"github.com/stillwater-dev/inboxd/internal/database"
	"github.com/stillwater-dev/inboxd/internal/services/search"
	"go.uber.org/zap"
)

// NewReindexCmd creates the search index reconciliation command
func NewReindexCmd() *cobra.Command {
	var batchSize int
	var all bool

	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Backfill missing search index entries",
		Long:  "Run bounded reconciliation passes over items that have no search index entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if batchSize <= 0 {
				batchSize = cfg.ReindexBatchSize
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
			indexRepo := database.NewSearchIndexRepository(db)
			indexer := search.NewIndexer(itemRepo, indexRepo, zap.NewNop())

			ctx := context.Background()
			for {
				result, err := indexer.Reconcile(ctx, batchSize)
				if err != nil {
					return fmt.Errorf("reconcile pass failed: %w", err)
				}

				fmt.Printf("Indexed %d, skipped %d, failed %d, remaining %d\n",
					result.Indexed, result.Skipped, result.Failed, result.Remaining)

				if !all || result.Remaining == 0 {
					return nil
				}
				if result.Indexed == 0 && result.Skipped == 0 {
					// Nothing moved this pass; stop instead of spinning on
					// persistently failing items.
					return fmt.Errorf("reconciliation stalled with %d item(s) remaining", result.Remaining)
				}
			}
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Items per pass (defaults to REINDEX_BATCH_SIZE)")
	cmd.Flags().BoolVar(&all, "all", false, "Keep running passes until no items remain")

	return cmd
}
