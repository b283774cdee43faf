// Package retention sweeps stale inbox items: periodic auto-archival, the
// expiring-soon warning list, inbox bankruptcy, and the stuck-processing
// timeout sweep.
package retention

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stillwater-dev/inboxd/internal/database"
	"github.com/stillwater-dev/inboxd/internal/models"
	"go.uber.org/zap"
)

// SettingsResolver resolves per-user triage settings. The default resolver
// returns the documented defaults for every user.
type SettingsResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID) (models.UserSettings, error)
}

// DefaultSettingsResolver returns the documented defaults for every user
type DefaultSettingsResolver struct{}

// Resolve returns the default settings for the user
func (DefaultSettingsResolver) Resolve(ctx context.Context, userID uuid.UUID) (models.UserSettings, error) {
	return models.DefaultUserSettings(userID), nil
}

var _ SettingsResolver = DefaultSettingsResolver{}

// Service runs retention sweeps
type Service struct {
	items             database.ItemRepositoryInterface
	settings          SettingsResolver
	processingTimeout time.Duration
	logger            *zap.Logger
}

// NewService creates a retention service
func NewService(items database.ItemRepositoryInterface, settings SettingsResolver, processingTimeout time.Duration, logger *zap.Logger) *Service {
	return &Service{
		items:             items,
		settings:          settings,
		processingTimeout: processingTimeout,
		logger:            logger,
	}
}

// SweepResult reports one auto-archive sweep run
type SweepResult struct {
	UsersSwept    int `json:"users_swept"`
	ItemsArchived int `json:"items_archived"`
}

// SweepAutoArchive archives every user's pending and reviewed items older
// than that user's retention threshold. Error items are never auto-archived.
// Each user is swept independently, so one user's failure does not stop the
// rest; the sweep is idempotent and safe to trigger twice.
func (s *Service) SweepAutoArchive(ctx context.Context) (*SweepResult, error) {
	users, err := s.items.ListUsersWithItems(ctx)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{}
	now := time.Now()
	for _, userID := range users {
		settings, err := s.settings.Resolve(ctx, userID)
		if err != nil {
			s.logger.Error("failed_to_resolve_settings_for_sweep",
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
			continue
		}

		archived, err := s.items.SweepAutoArchive(ctx, userID, settings.AutoArchiveCutoff(now))
		if err != nil {
			s.logger.Error("auto_archive_sweep_failed",
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
			continue
		}

		result.UsersSwept++
		result.ItemsArchived += archived
		if archived > 0 {
			s.logger.Info("auto_archive_sweep_user_done",
				zap.String("user_id", userID.String()),
				zap.Int("items_archived", archived),
			)
		}
	}

	return result, nil
}

// ExpiringSoon lists a user's items within the warning window before
// auto-archival. Read-only.
func (s *Service) ExpiringSoon(ctx context.Context, userID uuid.UUID) ([]*models.InboxItem, error) {
	settings, err := s.settings.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return s.items.ExpiringSoon(ctx, userID, settings.ExpiryWarningCutoff(now), settings.AutoArchiveCutoff(now))
}

// Bankruptcy archives all of a user's pending items at once and returns the
// count. The underlying update is a single statement, so the count always
// matches the rows archived.
func (s *Service) Bankruptcy(ctx context.Context, userID uuid.UUID) (int, error) {
	archived, err := s.items.Bankruptcy(ctx, userID)
	if err != nil {
		return 0, err
	}

	s.logger.Info("inbox_bankruptcy_declared",
		zap.String("user_id", userID.String()),
		zap.Int("items_archived", archived),
	)

	return archived, nil
}

// SweepStuckProcessing force-fails items that have sat in processing past the
// timeout window, so a classifier that never calls back cannot strand them.
func (s *Service) SweepStuckProcessing(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.processingTimeout)
	failed, err := s.items.SweepStuckProcessing(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	if failed > 0 {
		s.logger.Warn("stuck_processing_items_failed",
			zap.Int("items_failed", failed),
			zap.Duration("timeout", s.processingTimeout),
		)
	}

	return failed, nil
}
