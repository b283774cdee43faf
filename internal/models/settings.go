package models

import (
	"time"

	"github.com/google/uuid"
)

// Default thresholds applied when a user has no stored overrides. Secrets
// never default; these numeric knobs do, and the defaults are part of the
// documented contract.
const (
	DefaultNeedsReviewThreshold = 0.6
	DefaultAutoFileThreshold    = 0.8
	DefaultAutoArchiveDays      = 30
	DefaultExpiryWarningDays    = 2
)

// UserSettings holds per-user triage configuration. It is resolved once per
// operation and passed explicitly; nothing reads thresholds ambiently.
type UserSettings struct {
	UserID               uuid.UUID `json:"user_id"`
	NeedsReviewThreshold float64   `json:"needs_review_threshold"`
	AutoFileThreshold    float64   `json:"auto_file_threshold"`
	AutoArchiveDays      int       `json:"auto_archive_days"`
	ExpiryWarningDays    int       `json:"expiry_warning_days"`
}

// DefaultUserSettings returns the documented defaults for a user.
func DefaultUserSettings(userID uuid.UUID) UserSettings {
	return UserSettings{
		UserID:               userID,
		NeedsReviewThreshold: DefaultNeedsReviewThreshold,
		AutoFileThreshold:    DefaultAutoFileThreshold,
		AutoArchiveDays:      DefaultAutoArchiveDays,
		ExpiryWarningDays:    DefaultExpiryWarningDays,
	}
}

// AutoArchiveCutoff returns the creation-time cutoff before which pending and
// reviewed items are eligible for auto-archival.
func (s UserSettings) AutoArchiveCutoff(now time.Time) time.Time {
	return now.AddDate(0, 0, -s.AutoArchiveDays)
}

// ExpiryWarningCutoff returns the creation-time cutoff after which items are
// close enough to auto-archival to warrant an expiring-soon warning.
func (s UserSettings) ExpiryWarningCutoff(now time.Time) time.Time {
	return now.AddDate(0, 0, -(s.AutoArchiveDays - s.ExpiryWarningDays))
}
