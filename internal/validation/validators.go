package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/stillwater-dev/inboxd/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	// These should never fail in normal operation, but panic loudly if they do
	if err := Validate.RegisterValidation("item_type", validateItemType); err != nil {
		panic(fmt.Sprintf("failed to register item_type validator: %v", err))
	}
	if err := Validate.RegisterValidation("item_status", validateItemStatus); err != nil {
		panic(fmt.Sprintf("failed to register item_status validator: %v", err))
	}
	if err := Validate.RegisterValidation("category", validateCategory); err != nil {
		panic(fmt.Sprintf("failed to register category validator: %v", err))
	}
	if err := Validate.RegisterValidation("tag_type", validateTagType); err != nil {
		panic(fmt.Sprintf("failed to register tag_type validator: %v", err))
	}
	if err := Validate.RegisterValidation("priority", validatePriority); err != nil {
		panic(fmt.Sprintf("failed to register priority validator: %v", err))
	}
	if err := Validate.RegisterValidation("swipe_decision", validateSwipeDecision); err != nil {
		panic(fmt.Sprintf("failed to register swipe_decision validator: %v", err))
	}
}

func validateItemType(fl validator.FieldLevel) bool {
	return ValidateItemType(fl.Field().String()) == nil
}

func validateItemStatus(fl validator.FieldLevel) bool {
	return ValidateItemStatus(fl.Field().String()) == nil
}

func validateCategory(fl validator.FieldLevel) bool {
	return ValidateCategory(fl.Field().String()) == nil
}

func validateTagType(fl validator.FieldLevel) bool {
	return ValidateTagType(fl.Field().String()) == nil
}

func validatePriority(fl validator.FieldLevel) bool {
	return ValidatePriority(fl.Field().String()) == nil
}

func validateSwipeDecision(fl validator.FieldLevel) bool {
	switch models.SwipeDecision(fl.Field().String()) {
	case models.SwipeAgree, models.SwipeDisagree, models.SwipeUrgent, models.SwipeHide:
		return true
	default:
		return false
	}
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	// Trim whitespace
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateItemType validates an ItemType string value
func ValidateItemType(value string) error {
	switch models.ItemType(value) {
	case models.ItemTypeManualText, models.ItemTypeImage, models.ItemTypeVoice,
		models.ItemTypeEmail, models.ItemTypeForwardedEmail:
		return nil
	default:
		return fmt.Errorf("invalid type: %s (must be 'manual-text', 'image', 'voice', 'email', or 'forwarded-email')", value)
	}
}

// ValidateItemStatus validates an ItemStatus string value
func ValidateItemStatus(value string) error {
	switch models.ItemStatus(value) {
	case models.ItemStatusPending, models.ItemStatusProcessing, models.ItemStatusReviewed,
		models.ItemStatusError, models.ItemStatusArchived:
		return nil
	default:
		return fmt.Errorf("invalid status: %s (must be 'pending', 'processing', 'reviewed', 'error', or 'archived')", value)
	}
}

// ValidateCategory validates a Category string value
func ValidateCategory(value string) error {
	switch models.Category(value) {
	case models.CategoryAction, models.CategoryNote, models.CategoryReference,
		models.CategoryMeeting, models.CategoryUnknown:
		return nil
	default:
		return fmt.Errorf("invalid category: %s (must be 'action', 'note', 'reference', 'meeting', or 'unknown')", value)
	}
}

// ValidateTagType validates a TagType string value
func ValidateTagType(value string) error {
	switch models.TagType(value) {
	case models.TagTypeTopic, models.TagTypePerson, models.TagTypeProject,
		models.TagTypeArea, models.TagTypeDate, models.TagTypeLocation:
		return nil
	default:
		return fmt.Errorf("invalid tag type: %s (must be 'topic', 'person', 'project', 'area', 'date', or 'location')", value)
	}
}

// ValidatePriority validates a Priority string value
func ValidatePriority(value string) error {
	switch models.Priority(value) {
	case models.PriorityUrgent, models.PriorityHigh, models.PriorityNormal, models.PriorityLow:
		return nil
	default:
		return fmt.Errorf("invalid priority: %s (must be 'urgent', 'high', 'normal', or 'low')", value)
	}
}

// ValidateConfidence validates that a confidence value is within [0,1].
// Out-of-range values are rejected at the boundary, never stored.
func ValidateConfidence(value float64) error {
	if value < 0 || value > 1 {
		return fmt.Errorf("invalid confidence: %g (must be between 0 and 1 inclusive)", value)
	}
	return nil
}
