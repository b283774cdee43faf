package models

import (
	"time"

	"github.com/google/uuid"
)

// ItemType represents how an inbox item was captured
type ItemType string

const (
	ItemTypeManualText     ItemType = "manual-text"
	ItemTypeImage          ItemType = "image"
	ItemTypeVoice          ItemType = "voice"
	ItemTypeEmail          ItemType = "email"
	ItemTypeForwardedEmail ItemType = "forwarded-email"
)

// ItemStatus represents the processing state of an inbox item
type ItemStatus string

const (
	ItemStatusPending    ItemStatus = "pending"
	ItemStatusProcessing ItemStatus = "processing"
	ItemStatusReviewed   ItemStatus = "reviewed"
	ItemStatusError      ItemStatus = "error"
	ItemStatusArchived   ItemStatus = "archived"
)

// Category represents the classifier's verdict for an item
type Category string

const (
	CategoryAction    Category = "action"
	CategoryNote      Category = "note"
	CategoryReference Category = "reference"
	CategoryMeeting   Category = "meeting"
	CategoryUnknown   Category = "unknown"
)

// TagType represents the kind of entity a tag refers to
type TagType string

const (
	TagTypeTopic    TagType = "topic"
	TagTypePerson   TagType = "person"
	TagTypeProject  TagType = "project"
	TagTypeArea     TagType = "area"
	TagTypeDate     TagType = "date"
	TagTypeLocation TagType = "location"
)

// Priority represents the urgency of an extracted action
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

// ArchiveReason distinguishes how an item ended up archived
type ArchiveReason string

const (
	ArchiveReasonManual     ArchiveReason = "manual"
	ArchiveReasonAuto       ArchiveReason = "auto-archived"
	ArchiveReasonBankruptcy ArchiveReason = "bankruptcy"
)

// Classification holds the result returned by the external classifier
type Classification struct {
	Category         Category `json:"category"`
	Confidence       float64  `json:"confidence"`
	Reasoning        string   `json:"reasoning"`
	SuggestedProject string   `json:"suggested_project,omitempty"`
	SuggestedArea    string   `json:"suggested_area,omitempty"`
}

// ExtractedAction is an actionable task the classifier pulled out of an item
type ExtractedAction struct {
	Description string     `json:"description"`
	Confidence  float64    `json:"confidence"`
	Owner       string     `json:"owner,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Priority    Priority   `json:"priority"`
	SourceSpan  string     `json:"source_span,omitempty"`
}

// Tag is an entity reference attached to an item during classification
type Tag struct {
	Type       TagType    `json:"type"`
	Value      string     `json:"value"`
	Confidence float64    `json:"confidence"`
	LinkedID   *uuid.UUID `json:"linked_id,omitempty"`
}

// UserFeedback records the user's reaction to a classification
type UserFeedback struct {
	Decision         SwipeDecision `json:"decision"`
	DeferredToWeekly bool          `json:"deferred_to_weekly"`
	RecordedAt       time.Time     `json:"recorded_at"`
}

// ProcessingMeta is populated only while an item is in the error state
type ProcessingMeta struct {
	LastError  string     `json:"last_error,omitempty"`
	RetryCount int        `json:"retry_count"`
	FailedAt   *time.Time `json:"failed_at,omitempty"`
}

// InboxItem is the unit of work flowing through the triage pipeline
type InboxItem struct {
	ID               uuid.UUID         `json:"id"`
	UserID           uuid.UUID         `json:"user_id"`
	Type             ItemType          `json:"type"`
	Content          string            `json:"content"`
	Source           string            `json:"source,omitempty"`
	MediaRef         string            `json:"media_ref,omitempty"`
	Status           ItemStatus        `json:"status"`
	Classification   *Classification   `json:"classification,omitempty"`
	ExtractedActions []ExtractedAction `json:"extracted_actions,omitempty"`
	Tags             []Tag             `json:"tags,omitempty"`
	UserFeedback     *UserFeedback     `json:"user_feedback,omitempty"`
	ProcessingMeta   *ProcessingMeta   `json:"processing_meta,omitempty"`
	ArchiveReason    *ArchiveReason    `json:"archive_reason,omitempty"`
	PreArchiveStatus *ItemStatus       `json:"pre_archive_status,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	DispatchedAt     *time.Time        `json:"dispatched_at,omitempty"`
	ArchivedAt       *time.Time        `json:"archived_at,omitempty"`
	AutoArchiveDate  *time.Time        `json:"auto_archive_date,omitempty"`
}

// IsClassified reports whether the item carries a classification result.
func (i *InboxItem) IsClassified() bool {
	return i.Classification != nil
}

// RetryCount returns the recorded retry count, zero when no failure occurred.
func (i *InboxItem) RetryCount() int {
	if i.ProcessingMeta == nil {
		return 0
	}
	return i.ProcessingMeta.RetryCount
}

// DeferredToWeekly reports whether the user flagged the item for the weekly
// disagreements review.
func (i *InboxItem) DeferredToWeekly() bool {
	return i.UserFeedback != nil && i.UserFeedback.DeferredToWeekly
}
