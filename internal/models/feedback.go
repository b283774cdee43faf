package models

import (
	"time"

	"github.com/google/uuid"
)

// SwipeDecision is a directional user decision against a reviewed or pending
// item. The set is closed; anything else is rejected at the boundary.
type SwipeDecision string

const (
	SwipeAgree    SwipeDecision = "agree"
	SwipeDisagree SwipeDecision = "disagree"
	SwipeUrgent   SwipeDecision = "urgent"
	SwipeHide     SwipeDecision = "hide"
)

// FeedbackEvent records one applied swipe. Events are unique per
// (ItemID, Decision) so duplicate submissions from flaky clients collapse
// into a single application.
type FeedbackEvent struct {
	ID        uuid.UUID     `json:"id"`
	ItemID    uuid.UUID     `json:"item_id"`
	UserID    uuid.UUID     `json:"user_id"`
	Decision  SwipeDecision `json:"decision"`
	AppliedAt time.Time     `json:"applied_at"`
}

// FeedbackUndo captures everything needed to exactly reverse a swipe. It is
// stored with a TTL equal to the undo window; once the record expires the
// swipe is final.
type FeedbackUndo struct {
	EventID          uuid.UUID     `json:"event_id"`
	ItemID           uuid.UUID     `json:"item_id"`
	UserID           uuid.UUID     `json:"user_id"`
	Decision         SwipeDecision `json:"decision"`
	PrevStatus       ItemStatus    `json:"prev_status"`
	PrevFeedback     *UserFeedback `json:"prev_feedback,omitempty"`
	ElevatedActionID *uuid.UUID    `json:"elevated_action_id,omitempty"`
	PrevPriority     *Priority     `json:"prev_priority,omitempty"`
}
