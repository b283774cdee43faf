package models

import (
	"time"

	"github.com/google/uuid"
)

// Action is a task record materialized from an item's extracted actions when
// a classification callback is applied.
type Action struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	ItemID      uuid.UUID  `json:"item_id"`
	Description string     `json:"description"`
	Confidence  float64    `json:"confidence"`
	Owner       string     `json:"owner,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Priority    Priority   `json:"priority"`
	SourceSpan  string     `json:"source_span,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
