package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the owner of inbox items. Authentication happens upstream; the API
// trusts the identity the gateway injects and only needs the ID here.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
