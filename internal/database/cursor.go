package database

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stillwater-dev/inboxd/internal/models"
)

// Cursor marks a position in a createdAt-ordered listing. Keyset pagination
// keeps list cost independent of offset and stable under concurrent inserts.
type Cursor struct {
	CreatedAt time.Time `json:"created_at"`
	ID        uuid.UUID `json:"id"`
}

// EncodeCursor serializes a cursor for use as an opaque pagination token.
func EncodeCursor(c Cursor) string {
	raw, err := json.Marshal(c)
	if err != nil {
		// Cursor fields always marshal; keep the signature simple.
		return ""
	}
	return base64.URLEncoding.EncodeToString(raw)
}

// DecodeCursor parses an opaque pagination token. An empty token means
// "start from the beginning".
func DecodeCursor(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed cursor", models.ErrValidation)
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%w: malformed cursor", models.ErrValidation)
	}
	return &c, nil
}
