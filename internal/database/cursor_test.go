package database

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stillwater-dev/inboxd/internal/models"
)

func TestCursorRoundTrip(t *testing.T) {
	t.Parallel()

	c := Cursor{
		CreatedAt: time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC),
		ID:        uuid.New(),
	}

	token := EncodeCursor(c)
	if token == "" {
		t.Fatal("EncodeCursor returned empty token")
	}

	decoded, err := DecodeCursor(token)
	if err != nil {
		t.Fatalf("DecodeCursor() error = %v", err)
	}
	if decoded == nil {
		t.Fatal("DecodeCursor() returned nil cursor")
	}
	if !decoded.CreatedAt.Equal(c.CreatedAt) || decoded.ID != c.ID {
		t.Errorf("DecodeCursor() = %+v, want %+v", decoded, c)
	}
}

func TestDecodeCursorEmpty(t *testing.T) {
	t.Parallel()

	decoded, err := DecodeCursor("")
	if err != nil {
		t.Fatalf("DecodeCursor(\"\") error = %v", err)
	}
	if decoded != nil {
		t.Errorf("DecodeCursor(\"\") = %+v, want nil", decoded)
	}
}

func TestDecodeCursorMalformed(t *testing.T) {
	t.Parallel()

	for _, token := range []string{"not-base64!!", "bm90LWpzb24"} {
		_, err := DecodeCursor(token)
		if err == nil {
			t.Errorf("DecodeCursor(%q) = nil error, want validation error", token)
			continue
		}
		if !errors.Is(err, models.ErrValidation) {
			t.Errorf("DecodeCursor(%q) error = %v, want ErrValidation", token, err)
		}
	}
}
