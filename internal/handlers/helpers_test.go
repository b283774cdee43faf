package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stillwater-dev/inboxd/internal/models"
)

func TestSanitizeErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "short passthrough", input: "not found", want: "not found"},
		{name: "empty", input: "", want: ""},
		{
			name:  "long ascii truncated",
			input: strings.Repeat("a", 300),
			want:  strings.Repeat("a", maxErrorMessageRunes) + "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeErrorMessage(tt.input); got != tt.want {
				t.Errorf("sanitizeErrorMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitizeErrorMessageKeepsRunesIntact(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("åäö", 100)
	got := sanitizeErrorMessage(long)

	if !utf8.ValidString(got) {
		t.Errorf("sanitized message %q is not valid UTF-8", got)
	}
	trimmed := strings.TrimSuffix(got, "...")
	if count := utf8.RuneCountInString(trimmed); count != maxErrorMessageRunes {
		t.Errorf("sanitized rune count = %d, want %d", count, maxErrorMessageRunes)
	}
	if !strings.HasPrefix(long, trimmed) {
		t.Error("sanitized message is not a prefix of the original")
	}
}

func TestRespondMappedErrorStatuses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: models.ErrValidation, want: 400},
		{name: "not found", err: models.ErrNotFound, want: 404},
		{name: "conflict", err: models.ErrConflict, want: 409},
		{name: "external dependency", err: models.ErrExternalDependency, want: 502},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondMappedError(rec, tt.err)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}

			var resp struct {
				Success bool `json:"success"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			if resp.Success {
				t.Error("error response reports success = true")
			}
		})
	}
}
