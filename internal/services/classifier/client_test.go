package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stillwater-dev/inboxd/internal/models"
	"go.uber.org/zap"
)

func TestClientDispatch(t *testing.T) {
	t.Parallel()

	itemID := uuid.New()
	var got DispatchRequest
	var gotIdempotencyKey string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		gotIdempotencyKey = r.Header.Get("Idempotency-Key")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("failed to decode dispatch body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "https://api.example.com/callback", 5*time.Second, zap.NewNop())

	err := client.Dispatch(context.Background(), &DispatchRequest{
		ItemID:    itemID,
		Content:   "call the plumber tomorrow",
		Source:    "ios-share",
		Type:      "text",
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	if got.ItemID != itemID {
		t.Errorf("itemId = %s, want %s", got.ItemID, itemID)
	}
	if got.CallbackURL != "https://api.example.com/callback" {
		t.Errorf("callbackUrl = %s, want configured default", got.CallbackURL)
	}
	if gotIdempotencyKey != itemID.String() {
		t.Errorf("Idempotency-Key = %s, want %s", gotIdempotencyKey, itemID)
	}
}

func TestClientDispatchServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "https://api.example.com/callback", 5*time.Second, zap.NewNop())

	err := client.Dispatch(context.Background(), &DispatchRequest{
		ItemID:  uuid.New(),
		Content: "content",
		Type:    "text",
	})
	if !errors.Is(err, models.ErrExternalDependency) {
		t.Errorf("Dispatch() error = %v, want ErrExternalDependency", err)
	}
}

func TestClientDispatchUnreachable(t *testing.T) {
	t.Parallel()

	// Server closed before the call so the connection is refused
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL, "https://api.example.com/callback", 1*time.Second, zap.NewNop())

	err := client.Dispatch(context.Background(), &DispatchRequest{
		ItemID:  uuid.New(),
		Content: "content",
		Type:    "text",
	})
	if !errors.Is(err, models.ErrExternalDependency) {
		t.Errorf("Dispatch() error = %v, want ErrExternalDependency", err)
	}
}

func TestClientHealthCheck(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("method = %s, want HEAD", r.Method)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", 5*time.Second, zap.NewNop())
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestClientHealthCheckUnhealthy(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", 5*time.Second, zap.NewNop())
	err := client.HealthCheck(context.Background())
	if !errors.Is(err, models.ErrExternalDependency) {
		t.Errorf("HealthCheck() error = %v, want ErrExternalDependency", err)
	}
}
