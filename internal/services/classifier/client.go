// Package classifier talks to the external classification service. The
// service is fire-and-acknowledge: it accepts a dispatch request and later
// delivers the result to the callback URL; nothing here waits for results.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/stillwater-dev/inboxd/internal/models"
	"go.uber.org/zap"
)

// DefaultDispatchTimeout bounds the outbound dispatch call
const DefaultDispatchTimeout = 10 * time.Second

// DispatchRequest is the payload sent to the external classifier
type DispatchRequest struct {
	ItemID      uuid.UUID `json:"itemId"`
	Content     string    `json:"content"`
	Source      string    `json:"source,omitempty"`
	Type        string    `json:"type"`
	CreatedAt   time.Time `json:"createdAt"`
	CallbackURL string    `json:"callbackUrl"`
}

// Dispatcher is the outbound port to the classification service
type Dispatcher interface {
	Dispatch(ctx context.Context, req *DispatchRequest) error
	HealthCheck(ctx context.Context) error
}

// Client dispatches classification requests over HTTP
type Client struct {
	baseURL     string
	callbackURL string
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewClient creates a classifier client. callbackURL is where the classifier
// should deliver results.
func NewClient(baseURL, callbackURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultDispatchTimeout
	}
	return &Client{
		baseURL:     baseURL,
		callbackURL: callbackURL,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

// Dispatch sends one item to the classifier. The item id doubles as the
// idempotency key; the classifier is expected to deduplicate on it. Only an
// acknowledgment is expected in response.
func (c *Client) Dispatch(ctx context.Context, req *DispatchRequest) error {
	if req.CallbackURL == "" {
		req.CallbackURL = c.callbackURL
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal dispatch request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build dispatch request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotency-Key", req.ItemID.String())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: classifier dispatch: %v", models.ErrExternalDependency, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: classifier returned status %d", models.ErrExternalDependency, resp.StatusCode)
	}

	c.logger.Debug("dispatched_item_to_classifier",
		zap.String("item_id", req.ItemID.String()),
	)
	return nil
}

// HealthCheck probes the classifier endpoint with a bounded HEAD request
func (c *Client) HealthCheck(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build health check request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: classifier health check: %v", models.ErrExternalDependency, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: classifier unhealthy, status %d", models.ErrExternalDependency, resp.StatusCode)
	}

	return nil
}

var _ Dispatcher = (*Client)(nil)
