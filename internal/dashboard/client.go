// Package dashboard implements the parking dashboard client: an API client
// for the lot service, an owned view state reconciled by pure render
// functions, and a cancellable auto-refresh loop.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lotwatch/lotwatch/internal/models"
)

// API is the slice of the lot service the dashboard consumes.
type API interface {
	FetchStatus(ctx context.Context) ([]models.ParkingSpace, error)
	FetchRecommendations(ctx context.Context) (*models.RecommendationResult, error)
	ProcessFrame(ctx context.Context) (*models.ProcessFrameResult, error)
}

var (
	ErrRequest = errors.New("error calling parking service")
	ErrStatus  = errors.New("error status from parking service")
)

// Client fetches dashboard payloads over HTTP.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// FetchStatus returns the current snapshot. Non-2xx is a transport error.
func (c *Client) FetchStatus(ctx context.Context) ([]models.ParkingSpace, error) {
	var snapshot []models.ParkingSpace
	if err := c.getJSON(ctx, "/api/parking_status", &snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// FetchRecommendations returns the current recommendation payload. Absent
// optional fields decode to zero values, which render as degraded output
// rather than failing.
func (c *Client) FetchRecommendations(ctx context.Context) (*models.RecommendationResult, error) {
	var result models.RecommendationResult
	if err := c.getJSON(ctx, "/api/parking_recommendations", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ProcessFrame asks the service to run a detection cycle now. Application
// failures arrive in-band as Success=false with a reason.
func (c *Client) ProcessFrame(ctx context.Context) (*models.ProcessFrameResult, error) {
	var result models.ProcessFrameResult
	if err := c.getJSON(ctx, "/api/process_frame", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequest, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: got %d from %s", ErrStatus, resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %v", path, err)
	}
	return nil
}

var _ API = (*Client)(nil)
