package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lotwatch/lotwatch/internal/lot"
)

// Detection is one vehicle candidate reported by the inference runtime.
type Detection struct {
	ClassID    int     `json:"class_id"`
	Confidence float64 `json:"confidence"`
	// Box is [x1, y1, x2, y2] in frame pixels.
	Box [4]float64 `json:"box"`
}

type inferenceResponse struct {
	Detections []Detection `json:"detections"`
}

// DetectionFetcher obtains vehicle detections for a frame.
type DetectionFetcher interface {
	Detect(ctx context.Context, frame []byte) ([]Detection, error)
}

var (
	ErrInferenceRequest = errors.New("error calling inference runtime")
	ErrInferenceStatus  = errors.New("error status from inference runtime")
)

// InferenceClient talks HTTP JSON to the external vehicle-detection runtime.
type InferenceClient struct {
	url    string
	client *http.Client
}

func NewInferenceClient(url string) *InferenceClient {
	return &InferenceClient{
		url:    url,
		client: http.DefaultClient,
	}
}

func (c *InferenceClient) Detect(ctx context.Context, frame []byte) ([]Detection, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(frame))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInferenceRequest, err)
	}
	req.Header.Set("Content-Type", "image/jpeg")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInferenceRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: got %d", ErrInferenceStatus, resp.StatusCode)
	}

	var infResp inferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&infResp); err != nil {
		return nil, fmt.Errorf("failed to decode inference response: %v", err)
	}
	return infResp.Detections, nil
}

func (d Detection) box() lot.Box {
	return lot.Box{X1: d.Box[0], Y1: d.Box[1], X2: d.Box[2], Y2: d.Box[3]}
}

var _ DetectionFetcher = (*InferenceClient)(nil)
