package review

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrDisabled is returned when no collector endpoint is configured.
var ErrDisabled = errors.New("review submission disabled")

// Submission is the payload sent to the collector.
type Submission struct {
	Rating    int    `json:"rating"`
	Review    string `json:"review"`
	Timestamp string `json:"timestamp"` // RFC 3339
	Game      string `json:"game"`
}

// Submitter posts reviews to an external form endpoint.
type Submitter struct {
	endpoint   string
	game       string
	httpClient *http.Client
}

// NewSubmitter creates a Submitter. A zero timeout means 10 seconds.
func NewSubmitter(endpoint, game string, timeout time.Duration) *Submitter {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Submitter{
		endpoint: endpoint,
		game:     game,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Enabled reports whether an endpoint is configured.
func (s *Submitter) Enabled() bool {
	return s != nil && s.endpoint != ""
}

// Submit sends one review.
func (s *Submitter) Submit(ctx context.Context, rating int, text string, at time.Time) error {
	if !s.Enabled() {
		return ErrDisabled
	}
	body := Submission{
		Rating:    ClampRating(rating),
		Review:    text,
		Timestamp: at.UTC().Format(time.RFC3339),
		Game:      s.game,
	}
	if err := s.post(ctx, body); err != nil {
		return fmt.Errorf("review.Submit: %w", err)
	}
	return nil
}

func (s *Submitter) post(ctx context.Context, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Error}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
