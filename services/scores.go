package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// EventResult is the authoritative outcome of one event as reported
// by the score source.
type EventResult struct {
	EventID   string `json:"eventId"`
	Completed bool   `json:"completed"`
	Abandoned bool   `json:"abandoned"`
	Winner    string `json:"winner"`
	// FancyValues carries final run counts keyed by fancy market id.
	FancyValues map[string]float64 `json:"fancyValues"`
}

// OddsSnapshot is one price from the odds feed.
type OddsSnapshot struct {
	EventID   string  `json:"eventId"`
	MarketID  string  `json:"marketId"`
	Selection string  `json:"selection"`
	Back      float64 `json:"back"`
	Lay       float64 `json:"lay"`
}

// ScoreClient reads the external score/odds source. The source is
// rate-limited and occasionally unavailable; every failure maps to
// ErrUpstreamUnavailable so sweeps skip and retry instead of forcing
// bets into a terminal state.
type ScoreClient struct {
	baseURL string
	client  *http.Client
	log     *zap.SugaredLogger
}

func NewScoreClient(baseURL string, log *zap.SugaredLogger) *ScoreClient {
	return &ScoreClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
}

// FetchResult returns the result for an event, or (nil, nil) when the
// source has no result yet.
func (c *ScoreClient) FetchResult(ctx context.Context, category, eventID string) (*EventResult, error) {
	url := fmt.Sprintf("%s/results/%s/%s", c.baseURL, category, eventID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: score source returned %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	var result EventResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: bad result payload: %v", ErrUpstreamUnavailable, err)
	}
	if !result.Completed && !result.Abandoned {
		return nil, nil
	}
	return &result, nil
}

// FetchOdds pulls the current odds board for the cache refresher.
func (c *ScoreClient) FetchOdds(ctx context.Context) ([]OddsSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/odds", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: odds source returned %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	var snaps []OddsSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snaps); err != nil {
		return nil, fmt.Errorf("%w: bad odds payload: %v", ErrUpstreamUnavailable, err)
	}
	return snaps, nil
}
