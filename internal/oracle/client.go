package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// #region client

// Client pulls influence scores from the external scoring service over
// HTTP. The service owns the formulas; this client only transports the
// resulting triples.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a scoring service client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// #endregion client

// #region wire-types

type scoreResponse struct {
	EntityID string  `json:"entity_id"`
	Power    float64 `json:"power"`
	Charisma float64 `json:"charisma"`
	Overall  float64 `json:"overall"`
}

type scoreBatchResponse struct {
	Scores []scoreResponse `json:"scores"`
}

// #endregion wire-types

// #region fetch

// FetchScore retrieves a single entity's score triple.
func (c *Client) FetchScore(ctx context.Context, entityID string) (Score, error) {
	u := fmt.Sprintf("%s/scores/%s", c.baseURL, url.PathEscape(entityID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Score{}, fmt.Errorf("build score request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Score{}, fmt.Errorf("fetch score %s: %w", entityID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Score{}, fmt.Errorf("fetch score %s: status %d", entityID, resp.StatusCode)
	}

	var body scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Score{}, fmt.Errorf("decode score %s: %w", entityID, err)
	}
	return Score{Power: body.Power, Charisma: body.Charisma, Overall: body.Overall}, nil
}

// FetchAll retrieves every score the service knows about, keyed by entity.
func (c *Client) FetchAll(ctx context.Context) (map[string]Score, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/scores", nil)
	if err != nil {
		return nil, fmt.Errorf("build scores request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch scores: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch scores: status %d", resp.StatusCode)
	}

	var body scoreBatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode scores: %w", err)
	}

	out := make(map[string]Score, len(body.Scores))
	for _, s := range body.Scores {
		out[s.EntityID] = Score{Power: s.Power, Charisma: s.Charisma, Overall: s.Overall}
	}
	return out, nil
}

// #endregion fetch
