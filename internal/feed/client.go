// Package feed talks to the suggestion service and coordinates the
// live query state behind the suggestion panel.
package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultBaseURL = "https://api.genius.example.com"
	DefaultTimeout = 10 * time.Second
	DefaultBatch   = 10
)

// Item is one suggestion. Metadata holds the raw card so fields this
// client does not model stay inspectable in the expanded view.
type Item struct {
	ID          string
	Description string
	Metadata    map[string]any
}

// Relevance reads the item's score from its metadata: a float in [0,1],
// zero when absent or non-numeric.
func (it Item) Relevance() float64 {
	f, ok := it.Metadata["relevance"].(float64)
	if !ok {
		return 0
	}
	return f
}

// Response is one page of suggestions.
type Response struct {
	Items  []Item
	Status string
}

// APIError is returned when the service answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
}

func (err *APIError) Error() string {
	return fmt.Sprintf("feed: HTTP %d: %s", err.StatusCode, err.Message)
}

type ClientConfig struct {
	BaseURL        string
	APIKey         string
	OrganizationID string
	Timeout        time.Duration
	BatchCount     int
}

// Client queries the suggestion service. Each client owns one session
// id, generated at construction and embedded in the request path for
// its whole lifetime.
type Client struct {
	baseURL    string
	apiKey     string
	orgID      string
	sessionID  string
	batchCount int
	httpc      *http.Client
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.BatchCount <= 0 {
		cfg.BatchCount = DefaultBatch
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		orgID:      cfg.OrganizationID,
		sessionID:  uuid.NewString(),
		batchCount: cfg.BatchCount,
		httpc:      &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) SessionID() string {
	return c.sessionID
}

// Mock reports whether the client answers locally because credentials
// are missing.
func (c *Client) Mock() bool {
	return c.apiKey == "" || c.orgID == ""
}

type wireRequest struct {
	Text       string `json:"text"`
	Page       int    `json:"page"`
	BatchCount int    `json:"batch_count"`
}

// Query fetches one page of suggestions for text. Without credentials it
// returns a deterministic local response instead of calling out.
func (c *Client) Query(ctx context.Context, text string, page int) (*Response, error) {
	if c.Mock() {
		return mockResponse(text), nil
	}

	body, err := json.Marshal(wireRequest{Text: text, Page: page, BatchCount: c.batchCount})
	if err != nil {
		return nil, fmt.Errorf("feed: marshaling request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/hackathon/%s/feed/%s", c.baseURL, c.orgID, c.sessionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("feed: creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed: sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, readAPIError(resp)
	}
	return decodeCards(resp.Body)
}

// decodeCards reads the response envelope. A malformed entry inside
// `cards` is skipped so one bad card cannot blank the whole panel; an
// envelope that does not parse at all is an error.
func decodeCards(r io.Reader) (*Response, error) {
	var envelope struct {
		Cards  []json.RawMessage `json:"cards"`
		Status string            `json:"status"`
	}
	if err := json.NewDecoder(r).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("feed: decoding response: %w", err)
	}
	resp := &Response{Status: envelope.Status}
	if resp.Status == "" {
		resp.Status = "success"
	}
	for i, raw := range envelope.Cards {
		var card map[string]any
		if err := json.Unmarshal(raw, &card); err != nil {
			continue
		}
		item := Item{Metadata: card}
		if s, ok := card["text"].(string); ok {
			item.Description = s
		}
		if s, ok := card["id"].(string); ok && s != "" {
			item.ID = s
		} else {
			item.ID = fmt.Sprintf("item-%d", i+1)
		}
		resp.Items = append(resp.Items, item)
	}
	return resp, nil
}

func readAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var wireError struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &wireError) == nil {
		switch {
		case wireError.Message != "":
			return &APIError{StatusCode: resp.StatusCode, Message: wireError.Message}
		case wireError.Error != "":
			return &APIError{StatusCode: resp.StatusCode, Message: wireError.Error}
		}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
}

// mockResponse mirrors the hosted service's shape without the network:
// eight items whose relevance rises with the index.
func mockResponse(text string) *Response {
	resp := &Response{Status: "success"}
	for i := 1; i <= 8; i++ {
		description := fmt.Sprintf("Item %d - This is a mock item for query: '%s'", i, text)
		resp.Items = append(resp.Items, Item{
			ID:          fmt.Sprintf("item-%d", i),
			Description: description,
			Metadata: map[string]any{
				"text":      description,
				"relevance": float64(i) * 0.1,
			},
		})
	}
	return resp
}
