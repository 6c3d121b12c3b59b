package cubox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"
)

const (
	listPath    = "/c/api/third-party/card/filter"
	contentPath = "/c/api/third-party/card/content"

	// DefaultPageSize is the page size requested from the list endpoint.
	DefaultPageSize = 500

	requestTimeout = 30 * time.Second
)

// Client talks to the Cubox third-party card API. Domain and API key can be
// swapped at runtime when settings change.
type Client struct {
	httpClient *http.Client
	userAgent  string

	mu       sync.RWMutex
	endpoint string
	apiKey   string
}

func NewClient(httpClient *http.Client, domain, apiKey, userAgent string) *Client {
	c := &Client{
		httpClient: httpClient,
		userAgent:  userAgent,
	}
	c.UpdateConfig(domain, apiKey)
	return c
}

// UpdateConfig swaps the server domain and API key used for subsequent calls.
func (c *Client) UpdateConfig(domain, apiKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endpoint = "https://" + domain
	c.apiKey = apiKey
}

// ListArticlesPage fetches one page of articles ordered by descending update
// time, resuming after (lastCardID, lastCardUpdateTime) when both are set.
// HasMore is the `len >= limit` heuristic: the server exposes no
// authoritative continuation flag, so a full page is read as "probably more".
func (c *Client) ListArticlesPage(ctx context.Context, lastCardID, lastCardUpdateTime string, limit int) (*Page, error) {
	body := map[string]any{
		"limit": limit,
	}
	if lastCardID != "" && lastCardUpdateTime != "" {
		body["last_card_id"] = lastCardID
		body["last_card_update_time"] = lastCardUpdateTime
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode list request: %w", err)
	}

	var response listResponse
	if err := c.request(ctx, http.MethodPost, listPath, payload, &response); err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}

	return &Page{
		Articles: response.Data,
		HasMore:  len(response.Data) >= limit,
	}, nil
}

// GetArticleContent fetches the full content for one article. An empty string
// means the card has no extracted content yet.
func (c *Client) GetArticleContent(ctx context.Context, id string) (string, error) {
	path := contentPath + "?id=" + url.QueryEscape(id)

	var response contentResponse
	if err := c.request(ctx, http.MethodGet, path, nil, &response); err != nil {
		return "", fmt.Errorf("failed to get article content: %w", err)
	}

	return response.Data, nil
}

func (c *Client) request(ctx context.Context, method, path string, body []byte, out any) error {
	c.mu.RLock()
	endpoint := c.endpoint
	apiKey := c.apiKey
	c.mu.RUnlock()

	timeoutCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(timeoutCtx, method, endpoint+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
