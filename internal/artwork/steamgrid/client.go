// Package steamgrid provides a minimal SteamGridDB API client for
// cover art resolution.
//
// Both lookup endpoints are failure-tolerant: a non-success response or
// a malformed body reads as "not found", never as a hard error. Only
// transport-level failures surface as errors, so callers can retry them.
package steamgrid

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// maxImageBytes caps a single cover download.
const maxImageBytes = 16 * 1024 * 1024

// SearchResult is one ranked game candidate from the name search.
type SearchResult struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Grid is one cover image reference for a game.
type Grid struct {
	ID  int64  `json:"id"`
	URL string `json:"url"`
}

// Client calls the SteamGridDB HTTP API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a SteamGridDB client.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("steamgriddb api key required")
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("steamgriddb base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

// SearchByName returns ranked candidates for a game name. An empty
// slice with a nil error means "not found".
func (c *Client) SearchByName(ctx context.Context, name string) ([]SearchResult, error) {
	endpoint := c.baseURL + "/search/autocomplete/" + url.PathEscape(name)
	data, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	var results []SearchResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, nil
	}
	return results, nil
}

// Grids returns cover images for a game id, best ranked first. An empty
// slice with a nil error means "not found".
func (c *Client) Grids(ctx context.Context, gameID int64) ([]Grid, error) {
	endpoint := c.baseURL + "/grids/game/" + strconv.FormatInt(gameID, 10)
	data, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	var grids []Grid
	if err := json.Unmarshal(data, &grids); err != nil {
		return nil, nil
	}
	return grids, nil
}

// Download fetches raw image bytes from a grid URL. Unlike the lookup
// endpoints, a non-success status is an error here so the caller can
// retry.
func (c *Client) Download(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download image: unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("read image body: %w", err)
	}
	return data, nil
}

// get performs an authenticated API call. A nil byte slice with a nil
// error signals "not found" per the failure-tolerance contract.
func (c *Client) get(ctx context.Context, endpoint string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("steamgriddb request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil || !env.Success {
		return nil, nil
	}
	return env.Data, nil
}
