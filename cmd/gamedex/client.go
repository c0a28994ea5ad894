package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"gamedex/internal/catalog"
	"gamedex/internal/daemon"
)

// apiClient is a thin wrapper over the daemon's local HTTP API.
type apiClient struct {
	base string
	http *http.Client
}

func newAPIClient(addr string) *apiClient {
	base := strings.TrimSpace(addr)
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return &apiClient{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *apiClient) Status(ctx context.Context) (daemon.Status, error) {
	var status daemon.Status
	err := c.get(ctx, "/api/status", nil, &status)
	return status, err
}

func (c *apiClient) Scan(ctx context.Context) (string, error) {
	var resp daemon.ScanResponse
	if err := c.post(ctx, "/api/scan", nil, &resp); err != nil {
		return "", err
	}
	return resp.SessionID, nil
}

type catalogQuery struct {
	Platform   string
	Search     string
	Favorites  bool
	Descending bool
}

func (c *apiClient) Catalog(ctx context.Context, query catalogQuery) ([]catalog.Entry, error) {
	values := url.Values{}
	if query.Platform != "" {
		values.Set("platform", query.Platform)
	}
	if query.Search != "" {
		values.Set("search", query.Search)
	}
	if query.Favorites {
		values.Set("favorites", "1")
	}
	if query.Descending {
		values.Set("order", "desc")
	}
	var resp daemon.CatalogResponse
	if err := c.get(ctx, "/api/catalog", values, &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

func (c *apiClient) SetFavorite(ctx context.Context, entry catalog.Entry, favorite bool) error {
	return c.post(ctx, "/api/favorites", daemon.FavoriteRequest{Entry: entry, Favorite: favorite}, nil)
}

func (c *apiClient) RecordLaunch(ctx context.Context, entry catalog.Entry) error {
	return c.post(ctx, "/api/launches", entry, nil)
}

func (c *apiClient) get(ctx context.Context, path string, values url.Values, out any) error {
	target := c.base + path
	if len(values) > 0 {
		target += "?" + values.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(req, out)
}

func (c *apiClient) post(ctx context.Context, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *apiClient) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return wrapDialError(err, c.base)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("daemon: %s", apiErr.Error)
		}
		return fmt.Errorf("daemon returned status %d", resp.StatusCode)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func wrapDialError(err error, base string) error {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return fmt.Errorf("connect to daemon at %s: connection refused; start the daemon with `gamedexd`", base)
	}
	return fmt.Errorf("connect to daemon: %w", err)
}
