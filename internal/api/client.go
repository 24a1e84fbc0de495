package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/zanaca/ha-inmet-weather/internal/metrics"
)

// DefaultBaseURL is the INMET forecast API. No authentication.
const DefaultBaseURL = "https://apiprevmet3.inmet.gov.br"

const requestTimeout = 30 * time.Second

// NetworkError wraps any transport, HTTP-status or body-level failure talking
// to the INMET API. The client never retries; callers decide on backoff and
// whether to keep serving last-known-good data.
type NetworkError struct {
	Endpoint string
	URL      string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("inmet %s %s: %v", e.Endpoint, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Fetcher fetches raw INMET payloads for a geocode.
type Fetcher interface {
	FetchCurrent(ctx context.Context, geocode string) (json.RawMessage, error)
	FetchForecast(ctx context.Context, geocode string) (json.RawMessage, error)
}

// Client is a client for the INMET forecast API
type Client struct {
	baseURL string
	client  *http.Client
}

// Ensure Client implements Fetcher
var _ Fetcher = (*Client)(nil)

// NewClient creates a new INMET API client
func NewClient() *Client {
	return NewClientWithBaseURL(DefaultBaseURL)
}

// NewClientWithBaseURL creates a client against a non-default base URL.
// Used by tests and by deployments behind a caching proxy.
func NewClientWithBaseURL(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// FetchCurrent fetches the current-conditions payload of the station nearest
// to the given geocode
func (c *Client) FetchCurrent(ctx context.Context, geocode string) (json.RawMessage, error) {
	return c.get(ctx, "current", fmt.Sprintf("%s/estacao/proxima/%s", c.baseURL, geocode))
}

// FetchForecast fetches the multi-day forecast payload for the given geocode
func (c *Client) FetchForecast(ctx context.Context, geocode string) (json.RawMessage, error) {
	return c.get(ctx, "forecast", fmt.Sprintf("%s/previsao/%s", c.baseURL, geocode))
}

func (c *Client) get(ctx context.Context, endpoint, url string) (raw json.RawMessage, err error) {
	start := time.Now()
	defer func() { metrics.RecordFetch(endpoint, time.Since(start), err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &NetworkError{Endpoint: endpoint, URL: url, Err: err}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &NetworkError{Endpoint: endpoint, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &NetworkError{
			Endpoint: endpoint,
			URL:      url,
			Err:      fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Endpoint: endpoint, URL: url, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if !json.Valid(body) {
		return nil, &NetworkError{Endpoint: endpoint, URL: url, Err: fmt.Errorf("response body is not valid JSON")}
	}

	return body, nil
}
