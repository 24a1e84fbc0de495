package api

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimitedClient wraps a Fetcher with rate limiting so aggressive polling
// schedules cannot hammer the INMET API.
type RateLimitedClient struct {
	fetcher Fetcher
	limiter *rate.Limiter
}

// NewRateLimitedClient creates a rate limited wrapper around a fetcher.
// rps is the maximum requests per second allowed (can be fractional for less
// than 1 request per second), burst is the maximum burst size allowed.
func NewRateLimitedClient(fetcher Fetcher, rps float64, burst int) *RateLimitedClient {
	return &RateLimitedClient{
		fetcher: fetcher,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// FetchCurrent fetches current conditions, respecting rate limits
func (c *RateLimitedClient) FetchCurrent(ctx context.Context, geocode string) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &NetworkError{Endpoint: "current", Err: fmt.Errorf("rate limit wait canceled: %w", err)}
	}
	return c.fetcher.FetchCurrent(ctx, geocode)
}

// FetchForecast fetches the forecast, respecting rate limits
func (c *RateLimitedClient) FetchForecast(ctx context.Context, geocode string) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &NetworkError{Endpoint: "forecast", Err: fmt.Errorf("rate limit wait canceled: %w", err)}
	}
	return c.fetcher.FetchForecast(ctx, geocode)
}

// Ensure RateLimitedClient implements the Fetcher interface
var _ Fetcher = (*RateLimitedClient)(nil)
