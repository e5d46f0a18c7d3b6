package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"userfetch/internal/config"
	"userfetch/pkg/utils"
)

// Transport errors.
var (
	ErrTransport            = errors.New("transport error")
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	ErrResponseTooLarge     = errors.New("response exceeds buffer limit")
)

// Fetcher retrieves the raw body of an endpoint.
type Fetcher interface {
	// FetchWithMetrics returns (body, statusCode, duration, error).
	// Every error wraps ErrTransport.
	FetchWithMetrics(ctx context.Context, url string) ([]byte, int, time.Duration, error)
}

// Scraper is the HTTP Fetcher. It issues one GET per call and never retries.
type Scraper struct {
	client  *http.Client
	headers http.Header
	limit   int64
}

// NewScraper creates a new scraper instance with default config.
func NewScraper() *Scraper {
	defaults := config.DefaultConfig().Fetch

	return NewScraperWithConfig(&defaults)
}

// NewScraperWithConfig creates a new scraper honoring the fetch timeout and buffer limit.
func NewScraperWithConfig(cfg *config.FetchConfig) *Scraper {
	return &Scraper{
		client: &http.Client{
			Timeout: cfg.GetTimeout(),
		},
		headers: utils.NewHTTPHelper().BuildHeaders(nil),
		limit:   cfg.GetBufferLimit(),
	}
}

// FetchWithMetrics returns (body, statusCode, duration, error).
func (s *Scraper) FetchWithMetrics(ctx context.Context, url string) ([]byte, int, time.Duration, error) {
	startTime := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, 0, time.Since(startTime), fmt.Errorf("%w: failed to create request: %w", ErrTransport, err)
	}

	req.Header = s.headers.Clone()

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, time.Since(startTime), fmt.Errorf("%w: request failed: %w", ErrTransport, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, time.Since(startTime),
			fmt.Errorf("%w: %w: %d", ErrTransport, ErrUnexpectedStatusCode, resp.StatusCode)
	}

	// Read one byte past the limit to detect oversized bodies
	body, err := io.ReadAll(io.LimitReader(resp.Body, s.limit+1))
	if err != nil {
		return nil, resp.StatusCode, time.Since(startTime),
			fmt.Errorf("%w: failed to read response body: %w", ErrTransport, err)
	}

	if int64(len(body)) > s.limit {
		return nil, resp.StatusCode, time.Since(startTime),
			fmt.Errorf("%w: %w: %d bytes", ErrTransport, ErrResponseTooLarge, s.limit)
	}

	return body, resp.StatusCode, time.Since(startTime), nil
}

// Fetch returns only the body of url.
func (s *Scraper) Fetch(ctx context.Context, url string) ([]byte, error) {
	body, _, _, err := s.FetchWithMetrics(ctx, url)

	return body, err
}
