// Package crawler fetches user endpoints and aggregates their normalized records.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"userfetch/internal/config"
	"userfetch/internal/logger"
	"userfetch/internal/models"
	"userfetch/internal/normalizer"
)

// EndpointError pairs a failed endpoint with the reason it was skipped.
type EndpointError struct {
	Endpoint string
	Source   string
	Err      error
}

func (e EndpointError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Source, e.Endpoint, e.Err)
}

func (e EndpointError) Unwrap() error {
	return e.Err
}

// Result is the outcome of one crawl.
type Result struct {
	Report *Report
	Users  []models.User
	Errors []EndpointError
}

// AllFailed reports whether endpoints were attempted and none succeeded.
func (r *Result) AllFailed() bool {
	return len(r.Report.Attempts) > 0 && len(r.Errors) == len(r.Report.Attempts)
}

// Err joins every endpoint error, or returns nil when all endpoints succeeded.
func (r *Result) Err() error {
	errs := make([]error, 0, len(r.Errors))
	for _, e := range r.Errors {
		errs = append(errs, e)
	}

	return errors.Join(errs...)
}

// Client runs the fetch, parse, dispatch and adapt pipeline for each endpoint.
type Client struct {
	fetcher     Fetcher
	processor   *normalizer.Processor
	log         *logger.Logger
	concurrency int
}

// NewClient creates a crawler client from configuration.
func NewClient(cfg *config.Config, log *logger.Logger) *Client {
	processor := normalizer.NewProcessor(normalizer.NewDispatcher(cfg.Routes()...))

	return NewClientWithDeps(NewScraperWithConfig(&cfg.Fetch), processor, log, cfg.Fetch.Concurrency)
}

// NewClientWithDeps creates a crawler client with injected dependencies.
// A concurrency below 1 means sequential.
func NewClientWithDeps(fetcher Fetcher, processor *normalizer.Processor, log *logger.Logger, concurrency int) *Client {
	if concurrency < 1 {
		concurrency = 1
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Client{
		fetcher:     fetcher,
		processor:   processor,
		log:         log,
		concurrency: concurrency,
	}
}

// outcome is the private result slot of one endpoint pipeline.
type outcome struct {
	err     error
	users   []models.User
	attempt AttemptResult
}

// Crawl processes the enabled sources and returns their users in source order.
// Per-endpoint failures are recorded in Result.Errors and never stop the crawl.
func (c *Client) Crawl(ctx context.Context, sources []config.SourceConfig) *Result {
	var enabled []config.SourceConfig

	for _, src := range sources {
		if src.Enabled {
			enabled = append(enabled, src)
		}
	}

	outcomes := make([]outcome, len(enabled))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, src := range enabled {
		g.Go(func() error {
			outcomes[i] = c.crawlOne(gctx, src)

			return nil
		})
	}

	// Pipelines never return errors, failures live in their outcome slot
	_ = g.Wait()

	result := &Result{Report: &Report{Attempts: make([]AttemptResult, 0, len(outcomes))}}

	for i, o := range outcomes {
		result.Report.Attempts = append(result.Report.Attempts, o.attempt)

		if o.err != nil {
			result.Errors = append(result.Errors, EndpointError{
				Endpoint: enabled[i].URL,
				Source:   enabled[i].Name,
				Err:      o.err,
			})

			continue
		}

		result.Users = append(result.Users, o.users...)
	}

	if result.Users == nil {
		result.Users = []models.User{}
	}

	return result
}

func (c *Client) crawlOne(ctx context.Context, src config.SourceConfig) outcome {
	log := c.log.With("source", src.Name)
	log.Debug("fetching", "url", src.URL)

	attempt := AttemptResult{
		Timestamp: time.Now(),
		Name:      src.Name,
		URL:       src.URL,
		Stage:     StageFetch,
	}

	fail := func(err error) outcome {
		attempt.Error = err.Error()
		log.Warn("skipping endpoint", "stage", attempt.Stage, "error", err)

		return outcome{err: err, attempt: attempt}
	}

	// 1. Fetch
	body, statusCode, duration, err := c.fetcher.FetchWithMetrics(ctx, src.URL)
	attempt.StatusCode = statusCode
	attempt.Duration = duration
	attempt.Bytes = len(body)

	if err != nil {
		return fail(err)
	}

	// 2-4. Parse, dispatch, adapt
	users, kind, err := c.processor.Process(src.URL, body)
	if err != nil {
		attempt.Stage = stageOf(err)
		if kind != 0 {
			attempt.Adapter = kind.String()
		}

		return fail(err)
	}

	attempt.Stage = StageDone
	attempt.Adapter = kind.String()
	attempt.Records = len(users)
	attempt.Success = true

	log.Info("fetched users", "adapter", kind, "records", len(users), "duration", duration.Round(time.Millisecond))

	return outcome{users: users, attempt: attempt}
}

func stageOf(err error) Stage {
	switch {
	case errors.Is(err, normalizer.ErrParse):
		return StageParse
	case errors.Is(err, normalizer.ErrUnknownEndpoint):
		return StageDispatch
	default:
		return StageAdapt
	}
}
