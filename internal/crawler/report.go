package crawler

import (
	"fmt"
	"time"

	"userfetch/internal/logger"
)

// Stage names the pipeline step an endpoint reached.
type Stage string

// Pipeline stages, in order.
const (
	StageFetch    Stage = "fetch"
	StageParse    Stage = "parse"
	StageDispatch Stage = "dispatch"
	StageAdapt    Stage = "adapt"
	StageDone     Stage = "done"
)

// AttemptResult records the outcome of one endpoint.
type AttemptResult struct {
	Timestamp  time.Time
	Name       string
	URL        string
	Adapter    string
	Stage      Stage
	Error      string
	Duration   time.Duration
	StatusCode int
	Bytes      int
	Records    int
	Success    bool
}

// Report lists the attempt of every endpoint in configuration order.
type Report struct {
	Attempts []AttemptResult
}

// AttemptStats contains statistics about a crawl.
type AttemptStats struct {
	FailuresByStage map[Stage]int
	TotalEndpoints  int
	Succeeded       int
	Failed          int
	TotalRecords    int
	TotalBytes      int
}

// Stats summarizes the report.
func (r *Report) Stats() AttemptStats {
	stats := AttemptStats{
		TotalEndpoints:  len(r.Attempts),
		FailuresByStage: make(map[Stage]int),
	}

	for _, a := range r.Attempts {
		stats.TotalBytes += a.Bytes

		if a.Success {
			stats.Succeeded++
			stats.TotalRecords += a.Records

			continue
		}

		stats.Failed++
		stats.FailuresByStage[a.Stage]++
	}

	return stats
}

// String returns a string representation of attempt stats.
func (s AttemptStats) String() string {
	return fmt.Sprintf(
		"Endpoints: %d total, %d success, %d failed | Records: %d | Bytes: %d",
		s.TotalEndpoints,
		s.Succeeded,
		s.Failed,
		s.TotalRecords,
		s.TotalBytes,
	)
}

// LogSummary logs one line per endpoint followed by the overall stats.
func (r *Report) LogSummary(l *logger.Logger) {
	l.Info("fetch summary")

	for i, a := range r.Attempts {
		attrs := []any{
			"n", i + 1,
			"source", a.Name,
			"url", a.URL,
			"status", a.StatusCode,
			"duration", a.Duration.Round(time.Millisecond),
		}

		if a.Success {
			l.Info("endpoint ok", append(attrs, "adapter", a.Adapter, "records", a.Records)...)

			continue
		}

		l.Warn("endpoint failed", append(attrs, "stage", a.Stage, "error", a.Error)...)
	}

	l.Info(fmt.Sprintf("overall: %s", r.Stats()))
}
