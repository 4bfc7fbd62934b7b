package metrics

import "time"

// ResultLabel enumerates export result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailed  ResultLabel = "failed"
)

// Recorder defines observability hooks for analysis and export metrics.
// Implementations may forward to Prometheus or any other backend.
type Recorder interface {
	ObserveExportDuration(format string, d time.Duration)
	IncExportResult(format string, result ResultLabel)
	IncTopicsRendered(section string, placeholder bool)
	ObserveAnalysisDuration(d time.Duration, success bool)
	IncAnalysisRetry()
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveExportDuration(string, time.Duration) {}
func (NoopRecorder) IncExportResult(string, ResultLabel)         {}
func (NoopRecorder) IncTopicsRendered(string, bool)              {}
func (NoopRecorder) ObserveAnalysisDuration(time.Duration, bool) {}
func (NoopRecorder) IncAnalysisRetry()                           {}
