package metrics

import (
	"fmt"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "dasaf"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg              *prom.Registry
	exportDuration   *prom.HistogramVec
	exportResults    *prom.CounterVec
	topicsRendered   *prom.CounterVec
	analysisDuration *prom.HistogramVec
	analysisRetries  prom.Counter
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg,
// or on a fresh registry when reg is nil.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{reg: reg}
	pr.exportDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "export_duration_seconds",
		Help:      "Duration of document serialization per format",
		Buckets:   prom.DefBuckets,
	}, []string{"format"})
	pr.exportResults = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "export_results_total",
		Help:      "Export results by format and outcome",
	}, []string{"format", "result"})
	pr.topicsRendered = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "topics_rendered_total",
		Help:      "Topics rendered into reports by section and whether a placeholder was used",
	}, []string{"section", "placeholder"})
	pr.analysisDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "analysis_duration_seconds",
		Help:      "Duration of language-model analysis requests including retries",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
	}, []string{"result"})
	pr.analysisRetries = prom.NewCounter(prom.CounterOpts{
		Namespace: namespace,
		Name:      "analysis_retries_total",
		Help:      "Total language-model request retries (transient failures)",
	})
	reg.MustRegister(pr.exportDuration, pr.exportResults, pr.topicsRendered, pr.analysisDuration, pr.analysisRetries)
	return pr
}

// Registry returns the registry the metrics are registered on.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.reg }

func (p *PrometheusRecorder) ObserveExportDuration(format string, d time.Duration) {
	if p == nil || p.exportDuration == nil {
		return
	}
	p.exportDuration.WithLabelValues(format).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncExportResult(format string, result ResultLabel) {
	if p == nil || p.exportResults == nil {
		return
	}
	p.exportResults.WithLabelValues(format, string(result)).Inc()
}

func (p *PrometheusRecorder) IncTopicsRendered(section string, placeholder bool) {
	if p == nil || p.topicsRendered == nil {
		return
	}
	p.topicsRendered.WithLabelValues(section, strconv.FormatBool(placeholder)).Inc()
}

func (p *PrometheusRecorder) ObserveAnalysisDuration(d time.Duration, success bool) {
	if p == nil || p.analysisDuration == nil {
		return
	}
	res := string(ResultFailed)
	if success {
		res = string(ResultSuccess)
	}
	p.analysisDuration.WithLabelValues(res).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncAnalysisRetry() {
	if p == nil || p.analysisRetries == nil {
		return
	}
	p.analysisRetries.Inc()
}

// WriteTextfile writes every metric on the recorder's registry to path in
// the Prometheus text exposition format.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, p.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
