package metrics

import (
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "notionblog"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry         *prom.Registry
	stageDuration    *prom.HistogramVec
	buildDuration    prom.Histogram
	stageResults     *prom.CounterVec
	buildOutcome     *prom.CounterVec
	apiDuration      *prom.HistogramVec
	apiRequests      *prom.CounterVec
	retries          *prom.CounterVec
	retriesExhausted *prom.CounterVec
	cacheResults     *prom.CounterVec
	assetResults     *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg
// (a fresh registry when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		registry: reg,
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		apiDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Latency of content API requests",
			Buckets:   prom.DefBuckets,
		}, []string{"endpoint"}),
		apiRequests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Content API requests by endpoint and HTTP status",
		}, []string{"endpoint", "status"}),
		retries: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "api_retries_total",
			Help:      "Content API retries after transient failures",
		}, []string{"endpoint"}),
		retriesExhausted: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "api_retry_exhausted_total",
			Help:      "Content API calls that failed after spending the retry budget",
		}, []string{"endpoint"}),
		cacheResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Content cache lookups by domain and result",
		}, []string{"domain", "result"}),
		assetResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "asset_downloads_total",
			Help:      "Asset downloads by result",
		}, []string{"result"}),
	}
	reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.stageResults, pr.buildOutcome,
		pr.apiDuration, pr.apiRequests, pr.retries, pr.retriesExhausted, pr.cacheResults, pr.assetResults)
	return pr
}

// Registry returns the registry the metrics are registered on.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.registry }

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcomeLabel) {
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

// ObserveAPIRequest records one HTTP round trip. status 0 means no response was received.
func (p *PrometheusRecorder) ObserveAPIRequest(endpoint string, d time.Duration, status int) {
	p.apiDuration.WithLabelValues(endpoint).Observe(d.Seconds())
	p.apiRequests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
}

func (p *PrometheusRecorder) IncAPIRetry(endpoint string) {
	p.retries.WithLabelValues(endpoint).Inc()
}

func (p *PrometheusRecorder) IncAPIRetryExhausted(endpoint string) {
	p.retriesExhausted.WithLabelValues(endpoint).Inc()
}

func (p *PrometheusRecorder) IncCacheResult(domain string, hit bool) {
	p.cacheResults.WithLabelValues(domain, resultLabel(hit, "hit", "miss")).Inc()
}

func (p *PrometheusRecorder) IncAssetResult(success bool) {
	p.assetResults.WithLabelValues(resultLabel(success, "success", "failed")).Inc()
}

// WriteTextfile writes the registry in the node_exporter textfile format.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	return prom.WriteToTextfile(path, p.registry)
}

func resultLabel(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}
