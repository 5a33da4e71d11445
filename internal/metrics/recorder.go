package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nao1215/policyscan/internal/model"
)

// Namespace prefixes every metric name.
const Namespace = "policyscan"

// candidateBuckets cover 0 to MaxCandidates discovered URLs.
var candidateBuckets = []float64{0, 1, 2, 3, 4, 5}

// Recorder counts analysis and discovery events on its own registry, so
// several Recorders never collide and nothing leaks into the global one.
// It is safe for concurrent use.
type Recorder struct {
	registry   *prometheus.Registry
	analyses   *prometheus.CounterVec
	fallbacks  *prometheus.CounterVec
	retrievals *prometheus.CounterVec
	candidates prometheus.Histogram
	cacheHits  prometheus.Counter
}

// NewRecorder creates a Recorder with all metrics registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "analyses_total",
			Help:      "Completed analyses by source kind and prose backend.",
		}, []string{"source", "backend"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "backend_fallbacks_total",
			Help:      "Model backend failures answered by the heuristic path.",
		}, []string{"operation"}),
		retrievals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "retrieval_attempts_total",
			Help:      "Policy retrieval attempts by outcome.",
		}, []string{"outcome"}),
		candidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "discovery_candidates",
			Help:      "Candidate policy URLs found per discovery.",
			Buckets:   candidateBuckets,
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "cache_hits_total",
			Help:      "Analyses served from the result cache.",
		}),
	}

	r.registry.MustRegister(r.analyses, r.fallbacks, r.retrievals, r.candidates, r.cacheHits)
	return r
}

// Registry returns the registry holding the Recorder's metrics.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveAnalysis counts a completed analysis.
func (r *Recorder) ObserveAnalysis(kind model.SourceKind, backend string) {
	r.analyses.WithLabelValues(kind.String(), backend).Inc()
}

// ObserveFallback counts a model failure in operation.
func (r *Recorder) ObserveFallback(operation string) {
	r.fallbacks.WithLabelValues(operation).Inc()
}

// ObserveCacheHit counts an analysis served from the cache.
func (r *Recorder) ObserveCacheHit() {
	r.cacheHits.Inc()
}

// ObserveCandidates records how many candidate URLs a discovery found.
func (r *Recorder) ObserveCandidates(n int) {
	r.candidates.Observe(float64(n))
}

// ObserveRetrieval counts one retrieval attempt with its outcome.
func (r *Recorder) ObserveRetrieval(outcome string) {
	r.retrievals.WithLabelValues(outcome).Inc()
}

// WriteTextfile writes all metrics to path in the text exposition format
// read by the node exporter's textfile collector. The file is replaced
// atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
