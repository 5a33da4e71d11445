// Package metrics records policyscan activity as Prometheus metrics.
//
// A Recorder satisfies both crawler.Observer (discovery candidates and
// retrieval outcomes) and pipeline.Metrics (analyses, backend fallbacks,
// cache hits). A CLI run is short-lived, so metrics are exported with
// WriteTextfile for the node exporter instead of being served over HTTP.
package metrics
