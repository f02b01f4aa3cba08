// Package metrics records transport, cache and build metrics.
//
// Components receive a Recorder and default to NoopRecorder. When
// monitoring.metrics.textfile is configured the build uses a PrometheusRecorder
// and writes its registry to that path once the build finishes, in the format
// read by the node_exporter textfile collector.
package metrics
