// Package metric exports stripedmap statistics and workload activity in
// Prometheus format.
//
//   - prometheus.go: registry, operation counters and latency histograms,
//     and the /metrics HTTP handler
//   - collector.go: a prometheus.Collector that samples a map's Stats on
//     every scrape
package metric
