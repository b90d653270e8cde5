// Package httpserver serves the observation endpoints of stripedmap-cli
// serve.
//
//   - GET /health: liveness
//   - GET /stats: map statistics as JSON
//   - GET <metrics path>: Prometheus exposition
//
// Every route passes through Recover, RequestID and, when configured, a
// per-client rate limit and access logging.
package httpserver
