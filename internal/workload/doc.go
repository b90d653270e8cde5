// Package workload drives a string-keyed multimap with a configurable mix
// of concurrent operations and reports what happened.
//
// Workers run under an errgroup, share an optional token-bucket rate
// limit and draw keys either uniformly from a fixed key space or as fresh
// ULIDs. Each operation can be reported to a Recorder such as the metric
// registry.
package workload
