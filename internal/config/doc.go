// Package config defines the configuration of the stripedmap command-line
// tool: the map under test, the workload driving it, the metrics endpoint
// and logging.
//
// Files:
//
//   - schema.go: configuration structure with koanf tags
//   - default.go: default values
//   - verify.go: validation
//   - load.go: layered loading through confloader
package config
