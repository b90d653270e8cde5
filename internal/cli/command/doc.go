// Package command defines the stripedmap-cli commands.
//
//   - run: drive a workload against a fresh map and print the report
//   - serve: run a workload while exposing Prometheus metrics, reloading
//     tunables when the configuration file changes
//   - shell: operate on an in-process map one command at a time
//   - config: show or validate the effective configuration
//   - version: print build information
//
// Every command loads configuration the same way: defaults, then the
// --config file, then STRIPEDMAP_* environment variables, then any flags
// the user set explicitly.
package command
