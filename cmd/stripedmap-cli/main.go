// Package main provides the entry point for stripedmap-cli.
//
// stripedmap-cli drives concurrent workloads against a striped hash
// multimap and reports throughput, bucket distribution and rehash
// behaviour, optionally exposing them as Prometheus metrics.
package main

import (
	"os"

	"github.com/yndnr/stripedmap-go/internal/cli/command"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		command.PrintError("%v", err)
		os.Exit(1)
	}
}
