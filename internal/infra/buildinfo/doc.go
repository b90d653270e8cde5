// Package buildinfo exposes build information injected via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/stripedmap-go/internal/infra/buildinfo.Version=v0.3.0"
package buildinfo
