package config

import "strings"

// Sanitize returns a copy of cfg with every named choice in its canonical
// spelling, ready for logging, display and exact comparison downstream:
// names are trimmed and lower-cased, an empty hash becomes "murmur3", the
// "warning" level becomes "warn" and the "console" format becomes "text".
func (c *Config) Sanitize() *Config {
	out := *c
	out.Map.Hash = canonical(c.Map.Hash)
	if out.Map.Hash == "" {
		out.Map.Hash = "murmur3"
	}
	out.Workload.Distribution = canonical(c.Workload.Distribution)
	out.Metrics.Addr = strings.TrimSpace(c.Metrics.Addr)
	out.Metrics.Path = strings.TrimSpace(c.Metrics.Path)

	out.Log.Level = canonical(c.Log.Level)
	if out.Log.Level == "warning" {
		out.Log.Level = "warn"
	}
	out.Log.Format = canonical(c.Log.Format)
	if out.Log.Format == "console" {
		out.Log.Format = "text"
	}
	return &out
}

func canonical(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
