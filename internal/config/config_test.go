package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Verify(Default()); err != nil {
		t.Errorf("Verify(Default()) error = %v", err)
	}
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero stripes", func(c *Config) { c.Map.Stripes = 0 }, "map.stripes"},
		{"zero buckets", func(c *Config) { c.Map.InitialBuckets = 0 }, "map.initial_buckets"},
		{"zero load factor", func(c *Config) { c.Map.MaxLoadFactor = 0 }, "map.max_load_factor"},
		{"unknown hash", func(c *Config) { c.Map.Hash = "crc32" }, "map.hash"},
		{"negative memory", func(c *Config) { c.Map.MemoryLimit = -1 }, "map.memory_limit"},
		{"no workers", func(c *Config) { c.Workload.Workers = 0 }, "workload.workers"},
		{"negative duration", func(c *Config) { c.Workload.Duration = -time.Second }, "workload.duration"},
		{"bad distribution", func(c *Config) { c.Workload.Distribution = "zipf" }, "workload.distribution"},
		{"negative rate", func(c *Config) { c.Workload.Rate = -1 }, "workload.rate"},
		{"empty mix", func(c *Config) { c.Workload.Mix = MixSection{} }, "workload.mix"},
		{"negative weight", func(c *Config) { c.Workload.Mix.Erase = -1 }, "workload.mix.erase"},
		{"metrics path", func(c *Config) { c.Metrics.Path = "metrics" }, "metrics.path"},
		{"log level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Verify(cfg)
			if err == nil {
				t.Fatal("Verify() error = nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Verify() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestVerifyReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Map.Stripes = 0
	cfg.Log.Level = "trace"

	err := Verify(cfg)
	if err == nil || !strings.Contains(err.Error(), "map.stripes") || !strings.Contains(err.Error(), "log.level") {
		t.Errorf("Verify() error = %v, want both problems", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stripedmap.yaml")
	content := `
map:
  stripes: 32
  hash: xxhash
workload:
  duration: 5s
  mix:
    insert: 10
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("STRIPEDMAP_WORKLOAD_WORKERS", "3")

	cfg, err := Load(path, map[string]any{"log.level": "debug"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Map.Stripes != 32 || cfg.Map.Hash != "xxhash" {
		t.Errorf("Map = %+v", cfg.Map)
	}
	if cfg.Workload.Duration != 5*time.Second {
		t.Errorf("Workload.Duration = %v, want 5s", cfg.Workload.Duration)
	}
	if cfg.Workload.Workers != 3 {
		t.Errorf("Workload.Workers = %d, want 3", cfg.Workload.Workers)
	}
	if cfg.Workload.Mix.Insert != 10 || cfg.Workload.Mix.Get != 30 {
		t.Errorf("Workload.Mix = %+v, want insert from file and get from defaults", cfg.Workload.Mix)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Map.MaxLoadFactor != 1.0 {
		t.Errorf("Map.MaxLoadFactor = %v, want default 1", cfg.Map.MaxLoadFactor)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	if _, err := Load("", map[string]any{"map.stripes": 0}); err == nil {
		t.Error("Load() accepted map.stripes = 0")
	}
}

func TestMapOptions(t *testing.T) {
	cfg := Default()
	cfg.Map.Stripes = 8
	cfg.Map.InitialBuckets = 100
	cfg.Map.RehashEnabled = false
	cfg.Map.MemoryLimit = 1 << 20

	h, err := cfg.Map.Hasher()
	if err != nil {
		t.Fatal(err)
	}
	if h("a") != h("a") {
		t.Error("Hasher() is not stable")
	}
	if len(cfg.Map.MapOptions()) != 5 {
		t.Errorf("MapOptions() returned %d options, want 5", len(cfg.Map.MapOptions()))
	}
}

func TestSanitize(t *testing.T) {
	cfg := Default()
	cfg.Map.Hash = " XXHash "
	cfg.Workload.Distribution = "Unique"
	cfg.Log.Level = "WARNING"
	cfg.Log.Format = "Console"
	cfg.Metrics.Addr = " :9464 "

	got := cfg.Sanitize()

	want := Default()
	want.Map.Hash = "xxhash"
	want.Workload.Distribution = "unique"
	want.Log.Level = "warn"
	want.Log.Format = "text"
	want.Metrics.Addr = ":9464"
	if *got != *want {
		t.Errorf("Sanitize() = %+v, want %+v", got, want)
	}
	if cfg.Map.Hash != " XXHash " {
		t.Errorf("Sanitize() modified its receiver: hash = %q", cfg.Map.Hash)
	}

	empty := Default()
	empty.Map.Hash = ""
	if h := empty.Sanitize().Map.Hash; h != "murmur3" {
		t.Errorf("Sanitize() empty hash = %q, want murmur3", h)
	}
}

func TestLoadCanonicalisesNames(t *testing.T) {
	cfg, err := Load("", map[string]any{
		"workload.distribution": "Unique",
		"map.hash":              "XXHASH",
		"log.level":             "Warning",
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Workload.Distribution != "unique" {
		t.Errorf("Workload.Distribution = %q, want unique", cfg.Workload.Distribution)
	}
	if cfg.Map.Hash != "xxhash" {
		t.Errorf("Map.Hash = %q, want xxhash", cfg.Map.Hash)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
}

func TestLoadSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stripedmap.yaml")
	if err := os.WriteFile(path, []byte("map:\n  stripes: 16\nworkload:\n  duration: 2s\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("STRIPEDMAP_WORKLOAD_WORKERS", "3")

	_, settings, err := LoadSettings(path, map[string]any{"log.level": "debug"})
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}

	byKey := make(map[string]Setting, len(settings))
	for _, s := range settings {
		byKey[s.Key] = s
	}
	tests := []struct {
		key    string
		value  string
		origin string
	}{
		{"map.stripes", "16", "file"},
		{"workload.duration", "2s", "file"},
		{"workload.workers", "3", "env"},
		{"log.level", "debug", "override"},
		{"map.max_load_factor", "1", OriginDefault},
		{"workload.mix.insert", "40", OriginDefault},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			s, ok := byKey[tt.key]
			if !ok {
				t.Fatalf("no setting for %s", tt.key)
			}
			if s.Origin != tt.origin {
				t.Errorf("Origin = %q, want %q", s.Origin, tt.origin)
			}
			if tt.value != "" && s.Value != tt.value {
				t.Errorf("Value = %q, want %q", s.Value, tt.value)
			}
		})
	}
}
