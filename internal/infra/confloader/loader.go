package confloader

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the default environment variable prefix.
const DefaultEnvPrefix = "STRIPEDMAP_"

// Origins reported by Loader.Origin.
const (
	OriginFile     = "file"
	OriginEnv      = "env"
	OriginOverride = "override"
)

// Loader merges configuration layers into one koanf tree and remembers
// which layer last set each key.
type Loader struct {
	k         *koanf.Koanf
	origins   map[string]string
	envPrefix string
	filePath  string
	overrides map[string]any
}

// Option is a function that configures the Loader.
type Option func(*Loader)

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) { l.envPrefix = prefix }
}

// WithConfigFile sets the YAML file read first by Load. Empty means none.
func WithConfigFile(path string) Option {
	return func(l *Loader) { l.filePath = path }
}

// WithOverrides sets values, keyed by dotted path, that win over every
// other source. Commands pass explicitly set flags here.
func WithOverrides(values map[string]any) Option {
	return func(l *Loader) { l.overrides = values }
}

// NewLoader creates a new configuration loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		k:         koanf.New("."),
		origins:   make(map[string]string),
		envPrefix: DefaultEnvPrefix,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load merges the file, the environment and the overrides, in that order,
// and unmarshals the result over target. Fields of target not named by
// any source keep their current values, so callers pass a struct holding
// the defaults.
func (l *Loader) Load(target any) error {
	if err := l.LoadFile(l.filePath); err != nil {
		return err
	}
	if err := l.LoadEnv(); err != nil {
		return err
	}
	if err := l.LoadMap(l.overrides); err != nil {
		return err
	}
	if err := l.Unmarshal(target); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

// LoadFile merges a YAML file. An empty path is a no-op.
func (l *Loader) LoadFile(path string) error {
	if path == "" {
		return nil
	}
	return l.merge(OriginFile, func(k *koanf.Koanf) error {
		return k.Load(file.Provider(path), yaml.Parser())
	})
}

// LoadEnv merges environment variables carrying the loader's prefix.
// The first underscore after the prefix separates the section from the key:
// STRIPEDMAP_MAP_MAX_LOAD_FACTOR sets map.max_load_factor.
func (l *Loader) LoadEnv() error {
	provider := env.Provider(l.envPrefix, ".", func(s string) string {
		return envKey(l.envPrefix, s)
	})
	return l.merge(OriginEnv, func(k *koanf.Koanf) error {
		return k.Load(provider, nil)
	})
}

func envKey(prefix, name string) string {
	s := strings.ToLower(strings.TrimPrefix(name, prefix))
	return strings.Replace(s, "_", ".", 1)
}

// LoadMap merges a map of dotted keys or nested maps.
func (l *Loader) LoadMap(data map[string]any) error {
	if len(data) == 0 {
		return nil
	}
	return l.merge(OriginOverride, func(k *koanf.Koanf) error {
		return k.Load(mapProvider(data), nil)
	})
}

// merge loads one layer on its own so its keys can be attributed, then
// folds it into the main tree.
func (l *Loader) merge(origin string, load func(*koanf.Koanf) error) error {
	layer := koanf.New(".")
	if err := load(layer); err != nil {
		return fmt.Errorf("load %s config: %w", origin, err)
	}
	for _, key := range layer.Keys() {
		l.origins[key] = origin
	}
	return l.k.Merge(layer)
}

// Unmarshal unmarshals the merged configuration into target using koanf
// tags.
func (l *Loader) Unmarshal(target any) error {
	return l.k.Unmarshal("", target)
}

// Get returns the merged value of a dotted key, or nil.
func (l *Loader) Get(key string) any {
	return l.k.Get(key)
}

// Origin reports which layer set key: OriginFile, OriginEnv,
// OriginOverride, or "" when no layer did and the default applies.
func (l *Loader) Origin(key string) string {
	return l.origins[key]
}
