package stripedmap

import (
	"log/slog"
	"math"
)

const (
	// DefaultInitialBuckets is the bucket count used when none is given.
	DefaultInitialBuckets = 16

	// DefaultStripes is the stripe count used when none is given.
	DefaultStripes = 4

	// DefaultMaxLoadFactor is the load factor above which the map grows.
	DefaultMaxLoadFactor = 1.0
)

// Option configures a map at construction time.
type Option func(*options)

type options struct {
	initialBuckets int
	stripes        int
	maxLoadFactor  float64
	allocator      Allocator
	logger         *slog.Logger
	rehashDisabled bool
}

func defaultOptions() options {
	return options{
		initialBuckets: DefaultInitialBuckets,
		stripes:        DefaultStripes,
		maxLoadFactor:  DefaultMaxLoadFactor,
		allocator:      HeapAllocator{},
		logger:         slog.Default(),
	}
}

// WithInitialBuckets sets the initial bucket count. The count is rounded up
// to a power of two no smaller than the stripe count and no smaller than 2.
func WithInitialBuckets(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.initialBuckets = n
		}
	}
}

// WithStripes sets the number of lock stripes, rounded up to a power of two.
func WithStripes(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.stripes = n
		}
	}
}

// WithMaxLoadFactor sets the load factor that triggers growth.
// Values SetMaxLoadFactor would reject are ignored.
func WithMaxLoadFactor(f float64) Option {
	return func(o *options) {
		if f > 0 && !math.IsInf(f, 1) {
			o.maxLoadFactor = f
		}
	}
}

// WithAllocator sets the allocator used for bucket arrays and entries.
func WithAllocator(a Allocator) Option {
	return func(o *options) {
		if a != nil {
			o.allocator = a
		}
	}
}

// WithLogger sets the logger used to report rehash activity.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRehashDisabled creates the map with automatic growth turned off.
func WithRehashDisabled() Option {
	return func(o *options) {
		o.rehashDisabled = true
	}
}

// powerCeil returns the smallest power of two >= n (1 for n <= 1).
func powerCeil(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// initialBucketCount applies the sizing policy for the bucket array.
func initialBucketCount(requested, stripes int) int {
	return powerCeil(max(requested, stripes, 2))
}
