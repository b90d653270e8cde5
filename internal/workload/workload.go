package workload

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/yndnr/stripedmap-go/internal/config"
	"github.com/yndnr/stripedmap-go/internal/telemetry/logger"
	"github.com/yndnr/stripedmap-go/pkg/stripedmap"
)

// Operation names, also used as metric labels.
const (
	OpInsert = "insert"
	OpErase  = "erase"
	OpGet    = "get"
	OpUpdate = "update"
	OpVisit  = "visit"
	OpBulk   = "bulk_insert"
)

// Target is the map under load.
type Target interface {
	Insert(key string, value uint64) error
	InsertBulk(items []stripedmap.KV[string, uint64]) (int, error)
	EraseFirst(key string) int
	GetValueFirst(key string) (uint64, int)
	VisitKey(key string, fn stripedmap.VisitorFunc[string, uint64]) int
	VisitReadOnly(fn stripedmap.ReadOnlyVisitorFunc[string, uint64]) int
	Stats() stripedmap.Stats
}

// Recorder receives one call per operation.
type Recorder interface {
	ObserveOp(op string, d time.Duration, err error)
}

type nopRecorder struct{}

func (nopRecorder) ObserveOp(string, time.Duration, error) {}

// Runner executes a workload against a Target.
type Runner struct {
	cfg      config.WorkloadSection
	target   Target
	recorder Recorder
	limiter  *rate.Limiter
	picker   picker
}

// Option configures a Runner.
type Option func(*Runner)

// WithRecorder reports every operation to rec.
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

// New creates a Runner. cfg must already be verified.
func New(cfg config.WorkloadSection, target Target, opts ...Option) (*Runner, error) {
	p, err := newPicker(cfg.Mix)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		cfg:      cfg,
		target:   target,
		recorder: nopRecorder{},
		picker:   p,
	}
	if cfg.Rate > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = max(1, int(cfg.Rate/10))
		}
		r.limiter = rate.NewLimiter(rate.Limit(cfg.Rate), burst)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run drives the target until the operation budget is spent, the duration
// elapses or ctx is cancelled. Reaching a limit or cancellation is a normal
// end; the report covers whatever ran.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	runID := ulid.Make().String()
	ctx = logger.WithRunID(ctx, runID)
	log := logger.L(ctx)

	if r.cfg.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Duration)
		defer cancel()
	}

	log.Info("workload started",
		"workers", r.cfg.Workers,
		"operations", r.cfg.Operations,
		"duration", r.cfg.Duration,
		"distribution", r.cfg.Distribution,
	)

	var (
		issued atomic.Int64
		mu     sync.Mutex
		total  counts
	)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < r.cfg.Workers; w++ {
		g.Go(func() error {
			wk := r.newWorker(w)
			err := wk.loop(gctx, &issued)
			mu.Lock()
			total.add(&wk.counts)
			mu.Unlock()
			return err
		})
	}
	err := g.Wait()
	elapsed := time.Since(start)

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("workload %s: %w", runID, err)
	}

	rep := newReport(runID, r.cfg.Workers, elapsed, &total, r.target.Stats())
	log.Info("workload finished",
		"operations", rep.Operations,
		"elapsed", elapsed,
		"ops_per_sec", rep.OpsPerSec,
		"errors", rep.Errors,
	)
	return rep, nil
}

type worker struct {
	r      *Runner
	rng    *rand.Rand
	seq    uint64
	id     int
	counts counts
}

func (r *Runner) newWorker(id int) *worker {
	return &worker{
		r:   r,
		id:  id,
		rng: rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), uint64(id))),
	}
}

func (w *worker) loop(ctx context.Context, issued *atomic.Int64) error {
	budget := int64(w.r.cfg.Operations)
	for {
		if ctx.Err() != nil {
			return nil
		}
		if budget > 0 && issued.Add(1) > budget {
			return nil
		}
		if w.r.limiter != nil {
			if err := w.r.limiter.Wait(ctx); err != nil {
				return nil
			}
		}
		w.step()
	}
}

// step issues one operation chosen by the mix.
func (w *worker) step() {
	op := w.r.picker.pick(w.rng)
	t := w.r.target
	start := time.Now()
	var err error

	switch op {
	case OpInsert:
		err = t.Insert(w.insertKey(), w.rng.Uint64())
	case OpErase:
		if t.EraseFirst(w.uniformKey()) > 0 {
			w.counts.hits++
		}
	case OpGet:
		if _, n := t.GetValueFirst(w.uniformKey()); n > 0 {
			w.counts.hits++
		}
	case OpUpdate:
		if t.VisitKey(w.uniformKey(), func(v *uint64, _ string) bool {
			*v++
			return true
		}) > 0 {
			w.counts.hits++
		}
	case OpVisit:
		w.counts.visited += uint64(abs(t.VisitReadOnly(func(uint64, string) bool { return true })))
	case OpBulk:
		items := make([]stripedmap.KV[string, uint64], w.r.cfg.BulkSize)
		for i := range items {
			items[i] = stripedmap.KV[string, uint64]{Key: w.insertKey(), Value: w.rng.Uint64()}
		}
		_, err = t.InsertBulk(items)
	}

	w.r.recorder.ObserveOp(op, time.Since(start), err)
	w.counts.record(op, err)
}

func (w *worker) uniformKey() string {
	return "key-" + strconv.Itoa(w.rng.IntN(w.r.cfg.KeySpace))
}

func (w *worker) insertKey() string {
	if strings.EqualFold(w.r.cfg.Distribution, "unique") {
		return ulid.Make().String()
	}
	return w.uniformKey()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
