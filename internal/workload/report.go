package workload

import (
	"errors"
	"time"

	"github.com/yndnr/stripedmap-go/pkg/stripedmap"
)

// counts is a worker's private tally, merged at the end of a run.
type counts struct {
	ops            map[string]uint64
	hits           uint64
	visited        uint64
	errors         uint64
	rehashFailures uint64
	allocFailures  uint64
}

func (c *counts) record(op string, err error) {
	if c.ops == nil {
		c.ops = make(map[string]uint64)
	}
	c.ops[op]++
	if err == nil {
		return
	}
	c.errors++
	switch {
	case errors.Is(err, stripedmap.ErrRehashFailed):
		c.rehashFailures++
	case errors.Is(err, stripedmap.ErrAllocation):
		c.allocFailures++
	}
}

func (c *counts) add(o *counts) {
	if c.ops == nil {
		c.ops = make(map[string]uint64)
	}
	for op, n := range o.ops {
		c.ops[op] += n
	}
	c.hits += o.hits
	c.visited += o.visited
	c.errors += o.errors
	c.rehashFailures += o.rehashFailures
	c.allocFailures += o.allocFailures
}

// Report summarizes a run.
type Report struct {
	RunID          string            `json:"run_id" yaml:"run_id"`
	Workers        int               `json:"workers" yaml:"workers"`
	Elapsed        time.Duration     `json:"elapsed" yaml:"elapsed"`
	Operations     uint64            `json:"operations" yaml:"operations"`
	OpsPerSec      float64           `json:"ops_per_sec" yaml:"ops_per_sec"`
	ByOperation    map[string]uint64 `json:"by_operation" yaml:"by_operation"`
	Hits           uint64            `json:"hits" yaml:"hits"`
	Visited        uint64            `json:"visited" yaml:"visited"`
	Errors         uint64            `json:"errors" yaml:"errors"`
	RehashFailures uint64            `json:"rehash_failures" yaml:"rehash_failures"`
	AllocFailures  uint64            `json:"alloc_failures" yaml:"alloc_failures"`
	Map            stripedmap.Stats  `json:"map" yaml:"map"`
}

func newReport(runID string, workers int, elapsed time.Duration, c *counts, st stripedmap.Stats) *Report {
	rep := &Report{
		RunID:          runID,
		Workers:        workers,
		Elapsed:        elapsed,
		ByOperation:    c.ops,
		Hits:           c.hits,
		Visited:        c.visited,
		Errors:         c.errors,
		RehashFailures: c.rehashFailures,
		AllocFailures:  c.allocFailures,
		Map:            st,
	}
	if rep.ByOperation == nil {
		rep.ByOperation = map[string]uint64{}
	}
	for _, n := range rep.ByOperation {
		rep.Operations += n
	}
	if elapsed > 0 {
		rep.OpsPerSec = float64(rep.Operations) / elapsed.Seconds()
	}
	return rep
}
