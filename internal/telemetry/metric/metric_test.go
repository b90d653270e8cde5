package metric

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/stripedmap-go/pkg/stripedmap"
)

type fixedStats stripedmap.Stats

func (f fixedStats) Stats() stripedmap.Stats { return stripedmap.Stats(f) }

func gather(t *testing.T, g prometheus.Gatherer) map[string][]float64 {
	t.Helper()
	families, err := g.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	out := make(map[string][]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetGauge() != nil:
				out[mf.GetName()] = append(out[mf.GetName()], m.GetGauge().GetValue())
			case m.GetCounter() != nil:
				out[mf.GetName()] = append(out[mf.GetName()], m.GetCounter().GetValue())
			}
		}
	}
	return out
}

func TestCollector(t *testing.T) {
	src := fixedStats{
		Size:           40,
		Buckets:        64,
		NumStripes:     2,
		LoadFactor:     0.625,
		MaxLoadFactor:  1,
		RehashEnabled:  true,
		Rehashes:       2,
		RehashFailures: 1,
		PerStripe: []stripedmap.StripeStats{
			{Index: 0, Buckets: 32, Entries: 25, MaxBucket: 3},
			{Index: 1, Buckets: 32, Entries: 15, MaxBucket: 2},
		},
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(NewCollector("bench", src))
	got := gather(t, reg)

	tests := []struct {
		name string
		want []float64
	}{
		{"stripedmap_map_elements", []float64{40}},
		{"stripedmap_map_buckets", []float64{64}},
		{"stripedmap_map_load_factor", []float64{0.625}},
		{"stripedmap_map_rehash_enabled", []float64{1}},
		{"stripedmap_map_rehashes_total", []float64{2}},
		{"stripedmap_map_rehash_failures_total", []float64{1}},
		{"stripedmap_map_stripe_elements", []float64{25, 15}},
	}
	for _, tt := range tests {
		vals := got[tt.name]
		if len(vals) != len(tt.want) {
			t.Errorf("%s = %v, want %v", tt.name, vals, tt.want)
			continue
		}
		for i := range vals {
			if vals[i] != tt.want[i] {
				t.Errorf("%s[%d] = %v, want %v", tt.name, i, vals[i], tt.want[i])
			}
		}
	}
}

func TestCollectorLiveMap(t *testing.T) {
	m, err := stripedmap.New[string, int]()
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		_ = m.Insert(strings.Repeat("k", i+1), i)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(NewCollector("live", m))
	got := gather(t, reg)
	if v := got["stripedmap_map_elements"]; len(v) != 1 || v[0] != 20 {
		t.Errorf("elements = %v, want [20]", v)
	}
	if v := got["stripedmap_map_rehashes_total"]; len(v) != 1 || v[0] != 1 {
		t.Errorf("rehashes_total = %v, want [1]", v)
	}
}

func TestRegistryObserveOp(t *testing.T) {
	r := NewRegistry()
	r.ObserveOp("insert", time.Microsecond, nil)
	r.ObserveOp("insert", time.Microsecond, errors.New("rehash failed"))
	r.ObserveOp("get", time.Microsecond, nil)

	got := gather(t, r.Gatherer())
	ops := got["stripedmap_workload_operations_total"]
	if len(ops) != 2 || ops[0]+ops[1] != 3 {
		t.Errorf("operations_total = %v, want 3 across 2 ops", ops)
	}
	if errs := got["stripedmap_workload_operation_errors_total"]; len(errs) != 1 || errs[0] != 1 {
		t.Errorf("operation_errors_total = %v, want [1]", errs)
	}
}

func TestRegistryHandler(t *testing.T) {
	r := NewRegistry()
	r.ObserveOp("visit", time.Millisecond, nil)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`stripedmap_workload_operations_total{op="visit"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
