package stripedmap

import (
	"fmt"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewSizing(t *testing.T) {
	tests := []struct {
		name        string
		opts        []Option
		wantBuckets int
		wantStripes int
	}{
		{"defaults", nil, 16, 4},
		{"explicit defaults", []Option{WithInitialBuckets(16), WithStripes(4)}, 16, 4},
		{"invalid ignored", []Option{WithInitialBuckets(0), WithStripes(-3)}, 16, 4},
		{"one bucket one stripe", []Option{WithInitialBuckets(1), WithStripes(1)}, 2, 1},
		{"rounded up", []Option{WithInitialBuckets(3), WithStripes(3)}, 4, 4},
		{"buckets raised to stripes", []Option{WithInitialBuckets(2), WithStripes(16)}, 16, 16},
		{"odd buckets", []Option{WithInitialBuckets(100), WithStripes(8)}, 128, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newStringMap(t, tt.opts...)
			if got := m.BucketCount(); got != tt.wantBuckets {
				t.Errorf("BucketCount() = %d, want %d", got, tt.wantBuckets)
			}
			if got := m.NumStripes(); got != tt.wantStripes {
				t.Errorf("NumStripes() = %d, want %d", got, tt.wantStripes)
			}
			if !m.Empty() || m.Size() != 0 {
				t.Errorf("new map not empty: Size() = %d", m.Size())
			}
			if m.MaxLoadFactor() != DefaultMaxLoadFactor {
				t.Errorf("MaxLoadFactor() = %v, want %v", m.MaxLoadFactor(), DefaultMaxLoadFactor)
			}
			if !m.IsRehashEnabled() || !m.CanRehash() {
				t.Error("rehash should be enabled on a new map")
			}
		})
	}
}

func TestNewFuncNilPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewFunc(nil, nil) did not panic")
		}
	}()
	_, _ = NewFunc[int, int](nil, nil)
}

func TestInsertAndGet(t *testing.T) {
	m := newStringMap(t)

	mustInsert(t, m, "a", 1)
	mustInsert(t, m, "b", 2)

	if v, n := m.GetValueFirst("a"); n != 1 || v != 1 {
		t.Errorf("GetValueFirst(a) = (%d, %d), want (1, 1)", v, n)
	}
	if v, n := m.GetValueFirst("missing"); n != 0 || v != 0 {
		t.Errorf("GetValueFirst(missing) = (%d, %d), want (0, 0)", v, n)
	}
	if m.Size() != 2 {
		t.Errorf("Size() = %d, want 2", m.Size())
	}
	checkInvariants(t, m.container)
}

func TestMultipleValuesPerKey(t *testing.T) {
	m := newStringMap(t)
	mustInsert(t, m, "k", 1)
	mustInsert(t, m, "k", 2)

	values, n := m.GetValueAll("k")
	slices.Sort(values)
	if n != 2 {
		t.Fatalf("GetValueAll(k) count = %d, want 2", n)
	}
	if diff := cmp.Diff([]int{1, 2}, values); diff != "" {
		t.Errorf("GetValueAll(k) mismatch (-want +got):\n%s", diff)
	}

	if got := m.EraseFirst("k"); got != 1 {
		t.Errorf("EraseFirst(k) = %d, want 1", got)
	}
	if _, n := m.GetValueAll("k"); n != 1 {
		t.Errorf("GetValueAll(k) count after EraseFirst = %d, want 1", n)
	}
	if values, n := m.GetValueAll("absent"); n != 0 || values != nil {
		t.Errorf("GetValueAll(absent) = (%v, %d), want (nil, 0)", values, n)
	}
}

func TestEraseIdempotent(t *testing.T) {
	m := newStringMap(t)
	mustInsert(t, m, "k", 1)
	mustInsert(t, m, "k", 2)
	mustInsert(t, m, "k", 3)

	if got := m.EraseAll("k"); got != 3 {
		t.Errorf("EraseAll(k) = %d, want 3", got)
	}
	if got := m.EraseAll("k"); got != 0 {
		t.Errorf("second EraseAll(k) = %d, want 0", got)
	}
	if got := m.EraseFirst("k"); got != 0 {
		t.Errorf("EraseFirst(k) on erased key = %d, want 0", got)
	}
	if !m.Empty() {
		t.Errorf("Size() = %d after erasing everything", m.Size())
	}
}

func TestSetValue(t *testing.T) {
	m := newStringMap(t)

	n, err := m.SetValueFirst("k", 7)
	if err != nil || n != 0 {
		t.Fatalf("SetValueFirst(absent) = (%d, %v), want (0, nil)", n, err)
	}
	mustInsert(t, m, "k", 8)

	n, err = m.SetValueFirst("k", 9)
	if err != nil || n != 1 {
		t.Errorf("SetValueFirst(k) = (%d, %v), want (1, nil)", n, err)
	}

	n, err = m.SetValueAll("k", 5)
	if err != nil || n != 2 {
		t.Errorf("SetValueAll(k) = (%d, %v), want (2, nil)", n, err)
	}
	values, _ := m.GetValueAll("k")
	if diff := cmp.Diff([]int{5, 5}, values); diff != "" {
		t.Errorf("values after SetValueAll mismatch (-want +got):\n%s", diff)
	}

	n, err = m.SetValueAll("other", 1)
	if err != nil || n != 0 {
		t.Errorf("SetValueAll(absent) = (%d, %v), want (0, nil)", n, err)
	}
	if m.Size() != 3 {
		t.Errorf("Size() = %d, want 3", m.Size())
	}
}

func TestSetComputedValueOnMissingKey(t *testing.T) {
	m := newStringMap(t)

	n, err := m.SetComputedValueFirst("k", func(v *int, key string) bool {
		if *v != 0 {
			t.Errorf("visitor saw %d for a missing key, want zero value", *v)
		}
		*v = 42
		return true
	})
	if err != nil || n != 0 {
		t.Fatalf("SetComputedValueFirst(absent) = (%d, %v), want (0, nil)", n, err)
	}
	if v, n := m.GetValueFirst("k"); n != 1 || v != 42 {
		t.Errorf("GetValueFirst(k) = (%d, %d), want (42, 1)", v, n)
	}
}

func TestSetComputedValueCounts(t *testing.T) {
	m := newStringMap(t)
	for i := 1; i <= 3; i++ {
		mustInsert(t, m, "k", i)
	}

	increment := func(v *int, _ string) bool {
		*v += 100
		return true
	}
	if n, _ := m.SetComputedValueFirst("k", increment); n != 1 {
		t.Errorf("SetComputedValueFirst = %d, want 1", n)
	}
	if n, _ := m.SetComputedValueFirst("k", func(*int, string) bool { return false }); n != -1 {
		t.Errorf("SetComputedValueFirst(stop) = %d, want -1", n)
	}
	if n, _ := m.SetComputedValueAll("k", increment); n != 3 {
		t.Errorf("SetComputedValueAll = %d, want 3", n)
	}

	calls := 0
	n, _ := m.SetComputedValueAll("k", func(*int, string) bool {
		calls++
		return calls < 2
	})
	if n != -2 {
		t.Errorf("SetComputedValueAll(stop at 2) = %d, want -2", n)
	}

	values, _ := m.GetValueAll("k")
	sum := 0
	for _, v := range values {
		sum += v
	}
	// 1+2+3 plus 100 once for the First call and 100 each for the All call.
	if sum != 6+100+300 {
		t.Errorf("sum of values = %d, want %d", sum, 6+100+300)
	}
	if m.Size() != 3 {
		t.Errorf("Size() = %d, want 3", m.Size())
	}
}

func TestVisitKey(t *testing.T) {
	m := newStringMap(t)
	mustInsert(t, m, "k", 1)
	mustInsert(t, m, "k", 2)
	mustInsert(t, m, "j", 3)

	if n := m.VisitKey("k", func(v *int, _ string) bool { *v *= 10; return true }); n != 2 {
		t.Errorf("VisitKey(k) = %d, want 2", n)
	}
	if n := m.VisitKey("k", func(*int, string) bool { return false }); n != -1 {
		t.Errorf("VisitKey(k, stop) = %d, want -1", n)
	}
	if n := m.VisitKey("absent", func(*int, string) bool { return true }); n != 0 {
		t.Errorf("VisitKey(absent) = %d, want 0", n)
	}
	if m.Size() != 3 {
		t.Errorf("VisitKey inserted: Size() = %d, want 3", m.Size())
	}

	var seen []int
	n := m.VisitKeyReadOnly("k", func(v int, _ string) bool {
		seen = append(seen, v)
		return true
	})
	slices.Sort(seen)
	if n != 2 {
		t.Errorf("VisitKeyReadOnly(k) = %d, want 2", n)
	}
	if diff := cmp.Diff([]int{10, 20}, seen); diff != "" {
		t.Errorf("VisitKeyReadOnly values mismatch (-want +got):\n%s", diff)
	}
}

func TestVisitWholeMap(t *testing.T) {
	m := newIntMap(t, WithInitialBuckets(16), WithStripes(4))
	for k := 0; k < 12; k++ {
		mustInsert(t, m, k, fmt.Sprint(k))
	}

	seen := make(map[int]int)
	if n := m.Visit(func(v *string, k int) bool {
		seen[k]++
		*v += "!"
		return true
	}); n != 12 {
		t.Errorf("Visit() = %d, want 12", n)
	}
	for k := 0; k < 12; k++ {
		if seen[k] != 1 {
			t.Errorf("key %d visited %d times, want 1", k, seen[k])
		}
		if v, _ := m.GetValueFirst(k); v != fmt.Sprint(k)+"!" {
			t.Errorf("value of %d = %q after Visit", k, v)
		}
	}

	calls := 0
	if n := m.Visit(func(*string, int) bool {
		calls++
		return calls < 5
	}); n != -5 {
		t.Errorf("Visit(stop at 5) = %d, want -5", n)
	}

	total := m.VisitReadOnly(func(v string, k int) bool {
		return v == fmt.Sprint(k)+"!"
	})
	if total != 12 {
		t.Errorf("VisitReadOnly() = %d, want 12", total)
	}
	if n := m.VisitReadOnly(func(string, int) bool { return false }); n != -1 {
		t.Errorf("VisitReadOnly(stop) = %d, want -1", n)
	}
}

func TestVisitEmptyMap(t *testing.T) {
	m := newStringMap(t)
	if n := m.Visit(func(*int, string) bool { return false }); n != 0 {
		t.Errorf("Visit on empty map = %d, want 0", n)
	}
}

func TestClear(t *testing.T) {
	m := newIntMap(t)
	for k := 0; k < 40; k++ {
		mustInsert(t, m, k, "v")
	}
	buckets := m.BucketCount()

	m.Clear()
	if !m.Empty() {
		t.Errorf("Size() = %d after Clear", m.Size())
	}
	if m.BucketCount() != buckets {
		t.Errorf("BucketCount() = %d after Clear, want %d", m.BucketCount(), buckets)
	}
	if _, n := m.GetValueFirst(3); n != 0 {
		t.Error("key 3 still present after Clear")
	}
	checkInvariants(t, m.container)
}

func TestBucketIndexAndSize(t *testing.T) {
	m := newIntMap(t, WithInitialBuckets(8), WithStripes(2))
	mustInsert(t, m, 3, "a")
	mustInsert(t, m, 11, "b")
	mustInsert(t, m, 4, "c")

	if got := m.BucketIndex(11); got != 3 {
		t.Errorf("BucketIndex(11) = %d, want 3", got)
	}
	if got := m.BucketSize(3); got != 2 {
		t.Errorf("BucketSize(3) = %d, want 2", got)
	}
	if got := m.BucketSize(4); got != 1 {
		t.Errorf("BucketSize(4) = %d, want 1", got)
	}
	if got := m.BucketSize(0); got != 0 {
		t.Errorf("BucketSize(0) = %d, want 0", got)
	}
	if got, want := m.LoadFactor(), 3.0/8.0; got != want {
		t.Errorf("LoadFactor() = %v, want %v", got, want)
	}
}

func TestAccessors(t *testing.T) {
	alloc := NewLimitAllocator(1 << 20)
	m := newStringMap(t, WithAllocator(alloc))

	if m.Allocator() != Allocator(alloc) {
		t.Error("Allocator() did not return the configured allocator")
	}
	if m.HashFunction()("x") != m.HashFunction()("x") {
		t.Error("HashFunction() is not stable")
	}
	if !m.EqualFunction()("x", "x") || m.EqualFunction()("x", "y") {
		t.Error("EqualFunction() gave the wrong answer")
	}
}

func TestStats(t *testing.T) {
	m := newIntMap(t, WithInitialBuckets(8), WithStripes(4))
	for _, k := range []int{0, 4, 8, 1, 2} {
		mustInsert(t, m, k, "v")
	}

	st := m.Stats()
	if st.Size != 5 || st.Buckets != 8 || st.NumStripes != 4 {
		t.Errorf("Stats() = %+v", st)
	}
	want := []StripeStats{
		{Index: 0, Buckets: 2, Entries: 3, MaxBucket: 2},
		{Index: 1, Buckets: 2, Entries: 1, MaxBucket: 1},
		{Index: 2, Buckets: 2, Entries: 1, MaxBucket: 1},
		{Index: 3, Buckets: 2, Entries: 0, MaxBucket: 0},
	}
	if diff := cmp.Diff(want, st.PerStripe); diff != "" {
		t.Errorf("PerStripe mismatch (-want +got):\n%s", diff)
	}
}
