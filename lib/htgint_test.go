package lib

import "testing"
import "strings"

import "github.com/stretchr/testify/require"

func TestHistogramInt64(t *testing.T) {
	h := NewhistogramInt64(0, 100, 10)
	if x := h.Mean(); x != 0 {
		t.Errorf("expected %v, got %v", 0, x)
	} else if x := h.Percentile(50); x != 0 {
		t.Errorf("expected %v, got %v", 0, x)
	}

	for i := int64(1); i <= 100; i++ {
		h.Add(i)
	}
	if x, y := int64(1), h.Min(); x != y {
		t.Errorf("Min() expected %v, got %v", x, y)
	} else if x, y := int64(100), h.Max(); x != y {
		t.Errorf("Max() expected %v, got %v", x, y)
	} else if x, y := int64(100), h.Samples(); x != y {
		t.Errorf("Samples() expected %v, got %v", x, y)
	} else if x, y := int64(5050), h.Sum(); x != y {
		t.Errorf("Sum() expected %v, got %v", x, y)
	} else if x, y := int64(50), h.Mean(); x != y {
		t.Errorf("Mean() expected %v, got %v", x, y)
	} else if x, y := int64(28), h.SD(); x != y {
		t.Errorf("SD() expected %v, got %v", x, y)
	}

	// 1..9 in bucket 1, 10..19 in bucket 2, ... 100 beyond till.
	require.Equal(t, int64(9), h.buckets[1])
	require.Equal(t, int64(10), h.buckets[2])
	require.Equal(t, int64(1), h.buckets[len(h.buckets)-1])
	require.Equal(t, int64(60), h.Percentile(50)) // upper bound of [50,60)
	require.Equal(t, int64(100), h.Percentile(100))

	stats := h.Stats()
	require.Equal(t, int64(100), stats["samples"])
	require.Equal(t, int64(60), stats["p50"])

	s := h.Logstring()
	require.True(t, strings.HasPrefix(s, `{"samples": 100`), s)
	require.Contains(t, s, `"+": 1`)
}

func TestHistogramMerge(t *testing.T) {
	h1, h2 := NewhistogramInt64(0, 1000, 100), NewhistogramInt64(0, 1000, 100)
	h1.Add(10)
	h2.Add(5)
	h2.Add(2000)
	h1.Merge(h2)
	require.Equal(t, int64(3), h1.Samples())
	require.Equal(t, int64(5), h1.Min())
	require.Equal(t, int64(2000), h1.Max())

	// empty histogram, nothing changes.
	h1.Merge(NewhistogramInt64(0, 1000, 100))
	require.Equal(t, int64(3), h1.Samples())

	require.Panics(t, func() { h1.Merge(NewhistogramInt64(0, 10, 1)) })
	h3 := NewhistogramInt64(0, 10, 1)
	h3.Add(1)
	require.Panics(t, func() { h1.Merge(h3) })
	require.Panics(t, func() { NewhistogramInt64(0, 10, 0) })
}

func BenchmarkHistogramAdd(b *testing.B) {
	h := NewhistogramInt64(0, 10000, 100)
	for i := 0; i < b.N; i++ {
		h.Add(int64(i))
	}
}
