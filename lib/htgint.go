package lib

import "fmt"
import "math"
import "strings"

// HistogramInt64 collect int64 samples, like latencies or allocation
// sizes, into fixed-width buckets between `from` and `till`. Samples
// below `from` and beyond `till` land in the two open ended buckets.
type HistogramInt64 struct {
	n       int64
	minval  int64
	maxval  int64
	sum     int64
	sumsq   float64
	buckets []int64

	from  int64
	till  int64
	width int64
}

// NewhistogramInt64 return a new histogram with `width` sized buckets.
func NewhistogramInt64(from, till, width int64) *HistogramInt64 {
	if width <= 0 || till <= from {
		panicerr("invalid histogram range [%v,%v) width %v", from, till, width)
	}
	from, till = (from/width)*width, (till/width)*width
	h := &HistogramInt64{from: from, till: till, width: width}
	h.buckets = make([]int64, ((till-from)/width)+2)
	return h
}

// Add a sample to this histogram.
func (h *HistogramInt64) Add(sample int64) {
	if h.n == 0 || sample < h.minval {
		h.minval = sample
	}
	if h.n == 0 || sample > h.maxval {
		h.maxval = sample
	}
	h.n++
	h.sum += sample
	h.sumsq += float64(sample) * float64(sample)
	h.buckets[h.bucket(sample)]++
}

func (h *HistogramInt64) bucket(sample int64) int {
	switch {
	case sample < h.from:
		return 0
	case sample >= h.till:
		return len(h.buckets) - 1
	}
	return int((sample-h.from)/h.width) + 1
}

// Merge samples from other into this histogram, both histograms must be
// created with the same range and width.
func (h *HistogramInt64) Merge(other *HistogramInt64) {
	if h.from != other.from || h.till != other.till || h.width != other.width {
		panicerr("histogram mismatch")
	} else if other.n == 0 {
		return
	}
	if h.n == 0 || other.minval < h.minval {
		h.minval = other.minval
	}
	if h.n == 0 || other.maxval > h.maxval {
		h.maxval = other.maxval
	}
	h.n, h.sum, h.sumsq = h.n+other.n, h.sum+other.sum, h.sumsq+other.sumsq
	for i, v := range other.buckets {
		h.buckets[i] += v
	}
}

// Min return minimum value from sample.
func (h *HistogramInt64) Min() int64 {
	return h.minval
}

// Max return maximum value from sample.
func (h *HistogramInt64) Max() int64 {
	return h.maxval
}

// Samples return total number of samples in the set.
func (h *HistogramInt64) Samples() int64 {
	return h.n
}

// Sum return the sum of all sample values.
func (h *HistogramInt64) Sum() int64 {
	return h.sum
}

// Mean return the average value of all samples.
func (h *HistogramInt64) Mean() int64 {
	if h.n == 0 {
		return 0
	}
	return int64(float64(h.sum) / float64(h.n))
}

// SD return by how much the samples differ from the mean value of
// sample set.
func (h *HistogramInt64) SD() int64 {
	if h.n == 0 {
		return 0
	}
	mean := float64(h.sum) / float64(h.n)
	variance := (h.sumsq / float64(h.n)) - (mean * mean)
	if variance <= 0 {
		return 0
	}
	return int64(math.Sqrt(variance))
}

// Percentile return the upper bound of the bucket holding the p-th
// percentile sample, p in [0,100]. Open ended buckets report Min and
// Max respectively.
func (h *HistogramInt64) Percentile(p float64) int64 {
	if h.n == 0 {
		return 0
	}
	want := int64(math.Ceil(float64(h.n) * p / 100))
	cumm := int64(0)
	for i, v := range h.buckets {
		if cumm += v; cumm < want || v == 0 {
			continue
		}
		switch i {
		case 0:
			return h.minval
		case len(h.buckets) - 1:
			return h.maxval
		}
		return h.from + (int64(i) * h.width)
	}
	return h.maxval
}

// Stats return a map of summary values.
func (h *HistogramInt64) Stats() map[string]interface{} {
	return map[string]interface{}{
		"samples":     h.Samples(),
		"min":         h.Min(),
		"max":         h.Max(),
		"mean":        h.Mean(),
		"stddeviance": h.SD(),
		"p50":         h.Percentile(50),
		"p99":         h.Percentile(99),
	}
}

// Logstring return summary and non-empty buckets as loggable string.
func (h *HistogramInt64) Logstring() string {
	ss := []string{
		fmt.Sprintf(`"samples": %v`, h.Samples()),
		fmt.Sprintf(`"min": %v`, h.Min()),
		fmt.Sprintf(`"max": %v`, h.Max()),
		fmt.Sprintf(`"mean": %v`, h.Mean()),
		fmt.Sprintf(`"stddeviance": %v`, h.SD()),
	}
	hs := []string{}
	for i, v := range h.buckets {
		if v == 0 {
			continue
		}
		switch i {
		case 0:
			hs = append(hs, fmt.Sprintf(`"-%v": %v`, h.from, v))
		case len(h.buckets) - 1:
			hs = append(hs, fmt.Sprintf(`"+": %v`, v))
		default:
			upto := h.from + (int64(i) * h.width)
			hs = append(hs, fmt.Sprintf(`"%v": %v`, upto, v))
		}
	}
	ss = append(ss, `"histogram": {`+strings.Join(hs, ",")+"}")
	return "{" + strings.Join(ss, ",") + "}"
}
