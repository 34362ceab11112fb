// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package stats

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/danielhkuo/quickly-pulse/models"
)

// Tukey fence multiplier for outlier trimming
const fenceK = 1.5

// ParseNumber reports whether v is a finite number or a string holding one.
func ParseNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseNumbers keeps the values that parse as numbers, in input order.
func ParseNumbers(values []any) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if f, ok := ParseNumber(v); ok {
			out = append(out, f)
		}
	}
	return out
}

// quantile interpolates linearly between the order statistics around
// position (n-1)*q. sorted must be ascending and non-empty.
func quantile(sorted []float64, q float64) float64 {
	pos := float64(len(sorted)-1) * q
	base := int(math.Floor(pos))
	rest := pos - float64(base)

	if base+1 >= len(sorted) {
		return sorted[base]
	}
	return sorted[base] + rest*(sorted[base+1]-sorted[base])
}

// ExcludeOutliers drops values outside the 1.5*IQR fences. With fewer than
// four values, or a zero IQR, the input is returned unchanged. The trimmed
// result is sorted ascending.
func ExcludeOutliers(values []float64) []float64 {
	if len(values) < 4 {
		return values
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)
	iqr := q3 - q1
	if math.IsNaN(iqr) || math.IsInf(iqr, 0) || iqr == 0 {
		return values
	}

	low := q1 - fenceK*iqr
	high := q3 + fenceK*iqr

	kept := make([]float64, 0, len(sorted))
	for _, v := range sorted {
		if v >= low && v <= high {
			kept = append(kept, v)
		}
	}
	return kept
}

// SturgesBins returns the bin count for n samples: 1 for n <= 1, else
// max(3, ceil(log2(n)+1)).
func SturgesBins(n int) int {
	if n <= 1 {
		return 1
	}
	return max(3, int(math.Ceil(math.Log2(float64(n))+1)))
}

// Histogram bins data over its own [min, max] range using Sturges' rule.
// Callers pass the already trimmed sample.
func Histogram(data []float64) []models.HistogramBin {
	if len(data) == 0 {
		return []models.HistogramBin{}
	}

	lo, hi := slices.Min(data), slices.Max(data)
	if lo == hi {
		return []models.HistogramBin{{
			Label: formatNumber(lo),
			Count: len(data),
			Lo:    lo,
			Hi:    hi,
		}}
	}

	k := SturgesBins(len(data))
	width := (hi - lo) / float64(k)

	counts := make([]int, k)
	for _, v := range data {
		idx := int(math.Floor((v - lo) / width))
		// v == hi lands on idx == k; float drift can also push past it
		if idx >= k {
			idx = k - 1
		}
		if idx < 0 {
			idx = 0
		}
		counts[idx]++
	}

	bins := make([]models.HistogramBin, k)
	for i, count := range counts {
		a := lo + float64(i)*width
		b := lo + float64(i+1)*width
		if i == k-1 {
			b = hi
		}
		bins[i] = models.HistogramBin{
			Label: roundLabel(a) + "-" + roundLabel(b),
			Count: count,
			Lo:    a,
			Hi:    b,
		}
	}
	return bins
}

// Summarize parses raw values and computes the histogram, mean and median
// over the outlier-trimmed sample. Values that do not parse are dropped.
func Summarize(values []any) models.NumericSummary {
	parsed := ParseNumbers(values)
	summary := models.NumericSummary{
		Bins:   []models.HistogramBin{},
		Parsed: len(parsed),
	}
	if len(parsed) == 0 {
		return summary
	}

	sample := ExcludeOutliers(parsed)
	if len(sample) == 0 {
		sample = parsed
	}

	sorted := slices.Clone(sample)
	slices.Sort(sorted)

	mean := Mean(sorted)
	median := sorted[(len(sorted)-1)/2]

	summary.Bins = Histogram(sorted)
	summary.Mean = &mean
	summary.Median = &median
	summary.N = len(sorted)
	summary.Min = sorted[0]
	summary.Max = sorted[len(sorted)-1]
	return summary
}

// Mean calculates the arithmetic mean; 0 for no values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// roundLabel rounds half up, so -2.5 becomes -2.
func roundLabel(x float64) string {
	r := math.Floor(x + 0.5)
	if r == 0 {
		r = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(r, 'f', 0, 64)
}

func formatNumber(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
