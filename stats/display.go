// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package stats

import (
	"math"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/quickly-pulse/models"
)

// Display renders a statistic with at most two decimals and no trailing
// zeros ("3", "2.5", "1.33"). Absent values render as "n/a".
func Display(v *float64) string {
	if v == nil {
		return "n/a"
	}
	s := humanize.FtoaWithDigits(math.Round(*v*100)/100, 2)
	if s == "-0" {
		return "0"
	}
	return s
}

// View wraps a summary with its display strings.
func View(s models.NumericSummary) models.NumericView {
	return models.NumericView{
		NumericSummary: s,
		MeanDisplay:    Display(s.Mean),
		MedianDisplay:  Display(s.Median),
	}
}
