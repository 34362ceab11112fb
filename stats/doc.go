// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package stats turns raw answer values into chart-ready aggregates.

# Numeric Questions

Summarize parses every value that is a finite number (or a string holding
one), trims outliers with Tukey fences, and bins the trimmed sample:

	summary := stats.Summarize(values)
	// summary.Bins, summary.Mean, summary.Median, summary.N, summary.Parsed

Quartiles interpolate linearly at position (n-1)*q. Trimming is skipped for
fewer than four values or a zero interquartile range. The median of an even
sample is the lower middle value, not the average of the two.

Bins follow Sturges' rule, k = max(3, ceil(log2(n)+1)), with the last edge
clamped to the sample maximum. A constant sample yields a single bin.

# Choice and Allocation Questions

TallyChoices and TallyAllocations report one CategoryTotal per declared
category, in declared order, including zeros. Unknown values never create
categories.

# Display

Display formats a statistic for humans with at most two decimals.
*/
package stats
