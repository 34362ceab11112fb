// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package stats

import (
	"strconv"

	"github.com/danielhkuo/quickly-pulse/models"
)

// categoryIndex maps each declared category to its first position.
// Duplicate labels collapse onto the first occurrence.
func categoryIndex(categories []string) ([]models.CategoryTotal, map[string]int) {
	totals := make([]models.CategoryTotal, 0, len(categories))
	index := make(map[string]int, len(categories))
	for _, c := range categories {
		if _, seen := index[c]; seen {
			continue
		}
		index[c] = len(totals)
		totals = append(totals, models.CategoryTotal{Category: c, Total: 0})
	}
	return totals, index
}

// TallyChoices counts single-choice answers per declared category, in
// declared order. Values that do not exactly match a category are ignored.
func TallyChoices(categories []string, answers []models.Answer) []models.CategoryTotal {
	totals, index := categoryIndex(categories)
	for _, a := range answers {
		label, ok := ScalarText(a.Value)
		if !ok {
			continue
		}
		if i, found := index[label]; found {
			totals[i].Total++
		}
	}
	return totals
}

// TallyAllocations sums point allocations per declared category, in declared
// order. Each answer value is an object of category -> points; missing or
// non-finite entries contribute nothing. Per-respondent totals are not capped.
func TallyAllocations(categories []string, answers []models.Answer) []models.CategoryTotal {
	totals, index := categoryIndex(categories)
	for _, a := range answers {
		alloc, ok := a.Value.(map[string]any)
		if !ok {
			continue
		}
		for category, i := range index {
			raw, present := alloc[category]
			if !present {
				continue
			}
			if points, ok := ParseNumber(raw); ok {
				totals[i].Total += points
			}
		}
	}
	return totals
}

// ScalarText renders a scalar answer value as text. Objects, arrays and
// nulls have no text form.
func ScalarText(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case float64:
		return formatNumber(val), true
	case int:
		return strconv.Itoa(val), true
	case bool:
		return strconv.FormatBool(val), true
	default:
		return "", false
	}
}
