// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package synthesis

import (
	"context"
	"errors"
	"strings"

	"github.com/danielhkuo/quickly-pulse/models"
)

// MaxItems caps how many answers are sent in one request.
const MaxItems = 200

// DefaultTheme names a group the model returned without a usable theme.
const DefaultTheme = "Theme"

var (
	// ErrInFlight is returned when a synthesis call is already outstanding.
	ErrInFlight = errors.New("synthesis already in progress")
	// ErrSuperseded is returned when the question changed while the call was
	// outstanding. The result is dropped.
	ErrSuperseded = errors.New("question changed during synthesis")
	// ErrNoItems is returned when there is nothing to synthesize.
	ErrNoItems = errors.New("no responses to synthesize")
)

// Synthesizer produces a thematic summary of free-text answers. The returned
// record's SourceCount is the number of items actually sent.
type Synthesizer interface {
	Synthesize(ctx context.Context, req models.SynthesisRequest) (models.SynthesisRecord, error)
}

// EligibleItems returns the trimmed, non-empty text answers in order.
// Non-string values never count.
func EligibleItems(values []any) []string {
	items := make([]string, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			items = append(items, s)
		}
	}
	return items
}

// CleanItems trims items, drops empty ones and caps the result at MaxItems.
func CleanItems(items []string) []string {
	cleaned := make([]string, 0, min(len(items), MaxItems))
	for _, item := range items {
		if len(cleaned) == MaxItems {
			break
		}
		if item = strings.TrimSpace(item); item != "" {
			cleaned = append(cleaned, item)
		}
	}
	return cleaned
}

// ModeFor picks the synthesis mode for a question type: long answers are
// summarized as a whole, everything else is grouped by theme.
func ModeFor(questionType string) string {
	if questionType == models.TypeLong {
		return models.ModeSummary
	}
	return models.ModeGrouped
}

// Supports reports whether a question type can be synthesized at all.
func Supports(questionType string) bool {
	return questionType == models.TypeShort || questionType == models.TypeLong
}
