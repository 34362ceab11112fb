// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package layout

import (
	"strings"
	"unicode/utf8"

	"github.com/danielhkuo/quickly-pulse/models"
)

// Placement constants
const (
	MaxAttempts   = 60
	Padding       = 8
	MinCardWidth  = 120
	MaxCardWidth  = 320
	MinCardHeight = 36

	charWidth    = 7
	widthSlack   = 24
	charsPerLine = 32
	lineHeight   = 20
	heightSlack  = 16
)

// Size is a measured canvas in pixels. A zero or negative dimension means
// the canvas has not been measured yet.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Measured reports whether both dimensions are positive.
func (s Size) Measured() bool {
	return s.Width > 0 && s.Height > 0
}

// Item is one free-text answer to be shown as a card.
type Item struct {
	ID   string
	Text string
}

// Source supplies placement randomness. *rand.Rand from math/rand/v2
// satisfies it.
type Source interface {
	IntN(n int) int
}

// Stats describes one placement pass.
type Stats struct {
	Kept        int // cards that stayed where they were
	Placed      int // cards that got a fresh position
	Overlapping int // fresh cards accepted after exhausting MaxAttempts
}

// EstimateSize derives a card's box from its text length:
// width = clamp(len*7+24, 120, 320), height = max(36, ceil(len/32)*20+16).
func EstimateSize(text string) (width, height int) {
	n := utf8.RuneCountInString(text)
	width = min(MaxCardWidth, max(MinCardWidth, n*charWidth+widthSlack))
	lines := (n + charsPerLine - 1) / charsPerLine
	height = max(MinCardHeight, lines*lineHeight+heightSlack)
	return width, height
}

// InBounds reports whether card lies fully inside the canvas.
func InBounds(card models.TextCard, size Size) bool {
	return card.X >= 0 &&
		card.Y >= 0 &&
		card.X+card.Width <= size.Width &&
		card.Y+card.Height <= size.Height
}

// overlaps checks the candidate against every placed card. Each box is grown
// by half the padding so neighbours end up at least Padding apart.
func overlaps(candidate models.TextCard, placed []models.TextCard) bool {
	const half = Padding / 2

	left := candidate.X - half
	right := candidate.X + candidate.Width + half
	top := candidate.Y - half
	bottom := candidate.Y + candidate.Height + half

	for _, box := range placed {
		otherLeft := box.X - half
		otherRight := box.X + box.Width + half
		otherTop := box.Y - half
		otherBottom := box.Y + box.Height + half

		if left < otherRight && right > otherLeft && top < otherBottom && bottom > otherTop {
			return true
		}
	}
	return false
}

// randomInt returns a value in [lo, hi]; lo when the range is empty.
func randomInt(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + src.IntN(hi-lo+1)
}

// placeCard searches for a non-overlapping spot. After MaxAttempts misses it
// returns the last candidate and ok=false.
func placeCard(item Item, size Size, placed []models.TextCard, src Source) (card models.TextCard, ok bool) {
	width, height := EstimateSize(item.Text)
	maxX := max(0, size.Width-width)
	maxY := max(0, size.Height-height)

	for range MaxAttempts {
		card = models.TextCard{
			ID:     item.ID,
			Text:   item.Text,
			X:      randomInt(src, 0, maxX),
			Y:      randomInt(src, 0, maxY),
			Width:  width,
			Height: height,
		}
		if !overlaps(card, placed) {
			return card, true
		}
	}
	return card, false
}

// Place lays out items on a canvas of the given size, starting from the
// previous pass. Cards whose refreshed box still fits keep their position;
// every other item is placed at random around them. Items with blank text
// and ids missing from items are dropped. prev is not modified.
func Place(prev map[string]models.TextCard, items []Item, size Size, src Source) (map[string]models.TextCard, Stats) {
	var stats Stats
	next := make(map[string]models.TextCard, len(items))
	if !size.Measured() {
		return next, stats
	}

	placed := make([]models.TextCard, 0, len(items))
	var pending []Item
	seen := make(map[string]bool, len(items))

	// Re-validate every existing card before any new placement
	for _, item := range items {
		item.Text = strings.TrimSpace(item.Text)
		if item.Text == "" || seen[item.ID] {
			continue
		}
		seen[item.ID] = true

		existing, found := prev[item.ID]
		if found {
			existing.Text = item.Text
			existing.Width, existing.Height = EstimateSize(item.Text)
			if InBounds(existing, size) {
				next[item.ID] = existing
				placed = append(placed, existing)
				stats.Kept++
				continue
			}
		}
		pending = append(pending, item)
	}

	for _, item := range pending {
		card, ok := placeCard(item, size, placed, src)
		if !ok {
			stats.Overlapping++
		}
		next[item.ID] = card
		placed = append(placed, card)
		stats.Placed++
	}

	return next, stats
}
