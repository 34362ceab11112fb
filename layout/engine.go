// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package layout

import (
	"hash/fnv"
	"maps"
	"math/rand/v2"
	"slices"

	"github.com/danielhkuo/quickly-pulse/models"
)

// State is the lifecycle stage of an Engine.
type State int

const (
	StateEmpty State = iota
	StatePopulated
	StateResized
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StatePopulated:
		return "populated"
	case StateResized:
		return "resized"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// NewSource returns a deterministic generator for the given seed.
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// SeedFor derives a stable seed from a key such as a question id, so the
// same canvas lays out the same way across restarts.
func SeedFor(key string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(key))
	return h.Sum64()
}

// Engine owns the card positions of one canvas. Update and Resize record
// their inputs; Recompute applies them. An Engine is not safe for
// concurrent use.
type Engine struct {
	src   Source
	state State
	size  Size
	items []Item
	cards map[string]models.TextCard
	last  Stats
}

// NewEngine creates an empty engine. A nil src uses a generator seeded with 1.
func NewEngine(src Source) *Engine {
	if src == nil {
		src = NewSource(1)
	}
	return &Engine{
		src:   src,
		state: StateEmpty,
		cards: make(map[string]models.TextCard),
	}
}

// Update replaces the item set. Order is arrival order.
func (e *Engine) Update(items []Item) {
	if e.state == StateClosed {
		return
	}
	e.items = slices.Clone(items)
}

// Resize records the canvas size. A populated engine moves to StateResized
// until the next Recompute.
func (e *Engine) Resize(width, height int) {
	if e.state == StateClosed {
		return
	}
	next := Size{Width: width, Height: height}
	if next == e.size {
		return
	}
	e.size = next
	if e.state == StatePopulated {
		e.state = StateResized
	}
}

// Recompute re-validates existing cards against the current size and places
// the rest. It does nothing until a measured size is known. With no
// non-blank items all cards are dropped.
func (e *Engine) Recompute() Stats {
	if e.state == StateClosed || !e.size.Measured() {
		return Stats{}
	}

	cards, stats := Place(e.cards, e.items, e.size, e.src)
	e.cards = cards
	e.last = stats
	if len(cards) == 0 {
		e.state = StateEmpty
	} else {
		e.state = StatePopulated
	}
	return stats
}

// Cards returns a copy of the current positions keyed by item id.
func (e *Engine) Cards() map[string]models.TextCard {
	return maps.Clone(e.cards)
}

// State returns the lifecycle state after the last operation.
func (e *Engine) State() State {
	return e.state
}

// Size returns the current canvas size, zero until the first Resize.
func (e *Engine) Size() Size {
	return e.size
}

// LastStats reports the outcome of the most recent Recompute.
func (e *Engine) LastStats() Stats {
	return e.last
}

// Close drops all positions. Later calls are ignored.
func (e *Engine) Close() {
	e.state = StateClosed
	e.items = nil
	e.cards = map[string]models.TextCard{}
}
