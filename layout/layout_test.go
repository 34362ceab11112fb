// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package layout

import (
	"fmt"
	"maps"
	"strings"
	"testing"

	"github.com/danielhkuo/quickly-pulse/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeItems(n int) []Item {
	items := make([]Item, n)
	for i := range n {
		items[i] = Item{ID: fmt.Sprintf("r%d", i), Text: fmt.Sprintf("answer number %d", i)}
	}
	return items
}

func TestEstimateSize(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		width  int
		height int
	}{
		{"empty", "", 120, 36},
		{"short", "ten chars!", 120, 36},
		{"two lines", strings.Repeat("a", 40), 304, 56},
		{"capped width", strings.Repeat("a", 100), 320, 96},
		{"counts runes", "ééé", 120, 36},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := EstimateSize(tt.text)
			assert.Equal(t, tt.width, w)
			assert.Equal(t, tt.height, h)
		})
	}
}

func TestOverlapsPadding(t *testing.T) {
	placed := []models.TextCard{{X: 0, Y: 0, Width: 120, Height: 36}}

	assert.True(t, overlaps(models.TextCard{X: 124, Y: 0, Width: 120, Height: 36}, placed))
	assert.False(t, overlaps(models.TextCard{X: 128, Y: 0, Width: 120, Height: 36}, placed))
	assert.False(t, overlaps(models.TextCard{X: 0, Y: 44, Width: 120, Height: 36}, placed))
	assert.False(t, overlaps(models.TextCard{X: 0, Y: 0, Width: 120, Height: 36}, nil))
}

func TestInBounds(t *testing.T) {
	size := Size{Width: 200, Height: 100}

	assert.True(t, InBounds(models.TextCard{X: 80, Y: 64, Width: 120, Height: 36}, size))
	assert.False(t, InBounds(models.TextCard{X: 81, Y: 0, Width: 120, Height: 36}, size))
	assert.False(t, InBounds(models.TextCard{X: 0, Y: 65, Width: 120, Height: 36}, size))
	assert.False(t, InBounds(models.TextCard{X: -1, Y: 0, Width: 120, Height: 36}, size))
}

func TestPlace(t *testing.T) {
	t.Run("unmeasured canvas places nothing", func(t *testing.T) {
		cards, stats := Place(nil, makeItems(3), Size{Width: 0, Height: 600}, NewSource(1))
		assert.Empty(t, cards)
		assert.Equal(t, Stats{}, stats)
	})

	t.Run("no overlaps with room to spare", func(t *testing.T) {
		cards, stats := Place(nil, makeItems(10), Size{Width: 2000, Height: 2000}, NewSource(7))
		require.Len(t, cards, 10)
		assert.Equal(t, 10, stats.Placed)
		assert.Zero(t, stats.Overlapping)

		all := make([]models.TextCard, 0, len(cards))
		for _, c := range cards {
			assert.True(t, InBounds(c, Size{Width: 2000, Height: 2000}))
			for _, other := range all {
				assert.False(t, overlaps(c, []models.TextCard{other}), "%s overlaps %s", c.ID, other.ID)
			}
			all = append(all, c)
		}
	})

	t.Run("skips blank text and duplicate ids", func(t *testing.T) {
		items := []Item{
			{ID: "a", Text: "  first  "},
			{ID: "b", Text: "   "},
			{ID: "a", Text: "again"},
		}
		cards, _ := Place(nil, items, Size{Width: 800, Height: 600}, NewSource(1))
		require.Len(t, cards, 1)
		assert.Equal(t, "first", cards["a"].Text)
	})

	t.Run("does not modify prev", func(t *testing.T) {
		prev := map[string]models.TextCard{
			"a": {ID: "a", Text: "old", X: 10, Y: 10, Width: 120, Height: 36},
		}
		snapshot := maps.Clone(prev)

		next, stats := Place(prev, []Item{{ID: "a", Text: "new text"}}, Size{Width: 800, Height: 600}, NewSource(1))
		assert.Equal(t, snapshot, prev)
		assert.Equal(t, 1, stats.Kept)
		assert.Equal(t, "new text", next["a"].Text)
		assert.Equal(t, 10, next["a"].X)
	})

	t.Run("grown text that no longer fits is re-placed", func(t *testing.T) {
		size := Size{Width: 200, Height: 100}
		first, _ := Place(nil, []Item{{ID: "a", Text: "hi"}}, size, NewSource(3))
		require.Equal(t, 120, first["a"].Width)

		next, stats := Place(first, []Item{{ID: "a", Text: strings.Repeat("x", 100)}}, size, NewSource(3))
		assert.Equal(t, 0, stats.Kept)
		assert.Equal(t, 1, stats.Placed)
		assert.Equal(t, 320, next["a"].Width)
		assert.Equal(t, 0, next["a"].X)
	})
}

func TestPlaceTerminatesWhenCardsCannotFit(t *testing.T) {
	// Every card is at least 120 wide, so nothing fits beside the first one
	size := Size{Width: 130, Height: 40}

	cards, stats := Place(nil, makeItems(200), size, NewSource(11))
	assert.Len(t, cards, 200)
	assert.Equal(t, 200, stats.Placed)
	assert.Equal(t, 199, stats.Overlapping)

	// Canvas smaller than any card still completes
	tiny, stats := Place(nil, makeItems(5), Size{Width: 1, Height: 1}, NewSource(11))
	assert.Len(t, tiny, 5)
	assert.Equal(t, 4, stats.Overlapping)
	for _, c := range tiny {
		assert.Equal(t, 0, c.X)
		assert.Equal(t, 0, c.Y)
	}
}

func TestEngineStableUnderInBoundsResize(t *testing.T) {
	eng := NewEngine(NewSource(42))
	eng.Resize(1200, 900)
	eng.Update(makeItems(12))
	eng.Recompute()
	before := eng.Cards()
	require.Len(t, before, 12)

	// Grow, then shrink to the tightest box that still holds every card
	right, bottom := 0, 0
	for _, c := range before {
		right = max(right, c.X+c.Width)
		bottom = max(bottom, c.Y+c.Height)
	}

	for _, size := range []Size{{3000, 3000}, {right, bottom}} {
		eng.Resize(size.Width, size.Height)
		assert.Equal(t, StateResized, eng.State())

		stats := eng.Recompute()
		assert.Equal(t, 12, stats.Kept)
		assert.Zero(t, stats.Placed)
		assert.Equal(t, StatePopulated, eng.State())

		for id, c := range eng.Cards() {
			assert.Equal(t, before[id].X, c.X, id)
			assert.Equal(t, before[id].Y, c.Y, id)
		}
	}
}

func TestEngineShrinkRevalidatesBeforePlacing(t *testing.T) {
	eng := NewEngine(NewSource(5))
	eng.Resize(2000, 2000)
	eng.Update(makeItems(20))
	eng.Recompute()

	eng.Resize(400, 300)
	stats := eng.Recompute()
	assert.Equal(t, 20, stats.Kept+stats.Placed)

	for _, c := range eng.Cards() {
		if c.Width <= 400 && c.Height <= 300 {
			assert.True(t, InBounds(c, eng.Size()), c.ID)
		}
	}
}

func TestEngineDeterministicWithSeed(t *testing.T) {
	run := func() map[string]models.TextCard {
		eng := NewEngine(NewSource(SeedFor("question-1")))
		eng.Update(makeItems(15))
		eng.Resize(900, 700)
		eng.Recompute()
		return eng.Cards()
	}

	assert.Equal(t, run(), run())
	assert.Equal(t, SeedFor("q"), SeedFor("q"))
	assert.NotEqual(t, SeedFor("q1"), SeedFor("q2"))
}

func TestEngineDropsAbsentIDs(t *testing.T) {
	eng := NewEngine(NewSource(9))
	eng.Resize(1000, 800)
	eng.Update([]Item{{ID: "a", Text: "alpha"}, {ID: "b", Text: "bravo"}, {ID: "c", Text: "charlie"}})
	eng.Recompute()
	before := eng.Cards()

	eng.Update([]Item{{ID: "a", Text: "alpha"}, {ID: "c", Text: "charlie"}})
	eng.Recompute()
	after := eng.Cards()

	require.Len(t, after, 2)
	assert.NotContains(t, after, "b")
	assert.Equal(t, before["a"], after["a"])
	assert.Equal(t, before["c"], after["c"])

	eng.Update(nil)
	eng.Recompute()
	assert.Empty(t, eng.Cards())
	assert.Equal(t, StateEmpty, eng.State())
}

func TestEngineSignalOrder(t *testing.T) {
	t.Run("items before size", func(t *testing.T) {
		eng := NewEngine(nil)
		eng.Update(makeItems(3))
		assert.Equal(t, Stats{}, eng.Recompute())
		assert.Empty(t, eng.Cards())
		assert.Equal(t, StateEmpty, eng.State())

		eng.Resize(800, 600)
		eng.Recompute()
		assert.Len(t, eng.Cards(), 3)
		assert.Equal(t, StatePopulated, eng.State())
	})

	t.Run("size before items", func(t *testing.T) {
		eng := NewEngine(nil)
		eng.Resize(800, 600)
		eng.Recompute()
		assert.Empty(t, eng.Cards())
		assert.Equal(t, StateEmpty, eng.State())

		eng.Update(makeItems(3))
		eng.Recompute()
		assert.Len(t, eng.Cards(), 3)
	})

	t.Run("same size keeps state", func(t *testing.T) {
		eng := NewEngine(nil)
		eng.Resize(800, 600)
		eng.Update(makeItems(1))
		eng.Recompute()
		eng.Resize(800, 600)
		assert.Equal(t, StatePopulated, eng.State())
	})
}

func TestEngineCardsIsACopy(t *testing.T) {
	eng := NewEngine(nil)
	eng.Resize(800, 600)
	eng.Update(makeItems(2))
	eng.Recompute()

	cards := eng.Cards()
	delete(cards, "r0")
	assert.Len(t, eng.Cards(), 2)
}

func TestEngineClose(t *testing.T) {
	eng := NewEngine(nil)
	eng.Resize(800, 600)
	eng.Update(makeItems(2))
	eng.Recompute()

	eng.Close()
	assert.Equal(t, StateClosed, eng.State())
	assert.Empty(t, eng.Cards())

	eng.Update(makeItems(4))
	eng.Resize(100, 100)
	assert.Equal(t, Stats{}, eng.Recompute())
	assert.Equal(t, StateClosed, eng.State())
	assert.Equal(t, "closed", eng.State().String())
}
