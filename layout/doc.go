// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package layout places one rectangular card per free-text answer on a bounded
canvas without overlaps, keeping earlier positions across updates.

# Placement

Place is the pure function underneath: it takes the previous positions, the
current items and the canvas size, and returns the next positions.

  - A card whose refreshed box still fits the canvas keeps its X and Y.
  - Other items get a box estimated from their text length and up to
    MaxAttempts random candidates; the first that clears every placed card
    by Padding wins.
  - When no candidate is free, the last one is accepted and counted in
    Stats.Overlapping. Placement always terminates.

# Engine

Engine holds the positions for one canvas:

	eng := layout.NewEngine(layout.NewSource(layout.SeedFor(questionID)))
	eng.Resize(800, 600)
	eng.Update(items)
	eng.Recompute()
	cards := eng.Cards()

Size and items may arrive in either order. Recompute does nothing until a
measured size is known. States move Empty -> Populated -> Resized ->
Populated, and Close is terminal.
*/
package layout
