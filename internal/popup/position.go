// Package popup renders analysis results into the floating panel and
// decides where the panel goes.
package popup

import "github.com/f3rmion/subkana/internal/dom"

// Placement constants, in pixels.
const (
	OffsetX = 15 // Gap between anchor and panel, horizontally
	OffsetY = 10 // How far above the anchor the panel's top sits
	Margin  = 10 // Minimum distance from the viewport edges
)

// Place returns the top-left corner for a box of size box anchored at
// anchor. The box goes right of and slightly above the anchor; it flips to
// the left when it would overflow the right edge and moves up when it
// would overflow the bottom. Both coordinates are then clamped to Margin.
// With a viewport smaller than the box the panel may cover the anchor.
func Place(anchor dom.Point, box, viewport dom.Size) dom.Point {
	x := anchor.X + OffsetX
	y := anchor.Y - OffsetY

	if x+box.Width > viewport.Width {
		x = anchor.X - box.Width - OffsetX
	}
	if y+box.Height > viewport.Height {
		y = viewport.Height - box.Height - Margin
	}

	if x < Margin {
		x = Margin
	}
	if y < Margin {
		y = Margin
	}
	return dom.Point{X: x, Y: y}
}
