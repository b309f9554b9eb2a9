package bsptree

import (
	"iter"

	"github.com/darthryking/projectvis/internal/geometry"
)

// ascendSpec returns the orientation and "arrived via right child"
// flag an ancestor must match for direction d, per the ascend table.
func ascendSpec(d Direction) (orientation Orientation, viaRight bool) {
	switch d {
	case Left:
		return Vertical, true
	case Right:
		return Vertical, false
	case Top:
		return Horizontal, true
	case Bottom:
		return Horizontal, false
	default:
		panic("bsptree: invalid direction")
	}
}

// parallelOrientation is the split orientation that runs along the
// same axis as direction d (Left/Right move along Vertical splits;
// Top/Bottom move along Horizontal splits).
func parallelOrientation(d Direction) Orientation {
	if d == Left || d == Right {
		return Vertical
	}
	return Horizontal
}

// ascend climbs from leaf toward the root until it finds an ancestor
// whose orientation and arrival side match direction d. It reports
// false if no such ancestor exists (leaf has no neighbor in that
// direction).
func (t *Tree) ascend(leaf ID, d Direction) (ID, bool) {
	wantOrientation, wantViaRight := ascendSpec(d)

	cur := leaf
	for {
		parent := t.elements[cur].parent
		if parent == NoID {
			return NoID, false
		}
		e := &t.elements[parent]
		viaRight := e.right == cur
		if e.orientation == wantOrientation && viaRight == wantViaRight {
			return parent, true
		}
		cur = parent
	}
}

// overlapsStrict reports whether other's extent perpendicular to
// direction d strictly overlaps lBounds's.
func overlapsStrict(d Direction, lBounds, other geometry.Rect) bool {
	if d == Left || d == Right {
		return !(other.Bottom <= lBounds.Top || other.Top >= lBounds.Bottom)
	}
	return !(other.Right <= lBounds.Left || other.Left >= lBounds.Right)
}

// descend walks from id toward leaves in the direction facing
// lBounds, yielding every leaf whose perpendicular extent strictly
// overlaps lBounds. It returns false if the caller's yield asked to
// stop early.
func (t *Tree) descend(id ID, d Direction, lBounds geometry.Rect, yield func(ID) bool) bool {
	e := &t.elements[id]
	if e.kind == leafKind {
		if overlapsStrict(d, lBounds, e.bounds) {
			return yield(id)
		}
		return true
	}

	if e.orientation != parallelOrientation(d) {
		// Perpendicular split: both halves may border lBounds.
		if !t.descend(e.left, d, lBounds, yield) {
			return false
		}
		return t.descend(e.right, d, lBounds, yield)
	}

	// Parallel split: only the side facing lBounds can border it.
	var child ID
	switch d {
	case Left, Top:
		child = e.right
	default:
		child = e.left
	}
	return t.descend(child, d, lBounds, yield)
}

// IterDirectionalNeighbors yields every leaf adjacent to leaf along
// direction d whose perpendicular extent strictly overlaps leaf's.
func (t *Tree) IterDirectionalNeighbors(leaf ID, d Direction) iter.Seq[ID] {
	return func(yield func(ID) bool) {
		p, ok := t.ascend(leaf, d)
		if !ok {
			return
		}

		e := &t.elements[p]
		var start ID
		switch d {
		case Left, Top:
			start = e.left
		default:
			start = e.right
		}

		t.descend(start, d, t.elements[leaf].bounds, yield)
	}
}

// IterNeighbors chains the neighbor query across all four directions.
func (t *Tree) IterNeighbors(leaf ID) iter.Seq[ID] {
	return func(yield func(ID) bool) {
		for _, d := range [...]Direction{Left, Right, Top, Bottom} {
			for n := range t.IterDirectionalNeighbors(leaf, d) {
				if !yield(n) {
					return
				}
			}
		}
	}
}

func (t *Tree) isNeighborOf(leaf, x ID, d Direction) bool {
	for n := range t.IterDirectionalNeighbors(x, d) {
		if n == leaf {
			return true
		}
	}
	return false
}

// IsLeftNeighborOf reports whether leaf is one of x's left neighbors.
// This relation is not guaranteed symmetric with IsRightNeighborOf.
func (t *Tree) IsLeftNeighborOf(leaf, x ID) bool { return t.isNeighborOf(leaf, x, Left) }

// IsRightNeighborOf reports whether leaf is one of x's right neighbors.
func (t *Tree) IsRightNeighborOf(leaf, x ID) bool { return t.isNeighborOf(leaf, x, Right) }

// IsTopNeighborOf reports whether leaf is one of x's top neighbors.
func (t *Tree) IsTopNeighborOf(leaf, x ID) bool { return t.isNeighborOf(leaf, x, Top) }

// IsBottomNeighborOf reports whether leaf is one of x's bottom neighbors.
func (t *Tree) IsBottomNeighborOf(leaf, x ID) bool { return t.isNeighborOf(leaf, x, Bottom) }
