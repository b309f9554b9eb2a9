// Package vismatrix loads a precomputed potentially-visible-set (PVS)
// matrix and attaches it to a tree's visleaves, per spec.md §6's
// "visibility matrix input" interface.
package vismatrix

import (
	"github.com/darthryking/projectvis/internal/bsptree"
	"github.com/darthryking/projectvis/internal/visierr"
)

// Load reads a dense boolean matrix indexed [leafID1][leafID2] and
// sets each visleaf's PVS to the set of visleaves it can see,
// per leafID. The matrix need not be square: each visleaf reads only
// row leafID, so there must be a row for every visleaf's leafID, and
// every true entry in such a row must name the leafID of a visleaf;
// otherwise Load returns a MalformedInput error.
func Load(tree *bsptree.Tree, matrix [][]bool) error {
	byLeafID := make(map[int]bsptree.ID)
	for leaf := range tree.IterVisleaves() {
		byLeafID[tree.LeafID(leaf)] = leaf
	}

	for leaf := range tree.IterVisleaves() {
		id1 := tree.LeafID(leaf)
		if id1 < 0 || id1 >= len(matrix) {
			return visierr.New(visierr.MalformedInput, "vismatrix: leafID out of range for matrix")
		}
		row := matrix[id1]

		var pvs []bsptree.ID
		for id2, visible := range row {
			if !visible {
				continue
			}
			other, ok := byLeafID[id2]
			if !ok {
				return visierr.New(visierr.MalformedInput, "vismatrix: matrix references an unknown leafID")
			}
			pvs = append(pvs, other)
		}
		tree.SetLeafPVS(leaf, pvs)
	}

	return nil
}

// CanSee reports whether from's attached PVS (set by Load) includes
// to. If from has no PVS attached, CanSee conservatively reports true
// (no filtering is possible without a loaded matrix).
func CanSee(tree *bsptree.Tree, from, to bsptree.ID) bool {
	pvs := tree.LeafPVS(from)
	if pvs == nil {
		return true
	}
	for _, id := range pvs {
		if id == to {
			return true
		}
	}
	return false
}

// FilterByPVS wraps a portal-traversal predicate so the flood engine
// can optionally skip portals whose far leaf is already known
// unreachable from the current leaf, per a loaded PVS matrix. This is
// purely an optimization hint: it never changes the flood's
// correctness semantics, only how much work it does.
func FilterByPVS(tree *bsptree.Tree, from, to bsptree.ID) bool {
	return CanSee(tree, from, to)
}
