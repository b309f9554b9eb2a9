// Package portal generates and loads the Portal set that links
// adjacent non-solid BSP leaves, per Component D of the visibility
// engine.
package portal

import (
	"log"

	"github.com/darthryking/projectvis/internal/bsptree"
	"github.com/darthryking/projectvis/internal/geometry"
	"github.com/darthryking/projectvis/internal/visierr"
)

// Portal is an axis-aligned segment shared between two distinct
// visleaves.
type Portal struct {
	Leaf1, Leaf2 bsptree.ID
	Orientation  bsptree.Orientation
	Start, End   geometry.Point
}

// OtherSide returns the leaf on the far side of the portal from leaf.
func (p Portal) OtherSide(leaf bsptree.ID) bsptree.ID {
	switch leaf {
	case p.Leaf1:
		return p.Leaf2
	case p.Leaf2:
		return p.Leaf1
	default:
		return bsptree.NoID
	}
}

// New constructs the Portal between two neighboring visleaves. The
// neighbor relation that is found first (checked in L, T, R, B order)
// determines the geometry; since each unordered pair is only ever
// processed once by Registry.Generate, either direction produces an
// equivalent segment.
func New(tree *bsptree.Tree, leaf1, leaf2 bsptree.ID) (Portal, error) {
	if tree.LeafSolid(leaf1) || tree.LeafSolid(leaf2) {
		return Portal{}, visierr.New(visierr.PreconditionViolation,
			"portal requires two non-solid visleaves, got %d and %d", leaf1, leaf2)
	}

	b1, b2 := tree.Bounds(leaf1), tree.Bounds(leaf2)

	var orientation bsptree.Orientation
	var start, end geometry.Point

	switch {
	case tree.IsLeftNeighborOf(leaf1, leaf2):
		orientation = bsptree.Vertical
		x := b1.Right
		start = geometry.Point{X: x, Y: max(b1.Top, b2.Top)}
		end = geometry.Point{X: x, Y: min(b1.Bottom, b2.Bottom)}
	case tree.IsTopNeighborOf(leaf1, leaf2):
		orientation = bsptree.Horizontal
		y := b1.Bottom
		start = geometry.Point{X: max(b1.Left, b2.Left), Y: y}
		end = geometry.Point{X: min(b1.Right, b2.Right), Y: y}
	case tree.IsRightNeighborOf(leaf1, leaf2):
		orientation = bsptree.Vertical
		x := b1.Left
		start = geometry.Point{X: x, Y: max(b1.Top, b2.Top)}
		end = geometry.Point{X: x, Y: min(b1.Bottom, b2.Bottom)}
	case tree.IsBottomNeighborOf(leaf1, leaf2):
		orientation = bsptree.Horizontal
		y := b1.Top
		start = geometry.Point{X: max(b1.Left, b2.Left), Y: y}
		end = geometry.Point{X: min(b1.Right, b2.Right), Y: y}
	default:
		return Portal{}, visierr.New(visierr.PreconditionViolation,
			"leaves %d and %d do not share a boundary", leaf1, leaf2)
	}

	if start == end {
		return Portal{}, visierr.New(visierr.GeometryDegenerate,
			"portal between leaves %d and %d has zero length", leaf1, leaf2)
	}

	return Portal{Leaf1: leaf1, Leaf2: leaf2, Orientation: orientation, Start: start, End: end}, nil
}

// Registry owns the tree's full Portal set and keeps each visleaf's
// opaque portal handles (bsptree.Tree.LeafPortalHandles) in sync with
// it. This is where spec.md's "BSPTree owns a set of Portal" lives in
// practice: bsptree.Tree stores only integer handles so that it never
// needs to import this package.
type Registry struct {
	tree    *bsptree.Tree
	portals []Portal

	// Logger receives a warning for each degenerate (zero-length)
	// portal skipped during Generate. Nil disables logging.
	Logger *log.Logger
}

// NewRegistry wraps tree with an initially-empty portal registry.
func NewRegistry(tree *bsptree.Tree) *Registry {
	return &Registry{tree: tree}
}

// Portals returns every portal currently registered.
func (r *Registry) Portals() []Portal {
	return r.portals
}

// LeafPortals returns the portals touching leaf.
func (r *Registry) LeafPortals(leaf bsptree.ID) []Portal {
	handles := r.tree.LeafPortalHandles(leaf)
	out := make([]Portal, len(handles))
	for i, h := range handles {
		out[i] = r.portals[h]
	}
	return out
}

// Generate rebuilds the portal set and every visleaf's portal handles
// from the tree's current geometry, per spec.md §4.4.
func (r *Registry) Generate() error {
	t := r.tree

	for leaf := range t.IterVisleaves() {
		t.SetLeafPortalHandles(leaf, nil)
	}
	r.portals = r.portals[:0]

	type pair struct{ a, b bsptree.ID }
	processed := make(map[pair]bool)

	for v := range t.IterVisleaves() {
		for n := range t.IterNeighbors(v) {
			if t.LeafSolid(n) {
				continue
			}

			key := pair{v, n}
			if v > n {
				key = pair{n, v}
			}
			if processed[key] {
				continue
			}
			processed[key] = true

			p, err := New(t, v, n)
			if err != nil {
				if visierr.Is(err, visierr.GeometryDegenerate) {
					if r.Logger != nil {
						r.Logger.Printf("warning: skipping degenerate portal between leaves %d and %d", v, n)
					}
					continue
				}
				return err
			}

			handle := len(r.portals)
			r.portals = append(r.portals, p)
			t.SetLeafPortalHandles(v, append(t.LeafPortalHandles(v), handle))
			t.SetLeafPortalHandles(n, append(t.LeafPortalHandles(n), handle))
		}
	}

	return nil
}

// Load replaces the registry's portal set wholesale from an external
// source; the deserialization dual of Generate.
func (r *Registry) Load(portals []Portal) {
	t := r.tree

	for leaf := range t.IterVisleaves() {
		t.SetLeafPortalHandles(leaf, nil)
	}

	r.portals = append(r.portals[:0], portals...)
	for handle, p := range r.portals {
		t.SetLeafPortalHandles(p.Leaf1, append(t.LeafPortalHandles(p.Leaf1), handle))
		t.SetLeafPortalHandles(p.Leaf2, append(t.LeafPortalHandles(p.Leaf2), handle))
	}
}
