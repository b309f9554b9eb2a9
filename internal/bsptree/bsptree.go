// Package bsptree implements the axis-aligned binary space partition
// tree: an arena of nodes and leaves supporting point location,
// divide/merge, segment-vs-solid collision, and the directional
// neighbor query the portal generator depends on.
package bsptree

import (
	"iter"

	"github.com/darthryking/projectvis/internal/geometry"
	"github.com/darthryking/projectvis/internal/visierr"
)

// Orientation is the axis a Node splits along.
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

func (o Orientation) String() string {
	if o == Vertical {
		return "Vertical"
	}
	return "Horizontal"
}

// Direction is one of the four cardinal directions used by the
// neighbor query and portal geometry.
type Direction int

const (
	Left Direction = iota
	Right
	Top
	Bottom
)

// ID is a non-owning handle into a Tree's element arena. It is
// invalidated by the next DivideLeaf or MergeLeaf on the owning tree.
type ID int

// NoID is the zero-value sentinel for "no element" (an absent
// parent, an absent child).
const NoID ID = -1

type kind int

const (
	deadKind kind = iota
	leafKind
	nodeKind
)

type element struct {
	kind   kind
	bounds geometry.Rect
	parent ID

	// node fields
	orientation Orientation
	partition   int
	left, right ID

	// leaf fields
	solid    bool
	leafID   int   // -1 unless this is a visleaf and has been renumbered
	portals  []int // opaque handles managed by package portal
	pvs      []ID  // potentially-visible visleaf ids, managed by package vismatrix
}

// Tree is the arena-backed BSP tree. The zero value is not usable;
// construct one with New.
type Tree struct {
	maxWidth, maxHeight int
	root                ID
	elements            []element
	freeList            []ID
}

// New constructs a tree spanning [0,maxW) x [0,maxH) whose root is a
// single non-solid leaf.
func New(maxWidth, maxHeight int) (*Tree, error) {
	if maxWidth <= 0 || maxHeight <= 0 {
		return nil, visierr.New(visierr.InvalidArgument,
			"world dimensions must be positive, got %dx%d", maxWidth, maxHeight)
	}

	t := &Tree{maxWidth: maxWidth, maxHeight: maxHeight}
	t.root = t.alloc(element{
		kind:   leafKind,
		bounds: geometry.Rect{Left: 0, Top: 0, Right: maxWidth, Bottom: maxHeight},
		parent: NoID,
		solid:  false,
		leafID: -1,
	})
	return t, nil
}

func (t *Tree) alloc(e element) ID {
	if n := len(t.freeList); n > 0 {
		id := t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
		t.elements[id] = e
		return id
	}
	id := ID(len(t.elements))
	t.elements = append(t.elements, e)
	return id
}

func (t *Tree) free(id ID) {
	t.elements[id] = element{kind: deadKind}
	t.freeList = append(t.freeList, id)
}

// freeSubtree recursively frees every descendant of id, but not id
// itself.
func (t *Tree) freeSubtree(id ID) {
	e := &t.elements[id]
	if e.kind != nodeKind {
		return
	}
	t.freeChildSubtree(e.left)
	t.freeChildSubtree(e.right)
}

func (t *Tree) freeChildSubtree(id ID) {
	t.freeSubtree(id)
	t.free(id)
}

func (t *Tree) checkID(id ID) error {
	if id < 0 || int(id) >= len(t.elements) || t.elements[id].kind == deadKind {
		return visierr.New(visierr.InvalidArgument, "element id %d is not live in this tree", id)
	}
	return nil
}

// MaxWidth returns the world's horizontal extent.
func (t *Tree) MaxWidth() int { return t.maxWidth }

// MaxHeight returns the world's vertical extent.
func (t *Tree) MaxHeight() int { return t.maxHeight }

// Root returns the id of the tree's root element.
func (t *Tree) Root() ID { return t.root }

// Bounds returns the bounding rectangle of element id.
func (t *Tree) Bounds(id ID) geometry.Rect { return t.elements[id].bounds }

// Parent returns the parent of id, or NoID if id is the root.
func (t *Tree) Parent(id ID) ID { return t.elements[id].parent }

// IsLeaf reports whether id refers to a leaf.
func (t *Tree) IsLeaf(id ID) bool { return t.elements[id].kind == leafKind }

// IsNode reports whether id refers to a node.
func (t *Tree) IsNode(id ID) bool { return t.elements[id].kind == nodeKind }

// NodeOrientation returns the split orientation of node id.
func (t *Tree) NodeOrientation(id ID) Orientation { return t.elements[id].orientation }

// NodePartition returns the split coordinate of node id.
func (t *Tree) NodePartition(id ID) int { return t.elements[id].partition }

// NodeChildren returns the left and right children of node id.
func (t *Tree) NodeChildren(id ID) (left, right ID) {
	e := &t.elements[id]
	return e.left, e.right
}

// LeafSolid reports whether leaf id is solid.
func (t *Tree) LeafSolid(id ID) bool { return t.elements[id].solid }

// SetLeafSolid sets the solidity of leaf id.
func (t *Tree) SetLeafSolid(id ID, solid bool) { t.elements[id].solid = solid }

// LeafID returns the serialization-time visleaf id assigned to leaf
// id, or -1 if it has not been assigned one (including all solid
// leaves).
func (t *Tree) LeafID(id ID) int { return t.elements[id].leafID }

// SetLeafID sets the serialization-time visleaf id of leaf id.
func (t *Tree) SetLeafID(id ID, leafID int) { t.elements[id].leafID = leafID }

// LeafPortalHandles returns the opaque portal handles attached to
// leaf id by package portal.
func (t *Tree) LeafPortalHandles(id ID) []int { return t.elements[id].portals }

// SetLeafPortalHandles replaces the opaque portal handles attached to
// leaf id.
func (t *Tree) SetLeafPortalHandles(id ID, handles []int) { t.elements[id].portals = handles }

// LeafPVS returns the potentially-visible-set ids attached to leaf id
// by package vismatrix.
func (t *Tree) LeafPVS(id ID) []ID { return t.elements[id].pvs }

// SetLeafPVS replaces the potentially-visible-set ids attached to
// leaf id.
func (t *Tree) SetLeafPVS(id ID, pvs []ID) { t.elements[id].pvs = pvs }

// LeafFromCoords performs point location: walks from the root
// choosing the child whose half-space contains (x, y). The point
// must lie strictly within the world.
func (t *Tree) LeafFromCoords(x, y int) (ID, error) {
	if x < 0 || x >= t.maxWidth || y < 0 || y >= t.maxHeight {
		return NoID, visierr.New(visierr.InvalidArgument,
			"point (%d, %d) lies outside the world (%dx%d)", x, y, t.maxWidth, t.maxHeight)
	}

	id := t.root
	for {
		e := &t.elements[id]
		if e.kind == leafKind {
			return id, nil
		}
		if e.orientation == Horizontal {
			if y >= e.partition {
				id = e.right
			} else {
				id = e.left
			}
		} else {
			if x >= e.partition {
				id = e.right
			} else {
				id = e.left
			}
		}
	}
}

// DivideLeaf replaces leaf with a fresh Node split along orientation
// at partition. Both new leaf children are always solid, regardless
// of leaf's prior solidity (see DESIGN.md "Leaf solidity defaults").
// It returns the ids of the new left and right leaf children.
func (t *Tree) DivideLeaf(leaf ID, orientation Orientation, partition int) (left, right ID, err error) {
	if err := t.checkID(leaf); err != nil {
		return NoID, NoID, err
	}
	e := &t.elements[leaf]
	if e.kind != leafKind {
		return NoID, NoID, visierr.New(visierr.InvalidArgument, "element %d is not a leaf", leaf)
	}

	bounds := e.bounds
	if orientation == Vertical {
		if !(bounds.Left < partition && partition < bounds.Right) {
			return NoID, NoID, visierr.New(visierr.InvalidArgument,
				"partition %d is not strictly between %d and %d", partition, bounds.Left, bounds.Right)
		}
	} else {
		if !(bounds.Top < partition && partition < bounds.Bottom) {
			return NoID, NoID, visierr.New(visierr.InvalidArgument,
				"partition %d is not strictly between %d and %d", partition, bounds.Top, bounds.Bottom)
		}
	}

	var leftBounds, rightBounds geometry.Rect
	if orientation == Vertical {
		leftBounds = geometry.Rect{Left: bounds.Left, Top: bounds.Top, Right: partition, Bottom: bounds.Bottom}
		rightBounds = geometry.Rect{Left: partition, Top: bounds.Top, Right: bounds.Right, Bottom: bounds.Bottom}
	} else {
		leftBounds = geometry.Rect{Left: bounds.Left, Top: bounds.Top, Right: bounds.Right, Bottom: partition}
		rightBounds = geometry.Rect{Left: bounds.Left, Top: partition, Right: bounds.Right, Bottom: bounds.Bottom}
	}

	parent := e.parent

	leftID := t.alloc(element{kind: leafKind, bounds: leftBounds, solid: true, leafID: -1})
	rightID := t.alloc(element{kind: leafKind, bounds: rightBounds, solid: true, leafID: -1})
	t.elements[leftID].parent = leaf
	t.elements[rightID].parent = leaf

	// Reuse leaf's own slot as the new node; ids are renumbered at
	// serialize time, so slot identity across a divide carries no
	// externally-visible meaning.
	t.elements[leaf] = element{
		kind:        nodeKind,
		bounds:      bounds,
		parent:      parent,
		orientation: orientation,
		partition:   partition,
		left:        leftID,
		right:       rightID,
	}

	return leftID, rightID, nil
}

// MergeLeaf collapses leaf's parent subtree into a single fresh
// non-solid leaf. If leaf is the root, the entire tree is reset to a
// single non-solid leaf spanning the world. It returns the id of the
// replacement leaf.
func (t *Tree) MergeLeaf(leaf ID) (ID, error) {
	if err := t.checkID(leaf); err != nil {
		return NoID, err
	}
	if t.elements[leaf].kind != leafKind {
		return NoID, visierr.New(visierr.InvalidArgument, "element %d is not a leaf", leaf)
	}

	parent := t.elements[leaf].parent
	if parent == NoID {
		t.elements = nil
		t.freeList = nil
		t.root = t.alloc(element{
			kind:   leafKind,
			bounds: geometry.Rect{Left: 0, Top: 0, Right: t.maxWidth, Bottom: t.maxHeight},
			parent: NoID,
			solid:  false,
			leafID: -1,
		})
		return t.root, nil
	}

	pBounds := t.elements[parent].bounds
	grandparent := t.elements[parent].parent

	t.freeChildSubtree(t.elements[parent].left)
	t.freeChildSubtree(t.elements[parent].right)

	// Reuse parent's own slot as the replacement leaf.
	t.elements[parent] = element{
		kind:   leafKind,
		bounds: pBounds,
		parent: grandparent,
		solid:  false,
		leafID: -1,
	}

	return parent, nil
}

// SegmentCollision returns the first solid leaf the open segment
// (startPos, endPos) crosses, or NoID if it crosses none.
//
// Per the source this was distilled from, the entry point nudges
// startPos by (-1, 0) if endPos.X < startPos.X, and/or (0, -1) if
// endPos.Y < startPos.Y, before descending. This is an intentional
// asymmetric bias preserved for behavioral parity; segmentCollision
// is therefore not guaranteed symmetric under endpoint swap.
func (t *Tree) SegmentCollision(startPos, endPos geometry.Point) ID {
	nudged := startPos
	if endPos.X < startPos.X {
		nudged.X--
	}
	if endPos.Y < startPos.Y {
		nudged.Y--
	}
	return t.segmentCollision(t.root, nudged, endPos)
}

func (t *Tree) segmentCollision(id ID, startPos, endPos geometry.Point) ID {
	e := &t.elements[id]
	if e.kind == leafKind {
		if e.solid {
			return id
		}
		return NoID
	}

	var startCoord, endCoord int
	if e.orientation == Vertical {
		startCoord, endCoord = startPos.X, endPos.X
	} else {
		startCoord, endCoord = startPos.Y, endPos.Y
	}

	partition := e.partition

	if startCoord < partition && endCoord < partition {
		return t.segmentCollision(e.left, startPos, endPos)
	}
	if startCoord >= partition && endCoord >= partition {
		return t.segmentCollision(e.right, startPos, endPos)
	}

	// The segment straddles the partition; find the split point and
	// recurse start-side first.
	splitPoint := splitAt(startPos, endPos, e.orientation, partition)

	var startChild, endChild ID
	if startCoord < partition {
		startChild, endChild = e.left, e.right
	} else {
		startChild, endChild = e.right, e.left
	}

	if hit := t.segmentCollision(startChild, startPos, splitPoint); hit != NoID {
		return hit
	}
	return t.segmentCollision(endChild, splitPoint, endPos)
}

// splitAt computes the point where the segment (start, end) crosses
// the given orientation's partition line.
func splitAt(start, end geometry.Point, orientation Orientation, partition int) geometry.Point {
	if orientation == Vertical {
		dx := end.X - start.X
		if dx == 0 {
			return geometry.Point{X: partition, Y: start.Y}
		}
		t := float64(partition-start.X) / float64(dx)
		y := start.Y + int(t*float64(end.Y-start.Y))
		return geometry.Point{X: partition, Y: y}
	}

	dy := end.Y - start.Y
	if dy == 0 {
		return geometry.Point{X: start.X, Y: partition}
	}
	t := float64(partition-start.Y) / float64(dy)
	x := start.X + int(t*float64(end.X-start.X))
	return geometry.Point{X: x, Y: partition}
}

// IterElements visits every element in the tree, in preorder
// (a node before its children).
func (t *Tree) IterElements() iter.Seq[ID] {
	return func(yield func(ID) bool) {
		if t.root == NoID {
			return
		}
		stack := []ID{t.root}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			e := &t.elements[id]
			if e.kind == nodeKind {
				stack = append(stack, e.right, e.left)
			}
			if !yield(id) {
				return
			}
		}
	}
}

// IterLeaves visits every leaf in the tree.
func (t *Tree) IterLeaves() iter.Seq[ID] {
	return func(yield func(ID) bool) {
		for id := range t.IterElements() {
			if t.elements[id].kind == leafKind {
				if !yield(id) {
					return
				}
			}
		}
	}
}

// IterVisleaves visits every non-solid leaf in the tree.
func (t *Tree) IterVisleaves() iter.Seq[ID] {
	return func(yield func(ID) bool) {
		for id := range t.IterLeaves() {
			if !t.elements[id].solid {
				if !yield(id) {
					return
				}
			}
		}
	}
}

// IterNodes visits every node in the tree.
func (t *Tree) IterNodes() iter.Seq[ID] {
	return func(yield func(ID) bool) {
		for id := range t.IterElements() {
			if t.elements[id].kind == nodeKind {
				if !yield(id) {
					return
				}
			}
		}
	}
}
