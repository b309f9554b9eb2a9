package bsptree

import (
	"github.com/darthryking/projectvis/internal/geometry"
	"github.com/darthryking/projectvis/internal/visierr"
)

// ElementSpec is a deserialization-time description of one element,
// keyed by the serialized id it was read under. It is the handoff
// shape between package serialize (which parses the external
// key/value format) and FromElements (which builds a validated Tree
// out of it).
type ElementSpec struct {
	ID     int
	IsLeaf bool
	Bounds geometry.Rect

	// Node fields.
	Orientation Orientation
	Partition   int
	Left, Right int // serialized ids of the children

	// Leaf fields.
	Solid  bool
	LeafID int
}

// FromElements builds a validated Tree out of a flat element
// description keyed by serialized id — the deserialization dual of
// Tree.IterElements. The root is the spec with the smallest ID.
func FromElements(maxWidth, maxHeight int, specs []ElementSpec) (*Tree, error) {
	if maxWidth <= 0 || maxHeight <= 0 {
		return nil, visierr.New(visierr.InvalidArgument,
			"world dimensions must be positive, got %dx%d", maxWidth, maxHeight)
	}
	if len(specs) == 0 {
		return nil, visierr.New(visierr.MalformedInput, "no elements given")
	}

	idToIndex := make(map[int]int, len(specs))
	for i, s := range specs {
		if _, dup := idToIndex[s.ID]; dup {
			return nil, visierr.New(visierr.MalformedInput, "duplicate element id %d", s.ID)
		}
		idToIndex[s.ID] = i
	}

	rootIdx := 0
	for i, s := range specs {
		if s.ID < specs[rootIdx].ID {
			rootIdx = i
		}
	}

	elements := make([]element, len(specs))
	for i, s := range specs {
		if s.IsLeaf {
			elements[i] = element{
				kind:   leafKind,
				bounds: s.Bounds,
				parent: NoID,
				solid:  s.Solid,
				leafID: s.LeafID,
			}
			continue
		}

		leftIdx, ok := idToIndex[s.Left]
		if !ok {
			return nil, visierr.New(visierr.MalformedInput, "element %d: dangling left child id %d", s.ID, s.Left)
		}
		rightIdx, ok := idToIndex[s.Right]
		if !ok {
			return nil, visierr.New(visierr.MalformedInput, "element %d: dangling right child id %d", s.ID, s.Right)
		}

		if err := checkSplitBounds(s.Bounds, s.Orientation, s.Partition); err != nil {
			return nil, visierr.Wrap(visierr.MalformedInput, err, "element %d", s.ID)
		}

		elements[i] = element{
			kind:        nodeKind,
			bounds:      s.Bounds,
			parent:      NoID,
			orientation: s.Orientation,
			partition:   s.Partition,
			left:        ID(leftIdx),
			right:       ID(rightIdx),
		}
	}

	assigned := make([]bool, len(specs))
	assigned[rootIdx] = true
	for i := range elements {
		if elements[i].kind != nodeKind {
			continue
		}
		left, right := elements[i].left, elements[i].right

		if assigned[left] {
			return nil, visierr.New(visierr.MalformedInput, "element id %d is referenced as a child more than once", specs[left].ID)
		}
		elements[left].parent = ID(i)
		assigned[left] = true

		if assigned[right] {
			return nil, visierr.New(visierr.MalformedInput, "element id %d is referenced as a child more than once", specs[right].ID)
		}
		elements[right].parent = ID(i)
		assigned[right] = true

		wantLeft, wantRight := splitBounds(elements[i].bounds, elements[i].orientation, elements[i].partition)
		if elements[left].bounds != wantLeft || elements[right].bounds != wantRight {
			return nil, visierr.New(visierr.MalformedInput,
				"element id %d: children's bounds are inconsistent with its orientation and partition", specs[i].ID)
		}
	}

	for i, ok := range assigned {
		if !ok {
			return nil, visierr.New(visierr.MalformedInput, "element id %d is unreachable from the root", specs[i].ID)
		}
	}

	return &Tree{
		maxWidth:  maxWidth,
		maxHeight: maxHeight,
		root:      ID(rootIdx),
		elements:  elements,
	}, nil
}

func checkSplitBounds(bounds geometry.Rect, orientation Orientation, partition int) error {
	if orientation == Vertical {
		if !(bounds.Left < partition && partition < bounds.Right) {
			return visierr.New(visierr.MalformedInput, "partition %d is not strictly between %d and %d", partition, bounds.Left, bounds.Right)
		}
	} else {
		if !(bounds.Top < partition && partition < bounds.Bottom) {
			return visierr.New(visierr.MalformedInput, "partition %d is not strictly between %d and %d", partition, bounds.Top, bounds.Bottom)
		}
	}
	return nil
}

func splitBounds(bounds geometry.Rect, orientation Orientation, partition int) (left, right geometry.Rect) {
	if orientation == Vertical {
		left = geometry.Rect{Left: bounds.Left, Top: bounds.Top, Right: partition, Bottom: bounds.Bottom}
		right = geometry.Rect{Left: partition, Top: bounds.Top, Right: bounds.Right, Bottom: bounds.Bottom}
	} else {
		left = geometry.Rect{Left: bounds.Left, Top: bounds.Top, Right: bounds.Right, Bottom: partition}
		right = geometry.Rect{Left: bounds.Left, Top: partition, Right: bounds.Right, Bottom: bounds.Bottom}
	}
	return left, right
}
