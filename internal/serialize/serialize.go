// Package serialize bridges a bsptree.Tree and the generic ordered
// key/value tree (package kvtree) that the external persistence
// format is built from. It contributes a pure encode/decode pair,
// ToKV/FromKV, and has no text I/O of its own.
package serialize

import (
	"strconv"

	"github.com/darthryking/projectvis/internal/bsptree"
	"github.com/darthryking/projectvis/internal/geometry"
	"github.com/darthryking/projectvis/internal/kvtree"
	"github.com/darthryking/projectvis/internal/portal"
	"github.com/darthryking/projectvis/internal/visierr"
)

// ToKV renumbers visleaves contiguously in traversal order, renumbers
// every element contiguously in traversal order, and emits the
// top-level mapping described by spec.md §4.5/§6.
func ToKV(tree *bsptree.Tree) *kvtree.Map {
	for leaf := range tree.IterLeaves() {
		tree.SetLeafID(leaf, -1)
	}
	nextVisleafID := 0
	for visleaf := range tree.IterVisleaves() {
		tree.SetLeafID(visleaf, nextVisleafID)
		nextVisleafID++
	}

	ids := make(map[bsptree.ID]int)
	var order []bsptree.ID
	for id := range tree.IterElements() {
		ids[id] = len(order)
		order = append(order, id)
	}

	elements := kvtree.NewMap()
	for i, id := range order {
		elements.SetMap(strconv.Itoa(i), elementRecord(tree, id, ids))
	}

	m := kvtree.NewMap()
	m.SetString("maxWidth", strconv.Itoa(tree.MaxWidth()))
	m.SetString("maxHeight", strconv.Itoa(tree.MaxHeight()))
	m.SetMap("elements", elements)
	return m
}

func elementRecord(tree *bsptree.Tree, id bsptree.ID, ids map[bsptree.ID]int) *kvtree.Map {
	m := kvtree.NewMap()
	m.SetMap("bounds", boundsRecord(tree.Bounds(id)))

	if tree.IsLeaf(id) {
		m.SetString("type", "BSPLeaf")
		m.SetString("leafID", strconv.Itoa(tree.LeafID(id)))
		m.SetString("solid", boolStr(tree.LeafSolid(id)))
		return m
	}

	m.SetString("type", "BSPNode")
	m.SetString("orientation", strconv.Itoa(int(tree.NodeOrientation(id))))
	m.SetString("partition", strconv.Itoa(tree.NodePartition(id)))
	left, right := tree.NodeChildren(id)
	m.SetString("left", strconv.Itoa(ids[left]))
	m.SetString("right", strconv.Itoa(ids[right]))
	return m
}

func boundsRecord(b geometry.Rect) *kvtree.Map {
	m := kvtree.NewMap()
	m.SetString("left", strconv.Itoa(b.Left))
	m.SetString("top", strconv.Itoa(b.Top))
	m.SetString("right", strconv.Itoa(b.Right))
	m.SetString("bottom", strconv.Itoa(b.Bottom))
	return m
}

func boolStr(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// FromKV is the deserialization dual of ToKV: it instantiates every
// element detached, then resolves child pointers and parents in a
// second pass (performed by bsptree.FromElements). It fails with a
// MalformedInput error on unknown type, missing keys, non-integral
// numerics, or dangling ids.
func FromKV(m *kvtree.Map) (*bsptree.Tree, error) {
	maxWidth, err := getInt(m, "maxWidth")
	if err != nil {
		return nil, err
	}
	maxHeight, err := getInt(m, "maxHeight")
	if err != nil {
		return nil, err
	}

	elementsMap, ok := m.GetMap("elements")
	if !ok {
		return nil, visierr.New(visierr.MalformedInput, "missing \"elements\"")
	}

	specs := make([]bsptree.ElementSpec, 0, elementsMap.Len())
	for _, key := range elementsMap.Keys() {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, visierr.Wrap(visierr.MalformedInput, err, "element key %q is not an integer id", key)
		}

		v, _ := elementsMap.Get(key)
		elemMap, ok := v.AsMap()
		if !ok {
			return nil, visierr.New(visierr.MalformedInput, "element %d is not a mapping", id)
		}

		spec, err := parseElement(id, elemMap)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}

	return bsptree.FromElements(maxWidth, maxHeight, specs)
}

func parseElement(id int, m *kvtree.Map) (bsptree.ElementSpec, error) {
	typ, ok := m.GetString("type")
	if !ok {
		return bsptree.ElementSpec{}, visierr.New(visierr.MalformedInput, "element %d: missing \"type\"", id)
	}

	boundsMap, ok := m.GetMap("bounds")
	if !ok {
		return bsptree.ElementSpec{}, visierr.New(visierr.MalformedInput, "element %d: missing \"bounds\"", id)
	}
	bounds, err := parseBounds(id, boundsMap)
	if err != nil {
		return bsptree.ElementSpec{}, err
	}

	switch typ {
	case "BSPLeaf":
		leafID, err := getInt(m, "leafID")
		if err != nil {
			return bsptree.ElementSpec{}, annotate(id, err)
		}

		solidStr, ok := m.GetString("solid")
		if !ok {
			return bsptree.ElementSpec{}, visierr.New(visierr.MalformedInput, "element %d: missing \"solid\"", id)
		}
		solid, err := parseBool(solidStr)
		if err != nil {
			return bsptree.ElementSpec{}, annotate(id, err)
		}

		return bsptree.ElementSpec{ID: id, IsLeaf: true, Bounds: bounds, Solid: solid, LeafID: leafID}, nil

	case "BSPNode":
		orientationStr, ok := m.GetString("orientation")
		if !ok {
			return bsptree.ElementSpec{}, visierr.New(visierr.MalformedInput, "element %d: missing \"orientation\"", id)
		}
		orientation, err := parseOrientation(orientationStr)
		if err != nil {
			return bsptree.ElementSpec{}, annotate(id, err)
		}

		partition, err := getInt(m, "partition")
		if err != nil {
			return bsptree.ElementSpec{}, annotate(id, err)
		}
		left, err := getInt(m, "left")
		if err != nil {
			return bsptree.ElementSpec{}, annotate(id, err)
		}
		right, err := getInt(m, "right")
		if err != nil {
			return bsptree.ElementSpec{}, annotate(id, err)
		}

		return bsptree.ElementSpec{
			ID: id, IsLeaf: false, Bounds: bounds,
			Orientation: orientation, Partition: partition,
			Left: left, Right: right,
		}, nil

	default:
		return bsptree.ElementSpec{}, visierr.New(visierr.MalformedInput, "element %d: unknown type %q", id, typ)
	}
}

func parseBounds(id int, m *kvtree.Map) (geometry.Rect, error) {
	left, err := getInt(m, "left")
	if err != nil {
		return geometry.Rect{}, annotate(id, err)
	}
	top, err := getInt(m, "top")
	if err != nil {
		return geometry.Rect{}, annotate(id, err)
	}
	right, err := getInt(m, "right")
	if err != nil {
		return geometry.Rect{}, annotate(id, err)
	}
	bottom, err := getInt(m, "bottom")
	if err != nil {
		return geometry.Rect{}, annotate(id, err)
	}

	if !(left < right && top < bottom) {
		return geometry.Rect{}, visierr.New(visierr.MalformedInput,
			"element %d: bounds (%d,%d,%d,%d) are degenerate", id, left, top, right, bottom)
	}
	return geometry.Rect{Left: left, Top: top, Right: right, Bottom: bottom}, nil
}

func getInt(m *kvtree.Map, key string) (int, error) {
	s, ok := m.GetString(key)
	if !ok {
		return 0, visierr.New(visierr.MalformedInput, "missing %q", key)
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, visierr.Wrap(visierr.MalformedInput, err, "%q is not an integer", key)
	}
	return v, nil
}

func parseBool(s string) (bool, error) {
	switch s {
	case "True":
		return true, nil
	case "False":
		return false, nil
	default:
		return false, visierr.New(visierr.MalformedInput, "expected \"True\" or \"False\", got %q", s)
	}
}

func parseOrientation(s string) (bsptree.Orientation, error) {
	switch s {
	case "0":
		return bsptree.Horizontal, nil
	case "1":
		return bsptree.Vertical, nil
	default:
		return 0, visierr.New(visierr.MalformedInput, "expected orientation \"0\" or \"1\", got %q", s)
	}
}

func annotate(id int, err error) error {
	return visierr.Wrap(visierr.MalformedInput, err, "element %d", id)
}

// PortalsToKV encodes portals by the visleaf IDs ToKV assigns, not by
// bsptree.ID arena handles — those are only stable for the lifetime
// of one Tree value, whereas a visleaf ID survives a save/load cycle.
// Call this after ToKV(tree) (or otherwise after the tree's visleaf
// IDs are current) so tree.LeafID resolves to the ids this file uses.
func PortalsToKV(tree *bsptree.Tree, portals []portal.Portal) *kvtree.Map {
	m := kvtree.NewMap()
	for i, p := range portals {
		m.SetMap(strconv.Itoa(i), portalRecord(tree, p))
	}
	return m
}

func portalRecord(tree *bsptree.Tree, p portal.Portal) *kvtree.Map {
	m := kvtree.NewMap()
	m.SetString("leaf1", strconv.Itoa(tree.LeafID(p.Leaf1)))
	m.SetString("leaf2", strconv.Itoa(tree.LeafID(p.Leaf2)))
	m.SetString("orientation", strconv.Itoa(int(p.Orientation)))
	m.SetMap("start", pointRecord(p.Start))
	m.SetMap("end", pointRecord(p.End))
	return m
}

func pointRecord(p geometry.Point) *kvtree.Map {
	m := kvtree.NewMap()
	m.SetString("x", strconv.Itoa(p.X))
	m.SetString("y", strconv.Itoa(p.Y))
	return m
}

// PortalsFromKV is the deserialization dual of PortalsToKV. tree must
// already be loaded (via FromKV) so its visleaf IDs can be resolved
// back to bsptree.ID handles.
func PortalsFromKV(tree *bsptree.Tree, m *kvtree.Map) ([]portal.Portal, error) {
	byLeafID := make(map[int]bsptree.ID)
	for leaf := range tree.IterVisleaves() {
		byLeafID[tree.LeafID(leaf)] = leaf
	}

	portals := make([]portal.Portal, m.Len())
	for _, key := range m.Keys() {
		idx, err := strconv.Atoi(key)
		if err != nil {
			return nil, visierr.Wrap(visierr.MalformedInput, err, "portal key %q is not an integer index", key)
		}
		if idx < 0 || idx >= len(portals) {
			return nil, visierr.New(visierr.MalformedInput, "portal index %d out of range", idx)
		}

		v, _ := m.Get(key)
		pm, ok := v.AsMap()
		if !ok {
			return nil, visierr.New(visierr.MalformedInput, "portal %d is not a mapping", idx)
		}

		p, err := parsePortal(pm, byLeafID)
		if err != nil {
			return nil, err
		}
		portals[idx] = p
	}

	return portals, nil
}

func parsePortal(m *kvtree.Map, byLeafID map[int]bsptree.ID) (portal.Portal, error) {
	leaf1ID, err := getInt(m, "leaf1")
	if err != nil {
		return portal.Portal{}, err
	}
	leaf2ID, err := getInt(m, "leaf2")
	if err != nil {
		return portal.Portal{}, err
	}
	leaf1, ok := byLeafID[leaf1ID]
	if !ok {
		return portal.Portal{}, visierr.New(visierr.MalformedInput, "portal references unknown leafID %d", leaf1ID)
	}
	leaf2, ok := byLeafID[leaf2ID]
	if !ok {
		return portal.Portal{}, visierr.New(visierr.MalformedInput, "portal references unknown leafID %d", leaf2ID)
	}

	orientationStr, ok := m.GetString("orientation")
	if !ok {
		return portal.Portal{}, visierr.New(visierr.MalformedInput, "portal: missing \"orientation\"")
	}
	orientation, err := parseOrientation(orientationStr)
	if err != nil {
		return portal.Portal{}, err
	}

	startMap, ok := m.GetMap("start")
	if !ok {
		return portal.Portal{}, visierr.New(visierr.MalformedInput, "portal: missing \"start\"")
	}
	start, err := parsePoint(startMap)
	if err != nil {
		return portal.Portal{}, err
	}

	endMap, ok := m.GetMap("end")
	if !ok {
		return portal.Portal{}, visierr.New(visierr.MalformedInput, "portal: missing \"end\"")
	}
	end, err := parsePoint(endMap)
	if err != nil {
		return portal.Portal{}, err
	}

	return portal.Portal{Leaf1: leaf1, Leaf2: leaf2, Orientation: orientation, Start: start, End: end}, nil
}

func parsePoint(m *kvtree.Map) (geometry.Point, error) {
	x, err := getInt(m, "x")
	if err != nil {
		return geometry.Point{}, err
	}
	y, err := getInt(m, "y")
	if err != nil {
		return geometry.Point{}, err
	}
	return geometry.Point{X: x, Y: y}, nil
}
