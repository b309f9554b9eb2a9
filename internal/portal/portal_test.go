package portal

import (
	"testing"

	"github.com/darthryking/projectvis/internal/bsptree"
	"github.com/darthryking/projectvis/internal/geometry"
)

// TestGenerateOneSplit covers spec scenario 2: a single vertical
// split with both children non-solid yields exactly one portal.
func TestGenerateOneSplit(t *testing.T) {
	tree, err := bsptree.New(128, 64)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	left, right, err := tree.DivideLeaf(tree.Root(), bsptree.Vertical, 64)
	if err != nil {
		t.Fatalf("DivideLeaf: %v", err)
	}
	tree.SetLeafSolid(left, false)
	tree.SetLeafSolid(right, false)

	reg := NewRegistry(tree)
	if err := reg.Generate(); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	portals := reg.Portals()
	if len(portals) != 1 {
		t.Fatalf("expected exactly one portal, got %d", len(portals))
	}

	p := portals[0]
	if p.Orientation != bsptree.Vertical {
		t.Errorf("expected Vertical orientation, got %v", p.Orientation)
	}
	wantStart := geometry.Point{X: 64, Y: 0}
	wantEnd := geometry.Point{X: 64, Y: 64}
	if p.Start != wantStart || p.End != wantEnd {
		t.Errorf("portal segment = (%v, %v), want (%v, %v)", p.Start, p.End, wantStart, wantEnd)
	}
}

func TestGenerateSkipsSolidNeighbors(t *testing.T) {
	tree, _ := bsptree.New(128, 64)
	left, right, _ := tree.DivideLeaf(tree.Root(), bsptree.Vertical, 64)
	tree.SetLeafSolid(left, false)
	tree.SetLeafSolid(right, true)

	reg := NewRegistry(tree)
	if err := reg.Generate(); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(reg.Portals()) != 0 {
		t.Errorf("expected no portals when one side is solid, got %d", len(reg.Portals()))
	}
}

// TestGenerateIdempotent covers the spec's idempotence property:
// calling Generate twice produces the same portal set.
func TestGenerateIdempotent(t *testing.T) {
	tree, _ := bsptree.New(128, 64)
	left, right, _ := tree.DivideLeaf(tree.Root(), bsptree.Vertical, 64)
	tree.SetLeafSolid(left, false)
	tree.SetLeafSolid(right, false)

	reg := NewRegistry(tree)
	if err := reg.Generate(); err != nil {
		t.Fatalf("first Generate: %v", err)
	}
	first := append([]Portal(nil), reg.Portals()...)

	if err := reg.Generate(); err != nil {
		t.Fatalf("second Generate: %v", err)
	}
	second := reg.Portals()

	if len(first) != len(second) {
		t.Fatalf("portal count changed across regeneration: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("portal %d changed across regeneration: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestLoadRepopulatesLeafHandles(t *testing.T) {
	tree, _ := bsptree.New(128, 64)
	left, right, _ := tree.DivideLeaf(tree.Root(), bsptree.Vertical, 64)
	tree.SetLeafSolid(left, false)
	tree.SetLeafSolid(right, false)

	p := Portal{
		Leaf1: left, Leaf2: right,
		Orientation: bsptree.Vertical,
		Start:       geometry.Point{X: 64, Y: 0},
		End:         geometry.Point{X: 64, Y: 64},
	}

	reg := NewRegistry(tree)
	reg.Load([]Portal{p})

	leftPortals := reg.LeafPortals(left)
	if len(leftPortals) != 1 || leftPortals[0] != p {
		t.Errorf("expected left leaf to have the loaded portal, got %+v", leftPortals)
	}
	if p.OtherSide(left) != right {
		t.Errorf("OtherSide(left) = %d, want %d", p.OtherSide(left), right)
	}
}

func TestNewRejectsSolidLeaf(t *testing.T) {
	tree, _ := bsptree.New(128, 64)
	left, right, _ := tree.DivideLeaf(tree.Root(), bsptree.Vertical, 64)
	tree.SetLeafSolid(left, false)
	tree.SetLeafSolid(right, true)

	if _, err := New(tree, left, right); err == nil {
		t.Errorf("expected error constructing a portal against a solid leaf")
	}
}
