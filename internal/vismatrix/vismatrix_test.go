package vismatrix

import (
	"testing"

	"github.com/darthryking/projectvis/internal/bsptree"
)

func buildThreeLeafWorld(t *testing.T) (*bsptree.Tree, bsptree.ID, bsptree.ID, bsptree.ID) {
	t.Helper()

	tree, err := bsptree.New(128, 64)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	left, right, err := tree.DivideLeaf(tree.Root(), bsptree.Vertical, 64)
	if err != nil {
		t.Fatalf("DivideLeaf: %v", err)
	}
	top, bottom, err := tree.DivideLeaf(left, bsptree.Horizontal, 32)
	if err != nil {
		t.Fatalf("DivideLeaf: %v", err)
	}

	for i, leaf := range []bsptree.ID{top, bottom, right} {
		tree.SetLeafSolid(leaf, false)
		tree.SetLeafID(leaf, i)
	}

	return tree, top, bottom, right
}

func TestLoadAttachesPVS(t *testing.T) {
	tree, top, bottom, right := buildThreeLeafWorld(t)

	matrix := [][]bool{
		{false, true, true},  // top sees bottom and right
		{true, false, false}, // bottom sees only top
		{true, false, false}, // right sees only top
	}

	if err := Load(tree, matrix); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !CanSee(tree, top, bottom) || !CanSee(tree, top, right) {
		t.Errorf("expected top to see both bottom and right")
	}
	if CanSee(tree, bottom, right) {
		t.Errorf("expected bottom not to see right")
	}
	if !CanSee(tree, bottom, top) {
		t.Errorf("expected bottom to see top")
	}
}

func TestCanSeeWithNoMatrixLoadedIsPermissive(t *testing.T) {
	tree, top, bottom, _ := buildThreeLeafWorld(t)
	if !CanSee(tree, top, bottom) {
		t.Errorf("expected CanSee to default to true with no PVS loaded")
	}
}

func TestLoadRejectsOutOfRangeLeafID(t *testing.T) {
	tree, _, _, _ := buildThreeLeafWorld(t)
	if err := Load(tree, [][]bool{{true}}); err == nil {
		t.Fatalf("expected an error when the matrix is smaller than the largest leafID")
	}
}
