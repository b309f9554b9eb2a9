package bsptree

import (
	"testing"

	"github.com/darthryking/projectvis/internal/geometry"
)

// TestCase represents a single point-location test.
type TestCase struct {
	Name       string
	X, Y       int
	ExpectLeaf ID
}

func runTestCases(t *testing.T, tree *Tree, cases []TestCase) {
	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			leaf, err := tree.LeafFromCoords(tc.X, tc.Y)
			if err != nil {
				t.Fatalf("LeafFromCoords(%d, %d): unexpected error: %v", tc.X, tc.Y, err)
			}
			if leaf != tc.ExpectLeaf {
				t.Errorf("LeafFromCoords(%d, %d): expected leaf %d, got %d", tc.X, tc.Y, tc.ExpectLeaf, leaf)
			}
		})
	}
}

func TestNewRejectsNonPositiveDimensions(t *testing.T) {
	for _, dims := range [][2]int{{0, 64}, {128, 0}, {-1, 64}, {128, -1}} {
		if _, err := New(dims[0], dims[1]); err == nil {
			t.Errorf("New(%d, %d): expected error", dims[0], dims[1])
		}
	}
}

// TestEmptyWorld covers spec scenario 1: a fresh world is a single
// non-solid leaf with no neighbors.
func TestEmptyWorld(t *testing.T) {
	tree, err := New(128, 64)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	root := tree.Root()
	runTestCases(t, tree, []TestCase{
		{Name: "origin", X: 0, Y: 0, ExpectLeaf: root},
		{Name: "far corner", X: 127, Y: 63, ExpectLeaf: root},
	})

	if tree.LeafSolid(root) {
		t.Errorf("fresh root leaf should be non-solid")
	}

	count := 0
	for range tree.IterNeighbors(root) {
		count++
	}
	if count != 0 {
		t.Errorf("expected no neighbors of the sole root leaf, got %d", count)
	}
}

// TestOneSplit covers spec scenario 2: dividing the root produces two
// children with the expected bounds, both solid by default.
func TestOneSplit(t *testing.T) {
	tree, err := New(128, 64)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	left, right, err := tree.DivideLeaf(tree.Root(), Vertical, 64)
	if err != nil {
		t.Fatalf("DivideLeaf: %v", err)
	}

	wantLeft := geometry.Rect{Left: 0, Top: 0, Right: 64, Bottom: 64}
	wantRight := geometry.Rect{Left: 64, Top: 0, Right: 128, Bottom: 64}
	if tree.Bounds(left) != wantLeft {
		t.Errorf("left bounds = %+v, want %+v", tree.Bounds(left), wantLeft)
	}
	if tree.Bounds(right) != wantRight {
		t.Errorf("right bounds = %+v, want %+v", tree.Bounds(right), wantRight)
	}

	if !tree.LeafSolid(left) || !tree.LeafSolid(right) {
		t.Errorf("divideLeaf's new children must default to solid")
	}

	runTestCases(t, tree, []TestCase{
		{Name: "left half", X: 10, Y: 32, ExpectLeaf: left},
		{Name: "right half", X: 100, Y: 32, ExpectLeaf: right},
		{Name: "partition boundary goes right", X: 64, Y: 32, ExpectLeaf: right},
	})
}

func TestDivideLeafRejectsPartitionOutOfBounds(t *testing.T) {
	tree, _ := New(128, 64)
	if _, _, err := tree.DivideLeaf(tree.Root(), Vertical, 0); err == nil {
		t.Errorf("expected error for out-of-bounds partition")
	}
	if _, _, err := tree.DivideLeaf(tree.Root(), Vertical, 128); err == nil {
		t.Errorf("expected error for out-of-bounds partition")
	}
}

// TestSolidWallLOS covers spec scenario 3.
func TestSolidWallLOS(t *testing.T) {
	tree, _ := New(128, 64)
	left, right, err := tree.DivideLeaf(tree.Root(), Vertical, 64)
	if err != nil {
		t.Fatalf("DivideLeaf: %v", err)
	}
	tree.SetLeafSolid(left, false)
	tree.SetLeafSolid(right, true)

	hit := tree.SegmentCollision(geometry.Point{X: 10, Y: 32}, geometry.Point{X: 120, Y: 32})
	if hit != right {
		t.Errorf("SegmentCollision: expected right leaf %d, got %d", right, hit)
	}
}

func TestSegmentCollisionNoHitOnAllNonSolid(t *testing.T) {
	tree, _ := New(128, 64)
	left, right, _ := tree.DivideLeaf(tree.Root(), Vertical, 64)
	tree.SetLeafSolid(left, false)
	tree.SetLeafSolid(right, false)

	hit := tree.SegmentCollision(geometry.Point{X: 10, Y: 32}, geometry.Point{X: 120, Y: 32})
	if hit != NoID {
		t.Errorf("SegmentCollision: expected no hit, got %d", hit)
	}
}

// TestNeighborOverlap covers spec scenario 4: world 128x64 split
// vertically at 64, then the left half split horizontally at 32;
// the right half's left neighbors are both resulting left leaves.
func TestNeighborOverlap(t *testing.T) {
	tree, _ := New(128, 64)
	leftHalf, rightHalf, err := tree.DivideLeaf(tree.Root(), Vertical, 64)
	if err != nil {
		t.Fatalf("DivideLeaf: %v", err)
	}

	topLeft, bottomLeft, err := tree.DivideLeaf(leftHalf, Horizontal, 32)
	if err != nil {
		t.Fatalf("DivideLeaf: %v", err)
	}

	var neighbors []ID
	for n := range tree.IterDirectionalNeighbors(rightHalf, Left) {
		neighbors = append(neighbors, n)
	}

	if len(neighbors) != 2 {
		t.Fatalf("expected 2 left neighbors of the right half, got %d: %v", len(neighbors), neighbors)
	}
	seen := map[ID]bool{}
	for _, n := range neighbors {
		seen[n] = true
	}
	if !seen[topLeft] || !seen[bottomLeft] {
		t.Errorf("expected left neighbors to be {%d, %d}, got %v", topLeft, bottomLeft, neighbors)
	}
}

func TestMergeLeafRoot(t *testing.T) {
	tree, _ := New(128, 64)
	root := tree.Root()
	newRoot, err := tree.MergeLeaf(root)
	if err != nil {
		t.Fatalf("MergeLeaf: %v", err)
	}
	if tree.LeafSolid(newRoot) {
		t.Errorf("mergeLeaf(root) must produce a non-solid leaf")
	}
	if tree.Bounds(newRoot) != (geometry.Rect{Left: 0, Top: 0, Right: 128, Bottom: 64}) {
		t.Errorf("mergeLeaf(root) must span the full world")
	}
}

// TestMergeLeafIdempotent covers the spec's idempotence property:
// mergeLeaf(root) twice in a row is a no-op.
func TestMergeLeafIdempotent(t *testing.T) {
	tree, _ := New(128, 64)
	root := tree.Root()

	first, err := tree.MergeLeaf(root)
	if err != nil {
		t.Fatalf("first MergeLeaf: %v", err)
	}
	second, err := tree.MergeLeaf(first)
	if err != nil {
		t.Fatalf("second MergeLeaf: %v", err)
	}

	if tree.Bounds(first) != tree.Bounds(second) || tree.LeafSolid(first) != tree.LeafSolid(second) {
		t.Errorf("mergeLeaf(root) applied twice should be idempotent")
	}
}

func TestMergeLeafCollapsesSubtree(t *testing.T) {
	tree, _ := New(128, 64)
	_, right, _ := tree.DivideLeaf(tree.Root(), Vertical, 64)
	_, bottomRight, err := tree.DivideLeaf(right, Horizontal, 32)
	if err != nil {
		t.Fatalf("DivideLeaf: %v", err)
	}

	merged, err := tree.MergeLeaf(bottomRight)
	if err != nil {
		t.Fatalf("MergeLeaf: %v", err)
	}
	if tree.Parent(merged) != tree.Root() {
		t.Errorf("merged leaf should reattach under the same grandparent")
	}

	var leafCount int
	for range tree.IterLeaves() {
		leafCount++
	}
	if leafCount != 2 {
		t.Errorf("expected 2 leaves after collapsing the right subtree back into one, got %d", leafCount)
	}
}

// TestSegmentCollisionAsymmetric runs a segment through the partition
// boundary in both directions, so that the start-point nudge documented
// on SegmentCollision is applied in the reverse call only. It does not
// pin a case where the two directions give different results.
func TestSegmentCollisionAsymmetric(t *testing.T) {
	tree, _ := New(4, 4)
	left, right, err := tree.DivideLeaf(tree.Root(), Vertical, 2)
	if err != nil {
		t.Fatalf("DivideLeaf: %v", err)
	}
	tree.SetLeafSolid(left, false)
	tree.SetLeafSolid(right, false)

	// Exercise both directions through the partition boundary; the
	// nudge only changes which child receives the boundary sample,
	// which is externally observable only when solidity differs
	// across the partition (covered by TestSolidWallLOS). Here we
	// assert the call completes without panicking in either
	// direction and returns no hit, since both sides are non-solid.
	if hit := tree.SegmentCollision(geometry.Point{X: 0, Y: 1}, geometry.Point{X: 3, Y: 1}); hit != NoID {
		t.Errorf("forward: expected no hit, got %d", hit)
	}
	if hit := tree.SegmentCollision(geometry.Point{X: 3, Y: 1}, geometry.Point{X: 0, Y: 1}); hit != NoID {
		t.Errorf("reverse: expected no hit, got %d", hit)
	}
}

func TestIterElementsCoversAllNodesAndLeaves(t *testing.T) {
	tree, _ := New(128, 64)
	left, _, _ := tree.DivideLeaf(tree.Root(), Vertical, 64)
	tree.DivideLeaf(left, Horizontal, 32)

	var elements, leaves, nodes int
	for range tree.IterElements() {
		elements++
	}
	for range tree.IterLeaves() {
		leaves++
	}
	for range tree.IterNodes() {
		nodes++
	}

	if elements != leaves+nodes {
		t.Errorf("elements (%d) should equal leaves (%d) + nodes (%d)", elements, leaves, nodes)
	}
	if leaves != 3 {
		t.Errorf("expected 3 leaves after two divides, got %d", leaves)
	}
	if nodes != 2 {
		t.Errorf("expected 2 nodes after two divides, got %d", nodes)
	}
}
