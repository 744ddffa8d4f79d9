package hdbscan

import "testing"

func TestNewUnionFind(t *testing.T) {
	uf := NewUnionFind(5)

	// Each point is its own root of size 1.
	for i := 0; i < 5; i++ {
		if root := uf.Find(i); root != i {
			t.Errorf("Find(%d) = %d, want %d", i, root, i)
		}
		if uf.Size(i) != 1 {
			t.Errorf("Size(%d) = %d, want 1", i, uf.Size(i))
		}
	}
}

func TestUnionFind_MergeCreatesNewNode(t *testing.T) {
	uf := NewUnionFind(5)
	id := uf.Merge(1, 3)

	if id != 5 {
		t.Errorf("first merge id = %d, want 5", id)
	}
	if uf.Find(1) != id || uf.Find(3) != id {
		t.Errorf("Find(1)=%d Find(3)=%d, want both %d", uf.Find(1), uf.Find(3), id)
	}
	if uf.Size(id) != 2 {
		t.Errorf("Size(%d) = %d, want 2", id, uf.Size(id))
	}
}

func TestUnionFind_MultipleMerges(t *testing.T) {
	uf := NewUnionFind(6)

	a := uf.Merge(0, 1)
	a = uf.Merge(uf.Find(2), a)
	b := uf.Merge(3, 4)
	b = uf.Merge(b, uf.Find(5))

	if uf.Find(0) != uf.Find(2) {
		t.Error("0 and 2 should be connected")
	}
	if uf.Find(3) != uf.Find(5) {
		t.Error("3 and 5 should be connected")
	}
	if uf.Find(0) == uf.Find(3) {
		t.Error("0 and 3 should not be connected")
	}
	if uf.Size(a) != 3 || uf.Size(b) != 3 {
		t.Errorf("sizes = %d, %d; want 3, 3", uf.Size(a), uf.Size(b))
	}

	root := uf.Merge(a, b)
	if root != 10 {
		t.Errorf("final merge id = %d, want 2n-2 = 10", root)
	}
	for i := 0; i < 6; i++ {
		if uf.Find(i) != root {
			t.Errorf("Find(%d) = %d, want %d", i, uf.Find(i), root)
		}
	}
	if uf.Size(root) != 6 {
		t.Errorf("Size(root) = %d, want 6", uf.Size(root))
	}
}

func TestUnionFind_PathCompression(t *testing.T) {
	uf := NewUnionFind(4)
	x := uf.Merge(0, 1)
	y := uf.Merge(x, 2)
	z := uf.Merge(y, 3)

	uf.Find(0)
	if uf.parent[0] != z {
		t.Errorf("parent[0] = %d after Find, want root %d", uf.parent[0], z)
	}
}
