package service

import (
	"testing"

	"bcs_edu_backend/internal/model"
)

func moduleRow(id uint, parent *uint, sortOrder int, title string) model.Module {
	m := model.Module{
		Title:          title,
		ParentModuleID: parent,
		SortOrder:      sortOrder,
	}
	m.ID = id
	return m
}

func uintPtr(v uint) *uint {
	return &v
}

func TestBuildModuleTree_Forest(t *testing.T) {
	modules := []model.Module{
		moduleRow(1, nil, 2, "Root B"),
		moduleRow(2, nil, 1, "Root A"),
		moduleRow(3, uintPtr(2), 1, "A child 1"),
		moduleRow(4, uintPtr(2), 2, "A child 2"),
		moduleRow(5, uintPtr(3), 1, "A child 1 leaf"),
	}

	tree := BuildModuleTree(modules, nil, 0)

	if len(tree) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(tree))
	}
	if tree[0].ID != 2 || tree[1].ID != 1 {
		t.Errorf("roots out of order: got %d, %d", tree[0].ID, tree[1].ID)
	}
	if len(tree[0].Children) != 2 {
		t.Fatalf("expected 2 children under Root A, got %d", len(tree[0].Children))
	}
	if tree[0].Children[0].ID != 3 {
		t.Errorf("expected child 3 first, got %d", tree[0].Children[0].ID)
	}
	if tree[0].Children[0].Depth != 1 {
		t.Errorf("expected depth 1, got %d", tree[0].Children[0].Depth)
	}
	if len(tree[0].Children[0].Children) != 1 || tree[0].Children[0].Children[0].ID != 5 {
		t.Errorf("grandchild 5 missing")
	}
}

func TestBuildModuleTree_TieKeepsInputOrder(t *testing.T) {
	modules := []model.Module{
		moduleRow(10, nil, 1, "first"),
		moduleRow(11, nil, 1, "second"),
		moduleRow(12, nil, 1, "third"),
	}

	tree := BuildModuleTree(modules, nil, 0)

	if len(tree) != 3 {
		t.Fatalf("expected 3 roots, got %d", len(tree))
	}
	for i, want := range []uint{10, 11, 12} {
		if tree[i].ID != want {
			t.Errorf("position %d: expected %d, got %d", i, want, tree[i].ID)
		}
	}
}

func TestBuildModuleTree_OrphanExcluded(t *testing.T) {
	modules := []model.Module{
		moduleRow(1, nil, 1, "root"),
		moduleRow(2, uintPtr(99), 1, "orphan"),
	}

	tree := BuildModuleTree(modules, nil, 0)

	if len(tree) != 1 {
		t.Fatalf("expected 1 root, got %d", len(tree))
	}
	if FindNodeInTree(tree, 2) != nil {
		t.Errorf("orphan should appear in no forest")
	}
}

func TestGenerateModuleNumbering(t *testing.T) {
	modules := []model.Module{
		moduleRow(1, nil, 1, "ch 1"),
		moduleRow(2, nil, 2, "ch 2"),
		moduleRow(3, uintPtr(1), 1, "sec 1.1"),
		moduleRow(4, uintPtr(1), 2, "sec 1.2"),
		moduleRow(5, uintPtr(4), 1, "sub 1.2.1"),
	}

	tree := BuildModuleTree(modules, nil, 0)
	numbering := GenerateModuleNumbering(tree, "")

	expected := map[uint]string{1: "1", 2: "2", 3: "1.1", 4: "1.2", 5: "1.2.1"}
	for id, want := range expected {
		if numbering[id] != want {
			t.Errorf("module %d: expected %q, got %q", id, want, numbering[id])
		}
	}

	ApplyNumbering(tree, numbering)
	if tree[0].Children[1].Children[0].Numbering != "1.2.1" {
		t.Errorf("numbering not applied to tree")
	}
}

func TestAncestorIDs(t *testing.T) {
	modules := []model.Module{
		moduleRow(1, nil, 1, "root"),
		moduleRow(2, uintPtr(1), 1, "mid"),
		moduleRow(3, uintPtr(2), 1, "leaf"),
	}
	tree := BuildModuleTree(modules, nil, 0)

	ancestors := AncestorIDs(tree, 3)
	if len(ancestors) != 2 || ancestors[0] != 1 || ancestors[1] != 2 {
		t.Errorf("expected [1 2], got %v", ancestors)
	}

	if got := AncestorIDs(tree, 1); len(got) != 0 {
		t.Errorf("root has no ancestors, got %v", got)
	}
}

func TestFlattenTree_PreOrder(t *testing.T) {
	modules := []model.Module{
		moduleRow(1, nil, 1, "root"),
		moduleRow(2, uintPtr(1), 1, "child"),
		moduleRow(3, uintPtr(2), 1, "grandchild"),
		moduleRow(4, nil, 2, "second root"),
	}
	tree := BuildModuleTree(modules, nil, 0)

	flat := FlattenTree(tree)
	got := make([]uint, len(flat))
	for i, n := range flat {
		got[i] = n.ID
	}
	want := []uint{1, 2, 3, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}
