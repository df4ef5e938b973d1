package service

import (
	"fmt"
	"sort"

	"bcs_edu_backend/internal/model"
)

// ModuleTreeNode is a module annotated with its place in the hierarchy.
// Numbering is empty after BuildModuleTree and filled by a separate pass so
// callers can renumber without rebuilding.
type ModuleTreeNode struct {
	model.Module
	Children  []*ModuleTreeNode `json:"children"`
	Depth     int               `json:"depth"`
	Numbering string            `json:"numbering"`
}

// BuildModuleTree assembles a rooted forest from a flat module list. Siblings
// are ordered by SortOrder ascending with input order preserved on ties. A
// module whose parent id points at a row missing from the input is an orphan
// and appears in no forest.
func BuildModuleTree(modules []model.Module, parentID *uint, depth int) []*ModuleTreeNode {
	var siblings []model.Module
	for _, m := range modules {
		if sameParent(m.ParentModuleID, parentID) {
			siblings = append(siblings, m)
		}
	}
	sort.SliceStable(siblings, func(i, j int) bool {
		return siblings[i].SortOrder < siblings[j].SortOrder
	})

	nodes := make([]*ModuleTreeNode, 0, len(siblings))
	for _, m := range siblings {
		id := m.ID
		nodes = append(nodes, &ModuleTreeNode{
			Module:   m,
			Children: BuildModuleTree(modules, &id, depth+1),
			Depth:    depth,
		})
	}
	return nodes
}

func sameParent(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// GenerateModuleNumbering assigns dotted hierarchical numbers ("1", "1.2",
// "1.2.1") in sibling order. It returns a mapping instead of mutating the
// tree; ApplyNumbering writes it back.
func GenerateModuleNumbering(tree []*ModuleTreeNode, prefix string) map[uint]string {
	numbering := make(map[uint]string)
	for i, node := range tree {
		number := fmt.Sprintf("%d", i+1)
		if prefix != "" {
			number = fmt.Sprintf("%s.%d", prefix, i+1)
		}
		numbering[node.ID] = number

		for id, n := range GenerateModuleNumbering(node.Children, number) {
			numbering[id] = n
		}
	}
	return numbering
}

// ApplyNumbering mutates the tree in place from a numbering mapping.
func ApplyNumbering(tree []*ModuleTreeNode, numbering map[uint]string) {
	for _, node := range tree {
		node.Numbering = numbering[node.ID]
		ApplyNumbering(node.Children, numbering)
	}
}

// FindNodeInTree returns the first depth-first match, or nil.
func FindNodeInTree(tree []*ModuleTreeNode, id uint) *ModuleTreeNode {
	for _, node := range tree {
		if node.ID == id {
			return node
		}
		if found := FindNodeInTree(node.Children, id); found != nil {
			return found
		}
	}
	return nil
}

// AncestorIDs returns the root-to-parent path for a node, excluding the node
// itself. Used to auto-expand the tree sidebar.
func AncestorIDs(tree []*ModuleTreeNode, targetID uint) []uint {
	ancestors := []uint{}

	var traverse func(nodes []*ModuleTreeNode, path []uint) bool
	traverse = func(nodes []*ModuleTreeNode, path []uint) bool {
		for _, node := range nodes {
			if node.ID == targetID {
				ancestors = append(ancestors, path...)
				return true
			}
			if traverse(node.Children, append(path, node.ID)) {
				return true
			}
		}
		return false
	}

	traverse(tree, nil)
	return ancestors
}

// FlattenTree yields a pre-order traversal, parent before children.
func FlattenTree(tree []*ModuleTreeNode) []*ModuleTreeNode {
	var flat []*ModuleTreeNode
	for _, node := range tree {
		flat = append(flat, node)
		flat = append(flat, FlattenTree(node.Children)...)
	}
	return flat
}
