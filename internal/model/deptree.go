package model

import "sort"

// Relation kinds of a ModuleNode with respect to its parent.
const (
	RelationRoot    = "module"
	RelationInclude = "include"
	RelationExclude = "exclude"
)

// ModuleNode is a single node in the recursive module tree.
// Each node carries its full subtree of include/exclude edges inline, so the
// tree can be rendered at any depth.
//
// Example:
//
//	app -> children: [include lib -> children: [include util]]
//	admin -> children: [exclude app -> children: [include lib ...]]
type ModuleNode struct {
	Name     string        `json:"name"`
	Relation string        `json:"relation"`
	Declared bool          `json:"declared"`
	Cycle    bool          `json:"cycle,omitempty"`
	Children []*ModuleNode `json:"children,omitempty"`
}

// ModuleTree holds the include/exclude hierarchy of the configured modules.
type ModuleTree struct {
	// ByName provides O(1) lookup of any declared module.
	ByName map[string]*Module

	// Roots has one node per declared module, sorted by name, each carrying
	// its full subtree.
	Roots []*ModuleNode
}

// BuildModuleTree indexes modules by name and expands every module's
// include/exclude references. Later duplicates of a name are ignored.
func BuildModuleTree(modules []*Module) *ModuleTree {
	tree := &ModuleTree{
		ByName: make(map[string]*Module, len(modules)),
	}

	for _, m := range modules {
		if _, ok := tree.ByName[m.Name]; ok {
			continue
		}
		tree.ByName[m.Name] = m
	}

	tree.Roots = tree.buildTree()
	return tree
}

// workItem holds a pending node to be expanded along with the set of ancestor
// names on the path from the root to this node (used for cycle detection).
type workItem struct {
	module    *Module
	node      *ModuleNode
	ancestors map[string]bool
}

// buildTree expands the tree iteratively, level by level, using a queue
// instead of recursion.
//
// Cycles are broken by tracking the ancestor set on the path from the root to
// the current node; a child that would close a cycle is emitted as a leaf
// marked Cycle.
func (t *ModuleTree) buildTree() []*ModuleNode {
	names := make([]string, 0, len(t.ByName))
	for name := range t.ByName {
		names = append(names, name)
	}
	sort.Strings(names)

	roots := make([]*ModuleNode, 0, len(names))
	queue := make([]workItem, 0, len(names))

	for _, name := range names {
		node := &ModuleNode{Name: name, Relation: RelationRoot, Declared: true}
		roots = append(roots, node)

		// Each root gets its own ancestor set so sibling paths are independent.
		queue = append(queue, workItem{
			module:    t.ByName[name],
			node:      node,
			ancestors: map[string]bool{name: true},
		})
	}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		edges := make([]*ModuleNode, 0, len(item.module.Include)+len(item.module.Exclude))
		for _, name := range item.module.Include {
			edges = append(edges, &ModuleNode{Name: name, Relation: RelationInclude})
		}
		for _, name := range item.module.Exclude {
			edges = append(edges, &ModuleNode{Name: name, Relation: RelationExclude})
		}

		for _, child := range edges {
			item.node.Children = append(item.node.Children, child)

			childModule := t.ByName[child.Name]
			if childModule == nil {
				// Referenced but never declared: a leaf.
				continue
			}
			child.Declared = true

			if item.ancestors[child.Name] {
				child.Cycle = true
				continue
			}

			childAncestors := make(map[string]bool, len(item.ancestors)+1)
			for k := range item.ancestors {
				childAncestors[k] = true
			}
			childAncestors[child.Name] = true

			queue = append(queue, workItem{module: childModule, node: child, ancestors: childAncestors})
		}
	}

	return roots
}
