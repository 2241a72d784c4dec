package menutree

import (
	"slices"

	"github.com/jacksonlee411/tree-menu/modules/menu/domain/types"
)

// NoParent is the parent index of a root node.
const NoParent = -1

// URLResolver turns a named route into a path. ok=false means the name is unknown.
type URLResolver interface {
	Reverse(name string) (path string, ok bool)
}

// RouteMap is a static URLResolver keyed by route name.
type RouteMap map[string]string

// Reverse looks name up in the map.
func (m RouteMap) Reverse(name string) (string, bool) {
	p, ok := m[name]
	return p, ok
}

// ResolveURL returns the raw URL source of an item: the reversed named route
// when one is set, the direct URL otherwise. An unresolvable named route
// yields "" so one broken item never fails a whole menu.
func ResolveURL(item types.MenuItem, resolver URLResolver) string {
	if item.NamedURL != "" {
		if resolver == nil {
			return ""
		}
		p, ok := resolver.Reverse(item.NamedURL)
		if !ok {
			return ""
		}
		return p
	}
	return item.URL
}

// Node is one arena slot. Parent and Children are indices into the owning
// Forest; Parent is a back-reference only.
type Node struct {
	Item     types.MenuItem
	Href     string
	Parent   int
	Children []int
	Active   bool
	Open     bool
}

func (n Node) IsRoot() bool { return n.Parent == NoParent }

// Forest is the per-request tree of one menu.
type Forest struct {
	nodes []Node
	roots []int
}

// BuildForest assembles items into a forest. items must already be in store
// order (parent, order, id); children and roots are appended in that order and
// never re-sorted. An item whose parent is missing from items becomes a root.
func BuildForest(items []types.MenuItem, resolver URLResolver) *Forest {
	f := &Forest{nodes: make([]Node, len(items))}
	index := make(map[int64]int, len(items))

	for i, item := range items {
		f.nodes[i] = Node{
			Item:   item,
			Href:   NormalizeHref(ResolveURL(item, resolver)),
			Parent: NoParent,
		}
		index[item.ID] = i
	}

	for i, item := range items {
		if item.ParentID != nil {
			if p, ok := index[*item.ParentID]; ok && p != i {
				f.nodes[i].Parent = p
				f.nodes[p].Children = append(f.nodes[p].Children, i)
				continue
			}
		}
		f.roots = append(f.roots, i)
	}

	f.detachCycles()
	return f
}

// detachCycles promotes nodes that cannot be reached from any root (parent
// loops in malformed data) so that nothing silently disappears from the menu.
func (f *Forest) detachCycles() {
	if len(f.roots) == len(f.nodes) {
		return
	}
	seen := make([]bool, len(f.nodes))
	mark := func(start int) {
		stack := []int{start}
		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if seen[i] {
				continue
			}
			seen[i] = true
			stack = append(stack, f.nodes[i].Children...)
		}
	}
	for _, r := range f.roots {
		mark(r)
	}
	for i := range f.nodes {
		if seen[i] {
			continue
		}
		p := f.nodes[i].Parent
		f.nodes[p].Children = removeIndex(f.nodes[p].Children, i)
		f.nodes[i].Parent = NoParent
		f.roots = append(f.roots, i)
		mark(i)
	}
}

func removeIndex(s []int, v int) []int {
	out := s[:0]
	for _, x := range s {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

// Len is the number of nodes, roots included.
func (f *Forest) Len() int { return len(f.nodes) }

// Roots returns a copy of the root indices in display order.
func (f *Forest) Roots() []int { return slices.Clone(f.roots) }

// Node returns a copy of node i; its Children slice is a copy too.
func (f *Forest) Node(i int) Node {
	n := f.nodes[i]
	n.Children = slices.Clone(n.Children)
	return n
}

// Children returns a copy of the child indices of node i in display order.
func (f *Forest) Children(i int) []int { return slices.Clone(f.nodes[i].Children) }

// Active returns the index of the active node, if any.
func (f *Forest) Active() (int, bool) {
	for i := range f.nodes {
		if f.nodes[i].Active {
			return i, true
		}
	}
	return NoParent, false
}

// Walk visits nodes depth-first in sibling order, roots first. Returning
// false from fn stops the walk.
func (f *Forest) Walk(fn func(i int, depth int) bool) {
	type frame struct{ i, depth int }
	stack := make([]frame, 0, len(f.nodes))
	for k := len(f.roots) - 1; k >= 0; k-- {
		stack = append(stack, frame{i: f.roots[k]})
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(top.i, top.depth) {
			return
		}
		children := f.nodes[top.i].Children
		for k := len(children) - 1; k >= 0; k-- {
			stack = append(stack, frame{i: children[k], depth: top.depth + 1})
		}
	}
}

// TreeNode is the nested, serializable view of a node.
type TreeNode struct {
	ID       int64      `json:"id"`
	Title    string     `json:"title"`
	Href     string     `json:"href"`
	Active   bool       `json:"active"`
	Open     bool       `json:"open"`
	Children []TreeNode `json:"children,omitempty"`
}

// Tree converts the arena into nested values, preserving order.
func (f *Forest) Tree() []TreeNode {
	var order []int
	f.Walk(func(i int, _ int) bool {
		order = append(order, i)
		return true
	})

	built := make([]TreeNode, len(f.nodes))
	// Reverse pre-order finishes every child before its parent.
	for k := len(order) - 1; k >= 0; k-- {
		i := order[k]
		n := f.nodes[i]
		tn := TreeNode{ID: n.Item.ID, Title: n.Item.Title, Href: n.Href, Active: n.Active, Open: n.Open}
		if len(n.Children) > 0 {
			tn.Children = make([]TreeNode, 0, len(n.Children))
			for _, c := range n.Children {
				tn.Children = append(tn.Children, built[c])
			}
		}
		built[i] = tn
	}

	out := make([]TreeNode, 0, len(f.roots))
	for _, r := range f.roots {
		out = append(out, built[r])
	}
	return out
}
