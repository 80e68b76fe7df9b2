package heap

import (
	"refinecore/internal/bug"
	"refinecore/internal/rty"
)

// Iter calls f for every leaf of the tree with the path that reaches it,
// locations in Locs order and fields in declaration order.
func (t *PathsTree) Iter(f func(path rty.Path, leaf *TyNode)) {
	for _, loc := range t.Locs() {
		iterNode(rty.NewPath(loc), t.roots[loc], f)
	}
}

func iterNode(path rty.Path, node Node, f func(rty.Path, *TyNode)) {
	switch n := node.(type) {
	case *TyNode:
		f(path, n)
	case *AdtNode:
		for i, field := range n.Fields {
			iterNode(path.Field(i), field, f)
		}
	default:
		bug.Panicf("unexpected node %T", n)
	}
}

func (t *PathsTree) Paths() []rty.Path {
	var paths []rty.Path
	t.Iter(func(path rty.Path, _ *TyNode) {
		paths = append(paths, path)
	})
	return paths
}

// UpdateAll replaces the type of every leaf by f's result.
func (t *PathsTree) UpdateAll(f func(path rty.Path, ty rty.Ty) rty.Ty) {
	t.Iter(func(path rty.Path, leaf *TyNode) {
		leaf.Ty = f(path, leaf.Ty)
	})
}
