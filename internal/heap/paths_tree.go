// Package heap is the symbolic heap: the refined type of every location
// reachable from a routine's locals, unfolded field by field where strong
// updates need it.
package heap

import (
	"fmt"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"refinecore/internal/bug"
	"refinecore/internal/rty"
)

// PathsTree maps locations to the shape of the value stored there. It is a
// value type: Clone it at branch points and let every branch own its copy.
type PathsTree struct {
	roots map[rty.Loc]Node
}

func NewPathsTree() *PathsTree {
	return &PathsTree{
		roots: make(map[rty.Loc]Node),
	}
}

func (t *PathsTree) Insert(loc rty.Loc, ty rty.Ty) {
	t.roots[loc] = &TyNode{Ty: ty}
}

func (t *PathsTree) Remove(loc rty.Loc) {
	delete(t.roots, loc)
}

func (t *PathsTree) ContainsLoc(loc rty.Loc) bool {
	_, ok := t.roots[loc]
	return ok
}

// Locs returns the locations of the tree, locals first.
func (t *PathsTree) Locs() []rty.Loc {
	locs := make([]rty.Loc, 0, len(t.roots))
	for loc := range t.roots {
		locs = append(locs, loc)
	}
	sort.Slice(locs, func(i, j int) bool { return locs[i].Less(locs[j]) })
	return locs
}

// GetNode returns the node at path without unfolding anything.
func (t *PathsTree) GetNode(path rty.Path) (Node, bool) {
	node, ok := t.roots[path.Loc]
	if !ok {
		return nil, false
	}
	for _, f := range path.Proj {
		switch n := node.(type) {
		case *TyNode:
			return nil, false
		case *AdtNode:
			if f < 0 || f >= len(n.Fields) {
				return nil, false
			}
			node = n.Fields[f]
		default:
			bug.Panicf("unexpected node %T", n)
		}
	}
	return node, true
}

// Get returns the type of the leaf at path.
func (t *PathsTree) Get(path rty.Path) (rty.Ty, bool) {
	node, ok := t.GetNode(path)
	if !ok {
		return nil, false
	}
	leaf, ok := node.(*TyNode)
	if !ok {
		return nil, false
	}
	return leaf.Ty, true
}

func (t *PathsTree) MustGet(path rty.Path) rty.Ty {
	ty, ok := t.Get(path)
	if !ok {
		bug.Panicf("no entry found for path `%s`", path)
	}
	return ty
}

// Update replaces the type of the leaf at path.
func (t *PathsTree) Update(path rty.Path, ty rty.Ty) {
	node, ok := t.GetNode(path)
	if !ok {
		bug.Panicf("no entry found for path `%s`", path)
	}
	leaf, ok := node.(*TyNode)
	if !ok {
		bug.Panicf("path `%s` is unfolded", path)
	}
	leaf.Ty = ty
}

func (t *PathsTree) cursorAt(rcx RefineCtxt, path rty.Path) cursor {
	bug.Assert(t.ContainsLoc(path.Loc), "location `%s` is not in the heap", path.Loc)
	c := cursor{roots: t.roots, loc: path.Loc}
	for _, f := range path.Proj {
		c = c.proj(rcx, f)
	}
	return c
}

// Unfold expands the value at path into its fields under variant and
// returns the record. Unfolding a record of the same variant is a no-op.
func (t *PathsTree) Unfold(rcx RefineCtxt, path rty.Path, variant rty.VariantIdx) *AdtNode {
	return t.cursorAt(rcx, path).unfold(rcx, variant)
}

// Fold collapses the value at path into a single leaf and returns its type.
func (t *PathsTree) Fold(path rty.Path) rty.Ty {
	node, ok := t.GetNode(path)
	if !ok {
		bug.Panicf("no entry found for path `%s`", path)
	}
	if leaf, ok := node.(*TyNode); ok {
		return leaf.Ty
	}
	return t.cursorAt(nil, path).fold().Ty
}

// FoldAll folds every location of the tree.
func (t *PathsTree) FoldAll() {
	for _, loc := range t.Locs() {
		t.Fold(rty.NewPath(loc))
	}
}

func (t *PathsTree) Clone() *PathsTree {
	clone := &PathsTree{
		roots: make(map[rty.Loc]Node, len(t.roots)),
	}
	for loc, node := range t.roots {
		clone.roots[loc] = cloneNode(node)
	}
	return clone
}

// Equal compares the shapes and types of both trees.
func (t *PathsTree) Equal(other *PathsTree) bool {
	if len(t.roots) != len(other.roots) {
		return false
	}
	for loc, node := range t.roots {
		otherNode, ok := other.roots[loc]
		if !ok || !nodeEqual(node, otherNode) {
			return false
		}
	}
	return true
}

// Subst applies subst to every type of the tree and renames free locations.
func (t *PathsTree) Subst(subst *rty.Subst) *PathsTree {
	result := NewPathsTree()
	for loc, node := range t.roots {
		renamed := subst.Loc(loc)
		_, taken := result.roots[renamed]
		bug.Assert(!taken, "substitution renames `%s` onto a location already in the heap", loc)
		result.roots[renamed] = substNode(node, subst)
	}
	return result
}

// UnfoldWith aligns the decomposition of t and other: wherever one side is
// a record and the other a leaf, the leaf is unfolded to the same variant.
// Both trees may change.
func (t *PathsTree) UnfoldWith(rcx RefineCtxt, other *PathsTree) {
	for _, loc := range t.Locs() {
		if !other.ContainsLoc(loc) {
			continue
		}
		unfoldWith(rcx,
			cursor{roots: t.roots, loc: loc},
			cursor{roots: other.roots, loc: loc})
	}
	log.Debugf("unfold with: %d locations aligned", len(t.roots))
}

// FoldUnfoldWith brings t to the decomposition of other: records of t that
// are leaves in other are folded, leaves of t that are records in other are
// unfolded. Other is not modified.
func (t *PathsTree) FoldUnfoldWith(rcx RefineCtxt, other *PathsTree) {
	for _, loc := range t.Locs() {
		node, ok := other.roots[loc]
		if !ok {
			continue
		}
		foldUnfoldWith(rcx, cursor{roots: t.roots, loc: loc}, node)
	}
	log.Debugf("fold-unfold with: %d locations aligned", len(t.roots))
}

func unfoldWith(rcx RefineCtxt, c1, c2 cursor) {
	var adt1, adt2 *AdtNode
	switch n1 := c1.get().(type) {
	case *TyNode:
		switch n2 := c2.get().(type) {
		case *TyNode:
			return
		case *AdtNode:
			adt1, adt2 = c1.unfold(rcx, n2.Variant), n2
		default:
			bug.Panicf("unexpected node %T", n2)
		}
	case *AdtNode:
		switch n2 := c2.get().(type) {
		case *TyNode:
			adt1, adt2 = n1, c2.unfold(rcx, n1.Variant)
		case *AdtNode:
			bug.Assert(n1.Variant == n2.Variant,
				"aligning `%s` variant %d with variant %d", n1.Adt, n1.Variant, n2.Variant)
			adt1, adt2 = n1, n2
		default:
			bug.Panicf("unexpected node %T", n2)
		}
	default:
		bug.Panicf("unexpected node %T", n1)
	}
	bug.Assert(len(adt1.Fields) == len(adt2.Fields), "aligning records with different field counts")
	for i := range adt1.Fields {
		unfoldWith(rcx, c1.child(i), c2.child(i))
	}
}

func foldUnfoldWith(rcx RefineCtxt, c cursor, other Node) {
	var adt1, adt2 *AdtNode
	switch n1 := c.get().(type) {
	case *TyNode:
		switch n2 := other.(type) {
		case *TyNode:
			return
		case *AdtNode:
			adt1, adt2 = c.unfold(rcx, n2.Variant), n2
		default:
			bug.Panicf("unexpected node %T", n2)
		}
	case *AdtNode:
		switch n2 := other.(type) {
		case *TyNode:
			c.fold()
			return
		case *AdtNode:
			bug.Assert(n1.Variant == n2.Variant,
				"aligning `%s` variant %d with variant %d", n1.Adt, n1.Variant, n2.Variant)
			adt1, adt2 = n1, n2
		default:
			bug.Panicf("unexpected node %T", n2)
		}
	default:
		bug.Panicf("unexpected node %T", n1)
	}
	bug.Assert(len(adt1.Fields) == len(adt2.Fields), "aligning records with different field counts")
	for i := range adt1.Fields {
		foldUnfoldWith(rcx, c.child(i), adt2.Fields[i])
	}
}

func (t *PathsTree) String() string {
	var sb strings.Builder
	for _, loc := range t.Locs() {
		fmt.Fprintf(&sb, "%s: %s\n", loc, t.roots[loc])
	}
	return sb.String()
}
