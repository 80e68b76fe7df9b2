package heap

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"refinecore/internal/bug"
	"refinecore/internal/rty"
)

// RefineCtxt mints refinement variables and records assumptions. Unfolding
// an existential type uses it to name the indices of the value.
type RefineCtxt interface {
	DefineVar(sort rty.Sort) rty.Name
	AssumePred(pred rty.Pred)
}

// Node is the shape of one position of the heap: an opaque TyNode or an
// AdtNode holding one child per field of a variant.
type Node interface {
	nodeTag()
	fmt.Stringer
}

type TyNode struct {
	Ty rty.Ty
}

type AdtNode struct {
	Adt     *rty.AdtTy
	Variant rty.VariantIdx
	Fields  []Node
}

func (*TyNode) nodeTag()  {}
func (*AdtNode) nodeTag() {}

func (n *TyNode) String() string {
	return n.Ty.String()
}

func (n *AdtNode) String() string {
	fields := make([]string, len(n.Fields))
	for i, f := range n.Fields {
		fields[i] = f.String()
	}
	return fmt.Sprintf("%s::%d { %s }", n.Adt, n.Variant, strings.Join(fields, ", "))
}

// cursor addresses one position of a tree: a root location when parent is
// nil, otherwise a field of parent. Writing through a cursor replaces the
// node stored at that position.
type cursor struct {
	roots  map[rty.Loc]Node
	loc    rty.Loc
	parent *AdtNode
	field  int
}

func (c cursor) get() Node {
	if c.parent == nil {
		return c.roots[c.loc]
	}
	return c.parent.Fields[c.field]
}

func (c cursor) set(n Node) {
	if c.parent == nil {
		c.roots[c.loc] = n
		return
	}
	c.parent.Fields[c.field] = n
}

func (c cursor) child(f int) cursor {
	adt, ok := c.get().(*AdtNode)
	bug.Assert(ok, "position is not unfolded")
	bug.Assert(f >= 0 && f < len(adt.Fields),
		"field %d out of range for `%s` with %d fields", f, adt.Adt, len(adt.Fields))
	return cursor{roots: c.roots, loc: c.loc, parent: adt, field: f}
}

// unfold replaces a leaf by a record of the given variant. An existing
// record must already have that variant.
func (c cursor) unfold(rcx RefineCtxt, variant rty.VariantIdx) *AdtNode {
	adt := unfoldNode(rcx, c.get(), variant)
	c.set(adt)
	return adt
}

// proj returns the position of field f, unfolding a leaf as a struct.
func (c cursor) proj(rcx RefineCtxt, f int) cursor {
	switch n := c.get().(type) {
	case *TyNode:
		c.unfold(rcx, 0)
	case *AdtNode:
	default:
		bug.Panicf("unexpected node %T", n)
	}
	return c.child(f)
}

// fold collapses the position into a single leaf.
func (c cursor) fold() *TyNode {
	leaf := foldNode(c.get())
	c.set(leaf)
	return leaf
}

func unfoldNode(rcx RefineCtxt, n Node, variant rty.VariantIdx) *AdtNode {
	switch n := n.(type) {
	case *AdtNode:
		bug.Assert(n.Variant == variant,
			"unfolding `%s` with variant %d, already unfolded with variant %d", n.Adt, variant, n.Variant)
		return n
	case *TyNode:
		ty := n.Ty
		if ex, ok := ty.(*rty.Exists); ok {
			ty = unpack(rcx, ex)
		}
		adt, fields, ok := downcast(rcx, ty, variant)
		if !ok {
			bug.Panicf("type `%s` cannot be unfolded with variant %d", n.Ty, variant)
		}
		nodes := make([]Node, len(fields))
		for i, field := range fields {
			nodes[i] = &TyNode{Ty: field}
		}
		log.Debugf("unfold `%s` as variant %d into %d fields", n.Ty, variant, len(nodes))
		return &AdtNode{Adt: adt, Variant: variant, Fields: nodes}
	}
	bug.Panicf("unexpected node %T", n)
	return nil
}

// downcast instantiates the fields of variant for an indexed ADT type. A
// variant with its own return tuple is instantiated with fresh parameters
// assumed to produce the indices of ty.
func downcast(rcx RefineCtxt, ty rty.Ty, variant rty.VariantIdx) (*rty.AdtTy, []rty.Ty, bool) {
	indexed, ok := ty.(*rty.Indexed)
	if !ok {
		return nil, nil, false
	}
	adt, ok := indexed.Bty.(*rty.AdtTy)
	if !ok {
		return nil, nil, false
	}
	v := adt.Def.Variant(variant)
	if v.Ret == nil {
		return rty.Downcast(ty, variant)
	}
	bug.Assert(rcx != nil, "downcasting `%s` without a refinement context", ty)
	bug.Assert(len(v.Ret) == len(indexed.Indices),
		"variant %d of `%s` returns %d indices, value has %d", variant, adt, len(v.Ret), len(indexed.Indices))

	params := make([]rty.Expr, len(adt.Def.Sorts))
	for i, sort := range adt.Def.Sorts {
		params[i] = rty.EFree(rcx.DefineVar(sort))
	}
	inst := rty.NewInstantiation(params, nil)
	for i, e := range v.Ret {
		rcx.AssumePred(rty.PredOf(rty.EBin(rty.Eq, inst.Expr(e), indexed.Indices[i])))
	}
	return adt, adt.Def.InstantiateFields(variant, adt.Substs, params), true
}

// unpack names the indices of an existential with fresh variables.
func unpack(rcx RefineCtxt, ex *rty.Exists) rty.Ty {
	bug.Assert(rcx != nil, "unpacking `%s` without a refinement context", ex)
	sorts := ex.Bty.Sorts()
	indices := make([]rty.Expr, len(sorts))
	for i, sort := range sorts {
		indices[i] = rty.EFree(rcx.DefineVar(sort))
	}
	rcx.AssumePred(ex.Open(indices))
	return rty.NewIndexed(ex.Bty, indices...)
}

// foldNode folds the fields of a record bottom-up and infers the indices of
// the whole value from them.
func foldNode(n Node) *TyNode {
	switch n := n.(type) {
	case *TyNode:
		return n
	case *AdtNode:
		tys := make([]rty.Ty, len(n.Fields))
		for i, field := range n.Fields {
			leaf := foldNode(field)
			n.Fields[i] = leaf
			tys[i] = leaf.Ty
		}
		indices := inferIndices(n.Adt.Def, n.Variant, tys)
		ty := rty.NewIndexed(n.Adt, indices...)
		log.Debugf("fold variant %d into `%s`", n.Variant, ty)
		return &TyNode{Ty: ty}
	}
	bug.Panicf("unexpected node %T", n)
	return nil
}

func cloneNode(n Node) Node {
	switch n := n.(type) {
	case *TyNode:
		return &TyNode{Ty: n.Ty}
	case *AdtNode:
		fields := make([]Node, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = cloneNode(f)
		}
		return &AdtNode{Adt: n.Adt, Variant: n.Variant, Fields: fields}
	}
	bug.Panicf("unexpected node %T", n)
	return nil
}

func nodeEqual(a, b Node) bool {
	switch a := a.(type) {
	case *TyNode:
		b, ok := b.(*TyNode)
		return ok && rty.TyEqual(a.Ty, b.Ty)
	case *AdtNode:
		b, ok := b.(*AdtNode)
		if !ok || a.Variant != b.Variant || len(a.Fields) != len(b.Fields) {
			return false
		}
		if !rty.BaseTyEqual(a.Adt, b.Adt) {
			return false
		}
		for i := range a.Fields {
			if !nodeEqual(a.Fields[i], b.Fields[i]) {
				return false
			}
		}
		return true
	}
	bug.Panicf("unexpected node %T", a)
	return false
}

func substNode(n Node, subst *rty.Subst) Node {
	switch n := n.(type) {
	case *TyNode:
		return &TyNode{Ty: subst.Ty(n.Ty)}
	case *AdtNode:
		fields := make([]Node, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = substNode(f, subst)
		}
		adt := subst.BaseTy(n.Adt).(*rty.AdtTy)
		return &AdtNode{Adt: adt, Variant: n.Variant, Fields: fields}
	}
	bug.Panicf("unexpected node %T", n)
	return nil
}
