// Package refine is the refinement-variable allocator and proof context.
//
// A Tree records, for every proof obligation, the variables in scope and the
// facts assumed on the way to it. A Ctxt points at one node of the tree:
// defining a variable or assuming a predicate pushes a child and moves the
// context into it, checking a predicate adds a head below the current node.
package refine

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/math"
	log "github.com/sirupsen/logrus"

	"refinecore/internal/bug"
	"refinecore/internal/diag"
	"refinecore/internal/rty"
)

type Reason int

const ReasonInvariant Reason = 0

func (r Reason) String() string {
	if r == ReasonInvariant {
		return "invariant"
	}
	return fmt.Sprintf("reason(%d)", int(r))
}

// Tag identifies the origin of a proof obligation.
type Tag struct {
	Reason Reason
	Span   diag.Span
}

func NewTag(reason Reason, span diag.Span) Tag {
	return Tag{Reason: reason, Span: span}
}

type nodeKind int

const (
	rootNode nodeKind = iota
	forAllNode
	guardNode
	headNode
)

type node struct {
	kind     nodeKind
	name     rty.Name
	sort     rty.Sort
	pred     rty.Pred
	tag      Tag
	children []*node
}

func (n *node) push(child *node) *node {
	n.children = append(n.children, child)
	return child
}

type Tree struct {
	root     *node
	nextName rty.Name
}

func NewTree() *Tree {
	return &Tree{root: &node{kind: rootNode}}
}

// CtxtAtRoot returns a context with nothing in scope. Contexts obtained
// this way are independent of each other.
func (t *Tree) CtxtAtRoot() *Ctxt {
	return &Ctxt{tree: t, ptr: t.root}
}

type Ctxt struct {
	tree *Tree
	ptr  *node
}

// DefineVar mints a fresh refinement variable of the given sort.
func (c *Ctxt) DefineVar(sort rty.Sort) rty.Name {
	name := c.tree.nextName
	c.tree.nextName++
	c.ptr = c.ptr.push(&node{kind: forAllNode, name: name, sort: sort})
	return name
}

func (c *Ctxt) DefineVars(sorts []rty.Sort) []rty.Expr {
	vars := make([]rty.Expr, len(sorts))
	for i, sort := range sorts {
		vars[i] = rty.EFree(c.DefineVar(sort))
	}
	return vars
}

func (c *Ctxt) AssumePred(pred rty.Pred) {
	if rty.IsTrivial(pred) {
		return
	}
	c.ptr = c.ptr.push(&node{kind: guardNode, pred: pred})
}

// CheckPred records pred as a proof obligation under everything currently
// in scope.
func (c *Ctxt) CheckPred(pred rty.Pred, tag Tag) {
	if rty.IsTrivial(pred) {
		return
	}
	c.ptr.push(&node{kind: headNode, pred: pred, tag: tag})
}

// Branch returns a context sharing the scope of c. Variables and facts added
// to one branch are not visible in the other.
func (c *Ctxt) Branch() *Ctxt {
	return &Ctxt{tree: c.tree, ptr: c.ptr}
}

// Unpack opens existential types, at the top and under shared references,
// with fresh variables and assumes their predicates.
func (c *Ctxt) Unpack(ty rty.Ty) rty.Ty {
	switch t := ty.(type) {
	case *rty.Exists:
		indices := c.DefineVars(t.Bty.Sorts())
		c.AssumePred(t.Open(indices))
		return rty.NewIndexed(t.Bty, indices...)
	case *rty.Ref:
		if t.Mode == rty.Shr {
			return rty.NewRef(rty.Shr, c.Unpack(t.Ty))
		}
	}
	return ty
}

// AssumeInvariants assumes the facts every value of ty satisfies: unsigned
// integers are non-negative, integers fit their width when checkOverflow is
// set, and ADT indices satisfy the declared invariants.
func (c *Ctxt) AssumeInvariants(ty rty.Ty, checkOverflow bool) {
	switch t := ty.(type) {
	case *rty.Indexed:
		for _, pred := range invariantsOf(t, checkOverflow) {
			c.AssumePred(pred)
		}
	case *rty.Ref:
		c.AssumeInvariants(t.Ty, checkOverflow)
	}
}

func invariantsOf(ty *rty.Indexed, checkOverflow bool) []rty.Pred {
	switch bty := ty.Bty.(type) {
	case *rty.IntTy:
		idx := ty.Indices[0]
		lo, hi := IntBounds(bty)
		var preds []rty.Pred
		if !bty.Signed {
			preds = append(preds, rty.PredOf(rty.EBin(rty.Ge, idx, rty.EInt(0))))
			if checkOverflow {
				preds = append(preds, rty.PredOf(rty.EBin(rty.Le, idx, rty.EBig(hi))))
			}
		} else if checkOverflow {
			preds = append(preds,
				rty.PredOf(rty.EBin(rty.Ge, idx, rty.EBig(lo))),
				rty.PredOf(rty.EBin(rty.Le, idx, rty.EBig(hi))))
		}
		return preds
	case *rty.AdtTy:
		preds := make([]rty.Pred, len(bty.Def.Invariants))
		for i, inv := range bty.Def.Invariants {
			preds[i] = inv.Apply(ty.Indices)
		}
		return preds
	}
	return nil
}

// IntBounds returns the inclusive range of an integer type.
func IntBounds(bty *rty.IntTy) (lo, hi *big.Int) {
	bug.Assert(bty.Bits > 0, "integer type of width 0")
	if bty.Signed {
		half := math.BigPow(2, int64(bty.Bits-1))
		lo = new(big.Int).Neg(half)
		hi = new(big.Int).Sub(half, big.NewInt(1))
		return lo, hi
	}
	return big.NewInt(0), new(big.Int).Sub(math.BigPow(2, int64(bty.Bits)), big.NewInt(1))
}

type Binder struct {
	Name rty.Name
	Sort rty.Sort
}

// Constraint is one flattened obligation: for all Binders, Hyps imply Goal.
type Constraint struct {
	Binders []Binder
	Hyps    []rty.Pred
	Goal    rty.Pred
	Tag     Tag
}

func (c *Constraint) String() string {
	binders := make([]string, len(c.Binders))
	for i, b := range c.Binders {
		binders[i] = fmt.Sprintf("%s: %s", b.Name, b.Sort)
	}
	hyps := make([]string, len(c.Hyps))
	for i, h := range c.Hyps {
		hyps[i] = h.String()
	}
	return fmt.Sprintf("forall %s. %s => %s", strings.Join(binders, ", "), strings.Join(hyps, " && "), c.Goal)
}

// Constraints flattens the tree in depth-first order.
func (t *Tree) Constraints() []Constraint {
	var (
		result  []Constraint
		binders []Binder
		hyps    []rty.Pred
	)
	var walk func(n *node)
	walk = func(n *node) {
		switch n.kind {
		case forAllNode:
			binders = append(binders, Binder{Name: n.name, Sort: n.sort})
			defer func() { binders = binders[:len(binders)-1] }()
		case guardNode:
			hyps = append(hyps, n.pred)
			defer func() { hyps = hyps[:len(hyps)-1] }()
		case headNode:
			result = append(result, Constraint{
				Binders: append([]Binder(nil), binders...),
				Hyps:    append([]rty.Pred(nil), hyps...),
				Goal:    n.pred,
				Tag:     n.tag,
			})
			return
		}
		for _, child := range n.children {
			walk(child)
		}
	}
	walk(t.root)
	log.Debugf("refinement tree flattened into %d constraints", len(result))
	return result
}

func (t *Tree) String() string {
	var sb strings.Builder
	var walk func(n *node, depth int)
	walk = func(n *node, depth int) {
		indent := strings.Repeat("  ", depth)
		switch n.kind {
		case rootNode:
			sb.WriteString("root\n")
		case forAllNode:
			fmt.Fprintf(&sb, "%sforall %s: %s\n", indent, n.name, n.sort)
		case guardNode:
			fmt.Fprintf(&sb, "%s%s =>\n", indent, n.pred)
		case headNode:
			fmt.Fprintf(&sb, "%s%s ~ %s\n", indent, n.pred, n.tag.Reason)
		}
		for _, child := range n.children {
			walk(child, depth+1)
		}
	}
	walk(t.root, 0)
	return sb.String()
}
