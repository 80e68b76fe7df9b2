// Package rty defines the refined types, refinement expressions and
// algebraic data type declarations the symbolic heap operates on.
package rty

import (
	"fmt"
	"math/big"
	"strings"

	"refinecore/internal/bug"
)

type Sort int

const (
	IntSort Sort = iota
	BoolSort
)

func (s Sort) String() string {
	switch s {
	case IntSort:
		return "int"
	case BoolSort:
		return "bool"
	}
	return fmt.Sprintf("sort(%d)", int(s))
}

// Name is a refinement variable minted by a refinement context.
type Name uint32

func (n Name) String() string {
	return fmt.Sprintf("a%d", uint32(n))
}

type varKind uint8

const (
	freeVar varKind = iota
	// boundVar is the i-th declared index of the ADT whose signature
	// contains the variable.
	boundVar
	// nuVar is the i-th index of the value described by the enclosing
	// existential type.
	nuVar
)

type Var struct {
	kind  varKind
	name  Name
	index int
}

func FreeVar(name Name) Var { return Var{kind: freeVar, name: name} }
func BoundVar(index int) Var { return Var{kind: boundVar, index: index} }
func NuVar(index int) Var   { return Var{kind: nuVar, index: index} }

func (v Var) IsFree() bool  { return v.kind == freeVar }
func (v Var) IsBound() bool { return v.kind == boundVar }
func (v Var) IsNu() bool    { return v.kind == nuVar }

// Name returns the name of a free variable.
func (v Var) Name() Name {
	bug.Assert(v.kind == freeVar, "variable %s is not free", v)
	return v.name
}

// Index returns the position of a bound or nu variable.
func (v Var) Index() int {
	bug.Assert(v.kind != freeVar, "variable %s is free", v)
	return v.index
}

func (v Var) String() string {
	switch v.kind {
	case boundVar:
		return fmt.Sprintf("^%d", v.index)
	case nuVar:
		return fmt.Sprintf("v%d", v.index)
	}
	return v.name.String()
}

type BinOp int

const (
	Add BinOp = iota
	Sub
	Mul
	Div
	Mod
	Eq
	Ne
	Lt
	Le
	Gt
	Ge
	And
	Or
	Imp
	Iff
)

var binOpSymbols = [...]string{
	Add: "+", Sub: "-", Mul: "*", Div: "/", Mod: "%",
	Eq: "==", Ne: "!=", Lt: "<", Le: "<=", Gt: ">", Ge: ">=",
	And: "&&", Or: "||", Imp: "=>", Iff: "<=>",
}

func (op BinOp) String() string {
	if int(op) < len(binOpSymbols) {
		return binOpSymbols[op]
	}
	return fmt.Sprintf("binop(%d)", int(op))
}

type UnOp int

const (
	Neg UnOp = iota
	Not
)

func (op UnOp) String() string {
	if op == Not {
		return "!"
	}
	return "-"
}

// Expr is a refinement expression. Values are immutable and may be shared.
type Expr interface {
	exprTag()
	fmt.Stringer
}

type etag struct{}

func (etag) exprTag() {}

type ExprVar struct {
	etag
	Var Var
}

type ExprConst struct {
	etag
	// Int is nil for boolean constants.
	Int  *big.Int
	Bool bool
}

type ExprBinary struct {
	etag
	Op          BinOp
	Left, Right Expr
}

type ExprUnary struct {
	etag
	Op      UnOp
	Operand Expr
}

func EVar(v Var) Expr      { return &ExprVar{Var: v} }
func EFree(name Name) Expr { return EVar(FreeVar(name)) }
func EBound(i int) Expr    { return EVar(BoundVar(i)) }
func ENu(i int) Expr       { return EVar(NuVar(i)) }
func EInt(n int64) Expr    { return &ExprConst{Int: big.NewInt(n)} }
func EBool(b bool) Expr    { return &ExprConst{Bool: b} }

func EBig(n *big.Int) Expr {
	return &ExprConst{Int: new(big.Int).Set(n)}
}

func EBin(op BinOp, left, right Expr) Expr {
	return &ExprBinary{Op: op, Left: left, Right: right}
}

func EUn(op UnOp, operand Expr) Expr {
	return &ExprUnary{Op: op, Operand: operand}
}

// EAnd folds the conjunction of exprs, true when empty.
func EAnd(exprs ...Expr) Expr {
	if len(exprs) == 0 {
		return EBool(true)
	}
	result := exprs[0]
	for _, e := range exprs[1:] {
		result = EBin(And, result, e)
	}
	return result
}

func (e *ExprVar) String() string { return e.Var.String() }

func (e *ExprConst) String() string {
	if e.Int != nil {
		return e.Int.String()
	}
	if e.Bool {
		return "true"
	}
	return "false"
}

func (e *ExprBinary) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right)
}

func (e *ExprUnary) String() string {
	return fmt.Sprintf("%s%s", e.Op, e.Operand)
}

func ExprEqual(a, b Expr) bool {
	switch a := a.(type) {
	case *ExprVar:
		b, ok := b.(*ExprVar)
		return ok && a.Var == b.Var
	case *ExprConst:
		b, ok := b.(*ExprConst)
		if !ok || (a.Int == nil) != (b.Int == nil) {
			return false
		}
		if a.Int != nil {
			return a.Int.Cmp(b.Int) == 0
		}
		return a.Bool == b.Bool
	case *ExprBinary:
		b, ok := b.(*ExprBinary)
		return ok && a.Op == b.Op && ExprEqual(a.Left, b.Left) && ExprEqual(a.Right, b.Right)
	case *ExprUnary:
		b, ok := b.(*ExprUnary)
		return ok && a.Op == b.Op && ExprEqual(a.Operand, b.Operand)
	}
	bug.Panicf("unexpected expression %T", a)
	return false
}

func exprsEqual(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !ExprEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func joinExprs(exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

type KVid uint32

// Pred is either a plain boolean expression or an application of a
// predicate variable of some family to a list of arguments.
type Pred interface {
	predTag()
	fmt.Stringer
}

type ptag struct{}

func (ptag) predTag() {}

type PredExpr struct {
	ptag
	Expr Expr
}

type PredKVar struct {
	ptag
	KVid KVid
	Args []Expr
}

func PredOf(e Expr) Pred { return &PredExpr{Expr: e} }
func PredTrue() Pred     { return PredOf(EBool(true)) }

func KVar(kvid KVid, args ...Expr) Pred {
	return &PredKVar{KVid: kvid, Args: append([]Expr(nil), args...)}
}

func (p *PredExpr) String() string { return p.Expr.String() }

func (p *PredKVar) String() string {
	return fmt.Sprintf("$k%d(%s)", uint32(p.KVid), joinExprs(p.Args))
}

func PredEqual(a, b Pred) bool {
	switch a := a.(type) {
	case *PredExpr:
		b, ok := b.(*PredExpr)
		return ok && ExprEqual(a.Expr, b.Expr)
	case *PredKVar:
		b, ok := b.(*PredKVar)
		return ok && a.KVid == b.KVid && exprsEqual(a.Args, b.Args)
	}
	bug.Panicf("unexpected predicate %T", a)
	return false
}

// IsTrivial reports whether p is the literal true.
func IsTrivial(p Pred) bool {
	if pe, ok := p.(*PredExpr); ok {
		if c, ok := pe.Expr.(*ExprConst); ok {
			return c.Int == nil && c.Bool
		}
	}
	return false
}
