package smt

import (
	"fmt"

	yices2 "github.com/ianamason/yices2_go_bindings/yices_api"
	"github.com/pkg/errors"

	"refinecore/internal/rty"
)

// Decl is a refinement variable declared to the solver.
type Decl struct {
	Name rty.Name
	Sort rty.Sort
	Term yices2.TermT
}

// Encoder translates refinement expressions and predicates into solver
// terms. Free variables must be declared before they are used; predicate
// variables become uninterpreted boolean functions, one per family.
type Encoder struct {
	decls []Decl
	vars  map[rty.Name]int
	kvars map[rty.KVid]*Function
}

func NewEncoder() *Encoder {
	return &Encoder{
		vars:  make(map[rty.Name]int),
		kvars: make(map[rty.KVid]*Function),
	}
}

// Declare introduces name with the given sort. Declaring a name again
// shadows the earlier declaration.
func (enc *Encoder) Declare(name rty.Name, sort rty.Sort) yices2.TermT {
	term := yices2.NewUninterpretedTerm(SortType(sort))
	yices2.SetTermName(term, name.String())
	enc.vars[name] = len(enc.decls)
	enc.decls = append(enc.decls, Decl{Name: name, Sort: sort, Term: term})
	return term
}

// Decls returns the live declarations in declaration order.
func (enc *Encoder) Decls() []Decl {
	var decls []Decl
	for i, decl := range enc.decls {
		if enc.vars[decl.Name] == i {
			decls = append(decls, decl)
		}
	}
	return decls
}

func (enc *Encoder) lookup(name rty.Name) (Decl, bool) {
	i, ok := enc.vars[name]
	if !ok {
		return Decl{}, false
	}
	return enc.decls[i], true
}

func (enc *Encoder) Pred(p rty.Pred) (yices2.TermT, error) {
	switch p := p.(type) {
	case *rty.PredExpr:
		return enc.Expr(p.Expr)
	case *rty.PredKVar:
		return enc.kvar(p)
	}
	return yices2.NullTerm, errors.Errorf("unexpected predicate %T", p)
}

func (enc *Encoder) kvar(p *rty.PredKVar) (yices2.TermT, error) {
	args := make([]yices2.TermT, len(p.Args))
	sorts := make([]rty.Sort, len(p.Args))
	for i, arg := range p.Args {
		term, err := enc.Expr(arg)
		if err != nil {
			return yices2.NullTerm, err
		}
		sort, err := enc.sortOf(arg)
		if err != nil {
			return yices2.NullTerm, err
		}
		args[i], sorts[i] = term, sort
	}

	f, ok := enc.kvars[p.KVid]
	if !ok {
		f = NewFunction(fmt.Sprintf("k%d", uint32(p.KVid)), sorts, rty.BoolSort)
		enc.kvars[p.KVid] = f
	}
	if f.Arity() != len(args) {
		return yices2.NullTerm, errors.Errorf("`%s` applied to %d arguments, expected %d", p, len(args), f.Arity())
	}
	term := f.Call(args...)
	if term == yices2.NullTerm {
		return yices2.NullTerm, errors.Errorf("encode `%s`: %s", p, yices2.ErrorString())
	}
	return term, nil
}

func (enc *Encoder) Expr(e rty.Expr) (yices2.TermT, error) {
	switch e := e.(type) {
	case *rty.ExprVar:
		if !e.Var.IsFree() {
			return yices2.NullTerm, errors.Errorf("variable `%s` is not in scope", e)
		}
		decl, ok := enc.lookup(e.Var.Name())
		if !ok {
			return yices2.NullTerm, errors.Errorf("variable `%s` is not declared", e)
		}
		return decl.Term, nil
	case *rty.ExprConst:
		if e.Int == nil {
			if e.Bool {
				return yices2.True(), nil
			}
			return yices2.False(), nil
		}
		if e.Int.IsInt64() {
			return yices2.Int64(e.Int.Int64()), nil
		}
		return yices2.ParseRational(e.Int.String()), nil
	case *rty.ExprUnary:
		operand, err := enc.Expr(e.Operand)
		if err != nil {
			return yices2.NullTerm, err
		}
		switch e.Op {
		case rty.Neg:
			return yices2.Neg(operand), nil
		case rty.Not:
			return yices2.Not(operand), nil
		}
		return yices2.NullTerm, errors.Errorf("unexpected operator %s", e.Op)
	case *rty.ExprBinary:
		left, err := enc.Expr(e.Left)
		if err != nil {
			return yices2.NullTerm, err
		}
		right, err := enc.Expr(e.Right)
		if err != nil {
			return yices2.NullTerm, err
		}
		term := binary(e.Op, left, right)
		if term == yices2.NullTerm {
			return yices2.NullTerm, errors.Errorf("encode `%s`: %s", e, yices2.ErrorString())
		}
		return term, nil
	}
	return yices2.NullTerm, errors.Errorf("unexpected expression %T", e)
}

func binary(op rty.BinOp, left, right yices2.TermT) yices2.TermT {
	switch op {
	case rty.Add:
		return yices2.Add(left, right)
	case rty.Sub:
		return yices2.Sub(left, right)
	case rty.Mul:
		return yices2.Mul(left, right)
	case rty.Div:
		return yices2.Idiv(left, right)
	case rty.Mod:
		return yices2.Imod(left, right)
	case rty.Eq:
		return yices2.Eq(left, right)
	case rty.Ne:
		return yices2.Neq(left, right)
	case rty.Lt:
		return yices2.ArithLtAtom(left, right)
	case rty.Le:
		return yices2.ArithLeqAtom(left, right)
	case rty.Gt:
		return yices2.ArithGtAtom(left, right)
	case rty.Ge:
		return yices2.ArithGeqAtom(left, right)
	case rty.And:
		return yices2.And2(left, right)
	case rty.Or:
		return yices2.Or2(left, right)
	case rty.Imp:
		return yices2.Implies(left, right)
	case rty.Iff:
		return yices2.Iff(left, right)
	}
	return yices2.NullTerm
}

func (enc *Encoder) sortOf(e rty.Expr) (rty.Sort, error) {
	switch e := e.(type) {
	case *rty.ExprVar:
		if !e.Var.IsFree() {
			return 0, errors.Errorf("variable `%s` is not in scope", e)
		}
		decl, ok := enc.lookup(e.Var.Name())
		if !ok {
			return 0, errors.Errorf("variable `%s` is not declared", e)
		}
		return decl.Sort, nil
	case *rty.ExprConst:
		if e.Int == nil {
			return rty.BoolSort, nil
		}
		return rty.IntSort, nil
	case *rty.ExprUnary:
		if e.Op == rty.Not {
			return rty.BoolSort, nil
		}
		return rty.IntSort, nil
	case *rty.ExprBinary:
		switch e.Op {
		case rty.Add, rty.Sub, rty.Mul, rty.Div, rty.Mod:
			return rty.IntSort, nil
		}
		return rty.BoolSort, nil
	}
	return 0, errors.Errorf("unexpected expression %T", e)
}
