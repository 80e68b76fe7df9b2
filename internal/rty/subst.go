package rty

import (
	"sort"

	"refinecore/internal/bug"
)

// folder rewrites expressions, predicates and types homomorphically.
type folder struct {
	vars   func(Var) (Expr, bool)
	params func(int) (Ty, bool)
	locs   func(Loc) Loc
}

func (f *folder) expr(e Expr) Expr {
	switch e := e.(type) {
	case *ExprVar:
		if f.vars != nil {
			if image, ok := f.vars(e.Var); ok {
				return image
			}
		}
		return e
	case *ExprConst:
		return e
	case *ExprBinary:
		return EBin(e.Op, f.expr(e.Left), f.expr(e.Right))
	case *ExprUnary:
		return EUn(e.Op, f.expr(e.Operand))
	}
	bug.Panicf("unexpected expression %T", e)
	return nil
}

func (f *folder) exprs(exprs []Expr) []Expr {
	result := make([]Expr, len(exprs))
	for i, e := range exprs {
		result[i] = f.expr(e)
	}
	return result
}

func (f *folder) pred(p Pred) Pred {
	switch p := p.(type) {
	case *PredExpr:
		return PredOf(f.expr(p.Expr))
	case *PredKVar:
		return &PredKVar{KVid: p.KVid, Args: f.exprs(p.Args)}
	}
	bug.Panicf("unexpected predicate %T", p)
	return nil
}

func (f *folder) bty(b BaseTy) BaseTy {
	switch b := b.(type) {
	case *IntTy, *BoolTy:
		return b
	case *AdtTy:
		if len(b.Substs) == 0 {
			return b
		}
		substs := make([]Ty, len(b.Substs))
		for i, ty := range b.Substs {
			substs[i] = f.ty(ty)
		}
		return &AdtTy{Def: b.Def, Substs: substs}
	}
	bug.Panicf("unexpected base type %T", b)
	return nil
}

func (f *folder) ty(t Ty) Ty {
	switch t := t.(type) {
	case *Indexed:
		return &Indexed{Bty: f.bty(t.Bty), Indices: f.exprs(t.Indices)}
	case *Exists:
		// No shadowing: free variables never clash with the nu binders, so
		// only the body needs rewriting.
		return &Exists{Bty: f.bty(t.Bty), Pred: f.pred(t.Pred)}
	case *Ptr:
		return &Ptr{Path: f.path(t.Path)}
	case *Ref:
		return &Ref{Mode: t.Mode, Ty: f.ty(t.Ty)}
	case *Uninit:
		return t
	case *Param:
		if f.params != nil {
			if image, ok := f.params(t.Index); ok {
				return image
			}
		}
		return t
	}
	bug.Panicf("unexpected type %T", t)
	return nil
}

func (f *folder) path(p Path) Path {
	if f.locs == nil {
		return p
	}
	return Path{Loc: f.locs(p.Loc), Proj: p.Proj}
}

// Subst maps free refinement variables to expressions. Variables absent from
// the mapping are left as they are.
type Subst struct {
	m map[Name]Expr
}

func NewSubst() *Subst {
	return &Subst{m: make(map[Name]Expr)}
}

func SubstOf(m map[Name]Expr) *Subst {
	s := NewSubst()
	for name, e := range m {
		s.m[name] = e
	}
	return s
}

func (s *Subst) Insert(name Name, e Expr) {
	s.m[name] = e
}

func (s *Subst) Len() int {
	return len(s.m)
}

// Names returns the mapped variables in increasing order.
func (s *Subst) Names() []Name {
	names := make([]Name, 0, len(s.m))
	for name := range s.m {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

func (s *Subst) folder() *folder {
	return &folder{
		vars: func(v Var) (Expr, bool) {
			if !v.IsFree() {
				return nil, false
			}
			e, ok := s.m[v.Name()]
			return e, ok
		},
		locs: s.Loc,
	}
}

func (s *Subst) Var(v Var) Expr {
	if v.IsFree() {
		if e, ok := s.m[v.Name()]; ok {
			return e
		}
	}
	return EVar(v)
}

func (s *Subst) Expr(e Expr) Expr { return s.folder().expr(e) }
func (s *Subst) Pred(p Pred) Pred { return s.folder().pred(p) }
func (s *Subst) Ty(t Ty) Ty       { return s.folder().ty(t) }
func (s *Subst) BaseTy(b BaseTy) BaseTy {
	return s.folder().bty(b)
}
func (s *Subst) Path(p Path) Path { return s.folder().path(p) }

// Loc renames a free location whose name is mapped to another variable.
func (s *Subst) Loc(l Loc) Loc {
	if l.Kind != FreeLoc {
		return l
	}
	e, ok := s.m[Name(l.Index)]
	if !ok {
		return l
	}
	v, ok := e.(*ExprVar)
	if !ok || !v.Var.IsFree() {
		bug.Panicf("location %s substituted by non-variable `%s`", l, e)
	}
	return FreeLocOf(v.Var.Name())
}

// Instantiation replaces the bound indices and generic parameters of an ADT
// signature.
type Instantiation struct {
	indices  []Expr
	generics []Ty
}

// NewInstantiation builds an instantiation. Nil generics leave parameters
// untouched.
func NewInstantiation(indices []Expr, generics []Ty) *Instantiation {
	return &Instantiation{indices: indices, generics: generics}
}

func (inst *Instantiation) folder() *folder {
	f := &folder{
		vars: func(v Var) (Expr, bool) {
			if !v.IsBound() {
				return nil, false
			}
			if v.Index() >= len(inst.indices) {
				bug.Panicf("bound index %s out of range (%d indices)", v, len(inst.indices))
			}
			return inst.indices[v.Index()], true
		},
	}
	if inst.generics != nil {
		f.params = func(i int) (Ty, bool) {
			if i >= len(inst.generics) {
				bug.Panicf("generic parameter T%d out of range (%d arguments)", i, len(inst.generics))
			}
			return inst.generics[i], true
		}
	}
	return f
}

func (inst *Instantiation) Expr(e Expr) Expr { return inst.folder().expr(e) }
func (inst *Instantiation) Pred(p Pred) Pred { return inst.folder().pred(p) }
func (inst *Instantiation) Ty(t Ty) Ty       { return inst.folder().ty(t) }

// Open returns the body of t with its nu binders replaced by indices.
func (t *Exists) Open(indices []Expr) Pred {
	bug.Assert(len(indices) == len(t.Bty.Sorts()),
		"opening `%s` with %d indices", t, len(indices))
	f := &folder{
		vars: func(v Var) (Expr, bool) {
			if !v.IsNu() {
				return nil, false
			}
			return indices[v.Index()], true
		},
	}
	return f.pred(t.Pred)
}
