package heap

import (
	"refinecore/internal/bug"
	"refinecore/internal/rty"
)

// paramInst maps the position of a declared index to the expression found
// for it in the actual field types.
type paramInst map[int]rty.Expr

// inferIndices recovers the indices of an ADT value from the types of the
// fields of one of its variants: the field types are unified against the
// variant's field signature and the variant's return tuple is instantiated
// with the result. Parameters the return tuple does not mention need not be
// inferred.
func inferIndices(def *rty.AdtDef, variant rty.VariantIdx, tys []rty.Ty) []rty.Expr {
	sig := def.Variant(variant)
	bug.Assert(len(tys) == len(sig.Fields),
		"`%s` variant %d has %d fields, folding %d", def.Name, variant, len(sig.Fields), len(tys))

	params := make(paramInst)
	for i := range tys {
		inferFromTys(params, tys[i], sig.Fields[i])
	}

	ret := def.RetIndices(sig)
	used := make(map[int]bool)
	for _, e := range ret {
		boundIndices(e, used)
	}
	values := make([]rty.Expr, len(def.Sorts))
	for i := range def.Sorts {
		e, ok := params[i]
		if !ok && used[i] {
			bug.Panicf("index %s of `%s` cannot be inferred from the fields of variant %d",
				paramName(def, i), def.Name, variant)
		}
		if !ok {
			e = rty.EBound(i)
		}
		values[i] = e
	}
	if sig.Ret == nil {
		return values
	}
	inst := rty.NewInstantiation(values, nil)
	indices := make([]rty.Expr, len(ret))
	for i, e := range ret {
		indices[i] = inst.Expr(e)
	}
	return indices
}

func boundIndices(e rty.Expr, used map[int]bool) {
	switch e := e.(type) {
	case *rty.ExprVar:
		if e.Var.IsBound() {
			used[e.Var.Index()] = true
		}
	case *rty.ExprBinary:
		boundIndices(e.Left, used)
		boundIndices(e.Right, used)
	case *rty.ExprUnary:
		boundIndices(e.Operand, used)
	case *rty.ExprConst:
	default:
		bug.Panicf("unexpected expression %T", e)
	}
}

func paramName(def *rty.AdtDef, i int) string {
	if i < len(def.Params) {
		return def.Params[i]
	}
	return rty.BoundVar(i).String()
}

// inferFromTys walks actual and sig in parallel. Only indexed types and
// shared references contribute; any other pair of shapes is skipped.
func inferFromTys(params paramInst, actual, sig rty.Ty) {
	switch sig := sig.(type) {
	case *rty.Indexed:
		actual, ok := actual.(*rty.Indexed)
		if !ok {
			return
		}
		inferFromBtys(params, actual.Bty, sig.Bty)
		bug.Assert(len(actual.Indices) == len(sig.Indices),
			"`%s` and `%s` have a different number of indices", actual, sig)
		for i := range sig.Indices {
			inferFromExprs(params, actual.Indices[i], sig.Indices[i])
		}
	case *rty.Ptr:
		if actual, ok := actual.(*rty.Ptr); ok {
			// TODO: unify the targets of both pointers once folding through
			// pointer fields is supported.
			bug.Panicf("folding pointer `%s` against `%s` is not supported", actual, sig)
		}
	case *rty.Ref:
		actual, ok := actual.(*rty.Ref)
		if ok && actual.Mode == rty.Shr && sig.Mode == rty.Shr {
			inferFromTys(params, actual.Ty, sig.Ty)
		}
	case *rty.Exists, *rty.Uninit, *rty.Param:
	default:
		bug.Panicf("unexpected type %T", sig)
	}
}

func inferFromBtys(params paramInst, actual, sig rty.BaseTy) {
	bug.Assert(rty.SameBase(actual, sig), "folding `%s` against `%s`", actual, sig)
	if sig, ok := sig.(*rty.AdtTy); ok {
		actual := actual.(*rty.AdtTy)
		bug.Assert(len(actual.Substs) == len(sig.Substs),
			"`%s` and `%s` have a different number of generic arguments", actual, sig)
		for i := range sig.Substs {
			inferFromTys(params, actual.Substs[i], sig.Substs[i])
		}
	}
}

// inferFromExprs records actual for a signature expression that is a bare
// declared index. A later occurrence of the same index overrides an earlier
// one.
func inferFromExprs(params paramInst, actual, sig rty.Expr) {
	if v, ok := sig.(*rty.ExprVar); ok && v.Var.IsBound() {
		params[v.Var.Index()] = actual
	}
}
