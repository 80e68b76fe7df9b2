package refine

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refinecore/internal/diag"
	"refinecore/internal/rty"
)

func Test_DefineVarIsFresh(t *testing.T) {
	tree := NewTree()
	a := tree.CtxtAtRoot().DefineVar(rty.IntSort)
	b := tree.CtxtAtRoot().DefineVar(rty.BoolSort)
	assert.NotEqual(t, a, b)
}

func Test_Constraints(t *testing.T) {
	tree := NewTree()
	span := diag.Span{File: "adts.yaml", Line: 3, Column: 5}

	rcx := tree.CtxtAtRoot()
	x := rcx.DefineVar(rty.IntSort)
	rcx.AssumePred(rty.PredOf(rty.EBin(rty.Gt, rty.EFree(x), rty.EInt(0))))
	rcx.AssumePred(rty.PredTrue())
	rcx.CheckPred(rty.PredOf(rty.EBin(rty.Ge, rty.EFree(x), rty.EInt(0))), NewTag(ReasonInvariant, span))
	rcx.CheckPred(rty.PredTrue(), NewTag(ReasonInvariant, span))

	other := tree.CtxtAtRoot()
	y := other.DefineVar(rty.BoolSort)
	other.CheckPred(rty.PredOf(rty.EFree(y)), NewTag(ReasonInvariant, diag.DummySpan))

	cs := tree.Constraints()
	require.Len(t, cs, 2)

	assert.Equal(t, []Binder{{Name: x, Sort: rty.IntSort}}, cs[0].Binders)
	assert.Len(t, cs[0].Hyps, 1)
	assert.Equal(t, span, cs[0].Tag.Span)
	assert.Equal(t, ReasonInvariant, cs[0].Tag.Reason)

	// the second root context sees neither x nor its guard
	assert.Equal(t, []Binder{{Name: y, Sort: rty.BoolSort}}, cs[1].Binders)
	assert.Empty(t, cs[1].Hyps)

	assert.Contains(t, tree.String(), "(a0 >= 0) ~ invariant\n")
	assert.Equal(t, "reason(3)", Reason(3).String())
}

func Test_Branch(t *testing.T) {
	tree := NewTree()
	rcx := tree.CtxtAtRoot()
	x := rcx.DefineVar(rty.IntSort)

	left := rcx.Branch()
	left.AssumePred(rty.PredOf(rty.EBin(rty.Lt, rty.EFree(x), rty.EInt(0))))
	left.CheckPred(rty.PredOf(rty.EBool(false)), Tag{})

	rcx.CheckPred(rty.PredOf(rty.EBool(false)), Tag{})

	cs := tree.Constraints()
	require.Len(t, cs, 2)
	assert.Len(t, cs[0].Hyps, 1)
	assert.Len(t, cs[1].Hyps, 0)
}

func Test_Unpack(t *testing.T) {
	tree := NewTree()
	rcx := tree.CtxtAtRoot()

	ex := rty.NewExists(rty.NewInt(32), rty.PredOf(rty.EBin(rty.Gt, rty.ENu(0), rty.EInt(0))))
	got := rcx.Unpack(rty.NewRef(rty.Shr, ex))

	ref, ok := got.(*rty.Ref)
	require.True(t, ok)
	indexed, ok := ref.Ty.(*rty.Indexed)
	require.True(t, ok)
	require.Len(t, indexed.Indices, 1)

	rcx.CheckPred(rty.PredOf(rty.EBin(rty.Ge, indexed.Indices[0], rty.EInt(1))), Tag{})
	cs := tree.Constraints()
	require.Len(t, cs, 1)
	assert.Len(t, cs[0].Binders, 1)
	assert.Equal(t, "(a0 > 0)", cs[0].Hyps[0].String())

	// mutable references are left closed
	mut := rty.NewRef(rty.Mut, ex)
	assert.True(t, rty.TyEqual(mut, rcx.Unpack(mut)))
}

func Test_IntBounds(t *testing.T) {
	lo, hi := IntBounds(&rty.IntTy{Signed: true, Bits: 8})
	assert.Equal(t, "-128", lo.String())
	assert.Equal(t, "127", hi.String())

	lo, hi = IntBounds(&rty.IntTy{Signed: false, Bits: 16})
	assert.Zero(t, lo.Cmp(big.NewInt(0)))
	assert.Equal(t, "65535", hi.String())

	_, hi = IntBounds(&rty.IntTy{Signed: false, Bits: 64})
	assert.Equal(t, "18446744073709551615", hi.String())
}

func Test_AssumeInvariants(t *testing.T) {
	pos := &rty.AdtDef{
		Name:       "Pos",
		Sorts:      []rty.Sort{rty.IntSort},
		Invariants: []*rty.Invariant{{Pred: rty.EBin(rty.Gt, rty.EBound(0), rty.EInt(0))}},
	}
	cases := []struct {
		ty            rty.Ty
		checkOverflow bool
		hyps          []string
	}{
		{rty.NewIndexed(rty.NewInt(32), rty.EFree(0)), false, nil},
		{rty.NewIndexed(rty.NewInt(8), rty.EFree(0)), true, []string{"(a0 >= -128)", "(a0 <= 127)"}},
		{rty.NewIndexed(rty.NewUint(8), rty.EFree(0)), false, []string{"(a0 >= 0)"}},
		{rty.NewIndexed(rty.NewUint(8), rty.EFree(0)), true, []string{"(a0 >= 0)", "(a0 <= 255)"}},
		{rty.NewIndexed(rty.NewAdt(pos), rty.EFree(0)), false, []string{"(a0 > 0)"}},
		{rty.NewRef(rty.Shr, rty.NewIndexed(rty.NewUint(8), rty.EFree(0))), false, []string{"(a0 >= 0)"}},
		{rty.NewUninit(), true, nil},
	}
	for _, c := range cases {
		tree := NewTree()
		rcx := tree.CtxtAtRoot()
		rcx.AssumeInvariants(c.ty, c.checkOverflow)
		rcx.CheckPred(rty.PredOf(rty.EBool(false)), Tag{})

		cs := tree.Constraints()
		require.Len(t, cs, 1)
		var hyps []string
		for _, h := range cs[0].Hyps {
			hyps = append(hyps, h.String())
		}
		assert.Equal(t, c.hyps, hyps, "assumptions of %s", c.ty)
	}
}
