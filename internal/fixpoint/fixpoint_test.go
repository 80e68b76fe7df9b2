package fixpoint

import (
	"testing"

	yices2 "github.com/ianamason/yices2_go_bindings/yices_api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refinecore/internal/diag"
	"refinecore/internal/refine"
	"refinecore/internal/rty"
)

func Test_Check(t *testing.T) {
	yices2.Init()
	defer yices2.Exit()

	tree := refine.NewTree()
	rcx := tree.CtxtAtRoot()
	x := rty.EFree(rcx.DefineVar(rty.IntSort))
	rcx.AssumePred(rty.PredOf(rty.EBin(rty.Ge, x, rty.EInt(0))))

	span := diag.Span{File: "pair.yaml", Line: 4, Column: 7}
	tag := refine.NewTag(refine.ReasonInvariant, span)
	rcx.Branch().CheckPred(rty.PredOf(rty.EBin(rty.Gt, rty.EBin(rty.Add, x, rty.EInt(1)), rty.EInt(0))), tag)
	rcx.Branch().CheckPred(rty.PredOf(rty.EBin(rty.Gt, x, rty.EInt(0))), tag)

	errs, err := Check(tree)
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, span, errs[0].Tag.Span)
	assert.Equal(t, refine.ReasonInvariant, errs[0].Tag.Reason)
	require.Len(t, errs[0].Counterexample, 1)
	assert.Equal(t, "a0 = 0", errs[0].Counterexample[0].String())
	assert.Equal(t, "pair.yaml:4:7: cannot prove (a0 > 0) when a0 = 0", errs[0].String())
}

func Test_CheckEmpty(t *testing.T) {
	yices2.Init()
	defer yices2.Exit()

	errs, err := Check(refine.NewTree())
	require.NoError(t, err)
	assert.Empty(t, errs)
}

func Test_CheckSolverError(t *testing.T) {
	yices2.Init()
	defer yices2.Exit()

	tree := refine.NewTree()
	rcx := tree.CtxtAtRoot()
	// a0 is never defined
	rcx.CheckPred(rty.PredOf(rty.EBin(rty.Gt, rty.EFree(0), rty.EInt(0))), refine.Tag{})

	_, err := Check(tree)
	assert.Error(t, err)
}
