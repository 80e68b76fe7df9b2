// Package invariants checks that the invariants declared on an ADT follow
// from the fields of each of its variants.
package invariants

import (
	"fmt"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"refinecore/internal/diag"
	"refinecore/internal/fixpoint"
	"refinecore/internal/refine"
	"refinecore/internal/rty"
)

type Config struct {
	// CheckOverflow assumes integer fields fit the range of their type.
	CheckOverflow bool
}

// Backend discharges the obligations of a refinement tree.
type Backend interface {
	Check(tree *refine.Tree) ([]fixpoint.Error, error)
}

type BackendFunc func(tree *refine.Tree) ([]fixpoint.Error, error)

func (f BackendFunc) Check(tree *refine.Tree) ([]fixpoint.Error, error) {
	return f(tree)
}

// Solver discharges obligations with the SMT solver.
var Solver Backend = BackendFunc(fixpoint.Check)

// CheckInvariants reports one diagnostic per invariant of def that does not
// hold for some variant. The error result is reserved for backend failures.
func CheckInvariants(def *rty.AdtDef, cfg Config, backend Backend) ([]*diag.Diagnostic, error) {
	var diags []*diag.Diagnostic
	for _, inv := range def.Invariants {
		tree := BuildObligations(def, inv, cfg)
		errs, err := backend.Check(tree)
		if err != nil {
			return diags, errors.Wrapf(err, "checking invariant `%s` of `%s`", inv.Pred, def.Name)
		}
		if len(errs) == 0 {
			log.Debugf("invariant `%s` of `%s` holds", inv.Pred, def.Name)
			continue
		}
		diags = append(diags, invalidInvariant(def, inv, errs))
	}
	return diags, nil
}

// BuildObligations builds the proof obligations of inv: under fresh indices
// for every variant, the facts its fields carry must imply the invariant of
// the indices the variant produces.
func BuildObligations(def *rty.AdtDef, inv *rty.Invariant, cfg Config) *refine.Tree {
	tree := refine.NewTree()
	tag := refine.NewTag(refine.ReasonInvariant, inv.Span)
	for _, variant := range def.VariantIndices() {
		rcx := tree.CtxtAtRoot()
		vars := rcx.DefineVars(def.Sorts)

		for _, field := range def.InstantiateFields(variant, nil, vars) {
			field = rcx.Unpack(field)
			rcx.AssumeInvariants(field, cfg.CheckOverflow)
		}

		inst := rty.NewInstantiation(vars, nil)
		ret := def.RetIndices(def.Variant(variant))
		indices := make([]rty.Expr, len(ret))
		for i, e := range ret {
			indices[i] = inst.Expr(e)
		}
		rcx.CheckPred(inv.Apply(indices), tag)
	}
	return tree
}

func invalidInvariant(def *rty.AdtDef, inv *rty.Invariant, errs []fixpoint.Error) *diag.Diagnostic {
	d := &diag.Diagnostic{
		Code:    diag.CodeInvalidInvariant,
		Title:   "invalid type invariant",
		Message: fmt.Sprintf("invariant `%s` of `%s` does not follow from its fields", inv.Pred, def.Name),
		Span:    inv.Span,
	}
	for i := range errs {
		if len(errs[i].Counterexample) == 0 {
			continue
		}
		d.Notes = append(d.Notes, fmt.Sprintf("counterexample: %s", joinAssignments(errs[i])))
	}
	return d
}

func joinAssignments(err fixpoint.Error) string {
	s := ""
	for i, a := range err.Counterexample {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s
}
