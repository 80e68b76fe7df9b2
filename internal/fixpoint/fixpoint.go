// Package fixpoint discharges the obligations of a refinement tree with the
// SMT solver and reports the ones that do not hold.
package fixpoint

import (
	"fmt"
	"strings"

	yices2 "github.com/ianamason/yices2_go_bindings/yices_api"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"refinecore/internal/refine"
	"refinecore/internal/smt"
)

// Error is an obligation the solver could not prove.
type Error struct {
	Tag            refine.Tag
	Constraint     refine.Constraint
	Counterexample []smt.Assignment
}

func (e *Error) String() string {
	if len(e.Counterexample) == 0 {
		return fmt.Sprintf("%s: cannot prove %s", e.Tag.Span, e.Constraint.Goal)
	}
	values := make([]string, len(e.Counterexample))
	for i, a := range e.Counterexample {
		values[i] = a.String()
	}
	return fmt.Sprintf("%s: cannot prove %s when %s", e.Tag.Span, e.Constraint.Goal, strings.Join(values, ", "))
}

// Check discharges every obligation of tree. The returned errors are the
// obligations that do not hold; the error result is only set when the
// solver itself fails. The yices library must be initialised.
func Check(tree *refine.Tree) ([]Error, error) {
	constraints := tree.Constraints()
	solver := smt.NewSolver()
	defer solver.Close()

	var result []Error
	for i := range constraints {
		c := &constraints[i]
		valid, cex, err := checkConstraint(solver, c)
		if err != nil {
			return nil, errors.Wrapf(err, "checking obligation %d", i)
		}
		if valid {
			log.Debugf("obligation %d holds: %s", i, c)
			continue
		}
		log.Debugf("obligation %d fails: %s", i, c)
		result = append(result, Error{Tag: c.Tag, Constraint: *c, Counterexample: cex})
	}
	log.Debugf("%d of %d obligations fail", len(result), len(constraints))
	return result, nil
}

func checkConstraint(solver *smt.Solver, c *refine.Constraint) (bool, []smt.Assignment, error) {
	enc := smt.NewEncoder()
	for _, b := range c.Binders {
		enc.Declare(b.Name, b.Sort)
	}
	hyps := make([]yices2.TermT, len(c.Hyps))
	for i, hyp := range c.Hyps {
		term, err := enc.Pred(hyp)
		if err != nil {
			return false, nil, errors.Wrapf(err, "encoding hypothesis `%s`", hyp)
		}
		hyps[i] = term
	}
	goal, err := enc.Pred(c.Goal)
	if err != nil {
		return false, nil, errors.Wrapf(err, "encoding goal `%s`", c.Goal)
	}

	valid, model, err := solver.CheckValid(hyps, goal)
	if err != nil {
		return false, nil, err
	}
	defer smt.CloseModel(model)
	return valid, smt.Counterexample(model, enc.Decls()), nil
}
