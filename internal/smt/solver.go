package smt

import (
	yices2 "github.com/ianamason/yices2_go_bindings/yices_api"
	"github.com/pkg/errors"
)

type Solver struct {
	ctx yices2.ContextT
}

func NewSolver() *Solver {
	s := &Solver{
		ctx: yices2.ContextT{},
	}
	yices2.InitContext(yices2.ConfigT{}, &s.ctx)
	return s
}

func (s *Solver) Close() {
	yices2.CloseContext(s.ctx)
}

// Check asserts terms in the solver's context and checks satisfiability.
// The assertions are kept.
func (s *Solver) Check(terms ...yices2.TermT) (yices2.SmtStatusT, *yices2.ModelT, error) {
	errorcode := yices2.AssertFormulas(s.ctx, terms)
	if errorcode < 0 {
		return yices2.StatusError, nil, errors.Errorf("assert formulas: %s", yices2.ErrorString())
	}
	return s.check()
}

func (s *Solver) check() (yices2.SmtStatusT, *yices2.ModelT, error) {
	status := yices2.CheckContext(s.ctx, yices2.ParamT{})
	switch status {
	case yices2.StatusSat:
		return status, yices2.GetModel(s.ctx, 1), nil
	case yices2.StatusUnsat:
		return status, nil, nil
	case yices2.StatusIdle, yices2.StatusSearching, yices2.StatusInterrupted:
		return status, nil, errors.Errorf("solver stopped with status %d", status)
	case yices2.StatusError:
		return status, nil, errors.Errorf("check context: %s", yices2.ErrorString())
	}
	return yices2.StatusError, nil, errors.Errorf("unknown solver status %d", status)
}

// CheckValid reports whether the conjunction of hyps implies goal. When it
// does not, the returned model satisfies hyps and falsifies goal. The
// solver's context is left as it was.
func (s *Solver) CheckValid(hyps []yices2.TermT, goal yices2.TermT) (bool, *yices2.ModelT, error) {
	if yices2.Push(s.ctx) < 0 {
		return false, nil, errors.Errorf("push: %s", yices2.ErrorString())
	}
	defer yices2.Pop(s.ctx)

	terms := make([]yices2.TermT, 0, len(hyps)+1)
	terms = append(terms, hyps...)
	terms = append(terms, yices2.Not(goal))
	status, model, err := s.Check(terms...)
	if err != nil {
		return false, nil, err
	}
	return status == yices2.StatusUnsat, model, nil
}
