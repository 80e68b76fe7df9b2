package smt

import (
	yices2 "github.com/ianamason/yices2_go_bindings/yices_api"

	"refinecore/internal/rty"
)

// Function is an uninterpreted function dom1, dom2, ... -> rng. Predicates
// with no known definition are encoded as functions into bool.
type Function struct {
	name   string
	domain []rty.Sort
	rng    rty.Sort
	raw    yices2.TermT
}

func NewFunction(name string, domain []rty.Sort, rng rty.Sort) *Function {
	f := &Function{
		name:   name,
		domain: make([]rty.Sort, len(domain)),
		rng:    rng,
	}
	copy(f.domain, domain)
	dom := make([]yices2.TypeT, len(domain))
	for i := range domain {
		dom[i] = SortType(domain[i])
	}
	if len(dom) == 0 {
		f.raw = yices2.NewUninterpretedTerm(SortType(rng))
	} else {
		f.raw = yices2.NewUninterpretedTerm(yices2.FunctionType(dom, SortType(rng)))
	}
	yices2.SetTermName(f.raw, name)
	return f
}

func (f *Function) Arity() int {
	return len(f.domain)
}

func (f *Function) Call(args ...yices2.TermT) yices2.TermT {
	if len(args) == 0 {
		return f.raw
	}
	return yices2.Application(f.raw, args)
}

func (f *Function) GetRaw() yices2.TermT {
	return f.raw
}
