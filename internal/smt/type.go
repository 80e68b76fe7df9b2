package smt

import (
	yices2 "github.com/ianamason/yices2_go_bindings/yices_api"

	"refinecore/internal/bug"
	"refinecore/internal/rty"
)

// SortType returns the solver type of a refinement sort.
func SortType(sort rty.Sort) yices2.TypeT {
	switch sort {
	case rty.IntSort:
		return yices2.IntType()
	case rty.BoolSort:
		return yices2.BoolType()
	}
	bug.Panicf("unexpected sort %s", sort)
	return yices2.NullType
}
