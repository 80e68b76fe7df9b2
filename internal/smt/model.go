package smt

import (
	"fmt"
	"strconv"

	yices2 "github.com/ianamason/yices2_go_bindings/yices_api"
	"github.com/pkg/errors"

	"refinecore/internal/rty"
)

// Assignment is the value a model gives to a declared variable.
type Assignment struct {
	Name  rty.Name
	Value string
}

func (a Assignment) String() string {
	return fmt.Sprintf("%s = %s", a.Name, a.Value)
}

// Counterexample reads the values of decls out of model. Values the
// solver cannot report as machine integers are printed as terms.
func Counterexample(model *yices2.ModelT, decls []Decl) []Assignment {
	if model == nil {
		return nil
	}
	result := make([]Assignment, 0, len(decls))
	for _, decl := range decls {
		result = append(result, Assignment{Name: decl.Name, Value: valueOf(model, decl)})
	}
	return result
}

func valueOf(model *yices2.ModelT, decl Decl) string {
	switch decl.Sort {
	case rty.BoolSort:
		if val, err := GetBoolValue(model, decl.Term); err == nil {
			return strconv.FormatBool(val)
		}
	case rty.IntSort:
		if val, err := GetInt64Value(model, decl.Term); err == nil {
			return strconv.FormatInt(val, 10)
		}
	}
	return "?"
}

func GetInt64Value(model *yices2.ModelT, term yices2.TermT) (int64, error) {
	var val int64
	errcode := yices2.GetInt64Value(*model, term, &val)
	if errcode != 0 {
		return 0, errors.New(yices2.ErrorString())
	}
	return val, nil
}

func GetBoolValue(model *yices2.ModelT, term yices2.TermT) (bool, error) {
	var val int32
	errcode := yices2.GetBoolValue(*model, term, &val)
	if errcode != 0 {
		return false, errors.New(yices2.ErrorString())
	}
	return val != 0, nil
}

func CloseModel(model *yices2.ModelT) {
	if model != nil {
		yices2.CloseModel(model)
	}
}
