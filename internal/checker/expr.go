package checker

import (
	"go/ast"
	"go/parser"
	"go/token"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"

	"refinecore/internal/rty"
)

// scope maps the names usable in an expression to the variables they
// stand for.
type scope map[string]rty.Expr

func (s scope) with(names []string, mk func(int) rty.Expr) scope {
	inner := make(scope, len(s)+len(names))
	for name, e := range s {
		inner[name] = e
	}
	for i, name := range names {
		inner[name] = mk(i)
	}
	return inner
}

var binOps = map[token.Token]rty.BinOp{
	token.ADD:  rty.Add,
	token.SUB:  rty.Sub,
	token.MUL:  rty.Mul,
	token.QUO:  rty.Div,
	token.REM:  rty.Mod,
	token.EQL:  rty.Eq,
	token.NEQ:  rty.Ne,
	token.LSS:  rty.Lt,
	token.LEQ:  rty.Le,
	token.GTR:  rty.Gt,
	token.GEQ:  rty.Ge,
	token.LAND: rty.And,
	token.LOR:  rty.Or,
}

var callOps = map[string]rty.BinOp{
	"implies": rty.Imp,
	"iff":     rty.Iff,
}

// parseExpr parses a refinement expression written with Go operators.
// Implication and equivalence are written implies(p, q) and iff(p, q).
func parseExpr(src string, sc scope) (rty.Expr, error) {
	node, err := parser.ParseExpr(src)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing `%s`", src)
	}
	e, err := convertExpr(node, sc)
	if err != nil {
		return nil, errors.Wrapf(err, "in `%s`", src)
	}
	return e, nil
}

func parseExprs(srcs []string, sc scope) ([]rty.Expr, error) {
	exprs := make([]rty.Expr, len(srcs))
	for i, src := range srcs {
		e, err := parseExpr(src, sc)
		if err != nil {
			return nil, err
		}
		exprs[i] = e
	}
	return exprs, nil
}

func convertExpr(node ast.Expr, sc scope) (rty.Expr, error) {
	switch n := node.(type) {
	case *ast.ParenExpr:
		return convertExpr(n.X, sc)
	case *ast.BasicLit:
		if n.Kind != token.INT {
			return nil, errors.Errorf("unsupported literal %s", n.Value)
		}
		v, ok := math.ParseBig256(n.Value)
		if !ok {
			return nil, errors.Errorf("invalid integer %s", n.Value)
		}
		return rty.EBig(v), nil
	case *ast.Ident:
		if e, ok := sc[n.Name]; ok {
			return e, nil
		}
		switch n.Name {
		case "true":
			return rty.EBool(true), nil
		case "false":
			return rty.EBool(false), nil
		}
		return nil, errors.Errorf("unknown name `%s`", n.Name)
	case *ast.UnaryExpr:
		operand, err := convertExpr(n.X, sc)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case token.SUB:
			return rty.EUn(rty.Neg, operand), nil
		case token.NOT:
			return rty.EUn(rty.Not, operand), nil
		case token.ADD:
			return operand, nil
		}
		return nil, errors.Errorf("unsupported operator %s", n.Op)
	case *ast.BinaryExpr:
		op, ok := binOps[n.Op]
		if !ok {
			return nil, errors.Errorf("unsupported operator %s", n.Op)
		}
		return convertBinary(op, n.X, n.Y, sc)
	case *ast.CallExpr:
		fun, ok := n.Fun.(*ast.Ident)
		if !ok {
			return nil, errors.New("unsupported call")
		}
		op, ok := callOps[fun.Name]
		if !ok {
			return nil, errors.Errorf("unknown function `%s`", fun.Name)
		}
		if len(n.Args) != 2 {
			return nil, errors.Errorf("`%s` takes 2 arguments, got %d", fun.Name, len(n.Args))
		}
		return convertBinary(op, n.Args[0], n.Args[1], sc)
	}
	return nil, errors.Errorf("unsupported expression %T", node)
}

func convertBinary(op rty.BinOp, x, y ast.Expr, sc scope) (rty.Expr, error) {
	left, err := convertExpr(x, sc)
	if err != nil {
		return nil, err
	}
	right, err := convertExpr(y, sc)
	if err != nil {
		return nil, err
	}
	return rty.EBin(op, left, right), nil
}
