package heap

import (
	"refinecore/internal/refine"
	"refinecore/internal/rty"
)

func i32(e rty.Expr) rty.Ty {
	return rty.NewIndexed(rty.NewInt(32), e)
}

func newRcx() *refine.Ctxt {
	return refine.NewTree().CtxtAtRoot()
}

// Pair[a, b] { i32[a], i32[b] }
func pairDef() *rty.AdtDef {
	return &rty.AdtDef{
		Name:   "Pair",
		Params: []string{"a", "b"},
		Sorts:  []rty.Sort{rty.IntSort, rty.IntSort},
		Variants: []*rty.VariantDef{{
			Name:   "Pair",
			Fields: []rty.Ty{i32(rty.EBound(0)), i32(rty.EBound(1))},
		}},
	}
}

func pairTy(def *rty.AdtDef, a, b int64) rty.Ty {
	return rty.NewIndexed(rty.NewAdt(def), rty.EInt(a), rty.EInt(b))
}

// Shape[n] = Circle { i32[n] } | Rect { i32[n], u32[n], bool[true] }
func shapeDef() *rty.AdtDef {
	return &rty.AdtDef{
		Name:   "Shape",
		Params: []string{"n"},
		Sorts:  []rty.Sort{rty.IntSort},
		Variants: []*rty.VariantDef{
			{Name: "Circle", Fields: []rty.Ty{i32(rty.EBound(0))}},
			{Name: "Rect", Fields: []rty.Ty{
				i32(rty.EBound(0)),
				rty.NewIndexed(rty.NewUint(32), rty.EBound(0)),
				rty.NewIndexed(rty.NewBoolTy(), rty.EBool(true)),
			}},
		},
	}
}

// Wrap[n] { Pair[n, 0] }
func wrapDef(pair *rty.AdtDef) *rty.AdtDef {
	return &rty.AdtDef{
		Name:   "Wrap",
		Params: []string{"n"},
		Sorts:  []rty.Sort{rty.IntSort},
		Variants: []*rty.VariantDef{{
			Name:   "Wrap",
			Fields: []rty.Ty{rty.NewIndexed(rty.NewAdt(pair), rty.EBound(0), rty.EInt(0))},
		}},
	}
}

// Box<T>[n] { T, i32[n] }
func boxDef() *rty.AdtDef {
	return &rty.AdtDef{
		Name:     "Box",
		Params:   []string{"n"},
		Sorts:    []rty.Sort{rty.IntSort},
		Generics: 1,
		Variants: []*rty.VariantDef{{
			Name:   "Box",
			Fields: []rty.Ty{rty.NewParam(0), i32(rty.EBound(0))},
		}},
	}
}

// Holder[n] { &i32[n] }
func holderDef(mode rty.RefKind) *rty.AdtDef {
	return &rty.AdtDef{
		Name:   "Holder",
		Params: []string{"n"},
		Sorts:  []rty.Sort{rty.IntSort},
		Variants: []*rty.VariantDef{{
			Name:   "Holder",
			Fields: []rty.Ty{rty.NewRef(mode, i32(rty.EBound(0)))},
		}},
	}
}

// Ghost[n, m] { i32[n] }: m appears in no field.
func ghostDef() *rty.AdtDef {
	return &rty.AdtDef{
		Name:   "Ghost",
		Params: []string{"n", "m"},
		Sorts:  []rty.Sort{rty.IntSort, rty.IntSort},
		Variants: []*rty.VariantDef{{
			Name:   "Ghost",
			Fields: []rty.Ty{i32(rty.EBound(0))},
		}},
	}
}

// Nat[n] = Zero {} -> [0] | Succ { Nat[n] } -> [n + 1]
func natDef() *rty.AdtDef {
	def := &rty.AdtDef{
		Name:   "Nat",
		Params: []string{"n"},
		Sorts:  []rty.Sort{rty.IntSort},
	}
	def.Variants = []*rty.VariantDef{
		{Name: "Zero", Ret: []rty.Expr{rty.EInt(0)}},
		{
			Name:   "Succ",
			Fields: []rty.Ty{rty.NewIndexed(rty.NewAdt(def), rty.EBound(0))},
			Ret:    []rty.Expr{rty.EBin(rty.Add, rty.EBound(0), rty.EInt(1))},
		},
	}
	return def
}

func fixtureDefs() []*rty.AdtDef {
	pair := pairDef()
	return []*rty.AdtDef{pair, shapeDef(), wrapDef(pair), boxDef(), holderDef(rty.Shr), ghostDef(), natDef()}
}
