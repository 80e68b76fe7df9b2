package rty

import (
	"fmt"

	"refinecore/internal/bug"
	"refinecore/internal/diag"
)

type VariantIdx int

// AdtDef declares an algebraic data type refined by len(Sorts) indices.
// Field signatures refer to the i-th index as BoundVar(i) and to the i-th
// generic argument as Param(i).
type AdtDef struct {
	Name string
	// Params names the indices, for printing and parsing only.
	Params     []string
	Sorts      []Sort
	Generics   int
	Variants   []*VariantDef
	Invariants []*Invariant
}

type VariantDef struct {
	Name   string
	Fields []Ty
	// Ret is the index tuple the variant produces. Nil means the identity
	// tuple BoundVar(0)..BoundVar(n-1).
	Ret []Expr
}

// Invariant is a predicate over the bound indices of its ADT.
type Invariant struct {
	Pred Expr
	Span diag.Span
}

func (d *AdtDef) SameDef(other *AdtDef) bool {
	return d == other || d.Name == other.Name
}

func (d *AdtDef) String() string {
	return d.Name
}

func (d *AdtDef) Variant(idx VariantIdx) *VariantDef {
	if int(idx) < 0 || int(idx) >= len(d.Variants) {
		bug.Panicf("variant %d out of range for `%s` with %d variants", idx, d.Name, len(d.Variants))
	}
	return d.Variants[idx]
}

func (d *AdtDef) VariantIndices() []VariantIdx {
	indices := make([]VariantIdx, len(d.Variants))
	for i := range d.Variants {
		indices[i] = VariantIdx(i)
	}
	return indices
}

// RetIndices returns the index tuple of variant v in terms of the bound
// indices of d.
func (d *AdtDef) RetIndices(v *VariantDef) []Expr {
	if v.Ret != nil {
		return v.Ret
	}
	ret := make([]Expr, len(d.Sorts))
	for i := range d.Sorts {
		ret[i] = EBound(i)
	}
	return ret
}

// InstantiateFields replaces the bound indices and generic parameters of the
// field signature of variant.
func (d *AdtDef) InstantiateFields(variant VariantIdx, substs []Ty, indices []Expr) []Ty {
	v := d.Variant(variant)
	bug.Assert(len(indices) == len(d.Sorts),
		"`%s` expects %d indices, got %d", d.Name, len(d.Sorts), len(indices))
	inst := NewInstantiation(indices, substs)
	fields := make([]Ty, len(v.Fields))
	for i, field := range v.Fields {
		fields[i] = inst.Ty(field)
	}
	return fields
}

// Apply instantiates the invariant with the indices of a value.
func (inv *Invariant) Apply(indices []Expr) Pred {
	return PredOf(NewInstantiation(indices, nil).Expr(inv.Pred))
}

func (inv *Invariant) String() string {
	return fmt.Sprintf("%s @ %s", inv.Pred, inv.Span)
}
