package rty

import (
	"fmt"
	"strings"

	"refinecore/internal/bug"
)

// RefKind is the mode of a reference. Shared is weaker than mutable.
type RefKind int

const (
	Shr RefKind = iota
	Mut
)

// Min returns the weaker of the two modes.
func (k RefKind) Min(other RefKind) RefKind {
	if k < other {
		return k
	}
	return other
}

func (k RefKind) String() string {
	if k == Mut {
		return "mut"
	}
	return "shr"
}

type BaseTy interface {
	btyTag()
	// Sorts lists the sorts of the indices a value of this type carries.
	Sorts() []Sort
	fmt.Stringer
}

type btag struct{}

func (btag) btyTag() {}

type IntTy struct {
	btag
	Signed bool
	Bits   uint
}

type BoolTy struct {
	btag
}

type AdtTy struct {
	btag
	Def    *AdtDef
	Substs []Ty
}

func NewInt(bits uint) BaseTy  { return &IntTy{Signed: true, Bits: bits} }
func NewUint(bits uint) BaseTy { return &IntTy{Signed: false, Bits: bits} }
func NewBoolTy() BaseTy        { return &BoolTy{} }

func NewAdt(def *AdtDef, substs ...Ty) BaseTy {
	return &AdtTy{Def: def, Substs: append([]Ty(nil), substs...)}
}

func (b *IntTy) Sorts() []Sort  { return []Sort{IntSort} }
func (b *BoolTy) Sorts() []Sort { return []Sort{BoolSort} }
func (b *AdtTy) Sorts() []Sort  { return b.Def.Sorts }

func (b *IntTy) String() string {
	if b.Signed {
		return fmt.Sprintf("i%d", b.Bits)
	}
	return fmt.Sprintf("u%d", b.Bits)
}

func (b *BoolTy) String() string { return "bool" }

func (b *AdtTy) String() string {
	if len(b.Substs) == 0 {
		return b.Def.Name
	}
	parts := make([]string, len(b.Substs))
	for i, ty := range b.Substs {
		parts[i] = ty.String()
	}
	return fmt.Sprintf("%s<%s>", b.Def.Name, strings.Join(parts, ", "))
}

// SameBase reports whether a and b denote the same base type, ignoring the
// generic arguments of ADTs.
func SameBase(a, b BaseTy) bool {
	switch a := a.(type) {
	case *IntTy:
		b, ok := b.(*IntTy)
		return ok && a.Signed == b.Signed && a.Bits == b.Bits
	case *BoolTy:
		_, ok := b.(*BoolTy)
		return ok
	case *AdtTy:
		b, ok := b.(*AdtTy)
		return ok && a.Def.SameDef(b.Def)
	}
	bug.Panicf("unexpected base type %T", a)
	return false
}

// BaseTyEqual reports whether a and b are the same base type, generic
// arguments included.
func BaseTyEqual(a, b BaseTy) bool {
	if !SameBase(a, b) {
		return false
	}
	if a, ok := a.(*AdtTy); ok {
		b := b.(*AdtTy)
		return tysEqual(a.Substs, b.Substs)
	}
	return true
}

// Ty is a refined type: the type of a leaf in the symbolic heap.
type Ty interface {
	tyTag()
	fmt.Stringer
}

type ttag struct{}

func (ttag) tyTag() {}

// Indexed is a base type refined by one expression per index.
type Indexed struct {
	ttag
	Bty     BaseTy
	Indices []Expr
}

// Exists is a base type whose indices satisfy Pred. Inside Pred the i-th
// index is NuVar(i).
type Exists struct {
	ttag
	Bty  BaseTy
	Pred Pred
}

// Ptr points at a path of the symbolic heap.
type Ptr struct {
	ttag
	Path Path
}

type Ref struct {
	ttag
	Mode RefKind
	Ty   Ty
}

type Uninit struct {
	ttag
}

type Param struct {
	ttag
	Index int
}

func NewIndexed(bty BaseTy, indices ...Expr) Ty {
	return &Indexed{Bty: bty, Indices: append([]Expr(nil), indices...)}
}

func NewExists(bty BaseTy, pred Pred) Ty { return &Exists{Bty: bty, Pred: pred} }
func NewPtr(path Path) Ty                 { return &Ptr{Path: path} }
func NewRef(mode RefKind, ty Ty) Ty       { return &Ref{Mode: mode, Ty: ty} }
func NewUninit() Ty                       { return &Uninit{} }
func NewParam(index int) Ty               { return &Param{Index: index} }

func (t *Indexed) String() string {
	return fmt.Sprintf("%s[%s]", t.Bty, joinExprs(t.Indices))
}

func (t *Exists) String() string {
	sorts := t.Bty.Sorts()
	nus := make([]Expr, len(sorts))
	for i := range sorts {
		nus[i] = ENu(i)
	}
	return fmt.Sprintf("{%s[%s] | %s}", t.Bty, joinExprs(nus), t.Pred)
}

func (t *Ptr) String() string { return fmt.Sprintf("ptr(%s)", t.Path) }

func (t *Ref) String() string {
	if t.Mode == Mut {
		return fmt.Sprintf("&mut %s", t.Ty)
	}
	return fmt.Sprintf("&%s", t.Ty)
}

func (t *Uninit) String() string { return "uninit" }
func (t *Param) String() string  { return fmt.Sprintf("T%d", t.Index) }

func TyEqual(a, b Ty) bool {
	switch a := a.(type) {
	case *Indexed:
		b, ok := b.(*Indexed)
		return ok && BaseTyEqual(a.Bty, b.Bty) && exprsEqual(a.Indices, b.Indices)
	case *Exists:
		b, ok := b.(*Exists)
		return ok && BaseTyEqual(a.Bty, b.Bty) && PredEqual(a.Pred, b.Pred)
	case *Ptr:
		b, ok := b.(*Ptr)
		return ok && a.Path.Equal(b.Path)
	case *Ref:
		b, ok := b.(*Ref)
		return ok && a.Mode == b.Mode && TyEqual(a.Ty, b.Ty)
	case *Uninit:
		_, ok := b.(*Uninit)
		return ok
	case *Param:
		b, ok := b.(*Param)
		return ok && a.Index == b.Index
	}
	bug.Panicf("unexpected type %T", a)
	return false
}

func tysEqual(a, b []Ty) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !TyEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Downcast instantiates the fields of variant for an indexed ADT type by
// replacing the bound indices of the signature with the indices of ty. It
// reports false when ty is not an indexed ADT.
func Downcast(ty Ty, variant VariantIdx) (*AdtTy, []Ty, bool) {
	indexed, ok := ty.(*Indexed)
	if !ok {
		return nil, nil, false
	}
	adt, ok := indexed.Bty.(*AdtTy)
	if !ok {
		return nil, nil, false
	}
	return adt, adt.Def.InstantiateFields(variant, adt.Substs, indexed.Indices), true
}
