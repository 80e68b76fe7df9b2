package heap

import (
	log "github.com/sirupsen/logrus"

	"refinecore/internal/bug"
	"refinecore/internal/rty"
)

// LookupResult is what a place resolves to: a PtrLookup when the place is
// reachable without crossing a reference, a RefLookup otherwise.
type LookupResult interface {
	lookupResult()
	Ty() rty.Ty
}

// PtrLookup is a handle on a leaf of the tree. Reads and updates go through
// the tree, so a handle whose path was folded away is a violation.
type PtrLookup struct {
	Path rty.Path
	tree *PathsTree
}

// RefLookup is a copy of the type found behind a reference. It offers no
// way to write back: updates through references go through their types.
type RefLookup struct {
	Mode rty.RefKind
	ty   rty.Ty
}

func (*PtrLookup) lookupResult() {}
func (*RefLookup) lookupResult() {}

func (r *PtrLookup) Ty() rty.Ty { return r.tree.MustGet(r.Path) }
func (r *RefLookup) Ty() rty.Ty { return r.ty }

func (r *PtrLookup) Update(ty rty.Ty) {
	r.tree.Update(r.Path, ty)
}

// LookupPlace resolves place, unfolding the tree along field and downcast
// projections and folding it at every dereference.
func (t *PathsTree) LookupPlace(rcx RefineCtxt, place rty.Place) LookupResult {
	result := t.lookup(rcx, rty.NewPath(rty.Local(place.Local)), place.Projection)
	log.Debugf("lookup %s: %s", place, result.Ty())
	return result
}

func (t *PathsTree) lookup(rcx RefineCtxt, path rty.Path, proj []rty.PlaceElem) LookupResult {
	for {
		path = rty.NewPath(path.Loc, path.Proj...)
		c := t.cursorAt(rcx, path)
	walk:
		for len(proj) > 0 {
			switch elem := proj[0].(type) {
			case rty.FieldElem:
				c = c.proj(rcx, elem.Index)
				path = path.Field(elem.Index)
			case rty.DowncastElem:
				c.unfold(rcx, elem.Variant)
			case rty.DerefElem:
				break walk
			default:
				bug.Panicf("unexpected place element %T", elem)
			}
			proj = proj[1:]
		}

		leaf := c.fold()
		if len(proj) == 0 {
			return &PtrLookup{Path: path, tree: t}
		}
		proj = proj[1:]
		switch ty := leaf.Ty.(type) {
		case *rty.Ptr:
			path = ty.Path
		case *rty.Ref:
			return t.lookupRef(rcx, ty.Mode, ty.Ty, proj)
		default:
			bug.Panicf("type cannot be dereferenced `%s`", leaf.Ty)
		}
	}
}

// lookupRef projects proj out of ty, the target of a reference of the given
// mode. The mode only weakens along the way.
func (t *PathsTree) lookupRef(rcx RefineCtxt, mode rty.RefKind, ty rty.Ty, proj []rty.PlaceElem) LookupResult {
	variant := rty.VariantIdx(0)
	for len(proj) > 0 {
		elem := proj[0]
		proj = proj[1:]
		switch elem := elem.(type) {
		case rty.DerefElem:
			switch target := ty.(type) {
			case *rty.Ref:
				mode = mode.Min(target.Mode)
				ty = target.Ty
			case *rty.Ptr:
				switch r := t.lookup(rcx, target.Path, proj).(type) {
				case *PtrLookup:
					return &RefLookup{Mode: mode, ty: r.Ty()}
				case *RefLookup:
					return &RefLookup{Mode: mode.Min(r.Mode), ty: r.ty}
				default:
					bug.Panicf("unexpected lookup result %T", r)
				}
			default:
				bug.Panicf("type cannot be dereferenced `%s`", ty)
			}
		case rty.FieldElem:
			if ex, ok := ty.(*rty.Exists); ok {
				ty = unpack(rcx, ex)
			}
			adt, fields, ok := downcast(rcx, ty, variant)
			if !ok {
				bug.Panicf("type `%s` has no field %d", ty, elem.Index)
			}
			bug.Assert(elem.Index >= 0 && elem.Index < len(fields),
				"field %d out of range for `%s` with %d fields", elem.Index, adt, len(fields))
			ty = fields[elem.Index]
			variant = 0
		case rty.DowncastElem:
			variant = elem.Variant
		default:
			bug.Panicf("unexpected place element %T", elem)
		}
	}
	return &RefLookup{Mode: mode, ty: ty}
}
