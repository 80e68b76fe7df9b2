package heap

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refinecore/internal/bug"
	"refinecore/internal/rty"
)

var deref = rty.DerefElem{}

func field(i int) rty.PlaceElem { return rty.FieldElem{Index: i} }

func Test_LookupField(t *testing.T) {
	tree := NewPathsTree()
	tree.Insert(rty.Local(0), pairTy(pairDef(), 1, 2))

	result := tree.LookupPlace(newRcx(), rty.NewPlace(0, field(1)))
	ptr, ok := result.(*PtrLookup)
	require.True(t, ok, "got %T", result)
	assert.Equal(t, "_0.1", ptr.Path.String())
	assert.True(t, rty.TyEqual(i32(rty.EInt(2)), ptr.Ty()))

	ptr.Update(i32(rty.EInt(5)))
	assert.True(t, rty.TyEqual(i32(rty.EInt(5)), tree.MustGet(rty.NewPath(rty.Local(0), 1))))
}

func Test_LookupSharedRef(t *testing.T) {
	tree := NewPathsTree()
	tree.Insert(rty.Local(0), rty.NewRef(rty.Shr, pairTy(pairDef(), 1, 2)))
	before := tree.Clone()

	result := tree.LookupPlace(newRcx(), rty.NewPlace(0, deref, field(1)))
	_, isPtr := result.(*PtrLookup)
	assert.False(t, isPtr)
	ref, ok := result.(*RefLookup)
	require.True(t, ok)
	assert.Equal(t, rty.Shr, ref.Mode)
	assert.True(t, rty.TyEqual(i32(rty.EInt(2)), ref.Ty()))

	// nothing behind a reference is unfolded in the tree
	assert.True(t, tree.Equal(before))
}

func Test_LookupPointerChain(t *testing.T) {
	tree := NewPathsTree()
	tree.Insert(rty.Local(0), pairTy(pairDef(), 1, 2))
	tree.Insert(rty.Local(1), rty.NewPtr(rty.NewPath(rty.Local(0))))
	tree.Insert(rty.Local(2), rty.NewPtr(rty.NewPath(rty.Local(1))))

	result := tree.LookupPlace(newRcx(), rty.NewPlace(2, deref, deref, field(1)))
	ptr, ok := result.(*PtrLookup)
	require.True(t, ok, "got %T", result)
	assert.Equal(t, "_0.1", ptr.Path.String())

	ptr.Update(i32(rty.EInt(9)))
	assert.True(t, rty.TyEqual(i32(rty.EInt(9)), tree.MustGet(rty.NewPath(rty.Local(0), 1))))
}

func Test_LookupFoldsAtDeref(t *testing.T) {
	pair := pairDef()
	tree := NewPathsTree()
	tree.Insert(rty.Local(0), pairTy(pair, 1, 2))
	tree.Insert(rty.Local(1), rty.NewPtr(rty.NewPath(rty.Local(0))))
	tree.Unfold(newRcx(), rty.NewPath(rty.Local(0)), 0)
	tree.Update(rty.NewPath(rty.Local(0), 0), i32(rty.EInt(3)))

	result := tree.LookupPlace(newRcx(), rty.NewPlace(1, deref))
	require.IsType(t, &PtrLookup{}, result)
	assert.True(t, rty.TyEqual(pairTy(pair, 3, 2), result.Ty()))

	node, ok := tree.GetNode(rty.NewPath(rty.Local(0)))
	require.True(t, ok)
	assert.IsType(t, &TyNode{}, node)
}

func Test_LookupStaleHandle(t *testing.T) {
	pair := pairDef()
	tree := NewPathsTree()
	tree.Insert(rty.Local(0), pairTy(pair, 1, 2))
	tree.Insert(rty.Local(1), rty.NewPtr(rty.NewPath(rty.Local(0))))

	result := tree.LookupPlace(newRcx(), rty.NewPlace(0, field(1)))
	ptr, ok := result.(*PtrLookup)
	require.True(t, ok, "got %T", result)

	// dereferencing _1 folds _0 and the handle on _0.1 goes stale
	tree.LookupPlace(newRcx(), rty.NewPlace(1, deref))
	err := bug.Catch(func() { ptr.Update(i32(rty.EInt(42))) })
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "no entry found for path `_0.1`")
	assert.True(t, rty.TyEqual(pairTy(pair, 1, 2), tree.MustGet(rty.NewPath(rty.Local(0)))))

	result = tree.LookupPlace(newRcx(), rty.NewPlace(0, field(1)))
	result.(*PtrLookup).Update(i32(rty.EInt(42)))
	assert.True(t, rty.TyEqual(pairTy(pair, 1, 42), tree.Fold(rty.NewPath(rty.Local(0)))))
}

func Test_LookupRefToPtr(t *testing.T) {
	tree := NewPathsTree()
	tree.Insert(rty.Local(0), pairTy(pairDef(), 1, 2))
	tree.Insert(rty.Local(1), rty.NewRef(rty.Shr, rty.NewPtr(rty.NewPath(rty.Local(0)))))

	result := tree.LookupPlace(newRcx(), rty.NewPlace(1, deref, deref, field(0)))
	ref, ok := result.(*RefLookup)
	require.True(t, ok, "got %T", result)
	assert.Equal(t, rty.Shr, ref.Mode)
	assert.True(t, rty.TyEqual(i32(rty.EInt(1)), ref.Ty()))
}

func Test_LookupDowncast(t *testing.T) {
	shape := shapeDef()
	tree := NewPathsTree()
	tree.Insert(rty.Local(0), rty.NewIndexed(rty.NewAdt(shape), rty.EInt(3)))
	tree.Insert(rty.Local(1), rty.NewRef(rty.Mut, rty.NewIndexed(rty.NewAdt(shape), rty.EInt(4))))

	result := tree.LookupPlace(newRcx(), rty.NewPlace(0, rty.DowncastElem{Variant: 1}, field(1)))
	ptr, ok := result.(*PtrLookup)
	require.True(t, ok, "got %T", result)
	assert.Equal(t, "_0.1", ptr.Path.String())
	assert.True(t, rty.TyEqual(rty.NewIndexed(rty.NewUint(32), rty.EInt(3)), ptr.Ty()))
	assert.Len(t, tree.Paths(), 4)

	result = tree.LookupPlace(newRcx(), rty.NewPlace(1, deref, rty.DowncastElem{Variant: 1}, field(2)))
	ref, ok := result.(*RefLookup)
	require.True(t, ok, "got %T", result)
	assert.Equal(t, rty.Mut, ref.Mode)
	assert.True(t, rty.TyEqual(rty.NewIndexed(rty.NewBoolTy(), rty.EBool(true)), ref.Ty()))

	// a record cannot be re-read as another variant
	assert.NotNil(t, bug.Catch(func() {
		tree.LookupPlace(newRcx(), rty.NewPlace(0, rty.DowncastElem{Variant: 0}, field(0)))
	}))
}

func Test_LookupExistsBehindRef(t *testing.T) {
	pair := pairDef()
	ex := rty.NewExists(rty.NewAdt(pair), rty.PredOf(rty.EBin(rty.Lt, rty.ENu(0), rty.ENu(1))))
	tree := NewPathsTree()
	tree.Insert(rty.Local(0), rty.NewRef(rty.Shr, ex))

	result := tree.LookupPlace(newRcx(), rty.NewPlace(0, deref, field(1)))
	ty, ok := result.Ty().(*rty.Indexed)
	require.True(t, ok, "got %s", result.Ty())
	require.Len(t, ty.Indices, 1)
	v, ok := ty.Indices[0].(*rty.ExprVar)
	require.True(t, ok)
	assert.True(t, v.Var.IsFree())
}

func Test_LookupDerefNonPointer(t *testing.T) {
	tree := NewPathsTree()
	tree.Insert(rty.Local(0), i32(rty.EInt(1)))
	tree.Insert(rty.Local(1), rty.NewRef(rty.Shr, i32(rty.EInt(1))))

	err := bug.Catch(func() { tree.LookupPlace(newRcx(), rty.NewPlace(0, deref)) })
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "cannot be dereferenced")

	assert.NotNil(t, bug.Catch(func() { tree.LookupPlace(newRcx(), rty.NewPlace(1, deref, deref)) }))
	assert.NotNil(t, bug.Catch(func() { tree.LookupPlace(newRcx(), rty.NewPlace(3)) }))
}

func Test_LookupModeWeakens(t *testing.T) {
	modes := []rty.RefKind{rty.Shr, rty.Mut}
	var combos [][]rty.RefKind
	var gen func(prefix []rty.RefKind)
	gen = func(prefix []rty.RefKind) {
		if len(prefix) > 0 {
			combos = append(combos, append([]rty.RefKind(nil), prefix...))
		}
		if len(prefix) == 3 {
			return
		}
		for _, m := range modes {
			gen(append(prefix, m))
		}
	}
	gen(nil)
	require.Len(t, combos, 2+4+8)

	for _, combo := range combos {
		t.Run(fmt.Sprint(combo), func(t *testing.T) {
			ty := i32(rty.EInt(1))
			want := rty.Mut
			for i := len(combo) - 1; i >= 0; i-- {
				ty = rty.NewRef(combo[i], ty)
				want = want.Min(combo[i])
			}
			tree := NewPathsTree()
			tree.Insert(rty.Local(0), ty)

			proj := make([]rty.PlaceElem, len(combo))
			for i := range proj {
				proj[i] = deref
			}
			result := tree.LookupPlace(newRcx(), rty.NewPlace(0, proj...))
			ref, ok := result.(*RefLookup)
			require.True(t, ok)
			assert.Equal(t, want, ref.Mode)
			assert.True(t, rty.TyEqual(i32(rty.EInt(1)), ref.Ty()))
		})
	}
}
