package checker

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"refinecore/internal/bug"
	"refinecore/internal/heap"
	"refinecore/internal/refine"
	"refinecore/internal/rty"
)

// Unfold places a value of def in local _0, unfolds it as variant and
// folds it back. The returned text shows the heap after every step and
// the facts assumed about the fresh indices.
func Unfold(def *rty.AdtDef, variant rty.VariantIdx) (string, error) {
	if int(variant) < 0 || int(variant) >= len(def.Variants) {
		return "", errors.Errorf("`%s` has no variant %d", def.Name, variant)
	}
	generics := make([]rty.Ty, def.Generics)
	for i := range generics {
		generics[i] = rty.NewParam(i)
	}

	tree := refine.NewTree()
	rcx := tree.CtxtAtRoot()
	h := heap.NewPathsTree()
	path := rty.NewPath(rty.Local(0))
	h.Insert(path.Loc, rty.NewExists(rty.NewAdt(def, generics...), rty.PredTrue()))

	var sb strings.Builder
	fmt.Fprintf(&sb, "heap:\n%s", h)
	err := bug.Catch(func() {
		h.Unfold(rcx, path, variant)
		fmt.Fprintf(&sb, "unfold %s as %s:\n%s", path, def.Variant(variant).Name, h)
		h.Fold(path)
		fmt.Fprintf(&sb, "fold %s:\n%s", path, h)
	})
	if err != nil {
		return sb.String(), errors.Wrapf(err, "unfolding `%s`", def.Name)
	}
	fmt.Fprintf(&sb, "assumptions:\n%s", tree)
	return sb.String(), nil
}
