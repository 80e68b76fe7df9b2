package rty

import (
	"fmt"
	"strings"
)

type LocKind uint8

const (
	LocalLoc LocKind = iota
	// FreeLoc is a heap cell named by a refinement variable, e.g. the
	// target of a pointer.
	FreeLoc
)

// Loc identifies a root storage cell of the symbolic heap.
type Loc struct {
	Kind  LocKind
	Index uint32
}

func Local(local uint32) Loc { return Loc{Kind: LocalLoc, Index: local} }
func FreeLocOf(name Name) Loc { return Loc{Kind: FreeLoc, Index: uint32(name)} }

func (l Loc) String() string {
	if l.Kind == FreeLoc {
		return fmt.Sprintf("l%d", l.Index)
	}
	return fmt.Sprintf("_%d", l.Index)
}

// Less orders locals before free locations.
func (l Loc) Less(other Loc) bool {
	if l.Kind != other.Kind {
		return l.Kind < other.Kind
	}
	return l.Index < other.Index
}

// Path is a location followed by field projections only.
type Path struct {
	Loc  Loc
	Proj []int
}

func NewPath(loc Loc, proj ...int) Path {
	return Path{Loc: loc, Proj: append([]int(nil), proj...)}
}

// Field returns the path extended by field f. The receiver is not modified.
func (p Path) Field(f int) Path {
	proj := make([]int, len(p.Proj), len(p.Proj)+1)
	copy(proj, p.Proj)
	return Path{Loc: p.Loc, Proj: append(proj, f)}
}

func (p Path) Equal(other Path) bool {
	if p.Loc != other.Loc || len(p.Proj) != len(other.Proj) {
		return false
	}
	for i := range p.Proj {
		if p.Proj[i] != other.Proj[i] {
			return false
		}
	}
	return true
}

func (p Path) String() string {
	var sb strings.Builder
	sb.WriteString(p.Loc.String())
	for _, f := range p.Proj {
		fmt.Fprintf(&sb, ".%d", f)
	}
	return sb.String()
}
