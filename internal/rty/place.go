package rty

import (
	"fmt"
	"strings"
)

// PlaceElem is one step of an access path.
type PlaceElem interface {
	placeElem()
	fmt.Stringer
}

type FieldElem struct {
	Index int
}

type DerefElem struct{}

type DowncastElem struct {
	Variant VariantIdx
}

func (FieldElem) placeElem()    {}
func (DerefElem) placeElem()    {}
func (DowncastElem) placeElem() {}

func (e FieldElem) String() string    { return fmt.Sprintf(".%d", e.Index) }
func (DerefElem) String() string      { return "*" }
func (e DowncastElem) String() string { return fmt.Sprintf(" as %d", e.Variant) }

// Place is a local followed by an access path.
type Place struct {
	Local      uint32
	Projection []PlaceElem
}

func NewPlace(local uint32, projection ...PlaceElem) Place {
	return Place{Local: local, Projection: projection}
}

func (p Place) String() string {
	var sb strings.Builder
	derefs := 0
	for _, elem := range p.Projection {
		if _, ok := elem.(DerefElem); ok {
			derefs++
		}
	}
	sb.WriteString(strings.Repeat("(*", derefs))
	fmt.Fprintf(&sb, "_%d", p.Local)
	for _, elem := range p.Projection {
		switch elem := elem.(type) {
		case DerefElem:
			sb.WriteString(")")
		default:
			sb.WriteString(elem.String())
		}
	}
	return sb.String()
}
