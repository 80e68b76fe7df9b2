// Package diag renders user-facing verification failures.
package diag

import (
	"fmt"
)

// Span is a source position in a declaration file.
type Span struct {
	File   string
	Line   int
	Column int
}

var DummySpan = Span{}

func (s Span) IsDummy() bool {
	return s == DummySpan
}

func (s Span) String() string {
	if s.IsDummy() {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

const (
	// CodeInvalidInvariant is reported when a declared ADT invariant does not
	// follow from the fields of some variant.
	CodeInvalidInvariant = "E0999"
)

type Diagnostic struct {
	Code    string
	Title   string
	Message string
	Span    Span

	// Notes holds secondary lines, e.g. counterexample bindings.
	Notes []string
}

func (d *Diagnostic) String() string {
	header := fmt.Sprintf("error[%s]: %s\n", d.Code, d.Title)
	header = Colour(31, header)

	body := fmt.Sprintf("  --> %s\n", d.Span)
	if d.Message != "" {
		body += fmt.Sprintf("  %s\n", d.Message)
	}
	for _, note := range d.Notes {
		body += fmt.Sprintf("  = note: %s\n", note)
	}
	return header + Colour(33, body)
}

func Colour(color int, str string) string {
	return fmt.Sprintf("\033[%dm%s\033[0m", color, str)
}
