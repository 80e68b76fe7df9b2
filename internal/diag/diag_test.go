package diag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_SpanString(t *testing.T) {
	assert.Equal(t, "<unknown>", DummySpan.String())
	assert.True(t, DummySpan.IsDummy())

	s := Span{File: "adts.yaml", Line: 4, Column: 9}
	assert.Equal(t, "adts.yaml:4:9", s.String())
	assert.False(t, s.IsDummy())
}

func Test_DiagnosticString(t *testing.T) {
	d := &Diagnostic{
		Code:    CodeInvalidInvariant,
		Title:   "invalid type invariant",
		Message: "invariant `a >= 0` of `Pos` may not hold",
		Span:    Span{File: "adts.yaml", Line: 4, Column: 9},
		Notes:   []string{"a0 = -1"},
	}
	out := d.String()
	assert.True(t, strings.HasPrefix(out, "\033[31merror[E0999]"))
	assert.Contains(t, out, "--> adts.yaml:4:9")
	assert.Contains(t, out, "= note: a0 = -1")
}
