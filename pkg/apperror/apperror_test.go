package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorString(t *testing.T) {
	e := New(CodeInvalidInput, "bad index")
	assert.Equal(t, "[INVALID_INPUT] bad index", e.Error())
	assert.Equal(t, SeverityError, e.Severity)

	e = NewWithField(CodeUnknownMode, "unknown path mode x", "mode")
	assert.Equal(t, "[UNKNOWN_MODE] unknown path mode x (field: mode)", e.Error())
}

func TestIsAndCode(t *testing.T) {
	cause := errors.New("disk")
	e := Wrap(cause, CodeInternal, "write failed")
	wrapped := fmt.Errorf("save: %w", e)

	assert.True(t, Is(wrapped, CodeInternal))
	assert.False(t, Is(wrapped, CodeInvalidInput))
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, CodeInternal, Code(wrapped))
	assert.Equal(t, CodeInternal, Code(errors.New("plain")))
	assert.Equal(t, CodeAttributeNotFound, Code(New(CodeAttributeNotFound, "x")))
}

func TestDetails(t *testing.T) {
	e := New(CodeInvalidInput, "out of range").WithDetails("index", 7).WithField("from")
	assert.Equal(t, 7, e.Details["index"])
	assert.Equal(t, "from", e.Field)
}

func TestWarnings(t *testing.T) {
	var w Warnings
	assert.False(t, w.Has(CodeFromNarrowed))

	got := w.Add(CodeFromNarrowed, "%d sources given", 2)
	assert.Equal(t, SeverityWarning, got.Severity)
	assert.Equal(t, "2 sources given", got.Message)

	var more Warnings
	more.Add(CodeMultipleMatches, "a")
	more.Add(CodeMultipleMatches, "b")
	w.Merge(more)

	assert.True(t, w.Has(CodeMultipleMatches))
	assert.Equal(t, 2, w.Count(CodeMultipleMatches))
	assert.Equal(t, []string{
		"[FROM_NARROWED] 2 sources given",
		"[MULTIPLE_MATCHES] a",
		"[MULTIPLE_MATCHES] b",
	}, w.Messages())
	assert.Equal(t, "[FROM_NARROWED] 2 sources given; [MULTIPLE_MATCHES] a; [MULTIPLE_MATCHES] b", w.String())
}
