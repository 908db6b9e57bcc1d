package apperror

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Warnings collects advisory conditions raised while an operation runs.
// The zero value is ready to use.
type Warnings []*Error

// Add records a warning and logs it at warn level.
func (w *Warnings) Add(code ErrorCode, format string, args ...any) *Error {
	e := NewWarning(code, fmt.Sprintf(format, args...))
	*w = append(*w, e)
	zap.L().Warn(e.Message, zap.String("code", string(code)))
	return e
}

// Merge appends other to w.
func (w *Warnings) Merge(other Warnings) {
	*w = append(*w, other...)
}

// Has reports whether a warning with code was recorded.
func (w Warnings) Has(code ErrorCode) bool {
	for _, e := range w {
		if e.Code == code {
			return true
		}
	}
	return false
}

// Count returns the number of warnings with code.
func (w Warnings) Count(code ErrorCode) int {
	n := 0
	for _, e := range w {
		if e.Code == code {
			n++
		}
	}
	return n
}

// Messages returns the warning messages in the order they were raised.
func (w Warnings) Messages() []string {
	out := make([]string, len(w))
	for i, e := range w {
		out[i] = e.Error()
	}
	return out
}

func (w Warnings) String() string {
	return strings.Join(w.Messages(), "; ")
}
