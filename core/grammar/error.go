package grammar

import (
	"fmt"
	"strings"

	errs "github.com/FocuswithJustin/pubid/core/errors"
)

// SyntaxError reports that no production consumed the whole input. Offset
// is the furthest byte offset any production reached; Expected lists what
// was attempted there.
type SyntaxError struct {
	Input    string
	Offset   int
	Expected []string
}

func (e *SyntaxError) Error() string {
	rest := e.Input[min(e.Offset, len(e.Input)):]
	near := "end of input"
	if rest != "" {
		near = fmt.Sprintf("%q", rest)
	}
	if len(e.Expected) == 0 {
		return fmt.Sprintf("syntax error at offset %d near %s", e.Offset, near)
	}
	return fmt.Sprintf("syntax error at offset %d near %s: expected %s",
		e.Offset, near, strings.Join(e.Expected, ", "))
}

// Unwrap lets callers test for errors.ErrInvalidInput.
func (e *SyntaxError) Unwrap() error {
	return errs.ErrInvalidInput
}
