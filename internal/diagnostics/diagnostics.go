// Package diagnostics carries structured parse/eval errors with enough
// position information to render as LSP-style diagnostics or inline HTML.
package diagnostics

import (
	"fmt"

	"github.com/daios-ai/liveeval/internal/token"
)

// Code is a short machine-readable diagnostic category.
type Code string

const (
	CodeParseError Code = "parse-error"
	CodeEvalError  Code = "eval-error"
)

// DiagnosticError is a single parse or evaluation failure pinned to a
// source position. evalFun implementations encode these into their Result
// rather than returning a Go error (spec: "User code failure inside
// evalFun: must be caught by evalFun itself").
type DiagnosticError struct {
	Code    Code
	Pos     token.Position
	Message string
}

func (d *DiagnosticError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", d.Code, d.Message, d.Pos)
}

func New(code Code, pos token.Position, format string, args ...any) *DiagnosticError {
	return &DiagnosticError{Code: code, Pos: pos, Message: fmt.Sprintf(format, args...)}
}
