// Package errors defines the two error kinds produced by the LESS
// compilation pipeline: syntactic ParseError and semantic EvalError.
package errors

import "fmt"

// Kind categorizes a CompileError.
type Kind string

const (
	// KindParse marks a syntactic failure raised by the parser.
	KindParse Kind = "parse"
	// KindEval marks a semantic failure raised by the importer or evaluator:
	// undefined variables, unmatched mixins, malformed color arguments,
	// cycles, and the like.
	KindEval Kind = "eval"
)

// CompileError is the single error type returned by every stage of the
// pipeline. Offset is a byte offset into the source and is only meaningful
// for ParseErrors; it is zero when not applicable.
type CompileError struct {
	Kind    Kind
	Message string
	Offset  int
	Cause   error
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Kind == KindParse {
		return fmt.Sprintf("parse error at offset %d: %s", e.Offset, e.Message)
	}
	return fmt.Sprintf("eval error: %s", e.Message)
}

// Unwrap allows errors.Is/As to reach a wrapped cause.
func (e *CompileError) Unwrap() error { return e.Cause }

// Parse builds a ParseError at the given byte offset.
func Parse(offset int, format string, args ...any) *CompileError {
	return &CompileError{Kind: KindParse, Message: fmt.Sprintf(format, args...), Offset: offset}
}

// Eval builds an EvalError.
func Eval(format string, args ...any) *CompileError {
	return &CompileError{Kind: KindEval, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an EvalError that carries an underlying cause, e.g. a
// filesystem error from the import resolver.
func Wrap(cause error, format string, args ...any) *CompileError {
	return &CompileError{Kind: KindEval, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// IsParse reports whether err is a ParseError.
func IsParse(err error) bool {
	ce, ok := err.(*CompileError)
	return ok && ce.Kind == KindParse
}

// IsEval reports whether err is an EvalError.
func IsEval(err error) bool {
	ce, ok := err.(*CompileError)
	return ok && ce.Kind == KindEval
}
