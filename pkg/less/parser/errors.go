package parser

import lerrors "github.com/sambeau/lessgo/pkg/less/errors"

func newParseError(offset int, format string, args ...any) *lerrors.CompileError {
	return lerrors.Parse(offset, format, args...)
}
