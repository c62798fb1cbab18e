// Package less provides a public API for embedding the LESS-to-CSS
// compiler: parse, resolve imports, evaluate, and serialize one stylesheet.
package less

import (
	"os"
	"path/filepath"

	"github.com/sambeau/lessgo/pkg/less/evaluator"
	"github.com/sambeau/lessgo/pkg/less/importer"
	"github.com/sambeau/lessgo/pkg/less/parser"
	"github.com/sambeau/lessgo/pkg/less/serializer"
)

// Options controls how a source is compiled. The zero value compiles with
// pretty output, no import search path, and the current working directory
// as the base for relative imports.
type Options struct {
	// Minify selects minified output over pretty output.
	Minify bool
	// CurrentDir is the base directory relative imports are resolved
	// against. If empty and Filename is set, its parent directory is used.
	CurrentDir string
	// IncludePaths are additional directories searched, in order, when an
	// import is not found relative to CurrentDir.
	IncludePaths []string
	// Filename, if set, names the source being compiled so CurrentDir can
	// default to its parent directory.
	Filename string
}

func (o Options) resolvedCurrentDir() string {
	if o.CurrentDir != "" {
		return o.CurrentDir
	}
	if o.Filename != "" {
		return filepath.Dir(o.Filename)
	}
	return "."
}

// Compile parses source, inlines its imports, evaluates it, and renders the
// result as CSS.
func Compile(source string, opts Options) (string, error) {
	p := parser.New()
	sheet, err := p.Parse(source)
	if err != nil {
		return "", err
	}

	expanded, err := importer.Expand(p, sheet, opts.resolvedCurrentDir(), opts.IncludePaths)
	if err != nil {
		return "", err
	}

	out, err := evaluator.New().Evaluate(expanded)
	if err != nil {
		return "", err
	}

	return serializer.New(opts.Minify).ToCSS(out), nil
}

// CompileFile reads path as UTF-8 and compiles it. If opts.Filename and
// opts.CurrentDir are both unset, they default to path and path's parent
// directory respectively.
func CompileFile(path string, opts Options) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if opts.Filename == "" {
		opts.Filename = path
	}
	return Compile(string(data), opts)
}
