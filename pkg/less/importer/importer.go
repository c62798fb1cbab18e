// Package importer inlines `@import` statements into a single flat list of
// statements, resolving relative paths against the importing file's
// directory and a configurable list of include paths, detecting import
// cycles, and caching each file's parse result for the lifetime of one
// Resolver.
package importer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sambeau/lessgo/pkg/less/ast"
	lerrors "github.com/sambeau/lessgo/pkg/less/errors"
)

// Parser is the subset of parser.Parser the importer depends on, kept as an
// interface so tests can supply a fake.
type Parser interface {
	Parse(input string) (*ast.Stylesheet, error)
}

// Resolver expands @import statements for one compilation. Its cache and
// cycle-detection stack are not meant to outlive a single call to Expand.
type Resolver struct {
	parser       Parser
	includePaths []string
	cache        map[string]*ast.Stylesheet
	stack        []string
	readFile     func(string) ([]byte, error)
}

// New builds a Resolver that reads files from disk.
func New(parser Parser, includePaths []string) *Resolver {
	return &Resolver{
		parser:       parser,
		includePaths: includePaths,
		cache:        make(map[string]*ast.Stylesheet),
		readFile:     os.ReadFile,
	}
}

// Expand recursively inlines every non-CSS @import in statements, returning
// the flattened statement list. currentDir anchors relative import paths and
// is empty for in-memory source with no associated file.
func (r *Resolver) Expand(statements []ast.Statement, currentDir string) ([]ast.Statement, error) {
	var result []ast.Statement
	for _, stmt := range statements {
		imp, isImport := stmt.(*ast.Import)
		if !isImport || imp.IsCSSPassthrough || !imp.HasPath {
			result = append(result, stmt)
			continue
		}

		resolved, err := r.resolvePath(imp.Path, currentDir)
		if err != nil {
			return nil, err
		}
		if contains(r.stack, resolved) {
			return nil, lerrors.Eval("import cycle detected: %s", resolved)
		}
		// A file already loaded by this Resolver has been inlined once.
		if _, loaded := r.cache[resolved]; loaded {
			continue
		}

		r.stack = append(r.stack, resolved)
		sheet, err := r.loadStylesheet(resolved)
		if err != nil {
			return nil, err
		}
		expanded, err := r.Expand(sheet.Statements, filepath.Dir(resolved))
		if err != nil {
			return nil, err
		}
		result = append(result, expanded...)
		r.stack = r.stack[:len(r.stack)-1]
	}
	return result, nil
}

func contains(stack []string, path string) bool {
	for _, s := range stack {
		if s == path {
			return true
		}
	}
	return false
}

func (r *Resolver) loadStylesheet(path string) (*ast.Stylesheet, error) {
	if cached, ok := r.cache[path]; ok {
		return cached, nil
	}
	content, err := r.readFile(path)
	if err != nil {
		return nil, lerrors.Wrap(err, "reading file %s", path)
	}
	sheet, err := r.parser.Parse(string(content))
	if err != nil {
		return nil, attachPath(err, path)
	}
	r.cache[path] = sheet
	return sheet, nil
}

func attachPath(err error, path string) error {
	ce, ok := err.(*lerrors.CompileError)
	if !ok || ce.Kind != lerrors.KindParse {
		return err
	}
	return &lerrors.CompileError{
		Kind:    ce.Kind,
		Message: fmt.Sprintf("%s (file: %s)", ce.Message, path),
		Offset:  ce.Offset,
		Cause:   ce.Cause,
	}
}

func (r *Resolver) resolvePath(target, currentDir string) (string, error) {
	var candidates []string
	if filepath.IsAbs(target) {
		candidates = append(candidates, target)
	} else {
		if currentDir != "" {
			candidates = append(candidates, filepath.Join(currentDir, target))
		}
		for _, base := range r.includePaths {
			candidates = append(candidates, filepath.Join(base, target))
		}
	}
	for _, candidate := range candidates {
		if found, ok := findExisting(candidate); ok {
			return found, nil
		}
	}
	return "", lerrors.Eval("cannot resolve @import path %s", target)
}

func findExisting(candidate string) (string, bool) {
	attempts := []string{candidate}
	if filepath.Ext(candidate) == "" {
		attempts = append(attempts, candidate+".less")
	}
	for _, attempt := range attempts {
		info, err := os.Stat(attempt)
		if err != nil || info.IsDir() {
			continue
		}
		if real, err := filepath.Abs(attempt); err == nil {
			return real, true
		}
		return attempt, true
	}
	return "", false
}

// Expand is a convenience entry point that builds a fresh Resolver per call,
// matching the rule that the import cache never outlives a single compile.
func Expand(parser Parser, sheet *ast.Stylesheet, currentDir string, includePaths []string) (*ast.Stylesheet, error) {
	resolver := New(parser, includePaths)
	statements, err := resolver.Expand(sheet.Statements, currentDir)
	if err != nil {
		return nil, err
	}
	return &ast.Stylesheet{Statements: statements}, nil
}
