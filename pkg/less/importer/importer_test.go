package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sambeau/lessgo/pkg/less/ast"
	"github.com/sambeau/lessgo/pkg/less/parser"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestExpandInlinesImportedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.less", `.box { color: red; }`)

	p := parser.New()
	sheet, err := p.Parse(`@import "base.less";
.page { width: 10px; }`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	expanded, err := Expand(p, sheet, dir, nil)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(expanded.Statements) != 2 {
		t.Fatalf("expected 2 statements after inlining, got %d", len(expanded.Statements))
	}
	if _, ok := expanded.Statements[0].(*ast.RuleSet); !ok {
		t.Fatalf("expected imported ruleset first, got %T", expanded.Statements[0])
	}
}

func TestExpandDetectsCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.less", `@import "b.less";`)
	writeFile(t, dir, "b.less", `@import "a.less";`)

	p := parser.New()
	sheet, err := p.Parse(`@import "a.less";`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	_, err = Expand(p, sheet, dir, nil)
	if err == nil {
		t.Fatalf("expected a cycle error")
	}
}

func TestExpandCSSPassthroughIsNotInlined(t *testing.T) {
	p := parser.New()
	sheet, err := p.Parse(`@import (css) "vendor.css";`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	expanded, err := Expand(p, sheet, "", nil)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(expanded.Statements) != 1 {
		t.Fatalf("expected passthrough import to survive untouched")
	}
	if _, ok := expanded.Statements[0].(*ast.Import); !ok {
		t.Fatalf("expected Import, got %T", expanded.Statements[0])
	}
}

func TestExpandFallsBackToLessExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "mixins.less", `.reset { margin: 0; }`)

	p := parser.New()
	sheet, err := p.Parse(`@import "mixins";`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	expanded, err := Expand(p, sheet, dir, nil)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(expanded.Statements) != 1 {
		t.Fatalf("expected 1 inlined statement, got %d", len(expanded.Statements))
	}
}

func TestExpandUsesIncludePaths(t *testing.T) {
	vendorDir := t.TempDir()
	writeFile(t, vendorDir, "lib.less", `.lib { color: green; }`)

	p := parser.New()
	sheet, err := p.Parse(`@import "lib.less";`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	expanded, err := Expand(p, sheet, t.TempDir(), []string{vendorDir})
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(expanded.Statements) != 1 {
		t.Fatalf("expected include-path import to resolve, got %d statements", len(expanded.Statements))
	}
}
