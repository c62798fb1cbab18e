package parser

import (
	"testing"

	"github.com/sambeau/lessgo/pkg/less/ast"
)

func TestParseVariableDeclaration(t *testing.T) {
	sheet, err := New().Parse(`@base: #ff6600;`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sheet.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(sheet.Statements))
	}
	v, ok := sheet.Statements[0].(*ast.VariableDeclaration)
	if !ok {
		t.Fatalf("expected VariableDeclaration, got %T", sheet.Statements[0])
	}
	if v.Name != "base" {
		t.Fatalf("name = %q, want base", v.Name)
	}
}

func TestParseRuleset(t *testing.T) {
	sheet, err := New().Parse(`.box { color: red; width: 10px; }`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rs, ok := sheet.Statements[0].(*ast.RuleSet)
	if !ok {
		t.Fatalf("expected RuleSet, got %T", sheet.Statements[0])
	}
	if len(rs.Selectors) != 1 || rs.Selectors[0].Text != ".box" {
		t.Fatalf("unexpected selectors: %+v", rs.Selectors)
	}
	if len(rs.Body) != 2 {
		t.Fatalf("expected 2 declarations, got %d", len(rs.Body))
	}
}

func TestParseNestedRuleset(t *testing.T) {
	sheet, err := New().Parse(`.box { &:hover { color: blue; } }`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rs := sheet.Statements[0].(*ast.RuleSet)
	nested, ok := rs.Body[0].(*ast.RuleSet)
	if !ok {
		t.Fatalf("expected nested RuleSet, got %T", rs.Body[0])
	}
	if nested.Selectors[0].Text != "&:hover" {
		t.Fatalf("unexpected nested selector: %q", nested.Selectors[0].Text)
	}
}

func TestParseImportBasic(t *testing.T) {
	sheet, err := New().Parse(`@import "reset.less";`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	imp := sheet.Statements[0].(*ast.Import)
	if !imp.HasPath || imp.Path != "reset.less" {
		t.Fatalf("unexpected import: %+v", imp)
	}
	if imp.IsCSSPassthrough {
		t.Fatalf("expected a .less import to not be a CSS passthrough")
	}
}

func TestParseImportCSSOption(t *testing.T) {
	sheet, err := New().Parse(`@import (css) "legacy.less";`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	imp := sheet.Statements[0].(*ast.Import)
	if !imp.IsCSSPassthrough {
		t.Fatalf("expected css import option to force passthrough")
	}
}

func TestParseMixinDefinitionAndCall(t *testing.T) {
	sheet, err := New().Parse(`
		.pad(@size: 10px) {
			padding: @size;
		}
		.box {
			.pad(5px);
		}
	`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sheet.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(sheet.Statements))
	}
	def, ok := sheet.Statements[0].(*ast.MixinDefinition)
	if !ok {
		t.Fatalf("expected MixinDefinition, got %T", sheet.Statements[0])
	}
	if def.Name != ".pad" || len(def.Params) != 1 || !def.Params[0].HasDefault {
		t.Fatalf("unexpected mixin definition: %+v", def)
	}
	box := sheet.Statements[1].(*ast.RuleSet)
	call, ok := box.Body[0].(*ast.MixinCall)
	if !ok {
		t.Fatalf("expected MixinCall, got %T", box.Body[0])
	}
	if call.Name != ".pad" || len(call.Args) != 1 {
		t.Fatalf("unexpected mixin call: %+v", call)
	}
}

func TestParseMixinGuard(t *testing.T) {
	sheet, err := New().Parse(`.thing(@a) when (@a > 0) { width: @a; }`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	def := sheet.Statements[0].(*ast.MixinDefinition)
	if def.Guard == nil {
		t.Fatalf("expected a guard")
	}
	if def.Guard.Operator != ">" || !def.Guard.Left.IsVariable || def.Guard.Left.VariableName != "a" {
		t.Fatalf("unexpected guard: %+v", def.Guard)
	}
}

func TestParseAtRule(t *testing.T) {
	sheet, err := New().Parse(`@media (min-width: 768px) { .box { color: red; } }`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	at, ok := sheet.Statements[0].(*ast.AtRule)
	if !ok {
		t.Fatalf("expected AtRule, got %T", sheet.Statements[0])
	}
	if at.Name != "media" || at.Params != "(min-width: 768px)" {
		t.Fatalf("unexpected at-rule: %+v", at)
	}
}

func TestParseDetachedCall(t *testing.T) {
	sheet, err := New().Parse(`
		.wrap(@content) {
			.inner {
				@content();
			}
		}
		.box {
			.wrap({ color: red; });
		}
	`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	def := sheet.Statements[0].(*ast.MixinDefinition)
	inner := def.Body[0].(*ast.RuleSet)
	call, ok := inner.Body[0].(*ast.DetachedCall)
	if !ok {
		t.Fatalf("expected DetachedCall, got %T", inner.Body[0])
	}
	if call.VariableName != "content" {
		t.Fatalf("unexpected variable name: %q", call.VariableName)
	}

	box := sheet.Statements[1].(*ast.RuleSet)
	mixinCall := box.Body[0].(*ast.MixinCall)
	if len(mixinCall.Args) != 1 || !mixinCall.Args[0].IsRuleset {
		t.Fatalf("expected a ruleset argument, got %+v", mixinCall.Args)
	}
}

func TestParseImportantFlagSurvivesIntoValue(t *testing.T) {
	sheet, err := New().Parse(`.box { margin: 10px !important; }`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rs := sheet.Statements[0].(*ast.RuleSet)
	decl := rs.Body[0].(*ast.Declaration)
	if len(decl.Value.Pieces) != 1 || decl.Value.Pieces[0].Literal != "10px !important" {
		t.Fatalf("unexpected declaration value: %+v", decl.Value)
	}
}

func TestParseMissingSelectorIsError(t *testing.T) {
	_, err := New().Parse(`{ color: red; }`)
	if err == nil {
		t.Fatalf("expected error for missing selector")
	}
}
