package evaluator

import (
	"testing"

	"github.com/sambeau/lessgo/pkg/less/parser"
)

// testEval parses input with the production parser and evaluates it,
// failing the test immediately on either a parse or an evaluation error.
func testEval(t *testing.T, input string) *Stylesheet {
	t.Helper()
	p := parser.New()
	sheet, err := p.Parse(input)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	out, err := New().Evaluate(sheet)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	return out
}

func onlyRule(t *testing.T, out *Stylesheet) *Rule {
	t.Helper()
	if len(out.Nodes) != 1 {
		t.Fatalf("expected exactly one node, got %d", len(out.Nodes))
	}
	rule, ok := out.Nodes[0].(*Rule)
	if !ok {
		t.Fatalf("expected a Rule, got %T", out.Nodes[0])
	}
	return rule
}

func declValue(t *testing.T, rule *Rule, name string) string {
	t.Helper()
	for _, d := range rule.Declarations {
		if d.Name == name {
			return d.Value
		}
	}
	t.Fatalf("no declaration named %s in %+v", name, rule.Declarations)
	return ""
}

func TestEvalVariableSubstitution(t *testing.T) {
	out := testEval(t, "@base: #ff6600;\n.box { color: @base; }")
	rule := onlyRule(t, out)
	if got := declValue(t, rule, "color"); got != "#ff6600" {
		t.Fatalf("color = %q", got)
	}
}

func TestEvalNestedSelectorsWithAmpersand(t *testing.T) {
	out := testEval(t, ".btn { &:hover { color: red; } .icon { color: blue; } }")
	if len(out.Nodes) != 2 {
		t.Fatalf("expected 2 flattened rules, got %d", len(out.Nodes))
	}
	hover := out.Nodes[0].(*Rule)
	if hover.Selectors[0] != ".btn:hover" {
		t.Fatalf("selector = %q", hover.Selectors[0])
	}
	icon := out.Nodes[1].(*Rule)
	if icon.Selectors[0] != ".btn .icon" {
		t.Fatalf("selector = %q", icon.Selectors[0])
	}
}

func TestEvalMixinExpansion(t *testing.T) {
	out := testEval(t, `
.border(@width: 1px) {
	border-width: @width;
}
.box {
	.border(3px);
}`)
	rule := onlyRule(t, out)
	if got := declValue(t, rule, "border-width"); got != "3px" {
		t.Fatalf("border-width = %q", got)
	}
}

func TestEvalMixinOverloadByArity(t *testing.T) {
	out := testEval(t, `
.size(@w) {
	width: @w;
}
.size(@w, @h) {
	width: @w;
	height: @h;
}
.box {
	.size(10px, 20px);
}`)
	rule := onlyRule(t, out)
	if got := declValue(t, rule, "width"); got != "10px" {
		t.Fatalf("width = %q", got)
	}
	if got := declValue(t, rule, "height"); got != "20px" {
		t.Fatalf("height = %q", got)
	}
}

func TestEvalMixinGuardDispatch(t *testing.T) {
	out := testEval(t, `
.sized(@w) when (@w > 10) {
	size: big;
}
.sized(@w) when (@w <= 10) {
	size: small;
}
.a {
	.sized(5);
}
.b {
	.sized(50);
}`)
	if len(out.Nodes) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(out.Nodes))
	}
	a := out.Nodes[0].(*Rule)
	if got := declValue(t, a, "size"); got != "small" {
		t.Fatalf("a size = %q", got)
	}
	b := out.Nodes[1].(*Rule)
	if got := declValue(t, b, "size"); got != "big" {
		t.Fatalf("b size = %q", got)
	}
}

func TestEvalDetachedRulesetInvocation(t *testing.T) {
	out := testEval(t, `
.wrap(@content) {
	.inner {
		@content();
	}
}
.box {
	.wrap({ color: red; });
}`)
	if len(out.Nodes) != 1 {
		t.Fatalf("expected 1 flattened rule, got %d", len(out.Nodes))
	}
	rule := out.Nodes[0].(*Rule)
	if rule.Selectors[0] != ".box .inner" {
		t.Fatalf("selector = %q", rule.Selectors[0])
	}
	if got := declValue(t, rule, "color"); got != "red" {
		t.Fatalf("color = %q", got)
	}
}

func TestEvalAtRuleWithSelector(t *testing.T) {
	out := testEval(t, `
@media (min-width: 768px) {
	.box {
		color: red;
	}
}`)
	if len(out.Nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(out.Nodes))
	}
	at, ok := out.Nodes[0].(*AtRule)
	if !ok {
		t.Fatalf("expected AtRule, got %T", out.Nodes[0])
	}
	if at.Name != "media" || at.Params != "(min-width: 768px)" {
		t.Fatalf("name/params = %q %q", at.Name, at.Params)
	}
	if len(at.Declarations) != 0 {
		t.Fatalf("expected no bare declarations, got %d", len(at.Declarations))
	}
	if len(at.Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(at.Children))
	}
}

func TestEvalAtRuleBareDeclarations(t *testing.T) {
	out := testEval(t, `
@font-face {
	font-family: "Example";
	src: url(example.woff);
}`)
	at := out.Nodes[0].(*AtRule)
	if len(at.Declarations) != 2 {
		t.Fatalf("expected 2 bare declarations, got %d", len(at.Declarations))
	}
	if len(at.Children) != 0 {
		t.Fatalf("expected no children, got %d", len(at.Children))
	}
}

func TestEvalImportantFlagStripped(t *testing.T) {
	out := testEval(t, ".box { color: red !important; }")
	rule := onlyRule(t, out)
	if got := declValue(t, rule, "color"); got != "red" {
		t.Fatalf("color = %q", got)
	}
	for _, d := range rule.Declarations {
		if d.Name == "color" && !d.Important {
			t.Fatalf("expected Important to be true")
		}
	}
}

func TestEvalPropertyNameInterpolation(t *testing.T) {
	out := testEval(t, `@side: top;
.box { margin-@{side}: 4px; }`)
	rule := onlyRule(t, out)
	if got := declValue(t, rule, "margin-top"); got != "4px" {
		t.Fatalf("margin-top = %q", got)
	}
}

func TestEvalArithmeticExpression(t *testing.T) {
	out := testEval(t, ".box { width: 2px + 3px; }")
	rule := onlyRule(t, out)
	if got := declValue(t, rule, "width"); got != "5px" {
		t.Fatalf("width = %q", got)
	}
}

func TestEvalMultipleArithmeticSegments(t *testing.T) {
	out := testEval(t, ".box { margin: 2px+3px 10px*2; }")
	rule := onlyRule(t, out)
	if got := declValue(t, rule, "margin"); got != "5px 20px" {
		t.Fatalf("margin = %q", got)
	}
}

func TestEvalArithmeticDivisionAndNegative(t *testing.T) {
	out := testEval(t, ".box { width: 10px / 2; height: -5px + 2px; }")
	rule := onlyRule(t, out)
	if got := declValue(t, rule, "width"); got != "5px" {
		t.Fatalf("width = %q", got)
	}
	if got := declValue(t, rule, "height"); got != "-3px" {
		t.Fatalf("height = %q", got)
	}
}

func TestEvalUnitDividedByMatchingUnitCancelsToUnitless(t *testing.T) {
	out := testEval(t, ".box { z-index: 10px / 2px; }")
	rule := onlyRule(t, out)
	if got := declValue(t, rule, "z-index"); got != "5" {
		t.Fatalf("z-index = %q", got)
	}
}

func TestEvalHyphenatedWordsAreNotArithmetic(t *testing.T) {
	out := testEval(t, ".box { font-family: sans-serif; }")
	rule := onlyRule(t, out)
	if got := declValue(t, rule, "font-family"); got != "sans-serif" {
		t.Fatalf("font-family = %q", got)
	}
}

func TestEvalColorFunctions(t *testing.T) {
	out := testEval(t, ".box { color: lighten(#000000, 20%); background: darken(#ffffff, 20%); }")
	rule := onlyRule(t, out)
	if got := declValue(t, rule, "color"); got != "#333333" {
		t.Fatalf("color = %q", got)
	}
	if got := declValue(t, rule, "background"); got != "#cccccc" {
		t.Fatalf("background = %q", got)
	}
}

func TestEvalColorExtremes(t *testing.T) {
	out := testEval(t, ".box { color: lighten(#000000, 100%); background: darken(#ffffff, 100%); }")
	rule := onlyRule(t, out)
	if got := declValue(t, rule, "color"); got != "#ffffff" {
		t.Fatalf("color = %q", got)
	}
	if got := declValue(t, rule, "background"); got != "#000000" {
		t.Fatalf("background = %q", got)
	}
}

func TestEvalInlineColorFunction(t *testing.T) {
	out := testEval(t, ".box { border: 1px solid darken(#ffffff, 10%); }")
	rule := onlyRule(t, out)
	if got := declValue(t, rule, "border"); got != "1px solid #e6e6e6" {
		t.Fatalf("border = %q", got)
	}
}

func TestEvalOverlayFunction(t *testing.T) {
	out := testEval(t, ".box { background: overlay(rgba(255, 255, 255, 0.05), #2c2c2c); }")
	rule := onlyRule(t, out)
	if got := declValue(t, rule, "background"); got != "#373737" {
		t.Fatalf("background = %q", got)
	}
}

func TestEvalFadeProducesRGBA(t *testing.T) {
	out := testEval(t, ".box { color: fade(#ff0000, 50%); }")
	rule := onlyRule(t, out)
	if got := declValue(t, rule, "color"); got != "rgba(255, 0, 0, 0.5)" {
		t.Fatalf("color = %q", got)
	}
}

func TestEvalBareRGBFunction(t *testing.T) {
	out := testEval(t, ".box { color: rgb(255, 0, 0); background: rgba(0, 0, 0, 0.5); }")
	rule := onlyRule(t, out)
	if got := declValue(t, rule, "color"); got != "#ff0000" {
		t.Fatalf("color = %q", got)
	}
	if got := declValue(t, rule, "background"); got != "rgba(0, 0, 0, 0.5)" {
		t.Fatalf("background = %q", got)
	}
}

func TestEvalInlineRGBFunction(t *testing.T) {
	out := testEval(t, ".box { border: 1px solid rgb(0, 0, 0); }")
	rule := onlyRule(t, out)
	if got := declValue(t, rule, "border"); got != "1px solid #000000" {
		t.Fatalf("border = %q", got)
	}
}
