// Package evaluator walks a parsed, import-expanded ast.Stylesheet and
// produces a flattened Stylesheet of resolved rules: selectors are combined
// with their ancestors, mixins and detached rulesets are expanded inline,
// variables are substituted, and arithmetic/color functions in values are
// computed.
//
// Evaluation keeps two parallel scope stacks, one for variables and one for
// mixin definitions, pushed and popped around every ruleset, at-rule body,
// and mixin expansion so that bindings never leak past the construct that
// introduced them.
package evaluator

import (
	"strings"

	"github.com/sambeau/lessgo/pkg/less/ast"
	lerrors "github.com/sambeau/lessgo/pkg/less/errors"
)

// Evaluator holds the scope stacks for one compile. It is not safe for
// concurrent use and is not meant to be reused across stylesheets.
type Evaluator struct {
	scopes      []map[string]variableValue
	mixinScopes []map[string][]*ast.MixinDefinition
}

// New returns an Evaluator with a single empty root scope.
func New() *Evaluator {
	return &Evaluator{
		scopes:      []map[string]variableValue{{}},
		mixinScopes: []map[string][]*ast.MixinDefinition{{}},
	}
}

// Evaluate walks every top-level statement of sheet and returns the
// flattened, resolved output.
func (e *Evaluator) Evaluate(sheet *ast.Stylesheet) (*Stylesheet, error) {
	var imports []string
	var nodes []Node

	for _, stmt := range sheet.Statements {
		switch s := stmt.(type) {
		case *ast.Import:
			imports = append(imports, s.Raw)
		case *ast.VariableDeclaration:
			value, err := e.evalValue(&s.Value)
			if err != nil {
				return nil, err
			}
			e.setVariableText(s.Name, value)
		case *ast.RuleSet:
			produced, err := e.evalRuleset(s, nil)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, produced...)
		case *ast.AtRule:
			evaluated, err := e.evalAtRule(s, nil)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, evaluated)
		case *ast.MixinDefinition:
			e.setMixin(s)
		case *ast.MixinCall:
			var declarations []Declaration
			var produced []Node
			if err := e.expandMixin(s, nil, &declarations, &produced); err != nil {
				return nil, err
			}
			if len(declarations) != 0 {
				return nil, lerrors.Eval("top-level mixin call produced declarations with nowhere to attach")
			}
			nodes = append(nodes, produced...)
		}
	}

	return &Stylesheet{Imports: imports, Nodes: nodes}, nil
}

func (e *Evaluator) evalRuleset(rule *ast.RuleSet, parentSelectors []string) ([]Node, error) {
	e.pushScope()
	e.pushMixinScope()
	defer e.popMixinScope()
	defer e.popScope()

	selectors := e.combineSelectors(parentSelectors, rule.Selectors)
	var declarations []Declaration
	var pending []Node

	for _, item := range rule.Body {
		if err := e.handleRuleBodyItem(item, selectors, &declarations, &pending); err != nil {
			return nil, err
		}
	}

	var output []Node
	if len(declarations) != 0 {
		output = append(output, &Rule{Selectors: append([]string{}, selectors...), Declarations: declarations})
	}
	output = append(output, pending...)
	return output, nil
}

func (e *Evaluator) handleRuleBodyItem(item ast.RuleBody, selectors []string, declarations *[]Declaration, pending *[]Node) error {
	switch it := item.(type) {
	case *ast.VariableDeclaration:
		value, err := e.evalValue(&it.Value)
		if err != nil {
			return err
		}
		e.setVariableText(it.Name, value)
	case *ast.Declaration:
		decl, err := e.evalDeclaration(it)
		if err != nil {
			return err
		}
		*declarations = append(*declarations, decl)
	case *ast.RuleSet:
		nested, err := e.evalRuleset(it, selectors)
		if err != nil {
			return err
		}
		*pending = append(*pending, nested...)
	case *ast.MixinDefinition:
		e.setMixin(it)
	case *ast.MixinCall:
		return e.expandMixin(it, selectors, declarations, pending)
	case *ast.AtRule:
		evaluated, err := e.evalAtRule(it, selectors)
		if err != nil {
			return err
		}
		*pending = append(*pending, evaluated)
	case *ast.DetachedCall:
		return e.invokeDetachedRuleset(it.VariableName, selectors, declarations, pending)
	}
	return nil
}

// expandMixin resolves call against every candidate definition registered
// under that name (innermost scope first), keeping only candidates whose
// parameter list can accept call's argument count — i.e. whose required
// (no-default) parameter count is at most len(args), which is at most the
// total parameter count — and, among those, the first whose guard (if any)
// is satisfied once its parameters are bound. This is richer than matching
// a single nearest definition by name: it lets overloaded mixins of the
// same name coexist, disambiguated by arity and guard.
func (e *Evaluator) expandMixin(call *ast.MixinCall, selectors []string, declarations *[]Declaration, pending *[]Node) error {
	candidates := e.candidatesFor(call.Name)
	if len(candidates) == 0 {
		return lerrors.Eval("undefined mixin %s", call.Name)
	}

	var lastErr error
	for _, def := range candidates {
		required := 0
		for _, param := range def.Params {
			if !param.HasDefault {
				required++
			}
		}
		if len(call.Args) < required || len(call.Args) > len(def.Params) {
			continue
		}

		e.pushScope()
		e.pushMixinScope()

		if err := e.bindMixinArgs(call, def); err != nil {
			e.popMixinScope()
			e.popScope()
			return err
		}

		satisfied, err := e.evalGuard(def.Guard)
		if err != nil {
			e.popMixinScope()
			e.popScope()
			return err
		}
		if !satisfied {
			e.popMixinScope()
			e.popScope()
			lastErr = lerrors.Eval("guard not satisfied for mixin %s", call.Name)
			continue
		}

		for _, item := range def.Body {
			if err := e.handleRuleBodyItem(item, selectors, declarations, pending); err != nil {
				e.popMixinScope()
				e.popScope()
				return err
			}
		}
		e.popMixinScope()
		e.popScope()
		return nil
	}

	if lastErr != nil {
		return lastErr
	}
	return lerrors.Eval("no mixin named %s matches %d argument(s)", call.Name, len(call.Args))
}

func (e *Evaluator) bindMixinArgs(call *ast.MixinCall, def *ast.MixinDefinition) error {
	for i, param := range def.Params {
		if i < len(call.Args) {
			arg := call.Args[i]
			if arg.IsRuleset {
				e.setVariableRuleset(param.Name, arg.Ruleset)
			} else {
				value, err := e.evalValue(&arg.Value)
				if err != nil {
					return err
				}
				e.setVariableText(param.Name, value)
			}
			continue
		}
		if !param.HasDefault {
			return lerrors.Eval("mixin %s missing required argument @%s", def.Name, param.Name)
		}
		value, err := e.evalValue(&param.Default)
		if err != nil {
			return err
		}
		e.setVariableText(param.Name, value)
	}
	return nil
}

func (e *Evaluator) invokeDetachedRuleset(name string, selectors []string, declarations *[]Declaration, pending *[]Node) error {
	body, err := e.resolveRulesetVariable(name)
	if err != nil {
		return err
	}
	for _, item := range body {
		if err := e.handleRuleBodyItem(item, selectors, declarations, pending); err != nil {
			return err
		}
	}
	return nil
}

func (e *Evaluator) evalAtRule(at *ast.AtRule, selectors []string) (*AtRule, error) {
	e.pushScope()
	e.pushMixinScope()
	defer e.popMixinScope()
	defer e.popScope()

	var scopedDeclarations, atRuleDeclarations []Declaration
	var children []Node

	for _, item := range at.Body {
		switch it := item.(type) {
		case *ast.VariableDeclaration:
			value, err := e.evalValue(&it.Value)
			if err != nil {
				return nil, err
			}
			e.setVariableText(it.Name, value)
		case *ast.Declaration:
			decl, err := e.evalDeclaration(it)
			if err != nil {
				return nil, err
			}
			if len(selectors) == 0 {
				atRuleDeclarations = append(atRuleDeclarations, decl)
			} else {
				scopedDeclarations = append(scopedDeclarations, decl)
			}
		case *ast.RuleSet:
			nested, err := e.evalRuleset(it, selectors)
			if err != nil {
				return nil, err
			}
			children = append(children, nested...)
		case *ast.MixinDefinition:
			e.setMixin(it)
		case *ast.MixinCall:
			var err error
			if len(selectors) == 0 {
				err = e.expandMixin(it, selectors, &atRuleDeclarations, &children)
			} else {
				err = e.expandMixin(it, selectors, &scopedDeclarations, &children)
			}
			if err != nil {
				return nil, err
			}
		case *ast.AtRule:
			evaluated, err := e.evalAtRule(it, selectors)
			if err != nil {
				return nil, err
			}
			children = append(children, evaluated)
		case *ast.DetachedCall:
			var err error
			if len(selectors) == 0 {
				err = e.invokeDetachedRuleset(it.VariableName, selectors, &atRuleDeclarations, &children)
			} else {
				err = e.invokeDetachedRuleset(it.VariableName, selectors, &scopedDeclarations, &children)
			}
			if err != nil {
				return nil, err
			}
		}
	}

	var scopedNodes []Node
	if len(selectors) != 0 && len(scopedDeclarations) != 0 {
		scopedNodes = append(scopedNodes, &Rule{Selectors: append([]string{}, selectors...), Declarations: scopedDeclarations})
	}
	scopedNodes = append(scopedNodes, children...)

	declarations := atRuleDeclarations
	if len(selectors) != 0 {
		declarations = nil
	}

	return &AtRule{Name: at.Name, Params: at.Params, Declarations: declarations, Children: scopedNodes}, nil
}

func (e *Evaluator) evalDeclaration(decl *ast.Declaration) (Declaration, error) {
	name, err := e.interpolatePropertyName(decl.Property)
	if err != nil {
		return Declaration{}, err
	}
	value, err := e.evalValue(&decl.Value)
	if err != nil {
		return Declaration{}, err
	}
	important := decl.Important
	for {
		stripped, ok := stripImportant(value)
		if !ok {
			break
		}
		value = stripped
		important = true
	}
	return Declaration{Name: name, Value: value, Important: important}, nil
}

func (e *Evaluator) interpolatePropertyName(raw string) (string, error) {
	if !strings.Contains(raw, "@{") {
		return trimSpace(raw), nil
	}
	var out strings.Builder
	runes := []rune(raw)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '@' && i+1 < len(runes) && runes[i+1] == '{' {
			i += 2
			start := i
			for i < len(runes) && runes[i] != '}' {
				i++
			}
			name := string(runes[start:i])
			if name == "" {
				return "", lerrors.Eval("property interpolation missing variable name")
			}
			value, err := e.resolveVariableText(name)
			if err != nil {
				return "", err
			}
			out.WriteString(trimSpace(value))
			continue
		}
		out.WriteRune(runes[i])
	}
	return trimSpace(out.String()), nil
}

func trimSpace(s string) string { return strings.TrimSpace(s) }

// combineSelectors joins parent selectors with the current rule's selectors,
// substituting `&` for the parent selector when present and otherwise
// nesting with a descendant space.
func (e *Evaluator) combineSelectors(parents []string, current []ast.Selector) []string {
	if len(parents) == 0 {
		result := make([]string, len(current))
		for i, sel := range current {
			result[i] = sel.Text
		}
		return result
	}
	var result []string
	for _, parent := range parents {
		for _, child := range current {
			var selector string
			if strings.Contains(child.Text, "&") {
				selector = strings.TrimSpace(strings.ReplaceAll(child.Text, "&", parent))
			} else {
				selector = strings.TrimSpace(strings.TrimSpace(parent) + " " + strings.TrimSpace(child.Text))
			}
			result = append(result, selector)
		}
	}
	return result
}

func stripImportant(value string) (string, bool) {
	trimmed := strings.TrimRight(value, " \t\r\n\f\v")
	if !strings.HasSuffix(trimmed, "!important") {
		return "", false
	}
	without := strings.TrimRight(trimmed[:len(trimmed)-len("!important")], " \t\r\n\f\v")
	return without, true
}
