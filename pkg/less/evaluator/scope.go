package evaluator

import (
	"github.com/sambeau/lessgo/pkg/less/ast"
	lerrors "github.com/sambeau/lessgo/pkg/less/errors"
)

// variableValue is either plain resolved text or a detached ruleset bound to
// a variable, most commonly via a mixin argument of the form `{ ... }`.
type variableValue struct {
	text      string
	ruleset   []ast.RuleBody
	isRuleset bool
}

func textValue(s string) variableValue { return variableValue{text: s} }

func rulesetValue(body []ast.RuleBody) variableValue {
	return variableValue{ruleset: body, isRuleset: true}
}

// pushScope opens a new innermost variable scope.
func (e *Evaluator) pushScope() { e.scopes = append(e.scopes, map[string]variableValue{}) }

// popScope closes the innermost variable scope.
func (e *Evaluator) popScope() { e.scopes = e.scopes[:len(e.scopes)-1] }

// pushMixinScope opens a new innermost mixin-definition scope.
func (e *Evaluator) pushMixinScope() {
	e.mixinScopes = append(e.mixinScopes, map[string][]*ast.MixinDefinition{})
}

// popMixinScope closes the innermost mixin-definition scope.
func (e *Evaluator) popMixinScope() { e.mixinScopes = e.mixinScopes[:len(e.mixinScopes)-1] }

func (e *Evaluator) setVariableText(name, value string) {
	e.scopes[len(e.scopes)-1][name] = textValue(value)
}

func (e *Evaluator) setVariableRuleset(name string, body []ast.RuleBody) {
	e.scopes[len(e.scopes)-1][name] = rulesetValue(body)
}

func (e *Evaluator) setMixin(def *ast.MixinDefinition) {
	scope := e.mixinScopes[len(e.mixinScopes)-1]
	scope[def.Name] = append(scope[def.Name], def)
}

func (e *Evaluator) lookupVariable(name string) (variableValue, error) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if v, ok := e.scopes[i][name]; ok {
			return v, nil
		}
	}
	return variableValue{}, lerrors.Eval("undefined variable @%s", name)
}

func (e *Evaluator) resolveVariableText(name string) (string, error) {
	v, err := e.lookupVariable(name)
	if err != nil {
		return "", err
	}
	if v.isRuleset {
		return "", lerrors.Eval("variable @%s is not usable as text", name)
	}
	return v.text, nil
}

func (e *Evaluator) resolveRulesetVariable(name string) ([]ast.RuleBody, error) {
	v, err := e.lookupVariable(name)
	if err != nil {
		return nil, err
	}
	if !v.isRuleset {
		return nil, lerrors.Eval("variable @%s is not a callable ruleset", name)
	}
	return v.ruleset, nil
}

// candidatesFor collects every mixin definition registered under name,
// innermost scope first, preserving definition order within each scope.
// This is what lets several same-named mixins with different arities (and
// different guards) coexist and be selected between at call time, unlike a
// single-candidate-by-name lookup.
func (e *Evaluator) candidatesFor(name string) []*ast.MixinDefinition {
	var all []*ast.MixinDefinition
	for i := len(e.mixinScopes) - 1; i >= 0; i-- {
		all = append(all, e.mixinScopes[i][name]...)
	}
	return all
}
