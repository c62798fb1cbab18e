// Package ast defines the syntax tree produced by the parser.
//
// Nodes are created once by the parser and never mutated afterwards; the
// importer produces a new Stylesheet with imports inlined, and the
// evaluator consumes the result to build the evaluated IR. Raw value text
// is preserved on every node until the evaluator decides what to do with it.
package ast

// Stylesheet is an ordered sequence of top-level statements.
type Stylesheet struct {
	Statements []Statement
}

// Statement is a top-level LESS construct.
type Statement interface {
	statementNode()
}

// Import is an `@import` directive. Raw holds the exact source text so the
// serializer can emit passthrough imports verbatim.
type Import struct {
	Raw             string
	Path            string
	HasPath         bool
	IsCSSPassthrough bool
}

func (*Import) statementNode() {}

// VariableDeclaration binds a name to a value, e.g. `@base: #ff6600;`.
type VariableDeclaration struct {
	Name  string
	Value Value
}

func (*VariableDeclaration) statementNode() {}
func (*VariableDeclaration) ruleBodyNode()  {}

// Selector is a single entry of a selector list.
type Selector struct {
	Text string
}

// RuleSet is a selector list plus a body of declarations and nested content.
type RuleSet struct {
	Selectors []Selector
	Body      []RuleBody
}

func (*RuleSet) statementNode() {}
func (*RuleSet) ruleBodyNode()  {}

// AtRule uniformly represents block at-rules: `@media`, `@supports`,
// `@font-face`, and any other `@name params { ... }` form.
type AtRule struct {
	Name   string
	Params string
	Body   []RuleBody
}

func (*AtRule) statementNode() {}
func (*AtRule) ruleBodyNode()  {}

// MixinDefinition is a named, parameterized block that can be invoked by a
// MixinCall. Guard holds the raw `when (...)` condition text, if any.
type MixinDefinition struct {
	Name   string
	Params []MixinParam
	Guard  *GuardExpr
	Body   []RuleBody
}

func (*MixinDefinition) statementNode() {}
func (*MixinDefinition) ruleBodyNode()  {}

// MixinParam is one formal parameter of a mixin definition.
type MixinParam struct {
	Name       string
	Default    Value
	HasDefault bool
}

// MixinCall invokes a mixin definition by name, at top level or nested.
type MixinCall struct {
	Name string
	Args []MixinArgument
}

func (*MixinCall) statementNode() {}
func (*MixinCall) ruleBodyNode()  {}

// MixinArgument is either a plain value or a detached-ruleset block
// (`{ ... }`) passed positionally to a mixin call.
type MixinArgument struct {
	Value    Value
	Ruleset  []RuleBody
	IsRuleset bool
}

// DetachedCall invokes a variable bound to a detached ruleset: `@name();`.
type DetachedCall struct {
	VariableName string
}

func (*DetachedCall) ruleBodyNode() {}

// RuleBody is a single item inside a RuleSet, AtRule, or MixinDefinition body.
type RuleBody interface {
	ruleBodyNode()
}

// Declaration is a `property: value;` pair.
type Declaration struct {
	Property  string
	Value     Value
	Important bool
}

func (*Declaration) ruleBodyNode() {}

// Value is raw, unevaluated text split into literal runs and variable
// references. Evaluation is deferred entirely to the evaluator.
type Value struct {
	Pieces []ValuePiece
}

// ValuePiece is one fragment of a Value: either literal text or a reference
// to a variable that must be resolved at evaluation time.
type ValuePiece struct {
	Literal      string
	VariableName string
	IsVariable   bool
}

// Lit builds a literal ValuePiece.
func Lit(text string) ValuePiece { return ValuePiece{Literal: text} }

// VarRef builds a variable-reference ValuePiece.
func VarRef(name string) ValuePiece { return ValuePiece{VariableName: name, IsVariable: true} }

// GuardExpr is a minimally-supported `when (...)` guard: a single
// comparison between two operands, each either a variable reference or a
// literal token. Compound guards (`and`/`or`, multiple comparisons) are
// beyond what this implementation evaluates; see DESIGN.md.
type GuardExpr struct {
	Raw      string
	Negate   bool
	Left     GuardOperand
	Operator string // one of "=", ">", "<", ">=", "<="
	Right    GuardOperand
}

// GuardOperand is one side of a GuardExpr comparison.
type GuardOperand struct {
	VariableName string
	Literal      string
	IsVariable   bool
}
