// Package serializer renders an evaluator.Stylesheet as CSS text, either
// pretty-printed with two-space indentation or minified with all
// non-semantic whitespace stripped.
package serializer

import (
	"strings"

	"github.com/sambeau/lessgo/pkg/less/evaluator"
)

// Serializer renders one evaluated stylesheet in a fixed mode.
type Serializer struct {
	minify bool
}

// New returns a Serializer that renders minified output when minify is true,
// pretty output otherwise.
func New(minify bool) *Serializer {
	return &Serializer{minify: minify}
}

// ToCSS renders sheet.
func (s *Serializer) ToCSS(sheet *evaluator.Stylesheet) string {
	if s.minify {
		return s.renderMinified(sheet)
	}
	return s.renderPretty(sheet)
}

func (s *Serializer) renderPretty(sheet *evaluator.Stylesheet) string {
	var out strings.Builder
	for _, imp := range sheet.Imports {
		out.WriteString(strings.TrimSpace(imp))
		out.WriteByte('\n')
	}
	if len(sheet.Imports) != 0 && len(sheet.Nodes) != 0 {
		out.WriteByte('\n')
	}
	for i, node := range sheet.Nodes {
		s.renderNodePretty(node, 0, &out)
		if i+1 < len(sheet.Nodes) {
			out.WriteByte('\n')
		}
	}
	return strings.TrimSpace(out.String())
}

func (s *Serializer) renderMinified(sheet *evaluator.Stylesheet) string {
	var out strings.Builder
	for _, imp := range sheet.Imports {
		out.WriteString(strings.TrimSpace(imp))
		out.WriteByte('\n')
	}
	for _, node := range sheet.Nodes {
		s.renderNodeMinified(node, &out)
	}
	result := out.String()
	for strings.HasSuffix(result, "\n") {
		result = result[:len(result)-1]
	}
	return result
}

func (s *Serializer) renderNodePretty(node evaluator.Node, level int, out *strings.Builder) {
	switch n := node.(type) {
	case *evaluator.Rule:
		s.renderRulePretty(n, level, out)
	case *evaluator.AtRule:
		s.renderAtRulePretty(n, level, out)
	}
}

func (s *Serializer) renderRulePretty(rule *evaluator.Rule, level int, out *strings.Builder) {
	if len(rule.Declarations) == 0 {
		return
	}
	out.WriteString(indent(level))
	out.WriteString(strings.Join(rule.Selectors, ", "))
	out.WriteString(" {\n")
	for _, decl := range rule.Declarations {
		out.WriteString(indent(level + 1))
		out.WriteString(formatDeclaration(decl))
		out.WriteByte('\n')
	}
	out.WriteString(indent(level))
	out.WriteString("}\n")
}

func (s *Serializer) renderAtRulePretty(at *evaluator.AtRule, level int, out *strings.Builder) {
	out.WriteString(indent(level))
	out.WriteByte('@')
	out.WriteString(at.Name)
	if strings.TrimSpace(at.Params) != "" {
		out.WriteByte(' ')
		out.WriteString(strings.TrimSpace(at.Params))
	}
	out.WriteString(" {\n")
	for _, decl := range at.Declarations {
		out.WriteString(indent(level + 1))
		out.WriteString(formatDeclaration(decl))
		out.WriteByte('\n')
	}
	for _, child := range at.Children {
		s.renderNodePretty(child, level+1, out)
		if !strings.HasSuffix(out.String(), "\n") {
			out.WriteByte('\n')
		}
	}
	out.WriteString(indent(level))
	out.WriteString("}\n")
}

func (s *Serializer) renderNodeMinified(node evaluator.Node, out *strings.Builder) {
	switch n := node.(type) {
	case *evaluator.Rule:
		s.renderRuleMinified(n, out)
	case *evaluator.AtRule:
		s.renderAtRuleMinified(n, out)
	}
}

func (s *Serializer) renderRuleMinified(rule *evaluator.Rule, out *strings.Builder) {
	if len(rule.Declarations) == 0 {
		return
	}
	out.WriteString(strings.Join(rule.Selectors, ","))
	out.WriteByte('{')
	for i, decl := range rule.Declarations {
		if i > 0 {
			out.WriteByte(';')
		}
		out.WriteString(formatDeclarationMinified(decl))
	}
	out.WriteByte('}')
}

func (s *Serializer) renderAtRuleMinified(at *evaluator.AtRule, out *strings.Builder) {
	out.WriteByte('@')
	out.WriteString(at.Name)
	if strings.TrimSpace(at.Params) != "" {
		out.WriteByte(' ')
		out.WriteString(CollapseWhitespace(at.Params))
	}
	out.WriteByte('{')
	for i, decl := range at.Declarations {
		if i > 0 {
			out.WriteByte(';')
		}
		out.WriteString(formatDeclarationMinified(decl))
	}
	for _, child := range at.Children {
		s.renderNodeMinified(child, out)
	}
	out.WriteByte('}')
}

func formatDeclaration(decl evaluator.Declaration) string {
	result := strings.TrimSpace(decl.Name) + ": " + strings.TrimSpace(decl.Value)
	if decl.Important {
		result += " !important"
	}
	return result + ";"
}

func formatDeclarationMinified(decl evaluator.Declaration) string {
	result := strings.TrimSpace(decl.Name) + ":" + CollapseWhitespace(decl.Value)
	if decl.Important {
		result += "!important"
	}
	return result
}

// CollapseWhitespace reduces every whitespace run to a single space and
// trims the result. Used for minified output, where at-rule params and
// declaration values carry no semantic whitespace beyond a single
// separator.
func CollapseWhitespace(input string) string {
	var out strings.Builder
	out.Grow(len(input))
	lastWasSpace := false
	for _, r := range input {
		if isWhitespace(r) {
			if !lastWasSpace {
				out.WriteByte(' ')
				lastWasSpace = true
			}
			continue
		}
		out.WriteRune(r)
		lastWasSpace = false
	}
	return strings.TrimSpace(out.String())
}

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func indent(level int) string {
	return strings.Repeat("  ", level)
}
