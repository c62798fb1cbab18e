// Package parser turns LESS source text into an ast.Stylesheet using a
// hand-written recursive-descent reader. There is no separate lexing pass:
// the cursor is consulted character by character, with small speculative
// lookaheads used to disambiguate constructs that share a leading token
// (`@name` could start a variable declaration, an import, an at-rule, or a
// detached-ruleset call; `.name`/`#name` could start a mixin definition or a
// mixin call).
package parser

import (
	"strings"

	"github.com/sambeau/lessgo/pkg/less/ast"
)

// Parser parses LESS source into a Stylesheet. It holds no state of its own
// between calls to Parse.
type Parser struct{}

// New returns a ready-to-use Parser.
func New() *Parser { return &Parser{} }

// Parse reads a full LESS document.
func (p *Parser) Parse(input string) (*ast.Stylesheet, error) {
	c := newCursor(input)
	var statements []ast.Statement

	for !c.isEOF() {
		c.skipWhitespaceAndComments()
		if c.isEOF() {
			break
		}

		if c.startsWith('@') && c.lookaheadIsVariableDecl() {
			v, err := p.parseVariable(c)
			if err != nil {
				return nil, err
			}
			statements = append(statements, v)
			continue
		}

		if c.startsWith('@') && c.lookaheadIsImport() {
			imp, err := p.parseImport(c)
			if err != nil {
				return nil, err
			}
			statements = append(statements, imp)
			continue
		}

		if c.startsWith('@') && c.lookaheadIsBlockAtRule() {
			at, err := p.parseAtRule(c)
			if err != nil {
				return nil, err
			}
			statements = append(statements, at)
			continue
		}

		if c.lookaheadIsMixinDefinition() {
			m, err := p.parseMixinDefinition(c)
			if err != nil {
				return nil, err
			}
			statements = append(statements, m)
			continue
		}

		if c.lookaheadIsMixinCall() {
			call, err := p.parseMixinCall(c)
			if err != nil {
				return nil, err
			}
			statements = append(statements, call)
			continue
		}

		rs, err := p.parseRuleset(c)
		if err != nil {
			return nil, err
		}
		statements = append(statements, rs)
	}

	return &ast.Stylesheet{Statements: statements}, nil
}

func (p *Parser) parseVariable(c *cursor) (*ast.VariableDeclaration, error) {
	if err := c.expectChar('@'); err != nil {
		return nil, err
	}
	name := c.readIdentifier()
	c.skipWhitespaceAndComments()
	if err := c.expectChar(':'); err != nil {
		return nil, err
	}
	c.skipWhitespaceAndComments()

	value, err := p.readValue(c, ";")
	if err != nil {
		return nil, err
	}
	if r, ok := c.peekChar(); ok && r == ';' {
		c.advanceChar()
	}

	return &ast.VariableDeclaration{Name: name, Value: value}, nil
}

func (p *Parser) parseRuleset(c *cursor) (*ast.RuleSet, error) {
	c.skipWhitespaceAndComments()
	raw, err := c.readUntil('{')
	if err != nil {
		return nil, err
	}
	var selectors []ast.Selector
	for _, part := range strings.Split(raw, ",") {
		text := trimSpace(part)
		if text != "" {
			selectors = append(selectors, ast.Selector{Text: text})
		}
	}
	if len(selectors) == 0 {
		return nil, newParseError(c.position(), "missing valid selector")
	}

	if err := c.expectChar('{'); err != nil {
		return nil, err
	}
	var body []ast.RuleBody
	for {
		c.skipWhitespaceAndComments()
		if r, ok := c.peekChar(); ok && r == '}' {
			c.advanceChar()
			break
		}
		if c.isEOF() {
			return nil, newParseError(c.position(), "missing closing '}'")
		}
		item, err := p.parseRuleBodyItem(c)
		if err != nil {
			return nil, err
		}
		body = append(body, item)
	}

	return &ast.RuleSet{Selectors: selectors, Body: body}, nil
}

func (p *Parser) parseAtRule(c *cursor) (*ast.AtRule, error) {
	if err := c.expectChar('@'); err != nil {
		return nil, err
	}
	name := c.readIdentifier()
	if name == "" {
		return nil, newParseError(c.position(), "at-rule name must not be empty")
	}
	c.skipWhitespaceAndComments()

	var params strings.Builder
	parenDepth := 0
	for {
		r, ok := c.peekChar()
		if !ok {
			break
		}
		if r == '{' && parenDepth == 0 {
			break
		}
		switch r {
		case '(':
			parenDepth++
		case ')':
			if parenDepth > 0 {
				parenDepth--
			}
		}
		params.WriteRune(r)
		c.advanceChar()
	}
	c.skipWhitespaceAndComments()
	if c.startsWithKeyword("when") {
		c.consumeKeyword("when")
		c.skipWhitespaceAndComments()
		c.skipGuardCondition()
		c.skipWhitespaceAndComments()
	}
	if err := c.expectChar('{'); err != nil {
		return nil, err
	}
	body, err := p.parseAtRuleBody(c)
	if err != nil {
		return nil, err
	}

	return &ast.AtRule{Name: name, Params: trimSpace(params.String()), Body: body}, nil
}

func (p *Parser) parseAtRuleBody(c *cursor) ([]ast.RuleBody, error) {
	var body []ast.RuleBody
	for {
		c.skipWhitespaceAndComments()
		r, ok := c.peekChar()
		if ok && r == '}' {
			c.advanceChar()
			break
		}
		if !ok {
			return nil, newParseError(c.position(), "at-rule missing closing '}'")
		}
		item, err := p.parseRuleBodyItem(c)
		if err != nil {
			return nil, err
		}
		body = append(body, item)
	}
	return body, nil
}

func (p *Parser) parseDeclaration(c *cursor) (*ast.Declaration, error) {
	name := c.readPropertyName()
	c.skipWhitespaceAndComments()
	if err := c.expectChar(':'); err != nil {
		return nil, err
	}
	c.skipWhitespaceAndComments()
	value, err := p.readValue(c, ";}")
	if err != nil {
		return nil, err
	}
	if r, ok := c.peekChar(); ok && r == ';' {
		c.advanceChar()
	}
	return &ast.Declaration{Property: name, Value: value}, nil
}

// readValue accumulates literal text and @variable references until one of
// the terminator runes is reached outside of a parenthesized group, or a
// quoted string (which is copied through untouched, backslash escapes
// included).
func (p *Parser) readValue(c *cursor, terminators string) (ast.Value, error) {
	var pieces []ast.ValuePiece
	var current strings.Builder
	parenDepth := 0

	for {
		r, ok := c.peekChar()
		if !ok {
			break
		}
		if strings.ContainsRune(terminators, r) && parenDepth == 0 {
			break
		}

		switch r {
		case '\'', '"':
			quote := r
			current.WriteRune(r)
			c.advanceChar()
			for {
				next, ok := c.peekChar()
				if !ok {
					break
				}
				current.WriteRune(next)
				c.advanceChar()
				if next == quote {
					break
				}
				if next == '\\' {
					if escaped, ok := c.peekChar(); ok {
						current.WriteRune(escaped)
						c.advanceChar()
					}
				}
			}
		case '@':
			if current.Len() > 0 {
				pieces = append(pieces, ast.Lit(current.String()))
				current.Reset()
			}
			c.advanceChar()
			name := c.readIdentifier()
			if name == "" {
				return ast.Value{}, newParseError(c.position(), "variable name must not be empty")
			}
			pieces = append(pieces, ast.VarRef(name))
		case '(':
			parenDepth++
			current.WriteRune(r)
			c.advanceChar()
		case ')':
			if parenDepth > 0 {
				parenDepth--
			}
			current.WriteRune(r)
			c.advanceChar()
		default:
			current.WriteRune(r)
			c.advanceChar()
		}
	}

	if current.Len() > 0 {
		pieces = append(pieces, ast.Lit(current.String()))
	}
	return ast.Value{Pieces: pieces}, nil
}

func (p *Parser) parseImport(c *cursor) (*ast.Import, error) {
	if err := c.expectChar('@'); err != nil {
		return nil, err
	}
	ident := c.readIdentifier()
	if !equalFoldASCII(ident, "import") {
		return nil, newParseError(c.position(), "only @import statements are supported here")
	}

	spec, err := c.readUntil(';')
	if err != nil {
		return nil, err
	}
	if err := c.expectChar(';'); err != nil {
		return nil, err
	}

	remainder := strings.TrimLeft(spec, " \t\r\n\f\v")
	var options []string
	if strings.HasPrefix(remainder, "(") {
		end := strings.IndexByte(remainder, ')')
		if end < 0 {
			return nil, newParseError(c.position(), "incomplete @import options")
		}
		optStr := remainder[1:end]
		for _, part := range strings.FieldsFunc(optStr, func(r rune) bool { return r == ',' || isSpaceByte(byte(r)) }) {
			if part != "" {
				options = append(options, strings.ToLower(trimSpace(part)))
			}
		}
		remainder = strings.TrimLeft(remainder[end+1:], " \t\r\n\f\v")
	}

	trimmed := trimSpace(remainder)
	path, hasPath := extractImportPath(trimmed)
	isCSS := false
	for _, opt := range options {
		if opt == "css" {
			isCSS = true
		}
	}
	if !isCSS {
		if hasPath {
			if dot := strings.LastIndexByte(path, '.'); dot > strings.LastIndexByte(path, '/') && path[dot:] != ".less" {
				isCSS = true
			}
		} else {
			isCSS = true
		}
	}

	raw := "@import " + trimmed + ";"
	return &ast.Import{Raw: raw, Path: path, HasPath: hasPath, IsCSSPassthrough: isCSS}, nil
}

func extractImportPath(input string) (string, bool) {
	trimmed := trimSpace(input)
	if trimmed == "" {
		return "", false
	}
	first := trimmed[0]
	if first == '"' || first == '\'' {
		if end := strings.IndexByte(trimmed[1:], first); end >= 0 {
			return trimmed[1 : 1+end], true
		}
		return "", false
	}
	if strings.HasPrefix(trimmed, "url(") {
		return "", false
	}
	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return "", false
	}
	token := trimSpace(fields[0])
	if token == "" {
		return "", false
	}
	return token, true
}

func (p *Parser) parseRuleBodyItem(c *cursor) (ast.RuleBody, error) {
	if c.startsWith('@') && c.lookaheadIsVariableDecl() {
		return p.parseVariable(c)
	}

	if c.lookaheadIsMixinDefinition() {
		return p.parseMixinDefinition(c)
	}

	if c.lookaheadIsMixinCall() {
		return p.parseMixinCall(c)
	}

	if c.startsWith('@') {
		if c.lookaheadIsBlockAtRule() {
			return p.parseAtRule(c)
		}
		if c.lookaheadIsDetachedCall() {
			return p.parseDetachedCall(c)
		}
	}

	switch c.detectBodyKind() {
	case bodyKindDeclaration:
		return p.parseDeclaration(c)
	case bodyKindNestedRule:
		return p.parseRuleset(c)
	default:
		return nil, newParseError(c.position(), "cannot determine declaration or nested selector")
	}
}

func (p *Parser) parseMixinDefinition(c *cursor) (*ast.MixinDefinition, error) {
	name, err := c.readMixinName()
	if err != nil {
		return nil, err
	}
	c.skipWhitespaceAndComments()
	var params []ast.MixinParam
	if r, ok := c.peekChar(); ok && r == '(' {
		params, err = p.parseMixinParams(c)
		if err != nil {
			return nil, err
		}
	}
	c.skipWhitespaceAndComments()
	var guard *ast.GuardExpr
	if c.startsWithKeyword("when") {
		c.consumeKeyword("when")
		c.skipWhitespaceAndComments()
		guard, err = parseGuard(c)
		if err != nil {
			return nil, err
		}
		c.skipWhitespaceAndComments()
	}
	if err := c.expectChar('{'); err != nil {
		return nil, err
	}
	body, err := p.parseMixinBody(c)
	if err != nil {
		return nil, err
	}
	return &ast.MixinDefinition{Name: name, Params: params, Guard: guard, Body: body}, nil
}

func (p *Parser) parseMixinBody(c *cursor) ([]ast.RuleBody, error) {
	var body []ast.RuleBody
	for {
		c.skipWhitespaceAndComments()
		r, ok := c.peekChar()
		if ok && r == '}' {
			c.advanceChar()
			break
		}
		if !ok {
			return nil, newParseError(c.position(), "mixin missing closing '}'")
		}
		item, err := p.parseRuleBodyItem(c)
		if err != nil {
			return nil, err
		}
		body = append(body, item)
	}
	return body, nil
}

func (p *Parser) parseMixinParams(c *cursor) ([]ast.MixinParam, error) {
	var params []ast.MixinParam
	if err := c.expectChar('('); err != nil {
		return nil, err
	}
	for {
		c.skipWhitespaceAndComments()
		if r, ok := c.peekChar(); ok && r == ')' {
			c.advanceChar()
			break
		}
		if err := c.expectChar('@'); err != nil {
			return nil, err
		}
		name := c.readIdentifier()
		if name == "" {
			return nil, newParseError(c.position(), "mixin parameter name must not be empty")
		}
		c.skipWhitespaceAndComments()
		var def ast.Value
		hasDefault := false
		if r, ok := c.peekChar(); ok && r == ':' {
			c.advanceChar()
			c.skipWhitespaceAndComments()
			v, err := p.readValue(c, ",)")
			if err != nil {
				return nil, err
			}
			def = v
			hasDefault = true
		}
		params = append(params, ast.MixinParam{Name: name, Default: def, HasDefault: hasDefault})
		c.skipWhitespaceAndComments()
		r, ok := c.peekChar()
		switch {
		case ok && r == ',':
			c.advanceChar()
		case ok && r == ')':
			c.advanceChar()
			return params, nil
		default:
			return nil, newParseError(c.position(), "missing separator in mixin parameter list")
		}
	}
	return params, nil
}

func (p *Parser) parseMixinCall(c *cursor) (*ast.MixinCall, error) {
	name, err := c.readMixinName()
	if err != nil {
		return nil, err
	}
	c.skipWhitespaceAndComments()
	var args []ast.MixinArgument
	if r, ok := c.peekChar(); ok && r == '(' {
		args, err = p.parseMixinArguments(c)
		if err != nil {
			return nil, err
		}
	}
	c.skipWhitespaceAndComments()
	if err := c.expectChar(';'); err != nil {
		return nil, err
	}
	return &ast.MixinCall{Name: name, Args: args}, nil
}

func (p *Parser) parseMixinArguments(c *cursor) ([]ast.MixinArgument, error) {
	var args []ast.MixinArgument
	if err := c.expectChar('('); err != nil {
		return nil, err
	}
	for {
		c.skipWhitespaceAndComments()
		if r, ok := c.peekChar(); ok && r == ')' {
			c.advanceChar()
			break
		}
		if r, ok := c.peekChar(); ok && r == '{' {
			c.advanceChar()
			body, err := p.parseMixinBody(c)
			if err != nil {
				return nil, err
			}
			args = append(args, ast.MixinArgument{Ruleset: body, IsRuleset: true})
		} else {
			v, err := p.readValue(c, ",)")
			if err != nil {
				return nil, err
			}
			args = append(args, ast.MixinArgument{Value: v})
		}
		c.skipWhitespaceAndComments()
		r, ok := c.peekChar()
		switch {
		case ok && r == ',':
			c.advanceChar()
		case ok && r == ')':
			c.advanceChar()
			return args, nil
		default:
			return nil, newParseError(c.position(), "missing separator in mixin call arguments")
		}
	}
	return args, nil
}

func (p *Parser) parseDetachedCall(c *cursor) (*ast.DetachedCall, error) {
	if err := c.expectChar('@'); err != nil {
		return nil, err
	}
	name := c.readIdentifier()
	if name == "" {
		return nil, newParseError(c.position(), "expected callable ruleset name")
	}
	c.skipWhitespaceAndComments()
	if err := c.expectChar('('); err != nil {
		return nil, err
	}
	c.skipWhitespaceAndComments()
	if r, ok := c.peekChar(); !ok || r != ')' {
		return nil, newParseError(c.position(), "arguments to detached ruleset calls are not supported")
	}
	c.advanceChar()
	c.skipWhitespaceAndComments()
	if err := c.expectChar(';'); err != nil {
		return nil, err
	}
	return &ast.DetachedCall{VariableName: name}, nil
}
