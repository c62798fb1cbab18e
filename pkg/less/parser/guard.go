package parser

import "github.com/sambeau/lessgo/pkg/less/ast"

// parseGuard parses a `when (...)` condition into a GuardExpr. It supports a
// single comparison of the form `@var OP value` or `value OP value`, with an
// optional leading `not`. Anything richer (`and`/`or`, multiple clauses) is
// recorded verbatim in Raw but not evaluated; the evaluator treats such a
// guard as always satisfied.
func parseGuard(c *cursor) (*ast.GuardExpr, error) {
	start := c.pos
	negate := false
	c.skipWhitespaceAndComments()
	if c.startsWithKeyword("not") {
		c.consumeKeyword("not")
		c.skipWhitespaceAndComments()
		negate = true
	}
	if err := c.expectChar('('); err != nil {
		return nil, err
	}
	c.skipWhitespaceAndComments()

	left, err := readGuardOperand(c)
	if err != nil {
		return consumeGuardRemainder(c, start, negate)
	}
	c.skipWhitespaceAndComments()

	op, ok := readGuardOperator(c)
	if !ok {
		return consumeGuardRemainder(c, start, negate)
	}
	c.skipWhitespaceAndComments()

	right, err := readGuardOperand(c)
	if err != nil {
		return consumeGuardRemainder(c, start, negate)
	}
	c.skipWhitespaceAndComments()

	if err := c.expectChar(')'); err != nil {
		return consumeGuardRemainder(c, start, negate)
	}
	end := c.pos
	c.skipWhitespaceAndComments()
	if !c.startsWith('{') {
		return consumeGuardRemainder(c, start, negate)
	}
	c.pos = end

	return &ast.GuardExpr{
		Raw:      c.source[start:c.pos],
		Negate:   negate,
		Left:     left,
		Operator: op,
		Right:    right,
	}, nil
}

// consumeGuardRemainder is used once a guard fails to parse as a single
// simple comparison: it skips to the matching close paren (mirroring the
// balance-only lookahead everything else performs) and returns a GuardExpr
// with no comparison, which the evaluator always satisfies.
func consumeGuardRemainder(c *cursor, start int, negate bool) (*ast.GuardExpr, error) {
	c.pos = start
	c.skipWhitespaceAndComments()
	if c.startsWithKeyword("not") {
		c.consumeKeyword("not")
		c.skipWhitespaceAndComments()
	}
	c.skipGuardCondition()
	return &ast.GuardExpr{Raw: c.source[start:c.pos], Negate: negate}, nil
}

func readGuardOperand(c *cursor) (ast.GuardOperand, error) {
	r, ok := c.peekChar()
	if !ok {
		return ast.GuardOperand{}, newParseError(c.pos, "expected guard operand")
	}
	if r == '@' {
		c.advanceChar()
		name := c.readIdentifier()
		if name == "" {
			return ast.GuardOperand{}, newParseError(c.pos, "expected variable name")
		}
		return ast.GuardOperand{VariableName: name, IsVariable: true}, nil
	}
	if r == '\'' || r == '"' {
		quote := r
		c.advanceChar()
		start := c.pos
		for {
			next, ok := c.peekChar()
			if !ok {
				return ast.GuardOperand{}, newParseError(c.pos, "unterminated string in guard")
			}
			if next == quote {
				break
			}
			c.advanceChar()
		}
		literal := c.source[start:c.pos]
		c.advanceChar()
		return ast.GuardOperand{Literal: literal}, nil
	}
	start := c.pos
	for {
		next, ok := c.peekChar()
		if !ok || next == ')' || next == '=' || next == '<' || next == '>' || isSpaceByte(byte(next)) {
			break
		}
		c.advanceChar()
	}
	if c.pos == start {
		return ast.GuardOperand{}, newParseError(c.pos, "expected guard operand")
	}
	return ast.GuardOperand{Literal: c.source[start:c.pos]}, nil
}

func readGuardOperator(c *cursor) (string, bool) {
	r, ok := c.peekChar()
	if !ok {
		return "", false
	}
	switch r {
	case '=':
		c.advanceChar()
		return "=", true
	case '>', '<':
		c.advanceChar()
		op := string(r)
		if next, ok := c.peekChar(); ok && next == '=' {
			c.advanceChar()
			op += "="
		}
		return op, true
	default:
		return "", false
	}
}
