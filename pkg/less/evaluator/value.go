package evaluator

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sambeau/lessgo/pkg/less/ast"
	lcolor "github.com/sambeau/lessgo/pkg/less/color"
	lerrors "github.com/sambeau/lessgo/pkg/less/errors"
)

func (e *Evaluator) evalValue(value *ast.Value) (string, error) {
	var buffer strings.Builder
	for _, piece := range value.Pieces {
		if piece.IsVariable {
			resolved, err := e.resolveVariableText(piece.VariableName)
			if err != nil {
				return "", err
			}
			buffer.WriteString(resolved)
		} else {
			buffer.WriteString(piece.Literal)
		}
	}
	return e.computeValue(strings.TrimSpace(buffer.String()))
}

// computeValue tries, in order: a whole-value color function, inline color
// function substitutions, passthrough for constructs this implementation
// does not evaluate (var(), url(), unit(), calc()), and finally flat
// left-to-right arithmetic. Anything it cannot make sense of is returned
// unchanged rather than failing the compile.
func (e *Evaluator) computeValue(input string) (string, error) {
	if input == "" {
		return "", nil
	}
	if color, ok, err := e.evaluateColorFunction(input); err != nil {
		return "", err
	} else if ok {
		return color, nil
	}
	if inline, ok, err := e.replaceInlineColorFunctions(input); err != nil {
		return "", err
	} else if ok {
		return inline, nil
	}
	if strings.Contains(input, "var(") || strings.Contains(input, "url(") ||
		strings.Contains(input, "unit(") || strings.Contains(input, "calc(") {
		return input, nil
	}
	if value, ok, err := evaluateArithmetic(input); err == nil && ok {
		return value, nil
	}
	return input, nil
}

var colorFnRe = regexp.MustCompile(`(?i)^(lighten|darken|fade)\s*\(\s*([^,]+)\s*,\s*([^)]+)\)$`)

var rgbFnRe = regexp.MustCompile(`(?i)^rgba?\s*\([^)]*\)$`)

func (e *Evaluator) evaluateColorFunction(input string) (string, bool, error) {
	if result, ok, err := evaluateOverlayFunction(input); err != nil {
		return "", false, err
	} else if ok {
		return result, true, nil
	}

	if rgbFnRe.MatchString(input) {
		color, ok := lcolor.Parse(input)
		if !ok {
			return "", false, lerrors.Eval("cannot parse color argument: %s", input)
		}
		return lcolor.Format(color), true, nil
	}

	m := colorFnRe.FindStringSubmatch(input)
	if m == nil {
		return "", false, nil
	}
	name := strings.ToLower(m[1])
	colorArg := strings.TrimSpace(m[2])
	amountArg := strings.TrimSpace(m[3])

	color, ok := lcolor.Parse(colorArg)
	if !ok {
		return "", false, lerrors.Eval("cannot parse color argument: %s", colorArg)
	}
	amount, err := parsePercentage(amountArg)
	if err != nil {
		return "", false, err
	}

	var result lcolor.RGBA
	switch name {
	case "lighten":
		result = lcolor.Lighten(color, amount)
	case "darken":
		result = lcolor.Darken(color, amount)
	case "fade":
		result = lcolor.Fade(color, amount)
	default:
		return "", false, nil
	}

	if name == "fade" {
		return lcolor.FormatRGBA(result), true, nil
	}
	return lcolor.Format(result), true, nil
}

func evaluateOverlayFunction(input string) (string, bool, error) {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(strings.ToLower(trimmed), "overlay(") {
		return "", false, nil
	}
	start := strings.IndexByte(trimmed, '(')
	end := strings.LastIndexByte(trimmed, ')')
	if start < 0 || end < 0 || end <= start {
		return "", false, lerrors.Eval("overlay function is missing parentheses")
	}
	body := trimmed[start+1 : end]
	first, second, err := splitOverlayArgs(body)
	if err != nil {
		return "", false, err
	}
	firstColor, ok := lcolor.Parse(strings.TrimSpace(first))
	if !ok {
		return "", false, lerrors.Eval("cannot parse color argument: %s", first)
	}
	secondColor, ok := lcolor.Parse(strings.TrimSpace(second))
	if !ok {
		return "", false, lerrors.Eval("cannot parse color argument: %s", second)
	}
	blended := lcolor.Overlay(firstColor, secondColor)
	return lcolor.Format(blended), true, nil
}

func splitOverlayArgs(input string) (string, string, error) {
	depth := 0
	for idx := 0; idx < len(input); idx++ {
		switch input[idx] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				return input[:idx], input[idx+1:], nil
			}
		}
	}
	return "", "", lerrors.Eval("overlay function arguments are incomplete")
}

var inlineColorFnRe = regexp.MustCompile(`(?i)(lighten|darken|fade)\s*\(\s*((?:[^()]+|\([^()]*\))+?)\s*,\s*([^)]+)\)`)

var inlineRGBFnRe = regexp.MustCompile(`(?i)rgba?\s*\([^()]*\)`)

func (e *Evaluator) replaceInlineColorFunctions(input string) (string, bool, error) {
	withRGB, rgbMatched, err := e.replaceInlineRGBFunctions(input)
	if err != nil {
		return "", false, err
	}

	matches := inlineColorFnRe.FindAllStringSubmatchIndex(withRGB, -1)
	if len(matches) == 0 {
		return withRGB, rgbMatched, nil
	}

	var out strings.Builder
	last := 0
	for _, m := range matches {
		out.WriteString(withRGB[last:m[0]])

		name := strings.ToLower(withRGB[m[2]:m[3]])
		colorArg := strings.TrimSpace(withRGB[m[4]:m[5]])
		amountArg := strings.TrimSpace(withRGB[m[6]:m[7]])

		color, ok := lcolor.Parse(colorArg)
		if !ok {
			return "", false, lerrors.Eval("cannot parse color argument: %s", colorArg)
		}
		amount, err := parsePercentage(amountArg)
		if err != nil {
			return "", false, err
		}

		var replacement string
		switch name {
		case "lighten":
			replacement = lcolor.Format(lcolor.Lighten(color, amount))
		case "darken":
			replacement = lcolor.Format(lcolor.Darken(color, amount))
		case "fade":
			replacement = lcolor.FormatRGBA(lcolor.Fade(color, amount))
		}
		out.WriteString(replacement)
		last = m[1]
	}
	out.WriteString(withRGB[last:])
	return out.String(), true, nil
}

// replaceInlineRGBFunctions canonicalizes every bare rgb()/rgba() occurrence
// in input, e.g. `1px solid rgb(0, 0, 0)` -> `1px solid #000000`.
func (e *Evaluator) replaceInlineRGBFunctions(input string) (string, bool, error) {
	matches := inlineRGBFnRe.FindAllStringIndex(input, -1)
	if len(matches) == 0 {
		return input, false, nil
	}

	var out strings.Builder
	last := 0
	for _, m := range matches {
		out.WriteString(input[last:m[0]])
		raw := input[m[0]:m[1]]
		color, ok := lcolor.Parse(raw)
		if !ok {
			return "", false, lerrors.Eval("cannot parse color argument: %s", raw)
		}
		out.WriteString(lcolor.Format(color))
		last = m[1]
	}
	out.WriteString(input[last:])
	return out.String(), true, nil
}

func parsePercentage(raw string) (float64, error) {
	cleaned := strings.TrimSpace(raw)
	if strings.HasSuffix(cleaned, "%") {
		number := strings.TrimSpace(cleaned[:len(cleaned)-1])
		value, err := strconv.ParseFloat(number, 64)
		if err != nil {
			return 0, lerrors.Eval("cannot parse percentage: %s", raw)
		}
		return clamp01(value / 100), nil
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, lerrors.Eval("cannot parse number: %s", raw)
	}
	return clamp01(value), nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// quantity is a numeric value with an optional CSS unit, e.g. `10px`.
type quantity struct {
	value float64
	unit  string
}

type tokenKind int

const (
	tokenQuantity tokenKind = iota
	tokenOperator
)

type token struct {
	kind tokenKind
	qty  quantity
	op   byte
}

// evaluateArithmetic implements the no-precedence, left-to-right arithmetic
// described for value expressions. Grouping parentheses are discarded
// entirely (replaced with spaces) rather than establishing precedence, so
// `(1 + 2) * 3` and `1 + 2 * 3` evaluate identically, left to right.
// A value containing more than one space-separated arithmetic segment
// (`padding: 4px+1 9px*2`) evaluates each segment independently and joins
// the results with a single space.
func evaluateArithmetic(input string) (string, bool, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r == '(' || r == ')' {
			return ' '
		}
		return r
	}, input)
	expression := strings.TrimSpace(cleaned)
	if expression == "" || !containsOperator(expression) {
		return "", false, nil
	}

	tokens, err := tokenizeExpression(expression)
	if err != nil {
		return "", false, err
	}
	if len(tokens) == 0 {
		return "", false, nil
	}

	if tokens[0].kind != tokenQuantity {
		return "", false, lerrors.Eval("arithmetic expression is missing an initial value")
	}
	current := tokens[0].qty
	var results []quantity

	i := 1
	for i < len(tokens) {
		t := tokens[i]
		if t.kind == tokenOperator {
			if i+1 >= len(tokens) || tokens[i+1].kind != tokenQuantity {
				return "", false, lerrors.Eval("arithmetic expression is missing a right-hand value")
			}
			rhs := tokens[i+1].qty
			current, err = applyOperator(current, t.op, rhs)
			if err != nil {
				return "", false, err
			}
			i += 2
			continue
		}
		results = append(results, current)
		current = t.qty
		i++
	}
	results = append(results, current)

	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = formatQuantity(r)
	}
	return strings.Join(parts, " "), true, nil
}

func tokenizeExpression(input string) ([]token, error) {
	var tokens []token
	var current strings.Builder
	prevWasOperator := true

	flush := func() error {
		trimmed := strings.TrimSpace(current.String())
		current.Reset()
		if trimmed == "" {
			return nil
		}
		if trimmed == "-" || trimmed == "+" {
			return lerrors.Eval("arithmetic expression is missing a value")
		}
		if len(trimmed) == 1 && isOperatorByte(trimmed[0]) {
			tokens = append(tokens, token{kind: tokenOperator, op: trimmed[0]})
			return nil
		}
		q, err := parseQuantity(trimmed)
		if err != nil {
			return err
		}
		tokens = append(tokens, token{kind: tokenQuantity, qty: q})
		return nil
	}

	for _, r := range input {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			trimmed := strings.TrimSpace(current.String())
			if trimmed == "-" || trimmed == "+" {
				continue
			}
			if current.Len() > 0 {
				if err := flush(); err != nil {
					return nil, err
				}
			}
			continue
		}

		if isOperatorRune(r) {
			if r == '-' && prevWasOperator {
				current.WriteRune(r)
				continue
			}
			if current.Len() > 0 {
				if err := flush(); err != nil {
					return nil, err
				}
			}
			tokens = append(tokens, token{kind: tokenOperator, op: byte(r)})
			prevWasOperator = true
			continue
		}

		current.WriteRune(r)
		prevWasOperator = false
	}

	if current.Len() > 0 {
		if err := flush(); err != nil {
			return nil, err
		}
	}

	return tokens, nil
}

func parseQuantity(token string) (quantity, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return quantity{}, lerrors.Eval("missing numeric content")
	}

	var valuePart, unitPart strings.Builder
	for _, r := range trimmed {
		switch {
		case (r >= '0' && r <= '9') || r == '.' || ((r == '-' || r == '+') && valuePart.Len() == 0):
			valuePart.WriteRune(r)
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '%':
			unitPart.WriteRune(r)
		case r == ' ' || r == '\t':
			continue
		default:
			return quantity{}, lerrors.Eval("cannot parse numeric fragment: %s", token)
		}
	}

	if valuePart.Len() == 0 {
		return quantity{}, lerrors.Eval("missing numeric part: %s", token)
	}
	value, err := strconv.ParseFloat(valuePart.String(), 64)
	if err != nil {
		return quantity{}, lerrors.Eval("cannot parse number %s", valuePart.String())
	}
	return quantity{value: value, unit: unitPart.String()}, nil
}

// applyOperator implements +, -, *, / over quantities. Addition and
// subtraction require identical units, except that a unitless operand adopts
// the other operand's unit. Multiplication allows at most one
// operand to carry a unit. Division rejects a zero denominator; unlike the
// reference implementation it permits dividing two quantities that share the
// same unit, cancelling it to a unitless result, and still rejects division
// by a denominator carrying a unit the numerator does not share.
func applyOperator(lhs quantity, op byte, rhs quantity) (quantity, error) {
	switch op {
	case '+', '-':
		unit := lhs.unit
		switch {
		case lhs.unit == rhs.unit:
		case lhs.unit == "":
			unit = rhs.unit
		case rhs.unit == "":
		default:
			return quantity{}, lerrors.Eval("cannot add/subtract different units: %g%s and %g%s", lhs.value, lhs.unit, rhs.value, rhs.unit)
		}
		value := lhs.value + rhs.value
		if op == '-' {
			value = lhs.value - rhs.value
		}
		return quantity{value: value, unit: unit}, nil
	case '*':
		if lhs.unit != "" && rhs.unit != "" {
			return quantity{}, lerrors.Eval("multiplying two unit-bearing values is not supported")
		}
		unit := rhs.unit
		if lhs.unit != "" {
			unit = lhs.unit
		}
		return quantity{value: lhs.value * rhs.value, unit: unit}, nil
	case '/':
		if rhs.value == 0 {
			return quantity{}, lerrors.Eval("division by zero")
		}
		if rhs.unit != "" {
			if rhs.unit != lhs.unit {
				return quantity{}, lerrors.Eval("cannot divide by a value with a different unit: %g%s", rhs.value, rhs.unit)
			}
			return quantity{value: lhs.value / rhs.value}, nil
		}
		return quantity{value: lhs.value / rhs.value, unit: lhs.unit}, nil
	default:
		return quantity{}, lerrors.Eval("unknown operator %q", string(op))
	}
}

func formatQuantity(q quantity) string {
	value := q.value
	if value < 0 {
		if -value < 1e-9 {
			value = 0
		}
	} else if value < 1e-9 {
		value = 0
	}
	formatted := strconv.FormatFloat(value, 'f', 4, 64)
	for strings.Contains(formatted, ".") && strings.HasSuffix(formatted, "0") {
		formatted = formatted[:len(formatted)-1]
	}
	formatted = strings.TrimSuffix(formatted, ".")
	return formatted + q.unit
}

func containsOperator(input string) bool {
	runes := []rune(input)
	for idx, r := range runes {
		if !isOperatorRune(r) {
			continue
		}
		if r == '-' && idx+1 < len(runes) && runes[idx+1] == '-' {
			continue
		}

		var prev, next rune
		hasPrev, hasNext := idx > 0, idx+1 < len(runes)
		if hasPrev {
			prev = runes[idx-1]
		}
		if hasNext {
			next = runes[idx+1]
		}

		prevOK := !hasPrev || isSpaceOrDigitOrParenOp(prev) ||
			(prev >= 'a' && prev <= 'z') || (prev >= 'A' && prev <= 'Z') || prev == '%'
		nextOK := !hasNext || isSpaceOrDigitOrParenOp(next) || next == '@'

		if prevOK && nextOK {
			return true
		}
	}
	return false
}

func isSpaceOrDigitOrParenOp(r rune) bool {
	if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
		return true
	}
	if r >= '0' && r <= '9' {
		return true
	}
	switch r {
	case '(', ')', '+', '-', '*', '/':
		return true
	}
	return false
}

func isOperatorRune(r rune) bool {
	switch r {
	case '+', '-', '*', '/':
		return true
	}
	return false
}

func isOperatorByte(b byte) bool { return isOperatorRune(rune(b)) }
