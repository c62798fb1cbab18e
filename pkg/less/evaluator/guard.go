package evaluator

import (
	"strconv"
	"strings"

	"github.com/sambeau/lessgo/pkg/less/ast"
	lerrors "github.com/sambeau/lessgo/pkg/less/errors"
)

// evalGuard evaluates a mixin's `when (...)` condition against the
// variables bound in the current (innermost) scope. A nil guard, or one the
// parser could not reduce to a single comparison, is always satisfied.
func (e *Evaluator) evalGuard(guard *ast.GuardExpr) (bool, error) {
	if guard == nil {
		return true, nil
	}
	if guard.Operator == "" {
		return true, nil
	}

	left, err := e.resolveGuardOperand(guard.Left)
	if err != nil {
		return false, err
	}
	right, err := e.resolveGuardOperand(guard.Right)
	if err != nil {
		return false, err
	}

	var result bool
	if guard.Operator == "=" {
		result = strings.TrimSpace(left) == strings.TrimSpace(right)
	} else {
		lv, lok := leadingNumber(left)
		rv, rok := leadingNumber(right)
		if !lok || !rok {
			return false, lerrors.Eval("cannot compare %q %s %q numerically", left, guard.Operator, right)
		}
		switch guard.Operator {
		case ">":
			result = lv > rv
		case "<":
			result = lv < rv
		case ">=":
			result = lv >= rv
		case "<=":
			result = lv <= rv
		default:
			return false, lerrors.Eval("unknown guard operator %q", guard.Operator)
		}
	}

	if guard.Negate {
		result = !result
	}
	return result, nil
}

func (e *Evaluator) resolveGuardOperand(operand ast.GuardOperand) (string, error) {
	if operand.IsVariable {
		return e.resolveVariableText(operand.VariableName)
	}
	return operand.Literal, nil
}

func leadingNumber(s string) (float64, bool) {
	trimmed := strings.TrimSpace(s)
	end := 0
	for end < len(trimmed) {
		c := trimmed[end]
		if c >= '0' && c <= '9' || c == '.' || (c == '-' && end == 0) || (c == '+' && end == 0) {
			end++
			continue
		}
		break
	}
	if end == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(trimmed[:end], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
