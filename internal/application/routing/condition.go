package routing

import (
	"errors"
	"strings"

	"github.com/Knetic/govaluate"

	"github.com/mofad-hr/leave-portal/internal/domain/staff"
)

// EvaluateExpression evaluates a template's applies_when expression
// against routing parameters. Empty expression returns true. Supports
// "true"/"false" literals.
func EvaluateExpression(expression string, params map[string]interface{}) (bool, error) {
	expr := strings.TrimSpace(expression)
	if expr == "" {
		return true, nil
	}
	switch strings.ToLower(expr) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}

	parsed, err := govaluate.NewEvaluableExpression(expr)
	if err != nil {
		return false, err
	}
	result, err := parsed.Evaluate(params)
	if err != nil {
		return false, err
	}
	switch v := result.(type) {
	case bool:
		return v, nil
	default:
		return false, errors.New("applies_when did not evaluate to boolean")
	}
}

// Context builds the parameter map applies_when expressions see: the
// staff member's placement plus the request attributes.
func Context(st *staff.Staff, leaveType string, days int) map[string]interface{} {
	return map[string]interface{}{
		"role":        string(st.Role),
		"unit":        st.Unit,
		"directorate": st.Directorate,
		"grade":       st.Grade,
		"leaveType":   leaveType,
		"days":        days,
	}
}
