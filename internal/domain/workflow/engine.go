package workflow

import (
	"encoding/json"
	"sort"
	"time"
)

// CheckApprovalConditions reports whether every condition on the level
// holds for the given request attributes. A level without conditions is
// unconditionally required. Unknown condition types evaluate true; a
// condition on an attribute the request does not carry evaluates false.
func CheckApprovalConditions(level ApprovalLevel, data LeaveData) bool {
	for _, cond := range level.Conditions {
		if !evaluateCondition(cond, data) {
			return false
		}
	}
	return true
}

func evaluateCondition(cond Condition, data LeaveData) bool {
	switch cond.Type {
	case ConditionDays:
		return compareNumeric(float64(data.Days), cond.Operator, cond.Value)
	case ConditionLeaveType:
		return matchLeaveType(data.LeaveType, cond.Operator, cond.Value)
	case ConditionDepartment:
		if data.Department == nil {
			return false
		}
		return compareValue(*data.Department, cond.Operator, cond.Value)
	case ConditionGrade:
		if data.Grade == nil {
			return false
		}
		return compareNumeric(*data.Grade, cond.Operator, cond.Value)
	case ConditionAmount:
		if data.Amount == nil {
			return false
		}
		return compareNumeric(*data.Amount, cond.Operator, cond.Value)
	default:
		// Unknown condition types pass rather than block the chain.
		return true
	}
}

func matchLeaveType(actual string, op Operator, value interface{}) bool {
	switch op {
	case OpEQ:
		s, ok := value.(string)
		return ok && s == actual
	case OpIn:
		return contains(value, actual)
	default:
		return false
	}
}

func compareNumeric(actual float64, op Operator, value interface{}) bool {
	switch op {
	case OpGT, OpGTE, OpLT, OpLTE, OpEQ:
		expected, ok := toFloat(value)
		if !ok {
			return false
		}
		switch op {
		case OpGT:
			return actual > expected
		case OpGTE:
			return actual >= expected
		case OpLT:
			return actual < expected
		case OpLTE:
			return actual <= expected
		default:
			return actual == expected
		}
	case OpIn:
		return contains(value, actual)
	case OpNotIn:
		return !contains(value, actual)
	default:
		return false
	}
}

func compareValue(actual string, op Operator, value interface{}) bool {
	switch op {
	case OpEQ:
		s, ok := value.(string)
		return ok && s == actual
	case OpIn:
		return contains(value, actual)
	case OpNotIn:
		return !contains(value, actual)
	default:
		return false
	}
}

// contains tests membership of actual in a list-valued condition value.
// Numeric entries are compared numerically so JSON-decoded float64 values
// match int-typed attributes.
func contains(value interface{}, actual interface{}) bool {
	list, ok := value.([]interface{})
	if !ok {
		return false
	}
	for _, entry := range list {
		if entry == actual {
			return true
		}
		ef, eok := toFloat(entry)
		af, aok := toFloat(actual)
		if eok && aok && ef == af {
			return true
		}
	}
	return false
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// RequiredApprovalLevels filters a level template down to the levels that
// apply to the given request. Required levels are always retained;
// optional levels are retained only when their conditions hold. Input
// order is preserved.
func RequiredApprovalLevels(levels []ApprovalLevel, data LeaveData) []ApprovalLevel {
	out := make([]ApprovalLevel, 0, len(levels))
	for _, level := range levels {
		if level.IsRequired() || CheckApprovalConditions(level, data) {
			out = append(out, level)
		}
	}
	return out
}

// ParallelApprovalsComplete reports whether every parallel cohort and
// every sequential level is approved. Any rejected, pending or delegated
// member anywhere makes the result false.
func ParallelApprovalsComplete(levels []ApprovalLevel) bool {
	cohorts := make(map[int][]ApprovalLevel)
	for _, level := range levels {
		if level.Parallel {
			cohorts[level.Level] = append(cohorts[level.Level], level)
			continue
		}
		if level.Status != LevelApproved {
			return false
		}
	}
	for _, cohort := range cohorts {
		for _, member := range cohort {
			if member.Status != LevelApproved {
				return false
			}
		}
	}
	return true
}

// CheckEscalation decides whether a pending level is overdue relative to
// the request's submission time. Rules are checked largest threshold
// first so only the single furthest-overdue tier fires. The caller
// applies the resulting action; this function only decides.
func CheckEscalation(level ApprovalLevel, submittedAt, now time.Time) EscalationDecision {
	if level.Status != LevelPending || len(level.EscalationRules) == 0 {
		return EscalationDecision{}
	}
	elapsed := now.Sub(submittedAt).Hours()

	rules := make([]EscalationRule, len(level.EscalationRules))
	copy(rules, level.EscalationRules)
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].TriggerAfterHours > rules[j].TriggerAfterHours
	})
	for _, rule := range rules {
		if elapsed >= float64(rule.TriggerAfterHours) {
			return EscalationDecision{
				ShouldEscalate: true,
				EscalateTo:     rule.EscalateTo,
				Notify:         rule.Notify,
				AutoApprove:    rule.AutoApprove,
			}
		}
	}
	return EscalationDecision{}
}

// CalculateApprovalStatus combines level states into the request's overall
// status. Rejection anywhere is absolute. With no required levels the
// request is vacuously approved. When all required levels are approved and
// parallel levels exist, the full set must additionally satisfy
// ParallelApprovalsComplete.
func CalculateApprovalStatus(levels []ApprovalLevel) RequestStatus {
	for _, level := range levels {
		if level.Status == LevelRejected {
			return RequestRejected
		}
	}

	allRequiredApproved := true
	hasRequired := false
	hasParallel := false
	for _, level := range levels {
		if level.Parallel {
			hasParallel = true
		}
		if level.IsRequired() {
			hasRequired = true
			if level.Status != LevelApproved {
				allRequiredApproved = false
			}
		}
	}
	if !hasRequired {
		return RequestApproved
	}
	if !allRequiredApproved {
		return RequestPending
	}
	if hasParallel && !ParallelApprovalsComplete(levels) {
		return RequestPending
	}
	return RequestApproved
}

// NextApprovers returns the levels currently actionable. Parallel
// candidates are all simultaneously actionable; otherwise the earliest
// pending sequential level is actionable only once every earlier
// sequential level is approved.
func NextApprovers(levels []ApprovalLevel) []ApprovalLevel {
	var candidates []ApprovalLevel
	for _, level := range levels {
		if level.IsActionable() {
			candidates = append(candidates, level)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	var parallel []ApprovalLevel
	for _, c := range candidates {
		if c.Parallel {
			parallel = append(parallel, c)
		}
	}
	if len(parallel) > 0 {
		return parallel
	}

	next := candidates[0]
	for _, c := range candidates[1:] {
		if c.Level < next.Level {
			next = c
		}
	}
	for _, level := range levels {
		if !level.Parallel && level.Level < next.Level && level.Status != LevelApproved {
			return nil
		}
	}
	return []ApprovalLevel{next}
}
