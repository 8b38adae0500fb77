package workflow

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mofad-hr/leave-portal/internal/domain/staff"
)

// Status represents workflow definition status.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
	StatusArchived Status = "ARCHIVED"
)

// Definition is a versioned approval-chain template. AppliesWhen is an
// expression evaluated against staff and request attributes during
// routing; an empty expression marks the default template. Higher
// Priority definitions are evaluated first.
type Definition struct {
	ID          int64           `json:"id"`
	WorkflowID  uuid.UUID       `json:"workflowId"`
	Name        string          `json:"name"`
	Version     int             `json:"version"`
	Description string          `json:"description"`
	Status      Status          `json:"status"`
	Priority    int             `json:"priority"`
	AppliesWhen string          `json:"appliesWhen,omitempty"`
	Template    json.RawMessage `json:"template"`
	CreatedAt   time.Time       `json:"createdAt"`
	CreatedBy   *string         `json:"createdBy,omitempty"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	UpdatedBy   *string         `json:"updatedBy,omitempty"`
}

// ParseTemplate decodes a definition's level template. Statuses default
// to pending.
func ParseTemplate(data json.RawMessage) ([]ApprovalLevel, error) {
	if len(data) == 0 {
		return nil, errors.New("workflow template is empty")
	}
	var levels []ApprovalLevel
	if err := json.Unmarshal(data, &levels); err != nil {
		return nil, err
	}
	for i := range levels {
		if levels[i].Status == "" {
			levels[i].Status = LevelPending
		}
	}
	return levels, nil
}

// ValidateTemplate checks template structural integrity before a
// definition is stored: at least one level, positive ordinals, known
// roles, a closed condition/operator vocabulary, positive escalation
// thresholds and no duplicate sequential ordinals.
func ValidateTemplate(levels []ApprovalLevel) error {
	if len(levels) == 0 {
		return errors.New("template requires at least one level")
	}
	seq := make(map[int]struct{})
	for i, level := range levels {
		if level.Level < 1 {
			return fmt.Errorf("level %d: ordinal must be >= 1", i)
		}
		if _, err := staff.ParseRole(string(level.ApproverRole)); err != nil {
			return fmt.Errorf("level %d: %w", i, err)
		}
		if !level.Parallel {
			if _, ok := seq[level.Level]; ok {
				return fmt.Errorf("level %d: duplicate sequential ordinal %d", i, level.Level)
			}
			seq[level.Level] = struct{}{}
		}
		for _, cond := range level.Conditions {
			if err := validateCondition(cond); err != nil {
				return fmt.Errorf("level %d: %w", i, err)
			}
		}
		for _, rule := range level.EscalationRules {
			if rule.TriggerAfterHours <= 0 {
				return fmt.Errorf("level %d: trigger_after_hours must be positive", i)
			}
			if rule.EscalateTo != nil {
				if _, err := staff.ParseRole(string(*rule.EscalateTo)); err != nil {
					return fmt.Errorf("level %d: escalate_to: %w", i, err)
				}
			}
		}
	}
	return nil
}

func validateCondition(cond Condition) error {
	switch cond.Type {
	case ConditionDays, ConditionLeaveType, ConditionDepartment, ConditionGrade, ConditionAmount:
	default:
		return fmt.Errorf("unknown condition type: %s", cond.Type)
	}
	switch cond.Operator {
	case OpGT, OpGTE, OpLT, OpLTE, OpEQ, OpIn, OpNotIn:
	default:
		return fmt.Errorf("unknown operator: %s", cond.Operator)
	}
	if cond.Type == ConditionLeaveType && cond.Operator != OpEQ && cond.Operator != OpIn {
		return fmt.Errorf("operator %s is not valid for leaveType conditions", cond.Operator)
	}
	switch cond.Operator {
	case OpIn, OpNotIn:
		if _, ok := cond.Value.([]interface{}); !ok {
			return fmt.Errorf("operator %s requires a list value", cond.Operator)
		}
	}
	return nil
}
