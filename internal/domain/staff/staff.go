package staff

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role represents an approval role in the ministry hierarchy.
type Role string

const (
	RoleSupervisor    Role = "SUPERVISOR"
	RoleUnitHead      Role = "UNIT_HEAD"
	RoleDirector      Role = "DIRECTOR"
	RoleHROfficer     Role = "HR_OFFICER"
	RoleHRDirector    Role = "HR_DIRECTOR"
	RoleChiefDirector Role = "CHIEF_DIRECTOR"
	RoleAdmin         Role = "ADMIN"
	RoleStaff         Role = "STAFF"
)

// Status represents staff record status.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// Staff represents a staff member of the ministry.
type Staff struct {
	ID           int64      `json:"id"`
	StaffID      uuid.UUID  `json:"staffId"`
	StaffNumber  string     `json:"staffNumber"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Email        string     `json:"email"`
	Role         Role       `json:"role"`
	Unit         string     `json:"unit"`
	Directorate  string     `json:"directorate"`
	Grade        float64    `json:"grade"`
	SupervisorID *uuid.UUID `json:"supervisorId,omitempty"`
	Status       Status     `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (s *Staff) IsActive() bool {
	return s.Status == StatusActive
}

// FullName returns the display name for notifications and audit entries.
func (s *Staff) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// ParseRole normalizes and validates a role string.
func ParseRole(raw string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(raw)))
	switch r {
	case RoleSupervisor, RoleUnitHead, RoleDirector, RoleHROfficer,
		RoleHRDirector, RoleChiefDirector, RoleAdmin, RoleStaff:
		return r, nil
	default:
		return "", errors.New("unknown role: " + raw)
	}
}

// Validate checks a staff record before persistence.
func Validate(s *Staff) error {
	if s == nil {
		return errors.New("staff is nil")
	}
	if strings.TrimSpace(s.StaffNumber) == "" {
		return errors.New("staff_number is required")
	}
	if strings.TrimSpace(s.FirstName) == "" || strings.TrimSpace(s.LastName) == "" {
		return errors.New("first_name and last_name are required")
	}
	if _, err := ParseRole(string(s.Role)); err != nil {
		return err
	}
	if strings.TrimSpace(s.Unit) == "" {
		return errors.New("unit is required")
	}
	return nil
}
