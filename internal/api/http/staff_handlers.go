package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/mofad-hr/leave-portal/internal/domain/staff"
)

func parseYear(val string) (int, error) {
	return strconv.Atoi(val)
}

type staffCreateRequest struct {
	StaffNumber  string     `json:"staff_number"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Email        string     `json:"email,omitempty"`
	Role         string     `json:"role"`
	Unit         string     `json:"unit"`
	Directorate  string     `json:"directorate,omitempty"`
	Grade        float64    `json:"grade,omitempty"`
	SupervisorID *uuid.UUID `json:"supervisor_id,omitempty"`
}

func (s *Server) createStaff(w http.ResponseWriter, r *http.Request) {
	var body staffCreateRequest
	if err := decodeBody(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	role, err := staff.ParseRole(body.Role)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	st := &staff.Staff{
		StaffID:      uuid.New(),
		StaffNumber:  body.StaffNumber,
		FirstName:    body.FirstName,
		LastName:     body.LastName,
		Email:        body.Email,
		Role:         role,
		Unit:         body.Unit,
		Directorate:  body.Directorate,
		Grade:        body.Grade,
		SupervisorID: body.SupervisorID,
		Status:       staff.StatusActive,
	}
	if err := s.staffSvc.Create(r.Context(), st); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, st)
}

func (s *Server) listStaff(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseLimitOffset(r, 50, 200)
	filter := staff.Filter{}
	if v := r.URL.Query().Get("role"); v != "" {
		role, err := staff.ParseRole(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
			return
		}
		filter.Role = &role
	}
	if v := r.URL.Query().Get("unit"); v != "" {
		filter.Unit = &v
	}
	if v := r.URL.Query().Get("directorate"); v != "" {
		filter.Directorate = &v
	}
	members, err := s.staffSvc.List(r.Context(), filter, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"staff": members})
}

func (s *Server) getStaff(w http.ResponseWriter, r *http.Request) {
	staffID, err := parseUUIDParam(r, "staffId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid staff id")
		return
	}
	st, err := s.staffSvc.Get(r.Context(), staffID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	if st == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "staff not found")
		return
	}
	respondJSON(w, http.StatusOK, st)
}

func (s *Server) getStaffBalances(w http.ResponseWriter, r *http.Request) {
	staffID, err := parseUUIDParam(r, "staffId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid staff id")
		return
	}
	year := time.Now().UTC().Year()
	if v := r.URL.Query().Get("year"); v != "" {
		if y, err := parseYear(v); err == nil {
			year = y
		} else {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid year")
			return
		}
	}
	balances, err := s.leaveSvc.Balances(r.Context(), staffID, year)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"year": year, "balances": balances})
}
