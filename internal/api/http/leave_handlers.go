package httpapi

import (
	"errors"
	"net/http"
	"time"

	appLeave "github.com/mofad-hr/leave-portal/internal/application/leave"
	"github.com/mofad-hr/leave-portal/internal/application/routing"
	"github.com/mofad-hr/leave-portal/internal/domain/leave"
)

type leaveSubmitRequest struct {
	LeaveType string `json:"leave_type"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Days      int    `json:"days"`
	Reason    string `json:"reason,omitempty"`
}

type leaveDecideRequest struct {
	Decision string  `json:"decision"`
	Comment  *string `json:"comment,omitempty"`
}

func (s *Server) submitLeaveRequest(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actorFromRequest(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
		return
	}
	var body leaveSubmitRequest
	if err := decodeBody(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	start, err := time.Parse("2006-01-02", body.StartDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid start_date, expected YYYY-MM-DD")
		return
	}
	end, err := time.Parse("2006-01-02", body.EndDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid end_date, expected YYYY-MM-DD")
		return
	}
	req, err := s.leaveSvc.Submit(r.Context(), actor.StaffID, appLeave.SubmitInput{
		LeaveType: body.LeaveType,
		StartDate: start,
		EndDate:   end,
		Days:      body.Days,
		Reason:    body.Reason,
	})
	if err != nil {
		switch {
		case errors.Is(err, leave.ErrInsufficientBalance):
			respondError(w, http.StatusConflict, "INSUFFICIENT_BALANCE", err.Error())
		case errors.Is(err, routing.ErrNoTemplate):
			respondError(w, http.StatusUnprocessableEntity, "NO_WORKFLOW", err.Error())
		default:
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		}
		return
	}
	respondJSON(w, http.StatusCreated, req)
}

func (s *Server) listLeaveRequests(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseLimitOffset(r, 50, 200)
	filter := leave.Filter{}
	if v := r.URL.Query().Get("staff_id"); v != "" {
		id, err := parseUUIDQuery(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid staff_id")
			return
		}
		filter.StaffID = &id
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status := leave.Status(v)
		filter.Status = &status
	}
	if v := r.URL.Query().Get("leave_type"); v != "" {
		lt, err := leave.ParseType(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
			return
		}
		filter.LeaveType = &lt
	}
	if v := r.URL.Query().Get("unit"); v != "" {
		filter.Unit = &v
	}
	requests, err := s.leaveSvc.List(r.Context(), filter, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"requests": requests})
}

func (s *Server) listPendingApprovals(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actorFromRequest(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
		return
	}
	requests, err := s.leaveSvc.PendingForApprover(r.Context(), actor)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"requests": requests})
}

func (s *Server) getLeaveRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := parseUUIDParam(r, "requestId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid request id")
		return
	}
	req, err := s.leaveSvc.Get(r.Context(), requestID)
	if err != nil {
		if errors.Is(err, leave.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "leave request not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, req)
}

func (s *Server) decideLeaveRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := parseUUIDParam(r, "requestId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid request id")
		return
	}
	actor, err := s.actorFromRequest(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
		return
	}
	var body leaveDecideRequest
	if err := decodeBody(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	var decision appLeave.Decision
	switch body.Decision {
	case string(appLeave.DecisionApprove):
		decision = appLeave.DecisionApprove
	case string(appLeave.DecisionReject):
		decision = appLeave.DecisionReject
	default:
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "decision must be APPROVE or REJECT")
		return
	}
	req, err := s.leaveSvc.Decide(r.Context(), requestID, actor, decision, body.Comment)
	if err != nil {
		respondLeaveError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

func (s *Server) cancelLeaveRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := parseUUIDParam(r, "requestId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid request id")
		return
	}
	actor, err := s.actorFromRequest(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
		return
	}
	req, err := s.leaveSvc.Cancel(r.Context(), requestID, actor)
	if err != nil {
		respondLeaveError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

func (s *Server) getLeaveRequestHistory(w http.ResponseWriter, r *http.Request) {
	requestID, err := parseUUIDParam(r, "requestId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid request id")
		return
	}
	entries, err := s.auditSvc.History(r.Context(), requestID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"history": entries})
}

func respondLeaveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, leave.ErrNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", "leave request not found")
	case errors.Is(err, leave.ErrNotAuthorized):
		respondError(w, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, leave.ErrAlreadyDecided):
		respondError(w, http.StatusConflict, "ALREADY_DECIDED", err.Error())
	case errors.Is(err, leave.ErrVersionConflict):
		respondError(w, http.StatusConflict, "VERSION_CONFLICT", "request was modified concurrently, retry")
	default:
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}
