package httpapi

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/mofad-hr/leave-portal/internal/domain/delegation"
	"github.com/mofad-hr/leave-portal/internal/domain/leave"
)

type delegationCreateRequest struct {
	RequestID uuid.UUID `json:"request_id"`
	Level     int       `json:"level"`
	ToStaffID uuid.UUID `json:"to_staff_id"`
	Reason    *string   `json:"reason,omitempty"`
}

type delegationRespondRequest struct {
	Accept bool `json:"accept"`
}

func (s *Server) createDelegation(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actorFromRequest(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
		return
	}
	var body delegationCreateRequest
	if err := decodeBody(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	d, err := s.delegationSvc.Create(r.Context(), body.RequestID, body.Level, actor, body.ToStaffID, body.Reason)
	if err != nil {
		respondDelegationError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, d)
}

func (s *Server) listDelegations(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseLimitOffset(r, 50, 200)
	filter := delegation.Filter{}
	if v := r.URL.Query().Get("request_id"); v != "" {
		id, err := parseUUIDQuery(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid request_id")
			return
		}
		filter.RequestID = &id
	}
	if v := r.URL.Query().Get("to_staff_id"); v != "" {
		id, err := parseUUIDQuery(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid to_staff_id")
			return
		}
		filter.ToStaffID = &id
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status := delegation.Status(v)
		filter.Status = &status
	}
	requests, err := s.delegationSvc.List(r.Context(), filter, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"delegations": requests})
}

func (s *Server) getDelegation(w http.ResponseWriter, r *http.Request) {
	delegationID, err := parseUUIDParam(r, "delegationId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid delegation id")
		return
	}
	d, err := s.delegationSvc.Get(r.Context(), delegationID)
	if err != nil {
		respondDelegationError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, d)
}

func (s *Server) respondDelegation(w http.ResponseWriter, r *http.Request) {
	delegationID, err := parseUUIDParam(r, "delegationId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid delegation id")
		return
	}
	actor, err := s.actorFromRequest(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
		return
	}
	var body delegationRespondRequest
	if err := decodeBody(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	d, err := s.delegationSvc.Respond(r.Context(), delegationID, actor, body.Accept)
	if err != nil {
		respondDelegationError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, d)
}

func respondDelegationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, delegation.ErrNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", "delegation request not found")
	case errors.Is(err, delegation.ErrAlreadyDecided):
		respondError(w, http.StatusConflict, "ALREADY_DECIDED", err.Error())
	case errors.Is(err, leave.ErrNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", "leave request not found")
	case errors.Is(err, leave.ErrNotAuthorized):
		respondError(w, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, leave.ErrVersionConflict):
		respondError(w, http.StatusConflict, "VERSION_CONFLICT", "request was modified concurrently, retry")
	default:
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
	}
}
