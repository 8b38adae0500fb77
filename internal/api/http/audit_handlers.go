package httpapi

import (
	"net/http"
	"time"

	"github.com/mofad-hr/leave-portal/internal/domain/audit"
)

func (s *Server) queryAudit(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseLimitOffset(r, 100, 500)
	filter := audit.Filter{}
	if v := r.URL.Query().Get("request_id"); v != "" {
		id, err := parseUUIDQuery(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid request_id")
			return
		}
		filter.RequestID = &id
	}
	if v := r.URL.Query().Get("action"); v != "" {
		action := audit.Action(v)
		filter.Action = &action
	}
	if v := r.URL.Query().Get("performed_by"); v != "" {
		filter.PerformedBy = &v
	}
	if v := r.URL.Query().Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid since timestamp")
			return
		}
		filter.Since = &t
	}
	if v := r.URL.Query().Get("until"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid until timestamp")
			return
		}
		filter.Until = &t
	}
	entries, err := s.auditSvc.Query(r.Context(), filter, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}
