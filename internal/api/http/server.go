package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	appAudit "github.com/mofad-hr/leave-portal/internal/application/audit"
	appDelegation "github.com/mofad-hr/leave-portal/internal/application/delegation"
	appLeave "github.com/mofad-hr/leave-portal/internal/application/leave"
	appStaff "github.com/mofad-hr/leave-portal/internal/application/staff"
	appWorkflow "github.com/mofad-hr/leave-portal/internal/application/workflow"
	"github.com/mofad-hr/leave-portal/internal/domain/notification"
	"github.com/mofad-hr/leave-portal/internal/domain/staff"
	"github.com/mofad-hr/leave-portal/internal/infrastructure/sse"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	leaveSvc      *appLeave.Service
	workflowSvc   *appWorkflow.Service
	staffSvc      *appStaff.Service
	delegationSvc *appDelegation.Service
	auditSvc      *appAudit.Service
	sseHub        *sse.Hub
}

func NewServer(
	leaveSvc *appLeave.Service,
	workflowSvc *appWorkflow.Service,
	staffSvc *appStaff.Service,
	delegationSvc *appDelegation.Service,
	auditSvc *appAudit.Service,
	sseHub *sse.Hub,
) *Server {
	return &Server{
		leaveSvc:      leaveSvc,
		workflowSvc:   workflowSvc,
		staffSvc:      staffSvc,
		delegationSvc: delegationSvc,
		auditSvc:      auditSvc,
		sseHub:        sseHub,
	}
}

// Router builds the HTTP router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.Route("/leave-requests", func(r chi.Router) {
			r.Post("/", s.submitLeaveRequest)
			r.Get("/", s.listLeaveRequests)
			r.Get("/pending", s.listPendingApprovals)
			r.Get("/{requestId}", s.getLeaveRequest)
			r.Post("/{requestId}/decide", s.decideLeaveRequest)
			r.Post("/{requestId}/cancel", s.cancelLeaveRequest)
			r.Get("/{requestId}/history", s.getLeaveRequestHistory)
		})

		r.Route("/delegations", func(r chi.Router) {
			r.Post("/", s.createDelegation)
			r.Get("/", s.listDelegations)
			r.Get("/{delegationId}", s.getDelegation)
			r.Post("/{delegationId}/respond", s.respondDelegation)
		})

		r.Route("/workflows", func(r chi.Router) {
			r.Post("/", s.createWorkflow)
			r.Get("/", s.listWorkflows)
			r.Get("/{workflowId}", s.getWorkflow)
			r.Post("/{workflowId}/activate", s.activateWorkflow)
			r.Post("/{workflowId}/deactivate", s.deactivateWorkflow)
		})

		r.Route("/staff", func(r chi.Router) {
			r.Post("/", s.createStaff)
			r.Get("/", s.listStaff)
			r.Get("/{staffId}", s.getStaff)
			r.Get("/{staffId}/balances", s.getStaffBalances)
		})

		r.Get("/audit", s.queryAudit)
		r.Get("/events", s.sseEndpoint)
	})

	return r
}

// Helpers
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]interface{}{
		"error":   code,
		"message": message,
	})
}

func parseUUIDParam(r *http.Request, key string) (uuid.UUID, error) {
	val := chi.URLParam(r, key)
	return uuid.Parse(val)
}

func parseUUIDQuery(val string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(val))
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// actorFromRequest resolves the acting staff member from the X-Staff-ID
// header. Identity is established upstream by the ministry gateway; this
// service trusts the header and only checks the record exists.
func (s *Server) actorFromRequest(r *http.Request) (appLeave.Actor, error) {
	raw := strings.TrimSpace(r.Header.Get("X-Staff-ID"))
	if raw == "" {
		return appLeave.Actor{}, fmt.Errorf("missing X-Staff-ID header")
	}
	staffID, err := uuid.Parse(raw)
	if err != nil {
		return appLeave.Actor{}, fmt.Errorf("invalid X-Staff-ID header")
	}
	st, err := s.staffSvc.Get(r.Context(), staffID)
	if err != nil {
		return appLeave.Actor{}, err
	}
	if st == nil {
		return appLeave.Actor{}, fmt.Errorf("staff not found")
	}
	return appLeave.Actor{
		StaffID: st.StaffID,
		Name:    st.FirstName + " " + st.LastName,
		Role:    st.Role,
	}, nil
}

func parseLimitOffset(r *http.Request, defaultLimit, maxLimit int) (int, int) {
	limit := defaultLimit
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil {
			limit = l
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if o, err := strconv.Atoi(v); err == nil {
			offset = o
		}
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (s *Server) sseEndpoint(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "client_id required")
		return
	}
	actor, err := s.actorFromRequest(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
		return
	}
	client := notification.NewSSEClient(clientID, actor.StaffID, []staff.Role{actor.Role})
	s.sseHub.Register(client)
	defer s.sseHub.Unregister(clientID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "streaming not supported")
		return
	}
	// Send an initial comment to flush headers and keep the connection alive.
	_, _ = w.Write([]byte(": connected\n\n"))
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case msg := <-client.MessageChan:
			if msg == nil {
				return
			}
			payload, _ := json.Marshal(msg)
			_, _ = w.Write([]byte("data: "))
			_, _ = w.Write(payload)
			_, _ = w.Write([]byte("\n\n"))
			flusher.Flush()
		case <-ctx.Done():
			return
		}
	}
}
