package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/mofad-hr/leave-portal/internal/domain/workflow"
)

type workflowCreateRequest struct {
	WorkflowID  *uuid.UUID      `json:"workflow_id,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Priority    int             `json:"priority,omitempty"`
	AppliesWhen string          `json:"applies_when,omitempty"`
	Template    json.RawMessage `json:"template"`
}

func (s *Server) createWorkflow(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actorFromRequest(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
		return
	}
	var body workflowCreateRequest
	if err := decodeBody(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	actorName := actor.ActorString()
	def := &workflow.Definition{
		Name:        body.Name,
		Description: body.Description,
		Priority:    body.Priority,
		AppliesWhen: body.AppliesWhen,
		Template:    body.Template,
		CreatedBy:   &actorName,
	}
	if body.WorkflowID != nil {
		def.WorkflowID = *body.WorkflowID
	}
	created, err := s.workflowSvc.CreateDefinition(r.Context(), def)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) listWorkflows(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseLimitOffset(r, 50, 200)
	defs, err := s.workflowSvc.List(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"workflows": defs})
}

func (s *Server) getWorkflow(w http.ResponseWriter, r *http.Request) {
	workflowID, err := parseUUIDParam(r, "workflowId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid workflow id")
		return
	}
	def, err := s.workflowSvc.Get(r.Context(), workflowID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	if def == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "workflow not found")
		return
	}
	respondJSON(w, http.StatusOK, def)
}

func (s *Server) activateWorkflow(w http.ResponseWriter, r *http.Request) {
	s.setWorkflowStatus(w, r, true)
}

func (s *Server) deactivateWorkflow(w http.ResponseWriter, r *http.Request) {
	s.setWorkflowStatus(w, r, false)
}

func (s *Server) setWorkflowStatus(w http.ResponseWriter, r *http.Request, active bool) {
	workflowID, err := parseUUIDParam(r, "workflowId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid workflow id")
		return
	}
	actor, err := s.actorFromRequest(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
		return
	}
	actorName := actor.ActorString()
	if active {
		err = s.workflowSvc.Activate(r.Context(), workflowID, &actorName)
	} else {
		err = s.workflowSvc.Deactivate(r.Context(), workflowID, &actorName)
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"workflow_id": workflowID, "active": active})
}
