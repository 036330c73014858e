package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/integration"
	"github.com/hupe1980/agentrelay/lifecycle"
)

type createRequestBody struct {
	RequestingAgent         string         `json:"requesting_agent"`
	WorkflowID              string         `json:"workflow_id"`
	RequestType             string         `json:"request_type"`
	Urgency                 string         `json:"urgency"`
	Description             string         `json:"description"`
	SpecificExpertiseNeeded []string       `json:"specific_expertise_needed"`
	ContextRequirements     map[string]any `json:"context_requirements"`
	TimeoutMinutes          *int           `json:"timeout_minutes"`
	SpawnDepth              int            `json:"spawn_depth"`
}

type createRequestResponse struct {
	RequestID       string    `json:"request_id"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	TimeoutAt       time.Time `json:"timeout_at"`
	RequestingAgent string    `json:"requesting_agent"`
	WorkflowID      string    `json:"workflow_id,omitempty"`
	RequestType     string    `json:"request_type,omitempty"`
	Urgency         string    `json:"urgency"`
	Description     string    `json:"description,omitempty"`
}

func (s *Server) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	var body createRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	var optFns []func(o *lifecycle.CreateOptions)
	if body.TimeoutMinutes != nil {
		timeout := time.Duration(*body.TimeoutMinutes) * time.Minute
		optFns = append(optFns, func(o *lifecycle.CreateOptions) { o.Timeout = timeout })
	}

	req, err := s.manager.Create(lifecycle.CreateParams{
		RequestingAgent:   body.RequestingAgent,
		WorkflowID:        body.WorkflowID,
		RequestType:       body.RequestType,
		Urgency:           core.Urgency(body.Urgency),
		Description:       body.Description,
		SpawnDepth:        body.SpawnDepth,
		RequiredExpertise: body.SpecificExpertiseNeeded,
		OriginalContext:   body.ContextRequirements,
	}, optFns...)
	if err != nil {
		var depthErr *core.SpawnDepthExceededError
		if errors.As(err, &depthErr) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, createRequestResponse{
		RequestID:       req.RequestID,
		Status:          string(req.Status),
		CreatedAt:       req.CreatedAt,
		TimeoutAt:       req.TimeoutAt,
		RequestingAgent: req.RequestingAgent,
		WorkflowID:      req.WorkflowID,
		RequestType:     req.RequestType,
		Urgency:         string(req.Urgency),
		Description:     req.Description,
	})
}

type detectGapsBody struct {
	AgentName       string         `json:"agent_name"`
	WorkflowID      string         `json:"workflow_id"`
	SpawnDepth      int            `json:"spawn_depth"`
	TaskContext     map[string]any `json:"task_context"`
	ExecutionLog    []string       `json:"execution_log"`
	CurrentFindings map[string]any `json:"current_findings"`
}

type detectGapsResponse struct {
	GapsDetected     []core.InformationGap `json:"gaps_detected"`
	GapCount         int                   `json:"gap_count"`
	HighPriorityGaps int                   `json:"high_priority_gaps"`
	AutoRequestIDs   []string              `json:"auto_request_ids"`
}

func (s *Server) handleDetectGaps(w http.ResponseWriter, r *http.Request) {
	var body detectGapsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if body.AgentName == "" {
		writeError(w, http.StatusBadRequest, "agent_name is required")
		return
	}

	gaps, created, err := s.manager.DetectAndCreate(
		body.AgentName, body.WorkflowID, body.SpawnDepth,
		body.TaskContext, body.ExecutionLog, body.CurrentFindings,
	)
	if err != nil {
		var depthErr *core.SpawnDepthExceededError
		if errors.As(err, &depthErr) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := detectGapsResponse{
		GapsDetected:   gaps,
		GapCount:       len(gaps),
		AutoRequestIDs: []string{},
	}
	for _, g := range gaps {
		if g.Severity.Rank() >= core.SeverityHigh.Rank() {
			resp.HighPriorityGaps++
		}
	}
	for _, req := range created {
		resp.AutoRequestIDs = append(resp.AutoRequestIDs, req.RequestID)
	}
	writeJSON(w, http.StatusOK, resp)
}

type requestStatusResponse struct {
	RequestID           string    `json:"request_id"`
	Status              string    `json:"status"`
	AssignedAgent       string    `json:"assigned_agent,omitempty"`
	ProgressPercentage  int       `json:"progress_percentage"`
	EstimatedCompletion time.Time `json:"estimated_completion"`
	ResponseAvailable   bool      `json:"response_available"`
	ErrorText           string    `json:"error_text,omitempty"`
}

func (s *Server) handleRequestStatus(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestID")

	info, err := s.manager.Status(requestID)
	if err != nil {
		if errors.Is(err, core.ErrRequestNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, requestStatusResponse{
		RequestID:           info.RequestID,
		Status:              string(info.Status),
		AssignedAgent:       info.AssignedAgent,
		ProgressPercentage:  info.Progress,
		EstimatedCompletion: info.TimeoutAt,
		ResponseAvailable:   info.Status == core.StatusCompleted,
		ErrorText:           info.ErrorText,
	})
}

type requestResultsResponse struct {
	RequestID          string                  `json:"request_id"`
	Status             string                  `json:"status"`
	ResponseData       *core.ResponseData      `json:"response_data"`
	ConfidenceScore    *float64                `json:"confidence_score,omitempty"`
	ProcessingDuration string                  `json:"processing_duration"`
	AssignedAgent      string                  `json:"assigned_agent,omitempty"`
	Integration        *core.IntegrationResult `json:"integration,omitempty"`
}

func (s *Server) handleRequestResults(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestID")

	res, err := s.manager.Results(requestID)
	if err != nil {
		if errors.Is(err, core.ErrRequestNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	var duration time.Duration
	if res.Request.CompletedAt != nil {
		duration = res.Request.CompletedAt.Sub(res.Request.CreatedAt)
	}

	writeJSON(w, http.StatusOK, requestResultsResponse{
		RequestID:          res.Request.RequestID,
		Status:             string(res.Request.Status),
		ResponseData:       res.Request.ResponseData,
		ConfidenceScore:    res.Request.ConfidenceScore,
		ProcessingDuration: duration.String(),
		AssignedAgent:      res.Request.AssignedAgent,
		Integration:        res.Integration,
	})
}

type createIntegrationBody struct {
	RequestingAgent     string         `json:"requesting_agent"`
	WorkflowID          string         `json:"workflow_id"`
	RequestID           string         `json:"request_id"`
	OriginalContext     map[string]any `json:"original_context"`
	NewFindings         map[string]any `json:"new_findings"`
	IntegrationStrategy string         `json:"integration_strategy"`
}

type integrationSummary struct {
	StrategyUsed          string                  `json:"strategy_used"`
	ChangesMade           core.IntegrationChanges `json:"changes_made"`
	ConfidenceImprovement float64                 `json:"confidence_improvement"`
}

type createIntegrationResponse struct {
	IntegrationID         string             `json:"integration_id"`
	IntegratedContext     map[string]any     `json:"integrated_context"`
	IntegrationSummary    integrationSummary `json:"integration_summary"`
	ConfidenceImprovement float64            `json:"confidence_improvement"`
	IsComplete            bool               `json:"is_complete"`
	Error                 string             `json:"error,omitempty"`
}

func (s *Server) handleCreateIntegration(w http.ResponseWriter, r *http.Request) {
	var body createIntegrationBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	res, err := s.manager.Integrate(
		body.RequestID,
		body.OriginalContext,
		body.NewFindings,
		core.IntegrationStrategy(body.IntegrationStrategy),
		func(o *integration.Options) {
			o.RequestingAgent = body.RequestingAgent
			o.WorkflowID = body.WorkflowID
		},
	)
	if res == nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// A misconfigured strategy yields the partial result with conflicts
	// flagged instead of losing the data.
	resp := createIntegrationResponse{
		IntegrationID:     res.IntegrationID,
		IntegratedContext: res.IntegratedContext,
		IntegrationSummary: integrationSummary{
			StrategyUsed:          string(res.StrategyUsed),
			ChangesMade:           res.Changes,
			ConfidenceImprovement: res.ConfidenceImprovement,
		},
		ConfidenceImprovement: res.ConfidenceImprovement,
		IsComplete:            res.Complete,
	}
	if err != nil {
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

type integrationStatusResponse struct {
	IntegrationID         string  `json:"integration_id"`
	Status                string  `json:"status"`
	RequestingAgent       string  `json:"requesting_agent,omitempty"`
	WorkflowID            string  `json:"workflow_id,omitempty"`
	ConfidenceImprovement float64 `json:"confidence_improvement"`
	IsComplete            bool    `json:"is_complete"`
}

func (s *Server) handleIntegrationStatus(w http.ResponseWriter, r *http.Request) {
	integrationID := chi.URLParam(r, "integrationID")

	res, err := s.manager.Integration(integrationID)
	if err != nil {
		if errors.Is(err, core.ErrIntegrationNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	status := "completed"
	if !res.Complete {
		status = "partial"
	}
	writeJSON(w, http.StatusOK, integrationStatusResponse{
		IntegrationID:         res.IntegrationID,
		Status:                status,
		RequestingAgent:       res.RequestingAgent,
		WorkflowID:            res.WorkflowID,
		ConfidenceImprovement: res.ConfidenceImprovement,
		IsComplete:            res.Complete,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.metrics.Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
