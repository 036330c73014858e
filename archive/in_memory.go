package archive

import (
	"sync"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/internal/util"
)

// InMemoryStore is a volatile ArchiveStore implementation storing records in
// process local maps. It is safe for concurrent access and best suited for
// tests or ephemeral demo servers. Records are copied on the way in and out
// so callers can never mutate archived state.
type InMemoryStore struct {
	mu           sync.RWMutex
	requests     map[string]core.AgentRequest
	integrations map[string]core.IntegrationResult
}

// NewInMemoryStore constructs an empty in-memory archive.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		requests:     make(map[string]core.AgentRequest),
		integrations: make(map[string]core.IntegrationResult),
	}
}

// ArchiveRequest stores a copy of a terminal request.
func (s *InMemoryStore) ArchiveRequest(req core.AgentRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[req.RequestID] = cloneRequest(req)
	return nil
}

// ArchiveIntegration stores a copy of an integration result.
func (s *InMemoryStore) ArchiveIntegration(res core.IntegrationResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.integrations[res.IntegrationID] = cloneIntegration(res)
	return nil
}

// Request returns an archived request or ErrRequestNotFound.
func (s *InMemoryStore) Request(requestID string) (core.AgentRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[requestID]
	if !ok {
		return core.AgentRequest{}, core.ErrRequestNotFound
	}
	return cloneRequest(req), nil
}

// Integration returns an archived result or ErrIntegrationNotFound.
func (s *InMemoryStore) Integration(integrationID string) (core.IntegrationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.integrations[integrationID]
	if !ok {
		return core.IntegrationResult{}, core.ErrIntegrationNotFound
	}
	return cloneIntegration(res), nil
}

func cloneRequest(req core.AgentRequest) core.AgentRequest {
	out := req
	if req.ResponseData != nil {
		data := *req.ResponseData
		data.Findings = append([]string(nil), req.ResponseData.Findings...)
		data.Recommendations = append([]string(nil), req.ResponseData.Recommendations...)
		if req.ResponseData.ConfidenceMetrics != nil {
			data.ConfidenceMetrics = make(map[string]float64, len(req.ResponseData.ConfidenceMetrics))
			for k, v := range req.ResponseData.ConfidenceMetrics {
				data.ConfidenceMetrics[k] = v
			}
		}
		out.ResponseData = &data
	}
	if req.ConfidenceScore != nil {
		score := *req.ConfidenceScore
		out.ConfidenceScore = &score
	}
	if req.CompletedAt != nil {
		at := *req.CompletedAt
		out.CompletedAt = &at
	}
	return out
}

func cloneIntegration(res core.IntegrationResult) core.IntegrationResult {
	out := res
	out.OriginalContext = util.CloneMap(res.OriginalContext)
	out.NewFindings = util.CloneMap(res.NewFindings)
	out.IntegratedContext = util.CloneMap(res.IntegratedContext)
	out.Changes.Added = append([]string(nil), res.Changes.Added...)
	out.Changes.Updated = append([]string(nil), res.Changes.Updated...)
	out.Changes.ConflictsResolved = append([]string(nil), res.Changes.ConflictsResolved...)
	return out
}
