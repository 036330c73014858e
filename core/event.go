package core

import "time"

// Bus topics observed by the metrics collector and any other read-only
// subscriber. Publishing is fire-and-forget; consumers must never be able to
// block a request's critical path.
const (
	// TopicRequestTransitions carries one TransitionEvent per status change.
	TopicRequestTransitions = "request.transitions"
	// TopicIntegrationResults carries one ResultEvent per completed
	// integration.
	TopicIntegrationResults = "integration.results"
)

// TransitionEvent records a single status change of an AgentRequest. From is
// empty for the creation event. Events for one request id are published in
// transition order; events for different requests are unordered relative to
// each other.
type TransitionEvent struct {
	RequestID string        `json:"request_id"`
	From      RequestStatus `json:"from"`
	To        RequestStatus `json:"to"`
	Timestamp time.Time     `json:"timestamp"`
}

// NewTransitionEvent stamps a transition with the current UTC time.
func NewTransitionEvent(requestID string, from, to RequestStatus) TransitionEvent {
	return TransitionEvent{RequestID: requestID, From: from, To: to, Timestamp: time.Now().UTC()}
}

// ResultEvent summarizes a finished integration for observers.
type ResultEvent struct {
	IntegrationID         string    `json:"integration_id"`
	RequestID             string    `json:"request_id"`
	ConfidenceImprovement float64   `json:"confidence_improvement"`
	Complete              bool      `json:"complete"`
	Timestamp             time.Time `json:"timestamp"`
}

// NewResultEvent builds a ResultEvent from an IntegrationResult.
func NewResultEvent(res IntegrationResult) ResultEvent {
	return ResultEvent{
		IntegrationID:         res.IntegrationID,
		RequestID:             res.RequestID,
		ConfidenceImprovement: res.ConfidenceImprovement,
		Complete:              res.Complete,
		Timestamp:             time.Now().UTC(),
	}
}
