package core

import (
	"time"

	"github.com/google/uuid"
)

// GapType classifies the kind of deficiency a worker detected in its own
// knowledge relative to its task.
type GapType string

const (
	// GapTypeMissingDependency indicates an unresolved external dependency.
	GapTypeMissingDependency GapType = "missing_dependency"
	// GapTypeInsufficientExpertise indicates the worker lacks the skill to proceed.
	GapTypeInsufficientExpertise GapType = "insufficient_expertise"
	// GapTypeSecurityConcern indicates an unassessed security risk.
	GapTypeSecurityConcern GapType = "security_concern"
	// GapTypePerformanceImpact indicates an unquantified performance question.
	GapTypePerformanceImpact GapType = "performance_impact"
	// GapTypeMissingContext indicates required context fields are absent.
	GapTypeMissingContext GapType = "missing_context"
)

// Severity grades how urgently a gap needs to be resolved.
type Severity string

const (
	// SeverityLow marks gaps that can wait.
	SeverityLow Severity = "low"
	// SeverityMedium marks gaps that should be addressed soon.
	SeverityMedium Severity = "medium"
	// SeverityHigh marks gaps blocking high-quality task completion.
	SeverityHigh Severity = "high"
	// SeverityCritical marks gaps blocking task completion entirely.
	SeverityCritical Severity = "critical"
)

// Rank returns a comparable ordering for severities (higher is more severe).
// Unknown values rank below low so malformed data never outranks real gaps.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Urgency expresses how quickly a request should be serviced. It is derived
// from gap severity for auto-generated requests (critical/high severity maps
// to UrgencyHigh) and supplied directly for explicit requests.
type Urgency string

const (
	// UrgencyLow is for background-quality requests.
	UrgencyLow Urgency = "low"
	// UrgencyNormal is the default urgency.
	UrgencyNormal Urgency = "normal"
	// UrgencyHigh is for requests resolving critical or high severity gaps.
	UrgencyHigh Urgency = "high"
)

// InformationGap is a detected deficiency in a worker's current knowledge.
// Instances are immutable once created by the detector.
type InformationGap struct {
	GapID              string   `json:"gap_id"`
	GapType            GapType  `json:"gap_type"`
	Description        string   `json:"description"`
	Severity           Severity `json:"severity"`
	DetectedBy         string   `json:"detected_by"`
	SuggestedExpertise []string `json:"suggested_expertise"`
}

// AgentCapabilityProfile is a read-only snapshot of a helper candidate
// consulted during selection. Profiles are maintained externally; the engine
// only adjusts CurrentLoad while a helper executes on its behalf.
type AgentCapabilityProfile struct {
	AgentName             string   `json:"agent_name"`
	Capabilities          []string `json:"capabilities"`
	CurrentLoad           int      `json:"current_load"`
	HistoricalSuccessRate float64  `json:"historical_success_rate"`
}

// HasCapability reports whether the profile lists the given capability.
func (p AgentCapabilityProfile) HasCapability(name string) bool {
	for _, c := range p.Capabilities {
		if c == name {
			return true
		}
	}
	return false
}

// ContextPackage is the bounded bundle of information handed to a helper so
// it can act without the requester's full history. Immutable once generated.
type ContextPackage struct {
	PackageID           string         `json:"package_id"`
	Content             map[string]any `json:"content"`
	TokenBudget         int            `json:"token_budget"`
	CreatedForRequestID string         `json:"created_for_request_id"`
}

// ResponseData carries the helper's findings back to the requester.
type ResponseData struct {
	Analysis          string             `json:"analysis"`
	Findings          []string           `json:"findings"`
	Recommendations   []string           `json:"recommendations"`
	ConfidenceMetrics map[string]float64 `json:"confidence_metrics"`
}

// AgentRequest is the central stateful entity of the engine. It is owned
// exclusively by the lifecycle manager; Status moves only along the edges
// allowed by CanTransition. At most one non-terminal request may exist per
// (RequestingAgent, WorkflowID, GapID) tuple.
type AgentRequest struct {
	RequestID        string        `json:"request_id"`
	RequestingAgent  string        `json:"requesting_agent"`
	WorkflowID       string        `json:"workflow_id"`
	GapID            string        `json:"gap_id,omitempty"`
	RequestType      string        `json:"request_type"`
	Urgency          Urgency       `json:"urgency"`
	Description      string        `json:"description"`
	Status           RequestStatus `json:"status"`
	AssignedAgent    string        `json:"assigned_agent,omitempty"`
	ContextPackageID string        `json:"context_package_id,omitempty"`
	ResponseData     *ResponseData `json:"response_data,omitempty"`
	ConfidenceScore  *float64      `json:"confidence_score,omitempty"`
	SpawnDepth       int           `json:"spawn_depth"`
	CreatedAt        time.Time     `json:"created_at"`
	TimeoutAt        time.Time     `json:"timeout_at"`
	CompletedAt      *time.Time    `json:"completed_at,omitempty"`
	ErrorText        string        `json:"error_text,omitempty"`
}

// IntegrationStrategy is the policy governing how helper findings are
// reconciled with the requester's prior context. The set is closed; Integrate
// dispatches on it exhaustively rather than via open-ended polymorphism.
type IntegrationStrategy string

const (
	// StrategyMerge adds supplements and resolves conflicts toward the
	// higher-confidence source (ties favor the new findings).
	StrategyMerge IntegrationStrategy = "merge"
	// StrategyAppend places findings under a namespaced section so no key
	// collision is possible.
	StrategyAppend IntegrationStrategy = "append"
	// StrategySelective integrates supplements only; conflicts and overlaps
	// are dropped.
	StrategySelective IntegrationStrategy = "selective"
	// StrategyPrioritizeNew resolves every conflict toward the new findings.
	StrategyPrioritizeNew IntegrationStrategy = "prioritize_new"
	// StrategyPrioritizeOriginal resolves every conflict toward the original
	// context.
	StrategyPrioritizeOriginal IntegrationStrategy = "prioritize_original"
)

// Valid reports whether the strategy is one of the closed variants.
func (s IntegrationStrategy) Valid() bool {
	switch s {
	case StrategyMerge, StrategyAppend, StrategySelective, StrategyPrioritizeNew, StrategyPrioritizeOriginal:
		return true
	}
	return false
}

// IntegrationChanges records what integration did to the original context.
type IntegrationChanges struct {
	Added             []string `json:"added"`
	Updated           []string `json:"updated"`
	ConflictsResolved []string `json:"conflicts_resolved"`
}

// IntegrationResult is the immutable terminal artifact of a completed
// request. Complete is false only when a misconfigured strategy left
// conflicts unresolved; the partial result is still returned so the caller
// can inspect Changes rather than losing data silently.
type IntegrationResult struct {
	IntegrationID         string              `json:"integration_id"`
	RequestID             string              `json:"request_id"`
	StrategyUsed          IntegrationStrategy `json:"strategy_used"`
	OriginalContext       map[string]any      `json:"original_context"`
	NewFindings           map[string]any      `json:"new_findings"`
	IntegratedContext     map[string]any      `json:"integrated_context"`
	Changes               IntegrationChanges  `json:"changes"`
	ConfidenceImprovement float64             `json:"confidence_improvement"`
	Complete              bool                `json:"complete"`
	RequestingAgent       string              `json:"requesting_agent,omitempty"`
	WorkflowID            string              `json:"workflow_id,omitempty"`
	CreatedAt             time.Time           `json:"created_at"`
}

// NewID generates a new unique identifier for engine entities.
func NewID() string { return uuid.NewString() }

// DeterministicGapID derives a stable gap identifier from the detecting
// agent, gap type and description. Repeated scans of the same trace yield the
// same id, which is what makes duplicate-spawn suppression work across scans.
func DeterministicGapID(detectedBy string, gapType GapType, description string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(detectedBy+"|"+string(gapType)+"|"+description)).String()
}
