package core

// RequestStatus is the lifecycle state of an AgentRequest.
type RequestStatus string

const (
	// StatusPending - request created, not yet processed.
	StatusPending RequestStatus = "pending"
	// StatusAnalyzing - severity evaluation in progress (auto-generated
	// requests only; explicit requests skip directly to agent_selected).
	StatusAnalyzing RequestStatus = "analyzing"
	// StatusAgentSelected - a helper has been assigned; a context package is
	// being generated.
	StatusAgentSelected RequestStatus = "agent_selected"
	// StatusContextGenerated - package ready; sub-workflow about to spawn.
	StatusContextGenerated RequestStatus = "context_generated"
	// StatusExecuting - helper sub-workflow running.
	StatusExecuting RequestStatus = "executing"
	// StatusCompleted - terminal success.
	StatusCompleted RequestStatus = "completed"
	// StatusFailed - terminal failure (selector error, execution error or
	// timeout).
	StatusFailed RequestStatus = "failed"
)

// requestTransitions encodes the legal forward edges of the request state
// machine. Every non-terminal state additionally carries a failure edge to
// StatusFailed.
var requestTransitions = map[RequestStatus]map[RequestStatus]bool{
	StatusPending: {
		StatusAnalyzing:     true,
		StatusAgentSelected: true,
		StatusFailed:        true,
	},
	StatusAnalyzing: {
		StatusAgentSelected: true,
		StatusFailed:        true,
	},
	StatusAgentSelected: {
		StatusContextGenerated: true,
		StatusFailed:           true,
	},
	StatusContextGenerated: {
		StatusExecuting: true,
		StatusFailed:    true,
	},
	StatusExecuting: {
		StatusCompleted: true,
		StatusFailed:    true,
	},
}

// CanTransition reports whether moving a request from one status to another
// is legal. Terminal states accept no transitions; a request never revisits
// a prior state.
func CanTransition(from, to RequestStatus) bool {
	return requestTransitions[from][to]
}

// Terminal reports whether the status is one of the two terminal states.
func (s RequestStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Progress maps a status to a coarse completion percentage for status polls.
func (s RequestStatus) Progress() int {
	switch s {
	case StatusPending:
		return 0
	case StatusAnalyzing:
		return 10
	case StatusAgentSelected:
		return 30
	case StatusContextGenerated:
		return 50
	case StatusExecuting:
		return 70
	case StatusCompleted, StatusFailed:
		return 100
	default:
		return 0
	}
}
