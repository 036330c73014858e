package core

// CapabilityRegistry provides access to helper candidate profiles. Reads are
// lock-free snapshots; writes are serialized by the implementation. The
// registry is updated externally except for load adjustments the engine makes
// while a helper executes on its behalf.
type CapabilityRegistry interface {
	// Snapshot returns a point-in-time copy of all profiles. Mutating the
	// returned slice must not affect the registry.
	Snapshot() []AgentCapabilityProfile

	// Upsert adds or replaces a profile keyed by agent name.
	Upsert(profile AgentCapabilityProfile)

	// AdjustLoad changes an agent's current load by delta, clamped at zero.
	AdjustLoad(agentName string, delta int)
}

// ArchiveStore durably retains terminal requests and integration results for
// audit. Archived records are never mutated; failed requests stay queryable
// indefinitely.
type ArchiveStore interface {
	ArchiveRequest(req AgentRequest) error
	ArchiveIntegration(res IntegrationResult) error

	// Request returns an archived request or ErrRequestNotFound.
	Request(requestID string) (AgentRequest, error)

	// Integration returns an archived result or ErrIntegrationNotFound.
	Integration(integrationID string) (IntegrationResult, error)
}
