package core

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrRequestNotFound is returned when no request exists for the given id.
	ErrRequestNotFound = errors.New("agent request not found")
	// ErrIntegrationNotFound is returned when no integration result exists
	// for the given id.
	ErrIntegrationNotFound = errors.New("integration result not found")
)

// GapDetectionError reports a malformed execution trace. It is recovered
// locally by the detector, which logs it and returns an empty gap list so the
// caller's primary task is never blocked by a failed scan.
type GapDetectionError struct {
	AgentName string
	Reason    string
}

func (e *GapDetectionError) Error() string {
	return fmt.Sprintf("gap detection failed for agent %s: %s", e.AgentName, e.Reason)
}

// NoCapableAgentError is returned when every registry candidate lacks a
// required capability. It is surfaced to the caller and the request moves to
// failed; there is no automatic retry.
type NoCapableAgentError struct {
	GapID     string
	Expertise []string
}

func (e *NoCapableAgentError) Error() string {
	return fmt.Sprintf("no capable agent for gap %s (required expertise: %v)", e.GapID, e.Expertise)
}

// SpawnDepthExceededError is the runaway-spawn guard: a request whose spawn
// depth exceeds the configured maximum is rejected at creation and nothing is
// persisted.
type SpawnDepthExceededError struct {
	Depth int
	Max   int
}

func (e *SpawnDepthExceededError) Error() string {
	return fmt.Sprintf("spawn depth %d exceeds maximum %d", e.Depth, e.Max)
}

// RequestTimeoutError indicates the request deadline elapsed before the
// helper finished. A best-effort cancellation is sent downstream; the state
// machine does not wait for acknowledgment.
type RequestTimeoutError struct {
	RequestID string
	TimeoutAt time.Time
}

func (e *RequestTimeoutError) Error() string {
	return fmt.Sprintf("request %s timed out at %s", e.RequestID, e.TimeoutAt.Format(time.RFC3339))
}

// IntegrationConflictError indicates a strategy left conflicts unresolved.
// The integrator still returns the partial result alongside this error so
// callers can inspect the flagged conflicts instead of losing data.
type IntegrationConflictError struct {
	Strategy  IntegrationStrategy
	Conflicts []string
}

func (e *IntegrationConflictError) Error() string {
	return fmt.Sprintf("strategy %q left %d unresolved conflicts: %v", e.Strategy, len(e.Conflicts), e.Conflicts)
}
