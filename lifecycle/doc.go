// Package lifecycle orchestrates dynamic agent requests from creation through
// helper execution, context integration and archiving.
//
// The Manager owns every AgentRequest exclusively. Status moves only along the
// edges the core state machine allows, one goroutine drives each request, and
// a weighted semaphore bounds how many helpers execute at once. Requests past
// their deadline are failed lazily on the next status read as well as by
// context cancellation, so even a request that never got scheduled expires.
//
// Duplicate suppression: at most one non-terminal request exists per
// (requesting agent, workflow, gap) tuple. Creating a duplicate returns the
// request already in flight instead of spawning a second helper.
package lifecycle
