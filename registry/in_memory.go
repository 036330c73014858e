package registry

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/agentrelay/core"
)

// InMemoryRegistry is a volatile CapabilityRegistry storing profiles in a
// process local snapshot. Reads are lock-free: Snapshot loads the current
// immutable slice and copies it, so mutating the result never affects the
// registry. Writes are serialized and replace the snapshot wholesale.
type InMemoryRegistry struct {
	mu       sync.Mutex
	snapshot atomic.Pointer[[]core.AgentCapabilityProfile]
}

// NewInMemoryRegistry constructs an empty in-memory registry.
func NewInMemoryRegistry() *InMemoryRegistry {
	r := &InMemoryRegistry{}
	empty := []core.AgentCapabilityProfile{}
	r.snapshot.Store(&empty)
	return r
}

// Snapshot returns a point-in-time copy of all profiles, sorted by agent name.
func (r *InMemoryRegistry) Snapshot() []core.AgentCapabilityProfile {
	current := *r.snapshot.Load()
	out := make([]core.AgentCapabilityProfile, len(current))
	copy(out, current)
	return out
}

// Upsert adds or replaces a profile keyed by agent name.
func (r *InMemoryRegistry) Upsert(profile core.AgentCapabilityProfile) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.cloneLocked()
	replaced := false
	for idx := range next {
		if next[idx].AgentName == profile.AgentName {
			next[idx] = profile
			replaced = true
			break
		}
	}
	if !replaced {
		next = append(next, profile)
		sort.Slice(next, func(i, j int) bool { return next[i].AgentName < next[j].AgentName })
	}
	r.snapshot.Store(&next)
}

// AdjustLoad changes an agent's current load by delta, clamped at zero.
// Unknown agents are ignored; the helper may have been deregistered while a
// request was in flight.
func (r *InMemoryRegistry) AdjustLoad(agentName string, delta int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.cloneLocked()
	for idx := range next {
		if next[idx].AgentName != agentName {
			continue
		}
		next[idx].CurrentLoad += delta
		if next[idx].CurrentLoad < 0 {
			next[idx].CurrentLoad = 0
		}
		r.snapshot.Store(&next)
		return
	}
}

// cloneLocked copies the current snapshot for mutation; caller must hold mu.
func (r *InMemoryRegistry) cloneLocked() []core.AgentCapabilityProfile {
	current := *r.snapshot.Load()
	next := make([]core.AgentCapabilityProfile, len(current))
	copy(next, current)
	return next
}
