package selector

import (
	"sort"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/logging"
)

// Options configures scoring weights and load normalization.
type Options struct {
	// CapabilityWeight scales the capability match term. Default 0.3.
	CapabilityWeight float64
	// AvailabilityWeight scales the (1 - normalized load) term. Default 0.3.
	AvailabilityWeight float64
	// PerformanceWeight scales the historical success rate term. Default 0.4.
	PerformanceWeight float64
	// MaxLoad is the load value treated as fully busy when normalizing.
	// Default 10.
	MaxLoad int
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// Selector ranks capability profiles for a gap.
type Selector struct {
	opts   Options
	logger logging.Logger
}

// New constructs a Selector with optional weight overrides.
func New(optFns ...func(o *Options)) *Selector {
	opts := Options{
		CapabilityWeight:   0.3,
		AvailabilityWeight: 0.3,
		PerformanceWeight:  0.4,
		MaxLoad:            10,
		Logger:             logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Selector{opts: opts, logger: opts.Logger}
}

// scored pairs a candidate with its computed fitness.
type scored struct {
	profile core.AgentCapabilityProfile
	score   float64
}

// Select returns the name of the best-fit helper for the gap, or a
// NoCapableAgentError when no candidate carries every required expertise.
// Selection is deterministic: score ties fall back to lowest current load,
// then lexicographic agent name.
func (s *Selector) Select(g core.InformationGap, registry []core.AgentCapabilityProfile) (string, error) {
	candidates := s.rank(g, registry)
	if len(candidates) == 0 {
		return "", &core.NoCapableAgentError{GapID: g.GapID, Expertise: g.SuggestedExpertise}
	}

	best := candidates[0]
	s.logger.Debug("selected helper %s for gap %s (score=%.3f, candidates=%d)",
		best.profile.AgentName, g.GapID, best.score, len(candidates))
	return best.profile.AgentName, nil
}

// rank filters and orders candidates best first.
func (s *Selector) rank(g core.InformationGap, registry []core.AgentCapabilityProfile) []scored {
	var candidates []scored
	for _, p := range registry {
		if !hasAll(p, g.SuggestedExpertise) {
			continue
		}
		candidates = append(candidates, scored{profile: p, score: s.score(g, p)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.profile.CurrentLoad != b.profile.CurrentLoad {
			return a.profile.CurrentLoad < b.profile.CurrentLoad
		}
		return a.profile.AgentName < b.profile.AgentName
	})
	return candidates
}

// score computes the weighted fitness of a candidate that already passed the
// capability filter. The capability term rewards specialists: it is the share
// of the candidate's capabilities the gap actually needs, so a focused helper
// outranks a generalist with identical load and track record.
func (s *Selector) score(g core.InformationGap, p core.AgentCapabilityProfile) float64 {
	match := 1.0
	if len(g.SuggestedExpertise) > 0 && len(p.Capabilities) > 0 {
		match = float64(len(g.SuggestedExpertise)) / float64(len(p.Capabilities))
		if match > 1 {
			match = 1
		}
	}

	load := float64(p.CurrentLoad) / float64(s.opts.MaxLoad)
	if load > 1 {
		load = 1
	}

	return s.opts.CapabilityWeight*match +
		s.opts.AvailabilityWeight*(1-load) +
		s.opts.PerformanceWeight*p.HistoricalSuccessRate
}

func hasAll(p core.AgentCapabilityProfile, required []string) bool {
	for _, r := range required {
		if !p.HasCapability(r) {
			return false
		}
	}
	return true
}
