package selector

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrelay/core"
)

func securityGap() core.InformationGap {
	return core.InformationGap{
		GapID:              "gap-1",
		GapType:            core.GapTypeSecurityConcern,
		Severity:           core.SeverityHigh,
		SuggestedExpertise: []string{"security_analysis"},
	}
}

func TestSelector_NoCapableAgent(t *testing.T) {
	s := New()

	registry := []core.AgentCapabilityProfile{
		{AgentName: "perf", Capabilities: []string{"performance_analysis"}, HistoricalSuccessRate: 0.9},
		{AgentName: "docs", Capabilities: []string{"documentation"}, HistoricalSuccessRate: 0.99},
	}

	_, err := s.Select(securityGap(), registry)
	require.Error(t, err)

	var noAgent *core.NoCapableAgentError
	require.True(t, errors.As(err, &noAgent))
	assert.Equal(t, "gap-1", noAgent.GapID)
}

func TestSelector_EmptyRegistry(t *testing.T) {
	s := New()
	_, err := s.Select(securityGap(), nil)
	var noAgent *core.NoCapableAgentError
	require.True(t, errors.As(err, &noAgent))
}

func TestSelector_PerformanceWeightDominatesByDefault(t *testing.T) {
	s := New()

	registry := []core.AgentCapabilityProfile{
		{AgentName: "veteran", Capabilities: []string{"security_analysis"}, CurrentLoad: 0, HistoricalSuccessRate: 0.95},
		{AgentName: "rookie", Capabilities: []string{"security_analysis"}, CurrentLoad: 0, HistoricalSuccessRate: 0.40},
	}

	name, err := s.Select(securityGap(), registry)
	require.NoError(t, err)
	assert.Equal(t, "veteran", name)
}

func TestSelector_AvailabilityBreaksEqualTrackRecords(t *testing.T) {
	s := New()

	registry := []core.AgentCapabilityProfile{
		{AgentName: "busy", Capabilities: []string{"security_analysis"}, CurrentLoad: 9, HistoricalSuccessRate: 0.8},
		{AgentName: "idle", Capabilities: []string{"security_analysis"}, CurrentLoad: 0, HistoricalSuccessRate: 0.8},
	}

	name, err := s.Select(securityGap(), registry)
	require.NoError(t, err)
	assert.Equal(t, "idle", name)
}

func TestSelector_SpecialistOutranksGeneralist(t *testing.T) {
	s := New()

	registry := []core.AgentCapabilityProfile{
		{
			AgentName:             "generalist",
			Capabilities:          []string{"security_analysis", "documentation", "performance_analysis", "code_review"},
			HistoricalSuccessRate: 0.8,
		},
		{
			AgentName:             "specialist",
			Capabilities:          []string{"security_analysis"},
			HistoricalSuccessRate: 0.8,
		},
	}

	name, err := s.Select(securityGap(), registry)
	require.NoError(t, err)
	assert.Equal(t, "specialist", name)
}

func TestSelector_TieBrokenByLoadThenName(t *testing.T) {
	s := New()

	registry := []core.AgentCapabilityProfile{
		{AgentName: "zeta", Capabilities: []string{"security_analysis"}, CurrentLoad: 2, HistoricalSuccessRate: 0.5},
		{AgentName: "alpha", Capabilities: []string{"security_analysis"}, CurrentLoad: 2, HistoricalSuccessRate: 0.5},
	}

	name, err := s.Select(securityGap(), registry)
	require.NoError(t, err)
	assert.Equal(t, "alpha", name, "equal score and load must fall back to lexicographic name")
}

func TestSelector_CustomWeights(t *testing.T) {
	// All weight on availability: the idle agent wins despite a worse record.
	s := New(func(o *Options) {
		o.CapabilityWeight = 0
		o.PerformanceWeight = 0
		o.AvailabilityWeight = 1
	})

	registry := []core.AgentCapabilityProfile{
		{AgentName: "good-but-busy", Capabilities: []string{"security_analysis"}, CurrentLoad: 10, HistoricalSuccessRate: 1.0},
		{AgentName: "free", Capabilities: []string{"security_analysis"}, CurrentLoad: 0, HistoricalSuccessRate: 0.1},
	}

	name, err := s.Select(securityGap(), registry)
	require.NoError(t, err)
	assert.Equal(t, "free", name)
}

func TestSelector_MultiExpertiseRequiresAll(t *testing.T) {
	s := New()

	g := core.InformationGap{
		GapID:              "gap-2",
		SuggestedExpertise: []string{"security_analysis", "code_review"},
	}

	registry := []core.AgentCapabilityProfile{
		{AgentName: "partial", Capabilities: []string{"security_analysis"}, HistoricalSuccessRate: 0.9},
		{AgentName: "full", Capabilities: []string{"security_analysis", "code_review"}, HistoricalSuccessRate: 0.5},
	}

	name, err := s.Select(g, registry)
	require.NoError(t, err)
	assert.Equal(t, "full", name)
}
