package testutil

import (
	"github.com/hupe1980/agentrelay/core"
)

// GapBuilder provides a fluent helper for constructing information gaps in
// tests.
// Example:
//
//	g := NewGapBuilder().Type(core.GapTypeSecurityConcern).Severity(core.SeverityHigh).Build()
type GapBuilder struct {
	gap core.InformationGap
}

// NewGapBuilder creates a builder with a medium severity expertise gap.
func NewGapBuilder() *GapBuilder {
	return &GapBuilder{gap: core.InformationGap{
		GapID:              core.NewID(),
		GapType:            core.GapTypeInsufficientExpertise,
		Description:        "test gap",
		Severity:           core.SeverityMedium,
		DetectedBy:         "test-agent",
		SuggestedExpertise: []string{"domain_expertise"},
	}}
}

// ID overrides the auto-generated gap ID (chainable).
func (b *GapBuilder) ID(id string) *GapBuilder { b.gap.GapID = id; return b }

// Type sets the gap type (chainable).
func (b *GapBuilder) Type(t core.GapType) *GapBuilder { b.gap.GapType = t; return b }

// Severity sets the severity (chainable).
func (b *GapBuilder) Severity(s core.Severity) *GapBuilder { b.gap.Severity = s; return b }

// Description sets the description (chainable).
func (b *GapBuilder) Description(d string) *GapBuilder { b.gap.Description = d; return b }

// DetectedBy sets the detecting agent (chainable).
func (b *GapBuilder) DetectedBy(a string) *GapBuilder { b.gap.DetectedBy = a; return b }

// Expertise replaces the suggested expertise list (chainable).
func (b *GapBuilder) Expertise(e ...string) *GapBuilder { b.gap.SuggestedExpertise = e; return b }

// Build returns the constructed gap.
func (b *GapBuilder) Build() core.InformationGap { return b.gap }

// ProfileBuilder provides a fluent helper for constructing capability
// profiles in tests.
type ProfileBuilder struct {
	profile core.AgentCapabilityProfile
}

// NewProfileBuilder creates a builder with a generic capable helper.
func NewProfileBuilder(name string) *ProfileBuilder {
	return &ProfileBuilder{profile: core.AgentCapabilityProfile{
		AgentName:             name,
		Capabilities:          []string{"domain_expertise"},
		HistoricalSuccessRate: 0.8,
	}}
}

// Capabilities replaces the capability list (chainable).
func (b *ProfileBuilder) Capabilities(c ...string) *ProfileBuilder {
	b.profile.Capabilities = c
	return b
}

// Load sets the current load (chainable).
func (b *ProfileBuilder) Load(n int) *ProfileBuilder { b.profile.CurrentLoad = n; return b }

// SuccessRate sets the historical success rate (chainable).
func (b *ProfileBuilder) SuccessRate(r float64) *ProfileBuilder {
	b.profile.HistoricalSuccessRate = r
	return b
}

// Build returns the constructed profile.
func (b *ProfileBuilder) Build() core.AgentCapabilityProfile { return b.profile }
