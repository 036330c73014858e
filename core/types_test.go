package core

import "testing"

func TestSeverity_Rank(t *testing.T) {
	ordered := []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
	for i := 1; i < len(ordered); i++ {
		if ordered[i].Rank() <= ordered[i-1].Rank() {
			t.Fatalf("expected %s to outrank %s", ordered[i], ordered[i-1])
		}
	}
	if Severity("bogus").Rank() >= SeverityLow.Rank() {
		t.Error("unknown severity must rank below low")
	}
}

func TestDeterministicGapID_StableAndDistinct(t *testing.T) {
	a := DeterministicGapID("worker-1", GapTypeSecurityConcern, "needs security validation")
	b := DeterministicGapID("worker-1", GapTypeSecurityConcern, "needs security validation")
	if a != b {
		t.Fatalf("same inputs produced different ids: %s vs %s", a, b)
	}
	c := DeterministicGapID("worker-2", GapTypeSecurityConcern, "needs security validation")
	if a == c {
		t.Error("different detecting agents must produce different ids")
	}
}

func TestIntegrationStrategy_Valid(t *testing.T) {
	for _, s := range []IntegrationStrategy{
		StrategyMerge, StrategyAppend, StrategySelective, StrategyPrioritizeNew, StrategyPrioritizeOriginal,
	} {
		if !s.Valid() {
			t.Errorf("expected %s to be valid", s)
		}
	}
	if IntegrationStrategy("overwrite").Valid() {
		t.Error("unknown strategy must be invalid")
	}
}

func TestAgentCapabilityProfile_HasCapability(t *testing.T) {
	p := AgentCapabilityProfile{AgentName: "sec", Capabilities: []string{"security_analysis", "code_review"}}
	if !p.HasCapability("security_analysis") {
		t.Error("expected capability to be found")
	}
	if p.HasCapability("performance_tuning") {
		t.Error("unexpected capability reported")
	}
}
