package core

import "testing"

func TestCanTransition_HappyPath(t *testing.T) {
	path := []RequestStatus{
		StatusPending,
		StatusAnalyzing,
		StatusAgentSelected,
		StatusContextGenerated,
		StatusExecuting,
		StatusCompleted,
	}
	for i := 0; i < len(path)-1; i++ {
		if !CanTransition(path[i], path[i+1]) {
			t.Fatalf("expected %s -> %s to be legal", path[i], path[i+1])
		}
	}
}

func TestCanTransition_ExplicitRequestsSkipAnalyzing(t *testing.T) {
	if !CanTransition(StatusPending, StatusAgentSelected) {
		t.Fatal("explicit requests must be able to skip analyzing")
	}
}

func TestCanTransition_FailureEdgeFromEveryNonTerminal(t *testing.T) {
	nonTerminal := []RequestStatus{
		StatusPending, StatusAnalyzing, StatusAgentSelected, StatusContextGenerated, StatusExecuting,
	}
	for _, s := range nonTerminal {
		if !CanTransition(s, StatusFailed) {
			t.Errorf("expected failure edge from %s", s)
		}
	}
}

func TestCanTransition_NoBackwardsOrTerminalEdges(t *testing.T) {
	illegal := [][2]RequestStatus{
		{StatusExecuting, StatusPending},
		{StatusCompleted, StatusExecuting},
		{StatusFailed, StatusPending},
		{StatusCompleted, StatusFailed},
		{StatusAgentSelected, StatusAnalyzing},
	}
	for _, pair := range illegal {
		if CanTransition(pair[0], pair[1]) {
			t.Errorf("expected %s -> %s to be illegal", pair[0], pair[1])
		}
	}
}

func TestRequestStatus_Terminal(t *testing.T) {
	if !StatusCompleted.Terminal() || !StatusFailed.Terminal() {
		t.Error("completed and failed must be terminal")
	}
	if StatusExecuting.Terminal() {
		t.Error("executing must not be terminal")
	}
}

func TestRequestStatus_ProgressMonotonicAlongHappyPath(t *testing.T) {
	path := []RequestStatus{
		StatusPending, StatusAnalyzing, StatusAgentSelected, StatusContextGenerated, StatusExecuting, StatusCompleted,
	}
	prev := -1
	for _, s := range path {
		if p := s.Progress(); p <= prev {
			t.Fatalf("progress not increasing at %s: %d <= %d", s, p, prev)
		} else {
			prev = p
		}
	}
}
