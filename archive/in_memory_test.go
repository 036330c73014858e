package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrelay/core"
)

func TestInMemoryStore_RequestRoundTrip(t *testing.T) {
	s := NewInMemoryStore()

	req := core.AgentRequest{
		RequestID:       "req-1",
		RequestingAgent: "backend-worker",
		Status:          core.StatusCompleted,
		ResponseData:    &core.ResponseData{Analysis: "done", Findings: []string{"a"}},
	}
	require.NoError(t, s.ArchiveRequest(req))

	got, err := s.Request("req-1")
	require.NoError(t, err)
	assert.Equal(t, core.StatusCompleted, got.Status)
	assert.Equal(t, []string{"a"}, got.ResponseData.Findings)
}

func TestInMemoryStore_RequestNotFound(t *testing.T) {
	s := NewInMemoryStore()
	_, err := s.Request("missing")
	assert.ErrorIs(t, err, core.ErrRequestNotFound)
}

func TestInMemoryStore_IntegrationRoundTrip(t *testing.T) {
	s := NewInMemoryStore()

	res := core.IntegrationResult{
		IntegrationID:     "int-1",
		RequestID:         "req-1",
		StrategyUsed:      core.StrategyMerge,
		IntegratedContext: map[string]any{"k": "v"},
		Complete:          true,
	}
	require.NoError(t, s.ArchiveIntegration(res))

	got, err := s.Integration("int-1")
	require.NoError(t, err)
	assert.Equal(t, "req-1", got.RequestID)
	assert.Equal(t, "v", got.IntegratedContext["k"])

	_, err = s.Integration("missing")
	assert.ErrorIs(t, err, core.ErrIntegrationNotFound)
}

func TestInMemoryStore_ArchivedRecordsAreIsolated(t *testing.T) {
	s := NewInMemoryStore()

	req := core.AgentRequest{
		RequestID:    "req-1",
		ResponseData: &core.ResponseData{Findings: []string{"a"}},
	}
	require.NoError(t, s.ArchiveRequest(req))

	// Mutating either the input or a fetched copy must not change the archive.
	req.ResponseData.Findings[0] = "tampered"
	got, err := s.Request("req-1")
	require.NoError(t, err)
	got.ResponseData.Findings[0] = "also tampered"

	again, err := s.Request("req-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, again.ResponseData.Findings)
}
