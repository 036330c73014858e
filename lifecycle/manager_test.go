package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrelay/bus"
	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/internal/testutil"
	"github.com/hupe1980/agentrelay/registry"
)

func testRegistry() core.CapabilityRegistry {
	r := registry.NewInMemoryRegistry()
	r.Upsert(testutil.NewProfileBuilder("security-helper").
		Capabilities("security_analysis", "dependency_resolution", "context_gathering", "domain_expertise", "performance_analysis").
		SuccessRate(0.9).
		Build())
	return r
}

func okExecutor() Executor {
	return ExecutorFunc(func(ctx context.Context, req core.AgentRequest, pkg core.ContextPackage) (*core.ResponseData, error) {
		return &core.ResponseData{
			Analysis:          "looks fine",
			Findings:          []string{"no issues"},
			ConfidenceMetrics: map[string]float64{"overall": 0.9},
		}, nil
	})
}

func waitForStatus(t *testing.T, m *Manager, requestID string, want core.RequestStatus) StatusInfo {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		info, err := m.Status(requestID)
		require.NoError(t, err)
		if info.Status == want {
			return info
		}
		if info.Status.Terminal() && want != info.Status {
			t.Fatalf("request %s reached terminal status %s (error: %s), wanted %s",
				requestID, info.Status, info.ErrorText, want)
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("request %s never reached status %s", requestID, want)
	return StatusInfo{}
}

func TestManager_HappyPath(t *testing.T) {
	m := New(func(o *Options) {
		o.Registry = testRegistry()
		o.Executor = okExecutor()
	})
	defer m.Close()

	req, err := m.Create(CreateParams{
		RequestingAgent: "backend-worker",
		WorkflowID:      "wf-1",
		RequestType:     "security_analysis",
		Description:     "Assess the auth flow",
	})
	require.NoError(t, err)
	assert.Equal(t, core.StatusPending, req.Status)

	info := waitForStatus(t, m, req.RequestID, core.StatusCompleted)
	assert.Equal(t, 100, info.Progress)
	assert.Equal(t, "security-helper", info.AssignedAgent)

	res, err := m.Results(req.RequestID)
	require.NoError(t, err)
	assert.Equal(t, "looks fine", res.Request.ResponseData.Analysis)
	require.NotNil(t, res.Request.ConfidenceScore)
	assert.Equal(t, 0.9, *res.Request.ConfidenceScore)
}

func TestManager_SpawnDepthGuard(t *testing.T) {
	m := New(func(o *Options) {
		o.Registry = testRegistry()
		o.Executor = okExecutor()
	})
	defer m.Close()

	_, err := m.Create(CreateParams{
		RequestingAgent: "backend-worker",
		Description:     "too deep",
		SpawnDepth:      4,
	})
	require.Error(t, err)

	var depthErr *core.SpawnDepthExceededError
	require.True(t, errors.As(err, &depthErr))
	assert.Equal(t, 4, depthErr.Depth)
	assert.Equal(t, 3, depthErr.Max)
}

func TestManager_DuplicateGapReturnsExistingRequest(t *testing.T) {
	release := make(chan struct{})
	m := New(func(o *Options) {
		o.Registry = testRegistry()
		o.Executor = ExecutorFunc(func(ctx context.Context, req core.AgentRequest, pkg core.ContextPackage) (*core.ResponseData, error) {
			select {
			case <-release:
				return &core.ResponseData{Analysis: "done"}, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		})
	})
	defer m.Close()
	defer close(release)

	g := testutil.NewGapBuilder().
		ID("gap-sec-1").
		Type(core.GapTypeSecurityConcern).
		Severity(core.SeverityHigh).
		Expertise("security_analysis").
		Build()
	params := CreateParams{
		RequestingAgent: "backend-worker",
		WorkflowID:      "wf-1",
		RequestType:     "security_analysis",
		Description:     "same gap twice",
		Gap:             &g,
	}

	first, err := m.Create(params)
	require.NoError(t, err)
	second, err := m.Create(params)
	require.NoError(t, err)
	assert.Equal(t, first.RequestID, second.RequestID, "second create must return the request already in flight")

	// A different workflow is not a duplicate.
	other := params
	other.WorkflowID = "wf-2"
	third, err := m.Create(other)
	require.NoError(t, err)
	assert.NotEqual(t, first.RequestID, third.RequestID)
}

func TestManager_ZeroTimeoutFailsOnStatusCheck(t *testing.T) {
	m := New(func(o *Options) {
		o.Registry = testRegistry()
		o.Executor = okExecutor()
	})
	defer m.Close()

	req, err := m.Create(CreateParams{
		RequestingAgent: "backend-worker",
		Description:     "born expired",
	}, func(o *CreateOptions) { o.Timeout = 0 })
	require.NoError(t, err)

	info := waitForStatus(t, m, req.RequestID, core.StatusFailed)
	assert.Contains(t, info.ErrorText, "timed out")

	_, err = m.Results(req.RequestID)
	assert.Error(t, err, "a timed out request has no results")
}

func TestManager_NoCapableAgentFailsRequest(t *testing.T) {
	m := New(func(o *Options) {
		o.Registry = registry.NewInMemoryRegistry() // empty
		o.Executor = okExecutor()
	})
	defer m.Close()

	req, err := m.Create(CreateParams{
		RequestingAgent: "backend-worker",
		RequestType:     "security_analysis",
		Description:     "nobody can help",
	})
	require.NoError(t, err)

	info := waitForStatus(t, m, req.RequestID, core.StatusFailed)
	assert.Contains(t, info.ErrorText, "no capable agent")
}

func TestManager_ExecutorErrorFailsRequest(t *testing.T) {
	m := New(func(o *Options) {
		o.Registry = testRegistry()
		o.Executor = ExecutorFunc(func(ctx context.Context, req core.AgentRequest, pkg core.ContextPackage) (*core.ResponseData, error) {
			return nil, errors.New("provider exploded")
		})
	})
	defer m.Close()

	req, err := m.Create(CreateParams{
		RequestingAgent: "backend-worker",
		RequestType:     "security_analysis",
		Description:     "doomed",
	})
	require.NoError(t, err)

	info := waitForStatus(t, m, req.RequestID, core.StatusFailed)
	assert.Contains(t, info.ErrorText, "provider exploded")

	// Failed requests stay queryable from the archive.
	again, err := m.Status(req.RequestID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusFailed, again.Status)
}

func TestManager_IntegrationOnCompletion(t *testing.T) {
	m := New(func(o *Options) {
		o.Registry = testRegistry()
		o.Executor = okExecutor()
	})
	defer m.Close()

	req, err := m.Create(CreateParams{
		RequestingAgent: "backend-worker",
		WorkflowID:      "wf-1",
		RequestType:     "security_analysis",
		Description:     "with context",
		OriginalContext: map[string]any{"auth_method": "JWT"},
	})
	require.NoError(t, err)

	waitForStatus(t, m, req.RequestID, core.StatusCompleted)

	res, err := m.Results(req.RequestID)
	require.NoError(t, err)
	require.NotNil(t, res.Integration)
	assert.Equal(t, core.StrategyMerge, res.Integration.StrategyUsed)
	assert.Equal(t, "JWT", res.Integration.IntegratedContext["auth_method"])
	assert.Equal(t, "looks fine", res.Integration.IntegratedContext["analysis"])
	assert.True(t, res.Integration.Complete)
}

func TestManager_DetectAndCreate(t *testing.T) {
	m := New(func(o *Options) {
		o.Registry = testRegistry()
		o.Executor = okExecutor()
	})
	defer m.Close()

	gaps, created, err := m.DetectAndCreate(
		"backend-worker", "wf-1", 0,
		map[string]any{},
		[]string{
			"Need security validation for new auth endpoint",
			"Performance unclear for cache layer",
		},
		map[string]any{},
	)
	require.NoError(t, err)
	require.Len(t, gaps, 2)

	// Only the high severity gap crosses the auto-create threshold.
	require.Len(t, created, 1)
	assert.Equal(t, string(core.GapTypeSecurityConcern), created[0].RequestType)
	assert.Equal(t, core.UrgencyHigh, created[0].Urgency)
	assert.Equal(t, gaps[0].GapID, created[0].GapID)

	waitForStatus(t, m, created[0].RequestID, core.StatusCompleted)
}

func TestManager_DetectAndCreateSuppressesRepeatScans(t *testing.T) {
	release := make(chan struct{})
	m := New(func(o *Options) {
		o.Registry = testRegistry()
		o.Executor = ExecutorFunc(func(ctx context.Context, req core.AgentRequest, pkg core.ContextPackage) (*core.ResponseData, error) {
			select {
			case <-release:
				return &core.ResponseData{Analysis: "done"}, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		})
	})
	defer m.Close()
	defer close(release)

	trace := []string{"Need security validation for new auth endpoint"}

	_, first, err := m.DetectAndCreate("backend-worker", "wf-1", 0, nil, trace, nil)
	require.NoError(t, err)
	require.Len(t, first, 1)

	_, second, err := m.DetectAndCreate("backend-worker", "wf-1", 0, nil, trace, nil)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].RequestID, second[0].RequestID,
		"rescanning the same trace must not spawn a second helper")
}

func TestManager_ConcurrencyBoundQueuesFIFO(t *testing.T) {
	release := make(chan struct{})
	started := make(chan string, 2)

	cfg := DefaultConfig
	cfg.MaxConcurrentRequests = 1

	m := New(func(o *Options) {
		o.Config = cfg
		o.Registry = testRegistry()
		o.Executor = ExecutorFunc(func(ctx context.Context, req core.AgentRequest, pkg core.ContextPackage) (*core.ResponseData, error) {
			started <- req.RequestID
			select {
			case <-release:
				return &core.ResponseData{Analysis: "done"}, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		})
	})
	defer m.Close()

	first, err := m.Create(CreateParams{RequestingAgent: "a", RequestType: "security_analysis", Description: "one"})
	require.NoError(t, err)

	select {
	case id := <-started:
		assert.Equal(t, first.RequestID, id)
	case <-time.After(2 * time.Second):
		t.Fatal("first request never started executing")
	}

	second, err := m.Create(CreateParams{RequestingAgent: "b", RequestType: "security_analysis", Description: "two"})
	require.NoError(t, err)

	// With one slot taken the second request must not reach execution.
	select {
	case id := <-started:
		t.Fatalf("request %s started while the slot was occupied", id)
	case <-time.After(50 * time.Millisecond):
	}
	info, err := m.Status(second.RequestID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusPending, info.Status)

	close(release)
	waitForStatus(t, m, first.RequestID, core.StatusCompleted)
	waitForStatus(t, m, second.RequestID, core.StatusCompleted)
}

func TestManager_StatusNotFound(t *testing.T) {
	m := New()
	defer m.Close()

	_, err := m.Status("missing")
	assert.ErrorIs(t, err, core.ErrRequestNotFound)
}

func TestManager_TransitionEventsPublished(t *testing.T) {
	b := bus.NewGoChannelBus()
	m := New(func(o *Options) {
		o.Registry = testRegistry()
		o.Executor = okExecutor()
		o.Bus = b
	})
	defer m.Close()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	envs, err := b.Subscribe(ctx, core.TopicRequestTransitions)
	require.NoError(t, err)

	req, err := m.Create(CreateParams{
		RequestingAgent: "backend-worker",
		RequestType:     "security_analysis",
		Description:     "observe me",
	})
	require.NoError(t, err)
	waitForStatus(t, m, req.RequestID, core.StatusCompleted)

	var statuses []core.RequestStatus
	deadline := time.After(2 * time.Second)
	for len(statuses) == 0 || statuses[len(statuses)-1] != core.StatusCompleted {
		select {
		case env := <-envs:
			var ev core.TransitionEvent
			require.NoError(t, env.Decode(&ev))
			if ev.RequestID == req.RequestID {
				statuses = append(statuses, ev.To)
			}
		case <-deadline:
			t.Fatalf("never observed completion event, saw %v", statuses)
		}
	}

	want := []core.RequestStatus{
		core.StatusPending,
		core.StatusAgentSelected,
		core.StatusContextGenerated,
		core.StatusExecuting,
		core.StatusCompleted,
	}
	assert.Equal(t, want, statuses, "explicit requests skip the analyzing state")
}

func TestManager_CreateAfterClose(t *testing.T) {
	m := New()
	require.NoError(t, m.Close())

	_, err := m.Create(CreateParams{RequestingAgent: "a", Description: "late"})
	assert.ErrorIs(t, err, ErrManagerClosed)
}

func TestUrgencyFor(t *testing.T) {
	assert.Equal(t, core.UrgencyHigh, urgencyFor(core.SeverityCritical))
	assert.Equal(t, core.UrgencyHigh, urgencyFor(core.SeverityHigh))
	assert.Equal(t, core.UrgencyNormal, urgencyFor(core.SeverityMedium))
	assert.Equal(t, core.UrgencyNormal, urgencyFor(core.SeverityLow))
}

func TestFindingsMap(t *testing.T) {
	data := &core.ResponseData{
		Analysis:        "summary",
		Findings:        []string{"f1", "f2"},
		Recommendations: []string{"r1"},
	}
	out := findingsMap(data)
	assert.Equal(t, "summary", out["analysis"])
	assert.Len(t, out["findings"], 2)

	empty := findingsMap(&core.ResponseData{})
	assert.Empty(t, empty)
}
