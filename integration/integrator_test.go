package integration

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrelay/core"
)

func TestAnalyze_Partition(t *testing.T) {
	original := map[string]any{"auth_method": "JWT", "timeout": 30}
	findings := map[string]any{"auth_method": "OAuth", "timeout": 30, "security_score": 85}

	a := Analyze(original, findings)

	assert.Equal(t, []string{"auth_method"}, a.Conflicts)
	assert.Equal(t, []string{"security_score"}, a.Supplements)
	assert.Equal(t, []string{"timeout"}, a.Overlaps)
}

func TestIntegrate_MergeAddsSupplement(t *testing.T) {
	i := New()

	res, err := i.Integrate(
		map[string]any{"auth_method": "JWT"},
		map[string]any{"security_score": 85},
		core.StrategyMerge,
	)
	require.NoError(t, err)

	assert.True(t, res.Complete)
	assert.Equal(t, map[string]any{"auth_method": "JWT", "security_score": 85}, res.IntegratedContext)
	assert.Equal(t, []string{"security_score"}, res.Changes.Added)
	assert.Empty(t, res.Changes.Updated)
	assert.Greater(t, res.ConfidenceImprovement, 0.0)
}

func TestIntegrate_MergeConflictFavorsHigherConfidence(t *testing.T) {
	i := New()
	original := map[string]any{"risk": "low"}
	findings := map[string]any{"risk": "high"}

	res, err := i.Integrate(original, findings, core.StrategyMerge, func(o *Options) {
		o.OriginalConfidence = 0.9
		o.FindingsConfidence = 0.2
	})
	require.NoError(t, err)
	assert.Equal(t, "low", res.IntegratedContext["risk"], "stronger original must win the conflict")
	assert.Equal(t, []string{"risk"}, res.Changes.ConflictsResolved)

	res, err = i.Integrate(original, findings, core.StrategyMerge)
	require.NoError(t, err)
	assert.Equal(t, "high", res.IntegratedContext["risk"], "equal confidence ties toward the findings")
	assert.Equal(t, []string{"risk"}, res.Changes.Updated)
}

func TestIntegrate_AppendNamespacesFindings(t *testing.T) {
	i := New()

	res, err := i.Integrate(
		map[string]any{"auth_method": "JWT"},
		map[string]any{"auth_method": "OAuth", "security_score": 85},
		core.StrategyAppend,
	)
	require.NoError(t, err)

	assert.Equal(t, "JWT", res.IntegratedContext["auth_method"], "append must not touch original keys")
	section, ok := res.IntegratedContext["helper_findings"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "OAuth", section["auth_method"])
	assert.Equal(t, 85, section["security_score"])
	assert.Equal(t, []string{"auth_method", "security_score"}, res.Changes.Added)
	assert.Empty(t, res.Changes.ConflictsResolved)
}

func TestIntegrate_SelectiveDropsConflicts(t *testing.T) {
	i := New()

	res, err := i.Integrate(
		map[string]any{"auth_method": "JWT"},
		map[string]any{"auth_method": "OAuth", "security_score": 85},
		core.StrategySelective,
	)
	require.NoError(t, err)

	assert.Equal(t, "JWT", res.IntegratedContext["auth_method"])
	assert.Equal(t, 85, res.IntegratedContext["security_score"])
	assert.Empty(t, res.Changes.ConflictsResolved)
}

func TestIntegrate_PrioritizeNewOverwritesConflicts(t *testing.T) {
	i := New()

	res, err := i.Integrate(
		map[string]any{"auth_method": "JWT"},
		map[string]any{"auth_method": "OAuth"},
		core.StrategyPrioritizeNew,
	)
	require.NoError(t, err)

	assert.Equal(t, "OAuth", res.IntegratedContext["auth_method"])
	assert.Equal(t, []string{"auth_method"}, res.Changes.Updated)
}

func TestIntegrate_PrioritizeOriginalKeepsConflicts(t *testing.T) {
	i := New()

	res, err := i.Integrate(
		map[string]any{"auth_method": "JWT"},
		map[string]any{"auth_method": "OAuth", "security_score": 85},
		core.StrategyPrioritizeOriginal,
	)
	require.NoError(t, err)

	assert.Equal(t, "JWT", res.IntegratedContext["auth_method"])
	assert.Equal(t, 85, res.IntegratedContext["security_score"])
	assert.Equal(t, []string{"auth_method"}, res.Changes.ConflictsResolved)
	assert.Empty(t, res.Changes.Updated)
}

func TestIntegrate_UnknownStrategyReturnsPartialResult(t *testing.T) {
	i := New()

	res, err := i.Integrate(
		map[string]any{"auth_method": "JWT"},
		map[string]any{"auth_method": "OAuth"},
		core.IntegrationStrategy("overwrite_everything"),
	)
	require.Error(t, err)

	var conflict *core.IntegrationConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, []string{"auth_method"}, conflict.Conflicts)

	require.NotNil(t, res, "partial result must accompany the error")
	assert.False(t, res.Complete)
	assert.Equal(t, "JWT", res.IntegratedContext["auth_method"], "original context is left untouched")
}

func TestIntegrate_InputsNotMutated(t *testing.T) {
	i := New()
	original := map[string]any{"auth_method": "JWT"}
	findings := map[string]any{"security_score": 85}

	_, err := i.Integrate(original, findings, core.StrategyMerge)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"auth_method": "JWT"}, original)
	assert.Equal(t, map[string]any{"security_score": 85}, findings)
}

func TestIntegrate_ConfidenceMonotonicInSupplements(t *testing.T) {
	i := New()
	original := map[string]any{"base": true}

	small := map[string]any{"a": 1}
	large := map[string]any{"a": 1, "b": 2, "c": 3}

	resSmall, err := i.Integrate(original, small, core.StrategyMerge)
	require.NoError(t, err)
	resLarge, err := i.Integrate(original, large, core.StrategyMerge)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, resLarge.ConfidenceImprovement, resSmall.ConfidenceImprovement,
		"a superset of supplements must never lower confidence improvement")
}

func TestIntegrate_ConfidenceImprovementCapped(t *testing.T) {
	i := New()

	findings := map[string]any{}
	for _, k := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		findings[k] = k
	}

	res, err := i.Integrate(map[string]any{}, findings, core.StrategyMerge)
	require.NoError(t, err)
	assert.LessOrEqual(t, res.ConfidenceImprovement, 1.0)
}

func TestIntegrate_AuditFieldsPopulated(t *testing.T) {
	i := New()

	res, err := i.Integrate(
		map[string]any{"k": "v"},
		map[string]any{"n": "f"},
		core.StrategyMerge,
		func(o *Options) {
			o.RequestID = "req-1"
			o.RequestingAgent = "backend-worker"
			o.WorkflowID = "wf-9"
		},
	)
	require.NoError(t, err)

	assert.NotEmpty(t, res.IntegrationID)
	assert.Equal(t, "req-1", res.RequestID)
	assert.Equal(t, "backend-worker", res.RequestingAgent)
	assert.Equal(t, "wf-9", res.WorkflowID)
	assert.Equal(t, map[string]any{"k": "v"}, res.OriginalContext)
	assert.Equal(t, map[string]any{"n": "f"}, res.NewFindings)
	assert.False(t, res.CreatedAt.IsZero())
}
