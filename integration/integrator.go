package integration

import (
	"reflect"
	"sort"
	"time"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/internal/util"
	"github.com/hupe1980/agentrelay/logging"
)

// Analysis partitions the findings keys into three disjoint sets relative to
// the original context.
type Analysis struct {
	// Conflicts are keys present in both maps with differing values.
	Conflicts []string
	// Supplements are keys only the findings carry.
	Supplements []string
	// Overlaps are keys present in both maps with equal values.
	Overlaps []string
}

// Analyze computes the compatibility analysis between an original context and
// new findings. Key sets are sorted for deterministic output.
func Analyze(original, findings map[string]any) Analysis {
	var a Analysis
	for key, value := range findings {
		prior, exists := original[key]
		switch {
		case !exists:
			a.Supplements = append(a.Supplements, key)
		case reflect.DeepEqual(prior, value):
			a.Overlaps = append(a.Overlaps, key)
		default:
			a.Conflicts = append(a.Conflicts, key)
		}
	}
	sort.Strings(a.Conflicts)
	sort.Strings(a.Supplements)
	sort.Strings(a.Overlaps)
	return a
}

// Options carries per-call integration parameters.
type Options struct {
	// RequestID links the result to the request whose helper produced the
	// findings.
	RequestID string
	// RequestingAgent and WorkflowID are echoed into the result for audit.
	RequestingAgent string
	WorkflowID      string
	// OriginalConfidence and FindingsConfidence weight conflict resolution
	// under the merge strategy. Defaults: 0.5 each (tie favors findings).
	OriginalConfidence float64
	FindingsConfidence float64
	// AppendKey names the section the append strategy nests findings under.
	// Default "helper_findings".
	AppendKey string
}

// Integrator applies integration strategies and produces immutable results.
type Integrator struct {
	logger logging.Logger
}

// New constructs an Integrator.
func New(optFns ...func(l *logging.Logger)) *Integrator {
	var logger logging.Logger = logging.NoOpLogger{}
	for _, fn := range optFns {
		fn(&logger)
	}
	return &Integrator{logger: logger}
}

// Integrate merges new findings into the original context under the given
// strategy. The inputs are never mutated; the result holds defensive copies
// of both for audit. An unknown strategy returns the partial result (original
// context untouched, conflicts flagged) together with an
// IntegrationConflictError so the caller can inspect what was left
// unresolved.
func (i *Integrator) Integrate(
	original map[string]any,
	findings map[string]any,
	strategy core.IntegrationStrategy,
	optFns ...func(o *Options),
) (*core.IntegrationResult, error) {
	opts := Options{
		OriginalConfidence: 0.5,
		FindingsConfidence: 0.5,
		AppendKey:          "helper_findings",
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	started := time.Now()
	analysis := Analyze(original, findings)

	res := &core.IntegrationResult{
		IntegrationID:   core.NewID(),
		RequestID:       opts.RequestID,
		StrategyUsed:    strategy,
		OriginalContext: util.CloneMap(original),
		NewFindings:     util.CloneMap(findings),
		RequestingAgent: opts.RequestingAgent,
		WorkflowID:      opts.WorkflowID,
		CreatedAt:       time.Now().UTC(),
	}

	integrated := util.CloneMap(original)
	var resolvedTowardStronger int

	switch strategy {
	case core.StrategyMerge:
		for _, key := range analysis.Supplements {
			integrated[key] = findings[key]
			res.Changes.Added = append(res.Changes.Added, key)
		}
		// Every merge conflict is resolved toward the higher-confidence
		// source (ties favor the findings), so each one counts toward the
		// confidence improvement.
		for _, key := range analysis.Conflicts {
			if opts.FindingsConfidence >= opts.OriginalConfidence {
				integrated[key] = findings[key]
				res.Changes.Updated = append(res.Changes.Updated, key)
			}
			res.Changes.ConflictsResolved = append(res.Changes.ConflictsResolved, key)
			resolvedTowardStronger++
		}

	case core.StrategyAppend:
		section := util.CloneMap(findings)
		integrated[opts.AppendKey] = section
		res.Changes.Added = append([]string{}, analysis.Supplements...)
		res.Changes.Added = append(res.Changes.Added, analysis.Conflicts...)
		res.Changes.Added = append(res.Changes.Added, analysis.Overlaps...)
		sort.Strings(res.Changes.Added)

	case core.StrategySelective:
		for _, key := range analysis.Supplements {
			integrated[key] = findings[key]
			res.Changes.Added = append(res.Changes.Added, key)
		}

	case core.StrategyPrioritizeNew:
		for _, key := range analysis.Supplements {
			integrated[key] = findings[key]
			res.Changes.Added = append(res.Changes.Added, key)
		}
		for _, key := range analysis.Conflicts {
			integrated[key] = findings[key]
			res.Changes.Updated = append(res.Changes.Updated, key)
			res.Changes.ConflictsResolved = append(res.Changes.ConflictsResolved, key)
		}

	case core.StrategyPrioritizeOriginal:
		for _, key := range analysis.Supplements {
			integrated[key] = findings[key]
			res.Changes.Added = append(res.Changes.Added, key)
		}
		res.Changes.ConflictsResolved = append(res.Changes.ConflictsResolved, analysis.Conflicts...)

	default:
		res.IntegratedContext = integrated
		res.Complete = false
		err := &core.IntegrationConflictError{Strategy: strategy, Conflicts: analysis.Conflicts}
		i.logger.Warn("integration incomplete: %v", err)
		return res, err
	}

	res.IntegratedContext = integrated
	res.Complete = true
	res.ConfidenceImprovement = confidenceImprovement(len(res.Changes.Added), resolvedTowardStronger)

	i.logger.Debug("integration %s applied strategy %s in %s (added=%d updated=%d conflicts=%d)",
		res.IntegrationID, strategy, time.Since(started), len(res.Changes.Added), len(res.Changes.Updated), len(res.Changes.ConflictsResolved))
	return res, nil
}

// confidenceImprovement scores how much the integration strengthened the
// context: gaps filled (supplements) and conflicts resolved in favor of
// higher-confidence data, normalized into [0,1]. Monotonic: more supplements
// never lower the score.
func confidenceImprovement(added, resolvedTowardStronger int) float64 {
	score := 0.1*float64(added) + 0.15*float64(resolvedTowardStronger)
	if score > 1 {
		return 1
	}
	return score
}
