package gap

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/logging"
)

// Signature pairs a gap type with the trace pattern that reveals it. The
// table is ordered: when a log line matches several signatures at equal
// severity, the earliest declared one wins, keeping detection deterministic.
type Signature struct {
	GapType     core.GapType
	Pattern     *regexp.Regexp
	Severity    core.Severity
	Expertise   []string
	Description string
}

// DefaultSignatures returns the built-in signature table. Order matters for
// tie-breaking; more severe concerns are declared first.
func DefaultSignatures() []Signature {
	return []Signature{
		{
			GapType:     core.GapTypeSecurityConcern,
			Pattern:     regexp.MustCompile(`(?i)security|vulnerab|exploit|auth(entication|orization)?\s+(unknown|unclear|missing)|unvalidated`),
			Severity:    core.SeverityHigh,
			Expertise:   []string{"security_analysis"},
			Description: "security validation required",
		},
		{
			GapType:     core.GapTypeMissingDependency,
			Pattern:     regexp.MustCompile(`(?i)missing depend|dependency (not found|unresolved)|cannot find (module|package)|not installed`),
			Severity:    core.SeverityHigh,
			Expertise:   []string{"dependency_resolution"},
			Description: "unresolved dependency",
		},
		{
			GapType:     core.GapTypePerformanceImpact,
			Pattern:     regexp.MustCompile(`(?i)performance|latency|slow|bottleneck|throughput`),
			Severity:    core.SeverityMedium,
			Expertise:   []string{"performance_analysis"},
			Description: "performance impact unquantified",
		},
		{
			GapType:     core.GapTypeInsufficientExpertise,
			Pattern:     regexp.MustCompile(`(?i)unclear|not sure|unfamiliar|don't know|unable to determine|need help`),
			Severity:    core.SeverityMedium,
			Expertise:   []string{"domain_expertise"},
			Description: "insufficient expertise for task step",
		},
	}
}

// SeverityScorer optionally overrides the rule-based severity of a matched
// signature, e.g. with a learned model. Returning an empty severity keeps the
// signature default.
type SeverityScorer interface {
	Score(line string, sig Signature) core.Severity
}

// Options configures a Detector.
type Options struct {
	// Signatures replaces the default signature table.
	Signatures []Signature
	// Scorer optionally refines severities beyond the rule-based default.
	Scorer SeverityScorer
	// RequiredFieldsKey names the task context entry listing required
	// findings. Defaults to "required_fields".
	RequiredFieldsKey string
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// Detector scans execution traces and findings for information gaps.
type Detector struct {
	signatures        []Signature
	scorer            SeverityScorer
	requiredFieldsKey string
	logger            logging.Logger
}

// NewDetector constructs a Detector with optional overrides.
func NewDetector(optFns ...func(o *Options)) *Detector {
	opts := Options{
		Signatures:        DefaultSignatures(),
		RequiredFieldsKey: "required_fields",
		Logger:            logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Detector{
		signatures:        opts.Signatures,
		scorer:            opts.Scorer,
		requiredFieldsKey: opts.RequiredFieldsKey,
		logger:            opts.Logger,
	}
}

// Detect returns the ranked list of gaps found in the worker's trace and
// findings, most severe first. It has no side effects beyond logging and
// never returns an error: gap detection must not block the caller's primary
// task, so a malformed input is logged and yields an empty list.
func (d *Detector) Detect(
	agentName string,
	taskContext map[string]any,
	executionLog []string,
	currentFindings map[string]any,
) (gaps []core.InformationGap) {
	defer func() {
		if r := recover(); r != nil {
			derr := &core.GapDetectionError{AgentName: agentName, Reason: fmt.Sprintf("%v", r)}
			d.logger.Warn("gap detection recovered: %v", derr)
			gaps = nil
		}
	}()

	seen := make(map[string]bool)
	for _, line := range executionLog {
		sig, ok := d.matchLine(line)
		if !ok {
			continue
		}
		severity := sig.Severity
		if d.scorer != nil {
			if s := d.scorer.Score(line, sig); s != "" {
				severity = s
			}
		}
		g := core.InformationGap{
			GapID:              core.DeterministicGapID(agentName, sig.GapType, line),
			GapType:            sig.GapType,
			Description:        line,
			Severity:           severity,
			DetectedBy:         agentName,
			SuggestedExpertise: append([]string{}, sig.Expertise...),
		}
		if !seen[g.GapID] {
			seen[g.GapID] = true
			gaps = append(gaps, g)
		}
	}

	gaps = append(gaps, d.missingContextGaps(agentName, taskContext, currentFindings, seen)...)

	// Rank most severe first; stable so declaration/detection order breaks ties.
	sort.SliceStable(gaps, func(i, j int) bool {
		return gaps[i].Severity.Rank() > gaps[j].Severity.Rank()
	})
	return gaps
}

// matchLine evaluates the signature table against one log line, returning the
// best match: highest severity, ties broken by declaration order.
func (d *Detector) matchLine(line string) (Signature, bool) {
	best := -1
	for i, sig := range d.signatures {
		if sig.Pattern == nil || !sig.Pattern.MatchString(line) {
			continue
		}
		if best == -1 || sig.Severity.Rank() > d.signatures[best].Severity.Rank() {
			best = i
		}
	}
	if best == -1 {
		return Signature{}, false
	}
	return d.signatures[best], true
}

// missingContextGaps diffs the task's declared required fields against the
// keys present in current findings.
func (d *Detector) missingContextGaps(
	agentName string,
	taskContext map[string]any,
	currentFindings map[string]any,
	seen map[string]bool,
) []core.InformationGap {
	required := stringSlice(taskContext[d.requiredFieldsKey])
	if len(required) == 0 {
		return nil
	}

	var gaps []core.InformationGap
	for _, field := range required {
		if _, ok := currentFindings[field]; ok {
			continue
		}
		desc := fmt.Sprintf("required context field %q is missing from current findings", field)
		g := core.InformationGap{
			GapID:              core.DeterministicGapID(agentName, core.GapTypeMissingContext, desc),
			GapType:            core.GapTypeMissingContext,
			Description:        desc,
			Severity:           core.SeverityMedium,
			DetectedBy:         agentName,
			SuggestedExpertise: []string{"context_gathering"},
		}
		if !seen[g.GapID] {
			seen[g.GapID] = true
			gaps = append(gaps, g)
		}
	}
	return gaps
}

// stringSlice coerces the loosely typed required-fields entry ([]string or
// []any of strings) into a string slice, ignoring anything else.
func stringSlice(v any) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
