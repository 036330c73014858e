package lifecycle

import (
	"context"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/model"
)

// Executor runs the helper sub-workflow for an assigned request. Execute
// blocks until the helper answers or ctx is canceled; the manager derives ctx
// from the request deadline, so implementations need no timeout logic of
// their own.
type Executor interface {
	Execute(ctx context.Context, req core.AgentRequest, pkg core.ContextPackage) (*core.ResponseData, error)
}

// ExecutorFunc adapts a plain function to the Executor interface.
type ExecutorFunc func(ctx context.Context, req core.AgentRequest, pkg core.ContextPackage) (*core.ResponseData, error)

// Execute implements Executor.
func (f ExecutorFunc) Execute(ctx context.Context, req core.AgentRequest, pkg core.ContextPackage) (*core.ResponseData, error) {
	return f(ctx, req, pkg)
}

// ModelExecutorOptions configures a ModelExecutor.
type ModelExecutorOptions struct {
	// Instructions is the system prompt framing the helper's role.
	Instructions string
}

// ModelExecutor drives a model.Model as the helper backend: the request
// description and context package become the prompt, the completion becomes
// the response data.
type ModelExecutor struct {
	mdl  model.Model
	opts ModelExecutorOptions
}

// NewModelExecutor constructs a ModelExecutor with optional overrides.
func NewModelExecutor(mdl model.Model, optFns ...func(o *ModelExecutorOptions)) *ModelExecutor {
	opts := ModelExecutorOptions{
		Instructions: "You are a specialist helper agent. Analyze the task using only the provided context package and report structured findings.",
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &ModelExecutor{mdl: mdl, opts: opts}
}

// Execute implements Executor.
func (e *ModelExecutor) Execute(ctx context.Context, req core.AgentRequest, pkg core.ContextPackage) (*core.ResponseData, error) {
	resp, err := e.mdl.Analyze(ctx, model.Request{
		Instructions: e.opts.Instructions,
		RequestType:  req.RequestType,
		Description:  req.Description,
		Context:      pkg.Content,
	})
	if err != nil {
		return nil, err
	}

	data := resp.Data
	if data.ConfidenceMetrics == nil {
		data.ConfidenceMetrics = map[string]float64{"overall": resp.Confidence}
	} else if _, ok := data.ConfidenceMetrics["overall"]; !ok {
		data.ConfidenceMetrics["overall"] = resp.Confidence
	}
	return &data, nil
}
