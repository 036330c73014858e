// Package agentrelay provides a high-level façade over the request lifecycle
// engine and its service abstractions (capability registry, archive, event
// bus, metrics & logging) for building dynamic request and context
// integration systems. Most applications interact with this package by:
//  1. Creating an AgentRelay via New() (optionally overriding default in-memory services)
//  2. Registering helper capability profiles (RegisterAgent)
//  3. Creating requests explicitly (CreateRequest) or scanning worker traces (DetectGaps)
//  4. Polling RequestStatus / RequestResults and reading Metrics
//
// The façade delegates orchestration to lifecycle.Manager while keeping setup
// and usage ergonomics concise. All defaults are safe for local development
// and testing; production deployments typically supply a durable archive, a
// real model executor and a structured logger.
package agentrelay

import (
	"github.com/hupe1980/agentrelay/archive"
	"github.com/hupe1980/agentrelay/bus"
	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/integration"
	"github.com/hupe1980/agentrelay/lifecycle"
	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/metrics"
	"github.com/hupe1980/agentrelay/registry"
)

// Options configures the AgentRelay instance.
type Options struct {
	// Lifecycle configuration (concurrency bound, timeouts, spawn depth,
	// integration defaults).
	LifecycleConfig lifecycle.Config

	// Stores (default to in-memory implementations if not provided)
	Registry core.CapabilityRegistry
	Archive  core.ArchiveStore

	// Bus carries transition and result events. Defaults to an in-process
	// gochannel bus owned by the façade.
	Bus bus.Bus

	// Executor runs the helper sub-workflow. Defaults to a mock-model
	// executor suitable for development.
	Executor lifecycle.Executor

	// EnableMetrics attaches a collector to the bus. Default true.
	EnableMetrics bool

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// AgentRelay is the high-level façade aggregating the lifecycle manager and
// its services.
type AgentRelay struct {
	opts      Options
	bus       bus.Bus
	ownsBus   bool
	manager   *lifecycle.Manager
	collector *metrics.Collector
}

// New creates a new AgentRelay instance with optional overrides. Any unset
// service is initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) (*AgentRelay, error) {
	opts := Options{
		LifecycleConfig: lifecycle.DefaultConfig,
		Registry:        registry.NewInMemoryRegistry(),
		Archive:         archive.NewInMemoryStore(),
		EnableMetrics:   true,
		Logger:          logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	r := &AgentRelay{opts: opts, bus: opts.Bus}
	if r.bus == nil {
		r.bus = bus.NewGoChannelBus()
		r.ownsBus = true
	}

	// The collector must subscribe before the manager publishes anything.
	if opts.EnableMetrics {
		collector, err := metrics.NewCollector(r.bus, func(o *metrics.Options) { o.Logger = opts.Logger })
		if err != nil {
			if r.ownsBus {
				_ = r.bus.Close()
			}
			return nil, err
		}
		r.collector = collector
	}

	r.manager = lifecycle.New(func(o *lifecycle.Options) {
		o.Config = opts.LifecycleConfig
		o.Registry = opts.Registry
		o.Archive = opts.Archive
		o.Bus = r.bus
		o.Executor = opts.Executor
		o.Logger = opts.Logger
	})

	return r, nil
}

// Manager exposes the underlying lifecycle manager for advanced use.
func (r *AgentRelay) Manager() *lifecycle.Manager { return r.manager }

// RegisterAgent adds or replaces a helper capability profile.
func (r *AgentRelay) RegisterAgent(profile core.AgentCapabilityProfile) {
	r.opts.Registry.Upsert(profile)
}

// CreateRequest registers an explicit dynamic request and starts processing.
func (r *AgentRelay) CreateRequest(p lifecycle.CreateParams, optFns ...func(o *lifecycle.CreateOptions)) (core.AgentRequest, error) {
	return r.manager.Create(p, optFns...)
}

// DetectGaps scans a worker's trace, auto-creating requests for gaps at or
// above the configured severity.
func (r *AgentRelay) DetectGaps(
	agentName, workflowID string,
	spawnDepth int,
	taskContext map[string]any,
	executionLog []string,
	currentFindings map[string]any,
) ([]core.InformationGap, []core.AgentRequest, error) {
	return r.manager.DetectAndCreate(agentName, workflowID, spawnDepth, taskContext, executionLog, currentFindings)
}

// RequestStatus returns the current state of a request, live or archived.
func (r *AgentRelay) RequestStatus(requestID string) (lifecycle.StatusInfo, error) {
	return r.manager.Status(requestID)
}

// RequestResults returns the terminal outcome of a completed request.
func (r *AgentRelay) RequestResults(requestID string) (lifecycle.Results, error) {
	return r.manager.Results(requestID)
}

// Integrate reconciles findings with an original context on the caller's
// behalf.
func (r *AgentRelay) Integrate(
	requestID string,
	original, findings map[string]any,
	strategy core.IntegrationStrategy,
	optFns ...func(o *integration.Options),
) (*core.IntegrationResult, error) {
	return r.manager.Integrate(requestID, original, findings, strategy, optFns...)
}

// IntegrationResult returns an archived integration result.
func (r *AgentRelay) IntegrationResult(integrationID string) (core.IntegrationResult, error) {
	return r.manager.Integration(integrationID)
}

// Metrics returns the current aggregate snapshot. The zero Snapshot is
// returned when metrics were disabled.
func (r *AgentRelay) Metrics() metrics.Snapshot {
	if r.collector == nil {
		return metrics.Snapshot{}
	}
	return r.collector.Snapshot()
}

// MetricsCollector exposes the collector, or nil when metrics are disabled.
func (r *AgentRelay) MetricsCollector() *metrics.Collector { return r.collector }

// Close shuts down the manager, the collector and, if owned, the bus.
func (r *AgentRelay) Close() error {
	err := r.manager.Close()
	if r.collector != nil {
		if cerr := r.collector.Close(); err == nil {
			err = cerr
		}
	}
	if r.ownsBus {
		if berr := r.bus.Close(); err == nil {
			err = berr
		}
	}
	return err
}
