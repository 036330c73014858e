package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/hupe1980/agentrelay/archive"
	"github.com/hupe1980/agentrelay/bus"
	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/gap"
	"github.com/hupe1980/agentrelay/integration"
	"github.com/hupe1980/agentrelay/internal/util"
	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/model"
	"github.com/hupe1980/agentrelay/registry"
	"github.com/hupe1980/agentrelay/selector"
)

// ErrManagerClosed is returned by Create after Close has been called.
var ErrManagerClosed = errors.New("lifecycle manager is closed")

// Config defines tuning parameters for the manager's operational behavior.
type Config struct {
	// MaxConcurrentRequests bounds how many helpers execute simultaneously.
	// Additional requests queue in FIFO order until a slot frees up.
	MaxConcurrentRequests int

	// DefaultTimeout is applied to requests created without an explicit
	// timeout. The deadline is absolute: queue time counts against it.
	DefaultTimeout time.Duration

	// MaxTokensPerPackage caps the estimated token size of generated context
	// packages. Oversized content is truncated, largest entries first.
	MaxTokensPerPackage int

	// MaxSpawnDepth rejects requests nested deeper than this many helper
	// levels, guarding against runaway recursive spawning.
	MaxSpawnDepth int

	// AutoCreateSeverity is the minimum gap severity for which DetectAndCreate
	// spawns a request. Lower-severity gaps are reported but not acted on.
	AutoCreateSeverity core.Severity

	// DefaultStrategy governs integration when no strategy is given.
	DefaultStrategy core.IntegrationStrategy

	// ConfidenceThreshold marks helper responses below it as low-confidence in
	// logs; the response is still delivered.
	ConfidenceThreshold float64
}

// DefaultConfig provides production-ready default configuration values.
var DefaultConfig = Config{
	MaxConcurrentRequests: 50,
	DefaultTimeout:        30 * time.Minute,
	MaxTokensPerPackage:   4000,
	MaxSpawnDepth:         3,
	AutoCreateSeverity:    core.SeverityHigh,
	DefaultStrategy:       core.StrategyMerge,
	ConfidenceThreshold:   0.7,
}

// Options configures a Manager instance using the functional options pattern.
// All service dependencies have in-memory defaults so a bare New() yields a
// working manager for development and tests.
type Options struct {
	// Config contains operational parameters. Defaults to DefaultConfig.
	Config Config

	// Registry holds helper candidate profiles.
	// Defaults to an empty in-memory registry.
	Registry core.CapabilityRegistry

	// Archive retains terminal requests and integration results.
	// Defaults to an in-memory store.
	Archive core.ArchiveStore

	// Bus carries transition and result events to observers.
	// Defaults to an in-process gochannel bus.
	Bus bus.Bus

	// Detector scans execution traces for information gaps.
	Detector *gap.Detector

	// Selector ranks helper candidates for a gap.
	Selector *selector.Selector

	// Integrator reconciles helper findings with requester context.
	Integrator *integration.Integrator

	// Executor runs the helper sub-workflow.
	// Defaults to a ModelExecutor over a MockModel.
	Executor Executor

	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// entry is the arena slot owning one request. Its mutex serializes all
// mutation of the request; the manager-level mutex only guards map membership.
type entry struct {
	mu              sync.Mutex
	req             core.AgentRequest
	gap             *core.InformationGap
	expertise       []string
	originalContext map[string]any
	strategy        core.IntegrationStrategy
	integrationID   string
}

// Manager is the request lifecycle orchestrator. It is safe for concurrent
// use; every public method may be called from any goroutine.
type Manager struct {
	cfg        Config
	registry   core.CapabilityRegistry
	archive    core.ArchiveStore
	bus        bus.Bus
	detector   *gap.Detector
	selector   *selector.Selector
	integrator *integration.Integrator
	executor   Executor
	logger     logging.Logger

	sem        *semaphore.Weighted
	rootCtx    context.Context
	rootCancel context.CancelFunc
	wg         sync.WaitGroup

	mu         sync.RWMutex
	entries    map[string]*entry
	activeGaps map[string]string // dedup key -> request id, non-terminal only
	cancels    map[string]context.CancelFunc
}

// New creates a Manager with sensible defaults and optional configuration.
func New(optFns ...func(o *Options)) *Manager {
	opts := Options{
		Config:   DefaultConfig,
		Registry: registry.NewInMemoryRegistry(),
		Archive:  archive.NewInMemoryStore(),
		Logger:   logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Bus == nil {
		opts.Bus = bus.NewGoChannelBus()
	}
	if opts.Detector == nil {
		opts.Detector = gap.NewDetector(func(o *gap.Options) { o.Logger = opts.Logger })
	}
	if opts.Selector == nil {
		opts.Selector = selector.New(func(o *selector.Options) { o.Logger = opts.Logger })
	}
	if opts.Integrator == nil {
		opts.Integrator = integration.New(func(l *logging.Logger) { *l = opts.Logger })
	}
	if opts.Executor == nil {
		opts.Executor = NewModelExecutor(model.NewMockModel("relay-helper"))
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		cfg:        opts.Config,
		registry:   opts.Registry,
		archive:    opts.Archive,
		bus:        opts.Bus,
		detector:   opts.Detector,
		selector:   opts.Selector,
		integrator: opts.Integrator,
		executor:   opts.Executor,
		logger:     opts.Logger,
		sem:        semaphore.NewWeighted(int64(opts.Config.MaxConcurrentRequests)),
		rootCtx:    ctx,
		rootCancel: cancel,
		entries:    make(map[string]*entry),
		activeGaps: make(map[string]string),
		cancels:    make(map[string]context.CancelFunc),
	}
}

// CreateParams carries the caller-supplied fields of a new request.
type CreateParams struct {
	RequestingAgent string
	WorkflowID      string
	RequestType     string
	Description     string
	Urgency         core.Urgency
	SpawnDepth      int

	// RequiredExpertise lists the capabilities the helper must carry.
	// Defaults to the request type for explicit requests without a gap.
	RequiredExpertise []string

	// Gap links the request to a detected gap and enables duplicate
	// suppression. Nil for explicit requests.
	Gap *core.InformationGap

	// OriginalContext, when present, is packaged for the helper and later
	// integrated with its findings.
	OriginalContext map[string]any
}

// CreateOptions carries per-request overrides.
type CreateOptions struct {
	// Timeout overrides the configured default. Zero is honored literally:
	// the request is born expired and fails on its next status check.
	Timeout time.Duration

	// Strategy overrides the configured default integration strategy.
	Strategy core.IntegrationStrategy
}

// Create registers a new request and starts processing it asynchronously.
// It returns immediately with a snapshot of the pending request.
//
// A request whose spawn depth exceeds the configured maximum is rejected and
// nothing is persisted. A request duplicating a non-terminal request for the
// same (requesting agent, workflow, gap) returns that existing request.
func (m *Manager) Create(p CreateParams, optFns ...func(o *CreateOptions)) (core.AgentRequest, error) {
	if err := m.rootCtx.Err(); err != nil {
		return core.AgentRequest{}, ErrManagerClosed
	}
	if p.RequestingAgent == "" {
		return core.AgentRequest{}, fmt.Errorf("requesting agent is required")
	}
	if p.SpawnDepth > m.cfg.MaxSpawnDepth {
		return core.AgentRequest{}, &core.SpawnDepthExceededError{Depth: p.SpawnDepth, Max: m.cfg.MaxSpawnDepth}
	}

	opts := CreateOptions{
		Timeout:  m.cfg.DefaultTimeout,
		Strategy: m.cfg.DefaultStrategy,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if p.Urgency == "" {
		p.Urgency = core.UrgencyNormal
	}

	m.mu.Lock()
	if p.Gap != nil {
		if existingID, ok := m.activeGaps[dedupKey(p.RequestingAgent, p.WorkflowID, p.Gap.GapID)]; ok {
			existing := m.entries[existingID]
			m.mu.Unlock()
			existing.mu.Lock()
			snapshot := existing.req
			existing.mu.Unlock()
			m.logger.Debug("duplicate request for gap %s suppressed, returning %s", p.Gap.GapID, snapshot.RequestID)
			return snapshot, nil
		}
	}

	now := time.Now().UTC()
	req := core.AgentRequest{
		RequestID:       core.NewID(),
		RequestingAgent: p.RequestingAgent,
		WorkflowID:      p.WorkflowID,
		RequestType:     p.RequestType,
		Urgency:         p.Urgency,
		Description:     p.Description,
		Status:          core.StatusPending,
		SpawnDepth:      p.SpawnDepth,
		CreatedAt:       now,
		TimeoutAt:       now.Add(opts.Timeout),
	}
	if p.Gap != nil {
		req.GapID = p.Gap.GapID
	}

	e := &entry{
		req:             req,
		gap:             p.Gap,
		expertise:       append([]string(nil), p.RequiredExpertise...),
		originalContext: util.CloneMap(p.OriginalContext),
		strategy:        opts.Strategy,
	}
	if len(p.OriginalContext) == 0 {
		e.originalContext = nil
	}

	m.entries[req.RequestID] = e
	if p.Gap != nil {
		m.activeGaps[dedupKey(p.RequestingAgent, p.WorkflowID, p.Gap.GapID)] = req.RequestID
	}
	m.mu.Unlock()

	m.publishTransition(req.RequestID, "", core.StatusPending)
	m.logger.Info("request %s created by %s (type=%s urgency=%s depth=%d)",
		req.RequestID, req.RequestingAgent, req.RequestType, req.Urgency, req.SpawnDepth)

	m.wg.Add(1)
	go m.run(e)

	return req, nil
}

// run drives one request through the state machine. It owns the request's
// goroutine for the full lifetime; all shared state access goes through the
// entry mutex.
func (m *Manager) run(e *entry) {
	defer m.wg.Done()

	e.mu.Lock()
	requestID := e.req.RequestID
	deadline := e.req.TimeoutAt
	autoGenerated := e.gap != nil
	e.mu.Unlock()

	ctx, cancel := context.WithDeadline(m.rootCtx, deadline)
	defer cancel()

	m.mu.Lock()
	m.cancels[requestID] = cancel
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		delete(m.cancels, requestID)
		m.mu.Unlock()
	}()

	// FIFO admission under the concurrency bound. Queue time counts against
	// the request deadline.
	if err := m.sem.Acquire(ctx, 1); err != nil {
		m.fail(e, m.deadlineError(ctx, requestID, deadline, err))
		return
	}
	defer m.sem.Release(1)

	if m.expired(e) {
		return
	}

	// Auto-generated requests pass through severity analysis; explicit ones
	// go straight to selection.
	if autoGenerated {
		if !m.transition(e, core.StatusAnalyzing) {
			return
		}
	}

	g := m.selectionGap(e)
	assigned, err := m.selector.Select(g, m.registry.Snapshot())
	if err != nil {
		m.fail(e, err)
		return
	}

	e.mu.Lock()
	e.req.AssignedAgent = assigned
	e.mu.Unlock()

	if !m.transition(e, core.StatusAgentSelected) {
		return
	}

	m.registry.AdjustLoad(assigned, 1)
	defer m.registry.AdjustLoad(assigned, -1)

	pkg := m.buildPackage(e)
	if !m.transition(e, core.StatusContextGenerated) {
		return
	}
	if !m.transition(e, core.StatusExecuting) {
		return
	}

	e.mu.Lock()
	reqSnapshot := e.req
	e.mu.Unlock()

	started := time.Now()
	data, err := m.executor.Execute(ctx, reqSnapshot, pkg)
	if err != nil {
		m.fail(e, m.deadlineError(ctx, requestID, deadline, err))
		return
	}

	confidence := data.ConfidenceMetrics["overall"]
	if confidence < m.cfg.ConfidenceThreshold {
		m.logger.Warn("request %s response confidence %.2f below threshold %.2f",
			requestID, confidence, m.cfg.ConfidenceThreshold)
	}
	m.logger.Debug("request %s helper %s finished in %s", requestID, assigned, time.Since(started))

	e.mu.Lock()
	e.req.ResponseData = data
	e.req.ConfidenceScore = &confidence
	original := e.originalContext
	strategy := e.strategy
	e.mu.Unlock()

	if original != nil {
		res, ierr := m.integrator.Integrate(original, findingsMap(data), strategy,
			func(o *integration.Options) {
				o.RequestID = reqSnapshot.RequestID
				o.RequestingAgent = reqSnapshot.RequestingAgent
				o.WorkflowID = reqSnapshot.WorkflowID
				o.FindingsConfidence = confidence
			})
		if ierr != nil {
			m.logger.Warn("request %s integration incomplete: %v", requestID, ierr)
		}
		if res != nil {
			if aerr := m.archive.ArchiveIntegration(*res); aerr != nil {
				m.logger.Error("archive integration %s: %v", res.IntegrationID, aerr)
			}
			m.publishResult(*res)
			e.mu.Lock()
			e.integrationID = res.IntegrationID
			e.mu.Unlock()
		}
	}

	if !m.transition(e, core.StatusCompleted) {
		return
	}
	m.finalize(e)
}

// DetectAndCreate scans a worker's trace for gaps and spawns a request for
// every gap at or above the configured severity. Detected gaps below the
// threshold are returned without a request. Duplicate gaps resolve to the
// request already in flight.
func (m *Manager) DetectAndCreate(
	agentName string,
	workflowID string,
	spawnDepth int,
	taskContext map[string]any,
	executionLog []string,
	currentFindings map[string]any,
	optFns ...func(o *CreateOptions),
) ([]core.InformationGap, []core.AgentRequest, error) {
	gaps := m.detector.Detect(agentName, taskContext, executionLog, currentFindings)

	var created []core.AgentRequest
	for _, g := range gaps {
		if g.Severity.Rank() < m.cfg.AutoCreateSeverity.Rank() {
			continue
		}
		g := g
		req, err := m.Create(CreateParams{
			RequestingAgent: agentName,
			WorkflowID:      workflowID,
			RequestType:     string(g.GapType),
			Description:     g.Description,
			Urgency:         urgencyFor(g.Severity),
			SpawnDepth:      spawnDepth,
			Gap:             &g,
			OriginalContext: currentFindings,
		}, optFns...)
		if err != nil {
			return gaps, created, err
		}
		created = append(created, req)
	}
	return gaps, created, nil
}

// StatusInfo is the answer to a status poll.
type StatusInfo struct {
	RequestID     string             `json:"request_id"`
	Status        core.RequestStatus `json:"status"`
	Progress      int                `json:"progress"`
	AssignedAgent string             `json:"assigned_agent,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	TimeoutAt     time.Time          `json:"timeout_at"`
	ErrorText     string             `json:"error_text,omitempty"`
}

// Status returns the current state of a request, live or archived. Reading
// the status of a request past its deadline fails it first, so expiry is
// observed even if the worker goroutine has not noticed yet.
func (m *Manager) Status(requestID string) (StatusInfo, error) {
	m.mu.RLock()
	e, ok := m.entries[requestID]
	m.mu.RUnlock()

	if !ok {
		req, err := m.archive.Request(requestID)
		if err != nil {
			return StatusInfo{}, err
		}
		return statusInfo(req), nil
	}

	m.expired(e)

	e.mu.Lock()
	defer e.mu.Unlock()
	return statusInfo(e.req), nil
}

// Results is the terminal outcome of a completed request.
type Results struct {
	Request     core.AgentRequest       `json:"request"`
	Integration *core.IntegrationResult `json:"integration,omitempty"`
}

// Results returns the response data and integration result of a completed
// request. Non-terminal requests and failed requests return an error.
func (m *Manager) Results(requestID string) (Results, error) {
	info, err := m.Status(requestID)
	if err != nil {
		return Results{}, err
	}
	if info.Status != core.StatusCompleted {
		return Results{}, fmt.Errorf("request %s has no results (status %s): %s", requestID, info.Status, info.ErrorText)
	}

	m.mu.RLock()
	e, ok := m.entries[requestID]
	m.mu.RUnlock()

	var req core.AgentRequest
	var integrationID string
	if ok {
		e.mu.Lock()
		req = e.req
		integrationID = e.integrationID
		e.mu.Unlock()
	} else {
		req, err = m.archive.Request(requestID)
		if err != nil {
			return Results{}, err
		}
	}

	out := Results{Request: req}
	if integrationID != "" {
		if res, err := m.archive.Integration(integrationID); err == nil {
			out.Integration = &res
		}
	}
	return out, nil
}

// Integrate reconciles findings with an original context on behalf of an
// external caller, archiving and publishing the result. An empty strategy
// falls back to the configured default.
func (m *Manager) Integrate(
	requestID string,
	original map[string]any,
	findings map[string]any,
	strategy core.IntegrationStrategy,
	optFns ...func(o *integration.Options),
) (*core.IntegrationResult, error) {
	if strategy == "" {
		strategy = m.cfg.DefaultStrategy
	}

	res, err := m.integrator.Integrate(original, findings, strategy, append([]func(o *integration.Options){
		func(o *integration.Options) { o.RequestID = requestID },
	}, optFns...)...)
	if res != nil {
		if aerr := m.archive.ArchiveIntegration(*res); aerr != nil {
			m.logger.Error("archive integration %s: %v", res.IntegrationID, aerr)
		}
		m.publishResult(*res)
	}
	return res, err
}

// Integration returns an archived integration result.
func (m *Manager) Integration(integrationID string) (core.IntegrationResult, error) {
	return m.archive.Integration(integrationID)
}

// Active returns the number of non-terminal requests.
func (m *Manager) Active() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, e := range m.entries {
		e.mu.Lock()
		if !e.req.Status.Terminal() {
			n++
		}
		e.mu.Unlock()
	}
	return n
}

// Cancel aborts a non-terminal request. The helper context is canceled
// best-effort; the request moves to failed immediately.
func (m *Manager) Cancel(requestID string) error {
	m.mu.RLock()
	e, ok := m.entries[requestID]
	cancel := m.cancels[requestID]
	m.mu.RUnlock()

	if !ok {
		return core.ErrRequestNotFound
	}
	if cancel != nil {
		cancel()
	}
	m.fail(e, fmt.Errorf("request %s canceled", requestID))
	return nil
}

// Close stops accepting requests, cancels everything in flight and waits for
// worker goroutines to drain. The bus is left to its owner.
func (m *Manager) Close() error {
	m.rootCancel()
	m.wg.Wait()
	return nil
}

// transition moves the request to the next status, publishing the change.
// Returns false when the request already left the happy path (failed by a
// concurrent status check or cancellation); the caller must stop processing.
func (m *Manager) transition(e *entry, to core.RequestStatus) bool {
	e.mu.Lock()
	from := e.req.Status
	if !core.CanTransition(from, to) {
		e.mu.Unlock()
		return false
	}
	e.req.Status = to
	if to.Terminal() {
		now := time.Now().UTC()
		e.req.CompletedAt = &now
	}
	requestID := e.req.RequestID
	e.mu.Unlock()

	m.publishTransition(requestID, from, to)
	m.logger.Debug("request %s transitioned %s -> %s", requestID, from, to)
	return true
}

// fail moves the request to failed with the given reason. A request that is
// already terminal is left alone, so fail is idempotent against races between
// the worker goroutine and lazy timeout checks.
func (m *Manager) fail(e *entry, reason error) {
	e.mu.Lock()
	from := e.req.Status
	if from.Terminal() {
		e.mu.Unlock()
		return
	}
	e.req.Status = core.StatusFailed
	e.req.ErrorText = reason.Error()
	now := time.Now().UTC()
	e.req.CompletedAt = &now
	requestID := e.req.RequestID
	e.mu.Unlock()

	m.publishTransition(requestID, from, core.StatusFailed)
	m.logger.Warn("request %s failed: %v", requestID, reason)
	m.finalize(e)
}

// expired fails the request when its deadline has passed. Returns true when
// the request is (now) terminal.
func (m *Manager) expired(e *entry) bool {
	e.mu.Lock()
	terminal := e.req.Status.Terminal()
	past := time.Now().After(e.req.TimeoutAt)
	requestID := e.req.RequestID
	timeoutAt := e.req.TimeoutAt
	e.mu.Unlock()

	if terminal {
		return true
	}
	if !past {
		return false
	}

	m.mu.RLock()
	cancel := m.cancels[requestID]
	m.mu.RUnlock()
	if cancel != nil {
		cancel()
	}
	m.fail(e, &core.RequestTimeoutError{RequestID: requestID, TimeoutAt: timeoutAt})
	return true
}

// finalize archives a terminal request and releases its dedup slot.
func (m *Manager) finalize(e *entry) {
	e.mu.Lock()
	req := e.req
	gapID := ""
	if e.gap != nil {
		gapID = e.gap.GapID
	}
	e.mu.Unlock()

	if err := m.archive.ArchiveRequest(req); err != nil {
		m.logger.Error("archive request %s: %v", req.RequestID, err)
	}

	if gapID != "" {
		m.mu.Lock()
		key := dedupKey(req.RequestingAgent, req.WorkflowID, gapID)
		if m.activeGaps[key] == req.RequestID {
			delete(m.activeGaps, key)
		}
		m.mu.Unlock()
	}
}

// selectionGap returns the gap driving helper selection, synthesizing one
// from the request type for explicit requests.
func (m *Manager) selectionGap(e *entry) core.InformationGap {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gap != nil {
		return *e.gap
	}
	expertise := e.expertise
	if len(expertise) == 0 && e.req.RequestType != "" {
		expertise = []string{e.req.RequestType}
	}
	return core.InformationGap{
		GapID:              e.req.RequestID,
		GapType:            core.GapTypeInsufficientExpertise,
		Description:        e.req.Description,
		Severity:           core.SeverityMedium,
		DetectedBy:         e.req.RequestingAgent,
		SuggestedExpertise: expertise,
	}
}

// buildPackage assembles the bounded context package for the helper.
func (m *Manager) buildPackage(e *entry) core.ContextPackage {
	e.mu.Lock()
	content := util.CloneMap(e.originalContext)
	content["request_description"] = e.req.Description
	if e.gap != nil {
		content["gap_type"] = string(e.gap.GapType)
		content["gap_severity"] = string(e.gap.Severity)
	}
	requestID := e.req.RequestID
	e.mu.Unlock()

	pkg := core.ContextPackage{
		PackageID:           core.NewID(),
		Content:             util.TruncateToBudget(content, m.cfg.MaxTokensPerPackage),
		TokenBudget:         m.cfg.MaxTokensPerPackage,
		CreatedForRequestID: requestID,
	}

	e.mu.Lock()
	e.req.ContextPackageID = pkg.PackageID
	e.mu.Unlock()
	return pkg
}

// deadlineError maps a context deadline hit to the typed timeout error,
// passing every other cause through.
func (m *Manager) deadlineError(ctx context.Context, requestID string, deadline time.Time, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &core.RequestTimeoutError{RequestID: requestID, TimeoutAt: deadline}
	}
	return err
}

func (m *Manager) publishTransition(requestID string, from, to core.RequestStatus) {
	if err := m.bus.Publish(core.TopicRequestTransitions, core.NewTransitionEvent(requestID, from, to)); err != nil {
		m.logger.Error("publish transition for %s: %v", requestID, err)
	}
}

func (m *Manager) publishResult(res core.IntegrationResult) {
	if err := m.bus.Publish(core.TopicIntegrationResults, core.NewResultEvent(res)); err != nil {
		m.logger.Error("publish result %s: %v", res.IntegrationID, err)
	}
}

// findingsMap flattens helper response data into the findings shape the
// integrator consumes.
func findingsMap(data *core.ResponseData) map[string]any {
	out := map[string]any{}
	if data.Analysis != "" {
		out["analysis"] = data.Analysis
	}
	if len(data.Findings) > 0 {
		out["findings"] = append([]string(nil), data.Findings...)
	}
	if len(data.Recommendations) > 0 {
		out["recommendations"] = append([]string(nil), data.Recommendations...)
	}
	return out
}

func statusInfo(req core.AgentRequest) StatusInfo {
	return StatusInfo{
		RequestID:     req.RequestID,
		Status:        req.Status,
		Progress:      req.Status.Progress(),
		AssignedAgent: req.AssignedAgent,
		CreatedAt:     req.CreatedAt,
		TimeoutAt:     req.TimeoutAt,
		ErrorText:     req.ErrorText,
	}
}

func urgencyFor(s core.Severity) core.Urgency {
	if s.Rank() >= core.SeverityHigh.Rank() {
		return core.UrgencyHigh
	}
	return core.UrgencyNormal
}

func dedupKey(agent, workflow, gapID string) string {
	return agent + "|" + workflow + "|" + gapID
}
