package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/agentrelay/bus"
	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/logging"
)

// Snapshot is a point-in-time view of engine health.
type Snapshot struct {
	TotalRequests            int           `json:"total_requests"`
	ActiveRequests           int           `json:"active_requests"`
	CompletedRequests        int           `json:"completed_requests"`
	FailedRequests           int           `json:"failed_requests"`
	SuccessRate              float64       `json:"success_rate"`
	AvgResponseTime          time.Duration `json:"avg_response_time"`
	AvgConfidenceImprovement float64       `json:"avg_confidence_improvement"`
}

// Options configures a Collector.
type Options struct {
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// Collector consumes engine events and maintains aggregate counters. It is
// eventually consistent: a snapshot taken immediately after an event was
// published may not yet reflect it.
type Collector struct {
	logger logging.Logger
	cancel context.CancelFunc
	done   sync.WaitGroup

	mu        sync.Mutex
	started   map[string]time.Time
	completed int
	failed    int
	active    int
	total     int

	totalDuration    time.Duration
	terminalCount    int
	improvementSum   float64
	improvementCount int
}

// NewCollector subscribes to the bus topics and starts consuming. Call Close
// to stop; the bus itself is left to its owner.
func NewCollector(b bus.Bus, optFns ...func(o *Options)) (*Collector, error) {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	ctx, cancel := context.WithCancel(context.Background())

	transitions, err := b.Subscribe(ctx, core.TopicRequestTransitions)
	if err != nil {
		cancel()
		return nil, err
	}
	results, err := b.Subscribe(ctx, core.TopicIntegrationResults)
	if err != nil {
		cancel()
		return nil, err
	}

	c := &Collector{
		logger:  opts.Logger,
		cancel:  cancel,
		started: make(map[string]time.Time),
	}

	c.done.Add(2)
	go c.consumeTransitions(transitions)
	go c.consumeResults(results)
	return c, nil
}

// Snapshot returns the current aggregate view.
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		TotalRequests:     c.total,
		ActiveRequests:    c.active,
		CompletedRequests: c.completed,
		FailedRequests:    c.failed,
	}
	if terminal := c.completed + c.failed; terminal > 0 {
		s.SuccessRate = float64(c.completed) / float64(terminal)
	}
	if c.terminalCount > 0 {
		s.AvgResponseTime = c.totalDuration / time.Duration(c.terminalCount)
	}
	if c.improvementCount > 0 {
		s.AvgConfidenceImprovement = c.improvementSum / float64(c.improvementCount)
	}
	return s
}

// Close stops consumption and waits for the consumer goroutines to exit.
func (c *Collector) Close() error {
	c.cancel()
	c.done.Wait()
	return nil
}

func (c *Collector) consumeTransitions(envs <-chan bus.Envelope) {
	defer c.done.Done()
	for env := range envs {
		var ev core.TransitionEvent
		if err := env.Decode(&ev); err != nil {
			c.logger.Warn("metrics: bad transition event: %v", err)
			continue
		}
		c.applyTransition(ev)
	}
}

func (c *Collector) consumeResults(envs <-chan bus.Envelope) {
	defer c.done.Done()
	for env := range envs {
		var ev core.ResultEvent
		if err := env.Decode(&ev); err != nil {
			c.logger.Warn("metrics: bad result event: %v", err)
			continue
		}
		c.mu.Lock()
		c.improvementSum += ev.ConfidenceImprovement
		c.improvementCount++
		c.mu.Unlock()
	}
}

func (c *Collector) applyTransition(ev core.TransitionEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ev.From == "" {
		c.total++
		c.active++
		c.started[ev.RequestID] = ev.Timestamp
		return
	}

	switch ev.To {
	case core.StatusCompleted, core.StatusFailed:
		if ev.To == core.StatusCompleted {
			c.completed++
		} else {
			c.failed++
		}
		if c.active > 0 {
			c.active--
		}
		if start, ok := c.started[ev.RequestID]; ok {
			c.totalDuration += ev.Timestamp.Sub(start)
			c.terminalCount++
			delete(c.started, ev.RequestID)
		}
	}
}
