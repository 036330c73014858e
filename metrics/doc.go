// Package metrics aggregates engine health from the event bus. The collector
// is a passive observer: it subscribes to transition and integration topics
// and folds events into counters, never touching a request's critical path.
package metrics
