// Package logging provides a minimal logging interface and adapters for the
// request engine.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that the lifecycle manager and its collaborators use for
// observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//   - RelayLogger with contextual helpers for requests and components
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	mgr := lifecycle.New(func(o *lifecycle.Options) { o.Logger = logger })
//
// The design intentionally keeps the interface minimal to avoid vendor
// lock-in while supporting structured logging where available.
package logging
