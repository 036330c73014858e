// Package gap implements detection of information gaps in a worker's
// execution trace. The detector is a pure function of its inputs: it pattern
// matches log lines against an ordered signature table, diffs the task's
// declared required fields against current findings, and optionally consults
// a pluggable severity scorer. It never blocks or fails the caller — a
// malformed trace yields an empty gap list and a warning log.
package gap
