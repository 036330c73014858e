// Package registry maintains the helper capability profiles consulted during
// agent selection. Reads are served from an immutable snapshot so the hot
// selection path never blocks on writers.
package registry
