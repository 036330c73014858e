// Package testutil provides fluent builders for constructing engine entities
// in tests. Chain only the parts you need; sensible defaults are applied.
package testutil
