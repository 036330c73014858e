// Package archive retains terminal requests and integration results for
// audit. Records are immutable once archived; failed requests stay queryable
// exactly like completed ones.
package archive
