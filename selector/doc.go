// Package selector picks the best-fit helper for an information gap from a
// capability registry snapshot. Candidates missing any required expertise are
// excluded up front; the rest are ranked by a weighted blend of capability
// match, availability and historical success, with deterministic tie-breaks.
package selector
