// Package integration reconciles a helper's findings with the requester's
// prior context. Every call first partitions the findings keys into
// conflicts, supplements and overlaps relative to the original context, then
// applies one of the closed set of strategies (merge, append, selective,
// prioritize_new, prioritize_original). A misconfigured strategy never drops
// data silently: the partial result is returned with its conflicts flagged
// alongside an IntegrationConflictError.
package integration
