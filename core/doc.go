// Package core defines the shared domain model of the dynamic request
// engine: information gaps, agent requests and their status machine,
// capability profiles, context packages, integration results, the error
// taxonomy and the store interfaces implemented by sibling packages.
//
// Entities follow a strict ownership discipline:
//   - InformationGap and ContextPackage are immutable once created and are
//     referenced, never owned, by an AgentRequest.
//   - AgentRequest is owned exclusively by the lifecycle manager; its status
//     only ever moves forward along the edges in CanTransition.
//   - IntegrationResult is the immutable terminal artifact of a completed
//     request.
//
// Nothing in this package performs I/O; it is the vocabulary the rest of
// the engine speaks.
package core
