// Package server exposes the engine over HTTP. Routing is chi based with
// structured request logging; handlers are thin adapters that translate JSON
// bodies into manager calls and typed engine errors into status codes.
package server
