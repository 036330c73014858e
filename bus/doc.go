// Package bus abstracts the asynchronous message fabric the engine publishes
// lifecycle events on. The contract is deliberately generic — publish to a
// topic, subscribe to a stream — so any broker (channels, queues, actor
// mailboxes) can satisfy it. The default implementation rides Watermill's
// in-process gochannel Pub/Sub.
package bus
