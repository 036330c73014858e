package bus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Envelope is a single delivered message: the topic it arrived on plus the
// JSON-encoded payload.
type Envelope struct {
	Topic   string
	Payload []byte
}

// Decode unmarshals the envelope payload into v.
func (e Envelope) Decode(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// Bus is the generic asynchronous message fabric. Publish must never block
// the caller's critical path beyond payload serialization; slow subscribers
// lose no ordering guarantees but may buffer.
type Bus interface {
	// Publish serializes payload as JSON and emits it on topic.
	Publish(topic string, payload any) error

	// Subscribe returns a stream of envelopes for topic. The stream is closed
	// when ctx is cancelled or the bus shuts down.
	Subscribe(ctx context.Context, topic string) (<-chan Envelope, error)

	// Close shuts the bus down, closing all subscriber streams.
	Close() error
}

// Options tune the gochannel-backed bus.
type Options struct {
	// BufferSize sets per-subscriber channel buffering. Larger buffers reduce
	// the chance a slow observer delays publishing.
	BufferSize int64
}

// GoChannelBus is an in-process Bus built on Watermill's gochannel Pub/Sub.
// Suitable for single-process deployments and tests; swap the Bus interface
// for a broker-backed implementation when the engine is distributed.
type GoChannelBus struct {
	ps *gochannel.GoChannel
}

var _ Bus = (*GoChannelBus)(nil)

// NewGoChannelBus constructs an in-process bus with optional overrides.
func NewGoChannelBus(optFns ...func(o *Options)) *GoChannelBus {
	opts := Options{BufferSize: 64}
	for _, fn := range optFns {
		fn(&opts)
	}

	ps := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: opts.BufferSize,
	}, watermill.NopLogger{})

	return &GoChannelBus{ps: ps}
}

// Publish implements Bus.
func (b *GoChannelBus) Publish(topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload for topic %s: %w", topic, err)
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	if err := b.ps.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish to topic %s: %w", topic, err)
	}
	return nil
}

// Subscribe implements Bus. Messages are acked on delivery; the engine treats
// the bus as fire-and-forget observation, not as a work queue.
func (b *GoChannelBus) Subscribe(ctx context.Context, topic string) (<-chan Envelope, error) {
	msgs, err := b.ps.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("subscribe to topic %s: %w", topic, err)
	}

	out := make(chan Envelope)
	go func() {
		defer close(out)
		for msg := range msgs {
			env := Envelope{Topic: topic, Payload: msg.Payload}
			msg.Ack()
			select {
			case <-ctx.Done():
				return
			case out <- env:
			}
		}
	}()
	return out, nil
}

// Close implements Bus.
func (b *GoChannelBus) Close() error {
	return b.ps.Close()
}
