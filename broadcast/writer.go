// Package broadcast fans out wire messages to connected clients: a hub
// holds one bounded queue per client, and a Writer is the narrow
// interface the registry emits onto after each successful mutation.
package broadcast

import "github.com/InsightCenterNoodles/noodles-core/wire"

// Writer is held across a registry mutation call: spec.md §9 calls for
// emitting the create/update/delete message "before returning to the
// caller" so arena state and the wire event are never observably out of
// sync. Registry methods take a Writer rather than reaching for a
// package-level global so catch-up can redirect the same call path to a
// single client's queue instead of the hub.
type Writer interface {
	Emit(wire.Message)
}

// BatchWriter buffers messages instead of delivering them immediately,
// used to assemble the catch-up batch spec.md §4.5 requires be written
// "in one logical batch" before being handed to a client's queue.
type BatchWriter struct {
	messages []wire.Message
}

func (w *BatchWriter) Emit(m wire.Message) {
	w.messages = append(w.messages, m)
}

func (w *BatchWriter) Messages() []wire.Message {
	return w.messages
}

// NopWriter discards every message; useful for tests that only care
// about arena-side effects.
type NopWriter struct{}

func (NopWriter) Emit(wire.Message) {}
