package dispatch

import (
	"github.com/InsightCenterNoodles/noodles-core/anyvar"
	"github.com/InsightCenterNoodles/noodles-core/broadcast"
	"github.com/InsightCenterNoodles/noodles-core/id"
	"github.com/InsightCenterNoodles/noodles-core/wire"
)

// SignalBroadcaster delivers SignalInvoke messages to the clients
// subscribed to a scope (spec.md §4.8). Document and entity scopes are
// implicit — every Active client sees them, so Fire broadcasts through
// hub. Table scopes are explicit: only clients recorded in subscribers
// receive the signal.
type SignalBroadcaster struct {
	hub         *broadcast.Hub
	subscribers map[id.AnyID]map[broadcast.ClientID]struct{}
}

// NewSignalBroadcaster binds a broadcaster to hub.
func NewSignalBroadcaster(hub *broadcast.Hub) *SignalBroadcaster {
	return &SignalBroadcaster{hub: hub, subscribers: map[id.AnyID]map[broadcast.ClientID]struct{}{}}
}

// Subscribe records client as explicitly subscribed to scope (used by
// noo::tbl_subscribe — spec.md §4.9).
func (b *SignalBroadcaster) Subscribe(scope id.AnyID, client broadcast.ClientID) {
	set, ok := b.subscribers[scope]
	if !ok {
		set = map[broadcast.ClientID]struct{}{}
		b.subscribers[scope] = set
	}
	set[client] = struct{}{}
}

// Unsubscribe drops client's explicit subscription, called on disconnect.
func (b *SignalBroadcaster) Unsubscribe(scope id.AnyID, client broadcast.ClientID) {
	if set, ok := b.subscribers[scope]; ok {
		delete(set, client)
	}
}

// UnsubscribeAll drops every explicit subscription client held, used on
// disconnect cleanup (spec.md §5 cancellation).
func (b *SignalBroadcaster) UnsubscribeAll(client broadcast.ClientID) {
	for _, set := range b.subscribers {
		delete(set, client)
	}
}

// Fire delivers a SignalInvoke for signalID scoped to scope. scope of
// KindNone or KindEntity is implicit (every Active client, via hub);
// any other kind (Table, Plot) is explicit and only reaches recorded
// subscribers.
func (b *SignalBroadcaster) Fire(signalID id.Id[id.SignalTag], scope id.AnyID, args []anyvar.AnyVar) {
	msg := wire.NewMessage(wire.TagSignalInvoke, map[string]anyvar.AnyVar{
		"id":    anyvar.ID(id.FromSignal(signalID)),
		"scope": anyvar.ID(scope),
		"args":  anyvar.List(args),
	})

	switch scope.Kind {
	case id.KindNone, id.KindEntity:
		b.hub.Emit(msg)
	default:
		for client := range b.subscribers[scope] {
			b.hub.EmitTo(client, msg)
		}
	}
}
