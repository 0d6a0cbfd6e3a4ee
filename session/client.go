package session

import (
	"github.com/oklog/ulid/v2"

	"github.com/InsightCenterNoodles/noodles-core/broadcast"
)

// newClientID mints a time-sortable client handle the way
// rakunlabs-at's channel registry mints channel keys: ulid.Make().String().
func newClientID() broadcast.ClientID {
	return broadcast.ClientID(ulid.Make().String())
}

// clientState is the per-connection bookkeeping a Server drops entirely
// on disconnect without touching the document (spec.md §4.5/§5
// cancellation). Table/plot subscriptions live in dispatch.SignalBroadcaster
// keyed by this same ClientID, so disconnect cleanup only needs the id.
type clientState struct {
	id   broadcast.ClientID
	name string
}

func newClientState(clientID broadcast.ClientID, name string) *clientState {
	return &clientState{id: clientID, name: name}
}
