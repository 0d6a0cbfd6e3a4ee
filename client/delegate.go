package client

import "github.com/InsightCenterNoodles/noodles-core/id"

// Delegate is application-supplied behavior attached to one mirrored
// component. PrepareDelete runs just before the mirror drops the
// component, mirroring clientstate.h's pattern of running delegate logic
// around creation/update/deletion rather than leaving components inert.
type Delegate interface {
	PrepareDelete()
}

// DelegateFactory builds a Delegate for a newly created component. payload
// is the decoded create-message struct for that kind (registry.Entity,
// registry.Table, ...); factories type-assert it back since one mirror
// serves every kind through a single registration point
// (Mirror.RegisterFactory), rather than the codebase carrying fourteen
// near-identical generic factory types.
type DelegateFactory func(id.AnyID, any) Delegate
