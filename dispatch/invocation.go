package dispatch

import (
	"github.com/InsightCenterNoodles/noodles-core/anyvar"
	"github.com/InsightCenterNoodles/noodles-core/id"
)

// Invocation is the decoded form of a client MethodInvoke message
// (spec.md §4.7).
type Invocation struct {
	MethodID id.Id[id.MethodTag]
	Context  id.AnyID // KindNone means document scope
	InvokeID string
	Args     []anyvar.AnyVar
	Client   string // ClientID of the inviting connection, for deferred replies
}

// Reply is the decoded form of MethodReply: exactly one of Result or
// Exception is set, unless Deferred is set, in which case neither is
// ready yet and the caller must not write a MethodReply frame for this
// invocation until Dispatcher.Resolve produces one.
type Reply struct {
	InvokeID  string
	Result    anyvar.AnyVar
	Exception *MethodException
	HasResult bool
	Deferred  bool
}

// Handler implements one method's behavior. callCtx is the resolved
// invocation context (None/Entity/Table/Plot); a handler returning a
// non-nil *MethodException reports it verbatim, any other error becomes
// InternalError.
type Handler func(callCtx id.AnyID, args []anyvar.AnyVar) (anyvar.AnyVar, error)
