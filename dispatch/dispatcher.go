package dispatch

import (
	"runtime/debug"

	"github.com/InsightCenterNoodles/noodles-core/anyvar"
	"github.com/InsightCenterNoodles/noodles-core/id"
	"github.com/InsightCenterNoodles/noodles-core/nlog"
	"github.com/InsightCenterNoodles/noodles-core/registry"
)

// Dispatcher resolves and invokes MethodInvoke messages per the 5-step
// process in spec.md §4.7, recovering from any handler panic the way
// coreengine/kernel/recovery.go's SafeExecute recovers kernel operations.
type Dispatcher struct {
	reg        *registry.Registry
	handlers   map[id.Id[id.MethodTag]]Handler
	middleware []Middleware
	logger     nlog.Logger

	pending *pendingInvokes

	// currentInvocation is the invocation presently executing on this
	// Dispatcher's call path, read by CurrentInvocation. Safe unguarded
	// for the same reason Server.currentClient is: the caller serializes
	// every Invoke behind its own single-flight lock.
	currentInvocation Invocation
}

// NewDispatcher builds a dispatcher bound to reg. logger may be nil.
func NewDispatcher(reg *registry.Registry, logger nlog.Logger) *Dispatcher {
	return &Dispatcher{
		reg:      reg,
		handlers: map[id.Id[id.MethodTag]]Handler{},
		logger:   nlog.OrStd(logger),
		pending:  newPendingInvokes(),
	}
}

// Register installs the handler backing methodID. Built-in table/entity
// methods and application methods both register through this same call.
func (d *Dispatcher) Register(methodID id.Id[id.MethodTag], h Handler) {
	d.handlers[methodID] = h
}

// Use appends a middleware to the chain, run in registration order on
// Before and reverse order on After (matching commbus's chain semantics).
func (d *Dispatcher) Use(mw Middleware) {
	d.middleware = append(d.middleware, mw)
}

// Invoke resolves and runs inv, returning the reply to send back to the
// inviting client. It never panics: any handler panic is translated to
// an InternalError reply (spec.md §4.10).
func (d *Dispatcher) Invoke(inv Invocation) Reply {
	for _, mw := range d.middleware {
		var err error
		inv, err = mw.Before(inv)
		if err != nil {
			return exceptionReply(inv.InvokeID, Internal(err))
		}
	}

	reply := d.resolveAndCall(inv)
	if reply.Deferred {
		return reply
	}

	for i := len(d.middleware) - 1; i >= 0; i-- {
		reply = d.middleware[i].After(inv, reply)
	}
	return reply
}

// Resolve completes an invocation a handler previously deferred by
// returning ErrDeferred, running the After middleware chain Invoke
// skipped at defer time. ok is false if no such (client, invokeID)
// invocation is outstanding — already resolved, or dropped by DropClient.
func (d *Dispatcher) Resolve(client, invokeID string, result anyvar.AnyVar, mex *MethodException) (reply Reply, ok bool) {
	inv, found := d.pending.take(client, invokeID)
	if !found {
		return Reply{}, false
	}
	if mex != nil {
		reply = exceptionReply(invokeID, mex)
	} else {
		reply = Reply{InvokeID: invokeID, Result: result, HasResult: true}
	}
	for i := len(d.middleware) - 1; i >= 0; i-- {
		reply = d.middleware[i].After(inv, reply)
	}
	return reply, true
}

// DropClient discards every invocation left pending for client, returning
// how many were dropped. Called on disconnect so a handler's eventual
// Resolve call has nothing stale to complete (spec.md §5 cancellation).
func (d *Dispatcher) DropClient(client string) int {
	return d.pending.dropClient(client)
}

// PendingCount reports how many invocations are presently deferred,
// mainly useful for tests and diagnostics.
func (d *Dispatcher) PendingCount() int {
	return d.pending.count()
}

// CurrentInvocation returns the invocation presently executing on this
// Dispatcher's single-flight call path, mirroring how Server.CurrentClient
// exposes the calling client to a built-in method. A handler that means
// to defer its reply reads Client/InvokeID/Context from here before
// returning ErrDeferred, since Handler's fixed signature carries none of
// them.
func (d *Dispatcher) CurrentInvocation() Invocation {
	return d.currentInvocation
}

func (d *Dispatcher) resolveAndCall(inv Invocation) (reply Reply) {
	method, ok := d.reg.Methods.Get(inv.MethodID)
	if !ok {
		return exceptionReply(inv.InvokeID, NotFound(inv.MethodID.String()))
	}

	if !d.attached(inv.Context, inv.MethodID) {
		return exceptionReply(inv.InvokeID, NotAttached(method.Name))
	}

	handler, ok := d.handlers[inv.MethodID]
	if !ok {
		return exceptionReply(inv.InvokeID, Internal(nil))
	}

	d.currentInvocation = inv

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("panic recovered in method handler",
				"method", method.Name, "panic", r, "stack", string(debug.Stack()))
			reply = exceptionReply(inv.InvokeID, Internal(nil))
		}
	}()

	result, err := handler(inv.Context, inv.Args)
	if err != nil {
		if err == ErrDeferred {
			d.pending.add(inv)
			return Reply{InvokeID: inv.InvokeID, Deferred: true}
		}
		if mex, ok := err.(*MethodException); ok {
			return exceptionReply(inv.InvokeID, mex)
		}
		return exceptionReply(inv.InvokeID, Internal(err))
	}
	return Reply{InvokeID: inv.InvokeID, Result: result, HasResult: true}
}

// attached implements spec.md §4.7 step 2: null context means document
// scope, otherwise the method must be in the resolved context's
// attached-methods set.
func (d *Dispatcher) attached(ctx id.AnyID, methodID id.Id[id.MethodTag]) bool {
	switch ctx.Kind {
	case id.KindNone:
		return registry.DocumentMethodSet(d.reg.Document).Has(methodID)
	case id.KindEntity:
		eid, _ := id.ToEntity(ctx)
		e, ok := d.reg.Entities.Get(eid)
		if !ok {
			return false
		}
		return registry.EntityMethodSet(e).Has(methodID)
	case id.KindTable:
		tid, _ := id.ToTable(ctx)
		t, ok := d.reg.Tables.Get(tid)
		if !ok {
			return false
		}
		return registry.TableMethodSet(t).Has(methodID)
	case id.KindPlot:
		pid, _ := id.ToPlot(ctx)
		p, ok := d.reg.Plots.Get(pid)
		if !ok {
			return false
		}
		return registry.PlotMethodSet(p).Has(methodID)
	default:
		return false
	}
}

func exceptionReply(invokeID string, mex *MethodException) Reply {
	return Reply{InvokeID: invokeID, Exception: mex}
}
