package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/InsightCenterNoodles/noodles-core/anyvar"
	"github.com/InsightCenterNoodles/noodles-core/broadcast"
	"github.com/InsightCenterNoodles/noodles-core/id"
	"github.com/InsightCenterNoodles/noodles-core/registry"
)

func TestInvokeUnknownMethodIsNotFound(t *testing.T) {
	reg := registry.New()
	d := NewDispatcher(reg, nil)

	reply := d.Invoke(Invocation{MethodID: id.Invalid[id.MethodTag](), InvokeID: "1"})
	require.NotNil(t, reply.Exception)
	assert.Equal(t, int64(CodeMethodNotFound), reply.Exception.Code)
}

func TestInvokeMethodNotAttachedToContext(t *testing.T) {
	reg := registry.New()
	w := broadcast.NopWriter{}
	mid := reg.CreateMethod(w, registry.Method{Name: "greet"})
	d := NewDispatcher(reg, nil)
	d.Register(mid, func(ctx id.AnyID, args []anyvar.AnyVar) (anyvar.AnyVar, error) {
		return anyvar.String("hi"), nil
	})

	reply := d.Invoke(Invocation{MethodID: mid, InvokeID: "1"}) // document scope, method not attached
	require.NotNil(t, reply.Exception)
	assert.Equal(t, int64(CodeInvalidRequest), reply.Exception.Code)
}

func TestInvokeSucceedsWhenAttachedToDocument(t *testing.T) {
	reg := registry.New()
	w := broadcast.NopWriter{}
	mid := reg.CreateMethod(w, registry.Method{Name: "greet"})
	require.NoError(t, reg.UpdateDocument(w, registry.Document{Methods: []id.Id[id.MethodTag]{mid}}))

	d := NewDispatcher(reg, nil)
	d.Register(mid, func(ctx id.AnyID, args []anyvar.AnyVar) (anyvar.AnyVar, error) {
		return anyvar.String("hi"), nil
	})

	reply := d.Invoke(Invocation{MethodID: mid, InvokeID: "1"})
	require.Nil(t, reply.Exception)
	assert.True(t, reply.HasResult)
	assert.Equal(t, "hi", reply.Result.ToString())
}

func TestInvokeRecoversFromHandlerPanic(t *testing.T) {
	reg := registry.New()
	w := broadcast.NopWriter{}
	mid := reg.CreateMethod(w, registry.Method{Name: "boom"})
	require.NoError(t, reg.UpdateDocument(w, registry.Document{Methods: []id.Id[id.MethodTag]{mid}}))

	d := NewDispatcher(reg, nil)
	d.Register(mid, func(ctx id.AnyID, args []anyvar.AnyVar) (anyvar.AnyVar, error) {
		panic("boom")
	})

	reply := d.Invoke(Invocation{MethodID: mid, InvokeID: "1"})
	require.NotNil(t, reply.Exception)
	assert.Equal(t, int64(CodeInternalError), reply.Exception.Code)
}

func TestHandlerExceptionPassesThroughVerbatim(t *testing.T) {
	reg := registry.New()
	w := broadcast.NopWriter{}
	mid := reg.CreateMethod(w, registry.Method{Name: "validated"})
	require.NoError(t, reg.UpdateDocument(w, registry.Document{Methods: []id.Id[id.MethodTag]{mid}}))

	d := NewDispatcher(reg, nil)
	d.Register(mid, func(ctx id.AnyID, args []anyvar.AnyVar) (anyvar.AnyVar, error) {
		return anyvar.Null, InvalidParams("bad arg")
	})

	reply := d.Invoke(Invocation{MethodID: mid, InvokeID: "1"})
	require.NotNil(t, reply.Exception)
	assert.Equal(t, int64(CodeInvalidParams), reply.Exception.Code)
	assert.Equal(t, "bad arg", reply.Exception.Message)
}

func TestMiddlewareRunsBeforeAndAfter(t *testing.T) {
	reg := registry.New()
	w := broadcast.NopWriter{}
	mid := reg.CreateMethod(w, registry.Method{Name: "m"})
	require.NoError(t, reg.UpdateDocument(w, registry.Document{Methods: []id.Id[id.MethodTag]{mid}}))

	d := NewDispatcher(reg, nil)
	d.Register(mid, func(ctx id.AnyID, args []anyvar.AnyVar) (anyvar.AnyVar, error) {
		return anyvar.Int64(1), nil
	})

	var beforeCalled, afterCalled bool
	d.Use(recordingMiddleware{before: &beforeCalled, after: &afterCalled})

	reply := d.Invoke(Invocation{MethodID: mid, InvokeID: "1"})
	assert.True(t, beforeCalled)
	assert.True(t, afterCalled)
	assert.True(t, reply.HasResult)
}

type recordingMiddleware struct {
	before, after *bool
}

func (m recordingMiddleware) Before(inv Invocation) (Invocation, error) {
	*m.before = true
	return inv, nil
}

func (m recordingMiddleware) After(inv Invocation, reply Reply) Reply {
	*m.after = true
	return reply
}

func TestDeferredInvokeResolvesLaterWithResult(t *testing.T) {
	reg := registry.New()
	w := broadcast.NopWriter{}
	mid := reg.CreateMethod(w, registry.Method{Name: "long_running"})
	require.NoError(t, reg.UpdateDocument(w, registry.Document{Methods: []id.Id[id.MethodTag]{mid}}))

	d := NewDispatcher(reg, nil)
	var deferredClient, deferredInvokeID string
	d.Register(mid, func(ctx id.AnyID, args []anyvar.AnyVar) (anyvar.AnyVar, error) {
		inv := d.CurrentInvocation()
		deferredClient, deferredInvokeID = inv.Client, inv.InvokeID
		return anyvar.Null, ErrDeferred
	})

	reply := d.Invoke(Invocation{MethodID: mid, InvokeID: "1", Client: "client-a"})
	assert.True(t, reply.Deferred)
	assert.Equal(t, 1, d.PendingCount())

	resolved, ok := d.Resolve(deferredClient, deferredInvokeID, anyvar.Int64(42), nil)
	require.True(t, ok)
	assert.False(t, resolved.Deferred)
	assert.True(t, resolved.HasResult)
	assert.Equal(t, int64(42), resolved.Result.ToInt())
	assert.Equal(t, 0, d.PendingCount())

	_, ok = d.Resolve(deferredClient, deferredInvokeID, anyvar.Null, nil)
	assert.False(t, ok, "resolving twice should find nothing outstanding")
}

func TestDropClientDiscardsItsPendingInvokes(t *testing.T) {
	reg := registry.New()
	w := broadcast.NopWriter{}
	mid := reg.CreateMethod(w, registry.Method{Name: "long_running"})
	require.NoError(t, reg.UpdateDocument(w, registry.Document{Methods: []id.Id[id.MethodTag]{mid}}))

	d := NewDispatcher(reg, nil)
	d.Register(mid, func(ctx id.AnyID, args []anyvar.AnyVar) (anyvar.AnyVar, error) {
		return anyvar.Null, ErrDeferred
	})

	d.Invoke(Invocation{MethodID: mid, InvokeID: "1", Client: "client-a"})
	require.Equal(t, 1, d.PendingCount())

	dropped := d.DropClient("client-a")
	assert.Equal(t, 1, dropped)
	assert.Equal(t, 0, d.PendingCount())

	_, ok := d.Resolve("client-a", "1", anyvar.Null, nil)
	assert.False(t, ok)
}

func TestSignalFireDeliversToDocumentScopeImplicitly(t *testing.T) {
	hub := broadcast.NewHub()
	q := hub.Register("client-a", 8)
	b := NewSignalBroadcaster(hub)

	sig := id.Id[id.SignalTag]{Slot: 1, Gen: 0}
	b.Fire(sig, id.NoneID, nil)

	select {
	case msg := <-q.Messages():
		assert.Equal(t, "SignalInvoke", msg.Tag.String())
	default:
		t.Fatal("expected a delivered signal message")
	}
}

func TestSignalFireTableScopeRequiresExplicitSubscription(t *testing.T) {
	hub := broadcast.NewHub()
	qa := hub.Register("client-a", 8)
	hub.Register("client-b", 8)
	b := NewSignalBroadcaster(hub)

	tableScope := id.FromTable(id.Id[id.TableTag]{Slot: 1, Gen: 0})
	b.Subscribe(tableScope, "client-a")

	sig := id.Id[id.SignalTag]{Slot: 2, Gen: 0}
	b.Fire(sig, tableScope, nil)

	select {
	case <-qa.Messages():
	default:
		t.Fatal("subscribed client should have received the signal")
	}
}
