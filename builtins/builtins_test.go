package builtins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/InsightCenterNoodles/noodles-core/anyvar"
	"github.com/InsightCenterNoodles/noodles-core/broadcast"
	"github.com/InsightCenterNoodles/noodles-core/dispatch"
	"github.com/InsightCenterNoodles/noodles-core/id"
	"github.com/InsightCenterNoodles/noodles-core/registry"
)

func TestTableSubscribeInsertUpdateFireSignals(t *testing.T) {
	reg := registry.New()
	hub := broadcast.NewHub()
	q := hub.Register("client-a", 32)
	d := dispatch.NewDispatcher(reg, nil)
	sigBus := dispatch.NewSignalBroadcaster(hub)

	src := registry.NewMemoryTableSource([]registry.ColSpec{{Name: "x", Type: "f64"}})
	var tableID id.Id[id.TableTag]

	binding := AttachTableMethods(reg, hub, d, sigBus,
		func(ctx id.AnyID) (id.Id[id.TableTag], registry.Table, bool) {
			tid, ok := id.ToTable(ctx)
			if !ok {
				return id.Id[id.TableTag]{}, registry.Table{}, false
			}
			tbl, ok := reg.Tables.Get(tid)
			return tid, tbl, ok
		},
		func(id.AnyID) broadcast.ClientID { return "client-a" },
		func(id.Id[id.TableTag]) registry.TableSource { return src },
	)

	tableID, err := reg.CreateTable(hub, registry.Table{
		Name:    "t",
		Methods: binding.Methods(),
		Signals: binding.Signals(),
	})
	require.NoError(t, err)
	scope := id.FromTable(tableID)

	reply := d.Invoke(dispatch.Invocation{MethodID: binding.Subscribe, Context: scope, InvokeID: "1"})
	require.Nil(t, reply.Exception)
	drain(q)

	rows := anyvar.List([]anyvar.AnyVar{anyvar.List([]anyvar.AnyVar{anyvar.Float64(1.5)})})
	reply = d.Invoke(dispatch.Invocation{MethodID: binding.Insert, Context: scope, InvokeID: "2", Args: []anyvar.AnyVar{rows}})
	require.Nil(t, reply.Exception)
	assert.Equal(t, 1, src.NumRows())

	tag, ok := tryRecv(q)
	require.True(t, ok)
	assert.Equal(t, "SignalInvoke", tag.String())
}

func TestTableMethodNotAttachedToWrongContext(t *testing.T) {
	reg := registry.New()
	hub := broadcast.NewHub()
	d := dispatch.NewDispatcher(reg, nil)
	sigBus := dispatch.NewSignalBroadcaster(hub)

	src := registry.NewMemoryTableSource(nil)
	binding := AttachTableMethods(reg, hub, d, sigBus,
		func(ctx id.AnyID) (id.Id[id.TableTag], registry.Table, bool) { return id.Id[id.TableTag]{}, registry.Table{}, false },
		func(id.AnyID) broadcast.ClientID { return "c" },
		func(id.Id[id.TableTag]) registry.TableSource { return src },
	)

	reply := d.Invoke(dispatch.Invocation{MethodID: binding.Subscribe, InvokeID: "1"}) // document scope
	require.NotNil(t, reply.Exception)
	assert.Equal(t, int64(dispatch.CodeInvalidRequest), reply.Exception.Code)
}

type fakeEntityCallbacks struct {
	position [3]float64
}

func (f *fakeEntityCallbacks) Activate(anyvar.AnyVar) error               { return nil }
func (f *fakeEntityCallbacks) GetActivationChoices() []string            { return nil }
func (f *fakeEntityCallbacks) GetVarKeys() []string                      { return nil }
func (f *fakeEntityCallbacks) GetVarOptions(string) []anyvar.AnyVar      { return nil }
func (f *fakeEntityCallbacks) GetVarValue(string) anyvar.AnyVar          { return anyvar.Null }
func (f *fakeEntityCallbacks) SetVarValue(string, anyvar.AnyVar) error   { return nil }
func (f *fakeEntityCallbacks) SetPosition(x, y, z float64) error {
	f.position = [3]float64{x, y, z}
	return nil
}
func (f *fakeEntityCallbacks) SetRotation(x, y, z, w float64) error { return nil }
func (f *fakeEntityCallbacks) SetScale(x, y, z float64) error      { return nil }
func (f *fakeEntityCallbacks) SelectRegion([3]float64, [3]float64, SelectAction) error      { return nil }
func (f *fakeEntityCallbacks) SelectSphere([3]float64, float64, SelectAction) error          { return nil }
func (f *fakeEntityCallbacks) SelectHalfPlane([3]float64, [3]float64, SelectAction) error    { return nil }
func (f *fakeEntityCallbacks) SelectHull([][3]float64, []int64, SelectAction) error          { return nil }
func (f *fakeEntityCallbacks) ProbeAt([3]float64) (string, [3]float64, bool)                 { return "", [3]float64{}, false }

func TestEntitySetPositionDelegatesToCallbacks(t *testing.T) {
	reg := registry.New()
	w := broadcast.NopWriter{}
	d := dispatch.NewDispatcher(reg, nil)
	cb := &fakeEntityCallbacks{}

	entityID, err := reg.CreateEntity(w, registry.Entity{Name: "e", Parent: id.Invalid[id.EntityTag]()})
	require.NoError(t, err)

	binding := AttachEntityMethods(reg, w, d, func(ctx id.AnyID) (EntityCallbacks, bool) {
		return cb, true
	})
	require.NoError(t, reg.UpdateEntity(w, entityID, registry.Entity{
		Name: "e", Parent: id.Invalid[id.EntityTag](), Methods: binding.Methods(),
	}))

	reply := d.Invoke(dispatch.Invocation{
		MethodID: binding.SetPosition,
		Context:  id.FromEntity(entityID),
		InvokeID: "1",
		Args:     []anyvar.AnyVar{anyvar.Vec3(1, 2, 3)},
	})
	require.Nil(t, reply.Exception)
	assert.Equal(t, [3]float64{1, 2, 3}, cb.position)
}

func TestEntityMethodWithoutCallbacksIsInternalError(t *testing.T) {
	reg := registry.New()
	w := broadcast.NopWriter{}
	d := dispatch.NewDispatcher(reg, nil)

	entityID, err := reg.CreateEntity(w, registry.Entity{Name: "e", Parent: id.Invalid[id.EntityTag]()})
	require.NoError(t, err)

	binding := AttachEntityMethods(reg, w, d, func(id.AnyID) (EntityCallbacks, bool) { return nil, false })
	require.NoError(t, reg.UpdateEntity(w, entityID, registry.Entity{
		Name: "e", Parent: id.Invalid[id.EntityTag](), Methods: binding.Methods(),
	}))

	reply := d.Invoke(dispatch.Invocation{
		MethodID: binding.GetVarKeys, Context: id.FromEntity(entityID), InvokeID: "1",
	})
	require.NotNil(t, reply.Exception)
	assert.Equal(t, int64(dispatch.CodeInternalError), reply.Exception.Code)
}

func drain(q *broadcast.Queue) {
	for {
		select {
		case <-q.Messages():
		default:
			return
		}
	}
}

func tryRecv(q *broadcast.Queue) (msg interface{ String() string }, ok bool) {
	select {
	case m := <-q.Messages():
		return m.Tag, true
	default:
		return nil, false
	}
}
