package client

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/InsightCenterNoodles/noodles-core/anyvar"
	"github.com/InsightCenterNoodles/noodles-core/id"
	"github.com/InsightCenterNoodles/noodles-core/nlog"
	"github.com/InsightCenterNoodles/noodles-core/wire"
)

// loopConn is an in-memory transport.Conn whose writes can be inspected
// and whose reads are fed by pushFrame, enough to drive Mirror.Run
// without a real socket.
type loopConn struct {
	in chan []byte

	mu  sync.Mutex
	out [][]byte
}

func newLoopConn() *loopConn { return &loopConn{in: make(chan []byte, 8)} }

func (c *loopConn) pushFrame(msgs []wire.Message) { c.in <- wire.EncodeBatch(msgs) }

func (c *loopConn) ReadMessage() ([]byte, error) {
	return <-c.in, nil
}

func (c *loopConn) WriteMessage(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.out = append(c.out, b)
	return nil
}

func (c *loopConn) Close() error { return nil }

func (c *loopConn) writeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.out)
}

func TestRunSendsIntroductionBeforeReading(t *testing.T) {
	mirror := NewMirror(nlog.Noop())
	conn := newLoopConn()
	conn.pushFrame([]wire.Message{wire.NewMessage(wire.TagDocumentUpdate, nil)})

	go mirror.Run(conn, "test-client") // blocks reading conn.in forever once drained; exits with the test process

	require.Eventually(t, func() bool { return conn.writeCount() >= 1 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return mirror.State() == StateLive }, time.Second, 5*time.Millisecond)
}

func TestApplyEntityCreateThenUpdateThenDelete(t *testing.T) {
	mirror := NewMirror(nlog.Noop())
	entID := id.AnyID{Kind: id.KindEntity, Slot: 0, Gen: 0}

	mirror.apply(wire.NewMessage(wire.TagEntityCreate, map[string]anyvar.AnyVar{
		"id":     anyvar.ID(entID),
		"name":   anyvar.String("root"),
		"parent": anyvar.ID(id.NoneID),
	}))

	eid, ok := id.ToEntity(entID)
	require.True(t, ok)
	ent, found := mirror.Entities.Get(eid)
	require.True(t, found)
	assert.Equal(t, "root", ent.Name)
	assert.False(t, ent.Parent.Valid())

	mirror.apply(wire.NewMessage(wire.TagEntityUpdate, map[string]anyvar.AnyVar{
		"id":     anyvar.ID(entID),
		"name":   anyvar.String("renamed"),
		"parent": anyvar.ID(id.NoneID),
	}))
	ent, found = mirror.Entities.Get(eid)
	require.True(t, found)
	assert.Equal(t, "renamed", ent.Name)

	mirror.apply(wire.NewMessage(wire.TagEntityDelete, map[string]anyvar.AnyVar{
		"id": anyvar.ID(entID),
	}))
	_, found = mirror.Entities.Get(eid)
	assert.False(t, found)
}

func TestApplyDocumentUpdateMarksMirrorLive(t *testing.T) {
	mirror := NewMirror(nlog.Noop())
	assert.Equal(t, StateConnecting, mirror.State())

	mirror.mu.Lock()
	mirror.state = StateIntroduced
	mirror.mu.Unlock()

	mirror.apply(wire.NewMessage(wire.TagDocumentUpdate, nil))
	assert.Equal(t, StateLive, mirror.State())
}

func TestApplyDocumentResetClearsEverything(t *testing.T) {
	mirror := NewMirror(nlog.Noop())
	bufID := id.AnyID{Kind: id.KindBuffer, Slot: 0, Gen: 0}
	mirror.apply(wire.NewMessage(wire.TagBufferCreate, map[string]anyvar.AnyVar{
		"id":   anyvar.ID(bufID),
		"size": anyvar.Int64(128),
	}))

	bid, _ := id.ToBuffer(bufID)
	_, found := mirror.Buffers.Get(bid)
	require.True(t, found)

	mirror.apply(wire.NewMessage(wire.TagDocumentReset, nil))
	_, found = mirror.Buffers.Get(bid)
	assert.False(t, found)
}

type recordingDelegate struct{ deleted bool }

func (d *recordingDelegate) PrepareDelete() { d.deleted = true }

func TestDelegateFactoryRunsOnCreateAndPrepareDeleteOnDelete(t *testing.T) {
	mirror := NewMirror(nlog.Noop())
	var built *recordingDelegate
	mirror.RegisterFactory(id.KindTable, func(i id.AnyID, payload any) Delegate {
		built = &recordingDelegate{}
		return built
	})

	tblID := id.AnyID{Kind: id.KindTable, Slot: 0, Gen: 0}
	mirror.apply(wire.NewMessage(wire.TagTableCreate, map[string]anyvar.AnyVar{
		"id":   anyvar.ID(tblID),
		"name": anyvar.String("t"),
	}))
	require.NotNil(t, built)
	d, ok := mirror.Lookup(tblID)
	require.True(t, ok)
	assert.Same(t, built, d)

	mirror.apply(wire.NewMessage(wire.TagTableDelete, map[string]anyvar.AnyVar{
		"id": anyvar.ID(tblID),
	}))
	assert.True(t, built.deleted)
	_, ok = mirror.Lookup(tblID)
	assert.False(t, ok)
}

func TestSendInvokeResolvesOnMethodReply(t *testing.T) {
	mirror := NewMirror(nlog.Noop())
	conn := newLoopConn()

	ch, err := mirror.SendInvoke(conn, id.Invalid[id.MethodTag](), id.NoneID, "inv-1", nil)
	require.NoError(t, err)

	mirror.handleMethodReply(wire.NewMessage(wire.TagMethodReply, map[string]anyvar.AnyVar{
		"invoke_id": anyvar.String("inv-1"),
		"result":    anyvar.Int64(42),
	}))

	reply := <-ch
	assert.Equal(t, int64(42), reply.Get("result").ToInt())
}
