package session

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/InsightCenterNoodles/noodles-core/anyvar"
	"github.com/InsightCenterNoodles/noodles-core/broadcast"
	"github.com/InsightCenterNoodles/noodles-core/dispatch"
	"github.com/InsightCenterNoodles/noodles-core/id"
	"github.com/InsightCenterNoodles/noodles-core/registry"
	"github.com/InsightCenterNoodles/noodles-core/wire"
)

// fakeConn is an in-memory transport.Conn: inbound frames are fed
// through in, outbound writes are recorded for inspection.
type fakeConn struct {
	in chan []byte

	mu     sync.Mutex
	out    [][]byte
	closed bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{in: make(chan []byte, 8)}
}

func (c *fakeConn) push(frame []byte) { c.in <- frame }

func (c *fakeConn) closeIn() {
	defer func() { recover() }() // tolerate double-close from a racing test cleanup
	close(c.in)
}

func (c *fakeConn) ReadMessage() ([]byte, error) {
	frame, ok := <-c.in
	if !ok {
		return nil, io.EOF
	}
	return frame, nil
}

func (c *fakeConn) WriteMessage(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.out = append(c.out, b)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) writes() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.out))
	copy(out, c.out)
	return out
}

func (c *fakeConn) writeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.out)
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func introductionFrame(clientName string) []byte {
	return wire.EncodeBatch([]wire.Message{
		wire.NewMessage(wire.TagIntroduction, map[string]anyvar.AnyVar{
			"client_name": anyvar.String(clientName),
		}),
	})
}

func TestStateTransitionsMatchLifecycle(t *testing.T) {
	assert.True(t, IsValidTransition(StateHandshaking, StateActive))
	assert.True(t, IsValidTransition(StateHandshaking, StateClosed))
	assert.True(t, IsValidTransition(StateActive, StateClosed))
	assert.False(t, IsValidTransition(StateActive, StateHandshaking))
	assert.False(t, IsValidTransition(StateClosed, StateActive))
	assert.Empty(t, validTransitions[StateClosed])
}

func TestDefaultServerOptionsRequireAListenPort(t *testing.T) {
	opts := DefaultServerOptions()
	assert.EqualValues(t, 30, opts.HandshakeTimeoutSecs)
	assert.Error(t, opts.Validate())

	opts.ListenPort = 50000
	assert.NoError(t, opts.Validate())
}

func TestFunctionalOptionsOverrideDefaults(t *testing.T) {
	opts := NewServerOptions(WithListenPort(50000), WithAssetPort(50001), WithHandshakeTimeout(5))
	assert.EqualValues(t, 50000, opts.ListenPort)
	assert.EqualValues(t, 50001, opts.AssetPort)
	assert.Equal(t, 5*time.Second, opts.HandshakeTimeout())
}

// TestCatchUpOrderMatchesDependencyOrder covers scenario E3: a newly
// introduced client receives every live component in the fixed
// dependency order, followed by DocumentUpdate, as one batch.
func TestCatchUpOrderMatchesDependencyOrder(t *testing.T) {
	reg := registry.New()
	w := broadcast.NopWriter{}
	reg.CreateBuffer(w, registry.Buffer{Size: 4})
	reg.CreateMethod(w, registry.Method{Name: "m"})
	_, err := reg.CreateEntity(w, registry.Entity{Name: "e", Parent: id.Invalid[id.EntityTag]()})
	require.NoError(t, err)

	d := dispatch.NewDispatcher(reg, nil)
	srv := NewServer(reg, d, NewServerOptions(WithListenPort(1)), nil)

	conn := newFakeConn()
	t.Cleanup(conn.closeIn)
	conn.push(introductionFrame("tester"))

	go srv.Accept(conn)

	require.Eventually(t, func() bool { return conn.writeCount() >= 1 }, time.Second, 5*time.Millisecond)

	msgs, err := wire.DecodeBatch(conn.writes()[0])
	require.NoError(t, err)
	require.NotEmpty(t, msgs)

	assert.Equal(t, wire.TagBufferCreate, msgs[0].Tag)
	assert.Equal(t, wire.TagDocumentUpdate, msgs[len(msgs)-1].Tag)

	var sawEntity, sawMethod bool
	for _, m := range msgs {
		switch m.Tag {
		case wire.TagEntityCreate:
			sawEntity = true
			assert.False(t, sawMethod, "entities must catch up before methods")
		case wire.TagMethodCreate:
			sawMethod = true
		}
	}
	assert.True(t, sawEntity)
	assert.True(t, sawMethod)
}

// TestHandshakeTimeoutReturnsProtocolError covers scenario E6: a
// transport that never sends Introduction is closed with ProtocolError
// and never receives a broadcast.
func TestHandshakeTimeoutReturnsProtocolError(t *testing.T) {
	reg := registry.New()
	d := dispatch.NewDispatcher(reg, nil)
	srv := NewServer(reg, d, NewServerOptions(WithListenPort(1), WithHandshakeTimeout(1)), nil)

	conn := newFakeConn()
	t.Cleanup(conn.closeIn)

	err := srv.Accept(conn)
	require.Error(t, err)
	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.True(t, conn.isClosed())
	assert.Zero(t, conn.writeCount(), "no broadcast may be sent on a socket that never completed the handshake")
}

func TestSuccessfulHandshakeRegistersClientOnHub(t *testing.T) {
	reg := registry.New()
	d := dispatch.NewDispatcher(reg, nil)
	srv := NewServer(reg, d, NewServerOptions(WithListenPort(1)), nil)

	conn := newFakeConn()
	t.Cleanup(conn.closeIn)
	conn.push(introductionFrame("tester"))

	go srv.Accept(conn)

	require.Eventually(t, func() bool { return conn.writeCount() >= 1 }, time.Second, 5*time.Millisecond)
	assert.Len(t, srv.Hub.ClientIDs(), 1)
}
