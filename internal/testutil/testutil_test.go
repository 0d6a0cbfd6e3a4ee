package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/InsightCenterNoodles/noodles-core/anyvar"
	"github.com/InsightCenterNoodles/noodles-core/wire"
)

func TestLoopConnPushThenRead(t *testing.T) {
	c := NewLoopConn()
	c.PushMessages(wire.NewMessage(wire.TagIntroduction, map[string]anyvar.AnyVar{
		"client_name": anyvar.String("tester"),
	}))

	frame, err := c.ReadMessage()
	require.NoError(t, err)

	msgs, err := wire.DecodeBatch(frame)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, wire.TagIntroduction, msgs[0].Tag)
}

func TestLoopConnCloseInUnblocksRead(t *testing.T) {
	c := NewLoopConn()
	c.CloseIn()
	_, err := c.ReadMessage()
	assert.Error(t, err)
}

func TestConnPairForwardsWritesToPeer(t *testing.T) {
	a, b := NewConnPair()
	require.NoError(t, a.WriteMessage([]byte("hello")))

	frame, err := b.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), frame)

	require.NoError(t, a.Close())
	_, err = b.ReadMessage()
	assert.Error(t, err)
}

func TestCaptureLoggerRecordsEntries(t *testing.T) {
	l := NewCaptureLogger()
	l.Info("started", "client", "tester")
	l.Error("failed", "reason", "boom")

	assert.True(t, l.HasMessage("INFO", "started"))
	assert.True(t, l.HasMessage("ERROR", "failed"))
	assert.Len(t, l.Entries(), 2)
}

func TestNewSeededRegistryPopulatesOneOfEverything(t *testing.T) {
	s := NewSeededRegistry()

	_, ok := s.Reg.Methods.Get(s.Method)
	assert.True(t, ok)

	child, ok := s.Reg.Entities.Get(s.Child)
	require.True(t, ok)
	assert.Equal(t, s.Root, child.Parent)

	_, ok = s.Reg.Tables.Get(s.Table)
	assert.True(t, ok)
}
