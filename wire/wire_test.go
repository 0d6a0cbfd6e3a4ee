package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/InsightCenterNoodles/noodles-core/anyvar"
	"github.com/InsightCenterNoodles/noodles-core/id"
)

func TestAnyVarRoundTripPreservesPackedList(t *testing.T) {
	original := anyvar.PackedInt64List([]int64{1, 2, 3, 4})
	b := EncodeAnyVar(nil, original)
	got, rest, err := DecodeAnyVar(b)
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.True(t, anyvar.Equal(original, got))
	assert.True(t, got.HasIntList(), "packed list must not decode as a generic List")
}

func TestAnyVarRoundTripGenericListStaysGeneric(t *testing.T) {
	original := anyvar.List([]anyvar.AnyVar{anyvar.Int64(1), anyvar.Int64(2)})
	b := EncodeAnyVar(nil, original)
	got, _, err := DecodeAnyVar(b)
	require.NoError(t, err)
	assert.True(t, got.HasList())
	assert.False(t, got.HasIntList())
}

func TestAnyVarRoundTripID(t *testing.T) {
	eid := id.FromEntity(id.Id[id.EntityTag]{Slot: 7, Gen: 2})
	b := EncodeAnyVar(nil, anyvar.ID(eid))
	got, _, err := DecodeAnyVar(b)
	require.NoError(t, err)
	assert.Equal(t, eid, got.ToID())
}

func TestAnyVarRoundTripNestedMap(t *testing.T) {
	original := anyvar.Map(map[string]anyvar.AnyVar{
		"name":     anyvar.String("root"),
		"position": anyvar.Vec3(1, 2, 3),
		"tags":     anyvar.List([]anyvar.AnyVar{anyvar.String("a"), anyvar.String("b")}),
	})
	b := EncodeAnyVar(nil, original)
	got, rest, err := DecodeAnyVar(b)
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.True(t, anyvar.Equal(original, got))
}

func TestSlotGenRoundTrip(t *testing.T) {
	b := EncodeSlotGen(nil, 42, 9)
	slot, gen, rest, err := DecodeSlotGen(b)
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, uint32(42), slot)
	assert.Equal(t, uint32(9), gen)
}

func TestIdFieldRoundTrip(t *testing.T) {
	want := id.Id[id.EntityTag]{Slot: 3, Gen: 1}
	b := EncodeIdField(nil, want)
	got, rest, err := DecodeIdField[id.EntityTag](b)
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, want, got)
}

func TestMessageRoundTrip(t *testing.T) {
	m := NewMessage(TagEntityCreate, map[string]anyvar.AnyVar{
		"name": anyvar.String("cube"),
	})
	b := EncodeMessage(nil, m)
	got, rest, err := DecodeMessage(b)
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, m.Tag, got.Tag)
	assert.True(t, anyvar.Equal(m.Get("name"), got.Get("name")))
}

func TestBatchRoundTripPreservesCatchUpOrder(t *testing.T) {
	var msgs []Message
	for _, tag := range CatchUpOrder {
		msgs = append(msgs, NewMessage(tag, nil))
	}
	msgs = append(msgs, NewMessage(TagDocumentUpdate, nil))

	b := EncodeBatch(msgs)
	got, err := DecodeBatch(b)
	require.NoError(t, err)
	require.Len(t, got, len(msgs))
	for i, m := range msgs {
		assert.Equal(t, m.Tag, got[i].Tag)
	}
}

func TestDecodeBatchRejectsTruncatedFrame(t *testing.T) {
	b := EncodeBatch([]Message{NewMessage(TagEntityCreate, nil)})
	_, err := DecodeBatch(b[:len(b)-1])
	assert.Error(t, err)
}

func TestDecodeAnyVarRejectsBadEnvelope(t *testing.T) {
	_, _, err := DecodeAnyVar([]byte{0x90}) // empty array, not a 2-tuple
	assert.Error(t, err)
}
