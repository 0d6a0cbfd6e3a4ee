package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/InsightCenterNoodles/noodles-core/broadcast"
	"github.com/InsightCenterNoodles/noodles-core/id"
)

func TestCreateThenGetResolvesImmediately(t *testing.T) {
	r := New()
	i := r.CreateMethod(broadcast.NopWriter{}, Method{Name: "foo"})
	got, ok := r.Methods.Get(i)
	require.True(t, ok)
	assert.Equal(t, "foo", got.Name)
}

func TestDeleteThenSlotReuseBumpsGeneration(t *testing.T) {
	r := New()
	w := broadcast.NopWriter{}
	first := r.CreateMethod(w, Method{Name: "first"})
	require.True(t, r.DeleteMethod(w, first))

	_, ok := r.Methods.Get(first)
	assert.False(t, ok, "deleted id must not resolve")

	second := r.CreateMethod(w, Method{Name: "second"})
	assert.Equal(t, first.Slot, second.Slot, "free slot should be reused")
	assert.NotEqual(t, first.Gen, second.Gen, "reused slot must bump generation")

	_, ok = r.Methods.Get(first)
	assert.False(t, ok, "stale id from before reuse must never resolve again")
}

func TestEveryMutationEmitsExactlyOneMessage(t *testing.T) {
	r := New()
	bw := &broadcast.BatchWriter{}
	r.CreateMethod(bw, Method{Name: "m"})
	assert.Len(t, bw.Messages(), 1)
}

func TestRefErrorLeavesArenaUntouchedAndEmitsNoMessage(t *testing.T) {
	r := New()
	bw := &broadcast.BatchWriter{}
	_, err := r.CreateBufferView(bw, BufferView{Source: id.Invalid[id.BufferTag]()})
	require.Error(t, err)
	assert.IsType(t, &RefError{}, err)
	assert.Empty(t, bw.Messages())
	assert.Equal(t, 0, r.BufferViews.Len())
}

func TestEntityParentCycleRejected(t *testing.T) {
	r := New()
	w := broadcast.NopWriter{}
	a, err := r.CreateEntity(w, Entity{Name: "a", Parent: id.Invalid[id.EntityTag]()})
	require.NoError(t, err)

	b, err := r.CreateEntity(w, Entity{Name: "b", Parent: a})
	require.NoError(t, err)

	err = r.UpdateEntity(w, a, Entity{Name: "a", Parent: b})
	require.Error(t, err)
	assert.IsType(t, &CycleError{}, err)
}

func TestUnsupportedUpdateKindsRejectUpdate(t *testing.T) {
	assert.False(t, Updatable(id.KindBuffer))
	assert.False(t, Updatable(id.KindMethod))
	assert.True(t, Updatable(id.KindEntity))
	assert.True(t, Updatable(id.KindTable))
}

func TestCatchUpOrderMatchesDependencyOrder(t *testing.T) {
	r := New()
	w := broadcast.NopWriter{}
	buf := r.CreateBuffer(w, Buffer{Size: 10})
	bv, err := r.CreateBufferView(w, BufferView{Source: buf, Length: 10})
	require.NoError(t, err)
	img, err := r.CreateImage(w, Image{BufferSource: bv})
	require.NoError(t, err)
	_ = img
	r.CreateEntity(w, Entity{Name: "root", Parent: id.Invalid[id.EntityTag]()})

	bw := &broadcast.BatchWriter{}
	r.CatchUp(bw)
	msgs := bw.Messages()
	require.NotEmpty(t, msgs)

	seenEntity := false
	for _, m := range msgs {
		if m.Tag.String() == "BufferCreate" {
			assert.False(t, seenEntity, "Buffer must be caught up before Entity")
		}
		if m.Tag.String() == "EntityCreate" {
			seenEntity = true
		}
	}
	assert.Equal(t, "DocumentUpdate", msgs[len(msgs)-1].Tag.String(), "catch-up batch ends with DocumentUpdate")
}

func TestDocumentUpdateRejectsDanglingMethod(t *testing.T) {
	r := New()
	w := broadcast.NopWriter{}
	err := r.UpdateDocument(w, Document{Methods: []id.Id[id.MethodTag]{id.Invalid[id.MethodTag]()}})
	require.Error(t, err)
	assert.IsType(t, &RefError{}, err)
}

func TestMethodSetMembership(t *testing.T) {
	r := New()
	w := broadcast.NopWriter{}
	m := r.CreateMethod(w, Method{Name: "m"})
	e := Entity{Methods: []id.Id[id.MethodTag]{m}}
	set := EntityMethodSet(e)
	assert.True(t, set.Has(m))
	assert.False(t, set.Has(id.Invalid[id.MethodTag]()))
}
