package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvalidSentinel(t *testing.T) {
	inv := Invalid[EntityTag]()
	assert.False(t, inv.Valid())
	assert.Equal(t, "Entity INVALID", inv.String())
}

func TestValidId(t *testing.T) {
	i := Id[EntityTag]{Slot: 3, Gen: 1}
	assert.True(t, i.Valid())
	assert.Equal(t, "Entity 3/1", i.String())
}

func TestLessOrdersBySlotThenGen(t *testing.T) {
	a := Id[EntityTag]{Slot: 0, Gen: 5}
	b := Id[EntityTag]{Slot: 1, Gen: 0}
	assert.True(t, Less(a, b))
	assert.False(t, Less(b, a))
}

func TestAnyIDRoundTrip(t *testing.T) {
	e := Id[EntityTag]{Slot: 2, Gen: 1}
	any := FromEntity(e)
	assert.Equal(t, KindEntity, any.Kind)

	got, ok := ToEntity(any)
	assert.True(t, ok)
	assert.Equal(t, e, got)

	_, ok = ToTable(any)
	assert.False(t, ok, "mismatched kind must not silently coerce")
}

func TestNoneIDInvalid(t *testing.T) {
	assert.False(t, NoneID.Valid())
	assert.Equal(t, "None", NoneID.String())
}
