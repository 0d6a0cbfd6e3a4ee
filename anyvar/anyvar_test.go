package anyvar

import (
	"testing"

	"github.com/InsightCenterNoodles/noodles-core/id"
	"github.com/stretchr/testify/assert"
)

func TestNullDefaults(t *testing.T) {
	v := Null
	assert.True(t, v.IsNull())
	assert.Equal(t, int64(0), v.ToInt())
	assert.Equal(t, "", v.ToString())
	assert.Nil(t, v.ToList())
}

func TestEqualAcrossKinds(t *testing.T) {
	assert.True(t, Equal(Int64(5), Int64(5)))
	assert.False(t, Equal(Int64(5), Float64(5)))
	assert.True(t, Equal(PackedFloat64List([]float64{1, 2}), PackedFloat64List([]float64{1, 2})))
	assert.False(t, Equal(PackedFloat64List([]float64{1, 2}), List([]AnyVar{Float64(1), Float64(2)})),
		"packed and generic lists of the same numeric values are distinct variants")
}

func TestCoerceFloat64ListAbsorbsGenericList(t *testing.T) {
	generic := List([]AnyVar{Int64(1), Float64(2.5), Int64(3)})
	got := CoerceFloat64List(generic)
	assert.Equal(t, []float64{1, 2.5, 3}, got)
}

func TestCoerceInt64ListTruncatesFloats(t *testing.T) {
	generic := List([]AnyVar{Float64(1.9), Int64(2)})
	got := CoerceInt64List(generic)
	assert.Equal(t, []int64{1, 2}, got)
}

func TestCoercePreservesPackedFastPath(t *testing.T) {
	packed := PackedInt64List([]int64{10, 20, 30})
	assert.Equal(t, []int64{10, 20, 30}, CoerceInt64List(packed))
}

func TestVec3CoercionRoundTrip(t *testing.T) {
	v := Vec3(1, 2, 3)
	x, y, z, ok := CoerceVec3(v)
	assert.True(t, ok)
	assert.Equal(t, [3]float64{1, 2, 3}, [3]float64{x, y, z})
}

func TestAnyVarIDRoundTrip(t *testing.T) {
	eid := id.FromEntity(id.Id[id.EntityTag]{Slot: 1, Gen: 0})
	v := ID(eid)
	assert.True(t, v.HasID())
	assert.Equal(t, eid, v.ToID())
}

func TestDumpDoesNotPanicOnEveryKind(t *testing.T) {
	values := []AnyVar{
		Null, Int64(1), Float64(1.5), String("s"), Bytes([]byte{1, 2}),
		ID(id.NoneID), List([]AnyVar{Int64(1)}), Map(map[string]AnyVar{"a": Int64(1)}),
		PackedInt64List([]int64{1}), PackedFloat64List([]float64{1}),
	}
	for _, v := range values {
		assert.NotPanics(t, func() { _ = Dump(v) })
	}
}
