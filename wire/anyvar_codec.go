package wire

import (
	"github.com/pkg/errors"
	"github.com/tinylib/msgp/msgp"

	"github.com/InsightCenterNoodles/noodles-core/anyvar"
	"github.com/InsightCenterNoodles/noodles-core/id"
)

// EncodeAnyVar appends the wire encoding of v to b and returns the
// extended slice. Every AnyVar is framed as a 2-element msgpack array:
// [kindTag, payload]. This keeps the packed numeric list variants
// distinguishable from a generic list of the same values on the wire,
// per spec.md invariant 3 and §9's "explicit variants for packed i64 and
// f64 lists" guidance.
func EncodeAnyVar(b []byte, v anyvar.AnyVar) []byte {
	b = msgp.AppendArrayHeader(b, 2)
	b = msgp.AppendInt(b, int(v.Kind()))

	switch v.Kind() {
	case anyvar.KindNull:
		b = msgp.AppendNil(b)
	case anyvar.KindInt64:
		b = msgp.AppendInt64(b, v.ToInt())
	case anyvar.KindFloat64:
		b = msgp.AppendFloat64(b, v.ToReal())
	case anyvar.KindString:
		b = msgp.AppendString(b, v.ToString())
	case anyvar.KindBytes:
		b = msgp.AppendBytes(b, v.ToBytes())
	case anyvar.KindID:
		aid := v.ToID()
		b = msgp.AppendArrayHeader(b, 3)
		b = msgp.AppendInt(b, int(aid.Kind))
		b = msgp.AppendUint32(b, aid.Slot)
		b = msgp.AppendUint32(b, aid.Gen)
	case anyvar.KindList:
		lst := v.ToList()
		b = msgp.AppendArrayHeader(b, uint32(len(lst)))
		for _, e := range lst {
			b = EncodeAnyVar(b, e)
		}
	case anyvar.KindMap:
		m := v.ToMap()
		b = msgp.AppendMapHeader(b, uint32(len(m)))
		for k, e := range m {
			b = msgp.AppendString(b, k)
			b = EncodeAnyVar(b, e)
		}
	case anyvar.KindPackedInt64:
		pl := v.ToPackedInt64List()
		b = msgp.AppendArrayHeader(b, uint32(len(pl)))
		for _, e := range pl {
			b = msgp.AppendInt64(b, e)
		}
	case anyvar.KindPackedFloat64:
		pl := v.ToPackedFloat64List()
		b = msgp.AppendArrayHeader(b, uint32(len(pl)))
		for _, e := range pl {
			b = msgp.AppendFloat64(b, e)
		}
	default:
		b = msgp.AppendNil(b)
	}
	return b
}

// DecodeAnyVar reads one wire-encoded AnyVar from b, returning the value
// and the unconsumed remainder.
func DecodeAnyVar(b []byte) (anyvar.AnyVar, []byte, error) {
	sz, o, err := msgp.ReadArrayHeaderBytes(b)
	if err != nil {
		return anyvar.Null, b, errors.Wrap(err, "anyvar: read envelope header")
	}
	if sz != 2 {
		return anyvar.Null, b, errors.Errorf("anyvar: expected 2-element envelope, got %d", sz)
	}

	kindI, o2, err := msgp.ReadIntBytes(o)
	if err != nil {
		return anyvar.Null, b, errors.Wrap(err, "anyvar: read kind tag")
	}
	o = o2
	kind := anyvar.Kind(kindI)

	switch kind {
	case anyvar.KindNull:
		o, err = msgp.ReadNilBytes(o)
		if err != nil {
			return anyvar.Null, b, errors.Wrap(err, "anyvar: read null")
		}
		return anyvar.Null, o, nil

	case anyvar.KindInt64:
		i, o3, err := msgp.ReadInt64Bytes(o)
		if err != nil {
			return anyvar.Null, b, errors.Wrap(err, "anyvar: read int64")
		}
		return anyvar.Int64(i), o3, nil

	case anyvar.KindFloat64:
		f, o3, err := msgp.ReadFloat64Bytes(o)
		if err != nil {
			return anyvar.Null, b, errors.Wrap(err, "anyvar: read float64")
		}
		return anyvar.Float64(f), o3, nil

	case anyvar.KindString:
		s, o3, err := msgp.ReadStringBytes(o)
		if err != nil {
			return anyvar.Null, b, errors.Wrap(err, "anyvar: read string")
		}
		return anyvar.String(s), o3, nil

	case anyvar.KindBytes:
		bs, o3, err := msgp.ReadBytesBytes(o, nil)
		if err != nil {
			return anyvar.Null, b, errors.Wrap(err, "anyvar: read bytes")
		}
		return anyvar.Bytes(bs), o3, nil

	case anyvar.KindID:
		isz, o3, err := msgp.ReadArrayHeaderBytes(o)
		if err != nil || isz != 3 {
			return anyvar.Null, b, errors.Wrap(err, "anyvar: read id envelope")
		}
		kEnum, o4, err := msgp.ReadIntBytes(o3)
		if err != nil {
			return anyvar.Null, b, errors.Wrap(err, "anyvar: read id kind")
		}
		slot, o5, err := msgp.ReadUint32Bytes(o4)
		if err != nil {
			return anyvar.Null, b, errors.Wrap(err, "anyvar: read id slot")
		}
		gen, o6, err := msgp.ReadUint32Bytes(o5)
		if err != nil {
			return anyvar.Null, b, errors.Wrap(err, "anyvar: read id gen")
		}
		return anyvar.ID(id.AnyID{Kind: id.Kind(kEnum), Slot: slot, Gen: gen}), o6, nil

	case anyvar.KindList:
		n, o3, err := msgp.ReadArrayHeaderBytes(o)
		if err != nil {
			return anyvar.Null, b, errors.Wrap(err, "anyvar: read list header")
		}
		out := make([]anyvar.AnyVar, 0, n)
		cur := o3
		for i := uint32(0); i < n; i++ {
			var e anyvar.AnyVar
			e, cur, err = DecodeAnyVar(cur)
			if err != nil {
				return anyvar.Null, b, err
			}
			out = append(out, e)
		}
		return anyvar.List(out), cur, nil

	case anyvar.KindMap:
		n, o3, err := msgp.ReadMapHeaderBytes(o)
		if err != nil {
			return anyvar.Null, b, errors.Wrap(err, "anyvar: read map header")
		}
		out := make(map[string]anyvar.AnyVar, n)
		cur := o3
		for i := uint32(0); i < n; i++ {
			var k string
			k, cur, err = msgp.ReadStringBytes(cur)
			if err != nil {
				return anyvar.Null, b, errors.Wrap(err, "anyvar: read map key")
			}
			var v anyvar.AnyVar
			v, cur, err = DecodeAnyVar(cur)
			if err != nil {
				return anyvar.Null, b, err
			}
			out[k] = v
		}
		return anyvar.Map(out), cur, nil

	case anyvar.KindPackedInt64:
		n, o3, err := msgp.ReadArrayHeaderBytes(o)
		if err != nil {
			return anyvar.Null, b, errors.Wrap(err, "anyvar: read packed int64 header")
		}
		out := make([]int64, n)
		cur := o3
		for i := uint32(0); i < n; i++ {
			out[i], cur, err = msgp.ReadInt64Bytes(cur)
			if err != nil {
				return anyvar.Null, b, errors.Wrap(err, "anyvar: read packed int64 element")
			}
		}
		return anyvar.PackedInt64List(out), cur, nil

	case anyvar.KindPackedFloat64:
		n, o3, err := msgp.ReadArrayHeaderBytes(o)
		if err != nil {
			return anyvar.Null, b, errors.Wrap(err, "anyvar: read packed float64 header")
		}
		out := make([]float64, n)
		cur := o3
		for i := uint32(0); i < n; i++ {
			out[i], cur, err = msgp.ReadFloat64Bytes(cur)
			if err != nil {
				return anyvar.Null, b, errors.Wrap(err, "anyvar: read packed float64 element")
			}
		}
		return anyvar.PackedFloat64List(out), cur, nil

	default:
		return anyvar.Null, b, errors.Errorf("anyvar: unknown kind tag %d", kindI)
	}
}

// EncodeSlotGen appends the [slot,gen] pair form used for message-body id
// fields (spec.md §6).
func EncodeSlotGen(b []byte, slot, gen uint32) []byte {
	b = msgp.AppendArrayHeader(b, 2)
	b = msgp.AppendUint32(b, slot)
	b = msgp.AppendUint32(b, gen)
	return b
}

// DecodeSlotGen reads a bare [slot,gen] pair.
func DecodeSlotGen(b []byte) (slot, gen uint32, rest []byte, err error) {
	sz, o, err := msgp.ReadArrayHeaderBytes(b)
	if err != nil {
		return 0, 0, b, errors.Wrap(err, "id: read envelope header")
	}
	if sz != 2 {
		return 0, 0, b, errors.Errorf("id: expected 2-element [slot,gen], got %d", sz)
	}
	slot, o, err = msgp.ReadUint32Bytes(o)
	if err != nil {
		return 0, 0, b, errors.Wrap(err, "id: read slot")
	}
	gen, o, err = msgp.ReadUint32Bytes(o)
	if err != nil {
		return 0, 0, b, errors.Wrap(err, "id: read gen")
	}
	return slot, gen, o, nil
}
