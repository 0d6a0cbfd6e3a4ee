package wire

import "github.com/InsightCenterNoodles/noodles-core/id"

// EncodeIdField appends the bare [slot,gen] wire form spec.md §6 uses for
// a typed id inside a message body (the kind is implied by the field
// itself, unlike the generic AnyVar "id" variant which must carry it).
func EncodeIdField[T id.TagName](b []byte, i id.Id[T]) []byte {
	return EncodeSlotGen(b, i.Slot, i.Gen)
}

// DecodeIdField reads a typed id back from its bare [slot,gen] wire form.
func DecodeIdField[T id.TagName](b []byte) (id.Id[T], []byte, error) {
	slot, gen, rest, err := DecodeSlotGen(b)
	if err != nil {
		return id.Id[T]{}, b, err
	}
	return id.Id[T]{Slot: slot, Gen: gen}, rest, nil
}
