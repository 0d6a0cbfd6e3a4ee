package wire

import (
	"github.com/pkg/errors"
	"github.com/tinylib/msgp/msgp"

	"github.com/InsightCenterNoodles/noodles-core/anyvar"
)

// Message is one tagged entry in a batch: [tag, body]. body is always a
// map so fields can be added to a kind's schema without changing older
// readers, mirroring the "unknown fields are ignored" tolerance spec.md
// §7 asks for.
type Message struct {
	Tag  Tag
	Body map[string]anyvar.AnyVar
}

// Get returns the named body field, or anyvar.Null if absent.
func (m Message) Get(key string) anyvar.AnyVar {
	if m.Body == nil {
		return anyvar.Null
	}
	if v, ok := m.Body[key]; ok {
		return v
	}
	return anyvar.Null
}

// NewMessage builds a Message from a tag and field set.
func NewMessage(tag Tag, body map[string]anyvar.AnyVar) Message {
	if body == nil {
		body = map[string]anyvar.AnyVar{}
	}
	return Message{Tag: tag, Body: body}
}

// EncodeMessage appends the wire form of one message: itself an AnyVar
// 2-tuple [tag, bodyMap], reusing the AnyVar codec rather than a second
// framing scheme.
func EncodeMessage(b []byte, m Message) []byte {
	b = msgp.AppendArrayHeader(b, 2)
	b = msgp.AppendInt(b, int(m.Tag))
	b = EncodeAnyVar(b, anyvar.Map(m.Body))
	return b
}

// DecodeMessage reads one message and the unconsumed remainder.
func DecodeMessage(b []byte) (Message, []byte, error) {
	sz, o, err := msgp.ReadArrayHeaderBytes(b)
	if err != nil {
		return Message{}, b, errors.Wrap(err, "message: read envelope header")
	}
	if sz != 2 {
		return Message{}, b, errors.Errorf("message: expected 2-element envelope, got %d", sz)
	}
	tagI, o, err := msgp.ReadIntBytes(o)
	if err != nil {
		return Message{}, b, errors.Wrap(err, "message: read tag")
	}
	bodyVar, o, err := DecodeAnyVar(o)
	if err != nil {
		return Message{}, b, errors.Wrap(err, "message: read body")
	}
	body := bodyVar.ToMap()
	if body == nil {
		return Message{}, b, errors.Errorf("message: body is not a map (kind %d)", bodyVar.Kind())
	}
	return Message{Tag: Tag(tagI), Body: body}, o, nil
}

// EncodeBatch concatenates messages into one frame: [count, msg, msg, ...].
// A frame is the unit handed to a transport.Conn write.
func EncodeBatch(msgs []Message) []byte {
	b := msgp.AppendArrayHeader(nil, uint32(len(msgs)))
	for _, m := range msgs {
		b = EncodeMessage(b, m)
	}
	return b
}

// DecodeBatch reads every message out of one frame.
func DecodeBatch(data []byte) ([]Message, error) {
	n, o, err := msgp.ReadArrayHeaderBytes(data)
	if err != nil {
		return nil, errors.Wrap(err, "batch: read header")
	}
	out := make([]Message, 0, n)
	cur := o
	for i := uint32(0); i < n; i++ {
		var m Message
		m, cur, err = DecodeMessage(cur)
		if err != nil {
			return nil, errors.Wrapf(err, "batch: message %d", i)
		}
		out = append(out, m)
	}
	return out, nil
}
