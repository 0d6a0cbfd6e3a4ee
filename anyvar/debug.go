package anyvar

import (
	jsoniter "github.com/json-iterator/go"
)

var debugJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// toPlain converts an AnyVar into plain Go values (map[string]any,
// []any, ...) suitable for jsoniter — there is no direct AnyVar
// marshaler because the wire encoding lives in package wire; this is
// strictly a human-readable debug rendering, the Go counterpart of
// noo_any.cpp's dump_string.
func toPlain(v AnyVar) any {
	switch v.kind {
	case KindNull:
		return nil
	case KindInt64:
		return v.i
	case KindFloat64:
		return v.f
	case KindString:
		return v.s
	case KindBytes:
		return "<bytes:" + itoa(len(v.b)) + ">"
	case KindID:
		return v.aid.String()
	case KindList:
		out := make([]any, len(v.lst))
		for i, e := range v.lst {
			out[i] = toPlain(e)
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.m))
		for k, e := range v.m {
			out[k] = toPlain(e)
		}
		return out
	case KindPackedInt64:
		return v.pi
	case KindPackedFloat64:
		return v.pf
	default:
		return nil
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Dump renders a human-friendly JSON representation of v, the Go
// counterpart of AnyVar::dump_string in the original implementation.
// Not used on the wire — see package wire for the binary codec.
func Dump(v AnyVar) string {
	b, err := debugJSON.Marshal(toPlain(v))
	if err != nil {
		return "<anyvar: unprintable>"
	}
	return string(b)
}

// String implements fmt.Stringer so AnyVar values print usefully in
// logs and test failures.
func (v AnyVar) String() string {
	return Dump(v)
}
