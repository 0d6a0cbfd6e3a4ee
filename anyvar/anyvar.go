// Package anyvar implements AnyVar, the tagged dynamic value carried
// throughout the NOODLES wire protocol: method arguments, signal
// arguments, and table cells. It is the Go rendering of noo::AnyVar from
// the original implementation (original_source/include/noo_any.h), kept
// as an explicit tagged struct rather than an any-boxed interface so the
// packed numeric list fast path stays distinguishable from a generic list
// at the type level.
package anyvar

import "github.com/InsightCenterNoodles/noodles-core/id"

// Kind enumerates the variants of AnyVar.
type Kind int

const (
	KindNull Kind = iota
	KindInt64
	KindFloat64
	KindString
	KindBytes
	KindID
	KindList
	KindMap
	KindPackedInt64
	KindPackedFloat64
)

// AnyVar is the NOODLES dynamic value. Exactly one field is meaningful,
// selected by Kind; this mirrors std::variant in spirit without paying
// for interface boxing on the hot numeric paths.
type AnyVar struct {
	kind Kind

	i   int64
	f   float64
	s   string
	b   []byte
	aid id.AnyID
	lst []AnyVar
	m   map[string]AnyVar
	pi  []int64
	pf  []float64
}

// Null is the zero-value / std::monostate state.
var Null = AnyVar{kind: KindNull}

func Int64(v int64) AnyVar     { return AnyVar{kind: KindInt64, i: v} }
func Float64(v float64) AnyVar { return AnyVar{kind: KindFloat64, f: v} }
func String(v string) AnyVar   { return AnyVar{kind: KindString, s: v} }
func Bytes(v []byte) AnyVar    { return AnyVar{kind: KindBytes, b: v} }
func ID(v id.AnyID) AnyVar     { return AnyVar{kind: KindID, aid: v} }
func List(v []AnyVar) AnyVar {
	if v == nil {
		v = []AnyVar{}
	}
	return AnyVar{kind: KindList, lst: v}
}
func Map(v map[string]AnyVar) AnyVar {
	if v == nil {
		v = map[string]AnyVar{}
	}
	return AnyVar{kind: KindMap, m: v}
}

// PackedInt64List and PackedFloat64List construct the bulk-numeric fast
// path variants: distinct from List([]AnyVar{Int64(...), ...}) so a
// decoder can preserve the packed representation across a round trip
// (spec.md invariant 3 / scenario E1).
func PackedInt64List(v []int64) AnyVar {
	if v == nil {
		v = []int64{}
	}
	return AnyVar{kind: KindPackedInt64, pi: v}
}

func PackedFloat64List(v []float64) AnyVar {
	if v == nil {
		v = []float64{}
	}
	return AnyVar{kind: KindPackedFloat64, pf: v}
}

// Vec3 and Vec4 build the packed-float64 representation used for
// vectors and quaternions on the wire (spec.md §6 "vectors are fixed
// length arrays of f64").
func Vec3(x, y, z float64) AnyVar       { return PackedFloat64List([]float64{x, y, z}) }
func Vec4(x, y, z, w float64) AnyVar    { return PackedFloat64List([]float64{x, y, z, w}) }
func Mat4(rowMajor [16]float64) AnyVar  { return PackedFloat64List(rowMajor[:]) }

func (v AnyVar) Kind() Kind { return v.kind }

func (v AnyVar) IsNull() bool { return v.kind == KindNull }

func (v AnyVar) HasInt() bool         { return v.kind == KindInt64 }
func (v AnyVar) HasReal() bool        { return v.kind == KindFloat64 }
func (v AnyVar) HasList() bool        { return v.kind == KindList }
func (v AnyVar) HasIntList() bool     { return v.kind == KindPackedInt64 }
func (v AnyVar) HasRealList() bool    { return v.kind == KindPackedFloat64 }
func (v AnyVar) HasBytes() bool       { return v.kind == KindBytes }
func (v AnyVar) HasMap() bool         { return v.kind == KindMap }
func (v AnyVar) HasID() bool          { return v.kind == KindID }
func (v AnyVar) HasString() bool      { return v.kind == KindString }

// ToInt returns the int64 value, or 0 if this AnyVar is not an int64 —
// mirroring AnyVar::to_int's "get_or_default" semantics from noo_any.cpp.
func (v AnyVar) ToInt() int64 {
	if v.kind != KindInt64 {
		return 0
	}
	return v.i
}

func (v AnyVar) ToReal() float64 {
	if v.kind != KindFloat64 {
		return 0
	}
	return v.f
}

func (v AnyVar) ToString() string {
	if v.kind != KindString {
		return ""
	}
	return v.s
}

func (v AnyVar) ToBytes() []byte {
	if v.kind != KindBytes {
		return nil
	}
	return v.b
}

func (v AnyVar) ToID() id.AnyID {
	if v.kind != KindID {
		return id.NoneID
	}
	return v.aid
}

// ToList returns the generic list contents, or nil if this AnyVar is not
// a generic list (it does NOT unpack a packed numeric list — use
// CoerceFloat64List/CoerceInt64List for that).
func (v AnyVar) ToList() []AnyVar {
	if v.kind != KindList {
		return nil
	}
	return v.lst
}

func (v AnyVar) ToMap() map[string]AnyVar {
	if v.kind != KindMap {
		return nil
	}
	return v.m
}

// ToPackedInt64List / ToPackedFloat64List return the raw packed slices
// with no attempt at coercion, matching noo_any.cpp's non-coercing
// to_real_list.
func (v AnyVar) ToPackedInt64List() []int64 {
	if v.kind != KindPackedInt64 {
		return nil
	}
	return v.pi
}

func (v AnyVar) ToPackedFloat64List() []float64 {
	if v.kind != KindPackedFloat64 {
		return nil
	}
	return v.pf
}

// Equal performs a deep, kind-aware comparison — used by the wire
// round-trip tests (spec.md invariant 3).
func Equal(a, b AnyVar) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindInt64:
		return a.i == b.i
	case KindFloat64:
		return a.f == b.f
	case KindString:
		return a.s == b.s
	case KindBytes:
		return bytesEqual(a.b, b.b)
	case KindID:
		return a.aid == b.aid
	case KindList:
		if len(a.lst) != len(b.lst) {
			return false
		}
		for i := range a.lst {
			if !Equal(a.lst[i], b.lst[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(a.m) != len(b.m) {
			return false
		}
		for k, av := range a.m {
			bv, ok := b.m[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	case KindPackedInt64:
		if len(a.pi) != len(b.pi) {
			return false
		}
		for i := range a.pi {
			if a.pi[i] != b.pi[i] {
				return false
			}
		}
		return true
	case KindPackedFloat64:
		if len(a.pf) != len(b.pf) {
			return false
		}
		for i := range a.pf {
			if a.pf[i] != b.pf[i] {
				return false
			}
		}
		return true
	}
	return false
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
