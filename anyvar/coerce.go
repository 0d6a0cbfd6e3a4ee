package anyvar

// Coercions absorb the two shapes a numeric list can legally arrive in —
// the packed fast path, or a generic list of numerically convertible
// elements — so method handlers don't need to branch on which one a
// caller sent. Generalized from coreengine/typeutil/safe.go's comma-ok
// SafeInt/SafeFloat64 helpers and from noo_any.cpp's
// coerce_real_list/coerce_int_list.

// CoerceFloat64List accepts either a packed float64 list or a generic
// list whose elements are int64 or float64 (truncating is never
// performed going to float64 — int64 widens exactly). Non-numeric list
// elements are skipped, matching the original's behavior of silently
// dropping anything that isn't has_int()/has_real().
func CoerceFloat64List(v AnyVar) []float64 {
	switch v.kind {
	case KindPackedFloat64:
		return v.pf
	case KindList:
		out := make([]float64, 0, len(v.lst))
		for _, e := range v.lst {
			switch e.kind {
			case KindInt64:
				out = append(out, float64(e.i))
			case KindFloat64:
				out = append(out, e.f)
			}
		}
		return out
	default:
		return nil
	}
}

// CoerceInt64List accepts either a packed int64 list or a generic list
// whose elements are int64 or float64 (float64→int64 truncates, matching
// C++ static_cast<int64_t> semantics in the original coerce_int_list).
func CoerceInt64List(v AnyVar) []int64 {
	switch v.kind {
	case KindPackedInt64:
		return v.pi
	case KindList:
		out := make([]int64, 0, len(v.lst))
		for _, e := range v.lst {
			switch e.kind {
			case KindInt64:
				out = append(out, e.i)
			case KindFloat64:
				out = append(out, int64(e.f))
			}
		}
		return out
	default:
		return nil
	}
}

// CoerceVec3/CoerceVec4 pull a fixed-length float64 vector out of either
// representation, returning ok=false if the coerced length doesn't match
// (used by the entity set_position/set_rotation/set_scale built-ins).
func CoerceVec3(v AnyVar) (x, y, z float64, ok bool) {
	l := CoerceFloat64List(v)
	if len(l) != 3 {
		return 0, 0, 0, false
	}
	return l[0], l[1], l[2], true
}

func CoerceVec4(v AnyVar) (x, y, z, w float64, ok bool) {
	l := CoerceFloat64List(v)
	if len(l) != 4 {
		return 0, 0, 0, 0, false
	}
	return l[0], l[1], l[2], l[3], true
}
