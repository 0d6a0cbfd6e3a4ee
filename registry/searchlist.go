package registry

import "github.com/InsightCenterNoodles/noodles-core/id"

// MethodSet is a small membership set over method ids, used to answer
// "is method M attached to this context" (spec.md §4.7 step 2) without
// a linear scan of the context's Methods slice on every invocation.
type MethodSet map[id.Id[id.MethodTag]]struct{}

func newMethodSet(ids []id.Id[id.MethodTag]) MethodSet {
	s := make(MethodSet, len(ids))
	for _, m := range ids {
		s[m] = struct{}{}
	}
	return s
}

func (s MethodSet) Has(m id.Id[id.MethodTag]) bool {
	_, ok := s[m]
	return ok
}

// SignalSet mirrors MethodSet for signal attachment checks.
type SignalSet map[id.Id[id.SignalTag]]struct{}

func newSignalSet(ids []id.Id[id.SignalTag]) SignalSet {
	s := make(SignalSet, len(ids))
	for _, sig := range ids {
		s[sig] = struct{}{}
	}
	return s
}

func (s SignalSet) Has(sig id.Id[id.SignalTag]) bool {
	_, ok := s[sig]
	return ok
}
