// Package registry implements the component registry: one generation
// counted slotted arena per NOODLES kind, plus the referential-integrity
// checks that span arenas (parent chains, attached method/signal sets).
package registry

import "github.com/InsightCenterNoodles/noodles-core/id"

// slot is one arena cell: either free (carrying the generation the next
// occupant will receive) or live.
type slot[T any] struct {
	gen   uint32
	live  bool
	value T
}

// Arena is the generic slotted arena every component kind is stored in.
// Allocation pops the free list (bumping the slot's generation) or grows
// the backing slice; resolution requires both the slot index and the
// generation to match, so a stale id from before a slot was reused never
// resolves to the new occupant.
type Arena[Tag id.TagName, T any] struct {
	entries  []slot[T]
	freeList []uint32
}

// NewArena returns an empty arena.
func NewArena[Tag id.TagName, T any]() *Arena[Tag, T] {
	return &Arena[Tag, T]{}
}

// Create inserts value and returns its new id.
func (a *Arena[Tag, T]) Create(value T) id.Id[Tag] {
	if n := len(a.freeList); n > 0 {
		idx := a.freeList[n-1]
		a.freeList = a.freeList[:n-1]
		a.entries[idx].live = true
		a.entries[idx].value = value
		return id.Id[Tag]{Slot: idx, Gen: a.entries[idx].gen}
	}
	idx := uint32(len(a.entries))
	a.entries = append(a.entries, slot[T]{gen: 0, live: true, value: value})
	return id.Id[Tag]{Slot: idx, Gen: 0}
}

// Get resolves i, returning ok=false if the slot is free or its
// generation has moved on.
func (a *Arena[Tag, T]) Get(i id.Id[Tag]) (T, bool) {
	var zero T
	if int(i.Slot) >= len(a.entries) {
		return zero, false
	}
	s := a.entries[i.Slot]
	if !s.live || s.gen != i.Gen {
		return zero, false
	}
	return s.value, true
}

// Set overwrites the live value at i, returning ok=false if i is stale.
func (a *Arena[Tag, T]) Set(i id.Id[Tag], value T) bool {
	if int(i.Slot) >= len(a.entries) {
		return false
	}
	s := &a.entries[i.Slot]
	if !s.live || s.gen != i.Gen {
		return false
	}
	s.value = value
	return true
}

// Delete frees i's slot, bumping its generation so a dangling copy of i
// can never resolve again. Returns ok=false if i was already stale.
func (a *Arena[Tag, T]) Delete(i id.Id[Tag]) bool {
	if int(i.Slot) >= len(a.entries) {
		return false
	}
	s := &a.entries[i.Slot]
	if !s.live || s.gen != i.Gen {
		return false
	}
	var zero T
	s.live = false
	s.value = zero
	s.gen++
	a.freeList = append(a.freeList, i.Slot)
	return true
}

// Live calls fn for every currently live entry, in slot order. Order is
// deterministic for a given arena history, which catch-up relies on.
func (a *Arena[Tag, T]) Live(fn func(id.Id[Tag], T)) {
	for idx := range a.entries {
		s := &a.entries[idx]
		if s.live {
			fn(id.Id[Tag]{Slot: uint32(idx), Gen: s.gen}, s.value)
		}
	}
}

// Len returns the number of live entries.
func (a *Arena[Tag, T]) Len() int {
	n := 0
	for i := range a.entries {
		if a.entries[i].live {
			n++
		}
	}
	return n
}
