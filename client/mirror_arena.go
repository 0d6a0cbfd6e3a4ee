// Package client implements the NOODLES client-side mirror: a read-only
// reflection of the server's Registry built by applying inbound
// create/update/delete messages, plus application Delegate objects
// constructed via factory callbacks (spec.md §4.6, §9).
package client

import "github.com/InsightCenterNoodles/noodles-core/id"

type mirrorSlot[T any] struct {
	gen   uint32
	live  bool
	value T
}

// MirrorArena stores one kind's components the way
// original_source/src/client/clientstate.h's ComponentList does: indexed
// directly by the id the server minted (resizing to fit) rather than
// running its own free list, since the mirror never allocates ids of its
// own.
type MirrorArena[Tag id.TagName, T any] struct {
	entries []mirrorSlot[T]
}

func NewMirrorArena[Tag id.TagName, T any]() *MirrorArena[Tag, T] {
	return &MirrorArena[Tag, T]{}
}

// HandleCreate installs value at i, growing the backing slice if the
// server's slot index runs ahead of it (clientstate.h's "ids are
// supposed to be sequential, but ok, resize and continue").
func (a *MirrorArena[Tag, T]) HandleCreate(i id.Id[Tag], value T) {
	if !i.Valid() {
		return
	}
	if int(i.Slot) >= len(a.entries) {
		grown := make([]mirrorSlot[T], i.Slot+1)
		copy(grown, a.entries)
		a.entries = grown
	}
	a.entries[i.Slot] = mirrorSlot[T]{gen: i.Gen, live: true, value: value}
}

// HandleUpdate replaces value at i if i is live with a matching
// generation, reporting false otherwise (stale or unknown id).
func (a *MirrorArena[Tag, T]) HandleUpdate(i id.Id[Tag], value T) bool {
	s, ok := a.slotAt(i)
	if !ok {
		return false
	}
	s.value = value
	return true
}

// HandleDelete clears the slot at i if live with a matching generation.
func (a *MirrorArena[Tag, T]) HandleDelete(i id.Id[Tag]) bool {
	s, ok := a.slotAt(i)
	if !ok {
		return false
	}
	var zero T
	s.live = false
	s.value = zero
	return true
}

func (a *MirrorArena[Tag, T]) slotAt(i id.Id[Tag]) (*mirrorSlot[T], bool) {
	if !i.Valid() || int(i.Slot) >= len(a.entries) {
		return nil, false
	}
	s := &a.entries[i.Slot]
	if !s.live || s.gen != i.Gen {
		return nil, false
	}
	return s, true
}

// Get returns the current mirrored value for i, if live.
func (a *MirrorArena[Tag, T]) Get(i id.Id[Tag]) (T, bool) {
	s, ok := a.slotAt(i)
	if !ok {
		var zero T
		return zero, false
	}
	return s.value, true
}

// Clear drops every entry, used on DocumentReset.
func (a *MirrorArena[Tag, T]) Clear() {
	a.entries = nil
}
