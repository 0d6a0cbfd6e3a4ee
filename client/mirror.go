package client

import (
	"sync"

	"github.com/InsightCenterNoodles/noodles-core/anyvar"
	"github.com/InsightCenterNoodles/noodles-core/id"
	"github.com/InsightCenterNoodles/noodles-core/nlog"
	"github.com/InsightCenterNoodles/noodles-core/registry"
	"github.com/InsightCenterNoodles/noodles-core/transport"
	"github.com/InsightCenterNoodles/noodles-core/wire"
)

// State is the client mirror's position in the handshake lifecycle
// (spec.md §4.6): Connecting → Introduced → Live → Closed.
type State int

const (
	StateConnecting State = iota
	StateIntroduced
	StateLive
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "Connecting"
	case StateIntroduced:
		return "Introduced"
	case StateLive:
		return "Live"
	case StateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

var validTransitions = map[State]map[State]bool{
	StateConnecting: {StateIntroduced: true, StateClosed: true},
	StateIntroduced: {StateLive: true, StateClosed: true},
	StateLive:       {StateClosed: true},
	StateClosed:     {},
}

func advance(from, to State) State {
	if targets, ok := validTransitions[from]; ok && targets[to] {
		return to
	}
	return from
}

// Mirror is the client-side reflection of one server Registry. Exactly
// one goroutine should drive Run; Lookup and the exported arenas are
// safe to read concurrently from others once Live.
type Mirror struct {
	mu    sync.RWMutex
	state State

	Methods     *MirrorArena[id.MethodTag, registry.Method]
	Signals     *MirrorArena[id.SignalTag, registry.Signal]
	Buffers     *MirrorArena[id.BufferTag, registry.Buffer]
	BufferViews *MirrorArena[id.BufferViewTag, registry.BufferView]
	Images      *MirrorArena[id.ImageTag, registry.Image]
	Samplers    *MirrorArena[id.SamplerTag, registry.Sampler]
	Textures    *MirrorArena[id.TextureTag, registry.Texture]
	Materials   *MirrorArena[id.MaterialTag, registry.Material]
	Geometries  *MirrorArena[id.GeometryTag, registry.Geometry]
	Lights      *MirrorArena[id.LightTag, registry.Light]
	Entities    *MirrorArena[id.EntityTag, registry.Entity]
	Tables      *MirrorArena[id.TableTag, registry.Table]
	Plots       *MirrorArena[id.PlotTag, registry.Plot]
	Document    registry.Document

	factories map[id.Kind]DelegateFactory
	delegates map[id.AnyID]Delegate

	pendingMu sync.Mutex
	pending   map[string]chan wire.Message

	logger nlog.Logger
}

// NewMirror returns an empty mirror in StateConnecting.
func NewMirror(logger nlog.Logger) *Mirror {
	return &Mirror{
		state:       StateConnecting,
		Methods:     NewMirrorArena[id.MethodTag, registry.Method](),
		Signals:     NewMirrorArena[id.SignalTag, registry.Signal](),
		Buffers:     NewMirrorArena[id.BufferTag, registry.Buffer](),
		BufferViews: NewMirrorArena[id.BufferViewTag, registry.BufferView](),
		Images:      NewMirrorArena[id.ImageTag, registry.Image](),
		Samplers:    NewMirrorArena[id.SamplerTag, registry.Sampler](),
		Textures:    NewMirrorArena[id.TextureTag, registry.Texture](),
		Materials:   NewMirrorArena[id.MaterialTag, registry.Material](),
		Geometries:  NewMirrorArena[id.GeometryTag, registry.Geometry](),
		Lights:      NewMirrorArena[id.LightTag, registry.Light](),
		Entities:    NewMirrorArena[id.EntityTag, registry.Entity](),
		Tables:      NewMirrorArena[id.TableTag, registry.Table](),
		Plots:       NewMirrorArena[id.PlotTag, registry.Plot](),
		factories:   map[id.Kind]DelegateFactory{},
		delegates:   map[id.AnyID]Delegate{},
		pending:     map[string]chan wire.Message{},
		logger:      nlog.OrStd(logger),
	}
}

// RegisterFactory installs the Delegate constructor for kind. Call
// before Run; built components created before a kind's factory is
// registered are mirrored with no Delegate (Lookup reports ok=false).
func (m *Mirror) RegisterFactory(kind id.Kind, f DelegateFactory) {
	m.factories[kind] = f
}

// Lookup resolves a Delegate by id at use-time against the live mirror
// (spec.md §9): callers must never cache the pointer across a delete,
// since a freed slot's Delegate is dropped immediately.
func (m *Mirror) Lookup(i id.AnyID) (Delegate, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.delegates[i]
	return d, ok
}

// State reports the mirror's current lifecycle state.
func (m *Mirror) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Run sends Introduction, then applies inbound frames until the
// transport errors. It blocks; callers typically run it in its own
// goroutine.
func (m *Mirror) Run(conn transport.Conn, clientName string) error {
	intro := wire.EncodeBatch([]wire.Message{
		wire.NewMessage(wire.TagIntroduction, map[string]anyvar.AnyVar{
			"client_name": anyvar.String(clientName),
		}),
	})
	if err := conn.WriteMessage(intro); err != nil {
		return err
	}
	m.mu.Lock()
	m.state = advance(m.state, StateIntroduced)
	m.mu.Unlock()

	for {
		frame, err := conn.ReadMessage()
		if err != nil {
			m.mu.Lock()
			m.state = StateClosed
			m.mu.Unlock()
			return err
		}
		msgs, err := wire.DecodeBatch(frame)
		if err != nil {
			m.logger.Warn("dropping malformed frame", "error", err.Error())
			continue
		}
		for _, msg := range msgs {
			m.apply(msg)
		}
	}
}

// SendInvoke writes a MethodInvoke and returns a channel that receives
// the matching MethodReply once one arrives (or never, if the
// connection drops first — callers should select on a timeout/context).
func (m *Mirror) SendInvoke(conn transport.Conn, methodID id.Id[id.MethodTag], scope id.AnyID, invokeID string, args []anyvar.AnyVar) (<-chan wire.Message, error) {
	ch := make(chan wire.Message, 1)
	m.pendingMu.Lock()
	m.pending[invokeID] = ch
	m.pendingMu.Unlock()

	msg := wire.NewMessage(wire.TagMethodInvoke, map[string]anyvar.AnyVar{
		"method":    anyvar.ID(id.FromMethod(methodID)),
		"context":   anyvar.ID(scope),
		"invoke_id": anyvar.String(invokeID),
		"args":      anyvar.List(args),
	})
	if err := conn.WriteMessage(wire.EncodeBatch([]wire.Message{msg})); err != nil {
		m.pendingMu.Lock()
		delete(m.pending, invokeID)
		m.pendingMu.Unlock()
		return nil, err
	}
	return ch, nil
}
