package session

import (
	"context"
	"sync"

	"github.com/InsightCenterNoodles/noodles-core/anyvar"
	"github.com/InsightCenterNoodles/noodles-core/broadcast"
	"github.com/InsightCenterNoodles/noodles-core/dispatch"
	"github.com/InsightCenterNoodles/noodles-core/id"
	"github.com/InsightCenterNoodles/noodles-core/nlog"
	"github.com/InsightCenterNoodles/noodles-core/registry"
	"github.com/InsightCenterNoodles/noodles-core/transport"
	"github.com/InsightCenterNoodles/noodles-core/wire"
)

// Server owns the single Registry and fans every connection's dispatch
// through it. Per spec.md §5, exactly one goroutine is meant to own the
// Registry; a Server lets each connection's goroutine call in, serialized
// by invokeMu, rather than building a separate command-queue goroutine —
// the same shared-mutable-state-behind-a-mutex shape EngineServer uses
// for its runner field.
type Server struct {
	Registry *registry.Registry
	Hub      *broadcast.Hub
	Dispatch *dispatch.Dispatcher
	Signals  *dispatch.SignalBroadcaster
	Options  *ServerOptions
	logger   nlog.Logger

	invokeMu      sync.Mutex
	currentClient broadcast.ClientID
}

// NewServer wires a Server around an already-constructed Registry and
// Dispatcher (built first so built-in/application methods can be
// registered before any connection is accepted).
func NewServer(reg *registry.Registry, d *dispatch.Dispatcher, opts *ServerOptions, logger nlog.Logger) *Server {
	hub := broadcast.NewHub()
	if opts == nil {
		opts = DefaultServerOptions()
	}
	return &Server{
		Registry: reg,
		Hub:      hub,
		Dispatch: d,
		Signals:  dispatch.NewSignalBroadcaster(hub),
		Options:  opts,
		logger:   nlog.OrStd(logger),
	}
}

// Accept drives one connection end to end: handshake, catch-up, dispatch
// loop, disconnect cleanup. It blocks until the connection ends, so
// callers normally invoke it as `go server.Accept(conn)` per spec.md §4.5
// ("per new socket").
func (s *Server) Accept(conn transport.Conn) error {
	state := StateHandshaking

	clientID, clientName, err := s.handshake(conn)
	if err != nil {
		s.logger.Warn("handshake failed", "error", err.Error())
		conn.Close()
		return err
	}
	state = advance(state, StateActive)

	queue := s.Hub.Register(clientID, 256)
	client := newClientState(clientID, clientName)
	s.logger.Info("client introduced", "client", string(clientID), "name", client.name)

	stop := make(chan struct{})
	var writeWg sync.WaitGroup
	writeWg.Add(1)
	go s.writeLoop(conn, queue, stop, &writeWg)

	batch := &broadcast.BatchWriter{}
	s.invokeMu.Lock()
	s.Registry.CatchUp(batch)
	s.invokeMu.Unlock()
	if err := s.writeBatch(conn, batch.Messages()); err != nil {
		s.disconnect(client, stop, &writeWg)
		return &TransportError{Op: "catch-up write", Err: err}
	}

	readErr := s.readLoop(conn, client)
	if readErr != nil {
		s.logger.Info("connection closed", "client", string(client.id), "reason", readErr.Error())
	}
	s.disconnect(client, stop, &writeWg)
	state = advance(state, StateClosed)
	return readErr
}

// handshake blocks until Introduction arrives or HandshakeTimeoutSecs
// elapses (spec.md §4.5/§8 E6), via context.WithTimeout the way the
// teacher's kernel calls thread a context through blocking operations.
func (s *Server) handshake(conn transport.Conn) (broadcast.ClientID, string, error) {
	type result struct {
		name string
		err  error
	}
	ch := make(chan result, 1)

	go func() {
		frame, err := conn.ReadMessage()
		if err != nil {
			ch <- result{err: &TransportError{Op: "read introduction", Err: err}}
			return
		}
		msgs, err := wire.DecodeBatch(frame)
		if err != nil || len(msgs) == 0 {
			ch <- result{err: &ProtocolError{Reason: "malformed introduction frame"}}
			return
		}
		if msgs[0].Tag != wire.TagIntroduction {
			ch <- result{err: &ProtocolError{Reason: "first message was not Introduction"}}
			return
		}
		ch <- result{name: msgs[0].Get("client_name").ToString()}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.Options.HandshakeTimeout())
	defer cancel()

	select {
	case r := <-ch:
		if r.err != nil {
			return "", "", r.err
		}
		return newClientID(), r.name, nil
	case <-ctx.Done():
		return "", "", &ProtocolError{Reason: "handshake timeout"}
	}
}

// readLoop decodes MethodInvoke frames until the connection errors.
// Anything other than MethodInvoke during Active is a protocol error
// (spec.md §4.5 "clients do not push state").
func (s *Server) readLoop(conn transport.Conn, client *clientState) error {
	for {
		frame, err := conn.ReadMessage()
		if err != nil {
			return &TransportError{Op: "read", Err: err}
		}
		msgs, err := wire.DecodeBatch(frame)
		if err != nil {
			return &ProtocolError{Reason: "malformed frame: " + err.Error()}
		}
		for _, m := range msgs {
			if m.Tag != wire.TagMethodInvoke {
				return &ProtocolError{Reason: "expected MethodInvoke, got " + m.Tag.String()}
			}
			s.handleInvoke(client, m)
		}
	}
}

func (s *Server) handleInvoke(client *clientState, m wire.Message) {
	inv := dispatch.Invocation{
		InvokeID: m.Get("invoke_id").ToString(),
		Context:  m.Get("context").ToID(),
		Args:     m.Get("args").ToList(),
		Client:   string(client.id),
	}
	if mid, ok := id.ToMethod(m.Get("method").ToID()); ok {
		inv.MethodID = mid
	}

	s.invokeMu.Lock()
	s.currentClient = client.id
	reply := s.Dispatch.Invoke(inv)
	s.invokeMu.Unlock()

	if reply.Deferred {
		return
	}
	s.Hub.EmitTo(client.id, replyMessage(reply))
}

// ResolveDeferred completes an invocation a handler previously deferred
// with dispatch.ErrDeferred, sending the resulting MethodReply to client.
// If client disconnected in the meantime, Dispatch.Resolve reports not
// found (disconnect already dropped it) and this is a no-op.
func (s *Server) ResolveDeferred(client broadcast.ClientID, invokeID string, result anyvar.AnyVar, mex *dispatch.MethodException) {
	reply, ok := s.Dispatch.Resolve(string(client), invokeID, result, mex)
	if !ok {
		return
	}
	s.Hub.EmitTo(client, replyMessage(reply))
}

// CurrentClient returns the ClientID of whichever invocation is presently
// running on this Server's single-flight dispatch path. Built-in methods
// that need to know "who called me" (noo::tbl_subscribe) resolve it
// through this rather than threading a ClientID through Handler's fixed
// signature, since invokeMu guarantees at most one invocation runs at a
// time across the whole server.
func (s *Server) CurrentClient() broadcast.ClientID {
	return s.currentClient
}

func replyMessage(r dispatch.Reply) wire.Message {
	body := map[string]anyvar.AnyVar{
		"invoke_id": anyvar.String(r.InvokeID),
	}
	if r.Exception != nil {
		body["exception"] = anyvar.Map(map[string]anyvar.AnyVar{
			"code":    anyvar.Int64(r.Exception.Code),
			"message": anyvar.String(r.Exception.Message),
			"data":    r.Exception.Data,
		})
	} else {
		body["result"] = r.Result
	}
	return wire.NewMessage(wire.TagMethodReply, body)
}

// writeLoop drains a client's queue onto its connection until stop fires
// or a write fails, at which point disconnect cleanup takes over.
func (s *Server) writeLoop(conn transport.Conn, q *broadcast.Queue, stop <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		select {
		case m, ok := <-q.Messages():
			if !ok {
				return
			}
			if err := conn.WriteMessage(wire.EncodeBatch([]wire.Message{m})); err != nil {
				return
			}
		case <-stop:
			return
		}
	}
}

func (s *Server) writeBatch(conn transport.Conn, msgs []wire.Message) error {
	return conn.WriteMessage(wire.EncodeBatch(msgs))
}

// disconnect drops client's per-connection state (queue, subscriptions,
// pending replies) without touching the Registry (spec.md §4.5
// disconnection / §5 cancellation).
func (s *Server) disconnect(client *clientState, stop chan struct{}, wg *sync.WaitGroup) {
	close(stop)
	wg.Wait()
	s.Hub.Unregister(client.id)
	s.Signals.UnsubscribeAll(client.id)
	s.Dispatch.DropClient(string(client.id))
}

func advance(from, to State) State {
	if !IsValidTransition(from, to) {
		return from
	}
	return to
}
