// Package testutil provides shared fixture builders for noodles-core's
// package tests: an in-memory transport.Conn pair, a populated registry,
// and the nlog capture logger used to assert on emitted log lines.
package testutil

import (
	"io"
	"sync"

	"github.com/InsightCenterNoodles/noodles-core/wire"
)

// LoopConn is an in-memory transport.Conn: inbound frames are fed through
// Push, outbound writes are recorded for inspection. Safe to share between
// session and client tests, unlike a fakeConn reimplemented per package.
type LoopConn struct {
	in chan []byte

	mu     sync.Mutex
	out    [][]byte
	closed bool
}

// NewLoopConn returns a LoopConn with a modestly buffered inbound channel,
// so a test can Push several frames before anything reads them.
func NewLoopConn() *LoopConn {
	return &LoopConn{in: make(chan []byte, 8)}
}

// Push queues frame for the next ReadMessage call.
func (c *LoopConn) Push(frame []byte) { c.in <- frame }

// PushMessages encodes msgs as one batch frame and queues it.
func (c *LoopConn) PushMessages(msgs ...wire.Message) {
	c.Push(wire.EncodeBatch(msgs))
}

// CloseIn closes the inbound channel, so a blocked ReadMessage returns
// io.EOF instead of hanging forever. Safe to call at most once.
func (c *LoopConn) CloseIn() {
	defer func() { recover() }() // tolerate a racing double-close from test cleanup
	close(c.in)
}

func (c *LoopConn) ReadMessage() ([]byte, error) {
	frame, ok := <-c.in
	if !ok {
		return nil, io.EOF
	}
	return frame, nil
}

func (c *LoopConn) WriteMessage(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.out = append(c.out, b)
	return nil
}

func (c *LoopConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Writes returns a copy of every frame handed to WriteMessage so far.
func (c *LoopConn) Writes() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.out))
	copy(out, c.out)
	return out
}

// WriteCount returns the number of WriteMessage calls so far.
func (c *LoopConn) WriteCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.out)
}

// IsClosed reports whether Close has been called.
func (c *LoopConn) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// DecodedWrites decodes every recorded write as a wire batch, for tests
// that want to assert on message content rather than raw bytes.
func (c *LoopConn) DecodedWrites() ([][]wire.Message, error) {
	frames := c.Writes()
	out := make([][]wire.Message, 0, len(frames))
	for _, f := range frames {
		msgs, err := wire.DecodeBatch(f)
		if err != nil {
			return nil, err
		}
		out = append(out, msgs)
	}
	return out, nil
}

// PipeConn is a transport.Conn whose writes feed a peer PipeConn's reads,
// so a client.Mirror and a session.Server can talk to each other in the
// same process without a real socket.
type PipeConn struct {
	out  chan []byte
	in   chan []byte
	once sync.Once
}

// NewConnPair returns two connected PipeConns: a's writes arrive as b's
// reads, and b's writes arrive as a's reads.
func NewConnPair() (a, b *PipeConn) {
	ab := make(chan []byte, 8)
	ba := make(chan []byte, 8)
	a = &PipeConn{out: ab, in: ba}
	b = &PipeConn{out: ba, in: ab}
	return a, b
}

func (p *PipeConn) ReadMessage() ([]byte, error) {
	frame, ok := <-p.in
	if !ok {
		return nil, io.EOF
	}
	return frame, nil
}

func (p *PipeConn) WriteMessage(b []byte) error {
	p.out <- b
	return nil
}

// Close closes this end's outbound channel, unblocking the peer's pending
// ReadMessage with io.EOF. Safe to call more than once.
func (p *PipeConn) Close() error {
	p.once.Do(func() { close(p.out) })
	return nil
}
