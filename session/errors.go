package session

import "fmt"

// ProtocolError reports a violation of the wire protocol: a malformed
// frame, a message sent out of turn (e.g. MethodInvoke before
// Introduction), or a missed handshake deadline. The connection is
// always closed after one is returned.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error: %s", e.Reason)
}

// TransportError wraps a failure from the underlying transport.Conn
// (read/write/close), distinguishing "the peer misbehaved" from "the
// network went away."
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
