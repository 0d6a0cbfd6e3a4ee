// Package session implements the server-side session state machine:
// per-connection handshake, catch-up, and the dispatch loop (spec.md §4.5).
package session

import (
	"fmt"
	"time"
)

// ServerOptions mirrors spec.md §6's configuration block exactly, built
// the way coreengine/config builds its config structs: a Default
// constructor, a Validate method, and functional options layered on top.
type ServerOptions struct {
	ListenPort           uint16
	AssetPort            uint16
	HandshakeTimeoutSecs uint32
}

// DefaultServerOptions returns spec.md §6's defaults (handshake 30s;
// ports are 0/"unset" until an option or flag supplies one).
func DefaultServerOptions() *ServerOptions {
	return &ServerOptions{
		HandshakeTimeoutSecs: 30,
	}
}

// Validate checks the required fields and returns the first failing one.
func (o *ServerOptions) Validate() error {
	if o.ListenPort == 0 {
		return fmt.Errorf("ServerOptions.ListenPort is required")
	}
	if o.HandshakeTimeoutSecs == 0 {
		return fmt.Errorf("ServerOptions.HandshakeTimeoutSecs must be > 0")
	}
	return nil
}

// HandshakeTimeout returns the configured timeout as a time.Duration.
func (o *ServerOptions) HandshakeTimeout() time.Duration {
	return time.Duration(o.HandshakeTimeoutSecs) * time.Second
}

// Option is a functional option over ServerOptions, mirroring
// coreengine/envelope's InterruptOption shape.
type Option func(*ServerOptions)

func WithListenPort(p uint16) Option { return func(o *ServerOptions) { o.ListenPort = p } }
func WithAssetPort(p uint16) Option  { return func(o *ServerOptions) { o.AssetPort = p } }
func WithHandshakeTimeout(secs uint32) Option {
	return func(o *ServerOptions) { o.HandshakeTimeoutSecs = secs }
}

// NewServerOptions applies opts onto the defaults.
func NewServerOptions(opts ...Option) *ServerOptions {
	o := DefaultServerOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}
