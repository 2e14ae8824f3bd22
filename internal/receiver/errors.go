package receiver

import (
	"errors"
	"fmt"
	"net"
)

// Sentinels matched with errors.Is against the typed errors below.
var (
	ErrConfig = errors.New("invalid configuration")
	ErrBind   = errors.New("bind failed")
	ErrRead   = errors.New("read failed")
	ErrWrite  = errors.New("write failed")

	// ErrClosed is returned by Bind and Serve once the receiver has been closed.
	ErrClosed = errors.New("receiver closed")
)

// ConfigError reports an endpoint that cannot be bound as configured.
// It is fatal.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// BindError reports that the listening socket could not be created.
// It is fatal; the receiver never retries a bind.
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("failed to bind %s: %v", e.Addr, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

func (e *BindError) Is(target error) bool { return target == ErrBind }

// ReadError reports a failed read on one connection. The connection is
// abandoned without an echo and the receiver resumes accepting.
type ReadError struct {
	ConnID string
	Peer   net.Addr
	Err    error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read from %s (conn %s): %v", addrString(e.Peer), e.ConnID, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

func (e *ReadError) Is(target error) bool { return target == ErrRead }

// WriteError reports a failed echo on one connection. The receiver
// resumes accepting.
type WriteError struct {
	ConnID string
	Peer   net.Addr
	Err    error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to echo to %s (conn %s): %v", addrString(e.Peer), e.ConnID, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

func (e *WriteError) Is(target error) bool { return target == ErrWrite }

func addrString(addr net.Addr) string {
	if addr == nil {
		return "unknown peer"
	}
	return addr.String()
}
