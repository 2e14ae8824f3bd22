package receiver

//go:generate go tool mockgen -destination=./mocks/handler_mock.go -package=mocks . Handler

import (
	"context"
	"net"
)

// Chunk is one bounded read from a connection.
type Chunk struct {
	// Data holds the bytes of the read. It is owned by the consumer.
	Data []byte
	// Peer is the remote address of the connection.
	Peer net.Addr
	// Last is set on the terminal chunk, the first read shorter than the chunk size.
	Last bool
	// Seq is the position of the chunk within its connection, starting at 0.
	Seq int
	// ConnID identifies the connection in logs.
	ConnID string
}

// Handler consumes what the receiver produces.
//
// Calls are made synchronously from the receive loop. The echo of a
// terminal chunk is written only after HandleChunk has returned for it.
// A non-nil return from either method stops Serve, which returns that
// error; the current connection is closed without an echo.
type Handler interface {
	// HandleChunk is called once per read, in order.
	HandleChunk(ctx context.Context, c Chunk) error
	// HandleError is called with a *ReadError or *WriteError when a
	// connection fails. The receiver keeps accepting unless it returns an error.
	HandleError(ctx context.Context, err error) error
}

// Conn is one accepted client connection.
type Conn interface {
	// Read performs a single read of at most the chunk size.
	Read() ([]byte, error)
	Write(data []byte) error
	Close() error
	RemoteAddr() net.Addr
}
