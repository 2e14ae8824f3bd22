// Package tcp provides the TCP transport used by the receiver.
package tcp

import (
	"net"
)

// DefaultReadSize is used when a Conn is created without a positive read size.
const DefaultReadSize = 4096

// Conn adapts net.Conn to fixed-size chunk reads.
type Conn struct {
	conn net.Conn
	size int
}

// NewConn wraps a net.Conn. Each Read returns at most size bytes.
func NewConn(conn net.Conn, size int) *Conn {
	if size <= 0 {
		size = DefaultReadSize
	}
	return &Conn{conn: conn, size: size}
}

// Read performs a single read of up to the configured size.
// The returned slice is freshly allocated and owned by the caller.
// On an orderly close it returns an empty slice and io.EOF.
func (c *Conn) Read() ([]byte, error) {
	buf := make([]byte, c.size)
	n, err := c.conn.Read(buf)
	return buf[:n], err
}

// Write sends data in full.
func (c *Conn) Write(data []byte) error {
	_, err := c.conn.Write(data)
	return err
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
