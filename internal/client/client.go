// Package client provides a TCP client for probing the listener.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"
)

// ErrNotConnected is returned when sending or receiving without a connection.
var ErrNotConnected = errors.New("not connected to server")

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds every exchange. Zero means no deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// KeepOpen leaves the write side open after sending, so the listener
// only sees the end of the message through a short read.
func KeepOpen() Option {
	return func(c *Client) {
		c.keepOpen = true
	}
}

// Client sends one message per connection and collects the echo.
type Client struct {
	address  string
	timeout  time.Duration
	keepOpen bool

	mu   sync.RWMutex
	conn net.Conn
}

// New creates a new Client instance
func New(address string, opts ...Option) *Client {
	c := &Client{address: address}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect establishes a connection to the listener, closing any
// connection it already had.
func (c *Client) Connect(ctx context.Context) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.address)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	if c.timeout > 0 {
		conn.SetDeadline(time.Now().Add(c.timeout))
	}

	c.mu.Lock()
	if c.conn != nil {
		c.conn.Close()
	}
	c.conn = conn
	c.mu.Unlock()
	return nil
}

// Disconnect closes the connection to the listener
func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// IsConnected returns whether the client is connected
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn != nil
}

// Send writes payload and, unless KeepOpen was given, half-closes the
// connection to mark the end of the message.
func (c *Client) Send(payload []byte) error {
	conn, err := c.current()
	if err != nil {
		return err
	}

	if len(payload) > 0 {
		if _, err := conn.Write(payload); err != nil {
			return fmt.Errorf("failed to send message: %w", err)
		}
	}
	if c.keepOpen {
		return nil
	}
	if tcp, ok := conn.(*net.TCPConn); ok {
		if err := tcp.CloseWrite(); err != nil {
			return fmt.Errorf("failed to close write side: %w", err)
		}
	}
	return nil
}

// Receive reads until the listener closes the connection and returns
// everything it sent.
func (c *Client) Receive(ctx context.Context) ([]byte, error) {
	conn, err := c.current()
	if err != nil {
		return nil, err
	}

	stop := context.AfterFunc(ctx, func() {
		conn.SetReadDeadline(time.Now())
	})
	defer stop()

	echo, err := io.ReadAll(conn)
	if err != nil {
		if ctx.Err() != nil {
			return echo, ctx.Err()
		}
		return echo, fmt.Errorf("failed to read echo: %w", err)
	}
	return echo, nil
}

// Exchange connects, sends payload, waits for the echo and disconnects.
func (c *Client) Exchange(ctx context.Context, payload []byte) ([]byte, error) {
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}
	defer c.Disconnect()

	if err := c.Send(payload); err != nil {
		return nil, err
	}
	return c.Receive(ctx)
}

func (c *Client) current() (net.Conn, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.conn == nil {
		return nil, ErrNotConnected
	}
	return c.conn, nil
}
