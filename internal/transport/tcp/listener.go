package tcp

import (
	"fmt"
	"net"
	"sync"
)

// Listener accepts TCP connections and hands them out as chunked Conns.
type Listener struct {
	listener net.Listener
	size     int
	once     sync.Once
	closeErr error
}

// Listen binds address and starts listening.
func Listen(address string, size int) (*Listener, error) {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to start TCP listener: %w", err)
	}
	return &Listener{listener: listener, size: size}, nil
}

// Accept blocks until a client connects. After Close it returns an
// error matching net.ErrClosed.
func (l *Listener) Accept() (*Conn, error) {
	conn, err := l.listener.Accept()
	if err != nil {
		return nil, err
	}
	return NewConn(conn, l.size), nil
}

// Close releases the listening socket. It is safe to call more than once.
func (l *Listener) Close() error {
	l.once.Do(func() {
		l.closeErr = l.listener.Close()
	})
	return l.closeErr
}

// Addr returns the listening address.
func (l *Listener) Addr() net.Addr {
	return l.listener.Addr()
}
