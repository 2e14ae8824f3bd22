// Package receiver owns the listening socket and the accept, read and
// echo loop. Connections are served strictly one at a time.
package receiver

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/omochice/tcp-listener/internal/transport/tcp"
)

const maxAcceptDelay = time.Second

// listener is the accept side of the transport.
type listener interface {
	Accept() (Conn, error)
	Addr() net.Addr
	Close() error
}

type tcpListener struct {
	*tcp.Listener
}

func (l tcpListener) Accept() (Conn, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Option configures a Receiver.
type Option func(*Receiver)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(r *Receiver) {
		if log != nil {
			r.log = log
		}
	}
}

// OnBind registers fn to be called with the bound address once the
// listening socket exists.
func OnBind(fn func(addr net.Addr)) Option {
	return func(r *Receiver) {
		r.onBind = fn
	}
}

// Receiver accepts one connection at a time, reads it in chunks until a
// short read, hands every chunk to a Handler and echoes the terminal
// chunk back to the peer.
type Receiver struct {
	endpoint Endpoint
	log      *zap.Logger
	onBind   func(net.Addr)

	mu       sync.Mutex
	listener listener
	live     Conn
	cancel   context.CancelFunc
	closed   bool
	accepted int
}

// New validates the endpoint and returns an unbound Receiver.
func New(endpoint Endpoint, opts ...Option) (*Receiver, error) {
	if err := endpoint.Validate(); err != nil {
		return nil, err
	}
	r := &Receiver{
		endpoint: endpoint,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Endpoint returns the endpoint the receiver was created with.
func (r *Receiver) Endpoint() Endpoint {
	return r.endpoint
}

// Bind creates the listening socket. It is a no-op when already bound.
// Failures are reported as *BindError.
func (r *Receiver) Bind() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	if r.listener != nil {
		r.mu.Unlock()
		return nil
	}

	ln, err := tcp.Listen(r.endpoint.Address(), r.endpoint.ChunkSize)
	if err != nil {
		r.mu.Unlock()
		return &BindError{Addr: r.endpoint.Address(), Err: err}
	}
	r.listener = tcpListener{ln}
	r.mu.Unlock()

	r.log.Info("listening", zap.Stringer("addr", ln.Addr()), zap.Int("chunk_size", r.endpoint.ChunkSize))
	if r.onBind != nil {
		r.onBind(ln.Addr())
	}
	return nil
}

// Addr returns the bound address, or nil before Bind.
func (r *Receiver) Addr() net.Addr {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listener == nil {
		return nil
	}
	return r.listener.Addr()
}

// Accepted returns the number of connections accepted so far.
func (r *Receiver) Accepted() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.accepted
}

// Serve binds if needed and runs the accept loop until ctx is cancelled,
// Close is called, or the handler returns an error. Cancellation is a
// clean shutdown and yields nil. The listening socket is released before
// Serve returns and the receiver cannot be served again.
func (r *Receiver) Serve(ctx context.Context, h Handler) error {
	if err := r.Bind(); err != nil {
		return err
	}
	defer r.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.cancel = cancel
	ln := r.listener
	r.mu.Unlock()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return r.acceptLoop(ctx, ln, h)
	})
	// The watcher unblocks Accept, Read and Write on shutdown.
	g.Go(func() error {
		<-ctx.Done()
		if err := r.Close(); err != nil {
			r.log.Warn("failed to close listener", zap.Error(err))
		}
		return nil
	})
	return g.Wait()
}

func (r *Receiver) acceptLoop(ctx context.Context, ln listener, h Handler) error {
	var delay time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				r.log.Info("listener stopped")
				return nil
			}
			if delay == 0 {
				delay = 5 * time.Millisecond
			} else {
				delay = min(delay*2, maxAcceptDelay)
			}
			// Transient accept errors are logged and retried, never
			// reported to the handler.
			r.log.Warn("accept failed", zap.Error(err), zap.Duration("retry_in", delay))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(delay):
			}
			continue
		}
		delay = 0

		if err := r.serveConn(ctx, conn, h); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (r *Receiver) serveConn(ctx context.Context, conn Conn, h Handler) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		conn.Close()
		return nil
	}
	r.live = conn
	r.accepted++
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.live = nil
		r.mu.Unlock()
	}()

	return newSession(conn, r.endpoint.ChunkSize, r.log).run(ctx, h)
}

// Close stops Serve, closes the live connection without echoing and
// releases the listening socket. It is safe to call more than once.
func (r *Receiver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	if r.cancel != nil {
		r.cancel()
	}
	if r.live != nil {
		r.live.Close()
	}
	if r.listener != nil {
		return r.listener.Close()
	}
	return nil
}
