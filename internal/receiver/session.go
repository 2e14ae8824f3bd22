package receiver

import (
	"context"
	"errors"
	"io"
	"net"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// session drives a single connection from the first read to the echo.
type session struct {
	id   string
	conn Conn
	peer net.Addr
	size int
	seq  int
	log  *zap.Logger
}

func newSession(conn Conn, size int, log *zap.Logger) *session {
	id := uuid.NewString()
	peer := conn.RemoteAddr()
	return &session{
		id:   id,
		conn: conn,
		peer: peer,
		size: size,
		log:  log.With(zap.String("conn_id", id), zap.String("peer", addrString(peer))),
	}
}

// run reads until a short read, emits every chunk, then echoes the
// terminal one. It returns only errors produced by the handler.
// Cancellation ends the session quietly and skips the echo.
func (s *session) run(ctx context.Context, h Handler) error {
	defer s.conn.Close()
	s.log.Debug("connection accepted")

	for {
		data, err := s.conn.Read()
		if ctx.Err() != nil {
			s.log.Debug("connection interrupted")
			return nil
		}
		if err != nil && !errors.Is(err, io.EOF) {
			s.log.Warn("read failed", zap.Error(err))
			return h.HandleError(ctx, &ReadError{ConnID: s.id, Peer: s.peer, Err: err})
		}

		// A full read that also saw EOF is not short; the close itself
		// becomes an empty terminal chunk.
		if err != nil && len(data) == s.size {
			if herr := s.emit(ctx, h, data, false); herr != nil {
				return herr
			}
			data = data[:0:0]
		}

		last := len(data) < s.size
		if herr := s.emit(ctx, h, data, last); herr != nil {
			return herr
		}
		if last {
			return s.echo(ctx, h, data)
		}
	}
}

func (s *session) emit(ctx context.Context, h Handler, data []byte, last bool) error {
	c := Chunk{
		Data:   data,
		Peer:   s.peer,
		Last:   last,
		Seq:    s.seq,
		ConnID: s.id,
	}
	s.seq++
	s.log.Debug("chunk received", zap.Int("seq", c.Seq), zap.Int("bytes", len(data)), zap.Bool("last", last))
	return h.HandleChunk(ctx, c)
}

// echo is skipped when ctx is already done. A write cut short by Close
// may have delivered a prefix of data.
func (s *session) echo(ctx context.Context, h Handler, data []byte) error {
	if ctx.Err() != nil {
		return nil
	}
	if err := s.conn.Write(data); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		s.log.Warn("echo failed", zap.Error(err))
		return h.HandleError(ctx, &WriteError{ConnID: s.id, Peer: s.peer, Err: err})
	}
	s.log.Debug("terminal chunk echoed", zap.Int("bytes", len(data)))
	return nil
}
