package receiver

import (
	"context"
	"errors"
	"iter"
)

var errStopped = errors.New("iteration stopped")

// Listen binds endpoint and returns the receiver's output as a sequence.
//
// Each element is either a chunk with a nil error, or a per-connection
// *ReadError / *WriteError with a zero Chunk. A fatal error (*ConfigError,
// *BindError) is yielded once and ends the sequence. The echo of a
// terminal chunk happens after the loop body for it has run. Breaking out
// of the loop closes the current connection without an echo and releases
// the listener; so does cancelling ctx, which ends the sequence cleanly.
func Listen(ctx context.Context, endpoint Endpoint, opts ...Option) iter.Seq2[Chunk, error] {
	return func(yield func(Chunk, error) bool) {
		r, err := New(endpoint, opts...)
		if err != nil {
			yield(Chunk{}, err)
			return
		}
		err = r.Serve(ctx, yieldHandler{yield: yield})
		if err != nil && !errors.Is(err, errStopped) {
			yield(Chunk{}, err)
		}
	}
}

type yieldHandler struct {
	yield func(Chunk, error) bool
}

func (h yieldHandler) HandleChunk(_ context.Context, c Chunk) error {
	if !h.yield(c, nil) {
		return errStopped
	}
	return nil
}

func (h yieldHandler) HandleError(_ context.Context, err error) error {
	if !h.yield(Chunk{}, err) {
		return errStopped
	}
	return nil
}
