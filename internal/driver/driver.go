// Package driver consumes the receiver's chunks: it prints them, appends
// them to a log file and optionally records them in a capture stream.
package driver

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/omochice/tcp-listener/internal/receiver"
	"github.com/omochice/tcp-listener/pkg/capture"
)

// Config holds the driver's collaborators. Nil writers are skipped.
type Config struct {
	Stdout  io.Writer
	LogFile io.Writer
	Capture *capture.Writer
	Pretty  bool
	Logger  *zap.Logger
}

// Driver implements receiver.Handler.
type Driver struct {
	outputs []io.Writer
	capture *capture.Writer
	pretty  bool
	log     *zap.Logger
	now     func() time.Time

	// open is set while a connection's line has been started but not ended.
	open bool
}

var _ receiver.Handler = (*Driver)(nil)

// New creates a Driver.
func New(cfg Config) *Driver {
	d := &Driver{
		capture: cfg.Capture,
		pretty:  cfg.Pretty,
		log:     cfg.Logger,
		now:     time.Now,
	}
	if d.log == nil {
		d.log = zap.NewNop()
	}
	for _, w := range []io.Writer{cfg.Stdout, cfg.LogFile} {
		if w != nil {
			d.outputs = append(d.outputs, w)
		}
	}
	return d
}

// HandleChunk writes the formatted chunk to every output and the capture.
// Output failures are returned and stop the receiver.
func (d *Driver) HandleChunk(_ context.Context, c receiver.Chunk) error {
	if err := d.write(Format(c, d.pretty)); err != nil {
		return err
	}
	d.open = !c.Last

	if d.capture != nil {
		rec := capture.Record{
			ConnID:     c.ConnID,
			Seq:        c.Seq,
			Peer:       peerString(c),
			Data:       c.Data,
			Last:       c.Last,
			ReceivedAt: d.now(),
		}
		if err := d.capture.Write(rec); err != nil {
			return fmt.Errorf("failed to capture chunk: %w", err)
		}
	}
	return nil
}

// HandleError logs a failed connection and ends its unfinished line.
func (d *Driver) HandleError(_ context.Context, err error) error {
	d.log.Warn("connection failed", zap.Error(err))
	if d.open {
		d.open = false
		return d.write("\n")
	}
	return nil
}

func (d *Driver) write(s string) error {
	for _, w := range d.outputs {
		if _, err := io.WriteString(w, s); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func peerString(c receiver.Chunk) string {
	if c.Peer == nil {
		return ""
	}
	return c.Peer.String()
}
