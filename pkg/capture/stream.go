package capture

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sync"

	"google.golang.org/protobuf/encoding/protodelim"
	"google.golang.org/protobuf/types/dynamicpb"
)

// Writer appends records to a stream, each prefixed with its varint length.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter returns a Writer that appends to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write appends one record.
func (w *Writer) Write(r Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := protodelim.MarshalTo(w.w, r.toProto()); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

// Reader reads records written by Writer.
type Reader struct {
	r *bufio.Reader
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Read returns the next record, or io.EOF at the end of the stream.
func (r *Reader) Read() (Record, error) {
	msg := dynamicpb.NewMessage(recordDescriptor())
	if err := protodelim.UnmarshalFrom(r.r, msg); err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		return Record{}, fmt.Errorf("failed to read record: %w", err)
	}

	var rec Record
	rec.fromProto(msg)
	return rec, nil
}

// ReadAll reads records until the end of the stream.
func ReadAll(r io.Reader) ([]Record, error) {
	reader := NewReader(r)
	var records []Record
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
}
