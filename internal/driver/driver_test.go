package driver_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/omochice/tcp-listener/internal/driver"
	"github.com/omochice/tcp-listener/internal/receiver"
	"github.com/omochice/tcp-listener/pkg/capture"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func feed(t *testing.T, d *driver.Driver, chunks ...receiver.Chunk) {
	t.Helper()
	for _, c := range chunks {
		if err := d.HandleChunk(context.Background(), c); err != nil {
			t.Fatalf("HandleChunk() error = %v", err)
		}
	}
}

func TestDriver_WritesEveryOutput(t *testing.T) {
	var stdout, logfile bytes.Buffer
	d := driver.New(driver.Config{Stdout: &stdout, LogFile: &logfile, Pretty: true})

	feed(t, d,
		receiver.Chunk{Data: []byte("abcd"), Peer: peer, Seq: 0},
		receiver.Chunk{Data: []byte("ef"), Peer: peer, Seq: 1, Last: true},
		receiver.Chunk{Data: []byte("xy"), Peer: peer, Seq: 0, Last: true},
	)

	want := "[10.0.0.7] abcdef\n[10.0.0.7] xy\n"
	if stdout.String() != want {
		t.Errorf("stdout = %q, want %q", stdout.String(), want)
	}
	if logfile.String() != want {
		t.Errorf("logfile = %q, want %q", logfile.String(), want)
	}
}

func TestDriver_Quiet(t *testing.T) {
	var logfile bytes.Buffer
	d := driver.New(driver.Config{LogFile: &logfile})

	feed(t, d, receiver.Chunk{Data: []byte("ab"), Peer: peer, Last: true})

	if logfile.String() != "[10.0.0.7] \"ab\"\n" {
		t.Errorf("logfile = %q", logfile.String())
	}
}

func TestDriver_OutputFailure(t *testing.T) {
	d := driver.New(driver.Config{Stdout: failingWriter{}})

	err := d.HandleChunk(context.Background(), receiver.Chunk{Data: []byte("ab"), Peer: peer, Last: true})
	if err == nil {
		t.Fatal("HandleChunk() expected error, got nil")
	}
}

func TestDriver_HandleError(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	var stdout bytes.Buffer
	d := driver.New(driver.Config{Stdout: &stdout, Pretty: true, Logger: zap.New(core)})

	feed(t, d, receiver.Chunk{Data: []byte("abcd"), Peer: peer})

	readErr := &receiver.ReadError{ConnID: "c1", Peer: peer, Err: errors.New("connection reset by peer")}
	if err := d.HandleError(context.Background(), readErr); err != nil {
		t.Fatalf("HandleError() error = %v", err)
	}
	if err := d.HandleError(context.Background(), readErr); err != nil {
		t.Fatalf("HandleError() error = %v", err)
	}

	if stdout.String() != "[10.0.0.7] abcd\n" {
		t.Errorf("stdout = %q, want the open line terminated once", stdout.String())
	}
	if n := logs.FilterMessage("connection failed").Len(); n != 2 {
		t.Errorf("logged %d failures, want 2", n)
	}
}

func TestDriver_Capture(t *testing.T) {
	var buf bytes.Buffer
	d := driver.New(driver.Config{Capture: capture.NewWriter(&buf)})

	feed(t, d,
		receiver.Chunk{Data: []byte("abcd"), Peer: peer, Seq: 0, ConnID: "c1"},
		receiver.Chunk{Data: []byte{}, Peer: peer, Seq: 1, Last: true, ConnID: "c1"},
	)

	records, err := capture.ReadAll(&buf)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("captured %d records, want 2", len(records))
	}
	if string(records[0].Data) != "abcd" || records[0].Last {
		t.Errorf("record 0 = %+v", records[0])
	}
	if len(records[1].Data) != 0 || !records[1].Last || records[1].Seq != 1 {
		t.Errorf("record 1 = %+v", records[1])
	}
	for _, r := range records {
		if r.ConnID != "c1" || r.Peer != "10.0.0.7:51000" {
			t.Errorf("record = %+v, want conn c1 from 10.0.0.7:51000", r)
		}
		if r.ReceivedAt.IsZero() {
			t.Error("ReceivedAt not set")
		}
	}
}
