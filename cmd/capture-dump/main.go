package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alexflint/go-arg"

	"github.com/omochice/tcp-listener/pkg/capture"
)

type args struct {
	File   string `arg:"positional,required" help:"capture file written by listener --capture"`
	Pretty bool   `arg:"--pretty" help:"print data as text instead of a quoted byte string"`
}

func (args) Description() string {
	return "Print the records of a capture file, one per line."
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(argv []string, stdout, stderr io.Writer) int {
	var a args
	p, err := arg.NewParser(arg.Config{Program: "capture-dump"}, &a)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if err := p.Parse(argv); err != nil {
		if errors.Is(err, arg.ErrHelp) {
			p.WriteHelp(stdout)
			return 0
		}
		p.WriteUsage(stderr)
		fmt.Fprintln(stderr, "error:", err)
		return 2
	}

	f, err := os.Open(a.File)
	if err != nil {
		fmt.Fprintln(stderr, "capture-dump:", err)
		return 1
	}
	defer f.Close()

	r := capture.NewReader(f)
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return 0
		}
		if err != nil {
			fmt.Fprintln(stderr, "capture-dump:", err)
			return 1
		}
		fmt.Fprintln(stdout, formatRecord(rec, a.Pretty))
	}
}

func formatRecord(rec capture.Record, pretty bool) string {
	at := "-"
	if !rec.ReceivedAt.IsZero() {
		at = rec.ReceivedAt.UTC().Format(time.RFC3339Nano)
	}
	data := fmt.Sprintf("%q", rec.Data)
	if pretty {
		data = string(rec.Data)
	}
	return fmt.Sprintf("%s conn=%s seq=%d last=%t peer=%s %s", at, rec.ConnID, rec.Seq, rec.Last, rec.Peer, data)
}
