package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexflint/go-arg"

	"github.com/omochice/tcp-listener/internal/client"
)

type args struct {
	Addr     string        `arg:"positional,required" help:"listener address, host:port"`
	Message  string        `arg:"-m,--message" default:"ping\n" help:"payload to send"`
	KeepOpen bool          `arg:"-k,--keep-open" help:"do not half-close after sending"`
	Timeout  time.Duration `arg:"-t,--timeout" default:"10s" help:"give up after this long"`
}

func (args) Description() string {
	return "Send one message to a listener and print the echo."
}

func main() {
	var a args
	arg.MustParse(&a)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []client.Option{client.WithTimeout(a.Timeout)}
	if a.KeepOpen {
		opts = append(opts, client.KeepOpen())
	}

	echo, err := client.New(a.Addr, opts...).Exchange(ctx, []byte(a.Message))
	if err != nil {
		fmt.Fprintln(os.Stderr, "probe:", err)
		os.Exit(1)
	}
	fmt.Printf("%q\n", echo)
}
