package client_test

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/omochice/tcp-listener/internal/client"
)

// startMockServer accepts one connection at a time, reads once and
// replies with reply before closing. received gets what each read saw.
func startMockServer(t *testing.T, reply string) (string, <-chan string) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to start mock server: %v", err)
	}
	t.Cleanup(func() { listener.Close() })

	received := make(chan string, 10)
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			buf := make([]byte, 4096)
			n, _ := conn.Read(buf)
			received <- string(buf[:n])
			conn.Write([]byte(reply))
			conn.Close()
		}
	}()

	return listener.Addr().String(), received
}

func TestClient_Exchange(t *testing.T) {
	addr, received := startMockServer(t, "ok")

	c := client.New(addr, client.WithTimeout(5*time.Second))
	echo, err := c.Exchange(context.Background(), []byte("hello"))
	if err != nil {
		t.Fatalf("Exchange() error = %v", err)
	}
	if string(echo) != "ok" {
		t.Errorf("Exchange() = %q, want %q", echo, "ok")
	}
	if got := <-received; got != "hello" {
		t.Errorf("server received %q, want %q", got, "hello")
	}
	if c.IsConnected() {
		t.Error("client still connected after Exchange")
	}
}

func TestClient_ExchangeEmpty(t *testing.T) {
	addr, received := startMockServer(t, "")

	c := client.New(addr, client.WithTimeout(5*time.Second))
	echo, err := c.Exchange(context.Background(), nil)
	if err != nil {
		t.Fatalf("Exchange() error = %v", err)
	}
	if len(echo) != 0 {
		t.Errorf("Exchange() = %q, want empty", echo)
	}
	if got := <-received; got != "" {
		t.Errorf("server received %q, want nothing", got)
	}
}

func TestClient_KeepOpen(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to start mock server: %v", err)
	}
	defer listener.Close()

	// A half-closed client would make the second read return EOF at once.
	secondRead := make(chan error, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			secondRead <- err
			return
		}
		defer conn.Close()
		buf := make([]byte, 64)
		conn.Read(buf)
		conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		_, err = conn.Read(buf)
		secondRead <- err
		conn.Write([]byte("done"))
	}()

	c := client.New(listener.Addr().String(), client.KeepOpen(), client.WithTimeout(5*time.Second))
	echo, err := c.Exchange(context.Background(), []byte("ping"))
	if err != nil {
		t.Fatalf("Exchange() error = %v", err)
	}
	if string(echo) != "done" {
		t.Errorf("Exchange() = %q, want %q", echo, "done")
	}

	err = <-secondRead
	var netErr net.Error
	if !errors.As(err, &netErr) || !netErr.Timeout() {
		t.Errorf("second server read error = %v, want timeout", err)
	}
}

func TestClient_ReceiveCancelled(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to start mock server: %v", err)
	}
	defer listener.Close()

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		io.Copy(io.Discard, conn)
		time.Sleep(time.Second)
	}()

	c := client.New(listener.Addr().String())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := c.Exchange(ctx, []byte("x")); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Exchange() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestClient_NotConnected(t *testing.T) {
	c := client.New("127.0.0.1:1")
	if err := c.Send([]byte("x")); !errors.Is(err, client.ErrNotConnected) {
		t.Errorf("Send() error = %v, want ErrNotConnected", err)
	}
	if _, err := c.Receive(context.Background()); !errors.Is(err, client.ErrNotConnected) {
		t.Errorf("Receive() error = %v, want ErrNotConnected", err)
	}
}

func TestClient_ConnectFailure(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	addr := listener.Addr().String()
	listener.Close()

	c := client.New(addr)
	if err := c.Connect(context.Background()); err == nil {
		t.Error("Connect() expected error, got nil")
	}
	if c.IsConnected() {
		t.Error("IsConnected() = true after failed connect")
	}
}

func TestClient_ReconnectClosesPrevious(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to start mock server: %v", err)
	}
	defer listener.Close()

	firstClosed := make(chan error, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			firstClosed <- err
			return
		}
		defer conn.Close()
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, err = conn.Read(make([]byte, 1))
		firstClosed <- err

		second, err := listener.Accept()
		if err == nil {
			second.Close()
		}
	}()

	c := client.New(listener.Addr().String())
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("second Connect() error = %v", err)
	}
	defer c.Disconnect()

	if err := <-firstClosed; !errors.Is(err, io.EOF) {
		t.Errorf("first connection read error = %v, want io.EOF", err)
	}
	if !c.IsConnected() {
		t.Error("IsConnected() = false after reconnect")
	}
}
