package client

import (
	"context"
	"io"
	"net"
	"testing"
)

func TestRunSendsRequestAndReadsResponse(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer listener.Close()

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		received, _ := io.ReadAll(conn)
		if string(received) != "1" {
			return
		}
		conn.Write([]byte("echo:1"))
	}()

	got, err := Run(context.Background(), "1", listener.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	if got != "echo:1" {
		t.Fatalf("got %q, want echo:1", got)
	}
}

func TestRunDialFailure(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := listener.Addr().String()
	listener.Close()

	_, err = Run(context.Background(), "1", addr)
	if err == nil {
		t.Fatal("expected dial error against closed listener")
	}
}
