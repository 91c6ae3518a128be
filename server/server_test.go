package server

import (
	"context"
	"io"
	"net"
	"strings"
	"testing"
	"time"
)

func startTestServer(t *testing.T, conf Config) string {
	t.Helper()
	conf.Directory = t.TempDir()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ServeOn(ctx, conf, listener) }()

	t.Cleanup(func() {
		cancel()
		<-done
	})

	return listener.Addr().String()
}

func dial(t *testing.T, addr, request string) string {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(request)); err != nil {
		t.Fatal(err)
	}
	if c, ok := conn.(*net.TCPConn); ok {
		c.CloseWrite()
	}

	response, err := io.ReadAll(conn)
	if err != nil {
		t.Fatal(err)
	}
	return string(response)
}

func TestServeEndToEndSelect(t *testing.T) {
	addr := startTestServer(t, Config{Port: 0})
	got := dial(t, addr, "name <- name, id : 'Alice', 1, 'Bob', 2")
	want := "name : 'Alice', 'Bob'"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestServePersistsTopLevelBindings(t *testing.T) {
	addr := startTestServer(t, Config{Port: 0})

	first := dial(t, addr, "x = 42; x")
	if first != "42" {
		t.Fatalf("first response = %q, want 42", first)
	}

	second := dial(t, addr, "x")
	if second != "42" {
		t.Fatalf("second connection should see persisted x, got %q", second)
	}
}

func TestServeConcurrentConnectionsMakeIndependentProgress(t *testing.T) {
	addr := startTestServer(t, Config{Port: 0})

	results := make(chan string, 2)
	go func() { results <- dial(t, addr, "1") }()
	go func() { results <- dial(t, addr, "2") }()

	want := map[string]bool{"1": true, "2": true}
	timeout := time.After(5 * time.Second)
	for i := 0; i < 2; i++ {
		select {
		case got := <-results:
			if !want[got] {
				t.Fatalf("got %q, want one of 1 or 2", got)
			}
			delete(want, got)
		case <-timeout:
			t.Fatal("timed out waiting for concurrent connections")
		}
	}
}

func TestServeSyntaxErrorDoesNotCrashServer(t *testing.T) {
	addr := startTestServer(t, Config{Port: 0})
	dial(t, addr, "'unterminated")
	got := dial(t, addr, "1")
	if got != "1" {
		t.Fatalf("server should keep serving after a bad request, got %q", got)
	}
}

func TestServeWritesErrorMessageToClient(t *testing.T) {
	addr := startTestServer(t, Config{Port: 0})
	got := dial(t, addr, "'unterminated")
	if !strings.HasPrefix(got, "Error ") {
		t.Fatalf("got %q, want a response prefixed with %q", got, "Error ")
	}
}

func TestServeUndefinedVariableWritesErrorMessageToClient(t *testing.T) {
	addr := startTestServer(t, Config{Port: 0})
	got := dial(t, addr, "doesNotExist")
	if !strings.HasPrefix(got, "Error ") {
		t.Fatalf("got %q, want a response prefixed with %q", got, "Error ")
	}
}
