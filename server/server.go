// Package server runs the DRD TCP server: one expression per
// connection, evaluated against the persisted store, response written
// back and the connection closed.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/k0kubun/pp/v3"

	"github.com/willmcpherson2/drd/analysis"
	"github.com/willmcpherson2/drd/eval"
	"github.com/willmcpherson2/drd/exp"
	"github.com/willmcpherson2/drd/parser"
	"github.com/willmcpherson2/drd/printer"
	"github.com/willmcpherson2/drd/store"
	"github.com/willmcpherson2/drd/util"
)

// Config is the server's runtime configuration, assembled by
// cmd/drd from CLI flags and an optional YAML file.
type Config struct {
	Directory string
	Port      int
	// Timeout bounds how long a connection may take to send its full
	// request. Zero disables the timeout.
	Timeout time.Duration
	Verbose bool
	// Concurrency bounds how many files store.Load reads at once per
	// request. Zero means unbounded.
	Concurrency int
}

// Serve binds Config.Port and accepts connections until ctx is
// cancelled or the listener fails. The store directory is created if
// it does not already exist.
func Serve(ctx context.Context, conf Config) error {
	addr := fmt.Sprintf("127.0.0.1:%d", conf.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", addr, err)
	}
	defer listener.Close()

	slog.Info("server listening", "addr", listener.Addr().String(), "directory", conf.Directory)

	return ServeOn(ctx, conf, listener)
}

// ServeOn runs the accept loop on an already-bound listener. Splitting
// this out from Serve lets tests bind an ephemeral port and dial it
// without racing the OS port allocator.
func ServeOn(ctx context.Context, conf Config, listener net.Listener) error {
	s, err := store.New(conf.Directory)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("server: accept: %w", err)
		}
		go handleConnection(conn, s, conf)
	}
}

func handleConnection(conn net.Conn, s store.Store, conf Config) {
	defer conn.Close()

	reqID := uuid.New().String()
	log := slog.With("request", reqID)

	if err := respond(conn, s, conf, log); err != nil {
		log.Error("error handling connection", "error", err)
		fmt.Fprintf(conn, "Error %s", err)
	}
}

func respond(conn net.Conn, s store.Store, conf Config, log *slog.Logger) error {
	if conf.Timeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(conf.Timeout)); err != nil {
			return fmt.Errorf("set read deadline: %w", err)
		}
	}

	text, err := io.ReadAll(conn)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read request: %w", err)
	}

	parsed, err := parser.Parse(string(text))
	if err != nil {
		return fmt.Errorf("parse request: %w", err)
	}

	existing, err := s.Names()
	if err != nil {
		return fmt.Errorf("list store: %w", err)
	}

	reads := analysis.Intersect(analysis.FreeReads(parsed), existing)
	env, err := s.Load(context.Background(), reads, conf.Concurrency)
	if err != nil {
		return fmt.Errorf("load reads: %w", err)
	}

	result, resultEnv, err := eval.Eval(parsed, env)
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}

	writes := analysis.TopWrites(parsed)
	if err := s.Save(context.Background(), resultEnv, writes); err != nil {
		return fmt.Errorf("persist writes: %w", err)
	}

	response := printer.Print(result)
	if _, err := conn.Write([]byte(response)); err != nil {
		return fmt.Errorf("write response: %w", err)
	}

	logRequest(log, conf, parsed, result, reads, writes)
	return nil
}

func logRequest(log *slog.Logger, conf Config, parsed, result exp.Exp, reads, writes map[string]struct{}) {
	if !conf.Verbose {
		return
	}
	log.Debug("request",
		"input", printer.Print(parsed),
		"result", printer.Print(result),
		"reads", sortedKeys(reads),
		"writes", sortedKeys(writes),
	)
	fmt.Println(pp.Sprint(parsed))
	fmt.Println(pp.Sprint(result))
}

// sortedKeys returns m's keys in deterministic, sorted order so
// verbose logs read the same way across runs regardless of Go's
// randomised map iteration.
func sortedKeys(m map[string]struct{}) []string {
	names := make([]string, 0, len(m))
	for name := range util.CanonicalMapIter(m) {
		names = append(names, name)
	}
	return names
}
