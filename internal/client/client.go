// Package client is the thin outbound counterpart to server: it dials
// a running DRD server, writes a request, half-closes the connection,
// and reads the response to EOF.
package client

import (
	"context"
	"fmt"
	"io"
	"net"
)

// Run sends text to a server listening at addr and returns its
// response. The write side is closed immediately after the request is
// sent, matching the protocol server.respond expects: one expression,
// then EOF.
func Run(ctx context.Context, text, addr string) (string, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return "", fmt.Errorf("client: dial %s: %w", addr, err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(text)); err != nil {
		return "", fmt.Errorf("client: write request: %w", err)
	}
	if tcp, ok := conn.(*net.TCPConn); ok {
		if err := tcp.CloseWrite(); err != nil {
			return "", fmt.Errorf("client: half-close: %w", err)
		}
	}

	response, err := io.ReadAll(conn)
	if err != nil {
		return "", fmt.Errorf("client: read response: %w", err)
	}
	return string(response), nil
}
