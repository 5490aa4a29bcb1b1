// Package signal is the Go side of the TCP rendezvous used by generated
// scripts: a sender connects and writes one line, a waiter accepts one
// connection and reads it.
package signal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"
)

// Payload is the line a sender writes.
const Payload = "signal\n"

// Send connects to host:port and writes the signal line.
func Send(ctx context.Context, host string, port int) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return fmt.Errorf("signal: dial: %w", err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
	}
	if _, err := conn.Write([]byte(Payload)); err != nil {
		return fmt.Errorf("signal: send: %w", err)
	}
	return nil
}

// Listener waits for signals on one port.
type Listener struct {
	ln net.Listener
}

// Listen binds port on all interfaces. Port 0 picks a free port.
func Listen(port int) (*Listener, error) {
	ln, err := net.Listen("tcp", ":"+strconv.Itoa(port))
	if err != nil {
		return nil, fmt.Errorf("signal: listen: %w", err)
	}
	return &Listener{ln: ln}, nil
}

// Port is the bound port.
func (l *Listener) Port() int {
	return l.ln.Addr().(*net.TCPAddr).Port
}

// Close stops listening.
func (l *Listener) Close() error {
	return l.ln.Close()
}

// Accept blocks until one sender connects and its line is read, or ctx ends.
// It returns the peer address.
func (l *Listener) Accept(ctx context.Context) (string, error) {
	type accepted struct {
		conn net.Conn
		err  error
	}
	ch := make(chan accepted, 1)
	go func() {
		c, err := l.ln.Accept()
		ch <- accepted{c, err}
	}()

	var a accepted
	select {
	case <-ctx.Done():
		l.ln.Close()
		if a := <-ch; a.conn != nil {
			a.conn.Close()
		}
		return "", ctx.Err()
	case a = <-ch:
	}
	if a.err != nil {
		return "", fmt.Errorf("signal: accept: %w", a.err)
	}
	defer a.conn.Close()

	_ = a.conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	// A sender that closes without a full line still counts.
	if _, err := bufio.NewReader(a.conn).ReadString('\n'); err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("signal: read: %w", err)
	}
	return a.conn.RemoteAddr().String(), nil
}

// Wait listens on port until one signal arrives.
func Wait(ctx context.Context, port int) (string, error) {
	l, err := Listen(port)
	if err != nil {
		return "", err
	}
	defer l.Close()
	return l.Accept(ctx)
}
