// Package udp implements ports.Transport over a pair of UDP endpoints:
// a local socket the Host sends to and the Host address the IG replies to.
package udp

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/aretw0/igkernel/pkg/ports"
)

// DefaultPollTimeout bounds how long Recv waits for a datagram.
const DefaultPollTimeout = time.Millisecond

// Transport is a connectionless CIGI transport.
type Transport struct {
	conn        *net.UDPConn
	remote      *net.UDPAddr
	pollTimeout time.Duration
}

// Option configures a Transport.
type Option func(*Transport)

// WithPollTimeout sets how long Recv may wait before reporting ports.ErrNoData.
func WithPollTimeout(d time.Duration) Option {
	return func(t *Transport) {
		t.pollTimeout = d
	}
}

// Open binds the local listen address and resolves the Host address.
func Open(listenAddr string, listenPort int, hostAddr string, hostPort int, opts ...Option) (*Transport, error) {
	local, err := net.ResolveUDPAddr("udp", net.JoinHostPort(listenAddr, fmt.Sprint(listenPort)))
	if err != nil {
		return nil, fmt.Errorf("resolve listen address: %w", err)
	}
	remote, err := net.ResolveUDPAddr("udp", net.JoinHostPort(hostAddr, fmt.Sprint(hostPort)))
	if err != nil {
		return nil, fmt.Errorf("resolve host address: %w", err)
	}
	conn, err := net.ListenUDP("udp", local)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", local, err)
	}

	t := &Transport{
		conn:        conn,
		remote:      remote,
		pollTimeout: DefaultPollTimeout,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// LocalAddr returns the bound socket address.
func (t *Transport) LocalAddr() *net.UDPAddr {
	return t.conn.LocalAddr().(*net.UDPAddr)
}

// Recv reads one datagram, waiting at most the poll timeout.
func (t *Transport) Recv(buf []byte) (int, error) {
	if err := t.conn.SetReadDeadline(time.Now().Add(t.pollTimeout)); err != nil {
		return 0, err
	}
	n, _, err := t.conn.ReadFromUDP(buf)
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return 0, ports.ErrNoData
		}
		return 0, err
	}
	return n, nil
}

// Send writes b to the Host as one datagram.
func (t *Transport) Send(b []byte) (int, error) {
	return t.conn.WriteToUDP(b, t.remote)
}

// Close closes the socket.
func (t *Transport) Close() error {
	return t.conn.Close()
}
