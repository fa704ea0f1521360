package memory

import (
	"errors"
	"sync"

	"github.com/aretw0/igkernel/pkg/ports"
)

// ErrClosed is returned by a closed Endpoint.
var ErrClosed = errors.New("memory transport closed")

// Endpoint is one side of an in-memory datagram pipe.
// It implements ports.Transport and never blocks on Recv.
type Endpoint struct {
	mu     sync.Mutex
	inbox  [][]byte
	peer   *Endpoint
	closed bool
}

// NewPipe returns two connected endpoints. Datagrams sent on one are
// received, in order and unmodified, on the other.
func NewPipe() (*Endpoint, *Endpoint) {
	a, b := &Endpoint{}, &Endpoint{}
	a.peer, b.peer = b, a
	return a, b
}

// Recv pops the oldest pending datagram. Datagrams larger than buf are
// truncated, as with a UDP socket.
func (e *Endpoint) Recv(buf []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return 0, ErrClosed
	}
	if len(e.inbox) == 0 {
		return 0, ports.ErrNoData
	}
	msg := e.inbox[0]
	e.inbox[0] = nil
	e.inbox = e.inbox[1:]
	return copy(buf, msg), nil
}

// Send queues a copy of b on the peer.
func (e *Endpoint) Send(b []byte) (int, error) {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return 0, ErrClosed
	}

	p := e.peer
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, ErrClosed
	}
	p.inbox = append(p.inbox, append([]byte(nil), b...))
	return len(b), nil
}

// Pending reports how many datagrams are waiting to be received.
func (e *Endpoint) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.inbox)
}

// Close marks the endpoint closed and drops pending datagrams.
func (e *Endpoint) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.inbox = nil
	return nil
}
