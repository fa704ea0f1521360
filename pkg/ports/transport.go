package ports

import "errors"

// ErrNoData is returned by Transport.Recv when no datagram is pending.
var ErrNoData = errors.New("no data pending")

// Transport is a connectionless message transport between the IG and the Host.
type Transport interface {
	// Recv copies the next pending datagram into buf and returns its length.
	// It must not block longer than the implementation's poll interval and
	// returns ErrNoData when nothing is pending.
	Recv(buf []byte) (int, error)

	// Send transmits b as one datagram.
	Send(b []byte) (int, error)

	// Close releases the underlying socket.
	Close() error
}
