package cigi

// Session pairs an incoming and an outgoing message manager.
type Session struct {
	Incoming *Incoming
	Outgoing *Outgoing
}

// NewSession creates a session. A nil out gets a fresh default Outgoing.
func NewSession(out *Outgoing) *Session {
	if out == nil {
		out = NewOutgoing(0)
	}
	return &Session{
		Incoming: NewIncoming(),
		Outgoing: out,
	}
}
