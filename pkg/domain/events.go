package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStateEnter EventType = "state_enter"
	EventStateLeave EventType = "state_leave"
)

// StateEvent describes entry into or exit from a SystemState.
type StateEvent struct {
	Timestamp time.Time   `json:"timestamp"`
	Type      EventType   `json:"type"`
	State     SystemState `json:"state"`
	// Peer is the state being left on enter, or entered on leave.
	Peer SystemState `json:"peer"`
}

// LifecycleHooks defines callbacks for state machine observability.
// Hooks run synchronously on the kernel goroutine.
type LifecycleHooks struct {
	OnStateEnter func(context.Context, *StateEvent)
	OnStateLeave func(context.Context, *StateEvent)
}
