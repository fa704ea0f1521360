package domain

import "errors"

// ErrInvalidState is returned when the state machine is asked to act with no
// valid current state, which only happens if the driver ignored ShouldExit.
var ErrInvalidState = errors.New("invalid state machine state")

// ErrStatusNotFound is returned when an instance has no stored status snapshot.
var ErrStatusNotFound = errors.New("status not found")
