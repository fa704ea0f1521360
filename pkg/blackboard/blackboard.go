package blackboard

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Well-known keys published by the kernel.
const (
	KeyOutgoingMessage         = "OutgoingMessage"
	KeyIncomingMessage         = "IncomingMessage"
	KeyStateContext            = "StateContext"
	KeyIGControlProcessor      = "IGControlProcessor"
	KeyLoadedDatabaseNumber    = "LoadedDatabaseNumber"
	KeyCommandedDatabaseNumber = "CommandedDatabaseNumber"
	KeyReportedDatabaseNumber  = "ReportedDatabaseNumber"
	KeyDefaultDatabaseNumber   = "DefaultDatabaseNumber"
)

var (
	// ErrKeyNotFound is returned by a mandatory Get on a key nobody posted.
	ErrKeyNotFound = errors.New("blackboard key not found")
	// ErrNilOutput is returned by Get when there is nowhere to store the value.
	ErrNilOutput = errors.New("blackboard output is nil")
	// ErrTypeMismatch is returned when the stored value is not of the requested type.
	ErrTypeMismatch = errors.New("blackboard type mismatch")
	// ErrLocked is returned by Put once the blackboard has been locked.
	ErrLocked = errors.New("blackboard is locked")
	// ErrDuplicateKey is returned by Put when the key was already posted.
	ErrDuplicateKey = errors.New("blackboard key already posted")
)

// Error carries the key involved in a blackboard contract violation.
// It wraps one of the sentinel errors above.
type Error struct {
	Key string
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("blackboard %s %q: %v", e.Op, e.Key, e.Err)
}

// Unwrap provides compatibility with errors.Is and errors.As.
func (e *Error) Unwrap() error { return e.Err }

// Blackboard is the shared registry used by the kernel and the plugins to
// exchange handles (sessions, state context, database numbers).
type Blackboard struct {
	mu      sync.RWMutex
	entries map[string]any
	locked  bool
}

// New creates a new empty, unlocked blackboard.
func New() *Blackboard {
	return &Blackboard{
		entries: make(map[string]any),
	}
}

// Put posts a value under key.
// Values are normally pointers so that later writes are visible to readers.
func (b *Blackboard) Put(key string, value any) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.locked {
		return &Error{Key: key, Op: "put", Err: ErrLocked}
	}
	if _, exists := b.entries[key]; exists {
		return &Error{Key: key, Op: "put", Err: ErrDuplicateKey}
	}
	b.entries[key] = value
	return nil
}

// Lookup returns the raw value stored under key.
func (b *Blackboard) Lookup(key string) (any, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.entries[key]
	return v, ok
}

// Lock forbids any further Put.
func (b *Blackboard) Lock() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.locked = true
}

// Locked reports whether Lock has been called.
func (b *Blackboard) Locked() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.locked
}

// Keys returns the posted keys in sorted order.
func (b *Blackboard) Keys() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	keys := make([]string, 0, len(b.entries))
	for k := range b.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Put posts a typed value. It is a typed convenience over (*Blackboard).Put.
func Put[T any](b *Blackboard, key string, value T) error {
	return b.Put(key, value)
}

// Get retrieves the value stored under key into out.
//
// With mandatory set, a missing key is an ErrKeyNotFound error. Without it,
// a missing key returns (false, nil) and out is left untouched. A stored value
// of another type is always an ErrTypeMismatch error. A nil out is an
// ErrNilOutput error.
func Get[T any](b *Blackboard, key string, out *T, mandatory bool) (bool, error) {
	if out == nil {
		return false, &Error{Key: key, Op: "get", Err: ErrNilOutput}
	}
	raw, ok := b.Lookup(key)
	if !ok {
		if mandatory {
			return false, &Error{Key: key, Op: "get", Err: ErrKeyNotFound}
		}
		return false, nil
	}

	v, ok := raw.(T)
	if !ok {
		return false, &Error{
			Key: key,
			Op:  "get",
			Err: fmt.Errorf("%w: stored %T, requested %s", ErrTypeMismatch, raw, reflect.TypeOf(out).Elem()),
		}
	}
	*out = v
	return true, nil
}

// MustGet retrieves a mandatory value, returning it directly.
func MustGet[T any](b *Blackboard, key string) (T, error) {
	var out T
	_, err := Get(b, key, &out, true)
	return out, err
}
