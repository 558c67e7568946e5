// Package session holds per-user conversational state and the pluggable
// store that keeps it. A session always exists before the dispatcher
// inspects it: stores create one lazily on first contact.
package session

import (
	"context"
	"time"

	"github.com/paragraphhotels/messenger-bot-go/internal/classify"
)

// State is the dialogue state machine position of a session.
type State string

// Dialogue states. There is no terminal state; Ended is a soft flag that
// stops replies without destroying the session.
const (
	StateNew              State = "new"
	StateAwaitingLanguage State = "awaiting_language"
	StateMenu             State = "menu"
	StateAwaitingFollowup State = "awaiting_followup"
)

// Session is the per-user state record.
type Session struct {
	ID            string            // page-scoped sender id, assigned by the platform
	State         State             // dialogue state machine position
	Language      classify.Language // unset until the guest picks one
	Greeted       bool              // true once the language prompt was sent
	Ended         bool              // soft-terminal: suppress all replies when set
	LastInput     string            // normalized last free-text input, for duplicate suppression
	LastReplyHash string            // hash of the last rendered reply
	LastSeen      time.Time         // refreshed on every inbound event
}

// New returns a fresh session for the given sender id.
func New(id string) Session {
	return Session{
		ID:       id,
		State:    StateNew,
		LastSeen: time.Now(),
	}
}

// Store is the session storage capability set. Implementations must be safe
// for concurrent use; callers serialize per-id processing with a KeyedMutex
// so read-modify-write cycles for one sender never interleave.
type Store interface {
	// GetOrCreate returns the session for id, creating a fresh one if none
	// exists. It never fails on a missing session.
	GetOrCreate(ctx context.Context, id string) (Session, error)

	// Save persists the session record, refreshing its LastSeen.
	Save(ctx context.Context, s Session) error

	// Reset overwrites the session with defaults. Used by "start over".
	Reset(ctx context.Context, id string) (Session, error)

	// Touch refreshes the inactivity timer without other mutation.
	Touch(ctx context.Context, id string) error

	// Idle lists sessions idle longer than window. Sessions already in
	// StateNew are skipped. The listing is advisory: callers confirm each
	// candidate with Expire while holding that sender's lock.
	Idle(ctx context.Context, window time.Duration) ([]Session, error)

	// Expire resets id if it is still idle longer than window, returning
	// the pre-reset record and whether the reset happened. A session seen
	// again since the Idle scan is left untouched.
	Expire(ctx context.Context, id string, window time.Duration) (Session, bool, error)

	// Count returns the number of sessions currently held.
	Count(ctx context.Context) (int, error)

	// Close releases store resources.
	Close() error
}
