// Package session owns every chat session for the lifetime of the
// process: the conversation transcript, the partial booking record and
// the booking state, keyed by opaque token.
package session

import (
	"context"
	"errors"

	"medibook/models"
)

// ErrNoSession is returned when an operation other than GetOrCreate is
// called with a token that has no live session.
var ErrNoSession = errors.New("no active session")

// ErrNotReady is returned when confirmation is attempted before every
// required field has been collected.
var ErrNotReady = errors.New("booking record is not ready for confirmation")

// Store is the keyed session store behind the Manager. Implementations
// do not need to be safe for concurrent use of the same token; the
// Manager serializes per-token access.
type Store interface {
	// Get returns the session for token, or ErrNoSession.
	Get(ctx context.Context, token string) (*models.Session, error)

	// Put saves the session under token.
	Put(ctx context.Context, token string, s *models.Session) error

	// Delete removes the session for token. Deleting an absent token
	// is not an error.
	Delete(ctx context.Context, token string) error
}
