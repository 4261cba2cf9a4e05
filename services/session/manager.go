package session

import (
	"context"
	"sync"
	"time"

	"medibook/models"
)

// Options tune Manager behaviour.
type Options struct {
	// RequiredFields must all hold a valid value before a session
	// transitions to READY.
	RequiredFields []string

	// KeepHistoryOnClear retains the transcript across Clear. The
	// booking record and state always reset.
	KeepHistoryOnClear bool

	// FieldValid, when set, vets every candidate value before it is
	// stored. A candidate failing the check is dropped like an empty
	// one, so a valid field can never be overwritten by an invalid
	// value even if a caller skips its own validation.
	FieldValid func(field, value string) bool
}

// Manager is the single owner of all sessions. Every mutation of a given
// token is serialized through a per-token lock, so concurrent requests
// for the same session cannot interleave partial updates; requests for
// different tokens never block each other. Lock entries are reference
// counted and removed when the last holder releases, so the map does not
// grow with token churn.
type Manager struct {
	store Store
	opts  Options

	lockMu sync.Mutex
	locks  map[string]*tokenLock
}

type tokenLock struct {
	mu   sync.Mutex
	refs int
}

func NewManager(store Store, opts Options) *Manager {
	return &Manager{
		store: store,
		opts:  opts,
		locks: make(map[string]*tokenLock),
	}
}

func (m *Manager) lock(token string) *tokenLock {
	m.lockMu.Lock()
	l, ok := m.locks[token]
	if !ok {
		l = &tokenLock{}
		m.locks[token] = l
	}
	l.refs++
	m.lockMu.Unlock()

	l.mu.Lock()
	return l
}

func (m *Manager) unlock(token string, l *tokenLock) {
	l.mu.Unlock()

	m.lockMu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(m.locks, token)
	}
	m.lockMu.Unlock()
}

// GetOrCreate returns the session for token, creating a fresh one
// (empty record, COLLECTING) if none exists. Idempotent on token.
func (m *Manager) GetOrCreate(ctx context.Context, token string) (*models.Session, error) {
	l := m.lock(token)
	defer m.unlock(token, l)

	sess, err := m.store.Get(ctx, token)
	if err == nil {
		return sess, nil
	}
	if err != ErrNoSession {
		return nil, err
	}

	now := time.Now()
	sess = &models.Session{
		Token:     token,
		State:     models.StateCollecting,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.store.Put(ctx, token, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// ApplyTurn appends the user turn followed by the assistant turn, in
// that order.
func (m *Manager) ApplyTurn(ctx context.Context, token, userMsg, assistantReply string) error {
	l := m.lock(token)
	defer m.unlock(token, l)

	sess, err := m.store.Get(ctx, token)
	if err != nil {
		return err
	}

	now := time.Now()
	sess.History = append(sess.History,
		models.Turn{Role: "user", Text: userMsg, At: now},
		models.Turn{Role: "assistant", Text: assistantReply, At: now},
	)
	sess.UpdatedAt = now
	return m.store.Put(ctx, token, sess)
}

// MergeBookingFields folds candidates into the record. A field that
// already holds a value is only replaced by a non-empty candidate that
// passes the FieldValid check; empty, invalid or unknown candidates are
// dropped, never stored. becameReady is true when this merge moved the
// session from COLLECTING to READY.
func (m *Manager) MergeBookingFields(ctx context.Context, token string, candidates map[string]string) (*models.Session, bool, error) {
	l := m.lock(token)
	defer m.unlock(token, l)

	sess, err := m.store.Get(ctx, token)
	if err != nil {
		return nil, false, err
	}

	for field, value := range candidates {
		if value == "" {
			continue
		}
		if m.opts.FieldValid != nil && !m.opts.FieldValid(field, value) {
			continue
		}
		sess.Record.Set(field, value)
	}

	becameReady := false
	if sess.State == models.StateCollecting && sess.Record.IsComplete(m.opts.RequiredFields) {
		sess.State = models.StateReady
		becameReady = true
	}
	sess.UpdatedAt = time.Now()

	if err := m.store.Put(ctx, token, sess); err != nil {
		return nil, false, err
	}
	return sess, becameReady, nil
}

// ConfirmBooking transitions READY -> CONFIRMED. Called while still
// COLLECTING it is a no-op and reports ErrNotReady.
func (m *Manager) ConfirmBooking(ctx context.Context, token string) (*models.Session, error) {
	l := m.lock(token)
	defer m.unlock(token, l)

	sess, err := m.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	switch sess.State {
	case models.StateConfirmed:
		return sess, nil
	case models.StateReady:
		sess.State = models.StateConfirmed
		sess.UpdatedAt = time.Now()
		if err := m.store.Put(ctx, token, sess); err != nil {
			return nil, err
		}
		return sess, nil
	default:
		return sess, ErrNotReady
	}
}

// Clear resets the record and state back to COLLECTING. Idempotent.
// History is dropped unless KeepHistoryOnClear is set.
func (m *Manager) Clear(ctx context.Context, token string) error {
	l := m.lock(token)
	defer m.unlock(token, l)

	sess, err := m.store.Get(ctx, token)
	if err == ErrNoSession {
		return nil
	}
	if err != nil {
		return err
	}

	sess.Record = models.BookingRecord{}
	sess.State = models.StateCollecting
	if !m.opts.KeepHistoryOnClear {
		sess.History = nil
	}
	sess.UpdatedAt = time.Now()
	return m.store.Put(ctx, token, sess)
}

// Snapshot returns a read-only view of the session for inspection.
func (m *Manager) Snapshot(ctx context.Context, token string) (*models.SessionSnapshot, error) {
	l := m.lock(token)
	defer m.unlock(token, l)

	sess, err := m.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	return &models.SessionSnapshot{
		Token:     sess.Token,
		Record:    sess.Record,
		State:     sess.State,
		Missing:   sess.Record.Missing(m.opts.RequiredFields),
		TurnCount: len(sess.History),
		UpdatedAt: sess.UpdatedAt,
	}, nil
}

// Required returns the configured required-field set.
func (m *Manager) Required() []string {
	return append([]string(nil), m.opts.RequiredFields...)
}

// MissingFields returns the required fields still unset for token, or
// the full required set for an unknown token (fresh sessions need
// everything).
func (m *Manager) MissingFields(ctx context.Context, token string) []string {
	l := m.lock(token)
	defer m.unlock(token, l)

	sess, err := m.store.Get(ctx, token)
	if err != nil {
		return append([]string(nil), m.opts.RequiredFields...)
	}
	return sess.Record.Missing(m.opts.RequiredFields)
}
