package session

import (
	"context"
	"sync"
	"time"

	"shopbot/core/logger"
	"shopbot/internal/catalog"

	"log/slog"
)

// Resolver is the catalog lookup the store needs for flavor selections.
type Resolver interface {
	LookupFlavor(flavorID string) (catalog.Brand, catalog.Flavor, bool)
}

// Store keeps one session per user behind a single mutex. All transitions of
// a user's intake flow go through this store, so per-user causal ordering
// reduces to the atomicity of each method.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	resolver Resolver
	now      func() time.Time
}

// NewStore constructs an empty in-memory session store.
func NewStore(resolver Resolver) *Store {
	return &Store{
		sessions: make(map[int64]*Session),
		resolver: resolver,
		now:      time.Now,
	}
}

func (s *Store) getOrCreateLocked(userID int64) *Session {
	sess, ok := s.sessions[userID]
	if !ok {
		sess = &Session{UserID: userID, State: StateStart}
		s.sessions[userID] = sess
	}
	sess.LastSeen = s.now()
	return sess
}

// GetOrCreate returns a snapshot of the user's session, creating a fresh one
// in StateStart on first contact.
func (s *Store) GetOrCreate(userID int64) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.getOrCreateLocked(userID)
}

// Reset puts the user back at the start of the flow, keeping the session.
func (s *Store) Reset(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.getOrCreateLocked(userID)
	sess.State = StateStart
}

// StateOf returns the user's current state without creating a session.
func (s *Store) StateOf(userID int64) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[userID]; ok {
		return sess.State
	}
	return StateStart
}

// InProgress reports whether the user is mid-flow, i.e. the next text message
// belongs to the intake rather than the menu.
func (s *Store) InProgress(userID int64) bool {
	return s.StateOf(userID) != StateStart
}

// RecordFlavorSelection resolves the flavor in the catalog, overwrites the
// draft product fields and advances to StateAwaitingAddress. Re-selection
// overwrites the whole draft, so no stale fields survive a second pass.
func (s *Store) RecordFlavorSelection(userID int64, flavorID string) (Session, error) {
	brand, flavor, ok := s.resolver.LookupFlavor(flavorID)
	if !ok {
		return Session{}, ErrUnknownFlavor
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.getOrCreateLocked(userID)
	sess.Draft = Draft{
		ProductName: brand.Name + " - " + flavor.Name,
		PriceKZT:    flavor.PriceKZT,
		PriceUSDT:   flavor.PriceUSDT,
	}
	sess.State = StateAwaitingAddress
	return *sess, nil
}

// RecordAddress stores the delivery address verbatim and advances to
// StateAwaitingPhone. Outside StateAwaitingAddress it returns
// ErrUnexpectedInput and leaves the session untouched.
func (s *Store) RecordAddress(userID int64, text string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.getOrCreateLocked(userID)
	if sess.State != StateAwaitingAddress {
		return *sess, ErrUnexpectedInput
	}
	sess.Draft.Address = text
	sess.State = StateAwaitingPhone
	return *sess, nil
}

// RecordPhone validates and stores the phone number, completing the draft.
// On success the returned Draft is a value copy safe to hand to the ledger,
// and the session returns to StateStart so a new flow can begin regardless
// of what happens to the submitted order. On validation failure the state
// stays at StateAwaitingPhone for a re-prompt.
func (s *Store) RecordPhone(userID int64, text string) (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.getOrCreateLocked(userID)
	if sess.State != StateAwaitingPhone {
		return Draft{}, ErrUnexpectedInput
	}
	if !ValidPhone(text) {
		return Draft{}, ErrInvalidPhone
	}
	sess.Draft.Phone = text
	done := sess.Draft
	sess.State = StateStart
	return done, nil
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// PruneIdle evicts sessions untouched for longer than maxIdle and returns
// how many were removed. maxIdle <= 0 disables eviction.
func (s *Store) PruneIdle(maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}
	cutoff := s.now().Add(-maxIdle)
	s.mu.Lock()
	defer s.mu.Unlock()
	pruned := 0
	for id, sess := range s.sessions {
		if sess.LastSeen.Before(cutoff) {
			delete(s.sessions, id)
			pruned++
		}
	}
	return pruned
}

// StartJanitor periodically evicts idle sessions until ctx is done. This
// bounds memory of a long-running process; an abandoned conversation simply
// restarts at the menu after eviction.
func (s *Store) StartJanitor(ctx context.Context, interval, maxIdle time.Duration) {
	if interval <= 0 || maxIdle <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if pruned := s.PruneIdle(maxIdle); pruned > 0 {
					logger.Info(ctx, "session", "janitor.pruned",
						slog.String("status", "ok"),
						slog.Int("sessions_pruned", pruned),
						slog.Int("count", s.Len()),
					)
				}
			}
		}
	}()
}
