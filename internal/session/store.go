package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/moviegrab/moviegrab-go-bot/internal/yts"
)

// DefaultTTL is how long a user's search results stay selectable.
const DefaultTTL = 30 * time.Minute

// Session is the most recent search of one Telegram user. Callback buttons
// refer to Results by index.
type Session struct {
	Results   []yts.Result
	Query     string
	Quality   yts.Quality
	CreatedAt time.Time
}

type entry struct {
	session   Session
	expiresAt time.Time
}

// Store keeps sessions per user id under an RWMutex. Entries expire after a
// TTL, dropped lazily on Get and swept by the janitor.
type Store struct {
	mu      sync.RWMutex
	entries map[int64]entry
	ttl     time.Duration

	janitorEvery time.Duration
	logger       *zerolog.Logger
}

func NewStore(ttl time.Duration, logger *zerolog.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		entries:      make(map[int64]entry),
		ttl:          ttl,
		janitorEvery: 5 * time.Minute,
		logger:       logger,
	}
}

// Put replaces the stored session for a user and restarts its TTL.
func (s *Store) Put(userID int64, sess Session) {
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[userID] = entry{
		session:   sess,
		expiresAt: time.Now().Add(s.ttl),
	}
}

// Get returns the live session for a user. Expired entries are dropped on
// access.
func (s *Store) Get(userID int64) (Session, bool) {
	s.mu.RLock()
	e, ok := s.entries[userID]
	s.mu.RUnlock()

	if !ok {
		return Session{}, false
	}
	if time.Now().After(e.expiresAt) {
		s.Delete(userID)
		return Session{}, false
	}
	return e.session, true
}

// Delete removes a user's session immediately.
func (s *Store) Delete(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
}

// Len reports how many users currently have a stored session.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// StartJanitor sweeps expired entries in the background until ctx is done.
func (s *Store) StartJanitor(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.janitorEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.purge()
			}
		}
	}()
}

func (s *Store) purge() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for userID, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, userID)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Debug().Int("count", removed).Msg("purged expired search sessions")
	}
}
