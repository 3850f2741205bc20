package session

import (
	"context"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moviegrab/moviegrab-go-bot/internal/yts"
)

func newTestStore(ttl time.Duration) *Store {
	logger := zerolog.Nop()
	return NewStore(ttl, &logger)
}

func TestPutGetDelete(t *testing.T) {
	s := newTestStore(time.Minute)

	sess := Session{
		Results: []yts.Result{{Title: "Inception (2010) - 1080p", Hash: "aaa", Seeds: 90}},
		Query:   "inception",
		Quality: yts.Quality1080p,
	}
	s.Put(42, sess)

	got, ok := s.Get(42)
	require.True(t, ok)
	assert.Equal(t, sess.Results, got.Results)
	assert.Equal(t, "inception", got.Query)
	assert.Equal(t, yts.Quality1080p, got.Quality)
	assert.False(t, got.CreatedAt.IsZero())
	assert.Equal(t, 1, s.Len())

	_, ok = s.Get(43)
	assert.False(t, ok)

	s.Delete(42)
	_, ok = s.Get(42)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestPutReplacesSession(t *testing.T) {
	s := newTestStore(time.Minute)

	s.Put(42, Session{Query: "old"})
	s.Put(42, Session{Query: "new"})

	got, ok := s.Get(42)
	require.True(t, ok)
	assert.Equal(t, "new", got.Query)
}

func TestGetDropsExpiredEntry(t *testing.T) {
	s := newTestStore(20 * time.Millisecond)

	s.Put(42, Session{Query: "inception"})
	time.Sleep(40 * time.Millisecond)

	_, ok := s.Get(42)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestJanitorPurgesExpiredEntries(t *testing.T) {
	s := newTestStore(10 * time.Millisecond)
	s.janitorEvery = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	s.StartJanitor(ctx)

	s.Put(1, Session{Query: "a"})
	s.Put(2, Session{Query: "b"})

	assert.Eventually(t, func() bool {
		return s.Len() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestStoreProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("a stored session comes back intact before the ttl", prop.ForAll(
		func(userID int64, query string, seeds int) bool {
			s := newTestStore(time.Minute)
			s.Put(userID, Session{
				Results: []yts.Result{{Seeds: seeds}},
				Query:   query,
			})

			got, ok := s.Get(userID)
			return ok && got.Query == query && len(got.Results) == 1 && got.Results[0].Seeds == seeds
		},
		gen.Int64(),
		gen.AlphaString(),
		gen.IntRange(0, 100000),
	))

	properties.Property("delete leaves no session behind", prop.ForAll(
		func(userID int64) bool {
			s := newTestStore(time.Minute)
			s.Put(userID, Session{Query: "x"})
			s.Delete(userID)

			_, ok := s.Get(userID)
			return !ok && s.Len() == 0
		},
		gen.Int64(),
	))

	properties.TestingRun(t)
}
