package repositories

import (
	"fractal-bot/domain"
	"fractal-bot/errors"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func TestPresenceRepository_Open_Then_Close(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	repo := NewPresenceRepository(db)
	now := time.Now().UTC()

	req.NoError(repo.Open(domain.VoiceSession{User: "alice", Channel: "lounge", Since: now}))

	closed, err := repo.Close("alice")
	req.NoError(err)
	req.Equal(domain.UserID("alice"), closed.User)
	req.Equal("lounge", closed.Channel)
	req.WithinDuration(now, closed.Since, time.Second)

	// A second close has nothing left to settle.
	_, err = repo.Close("alice")
	req.ErrorIs(err, errors.ErrNoVoiceSession)
}

func TestPresenceRepository_Close_Without_Open(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	repo := NewPresenceRepository(db)

	_, err = repo.Close("ghost")
	req.ErrorIs(err, errors.ErrNoVoiceSession)
}

func TestPresenceRepository_Accumulates_Seconds(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	repo := NewPresenceRepository(db)

	req.NoError(repo.AddSeconds("alice", 120))
	req.NoError(repo.AddSeconds("alice", 30))

	total, err := repo.TotalOf("alice")
	req.NoError(err)
	req.Equal(int64(150), total.Seconds)
	req.Equal(150*time.Second, total.Duration())
}

func TestPresenceRepository_TotalOf_Unseen_User(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	repo := NewPresenceRepository(db)

	total, err := repo.TotalOf("ghost")
	req.NoError(err)
	req.Equal(int64(0), total.Seconds)
}

func TestPresenceRepository_Totals_And_OpenSessions(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	repo := NewPresenceRepository(db)
	now := time.Now().UTC()

	req.NoError(repo.AddSeconds("alice", 60))
	req.NoError(repo.AddSeconds("bob", 90))
	req.NoError(repo.Open(domain.VoiceSession{User: "alice", Channel: "lounge", Since: now}))
	req.NoError(repo.Open(domain.VoiceSession{User: "carol", Channel: "stage", Since: now}))

	totals, err := repo.Totals()
	req.NoError(err)
	req.Len(totals, 2)

	sessions, err := repo.OpenSessions()
	req.NoError(err)
	req.Len(sessions, 2)
}
