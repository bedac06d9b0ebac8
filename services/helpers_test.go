package services

import (
	"log/slog"
	"testing"

	"fractal-bot/domain"
	"fractal-bot/moderation"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *badger.DB {
	t.Helper()
	req := require.New(t)

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestModerator(t *testing.T) *moderation.Moderator {
	t.Helper()
	req := require.New(t)

	m, err := moderation.NewModerator([]string{"free nitro", "seed phrase"}, '*', logs.GetLoggerFromLevel(slog.LevelError))
	req.NoError(err)
	return &m
}

func from(user domain.UserID) domain.Origin {
	return domain.Origin{Interaction: "interaction-1", Thread: "thread-1", User: user}
}
