package repositories

import (
	"context"
	"fractal-bot/domain"
	"fractal-bot/errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func newTranscriptRepository(t *testing.T, recentLimit *int) *TranscriptRepository {
	t.Helper()
	req := require.New(t)

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	writer, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	req.NoError(err)
	t.Cleanup(func() { _ = writer.Close() })

	return NewTranscriptRepository(db, writer, slog.Default(), recentLimit)
}

func archived(thread domain.ThreadRef, author domain.UserID, content string, at time.Time) domain.TranscriptMessage {
	return domain.TranscriptMessage{
		ID:         uuid.NewString(),
		Thread:     thread,
		Author:     author,
		AuthorName: string(author),
		Content:    content,
		At:         at,
	}
}

func TestTranscriptRepository_Recent_Newest_First_Capped(t *testing.T) {
	req := require.New(t)
	repo := newTranscriptRepository(t, lo.ToPtr(3))
	now := time.Now().UTC()

	for i := 1; i <= 4; i++ {
		msg := archived("thread-1", "alice", fmt.Sprintf("message %d", i), now.Add(time.Duration(i)*time.Minute))
		req.NoError(repo.Archive(msg))
	}
	req.NoError(repo.Archive(archived("thread-2", "bob", "elsewhere", now)))

	msgs, err := repo.Recent("thread-1")
	req.NoError(err)
	req.Len(msgs, 3)
	req.Equal("message 4", msgs[0].Content)
	req.Equal("message 3", msgs[1].Content)
	req.Equal("message 2", msgs[2].Content)
}

func TestTranscriptRepository_Search_Case_Insensitive(t *testing.T) {
	req := require.New(t)
	repo := newTranscriptRepository(t, nil)
	now := time.Now().UTC()

	req.NoError(repo.Archive(archived("thread-1", "alice", "The Roadmap discussion starts here", now)))
	req.NoError(repo.Archive(archived("thread-1", "bob", "lunch plans for tomorrow", now.Add(time.Minute))))
	req.NoError(repo.Archive(archived("thread-1", "carol", "roadmap review once more", now.Add(2*time.Minute))))

	msgs, total, err := repo.Search(context.Background(), "ROADMAP", "thread-1", "", 10, 0)
	req.NoError(err)
	req.Equal(2, total)
	req.Len(msgs, 2)
	for _, msg := range msgs {
		req.Contains(strings.ToLower(msg.Content), "roadmap")
	}
}

func TestTranscriptRepository_Search_Scoped_To_Thread_And_Author(t *testing.T) {
	req := require.New(t)
	repo := newTranscriptRepository(t, nil)
	now := time.Now().UTC()

	req.NoError(repo.Archive(archived("thread-1", "alice", "budget numbers for october", now)))
	req.NoError(repo.Archive(archived("thread-2", "alice", "budget numbers for november", now)))
	req.NoError(repo.Archive(archived("thread-1", "bob", "budget concerns overall", now)))

	// Given the same word lives in two threads
	msgs, total, err := repo.Search(context.Background(), "budget", "thread-1", "", 10, 0)
	req.NoError(err)
	req.Equal(2, total)
	req.Len(msgs, 2)

	// When the author narrows it further
	msgs, total, err = repo.Search(context.Background(), "budget", "thread-1", "bob", 10, 0)
	req.NoError(err)
	req.Equal(1, total)
	req.Len(msgs, 1)
	req.Equal(domain.UserID("bob"), msgs[0].Author)
}

func TestTranscriptRepository_Search_Pagination(t *testing.T) {
	req := require.New(t)
	repo := newTranscriptRepository(t, nil)
	now := time.Now().UTC()

	for i := 1; i <= 5; i++ {
		msg := archived("thread-1", "alice", fmt.Sprintf("sprint planning %d", i), now.Add(time.Duration(i)*time.Minute))
		req.NoError(repo.Archive(msg))
	}

	msgs, total, err := repo.Search(context.Background(), "sprint", "thread-1", "", 2, 0)
	req.NoError(err)
	req.Equal(5, total)
	req.Len(msgs, 2)

	msgs, total, err = repo.Search(context.Background(), "sprint", "thread-1", "", 2, 4)
	req.NoError(err)
	req.Equal(5, total)
	req.Len(msgs, 1)
}

func TestTranscriptRepository_Digest_Roundtrip(t *testing.T) {
	req := require.New(t)
	repo := newTranscriptRepository(t, nil)
	now := time.Now().UTC()

	_, err := repo.LatestDigest("thread-1")
	req.ErrorIs(err, errors.ErrNoDigest)

	digest := domain.BuildDigest("thread-1", "general", []domain.TranscriptMessage{
		archived("thread-1", "alice", "quarterly planning session notes", now),
		archived("thread-1", "bob", "planning feedback and planning questions", now.Add(time.Minute)),
	}, now.Add(time.Hour))
	req.NoError(repo.SaveDigest(digest))

	fetched, err := repo.LatestDigest("thread-1")
	req.NoError(err)
	req.Equal(2, fetched.Messages)
	req.Equal(2, fetched.Participants)
	req.Equal(digest.Topics, fetched.Topics)
	req.Equal(digest.Text, fetched.Text)
}
