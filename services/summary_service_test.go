package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fractal-bot/ai"
	"fractal-bot/domain"
	"fractal-bot/errors"
	"fractal-bot/repositories"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type failingDigester struct{}

func (failingDigester) Digest(context.Context, domain.Digest, []domain.TranscriptMessage) (string, error) {
	return "", fmt.Errorf("%w: backend down", errors.ErrDigestBackend)
}

func newSummaryService(t *testing.T, digester ai.Digester) (ISummaryService, *repositories.TranscriptRepository, string) {
	t.Helper()
	req := require.New(t)
	db := newTestDB(t)

	writer, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	req.NoError(err)
	t.Cleanup(func() { _ = writer.Close() })

	log := logs.GetLoggerFromLevel(slog.LevelError)
	transcripts := repositories.NewTranscriptRepository(db, writer, log, nil)
	exportDir := t.TempDir()

	svc := NewSummaryService(transcripts, digester, exportDir, clockwork.NewFakeClock(), log)
	return svc, transcripts, exportDir
}

func archiveMessage(t *testing.T, repo *repositories.TranscriptRepository, thread domain.ThreadRef, author domain.UserID, content string, at time.Time) {
	t.Helper()
	require.NoError(t, repo.Archive(domain.TranscriptMessage{
		ID:         uuid.NewString(),
		Thread:     thread,
		Author:     author,
		AuthorName: string(author),
		Content:    content,
		At:         at,
	}))
}

func TestSummaryService_Summarize(t *testing.T) {
	req := require.New(t)
	svc, transcripts, _ := newSummaryService(t, ai.LocalDigester{})
	now := time.Now().UTC()

	archiveMessage(t, transcripts, "thread-1", "alice", "the treasury proposal needs another round of review", now)
	archiveMessage(t, transcripts, "thread-1", "bob", "agreed, the treasury numbers looked thin", now.Add(time.Minute))
	archiveMessage(t, transcripts, "thread-1", "alice", "let us keep the proposal on next week's agenda", now.Add(2*time.Minute))

	reply, _, err := svc.Summarize(context.Background(), domain.SummarizeCommand{Origin: from("carol")})
	req.NoError(err)
	req.Contains(reply.Text, "Discussion Summary")
	req.Contains(reply.Text, "treasury")

	digest, err := transcripts.LatestDigest("thread-1")
	req.NoError(err)
	req.Equal(3, digest.Messages)
	req.Equal(2, digest.Participants)
}

func TestSummaryService_Summarize_EmptyThread(t *testing.T) {
	req := require.New(t)
	svc, _, _ := newSummaryService(t, ai.LocalDigester{})

	_, _, err := svc.Summarize(context.Background(), domain.SummarizeCommand{Origin: from("carol")})
	req.ErrorContains(err, "no messages")
}

func TestSummaryService_Summarize_BackendFailureFallsBackToLocalText(t *testing.T) {
	req := require.New(t)
	svc, transcripts, _ := newSummaryService(t, failingDigester{})
	now := time.Now().UTC()

	archiveMessage(t, transcripts, "thread-1", "alice", "planning the community call for thursday", now)
	archiveMessage(t, transcripts, "thread-1", "bob", "thursday works, same channel as always", now.Add(time.Minute))

	reply, _, err := svc.Summarize(context.Background(), domain.SummarizeCommand{Origin: from("carol")})
	req.NoError(err)
	req.Contains(reply.Text, "Discussion Summary")
}

func TestSummaryService_Export(t *testing.T) {
	req := require.New(t)
	svc, transcripts, exportDir := newSummaryService(t, ai.LocalDigester{})
	ctx := context.Background()

	_, _, err := svc.Export(ctx, domain.ExportDigestCommand{Origin: from("carol")})
	req.ErrorIs(err, errors.ErrNoDigest)

	now := time.Now().UTC()
	archiveMessage(t, transcripts, "thread-1", "alice", "shipping the release notes today", now)
	archiveMessage(t, transcripts, "thread-1", "bob", "release looks good from my side", now.Add(time.Minute))
	_, _, err = svc.Summarize(ctx, domain.SummarizeCommand{Origin: from("carol")})
	req.NoError(err)

	reply, _, err := svc.Export(ctx, domain.ExportDigestCommand{Origin: from("carol")})
	req.NoError(err)
	req.Contains(reply.Text, "digest-thread-1-")

	files, err := os.ReadDir(exportDir)
	req.NoError(err)
	req.Len(files, 2)

	var markdown, pdf string
	for _, f := range files {
		switch filepath.Ext(f.Name()) {
		case ".md":
			markdown = f.Name()
		case ".pdf":
			pdf = f.Name()
		}
	}
	req.NotEmpty(markdown)
	req.NotEmpty(pdf)

	content, err := os.ReadFile(filepath.Join(exportDir, markdown))
	req.NoError(err)
	req.Contains(string(content), "Discussion Summary")

	raw, err := os.ReadFile(filepath.Join(exportDir, pdf))
	req.NoError(err)
	req.True(strings.HasPrefix(string(raw), "%PDF"))
}

func TestSummaryService_Find(t *testing.T) {
	req := require.New(t)
	svc, transcripts, _ := newSummaryService(t, ai.LocalDigester{})
	ctx := context.Background()
	now := time.Now().UTC()

	archiveMessage(t, transcripts, "thread-1", "alice", "the roadmap discussion starts here", now)
	archiveMessage(t, transcripts, "thread-1", "bob", "nothing to do with plans", now.Add(time.Minute))

	reply, _, err := svc.Find(ctx, domain.FindMessagesCommand{
		Origin: from("carol"),
		Query:  "roadmap",
		Limit:  10,
	})
	req.NoError(err)
	req.Contains(reply.Text, "1 result(s)")
	req.Contains(reply.Text, "roadmap discussion")
	req.Contains(reply.Text, "alice")

	reply, _, err = svc.Find(ctx, domain.FindMessagesCommand{
		Origin: from("carol"),
		Query:  "blockchain",
		Limit:  10,
	})
	req.NoError(err)
	req.Contains(reply.Text, `No messages matched "blockchain".`)
}
