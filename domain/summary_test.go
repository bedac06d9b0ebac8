package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func transcript(thread ThreadRef, at time.Time, lines ...[2]string) []TranscriptMessage {
	msgs := make([]TranscriptMessage, 0, len(lines))
	for i, line := range lines {
		msgs = append(msgs, TranscriptMessage{
			ID:         strings.Repeat("0", 8),
			Thread:     thread,
			Author:     UserID(line[0]),
			AuthorName: line[0],
			Content:    line[1],
			At:         at.Add(time.Duration(i) * time.Minute),
		})
	}
	return msgs
}

func TestBuildDigest_CountsContributorsAndTopics(t *testing.T) {
	req := require.New(t)
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	msgs := transcript("thread-1", at,
		[2]string{"alice", "the governance proposal needs another review"},
		[2]string{"bob", "governance proposal looks ready"},
		[2]string{"alice", "publishing the proposal today"},
	)

	d := BuildDigest("thread-1", "weekly-sync", msgs, at.Add(time.Hour))

	req.Equal(3, d.Messages)
	req.Equal(2, d.Participants)
	req.Equal([]Contributor{{Name: "alice", Count: 2}, {Name: "bob", Count: 1}}, d.Contributors)

	// "proposal" appears three times and tops the list
	req.Equal("proposal", d.Topics[0].Word)
	req.Equal(3, d.Topics[0].Count)

	// Short words never count as topics
	for _, w := range d.Topics {
		req.GreaterOrEqual(len(w.Word), 5)
	}
}

func TestBuildDigest_SpansOldestToNewest(t *testing.T) {
	req := require.New(t)
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	// Deliberately out of order
	msgs := []TranscriptMessage{
		{AuthorName: "bob", Content: "closing thoughts", At: at.Add(30 * time.Minute)},
		{AuthorName: "alice", Content: "opening thoughts", At: at},
	}

	d := BuildDigest("thread-1", "weekly-sync", msgs, at.Add(time.Hour))

	req.Equal(30*time.Minute, d.Span)
	req.Contains(d.Text, "30 minutes")
}

func TestBuildDigest_EmptyTranscript(t *testing.T) {
	req := require.New(t)
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	d := BuildDigest("thread-1", "weekly-sync", nil, at)

	req.Zero(d.Messages)
	req.Zero(d.Participants)
	req.Contains(d.Text, "less than a minute")
}

func TestBuildDigest_RendersContributorAndTopicSections(t *testing.T) {
	req := require.New(t)
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	msgs := transcript("thread-1", at,
		[2]string{"alice", "treasury report ready for everyone"},
		[2]string{"bob", "treasury numbers match the ledger"},
	)

	d := BuildDigest("thread-1", "weekly-sync", msgs, at.Add(time.Hour))

	req.Contains(d.Text, "**Top Contributors:**")
	req.Contains(d.Text, "**Key Topics:**")
	req.Contains(d.Text, "treasury")
	req.Contains(d.Text, "weekly-sync")
}
