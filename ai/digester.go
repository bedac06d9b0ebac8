// Package ai produces digest prose for thread summaries. The local digester
// keeps the word-frequency text computed in the domain; the Gemini digester
// asks the model for better prose and is only wired when an API key is
// configured. Callers fall back to the local text on any model error.
package ai

import (
	"context"
	"fmt"
	"strings"

	"fractal-bot/domain"
)

type Digester interface {
	Digest(ctx context.Context, digest domain.Digest, msgs []domain.TranscriptMessage) (string, error)
}

// LocalDigester answers with the text the digest already carries.
type LocalDigester struct{}

func (LocalDigester) Digest(_ context.Context, digest domain.Digest, _ []domain.TranscriptMessage) (string, error) {
	return digest.Text, nil
}

func buildPrompt(digest domain.Digest, msgs []domain.TranscriptMessage) string {
	var b strings.Builder

	b.WriteString("Summarize the following community thread discussion in a few short paragraphs.\n")
	b.WriteString("Mention the main topics, any decisions reached and open action items.\n")
	if digest.Language != "" {
		fmt.Fprintf(&b, "Answer in the language of the discussion (%s).\n", digest.Language)
	}
	fmt.Fprintf(&b, "\nThread: %s\nMessages (%d, oldest first):\n", digest.Thread, len(msgs))
	for _, m := range msgs {
		fmt.Fprintf(&b, "%s: %s\n", m.AuthorName, m.Content)
	}
	return b.String()
}
