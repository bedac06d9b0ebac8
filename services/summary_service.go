package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"fractal-bot/ai"
	"fractal-bot/domain"
	"fractal-bot/domain/event"
	"fractal-bot/repositories"

	"github.com/jonboulle/clockwork"
	"github.com/jung-kurt/gofpdf"
)

type ISummaryService interface {
	Summarize(ctx context.Context, cmd domain.SummarizeCommand) (domain.Reply, []event.DomainEvent, error)
	Export(ctx context.Context, cmd domain.ExportDigestCommand) (domain.Reply, []event.DomainEvent, error)
	Find(ctx context.Context, cmd domain.FindMessagesCommand) (domain.Reply, []event.DomainEvent, error)
}

// SummaryService turns the transcript archive into digests and search
// results. The digest text always starts from the local word-frequency
// summary; the AI backend only ever improves on it.
type SummaryService struct {
	transcripts repositories.ITranscriptRepository
	digester    ai.Digester
	exportDir   string
	clock       clockwork.Clock
	log         *slog.Logger
}

func NewSummaryService(
	transcripts repositories.ITranscriptRepository,
	digester ai.Digester,
	exportDir string,
	clock clockwork.Clock,
	log *slog.Logger,
) ISummaryService {
	return &SummaryService{
		transcripts: transcripts,
		digester:    digester,
		exportDir:   exportDir,
		clock:       clock,
		log:         log,
	}
}

func (s *SummaryService) Summarize(ctx context.Context, cmd domain.SummarizeCommand) (domain.Reply, []event.DomainEvent, error) {
	thread := cmd.Origin.Thread
	msgs, err := s.transcripts.Recent(thread)
	if err != nil {
		return domain.Reply{}, nil, err
	}
	if len(msgs) == 0 {
		return domain.Reply{}, nil, fmt.Errorf("no messages found to summarize")
	}

	digest := domain.BuildDigest(thread, string(thread), msgs, s.clock.Now())

	// The backend can fail or be disabled; the local text already stands.
	if text, err := s.digester.Digest(ctx, digest, msgs); err != nil {
		s.log.Warn("digest backend failed, using local summary", slog.Any("error", err))
	} else {
		digest.Text = text
	}

	if err := s.transcripts.SaveDigest(digest); err != nil {
		return domain.Reply{}, nil, err
	}
	s.log.Info("digest built",
		slog.String("thread", string(thread)),
		slog.Int("messages", digest.Messages))
	return domain.Reply{Text: digest.Text}, nil, nil
}

func (s *SummaryService) Export(_ context.Context, cmd domain.ExportDigestCommand) (domain.Reply, []event.DomainEvent, error) {
	digest, err := s.transcripts.LatestDigest(cmd.Origin.Thread)
	if err != nil {
		return domain.Reply{}, nil, err
	}

	if err := os.MkdirAll(s.exportDir, 0o755); err != nil {
		return domain.Reply{}, nil, err
	}
	filename := fmt.Sprintf("digest-%s-%s.md", slugify(string(digest.Thread)), digest.BuiltAt.Format("20060102-150405"))
	path := filepath.Join(s.exportDir, filename)
	if err := os.WriteFile(path, []byte(digest.Text), 0o644); err != nil {
		return domain.Reply{}, nil, err
	}
	// The markdown file is the export of record; the pdf rendition beside
	// it is best effort.
	if err := writeDigestPDF(strings.TrimSuffix(path, ".md")+".pdf", digest); err != nil {
		s.log.Warn(fmt.Sprintf("Failed to render pdf export : %v", err))
	}
	s.log.Info("digest exported", slog.String("file", path))

	return domain.Reply{Text: fmt.Sprintf("📄 Digest exported to `%s`.", filename), Private: true}, nil, nil
}

func (s *SummaryService) Find(ctx context.Context, cmd domain.FindMessagesCommand) (domain.Reply, []event.DomainEvent, error) {
	results, total, err := s.transcripts.Search(ctx, cmd.Query, cmd.Origin.Thread, cmd.Author, cmd.Limit, cmd.Offset)
	if err != nil {
		return domain.Reply{}, nil, err
	}
	if total == 0 {
		return domain.Reply{Text: fmt.Sprintf("No messages matched %q.", cmd.Query), Private: true}, nil, nil
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔎 %d result(s) for %q, showing %d-%d\n",
		total, cmd.Query, cmd.Offset+1, cmd.Offset+len(results)))
	for _, msg := range results {
		b.WriteString(fmt.Sprintf("• [%s] %s: %s\n",
			msg.At.Format("Jan 2 15:04"), msg.AuthorName, truncate(msg.Content, 120)))
	}
	return domain.Reply{Text: strings.TrimRight(b.String(), "\n"), Private: true}, nil, nil
}

// writeDigestPDF renders the digest as a one-page document. Core fonts are
// latin-1 only, so the text goes through the unicode translator first.
func writeDigestPDF(path string, digest domain.Digest) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 12, tr(fmt.Sprintf("Digest %s", digest.Thread)))
	pdf.Ln(16)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(40, 8, tr(fmt.Sprintf("%d messages, %d participants, built %s",
		digest.Messages, digest.Participants, digest.BuiltAt.Format("2006-01-02 15:04"))))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	pdf.MultiCell(0, 6, tr(digest.Text), "", "", false)
	return pdf.OutputFileAndClose(path)
}

// slugify keeps export filenames portable.
func slugify(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
