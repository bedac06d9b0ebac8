package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/samber/lo"
)

// TranscriptMessage is one archived thread message.
type TranscriptMessage struct {
	ID         string
	Thread     ThreadRef
	Author     UserID
	AuthorName string
	Content    string
	At         time.Time
}

const (
	// DigestMessageLimit caps how far back a digest looks.
	DigestMessageLimit = 100

	digestMinWordLen      = 5
	digestTopWords        = 5
	digestTopContributors = 3
)

type WordCount struct {
	Word  string
	Count int
}

type Contributor struct {
	Name  string
	Count int
}

// Digest is the local summary of a thread transcript.
type Digest struct {
	Thread       ThreadRef
	Messages     int
	Participants int
	Span         time.Duration
	Contributors []Contributor
	Topics       []WordCount
	Language     string // ISO 639-1 code, "" when detection is unsure
	Text         string
	BuiltAt      time.Time
}

// BuildDigest computes the word-frequency summary of a transcript: covered
// span, contributor counts, and the most frequent words longer than four
// characters. Messages are ordered oldest first regardless of input order.
func BuildDigest(thread ThreadRef, threadName string, msgs []TranscriptMessage, now time.Time) Digest {
	msgs = append([]TranscriptMessage(nil), msgs...)
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].At.Before(msgs[j].At) })

	counts := make(map[string]int)
	var contents []string
	for _, m := range msgs {
		counts[m.AuthorName]++
		contents = append(contents, m.Content)
	}

	contributors := lo.MapToSlice(counts, func(name string, count int) Contributor {
		return Contributor{Name: name, Count: count}
	})
	sort.Slice(contributors, func(i, j int) bool {
		if contributors[i].Count != contributors[j].Count {
			return contributors[i].Count > contributors[j].Count
		}
		return contributors[i].Name < contributors[j].Name
	})

	all := strings.Join(contents, " ")

	var span time.Duration
	if len(msgs) > 1 {
		span = msgs[len(msgs)-1].At.Sub(msgs[0].At)
	}

	d := Digest{
		Thread:       thread,
		Messages:     len(msgs),
		Participants: len(counts),
		Span:         span,
		Contributors: contributors,
		Topics:       topWords(all),
		Language:     detectLanguage(all),
		BuiltAt:      now,
	}
	d.Text = d.render(threadName)
	return d
}

func topWords(text string) []WordCount {
	freq := make(map[string]int)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		if len(word) >= digestMinWordLen {
			freq[word]++
		}
	}

	words := lo.MapToSlice(freq, func(word string, count int) WordCount {
		return WordCount{Word: word, Count: count}
	})
	sort.Slice(words, func(i, j int) bool {
		if words[i].Count != words[j].Count {
			return words[i].Count > words[j].Count
		}
		return words[i].Word < words[j].Word
	})
	if len(words) > digestTopWords {
		words = words[:digestTopWords]
	}
	return words
}

func detectLanguage(text string) string {
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6391()
}

func (d Digest) render(threadName string) string {
	var b strings.Builder

	b.WriteString("**Discussion Summary**\n\n")
	fmt.Fprintf(&b, "This discussion in %s lasted for %s and included %d messages from %d participants.\n\n",
		threadName, formatSpan(d.Span), d.Messages, d.Participants)

	if len(d.Contributors) > 0 {
		b.WriteString("**Top Contributors:**\n")
		for _, c := range d.Contributors[:min(digestTopContributors, len(d.Contributors))] {
			fmt.Fprintf(&b, "• %s: %d messages\n", c.Name, c.Count)
		}
		b.WriteString("\n")
	}

	if len(d.Topics) > 0 {
		b.WriteString("**Key Topics:**\n")
		for _, w := range d.Topics {
			fmt.Fprintf(&b, "• %s (mentioned %d times)\n", w.Word, w.Count)
		}
		b.WriteString("\n")
	}

	if d.Language != "" {
		fmt.Fprintf(&b, "**Language:** %s\n\n", d.Language)
	}

	b.WriteString("*Note: this is an automated summary. For a more accurate picture, review the full discussion.*")
	return b.String()
}

// formatSpan renders a transcript time span, coarser than timer output.
func formatSpan(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	var parts []string
	if days > 0 {
		parts = append(parts, plural(days, "day"))
	}
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 {
		parts = append(parts, plural(minutes, "minute"))
	}
	if len(parts) == 0 {
		return "less than a minute"
	}
	return strings.Join(parts, ", ")
}
