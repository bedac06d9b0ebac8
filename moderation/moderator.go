package moderation

import (
	"fmt"
	"log/slog"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Moderator masks known scam phrases in message text before it is archived.
// Matching is resilient to casing, spacing, punctuation and common leet
// substitutions, so "Fr33-N1tro!" still hits the "free nitro" pattern.
type Moderator struct {
	matcher  *goahocorasick.Machine
	maskChar rune
	log      *slog.Logger
}

type textIndex struct {
	Normalized []rune
	OrigIdx    []int
}

// NewModerator initializes the Aho-Corasick automaton with a normalized version of the provided phrase list.
// Phrases that normalize to nothing (pure noise) are dropped.
func NewModerator(phrases []string, maskChar rune, log *slog.Logger) (Moderator, error) {
	patterns := make([][]rune, 0, len(phrases))
	for _, phrase := range phrases {
		normalized := normalizeRunes([]rune(phrase))
		if len(normalized) == 0 {
			continue
		}
		patterns = append(patterns, normalized)
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return Moderator{}, err
	}
	log.Debug(fmt.Sprintf("Moderator armed with %d phrases", len(patterns)))
	return Moderator{matcher: m, maskChar: maskChar, log: log}, nil
}

// Mask replaces every occurrence of a known phrase with the mask character,
// preserving the surrounding text, and reports each phrase hit in match
// order, duplicates included.
func (m *Moderator) Mask(original string) (string, []string) {
	index := m.normalize(original)
	if len(index.Normalized) == 0 {
		return original, nil
	}

	origRunes := []rune(original)
	spans := m.matcher.MultiPatternSearch(index.Normalized, false)
	if len(spans) == 0 {
		return original, nil
	}

	var hits []string
	for _, span := range spans {
		normStart := span.Pos
		normEnd := normStart + len(span.Word)

		if normStart < 0 || normEnd > len(index.OrigIdx) {
			continue
		}
		hits = append(hits, string(span.Word))

		origStart := index.OrigIdx[normStart]
		lastCharOrigIdx := index.OrigIdx[normEnd-1]
		origEnd := lastCharOrigIdx + 1

		for i := origStart; i < origEnd; i++ {
			origRunes[i] = m.maskChar
		}
	}

	return string(origRunes), hits
}

// normalize transforms the input string into a searchable format and tracks original rune positions.
func (m *Moderator) normalize(input string) textIndex {
	origRunes := []rune(input)
	norm := make([]rune, 0, len(origRunes))
	origIdx := make([]int, 0, len(origRunes))

	for i, r := range origRunes {
		clean := simplifyRune(r)
		if isNoise(clean) {
			continue
		}
		norm = append(norm, unicode.ToLower(clean))
		origIdx = append(origIdx, i)
	}
	return textIndex{Normalized: norm, OrigIdx: origIdx}
}

// normalizeRunes applies simplification and noise removal to a slice of runes.
func normalizeRunes(input []rune) []rune {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		clean := simplifyRune(r)
		if isNoise(clean) {
			continue
		}
		out = append(out, unicode.ToLower(clean))
	}
	return out
}

// simplifyRune maps common Leet speak characters back to their standard alphabet counterparts.
func simplifyRune(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}

// isNoise identifies characters that should be ignored during the pattern matching phase.
func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
