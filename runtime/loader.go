package runtime

import (
	"bufio"
	"bytes"
	"embed"
	"io/fs"
	"strings"

	"fractal-bot/errors"
)

// PhraseData carries the result of the loading process including metadata for logging.
type PhraseData struct {
	Phrases   []string
	Languages []string
}

// PhraseLoader is responsible for reading and parsing scam phrase
// dictionaries from embedded files.
type PhraseLoader struct {
	fs embed.FS
}

func NewPhraseLoader(f embed.FS) *PhraseLoader {
	return &PhraseLoader{fs: f}
}

// LoadAll scans the given directory path in the embedded FS, identifying
// .txt files as language dictionaries and parsing their contents into a
// unique list of phrases. Blank lines and # comments are skipped.
func (l *PhraseLoader) LoadAll(path string) (*PhraseData, error) {
	entries, err := fs.ReadDir(l.fs, path)
	if err != nil {
		return nil, err
	}

	var languages []string
	unique := make(map[string]struct{})

	for _, entry := range entries {
		// Dictionaries are flat, one file per language.
		if entry.IsDir() {
			return nil, errors.ErrOnlyPhraseDirs
		}

		// Track the language based on the filename (e.g., "fr.txt" -> "fr")
		lang := strings.TrimSuffix(entry.Name(), ".txt")
		languages = append(languages, lang)

		data, err := l.fs.ReadFile(path + "/" + entry.Name())
		if err != nil {
			return nil, err
		}

		// Use a scanner to handle different line endings (\n vs \r\n) correctly
		// ⚠️Don't use strings.Split
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			line := strings.ToLower(strings.TrimSpace(scanner.Text()))
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			unique[line] = struct{}{}
		}

		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}

	if len(unique) == 0 {
		return nil, errors.ErrEmptyPhrases
	}

	phrases := make([]string, 0, len(unique))
	for p := range unique {
		phrases = append(phrases, p)
	}

	return &PhraseData{
		Phrases:   phrases,
		Languages: languages,
	}, nil
}

// ScamPhrases loads the scam dictionaries shipped inside the binary. Both
// the moderation worker and the name checks in the services build their
// automaton from this set.
func ScamPhrases() (*PhraseData, error) {
	return NewPhraseLoader(scamsFolder).LoadAll("scams")
}
