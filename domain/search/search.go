package search

import (
	"strconv"
	"strings"
)

const defaultLimit = 10

// Query represents the structured parameters of a transcript search.
// It decouples the raw chat input from the index engine requirements.
type Query struct {
	RawInput string // The original message from the user
	Terms    string // The actual text to search in the index
	From     string // Restrict to one author, empty for anyone
	Limit    int    // Pagination: number of results
	Page     int    // 1-based page
}

// NewQuery parses a raw string to extract command-line style arguments.
// Example: find invoice --from alice --limit 5 --page 2
func NewQuery(input string) *Query {
	query := &Query{
		RawInput: input,
		Limit:    defaultLimit,
		Page:     1,
	}

	parts := strings.Fields(input)
	var textTerms []string

	for i := 0; i < len(parts); i++ {
		part := parts[i]

		// Handle flags like --from alice or --limit 5
		if strings.HasPrefix(part, "--") && i+1 < len(parts) {
			key := strings.TrimPrefix(part, "--")
			val := parts[i+1]

			switch key {
			case "from":
				query.From = val
			case "limit":
				if n, err := strconv.Atoi(val); err == nil && n > 0 {
					query.Limit = n
				}
			case "page":
				if n, err := strconv.Atoi(val); err == nil && n > 0 {
					query.Page = n
				}
			}
			i++ // Skip the value part in next iteration
			continue
		}

		// If it's not a flag, it's a search term
		if !strings.HasPrefix(part, "/") {
			textTerms = append(textTerms, part)
		}
	}

	query.Terms = strings.Join(textTerms, " ")
	return query
}

// Offset converts the page into the index offset.
func (q *Query) Offset() int {
	return (q.Page - 1) * q.Limit
}
