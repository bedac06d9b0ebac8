// Package projection builds read models from observed events and renders
// ranked boards. It does not emit events or talk to the platform.
package projection

import (
	"fmt"
	"strings"
)

const barSegments = 10

var medals = []string{"🥇", "🥈", "🥉"}

// Row is one ranked line of a board.
type Row struct {
	Name  string
	Value float64
	Note  string // optional extra line, e.g. a wallet address
}

// RenderBoard formats ranked rows the way the bot announces leaderboards:
// medals for the first three places, share of the total and a segmented
// progress bar. Rows are rendered in the order given.
func RenderBoard(title string, rows []Row, format func(v float64) string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n", title)

	var total float64
	for _, row := range rows {
		total += row.Value
	}

	for i, row := range rows {
		place := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			place = medals[i] + " " + place
		}

		share := 0.0
		if total > 0 {
			share = row.Value / total * 100
		}
		fmt.Fprintf(&b, "%s %s — %s (%.1f%%)\n", place, row.Name, format(row.Value), share)
		fmt.Fprintf(&b, "%s\n", bar(share))
		if row.Note != "" {
			fmt.Fprintf(&b, "`%s`\n", row.Note)
		}
	}

	if len(rows) == 0 {
		b.WriteString("Nothing to rank yet.\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func bar(share float64) string {
	filled := int(float64(barSegments) * share / 100)
	if filled > barSegments {
		filled = barSegments
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", barSegments-filled)
}
