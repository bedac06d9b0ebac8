package projection

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderBoard(t *testing.T) {
	req := require.New(t)
	rows := []Row{
		{Name: "alice", Value: 60},
		{Name: "bob", Value: 30, Note: "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"},
		{Name: "carol", Value: 10},
	}

	board := RenderBoard("Respect Leaderboard", rows, func(v float64) string {
		return fmt.Sprintf("%.0f respect", v)
	})

	req.Contains(board, "**Respect Leaderboard**")
	req.Contains(board, "🥇 1. alice — 60 respect (60.0%)")
	req.Contains(board, "██████░░░░")
	req.Contains(board, "🥈 2. bob — 30 respect (30.0%)")
	req.Contains(board, "███░░░░░░░")
	req.Contains(board, "`0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed`")
	req.Contains(board, "🥉 3. carol — 10 respect (10.0%)")
	req.Contains(board, "█░░░░░░░░░")
}

func TestRenderBoard_FourthPlaceHasNoMedal(t *testing.T) {
	req := require.New(t)
	rows := []Row{
		{Name: "a", Value: 4},
		{Name: "b", Value: 3},
		{Name: "c", Value: 2},
		{Name: "d", Value: 1},
	}

	board := RenderBoard("Voice", rows, func(v float64) string { return fmt.Sprintf("%.0f", v) })

	req.Contains(board, "4. d — 1 (10.0%)")
	req.NotContains(board, "🥇 4.")
}

func TestRenderBoard_Empty(t *testing.T) {
	req := require.New(t)

	board := RenderBoard("Voice", nil, func(v float64) string { return "" })

	req.Contains(board, "Nothing to rank yet.")
}
