package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// RespectCooldown gates how often one giver can grant respect, to anyone.
const RespectCooldown = 24 * time.Hour

// RespectEntry is one append-only ledger line.
type RespectEntry struct {
	ID       string
	Giver    UserID
	Receiver UserID
	Reason   string
	At       time.Time
}

func NewRespectEntry(giver, receiver UserID, reason string, now time.Time) RespectEntry {
	return RespectEntry{
		ID:       uuid.NewString(),
		Giver:    giver,
		Receiver: receiver,
		Reason:   reason,
		At:       now,
	}
}

// CooldownLeft returns how long the giver still has to wait after their last
// grant. A grant exactly RespectCooldown later is admitted.
func CooldownLeft(lastGrant, now time.Time) time.Duration {
	left := RespectCooldown - now.Sub(lastGrant)
	if left <= 0 {
		return 0
	}
	return left
}

type Standing struct {
	Receiver UserID
	Points   int
}

// ComputeStandings orders receivers by descending points, ties broken
// alphabetically by receiver identifier.
func ComputeStandings(totals map[UserID]int) []Standing {
	standings := make([]Standing, 0, len(totals))
	for receiver, points := range totals {
		standings = append(standings, Standing{Receiver: receiver, Points: points})
	}
	sort.Slice(standings, func(i, j int) bool {
		if standings[i].Points != standings[j].Points {
			return standings[i].Points > standings[j].Points
		}
		return standings[i].Receiver < standings[j].Receiver
	})
	return standings
}

// PositionOf returns the 1-based rank of user in standings, 0 when absent.
func PositionOf(standings []Standing, user UserID) int {
	for i, s := range standings {
		if s.Receiver == user {
			return i + 1
		}
	}
	return 0
}
