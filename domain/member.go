package domain

import "time"

// UserID is the platform identifier of a user.
type UserID string

// Member is a registered community member.
type Member struct {
	ID       UserID
	Name     string
	Wallet   string // optional, hex form
	JoinedAt time.Time
}
