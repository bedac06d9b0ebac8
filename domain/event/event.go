package event

import (
	"time"

	"github.com/google/uuid"

	"fractal-bot/domain"
)

// DomainEvent is a business fact that already happened. Events flow through
// the fanout worker to the permanent sinks (archive, notifications,
// projections).
type DomainEvent interface {
	Name() string
	OccurredAt() time.Time
}

// MessageSeen is a raw thread message as delivered by the gateway,
// before moderation.
type MessageSeen struct {
	ID         uuid.UUID
	Thread     domain.ThreadRef
	Author     domain.UserID
	AuthorName string
	Content    string
	At         time.Time
}

func (e MessageSeen) Name() string          { return "MessageSeen" }
func (e MessageSeen) OccurredAt() time.Time { return e.At }

// MessageArchived is a moderated message ready for the transcript archive.
type MessageArchived struct {
	ID            uuid.UUID
	Thread        domain.ThreadRef
	Author        domain.UserID
	AuthorName    string
	Content       string
	MaskedPhrases []string
	Language      string
	At            time.Time
}

func (e MessageArchived) Name() string          { return "MessageArchived" }
func (e MessageArchived) OccurredAt() time.Time { return e.At }

type TimerStarted struct {
	TimerID  string
	Owner    domain.UserID
	Label    string
	Duration time.Duration
	At       time.Time
}

func (e TimerStarted) Name() string          { return "TimerStarted" }
func (e TimerStarted) OccurredAt() time.Time { return e.At }

type TimerWarning struct {
	TimerID   string
	Owner     domain.UserID
	Label     string
	Remaining time.Duration
	At        time.Time
}

func (e TimerWarning) Name() string          { return "TimerWarning" }
func (e TimerWarning) OccurredAt() time.Time { return e.At }

type TimerExpired struct {
	TimerID  string
	Owner    domain.UserID
	Label    string
	Duration time.Duration
	At       time.Time
}

func (e TimerExpired) Name() string          { return "TimerExpired" }
func (e TimerExpired) OccurredAt() time.Time { return e.At }

type RespectGranted struct {
	EntryID  string
	Giver    domain.UserID
	Receiver domain.UserID
	Reason   string
	At       time.Time
}

func (e RespectGranted) Name() string          { return "RespectGranted" }
func (e RespectGranted) OccurredAt() time.Time { return e.At }

type GroupCreated struct {
	Group   string
	Thread  domain.ThreadRef
	Members []domain.UserID
	At      time.Time
}

func (e GroupCreated) Name() string          { return "GroupCreated" }
func (e GroupCreated) OccurredAt() time.Time { return e.At }

// GroupDisbanded reports why a group went away: "owner" or "inactive".
type GroupDisbanded struct {
	Group  string
	Thread domain.ThreadRef
	Owner  domain.UserID
	Cause  string
	At     time.Time
}

func (e GroupDisbanded) Name() string          { return "GroupDisbanded" }
func (e GroupDisbanded) OccurredAt() time.Time { return e.At }

type VoteCompleted struct {
	Group   string
	Tallies []domain.Tally
	At      time.Time
}

func (e VoteCompleted) Name() string          { return "VoteCompleted" }
func (e VoteCompleted) OccurredAt() time.Time { return e.At }

type LevelWon struct {
	Group  string
	Level  int
	Member domain.UserID
	At     time.Time
}

func (e LevelWon) Name() string          { return "LevelWon" }
func (e LevelWon) OccurredAt() time.Time { return e.At }

type FractalCompleted struct {
	Group   string
	Winners []domain.LevelWinner
	At      time.Time
}

func (e FractalCompleted) Name() string          { return "FractalCompleted" }
func (e FractalCompleted) OccurredAt() time.Time { return e.At }

type VoiceJoined struct {
	User    domain.UserID
	Channel string
	At      time.Time
}

func (e VoiceJoined) Name() string          { return "VoiceJoined" }
func (e VoiceJoined) OccurredAt() time.Time { return e.At }

type VoiceLeft struct {
	User    domain.UserID
	Channel string
	Seconds int64
	At      time.Time
}

func (e VoiceLeft) Name() string          { return "VoiceLeft" }
func (e VoiceLeft) OccurredAt() time.Time { return e.At }
