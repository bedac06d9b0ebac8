package domain

import (
	"time"

	"github.com/samber/lo"

	"fractal-bot/errors"
)

const (
	// FractalStartLevel is the level the first round plays for.
	FractalStartLevel = 6
	// FractalWinRatio of the remaining members is required to close a level.
	FractalWinRatio = 0.51
)

type LevelWinner struct {
	Level  int
	Member UserID
}

// FractalSession is the consensus game of one group: each round elects the
// holder of the current level among the remaining members. Votes can be
// changed at any time; a candidate reaching the win threshold takes the
// level and stops competing. The last remaining member takes the next level
// automatically.
type FractalSession struct {
	Group     string
	Level     int
	Remaining []UserID
	Votes     map[UserID]UserID
	Winners   []LevelWinner
	StartedAt time.Time
	Completed bool
}

func NewFractalSession(group *Group, now time.Time) (*FractalSession, error) {
	if len(group.Members) < MinGroupSize {
		return nil, errors.ErrGroupTooSmall
	}
	return &FractalSession{
		Group:     group.Name,
		Level:     FractalStartLevel,
		Remaining: append([]UserID(nil), group.Members...),
		Votes:     make(map[UserID]UserID),
		StartedAt: now,
	}, nil
}

// Threshold is the vote count required to win the current level.
func (s *FractalSession) Threshold() int {
	return int(float64(len(s.Remaining)) * FractalWinRatio)
}

// Cast records (or changes) a vote and returns the winners the ballot
// produced, if any. Closing a level can cascade: when one member remains
// they take the next level and the session completes.
func (s *FractalSession) Cast(voter, candidate UserID) ([]LevelWinner, error) {
	if s.Completed {
		return nil, errors.ErrVoteClosed
	}
	if voter == candidate {
		return nil, errors.ErrSelfVote
	}
	if !lo.Contains(s.Remaining, voter) {
		return nil, errors.ErrUnknownMember
	}
	if !lo.Contains(s.Remaining, candidate) {
		return nil, errors.ErrNotACandidate
	}

	s.Votes[voter] = candidate
	return s.closeLevels(), nil
}

// Counts tallies the current round's votes per candidate.
func (s *FractalSession) Counts() map[UserID]int {
	counts := make(map[UserID]int, len(s.Remaining))
	for _, candidate := range s.Votes {
		counts[candidate]++
	}
	return counts
}

func (s *FractalSession) closeLevels() []LevelWinner {
	var closed []LevelWinner

	needed := s.Threshold()
	for candidate, count := range s.Counts() {
		if count < needed {
			continue
		}
		closed = append(closed, s.crown(candidate))
		break
	}

	// The last member left takes the next level without a ballot.
	if !s.Completed && len(s.Remaining) == 1 {
		closed = append(closed, s.crown(s.Remaining[0]))
		s.Completed = true
	}
	return closed
}

func (s *FractalSession) crown(winner UserID) LevelWinner {
	w := LevelWinner{Level: s.Level, Member: winner}
	s.Winners = append(s.Winners, w)
	s.Remaining = lo.Without(s.Remaining, winner)
	s.Level--
	s.Votes = make(map[UserID]UserID)
	return w
}
