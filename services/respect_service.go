package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"fractal-bot/domain"
	"fractal-bot/domain/event"
	"fractal-bot/errors"
	"fractal-bot/moderation"
	"fractal-bot/repositories"

	"github.com/jonboulle/clockwork"
)

type IRespectService interface {
	Give(ctx context.Context, cmd domain.GiveRespectCommand) (domain.Reply, []event.DomainEvent, error)
	Rank(ctx context.Context, cmd domain.RespectRankCommand) (domain.Reply, []event.DomainEvent, error)
}

// RespectService writes the append-only respect ledger. One grant per giver
// per 24 hours, regardless of the receiver.
type RespectService struct {
	ledger    repositories.IRespectRepository
	moderator *moderation.Moderator
	clock     clockwork.Clock
	log       *slog.Logger
}

func NewRespectService(
	ledger repositories.IRespectRepository,
	moderator *moderation.Moderator,
	clock clockwork.Clock,
	log *slog.Logger,
) IRespectService {
	return &RespectService{ledger: ledger, moderator: moderator, clock: clock, log: log}
}

func (s *RespectService) Give(_ context.Context, cmd domain.GiveRespectCommand) (domain.Reply, []event.DomainEvent, error) {
	giver := cmd.Origin.User
	if giver == cmd.Receiver {
		return domain.Reply{}, nil, errors.ErrSelfVote
	}

	// 1. The cooldown is per giver: one grant, then 24 hours of silence.
	last, err := s.ledger.LastGrant(giver)
	if err != nil {
		return domain.Reply{}, nil, err
	}
	now := s.clock.Now()
	if left := domain.CooldownLeft(last, now); left > 0 {
		return domain.Reply{}, nil, fmt.Errorf("%w: try again in %s", errors.ErrCooldownActive, domain.FormatDuration(left))
	}

	// 2. The reason is free text and goes through the same masking as chat.
	reason, hits := s.moderator.Mask(cmd.Reason)
	if len(hits) > 0 {
		s.log.Debug("respect reason masked", slog.Int("hits", len(hits)))
	}

	entry := domain.NewRespectEntry(giver, cmd.Receiver, reason, now)
	if err := s.ledger.Record(entry); err != nil {
		return domain.Reply{}, nil, err
	}
	s.log.Info("respect granted",
		slog.String("giver", string(giver)),
		slog.String("receiver", string(cmd.Receiver)))

	standings, err := s.ledger.Standings()
	if err != nil {
		return domain.Reply{}, nil, err
	}
	points := pointsOf(standings, cmd.Receiver)
	rank := domain.PositionOf(standings, cmd.Receiver)

	events := []event.DomainEvent{event.RespectGranted{
		EntryID:  entry.ID,
		Giver:    giver,
		Receiver: cmd.Receiver,
		Reason:   reason,
		At:       now,
	}}
	return domain.Reply{Text: fmt.Sprintf("🙏 %s receives respect from %s! They now hold %d respect (rank #%d).",
		cmd.Receiver, giver, points, rank)}, events, nil
}

func (s *RespectService) Rank(_ context.Context, cmd domain.RespectRankCommand) (domain.Reply, []event.DomainEvent, error) {
	standings, err := s.ledger.Standings()
	if err != nil {
		return domain.Reply{}, nil, err
	}

	rank := domain.PositionOf(standings, cmd.Target)
	if rank == 0 {
		return domain.Reply{Text: fmt.Sprintf("No respect recorded for %s yet.", cmd.Target), Private: true}, nil, nil
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("🏅 %s holds %d respect — rank #%d of %d.\n",
		cmd.Target, pointsOf(standings, cmd.Target), rank, len(standings)))
	podium := []string{"🥇", "🥈", "🥉"}
	for i, standing := range standings {
		if i >= len(podium) {
			break
		}
		b.WriteString(fmt.Sprintf("%s %s (%d)\n", podium[i], standing.Receiver, standing.Points))
	}
	return domain.Reply{Text: strings.TrimRight(b.String(), "\n")}, nil, nil
}

func pointsOf(standings []domain.Standing, user domain.UserID) int {
	for _, s := range standings {
		if s.Receiver == user {
			return s.Points
		}
	}
	return 0
}
