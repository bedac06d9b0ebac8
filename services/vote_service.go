package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fractal-bot/domain"
	"fractal-bot/domain/event"
	"fractal-bot/errors"
	"fractal-bot/repositories"

	"github.com/jonboulle/clockwork"
)

type IVoteService interface {
	Start(ctx context.Context, cmd domain.StartVoteCommand) (domain.Reply, []event.DomainEvent, error)
	Cast(ctx context.Context, cmd domain.CastVoteCommand) (domain.Reply, []event.DomainEvent, error)
	Results(ctx context.Context, cmd domain.VoteResultsCommand) (domain.Reply, []event.DomainEvent, error)
}

// VoteService runs the sequential respect ballot of a group: one round per
// member, cast in registration order.
type VoteService struct {
	groups repositories.IGroupRepository
	votes  repositories.IVoteRepository
	clock  clockwork.Clock
	log    *slog.Logger
}

func NewVoteService(
	groups repositories.IGroupRepository,
	votes repositories.IVoteRepository,
	clock clockwork.Clock,
	log *slog.Logger,
) IVoteService {
	return &VoteService{groups: groups, votes: votes, clock: clock, log: log}
}

func (s *VoteService) Start(_ context.Context, cmd domain.StartVoteCommand) (domain.Reply, []event.DomainEvent, error) {
	group, err := s.groups.Get(cmd.Group)
	if err != nil {
		return domain.Reply{}, nil, err
	}
	if existing, err := s.votes.Get(group.Name); err == nil && !existing.Completed {
		return domain.Reply{}, nil, fmt.Errorf("%w: waiting on %s", errors.ErrVoteInProgress, existing.CurrentVoter())
	}

	now := s.clock.Now()
	round, err := domain.NewVoteRound(&group, now)
	if err != nil {
		return domain.Reply{}, nil, err
	}
	if err := s.votes.Save(*round); err != nil {
		return domain.Reply{}, nil, err
	}
	s.touch(group, now)
	s.log.Info("ballot opened", slog.String("group", group.Name))

	reply := domain.Reply{Text: fmt.Sprintf("🗳️ Respect ballot opened for **%s**.\nVoting order: %s\n%s votes first.",
		group.Name, joinMembers(round.Members), round.CurrentVoter())}
	return reply, nil, nil
}

func (s *VoteService) Cast(_ context.Context, cmd domain.CastVoteCommand) (domain.Reply, []event.DomainEvent, error) {
	round, err := s.votes.Get(cmd.Group)
	if err != nil {
		return domain.Reply{}, nil, err
	}
	if err := round.Cast(cmd.Origin.User, cmd.Target); err != nil {
		return domain.Reply{}, nil, err
	}
	if err := s.votes.Save(round); err != nil {
		return domain.Reply{}, nil, err
	}

	now := s.clock.Now()
	if group, err := s.groups.Get(cmd.Group); err == nil {
		s.touch(group, now)
	}

	if !round.Completed {
		reply := domain.Reply{Text: fmt.Sprintf("✔️ Vote recorded. Next up: %s", round.CurrentVoter())}
		return reply, nil, nil
	}

	// Last ballot in: results are final from here on.
	tallies, err := round.Results()
	if err != nil {
		return domain.Reply{}, nil, err
	}
	s.log.Info("ballot completed", slog.String("group", round.Group))
	events := []event.DomainEvent{event.VoteCompleted{
		Group:   round.Group,
		Tallies: tallies,
		At:      now,
	}}
	return domain.Reply{Text: "🏁 All votes are in!\n" + formatTallies(round.Group, tallies)}, events, nil
}

func (s *VoteService) Results(_ context.Context, cmd domain.VoteResultsCommand) (domain.Reply, []event.DomainEvent, error) {
	round, err := s.votes.Get(cmd.Group)
	if err != nil {
		return domain.Reply{}, nil, err
	}
	tallies, err := round.Results()
	if err != nil {
		return domain.Reply{}, nil, fmt.Errorf("%w: waiting on %s", err, round.CurrentVoter())
	}
	return domain.Reply{Text: formatTallies(round.Group, tallies)}, nil, nil
}

// touch refreshes the group's activity mark so the cleanup sweep leaves it
// alone while a ballot is live.
func (s *VoteService) touch(group domain.Group, now time.Time) {
	group.Touch(now)
	if err := s.groups.Save(group); err != nil {
		s.log.Warn("group touch failed", slog.String("group", group.Name), slog.Any("error", err))
	}
}

func formatTallies(group string, tallies []domain.Tally) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("**Respect ballot results for %s**\n", group))
	for i, t := range tallies {
		b.WriteString(fmt.Sprintf("%d. %s — %s\n", i+1, t.Member, countVotes(t.Count)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func countVotes(n int) string {
	if n == 1 {
		return "1 vote"
	}
	return fmt.Sprintf("%d votes", n)
}
