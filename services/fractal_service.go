package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"fractal-bot/domain"
	"fractal-bot/domain/event"
	"fractal-bot/errors"
	"fractal-bot/repositories"

	"github.com/jonboulle/clockwork"
)

type IFractalService interface {
	Start(ctx context.Context, cmd domain.StartFractalCommand) (domain.Reply, []event.DomainEvent, error)
	Cast(ctx context.Context, cmd domain.CastFractalVoteCommand) (domain.Reply, []event.DomainEvent, error)
	Standings(ctx context.Context, cmd domain.FractalStandingsCommand) (domain.Reply, []event.DomainEvent, error)
}

// FractalService runs the level election game. Levels are handed out from
// the top down; winning a level removes the member from the candidate pool.
type FractalService struct {
	groups   repositories.IGroupRepository
	fractals repositories.IFractalRepository
	clock    clockwork.Clock
	log      *slog.Logger
}

func NewFractalService(
	groups repositories.IGroupRepository,
	fractals repositories.IFractalRepository,
	clock clockwork.Clock,
	log *slog.Logger,
) IFractalService {
	return &FractalService{groups: groups, fractals: fractals, clock: clock, log: log}
}

func (s *FractalService) Start(_ context.Context, cmd domain.StartFractalCommand) (domain.Reply, []event.DomainEvent, error) {
	group, err := s.groups.Get(cmd.Group)
	if err != nil {
		return domain.Reply{}, nil, err
	}
	if existing, err := s.fractals.Get(group.Name); err == nil && !existing.Completed {
		return domain.Reply{}, nil, fmt.Errorf("%w: level %d is still contested", errors.ErrVoteInProgress, existing.Level)
	}

	now := s.clock.Now()
	session, err := domain.NewFractalSession(&group, now)
	if err != nil {
		return domain.Reply{}, nil, err
	}
	if err := s.fractals.Save(*session); err != nil {
		return domain.Reply{}, nil, err
	}

	group.Touch(now)
	if err := s.groups.Save(group); err != nil {
		s.log.Warn("group touch failed", slog.String("group", group.Name), slog.Any("error", err))
	}
	s.log.Info("fractal round started", slog.String("group", group.Name), slog.Int("level", session.Level))

	reply := domain.Reply{Text: fmt.Sprintf("🎯 Fractal round started for **%s**!\nLevel %d is up — candidates: %s\n%d votes take the level.",
		group.Name, session.Level, joinMembers(session.Remaining), session.Threshold())}
	return reply, nil, nil
}

func (s *FractalService) Cast(_ context.Context, cmd domain.CastFractalVoteCommand) (domain.Reply, []event.DomainEvent, error) {
	session, err := s.fractals.Get(cmd.Group)
	if err != nil {
		return domain.Reply{}, nil, err
	}

	winners, err := session.Cast(cmd.Origin.User, cmd.Candidate)
	if err != nil {
		return domain.Reply{}, nil, err
	}
	if err := s.fractals.Save(session); err != nil {
		return domain.Reply{}, nil, err
	}

	now := s.clock.Now()
	if group, err := s.groups.Get(cmd.Group); err == nil {
		group.Touch(now)
		if err := s.groups.Save(group); err != nil {
			s.log.Warn("group touch failed", slog.String("group", group.Name), slog.Any("error", err))
		}
	}

	var events []event.DomainEvent
	for _, w := range winners {
		events = append(events, event.LevelWon{Group: session.Group, Level: w.Level, Member: w.Member, At: now})
	}
	if session.Completed {
		events = append(events, event.FractalCompleted{Group: session.Group, Winners: session.Winners, At: now})
		s.log.Info("fractal round completed", slog.String("group", session.Group))
	}

	if len(winners) == 0 {
		counts := session.Counts()
		reply := domain.Reply{Text: fmt.Sprintf("✔️ Vote recorded: %s (%d/%d)",
			cmd.Candidate, counts[cmd.Candidate], session.Threshold())}
		return reply, events, nil
	}

	var b strings.Builder
	for _, w := range winners {
		b.WriteString(fmt.Sprintf("🏆 Level %d goes to **%s**!\n", w.Level, w.Member))
	}
	if session.Completed {
		b.WriteString("The fractal round is complete! 🎉")
	} else {
		b.WriteString(fmt.Sprintf("Level %d is up next — candidates: %s", session.Level, joinMembers(session.Remaining)))
	}
	return domain.Reply{Text: strings.TrimRight(b.String(), "\n")}, events, nil
}

func (s *FractalService) Standings(_ context.Context, cmd domain.FractalStandingsCommand) (domain.Reply, []event.DomainEvent, error) {
	session, err := s.fractals.Get(cmd.Group)
	if err != nil {
		return domain.Reply{}, nil, err
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("**Fractal standings for %s**\n", session.Group))
	for _, w := range session.Winners {
		b.WriteString(fmt.Sprintf("Level %d: %s\n", w.Level, w.Member))
	}
	if session.Completed {
		b.WriteString("Round complete.")
		return domain.Reply{Text: strings.TrimRight(b.String(), "\n")}, nil, nil
	}

	b.WriteString(fmt.Sprintf("Level %d in play — candidates: %s\n", session.Level, joinMembers(session.Remaining)))
	counts := session.Counts()
	for _, candidate := range session.Remaining {
		if n := counts[candidate]; n > 0 {
			b.WriteString(fmt.Sprintf("  %s: %s\n", candidate, countVotes(n)))
		}
	}
	b.WriteString(fmt.Sprintf("%d votes take the level.", session.Threshold()))
	return domain.Reply{Text: strings.TrimRight(b.String(), "\n")}, nil, nil
}
