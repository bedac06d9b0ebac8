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
	"github.com/samber/lo"
)

type ITimerService interface {
	Start(ctx context.Context, cmd domain.StartTimerCommand) (domain.Reply, []event.DomainEvent, error)
	List(ctx context.Context, cmd domain.ListTimersCommand) (domain.Reply, []event.DomainEvent, error)
	Cancel(ctx context.Context, cmd domain.CancelTimerCommand) (domain.Reply, []event.DomainEvent, error)
	Pause(ctx context.Context, cmd domain.PauseTimerCommand) (domain.Reply, []event.DomainEvent, error)
	Resume(ctx context.Context, cmd domain.ResumeTimerCommand) (domain.Reply, []event.DomainEvent, error)
}

// TimerService manages per-user countdowns. Expiry itself is driven by the
// ticker worker; this service covers the user-facing lifecycle.
type TimerService struct {
	timers repositories.ITimerRepository
	owner  domain.UserID
	clock  clockwork.Clock
	log    *slog.Logger
}

func NewTimerService(timers repositories.ITimerRepository, owner domain.UserID, clock clockwork.Clock, log *slog.Logger) ITimerService {
	return &TimerService{timers: timers, owner: owner, clock: clock, log: log}
}

func (s *TimerService) Start(_ context.Context, cmd domain.StartTimerCommand) (domain.Reply, []event.DomainEvent, error) {
	now := s.clock.Now()
	timer, err := domain.NewTimer(cmd.Origin.User, cmd.Label, cmd.Duration, now)
	if err != nil {
		return domain.Reply{}, nil, err
	}
	if err := timer.Start(now); err != nil {
		return domain.Reply{}, nil, err
	}
	if err := s.timers.Save(*timer); err != nil {
		return domain.Reply{}, nil, err
	}
	s.log.Info("timer started",
		slog.String("timer", timer.ShortID()),
		slog.String("owner", string(timer.Owner)),
		slog.Duration("duration", timer.Duration))

	events := []event.DomainEvent{event.TimerStarted{
		TimerID:  timer.ID,
		Owner:    timer.Owner,
		Label:    timer.Label,
		Duration: timer.Duration,
		At:       now,
	}}
	text := fmt.Sprintf("⏱️ Timer `%s` started for %s. I will notify you when it's done.",
		timer.ShortID(), domain.FormatDuration(timer.Duration))
	if timer.Label != "" {
		text = fmt.Sprintf("⏱️ Timer `%s` (%s) started for %s. I will notify you when it's done.",
			timer.ShortID(), timer.Label, domain.FormatDuration(timer.Duration))
	}
	return domain.Reply{Text: text}, events, nil
}

func (s *TimerService) List(_ context.Context, cmd domain.ListTimersCommand) (domain.Reply, []event.DomainEvent, error) {
	timers, err := s.timers.ByOwner(cmd.Origin.User)
	if err != nil {
		return domain.Reply{}, nil, err
	}
	if len(timers) == 0 {
		return domain.Reply{Text: "You have no timers running.", Private: true}, nil, nil
	}

	now := s.clock.Now()
	var b strings.Builder
	b.WriteString(fmt.Sprintf("**Your timers (%d)**\n", len(timers)))
	for _, t := range timers {
		line := fmt.Sprintf("• `%s` — %s left", t.ShortID(), domain.FormatDuration(t.Remaining(now)))
		if t.Label != "" {
			line = fmt.Sprintf("• `%s` (%s) — %s left", t.ShortID(), t.Label, domain.FormatDuration(t.Remaining(now)))
		}
		if t.State == domain.TimerPaused {
			line += " (paused)"
		}
		b.WriteString(line + "\n")
	}
	return domain.Reply{Text: strings.TrimRight(b.String(), "\n"), Private: true}, nil, nil
}

func (s *TimerService) Cancel(_ context.Context, cmd domain.CancelTimerCommand) (domain.Reply, []event.DomainEvent, error) {
	timer, err := s.find(cmd.Origin.User, cmd.ID)
	if err != nil && cmd.Origin.User == s.owner {
		// The bot owner can cancel anyone's stuck countdown.
		timer, err = s.findAcrossOwners(cmd.ID)
	}
	if err != nil {
		return domain.Reply{}, nil, err
	}
	if err := timer.Cancel(); err != nil {
		return domain.Reply{}, nil, err
	}
	if err := s.timers.Delete(timer.Owner, timer.ID); err != nil {
		return domain.Reply{}, nil, err
	}
	s.log.Info("timer cancelled", slog.String("timer", timer.ShortID()))

	return domain.Reply{Text: fmt.Sprintf("🛑 Timer `%s` cancelled with %s left.",
		timer.ShortID(), domain.FormatDuration(timer.Remaining(s.clock.Now())))}, nil, nil
}

func (s *TimerService) Pause(_ context.Context, cmd domain.PauseTimerCommand) (domain.Reply, []event.DomainEvent, error) {
	timer, err := s.find(cmd.Origin.User, cmd.ID)
	if err != nil {
		return domain.Reply{}, nil, err
	}
	now := s.clock.Now()
	if err := timer.Pause(now); err != nil {
		return domain.Reply{}, nil, err
	}
	if err := s.timers.Save(timer); err != nil {
		return domain.Reply{}, nil, err
	}
	return domain.Reply{Text: fmt.Sprintf("⏸️ Timer `%s` paused with %s left.",
		timer.ShortID(), domain.FormatDuration(timer.Remaining(now)))}, nil, nil
}

func (s *TimerService) Resume(_ context.Context, cmd domain.ResumeTimerCommand) (domain.Reply, []event.DomainEvent, error) {
	timer, err := s.find(cmd.Origin.User, cmd.ID)
	if err != nil {
		return domain.Reply{}, nil, err
	}
	now := s.clock.Now()
	if err := timer.Resume(now); err != nil {
		return domain.Reply{}, nil, err
	}
	if err := s.timers.Save(timer); err != nil {
		return domain.Reply{}, nil, err
	}
	return domain.Reply{Text: fmt.Sprintf("▶️ Timer `%s` resumed, %s left.",
		timer.ShortID(), domain.FormatDuration(timer.Remaining(now)))}, nil, nil
}

// find resolves a timer by full id or unambiguous prefix among the caller's
// own timers, so nobody can touch somebody else's countdown.
func (s *TimerService) find(owner domain.UserID, id string) (domain.Timer, error) {
	timers, err := s.timers.ByOwner(owner)
	if err != nil {
		return domain.Timer{}, err
	}
	return matchTimer(timers, id)
}

func (s *TimerService) findAcrossOwners(id string) (domain.Timer, error) {
	timers, err := s.timers.All()
	if err != nil {
		return domain.Timer{}, err
	}
	return matchTimer(timers, id)
}

func matchTimer(timers []domain.Timer, id string) (domain.Timer, error) {
	matches := lo.Filter(timers, func(t domain.Timer, _ int) bool {
		return t.Matches(id)
	})
	switch len(matches) {
	case 0:
		return domain.Timer{}, fmt.Errorf("%w: %s", errors.ErrTimerNotFound, id)
	case 1:
		return matches[0], nil
	default:
		return domain.Timer{}, fmt.Errorf("%w: %q matches %d timers, use more characters", errors.ErrTimerNotFound, id, len(matches))
	}
}
