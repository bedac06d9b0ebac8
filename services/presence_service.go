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
	"fractal-bot/gateway"
	"fractal-bot/projection"
	"fractal-bot/repositories"

	"github.com/jonboulle/clockwork"
	"github.com/samber/lo"
)

type IPresenceService interface {
	Joined(ctx context.Context, cmd domain.VoiceJoinedCommand) (domain.Reply, []event.DomainEvent, error)
	Left(ctx context.Context, cmd domain.VoiceLeftCommand) (domain.Reply, []event.DomainEvent, error)
	Stats(ctx context.Context, cmd domain.VoiceStatsCommand) (domain.Reply, []event.DomainEvent, error)
	Top(ctx context.Context, cmd domain.VoiceTopCommand) (domain.Reply, []event.DomainEvent, error)
	Shuffle(ctx context.Context, cmd domain.ShuffleVoiceCommand) (domain.Reply, []event.DomainEvent, error)
}

// PresenceService accumulates voice channel time. Join and leave come from
// the gateway as state changes, not user commands, so they reply nothing.
type PresenceService struct {
	presence repositories.IPresenceRepository
	mover    gateway.Mover
	owner    domain.UserID
	clock    clockwork.Clock
	log      *slog.Logger
}

func NewPresenceService(presence repositories.IPresenceRepository, mover gateway.Mover,
	owner domain.UserID, clock clockwork.Clock, log *slog.Logger) IPresenceService {
	return &PresenceService{presence: presence, mover: mover, owner: owner, clock: clock, log: log}
}

func (s *PresenceService) Joined(_ context.Context, cmd domain.VoiceJoinedCommand) (domain.Reply, []event.DomainEvent, error) {
	user := cmd.Origin.User
	at := cmd.At
	if at.IsZero() {
		at = s.clock.Now()
	}

	// A join over an open session means the leave was missed. Credit the
	// old stretch before starting the new one.
	if stale, err := s.presence.Close(user); err == nil {
		if seconds := int64(at.Sub(stale.Since).Seconds()); seconds > 0 {
			if err := s.presence.AddSeconds(user, seconds); err != nil {
				return domain.Reply{}, nil, err
			}
		}
	}

	if err := s.presence.Open(domain.VoiceSession{User: user, Channel: cmd.Channel, Since: at}); err != nil {
		return domain.Reply{}, nil, err
	}
	s.log.Debug("voice joined", slog.String("user", string(user)), slog.String("channel", cmd.Channel))

	events := []event.DomainEvent{event.VoiceJoined{User: user, Channel: cmd.Channel, At: at}}
	return domain.Reply{}, events, nil
}

func (s *PresenceService) Left(_ context.Context, cmd domain.VoiceLeftCommand) (domain.Reply, []event.DomainEvent, error) {
	user := cmd.Origin.User
	at := cmd.At
	if at.IsZero() {
		at = s.clock.Now()
	}

	session, err := s.presence.Close(user)
	if err != nil {
		// A leave without a matching join is platform noise.
		s.log.Debug("voice leave without session", slog.String("user", string(user)))
		return domain.Reply{}, nil, nil
	}

	seconds := int64(at.Sub(session.Since).Seconds())
	if seconds < 0 {
		seconds = 0
	}
	if err := s.presence.AddSeconds(user, seconds); err != nil {
		return domain.Reply{}, nil, err
	}
	s.log.Debug("voice left",
		slog.String("user", string(user)),
		slog.Int64("seconds", seconds))

	events := []event.DomainEvent{event.VoiceLeft{User: user, Channel: session.Channel, Seconds: seconds, At: at}}
	return domain.Reply{}, events, nil
}

func (s *PresenceService) Stats(_ context.Context, cmd domain.VoiceStatsCommand) (domain.Reply, []event.DomainEvent, error) {
	total, err := s.presence.TotalOf(cmd.Target)
	if err != nil {
		return domain.Reply{}, nil, err
	}

	connected := false
	if sessions, err := s.presence.OpenSessions(); err == nil {
		connected = lo.ContainsBy(sessions, func(s domain.VoiceSession) bool { return s.User == cmd.Target })
	}

	if total.Seconds == 0 && !connected {
		return domain.Reply{Text: fmt.Sprintf("%s has not spent any time in voice channels yet.", cmd.Target), Private: true}, nil, nil
	}
	text := fmt.Sprintf("🎧 %s has spent %s in voice channels.", cmd.Target, domain.FormatDuration(total.Duration()))
	if connected {
		text += " They are connected right now."
	}
	return domain.Reply{Text: text}, nil, nil
}

func (s *PresenceService) Top(_ context.Context, cmd domain.VoiceTopCommand) (domain.Reply, []event.DomainEvent, error) {
	totals, err := s.presence.Totals()
	if err != nil {
		return domain.Reply{}, nil, err
	}
	top := domain.TopVoice(totals, cmd.Count)
	if len(top) == 0 {
		return domain.Reply{Text: "No voice activity recorded yet.", Private: true}, nil, nil
	}

	rows := lo.Map(top, func(t domain.VoiceTotal, _ int) projection.Row {
		return projection.Row{Name: string(t.User), Value: float64(t.Seconds)}
	})
	board := projection.RenderBoard("Voice Leaderboard", rows, func(v float64) string {
		return domain.FormatDuration(time.Duration(v) * time.Second)
	})
	return domain.Reply{Text: board}, nil, nil
}

func (s *PresenceService) Shuffle(ctx context.Context, cmd domain.ShuffleVoiceCommand) (domain.Reply, []event.DomainEvent, error) {
	if cmd.Origin.User != s.owner {
		return domain.Reply{}, nil, errors.ErrNotOwner
	}

	sessions, err := s.presence.OpenSessions()
	if err != nil {
		return domain.Reply{}, nil, err
	}
	if len(sessions) == 0 {
		return domain.Reply{Text: "Nobody is in a voice channel right now.", Private: true}, nil, nil
	}

	channels, err := s.mover.VoiceChannels(ctx)
	if err != nil {
		return domain.Reply{}, nil, err
	}
	if len(channels) == 0 {
		return domain.Reply{Text: "No voice channels to shuffle into.", Private: true}, nil, nil
	}

	size := cmd.PerChannel
	if size < 1 {
		size = 1
	}

	users := lo.Map(sessions, func(s domain.VoiceSession, _ int) domain.UserID { return s.User })
	users = lo.Shuffle(users)
	teams := lo.Chunk(users, size)
	if len(teams) > len(channels) {
		// More members than the channels hold at this size. The overflow
		// keeps its current channel.
		teams = teams[:len(channels)]
	}

	var b strings.Builder
	b.WriteString("🎲 **Shuffle**\n")
	for i, team := range teams {
		channel := channels[i]
		for _, user := range team {
			if err := s.mover.Move(ctx, user, channel); err != nil {
				s.log.Warn(fmt.Sprintf("Failed to move %s to %s : %v", user, channel, err))
			}
		}
		b.WriteString(fmt.Sprintf("%s: %s\n", channel, joinMembers(team)))
	}
	if left := len(users) - len(lo.Flatten(teams)); left > 0 {
		b.WriteString(fmt.Sprintf("%d members stay where they are\n", left))
	}
	return domain.Reply{Text: strings.TrimRight(b.String(), "\n")}, nil, nil
}
