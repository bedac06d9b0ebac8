package gateway

import (
	"context"
	"log/slog"

	"fractal-bot/domain"
)

// Mover is the platform operation behind the voice shuffle: list the guild's
// voice channels and move a connected member into one of them.
type Mover interface {
	VoiceChannels(ctx context.Context) ([]string, error)
	Move(ctx context.Context, user domain.UserID, channel string) error
}

// LogMover stands in when no platform connection is attached. It reports a
// single fake channel so the shuffle still produces one team.
type LogMover struct {
	log *slog.Logger
}

func NewLogMover(log *slog.Logger) *LogMover {
	return &LogMover{log: log}
}

func (m *LogMover) VoiceChannels(_ context.Context) ([]string, error) {
	return []string{"voice-1"}, nil
}

func (m *LogMover) Move(_ context.Context, user domain.UserID, channel string) error {
	m.log.Info("Move", "user", user, "channel", channel)
	return nil
}
