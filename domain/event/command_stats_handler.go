package event

import (
	"log/slog"

	"fractal-bot/errors"
)

// CommandStatsHandler counts handled and rejected commands.
// It is triggered for every command leaving the dispatch pipeline and feeds
// the ops console counters.
type CommandStatsHandler struct {
	log     *slog.Logger
	counter *Counter
}

func NewCommandStatsHandler(log *slog.Logger, counter *Counter) *CommandStatsHandler {
	return &CommandStatsHandler{log: log, counter: counter}
}

func (h *CommandStatsHandler) Handle(event Event) {
	switch event.Type {
	case CommandHandledType:
		if _, ok := event.Payload.(CommandHandled); !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.counter.Increment(CommandHandledType)
	case CommandRejectedType:
		if _, ok := event.Payload.(CommandRejected); !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.counter.Increment(CommandRejectedType)
	}
}
