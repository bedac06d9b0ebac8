package event

import (
	"fmt"
	"log/slog"

	"fractal-bot/errors"
)

// CapacityHandler watches reported channel fill levels.
// Useful for detecting backpressure before commands start being dropped.
type CapacityHandler struct {
	log                  *slog.Logger
	lowCapacityThreshold int
}

func NewCapacityHandler(log *slog.Logger, lowCapacityThreshold int) *CapacityHandler {
	return &CapacityHandler{log: log, lowCapacityThreshold: lowCapacityThreshold}
}

func (h CapacityHandler) Handle(event Event) {
	switch event.Type {
	case ChannelCapacityType:
		payload, ok := event.Payload.(ChannelCapacity)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.log.Debug(fmt.Sprintf("Channel %s usage: %d / %d", payload.ChannelName, payload.Length, payload.Capacity))
		if payload.Capacity <= 0 {
			// Unbuffered channel, nothing to measure
			return
		}
		capacityLeft := payload.Capacity - payload.Length
		if capacityLeft > 0 && capacityLeft <= h.lowCapacityThreshold {
			h.log.Warn(fmt.Sprintf("command channel capacity left : %d", capacityLeft))
		}
	}
}
