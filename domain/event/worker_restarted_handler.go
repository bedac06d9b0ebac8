package event

import (
	"fmt"
	"log/slog"

	"fractal-bot/errors"
)

// WorkerRestartedHandler counts supervisor restarts after panics.
// Useful for monitoring reliability of the session workers.
type WorkerRestartedHandler struct {
	log     *slog.Logger
	counter *Counter
}

func NewWorkerRestartedHandler(log *slog.Logger, counter *Counter) *WorkerRestartedHandler {
	return &WorkerRestartedHandler{log: log, counter: counter}
}

func (h *WorkerRestartedHandler) Handle(event Event) {
	switch event.Type {
	case RestartedAfterPanicType:
		payload, ok := event.Payload.(WorkerRestartedAfterPanic)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.counter.Increment(RestartedAfterPanicType)
		h.log.Debug(fmt.Sprintf("Worker %s restarted after panic, total: %d",
			payload.WorkerName, h.counter.Get(RestartedAfterPanicType)))
	}
}
