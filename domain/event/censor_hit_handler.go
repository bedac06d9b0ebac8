package event

import (
	"log/slog"
	"sync"

	"fractal-bot/errors"
)

// CensorHitHandler tallies masked phrases per phrase.
type CensorHitHandler struct {
	mu    sync.Mutex
	log   *slog.Logger
	total uint64
	hits  map[string]uint64
}

func NewCensorHitHandler(log *slog.Logger) *CensorHitHandler {
	return &CensorHitHandler{
		log:  log,
		hits: make(map[string]uint64),
	}
}

func (h *CensorHitHandler) Handle(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch event.Type {
	case CensorshipHitType:
		payload, ok := event.Payload.(CensorshipHit)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.total++
		h.hits[payload.Phrase]++
	}
}

// Hits copies the per-phrase tallies.
func (h *CensorHitHandler) Hits() map[string]uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make(map[string]uint64, len(h.hits))
	for phrase, n := range h.hits {
		out[phrase] = n
	}
	return out
}
