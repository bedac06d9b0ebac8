package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abadojack/whatlanggo"

	"fractal-bot/contract"
	"fractal-bot/domain/event"
	"fractal-bot/moderation"
)

var _ contract.Worker = (*ModerationWorker)(nil)

// ModerationWorker turns raw thread messages into archive-ready ones.
// Scam phrases are masked before anything reaches storage, so the archive
// and the search index only ever see clean text.
type ModerationWorker struct {
	moderator    *moderation.Moderator
	rawEvents    chan event.DomainEvent
	domainEvents chan event.DomainEvent
	telemetry    chan<- event.Event
	log          *slog.Logger
}

func NewModerationWorker(moderator *moderation.Moderator,
	rawEvents, domainEvents chan event.DomainEvent,
	telemetry chan<- event.Event, log *slog.Logger) *ModerationWorker {
	return &ModerationWorker{
		moderator:    moderator,
		rawEvents:    rawEvents,
		domainEvents: domainEvents,
		telemetry:    telemetry,
		log:          log,
	}
}

func (w *ModerationWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return ctx.Err()
		case e, ok := <-w.rawEvents:
			if !ok {
				w.log.Debug("Channel is closed")
				return nil
			}

			switch evt := e.(type) {
			case event.MessageSeen:
				archived := w.sanitize(evt)
				for _, phrase := range archived.MaskedPhrases {
					w.emitHit(phrase)
				}
				w.send(ctx, archived)
			default:
				// Only messages need moderation, the rest passes through.
				w.send(ctx, e)
			}
		}
	}
}

func (w *ModerationWorker) sanitize(evt event.MessageSeen) event.MessageArchived {
	info := whatlanggo.Detect(evt.Content)
	masked, hits := w.moderator.Mask(evt.Content)

	if len(hits) > 0 {
		w.log.Warn(fmt.Sprintf("%d scam phrases masked in message from %s", len(hits), evt.Author))
	}

	return event.MessageArchived{
		ID:            evt.ID,
		Thread:        evt.Thread,
		Author:        evt.Author,
		AuthorName:    evt.AuthorName,
		Content:       masked,
		MaskedPhrases: hits,
		Language:      info.Lang.Iso6391(),
		At:            evt.At,
	}
}

func (w *ModerationWorker) send(ctx context.Context, evt event.DomainEvent) {
	select {
	case <-ctx.Done():
	case w.domainEvents <- evt:
	}
}

func (w *ModerationWorker) emitHit(phrase string) {
	select {
	case w.telemetry <- event.Event{
		Type:      event.CensorshipHitType,
		CreatedAt: time.Now().UTC(),
		Payload:   event.CensorshipHit{Phrase: phrase},
	}:
	default:
		w.log.Debug("Observability telemetry event lost")
	}
}
