package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"fractal-bot/contract"
	"fractal-bot/domain/event"
	"fractal-bot/repositories"
)

const tickInterval = time.Second

var _ contract.Worker = (*TimerTickerWorker)(nil)

// TimerTickerWorker drives every countdown off one clock. Each second it
// sweeps the stored timers, fires the warning marks that were newly
// crossed and expires the overdue ones. Expired timers leave the store;
// their history lives in the event stream.
type TimerTickerWorker struct {
	timers repositories.ITimerRepository
	events chan<- event.DomainEvent
	clock  clockwork.Clock
	log    *slog.Logger
}

func NewTimerTickerWorker(timers repositories.ITimerRepository,
	events chan<- event.DomainEvent, clock clockwork.Clock,
	log *slog.Logger) *TimerTickerWorker {
	return &TimerTickerWorker{
		timers: timers,
		events: events,
		clock:  clock,
		log:    log,
	}
}

func (w *TimerTickerWorker) Run(ctx context.Context) error {
	ticker := w.clock.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return ctx.Err()
		case <-ticker.Chan():
			w.tick(ctx, w.clock.Now())
		}
	}
}

func (w *TimerTickerWorker) tick(ctx context.Context, now time.Time) {
	timers, err := w.timers.All()
	if err != nil {
		w.log.Error(fmt.Sprintf("Timer sweep failed : %v", err))
		return
	}

	for _, t := range timers {
		due := t.DueWarnings(now)
		expired := t.ExpireIfDue(now)

		switch {
		case expired:
			if err := w.timers.Delete(t.Owner, t.ID); err != nil {
				w.log.Error(fmt.Sprintf("Failed to delete expired timer %s : %v", t.ShortID(), err))
				continue
			}
			w.send(ctx, event.TimerExpired{
				TimerID:  t.ID,
				Owner:    t.Owner,
				Label:    t.Label,
				Duration: t.Duration,
				At:       now,
			})
		case len(due) > 0:
			// The fired marks must survive restarts so each warning
			// goes out once.
			if err := w.timers.Save(t); err != nil {
				w.log.Error(fmt.Sprintf("Failed to save timer %s : %v", t.ShortID(), err))
				continue
			}
			for _, mark := range due {
				w.send(ctx, event.TimerWarning{
					TimerID:   t.ID,
					Owner:     t.Owner,
					Label:     t.Label,
					Remaining: mark,
					At:        now,
				})
			}
		}
	}
}

func (w *TimerTickerWorker) send(ctx context.Context, evt event.DomainEvent) {
	select {
	case <-ctx.Done():
	case w.events <- evt:
	}
}
