package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"fractal-bot/chain"
	"fractal-bot/contract"
	"fractal-bot/domain"
	"fractal-bot/domain/event"
	"fractal-bot/repositories"
)

var _ contract.Worker = (*CleanupWorker)(nil)

// ThreadProbe reports whether a platform thread still exists.
type ThreadProbe interface {
	ThreadExists(ctx context.Context, thread domain.ThreadRef) (bool, error)
}

// CleanupWorker recycles what nobody uses anymore. Groups whose thread the
// platform dropped or that sat idle past the threshold are disbanded with
// a notification, idle session workers torn down, expired name cache
// entries evicted.
type CleanupWorker struct {
	groups   repositories.IGroupRepository
	votes    repositories.IVoteRepository
	fractals repositories.IFractalRepository
	registry contract.IRegistry
	probe    ThreadProbe
	cache    *chain.Cache
	events   chan<- event.DomainEvent
	clock    clockwork.Clock
	interval time.Duration
	idle     time.Duration
	log      *slog.Logger
}

func NewCleanupWorker(groups repositories.IGroupRepository,
	votes repositories.IVoteRepository, fractals repositories.IFractalRepository,
	registry contract.IRegistry, probe ThreadProbe, cache *chain.Cache,
	events chan<- event.DomainEvent, clock clockwork.Clock,
	interval, idle time.Duration, log *slog.Logger) *CleanupWorker {
	return &CleanupWorker{
		groups:   groups,
		votes:    votes,
		fractals: fractals,
		registry: registry,
		probe:    probe,
		cache:    cache,
		events:   events,
		clock:    clock,
		interval: interval,
		idle:     idle,
		log:      log,
	}
}

func (w *CleanupWorker) Run(ctx context.Context) error {
	ticker := w.clock.NewTicker(w.interval)
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

func (w *CleanupWorker) tick(ctx context.Context, now time.Time) {
	w.sweepGroups(ctx, now)
	w.registry.Sweep(now, w.idle)

	if evicted := w.cache.EvictExpired(); evicted > 0 {
		w.log.Debug(fmt.Sprintf("%d expired name cache entries evicted", evicted))
	}
}

func (w *CleanupWorker) sweepGroups(ctx context.Context, now time.Time) {
	groups, err := w.groups.All()
	if err != nil {
		w.log.Error(fmt.Sprintf("Group sweep failed : %v", err))
		return
	}

	for _, g := range groups {
		var cause string
		switch {
		case w.threadGone(ctx, g.Thread):
			cause = "thread gone"
		case g.IdleSince(now, w.idle):
			cause = "inactive"
		default:
			continue
		}

		if err := w.groups.Delete(g.Name); err != nil {
			w.log.Error(fmt.Sprintf("Failed to disband group %s : %v", g.Name, err))
			continue
		}
		// Rounds die with their group.
		if err := w.votes.Clear(g.Name); err != nil {
			w.log.Warn(fmt.Sprintf("Failed to clear ballot for %s : %v", g.Name, err))
		}
		if err := w.fractals.Clear(g.Name); err != nil {
			w.log.Warn(fmt.Sprintf("Failed to clear fractal round for %s : %v", g.Name, err))
		}

		if cause == "inactive" {
			w.log.Info(fmt.Sprintf("Group %s disbanded after %s of silence",
				g.Name, domain.FormatDuration(w.idle)))
		} else {
			w.log.Info(fmt.Sprintf("Group %s disbanded, its thread is gone", g.Name))
		}
		w.send(ctx, event.GroupDisbanded{
			Group:  g.Name,
			Thread: g.Thread,
			Owner:  g.Owner,
			Cause:  cause,
			At:     now,
		})
	}
}

// threadGone treats probe failures as alive, an unreachable platform must
// not disband healthy groups.
func (w *CleanupWorker) threadGone(ctx context.Context, thread domain.ThreadRef) bool {
	exists, err := w.probe.ThreadExists(ctx, thread)
	if err != nil {
		w.log.Warn(fmt.Sprintf("Failed to probe thread %s : %v", thread, err))
		return false
	}
	return !exists
}

func (w *CleanupWorker) send(ctx context.Context, evt event.DomainEvent) {
	select {
	case <-ctx.Done():
	case w.events <- evt:
	}
}
