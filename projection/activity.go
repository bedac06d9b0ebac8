package projection

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fractal-bot/domain"
	"fractal-bot/domain/event"
)

const defaultFeedCap = 50

// Entry is one line of the activity feed.
type Entry struct {
	At   time.Time
	Text string
}

// ActivityFeed keeps a rolling feed of notable community happenings. It is
// registered as an event sink and read by the ops console and /zaostats.
type ActivityFeed struct {
	mu      sync.Mutex
	entries []Entry
	cap     int
}

func NewActivityFeed(capacity int) *ActivityFeed {
	if capacity <= 0 {
		capacity = defaultFeedCap
	}
	return &ActivityFeed{cap: capacity}
}

func (f *ActivityFeed) Consume(_ context.Context, e event.DomainEvent) error {
	text := describe(e)
	if text == "" {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, Entry{At: e.OccurredAt(), Text: text})
	if len(f.entries) > f.cap {
		f.entries = f.entries[len(f.entries)-f.cap:]
	}
	return nil
}

// Recent returns up to n entries, newest first.
func (f *ActivityFeed) Recent(n int) []Entry {
	f.mu.Lock()
	defer f.mu.Unlock()

	if n <= 0 || n > len(f.entries) {
		n = len(f.entries)
	}
	out := make([]Entry, 0, n)
	for i := len(f.entries) - 1; i >= len(f.entries)-n; i-- {
		out = append(out, f.entries[i])
	}
	return out
}

func describe(e event.DomainEvent) string {
	switch evt := e.(type) {
	case event.GroupCreated:
		return fmt.Sprintf("Group %s registered with %d members", evt.Group, len(evt.Members))
	case event.GroupDisbanded:
		return fmt.Sprintf("Group %s disbanded (%s)", evt.Group, evt.Cause)
	case event.VoteCompleted:
		return fmt.Sprintf("Group %s finished a respect ballot", evt.Group)
	case event.LevelWon:
		return fmt.Sprintf("%s took level %d in group %s", evt.Member, evt.Level, evt.Group)
	case event.FractalCompleted:
		return fmt.Sprintf("Group %s completed its fractal round", evt.Group)
	case event.RespectGranted:
		return fmt.Sprintf("%s received respect from %s", evt.Receiver, evt.Giver)
	case event.TimerExpired:
		label := evt.Label
		if label == "" {
			label = evt.TimerID[:8]
		}
		return fmt.Sprintf("Timer %s of %s rang after %s", label, evt.Owner, domain.FormatDuration(evt.Duration))
	default:
		return ""
	}
}
