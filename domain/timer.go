package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"fractal-bot/errors"
)

type TimerState string

const (
	TimerCreated   TimerState = "created"
	TimerRunning   TimerState = "running"
	TimerPaused    TimerState = "paused"
	TimerExpired   TimerState = "expired"
	TimerCancelled TimerState = "cancelled"
)

const (
	MinTimerDuration = time.Second
	MaxTimerDuration = time.Hour
)

// WarnThresholds are the remaining-time marks at which the owner is
// notified, each at most once per timer.
var WarnThresholds = []time.Duration{60 * time.Second, 30 * time.Second, 10 * time.Second}

// Timer is a per-user countdown. All arithmetic takes the current time as an
// argument so an injected clock drives it; remaining time never goes below
// zero and is frozen while paused.
type Timer struct {
	ID        string
	Owner     UserID
	Label     string
	Duration  time.Duration
	StartedAt time.Time     // start of the current running stretch
	Elapsed   time.Duration // accumulated before the current stretch
	State     TimerState
	Warned    []time.Duration
	CreatedAt time.Time
}

func NewTimer(owner UserID, label string, d time.Duration, now time.Time) (*Timer, error) {
	if d < MinTimerDuration || d > MaxTimerDuration {
		return nil, errors.ErrDurationOutOfRange
	}
	return &Timer{
		ID:        uuid.NewString(),
		Owner:     owner,
		Label:     label,
		Duration:  d,
		State:     TimerCreated,
		CreatedAt: now,
	}, nil
}

// ShortID is the display form of the timer id, also accepted by cancel.
func (t *Timer) ShortID() string {
	return t.ID[:8]
}

// Matches reports whether the given id or unambiguous prefix targets t.
func (t *Timer) Matches(id string) bool {
	return id != "" && strings.HasPrefix(t.ID, strings.ToLower(id))
}

func (t *Timer) Active() bool {
	return t.State == TimerRunning || t.State == TimerPaused
}

func (t *Timer) Start(now time.Time) error {
	if t.State != TimerCreated {
		return errors.ErrTimerFinished
	}
	t.State = TimerRunning
	t.StartedAt = now
	return nil
}

func (t *Timer) elapsed(now time.Time) time.Duration {
	total := t.Elapsed
	if t.State == TimerRunning {
		total += now.Sub(t.StartedAt)
	}
	return total
}

// Remaining is monotonically non-increasing while running, frozen while
// paused, and always within [0, Duration].
func (t *Timer) Remaining(now time.Time) time.Duration {
	left := t.Duration - t.elapsed(now)
	if left < 0 {
		return 0
	}
	return left
}

func (t *Timer) Pause(now time.Time) error {
	if t.State != TimerRunning {
		return errors.ErrTimerNotRunning
	}
	t.Elapsed += now.Sub(t.StartedAt)
	t.State = TimerPaused
	return nil
}

func (t *Timer) Resume(now time.Time) error {
	if t.State != TimerPaused {
		return errors.ErrTimerNotPaused
	}
	t.StartedAt = now
	t.State = TimerRunning
	return nil
}

func (t *Timer) Cancel() error {
	if !t.Active() {
		return errors.ErrTimerFinished
	}
	t.State = TimerCancelled
	return nil
}

// ExpireIfDue flips a running timer whose time ran out and reports the flip.
func (t *Timer) ExpireIfDue(now time.Time) bool {
	if t.State != TimerRunning || t.Remaining(now) > 0 {
		return false
	}
	t.State = TimerExpired
	return true
}

// DueWarnings returns the warn thresholds newly crossed at now and marks
// them fired.
func (t *Timer) DueWarnings(now time.Time) []time.Duration {
	if t.State != TimerRunning {
		return nil
	}
	left := t.Remaining(now)
	if left == 0 {
		return nil
	}

	var due []time.Duration
	for _, mark := range WarnThresholds {
		if left <= mark && !lo.Contains(t.Warned, mark) {
			t.Warned = append(t.Warned, mark)
			due = append(due, mark)
		}
	}
	return due
}

// FormatDuration renders a duration the way the bot announces it,
// e.g. "1 hour", "5 minutes 30 seconds".
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 {
		parts = append(parts, plural(minutes, "minute"))
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, plural(seconds, "second"))
	}
	return strings.Join(parts, " ")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
