package sink

import (
	"context"
	"fmt"
	"log/slog"

	"fractal-bot/domain"
	"fractal-bot/domain/event"
	"fractal-bot/gateway"
)

// NotifySink turns domain events into outbound platform traffic. Timer
// owners are reached by direct message because a timer can outlive the
// interaction it was started from; disbanded groups get a last word in
// their thread before it is archived.
type NotifySink struct {
	responder gateway.Responder
	log       *slog.Logger
}

func NewNotifySink(responder gateway.Responder, log *slog.Logger) NotifySink {
	return NotifySink{responder: responder, log: log}
}

func (n NotifySink) Consume(ctx context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.TimerWarning:
		return n.responder.DirectMessage(ctx, evt.Owner, warningText(evt))
	case event.TimerExpired:
		return n.responder.DirectMessage(ctx, evt.Owner, expiredText(evt))
	case event.GroupDisbanded:
		// A vanished thread can neither be notified nor archived.
		if evt.Cause == "thread gone" {
			return nil
		}
		if evt.Cause == "inactive" {
			text := fmt.Sprintf("💤 Group **%s** was disbanded after going quiet. This thread is now archived.", evt.Group)
			if err := n.responder.Notify(ctx, evt.Thread, text); err != nil {
				n.log.Warn(fmt.Sprintf("Failed to notify thread %s : %v", evt.Thread, err))
			}
		}
		return n.responder.ArchiveThread(ctx, evt.Thread)
	default:
		n.log.Debug(fmt.Sprintf("Not implemented event : %v", evt))
		return nil
	}
}

func warningText(evt event.TimerWarning) string {
	if evt.Label != "" {
		return fmt.Sprintf("⏳ Timer `%s` (%s), %s left.", shortID(evt.TimerID), evt.Label, domain.FormatDuration(evt.Remaining))
	}
	return fmt.Sprintf("⏳ Timer `%s`, %s left.", shortID(evt.TimerID), domain.FormatDuration(evt.Remaining))
}

func expiredText(evt event.TimerExpired) string {
	if evt.Label != "" {
		return fmt.Sprintf("⏰ Time's up! Timer `%s` (%s) finished after %s.", shortID(evt.TimerID), evt.Label, domain.FormatDuration(evt.Duration))
	}
	return fmt.Sprintf("⏰ Time's up! Timer `%s` finished after %s.", shortID(evt.TimerID), domain.FormatDuration(evt.Duration))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
