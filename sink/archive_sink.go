package sink

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fractal-bot/domain"
	"fractal-bot/domain/event"
	"fractal-bot/repositories"
)

// ArchiveSink files every moderated message into the permanent transcript
// and refreshes the liveness of the group living in that thread, so chatter
// alone keeps a group from being swept as inactive.
type ArchiveSink struct {
	transcripts repositories.ITranscriptRepository
	groups      repositories.IGroupRepository
	log         *slog.Logger
}

func NewArchiveSink(transcripts repositories.ITranscriptRepository, groups repositories.IGroupRepository, log *slog.Logger) ArchiveSink {
	return ArchiveSink{transcripts: transcripts, groups: groups, log: log}
}

func (a ArchiveSink) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.MessageArchived:
		if err := a.transcripts.Archive(toTranscriptMessage(evt)); err != nil {
			return err
		}
		a.touchGroup(evt.Thread, evt.At)
		return nil
	default:
		a.log.Debug(fmt.Sprintf("Not implemented event : %v", evt))
		return nil
	}
}

// touchGroup refreshes LastSeen for the group bound to the thread, if any.
// The message is already archived at this point, so failures are only logged.
func (a ArchiveSink) touchGroup(thread domain.ThreadRef, at time.Time) {
	groups, err := a.groups.All()
	if err != nil {
		a.log.Warn(fmt.Sprintf("Failed to load groups : %v", err))
		return
	}
	for _, g := range groups {
		if g.Thread != thread {
			continue
		}
		g.Touch(at)
		if err := a.groups.Save(g); err != nil {
			a.log.Warn(fmt.Sprintf("Failed to refresh group %s : %v", g.Name, err))
		}
		return
	}
}

func toTranscriptMessage(evt event.MessageArchived) domain.TranscriptMessage {
	return domain.TranscriptMessage{
		ID:         evt.ID.String(),
		Thread:     evt.Thread,
		Author:     evt.Author,
		AuthorName: evt.AuthorName,
		Content:    evt.Content,
		At:         evt.At,
	}
}
