package gateway

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"fractal-bot/contract"
	"fractal-bot/domain"
	"fractal-bot/domain/event"
)

// Feed is the ingress side of the gateway. The platform adapter calls it for
// every message and voice change; commands go to the dispatcher, plain
// chatter becomes an observed event for the archive pipeline.
type Feed struct {
	parser       *Parser
	orchestrator contract.IOrchestrator
	responder    Responder
	log          *slog.Logger
}

func NewFeed(parser *Parser, orchestrator contract.IOrchestrator, responder Responder, log *slog.Logger) *Feed {
	return &Feed{
		parser:       parser,
		orchestrator: orchestrator,
		responder:    responder,
		log:          log,
	}
}

func (f *Feed) HandleMessage(ctx context.Context, msg MessageEvent) {
	if msg.Bot {
		return
	}
	cmd, addressed, err := f.parser.Parse(msg)
	if !addressed {
		if msg.Content == "" {
			return
		}
		f.orchestrator.Observe(event.MessageSeen{
			ID:         messageID(msg.ID),
			Thread:     msg.Thread,
			Author:     msg.Author,
			AuthorName: msg.AuthorName,
			Content:    msg.Content,
			At:         msg.At,
		})
		return
	}
	if err != nil {
		f.reply(ctx, msg, ErrorReply(err))
		return
	}
	f.orchestrator.Dispatch(cmd)
}

// HandleVoice turns voice state changes into presence commands so they
// serialize with the member's other commands.
func (f *Feed) HandleVoice(ctx context.Context, e VoiceEvent) {
	origin := domain.Origin{User: e.User}
	if e.Joined {
		f.orchestrator.Dispatch(domain.VoiceJoinedCommand{Origin: origin, Channel: e.Channel, At: e.At})
		return
	}
	f.orchestrator.Dispatch(domain.VoiceLeftCommand{Origin: origin, Channel: e.Channel, At: e.At})
}

func (f *Feed) reply(ctx context.Context, msg MessageEvent, reply domain.Reply) {
	origin := domain.Origin{Interaction: msg.ID, Thread: msg.Thread, User: msg.Author}
	if err := f.responder.Reply(ctx, origin, reply); err != nil {
		f.log.Warn(fmt.Sprintf("Failed to reply to %s : %v", msg.Author, err))
	}
}

// messageID maps a platform message id onto a stable UUID so a redelivered
// message lands on the same archive key.
func messageID(raw string) uuid.UUID {
	if id, err := uuid.Parse(raw); err == nil {
		return id
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(raw))
}
