// Package gateway is the seam between the bot and the chat platform. The
// platform connection itself (socket, slash-command registration) lives
// outside this repo; everything here works against the Responder boundary
// and plain event structs.
package gateway

import (
	"context"
	"fmt"
	"fractal-bot/domain"
	"log/slog"
)

type Responder interface {
	Reply(ctx context.Context, origin domain.Origin, reply domain.Reply) error
	Notify(ctx context.Context, thread domain.ThreadRef, text string) error
	DirectMessage(ctx context.Context, user domain.UserID, text string) error
	ArchiveThread(ctx context.Context, thread domain.ThreadRef) error
}

// ErrorReply renders a failed command for the caller. Every error in the
// taxonomy is meant to be shown to the user, privately.
func ErrorReply(err error) domain.Reply {
	return domain.Reply{Text: fmt.Sprintf("⚠️ %s", err), Private: true}
}

// LogResponder writes outbound traffic to the log. It is the default wiring
// when no platform connection is attached, and what the tests assert on.
type LogResponder struct {
	log *slog.Logger
}

func NewLogResponder(log *slog.Logger) *LogResponder {
	return &LogResponder{log: log}
}

func (r *LogResponder) Reply(_ context.Context, origin domain.Origin, reply domain.Reply) error {
	r.log.Info("Reply",
		"interaction", origin.Interaction,
		"user", origin.User,
		"private", reply.Private,
		"text", reply.Text)
	return nil
}

func (r *LogResponder) Notify(_ context.Context, thread domain.ThreadRef, text string) error {
	r.log.Info("Notify", "thread", thread, "text", text)
	return nil
}

func (r *LogResponder) DirectMessage(_ context.Context, user domain.UserID, text string) error {
	r.log.Info("DirectMessage", "user", user, "text", text)
	return nil
}

func (r *LogResponder) ArchiveThread(_ context.Context, thread domain.ThreadRef) error {
	r.log.Info("ArchiveThread", "thread", thread)
	return nil
}

// ThreadExists answers true unconditionally, there is no platform to consult.
func (r *LogResponder) ThreadExists(_ context.Context, _ domain.ThreadRef) (bool, error) {
	return true, nil
}
