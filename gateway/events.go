package gateway

import (
	"fractal-bot/domain"
	"time"
)

// MessageEvent is one message observed in a thread, command or not.
type MessageEvent struct {
	ID         string
	Thread     domain.ThreadRef
	Author     domain.UserID
	AuthorName string
	Content    string
	Bot        bool
	At         time.Time
}

// VoiceEvent is a voice channel connect or disconnect.
type VoiceEvent struct {
	User    domain.UserID
	Channel string
	Joined  bool
	At      time.Time
}
