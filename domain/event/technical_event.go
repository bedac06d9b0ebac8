package event

import "time"

type Type string

const (
	RestartedAfterPanicType Type = "WORKER_RESTARTED_AFTER_PANIC"
	ChannelCapacityType     Type = "CHANNEL_CAPACITY"
	CommandHandledType      Type = "COMMAND_HANDLED"
	CommandRejectedType     Type = "COMMAND_REJECTED"
	CensorshipHitType       Type = "CENSORSHIP_HIT"
)

// Event is the telemetry envelope flowing to the technical handlers.
type Event struct {
	Type      Type
	CreatedAt time.Time
	Payload   any
}

type WorkerRestartedAfterPanic struct {
	WorkerName string
}

type ChannelCapacity struct {
	ChannelName string
	Capacity    int
	Length      int
}

// CommandHandled reports one successfully processed command.
type CommandHandled struct {
	Kind string
}

// CommandRejected reports a command turned away at the boundary.
type CommandRejected struct {
	Kind   string
	Reason string
}

// CensorshipHit reports one masked phrase in user-supplied text.
type CensorshipHit struct {
	Phrase string
}
