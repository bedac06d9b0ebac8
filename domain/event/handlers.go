package event

// Handler processes one kind of telemetry event.
// Handlers are chained by the telemetry worker; unknown types pass through.
type Handler interface {
	Handle(event Event)
}
