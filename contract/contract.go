//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"fractal-bot/domain"
	"fractal-bot/domain/event"
	"reflect"
	"time"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IEngine executes one command against the domain and reports the reply for
// the user plus the domain events the command produced.
type IEngine interface {
	Handle(ctx context.Context, cmd domain.Command) (domain.Reply, []event.DomainEvent, error)
}

// IRegistry routes each command to the single live session of its state key,
// spawning the session on first use. Sessions process commands one at a
// time, so two commands against the same group or user never interleave.
type IRegistry interface {
	Deliver(ctx context.Context, cmd domain.Command) error
	Sweep(now time.Time, idle time.Duration)
	Active() int
}

type IOrchestrator interface {
	RegisterSinks(sink ...EventSink)
	Dispatch(cmd domain.Command)
	Observe(e event.DomainEvent)
	Start(ctx context.Context) error
	Stop()
}
