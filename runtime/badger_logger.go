package runtime

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// badgerLogger adapts badger's printf-style logger onto slog so store
// internals land in the same stream as everything else, tagged with their
// component.
type badgerLogger struct {
	log *slog.Logger
}

func NewBadgerLogger(log *slog.Logger) badger.Logger {
	return badgerLogger{log: log.With("component", "badger")}
}

func (l badgerLogger) Errorf(format string, args ...any) {
	l.log.Error(render(format, args...))
}

func (l badgerLogger) Warningf(format string, args ...any) {
	l.log.Warn(render(format, args...))
}

func (l badgerLogger) Infof(format string, args ...any) {
	l.log.Info(render(format, args...))
}

func (l badgerLogger) Debugf(format string, args ...any) {
	l.log.Debug(render(format, args...))
}

// render drops the trailing newline badger appends to every entry.
func render(format string, args ...any) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}
