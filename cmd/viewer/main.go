package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/mama165/sdk-go/logs"
	"github.com/vmihailenco/msgpack"

	"fractal-bot/auth"
	"fractal-bot/domain"
	"fractal-bot/internal"
	"fractal-bot/projection"
)

// Read-only console over a live store, for poking at the data while the
// bot keeps running.
type config struct {
	LogLevel       string `env:"LOG_LEVEL,default=info"`
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	ExportDir      string `env:"EXPORT_DIR,default=./exports"`

	ConsoleHost        string        `env:"CONSOLE_HOST,default=localhost"`
	ConsolePort        int           `env:"CONSOLE_PORT,default=8081"`
	ConsolePassword    string        `env:"CONSOLE_PASSWORD,required=true"`
	ConsoleTokenSecret string        `env:"CONSOLE_TOKEN_SECRET,required=true"`
	ConsoleTokenTTL    time.Duration `env:"CONSOLE_TOKEN_TTL,default=12h"`
}

func main() {
	// 1. Load config
	_ = godotenv.Load()
	var cfg config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		log.Fatalf("Config error: %v", err)
	}
	logger := logs.GetLoggerFromString(cfg.LogLevel)

	// 2. Open Badger in Read-Only mode
	// Note: BypassLockGuard allows opening if another process (the bot) holds the lock
	opts := badger.DefaultOptions(cfg.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// 3. Serve the console only
	// Empty stats since the orchestrator isn't running here
	viewerStats := func() map[string]any {
		return map[string]any{
			"status": "viewer (read-only)",
			"time":   time.Now().Format(time.RFC822),
		}
	}

	passwordHash, err := auth.HashPassword(cfg.ConsolePassword)
	if err != nil {
		log.Fatalf("Failed to hash console password: %v", err)
	}
	issuer := auth.NewTokenIssuer(cfg.ConsoleTokenSecret, cfg.ConsoleTokenTTL, clockwork.NewRealClock())
	console := internal.NewConsole(logger, db, communityMapper, viewerStats,
		projection.NewActivityFeed(0), issuer, passwordHash, cfg.ExportDir)

	address := fmt.Sprintf("%s:%d", cfg.ConsoleHost, cfg.ConsolePort)
	fmt.Printf("🌐 Viewer started at http://%s/inspect\n", address)
	log.Fatal(http.ListenAndServe(address, console.Routes()))
}

// communityMapper enriches the default rows with decoded store values.
func communityMapper(key string, val []byte) internal.InspectRow {
	row := internal.DefaultMapper(key, val)

	switch row.Kind {
	case "group":
		var g domain.Group
		if err := msgpack.Unmarshal(val, &g); err != nil {
			return row
		}
		row.Detail = fmt.Sprintf("%d members, owner %s, last seen %s",
			len(g.Members), g.Owner, g.LastSeen.Format("02 Jan 15:04"))
	case "member":
		var m domain.Member
		if err := msgpack.Unmarshal(val, &m); err != nil {
			return row
		}
		row.Detail = m.Name
		if m.Wallet != "" {
			row.Detail += " " + m.Wallet
		}
	case "timer":
		var t domain.Timer
		if err := msgpack.Unmarshal(val, &t); err != nil {
			return row
		}
		row.Detail = fmt.Sprintf("%s %s (%s)", t.Label, t.State, domain.FormatDuration(t.Duration))
	}
	return row
}
