package main

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	LogLevel       string `env:"LOG_LEVEL,default=info"`
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true"`
	ExportDir      string `env:"EXPORT_DIR,default=./exports"`

	// OwnerID gates /sync, /randomize and bot-owner disbands.
	OwnerID string `env:"OWNER_ID,required=true" validate:"required"`
	// BotToken belongs to the platform adapter; the core only checks presence.
	BotToken      string `env:"BOT_TOKEN"`
	CommandPrefix string `env:"COMMAND_PREFIX,default=/"`

	BufferSize           int           `env:"BUFFER_SIZE,default=64" validate:"gt=0"`
	SessionInboxSize     int           `env:"SESSION_INBOX_SIZE,default=16" validate:"gt=0"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,default=5s"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,default=1m"`
	MaskCharacter        string        `env:"MASK_CHARACTER,default=*"`
	RateLimit            int           `env:"RATE_LIMIT,default=5" validate:"gt=0"`
	RateWindow           time.Duration `env:"RATE_WINDOW,default=1m"`
	LowCapacityThreshold int           `env:"LOW_CAPACITY_THRESHOLD,default=8"`

	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL,default=5m"`
	IdleTTL         time.Duration `env:"IDLE_TTL,default=1h"`
	NameCacheTTL    time.Duration `env:"NAME_CACHE_TTL,default=10m"`

	RPCEndpoint   string        `env:"RPC_ENDPOINT,required=true" validate:"url"`
	RPCTimeout    time.Duration `env:"RPC_TIMEOUT,default=5s"`
	TokenContract string        `env:"TOKEN_CONTRACT"`

	// An empty key keeps the local word-frequency digester.
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL,default=gemini-2.0-flash"`

	ConsoleHost        string        `env:"CONSOLE_HOST,default=localhost"`
	ConsolePort        int           `env:"CONSOLE_PORT,default=8080" validate:"gt=0,lt=65536"`
	ConsolePassword    string        `env:"CONSOLE_PASSWORD,required=true"`
	ConsoleTokenSecret string        `env:"CONSOLE_TOKEN_SECRET,required=true" validate:"min=16"`
	ConsoleTokenTTL    time.Duration `env:"CONSOLE_TOKEN_TTL,default=12h"`
}

var validate = validator.New()

func (c Config) Validate() error {
	return validate.Struct(c)
}

// MaskRune parses the configured mask character, which must be exactly one
// rune.
func (c Config) MaskRune() (rune, error) {
	r := []rune(c.MaskCharacter)
	if len(r) != 1 {
		return 0, fmt.Errorf("MASK_CHARACTER must be a single character, got %q", c.MaskCharacter)
	}
	return r[0], nil
}
