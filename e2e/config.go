package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// CONSOLE_ADDR points at a running bot's ops console, host:port form.
	// The whole suite skips when it is empty.
	ConsoleAddr     string `envconfig:"CONSOLE_ADDR"`
	ConsolePassword string `envconfig:"CONSOLE_PASSWORD"`
	// E2E_DEBUG_JSON allows dumping full request/response bodies
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
