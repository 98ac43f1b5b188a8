package websocket

import (
	"flag"
	"os"

	"github.com/robotalks/mcal.go/pkg/board"
)

// Config provides the console server options.
type Config struct {
	// Addr is the listen address, empty disables the console.
	Addr string
}

var defaultConfig = Config{}

func init() {
	if val := os.Getenv("MCAL_WS_ADDR"); val != "" {
		defaultConfig.Addr = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Addr, "ws", defaultConfig.Addr, "Websocket console listen address, e.g. :8401")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// Enabled reports whether the console is configured.
func (c *Config) Enabled() bool {
	return c.Addr != ""
}

// NewConsole creates the console for b.
func (c *Config) NewConsole(b *board.Board) *Console {
	return NewConsole(b, c.Addr)
}
