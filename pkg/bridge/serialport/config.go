package serialport

import (
	"flag"
	"os"
	"strings"

	"github.com/robotalks/mcal.go/pkg/board"
	"github.com/robotalks/mcal.go/pkg/usart"
)

// Config selects the bridged USART and host device.
type Config struct {
	// Target is "<usart>=<device>", e.g. "usart2=/dev/ttyUSB0". Empty
	// disables the bridge.
	Target string
}

var defaultConfig = Config{}

func init() {
	if val := os.Getenv("MCAL_SERIAL"); val != "" {
		defaultConfig.Target = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Target, "serial", defaultConfig.Target, "Bridge a USART to a host port, e.g. usart2=/dev/ttyUSB0")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// Enabled reports whether a bridge is configured.
func (c *Config) Enabled() bool {
	return c.Target != ""
}

// Parse splits Target into instance and device. A bare device bridges USART2.
func (c *Config) Parse() (usart.Index, string, error) {
	name, device, found := strings.Cut(c.Target, "=")
	if !found {
		return usart.USART2, c.Target, nil
	}
	idx, err := usart.ParseIndex(name)
	if err != nil {
		return 0, "", err
	}
	return idx, device, nil
}

// NewPassthrough creates the bridge for b.
func (c *Config) NewPassthrough(b *board.Board) (*Passthrough, error) {
	idx, device, err := c.Parse()
	if err != nil {
		return nil, err
	}
	return New(b, idx, device), nil
}
