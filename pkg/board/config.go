package board

import (
	"flag"
	"os"

	"github.com/robotalks/mcal.go/pkg/spin"
	"github.com/robotalks/mcal.go/pkg/usart"
)

// DefaultBoard runs at the reset clock.
const DefaultBoard = "f401-hsi"

// Config selects and tunes the simulated board.
type Config struct {
	Board string
	// Interrupt selects interrupt driven receive.
	Interrupt bool
	// SpinLimit bounds blocking driver calls; 0 spins forever.
	SpinLimit int
	AutoStep  uint64
}

var defaultConfig = Config{
	Board:     DefaultBoard,
	Interrupt: true,
}

func init() {
	if val := os.Getenv("MCAL_BOARD"); val != "" {
		defaultConfig.Board = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Board, "board", defaultConfig.Board, "Board name, see baudtab boards")
	flag.BoolVar(&defaultConfig.Interrupt, "rx-interrupt", defaultConfig.Interrupt, "Interrupt driven USART receive")
	flag.IntVar(&defaultConfig.SpinLimit, "spin-limit", defaultConfig.SpinLimit, "Max polls of a blocking call, 0 for unlimited")
	flag.Uint64Var(&defaultConfig.AutoStep, "auto-step", defaultConfig.AutoStep, "CPU cycles SysTick advances per poll")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Options converts the config.
func (c *Config) Options() Options {
	opts := Options{AutoStep: c.AutoStep}
	if c.Interrupt {
		opts.Mode = usart.Interrupt
	}
	if c.SpinLimit > 0 {
		opts.Waiter = spin.Bounded(c.SpinLimit)
	}
	return opts
}

// NewBoard creates and sets up the board.
func (c *Config) NewBoard() (*Board, error) {
	b, err := NewByName(c.Board, c.Options())
	if err != nil {
		return nil, err
	}
	if err := b.Setup(); err != nil {
		return nil, err
	}
	return b, nil
}
