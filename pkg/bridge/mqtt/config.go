package mqtt

import (
	"flag"
	"os"

	"github.com/robotalks/mcal.go/pkg/board"
	"github.com/robotalks/mcal.go/pkg/env"
)

// Config provides the broker options.
type Config struct {
	// URL specifies the MQTT broker to use, empty disables the bridge.
	// e.g. mqtt://host:port/topic-prefix/
	URL string
	ID  string
}

var defaultConfig = Config{}

func init() {
	if val := os.Getenv("MCAL_MQTT_URL"); val != "" {
		defaultConfig.URL = val
	}
	defaultConfig.ID = env.BoardID()
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.URL, "mqtt", defaultConfig.URL, "MQTT broker URL")
	flag.StringVar(&defaultConfig.ID, "id", defaultConfig.ID, "Board ID in MQTT topics")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Enabled reports whether a broker is configured.
func (c *Config) Enabled() bool {
	return c.URL != ""
}

// NewBridge creates the bridge for b. The retained meta is cleared by the
// broker if the connection drops.
func (c *Config) NewBridge(b *board.Board) (*Bridge, error) {
	opts, prefix, err := ClientOptionsFromURL(c.URL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(prefix+c.ID+"/meta", nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("mcal:" + c.ID)
	}
	return New(NewQueue(opts, prefix), b, c.ID), nil
}
