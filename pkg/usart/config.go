package usart

import "github.com/robotalks/mcal.go/pkg/hal"

// Supported baud rate range.
const (
	MinBaudRate uint32 = 1200
	MaxBaudRate uint32 = 3000000
)

// Duplex selects the enabled directions. Bit 0 enables the receiver,
// bit 1 the transmitter.
type Duplex uint8

// Duplex modes.
const (
	ReceiveOnly  Duplex = 0x01
	TransmitOnly Duplex = 0x02
	FullDuplex   Duplex = 0x03
)

// Valid reports whether d is a known mode.
func (d Duplex) Valid() bool {
	return d == ReceiveOnly || d == TransmitOnly || d == FullDuplex
}

// String implements fmt.Stringer.
func (d Duplex) String() string {
	switch d {
	case ReceiveOnly:
		return "rx"
	case TransmitOnly:
		return "tx"
	case FullDuplex:
		return "full"
	}
	return "invalid"
}

// Parity selects parity. Bit 0 enables parity, bit 1 selects odd.
type Parity uint8

// Parity settings.
const (
	NoParity   Parity = 0x00
	EvenParity Parity = 0x01
	OddParity  Parity = 0x03
)

// Valid reports whether p is a known setting.
func (p Parity) Valid() bool {
	return p == NoParity || p == EvenParity || p == OddParity
}

// String implements fmt.Stringer.
func (p Parity) String() string {
	switch p {
	case NoParity:
		return "none"
	case EvenParity:
		return "even"
	case OddParity:
		return "odd"
	}
	return "invalid"
}

// Config is the framing configuration of an instance.
type Config struct {
	BaudRate uint32
	Duplex   Duplex
	Parity   Parity
}

// DefaultConfig is 9600 baud, full duplex, no parity.
func DefaultConfig() *Config {
	return &Config{BaudRate: 9600, Duplex: FullDuplex, Parity: NoParity}
}

// Validate checks the fields in order: baud rate, duplex, parity.
func (c *Config) Validate() error {
	if c == nil {
		return hal.ErrNullPointer
	}
	if c.BaudRate < MinBaudRate || c.BaudRate > MaxBaudRate {
		return hal.OutOfRange(hal.ErrBaudRate, "baud", c.BaudRate)
	}
	if !c.Duplex.Valid() {
		return hal.OutOfRange(hal.ErrDeviceMode, "duplex", c.Duplex)
	}
	if !c.Parity.Valid() {
		return hal.OutOfRange(hal.ErrParity, "parity", c.Parity)
	}
	return nil
}

// ParseDuplex parses rx, tx or full.
func ParseDuplex(s string) (Duplex, error) {
	for _, d := range []Duplex{ReceiveOnly, TransmitOnly, FullDuplex} {
		if d.String() == s {
			return d, nil
		}
	}
	return 0, hal.OutOfRange(hal.ErrDeviceMode, "duplex", s)
}

// ParseParity parses none, even or odd.
func ParseParity(s string) (Parity, error) {
	for _, p := range []Parity{NoParity, EvenParity, OddParity} {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, hal.OutOfRange(hal.ErrParity, "parity", s)
}
