// Package gpio drives the general purpose I/O ports.
package gpio

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/robotalks/mcal.go/pkg/hal"
	"github.com/robotalks/mcal.go/pkg/reg"
)

var (
	// ErrPort indicates an unknown or absent port.
	ErrPort = errors.New("invalid port")
	// ErrPin indicates a pin number above 15.
	ErrPin = errors.New("invalid pin")
	// ErrMode indicates an unknown pin mode.
	ErrMode = errors.New("invalid pin mode")
	// ErrSpeed indicates an unknown output speed.
	ErrSpeed = errors.New("invalid pin speed")
	// ErrLevel indicates a level other than Low or High.
	ErrLevel = errors.New("invalid pin level")
	// ErrAltFunc indicates an alternate function above 15.
	ErrAltFunc = errors.New("invalid alternate function")
)

// Level is a logic level.
type Level uint8

// Levels.
const (
	Low Level = iota
	High
)

// Controller drives the ports it has registers for.
type Controller struct {
	Ports [NumPorts]*Registers
}

// New creates a Controller with no ports attached.
func New() *Controller {
	return &Controller{}
}

// Attach installs the registers of a port.
func (c *Controller) Attach(port hal.Port, regs *Registers) *Controller {
	if int(port) < NumPorts {
		c.Ports[port] = regs
	}
	return c
}

func (c *Controller) port(port hal.Port) (*Registers, error) {
	if int(port) >= NumPorts || c.Ports[port] == nil {
		return nil, hal.OutOfRange(ErrPort, "port", port)
	}
	return c.Ports[port], nil
}

func (c *Controller) pin(port hal.Port, pin uint8) (*Registers, error) {
	regs, err := c.port(port)
	if err != nil {
		return nil, err
	}
	if pin >= PinsPerPort {
		return nil, hal.OutOfRange(ErrPin, "pin", pin)
	}
	return regs, nil
}

func validMode(m hal.PinMode) bool {
	return m <= hal.AlternateOpenDrain || m == hal.InputPullDown
}

// ConfigurePin implements hal.PinMux. Inputs get their pull resistors,
// outputs and alternate functions their output type and speed.
func (c *Controller) ConfigurePin(cfg *hal.PinConfig) error {
	if cfg == nil {
		return hal.ErrNullPointer
	}
	regs, err := c.pin(cfg.Port, cfg.Pin)
	if err != nil {
		return err
	}
	if !validMode(cfg.Mode) {
		return hal.OutOfRange(ErrMode, "mode", cfg.Mode)
	}
	if cfg.Speed > hal.VeryHighSpeed {
		return hal.OutOfRange(ErrSpeed, "speed", cfg.Speed)
	}
	pin := uint(cfg.Pin)
	reg.SetField(regs.MODER, pin*2, 2, uint32(cfg.Mode&0x3))
	switch cfg.Mode {
	case hal.InputFloat, hal.InputPullUp, hal.InputPullDown:
		reg.SetField(regs.PUPDR, pin*2, 2, uint32(cfg.Mode>>2))
	case hal.OutputPushPull, hal.OutputOpenDrain, hal.AlternatePushPull, hal.AlternateOpenDrain:
		reg.WriteBit(regs.OTYPER, pin, cfg.Mode&0x4 != 0)
		reg.SetField(regs.OSPEEDR, pin*2, 2, uint32(cfg.Speed))
	}
	return nil
}

// SetPinFunction implements hal.PinMux.
func (c *Controller) SetPinFunction(port hal.Port, pin uint8, af hal.AltFunc) error {
	regs, err := c.pin(port, pin)
	if err != nil {
		return err
	}
	if af > 15 {
		return hal.OutOfRange(ErrAltFunc, "af", af)
	}
	if pin < 8 {
		reg.SetField(regs.AFRL, uint(pin)*4, 4, uint32(af))
	} else {
		reg.SetField(regs.AFRH, uint(pin-8)*4, 4, uint32(af))
	}
	return nil
}

// WritePin sets the output level of a pin through ODR.
func (c *Controller) WritePin(port hal.Port, pin uint8, level Level) error {
	regs, err := c.pin(port, pin)
	if err != nil {
		return err
	}
	if level > High {
		return hal.OutOfRange(ErrLevel, "level", level)
	}
	reg.WriteBit(regs.ODR, uint(pin), level == High)
	return nil
}

// WritePinAtomic sets the output level of a pin through BSRR.
func (c *Controller) WritePinAtomic(port hal.Port, pin uint8, level Level) error {
	regs, err := c.pin(port, pin)
	if err != nil {
		return err
	}
	switch level {
	case High:
		regs.BSRR.Set(reg.Bit(uint(pin)))
	case Low:
		regs.BSRR.Set(reg.Bit(uint(pin) + PinsPerPort))
	default:
		return hal.OutOfRange(ErrLevel, "level", level)
	}
	return nil
}

// WritePort sets all output levels of a port.
func (c *Controller) WritePort(port hal.Port, v uint16) error {
	regs, err := c.port(port)
	if err != nil {
		return err
	}
	regs.ODR.Set(uint32(v))
	return nil
}

// ReadPin returns the input level of a pin.
func (c *Controller) ReadPin(port hal.Port, pin uint8) (Level, error) {
	regs, err := c.pin(port, pin)
	if err != nil {
		return Low, err
	}
	if reg.HasBits(regs.IDR, reg.Bit(uint(pin))) {
		return High, nil
	}
	return Low, nil
}

// ReadPort returns the input levels of a port.
func (c *Controller) ReadPort(port hal.Port) (uint16, error) {
	regs, err := c.port(port)
	if err != nil {
		return 0, err
	}
	return uint16(regs.IDR.Get()), nil
}

// TogglePin inverts the output level of a pin.
func (c *Controller) TogglePin(port hal.Port, pin uint8) error {
	regs, err := c.pin(port, pin)
	if err != nil {
		return err
	}
	regs.ODR.Set(regs.ODR.Get() ^ reg.Bit(uint(pin)))
	return nil
}

// LockPin freezes the configuration of a pin until reset using the LCKR
// key sequence.
func (c *Controller) LockPin(port hal.Port, pin uint8) error {
	regs, err := c.pin(port, pin)
	if err != nil {
		return err
	}
	bit := reg.Bit(uint(pin))
	regs.LCKR.Set(reg.Bit(lckk) | bit)
	regs.LCKR.Set(bit)
	regs.LCKR.Set(reg.Bit(lckk) | bit)
	regs.LCKR.Get()
	return nil
}

// ParsePin parses pin names like "PA2" or "ph1".
func ParsePin(s string) (hal.Port, uint8, error) {
	name := strings.ToUpper(s)
	if len(name) < 3 || name[0] != 'P' {
		return 0, 0, fmt.Errorf("%q: %w", s, ErrPin)
	}
	var port hal.Port
	switch c := name[1]; {
	case c >= 'A' && c <= 'E':
		port = hal.Port(c - 'A')
	case c == 'H':
		port = hal.PortH
	default:
		return 0, 0, hal.OutOfRange(ErrPort, "port", string(c))
	}
	n, err := strconv.ParseUint(name[2:], 10, 8)
	if err != nil || n >= PinsPerPort {
		return 0, 0, hal.OutOfRange(ErrPin, "pin", name[2:])
	}
	return port, uint8(n), nil
}
