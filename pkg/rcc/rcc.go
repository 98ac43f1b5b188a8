// Package rcc drives reset and clock control: oscillators, system clock
// selection, the main PLL and the peripheral clock gates.
package rcc

import (
	"errors"
	"fmt"

	"github.com/golang/glog"

	"github.com/robotalks/mcal.go/pkg/hal"
	"github.com/robotalks/mcal.go/pkg/reg"
	"github.com/robotalks/mcal.go/pkg/spin"
)

// DefaultTimeout is the number of ready flag polls before giving up.
const DefaultTimeout = 1000000

var (
	// ErrClockSource indicates an unknown or unsupported clock source.
	ErrClockSource = errors.New("invalid clock source")
	// ErrBus indicates an unknown peripheral bus.
	ErrBus = errors.New("invalid peripheral bus")
	// ErrPLLFactor indicates a PLL factor out of range.
	ErrPLLFactor = errors.New("invalid PLL factor")
	// ErrTimeout indicates an oscillator did not become ready.
	ErrTimeout = errors.New("clock ready timeout")
)

// Source is a system clock source.
type Source uint8

// Clock sources, in CFGR.SW encoding.
const (
	HSI Source = iota
	HSE
	PLL
)

// String implements fmt.Stringer.
func (s Source) String() string {
	switch s {
	case HSI:
		return "HSI"
	case HSE:
		return "HSE"
	case PLL:
		return "PLL"
	}
	return "Source(?)"
}

// Valid reports whether s is a known source.
func (s Source) Valid() bool {
	return s <= PLL
}

func (s Source) onBit() uint {
	switch s {
	case HSE:
		return CRHSEON
	case PLL:
		return CRPLLON
	}
	return CRHSION
}

// ParseSource parses hsi, hse or pll.
func ParseSource(s string) (Source, error) {
	switch s {
	case "hsi", "HSI":
		return HSI, nil
	case "hse", "HSE":
		return HSE, nil
	case "pll", "PLL":
		return PLL, nil
	}
	return 0, hal.OutOfRange(ErrClockSource, "source", s)
}

// Controller drives the RCC block.
type Controller struct {
	Regs *Registers
	// Waiter bounds the ready flag polling; nil polls DefaultTimeout times.
	Waiter spin.Waiter
}

// New creates a Controller.
func New(regs *Registers) *Controller {
	return &Controller{Regs: regs}
}

// EnableClockSource turns an oscillator on and waits for its ready flag.
func (c *Controller) EnableClockSource(src Source) error {
	if !src.Valid() {
		return hal.OutOfRange(ErrClockSource, "source", src)
	}
	on := src.onBit()
	reg.SetBits(c.Regs.CR, reg.Bit(on))
	waiter := c.Waiter
	if waiter == nil {
		waiter = spin.Bounded(DefaultTimeout)
	}
	if err := waiter.Wait(func() bool {
		return reg.HasBits(c.Regs.CR, reg.Bit(on+1))
	}); err != nil {
		return fmt.Errorf("%s: %w", src, ErrTimeout)
	}
	glog.V(3).Infof("RCC: %s ready", src)
	return nil
}

// DisableClockSource turns an oscillator off.
func (c *Controller) DisableClockSource(src Source) error {
	if !src.Valid() {
		return hal.OutOfRange(ErrClockSource, "source", src)
	}
	reg.ClearBits(c.Regs.CR, reg.Bit(src.onBit()))
	return nil
}

// SelectSystemClock switches the system clock.
func (c *Controller) SelectSystemClock(src Source) error {
	if !src.Valid() {
		return hal.OutOfRange(ErrClockSource, "source", src)
	}
	reg.SetField(c.Regs.CFGR, cfgrSW, 2, uint32(src))
	return nil
}

// SystemClock returns the source in use as reported by CFGR.SWS.
func (c *Controller) SystemClock() Source {
	return Source(reg.Field(c.Regs.CFGR, cfgrSWS, 2))
}

func (c *Controller) enr(bus hal.Bus) (reg.Register, error) {
	switch bus {
	case hal.AHB1:
		return c.Regs.AHB1ENR, nil
	case hal.AHB2:
		return c.Regs.AHB2ENR, nil
	case hal.APB1:
		return c.Regs.APB1ENR, nil
	case hal.APB2:
		return c.Regs.APB2ENR, nil
	}
	return nil, hal.OutOfRange(ErrBus, "bus", bus)
}

// EnablePeripheralClock implements hal.ClockGate.
func (c *Controller) EnablePeripheralClock(bus hal.Bus, bit uint8) error {
	r, err := c.enr(bus)
	if err != nil {
		return err
	}
	reg.SetBits(r, reg.Bit(uint(bit)))
	glog.V(4).Infof("RCC: %s bit %d on", bus, bit)
	return nil
}

// DisablePeripheralClock implements hal.ClockGate.
func (c *Controller) DisablePeripheralClock(bus hal.Bus, bit uint8) error {
	r, err := c.enr(bus)
	if err != nil {
		return err
	}
	reg.ClearBits(r, reg.Bit(uint(bit)))
	return nil
}

// PeripheralClockEnabled reports whether a clock gate is open.
func (c *Controller) PeripheralClockEnabled(bus hal.Bus, bit uint8) (bool, error) {
	r, err := c.enr(bus)
	if err != nil {
		return false, err
	}
	return reg.HasBits(r, reg.Bit(uint(bit))), nil
}
