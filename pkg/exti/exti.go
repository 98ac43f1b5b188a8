// Package exti drives the external interrupt lines: routing a pin of any
// port to one of sixteen lines through SYSCFG, the edges that trigger it,
// its mask, and the handlers run from the line vectors.
package exti

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/mcal.go/pkg/hal"
	"github.com/robotalks/mcal.go/pkg/reg"
)

// Register block addresses.
const (
	Base       = 0x40013c00
	SYSCFGBase = 0x40013800
)

// Register offsets from Base, EXTICR1 from SYSCFGBase.
const (
	OffsetIMR     = 0x00
	OffsetEMR     = 0x04
	OffsetRTSR    = 0x08
	OffsetFTSR    = 0x0c
	OffsetSWIER   = 0x10
	OffsetPR      = 0x14
	OffsetEXTICR1 = 0x08
)

// NumLines is the number of GPIO lines.
const NumLines = 16

// Line vectors.
const (
	IRQEXTI0     hal.IRQ = 6
	IRQEXTI1     hal.IRQ = 7
	IRQEXTI2     hal.IRQ = 8
	IRQEXTI3     hal.IRQ = 9
	IRQEXTI4     hal.IRQ = 10
	IRQEXTI9_5   hal.IRQ = 23
	IRQEXTI15_10 hal.IRQ = 40
)

// IRQs lists every line vector.
var IRQs = []hal.IRQ{IRQEXTI0, IRQEXTI1, IRQEXTI2, IRQEXTI3, IRQEXTI4, IRQEXTI9_5, IRQEXTI15_10}

var (
	// ErrLine indicates a line above 15.
	ErrLine = errors.New("invalid exti line")
	// ErrTrigger indicates an unknown trigger.
	ErrTrigger = errors.New("invalid exti trigger")
	// ErrSource indicates a port that cannot drive a line.
	ErrSource = errors.New("invalid exti source")
)

// Line is an external interrupt line, the pin number it is routed from.
type Line uint8

// IRQ returns the vector of the line.
func (l Line) IRQ() hal.IRQ {
	switch {
	case l <= 4:
		return IRQEXTI0 + hal.IRQ(l)
	case l <= 9:
		return IRQEXTI9_5
	}
	return IRQEXTI15_10
}

func (l Line) mask() uint32 {
	return reg.Bit(uint(l))
}

// Lines returns the lines served by a vector.
func Lines(irq hal.IRQ) (first, last Line, ok bool) {
	switch {
	case irq >= IRQEXTI0 && irq <= IRQEXTI4:
		l := Line(irq - IRQEXTI0)
		return l, l, true
	case irq == IRQEXTI9_5:
		return 5, 9, true
	case irq == IRQEXTI15_10:
		return 10, 15, true
	}
	return 0, 0, false
}

func checkLine(l Line) error {
	if l >= NumLines {
		return hal.OutOfRange(ErrLine, "line", uint8(l))
	}
	return nil
}

// Trigger selects the edges latching a line.
type Trigger uint8

// Triggers.
const (
	Falling Trigger = iota
	Rising
	BothEdges
	NoEdge
)

// String implements fmt.Stringer.
func (t Trigger) String() string {
	switch t {
	case Falling:
		return "falling"
	case Rising:
		return "rising"
	case BothEdges:
		return "both"
	case NoEdge:
		return "none"
	}
	return fmt.Sprintf("Trigger(%d)", uint8(t))
}

// ParseTrigger parses falling, rising, both or none.
func ParseTrigger(s string) (Trigger, error) {
	for t := Falling; t <= NoEdge; t++ {
		if strings.EqualFold(s, t.String()) {
			return t, nil
		}
	}
	return 0, hal.OutOfRange(ErrTrigger, "trigger", s)
}

// sourceCode is the SYSCFG_EXTICR value of a port.
func sourceCode(port hal.Port) (uint32, error) {
	switch {
	case port <= hal.PortE:
		return uint32(port), nil
	case port == hal.PortH:
		return 7, nil
	}
	return 0, hal.OutOfRange(ErrSource, "source", port)
}

// Registers are the EXTI block and the SYSCFG source selectors.
type Registers struct {
	IMR    reg.Register
	EMR    reg.Register
	RTSR   reg.Register
	FTSR   reg.Register
	SWIER  reg.Register
	PR     reg.Register
	EXTICR [4]reg.Register
}

// Handler runs when a line fires.
type Handler interface {
	HandleLine(Line)
}

// HandleLineFunc is the func form of Handler.
type HandleLineFunc func(Line)

// HandleLine implements Handler.
func (f HandleLineFunc) HandleLine(l Line) {
	f(l)
}

// Config routes and arms a line.
type Config struct {
	Line    Line
	Source  hal.Port
	Trigger Trigger
}

// Validate checks the line, then the source, then the trigger.
func (c *Config) Validate() error {
	if c == nil {
		return hal.ErrNullPointer
	}
	if err := checkLine(c.Line); err != nil {
		return err
	}
	if _, err := sourceCode(c.Source); err != nil {
		return err
	}
	if c.Trigger > NoEdge {
		return hal.OutOfRange(ErrTrigger, "trigger", uint8(c.Trigger))
	}
	return nil
}

// Controller drives the lines.
type Controller struct {
	Regs *Registers
	// Interrupts, when set, gets the line vector enabled by EnableLine.
	Interrupts hal.InterruptController

	lock     sync.Mutex
	handlers [NumLines]Handler
}

// New creates a Controller.
func New(regs *Registers, ic hal.InterruptController) *Controller {
	return &Controller{Regs: regs, Interrupts: ic}
}

// Configure sets trigger and source of a line and unmasks it. Nothing is
// written unless the whole config is valid and the vector could be enabled.
func (c *Controller) Configure(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if c.Interrupts != nil {
		if err := c.Interrupts.EnableInterrupt(cfg.Line.IRQ()); err != nil {
			return err
		}
	}
	c.SetTrigger(cfg.Line, cfg.Trigger)
	c.SetSource(cfg.Line, cfg.Source)
	reg.SetBits(c.Regs.IMR, cfg.Line.mask())
	return nil
}

// EnableLine unmasks a line.
func (c *Controller) EnableLine(l Line) error {
	if err := checkLine(l); err != nil {
		return err
	}
	if c.Interrupts != nil {
		if err := c.Interrupts.EnableInterrupt(l.IRQ()); err != nil {
			return err
		}
	}
	reg.SetBits(c.Regs.IMR, l.mask())
	return nil
}

// DisableLine masks a line. The vector stays enabled, other lines may
// share it.
func (c *Controller) DisableLine(l Line) error {
	if err := checkLine(l); err != nil {
		return err
	}
	reg.ClearBits(c.Regs.IMR, l.mask())
	return nil
}

// Enabled reports whether a line is unmasked.
func (c *Controller) Enabled(l Line) (bool, error) {
	if err := checkLine(l); err != nil {
		return false, err
	}
	return reg.HasBits(c.Regs.IMR, l.mask()), nil
}

// SetSource routes pin l of port to line l.
func (c *Controller) SetSource(l Line, port hal.Port) error {
	if err := checkLine(l); err != nil {
		return err
	}
	code, err := sourceCode(port)
	if err != nil {
		return err
	}
	reg.SetField(c.Regs.EXTICR[l/4], uint(l%4)*4, 4, code)
	return nil
}

// Source returns the port routed to a line.
func (c *Controller) Source(l Line) (hal.Port, error) {
	if err := checkLine(l); err != nil {
		return 0, err
	}
	code := reg.Field(c.Regs.EXTICR[l/4], uint(l%4)*4, 4)
	if code == 7 {
		return hal.PortH, nil
	}
	if code > uint32(hal.PortE) {
		return 0, hal.OutOfRange(ErrSource, "source", code)
	}
	return hal.Port(code), nil
}

// SetTrigger selects the edges of a line.
func (c *Controller) SetTrigger(l Line, t Trigger) error {
	if err := checkLine(l); err != nil {
		return err
	}
	var rising, falling bool
	switch t {
	case Falling:
		falling = true
	case Rising:
		rising = true
	case BothEdges:
		rising, falling = true, true
	case NoEdge:
	default:
		return hal.OutOfRange(ErrTrigger, "trigger", uint8(t))
	}
	reg.WriteBit(c.Regs.RTSR, uint(l), rising)
	reg.WriteBit(c.Regs.FTSR, uint(l), falling)
	return nil
}

// Trigger returns the edges selected for a line.
func (c *Controller) Trigger(l Line) (Trigger, error) {
	if err := checkLine(l); err != nil {
		return 0, err
	}
	rising := reg.HasBits(c.Regs.RTSR, l.mask())
	falling := reg.HasBits(c.Regs.FTSR, l.mask())
	switch {
	case rising && falling:
		return BothEdges, nil
	case rising:
		return Rising, nil
	case falling:
		return Falling, nil
	}
	return NoEdge, nil
}

// SetCallback installs the handler of a line.
func (c *Controller) SetCallback(l Line, h Handler) error {
	if err := checkLine(l); err != nil {
		return err
	}
	if h == nil {
		return hal.ErrNullPointer
	}
	c.lock.Lock()
	c.handlers[l] = h
	c.lock.Unlock()
	return nil
}

// Pending reports whether a line has latched an edge.
func (c *Controller) Pending(l Line) (bool, error) {
	if err := checkLine(l); err != nil {
		return false, err
	}
	return reg.HasBits(c.Regs.PR, l.mask()), nil
}

// ClearPending acknowledges a line.
func (c *Controller) ClearPending(l Line) error {
	if err := checkLine(l); err != nil {
		return err
	}
	// PR is rc_w1: write one to the line only.
	c.Regs.PR.Set(l.mask())
	return nil
}

// SoftwareTrigger latches a line from software.
func (c *Controller) SoftwareTrigger(l Line) error {
	if err := checkLine(l); err != nil {
		return err
	}
	c.Regs.SWIER.Set(l.mask())
	return nil
}

// HandleIRQ serves a line vector: every unmasked pending line of the vector
// is acknowledged, then its handler runs. Lines without a handler are
// acknowledged too so the vector does not fire again.
func (c *Controller) HandleIRQ(irq hal.IRQ) {
	first, last, ok := Lines(irq)
	if !ok {
		return
	}
	ready := c.Regs.PR.Get() & c.Regs.IMR.Get()
	for l := first; l <= last; l++ {
		if ready&l.mask() == 0 {
			continue
		}
		c.Regs.PR.Set(l.mask())
		c.lock.Lock()
		h := c.handlers[l]
		c.lock.Unlock()
		if h == nil {
			glog.V(4).Infof("EXTI%d: no handler", l)
			continue
		}
		h.HandleLine(l)
	}
}
