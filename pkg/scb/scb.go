// Package scb drives the system control block: the priority grouping that
// splits interrupt priorities into preemption group and subpriority, and
// the PendSV and SysTick system exceptions.
package scb

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robotalks/mcal.go/pkg/hal"
	"github.com/robotalks/mcal.go/pkg/reg"
)

// Base is the SCB register block address.
const Base = 0xe000ed00

// Register offsets from Base.
const (
	OffsetCPUID = 0x00
	OffsetICSR  = 0x04
	OffsetAIRCR = 0x0c
	OffsetSHPR2 = 0x1c
	OffsetSHPR3 = 0x20
)

const (
	aircrVectKey  uint32 = 0x05fa
	aircrPriGroup uint   = 8

	icsrPendSTClr uint = 25
	icsrPendSTSet uint = 26
	icsrPendSVClr uint = 27
	icsrPendSVSet uint = 28

	shpr3PendSV  uint = 16
	shpr3SysTick uint = 24

	// PriorityBits is the number of implemented priority bits.
	PriorityBits = 4
	// MaxPriority is the largest implemented priority level.
	MaxPriority = 1<<PriorityBits - 1
)

var (
	// ErrGrouping indicates an unsupported PRIGROUP value.
	ErrGrouping = errors.New("invalid priority grouping")
	// ErrException indicates a system exception without driver support.
	ErrException = errors.New("invalid exception")
	// ErrPriority indicates a priority above MaxPriority.
	ErrPriority = errors.New("invalid exception priority")
)

// Registers is the subset of the SCB the driver uses.
type Registers struct {
	CPUID reg.Register
	ICSR  reg.Register
	AIRCR reg.Register
	SHPR2 reg.Register
	SHPR3 reg.Register
}

// Grouping is the PRIGROUP value. With four implemented bits only 0 and
// 4..7 are distinct.
type Grouping uint8

// Groupings named by preemption levels and subpriorities.
const (
	Group16Sub1 Grouping = 0
	Group8Sub2  Grouping = 4
	Group4Sub4  Grouping = 5
	Group2Sub8  Grouping = 6
	Group1Sub16 Grouping = 7
)

// Valid reports whether g is one of the named groupings.
func (g Grouping) Valid() bool {
	return g == Group16Sub1 || g >= Group8Sub2 && g <= Group1Sub16
}

// SubBits is the number of priority bits holding the subpriority.
func (g Grouping) SubBits() uint {
	if g <= 3 {
		return 0
	}
	return uint(g) - 3
}

// Split divides a 4-bit priority into group and subpriority.
func (g Grouping) Split(priority uint8) (group, sub uint8) {
	n := g.SubBits()
	priority &= MaxPriority
	return priority >> n, priority & (1<<n - 1)
}

// Compose builds the 4-bit priority of group and sub.
func (g Grouping) Compose(group, sub uint8) (uint8, error) {
	n := g.SubBits()
	if group > MaxPriority>>n {
		return 0, hal.OutOfRange(ErrPriority, "group", group)
	}
	if sub > 1<<n-1 {
		return 0, hal.OutOfRange(ErrPriority, "subpriority", sub)
	}
	return group<<n | sub, nil
}

// String implements fmt.Stringer, e.g. 8/2 for 8 groups of 2 subpriorities.
func (g Grouping) String() string {
	if !g.Valid() {
		return fmt.Sprintf("Grouping(%d)", uint8(g))
	}
	n := g.SubBits()
	return fmt.Sprintf("%d/%d", 1<<(PriorityBits-n), 1<<n)
}

// ParseGrouping parses the String form.
func ParseGrouping(s string) (Grouping, error) {
	for _, g := range []Grouping{Group16Sub1, Group8Sub2, Group4Sub4, Group2Sub8, Group1Sub16} {
		if strings.TrimSpace(s) == g.String() {
			return g, nil
		}
	}
	return 0, hal.OutOfRange(ErrGrouping, "grouping", s)
}

// Exception is a configurable system exception.
type Exception uint8

// Supported system exceptions.
const (
	PendSV Exception = iota
	SysTick
)

// String implements fmt.Stringer.
func (e Exception) String() string {
	switch e {
	case PendSV:
		return "PendSV"
	case SysTick:
		return "SysTick"
	}
	return fmt.Sprintf("Exception(%d)", uint8(e))
}

// Controller drives the SCB.
type Controller struct {
	Regs *Registers
}

// New creates a Controller.
func New(regs *Registers) *Controller {
	return &Controller{Regs: regs}
}

// SetPriorityGrouping writes PRIGROUP with the key AIRCR requires.
func (c *Controller) SetPriorityGrouping(g Grouping) error {
	if !g.Valid() {
		return hal.OutOfRange(ErrGrouping, "grouping", uint8(g))
	}
	v := c.Regs.AIRCR.Get() & 0xf8ff
	c.Regs.AIRCR.Set(aircrVectKey<<16 | v | uint32(g)<<aircrPriGroup)
	return nil
}

// PriorityGrouping reads PRIGROUP. Values 1..3 behave as Group16Sub1.
func (c *Controller) PriorityGrouping() Grouping {
	g := Grouping(reg.Field(c.Regs.AIRCR, aircrPriGroup, 3))
	if g < Group8Sub2 {
		return Group16Sub1
	}
	return g
}

func pendBits(e Exception) (set, clr uint, err error) {
	switch e {
	case PendSV:
		return icsrPendSVSet, icsrPendSVClr, nil
	case SysTick:
		return icsrPendSTSet, icsrPendSTClr, nil
	}
	return 0, 0, hal.OutOfRange(ErrException, "exception", uint8(e))
}

// SetPending pends a system exception.
func (c *Controller) SetPending(e Exception) error {
	set, _, err := pendBits(e)
	if err != nil {
		return err
	}
	c.Regs.ICSR.Set(reg.Bit(set))
	return nil
}

// ClearPending removes the pending state of a system exception.
func (c *Controller) ClearPending(e Exception) error {
	_, clr, err := pendBits(e)
	if err != nil {
		return err
	}
	c.Regs.ICSR.Set(reg.Bit(clr))
	return nil
}

// Pending reports whether a system exception is pending.
func (c *Controller) Pending(e Exception) (bool, error) {
	set, _, err := pendBits(e)
	if err != nil {
		return false, err
	}
	return reg.HasBits(c.Regs.ICSR, reg.Bit(set)), nil
}

func priorityShift(e Exception) (uint, error) {
	switch e {
	case PendSV:
		return shpr3PendSV + 8 - PriorityBits, nil
	case SysTick:
		return shpr3SysTick + 8 - PriorityBits, nil
	}
	return 0, hal.OutOfRange(ErrException, "exception", uint8(e))
}

// SetPriority sets the priority of a system exception.
func (c *Controller) SetPriority(e Exception, priority uint8) error {
	shift, err := priorityShift(e)
	if err != nil {
		return err
	}
	if priority > MaxPriority {
		return hal.OutOfRange(ErrPriority, "priority", priority)
	}
	reg.SetField(c.Regs.SHPR3, shift, PriorityBits, uint32(priority))
	return nil
}

// Priority returns the priority of a system exception.
func (c *Controller) Priority(e Exception) (uint8, error) {
	shift, err := priorityShift(e)
	if err != nil {
		return 0, err
	}
	return uint8(reg.Field(c.Regs.SHPR3, shift, PriorityBits)), nil
}

// CPUID returns the core identification register.
func (c *Controller) CPUID() uint32 {
	return c.Regs.CPUID.Get()
}
