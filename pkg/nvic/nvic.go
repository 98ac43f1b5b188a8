// Package nvic drives the nested vectored interrupt controller.
package nvic

import (
	"errors"

	"github.com/golang/glog"

	"github.com/robotalks/mcal.go/pkg/hal"
	"github.com/robotalks/mcal.go/pkg/reg"
)

// Base is the NVIC register block address.
const Base = 0xe000e100

// Register offsets from Base.
const (
	OffsetISER = 0x000
	OffsetICER = 0x080
	OffsetISPR = 0x100
	OffsetICPR = 0x180
	OffsetIPR  = 0x300
)

// Geometry of the STM32F401 interrupt lines.
const (
	// MaxIRQ is the highest line, SPI4.
	MaxIRQ hal.IRQ = 84
	// MaxPriority is the largest of the 16 implemented priority levels.
	MaxPriority = 15

	BankWords     = 8
	PriorityWords = 60

	// priorityShift places the level in the implemented upper nibble.
	priorityShift = 4
)

// Well known lines.
const (
	IRQWWDG   hal.IRQ = 0
	IRQUSART1 hal.IRQ = 37
	IRQUSART2 hal.IRQ = 38
	IRQUSART6 hal.IRQ = 71
	IRQSPI4   hal.IRQ = 84
)

var (
	// ErrIRQ indicates a line number outside 0..MaxIRQ.
	ErrIRQ = errors.New("invalid interrupt number")
	// ErrPriority indicates a priority above MaxPriority.
	ErrPriority = errors.New("invalid interrupt priority")
)

// Registers is the NVIC register block. ISER, ISPR set bits written as one,
// ICER, ICPR clear them; all four read back the current state.
type Registers struct {
	ISER [BankWords]reg.Register
	ICER [BankWords]reg.Register
	ISPR [BankWords]reg.Register
	ICPR [BankWords]reg.Register
	IPR  [PriorityWords]reg.Register
}

// Controller implements hal.InterruptController.
type Controller struct {
	Regs *Registers
}

// New creates a Controller.
func New(regs *Registers) *Controller {
	return &Controller{Regs: regs}
}

func checkIRQ(irq hal.IRQ) error {
	if irq < 0 || irq > MaxIRQ {
		return hal.OutOfRange(ErrIRQ, "irq", int(irq))
	}
	return nil
}

func word(irq hal.IRQ) int {
	return int(irq) / 32
}

func mask(irq hal.IRQ) uint32 {
	return reg.Bit(uint(irq) % 32)
}

// EnableInterrupt implements hal.InterruptController.
func (c *Controller) EnableInterrupt(irq hal.IRQ) error {
	if err := checkIRQ(irq); err != nil {
		return err
	}
	glog.V(4).Infof("NVIC: enable %d", irq)
	c.Regs.ISER[word(irq)].Set(mask(irq))
	return nil
}

// DisableInterrupt implements hal.InterruptController.
func (c *Controller) DisableInterrupt(irq hal.IRQ) error {
	if err := checkIRQ(irq); err != nil {
		return err
	}
	c.Regs.ICER[word(irq)].Set(mask(irq))
	return nil
}

// Enabled reports whether a line is enabled.
func (c *Controller) Enabled(irq hal.IRQ) (bool, error) {
	if err := checkIRQ(irq); err != nil {
		return false, err
	}
	return reg.HasBits(c.Regs.ISER[word(irq)], mask(irq)), nil
}

// SetPending implements hal.InterruptController.
func (c *Controller) SetPending(irq hal.IRQ) error {
	if err := checkIRQ(irq); err != nil {
		return err
	}
	c.Regs.ISPR[word(irq)].Set(mask(irq))
	return nil
}

// ClearPending implements hal.InterruptController.
func (c *Controller) ClearPending(irq hal.IRQ) error {
	if err := checkIRQ(irq); err != nil {
		return err
	}
	c.Regs.ICPR[word(irq)].Set(mask(irq))
	return nil
}

// Pending implements hal.InterruptController.
func (c *Controller) Pending(irq hal.IRQ) (bool, error) {
	if err := checkIRQ(irq); err != nil {
		return false, err
	}
	return reg.HasBits(c.Regs.ISPR[word(irq)], mask(irq)), nil
}

// SetPriority implements hal.InterruptController.
func (c *Controller) SetPriority(irq hal.IRQ, priority uint8) error {
	if err := checkIRQ(irq); err != nil {
		return err
	}
	if priority > MaxPriority {
		return hal.OutOfRange(ErrPriority, "priority", priority)
	}
	shift := uint(irq%4)*8 + priorityShift
	reg.SetField(c.Regs.IPR[irq/4], shift, 4, uint32(priority))
	return nil
}

// Priority implements hal.InterruptController.
func (c *Controller) Priority(irq hal.IRQ) (uint8, error) {
	if err := checkIRQ(irq); err != nil {
		return 0, err
	}
	shift := uint(irq%4)*8 + priorityShift
	return uint8(reg.Field(c.Regs.IPR[irq/4], shift, 4)), nil
}
