package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/robotalks/mcal.go/pkg/hal"
)

func TestInterruptsEnableAndPending(t *testing.T) {
	c := NewInterrupts()
	var runs int
	c.Attach(37, func() { runs++ })

	c.Raise(37)
	assert.Equal(t, 0, runs)
	assert.True(t, c.IsPending(37))
	assert.Equal(t, uint32(1<<5), c.ISPR[1].Get())

	c.ISER[1].Set(1 << 5)
	assert.True(t, c.Enabled(37))
	assert.Equal(t, 1, runs)
	assert.False(t, c.IsPending(37))

	c.ICER[1].Set(1 << 5)
	assert.False(t, c.Enabled(37))
	c.ISPR[1].Set(1 << 5)
	assert.True(t, c.IsPending(37))
	c.ICPR[1].Set(1 << 5)
	assert.False(t, c.IsPending(37))
	assert.Equal(t, 1, runs)
}

func TestInterruptsPriorityOrder(t *testing.T) {
	c := NewInterrupts()
	var order []hal.IRQ
	for _, irq := range []hal.IRQ{6, 7, 8} {
		irq := irq
		c.Attach(irq, func() { order = append(order, irq) })
	}
	// IRQ 6 and 7 share IPR1, IRQ 8 is in IPR2. Lower value wins.
	c.IPR[1].Set(0x10<<16 | 0x30<<24)
	c.IPR[2].Set(0x00)
	c.ISPR[0].Set(1<<6 | 1<<7 | 1<<8)
	assert.Empty(t, order)
	c.ISER[0].Set(1<<6 | 1<<7 | 1<<8)
	assert.Equal(t, []hal.IRQ{8, 6, 7}, order)
}

func TestInterruptsTailChain(t *testing.T) {
	c := NewInterrupts()
	var order []string
	c.Attach(SysTickIRQ, func() {
		order = append(order, "systick")
		c.Raise(1)
		order = append(order, "systick done")
	})
	c.Attach(1, func() { order = append(order, "irq1") })
	c.ISER[0].Set(1 << 1)
	c.Raise(SysTickIRQ)
	assert.Equal(t, []string{"systick", "systick done", "irq1"}, order)
	assert.False(t, c.IsPending(SysTickIRQ))
	assert.True(t, c.Enabled(SysTickIRQ))
}

func TestInterruptsNoHandler(t *testing.T) {
	c := NewInterrupts()
	c.ISER[0].Set(1 << 3)
	c.Raise(3)
	assert.True(t, c.IsPending(3))
}
