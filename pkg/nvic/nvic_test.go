package nvic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/mcal.go/pkg/hal"
	"github.com/robotalks/mcal.go/pkg/sim"
)

func newTestController() (*Controller, *sim.Interrupts) {
	m := sim.NewInterrupts()
	regs := &Registers{}
	for i := 0; i < BankWords; i++ {
		regs.ISER[i] = m.ISER[i]
		regs.ICER[i] = m.ICER[i]
		regs.ISPR[i] = m.ISPR[i]
		regs.ICPR[i] = m.ICPR[i]
	}
	for i := 0; i < PriorityWords; i++ {
		regs.IPR[i] = m.IPR[i]
	}
	return New(regs), m
}

func TestEnableDisable(t *testing.T) {
	c, m := newTestController()
	var ic hal.InterruptController = c
	require.NoError(t, ic.EnableInterrupt(IRQUSART2))
	require.NoError(t, ic.EnableInterrupt(IRQUSART1))
	assert.True(t, m.Enabled(IRQUSART2))
	on, err := c.Enabled(IRQUSART1)
	require.NoError(t, err)
	assert.True(t, on)

	require.NoError(t, ic.DisableInterrupt(IRQUSART2))
	assert.False(t, m.Enabled(IRQUSART2))
	assert.True(t, m.Enabled(IRQUSART1))
}

func TestPendingDispatch(t *testing.T) {
	c, m := newTestController()
	var runs int
	m.Attach(IRQUSART6, func() { runs++ })
	require.NoError(t, c.SetPending(IRQUSART6))
	pending, err := c.Pending(IRQUSART6)
	require.NoError(t, err)
	assert.True(t, pending)
	assert.Equal(t, 0, runs)

	require.NoError(t, c.EnableInterrupt(IRQUSART6))
	assert.Equal(t, 1, runs)
	pending, err = c.Pending(IRQUSART6)
	require.NoError(t, err)
	assert.False(t, pending)

	require.NoError(t, c.DisableInterrupt(IRQUSART6))
	require.NoError(t, c.SetPending(IRQUSART6))
	require.NoError(t, c.ClearPending(IRQUSART6))
	assert.False(t, m.IsPending(IRQUSART6))
}

func TestPriority(t *testing.T) {
	c, m := newTestController()
	require.NoError(t, c.SetPriority(IRQUSART2, 5))
	require.NoError(t, c.SetPriority(IRQUSART1, 15))
	p, err := c.Priority(IRQUSART2)
	require.NoError(t, err)
	assert.Equal(t, uint8(5), p)
	p, err = c.Priority(IRQUSART1)
	require.NoError(t, err)
	assert.Equal(t, uint8(15), p)
	// 37 and 38 share IPR9, bytes 1 and 2
	assert.Equal(t, uint32(0x50f000), m.IPR[9].Get())
	assert.ErrorIs(t, c.SetPriority(IRQUSART2, 16), ErrPriority)
}

func TestRejectsIRQ(t *testing.T) {
	c, _ := newTestController()
	for _, irq := range []hal.IRQ{-1, MaxIRQ + 1} {
		assert.ErrorIs(t, c.EnableInterrupt(irq), ErrIRQ)
		assert.ErrorIs(t, c.DisableInterrupt(irq), ErrIRQ)
		assert.ErrorIs(t, c.SetPending(irq), ErrIRQ)
		assert.ErrorIs(t, c.ClearPending(irq), ErrIRQ)
		assert.ErrorIs(t, c.SetPriority(irq, 0), ErrIRQ)
		_, err := c.Pending(irq)
		assert.ErrorIs(t, err, ErrIRQ)
		_, err = c.Priority(irq)
		assert.ErrorIs(t, err, ErrIRQ)
	}
	assert.NoError(t, c.EnableInterrupt(IRQSPI4))
	assert.NoError(t, c.EnableInterrupt(IRQWWDG))
}
