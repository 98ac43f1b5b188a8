package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSCBAIRCRKey(t *testing.T) {
	s := NewSCB(NewInterrupts())
	s.AIRCR.Set(0x05fa<<16 | 5<<8)
	assert.Equal(t, uint32(5), s.PriorityGroup())
	assert.Equal(t, uint32(0xfa05<<16|5<<8), s.AIRCR.Get())
	s.AIRCR.Set(7 << 8)
	assert.Equal(t, uint32(5), s.PriorityGroup())
	assert.Equal(t, 1, s.IgnoredWrites)
	assert.Equal(t, uint32(CortexM4CPUID), s.CPUID.Get())
}

func TestSCBPendBits(t *testing.T) {
	ints := NewInterrupts()
	s := NewSCB(ints)
	var ticks int
	ints.Attach(SysTickIRQ, func() { ticks++ })

	s.ICSR.Set(icsrPendSVSet)
	assert.True(t, ints.IsPending(PendSVIRQ))
	assert.Equal(t, uint32(icsrPendSVSet), s.ICSR.Get())
	s.ICSR.Set(icsrPendSVClr)
	assert.False(t, ints.IsPending(PendSVIRQ))
	assert.Zero(t, s.ICSR.Get())

	s.ICSR.Set(icsrPendSTSet)
	assert.Equal(t, 1, ticks)
	assert.Zero(t, s.ICSR.Get())
}
