package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSysTickCounting(t *testing.T) {
	st := NewSysTick(nil)
	st.LOAD.Set(99)
	st.VAL.Set(12345)
	assert.Equal(t, uint32(0), st.VAL.Get())
	st.Step(10)
	assert.Equal(t, uint32(0), st.Counter())

	st.CTRL.Set(stEnable | stClkSource)
	st.Step(1)
	assert.Equal(t, uint32(99), st.Counter())
	st.Step(98)
	assert.Equal(t, uint32(1), st.Counter())
	assert.Zero(t, st.CTRL.Get()&stCountFlag)
	st.Step(1)
	assert.Equal(t, uint32(0), st.Counter())
	assert.NotZero(t, st.CTRL.Get()&stCountFlag)
	// read clears
	assert.Zero(t, st.CTRL.Get()&stCountFlag)
}

func TestSysTickPrescaler(t *testing.T) {
	st := NewSysTick(nil)
	st.LOAD.Set(0xffffff)
	st.CTRL.Set(stEnable)
	st.Step(1)
	st.Step(7)
	assert.Equal(t, uint32(0xffffff), st.Counter())
	st.Step(80)
	assert.Equal(t, uint32(0xffffff-10), st.Counter())
}

func TestSysTickInterrupt(t *testing.T) {
	c := NewInterrupts()
	st := NewSysTick(c)
	var fires int
	c.Attach(SysTickIRQ, func() { fires++ })
	st.LOAD.Set(9)
	st.CTRL.Set(stEnable | stTickInt | stClkSource)
	st.Step(1 + 10*5)
	assert.Equal(t, 5, fires)

	st.CTRL.Set(stEnable | stClkSource)
	st.Step(100)
	assert.Equal(t, 5, fires)
}

func TestSysTickStopFromHandler(t *testing.T) {
	c := NewInterrupts()
	st := NewSysTick(c)
	var fires int
	c.Attach(SysTickIRQ, func() {
		fires++
		st.CTRL.Set(0)
	})
	st.LOAD.Set(4)
	st.CTRL.Set(stEnable | stTickInt | stClkSource)
	st.Step(1000)
	assert.Equal(t, 1, fires)
}

func TestSysTickAutoStep(t *testing.T) {
	st := NewSysTick(nil)
	st.AutoStep = 10
	st.LOAD.Set(24)
	st.CTRL.Set(stEnable | stClkSource)
	reads := 0
	for st.CTRL.Get()&stCountFlag == 0 {
		reads++
	}
	assert.Equal(t, 2, reads)
}
