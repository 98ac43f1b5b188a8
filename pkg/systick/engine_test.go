package systick

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/mcal.go/pkg/hal"
	"github.com/robotalks/mcal.go/pkg/sim"
	"github.com/robotalks/mcal.go/pkg/spin"
)

type testBench struct {
	engine *Engine
	timer  *sim.SysTick
	ints   *sim.Interrupts
	ticks  int
}

func newTestBench(t *testing.T) *testBench {
	ints := sim.NewInterrupts()
	st := sim.NewSysTick(ints)
	b := &testBench{
		engine: New(&Registers{CTRL: st.CTRL, LOAD: st.LOAD, VAL: st.VAL, CALIB: st.CALIB}, 16000000),
		timer:  st,
		ints:   ints,
	}
	ints.Attach(sim.SysTickIRQ, b.engine.HandleIRQ)
	require.NoError(t, b.engine.SetCallback(HandleTickFunc(func() { b.ticks++ })))
	return b
}

func TestReloadValues(t *testing.T) {
	b := newTestBench(t)
	e := b.engine
	tests := []struct {
		ms   uint16
		load uint32
	}{
		{1, 15999},
		{10, 159999},
		{1000, 15999999},
		{1048, 16767999},
	}
	for _, test := range tests {
		load, ok, err := e.Reload(test.ms)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, test.load, load, "interval %d", test.ms)
	}
	assert.Equal(t, uint32(1048), e.MaxInterval())
	_, _, err := e.Reload(1049)
	assert.ErrorIs(t, err, hal.ErrOverflow)

	e.Init(CPUClockDiv8)
	assert.Equal(t, uint32(2000000), e.TickHz())
	assert.Equal(t, uint32(8388), e.MaxInterval())
	load, ok, err := e.Reload(1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint32(1999), load)
	assert.Equal(t, Idle, e.Mode())
}

func TestBusyWait(t *testing.T) {
	b := newTestBench(t)
	b.timer.AutoStep = 100000
	require.NoError(t, b.engine.SetBusyWait(10))
	assert.Equal(t, Idle, b.engine.Mode())
	assert.Equal(t, uint32(0), b.timer.LOAD.Get())
	assert.Equal(t, uint32(0), b.timer.CTRL.Peek()&CtrlEnable)
	assert.Equal(t, 0, b.ticks)
}

func TestBusyWaitBounded(t *testing.T) {
	b := newTestBench(t)
	b.engine.Waiter = spin.Bounded(3)
	assert.ErrorIs(t, b.engine.SetBusyWait(10), spin.ErrExhausted)
	assert.Equal(t, Idle, b.engine.Mode())
}

func TestBusyWaitZero(t *testing.T) {
	b := newTestBench(t)
	// any spin would fail immediately
	b.engine.Waiter = spin.Bounded(0)
	require.NoError(t, b.engine.SetBusyWait(0))
	assert.Equal(t, Idle, b.engine.Mode())
	assert.Equal(t, uint32(0), b.timer.CTRL.Peek())
	assert.Equal(t, uint32(0), b.timer.LOAD.Get())
}

func TestArmWhileArmed(t *testing.T) {
	b := newTestBench(t)
	require.NoError(t, b.engine.SetSingleInterval(5))
	assert.ErrorIs(t, b.engine.SetPeriodicInterval(7), hal.ErrBusy)
	assert.ErrorIs(t, b.engine.SetBusyWait(1), hal.ErrBusy)
	assert.ErrorIs(t, b.engine.SetSingleInterval(2000), hal.ErrBusy)
	assert.Equal(t, OneShot, b.engine.Mode())
}

func TestOverflowKeepsMode(t *testing.T) {
	b := newTestBench(t)
	err := b.engine.SetSingleInterval(2000)
	assert.ErrorIs(t, err, hal.ErrOverflow)
	var re *hal.RangeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "interval", re.Field)
	assert.ErrorIs(t, b.engine.SetPeriodicInterval(65535), hal.ErrOverflow)
	assert.ErrorIs(t, b.engine.SetBusyWait(1049), hal.ErrOverflow)
	assert.Equal(t, Idle, b.engine.Mode())
	assert.Equal(t, uint32(0), b.timer.CTRL.Peek())
}

func TestSingleInterval(t *testing.T) {
	b := newTestBench(t)
	require.NoError(t, b.engine.SetSingleInterval(1))
	assert.Equal(t, OneShot, b.engine.Mode())
	b.timer.Step(15999)
	assert.Equal(t, 0, b.ticks)
	b.timer.Step(1)
	assert.Equal(t, 1, b.ticks)
	assert.Equal(t, Idle, b.engine.Mode())
	b.timer.Step(100000)
	assert.Equal(t, 1, b.ticks)
}

func TestSingleIntervalWithoutCallback(t *testing.T) {
	ints := sim.NewInterrupts()
	st := sim.NewSysTick(ints)
	e := New(&Registers{CTRL: st.CTRL, LOAD: st.LOAD, VAL: st.VAL, CALIB: st.CALIB}, 0)
	ints.Attach(sim.SysTickIRQ, e.HandleIRQ)
	require.NoError(t, e.SetSingleInterval(1))
	st.Step(16000)
	assert.Equal(t, Idle, e.Mode())
	assert.Equal(t, uint32(0), st.LOAD.Get())
}

func TestSingleIntervalZero(t *testing.T) {
	b := newTestBench(t)
	require.NoError(t, b.engine.SetSingleInterval(0))
	assert.Equal(t, 1, b.ticks)
	assert.Equal(t, Idle, b.engine.Mode())
}

func TestPeriodicInterval(t *testing.T) {
	b := newTestBench(t)
	require.NoError(t, b.engine.SetPeriodicInterval(1))
	b.timer.Step(3 * 16000)
	assert.Equal(t, 3, b.ticks)
	assert.Equal(t, Periodic, b.engine.Mode())
	b.engine.Deinit()
	b.timer.Step(3 * 16000)
	assert.Equal(t, 3, b.ticks)
	assert.Equal(t, Idle, b.engine.Mode())
	assert.ErrorIs(t, b.engine.SetPeriodicInterval(0), hal.ErrOverflow)
}

func TestPeriodicDeinitFromHandler(t *testing.T) {
	b := newTestBench(t)
	require.NoError(t, b.engine.SetCallback(HandleTickFunc(func() {
		b.ticks++
		if b.ticks == 2 {
			b.engine.Deinit()
		}
	})))
	require.NoError(t, b.engine.SetPeriodicInterval(1))
	b.timer.Step(10 * 16000)
	assert.Equal(t, 2, b.ticks)
	assert.Equal(t, Idle, b.engine.Mode())
}

func TestRearmFromOneShotHandler(t *testing.T) {
	b := newTestBench(t)
	require.NoError(t, b.engine.SetCallback(HandleTickFunc(func() {
		b.ticks++
		if b.ticks == 1 {
			b.engine.Deinit()
			require.NoError(t, b.engine.SetSingleInterval(1))
		}
	})))
	require.NoError(t, b.engine.SetSingleInterval(1))
	b.timer.Step(16000)
	assert.Equal(t, OneShot, b.engine.Mode())
	b.timer.Step(16000)
	assert.Equal(t, 2, b.ticks)
	assert.Equal(t, Idle, b.engine.Mode())
}

func TestTickCounters(t *testing.T) {
	b := newTestBench(t)
	require.NoError(t, b.engine.SetSingleInterval(1))
	b.timer.Step(1000)
	assert.Equal(t, uint32(15000), b.engine.RemainingTicks())
	assert.Equal(t, uint32(999), b.engine.ElapsedTicks())
}

func TestDeinitRearmSameReload(t *testing.T) {
	b := newTestBench(t)
	require.NoError(t, b.engine.SetSingleInterval(250))
	first := b.timer.LOAD.Get()
	b.engine.Deinit()
	b.engine.Deinit()
	assert.Equal(t, Idle, b.engine.Mode())
	assert.Equal(t, uint32(0), b.timer.LOAD.Get())
	assert.Equal(t, uint32(0), b.timer.VAL.Get())
	require.NoError(t, b.engine.SetSingleInterval(250))
	assert.Equal(t, first, b.timer.LOAD.Get())
	assert.Equal(t, uint32(3999999), first)
}

func TestSetCallbackNil(t *testing.T) {
	b := newTestBench(t)
	assert.ErrorIs(t, b.engine.SetCallback(nil), hal.ErrNullPointer)
}

func TestInitKeepsMode(t *testing.T) {
	b := newTestBench(t)
	require.NoError(t, b.engine.SetPeriodicInterval(100))
	b.engine.Init(CPUClock)
	assert.Equal(t, Periodic, b.engine.Mode())
	assert.Equal(t, CtrlEnable|CtrlTickInt|CtrlClkSource, b.timer.CTRL.Peek()&^CtrlCountFlag)
}
