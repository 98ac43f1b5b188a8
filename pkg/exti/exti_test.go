package exti

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/mcal.go/pkg/hal"
	"github.com/robotalks/mcal.go/pkg/sim"
)

type testBench struct {
	ints *sim.Interrupts
	exti *sim.EXTI
	gpio [2]*sim.GPIO
	c    *Controller
}

type enabler struct {
	hal.InterruptController
	ints    *sim.Interrupts
	enabled []hal.IRQ
	err     error
}

func (e *enabler) EnableInterrupt(irq hal.IRQ) error {
	if e.err != nil {
		return e.err
	}
	e.enabled = append(e.enabled, irq)
	e.ints.ISER[irq/32].Set(1 << (uint(irq) % 32))
	return nil
}

func newTestBench() (*testBench, *enabler) {
	b := &testBench{ints: sim.NewInterrupts()}
	b.exti = sim.NewEXTI(b.ints)
	for p := range b.gpio {
		b.gpio[p] = sim.NewGPIO(hal.Port(p).String())
		b.exti.AttachPort(hal.Port(p), b.gpio[p])
	}
	regs := &Registers{
		IMR:   b.exti.IMR,
		EMR:   b.exti.EMR,
		RTSR:  b.exti.RTSR,
		FTSR:  b.exti.FTSR,
		SWIER: b.exti.SWIER,
		PR:    b.exti.PR,
	}
	for i := range regs.EXTICR {
		regs.EXTICR[i] = b.exti.EXTICR[i]
	}
	en := &enabler{ints: b.ints}
	b.c = New(regs, en)
	for _, irq := range IRQs {
		irq := irq
		b.ints.Attach(irq, func() { b.c.HandleIRQ(irq) })
	}
	return b, en
}

func (b *testBench) record(t *testing.T, l Line, lines *[]Line) {
	require.NoError(t, b.c.SetCallback(l, HandleLineFunc(func(l Line) {
		*lines = append(*lines, l)
	})))
}

func TestLineIRQ(t *testing.T) {
	tests := []struct {
		line Line
		irq  hal.IRQ
	}{
		{0, IRQEXTI0}, {4, IRQEXTI4}, {5, IRQEXTI9_5}, {9, IRQEXTI9_5},
		{10, IRQEXTI15_10}, {15, IRQEXTI15_10},
	}
	for _, test := range tests {
		assert.Equal(t, test.irq, test.line.IRQ(), "line %d", test.line)
		assert.Equal(t, sim.ExtiLineIRQ(uint8(test.line)), test.line.IRQ())
		first, last, ok := Lines(test.irq)
		assert.True(t, ok)
		assert.True(t, first <= test.line && test.line <= last)
	}
	_, _, ok := Lines(38)
	assert.False(t, ok)
}

func TestConfigure(t *testing.T) {
	b, en := newTestBench()
	require.NoError(t, b.c.Configure(&Config{Line: 13, Source: hal.PortB, Trigger: Falling}))
	assert.Equal(t, []hal.IRQ{IRQEXTI15_10}, en.enabled)
	assert.Equal(t, uint32(1), b.exti.Source(13))
	assert.Equal(t, uint32(1)<<13, b.exti.FTSR.Get())
	assert.Zero(t, b.exti.RTSR.Get())
	on, err := b.c.Enabled(13)
	require.NoError(t, err)
	assert.True(t, on)
	src, err := b.c.Source(13)
	require.NoError(t, err)
	assert.Equal(t, hal.PortB, src)
	trig, err := b.c.Trigger(13)
	require.NoError(t, err)
	assert.Equal(t, Falling, trig)

	require.NoError(t, b.c.SetSource(2, hal.PortH))
	assert.Equal(t, uint32(7), b.exti.Source(2))
	src, err = b.c.Source(2)
	require.NoError(t, err)
	assert.Equal(t, hal.PortH, src)
}

func TestConfigureRejects(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
		err  error
	}{
		{"nil", nil, hal.ErrNullPointer},
		{"line", &Config{Line: 16, Source: 9, Trigger: 9}, ErrLine},
		{"source", &Config{Line: 1, Source: hal.Port(6), Trigger: 9}, ErrSource},
		{"trigger", &Config{Line: 1, Source: hal.PortA, Trigger: 4}, ErrTrigger},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			b, en := newTestBench()
			assert.ErrorIs(t, b.c.Configure(test.cfg), test.err)
			assert.Empty(t, en.enabled)
			assert.Zero(t, b.exti.IMR.Get())
			assert.Zero(t, b.exti.FTSR.Get()|b.exti.RTSR.Get())
		})
	}

	b, en := newTestBench()
	en.err = hal.ErrIndex
	assert.ErrorIs(t, b.c.Configure(&Config{Line: 3, Source: hal.PortA, Trigger: Rising}), hal.ErrIndex)
	assert.Zero(t, b.exti.IMR.Get())
	assert.Zero(t, b.exti.RTSR.Get())
	assert.Zero(t, b.exti.EXTICR[0].Get())
}

func TestTriggers(t *testing.T) {
	b, _ := newTestBench()
	for _, trig := range []Trigger{Rising, BothEdges, Falling, NoEdge} {
		require.NoError(t, b.c.SetTrigger(7, trig))
		got, err := b.c.Trigger(7)
		require.NoError(t, err)
		assert.Equal(t, trig, got)
		parsed, err := ParseTrigger(trig.String())
		require.NoError(t, err)
		assert.Equal(t, trig, parsed)
	}
	assert.ErrorIs(t, b.c.SetTrigger(7, Trigger(8)), ErrTrigger)
	assert.ErrorIs(t, b.c.SetTrigger(16, Rising), ErrLine)
	_, err := ParseTrigger("level")
	assert.ErrorIs(t, err, ErrTrigger)
}

func TestEdgesDispatch(t *testing.T) {
	b, _ := newTestBench()
	var lines []Line
	b.record(t, 0, &lines)
	require.NoError(t, b.c.Configure(&Config{Line: 0, Source: hal.PortA, Trigger: Rising}))

	b.gpio[0].Drive(0, true)
	assert.Equal(t, []Line{0}, lines)
	// falling edge not selected
	b.gpio[0].Drive(0, false)
	assert.Equal(t, []Line{0}, lines)
	// no change, no edge
	b.gpio[0].Drive(0, false)
	// port B pin 0 is not routed to line 0
	b.gpio[1].Drive(0, true)
	assert.Equal(t, []Line{0}, lines)
	assert.Zero(t, b.exti.Pending())

	require.NoError(t, b.c.SetTrigger(0, BothEdges))
	b.gpio[0].Drive(0, true)
	b.gpio[0].Drive(0, false)
	assert.Equal(t, []Line{0, 0, 0}, lines)
}

func TestSharedVector(t *testing.T) {
	b, _ := newTestBench()
	var lines []Line
	for _, l := range []Line{5, 7} {
		b.record(t, l, &lines)
		require.NoError(t, b.c.Configure(&Config{Line: l, Source: hal.PortB, Trigger: Falling}))
		b.gpio[1].Drive(uint8(l), true)
	}
	b.gpio[1].Drive(7, false)
	b.gpio[1].Drive(5, false)
	assert.Equal(t, []Line{7, 5}, lines)
	assert.Zero(t, b.exti.Pending())
}

func TestMaskedLineLatches(t *testing.T) {
	b, _ := newTestBench()
	var lines []Line
	b.record(t, 2, &lines)
	require.NoError(t, b.c.Configure(&Config{Line: 2, Source: hal.PortA, Trigger: Rising}))
	require.NoError(t, b.c.DisableLine(2))
	b.gpio[0].Drive(2, true)
	assert.Empty(t, lines)
	pending, err := b.c.Pending(2)
	require.NoError(t, err)
	assert.True(t, pending)
	require.NoError(t, b.c.ClearPending(2))
	pending, err = b.c.Pending(2)
	require.NoError(t, err)
	assert.False(t, pending)
}

func TestSoftwareTrigger(t *testing.T) {
	b, _ := newTestBench()
	var lines []Line
	b.record(t, 12, &lines)
	require.NoError(t, b.c.Configure(&Config{Line: 12, Source: hal.PortA, Trigger: NoEdge}))
	require.NoError(t, b.c.SoftwareTrigger(12))
	require.NoError(t, b.c.SoftwareTrigger(12))
	assert.Equal(t, []Line{12, 12}, lines)
	assert.Zero(t, b.exti.SWIER.Get())
	assert.ErrorIs(t, b.c.SoftwareTrigger(16), ErrLine)
}

func TestHandlerlessLineIsAcknowledged(t *testing.T) {
	b, _ := newTestBench()
	require.NoError(t, b.c.Configure(&Config{Line: 1, Source: hal.PortA, Trigger: Rising}))
	b.gpio[0].Drive(1, true)
	assert.Zero(t, b.exti.Pending())
	assert.False(t, b.ints.IsPending(IRQEXTI1))
	assert.ErrorIs(t, b.c.SetCallback(1, nil), hal.ErrNullPointer)
	assert.ErrorIs(t, b.c.SetCallback(16, HandleLineFunc(func(Line) {})), ErrLine)
}
