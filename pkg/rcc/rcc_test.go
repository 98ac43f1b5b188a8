package rcc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/mcal.go/pkg/hal"
	"github.com/robotalks/mcal.go/pkg/sim"
	"github.com/robotalks/mcal.go/pkg/spin"
)

func newTestController() (*Controller, *sim.RCC) {
	m := sim.NewRCC()
	return New(&Registers{
		CR:      m.CR,
		PLLCFGR: m.PLLCFGR,
		CFGR:    m.CFGR,
		AHB1ENR: m.AHB1ENR,
		AHB2ENR: m.AHB2ENR,
		APB1ENR: m.APB1ENR,
		APB2ENR: m.APB2ENR,
	}), m
}

func TestClockSources(t *testing.T) {
	c, m := newTestController()
	require.NoError(t, c.EnableClockSource(HSE))
	assert.NotZero(t, m.CR.Get()&(1<<17))
	require.NoError(t, c.DisableClockSource(HSE))
	assert.Zero(t, m.CR.Get()&(1<<16))
	assert.ErrorIs(t, c.EnableClockSource(Source(3)), ErrClockSource)
	assert.ErrorIs(t, c.DisableClockSource(Source(9)), ErrClockSource)
}

func TestClockSourceTimeout(t *testing.T) {
	c, m := newTestController()
	m.Stuck = 1 << CRPLLON
	c.Waiter = spin.Bounded(10)
	assert.ErrorIs(t, c.EnableClockSource(PLL), ErrTimeout)
}

func TestSystemClock(t *testing.T) {
	c, _ := newTestController()
	assert.Equal(t, HSI, c.SystemClock())
	require.NoError(t, c.SelectSystemClock(PLL))
	assert.Equal(t, PLL, c.SystemClock())
	require.NoError(t, c.SelectSystemClock(HSE))
	assert.Equal(t, HSE, c.SystemClock())
	assert.ErrorIs(t, c.SelectSystemClock(Source(3)), ErrClockSource)
}

func TestPeripheralClocks(t *testing.T) {
	c, m := newTestController()
	var gate hal.ClockGate = c
	require.NoError(t, gate.EnablePeripheralClock(hal.APB1, APB1USART2))
	require.NoError(t, gate.EnablePeripheralClock(hal.AHB1, AHB1GPIOA))
	assert.True(t, sim.Enabled(m.APB1ENR, APB1USART2))
	assert.True(t, sim.Enabled(m.AHB1ENR, AHB1GPIOA))
	on, err := c.PeripheralClockEnabled(hal.APB1, APB1USART2)
	require.NoError(t, err)
	assert.True(t, on)

	require.NoError(t, gate.DisablePeripheralClock(hal.APB1, APB1USART2))
	assert.False(t, sim.Enabled(m.APB1ENR, APB1USART2))
	assert.ErrorIs(t, gate.EnablePeripheralClock(hal.Bus(4), 0), ErrBus)
	assert.ErrorIs(t, gate.DisablePeripheralClock(hal.Bus(4), 0), ErrBus)
}

func TestConfigurePLL(t *testing.T) {
	tests := []struct {
		name string
		cfg  *PLLConfig
		err  error
	}{
		{"nil", nil, hal.ErrNullPointer},
		{"source", &PLLConfig{Source: PLL, M: 16, N: 336, P: 1, Q: 7}, ErrClockSource},
		{"N low", &PLLConfig{M: 16, N: 1, P: 1, Q: 7}, ErrPLLFactor},
		{"N 433", &PLLConfig{M: 16, N: 433, P: 1, Q: 7}, ErrPLLFactor},
		{"N high", &PLLConfig{M: 16, N: 511, P: 1, Q: 7}, ErrPLLFactor},
		{"M", &PLLConfig{M: 64, N: 336, P: 1, Q: 7}, ErrPLLFactor},
		{"P", &PLLConfig{M: 16, N: 336, P: 4, Q: 7}, ErrPLLFactor},
		{"Q", &PLLConfig{M: 16, N: 336, P: 1, Q: 1}, ErrPLLFactor},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c, m := newTestController()
			before := m.PLLCFGR.Get()
			assert.ErrorIs(t, c.ConfigurePLL(test.cfg), test.err)
			assert.Equal(t, before, m.PLLCFGR.Get())
		})
	}

	c, _ := newTestController()
	cfg := &PLLConfig{Source: HSI, M: 16, N: 336, P: 1, Q: 7}
	require.NoError(t, c.ConfigurePLL(cfg))
	assert.Equal(t, *cfg, c.PLL())
	assert.Equal(t, uint32(84000000), cfg.OutputHz(16000000))
}

func TestParseSource(t *testing.T) {
	s, err := ParseSource("pll")
	require.NoError(t, err)
	assert.Equal(t, PLL, s)
	_, err = ParseSource("lse")
	assert.ErrorIs(t, err, ErrClockSource)
}
