package gpio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/mcal.go/pkg/hal"
	"github.com/robotalks/mcal.go/pkg/sim"
)

func simRegisters(g *sim.GPIO) *Registers {
	return &Registers{
		MODER:   g.MODER,
		OTYPER:  g.OTYPER,
		OSPEEDR: g.OSPEEDR,
		PUPDR:   g.PUPDR,
		IDR:     g.IDR,
		ODR:     g.ODR,
		BSRR:    g.BSRR,
		LCKR:    g.LCKR,
		AFRL:    g.AFRL,
		AFRH:    g.AFRH,
	}
}

func newTestController() (*Controller, *sim.GPIO) {
	g := sim.NewGPIO("GPIOA")
	return New().Attach(hal.PortA, simRegisters(g)), g
}

func TestConfigurePin(t *testing.T) {
	c, g := newTestController()
	var mux hal.PinMux = c
	require.NoError(t, mux.ConfigurePin(&hal.PinConfig{Port: hal.PortA, Pin: 2, Mode: hal.AlternatePushPull, Speed: hal.HighSpeed}))
	require.NoError(t, mux.SetPinFunction(hal.PortA, 2, 7))
	assert.Equal(t, uint32(2), g.Mode(2))
	assert.Equal(t, uint32(7), g.AltFunc(2))
	assert.Equal(t, uint32(2<<4), g.OSPEEDR.Get())
	assert.Equal(t, uint32(0), g.OTYPER.Get())

	require.NoError(t, mux.ConfigurePin(&hal.PinConfig{Port: hal.PortA, Pin: 9, Mode: hal.AlternateOpenDrain}))
	require.NoError(t, mux.SetPinFunction(hal.PortA, 9, 7))
	assert.Equal(t, uint32(1<<9), g.OTYPER.Get())
	assert.Equal(t, uint32(7), g.AltFunc(9))

	require.NoError(t, mux.ConfigurePin(&hal.PinConfig{Port: hal.PortA, Pin: 0, Mode: hal.InputPullDown}))
	assert.Equal(t, uint32(0), g.Mode(0))
	assert.Equal(t, uint32(2), g.PUPDR.Get()&0x3)
	require.NoError(t, mux.ConfigurePin(&hal.PinConfig{Port: hal.PortA, Pin: 0, Mode: hal.InputPullUp}))
	assert.Equal(t, uint32(1), g.PUPDR.Get()&0x3)
}

func TestConfigurePinRejects(t *testing.T) {
	tests := []struct {
		name string
		cfg  *hal.PinConfig
		err  error
	}{
		{"nil", nil, hal.ErrNullPointer},
		{"absent port", &hal.PinConfig{Port: hal.PortB}, ErrPort},
		{"port", &hal.PinConfig{Port: hal.Port(9)}, ErrPort},
		{"pin", &hal.PinConfig{Port: hal.PortA, Pin: 16}, ErrPin},
		{"mode", &hal.PinConfig{Port: hal.PortA, Mode: 7}, ErrMode},
		{"speed", &hal.PinConfig{Port: hal.PortA, Speed: 4}, ErrSpeed},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c, g := newTestController()
			assert.ErrorIs(t, c.ConfigurePin(test.cfg), test.err)
			assert.Equal(t, uint32(0), g.MODER.Get())
		})
	}
	c, _ := newTestController()
	assert.ErrorIs(t, c.SetPinFunction(hal.PortA, 1, 16), ErrAltFunc)
}

func TestOutputs(t *testing.T) {
	c, g := newTestController()
	require.NoError(t, c.WritePin(hal.PortA, 5, High))
	assert.Equal(t, uint32(1<<5), g.ODR.Get())
	require.NoError(t, c.TogglePin(hal.PortA, 5))
	assert.Equal(t, uint32(0), g.ODR.Get())
	require.NoError(t, c.WritePinAtomic(hal.PortA, 3, High))
	assert.Equal(t, uint32(1<<3), g.ODR.Get())
	require.NoError(t, c.WritePinAtomic(hal.PortA, 3, Low))
	assert.Equal(t, uint32(0), g.ODR.Get())
	require.NoError(t, c.WritePort(hal.PortA, 0xa5a5))
	assert.Equal(t, uint32(0xa5a5), g.ODR.Get())
	assert.ErrorIs(t, c.WritePin(hal.PortA, 1, Level(2)), ErrLevel)
	assert.ErrorIs(t, c.WritePinAtomic(hal.PortA, 1, Level(2)), ErrLevel)
}

func TestInputs(t *testing.T) {
	c, g := newTestController()
	g.InputMask = 0x0003
	g.Inputs = 0x0002
	level, err := c.ReadPin(hal.PortA, 1)
	require.NoError(t, err)
	assert.Equal(t, High, level)
	level, err = c.ReadPin(hal.PortA, 0)
	require.NoError(t, err)
	assert.Equal(t, Low, level)
	v, err := c.ReadPort(hal.PortA)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0002), v)
	_, err = c.ReadPort(hal.PortC)
	assert.ErrorIs(t, err, ErrPort)
}

func TestLockPin(t *testing.T) {
	c, g := newTestController()
	require.NoError(t, c.LockPin(hal.PortA, 4))
	assert.Equal(t, uint32(1<<16|1<<4), g.LCKR.Get())
}

func TestParsePin(t *testing.T) {
	port, pin, err := ParsePin("PA2")
	require.NoError(t, err)
	assert.Equal(t, hal.PortA, port)
	assert.Equal(t, uint8(2), pin)
	port, pin, err = ParsePin("ph1")
	require.NoError(t, err)
	assert.Equal(t, hal.PortH, port)
	assert.Equal(t, uint8(1), pin)
	_, _, err = ParsePin("PF0")
	assert.ErrorIs(t, err, ErrPort)
	_, _, err = ParsePin("PA16")
	assert.ErrorIs(t, err, ErrPin)
	_, _, err = ParsePin("A2")
	assert.ErrorIs(t, err, ErrPin)
}
