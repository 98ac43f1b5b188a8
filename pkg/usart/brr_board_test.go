package usart_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/mcal.go/pkg/board"
	"github.com/robotalks/mcal.go/pkg/hal"
	"github.com/robotalks/mcal.go/pkg/usart"
)

func boardClocks(t *testing.T) map[uint32]string {
	clocks := make(map[uint32]string)
	for _, desc := range board.All() {
		for _, u := range desc.USARTs {
			bus, err := board.ParseBus(u.Bus)
			require.NoError(t, err)
			hz, err := desc.BusHz(bus)
			require.NoError(t, err)
			clocks[hz] = desc.Name + "/" + u.Name
		}
	}
	return clocks
}

func TestDivisorToleranceOnBoardClocks(t *testing.T) {
	clocks := boardClocks(t)
	assert.Contains(t, clocks, uint32(16000000))
	assert.Contains(t, clocks, uint32(42000000))
	assert.Contains(t, clocks, uint32(84000000))
	for refHz, name := range clocks {
		check := func(baud uint32) {
			raw := usart.ComputeDivisor(refHz, baud)
			d, err := usart.Synthesize(refHz, baud)
			if err != nil {
				assert.ErrorIs(t, err, hal.ErrBaudRate)
				assert.True(t, !raw.Valid() || math.Abs(raw.ErrorPercent(refHz, baud)) > usart.MaxErrorPercent,
					"%s: %d baud rejected at %d Hz", name, baud, refHz)
				return
			}
			assert.True(t, d.Valid(), "%s: %d baud", name, baud)
			assert.Equal(t, d, usart.DecodeBRR(d.BRR()), "%s: %d baud", name, baud)
			assert.LessOrEqual(t, math.Abs(d.ErrorPercent(refHz, baud)), float64(usart.MaxErrorPercent),
				"%s: %d baud at %d Hz", name, baud, refHz)
		}
		for baud := usart.MinBaudRate; baud < usart.MaxBaudRate; baud = baud*21/20 + 1 {
			check(baud)
		}
		for baud := usart.MinBaudRate; baud <= 1400; baud++ {
			check(baud)
		}
		check(usart.MaxBaudRate)

		for _, baud := range []uint32{2400, 9600, 19200, 57600, 115200} {
			_, err := usart.Synthesize(refHz, baud)
			assert.NoError(t, err, "%s: %d baud at %d Hz", name, baud, refHz)
		}
	}
}

func TestConfigureRejectsUnreachableBaudOnBoards(t *testing.T) {
	for _, name := range board.All().Names() {
		b, err := board.NewByName(name, board.Options{})
		require.NoError(t, err)
		require.NoError(t, b.Setup())
		for _, p := range b.USART.Ports() {
			dev, err := b.Device(p.Index)
			require.NoError(t, err)
			before := dev.BaudDivisor()
			cfg := &usart.Config{BaudRate: usart.MinBaudRate, Duplex: usart.FullDuplex}
			err = b.USART.Configure(p.Index, cfg)
			if p.RefHz > 16*usart.MinBaudRate*(usart.MaxMantissa+1) {
				assert.ErrorIs(t, err, hal.ErrBaudRate, "%s %s", name, p.Index)
				assert.Equal(t, before, dev.BaudDivisor(), "%s %s", name, p.Index)
				_, configured := p.Config()
				assert.False(t, configured, "%s %s", name, p.Index)
			} else {
				assert.NoError(t, err, "%s %s", name, p.Index)
			}
		}
	}
}
