package usart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/mcal.go/pkg/board"
	"github.com/robotalks/mcal.go/pkg/cli/sh"
	"github.com/robotalks/mcal.go/pkg/hal"
	"github.com/robotalks/mcal.go/pkg/spin"
	"github.com/robotalks/mcal.go/pkg/usart"
)

func newShell(t *testing.T, mode usart.ReceiveMode) *sh.Shell {
	b, err := board.NewByName(board.DefaultBoard, board.Options{Mode: mode, Waiter: spin.Bounded(100)})
	require.NoError(t, err)
	require.NoError(t, b.Setup())
	return sh.New(b)
}

func TestConfig(t *testing.T) {
	s := newShell(t, usart.Interrupt)
	_, err := Config(s, []string{"usart6", "115200", "full", "odd"})
	require.NoError(t, err)
	port, err := s.Board.USART.Port(usart.USART6)
	require.NoError(t, err)
	cfg, ok := port.Config()
	require.True(t, ok)
	assert.Equal(t, usart.Config{BaudRate: 115200, Duplex: usart.FullDuplex, Parity: usart.OddParity}, cfg)

	_, err = Config(s, []string{"usart2", "100"})
	assert.ErrorIs(t, err, hal.ErrBaudRate)
	_, err = Config(s, []string{"usart2", "9600", "half"})
	assert.ErrorIs(t, err, hal.ErrDeviceMode)
	_, err = Config(s, []string{"usart2"})
	assert.Error(t, err)
}

func TestSendInjectRecv(t *testing.T) {
	s := newShell(t, usart.Interrupt)
	_, err := Config(s, []string{"usart2", "9600"})
	require.NoError(t, err)
	dev, err := s.Board.Device(usart.USART2)
	require.NoError(t, err)
	var sent []byte
	defer dev.Subscribe(func(b byte) { sent = append(sent, b) })()

	_, err = Send(s, []string{"usart2", "Mamoun", "was", "here!"})
	require.NoError(t, err)
	assert.Equal(t, "Mamoun was here!\x00", string(sent))

	_, err = Inject(s, []string{"usart2", "hello", "there"})
	require.NoError(t, err)
	res, err := Recv(s, []string{"usart2"})
	require.NoError(t, err)
	assert.Equal(t, &Received{Instance: "USART2", Data: "hello there"}, res)
	assert.Equal(t, `USART2: "hello there"`, res.(*Received).String())
}

func TestRecvPolling(t *testing.T) {
	s := newShell(t, usart.Polling)
	_, err := Config(s, []string{"usart1", "57600"})
	require.NoError(t, err)
	_, err = Inject(s, []string{"usart1", "abc"})
	require.NoError(t, err)
	res, err := Recv(s, []string{"usart1", "2"})
	require.NoError(t, err)
	assert.Equal(t, "ab", res.(*Received).Data)
	res, err = Recv(s, []string{"usart1"})
	require.NoError(t, err)
	assert.Equal(t, "c", res.(*Received).Data)

	_, err = Recv(s, []string{"usart1"})
	assert.ErrorIs(t, err, spin.ErrExhausted)
}
