package serialport

import (
	"bytes"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tarm/serial"

	"github.com/robotalks/mcal.go/pkg/board"
	"github.com/robotalks/mcal.go/pkg/spin"
	"github.com/robotalks/mcal.go/pkg/usart"
)

type fakePort struct {
	lock    sync.Mutex
	written bytes.Buffer
	closed  bool
}

func (p *fakePort) Read([]byte) (int, error) { return 0, io.EOF }

func (p *fakePort) Write(b []byte) (int, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.written.Write(b)
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func newBoard(t *testing.T) *board.Board {
	b, err := board.NewByName(board.DefaultBoard, board.Options{Mode: usart.Polling, Waiter: spin.Bounded(1000)})
	require.NoError(t, err)
	require.NoError(t, b.Setup())
	return b
}

func TestSerialConfig(t *testing.T) {
	c := SerialConfig("/dev/ttyUSB0", usart.Config{BaudRate: 115200, Duplex: usart.FullDuplex, Parity: usart.OddParity})
	assert.Equal(t, "/dev/ttyUSB0", c.Name)
	assert.Equal(t, 115200, c.Baud)
	assert.Equal(t, serial.ParityOdd, c.Parity)
	assert.Equal(t, serial.Stop1, c.StopBits)
}

func TestStartRequiresConfiguredUSART(t *testing.T) {
	p := New(newBoard(t), usart.USART2, "/dev/null")
	p.Open = func(*serial.Config) (io.ReadWriteCloser, error) { return &fakePort{}, nil }
	assert.ErrorIs(t, p.Start(), ErrNotConfigured)
}

func TestPassthrough(t *testing.T) {
	b := newBoard(t)
	require.NoError(t, b.USART.Configure(usart.USART2, &usart.Config{BaudRate: 57600, Duplex: usart.FullDuplex, Parity: usart.EvenParity}))

	host := &fakePort{}
	var opened *serial.Config
	p := New(b, usart.USART2, "/dev/ttyS9")
	p.Open = func(c *serial.Config) (io.ReadWriteCloser, error) {
		opened = c
		return host, nil
	}
	require.NoError(t, p.Start())
	require.NotNil(t, opened)
	assert.Equal(t, 57600, opened.Baud)
	assert.Equal(t, serial.ParityEven, opened.Parity)

	require.NoError(t, b.USART.SendBuffer(usart.USART2, []byte("ok")))
	p.lock.Lock()
	p.rx = append(p.rx, 'z')
	p.lock.Unlock()
	require.NoError(t, p.Control(nil))
	assert.Equal(t, "ok", host.written.String())

	c, err := b.USART.ReceiveByte(usart.USART2)
	require.NoError(t, err)
	assert.Equal(t, byte('z'), c)

	require.NoError(t, p.Stop())
	assert.True(t, host.closed)
}

func TestConfigParse(t *testing.T) {
	idx, dev, err := (&Config{Target: "usart6=/dev/ttyACM0"}).Parse()
	require.NoError(t, err)
	assert.Equal(t, usart.USART6, idx)
	assert.Equal(t, "/dev/ttyACM0", dev)

	idx, dev, err = (&Config{Target: "/dev/ttyUSB1"}).Parse()
	require.NoError(t, err)
	assert.Equal(t, usart.USART2, idx)
	assert.Equal(t, "/dev/ttyUSB1", dev)

	_, _, err = (&Config{Target: "usart3=/dev/x"}).Parse()
	assert.Error(t, err)
}
