// Package serialport connects a simulated USART to a host serial port, so a
// real terminal or device can talk to the board.
package serialport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/tarm/serial"

	"github.com/robotalks/mcal.go/pkg/board"
	fx "github.com/robotalks/mcal.go/pkg/framework"
	"github.com/robotalks/mcal.go/pkg/usart"
)

// ErrNotConfigured indicates the USART has no framing to copy yet.
var ErrNotConfigured = errors.New("usart not configured")

// readTimeout bounds each host read so Stop is noticed.
const readTimeout = 100 * time.Millisecond

// OpenFunc opens the host port.
type OpenFunc func(*serial.Config) (io.ReadWriteCloser, error)

// OpenPort opens a real serial port.
func OpenPort(c *serial.Config) (io.ReadWriteCloser, error) {
	return serial.OpenPort(c)
}

// SerialConfig maps USART framing onto host port settings.
func SerialConfig(device string, cfg usart.Config) *serial.Config {
	c := &serial.Config{
		Name:        device,
		Baud:        int(cfg.BaudRate),
		ReadTimeout: readTimeout,
		Size:        8,
		StopBits:    serial.Stop1,
		Parity:      serial.ParityNone,
	}
	switch cfg.Parity {
	case usart.EvenParity:
		c.Parity = serial.ParityEven
	case usart.OddParity:
		c.Parity = serial.ParityOdd
	}
	return c
}

// Passthrough copies bytes between a USART and a host port.
type Passthrough struct {
	Board  *board.Board
	Index  usart.Index
	Device string
	Open   OpenFunc

	lock   sync.Mutex
	port   io.ReadWriteCloser
	cancel func()
	rx     []byte
	tx     []byte
	loop   fx.LoopControl
}

// New creates a Passthrough for device.
func New(b *board.Board, i usart.Index, device string) *Passthrough {
	return &Passthrough{Board: b, Index: i, Device: device, Open: OpenPort}
}

// Start opens the host port with the framing of the configured USART.
func (p *Passthrough) Start() error {
	port, err := p.Board.USART.Port(p.Index)
	if err != nil {
		return err
	}
	cfg, ok := port.Config()
	if !ok {
		return fmt.Errorf("%s: %w", p.Index, ErrNotConfigured)
	}
	dev, err := p.Board.Device(p.Index)
	if err != nil {
		return err
	}
	open := p.Open
	if open == nil {
		open = OpenPort
	}
	hostPort, err := open(SerialConfig(p.Device, cfg))
	if err != nil {
		return err
	}
	cancel := dev.Subscribe(func(b byte) {
		p.lock.Lock()
		p.tx = append(p.tx, b)
		p.lock.Unlock()
	})
	p.lock.Lock()
	p.port, p.cancel = hostPort, cancel
	p.lock.Unlock()
	glog.Infof("%s bridged to %s at %d baud, parity %s", p.Index, p.Device, cfg.BaudRate, cfg.Parity)
	return nil
}

// Stop closes the host port.
func (p *Passthrough) Stop() error {
	p.lock.Lock()
	port, cancel := p.port, p.cancel
	p.port, p.cancel = nil, nil
	p.lock.Unlock()
	if cancel != nil {
		cancel()
	}
	if port != nil {
		return port.Close()
	}
	return nil
}

// Control implements fx.Controller.
func (p *Passthrough) Control(fx.ControlContext) error {
	p.lock.Lock()
	rx, tx, port := p.rx, p.tx, p.port
	p.rx, p.tx = nil, nil
	p.lock.Unlock()

	if len(rx) > 0 {
		if dev, err := p.Board.Device(p.Index); err == nil {
			if n := dev.Inject(rx...); n < len(rx) {
				glog.Warningf("%s: receiver disabled, dropped %d bytes", p.Index, len(rx)-n)
			}
		}
	}
	if len(tx) > 0 && port != nil {
		if _, err := port.Write(tx); err != nil {
			return fmt.Errorf("%s write: %w", p.Device, err)
		}
	}
	return nil
}

// AddToLoop implements fx.LoopAdder.
func (p *Passthrough) AddToLoop(l *fx.Loop) {
	p.lock.Lock()
	p.loop = l
	p.lock.Unlock()
	l.AddController(fx.PrLvBridge, p)
}

// Run implements fx.Runnable. The USART must be configured before the loop
// starts.
func (p *Passthrough) Run(ctx context.Context) error {
	if err := p.Start(); err != nil {
		return err
	}
	p.lock.Lock()
	port := p.port
	p.lock.Unlock()
	err := fx.RunWithContextCloser(ctx, port, func() error {
		return p.readLoop(ctx, port)
	})
	p.Stop()
	return err
}

func (p *Passthrough) readLoop(ctx context.Context, port io.Reader) error {
	buf := make([]byte, 256)
	for ctx.Err() == nil {
		n, err := port.Read(buf)
		if n > 0 {
			p.lock.Lock()
			p.rx = append(p.rx, buf[:n]...)
			loop := p.loop
			p.lock.Unlock()
			if loop != nil {
				loop.TriggerNext()
			}
		}
		if err == io.EOF {
			// a read timeout surfaces as EOF with no data
			continue
		}
		if err != nil {
			return err
		}
	}
	return ctx.Err()
}
