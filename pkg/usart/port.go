package usart

import (
	"strings"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/mcal.go/pkg/hal"
	"github.com/robotalks/mcal.go/pkg/reg"
	"github.com/robotalks/mcal.go/pkg/spin"
)

// Port drives a single USART instance.
//
// Transfers are synchronous and must be sequenced by the caller. Only the
// receive handler slot is shared with the interrupt context.
type Port struct {
	Index Index
	Regs  *Registers
	// RefHz is the peripheral clock feeding the baud divisor.
	RefHz uint32
	// Waiter bounds the flag polling; nil spins forever.
	Waiter spin.Waiter
	Mode   ReceiveMode
	IRQ    hal.IRQ
	// Interrupts, when set, gets the IRQ line enabled in Interrupt mode.
	Interrupts hal.InterruptController

	lock       sync.Mutex
	handler    RxHandler
	config     Config
	configured bool
}

// Configure validates cfg and programs the instance. Nothing is written
// unless every field is valid, the reference clock can synthesize the baud
// rate and the IRQ line could be enabled.
func (p *Port) Configure(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	div, err := Synthesize(p.RefHz, cfg.BaudRate)
	if err != nil {
		return err
	}
	// RXNEIE is still clear, so an enabled line cannot fire before CR1 is set.
	if p.Mode == Interrupt && p.Interrupts != nil {
		if err := p.Interrupts.EnableInterrupt(p.IRQ); err != nil {
			return err
		}
	}
	cr1 := p.Regs.CR1
	reg.WriteBit(cr1, CR1PCE, cfg.Parity&0x01 != 0)
	reg.WriteBit(cr1, CR1PS, cfg.Parity&0x02 != 0)
	reg.WriteBit(cr1, CR1RE, cfg.Duplex&0x01 != 0)
	reg.WriteBit(cr1, CR1TE, cfg.Duplex&0x02 != 0)
	p.Regs.BRR.Set(div.BRR())
	reg.WriteBit(cr1, CR1RXNEIE, p.Mode == Interrupt)
	reg.SetBits(cr1, reg.Bit(CR1UE))

	p.lock.Lock()
	p.config, p.configured = *cfg, true
	p.lock.Unlock()
	if glog.V(3) {
		glog.Infof("%s: %d baud %s parity=%s BRR=%#x", p.Index, cfg.BaudRate, cfg.Duplex, cfg.Parity, div.BRR())
	}
	return nil
}

// Config returns the last applied configuration.
func (p *Port) Config() (Config, bool) {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.config, p.configured
}

// SendByte transmits b and waits for transmission complete.
func (p *Port) SendByte(b byte) error {
	p.Regs.DR.Set(uint32(b))
	if err := p.wait(SRTC); err != nil {
		return err
	}
	// TC is rc_w0: write zero to TC only.
	p.Regs.SR.Set(^reg.Bit(SRTC))
	return nil
}

// ReceiveByte waits for a received byte.
func (p *Port) ReceiveByte() (byte, error) {
	if err := p.wait(SRRXNE); err != nil {
		return 0, err
	}
	return byte(p.Regs.DR.Get()), nil
}

// SendBuffer transmits every byte of buf.
func (p *Port) SendBuffer(buf []byte) error {
	if buf == nil {
		return hal.ErrNullPointer
	}
	for _, b := range buf {
		if err := p.SendByte(b); err != nil {
			return err
		}
	}
	return nil
}

// ReceiveBuffer fills buf.
func (p *Port) ReceiveBuffer(buf []byte) error {
	if buf == nil {
		return hal.ErrNullPointer
	}
	for n := range buf {
		b, err := p.ReceiveByte()
		if err != nil {
			return err
		}
		buf[n] = b
	}
	return nil
}

// SendString transmits s up to its first NUL, then a NUL terminator.
func (p *Port) SendString(s string) error {
	if n := strings.IndexByte(s, 0); n >= 0 {
		s = s[:n]
	}
	for i := 0; i < len(s); i++ {
		if err := p.SendByte(s[i]); err != nil {
			return err
		}
	}
	return p.SendByte(0)
}

// ReceiveString receives into buf until a NUL is received and stored.
// It returns the count including the NUL. ErrOverflow is returned when buf
// fills up first.
func (p *Port) ReceiveString(buf []byte) (int, error) {
	if buf == nil {
		return 0, hal.ErrNullPointer
	}
	for n := range buf {
		b, err := p.ReceiveByte()
		if err != nil {
			return n, err
		}
		buf[n] = b
		if b == 0 {
			return n + 1, nil
		}
	}
	return len(buf), hal.OutOfRange(hal.ErrOverflow, "capacity", len(buf))
}

// SetHandler replaces the receive handler.
func (p *Port) SetHandler(h RxHandler) error {
	if h == nil {
		return hal.ErrNullPointer
	}
	p.lock.Lock()
	p.handler = h
	p.lock.Unlock()
	return nil
}

// HandleInterrupt is the receive interrupt entry. DR is read whenever RXNE
// is set, which acknowledges the interrupt, and the byte goes to the handler
// if one is registered.
func (p *Port) HandleInterrupt() {
	if !reg.HasBits(p.Regs.SR, reg.Bit(SRRXNE)) {
		return
	}
	b := byte(p.Regs.DR.Get())
	p.lock.Lock()
	h := p.handler
	p.lock.Unlock()
	if h != nil {
		h.HandleByte(b)
	} else {
		glog.V(4).Infof("%s: dropped %#02x", p.Index, b)
	}
}

// Write implements io.Writer.
func (p *Port) Write(data []byte) (int, error) {
	for n, b := range data {
		if err := p.SendByte(b); err != nil {
			return n, err
		}
	}
	return len(data), nil
}

// WriteByte implements io.ByteWriter.
func (p *Port) WriteByte(b byte) error {
	return p.SendByte(b)
}

// Read implements io.Reader. It blocks for the first byte and then takes
// whatever is already received.
func (p *Port) Read(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	b, err := p.ReceiveByte()
	if err != nil {
		return 0, err
	}
	buf[0] = b
	n := 1
	for n < len(buf) && reg.HasBits(p.Regs.SR, reg.Bit(SRRXNE)) {
		buf[n] = byte(p.Regs.DR.Get())
		n++
	}
	return n, nil
}

// ReadByte implements io.ByteReader.
func (p *Port) ReadByte() (byte, error) {
	return p.ReceiveByte()
}

func (p *Port) wait(bit uint) error {
	sr := p.Regs.SR
	return spin.OrForever(p.Waiter).Wait(func() bool {
		return reg.HasBits(sr, reg.Bit(bit))
	})
}
