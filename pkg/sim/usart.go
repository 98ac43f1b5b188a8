package sim

import (
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/mcal.go/pkg/hal"
	"github.com/robotalks/mcal.go/pkg/reg"
)

// USART register bits.
const (
	srRXNE uint32 = 1 << 5
	srTC   uint32 = 1 << 6
	srTXE  uint32 = 1 << 7

	cr1RE     uint32 = 1 << 2
	cr1TE     uint32 = 1 << 3
	cr1RXNEIE uint32 = 1 << 5
	cr1UE     uint32 = 1 << 13
)

// TxSink receives transmitted bytes.
type TxSink func(b byte)

// USART models a serial instance.
//
// Writing DR with the transmitter enabled hands the byte to the sinks and
// sets TC. Received bytes are queued by Inject; RXNE stays set while the
// queue is not empty and each DR read pops one byte. The receive interrupt
// is level triggered: it is raised again after a read while data remains.
type USART struct {
	Name string
	IRQ  hal.IRQ

	SR   *reg.Hooked
	DR   *reg.Hooked
	BRR  *reg.Word
	CR1  *reg.Hooked
	CR2  *reg.Word
	CR3  *reg.Word
	GTPR *reg.Word

	Interrupts Raiser
	// Loopback feeds transmitted bytes back to the receiver.
	Loopback bool

	lock   sync.Mutex
	tc     bool
	rx     []byte
	last   byte
	sinks  map[int]TxSink
	nextID int
}

// NewUSART creates the model.
func NewUSART(name string, irq hal.IRQ, interrupts Raiser) *USART {
	u := &USART{
		Name:       name,
		IRQ:        irq,
		Interrupts: interrupts,
		BRR:        reg.NewWord(0),
		CR2:        reg.NewWord(0),
		CR3:        reg.NewWord(0),
		GTPR:       reg.NewWord(0),
		sinks:      make(map[int]TxSink),
	}
	u.SR = &reg.Hooked{
		OnRead: func(stored uint32) (uint32, uint32) {
			u.lock.Lock()
			defer u.lock.Unlock()
			return u.statusLocked(), stored
		},
		OnWrite: func(_, v uint32) uint32 {
			u.lock.Lock()
			if v&srTC == 0 {
				u.tc = false
			}
			u.lock.Unlock()
			return 0
		},
	}
	u.DR = &reg.Hooked{
		OnRead: func(stored uint32) (uint32, uint32) {
			return uint32(u.pop()), stored
		},
		OnWrite: func(_, v uint32) uint32 {
			u.transmit(byte(v))
			return v & 0x1ff
		},
	}
	u.CR1 = &reg.Hooked{
		OnWrite: func(prev, v uint32) uint32 {
			u.CR1.Poke(v)
			if v&cr1RXNEIE != 0 && prev&cr1RXNEIE == 0 {
				u.raiseIfReady()
			}
			return v
		},
	}
	return u
}

func (u *USART) statusLocked() uint32 {
	sr := srTXE
	if u.tc {
		sr |= srTC
	}
	if len(u.rx) > 0 {
		sr |= srRXNE
	}
	return sr
}

func (u *USART) enabled(bits uint32) bool {
	return u.CR1.Peek()&(cr1UE|bits) == cr1UE|bits
}

// Subscribe adds a transmit sink; the returned func removes it.
func (u *USART) Subscribe(sink TxSink) (cancel func()) {
	u.lock.Lock()
	id := u.nextID
	u.nextID++
	u.sinks[id] = sink
	u.lock.Unlock()
	return func() {
		u.lock.Lock()
		delete(u.sinks, id)
		u.lock.Unlock()
	}
}

func (u *USART) transmit(b byte) {
	if !u.enabled(cr1TE) {
		glog.V(4).Infof("%s: TX disabled, dropped %#02x", u.Name, b)
		return
	}
	u.lock.Lock()
	u.tc = true
	sinks := make([]TxSink, 0, len(u.sinks))
	for _, s := range u.sinks {
		sinks = append(sinks, s)
	}
	u.lock.Unlock()
	for _, s := range sinks {
		s(b)
	}
	if u.Loopback {
		u.Inject(b)
	}
}

// Inject queues received bytes. Bytes are dropped unless the peripheral and
// its receiver are enabled. It returns the number of bytes accepted.
func (u *USART) Inject(data ...byte) int {
	if len(data) == 0 || !u.enabled(cr1RE) {
		return 0
	}
	u.lock.Lock()
	u.rx = append(u.rx, data...)
	u.lock.Unlock()
	u.raiseIfReady()
	return len(data)
}

// Buffered returns the number of received bytes not read yet.
func (u *USART) Buffered() int {
	u.lock.Lock()
	defer u.lock.Unlock()
	return len(u.rx)
}

func (u *USART) pop() byte {
	u.lock.Lock()
	if len(u.rx) == 0 {
		b := u.last
		u.lock.Unlock()
		return b
	}
	u.last = u.rx[0]
	u.rx = u.rx[1:]
	b, more := u.last, len(u.rx) > 0
	u.lock.Unlock()
	if more {
		u.raiseIfReady()
	}
	return b
}

func (u *USART) raiseIfReady() {
	if u.Interrupts == nil || u.CR1.Peek()&cr1RXNEIE == 0 || u.Buffered() == 0 {
		return
	}
	u.Interrupts.Raise(u.IRQ)
}

// BaudDivisor returns the programmed BRR value.
func (u *USART) BaudDivisor() uint32 {
	return u.BRR.Get()
}

// Control returns CR1.
func (u *USART) Control() uint32 {
	return u.CR1.Peek()
}
