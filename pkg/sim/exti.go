package sim

import (
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/mcal.go/pkg/hal"
	"github.com/robotalks/mcal.go/pkg/reg"
)

// EXTI interrupt lines. Lines 5..9 and 10..15 share one vector each.
const (
	EXTI0IRQ      hal.IRQ = 6
	EXTI9to5IRQ   hal.IRQ = 23
	EXTI15to10IRQ hal.IRQ = 40
)

// ExtiLineIRQ returns the vector of an EXTI line.
func ExtiLineIRQ(line uint8) hal.IRQ {
	switch {
	case line <= 4:
		return EXTI0IRQ + hal.IRQ(line)
	case line <= 9:
		return EXTI9to5IRQ
	}
	return EXTI15to10IRQ
}

// ExtiPortCode is the SYSCFG_EXTICR source code of a port.
func ExtiPortCode(port hal.Port) uint32 {
	if port == hal.PortH {
		return 7
	}
	return uint32(port)
}

// EXTI models the external interrupt controller together with the SYSCFG
// source selection. Edges driven on attached GPIO ports latch the pending
// register when the line routes to that port and the edge is selected;
// unmasked lines raise their vector. PR and SWIER clear on writing one.
type EXTI struct {
	IMR    *reg.Word
	EMR    *reg.Word
	RTSR   *reg.Word
	FTSR   *reg.Word
	SWIER  *reg.Hooked
	PR     *reg.Hooked
	EXTICR [4]*reg.Word

	ints    Raiser
	lock    sync.Mutex
	pending uint32
	soft    uint32
}

// NewEXTI creates the model raising on ints.
func NewEXTI(ints Raiser) *EXTI {
	e := &EXTI{
		IMR:  reg.NewWord(0),
		EMR:  reg.NewWord(0),
		RTSR: reg.NewWord(0),
		FTSR: reg.NewWord(0),
		ints: ints,
	}
	for i := range e.EXTICR {
		e.EXTICR[i] = reg.NewWord(0)
	}
	e.PR = &reg.Hooked{
		OnRead: func(stored uint32) (uint32, uint32) {
			e.lock.Lock()
			defer e.lock.Unlock()
			return e.pending, stored
		},
		OnWrite: func(_, v uint32) uint32 {
			e.lock.Lock()
			e.pending &^= v & 0xffff
			e.soft &^= v & 0xffff
			e.lock.Unlock()
			return 0
		},
	}
	e.SWIER = &reg.Hooked{
		OnRead: func(stored uint32) (uint32, uint32) {
			e.lock.Lock()
			defer e.lock.Unlock()
			return e.soft, stored
		},
		OnWrite: func(_, v uint32) uint32 {
			e.lock.Lock()
			raised := v & 0xffff &^ e.soft
			e.soft |= raised
			e.lock.Unlock()
			for line := uint8(0); line < 16; line++ {
				if raised&(1<<line) != 0 {
					e.Latch(line)
				}
			}
			return 0
		},
	}
	return e
}

// AttachPort routes the edges driven on g as port.
func (e *EXTI) AttachPort(port hal.Port, g *GPIO) {
	g.Watch(func(pin uint8, high bool) {
		e.edge(port, pin, high)
	})
}

// Source returns the SYSCFG code selected for a line.
func (e *EXTI) Source(line uint8) uint32 {
	return (e.EXTICR[line/4].Get() >> (uint(line%4) * 4)) & 0xf
}

// Pending returns the latched lines.
func (e *EXTI) Pending() uint32 {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.pending
}

func (e *EXTI) edge(port hal.Port, pin uint8, high bool) {
	if e.Source(pin) != ExtiPortCode(port) {
		return
	}
	bit := uint32(1) << pin
	if high && e.RTSR.Get()&bit == 0 || !high && e.FTSR.Get()&bit == 0 {
		return
	}
	glog.V(4).Infof("EXTI%d: edge to %v on %s", pin, high, port)
	e.Latch(pin)
}

// Latch sets the pending bit of line and raises its vector when unmasked.
func (e *EXTI) Latch(line uint8) {
	bit := uint32(1) << line
	e.lock.Lock()
	e.pending |= bit
	e.lock.Unlock()
	if e.IMR.Get()&bit != 0 && e.ints != nil {
		e.ints.Raise(ExtiLineIRQ(line))
	}
}
