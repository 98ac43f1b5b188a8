package sim

import (
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/mcal.go/pkg/hal"
	"github.com/robotalks/mcal.go/pkg/reg"
)

// Core exception numbers. Negative numbers are core exceptions, always
// enabled.
const (
	SysTickIRQ hal.IRQ = -1
	PendSVIRQ  hal.IRQ = -2
)

// Interrupt controller geometry.
const (
	IRQWords    = 8
	PriorityReg = 60
)

// Raiser raises an interrupt line.
type Raiser interface {
	Raise(hal.IRQ)
}

// Interrupts models the NVIC: set/clear-enable and set/clear-pending banks,
// byte-wide priorities packed four per register, and a dispatcher that runs
// attached handlers to completion, one at a time, lowest priority value
// first.
type Interrupts struct {
	ISER [IRQWords]*reg.Hooked
	ICER [IRQWords]*reg.Hooked
	ISPR [IRQWords]*reg.Hooked
	ICPR [IRQWords]*reg.Hooked
	IPR  [PriorityReg]*reg.Word

	lock     sync.Mutex
	enabled  [IRQWords]uint32
	pending  [IRQWords]uint32
	excPend  map[hal.IRQ]bool
	handlers map[hal.IRQ]func()
	active   bool
}

// NewInterrupts creates the controller.
func NewInterrupts() *Interrupts {
	c := &Interrupts{
		excPend:  make(map[hal.IRQ]bool),
		handlers: make(map[hal.IRQ]func()),
	}
	for i := 0; i < IRQWords; i++ {
		c.ISER[i] = c.bank(&c.enabled[i], true)
		c.ICER[i] = c.bank(&c.enabled[i], false)
		c.ISPR[i] = c.bank(&c.pending[i], true)
		c.ICPR[i] = c.bank(&c.pending[i], false)
	}
	for i := range c.IPR {
		c.IPR[i] = reg.NewWord(0)
	}
	return c
}

// bank creates a write-1-to-set or write-1-to-clear register over word.
func (c *Interrupts) bank(word *uint32, set bool) *reg.Hooked {
	return &reg.Hooked{
		OnRead: func(stored uint32) (uint32, uint32) {
			c.lock.Lock()
			defer c.lock.Unlock()
			return *word, stored
		},
		OnWrite: func(_, v uint32) uint32 {
			c.lock.Lock()
			if set {
				*word |= v
			} else {
				*word &^= v
			}
			c.lock.Unlock()
			if set {
				c.dispatch()
			}
			return 0
		},
	}
}

// Attach installs the handler of a line.
func (c *Interrupts) Attach(irq hal.IRQ, handler func()) {
	c.lock.Lock()
	c.handlers[irq] = handler
	c.lock.Unlock()
}

// Raise pends a line and dispatches if it is enabled.
func (c *Interrupts) Raise(irq hal.IRQ) {
	c.lock.Lock()
	if irq < 0 {
		c.excPend[irq] = true
	} else if int(irq) < IRQWords*32 {
		c.pending[irq/32] |= 1 << (uint(irq) % 32)
	}
	c.lock.Unlock()
	c.dispatch()
}

// Unpend clears a pending line without running its handler.
func (c *Interrupts) Unpend(irq hal.IRQ) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if irq < 0 {
		delete(c.excPend, irq)
	} else if int(irq) < IRQWords*32 {
		c.pending[irq/32] &^= 1 << (uint(irq) % 32)
	}
}

// Enabled reports whether a line is enabled.
func (c *Interrupts) Enabled(irq hal.IRQ) bool {
	if irq < 0 {
		return true
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.enabled[irq/32]&(1<<(uint(irq)%32)) != 0
}

// IsPending reports whether a line is pending.
func (c *Interrupts) IsPending(irq hal.IRQ) bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	if irq < 0 {
		return c.excPend[irq]
	}
	return c.pending[irq/32]&(1<<(uint(irq)%32)) != 0
}

func (c *Interrupts) priorityLocked(irq hal.IRQ) uint32 {
	if irq < 0 {
		return 0
	}
	return (c.IPR[irq/4].Get() >> (uint(irq%4) * 8)) & 0xff
}

// nextLocked picks the pending, enabled, attached line to run next.
func (c *Interrupts) nextLocked() (hal.IRQ, func(), bool) {
	for irq, pend := range c.excPend {
		if h := c.handlers[irq]; pend && h != nil {
			delete(c.excPend, irq)
			return irq, h, true
		}
	}
	var (
		best    hal.IRQ = -1
		bestPri uint32
	)
	for w := 0; w < IRQWords; w++ {
		ready := c.pending[w] & c.enabled[w]
		for b := uint(0); ready != 0 && b < 32; b++ {
			if ready&(1<<b) == 0 {
				continue
			}
			irq := hal.IRQ(w*32 + int(b))
			if c.handlers[irq] == nil {
				continue
			}
			if pri := c.priorityLocked(irq); best < 0 || pri < bestPri {
				best, bestPri = irq, pri
			}
		}
	}
	if best < 0 {
		return 0, nil, false
	}
	c.pending[best/32] &^= 1 << (uint(best) % 32)
	return best, c.handlers[best], true
}

// dispatch runs ready handlers. A Raise from inside a handler, or from
// another goroutine while dispatching, is picked up by the running loop.
func (c *Interrupts) dispatch() {
	c.lock.Lock()
	if c.active {
		c.lock.Unlock()
		return
	}
	c.active = true
	for {
		irq, h, ok := c.nextLocked()
		if !ok {
			break
		}
		c.lock.Unlock()
		glog.V(5).Infof("IRQ %d", irq)
		h()
		c.lock.Lock()
	}
	c.active = false
	c.lock.Unlock()
}
