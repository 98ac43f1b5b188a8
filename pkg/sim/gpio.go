package sim

import (
	"sync"

	"github.com/robotalks/mcal.go/pkg/reg"
)

// EdgeFunc observes a level change of a driven input pin.
type EdgeFunc func(pin uint8, high bool)

// GPIO models a port. BSRR writes set and reset ODR bits, IDR reads back
// ODR combined with externally driven Inputs.
type GPIO struct {
	Name    string
	MODER   *reg.Word
	OTYPER  *reg.Word
	OSPEEDR *reg.Word
	PUPDR   *reg.Word
	IDR     *reg.Hooked
	ODR     *reg.Word
	BSRR    *reg.Hooked
	LCKR    *reg.Word
	AFRL    *reg.Word
	AFRH    *reg.Word

	// Inputs are levels driven from outside, masked by InputMask.
	Inputs    uint16
	InputMask uint16

	lock     sync.Mutex
	watchers []EdgeFunc
}

// NewGPIO creates a port.
func NewGPIO(name string) *GPIO {
	g := &GPIO{
		Name:    name,
		MODER:   reg.NewWord(0),
		OTYPER:  reg.NewWord(0),
		OSPEEDR: reg.NewWord(0),
		PUPDR:   reg.NewWord(0),
		ODR:     reg.NewWord(0),
		LCKR:    reg.NewWord(0),
		AFRL:    reg.NewWord(0),
		AFRH:    reg.NewWord(0),
	}
	g.IDR = &reg.Hooked{
		OnRead: func(stored uint32) (uint32, uint32) {
			odr := uint16(g.ODR.Get())
			g.lock.Lock()
			defer g.lock.Unlock()
			return uint32(odr&^g.InputMask | g.Inputs&g.InputMask), stored
		},
	}
	g.BSRR = &reg.Hooked{
		OnWrite: func(_, v uint32) uint32 {
			odr := g.ODR.Get()
			odr &^= v >> 16
			odr |= v & 0xffff
			g.ODR.Set(odr & 0xffff)
			return 0
		},
	}
	return g
}

// Mode returns the 2-bit MODER value of a pin.
func (g *GPIO) Mode(pin uint8) uint32 {
	return (g.MODER.Get() >> (uint(pin) * 2)) & 0x3
}

// AltFunc returns the alternate function of a pin.
func (g *GPIO) AltFunc(pin uint8) uint32 {
	if pin < 8 {
		return (g.AFRL.Get() >> (uint(pin) * 4)) & 0xf
	}
	return (g.AFRH.Get() >> (uint(pin-8) * 4)) & 0xf
}

// Watch adds an observer of Drive level changes.
func (g *GPIO) Watch(fn EdgeFunc) {
	g.lock.Lock()
	g.watchers = append(g.watchers, fn)
	g.lock.Unlock()
}

// Drive forces an external level on pin and notifies watchers when the
// level seen on IDR changes.
func (g *GPIO) Drive(pin uint8, high bool) {
	bit := uint16(1) << (pin & 0xf)
	before := uint16(g.IDR.Get())&bit != 0
	g.lock.Lock()
	g.InputMask |= bit
	if high {
		g.Inputs |= bit
	} else {
		g.Inputs &^= bit
	}
	watchers := g.watchers
	g.lock.Unlock()
	if before == high {
		return
	}
	for _, fn := range watchers {
		fn(pin&0xf, high)
	}
}

// Release stops driving pin, IDR follows ODR again.
func (g *GPIO) Release(pin uint8) {
	g.lock.Lock()
	g.InputMask &^= uint16(1) << (pin & 0xf)
	g.lock.Unlock()
}
