package sim

import (
	"sync"

	"github.com/robotalks/mcal.go/pkg/reg"
)

// SysTick control bits.
const (
	stEnable    uint32 = 1 << 0
	stTickInt   uint32 = 1 << 1
	stClkSource uint32 = 1 << 2
	stCountFlag uint32 = 1 << 16

	stCounterMask uint32 = 0x00ffffff
)

// SysTick models the 24-bit core timer.
//
// The counter decrements once per tick. Reaching zero from one sets
// COUNTFLAG and, with TICKINT, raises SysTickIRQ; the next tick reloads
// from LOAD. Reading CTRL clears COUNTFLAG, writing VAL clears the counter
// and COUNTFLAG. With CLKSOURCE clear the counter runs at a CPU/8.
type SysTick struct {
	CTRL  *reg.Hooked
	LOAD  *reg.Hooked
	VAL   *reg.Hooked
	CALIB *reg.Word

	Interrupts Raiser
	// AutoStep advances the counter by this many CPU cycles on every CTRL
	// read while enabled, so polling code makes progress without a clock.
	AutoStep uint64

	lock     sync.Mutex
	ctrl     uint32
	load     uint32
	val      uint32
	prescale uint64
}

// NewSysTick creates the model.
func NewSysTick(interrupts Raiser) *SysTick {
	t := &SysTick{Interrupts: interrupts, CALIB: reg.NewWord(0)}
	t.CTRL = &reg.Hooked{
		OnRead: func(stored uint32) (uint32, uint32) {
			if n := t.AutoStep; n > 0 && t.enabled() {
				t.Step(n)
			}
			t.lock.Lock()
			v := t.ctrl
			t.ctrl &^= stCountFlag
			t.lock.Unlock()
			return v, stored
		},
		OnWrite: func(_, v uint32) uint32 {
			t.lock.Lock()
			t.ctrl = t.ctrl&stCountFlag | v&(stEnable|stTickInt|stClkSource)
			t.lock.Unlock()
			return v
		},
	}
	t.LOAD = &reg.Hooked{
		OnRead: func(stored uint32) (uint32, uint32) {
			t.lock.Lock()
			defer t.lock.Unlock()
			return t.load, stored
		},
		OnWrite: func(_, v uint32) uint32 {
			t.lock.Lock()
			t.load = v & stCounterMask
			t.lock.Unlock()
			return v
		},
	}
	t.VAL = &reg.Hooked{
		OnRead: func(stored uint32) (uint32, uint32) {
			t.lock.Lock()
			defer t.lock.Unlock()
			return t.val, stored
		},
		OnWrite: func(_, v uint32) uint32 {
			t.lock.Lock()
			t.val = 0
			t.ctrl &^= stCountFlag
			t.lock.Unlock()
			return 0
		},
	}
	return t
}

func (t *SysTick) enabled() bool {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.ctrl&stEnable != 0
}

// Counter returns the current value without side effects.
func (t *SysTick) Counter() uint32 {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.val
}

// Step advances the counter by cpuCycles processor clock cycles.
// Expirations raising the interrupt are delivered one by one with the
// model unlocked, and counting stops if a handler disables the timer.
func (t *SysTick) Step(cpuCycles uint64) {
	t.lock.Lock()
	ticks := t.ticksLocked(cpuCycles)
	for ticks > 0 && t.ctrl&stEnable != 0 {
		if t.val == 0 {
			if t.load == 0 {
				break
			}
			t.val = t.load
			ticks--
			continue
		}
		if ticks < uint64(t.val) {
			t.val -= uint32(ticks)
			break
		}
		ticks -= uint64(t.val)
		t.val = 0
		t.ctrl |= stCountFlag
		if t.ctrl&stTickInt != 0 && t.Interrupts != nil {
			t.lock.Unlock()
			t.Interrupts.Raise(SysTickIRQ)
			t.lock.Lock()
		}
	}
	t.lock.Unlock()
}

func (t *SysTick) ticksLocked(cpuCycles uint64) uint64 {
	if t.ctrl&stClkSource != 0 {
		return cpuCycles
	}
	t.prescale += cpuCycles
	ticks := t.prescale / 8
	t.prescale %= 8
	return ticks
}
