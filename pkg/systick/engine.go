// Package systick implements the software timer engine on the core SysTick
// counter: a synchronous busy wait, and one-shot or periodic intervals
// completed by interrupt.
package systick

import (
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/mcal.go/pkg/hal"
	"github.com/robotalks/mcal.go/pkg/spin"
)

// DefaultCPUHz is the core clock after reset (HSI).
const DefaultCPUHz = 16000000

// Engine owns the SysTick counter. Only one mode is active at a time and
// arming is rejected unless the engine is Idle.
//
// The engine is the only writer of CTRL and always writes the full value, so
// no read-modify-write of CTRL happens while the state lock is held.
type Engine struct {
	Regs *Registers
	// Waiter bounds the busy wait; nil spins forever.
	Waiter spin.Waiter

	lock    sync.Mutex
	cpuHz   uint32
	source  ClockSource
	tickHz  uint32
	mode    Mode
	armed   uint64
	handler Handler
}

// New creates an Idle engine counting at the full cpuHz.
func New(regs *Registers, cpuHz uint32) *Engine {
	if cpuHz == 0 {
		cpuHz = DefaultCPUHz
	}
	return &Engine{Regs: regs, cpuHz: cpuHz, source: CPUClock, tickHz: cpuHz}
}

// Init selects the clock source. The mode is not changed.
func (e *Engine) Init(source ClockSource) {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.source = source
	if source == CPUClock {
		e.tickHz = e.cpuHz
	} else {
		e.tickHz = e.cpuHz / 8
	}
	e.Regs.CTRL.Set(e.ctrlLocked())
}

// Mode returns the current mode.
func (e *Engine) Mode() Mode {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.mode
}

// TickHz returns the counting frequency.
func (e *Engine) TickHz() uint32 {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.tickHz
}

// MaxInterval returns the longest interval in milliseconds the counter can
// represent at the current frequency.
func (e *Engine) MaxInterval() uint32 {
	e.lock.Lock()
	defer e.lock.Unlock()
	// Unlike (MaxTicks/(tickHz/1000))*1000 this does not truncate, e.g. 1048 ms at 16 MHz.
	return uint32((MaxTicks + 1) * 1000 / uint64(e.tickHz))
}

// Reload computes the reload value of an interval. ok is false when the
// interval is shorter than two ticks, which the counter cannot time.
func (e *Engine) Reload(ms uint16) (load uint32, ok bool, err error) {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.reloadLocked(ms)
}

func (e *Engine) reloadLocked(ms uint16) (uint32, bool, error) {
	ticks := uint64(ms) * uint64(e.tickHz) / 1000
	// Exact tick bound, not the truncated millisecond formula.
	if ticks > MaxTicks+1 {
		return 0, false, hal.OutOfRange(hal.ErrOverflow, "interval", ms)
	}
	if ticks <= 1 {
		return 0, false, nil
	}
	return uint32(ticks - 1), true, nil
}

// SetCallback replaces the expiry handler, in any mode.
func (e *Engine) SetCallback(h Handler) error {
	if h == nil {
		return hal.ErrNullPointer
	}
	e.lock.Lock()
	e.handler = h
	e.lock.Unlock()
	return nil
}

// SetBusyWait blocks for ms milliseconds. Intervals shorter than the
// counter can time return immediately.
func (e *Engine) SetBusyWait(ms uint16) error {
	e.lock.Lock()
	load, ok, err := e.checkLocked(ms)
	if err != nil || !ok {
		e.lock.Unlock()
		return err
	}
	e.armLocked(BusyWait, load)
	e.lock.Unlock()

	ctrl := e.Regs.CTRL
	err = spin.OrForever(e.Waiter).Wait(func() bool {
		return ctrl.Get()&CtrlCountFlag != 0
	})
	e.Deinit()
	return err
}

// SetSingleInterval arms a one-shot interval. The handler runs from the
// interrupt and the engine returns to Idle. An interval shorter than the
// counter can time runs the handler immediately and stays Idle.
func (e *Engine) SetSingleInterval(ms uint16) error {
	e.lock.Lock()
	load, ok, err := e.checkLocked(ms)
	if err != nil {
		e.lock.Unlock()
		return err
	}
	if !ok {
		h := e.handler
		e.lock.Unlock()
		if h != nil {
			h.HandleTick()
		}
		return nil
	}
	e.armLocked(OneShot, load)
	e.lock.Unlock()
	return nil
}

// SetPeriodicInterval arms a periodic interval. The handler runs from the
// interrupt on every expiry until Deinit.
func (e *Engine) SetPeriodicInterval(ms uint16) error {
	e.lock.Lock()
	defer e.lock.Unlock()
	load, ok, err := e.checkLocked(ms)
	if err != nil {
		return err
	}
	if !ok {
		return hal.OutOfRange(hal.ErrOverflow, "interval", ms)
	}
	e.armLocked(Periodic, load)
	return nil
}

func (e *Engine) checkLocked(ms uint16) (uint32, bool, error) {
	if e.mode != Idle {
		return 0, false, hal.ErrBusy
	}
	return e.reloadLocked(ms)
}

func (e *Engine) armLocked(mode Mode, load uint32) {
	e.mode = mode
	e.armed++
	e.Regs.LOAD.Set(load)
	e.Regs.VAL.Set(0)
	e.Regs.CTRL.Set(e.ctrlLocked())
	glog.V(3).Infof("systick: %s LOAD=%d at %d Hz", mode, load, e.tickHz)
}

func (e *Engine) ctrlLocked() uint32 {
	var ctrl uint32
	if e.source == CPUClock {
		ctrl |= CtrlClkSource
	}
	switch e.mode {
	case BusyWait:
		ctrl |= CtrlEnable
	case OneShot, Periodic:
		ctrl |= CtrlEnable | CtrlTickInt
	}
	return ctrl
}

// ElapsedTicks returns LOAD - VAL.
func (e *Engine) ElapsedTicks() uint32 {
	return e.Regs.LOAD.Get() - e.Regs.VAL.Get()
}

// RemainingTicks returns VAL.
func (e *Engine) RemainingTicks() uint32 {
	return e.Regs.VAL.Get()
}

// Deinit stops the counter, disables the interrupt, clears LOAD and VAL and
// returns to Idle. It may be called from the handler.
func (e *Engine) Deinit() {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.deinitLocked()
}

func (e *Engine) deinitLocked() {
	e.mode = Idle
	e.Regs.CTRL.Set(e.ctrlLocked())
	e.Regs.LOAD.Set(0)
	e.Regs.VAL.Set(0)
}

// HandleIRQ is the SysTick exception entry. It runs the handler, then
// returns a one-shot interval to Idle whether or not a handler is set.
// An interval re-armed by the handler itself is left running.
func (e *Engine) HandleIRQ() {
	e.lock.Lock()
	h, armed := e.handler, e.armed
	e.lock.Unlock()
	if h != nil {
		h.HandleTick()
	}
	e.lock.Lock()
	if e.mode == OneShot && e.armed == armed {
		e.deinitLocked()
	}
	e.lock.Unlock()
}
