package sim

import (
	"time"

	"golang.org/x/exp/constraints"

	fx "github.com/robotalks/mcal.go/pkg/framework"
)

// Stepper advances a model by CPU cycles.
type Stepper interface {
	Step(cpuCycles uint64)
}

// Clock is a loop controller converting wall time into CPU cycles.
type Clock struct {
	Hz uint64
	// MaxStep caps the cycles of one iteration, so a stalled loop does not
	// produce a burst of expirations.
	MaxStep  uint64
	Steppers []Stepper

	last   time.Time
	cycles uint64
}

// NewClock creates a Clock at hz with a one-second cap per step.
func NewClock(hz uint64, steppers ...Stepper) *Clock {
	return &Clock{Hz: hz, MaxStep: hz, Steppers: steppers}
}

// AddToLoop implements LoopAdder.
func (c *Clock) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvTop, c)
}

// Control implements Controller.
func (c *Clock) Control(ctx fx.ControlContext) error {
	now := ctx.Time()
	if c.last.IsZero() {
		c.last = now
		return nil
	}
	elapsed := now.Sub(c.last)
	c.last = now
	c.Advance(clamp(CyclesIn(elapsed, c.Hz), 0, c.MaxStep))
	return nil
}

// Advance steps every model by cycles.
func (c *Clock) Advance(cycles uint64) {
	c.cycles += cycles
	for _, s := range c.Steppers {
		s.Step(cycles)
	}
}

// Cycles returns the total cycles advanced.
func (c *Clock) Cycles() uint64 {
	return c.cycles
}

// CyclesIn converts a duration to cycles at hz.
func CyclesIn(d time.Duration, hz uint64) uint64 {
	if d <= 0 {
		return 0
	}
	return uint64(d/time.Microsecond) * hz / 1000000
}

func clamp[T constraints.Integer](v, lo, hi T) T {
	if hi > 0 && v > hi {
		return hi
	}
	if v < lo {
		return lo
	}
	return v
}
