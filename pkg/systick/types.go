package systick

// Mode is the engine state.
type Mode int

// Modes.
const (
	Idle Mode = iota
	BusyWait
	OneShot
	Periodic
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case BusyWait:
		return "busy-wait"
	case OneShot:
		return "one-shot"
	case Periodic:
		return "periodic"
	}
	return "unknown"
}

// ClockSource selects the counting frequency.
type ClockSource int

// Clock sources.
const (
	// CPUClockDiv8 counts at the core clock divided by 8.
	CPUClockDiv8 ClockSource = iota
	// CPUClock counts at the core clock.
	CPUClock
)

// String implements fmt.Stringer.
func (s ClockSource) String() string {
	if s == CPUClock {
		return "cpu"
	}
	return "cpu/8"
}

// Handler is invoked on every timer expiry delivered by interrupt.
type Handler interface {
	HandleTick()
}

// HandleTickFunc is func type of Handler.
type HandleTickFunc func()

// HandleTick implements Handler.
func (f HandleTickFunc) HandleTick() {
	f()
}
