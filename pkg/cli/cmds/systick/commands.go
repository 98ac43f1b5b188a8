package systick

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/mcal.go/pkg/cli/sh"
	"github.com/robotalks/mcal.go/pkg/systick"
	"github.com/robotalks/mcal.go/pkg/usart"
)

// Status is the result of systick.ticks.
type Status struct {
	Mode      string `json:"mode"`
	TickHz    uint32 `json:"tickHz"`
	Ticks     uint64 `json:"ticks"`
	Elapsed   uint32 `json:"elapsed"`
	Remaining uint32 `json:"remaining"`
}

// String implements fmt.Stringer.
func (st *Status) String() string {
	return fmt.Sprintf("%s at %d Hz, %d expiries, elapsed %d remaining %d",
		st.Mode, st.TickHz, st.Ticks, st.Elapsed, st.Remaining)
}

func parseInterval(s string) (uint16, error) {
	ms, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid MS: %w", err)
	}
	return uint16(ms), nil
}

// Init selects the clock source: cpu or cpu/8.
func Init(s *sh.Shell, args []string) (interface{}, error) {
	source := systick.CPUClock
	if len(args) > 0 {
		switch args[0] {
		case "cpu":
		case "cpu/8", "div8":
			source = systick.CPUClockDiv8
		default:
			return nil, fmt.Errorf("unknown clock source %q", args[0])
		}
	}
	s.Board.SysTick.Init(source)
	return nil, nil
}

// Wait busy-waits MS milliseconds.
func Wait(s *sh.Shell, args []string) (interface{}, error) {
	if err := sh.ArgsAtLeast(args, 1, "systick.wait MS"); err != nil {
		return nil, err
	}
	ms, err := parseInterval(args[0])
	if err != nil {
		return nil, err
	}
	return nil, s.Board.SysTick.SetBusyWait(ms)
}

// Once arms a one-shot interval.
func Once(s *sh.Shell, args []string) (interface{}, error) {
	if err := sh.ArgsAtLeast(args, 1, "systick.once MS"); err != nil {
		return nil, err
	}
	ms, err := parseInterval(args[0])
	if err != nil {
		return nil, err
	}
	return nil, s.Board.SysTick.SetSingleInterval(ms)
}

// Every arms a periodic interval. With USART TEXT every expiry also sends
// TEXT on that instance.
func Every(s *sh.Shell, args []string) (interface{}, error) {
	if err := sh.ArgsAtLeast(args, 1, "systick.every MS [USART TEXT...]"); err != nil {
		return nil, err
	}
	ms, err := parseInterval(args[0])
	if err != nil {
		return nil, err
	}
	if len(args) > 2 {
		idx, err := usart.ParseIndex(args[1])
		if err != nil {
			return nil, err
		}
		s.SetTickText(idx, strings.Join(args[2:], " "))
	}
	return nil, s.Board.SysTick.SetPeriodicInterval(ms)
}

// Stop deinitializes the timer.
func Stop(s *sh.Shell, args []string) (interface{}, error) {
	s.Board.SysTick.Deinit()
	s.SetTickText(usart.USART1, "")
	return nil, nil
}

// Ticks reports the timer state.
func Ticks(s *sh.Shell, args []string) (interface{}, error) {
	e := s.Board.SysTick
	return &Status{
		Mode:      e.Mode().String(),
		TickHz:    e.TickHz(),
		Ticks:     s.Ticks(),
		Elapsed:   e.ElapsedTicks(),
		Remaining: e.RemainingTicks(),
	}, nil
}

var (
	// InitCmd exposes Init.
	InitCmd = ishell.Cmd{
		Name: "systick.init",
		Help: "[cpu|cpu/8]",
		Func: sh.Do(Init),
	}

	// WaitCmd exposes Wait.
	WaitCmd = ishell.Cmd{
		Name:    "systick.wait",
		Aliases: []string{"tw"},
		Help:    "MS",
		Func:    sh.Do(Wait),
	}

	// OnceCmd exposes Once.
	OnceCmd = ishell.Cmd{
		Name:    "systick.once",
		Aliases: []string{"to"},
		Help:    "MS",
		Func:    sh.Do(Once),
	}

	// EveryCmd exposes Every.
	EveryCmd = ishell.Cmd{
		Name:    "systick.every",
		Aliases: []string{"te"},
		Help:    "MS [USART TEXT...]",
		Func:    sh.Do(Every),
	}

	// StopCmd exposes Stop.
	StopCmd = ishell.Cmd{
		Name: "systick.stop",
		Help: "",
		Func: sh.Do(Stop),
	}

	// TicksCmd exposes Ticks.
	TicksCmd = ishell.Cmd{
		Name:    "systick.ticks",
		Aliases: []string{"tt"},
		Help:    "",
		Func:    sh.Do(Ticks),
	}
)

func init() {
	sh.AddCmds(
		&InitCmd,
		&WaitCmd,
		&OnceCmd,
		&EveryCmd,
		&StopCmd,
		&TicksCmd,
	)
}
