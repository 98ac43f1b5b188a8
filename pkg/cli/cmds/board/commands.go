package board

import (
	"fmt"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/mcal.go/pkg/cli/sh"
	"github.com/robotalks/mcal.go/pkg/gpio"
)

// Info is the result of board.info.
type Info struct {
	Name     string `json:"name"`
	SysclkHz uint32 `json:"sysclkHz"`
	Cycles   uint64 `json:"cycles"`
	text     string
}

// String implements fmt.Stringer.
func (i *Info) String() string {
	return fmt.Sprintf("%s\n  %d cycles elapsed", i.text, i.Cycles)
}

// BoardInfo describes the board and its drivers.
func BoardInfo(s *sh.Shell, args []string) (interface{}, error) {
	b := s.Board
	return &Info{Name: b.Desc.Name, SysclkHz: b.CPUHz, Cycles: b.Clock.Cycles(), text: b.String()}, nil
}

// Step advances simulated time by MS milliseconds.
func Step(s *sh.Shell, args []string) (interface{}, error) {
	if err := sh.ArgsAtLeast(args, 1, "board.step MS"); err != nil {
		return nil, err
	}
	ms, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid MS: %w", err)
	}
	s.Board.Step(ms * uint64(s.Board.CPUHz) / 1000)
	return nil, nil
}

// Pin reads a pin, or drives it with low, high or toggle.
func Pin(s *sh.Shell, args []string) (interface{}, error) {
	if err := sh.ArgsAtLeast(args, 1, "board.pin PIN [low|high|toggle]"); err != nil {
		return nil, err
	}
	port, pin, err := gpio.ParsePin(args[0])
	if err != nil {
		return nil, err
	}
	ctl := s.Board.GPIO
	if len(args) > 1 {
		switch args[1] {
		case "low", "0":
			err = ctl.WritePinAtomic(port, pin, gpio.Low)
		case "high", "1":
			err = ctl.WritePinAtomic(port, pin, gpio.High)
		case "toggle":
			err = ctl.TogglePin(port, pin)
		default:
			err = fmt.Errorf("unknown level %q", args[1])
		}
		if err != nil {
			return nil, err
		}
	}
	level, err := ctl.ReadPin(port, pin)
	if err != nil {
		return nil, err
	}
	return uint8(level), nil
}

var (
	// InfoCmd exposes BoardInfo.
	InfoCmd = ishell.Cmd{
		Name:    "board.info",
		Aliases: []string{"info"},
		Help:    "",
		Func:    sh.Do(BoardInfo),
	}

	// StepCmd exposes Step.
	StepCmd = ishell.Cmd{
		Name:    "board.step",
		Aliases: []string{"step"},
		Help:    "MS",
		Func:    sh.Do(Step),
	}

	// PinCmd exposes Pin.
	PinCmd = ishell.Cmd{
		Name: "board.pin",
		Help: "PIN [low|high|toggle]",
		Func: sh.Do(Pin),
	}
)

func init() {
	sh.AddCmds(
		&InfoCmd,
		&StepCmd,
		&PinCmd,
	)
}
