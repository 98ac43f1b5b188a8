package exti

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/mcal.go/pkg/cli/sh"
	"github.com/robotalks/mcal.go/pkg/exti"
	"github.com/robotalks/mcal.go/pkg/gpio"
)

// LineState is a line in the result of exti.lines.
type LineState struct {
	Line    uint8  `json:"line"`
	Source  string `json:"source"`
	Trigger string `json:"trigger"`
	Enabled bool   `json:"enabled"`
	Events  uint64 `json:"events"`
}

// String implements fmt.Stringer.
func (st *LineState) String() string {
	state := "masked"
	if st.Enabled {
		state = "enabled"
	}
	return fmt.Sprintf("EXTI%d %s %s %s, %d events", st.Line, st.Source, st.Trigger, state, st.Events)
}

func parseLine(s string) (exti.Line, error) {
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid LINE: %w", err)
	}
	return exti.Line(n), nil
}

func parseLevel(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "1", "high":
		return true, nil
	case "0", "low":
		return false, nil
	}
	return false, fmt.Errorf("level %q: %w", s, gpio.ErrLevel)
}

// Config routes PIN to its line and enables it on TRIGGER, falling by
// default.
func Config(s *sh.Shell, args []string) (interface{}, error) {
	if err := sh.ArgsAtLeast(args, 1, "exti.config PIN [falling|rising|both|none]"); err != nil {
		return nil, err
	}
	port, pin, err := gpio.ParsePin(strings.ToUpper(args[0]))
	if err != nil {
		return nil, err
	}
	cfg := &exti.Config{Line: exti.Line(pin), Source: port, Trigger: exti.Falling}
	if len(args) > 1 {
		if cfg.Trigger, err = exti.ParseTrigger(args[1]); err != nil {
			return nil, err
		}
	}
	return nil, s.Board.EXTI.Configure(cfg)
}

// Disable masks LINE.
func Disable(s *sh.Shell, args []string) (interface{}, error) {
	if err := sh.ArgsAtLeast(args, 1, "exti.disable LINE"); err != nil {
		return nil, err
	}
	l, err := parseLine(args[0])
	if err != nil {
		return nil, err
	}
	return nil, s.Board.EXTI.DisableLine(l)
}

// Drive forces the external level of PIN.
func Drive(s *sh.Shell, args []string) (interface{}, error) {
	if err := sh.ArgsAtLeast(args, 2, "exti.drive PIN high|low"); err != nil {
		return nil, err
	}
	high, err := parseLevel(args[1])
	if err != nil {
		return nil, err
	}
	return nil, s.Board.DrivePin(strings.ToUpper(args[0]), high)
}

// Press presses and releases the user button, or only releases it with
// "up".
func Press(s *sh.Shell, args []string) (interface{}, error) {
	if len(args) > 0 && args[0] == "up" {
		return nil, s.Board.PressButton(false)
	}
	if err := s.Board.PressButton(true); err != nil {
		return nil, err
	}
	if len(args) > 0 && args[0] == "down" {
		return nil, nil
	}
	return nil, s.Board.PressButton(false)
}

// Soft requests LINE through the software interrupt register.
func Soft(s *sh.Shell, args []string) (interface{}, error) {
	if err := sh.ArgsAtLeast(args, 1, "exti.soft LINE"); err != nil {
		return nil, err
	}
	l, err := parseLine(args[0])
	if err != nil {
		return nil, err
	}
	return nil, s.Board.EXTI.SoftwareTrigger(l)
}

// Lines lists enabled lines and lines that have seen events.
func Lines(s *sh.Shell, args []string) (interface{}, error) {
	events := s.LineEvents()
	var states []*LineState
	for l := exti.Line(0); l < exti.NumLines; l++ {
		enabled, err := s.Board.EXTI.Enabled(l)
		if err != nil {
			return nil, err
		}
		if !enabled && events[l] == 0 {
			continue
		}
		src, err := s.Board.EXTI.Source(l)
		if err != nil {
			return nil, err
		}
		trigger, err := s.Board.EXTI.Trigger(l)
		if err != nil {
			return nil, err
		}
		states = append(states, &LineState{
			Line:    uint8(l),
			Source:  src.String(),
			Trigger: trigger.String(),
			Enabled: enabled,
			Events:  events[l],
		})
	}
	return states, nil
}

var (
	// ConfigCmd exposes Config.
	ConfigCmd = ishell.Cmd{
		Name:    "exti.config",
		Aliases: []string{"xc"},
		Help:    "PIN [falling|rising|both|none]",
		Func:    sh.Do(Config),
	}

	// DisableCmd exposes Disable.
	DisableCmd = ishell.Cmd{
		Name: "exti.disable",
		Help: "LINE",
		Func: sh.Do(Disable),
	}

	// DriveCmd exposes Drive.
	DriveCmd = ishell.Cmd{
		Name:    "exti.drive",
		Aliases: []string{"xd"},
		Help:    "PIN high|low",
		Func:    sh.Do(Drive),
	}

	// PressCmd exposes Press.
	PressCmd = ishell.Cmd{
		Name:    "exti.press",
		Aliases: []string{"press"},
		Help:    "[down|up]",
		Func:    sh.Do(Press),
	}

	// SoftCmd exposes Soft.
	SoftCmd = ishell.Cmd{
		Name: "exti.soft",
		Help: "LINE",
		Func: sh.Do(Soft),
	}

	// LinesCmd exposes Lines.
	LinesCmd = ishell.Cmd{
		Name:    "exti.lines",
		Aliases: []string{"xl"},
		Help:    "",
		Func:    sh.Do(Lines),
	}
)

func init() {
	sh.AddCmds(
		&ConfigCmd,
		&DisableCmd,
		&DriveCmd,
		&PressCmd,
		&SoftCmd,
		&LinesCmd,
	)
}
