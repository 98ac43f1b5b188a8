package scb

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/mcal.go/pkg/cli/sh"
	"github.com/robotalks/mcal.go/pkg/hal"
	"github.com/robotalks/mcal.go/pkg/scb"
)

// Info is the result of scb.info.
type Info struct {
	CPUID      string          `json:"cpuid"`
	Grouping   string          `json:"grouping"`
	Exceptions []ExceptionInfo `json:"exceptions"`
}

// ExceptionInfo is the state of a system exception.
type ExceptionInfo struct {
	Name     string `json:"name"`
	Priority uint8  `json:"priority"`
	Pending  bool   `json:"pending"`
}

// String implements fmt.Stringer.
func (info *Info) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "CPUID %s, priority grouping %s", info.CPUID, info.Grouping)
	for _, e := range info.Exceptions {
		fmt.Fprintf(&sb, "\n  %s priority %d", e.Name, e.Priority)
		if e.Pending {
			sb.WriteString(" pending")
		}
	}
	return sb.String()
}

func parseException(s string) (scb.Exception, error) {
	for _, e := range []scb.Exception{scb.PendSV, scb.SysTick} {
		if strings.EqualFold(s, e.String()) {
			return e, nil
		}
	}
	return 0, hal.OutOfRange(scb.ErrException, "exception", s)
}

// Grouping sets the priority grouping when given, e.g. 4/4, and reports it.
func Grouping(s *sh.Shell, args []string) (interface{}, error) {
	if len(args) > 0 {
		g, err := scb.ParseGrouping(args[0])
		if err != nil {
			return nil, err
		}
		if err := s.Board.SCB.SetPriorityGrouping(g); err != nil {
			return nil, err
		}
	}
	return s.Board.SCB.PriorityGrouping().String(), nil
}

// Pend pends EXCEPTION, or clears it with "clear".
func Pend(s *sh.Shell, args []string) (interface{}, error) {
	if err := sh.ArgsAtLeast(args, 1, "scb.pend pendsv|systick [clear]"); err != nil {
		return nil, err
	}
	e, err := parseException(args[0])
	if err != nil {
		return nil, err
	}
	if len(args) > 1 && args[1] == "clear" {
		return nil, s.Board.SCB.ClearPending(e)
	}
	return nil, s.Board.SCB.SetPending(e)
}

// Priority sets the priority of EXCEPTION.
func Priority(s *sh.Shell, args []string) (interface{}, error) {
	if err := sh.ArgsAtLeast(args, 2, "scb.priority pendsv|systick PRIORITY"); err != nil {
		return nil, err
	}
	e, err := parseException(args[0])
	if err != nil {
		return nil, err
	}
	prio, err := strconv.ParseUint(args[1], 10, 8)
	if err != nil {
		return nil, fmt.Errorf("invalid PRIORITY: %w", err)
	}
	return nil, s.Board.SCB.SetPriority(e, uint8(prio))
}

// Show reports the SCB state.
func Show(s *sh.Shell, args []string) (interface{}, error) {
	c := s.Board.SCB
	info := &Info{
		CPUID:    fmt.Sprintf("%#08x", c.CPUID()),
		Grouping: c.PriorityGrouping().String(),
	}
	for _, e := range []scb.Exception{scb.PendSV, scb.SysTick} {
		prio, err := c.Priority(e)
		if err != nil {
			return nil, err
		}
		pending, err := c.Pending(e)
		if err != nil {
			return nil, err
		}
		info.Exceptions = append(info.Exceptions, ExceptionInfo{Name: e.String(), Priority: prio, Pending: pending})
	}
	return info, nil
}

var (
	// GroupingCmd exposes Grouping.
	GroupingCmd = ishell.Cmd{
		Name: "scb.grouping",
		Help: "[16/1|8/2|4/4|2/8|1/16]",
		Func: sh.Do(Grouping),
	}

	// PendCmd exposes Pend.
	PendCmd = ishell.Cmd{
		Name: "scb.pend",
		Help: "pendsv|systick [clear]",
		Func: sh.Do(Pend),
	}

	// PriorityCmd exposes Priority.
	PriorityCmd = ishell.Cmd{
		Name: "scb.priority",
		Help: "pendsv|systick PRIORITY",
		Func: sh.Do(Priority),
	}

	// InfoCmd exposes Show.
	InfoCmd = ishell.Cmd{
		Name: "scb.info",
		Help: "",
		Func: sh.Do(Show),
	}
)

func init() {
	sh.AddCmds(
		&GroupingCmd,
		&PendCmd,
		&PriorityCmd,
		&InfoCmd,
	)
}
