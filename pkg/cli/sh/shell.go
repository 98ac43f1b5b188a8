package sh

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/abiosoft/ishell"
	"github.com/google/shlex"

	"github.com/robotalks/mcal.go/pkg/board"
	"github.com/robotalks/mcal.go/pkg/exti"
	"github.com/robotalks/mcal.go/pkg/systick"
	"github.com/robotalks/mcal.go/pkg/usart"
)

// Shell provides ishell backed interactive shell over a simulated board.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell *ishell.Shell
	Board *board.Board

	lock     sync.Mutex
	ticks    uint64
	tickText string
	tickPort usart.Index
	received [usart.NumInstances][]byte
	events   [exti.NumLines]uint64
}

const shellKey = "$shell"

var (
	// flags

	evalOnly   bool
	outputJSON bool
	scriptFile string

	// commands
	commands []*ishell.Cmd
)

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
	flag.StringVar(&scriptFile, "f", scriptFile, "Run commands from a script file.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell over b. The board receives through the shell:
// bytes arriving in interrupt mode are collected for usart.recv and EXTI
// line interrupts are counted.
func New(b *board.Board) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell: ishell.New(),
		Board: b,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(b.Desc.Name + " > ")
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	for _, p := range b.USART.Ports() {
		idx := p.Index
		if p.Mode == usart.Interrupt {
			p.SetHandler(usart.HandleByteFunc(func(c byte) { s.collect(idx, c) }))
		}
	}
	for l := exti.Line(0); l < exti.NumLines; l++ {
		b.EXTI.SetCallback(l, exti.HandleLineFunc(s.lineEvent))
	}
	b.SysTick.SetCallback(systick.HandleTickFunc(s.tick))
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

func (s *Shell) collect(idx usart.Index, c byte) {
	s.lock.Lock()
	s.received[idx] = append(s.received[idx], c)
	s.lock.Unlock()
}

// TakeReceived returns and clears bytes collected by the receive interrupt.
func (s *Shell) TakeReceived(idx usart.Index) []byte {
	s.lock.Lock()
	defer s.lock.Unlock()
	data := s.received[idx]
	s.received[idx] = nil
	return data
}

func (s *Shell) tick() {
	s.lock.Lock()
	s.ticks++
	text, idx := s.tickText, s.tickPort
	s.lock.Unlock()
	if text != "" {
		s.Board.USART.SendString(idx, text)
	}
}

// Ticks is the number of timer expiries seen.
func (s *Shell) Ticks() uint64 {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.ticks
}

func (s *Shell) lineEvent(l exti.Line) {
	s.lock.Lock()
	s.events[l]++
	s.lock.Unlock()
}

// LineEvents is the number of interrupts seen per EXTI line.
func (s *Shell) LineEvents() [exti.NumLines]uint64 {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.events
}

// SetTickText makes every expiry send text on a USART; empty stops it.
func (s *Shell) SetTickText(idx usart.Index, text string) {
	s.lock.Lock()
	s.tickPort, s.tickText = idx, text
	s.lock.Unlock()
}

// CmdFunc executes a command and returns a printable result.
type CmdFunc func(s *Shell, args []string) (interface{}, error)

// Do adapts a CmdFunc to ishell.
func Do(fn CmdFunc) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		s := ShellFrom(c)
		res, err := fn(s, c.Args)
		if err != nil {
			c.Err(err)
			return
		}
		if res == nil {
			c.Println("OK")
			return
		}
		out, err := s.Format(res)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(out)
	}
}

// Format renders a command result as text or JSON.
func (s *Shell) Format(res interface{}) (string, error) {
	if s.OutputJSON {
		out, err := json.Marshal(res)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
	return fmt.Sprint(res), nil
}

// ArgsAtLeast fails when fewer than n arguments are given.
func ArgsAtLeast(args []string, n int, usage string) error {
	if len(args) < n {
		return fmt.Errorf("usage: %s", usage)
	}
	return nil
}

// RunScript executes one command per line. Lines are split the way a shell
// splits words; blank lines and lines starting with # are skipped.
func (s *Shell) RunScript(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		args, err := shlex.Split(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		if err := s.Shell.Process(args...); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	return scanner.Err()
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			log.Fatalln(err)
		}
		defer f.Close()
		if err := s.RunScript(f); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}
