package board

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"github.com/robotalks/mcal.go/pkg/gpio"
	"github.com/robotalks/mcal.go/pkg/hal"
	"github.com/robotalks/mcal.go/pkg/rcc"
	"github.com/robotalks/mcal.go/pkg/scb"
	"github.com/robotalks/mcal.go/pkg/usart"
)

// HSIHz is the internal oscillator frequency.
const HSIHz = 16000000

//go:embed boards.yaml
var rawBoards []byte

var boards Descriptions

// ErrUnknownBoard indicates no embedded description has the name.
var ErrUnknownBoard = errors.New("unknown board")

// Descriptions is the list of known boards.
type Descriptions []*Description

// Description describes the clocks and serial wiring of a board.
type Description struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	HSEHz       uint32       `yaml:"hseHz"`
	Clock       ClockDesc    `yaml:"clock"`
	APB1Div     uint32       `yaml:"apb1Div"`
	APB2Div     uint32       `yaml:"apb2Div"`
	USARTs      []*USARTDesc `yaml:"usarts"`
	LED         string       `yaml:"led"`
	// Button is an active-low user button, e.g. PC13.
	Button string `yaml:"button"`
	// PriorityGrouping is the NVIC split, e.g. 4/4; empty means 16/1.
	PriorityGrouping string `yaml:"priorityGrouping"`
	SysTickPriority  uint8  `yaml:"systickPriority"`
}

// ClockDesc selects the system clock.
type ClockDesc struct {
	Source string   `yaml:"source"`
	PLL    *PLLDesc `yaml:"pll"`
}

// PLLDesc holds the PLL factors.
type PLLDesc struct {
	Source string `yaml:"source"`
	M      uint8  `yaml:"m"`
	N      uint16 `yaml:"n"`
	P      uint8  `yaml:"p"`
	Q      uint8  `yaml:"q"`
}

// USARTDesc wires one USART instance.
type USARTDesc struct {
	Name     string `yaml:"name"`
	IRQ      int    `yaml:"irq"`
	Bus      string `yaml:"bus"`
	ClockBit uint8  `yaml:"clockBit"`
	TX       string `yaml:"tx"`
	RX       string `yaml:"rx"`
	AF       uint8  `yaml:"af"`
	Priority uint8  `yaml:"priority"`
}

// All returns the embedded board descriptions.
func All() Descriptions {
	return boards
}

// Names returns the sorted board names.
func (d Descriptions) Names() []string {
	names := make([]string, 0, len(d))
	for _, desc := range d {
		names = append(names, desc.Name)
	}
	slices.Sort(names)
	return names
}

// Find looks a board up by name.
func (d Descriptions) Find(name string) (*Description, error) {
	name = strings.ToLower(name)
	idx := slices.IndexFunc(d, func(desc *Description) bool {
		return desc.Name == name
	})
	if idx < 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrUnknownBoard)
	}
	return d[idx], nil
}

// ParseDescriptions decodes a boards document.
func ParseDescriptions(data []byte) (Descriptions, error) {
	var doc struct {
		Boards Descriptions `yaml:"boards"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	for _, desc := range doc.Boards {
		if err := desc.Validate(); err != nil {
			return nil, fmt.Errorf("board %s: %w", desc.Name, err)
		}
	}
	return doc.Boards, nil
}

func init() {
	var err error
	if boards, err = ParseDescriptions(rawBoards); err != nil {
		panic(err)
	}
}

// Validate checks the references of a description.
func (d *Description) Validate() error {
	if _, err := d.SysClockHz(); err != nil {
		return err
	}
	for _, u := range d.USARTs {
		if _, err := usart.ParseIndex(u.Name); err != nil {
			return err
		}
		if _, err := ParseBus(u.Bus); err != nil {
			return err
		}
		for _, pin := range []string{u.TX, u.RX} {
			if _, _, err := gpio.ParsePin(pin); err != nil {
				return err
			}
		}
	}
	for _, pin := range []string{d.LED, d.Button} {
		if pin == "" {
			continue
		}
		if _, _, err := gpio.ParsePin(pin); err != nil {
			return err
		}
	}
	if _, err := d.Grouping(); err != nil {
		return err
	}
	if d.SysTickPriority > scb.MaxPriority {
		return hal.OutOfRange(scb.ErrPriority, "systickPriority", d.SysTickPriority)
	}
	return nil
}

// Grouping returns the NVIC priority grouping.
func (d *Description) Grouping() (scb.Grouping, error) {
	if d.PriorityGrouping == "" {
		return scb.Group16Sub1, nil
	}
	return scb.ParseGrouping(d.PriorityGrouping)
}

// PLLConfig converts the PLL description.
func (d *Description) PLLConfig() (*rcc.PLLConfig, error) {
	if d.Clock.PLL == nil {
		return nil, fmt.Errorf("%s: no pll factors: %w", d.Name, rcc.ErrClockSource)
	}
	src, err := rcc.ParseSource(d.Clock.PLL.Source)
	if err != nil {
		return nil, err
	}
	cfg := &rcc.PLLConfig{
		Source: src,
		M:      d.Clock.PLL.M,
		N:      d.Clock.PLL.N,
		P:      d.Clock.PLL.P,
		Q:      d.Clock.PLL.Q,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (d *Description) sourceHz(src rcc.Source) (uint32, error) {
	switch src {
	case rcc.HSI:
		return HSIHz, nil
	case rcc.HSE:
		if d.HSEHz == 0 {
			return 0, fmt.Errorf("%s: hseHz required: %w", d.Name, rcc.ErrClockSource)
		}
		return d.HSEHz, nil
	}
	cfg, err := d.PLLConfig()
	if err != nil {
		return 0, err
	}
	in, err := d.sourceHz(cfg.Source)
	if err != nil {
		return 0, err
	}
	return cfg.OutputHz(in), nil
}

// SystemSource returns the system clock source.
func (d *Description) SystemSource() (rcc.Source, error) {
	if d.Clock.Source == "" {
		return rcc.HSI, nil
	}
	return rcc.ParseSource(d.Clock.Source)
}

// SysClockHz returns the core clock frequency.
func (d *Description) SysClockHz() (uint32, error) {
	src, err := d.SystemSource()
	if err != nil {
		return 0, err
	}
	return d.sourceHz(src)
}

// BusHz returns the clock of a peripheral bus.
func (d *Description) BusHz(bus hal.Bus) (uint32, error) {
	hz, err := d.SysClockHz()
	if err != nil {
		return 0, err
	}
	div := uint32(1)
	switch bus {
	case hal.APB1:
		div = d.APB1Div
	case hal.APB2:
		div = d.APB2Div
	}
	if div == 0 {
		div = 1
	}
	return hz / div, nil
}

// ParseBus parses ahb1, ahb2, apb1 or apb2.
func ParseBus(s string) (hal.Bus, error) {
	for bus := hal.AHB1; bus <= hal.APB2; bus++ {
		if strings.EqualFold(bus.String(), s) {
			return bus, nil
		}
	}
	return 0, hal.OutOfRange(rcc.ErrBus, "bus", s)
}
