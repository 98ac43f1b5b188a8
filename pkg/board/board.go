// Package board assembles a simulated STM32F401 board: the peripheral
// models, the drivers bound to their registers, and the interrupt wiring
// between them.
package board

import (
	"fmt"
	"strings"

	"github.com/golang/glog"

	"github.com/robotalks/mcal.go/pkg/exti"
	fx "github.com/robotalks/mcal.go/pkg/framework"
	"github.com/robotalks/mcal.go/pkg/gpio"
	"github.com/robotalks/mcal.go/pkg/hal"
	"github.com/robotalks/mcal.go/pkg/nvic"
	"github.com/robotalks/mcal.go/pkg/rcc"
	"github.com/robotalks/mcal.go/pkg/scb"
	"github.com/robotalks/mcal.go/pkg/sim"
	"github.com/robotalks/mcal.go/pkg/spin"
	"github.com/robotalks/mcal.go/pkg/systick"
	"github.com/robotalks/mcal.go/pkg/usart"
)

// Options tune how the drivers behave on the simulated hardware.
type Options struct {
	Mode usart.ReceiveMode
	// Waiter bounds every blocking driver call; nil spins forever.
	Waiter spin.Waiter
	// AutoStep advances SysTick on every CTRL read, see sim.SysTick.
	AutoStep uint64
}

// Models holds the simulated peripherals.
type Models struct {
	Interrupts *sim.Interrupts
	SCB        *sim.SCB
	EXTI       *sim.EXTI
	RCC        *sim.RCC
	GPIO       [gpio.NumPorts]*sim.GPIO
	SysTick    *sim.SysTick
	USART      [usart.NumInstances]*sim.USART
}

// Board is a simulated board with its drivers.
type Board struct {
	Desc  *Description
	CPUHz uint32
	Sim   Models
	Clock *sim.Clock

	RCC     *rcc.Controller
	GPIO    *gpio.Controller
	NVIC    *nvic.Controller
	SCB     *scb.Controller
	EXTI    *exti.Controller
	USART   *usart.Driver
	SysTick *systick.Engine
}

// New creates a board from its description. Nothing is programmed until
// Setup.
func New(desc *Description, opts Options) (*Board, error) {
	cpuHz, err := desc.SysClockHz()
	if err != nil {
		return nil, err
	}
	ints := sim.NewInterrupts()
	b := &Board{Desc: desc, CPUHz: cpuHz, Sim: Models{Interrupts: ints}}

	b.Sim.RCC = sim.NewRCC()
	b.RCC = rcc.New(rccRegisters(b.Sim.RCC))
	b.RCC.Waiter = opts.Waiter

	b.GPIO = gpio.New()
	for p := hal.PortA; p <= hal.PortH; p++ {
		g := sim.NewGPIO(p.String())
		b.Sim.GPIO[p] = g
		b.GPIO.Attach(p, gpioRegisters(g))
	}

	b.NVIC = nvic.New(nvicRegisters(ints))
	b.Sim.SCB = sim.NewSCB(ints)
	b.SCB = scb.New(scbRegisters(b.Sim.SCB))

	b.Sim.EXTI = sim.NewEXTI(ints)
	for p := hal.PortA; p <= hal.PortH; p++ {
		b.Sim.EXTI.AttachPort(p, b.Sim.GPIO[p])
	}
	b.EXTI = exti.New(extiRegisters(b.Sim.EXTI), b.NVIC)
	for _, irq := range exti.IRQs {
		irq := irq
		ints.Attach(irq, func() { b.EXTI.HandleIRQ(irq) })
	}
	if desc.Button != "" {
		port, pin, err := gpio.ParsePin(desc.Button)
		if err != nil {
			return nil, err
		}
		// pulled up, pressing drives it low
		b.Sim.GPIO[port].Drive(pin, true)
	}

	b.Sim.SysTick = sim.NewSysTick(ints)
	b.Sim.SysTick.AutoStep = opts.AutoStep
	b.SysTick = systick.New(systickRegisters(b.Sim.SysTick), cpuHz)
	b.SysTick.Waiter = opts.Waiter
	ints.Attach(sim.SysTickIRQ, b.SysTick.HandleIRQ)

	ports := make([]*usart.Port, 0, len(desc.USARTs))
	for _, u := range desc.USARTs {
		idx, err := usart.ParseIndex(u.Name)
		if err != nil {
			return nil, err
		}
		bus, err := ParseBus(u.Bus)
		if err != nil {
			return nil, err
		}
		refHz, err := desc.BusHz(bus)
		if err != nil {
			return nil, err
		}
		irq := hal.IRQ(u.IRQ)
		m := sim.NewUSART(idx.String(), irq, ints)
		b.Sim.USART[idx] = m
		port := &usart.Port{
			Index:      idx,
			Regs:       usartRegisters(m),
			RefHz:      refHz,
			Waiter:     opts.Waiter,
			Mode:       opts.Mode,
			IRQ:        irq,
			Interrupts: b.NVIC,
		}
		ints.Attach(irq, port.HandleInterrupt)
		ports = append(ports, port)
	}
	b.USART = usart.NewDriver(ports...)
	b.Clock = sim.NewClock(uint64(cpuHz), b.Sim.SysTick)
	return b, nil
}

// NewByName creates a board from an embedded description.
func NewByName(name string, opts Options) (*Board, error) {
	desc, err := All().Find(name)
	if err != nil {
		return nil, err
	}
	return New(desc, opts)
}

// Setup brings the board up the way firmware does: system clock, then
// peripheral clocks, pins and interrupt priorities of every USART.
func (b *Board) Setup() error {
	if err := b.setupClock(); err != nil {
		return fmt.Errorf("clock: %w", err)
	}
	for _, u := range b.Desc.USARTs {
		if err := b.setupUSART(u); err != nil {
			return fmt.Errorf("%s: %w", u.Name, err)
		}
	}
	grouping, err := b.Desc.Grouping()
	if err != nil {
		return err
	}
	if err := b.SCB.SetPriorityGrouping(grouping); err != nil {
		return fmt.Errorf("priority grouping: %w", err)
	}
	if err := b.SCB.SetPriority(scb.SysTick, b.Desc.SysTickPriority); err != nil {
		return fmt.Errorf("systick priority: %w", err)
	}
	if b.Desc.Button != "" {
		if err := b.setupButton(); err != nil {
			return fmt.Errorf("button: %w", err)
		}
	}
	if b.Desc.LED != "" {
		port, pin, _ := gpio.ParsePin(b.Desc.LED)
		if err := b.enablePort(port); err != nil {
			return err
		}
		if err := b.GPIO.ConfigurePin(&hal.PinConfig{Port: port, Pin: pin, Mode: hal.OutputPushPull}); err != nil {
			return fmt.Errorf("led: %w", err)
		}
	}
	glog.Infof("board %s up, SYSCLK %d Hz", b.Desc.Name, b.CPUHz)
	return nil
}

func (b *Board) setupClock() error {
	src, err := b.Desc.SystemSource()
	if err != nil {
		return err
	}
	switch src {
	case rcc.HSE:
		if err := b.RCC.EnableClockSource(rcc.HSE); err != nil {
			return err
		}
	case rcc.PLL:
		cfg, err := b.Desc.PLLConfig()
		if err != nil {
			return err
		}
		if cfg.Source == rcc.HSE {
			if err := b.RCC.EnableClockSource(rcc.HSE); err != nil {
				return err
			}
		}
		if err := b.RCC.ConfigurePLL(cfg); err != nil {
			return err
		}
		if err := b.RCC.EnableClockSource(rcc.PLL); err != nil {
			return err
		}
	}
	return b.RCC.SelectSystemClock(src)
}

func portClockBit(port hal.Port) uint8 {
	if port == hal.PortH {
		return rcc.AHB1GPIOH
	}
	return uint8(port)
}

func (b *Board) enablePort(port hal.Port) error {
	return b.RCC.EnablePeripheralClock(hal.AHB1, portClockBit(port))
}

func (b *Board) setupUSART(u *USARTDesc) error {
	bus, err := ParseBus(u.Bus)
	if err != nil {
		return err
	}
	if err := b.RCC.EnablePeripheralClock(bus, u.ClockBit); err != nil {
		return err
	}
	for _, name := range []string{u.TX, u.RX} {
		port, pin, err := gpio.ParsePin(name)
		if err != nil {
			return err
		}
		if err := b.enablePort(port); err != nil {
			return err
		}
		if err := b.GPIO.ConfigurePin(&hal.PinConfig{Port: port, Pin: pin, Mode: hal.AlternatePushPull}); err != nil {
			return err
		}
		if err := b.GPIO.SetPinFunction(port, pin, hal.AltFunc(u.AF)); err != nil {
			return err
		}
	}
	return b.NVIC.SetPriority(hal.IRQ(u.IRQ), u.Priority)
}

func (b *Board) setupButton() error {
	port, pin, err := gpio.ParsePin(b.Desc.Button)
	if err != nil {
		return err
	}
	if err := b.enablePort(port); err != nil {
		return err
	}
	if err := b.GPIO.ConfigurePin(&hal.PinConfig{Port: port, Pin: pin, Mode: hal.InputPullUp}); err != nil {
		return err
	}
	return b.RCC.EnablePeripheralClock(hal.APB2, rcc.APB2SYSCFG)
}

// Button returns the EXTI routing of the user button, pressed on the
// falling edge.
func (b *Board) Button() (*exti.Config, bool) {
	if b.Desc.Button == "" {
		return nil, false
	}
	port, pin, err := gpio.ParsePin(b.Desc.Button)
	if err != nil {
		return nil, false
	}
	return &exti.Config{Line: exti.Line(pin), Source: port, Trigger: exti.Falling}, true
}

// DrivePin forces the external level of a pin, e.g. PC13.
func (b *Board) DrivePin(name string, high bool) error {
	port, pin, err := gpio.ParsePin(name)
	if err != nil {
		return err
	}
	b.Sim.GPIO[port].Drive(pin, high)
	return nil
}

// PressButton drives the button low when pressed and high when released.
func (b *Board) PressButton(pressed bool) error {
	if b.Desc.Button == "" {
		return fmt.Errorf("%s: no button: %w", b.Desc.Name, gpio.ErrPin)
	}
	return b.DrivePin(b.Desc.Button, !pressed)
}

// Device returns the model of a USART instance.
func (b *Board) Device(i usart.Index) (*sim.USART, error) {
	if !i.Valid() || b.Sim.USART[i] == nil {
		return nil, hal.OutOfRange(hal.ErrIndex, "instance", int(i))
	}
	return b.Sim.USART[i], nil
}

// Step advances simulated time by CPU cycles.
func (b *Board) Step(cycles uint64) {
	b.Clock.Advance(cycles)
}

// AddToLoop implements fx.LoopAdder.
func (b *Board) AddToLoop(l *fx.Loop) {
	l.Add(b.Clock)
}

// String implements fmt.Stringer.
func (b *Board) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s\n", b.Desc.Name, b.Desc.Description)
	fmt.Fprintf(&sb, "  SYSCLK %d Hz (%s)\n", b.CPUHz, b.RCC.SystemClock())
	for _, p := range b.USART.Ports() {
		cfg, ok := p.Config()
		state := "unconfigured"
		if ok {
			state = fmt.Sprintf("%d %s parity=%s", cfg.BaudRate, cfg.Duplex, cfg.Parity)
		}
		fmt.Fprintf(&sb, "  %s @%#08x IRQ %d ref %d Hz: %s\n", p.Index, usart.Bases[p.Index], p.IRQ, p.RefHz, state)
	}
	fmt.Fprintf(&sb, "  NVIC priority grouping %s\n", b.SCB.PriorityGrouping())
	if b.Desc.Button != "" {
		fmt.Fprintf(&sb, "  button %s\n", b.Desc.Button)
	}
	fmt.Fprintf(&sb, "  SysTick %s at %d Hz", b.SysTick.Mode(), b.SysTick.TickHz())
	return sb.String()
}
