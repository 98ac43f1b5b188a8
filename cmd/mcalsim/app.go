package main

import (
	"bytes"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/mcal.go/pkg/board"
	"github.com/robotalks/mcal.go/pkg/exti"
	fx "github.com/robotalks/mcal.go/pkg/framework"
	"github.com/robotalks/mcal.go/pkg/gpio"
	"github.com/robotalks/mcal.go/pkg/systick"
	"github.com/robotalks/mcal.go/pkg/usart"
)

// AppConfig is the firmware application setup.
type AppConfig struct {
	Instance usart.Index
	Serial   usart.Config
	// Interval is the greeting period in milliseconds.
	Interval uint16
	Greeting string
}

// DefaultAppConfig greets on USART2 at 9600 8N1 every 500ms.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Instance: usart.USART2,
		Serial:   *usart.DefaultConfig(),
		Interval: 500,
		Greeting: "Mamoun was here!",
	}
}

// App is the firmware running on the simulated board. It sends the
// greeting and toggles the LED on every timer expiry, and echoes received
// lines back. The user button pauses and resumes the greeting.
type App struct {
	Board  *board.Board
	Config AppConfig

	lock sync.Mutex
	line []byte
	rx   [][]byte
	sent uint64

	presses int
	paused  bool
}

// NewApp creates an App.
func NewApp(b *board.Board, cfg AppConfig) *App {
	return &App{Board: b, Config: cfg}
}

// Start configures the USART and arms the periodic timer with tick as the
// expiry handler, nil for the App itself.
func (a *App) Start(tick systick.Handler) error {
	if err := a.Board.USART.Configure(a.Config.Instance, &a.Config.Serial); err != nil {
		return err
	}
	if port, err := a.Board.USART.Port(a.Config.Instance); err == nil && port.Mode == usart.Interrupt {
		if err := port.SetHandler(a); err != nil {
			return err
		}
	}
	if tick == nil {
		tick = a
	}
	a.Board.SysTick.Init(systick.CPUClock)
	if err := a.Board.SysTick.SetCallback(tick); err != nil {
		return err
	}
	if err := a.Board.SysTick.SetPeriodicInterval(a.Config.Interval); err != nil {
		return err
	}
	if cfg, ok := a.Board.Button(); ok {
		if err := a.Board.EXTI.SetCallback(cfg.Line, a); err != nil {
			return err
		}
		if err := a.Board.EXTI.Configure(cfg); err != nil {
			return err
		}
	}
	glog.Infof("app: %s at %d baud, greeting every %dms", a.Config.Instance, a.Config.Serial.BaudRate, a.Config.Interval)
	return nil
}

// HandleTick implements systick.Handler.
func (a *App) HandleTick() {
	if err := a.Board.USART.SendString(a.Config.Instance, a.Config.Greeting); err != nil {
		glog.Warningf("app: send: %v", err)
		return
	}
	a.lock.Lock()
	a.sent++
	a.lock.Unlock()
	if led := a.Board.Desc.LED; led != "" {
		if port, pin, err := gpio.ParsePin(led); err == nil {
			a.Board.GPIO.TogglePin(port, pin)
		}
	}
}

// HandleByte implements usart.RxHandler.
func (a *App) HandleByte(c byte) {
	a.lock.Lock()
	defer a.lock.Unlock()
	if c == '\r' || c == '\n' {
		if len(a.line) > 0 {
			a.rx = append(a.rx, a.line)
			a.line = nil
		}
		return
	}
	a.line = append(a.line, c)
}

// HandleLine implements exti.Handler.
func (a *App) HandleLine(exti.Line) {
	a.lock.Lock()
	a.presses++
	a.lock.Unlock()
}

// Paused reports whether the button has stopped the greeting.
func (a *App) Paused() bool {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.paused
}

// Sent is the number of greetings sent.
func (a *App) Sent() uint64 {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.sent
}

// Control implements fx.Controller. Complete lines are echoed and button
// presses applied outside the interrupt handlers.
func (a *App) Control(fx.ControlContext) error {
	a.lock.Lock()
	lines := a.rx
	a.rx = nil
	presses := a.presses
	a.presses = 0
	a.lock.Unlock()
	for ; presses > 0; presses-- {
		if err := a.togglePause(); err != nil {
			return err
		}
	}
	for _, line := range lines {
		glog.V(1).Infof("app: received %q", line)
		reply := append([]byte("echo: "), bytes.TrimSpace(line)...)
		if err := a.Board.USART.SendBuffer(a.Config.Instance, append(reply, '\r', '\n')); err != nil {
			return err
		}
	}
	return nil
}

// AddToLoop implements fx.LoopAdder.
func (a *App) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvApp, a)
}

func (a *App) togglePause() error {
	a.lock.Lock()
	paused := !a.paused
	a.paused = paused
	a.lock.Unlock()
	if paused {
		glog.Info("app: greeting paused")
		a.Board.SysTick.Deinit()
		return nil
	}
	glog.Info("app: greeting resumed")
	return a.Board.SysTick.SetPeriodicInterval(a.Config.Interval)
}
