// Package mqtt bridges a simulated board to an MQTT broker.
//
// Topics, relative to the broker URL prefix:
//
//	<id>/meta           retained BoardInfo, cleared on shutdown
//	<id>/usart<N>/tx    SerialTx with bytes the instance transmitted
//	<id>/usart<N>/rx    SerialRx or raw bytes to be received by the instance
//	<id>/systick/tick   Tick after timer expirations
//	<id>/pin/<PIN>      1 or 0 drives the external level of a pin, e.g. PC13
package mqtt

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/mcal.go/pkg/board"
	fx "github.com/robotalks/mcal.go/pkg/framework"
	"github.com/robotalks/mcal.go/pkg/gpio"
	"github.com/robotalks/mcal.go/pkg/msgs"
	"github.com/robotalks/mcal.go/pkg/systick"
	"github.com/robotalks/mcal.go/pkg/usart"
)

type pinLevel struct {
	name string
	high bool
}

// Bridge publishes board activity and injects serial input.
type Bridge struct {
	Transport Transport
	Board     *board.Board
	ID        string

	lock      sync.Mutex
	tx        [usart.NumInstances][]byte
	rx        [usart.NumInstances][]byte
	pins      []pinLevel
	ticks     uint64
	published uint64
	closers   []io.Closer
	taps      []func()
	loop      fx.LoopControl
}

// New creates a Bridge.
func New(t Transport, b *board.Board, id string) *Bridge {
	return &Bridge{Transport: t, Board: b, ID: id}
}

// InstanceTopic is the topic segment of an instance, e.g. usart2.
func InstanceTopic(i usart.Index) string {
	return strings.ToLower(i.String())
}

func (br *Bridge) topic(parts ...string) string {
	return br.ID + "/" + strings.Join(parts, "/")
}

// Start publishes the board meta, taps transmitters and subscribes to
// receive topics.
func (br *Bridge) Start() error {
	info := &msgs.BoardInfo{}
	info.Name = br.Board.Desc.Name
	info.SysclkHz = br.Board.CPUHz
	for _, p := range br.Board.USART.Ports() {
		info.Instances = append(info.Instances, p.Index.String())
	}
	if err := br.publish(br.topic("meta"), info, true); err != nil {
		return err
	}
	for _, p := range br.Board.USART.Ports() {
		idx := p.Index
		dev, err := br.Board.Device(idx)
		if err != nil {
			return err
		}
		br.taps = append(br.taps, dev.Subscribe(func(c byte) {
			br.lock.Lock()
			br.tx[idx] = append(br.tx[idx], c)
			br.lock.Unlock()
		}))
		closer, err := br.Transport.Subscribe(br.topic(InstanceTopic(idx), "rx"), func(_ string, payload []byte) {
			br.queueRx(idx, payload)
		})
		if err != nil {
			return err
		}
		br.closers = append(br.closers, closer)
	}
	closer, err := br.Transport.Subscribe(br.topic("pin", "+"), br.queuePin)
	if err != nil {
		return err
	}
	br.closers = append(br.closers, closer)
	return nil
}

// Stop undoes Start and clears the retained meta.
func (br *Bridge) Stop() {
	for _, cancel := range br.taps {
		cancel()
	}
	br.taps = nil
	for _, c := range br.closers {
		c.Close()
	}
	br.closers = nil
	if err := br.Transport.Publish(br.topic("meta"), nil, true); err != nil {
		glog.Warningf("clear meta: %v", err)
	}
}

// queueRx accepts SerialRx envelopes or raw bytes.
func (br *Bridge) queueRx(idx usart.Index, payload []byte) {
	data := payload
	if msg, err := msgs.DecodeMessage(payload); err == nil {
		if rx, ok := msg.(*msgs.SerialRx); ok {
			data = rx.Data
		}
	}
	br.lock.Lock()
	br.rx[idx] = append(br.rx[idx], data...)
	loop := br.loop
	br.lock.Unlock()
	if loop != nil {
		loop.TriggerNext()
	}
}

// ParseLevel accepts 1/0, high/low and on/off.
func ParseLevel(payload []byte) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(string(payload))) {
	case "1", "high", "on":
		return true, nil
	case "0", "low", "off":
		return false, nil
	}
	return false, fmt.Errorf("level %q: %w", payload, gpio.ErrLevel)
}

func (br *Bridge) queuePin(topic string, payload []byte) {
	name := strings.ToUpper(path.Base(topic))
	if _, _, err := gpio.ParsePin(name); err != nil {
		glog.Warningf("%s: %v", topic, err)
		return
	}
	high, err := ParseLevel(payload)
	if err != nil {
		glog.Warningf("%s: %v", topic, err)
		return
	}
	br.lock.Lock()
	br.pins = append(br.pins, pinLevel{name: name, high: high})
	loop := br.loop
	br.lock.Unlock()
	if loop != nil {
		loop.TriggerNext()
	}
}

// WrapTick counts expirations before calling h, which may be nil.
func (br *Bridge) WrapTick(h systick.Handler) systick.Handler {
	return systick.HandleTickFunc(func() {
		br.lock.Lock()
		br.ticks++
		br.lock.Unlock()
		if h != nil {
			h.HandleTick()
		}
	})
}

// Control implements fx.Controller. Received bytes and pin levels are
// applied on the loop goroutine, then pending events are published.
func (br *Bridge) Control(fx.ControlContext) error {
	br.lock.Lock()
	rx := br.rx
	br.rx = [usart.NumInstances][]byte{}
	pins := br.pins
	br.pins = nil
	br.lock.Unlock()
	for _, p := range pins {
		if err := br.Board.DrivePin(p.name, p.high); err != nil {
			glog.Warningf("pin %s: %v", p.name, err)
		}
	}
	for i, data := range rx {
		if len(data) == 0 {
			continue
		}
		if dev, err := br.Board.Device(usart.Index(i)); err == nil {
			if n := dev.Inject(data...); n < len(data) {
				glog.V(2).Infof("%s: receiver off, dropped %d bytes", usart.Index(i), len(data)-n)
			}
		}
	}
	return br.Flush()
}

// Flush publishes pending transmit frames and the tick count.
func (br *Bridge) Flush() error {
	br.lock.Lock()
	tx := br.tx
	br.tx = [usart.NumInstances][]byte{}
	ticks, published := br.ticks, br.published
	br.published = ticks
	br.lock.Unlock()

	for i, data := range tx {
		if len(data) == 0 {
			continue
		}
		idx := usart.Index(i)
		frame := &msgs.SerialTx{}
		frame.Instance = idx.String()
		frame.Data = data
		if err := br.publish(br.topic(InstanceTopic(idx), "tx"), frame, false); err != nil {
			return err
		}
	}
	if ticks != published {
		tick := &msgs.Tick{}
		tick.Count = ticks
		tick.Cycles = br.Board.Clock.Cycles()
		tick.Mode = br.Board.SysTick.Mode().String()
		return br.publish(br.topic("systick", "tick"), tick, false)
	}
	return nil
}

func (br *Bridge) publish(topic string, msg msgs.Message, retain bool) error {
	payload, err := msgs.Encode(msg)
	if err != nil {
		return err
	}
	return br.Transport.Publish(topic, payload, retain)
}

// AddToLoop implements fx.LoopAdder.
func (br *Bridge) AddToLoop(l *fx.Loop) {
	br.lock.Lock()
	br.loop = l
	br.lock.Unlock()
	l.AddController(fx.PrLvBridge, br)
}

// Run implements fx.Runnable.
func (br *Bridge) Run(ctx context.Context) error {
	if q, ok := br.Transport.(*Queue); ok {
		if err := q.Connect(); err != nil {
			return err
		}
		defer q.Close()
	}
	if err := br.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	br.Stop()
	return nil
}
