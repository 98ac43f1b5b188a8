// Package websocket serves the USARTs of a simulated board as websocket
// consoles at /usart<N>. Bytes a USART transmits are sent to every client of
// its endpoint; bytes from a client are received by the USART.
package websocket

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/robotalks/mcal.go/pkg/board"
	fx "github.com/robotalks/mcal.go/pkg/framework"
	"github.com/robotalks/mcal.go/pkg/usart"
)

// outQueue is the number of packets buffered per client.
const outQueue = 64

// Console is the websocket console server.
type Console struct {
	Board *board.Board
	Addr  string

	lock    sync.Mutex
	rx      [usart.NumInstances][]byte
	clients map[*client]struct{}
	loop    fx.LoopControl
}

type client struct {
	idx     usart.Index
	conn    *Conn
	out     chan []byte
	done    chan struct{}
	lock    sync.Mutex
	pending []byte
}

// NewConsole creates a Console.
func NewConsole(b *board.Board, addr string) *Console {
	return &Console{Board: b, Addr: addr, clients: make(map[*client]struct{})}
}

// Path is the endpoint of an instance.
func Path(i usart.Index) string {
	return "/" + strings.ToLower(i.String())
}

// Handler returns the HTTP handler with an endpoint per instance.
func (c *Console) Handler() http.Handler {
	mux := http.NewServeMux()
	for _, p := range c.Board.USART.Ports() {
		idx := p.Index
		mux.Handle(Path(idx), websocket.Handler(func(ws *websocket.Conn) {
			c.serve(idx, NewConn(ws))
		}))
	}
	return mux
}

func (c *Console) serve(idx usart.Index, conn *Conn) {
	dev, err := c.Board.Device(idx)
	if err != nil {
		return
	}
	cl := &client{idx: idx, conn: conn, out: make(chan []byte, outQueue), done: make(chan struct{})}
	cancel := dev.Subscribe(func(b byte) {
		cl.lock.Lock()
		cl.pending = append(cl.pending, b)
		cl.lock.Unlock()
	})
	c.lock.Lock()
	c.clients[cl] = struct{}{}
	c.lock.Unlock()
	glog.V(2).Infof("console %s: client connected", idx)

	go cl.writeLoop()
	for {
		pkt, err := conn.ReadPacket()
		if err != nil {
			break
		}
		c.lock.Lock()
		c.rx[idx] = append(c.rx[idx], pkt...)
		loop := c.loop
		c.lock.Unlock()
		if loop != nil {
			loop.TriggerNext()
		}
	}

	cancel()
	c.lock.Lock()
	delete(c.clients, cl)
	c.lock.Unlock()
	close(cl.done)
	glog.V(2).Infof("console %s: client gone", idx)
}

func (cl *client) writeLoop() {
	for {
		select {
		case pkt := <-cl.out:
			if err := cl.conn.WritePacket(pkt); err != nil {
				cl.conn.Close()
				return
			}
		case <-cl.done:
			return
		}
	}
}

// Control implements fx.Controller. Client input is received on the loop
// goroutine and transmitted bytes are handed to the client writers.
func (c *Console) Control(fx.ControlContext) error {
	c.lock.Lock()
	rx := c.rx
	c.rx = [usart.NumInstances][]byte{}
	clients := make([]*client, 0, len(c.clients))
	for cl := range c.clients {
		clients = append(clients, cl)
	}
	c.lock.Unlock()

	for i, data := range rx {
		if len(data) == 0 {
			continue
		}
		if dev, err := c.Board.Device(usart.Index(i)); err == nil {
			dev.Inject(data...)
		}
	}
	for _, cl := range clients {
		cl.lock.Lock()
		pkt := cl.pending
		cl.pending = nil
		cl.lock.Unlock()
		if len(pkt) == 0 {
			continue
		}
		select {
		case cl.out <- pkt:
		default:
			glog.Warningf("console %s: client too slow, dropped %d bytes", cl.idx, len(pkt))
		}
	}
	return nil
}

// AddToLoop implements fx.LoopAdder.
func (c *Console) AddToLoop(l *fx.Loop) {
	c.lock.Lock()
	c.loop = l
	c.lock.Unlock()
	l.AddController(fx.PrLvBridge, c)
}

// Run implements fx.Runnable.
func (c *Console) Run(ctx context.Context) error {
	server := &http.Server{Addr: c.Addr, Handler: c.Handler()}
	errCh := make(chan error, 1)
	go func() {
		glog.Infof("console listening on %s", c.Addr)
		errCh <- server.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
