package websocket

import "golang.org/x/net/websocket"

// Conn exchanges whole binary messages over a websocket.
type Conn websocket.Conn

// NewConn wraps websocket.Conn.
func NewConn(ws *websocket.Conn) *Conn {
	return (*Conn)(ws)
}

// ReadPacket receives one message.
func (c *Conn) ReadPacket() (pkt []byte, err error) {
	err = websocket.Message.Receive((*websocket.Conn)(c), &pkt)
	return
}

// WritePacket sends pkt as one binary message.
func (c *Conn) WritePacket(pkt []byte) error {
	return websocket.Message.Send((*websocket.Conn)(c), pkt)
}

// Close closes the connection.
func (c *Conn) Close() error {
	return (*websocket.Conn)(c).Close()
}

// Dial connects to a console endpoint, e.g. ws://localhost:8401/usart2.
func Dial(url string) (*Conn, error) {
	ws, err := websocket.Dial(url, "", "http://localhost/")
	if err != nil {
		return nil, err
	}
	return NewConn(ws), nil
}
