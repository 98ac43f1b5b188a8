package usart

// RxHandler receives bytes from the receive interrupt.
type RxHandler interface {
	HandleByte(b byte)
}

// HandleByteFunc is func type of RxHandler.
type HandleByteFunc func(b byte)

// HandleByte implements RxHandler.
func (f HandleByteFunc) HandleByte(b byte) {
	f(b)
}

// ReceiveMode selects how received bytes are delivered.
type ReceiveMode int

// Receive modes.
const (
	// Polling leaves the receive interrupt disabled.
	Polling ReceiveMode = iota
	// Interrupt enables RXNEIE and dispatches bytes to the RxHandler.
	Interrupt
)
