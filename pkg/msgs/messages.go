package msgs

import "github.com/golang/protobuf/proto"

// SerialTx is emitted with bytes a USART transmitted.
type SerialTx struct {
	SerialFramePB
}

// NewMessage implements Message.
func (m *SerialTx) NewMessage() Message { return &SerialTx{} }

// TypeID implements Message.
func (m *SerialTx) TypeID() uint32 { return SerialTxTypeID }

// Serializable implements Message.
func (m *SerialTx) Serializable() proto.Message { return &m.SerialFramePB }

// SerialRx asks the board to receive bytes on a USART.
type SerialRx struct {
	SerialFramePB
}

// NewMessage implements Message.
func (m *SerialRx) NewMessage() Message { return &SerialRx{} }

// TypeID implements Message.
func (m *SerialRx) TypeID() uint32 { return SerialRxTypeID }

// Serializable implements Message.
func (m *SerialRx) Serializable() proto.Message { return &m.SerialFramePB }

// Tick is emitted as the timer expires.
type Tick struct {
	TickPB
}

// NewMessage implements Message.
func (m *Tick) NewMessage() Message { return &Tick{} }

// TypeID implements Message.
func (m *Tick) TypeID() uint32 { return TickTypeID }

// Serializable implements Message.
func (m *Tick) Serializable() proto.Message { return &m.TickPB }

// BoardInfo is the retained meta of a board.
type BoardInfo struct {
	BoardInfoPB
}

// NewMessage implements Message.
func (m *BoardInfo) NewMessage() Message { return &BoardInfo{} }

// TypeID implements Message.
func (m *BoardInfo) TypeID() uint32 { return BoardInfoTypeID }

// Serializable implements Message.
func (m *BoardInfo) Serializable() proto.Message { return &m.BoardInfoPB }

// TypeID Groups
const (
	GroupBoard  uint32 = 0x00000000
	GroupSerial uint32 = 0x00010000
	GroupTimer  uint32 = 0x00020000
)

// TypeIDs
const (
	BoardInfoTypeID uint32 = TypeIDKindEvent | GroupBoard | 0x0000
	SerialRxTypeID  uint32 = TypeIDKindCommand | GroupSerial | 0x0000
	SerialTxTypeID  uint32 = TypeIDKindEvent | GroupSerial | 0x0001
	TickTypeID      uint32 = TypeIDKindEvent | GroupTimer | 0x0000
)

// MessageTypes are predefined mapping of type ID to messages.
var MessageTypes = map[uint32]Message{
	BoardInfoTypeID: (*BoardInfo)(nil),
	SerialRxTypeID:  (*SerialRx)(nil),
	SerialTxTypeID:  (*SerialTx)(nil),
	TickTypeID:      (*Tick)(nil),
}
