package msgs

import "github.com/golang/protobuf/proto"

// Wire forms. Field numbers are part of the protocol and must not change.

// TypedPB is the wire form of Typed.
type TypedPB struct {
	TypeId  uint32 `protobuf:"varint,1,opt,name=type_id,json=typeId,proto3" json:"type_id,omitempty"`
	Message []byte `protobuf:"bytes,2,opt,name=message,proto3" json:"message,omitempty"`
}

// Reset implements proto.Message.
func (m *TypedPB) Reset() { *m = TypedPB{} }

// String implements proto.Message.
func (m *TypedPB) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*TypedPB) ProtoMessage() {}

// SerialFramePB carries bytes of one USART instance.
type SerialFramePB struct {
	Instance string `protobuf:"bytes,1,opt,name=instance,proto3" json:"instance,omitempty"`
	Data     []byte `protobuf:"bytes,2,opt,name=data,proto3" json:"data,omitempty"`
}

// Reset implements proto.Message.
func (m *SerialFramePB) Reset() { *m = SerialFramePB{} }

// String implements proto.Message.
func (m *SerialFramePB) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*SerialFramePB) ProtoMessage() {}

// TickPB reports timer expirations.
type TickPB struct {
	Count  uint64 `protobuf:"varint,1,opt,name=count,proto3" json:"count,omitempty"`
	Cycles uint64 `protobuf:"varint,2,opt,name=cycles,proto3" json:"cycles,omitempty"`
	Mode   string `protobuf:"bytes,3,opt,name=mode,proto3" json:"mode,omitempty"`
}

// Reset implements proto.Message.
func (m *TickPB) Reset() { *m = TickPB{} }

// String implements proto.Message.
func (m *TickPB) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*TickPB) ProtoMessage() {}

// BoardInfoPB describes a running board.
type BoardInfoPB struct {
	Name      string   `protobuf:"bytes,1,opt,name=name,proto3" json:"name,omitempty"`
	SysclkHz  uint32   `protobuf:"varint,2,opt,name=sysclk_hz,json=sysclkHz,proto3" json:"sysclk_hz,omitempty"`
	Instances []string `protobuf:"bytes,3,rep,name=instances,proto3" json:"instances,omitempty"`
}

// Reset implements proto.Message.
func (m *BoardInfoPB) Reset() { *m = BoardInfoPB{} }

// String implements proto.Message.
func (m *BoardInfoPB) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*BoardInfoPB) ProtoMessage() {}
