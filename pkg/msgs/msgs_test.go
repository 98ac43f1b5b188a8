package msgs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope(t *testing.T) {
	tx := &SerialTx{SerialFramePB: SerialFramePB{Instance: "USART2", Data: []byte("Mamoun was here!\x00")}}
	data, err := Encode(tx)
	require.NoError(t, err)

	typed, err := DecodeTyped(data)
	require.NoError(t, err)
	assert.Equal(t, SerialTxTypeID, typed.TypeId)
	assert.True(t, typed.IsEvent())
	assert.False(t, typed.IsCommand())

	msg, err := typed.Decode()
	require.NoError(t, err)
	got, ok := msg.(*SerialTx)
	require.True(t, ok)
	assert.Equal(t, "USART2", got.Instance)
	assert.Equal(t, tx.Data, got.Data)
}

func TestCommandKind(t *testing.T) {
	data, err := Encode(&SerialRx{SerialFramePB: SerialFramePB{Instance: "USART1", Data: []byte{1}}})
	require.NoError(t, err)
	typed, err := DecodeTyped(data)
	require.NoError(t, err)
	assert.True(t, typed.IsCommand())
	assert.Equal(t, GroupSerial, typed.TypeId&TypeIDMaskGroup)
}

func TestUnknownType(t *testing.T) {
	typed := &Typed{TypedPB: TypedPB{TypeId: 0x7fff}}
	_, err := typed.Decode()
	var unknown *ErrUnknownType
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, uint32(0x7fff), unknown.TypeID)
	assert.Contains(t, err.Error(), "7fff")
}

func TestDecodeMessage(t *testing.T) {
	data, err := Encode(&Tick{TickPB: TickPB{Count: 3, Cycles: 48000, Mode: "periodic"}})
	require.NoError(t, err)
	msg, err := DecodeMessage(data)
	require.NoError(t, err)
	tick := msg.(*Tick)
	assert.Equal(t, uint64(3), tick.Count)
	assert.Equal(t, "periodic", tick.Mode)

	data, err = Encode(&BoardInfo{BoardInfoPB: BoardInfoPB{Name: "f401-hsi", SysclkHz: 16000000, Instances: []string{"USART1", "USART2"}}})
	require.NoError(t, err)
	msg, err = DecodeMessage(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"USART1", "USART2"}, msg.(*BoardInfo).Instances)
}
