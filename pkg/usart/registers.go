package usart

import (
	"github.com/robotalks/mcal.go/pkg/hal"
	"github.com/robotalks/mcal.go/pkg/reg"
)

// Bases are the register block addresses of the instances.
var Bases = [NumInstances]uintptr{
	USART1: 0x40011000,
	USART2: 0x40004400,
	USART6: 0x40011400,
}

// Register offsets from the instance base address.
const (
	OffsetSR   = 0x00
	OffsetDR   = 0x04
	OffsetBRR  = 0x08
	OffsetCR1  = 0x0c
	OffsetCR2  = 0x10
	OffsetCR3  = 0x14
	OffsetGTPR = 0x18
)

// Status register bits.
const (
	SRRXNE uint = 5
	SRTC   uint = 6
)

// Control register 1 bits.
const (
	CR1RE     uint = 2
	CR1TE     uint = 3
	CR1RXNEIE uint = 5
	CR1PS     uint = 9
	CR1PCE    uint = 10
	CR1UE     uint = 13
)

const brrMantissaShift = 4

// Registers is the register block of one instance.
type Registers struct {
	SR   reg.Register
	DR   reg.Register
	BRR  reg.Register
	CR1  reg.Register
	CR2  reg.Register
	CR3  reg.Register
	GTPR reg.Register
}

// Index identifies a USART instance.
type Index int

// Instances.
const (
	USART1 Index = iota
	USART2
	USART6

	NumInstances = 3
)

// String implements fmt.Stringer.
func (i Index) String() string {
	switch i {
	case USART1:
		return "USART1"
	case USART2:
		return "USART2"
	case USART6:
		return "USART6"
	}
	return "USART(?)"
}

// Valid reports whether i is one of the fixed instances.
func (i Index) Valid() bool {
	return i >= USART1 && i <= USART6
}

// ParseIndex accepts 0..2 or the peripheral numbers 1, 2, 6 prefixed by
// "usart"/"uart", e.g. "usart6".
func ParseIndex(s string) (Index, error) {
	switch s {
	case "0", "usart1", "USART1", "uart1", "UART1":
		return USART1, nil
	case "1", "usart2", "USART2", "uart2", "UART2":
		return USART2, nil
	case "2", "usart6", "USART6", "uart6", "UART6":
		return USART6, nil
	}
	return 0, hal.OutOfRange(hal.ErrIndex, "instance", s)
}
