package systick

import "github.com/robotalks/mcal.go/pkg/reg"

// Base is the SysTick register block address.
const Base = 0xe000e010

// Register offsets from Base.
const (
	OffsetCTRL  = 0x00
	OffsetLOAD  = 0x04
	OffsetVAL   = 0x08
	OffsetCALIB = 0x0c
)

// CTRL bits.
const (
	CtrlEnable    uint32 = 1 << 0
	CtrlTickInt   uint32 = 1 << 1
	CtrlClkSource uint32 = 1 << 2
	CtrlCountFlag uint32 = 1 << 16
)

// MaxTicks is the largest reload value of the 24-bit counter.
const MaxTicks = 0x00ffffff

// Registers is the SysTick register block.
type Registers struct {
	CTRL  reg.Register
	LOAD  reg.Register
	VAL   reg.Register
	CALIB reg.Register
}
