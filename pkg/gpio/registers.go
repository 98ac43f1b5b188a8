package gpio

import (
	"github.com/robotalks/mcal.go/pkg/hal"
	"github.com/robotalks/mcal.go/pkg/reg"
)

// Port geometry.
const (
	NumPorts    = 6
	PinsPerPort = 16
)

// Bases are the register block addresses of ports A..E and H.
var Bases = [NumPorts]uintptr{
	hal.PortA: 0x40020000,
	hal.PortB: 0x40020400,
	hal.PortC: 0x40020800,
	hal.PortD: 0x40020c00,
	hal.PortE: 0x40021000,
	hal.PortH: 0x40021c00,
}

// Register offsets from a port base.
const (
	OffsetMODER   = 0x00
	OffsetOTYPER  = 0x04
	OffsetOSPEEDR = 0x08
	OffsetPUPDR   = 0x0c
	OffsetIDR     = 0x10
	OffsetODR     = 0x14
	OffsetBSRR    = 0x18
	OffsetLCKR    = 0x1c
	OffsetAFRL    = 0x20
	OffsetAFRH    = 0x24
)

// lckk is the lock key bit of LCKR.
const lckk = 16

// Registers is the register block of a port.
type Registers struct {
	MODER   reg.Register
	OTYPER  reg.Register
	OSPEEDR reg.Register
	PUPDR   reg.Register
	IDR     reg.Register
	ODR     reg.Register
	BSRR    reg.Register
	LCKR    reg.Register
	AFRL    reg.Register
	AFRH    reg.Register
}
