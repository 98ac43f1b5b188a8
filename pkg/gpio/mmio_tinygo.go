//go:build tinygo

package gpio

import (
	"github.com/robotalks/mcal.go/pkg/hal"
	"github.com/robotalks/mcal.go/pkg/reg"
)

// MMIO returns the memory-mapped registers of a port.
func MMIO(port hal.Port) *Registers {
	base := Bases[port]
	return &Registers{
		MODER:   reg.At(base, OffsetMODER),
		OTYPER:  reg.At(base, OffsetOTYPER),
		OSPEEDR: reg.At(base, OffsetOSPEEDR),
		PUPDR:   reg.At(base, OffsetPUPDR),
		IDR:     reg.At(base, OffsetIDR),
		ODR:     reg.At(base, OffsetODR),
		BSRR:    reg.At(base, OffsetBSRR),
		LCKR:    reg.At(base, OffsetLCKR),
		AFRL:    reg.At(base, OffsetAFRL),
		AFRH:    reg.At(base, OffsetAFRH),
	}
}

// NewMMIO creates a Controller over all ports.
func NewMMIO() *Controller {
	c := New()
	for p := hal.PortA; p <= hal.PortH; p++ {
		c.Attach(p, MMIO(p))
	}
	return c
}
