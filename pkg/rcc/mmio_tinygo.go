//go:build tinygo

package rcc

import "github.com/robotalks/mcal.go/pkg/reg"

// MMIO returns the memory-mapped RCC registers.
func MMIO() *Registers {
	return &Registers{
		CR:      reg.At(Base, OffsetCR),
		PLLCFGR: reg.At(Base, OffsetPLLCFGR),
		CFGR:    reg.At(Base, OffsetCFGR),
		AHB1ENR: reg.At(Base, OffsetAHB1ENR),
		AHB2ENR: reg.At(Base, OffsetAHB2ENR),
		APB1ENR: reg.At(Base, OffsetAPB1ENR),
		APB2ENR: reg.At(Base, OffsetAPB2ENR),
	}
}
