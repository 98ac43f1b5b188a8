//go:build tinygo

package systick

import "github.com/robotalks/mcal.go/pkg/reg"

// MMIO returns the memory-mapped SysTick registers.
func MMIO() *Registers {
	return &Registers{
		CTRL:  reg.At(Base, OffsetCTRL),
		LOAD:  reg.At(Base, OffsetLOAD),
		VAL:   reg.At(Base, OffsetVAL),
		CALIB: reg.At(Base, OffsetCALIB),
	}
}
