//go:build tinygo

package exti

import "github.com/robotalks/mcal.go/pkg/reg"

// MMIO returns the memory-mapped EXTI and SYSCFG registers.
func MMIO() *Registers {
	regs := &Registers{
		IMR:   reg.At(Base, OffsetIMR),
		EMR:   reg.At(Base, OffsetEMR),
		RTSR:  reg.At(Base, OffsetRTSR),
		FTSR:  reg.At(Base, OffsetFTSR),
		SWIER: reg.At(Base, OffsetSWIER),
		PR:    reg.At(Base, OffsetPR),
	}
	for i := range regs.EXTICR {
		regs.EXTICR[i] = reg.At(SYSCFGBase, OffsetEXTICR1+uintptr(i*4))
	}
	return regs
}
