//go:build tinygo

package nvic

import "github.com/robotalks/mcal.go/pkg/reg"

// MMIO returns the memory-mapped NVIC registers.
func MMIO() *Registers {
	regs := &Registers{}
	for i := 0; i < BankWords; i++ {
		off := uintptr(i * 4)
		regs.ISER[i] = reg.At(Base, OffsetISER+off)
		regs.ICER[i] = reg.At(Base, OffsetICER+off)
		regs.ISPR[i] = reg.At(Base, OffsetISPR+off)
		regs.ICPR[i] = reg.At(Base, OffsetICPR+off)
	}
	for i := 0; i < PriorityWords; i++ {
		regs.IPR[i] = reg.At(Base, OffsetIPR+uintptr(i*4))
	}
	return regs
}
