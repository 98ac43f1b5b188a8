//go:build tinygo

package scb

import "github.com/robotalks/mcal.go/pkg/reg"

// MMIO returns the memory-mapped SCB registers.
func MMIO() *Registers {
	return &Registers{
		CPUID: reg.At(Base, OffsetCPUID),
		ICSR:  reg.At(Base, OffsetICSR),
		AIRCR: reg.At(Base, OffsetAIRCR),
		SHPR2: reg.At(Base, OffsetSHPR2),
		SHPR3: reg.At(Base, OffsetSHPR3),
	}
}
