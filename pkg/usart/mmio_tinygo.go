//go:build tinygo

package usart

import "github.com/robotalks/mcal.go/pkg/reg"

// MMIO returns the memory-mapped registers of an instance.
func MMIO(i Index) *Registers {
	base := Bases[i]
	return &Registers{
		SR:   reg.At(base, OffsetSR),
		DR:   reg.At(base, OffsetDR),
		BRR:  reg.At(base, OffsetBRR),
		CR1:  reg.At(base, OffsetCR1),
		CR2:  reg.At(base, OffsetCR2),
		CR3:  reg.At(base, OffsetCR3),
		GTPR: reg.At(base, OffsetGTPR),
	}
}
