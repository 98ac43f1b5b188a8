package sim

import (
	"github.com/golang/glog"

	"github.com/robotalks/mcal.go/pkg/reg"
)

// SCB register values and bits.
const (
	// CortexM4CPUID is CPUID of an r0p1 Cortex-M4.
	CortexM4CPUID = 0x410fc241

	aircrVectKey     = 0x05fa
	aircrVectKeyStat = 0xfa05
	aircrPriGroup    = 0x0700

	icsrPendSTClr = 1 << 25
	icsrPendSTSet = 1 << 26
	icsrPendSVClr = 1 << 27
	icsrPendSVSet = 1 << 28
)

// SCB models the system control block registers the drivers use. AIRCR
// ignores writes without the VECTKEY and reads VECTKEYSTAT back; ICSR pends
// and unpends PendSV and SysTick on the interrupt controller.
type SCB struct {
	CPUID *reg.Word
	ICSR  *reg.Hooked
	AIRCR *reg.Hooked
	SHPR2 *reg.Word
	SHPR3 *reg.Word

	// IgnoredWrites counts AIRCR writes dropped for a wrong key.
	IgnoredWrites int
}

// NewSCB creates the model on ints.
func NewSCB(ints *Interrupts) *SCB {
	s := &SCB{
		CPUID: reg.NewWord(CortexM4CPUID),
		SHPR2: reg.NewWord(0),
		SHPR3: reg.NewWord(0),
	}
	s.AIRCR = &reg.Hooked{
		OnRead: func(stored uint32) (uint32, uint32) {
			return aircrVectKeyStat<<16 | stored, stored
		},
		OnWrite: func(prev, v uint32) uint32 {
			if v>>16 != aircrVectKey {
				s.IgnoredWrites++
				glog.V(4).Infof("SCB: AIRCR write %#x without key ignored", v)
				return prev
			}
			return v & aircrPriGroup
		},
	}
	s.ICSR = &reg.Hooked{
		OnRead: func(stored uint32) (uint32, uint32) {
			var v uint32
			if ints.IsPending(PendSVIRQ) {
				v |= icsrPendSVSet
			}
			if ints.IsPending(SysTickIRQ) {
				v |= icsrPendSTSet
			}
			return v, stored
		},
		OnWrite: func(_, v uint32) uint32 {
			if v&icsrPendSVClr != 0 {
				ints.Unpend(PendSVIRQ)
			}
			if v&icsrPendSTClr != 0 {
				ints.Unpend(SysTickIRQ)
			}
			if v&icsrPendSVSet != 0 {
				ints.Raise(PendSVIRQ)
			}
			if v&icsrPendSTSet != 0 {
				ints.Raise(SysTickIRQ)
			}
			return 0
		},
	}
	return s
}

// PriorityGroup returns the PRIGROUP field.
func (s *SCB) PriorityGroup() uint32 {
	return (s.AIRCR.Peek() & aircrPriGroup) >> 8
}
