package sim

import "github.com/robotalks/mcal.go/pkg/reg"

// RCC clock control bits: each oscillator's ready flag sits one bit above
// its enable.
const (
	rccHSION uint32 = 1 << 0
	rccHSEON uint32 = 1 << 16
	rccPLLON uint32 = 1 << 24
)

// RCC models reset and clock control. Enabling an oscillator sets its ready
// flag immediately, unless it is listed in Stuck. Selecting a system clock
// in CFGR.SW is reflected in CFGR.SWS.
type RCC struct {
	CR      *reg.Hooked
	PLLCFGR *reg.Word
	CFGR    *reg.Hooked
	AHB1ENR *reg.Word
	AHB2ENR *reg.Word
	APB1ENR *reg.Word
	APB2ENR *reg.Word

	// Stuck holds CR enable bits whose ready flag never rises.
	Stuck uint32
}

// NewRCC creates the model in its reset state: HSI on and selected.
func NewRCC() *RCC {
	r := &RCC{
		PLLCFGR: reg.NewWord(0x24003010),
		AHB1ENR: reg.NewWord(0),
		AHB2ENR: reg.NewWord(0),
		APB1ENR: reg.NewWord(0),
		APB2ENR: reg.NewWord(0),
	}
	r.CR = &reg.Hooked{
		OnWrite: func(_, v uint32) uint32 {
			for _, on := range []uint32{rccHSION, rccHSEON, rccPLLON} {
				rdy := on << 1
				if v&on != 0 && r.Stuck&on == 0 {
					v |= rdy
				} else {
					v &^= rdy
				}
			}
			return v
		},
	}
	r.CR.Poke(rccHSION | rccHSION<<1)
	r.CFGR = &reg.Hooked{
		OnWrite: func(_, v uint32) uint32 {
			return v&^0x0c | (v&0x03)<<2
		},
	}
	return r
}

// Enabled reports whether a peripheral clock bit is set in an enable register.
func Enabled(enr interface{ Get() uint32 }, bit uint8) bool {
	return enr.Get()&(1<<bit) != 0
}
