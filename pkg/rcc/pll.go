package rcc

import (
	"github.com/robotalks/mcal.go/pkg/hal"
)

// PLL factor limits.
const (
	PLLMMin = 2
	PLLMMax = 63
	PLLNMin = 2
	PLLNMax = 510
	PLLPMax = 3
	PLLQMin = 2
	PLLQMax = 15

	// pllNInvalid is inside the N range but not accepted by the hardware.
	pllNInvalid = 433
)

// PLLConfig configures the main PLL.
// VCO = in * N / M, SYSCLK = VCO / (2*(P+1)), 48 MHz domain = VCO / Q.
type PLLConfig struct {
	Source Source
	M      uint8
	N      uint16
	P      uint8
	Q      uint8
}

// Validate checks the source, then N, M, P and Q.
func (c *PLLConfig) Validate() error {
	if c == nil {
		return hal.ErrNullPointer
	}
	if c.Source != HSI && c.Source != HSE {
		return hal.OutOfRange(ErrClockSource, "pll source", c.Source)
	}
	if c.N < PLLNMin || c.N > PLLNMax || c.N == pllNInvalid {
		return hal.OutOfRange(ErrPLLFactor, "N", c.N)
	}
	if c.M < PLLMMin || c.M > PLLMMax {
		return hal.OutOfRange(ErrPLLFactor, "M", c.M)
	}
	if c.P > PLLPMax {
		return hal.OutOfRange(ErrPLLFactor, "P", c.P)
	}
	if c.Q < PLLQMin || c.Q > PLLQMax {
		return hal.OutOfRange(ErrPLLFactor, "Q", c.Q)
	}
	return nil
}

// OutputHz returns the system clock produced from an input of inHz.
func (c *PLLConfig) OutputHz(inHz uint32) uint32 {
	if c.M == 0 {
		return 0
	}
	vco := uint64(inHz) * uint64(c.N) / uint64(c.M)
	return uint32(vco / (2 * (uint64(c.P) + 1)))
}

// ConfigurePLL programs the PLL factors. The PLL must be off.
func (c *Controller) ConfigurePLL(cfg *PLLConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.Regs.PLLCFGR.Set(uint32(cfg.M)<<pllM |
		uint32(cfg.N)<<pllN |
		uint32(cfg.P)<<pllP |
		uint32(cfg.Source)<<pllSource |
		uint32(cfg.Q)<<pllQ)
	return nil
}

// PLL returns the programmed PLL factors.
func (c *Controller) PLL() PLLConfig {
	v := c.Regs.PLLCFGR.Get()
	return PLLConfig{
		Source: Source(v >> pllSource & 0x1),
		M:      uint8(v >> pllM & 0x3f),
		N:      uint16(v >> pllN & 0x1ff),
		P:      uint8(v >> pllP & 0x3),
		Q:      uint8(v >> pllQ & 0xf),
	}
}
