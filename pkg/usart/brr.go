package usart

import "github.com/robotalks/mcal.go/pkg/hal"

const (
	// Oversampling is the fixed ratio between bit period and sampling clock.
	Oversampling = 16
	// MaxMantissa is the largest value of the 12-bit mantissa field.
	MaxMantissa = 0xfff
	// MaxErrorPercent bounds the deviation of a programmed divisor.
	MaxErrorPercent = 3
)

// Divisor is the two-field baud divisor: 12-bit mantissa, 4-bit fraction.
//
// Mantissa is kept unmasked so a ratio the field cannot hold stays visible.
type Divisor struct {
	Mantissa uint32
	Fraction uint8
}

// ComputeDivisor synthesizes the divisor for baud from the reference clock.
//
// USARTDIV = refHz / (16 * baud). The fractional part scaled by 16 is rounded
// half up on its first decimal digit; a rounded fraction of 16 carries into
// the mantissa. baud must be non-zero. The result may not fit the register,
// see Valid and Synthesize.
func ComputeDivisor(refHz, baud uint32) Divisor {
	f, b := uint64(refHz), uint64(baud)
	div := b * Oversampling
	mantissa, rem := f/div, f%div
	// rem/div*16 == rem/b
	frac := rem / b
	if (rem%b)*10/b >= 5 {
		frac++
	}
	if frac >= Oversampling {
		frac = 0
		mantissa++
	}
	return Divisor{Mantissa: uint32(mantissa), Fraction: uint8(frac)}
}

// Synthesize computes the divisor for baud and rejects it with ErrBaudRate
// when the register cannot hold it or when the effective rate is more than
// MaxErrorPercent away from baud.
func Synthesize(refHz, baud uint32) (Divisor, error) {
	if baud == 0 {
		return Divisor{}, hal.OutOfRange(hal.ErrBaudRate, "baud", baud)
	}
	d := ComputeDivisor(refHz, baud)
	if !d.Valid() || !d.within(refHz, baud) {
		return Divisor{}, hal.OutOfRange(hal.ErrBaudRate, "baud", baud)
	}
	return d, nil
}

// Valid reports whether the mantissa fits the field and divides the clock.
func (d Divisor) Valid() bool {
	return d.Mantissa >= 1 && d.Mantissa <= MaxMantissa && d.Fraction < Oversampling
}

// within compares refHz/(16*USARTDIV) against baud in integers.
func (d Divisor) within(refHz, baud uint32) bool {
	n := uint64(d.Mantissa)*Oversampling + uint64(d.Fraction)
	f, bn := uint64(refHz), uint64(baud)*n
	diff := f - bn
	if bn > f {
		diff = bn - f
	}
	return diff*100 <= MaxErrorPercent*bn
}

// BRR encodes the divisor as the baud rate register value.
func (d Divisor) BRR() uint32 {
	return (d.Mantissa&MaxMantissa)<<brrMantissaShift | uint32(d.Fraction&0xf)
}

// DecodeBRR splits a baud rate register value.
func DecodeBRR(v uint32) Divisor {
	return Divisor{
		Mantissa: (v >> brrMantissaShift) & MaxMantissa,
		Fraction: uint8(v & 0xf),
	}
}

// BaudRate returns the effective bit rate produced by the divisor.
func (d Divisor) BaudRate(refHz uint32) float64 {
	div := float64(d.Mantissa) + float64(d.Fraction)/Oversampling
	if div == 0 {
		return 0
	}
	return float64(refHz) / (Oversampling * div)
}

// ErrorPercent returns the relative deviation from baud in percent.
func (d Divisor) ErrorPercent(refHz, baud uint32) float64 {
	return (d.BaudRate(refHz) - float64(baud)) * 100 / float64(baud)
}
