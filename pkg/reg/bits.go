package reg

// Bit returns the mask of a single bit.
func Bit(n uint) uint32 {
	return 1 << n
}

// SetBits sets the masked bits (read-modify-write).
func SetBits(r Register, mask uint32) {
	r.Set(r.Get() | mask)
}

// ClearBits clears the masked bits (read-modify-write).
func ClearBits(r Register, mask uint32) {
	r.Set(r.Get() &^ mask)
}

// WriteBit sets or clears bit n.
func WriteBit(r Register, n uint, on bool) {
	if on {
		SetBits(r, Bit(n))
	} else {
		ClearBits(r, Bit(n))
	}
}

// HasBits reports whether all masked bits are set.
func HasBits(r Register, mask uint32) bool {
	return r.Get()&mask == mask
}

// Field extracts a width-bit field starting at shift.
func Field(r Register, shift, width uint) uint32 {
	return (r.Get() >> shift) & fieldMask(width)
}

// SetField replaces a width-bit field starting at shift.
func SetField(r Register, shift, width uint, val uint32) {
	m := fieldMask(width)
	r.Set(r.Get()&^(m<<shift) | (val&m)<<shift)
}

func fieldMask(width uint) uint32 {
	if width >= 32 {
		return 0xffffffff
	}
	return 1<<width - 1
}
