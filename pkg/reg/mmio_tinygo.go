//go:build tinygo

package reg

import (
	"runtime/volatile"
	"unsafe"
)

// MMIO is a memory-mapped Register at an absolute address.
type MMIO uintptr

// Get implements Register.
func (m MMIO) Get() uint32 {
	return (*volatile.Register32)(unsafe.Pointer(uintptr(m))).Get()
}

// Set implements Register.
func (m MMIO) Set(v uint32) {
	(*volatile.Register32)(unsafe.Pointer(uintptr(m))).Set(v)
}

// At returns the MMIO register at base+offset.
func At(base, offset uintptr) MMIO {
	return MMIO(base + offset)
}
