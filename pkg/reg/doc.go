// Package reg provides the register surface all peripheral drivers go through.
//
// A Register is a single 32-bit control, status or data slot of a peripheral.
// Drivers never touch memory directly; they are handed a register block whose
// slots are either backed by memory-mapped I/O (TinyGo builds) or by Word and
// Hooked values, which is how the simulator models a device.
package reg
