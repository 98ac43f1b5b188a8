// Package hal defines the error taxonomy shared by the peripheral drivers and
// the narrow interfaces through which they reach external collaborators:
// clock gating, pin multiplexing and the interrupt controller.
//
// Every driver operation returns its status to the immediate caller.
// Validation always happens before any register is written, so a failed call
// leaves the hardware untouched.
package hal
