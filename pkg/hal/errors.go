package hal

import (
	"errors"
	"fmt"
)

var (
	// ErrIndex indicates an unknown peripheral instance.
	ErrIndex = errors.New("invalid instance index")
	// ErrNullPointer indicates a required config, buffer or handler is absent.
	ErrNullPointer = errors.New("null reference")
	// ErrBaudRate indicates a baud rate outside the supported range.
	ErrBaudRate = errors.New("invalid baud rate")
	// ErrDeviceMode indicates an unknown duplex mode.
	ErrDeviceMode = errors.New("invalid device mode")
	// ErrParity indicates an unknown parity setting.
	ErrParity = errors.New("invalid parity")
	// ErrOverflow indicates a value exceeds what the hardware can represent.
	ErrOverflow = errors.New("overflow")
	// ErrBusy indicates the peripheral is already armed.
	ErrBusy = errors.New("busy")
)

// RangeError reports a rejected field value.
type RangeError struct {
	Field string
	Value interface{}
	Err   error
}

// Error implements error.
func (e *RangeError) Error() string {
	return fmt.Sprintf("%v: %s=%v", e.Err, e.Field, e.Value)
}

// Unwrap returns the sentinel error.
func (e *RangeError) Unwrap() error {
	return e.Err
}

// OutOfRange creates a RangeError.
func OutOfRange(err error, field string, value interface{}) error {
	return &RangeError{Field: field, Value: value, Err: err}
}
