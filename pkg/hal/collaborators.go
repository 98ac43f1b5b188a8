package hal

// Bus identifies a peripheral clock bus.
type Bus uint8

// Peripheral buses.
const (
	AHB1 Bus = iota
	AHB2
	APB1
	APB2
)

// String implements fmt.Stringer.
func (b Bus) String() string {
	switch b {
	case AHB1:
		return "AHB1"
	case AHB2:
		return "AHB2"
	case APB1:
		return "APB1"
	case APB2:
		return "APB2"
	}
	return "Bus(?)"
}

// ClockGate enables and disables peripheral clocks.
// The peripheral bit is not validated.
type ClockGate interface {
	EnablePeripheralClock(bus Bus, bit uint8) error
	DisablePeripheralClock(bus Bus, bit uint8) error
}

// Port identifies a GPIO port.
type Port uint8

// GPIO ports.
const (
	PortA Port = iota
	PortB
	PortC
	PortD
	PortE
	PortH
)

// String implements fmt.Stringer.
func (p Port) String() string {
	if p <= PortE {
		return "GPIO" + string(rune('A'+p))
	}
	if p == PortH {
		return "GPIOH"
	}
	return "GPIO?"
}

// PinMode is the pin mode. Bits [1:0] are the MODER value, bit 2 selects
// open-drain (outputs) or pull-up (inputs), bit 3 selects pull-down.
type PinMode uint8

// Pin modes.
const (
	InputFloat         PinMode = 0x00
	OutputPushPull     PinMode = 0x01
	AlternatePushPull  PinMode = 0x02
	Analog             PinMode = 0x03
	InputPullUp        PinMode = 0x04
	OutputOpenDrain    PinMode = 0x05
	AlternateOpenDrain PinMode = 0x06
	InputPullDown      PinMode = 0x08
)

// Speed is the output slew rate.
type Speed uint8

// Speeds.
const (
	LowSpeed Speed = iota
	MediumSpeed
	HighSpeed
	VeryHighSpeed
)

// AltFunc selects one of 16 alternate functions.
type AltFunc uint8

// PinConfig configures a pin.
type PinConfig struct {
	Port  Port
	Pin   uint8
	Mode  PinMode
	Speed Speed
}

// PinMux configures pins.
type PinMux interface {
	ConfigurePin(*PinConfig) error
	SetPinFunction(port Port, pin uint8, af AltFunc) error
}

// IRQ is an interrupt request number.
type IRQ int

// InterruptController enables, prioritizes and pends interrupt lines.
type InterruptController interface {
	EnableInterrupt(IRQ) error
	DisableInterrupt(IRQ) error
	SetPriority(irq IRQ, priority uint8) error
	Priority(IRQ) (uint8, error)
	SetPending(IRQ) error
	ClearPending(IRQ) error
	Pending(IRQ) (bool, error)
}
