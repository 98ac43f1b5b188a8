package rcc

import "github.com/robotalks/mcal.go/pkg/reg"

// Base is the RCC register block address.
const Base = 0x40023800

// Register offsets from Base.
const (
	OffsetCR      = 0x00
	OffsetPLLCFGR = 0x04
	OffsetCFGR    = 0x08
	OffsetAHB1ENR = 0x30
	OffsetAHB2ENR = 0x34
	OffsetAPB1ENR = 0x40
	OffsetAPB2ENR = 0x44
)

// CR bits. Each ready flag is one bit above its enable.
const (
	CRHSION uint = 0
	CRHSEON uint = 16
	CRPLLON uint = 24
)

// PLLCFGR fields.
const (
	pllM      uint = 0
	pllN      uint = 6
	pllP      uint = 16
	pllSource uint = 22
	pllQ      uint = 24
)

// CFGR fields.
const (
	cfgrSW  uint = 0
	cfgrSWS uint = 2
)

// Peripheral clock enable bits.
const (
	AHB1GPIOA  uint8 = 0
	AHB1GPIOB  uint8 = 1
	AHB1GPIOC  uint8 = 2
	AHB1GPIOD  uint8 = 3
	AHB1GPIOE  uint8 = 4
	AHB1GPIOH  uint8 = 7
	AHB1CRC    uint8 = 12
	AHB1DMA1   uint8 = 21
	AHB1DMA2   uint8 = 22
	AHB2OTGFS  uint8 = 7
	APB1TIM2   uint8 = 0
	APB1USART2 uint8 = 17
	APB1I2C1   uint8 = 21
	APB1PWR    uint8 = 28
	APB2TIM1   uint8 = 0
	APB2USART1 uint8 = 4
	APB2USART6 uint8 = 5
	APB2SPI1   uint8 = 12
	APB2SYSCFG uint8 = 14
)

// Registers is the subset of the RCC block the driver uses.
type Registers struct {
	CR      reg.Register
	PLLCFGR reg.Register
	CFGR    reg.Register
	AHB1ENR reg.Register
	AHB2ENR reg.Register
	APB1ENR reg.Register
	APB2ENR reg.Register
}
