package board

import (
	"github.com/robotalks/mcal.go/pkg/exti"
	"github.com/robotalks/mcal.go/pkg/gpio"
	"github.com/robotalks/mcal.go/pkg/nvic"
	"github.com/robotalks/mcal.go/pkg/rcc"
	"github.com/robotalks/mcal.go/pkg/scb"
	"github.com/robotalks/mcal.go/pkg/sim"
	"github.com/robotalks/mcal.go/pkg/systick"
	"github.com/robotalks/mcal.go/pkg/usart"
)

func rccRegisters(m *sim.RCC) *rcc.Registers {
	return &rcc.Registers{
		CR:      m.CR,
		PLLCFGR: m.PLLCFGR,
		CFGR:    m.CFGR,
		AHB1ENR: m.AHB1ENR,
		AHB2ENR: m.AHB2ENR,
		APB1ENR: m.APB1ENR,
		APB2ENR: m.APB2ENR,
	}
}

func gpioRegisters(m *sim.GPIO) *gpio.Registers {
	return &gpio.Registers{
		MODER:   m.MODER,
		OTYPER:  m.OTYPER,
		OSPEEDR: m.OSPEEDR,
		PUPDR:   m.PUPDR,
		IDR:     m.IDR,
		ODR:     m.ODR,
		BSRR:    m.BSRR,
		LCKR:    m.LCKR,
		AFRL:    m.AFRL,
		AFRH:    m.AFRH,
	}
}

func nvicRegisters(m *sim.Interrupts) *nvic.Registers {
	regs := &nvic.Registers{}
	for i := 0; i < nvic.BankWords; i++ {
		regs.ISER[i] = m.ISER[i]
		regs.ICER[i] = m.ICER[i]
		regs.ISPR[i] = m.ISPR[i]
		regs.ICPR[i] = m.ICPR[i]
	}
	for i := 0; i < nvic.PriorityWords; i++ {
		regs.IPR[i] = m.IPR[i]
	}
	return regs
}

func systickRegisters(m *sim.SysTick) *systick.Registers {
	return &systick.Registers{
		CTRL:  m.CTRL,
		LOAD:  m.LOAD,
		VAL:   m.VAL,
		CALIB: m.CALIB,
	}
}

func usartRegisters(m *sim.USART) *usart.Registers {
	return &usart.Registers{
		SR:   m.SR,
		DR:   m.DR,
		BRR:  m.BRR,
		CR1:  m.CR1,
		CR2:  m.CR2,
		CR3:  m.CR3,
		GTPR: m.GTPR,
	}
}

func scbRegisters(m *sim.SCB) *scb.Registers {
	return &scb.Registers{
		CPUID: m.CPUID,
		ICSR:  m.ICSR,
		AIRCR: m.AIRCR,
		SHPR2: m.SHPR2,
		SHPR3: m.SHPR3,
	}
}

func extiRegisters(m *sim.EXTI) *exti.Registers {
	regs := &exti.Registers{
		IMR:   m.IMR,
		EMR:   m.EMR,
		RTSR:  m.RTSR,
		FTSR:  m.FTSR,
		SWIER: m.SWIER,
		PR:    m.PR,
	}
	for i := range regs.EXTICR {
		regs.EXTICR[i] = m.EXTICR[i]
	}
	return regs
}
