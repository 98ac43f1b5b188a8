// Package sim provides behavioural models of the STM32F401 peripherals the
// drivers talk to. Each model exposes its registers through reg.Register so
// the real drivers run against it unchanged, and raises interrupts through
// the simulated interrupt controller.
//
// Models are advanced explicitly (SysTick.Step) or by a Clock controller
// running in a framework.Loop.
package sim
