// Package msgs defines the messages a simulated board exchanges with the
// outside world over bridges, and the Typed envelope they travel in.
//
// Producer: board bridges (serial traffic, timer ticks, board meta)
// Consumer: external tools, which may also send serial input back
package msgs
