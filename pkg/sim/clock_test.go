package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	fx "github.com/robotalks/mcal.go/pkg/framework"
)

type countingStepper struct {
	cycles uint64
}

func (s *countingStepper) Step(n uint64) {
	s.cycles += n
}

func TestClockControl(t *testing.T) {
	s := &countingStepper{}
	c := NewClock(16000000, s)
	l := fx.NewLoop().Add(c)
	start := time.Unix(1000, 0)
	ctx := context.Background()
	l.RunIteration(ctx, start)
	assert.Equal(t, uint64(0), s.cycles)
	l.RunIteration(ctx, start.Add(time.Millisecond))
	assert.Equal(t, uint64(16000), s.cycles)
	// a stall is capped at MaxStep
	l.RunIteration(ctx, start.Add(10*time.Second))
	assert.Equal(t, uint64(16000+16000000), s.cycles)
	assert.Equal(t, s.cycles, c.Cycles())
}

func TestCyclesIn(t *testing.T) {
	assert.Equal(t, uint64(0), CyclesIn(-time.Second, 1000))
	assert.Equal(t, uint64(84000000), CyclesIn(time.Second, 84000000))
	assert.Equal(t, uint64(84), CyclesIn(time.Microsecond, 84000000))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 5, clamp(5, 0, 10))
	assert.Equal(t, 10, clamp(50, 0, 10))
	assert.Equal(t, 50, clamp(50, 0, 0))
	assert.Equal(t, int8(-1), clamp(int8(-5), -1, 3))
}
