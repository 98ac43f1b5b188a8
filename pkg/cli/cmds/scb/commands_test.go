package scb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/mcal.go/pkg/board"
	"github.com/robotalks/mcal.go/pkg/cli/sh"
	"github.com/robotalks/mcal.go/pkg/scb"
	"github.com/robotalks/mcal.go/pkg/spin"
)

func newShell(t *testing.T) *sh.Shell {
	b, err := board.NewByName(board.DefaultBoard, board.Options{Waiter: spin.Bounded(10000)})
	require.NoError(t, err)
	require.NoError(t, b.Setup())
	return sh.New(b)
}

func TestGrouping(t *testing.T) {
	s := newShell(t)
	res, err := Grouping(s, nil)
	require.NoError(t, err)
	assert.Equal(t, "16/1", res)
	res, err = Grouping(s, []string{"2/8"})
	require.NoError(t, err)
	assert.Equal(t, "2/8", res)
	assert.Equal(t, uint32(scb.Group2Sub8), s.Board.Sim.SCB.PriorityGroup())
	_, err = Grouping(s, []string{"3/3"})
	assert.ErrorIs(t, err, scb.ErrGrouping)
}

func TestPend(t *testing.T) {
	s := newShell(t)
	_, err := Pend(s, []string{"systick"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, s.Ticks())

	_, err = Pend(s, []string{"PendSV"})
	require.NoError(t, err)
	res, err := Show(s, nil)
	require.NoError(t, err)
	info := res.(*Info)
	assert.Equal(t, "0x410fc241", info.CPUID)
	assert.Equal(t, []ExceptionInfo{
		{Name: "PendSV", Pending: true},
		{Name: "SysTick"},
	}, info.Exceptions)
	assert.Contains(t, info.String(), "PendSV priority 0 pending")

	_, err = Pend(s, []string{"pendsv", "clear"})
	require.NoError(t, err)
	pending, err := s.Board.SCB.Pending(scb.PendSV)
	require.NoError(t, err)
	assert.False(t, pending)

	_, err = Pend(s, []string{"hardfault"})
	assert.ErrorIs(t, err, scb.ErrException)
}

func TestPriority(t *testing.T) {
	s := newShell(t)
	_, err := Priority(s, []string{"systick", "3"})
	require.NoError(t, err)
	prio, err := s.Board.SCB.Priority(scb.SysTick)
	require.NoError(t, err)
	assert.Equal(t, uint8(3), prio)
	_, err = Priority(s, []string{"systick", "16"})
	assert.ErrorIs(t, err, scb.ErrPriority)
	_, err = Priority(s, []string{"systick"})
	assert.Error(t, err)
}
