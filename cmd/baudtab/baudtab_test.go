package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/mcal.go/pkg/hal"
)

func TestTable(t *testing.T) {
	rows := Table(16000000, []uint32{9600, 115200})
	require.Len(t, rows, 2)
	assert.EqualValues(t, 0x683, rows[0].Divisor.BRR())
	assert.EqualValues(t, 0x8b, rows[1].Divisor.BRR())
	assert.InDelta(t, -0.08, rows[1].ErrorPct, 0.01)

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, rows))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "0x0683")
	assert.Contains(t, lines[2], "0x008b")

	rows = Table(84000000, []uint32{1200, 9600})
	assert.ErrorIs(t, rows[0].Err, hal.ErrBaudRate)
	assert.EqualValues(t, 4375, rows[0].Divisor.Mantissa)
	assert.NoError(t, rows[1].Err)
	buf.Reset()
	require.NoError(t, WriteTable(&buf, rows))
	assert.Contains(t, buf.String(), "unreachable")
}

func TestCheck(t *testing.T) {
	st, err := Check(16000000, 9600, 9600, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Count)
	assert.InDelta(t, 0.02, st.Mean, 0.001)
	assert.Zero(t, st.StdDev)
	assert.EqualValues(t, 9600, st.WorstBaud)
	assert.Empty(t, st.Over)

	st, err = Check(16000000, 100, 1000000, 1000, 1)
	require.NoError(t, err)
	assert.Greater(t, st.Count, 900)
	assert.NotEmpty(t, st.Over)
	assert.LessOrEqual(t, st.Mean, st.Worst)

	st, err = Check(84000000, 1200, 1300, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 19, st.Count)
	assert.Empty(t, st.Over)

	_, err = Check(16000000, 10, 5, 1, 1)
	assert.Error(t, err)
	_, err = Check(16000000, 5000000, 6000000, 1, 1)
	assert.Error(t, err)
}

func TestParseRates(t *testing.T) {
	rates, err := parseRates([]string{"9600", "57600"})
	require.NoError(t, err)
	assert.Equal(t, []uint32{9600, 57600}, rates)
	_, err = parseRates([]string{"100"})
	assert.ErrorIs(t, err, hal.ErrBaudRate)
	_, err = parseRates([]string{"fast"})
	assert.Error(t, err)
}

func TestReferenceClock(t *testing.T) {
	boardName, busName, clockHz = "nucleo-f401re", "apb1", 0
	hz, err := referenceClock()
	require.NoError(t, err)
	assert.EqualValues(t, 42000000, hz)

	clockHz = 8000000
	defer func() { clockHz = 0 }()
	hz, err = referenceClock()
	require.NoError(t, err)
	assert.EqualValues(t, 8000000, hz)
}

func TestCommands(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"boards"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "nucleo-f401re")

	out.Reset()
	rootCmd.SetArgs([]string{"table", "--clock", "16000000", "9600"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "reference clock 16000000 Hz")
	assert.Contains(t, out.String(), "0x0683")
}
