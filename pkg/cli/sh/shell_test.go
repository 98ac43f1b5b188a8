package sh

import (
	"strings"
	"testing"

	"github.com/abiosoft/ishell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/mcal.go/pkg/board"
	"github.com/robotalks/mcal.go/pkg/spin"
	"github.com/robotalks/mcal.go/pkg/usart"
)

func newShell(t *testing.T) *Shell {
	b, err := board.NewByName(board.DefaultBoard, board.Options{Mode: usart.Interrupt, Waiter: spin.Bounded(1000)})
	require.NoError(t, err)
	require.NoError(t, b.Setup())
	return New(b)
}

func TestRunScript(t *testing.T) {
	s := newShell(t)
	var calls [][]string
	s.Shell.AddCmd(&ishell.Cmd{
		Name: "rec",
		Func: func(c *ishell.Context) {
			assert.Same(t, s, ShellFrom(c))
			calls = append(calls, c.Args)
		},
	})
	script := `
# comment
rec usart.send "hello world"

rec a 'b c' d
`
	require.NoError(t, s.RunScript(strings.NewReader(script)))
	assert.Equal(t, [][]string{{"usart.send", "hello world"}, {"a", "b c", "d"}}, calls)
}

func TestRunScriptSplitError(t *testing.T) {
	s := newShell(t)
	err := s.RunScript(strings.NewReader("# ok\nrec \"open"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestCollectReceived(t *testing.T) {
	s := newShell(t)
	require.NoError(t, s.Board.USART.Configure(usart.USART2, usart.DefaultConfig()))
	dev, err := s.Board.Device(usart.USART2)
	require.NoError(t, err)
	dev.Inject('o', 'k')
	assert.Equal(t, []byte("ok"), s.TakeReceived(usart.USART2))
	assert.Empty(t, s.TakeReceived(usart.USART2))
}

func TestTickText(t *testing.T) {
	s := newShell(t)
	require.NoError(t, s.Board.USART.Configure(usart.USART2, usart.DefaultConfig()))
	dev, err := s.Board.Device(usart.USART2)
	require.NoError(t, err)
	var sent []byte
	defer dev.Subscribe(func(b byte) { sent = append(sent, b) })()

	s.SetTickText(usart.USART2, "hi")
	require.NoError(t, s.Board.SysTick.SetPeriodicInterval(1))
	s.Board.Step(32000)
	assert.EqualValues(t, 2, s.Ticks())
	assert.Equal(t, "hi\x00hi\x00", string(sent))
}

func TestFormat(t *testing.T) {
	s := newShell(t)
	out, err := s.Format(struct {
		A int `json:"a"`
	}{1})
	require.NoError(t, err)
	assert.Equal(t, "{1}", out)

	s.OutputJSON = true
	out, err = s.Format(struct {
		A int `json:"a"`
	}{1})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, out)
}

func TestArgsAtLeast(t *testing.T) {
	assert.NoError(t, ArgsAtLeast([]string{"a"}, 1, "x A"))
	assert.EqualError(t, ArgsAtLeast(nil, 1, "x A"), "usage: x A")
}
