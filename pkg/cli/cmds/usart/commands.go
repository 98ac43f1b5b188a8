package usart

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/mcal.go/pkg/cli/sh"
	"github.com/robotalks/mcal.go/pkg/usart"
)

// Received is the result of usart.recv.
type Received struct {
	Instance string `json:"instance"`
	Data     string `json:"data"`
}

// String implements fmt.Stringer.
func (r *Received) String() string {
	return fmt.Sprintf("%s: %q", r.Instance, r.Data)
}

// Config configures an instance: USART BAUD [DUPLEX] [PARITY].
func Config(s *sh.Shell, args []string) (interface{}, error) {
	if err := sh.ArgsAtLeast(args, 2, "usart.config USART BAUD [rx|tx|full] [none|even|odd]"); err != nil {
		return nil, err
	}
	idx, err := usart.ParseIndex(args[0])
	if err != nil {
		return nil, err
	}
	baud, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid BAUD: %w", err)
	}
	cfg := usart.DefaultConfig()
	cfg.BaudRate = uint32(baud)
	if len(args) > 2 {
		if cfg.Duplex, err = usart.ParseDuplex(args[2]); err != nil {
			return nil, err
		}
	}
	if len(args) > 3 {
		if cfg.Parity, err = usart.ParseParity(args[3]); err != nil {
			return nil, err
		}
	}
	return nil, s.Board.USART.Configure(idx, cfg)
}

// Send transmits the arguments joined by spaces as a string.
func Send(s *sh.Shell, args []string) (interface{}, error) {
	if err := sh.ArgsAtLeast(args, 2, "usart.send USART TEXT..."); err != nil {
		return nil, err
	}
	idx, err := usart.ParseIndex(args[0])
	if err != nil {
		return nil, err
	}
	return nil, s.Board.USART.SendString(idx, strings.Join(args[1:], " "))
}

// Recv returns what an instance received. In interrupt mode these are the
// bytes collected by the handler; in polling mode it reads up to N bytes.
func Recv(s *sh.Shell, args []string) (interface{}, error) {
	if err := sh.ArgsAtLeast(args, 1, "usart.recv USART [N]"); err != nil {
		return nil, err
	}
	idx, err := usart.ParseIndex(args[0])
	if err != nil {
		return nil, err
	}
	port, err := s.Board.USART.Port(idx)
	if err != nil {
		return nil, err
	}
	res := &Received{Instance: idx.String()}
	if port.Mode == usart.Interrupt {
		res.Data = string(s.TakeReceived(idx))
		return res, nil
	}
	size := 64
	if len(args) > 1 {
		if size, err = strconv.Atoi(args[1]); err != nil || size <= 0 {
			return nil, fmt.Errorf("invalid N: %s", args[1])
		}
	}
	buf := make([]byte, size)
	n, err := port.Read(buf)
	if err != nil {
		return nil, err
	}
	res.Data = string(buf[:n])
	return res, nil
}

// Inject feeds the joined arguments into the receiver of an instance, as if
// sent by the other end of the line.
func Inject(s *sh.Shell, args []string) (interface{}, error) {
	if err := sh.ArgsAtLeast(args, 2, "usart.inject USART TEXT..."); err != nil {
		return nil, err
	}
	idx, err := usart.ParseIndex(args[0])
	if err != nil {
		return nil, err
	}
	dev, err := s.Board.Device(idx)
	if err != nil {
		return nil, err
	}
	data := []byte(strings.Join(args[1:], " "))
	if n := dev.Inject(data...); n < len(data) {
		return nil, fmt.Errorf("%s receiver disabled, %d of %d bytes accepted", idx, n, len(data))
	}
	return nil, nil
}

var (
	// ConfigCmd exposes Config.
	ConfigCmd = ishell.Cmd{
		Name:    "usart.config",
		Aliases: []string{"uc"},
		Help:    "USART BAUD [rx|tx|full] [none|even|odd]",
		Func:    sh.Do(Config),
	}

	// SendCmd exposes Send.
	SendCmd = ishell.Cmd{
		Name:    "usart.send",
		Aliases: []string{"us"},
		Help:    "USART TEXT...",
		Func:    sh.Do(Send),
	}

	// RecvCmd exposes Recv.
	RecvCmd = ishell.Cmd{
		Name:    "usart.recv",
		Aliases: []string{"ur"},
		Help:    "USART [N]",
		Func:    sh.Do(Recv),
	}

	// InjectCmd exposes Inject.
	InjectCmd = ishell.Cmd{
		Name:    "usart.inject",
		Aliases: []string{"ui"},
		Help:    "USART TEXT...",
		Func:    sh.Do(Inject),
	}
)

func init() {
	sh.AddCmds(
		&ConfigCmd,
		&SendCmd,
		&RecvCmd,
		&InjectCmd,
	)
}
