package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	tty "github.com/mattn/go-tty"

	"github.com/robotalks/mcal.go/pkg/bridge/websocket"
	"github.com/robotalks/mcal.go/pkg/usart"
)

// escapeKey is Ctrl-].
const escapeKey = 0x1d

var (
	serverURL = "ws://localhost:8401"
	instance  = "usart2"
)

func init() {
	if val := os.Getenv("MCAL_WS_URL"); val != "" {
		serverURL = val
	}
	flag.StringVar(&serverURL, "url", serverURL, "Console server URL.")
	flag.StringVar(&instance, "usart", instance, "USART to attach to.")
}

// render prepares received bytes for a raw terminal: string terminators are
// dropped and bare line feeds get a carriage return.
func render(pkt []byte) []byte {
	out := make([]byte, 0, len(pkt)+4)
	for n, c := range pkt {
		switch {
		case c == 0:
		case c == '\n' && (n == 0 || pkt[n-1] != '\r'):
			out = append(out, '\r', '\n')
		default:
			out = append(out, c)
		}
	}
	return out
}

// encodeKey converts a key press to the bytes sent; Enter sends CR LF.
func encodeKey(r rune) []byte {
	if r == '\r' {
		return []byte("\r\n")
	}
	buf := make([]byte, utf8.RuneLen(r))
	utf8.EncodeRune(buf, r)
	return buf
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func main() {
	flag.Parse()
	idx, err := usart.ParseIndex(instance)
	if err != nil {
		fail(err)
	}
	conn, err := websocket.Dial(strings.TrimSuffix(serverURL, "/") + websocket.Path(idx))
	if err != nil {
		fail(err)
	}
	defer conn.Close()

	term, err := tty.Open()
	if err != nil {
		fail(err)
	}
	defer term.Close()
	restore := term.MustRaw()
	defer restore()

	fmt.Fprintf(term.Output(), "connected to %s, Ctrl-] to quit\r\n", idx)
	go func() {
		for {
			pkt, err := conn.ReadPacket()
			if err != nil {
				fmt.Fprintf(term.Output(), "\r\n%v\r\n", err)
				term.Input().Close()
				return
			}
			term.Output().Write(render(pkt))
		}
	}()

	for {
		r, err := term.ReadRune()
		if err != nil || r == escapeKey {
			break
		}
		if err := conn.WritePacket(encodeKey(r)); err != nil {
			break
		}
	}
}
