package main

import (
	"flag"

	"github.com/golang/glog"

	"github.com/robotalks/mcal.go/pkg/board"
	"github.com/robotalks/mcal.go/pkg/cli/sh"

	_ "github.com/robotalks/mcal.go/pkg/cli/cmds/board"
	_ "github.com/robotalks/mcal.go/pkg/cli/cmds/exti"
	_ "github.com/robotalks/mcal.go/pkg/cli/cmds/scb"
	_ "github.com/robotalks/mcal.go/pkg/cli/cmds/systick"
	_ "github.com/robotalks/mcal.go/pkg/cli/cmds/usart"
)

//go-build: CGO_ENABLED=0

func init() {
	board.SetupFlags()
	sh.SetupFlags()
}

func main() {
	flag.Parse()
	conf := board.Default()
	if conf.AutoStep == 0 {
		// busy waits poll CTRL, nothing else advances time in the shell
		conf.AutoStep = 1000
	}
	if conf.SpinLimit == 0 {
		conf.SpinLimit = 1 << 20
	}
	b, err := conf.NewBoard()
	if err != nil {
		glog.Exitln(err)
	}
	sh.New(b).Run(flag.Args()...)
}
