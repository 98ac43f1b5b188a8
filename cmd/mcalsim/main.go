package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/golang/glog"

	"github.com/robotalks/mcal.go/pkg/board"
	"github.com/robotalks/mcal.go/pkg/bridge/mqtt"
	"github.com/robotalks/mcal.go/pkg/bridge/serialport"
	"github.com/robotalks/mcal.go/pkg/bridge/websocket"
	fx "github.com/robotalks/mcal.go/pkg/framework"
	"github.com/robotalks/mcal.go/pkg/systick"
	"github.com/robotalks/mcal.go/pkg/usart"
)

var (
	appConfig = DefaultAppConfig()
	instance  = "usart2"
	baudRate  = uint(appConfig.Serial.BaudRate)
	interval  = uint(appConfig.Interval)
)

func init() {
	board.SetupFlags()
	mqtt.SetupFlags()
	websocket.SetupFlags()
	serialport.SetupFlags()
	flag.StringVar(&instance, "usart", instance, "USART the application talks on")
	flag.UintVar(&baudRate, "baud", baudRate, "Baud rate of the application USART")
	flag.UintVar(&interval, "interval", interval, "Greeting period in ms")
	flag.StringVar(&appConfig.Greeting, "greeting", appConfig.Greeting, "Greeting text")
}

func main() {
	flag.Parse()

	idx, err := usart.ParseIndex(instance)
	if err != nil {
		glog.Exitln(err)
	}
	appConfig.Instance = idx
	appConfig.Serial.BaudRate = uint32(baudRate)
	appConfig.Interval = uint16(interval)

	b, err := board.Default().NewBoard()
	if err != nil {
		glog.Exitln(err)
	}
	app := NewApp(b, appConfig)
	adders := []fx.LoopAdder{b, app}

	var tick systick.Handler = app
	if conf := mqtt.Default(); conf.Enabled() {
		br, err := conf.NewBridge(b)
		if err != nil {
			glog.Exitln(err)
		}
		tick = br.WrapTick(app)
		adders = append(adders, br)
	}
	if err := app.Start(tick); err != nil {
		glog.Exitln(err)
	}
	if conf := websocket.Default(); conf.Enabled() {
		adders = append(adders, conf.NewConsole(b))
	}
	if conf := serialport.Default(); conf.Enabled() {
		p, err := conf.NewPassthrough(b)
		if err != nil {
			glog.Exitln(err)
		}
		adders = append(adders, p)
	}
	glog.Infof("%s", b)

	fx.NewLoop().Add(adders...).RunOrFail()
}
