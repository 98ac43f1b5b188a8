package main

import (
	"flag"
	"log"
	"os"
	"reflect"

	"github.com/robotalks/mcal.go/pkg/bridge/mqtt"
	"github.com/robotalks/mcal.go/pkg/msgs"
)

var (
	mqttURL = "mqtt://localhost:1883/mcal/"
)

func init() {
	if val := os.Getenv("MCAL_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	opts, prefix, err := mqtt.ClientOptionsFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	q := mqtt.NewQueue(opts, prefix)
	if err := q.Connect(); err != nil {
		log.Fatalln(err)
	}
	defer q.Close()

	q.Subscribe("#", func(topic string, payload []byte) {
		if len(payload) == 0 {
			log.Printf("%s: cleared", topic)
			return
		}
		typed, err := msgs.DecodeTyped(payload)
		if err != nil {
			log.Printf("%s: raw %q", topic, payload)
			return
		}
		msg, err := typed.Decode()
		if err != nil {
			log.Printf("%s: decode error: (type_id=%x) %v", topic, typed.TypeId, err)
			return
		}
		name := reflect.Indirect(reflect.ValueOf(msg)).Type().Name()
		if frame, ok := msg.(*msgs.SerialTx); ok {
			log.Printf("%s: [%s] %s %q", topic, name, frame.Instance, frame.Data)
			return
		}
		log.Printf("%s: [%s] %s", topic, name, msg.Serializable().String())
	})
	<-(chan struct{})(nil)
}
