package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/robotalks/orbipacket/pkg/cli/sh"
	"github.com/robotalks/orbipacket/pkg/ground/mqtt"
	"github.com/robotalks/orbipacket/pkg/record"
)

var (
	mqttURL = "mqtt://localhost:1883/"
	format  = string(record.FormatJSON)
)

func init() {
	if val := os.Getenv("ORBI_MQTT_URL"); val != "" {
		mqttURL = val
	}
	if val := os.Getenv("ORBI_FORMAT"); val != "" {
		format = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&format, "format", format, "Record format: json or proto.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	f, err := record.ParseFormat(format)
	if err != nil {
		log.Fatalln(err)
	}
	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}
	defer q.Close()

	// station/tm/device and station/tc/device
	q.Sub("+/+/+", func(topic string, payload []byte) {
		levels := strings.Split(topic, "/")
		if levels[1] != "tm" && levels[1] != "tc" {
			return
		}
		rec, err := f.Unmarshal(payload)
		if err != nil {
			log.Printf("%s: bad record: %v", topic, err)
			return
		}
		if rec.Direction == "" {
			rec.Direction = strings.ToUpper(levels[1])
		}
		if rec.Device == "" {
			rec.Device = levels[2]
		}
		pkt, err := rec.Packet()
		if err != nil {
			log.Printf("%s: invalid packet: %v", topic, err)
			return
		}
		log.Printf("%s: %s", levels[0], sh.FormatPacket(pkt))
	})
	<-(chan struct{})(nil)
}
