// Command axis-test exercises every discovered axis of a T-Code device:
// each axis is ramped to one end of its travel and back over two-second
// moves. Useful for checking wiring and axis assignment.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/tarm/serial"

	"stroked/stroker"
	"stroked/stroker/tcode"
)

func main() {
	log.SetFlags(log.Lshortfile)

	port := flag.String("port", "/dev/ttyUSB0", "Serial port of the T-Code device.")
	baud := flag.Int("baud", 115200, "Baud rate.")
	flag.Parse()

	p, err := serial.OpenPort(&serial.Config{Name: *port, Baud: *baud})
	if err != nil {
		log.Fatal("open serial port: ", err)
	}
	if err = p.Flush(); err != nil {
		log.Fatal("clear serial buffers: ", err)
	}

	s, err := tcode.Connect(p)
	if err != nil {
		log.Fatal("connect: ", err)
	}
	defer s.Close()

	for _, axis := range s.Axes() {
		log.Printf("trying axis %d (%s)", axis.ID, axis.Kind)
		move(s, axis.ID, 0.0)
		move(s, axis.ID, 1.0)
	}
	if err = s.Stop(); err != nil {
		log.Fatal("stop: ", err)
	}
}

func move(s *tcode.Session, id stroker.AxisID, target float64) {
	m, err := stroker.NewMovement(id, target, 2000)
	if err != nil {
		log.Fatal(err)
	}
	if err = s.Move(m); err != nil {
		log.Fatal("move: ", err)
	}
	time.Sleep(2 * time.Second)
}
