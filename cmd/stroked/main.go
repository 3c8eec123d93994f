package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tarm/serial"

	"stroked/config"
	"stroked/play"
	"stroked/stroker"
	"stroked/stroker/debug"
	"stroked/stroker/tcode"
)

func main() {
	log.SetFlags(log.Lshortfile)

	configPath := flag.String("config", "", "Config file path. Defaults to $STROKED_CONFIG, then stroked.toml in the user config dir.")
	port := flag.String("port", "", "Serial port path; overrides the config file.")
	addr := flag.String("addr", ":9393", "Address to bind the event bridge to.")
	flag.Parse()

	path := *configPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			log.Fatal(err)
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal(err)
	}
	if *port != "" {
		cfg.Stroker.SerialPort = *port
	}

	dev, err := openDevice(&cfg.Stroker)
	if err != nil {
		log.Fatal(err)
	}
	if desc := dev.Description(); desc != "" {
		log.Println("device:", desc)
	}

	events := make(chan dispatchEvent, 64)
	loop := play.NewLoop(
		observedDevice{dev: dev, events: events},
		func(kind stroker.AxisKind) play.AxisLimits {
			l := cfg.LimitsFor(kind)
			return play.AxisLimits{Speed: l.Speed, Min: l.DefaultMin, Max: l.DefaultMax}
		},
	)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		loop.Submit(play.Shutdown{})
	}()

	api := newAPI(loop, events)
	go func() {
		err := http.ListenAndServe(*addr, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			log.Printf("%s %s - %s", req.Method, req.URL.Path, req.RemoteAddr)
			api.ServeHTTP(w, req)
		}))
		log.Fatal(err)
	}()

	if err := loop.Run(); err != nil {
		log.Fatal(err)
	}
}

func openDevice(cfg *config.Stroker) (stroker.Device, error) {
	switch cfg.Type {
	case "tcode_serial":
		port, err := serial.OpenPort(&serial.Config{Name: cfg.SerialPort, Baud: cfg.Baud})
		if err != nil {
			return nil, fmt.Errorf("open serial port %s: %w", cfg.SerialPort, err)
		}
		if err = port.Flush(); err != nil {
			return nil, fmt.Errorf("clear serial buffers: %w", err)
		}
		return tcode.Connect(port)
	case "debug":
		return debug.New(), nil
	default:
		return nil, fmt.Errorf("unknown stroker type %q", cfg.Type)
	}
}
