package main

import (
	"image"
	"log"
	"strings"

	"github.com/spf13/afero"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"rectanim/pkg/device/remote"
	"rectanim/pkg/device/uart"
	"rectanim/pkg/device/virtual"
	"rectanim/pkg/output"
	"rectanim/pkg/proto"
)

var serial = flag.String("serial", "ttyACM0", "serial name, remote addr or \"virtual\"")
var file = flag.StringP("file", "f", "anim.bin", "stream to play, raw or lz4")
var light = flag.Uint8("light", 100, "set light")
var delay = flag.Uint16("delay", 40, "frame delay in milliseconds")
var loop = flag.Bool("loop", false, "loop forever")
var width = flag.Int("width", 320, "virtual screen width")
var height = flag.Int("height", 240, "virtual screen height")
var debug = flag.Bool("debug", false, "set debug")

func main() {
	flag.Parse()

	var logger *zap.Logger
	if *debug {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
	}

	stream, err := output.ReadBinary(afero.NewOsFs(), *file)
	if err != nil {
		log.Fatal(err)
	}

	var dev proto.Player
	var devErr error

	switch {
	case *serial == "virtual":
		dev = virtual.Mock(image.Rect(0, 0, *width, *height), logger)
	case strings.Contains(*serial, ":"):
		dev, devErr = remote.New(*serial)
	default:
		dev, devErr = uart.Open(proto.NewSerial(*serial), logger)
	}

	if devErr != nil {
		log.Fatal(devErr)
	}

	if err := dev.Startup(); err != nil {
		log.Fatal(err)
	}

	if err := dev.SetLight(*light); err != nil {
		log.Fatal(err)
	}

	if err := dev.Upload(stream); err != nil {
		log.Fatal(err)
	}

	if err := dev.Play(*delay, *loop); err != nil {
		log.Fatal(err)
	}

	logger.With(
		zap.String("file", *file),
		zap.String("size", output.Size(len(stream))),
	).Info("playing")
}
