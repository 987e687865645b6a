package main

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"github.com/sarchlab/brfk/api"
	"github.com/sarchlab/brfk/config"
	"github.com/sarchlab/brfk/core"
	"github.com/tebeka/atexit"
)

//go:embed echo.bf
var echoProgram []byte

func main() {
	cfg := config.Default()
	cfg.InputMode = core.StreamInput.String()
	cfg.Stats = true

	driver := api.DriverBuilder{}.
		WithConfig(cfg).
		Build("Driver")

	if err := driver.LoadSource("echo.bf", echoProgram); err != nil {
		atexit.Fatal(err)
	}

	if err := driver.Run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
