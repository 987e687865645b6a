package main

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"github.com/sarchlab/brfk/api"
	"github.com/sarchlab/brfk/config"
	"github.com/tebeka/atexit"
)

//go:embed hello.bf
var helloProgram []byte

func main() {
	driver := api.DriverBuilder{}.
		WithConfig(config.Default()).
		Build("Driver")

	if err := driver.LoadSource("hello.bf", helloProgram); err != nil {
		atexit.Fatal(err)
	}

	if err := driver.Run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
