package api

import (
	"io"
	"os"

	"github.com/sarchlab/brfk/config"
)

// DriverBuilder creates a new instance of Driver.
type DriverBuilder struct {
	cfg        config.Config
	configured bool

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// WithConfig sets the run configuration. The defaults from config.Default
// are used otherwise.
func (b DriverBuilder) WithConfig(cfg config.Config) DriverBuilder {
	b.cfg = cfg
	b.configured = true
	return b
}

// WithStdin sets where program input and debugger commands are read from.
func (b DriverBuilder) WithStdin(r io.Reader) DriverBuilder {
	b.stdin = r
	return b
}

// WithStdout sets where program output and the debugger console go.
func (b DriverBuilder) WithStdout(w io.Writer) DriverBuilder {
	b.stdout = w
	return b
}

// WithStderr sets where the input prompt and the statistics table go.
func (b DriverBuilder) WithStderr(w io.Writer) DriverBuilder {
	b.stderr = w
	return b
}

// Build create a driver.
func (b DriverBuilder) Build(name string) Driver {
	d := &driverImpl{
		name:   name,
		cfg:    b.cfg,
		stdin:  b.stdin,
		stdout: b.stdout,
		stderr: b.stderr,
	}

	if !b.configured {
		d.cfg = config.Default()
	}

	if d.stdin == nil {
		d.stdin = os.Stdin
	}

	if d.stdout == nil {
		d.stdout = os.Stdout
	}

	if d.stderr == nil {
		d.stderr = os.Stderr
	}

	return d
}
