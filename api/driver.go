// Package api defines the driver that loads a program and runs it on a core.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/sarchlab/brfk/config"
	"github.com/sarchlab/brfk/core"
	"github.com/sarchlab/brfk/input"
)

// ErrNoProgram is returned when a driver runs before a program is loaded.
var ErrNoProgram = errors.New("no program loaded")

// Driver loads programs and runs them against the standard streams it was
// built with.
type Driver interface {
	// LoadFile compiles the program stored at path.
	LoadFile(path string) error

	// LoadSource compiles src. The name is used in error messages and logs.
	LoadSource(name string, src []byte) error

	// Program returns the loaded program.
	Program() core.Program

	// Run executes the loaded program until it ends, fails or ctx is done.
	Run(ctx context.Context) error

	// Stats returns the counters of the last run, or nil before the first
	// run.
	Stats() *core.StatsHook
}

type driverImpl struct {
	name string
	cfg  config.Config

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	programName string
	program     core.Program
	loaded      bool

	stats *core.StatsHook
}

func (d *driverImpl) LoadFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read program: %w", err)
	}

	return d.LoadSource(path, src)
}

func (d *driverImpl) LoadSource(name string, src []byte) error {
	prog, err := core.Compile(src)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	d.programName = name
	d.program = prog
	d.loaded = true

	slog.Info("ProgramLoaded",
		"Driver", d.name,
		"Name", name,
		"Instructions", prog.CountInstructions(),
		"MaxDepth", prog.MaxDepth,
	)

	return nil
}

func (d *driverImpl) Program() core.Program {
	return d.program
}

func (d *driverImpl) Stats() *core.StatsHook {
	return d.stats
}

func (d *driverImpl) Run(ctx context.Context) error {
	if !d.loaded {
		return ErrNoProgram
	}

	broker := input.NewBroker(d.stdin)
	broker.Start(ctx)
	defer broker.Stop()

	d.stats = core.NewStatsHook()

	builder := core.NewBuilder().
		WithProgram(d.program).
		WithTapeLength(d.cfg.TapeLength).
		WithInput(broker).
		WithOutput(d.stdout).
		WithInputMode(d.cfg.Mode()).
		WithDebugging(d.cfg.Debug).
		WithHook(d.stats)

	if d.cfg.ShowPrompt(d.interactive()) {
		builder = builder.WithInputPrompt(d.stderr)
	}

	if d.cfg.Trace {
		builder = builder.WithHook(core.NewTraceHook())
	}

	c := builder.Build(d.name + ".Core")

	err := c.Run(ctx)

	slog.Info("RunFinished",
		"Driver", d.name,
		"Name", d.programName,
		"Steps", c.Steps(),
		"Err", err,
	)

	if d.cfg.Stats {
		fmt.Fprintln(d.stderr, d.stats.Table())
	}

	return err
}

func (d *driverImpl) interactive() bool {
	f, ok := d.stdin.(*os.File)
	if !ok {
		return false
	}

	return input.IsInteractive(f)
}
