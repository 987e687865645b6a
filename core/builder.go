package core

import (
	"bufio"
	"io"

	"github.com/sarchlab/akita/v4/sim"
)

// Builder can create new cores.
type Builder struct {
	program    Program
	tapeLength int
	input      LineSource
	output     io.Writer
	inputMode  InputMode
	prompt     io.Writer
	debugging  bool
	hooks      []sim.Hook
}

func NewBuilder() Builder {
	return Builder{
		tapeLength: DefaultTapeLength, // default 0xf000 cells
		output:     io.Discard,
	}
}

// WithProgram sets the program that the core runs.
func (b Builder) WithProgram(program Program) Builder {
	b.program = program
	return b
}

// WithTapeLength sets the number of cells on the tape.
func (b Builder) WithTapeLength(n int) Builder {
	if n < 1 {
		panic("Need at least 1 tape cell")
	}
	b.tapeLength = n
	return b
}

// WithInput sets where program input and debugger commands come from.
func (b Builder) WithInput(input LineSource) Builder {
	b.input = input
	return b
}

// WithOutput sets where program output and the debugger console are written.
func (b Builder) WithOutput(w io.Writer) Builder {
	b.output = w
	return b
}

// WithInputMode sets how input lines become bytes.
func (b Builder) WithInputMode(mode InputMode) Builder {
	b.inputMode = mode
	return b
}

// WithInputPrompt prints "> " to w before the core waits for program input.
// A nil writer turns the prompt off.
func (b Builder) WithInputPrompt(w io.Writer) Builder {
	b.prompt = w
	return b
}

// WithDebugging starts the core in the debugger.
func (b Builder) WithDebugging(debugging bool) Builder {
	b.debugging = debugging
	return b
}

// WithHook attaches a hook to the core.
func (b Builder) WithHook(hook sim.Hook) Builder {
	b.hooks = append(b.hooks[:len(b.hooks):len(b.hooks)], hook)
	return b
}

// Build creates a core.
func (b Builder) Build(name string) *Core {
	c := &Core{
		name:      name,
		program:   b.program,
		listing:   b.program.Listing(),
		state:     newCoreState(b.tapeLength),
		input:     b.input,
		inputMode: b.inputMode,
		prompt:    b.prompt,
		out:       bufio.NewWriter(b.output),
	}

	if c.input == nil {
		c.input = noInput{}
	}

	if b.debugging {
		c.state.Mode = Debugging
	}

	c.console = &console{core: c}

	for _, hook := range b.hooks {
		c.AcceptHook(hook)
	}

	return c
}
