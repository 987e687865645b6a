package core

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sarchlab/akita/v4/sim"
)

// LineSource supplies input lines one at a time. ReadLine blocks until a line
// is available and returns io.EOF once no more lines will arrive.
type LineSource interface {
	ReadLine(ctx context.Context) (string, error)
}

// InputMode decides how input lines turn into bytes for the input
// instruction.
type InputMode int

const (
	// LineInput stores the first byte of each line and skips empty lines.
	LineInput InputMode = iota
	// StreamInput feeds every byte of each line followed by a newline.
	StreamInput
)

func (m InputMode) String() string {
	switch m {
	case LineInput:
		return "line"
	case StreamInput:
		return "stream"
	default:
		return fmt.Sprintf("InputMode(%d)", int(m))
	}
}

// ParseInputMode converts "line" or "stream" into an InputMode.
func ParseInputMode(s string) (InputMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "line":
		return LineInput, nil
	case "stream":
		return StreamInput, nil
	default:
		return LineInput, fmt.Errorf("unknown input mode %q", s)
	}
}

// Core is the execution engine. It walks the instruction tree of one program
// and owns the tape, the data pointer and the mode for the whole run.
type Core struct {
	sim.HookableBase

	name    string
	program Program
	listing []byte

	state coreState
	emu   instEmulator

	input     LineSource
	inputMode InputMode
	prompt    io.Writer
	out       *bufio.Writer
	console   *console
}

// Name returns the name of the core.
func (c *Core) Name() string {
	return c.name
}

// Program returns the program that the core runs.
func (c *Core) Program() Program {
	return c.program
}

// Pointer returns the data pointer.
func (c *Core) Pointer() int {
	return c.state.Pointer
}

// Mode returns the current execution mode.
func (c *Core) Mode() Mode {
	return c.state.Mode
}

// Steps returns the number of instructions executed so far.
func (c *Core) Steps() uint64 {
	return c.state.Steps
}

// TapeLength returns the number of cells on the tape.
func (c *Core) TapeLength() int {
	return len(c.state.Tape)
}

// ReadMemory returns a copy of size cells starting at addr. The copy is cut
// short at the end of the tape.
func (c *Core) ReadMemory(addr, size int) []byte {
	if addr < 0 || addr >= len(c.state.Tape) || size <= 0 {
		return nil
	}

	end := min(addr+size, len(c.state.Tape))
	data := make([]byte, end-addr)
	copy(data, c.state.Tape[addr:end])

	return data
}

// Run executes the program to completion. A Core runs one program once.
func (c *Core) Run(ctx context.Context) error {
	err := c.runBlock(ctx, c.program.Insts)

	if flushErr := c.out.Flush(); flushErr != nil && err == nil {
		err = fmt.Errorf("failed to flush output: %w", flushErr)
	}

	LogState(&c.state)

	return err
}

func (c *Core) runBlock(ctx context.Context, insts []Instruction) error {
	for _, inst := range insts {
		if c.state.Mode == Debugging {
			err := c.console.wait(ctx, inst)
			if err != nil {
				return err
			}
		}

		err := c.execute(ctx, inst)
		if err != nil {
			return err
		}
	}

	return nil
}

func (c *Core) execute(ctx context.Context, inst Instruction) error {
	c.state.Steps++

	if c.NumHooks() > 0 {
		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    HookPosInstExec,
			Item:   inst,
			Detail: ExecDetail{
				Steps:   c.state.Steps,
				Pointer: c.state.Pointer,
				Cell:    c.state.cell(),
				Mode:    c.state.Mode,
			},
		})
	}

	switch inst.Opcode {
	case MoveRight, MoveLeft, Increment, Decrement:
		return c.emu.RunInst(inst, &c.state)
	case Output:
		return c.runOutput()
	case Input:
		return c.runInput(ctx)
	case Breakpoint:
		c.runBreakpoint(inst)
	case Loop:
		for c.state.cell() != 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			err := c.runBlock(ctx, inst.Body)
			if err != nil {
				return err
			}
		}
	default:
		panic(fmt.Sprintf("unknown instruction %d at 0x%08x", inst.Opcode, inst.Pos))
	}

	return nil
}

func (c *Core) runOutput() error {
	b := c.state.cell()

	err := c.out.WriteByte(b)
	if err == nil && c.state.Mode == Debugging {
		err = c.out.WriteByte('\n')
	}

	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	c.invoke(HookPosOutput, b)

	return nil
}

func (c *Core) runInput(ctx context.Context) error {
	b, ok, err := c.readInputByte(ctx)
	if err != nil {
		return err
	}

	if !ok {
		Trace("IO", "Behavior", "InputExhausted", "Pointer", c.state.Pointer)
		return nil
	}

	c.state.Tape[c.state.Pointer] = b
	c.invoke(HookPosInput, b)

	return nil
}

// readInputByte returns false when the input has ended.
func (c *Core) readInputByte(ctx context.Context) (byte, bool, error) {
	for len(c.state.Pending) == 0 {
		line, err := c.readInputLine(ctx)
		if errors.Is(err, io.EOF) {
			return 0, false, nil
		}

		if err != nil {
			return 0, false, err
		}

		switch c.inputMode {
		case StreamInput:
			c.state.Pending = append([]byte(line), '\n')
		default:
			if len(line) > 0 {
				return line[0], true, nil
			}
		}
	}

	b := c.state.Pending[0]
	c.state.Pending = c.state.Pending[1:]

	return b, true, nil
}

func (c *Core) readInputLine(ctx context.Context) (string, error) {
	err := c.out.Flush()
	if err != nil {
		return "", fmt.Errorf("failed to flush output: %w", err)
	}

	if c.prompt != nil {
		_, _ = io.WriteString(c.prompt, "> ")
	}

	line, err := c.input.ReadLine(ctx)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	return line, err
}

func (c *Core) runBreakpoint(inst Instruction) {
	c.invoke(HookPosBreakpoint, inst)
	c.setMode(Debugging)
}

func (c *Core) setMode(mode Mode) {
	if c.state.Mode == mode {
		return
	}

	c.state.Mode = mode
	c.invoke(HookPosModeChange, mode)
}

func (c *Core) invoke(pos *sim.HookPos, item interface{}) {
	if c.NumHooks() == 0 {
		return
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    pos,
		Item:   item,
	})
}

// noInput is the line source of a core built without input.
type noInput struct{}

func (noInput) ReadLine(ctx context.Context) (string, error) {
	return "", io.EOF
}
