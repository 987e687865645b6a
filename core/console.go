package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Command is a debugger console command.
type Command int

const (
	CmdNext Command = iota
	CmdCode
	CmdMemory
	CmdExit
	CmdInfo
	CmdHelp
)

func (c Command) String() string {
	switch c {
	case CmdNext:
		return "next"
	case CmdCode:
		return "code"
	case CmdMemory:
		return "mem"
	case CmdExit:
		return "exit"
	case CmdInfo:
		return "info"
	case CmdHelp:
		return "help"
	default:
		return fmt.Sprintf("Command(%d)", int(c))
	}
}

// CommandError reports console input that is not a command.
type CommandError struct {
	Input string
}

func (e *CommandError) Error() string {
	return "Unable to parse command: " + e.Input
}

// ParseCommand parses one line of console input. Surrounding whitespace is
// ignored.
func ParseCommand(input string) (Command, error) {
	switch strings.TrimSpace(input) {
	case "next", "n":
		return CmdNext, nil
	case "code", "c":
		return CmdCode, nil
	case "mem", "m":
		return CmdMemory, nil
	case "exit", "quit", "q":
		return CmdExit, nil
	case "info", "i":
		return CmdInfo, nil
	case "help", "h", "?":
		return CmdHelp, nil
	default:
		return 0, &CommandError{Input: input}
	}
}

const (
	codeRows    = 8
	codeColumns = 64
	memRows     = 8
	memColumns  = 16
)

const consoleHelp = `next, n         run the next instruction and stop again
code, c         list the upcoming instructions
mem, m          dump the tape around the data pointer
info, i         show the core state
exit, quit, q   leave the debugger and keep running
help, h, ?      show this help`

// console is the debugger prompt of a core. It reads commands from the same
// line source as the input instruction.
type console struct {
	core *Core
}

// wait stops before inst until a command resumes execution.
func (c *console) wait(ctx context.Context, inst Instruction) error {
	err := c.prompt(inst)
	if err != nil {
		return err
	}

	for {
		line, err := c.core.input.ReadLine(ctx)
		if errors.Is(err, io.EOF) {
			Trace("Debug", "Behavior", "InputClosed", "Pos", inst.Pos)
			c.core.setMode(Running)
			return nil
		}

		if err != nil {
			return fmt.Errorf("failed to read debugger command: %w", err)
		}

		if strings.TrimSpace(line) == "" {
			err = c.prompt(inst)
			if err != nil {
				return err
			}

			continue
		}

		cmd, err := ParseCommand(line)
		if err != nil {
			c.println(err.Error())
		} else {
			switch cmd {
			case CmdNext:
				return nil
			case CmdExit:
				c.core.setMode(Running)
				return nil
			case CmdCode:
				c.printCode(inst.Pos)
			case CmdMemory:
				c.printMemory()
			case CmdInfo:
				c.println(renderState(&c.core.state, inst))
			case CmdHelp:
				c.println(consoleHelp)
			}
		}

		err = c.prompt(inst)
		if err != nil {
			return err
		}
	}
}

func (c *console) prompt(inst Instruction) error {
	fmt.Fprintf(c.core.out, "(brainfuck 0x%08x:0x%08x:%s) ",
		inst.Pos, c.core.state.Pointer, inst.Opcode)

	err := c.core.out.Flush()
	if err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}

	return nil
}

func (c *console) println(s string) {
	c.core.out.WriteString(s)
	c.core.out.WriteByte('\n')
}

// printCode lists up to codeRows rows of codeColumns symbols, starting at
// pos.
func (c *console) printCode(pos int) {
	listing := c.core.listing

	for r := 0; r < codeRows; r++ {
		start := pos + r*codeColumns
		if start >= len(listing) {
			break
		}

		end := min(start+codeColumns, len(listing))
		c.core.out.Write(listing[start:end])
		c.core.out.WriteByte('\n')
	}
}

// printMemory dumps up to memRows rows of memColumns cells, starting at the
// row that holds the data pointer.
func (c *console) printMemory() {
	tape := c.core.state.Tape
	base := c.core.state.Pointer / memColumns * memColumns

	for r := 0; r < memRows; r++ {
		addr := base + r*memColumns
		if addr >= len(tape) {
			break
		}

		c.println(formatMemoryRow(addr, tape[addr:min(addr+memColumns, len(tape))]))
	}
}

func formatMemoryRow(addr int, row []byte) string {
	sb := strings.Builder{}

	fmt.Fprintf(&sb, "0x%08x  ", addr)
	for i, b := range row {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02x", b)
	}

	sb.WriteString("  ")
	for _, b := range row {
		if b >= 0x20 && b <= 0x7e {
			sb.WriteByte(b)
		} else {
			sb.WriteByte('.')
		}
	}

	return sb.String()
}
