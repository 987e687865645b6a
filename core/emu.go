package core

import (
	"errors"
	"fmt"
)

// DefaultTapeLength is the number of cells on the tape unless configured
// otherwise.
const DefaultTapeLength = 0xf000

// Mode tells whether the core stops in the debugger before each instruction.
type Mode int

const (
	Running Mode = iota
	Debugging
)

func (m Mode) String() string {
	switch m {
	case Running:
		return "Running"
	case Debugging:
		return "Debugging"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

var (
	ErrPointerUnderflow = errors.New("data pointer moved below the start of the tape")
	ErrPointerOverflow  = errors.New("data pointer moved past the end of the tape")
)

// RuntimeError aborts a run. Pos is the listing position of the instruction
// that failed.
type RuntimeError struct {
	Pos     int
	Opcode  Opcode
	Pointer int
	Err     error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error at 0x%08x (%s, pointer 0x%08x): %v",
		e.Pos, e.Opcode.Name(), e.Pointer, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// coreState is the mutable machine state. It belongs to exactly one Core.
type coreState struct {
	Tape    []byte
	Pointer int
	Mode    Mode
	Steps   uint64

	// Pending holds bytes of the current input line in stream mode.
	Pending []byte
}

func newCoreState(tapeLength int) coreState {
	return coreState{
		Tape: make([]byte, tapeLength),
		Mode: Running,
	}
}

func (s *coreState) cell() byte {
	return s.Tape[s.Pointer]
}

type instEmulator struct {
}

// RunInst executes an instruction that only touches the tape and the data
// pointer.
func (i instEmulator) RunInst(inst Instruction, state *coreState) error {
	switch inst.Opcode {
	case MoveRight:
		return i.runMoveRight(inst, state)
	case MoveLeft:
		return i.runMoveLeft(inst, state)
	case Increment:
		state.Tape[state.Pointer]++
	case Decrement:
		state.Tape[state.Pointer]--
	default:
		panic(fmt.Sprintf("instruction '%s' at 0x%08x is not a tape instruction",
			inst.Opcode, inst.Pos))
	}

	return nil
}

func (i instEmulator) runMoveRight(inst Instruction, state *coreState) error {
	if state.Pointer+1 >= len(state.Tape) {
		return &RuntimeError{
			Pos:     inst.Pos,
			Opcode:  inst.Opcode,
			Pointer: state.Pointer,
			Err:     ErrPointerOverflow,
		}
	}

	state.Pointer++

	return nil
}

func (i instEmulator) runMoveLeft(inst Instruction, state *coreState) error {
	if state.Pointer == 0 {
		return &RuntimeError{
			Pos:     inst.Pos,
			Opcode:  inst.Opcode,
			Pointer: state.Pointer,
			Err:     ErrPointerUnderflow,
		}
	}

	state.Pointer--

	return nil
}
