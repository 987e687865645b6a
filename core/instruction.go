package core

import "fmt"

// Opcode represents the operation code for an instruction
type Opcode uint8

const (
	MoveRight Opcode = iota
	MoveLeft
	Increment
	Decrement
	Output
	Input
	Breakpoint
	Loop
)

// LoopEndSymbol marks the end of a loop body in a listing. It is not an
// instruction.
const LoopEndSymbol = ']'

// Symbol returns the source character of the opcode.
func (o Opcode) Symbol() byte {
	switch o {
	case MoveRight:
		return '>'
	case MoveLeft:
		return '<'
	case Increment:
		return '+'
	case Decrement:
		return '-'
	case Output:
		return '.'
	case Input:
		return ','
	case Breakpoint:
		return '!'
	case Loop:
		return '['
	default:
		panic(fmt.Sprintf("invalid opcode %d", o))
	}
}

// Name returns a readable name of the opcode.
func (o Opcode) Name() string {
	switch o {
	case MoveRight:
		return "MoveRight"
	case MoveLeft:
		return "MoveLeft"
	case Increment:
		return "Increment"
	case Decrement:
		return "Decrement"
	case Output:
		return "Output"
	case Input:
		return "Input"
	case Breakpoint:
		return "Breakpoint"
	case Loop:
		return "Loop"
	default:
		panic(fmt.Sprintf("invalid opcode %d", o))
	}
}

func (o Opcode) String() string {
	return string(o.Symbol())
}

// Opcodes lists every opcode in declaration order.
var Opcodes = []Opcode{
	MoveRight, MoveLeft, Increment, Decrement, Output, Input, Breakpoint, Loop,
}

// opcodeOf maps a source byte to its opcode. Brackets are handled by the
// compiler and are not listed here.
func opcodeOf(b byte) (Opcode, bool) {
	switch b {
	case '>':
		return MoveRight, true
	case '<':
		return MoveLeft, true
	case '+':
		return Increment, true
	case '-':
		return Decrement, true
	case '.':
		return Output, true
	case ',':
		return Input, true
	case '!':
		return Breakpoint, true
	default:
		return 0, false
	}
}

// Instruction is one node of the instruction tree.
type Instruction struct {
	Opcode Opcode

	// Pos is the index of the instruction in the program listing.
	Pos int

	// Body holds the loop body. Only set for Loop.
	Body []Instruction
}

func (i Instruction) String() string {
	if i.Opcode != Loop {
		return i.Opcode.String()
	}

	buf := make([]byte, 0, 2+len(i.Body))
	buf = appendListing(buf, []Instruction{i})

	return string(buf)
}

func appendListing(buf []byte, insts []Instruction) []byte {
	for _, inst := range insts {
		buf = append(buf, inst.Opcode.Symbol())
		if inst.Opcode == Loop {
			buf = appendListing(buf, inst.Body)
			buf = append(buf, LoopEndSymbol)
		}
	}

	return buf
}
