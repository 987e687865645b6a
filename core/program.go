package core

import (
	"errors"
	"fmt"
)

// Program is a compiled instruction tree. It must not be modified after
// Compile returns it.
type Program struct {
	Insts []Instruction

	// Len is the number of positions in the listing, counting loop ends.
	Len int

	// MaxDepth is the deepest loop nesting found in the program.
	MaxDepth int
}

// Listing returns the program as one symbol per listing position.
func (p Program) Listing() []byte {
	return appendListing(make([]byte, 0, p.Len), p.Insts)
}

func (p Program) String() string {
	return string(p.Listing())
}

// CountInstructions returns the number of instructions, not counting the Loop
// nodes themselves.
func (p Program) CountInstructions() int {
	n := 0
	p.Walk(func(inst Instruction, _ int) {
		if inst.Opcode != Loop {
			n++
		}
	})

	return n
}

// CountByOpcode returns how many times each opcode appears in the program.
func (p Program) CountByOpcode() map[Opcode]int {
	counts := make(map[Opcode]int)
	p.Walk(func(inst Instruction, _ int) {
		counts[inst.Opcode]++
	})

	return counts
}

// Walk visits every instruction in listing order together with its loop
// nesting depth.
func (p Program) Walk(fn func(inst Instruction, depth int)) {
	walk(p.Insts, 0, fn)
}

func walk(insts []Instruction, depth int, fn func(Instruction, int)) {
	for _, inst := range insts {
		fn(inst, depth)
		if inst.Opcode == Loop {
			walk(inst.Body, depth+1, fn)
		}
	}
}

// CompileErrorKind tells which bracket could not be matched.
type CompileErrorKind int

const (
	// UnclosedLoop means a '[' has no matching ']'.
	UnclosedLoop CompileErrorKind = iota
	// TooClosedLoop means a ']' has no matching '['.
	TooClosedLoop
)

func (k CompileErrorKind) String() string {
	switch k {
	case UnclosedLoop:
		return "UnclosedLoop"
	case TooClosedLoop:
		return "TooClosedLoop"
	default:
		return fmt.Sprintf("CompileErrorKind(%d)", int(k))
	}
}

var (
	ErrUnclosedLoop  = errors.New("unclosed loop")
	ErrTooClosedLoop = errors.New("too closed loop")
)

// CompileError reports an unmatched bracket.
type CompileError struct {
	Kind CompileErrorKind

	// Offset is the byte offset of the offending bracket. Line and Column are
	// 1-based.
	Offset int
	Line   int
	Column int
}

func (e *CompileError) Error() string {
	bracket := '['
	if e.Kind == TooClosedLoop {
		bracket = ']'
	}

	return fmt.Sprintf("%s: '%c' at line %d, column %d (offset %d)",
		e.Kind, bracket, e.Line, e.Column, e.Offset)
}

func (e *CompileError) Unwrap() error {
	if e.Kind == TooClosedLoop {
		return ErrTooClosedLoop
	}

	return ErrUnclosedLoop
}

type compiler struct {
	src    []byte
	cursor int
	pos    int
	depth  int
	max    int
}

// Compile translates source bytes into a Program. Bytes that are not
// instructions are ignored.
func Compile(src []byte) (Program, error) {
	c := &compiler{src: src}

	insts, err := c.compileBlock(-1)
	if err != nil {
		return Program{}, err
	}

	return Program{
		Insts:    insts,
		Len:      c.pos,
		MaxDepth: c.max,
	}, nil
}

// compileBlock compiles instructions until the ']' that closes the '[' at
// offset open. open is -1 for the top level.
func (c *compiler) compileBlock(open int) ([]Instruction, error) {
	var insts []Instruction

	for c.cursor < len(c.src) {
		offset := c.cursor
		b := c.src[c.cursor]
		c.cursor++

		switch b {
		case '[':
			loop := Instruction{Opcode: Loop, Pos: c.pos}
			c.pos++

			c.depth++
			if c.depth > c.max {
				c.max = c.depth
			}

			body, err := c.compileBlock(offset)
			if err != nil {
				return nil, err
			}
			c.depth--

			loop.Body = body
			insts = append(insts, loop)
		case ']':
			if open < 0 {
				return nil, c.errorAt(TooClosedLoop, offset)
			}
			c.pos++

			return insts, nil
		default:
			op, ok := opcodeOf(b)
			if !ok {
				continue
			}

			insts = append(insts, Instruction{Opcode: op, Pos: c.pos})
			c.pos++
		}
	}

	if open >= 0 {
		return nil, c.errorAt(UnclosedLoop, open)
	}

	return insts, nil
}

func (c *compiler) errorAt(kind CompileErrorKind, offset int) *CompileError {
	line, col := 1, 1
	for _, b := range c.src[:offset] {
		if b == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}

	return &CompileError{
		Kind:   kind,
		Offset: offset,
		Line:   line,
		Column: col,
	}
}
