package verify

import (
	"fmt"
	"sort"

	"github.com/sarchlab/brfk/core"
)

// RunLint performs static lint checks on a program.
// Returns the issues ordered by position, or an empty list if there are none.
func RunLint(prog core.Program) []Issue {
	var issues []Issue

	issues = append(issues, checkUnderflow(prog.Insts)...)
	issues = append(issues, checkDeadLoops(prog.Insts)...)

	prog.Walk(func(inst core.Instruction, depth int) {
		switch inst.Opcode {
		case core.Loop:
			if len(inst.Body) == 0 {
				issues = append(issues, Issue{
					Type:    IssueEmptyLoop,
					Pos:     inst.Pos,
					Depth:   depth,
					Message: "Empty loop never ends if entered with a non-zero cell",
				})
			}

			issues = append(issues, checkCancelling(inst.Body, depth+1)...)
		case core.Breakpoint:
			issues = append(issues, Issue{
				Type:    IssueBreakpoint,
				Pos:     inst.Pos,
				Depth:   depth,
				Message: "Breakpoint enters the debugger",
			})
		}
	})

	issues = append(issues, checkCancelling(prog.Insts, 0)...)

	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Pos < issues[j].Pos
	})

	return issues
}

// checkUnderflow follows the pointer through the top-level code up to the
// first loop. Past a loop the pointer is no longer known.
func checkUnderflow(insts []core.Instruction) []Issue {
	offset := 0

	for _, inst := range insts {
		switch inst.Opcode {
		case core.Loop:
			return nil
		case core.MoveRight:
			offset++
		case core.MoveLeft:
			offset--
			if offset < 0 {
				return []Issue{{
					Type:    IssueUnderflow,
					Pos:     inst.Pos,
					Message: "Data pointer moves below cell 0",
					Details: map[string]interface{}{"offset": offset},
				}}
			}
		}
	}

	return nil
}

// checkDeadLoops finds top-level loops reached while every cell is still 0.
func checkDeadLoops(insts []core.Instruction) []Issue {
	var issues []Issue

	for _, inst := range insts {
		switch inst.Opcode {
		case core.Increment, core.Decrement, core.Input:
			return issues
		case core.Loop:
			issues = append(issues, Issue{
				Type:    IssueDeadLoop,
				Pos:     inst.Pos,
				Message: "Loop is skipped because the tape is still blank",
				Details: map[string]interface{}{"instructions": len(inst.Body)},
			})
		}
	}

	return issues
}

func checkCancelling(insts []core.Instruction, depth int) []Issue {
	var issues []Issue

	for i := 0; i+1 < len(insts); i++ {
		a, b := insts[i].Opcode, insts[i+1].Opcode
		if !cancels(a, b) {
			continue
		}

		issues = append(issues, Issue{
			Type:    IssueCancelling,
			Pos:     insts[i].Pos,
			Depth:   depth,
			Message: fmt.Sprintf("'%s%s' has no effect", a, b),
		})
		i++
	}

	return issues
}

func cancels(a, b core.Opcode) bool {
	switch {
	case a == core.Increment && b == core.Decrement,
		a == core.Decrement && b == core.Increment,
		a == core.MoveRight && b == core.MoveLeft,
		a == core.MoveLeft && b == core.MoveRight:
		return true
	default:
		return false
	}
}
