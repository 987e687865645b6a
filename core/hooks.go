package core

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sarchlab/akita/v4/sim"
)

// HookPosInstExec marks when an instruction is about to execute. The item is
// the Instruction and the detail is an ExecDetail.
var HookPosInstExec = &sim.HookPos{Name: "Inst Exec"}

// HookPosBreakpoint marks when a breakpoint instruction executes.
var HookPosBreakpoint = &sim.HookPos{Name: "Breakpoint"}

// HookPosModeChange marks when the core switches between running and
// debugging. The item is the new Mode.
var HookPosModeChange = &sim.HookPos{Name: "Mode Change"}

// HookPosOutput marks when a byte is written to the output. The item is the
// byte.
var HookPosOutput = &sim.HookPos{Name: "Output"}

// HookPosInput marks when a byte is stored from the input. The item is the
// byte.
var HookPosInput = &sim.HookPos{Name: "Input"}

// ExecDetail is the machine state seen by an instruction before it runs.
type ExecDetail struct {
	Steps   uint64
	Pointer int
	Cell    byte
	Mode    Mode
}

// TraceHook logs every event of a core at the trace level.
type TraceHook struct {
}

// NewTraceHook creates a TraceHook.
func NewTraceHook() *TraceHook {
	return &TraceHook{}
}

// Func implements sim.Hook.
func (h *TraceHook) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case HookPosInstExec:
		inst := ctx.Item.(Instruction)
		detail := ctx.Detail.(ExecDetail)
		Trace("Inst",
			"Behavior", "Exec",
			"Pos", inst.Pos,
			"OpCode", inst.Opcode.Name(),
			"Pointer", detail.Pointer,
			"Cell", detail.Cell,
			"Steps", detail.Steps,
		)
	case HookPosBreakpoint:
		inst := ctx.Item.(Instruction)
		Trace("Debug",
			"Behavior", "Breakpoint",
			"Pos", inst.Pos,
		)
	case HookPosModeChange:
		Trace("Debug",
			"Behavior", "ModeChange",
			"Mode", ctx.Item.(Mode).String(),
		)
	case HookPosOutput:
		Trace("IO",
			"Behavior", "Output",
			"Data", ctx.Item.(byte),
		)
	case HookPosInput:
		Trace("IO",
			"Behavior", "Input",
			"Data", ctx.Item.(byte),
		)
	}
}

// StatsHook counts what a core did during a run.
type StatsHook struct {
	Executed    map[Opcode]uint64
	Breakpoints uint64
	ModeChanges uint64
	BytesIn     uint64
	BytesOut    uint64
}

// NewStatsHook creates an empty StatsHook.
func NewStatsHook() *StatsHook {
	return &StatsHook{
		Executed: make(map[Opcode]uint64),
	}
}

// Func implements sim.Hook.
func (h *StatsHook) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case HookPosInstExec:
		h.Executed[ctx.Item.(Instruction).Opcode]++
	case HookPosBreakpoint:
		h.Breakpoints++
	case HookPosModeChange:
		h.ModeChanges++
	case HookPosOutput:
		h.BytesOut++
	case HookPosInput:
		h.BytesIn++
	}
}

// Total returns the number of executed instructions.
func (h *StatsHook) Total() uint64 {
	var total uint64
	for _, n := range h.Executed {
		total += n
	}

	return total
}

// Table renders the counters.
func (h *StatsHook) Table() string {
	t := table.NewWriter()
	t.SetTitle("Execution Statistics")
	t.AppendHeader(table.Row{"Instruction", "Symbol", "Executed"})

	for _, op := range Opcodes {
		t.AppendRow(table.Row{op.Name(), op.String(), h.Executed[op]})
	}

	t.AppendSeparator()
	t.AppendRow(table.Row{"Total", "", h.Total()})
	t.AppendRow(table.Row{"Breakpoints hit", "", h.Breakpoints})
	t.AppendRow(table.Row{"Mode changes", "", h.ModeChanges})
	t.AppendRow(table.Row{"Bytes in", "", h.BytesIn})
	t.AppendRow(table.Row{"Bytes out", "", h.BytesOut})

	return t.Render()
}

func (h *StatsHook) String() string {
	return fmt.Sprintf("%d instructions, %d bytes in, %d bytes out",
		h.Total(), h.BytesIn, h.BytesOut)
}
