package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"
)

const (
	// LevelTrace is the level of per-instruction and I/O records.
	LevelTrace slog.Level = slog.LevelInfo + 1
)

// Trace logs msg at LevelTrace.
func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}

// renderState draws the machine state around the instruction about to run.
func renderState(state *coreState, inst Instruction) string {
	t := table.NewWriter()
	t.SetTitle("Core State")
	t.AppendHeader(table.Row{"Pos", "Next", "Pointer", "Cell", "Mode", "Steps"})
	t.AppendRow(table.Row{
		fmt.Sprintf("0x%08x", inst.Pos),
		fmt.Sprintf("%s (%s)", inst.Opcode, inst.Opcode.Name()),
		fmt.Sprintf("0x%08x", state.Pointer),
		fmt.Sprintf("0x%02x", state.cell()),
		state.Mode,
		state.Steps,
	})

	return t.Render()
}

// LogState logs the final machine state at the debug level.
func LogState(state *coreState) {
	slog.Debug("StateCheckpoint",
		"Pointer", state.Pointer,
		"Cell", state.cell(),
		"Mode", state.Mode,
		"Steps", state.Steps,
		"Pending", len(state.Pending),
	)
}
