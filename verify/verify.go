// Package verify checks a compiled program for mistakes that can be seen
// without running it.
//
// RunLint walks the instruction tree once and reports:
//
//   - UNDERFLOW (error): straight-line code at the start of the program moves
//     the data pointer below cell 0. The run is certain to fail there.
//   - EMPTY_LOOP (warning): "[]" never ends once entered with a non-zero cell.
//   - DEAD_LOOP (info): a loop placed before anything writes the tape. It
//     never runs, which is the usual way to write a comment block.
//   - CANCELLING (info): adjacent "+-", "-+", "<>" or "><" undo each other.
//   - BREAKPOINT (info): a "!" that will stop the run in the debugger.
//
// GenerateReport wraps the issues together with program statistics.
//
//	prog, err := core.Compile(src)
//	...
//	report := verify.GenerateReport("hello.bf", prog)
//	report.WriteReport(os.Stdout)
//	if report.HasErrors() {
//	    atexit.Exit(1)
//	}
package verify

import "fmt"

// IssueType categorizes lint issues
type IssueType string

const (
	IssueUnderflow  IssueType = "UNDERFLOW"
	IssueEmptyLoop  IssueType = "EMPTY_LOOP"
	IssueDeadLoop   IssueType = "DEAD_LOOP"
	IssueCancelling IssueType = "CANCELLING"
	IssueBreakpoint IssueType = "BREAKPOINT"
)

// Severity tells how serious an issue is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Severity returns the severity of the issue type.
func (t IssueType) Severity() Severity {
	switch t {
	case IssueUnderflow:
		return SeverityError
	case IssueEmptyLoop:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// Issue represents a single lint issue
type Issue struct {
	Type    IssueType              // kind of the issue
	Pos     int                    // listing position of the instruction
	Depth   int                    // loop nesting depth, 0 at top level
	Message string                 // Human-readable description
	Details map[string]interface{} // Additional structured data
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] 0x%08x: %s", i.Type, i.Pos, i.Message)
}
