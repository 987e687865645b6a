package verify

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sarchlab/brfk/core"
)

// VerificationReport represents a complete verification report
type VerificationReport struct {
	Name     string
	Program  core.Program
	Issues   []Issue
	Errors   []Issue
	Warnings []Issue
	Infos    []Issue
}

// GenerateReport runs the lint checks and sorts the issues by severity.
func GenerateReport(name string, prog core.Program) *VerificationReport {
	report := &VerificationReport{
		Name:    name,
		Program: prog,
		Issues:  RunLint(prog),
	}

	for _, issue := range report.Issues {
		switch issue.Type.Severity() {
		case SeverityError:
			report.Errors = append(report.Errors, issue)
		case SeverityWarning:
			report.Warnings = append(report.Warnings, issue)
		default:
			report.Infos = append(report.Infos, issue)
		}
	}

	return report
}

// HasErrors tells whether the program is certain to fail.
func (r *VerificationReport) HasErrors() bool {
	return len(r.Errors) > 0
}

// WriteReport writes a formatted report to a writer
func (r *VerificationReport) WriteReport(w io.Writer) error {
	var sb strings.Builder

	counts := r.Program.CountByOpcode()

	stats := table.NewWriter()
	stats.SetTitle("Program " + r.Name)
	stats.AppendHeader(table.Row{"Item", "Value"})
	stats.AppendRow(table.Row{"Instructions", r.Program.CountInstructions()})
	stats.AppendRow(table.Row{"Listing length", r.Program.Len})
	stats.AppendRow(table.Row{"Max loop depth", r.Program.MaxDepth})
	stats.AppendSeparator()
	for _, op := range core.Opcodes {
		stats.AppendRow(table.Row{fmt.Sprintf("%s (%s)", op.Name(), op), counts[op]})
	}
	sb.WriteString(stats.Render())
	sb.WriteString("\n\n")

	if len(r.Issues) == 0 {
		sb.WriteString("No lint issues found\n")
	} else {
		issues := table.NewWriter()
		issues.SetTitle("Lint Issues")
		issues.AppendHeader(table.Row{"Pos", "Depth", "Severity", "Type", "Message"})
		for _, issue := range r.Issues {
			issues.AppendRow(table.Row{
				fmt.Sprintf("0x%08x", issue.Pos),
				issue.Depth,
				issue.Type.Severity(),
				issue.Type,
				issue.Message,
			})
		}
		sb.WriteString(issues.Render())
		sb.WriteByte('\n')
	}

	fmt.Fprintf(&sb, "\n%d errors, %d warnings, %d infos\n",
		len(r.Errors), len(r.Warnings), len(r.Infos))

	_, err := io.WriteString(w, sb.String())
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

// SaveReportToFile saves the report to a file
func (r *VerificationReport) SaveReportToFile(filename string) (err error) {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}

	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close report file: %w", closeErr)
		}
	}()

	return r.WriteReport(file)
}
