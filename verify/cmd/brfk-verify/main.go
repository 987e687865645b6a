package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/brfk/core"
	"github.com/sarchlab/brfk/verify"
	"github.com/tebeka/atexit"
)

func main() {
	output := flag.String("o", "", "also save the report to this file")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: brfk-verify [-o report.txt] <program.bf>")
		atexit.Exit(1)
	}

	programPath := flag.Arg(0)
	src, err := os.ReadFile(programPath)
	if err != nil {
		atexit.Fatalf("Failed to read program: %v", err)
	}

	prog, err := core.Compile(src)
	if err != nil {
		atexit.Fatalf("%s: %v", programPath, err)
	}

	report := verify.GenerateReport(programPath, prog)
	if err := report.WriteReport(os.Stdout); err != nil {
		atexit.Fatalf("%v", err)
	}

	if *output != "" {
		if err := report.SaveReportToFile(*output); err != nil {
			atexit.Fatalf("%v", err)
		}
	}

	if report.HasErrors() {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
