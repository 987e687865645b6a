// Command brfk runs and checks tape-machine programs.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sarchlab/brfk/api"
	"github.com/sarchlab/brfk/config"
	"github.com/sarchlab/brfk/core"
	"github.com/sarchlab/brfk/verify"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

var errLintFailed = errors.New("lint found errors")

type options struct {
	configPath string
	debug      bool
	trace      bool
	stats      bool
	inputMode  string
	tapeLength int
	logLevel   string
	logFile    string
	prompt     string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	cmd := newRootCmd(os.Stdin, os.Stdout, os.Stderr)
	err := cmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}
	cfg := config.Default()

	root := &cobra.Command{
		Use:          "brfk [flags] <program>",
		Short:        "Run a program, stopping in the debugger at every '!'",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error

			cfg, err = resolveConfig(cmd, opts)
			if err != nil {
				return err
			}

			closeLog, err := config.SetupLogging(cfg, stderr)
			if err != nil {
				return err
			}
			atexit.Register(func() { _ = closeLog() })

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			driver := api.DriverBuilder{}.
				WithConfig(cfg).
				WithStdin(stdin).
				WithStdout(stdout).
				WithStderr(stderr).
				Build("Driver")

			if err := driver.LoadFile(args[0]); err != nil {
				return err
			}

			return driver.Run(cmd.Context())
		},
	}

	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "YAML or TOML configuration file")
	flags.BoolVar(&opts.debug, "debug", false, "start in the debugger")
	flags.BoolVar(&opts.trace, "trace", false, "log every executed instruction")
	flags.BoolVar(&opts.stats, "stats", false, "print execution statistics to stderr")
	flags.StringVar(&opts.inputMode, "input-mode", "", "how input lines become bytes: line or stream")
	flags.IntVar(&opts.tapeLength, "tape-length", core.DefaultTapeLength, "number of tape cells")
	flags.StringVar(&opts.logLevel, "log-level", "", "debug, info, trace, warn or error")
	flags.StringVar(&opts.logFile, "log-file", "", "write JSON logs to this file")
	flags.StringVar(&opts.prompt, "prompt", "", "print \"> \" before input: auto, always or never")

	root.AddCommand(newVerifyCmd(stdout))

	return root
}

func newVerifyCmd(stdout io.Writer) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "verify <program>",
		Short: "Check a program for mistakes without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("cannot read program: %w", err)
			}

			prog, err := core.Compile(src)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			report := verify.GenerateReport(args[0], prog)
			if err := report.WriteReport(stdout); err != nil {
				return err
			}

			if output != "" {
				if err := report.SaveReportToFile(output); err != nil {
					return err
				}
			}

			if report.HasErrors() {
				return errLintFailed
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "also save the report to this file")

	return cmd
}

// resolveConfig layers the config file, the environment and the flags, in
// that order.
func resolveConfig(cmd *cobra.Command, opts *options) (config.Config, error) {
	cfg := config.Default()

	if opts.configPath != "" {
		var err error

		cfg, err = config.Load(opts.configPath)
		if err != nil {
			return cfg, err
		}
	}

	cfg, err := config.FromEnv(cfg)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("debug") {
		cfg.Debug = opts.debug
	}
	if flags.Changed("trace") {
		cfg.Trace = opts.trace
	}
	if flags.Changed("stats") {
		cfg.Stats = opts.stats
	}
	if flags.Changed("input-mode") {
		cfg.InputMode = opts.inputMode
	}
	if flags.Changed("tape-length") {
		cfg.TapeLength = opts.tapeLength
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("log-file") {
		cfg.LogFile = opts.logFile
	}
	if flags.Changed("prompt") {
		cfg.Prompt = opts.prompt
	}

	return cfg, cfg.Validate()
}
