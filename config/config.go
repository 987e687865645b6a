// Package config holds the settings of an interpreter run and installs the
// logger they ask for.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/sarchlab/brfk/core"
	"gopkg.in/yaml.v3"
)

// Prompt settings.
const (
	PromptAuto   = "auto"
	PromptAlways = "always"
	PromptNever  = "never"
)

// Config is the configuration of one interpreter run.
type Config struct {
	TapeLength int    `yaml:"tape_length" toml:"tape_length"`
	InputMode  string `yaml:"input_mode" toml:"input_mode"`
	Debug      bool   `yaml:"debug" toml:"debug"`
	Trace      bool   `yaml:"trace" toml:"trace"`
	Stats      bool   `yaml:"stats" toml:"stats"`
	LogLevel   string `yaml:"log_level" toml:"log_level"`
	LogFile    string `yaml:"log_file" toml:"log_file"`

	// Prompt decides when "> " is printed before the program waits for
	// input. Auto prints it only when stdin is a terminal.
	Prompt string `yaml:"prompt" toml:"prompt"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		TapeLength: core.DefaultTapeLength,
		InputMode:  core.LineInput.String(),
		LogLevel:   "warn",
		Prompt:     PromptAuto,
	}
}

// Load reads a configuration file on top of the defaults. The format follows
// the file extension: .yaml, .yml or .toml.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("cannot read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)

		err = dec.Decode(&cfg)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	case ".toml":
		var md toml.MetaData

		md, err = toml.Decode(string(data), &cfg)
		if err == nil && len(md.Undecoded()) > 0 {
			err = fmt.Errorf("unknown key %q", md.Undecoded()[0].String())
		}
	default:
		return cfg, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}

	if err != nil {
		return cfg, fmt.Errorf("parse error in %s: %w", path, err)
	}

	return cfg, nil
}

// FromEnv overlays BRFK_* environment variables on cfg.
func FromEnv(cfg Config) (Config, error) {
	if v, ok := os.LookupEnv("BRFK_TAPE_LENGTH"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("BRFK_TAPE_LENGTH: %w", err)
		}
		cfg.TapeLength = n
	}

	if v, ok := os.LookupEnv("BRFK_INPUT_MODE"); ok {
		cfg.InputMode = v
	}

	if v, ok := os.LookupEnv("BRFK_LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}

	if v, ok := os.LookupEnv("BRFK_LOG_FILE"); ok {
		cfg.LogFile = v
	}

	if v, ok := os.LookupEnv("BRFK_PROMPT"); ok {
		cfg.Prompt = v
	}

	for name, field := range map[string]*bool{
		"BRFK_DEBUG": &cfg.Debug,
		"BRFK_TRACE": &cfg.Trace,
		"BRFK_STATS": &cfg.Stats,
	} {
		v, ok := os.LookupEnv(name)
		if !ok {
			continue
		}

		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", name, err)
		}
		*field = b
	}

	return cfg, nil
}

// Validate checks that every setting has a usable value.
func (c Config) Validate() error {
	if c.TapeLength < 1 {
		return fmt.Errorf("tape length must be positive, got %d", c.TapeLength)
	}

	if _, err := core.ParseInputMode(c.InputMode); err != nil {
		return err
	}

	if _, err := c.Level(); err != nil {
		return err
	}

	switch c.Prompt {
	case "", PromptAuto, PromptAlways, PromptNever:
	default:
		return fmt.Errorf("unknown prompt setting %q", c.Prompt)
	}

	return nil
}

// Mode returns the input mode. An invalid mode falls back to line input.
func (c Config) Mode() core.InputMode {
	mode, _ := core.ParseInputMode(c.InputMode)
	return mode
}

// Level returns the log level. Turning on tracing lowers the level so trace
// records get through.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level

	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "trace":
		level = core.LevelTrace
	case "", "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return slog.LevelWarn, fmt.Errorf("unknown log level %q", c.LogLevel)
	}

	if c.Trace && level > core.LevelTrace {
		level = core.LevelTrace
	}

	return level, nil
}

// ShowPrompt tells whether to print the input prompt, given whether stdin is
// a terminal.
func (c Config) ShowPrompt(interactive bool) bool {
	switch c.Prompt {
	case PromptAlways:
		return true
	case PromptNever:
		return false
	default:
		return interactive
	}
}

// SetupLogging installs the default logger. Records go to LogFile as JSON
// when it is set and to stderr as text otherwise. The returned function
// closes the log file.
func SetupLogging(c Config, stderr io.Writer) (func() error, error) {
	level, err := c.Level()
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}

	if c.LogFile == "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(stderr, opts)))
		return func() error { return nil }, nil
	}

	f, err := os.Create(c.LogFile)
	if err != nil {
		return nil, fmt.Errorf("cannot create log file: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(f, opts)))

	return f.Close, nil
}
