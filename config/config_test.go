package config_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/brfk/config"
	"github.com/sarchlab/brfk/core"
)

var _ = Describe("Config", func() {
	var dir string

	writeFile := func(name, content string) string {
		path := filepath.Join(dir, name)
		Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
		return path
	}

	setenv := func(key, value string) {
		Expect(os.Setenv(key, value)).To(Succeed())
		DeferCleanup(os.Unsetenv, key)
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("should default to a quiet line-mode run", func() {
		cfg := config.Default()

		Expect(cfg.TapeLength).To(Equal(0xf000))
		Expect(cfg.Mode()).To(Equal(core.LineInput))
		Expect(cfg.Validate()).To(Succeed())

		level, err := cfg.Level()
		Expect(err).NotTo(HaveOccurred())
		Expect(level).To(Equal(slog.LevelWarn))
	})

	It("should load YAML", func() {
		path := writeFile("brfk.yaml", "tape_length: 100\ninput_mode: stream\nstats: true\n")

		cfg, err := config.Load(path)

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.TapeLength).To(Equal(100))
		Expect(cfg.Mode()).To(Equal(core.StreamInput))
		Expect(cfg.Stats).To(BeTrue())
		Expect(cfg.LogLevel).To(Equal("warn"))
	})

	It("should load an empty YAML file as the defaults", func() {
		path := writeFile("empty.yml", "")

		cfg, err := config.Load(path)

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg).To(Equal(config.Default()))
	})

	It("should load TOML", func() {
		path := writeFile("brfk.toml", "debug = true\nlog_level = \"debug\"\nprompt = \"never\"\n")

		cfg, err := config.Load(path)

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Debug).To(BeTrue())
		Expect(cfg.LogLevel).To(Equal("debug"))
		Expect(cfg.ShowPrompt(true)).To(BeFalse())
		Expect(cfg.TapeLength).To(Equal(core.DefaultTapeLength))
	})

	It("should reject unknown keys", func() {
		_, err := config.Load(writeFile("bad.yaml", "tape: 3\n"))
		Expect(err).To(HaveOccurred())

		_, err = config.Load(writeFile("bad.toml", "tape = 3\n"))
		Expect(err).To(MatchError(ContainSubstring(`unknown key "tape"`)))
	})

	It("should reject unknown formats", func() {
		_, err := config.Load(writeFile("brfk.json", "{}"))

		Expect(err).To(MatchError(ContainSubstring("unsupported config format")))
	})

	It("should fail on a missing file", func() {
		_, err := config.Load(filepath.Join(dir, "missing.yaml"))

		Expect(err).To(MatchError(os.ErrNotExist))
	})

	It("should read the environment", func() {
		setenv("BRFK_TAPE_LENGTH", "16")
		setenv("BRFK_INPUT_MODE", "stream")
		setenv("BRFK_TRACE", "true")

		cfg, err := config.FromEnv(config.Default())

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.TapeLength).To(Equal(16))
		Expect(cfg.InputMode).To(Equal("stream"))
		Expect(cfg.Trace).To(BeTrue())
		Expect(cfg.Debug).To(BeFalse())
	})

	It("should report malformed environment values", func() {
		setenv("BRFK_STATS", "sometimes")

		_, err := config.FromEnv(config.Default())

		Expect(err).To(MatchError(ContainSubstring("BRFK_STATS")))
	})

	DescribeTable("validation",
		func(edit func(*config.Config), msg string) {
			cfg := config.Default()
			edit(&cfg)

			Expect(cfg.Validate()).To(MatchError(ContainSubstring(msg)))
		},
		Entry("tape length", func(c *config.Config) { c.TapeLength = 0 }, "tape length"),
		Entry("input mode", func(c *config.Config) { c.InputMode = "byte" }, "input mode"),
		Entry("log level", func(c *config.Config) { c.LogLevel = "loud" }, "log level"),
		Entry("prompt", func(c *config.Config) { c.Prompt = "maybe" }, "prompt"),
	)

	It("should lower the level for tracing", func() {
		cfg := config.Default()
		cfg.Trace = true

		level, err := cfg.Level()

		Expect(err).NotTo(HaveOccurred())
		Expect(level).To(Equal(core.LevelTrace))
	})

	It("should prompt on terminals by default", func() {
		cfg := config.Default()

		Expect(cfg.ShowPrompt(true)).To(BeTrue())
		Expect(cfg.ShowPrompt(false)).To(BeFalse())

		cfg.Prompt = config.PromptAlways
		Expect(cfg.ShowPrompt(false)).To(BeTrue())
	})

	Context("when setting up logging", func() {
		BeforeEach(func() {
			previous := slog.Default()
			DeferCleanup(slog.SetDefault, previous)
		})

		It("should log text to stderr", func() {
			cfg := config.Default()
			cfg.LogLevel = "info"
			stderr := new(bytes.Buffer)

			closeLog, err := config.SetupLogging(cfg, stderr)
			Expect(err).NotTo(HaveOccurred())
			defer closeLog()

			slog.Info("Hello", "Key", 1)
			slog.Debug("Hidden")

			Expect(stderr.String()).To(ContainSubstring("msg=Hello Key=1"))
			Expect(stderr.String()).NotTo(ContainSubstring("Hidden"))
		})

		It("should log JSON to a file", func() {
			cfg := config.Default()
			cfg.Trace = true
			cfg.LogFile = filepath.Join(dir, "run.log")

			closeLog, err := config.SetupLogging(cfg, nil)
			Expect(err).NotTo(HaveOccurred())

			core.Trace("Inst", "Behavior", "Exec")
			slog.Info("Hidden")
			Expect(slog.Default().Enabled(context.Background(), slog.LevelWarn)).To(BeTrue())
			Expect(closeLog()).To(Succeed())

			data, err := os.ReadFile(cfg.LogFile)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`"msg":"Inst","Behavior":"Exec"`))
			Expect(string(data)).NotTo(ContainSubstring("Hidden"))
		})
	})
})
