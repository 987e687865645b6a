package core

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Core", func() {
	var (
		mockCtrl *gomock.Controller
		input    *MockLineSource
		out      *bytes.Buffer
		stats    *StatsHook
	)

	build := func(src string, opts ...func(Builder) Builder) *Core {
		prog, err := Compile([]byte(src))
		Expect(err).NotTo(HaveOccurred())

		b := NewBuilder().
			WithProgram(prog).
			WithInput(input).
			WithOutput(out).
			WithHook(stats)
		for _, opt := range opts {
			b = opt(b)
		}

		return b.Build("Core")
	}

	lines := func(ls ...string) {
		calls := make([]*gomock.Call, 0, len(ls)+1)
		for _, l := range ls {
			calls = append(calls, input.EXPECT().ReadLine(gomock.Any()).Return(l, nil))
		}
		calls = append(calls, input.EXPECT().ReadLine(gomock.Any()).Return("", io.EOF).AnyTimes())
		gomock.InOrder(calls...)
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		input = NewMockLineSource(mockCtrl)
		out = new(bytes.Buffer)
		stats = NewStatsHook()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	Context("when running without the debugger", func() {
		It("should output the current cell", func() {
			c := build("++.")

			Expect(c.Run(context.Background())).To(Succeed())
			Expect(out.Bytes()).To(Equal([]byte{2}))
			Expect(c.Steps()).To(Equal(uint64(3)))
		})

		It("should run a loop body until the cell is zero", func() {
			c := build("+[-]")

			Expect(c.Run(context.Background())).To(Succeed())
			Expect(out.Len()).To(Equal(0))
			Expect(stats.Executed[Decrement]).To(Equal(uint64(1)))
			Expect(stats.Executed[Loop]).To(Equal(uint64(1)))
		})

		It("should skip a loop entered with a zero cell", func() {
			c := build("[+.]")

			Expect(c.Run(context.Background())).To(Succeed())
			Expect(out.Len()).To(Equal(0))
			Expect(c.Steps()).To(Equal(uint64(1)))
		})

		It("should re-check the loop condition after every pass", func() {
			c := build("+++[>++<-]>.")

			Expect(c.Run(context.Background())).To(Succeed())
			Expect(out.Bytes()).To(Equal([]byte{6}))
			Expect(stats.Executed[Decrement]).To(Equal(uint64(3)))
		})

		It("should run nested loops", func() {
			c := build("++[>+++[>++<-]<-]>>.")

			Expect(c.Run(context.Background())).To(Succeed())
			Expect(out.Bytes()).To(Equal([]byte{12}))
		})

		It("should wrap cells", func() {
			c := build("-.+.")

			Expect(c.Run(context.Background())).To(Succeed())
			Expect(out.Bytes()).To(Equal([]byte{255, 0}))
		})

		It("should abort when the pointer moves below the tape", func() {
			c := build("+>+<<+.")

			err := c.Run(context.Background())

			var rerr *RuntimeError
			Expect(errors.As(err, &rerr)).To(BeTrue())
			Expect(rerr.Pos).To(Equal(4))
			Expect(rerr.Err).To(Equal(ErrPointerUnderflow))
			Expect(out.Len()).To(Equal(0))
		})

		It("should abort when the pointer moves past the tape", func() {
			c := build(".>.>.", func(b Builder) Builder {
				return b.WithTapeLength(2)
			})

			err := c.Run(context.Background())

			Expect(err).To(MatchError(ErrPointerOverflow))
			Expect(err.(*RuntimeError).Pos).To(Equal(3))
			Expect(out.Bytes()).To(Equal([]byte{0, 0}))
		})

		It("should report a copy of the tape", func() {
			c := build("+>++>+++")

			Expect(c.Run(context.Background())).To(Succeed())

			mem := c.ReadMemory(0, 4)
			Expect(mem).To(Equal([]byte{1, 2, 3, 0}))
			mem[0] = 9
			Expect(c.ReadMemory(0, 1)).To(Equal([]byte{1}))
			Expect(c.ReadMemory(c.TapeLength()-1, 10)).To(HaveLen(1))
			Expect(c.ReadMemory(-1, 1)).To(BeNil())
		})
	})

	Context("when reading input", func() {
		It("should store the first byte of the next non-empty line", func() {
			lines("", "AB")
			c := build(",.")

			Expect(c.Run(context.Background())).To(Succeed())
			Expect(out.String()).To(Equal("A"))
			Expect(stats.BytesIn).To(Equal(uint64(1)))
		})

		It("should print the input prompt apart from program output", func() {
			lines("x", "y")
			prompt := new(bytes.Buffer)
			c := build(".,.,.", func(b Builder) Builder {
				return b.WithInputPrompt(prompt)
			})

			Expect(c.Run(context.Background())).To(Succeed())
			Expect(out.String()).To(Equal("\x00xy"))
			Expect(prompt.String()).To(Equal("> > "))
		})

		It("should feed whole lines in stream mode", func() {
			lines("hi")
			c := build(",.,.,.", func(b Builder) Builder {
				return b.WithInputMode(StreamInput)
			})

			Expect(c.Run(context.Background())).To(Succeed())
			Expect(out.String()).To(Equal("hi\n"))
		})

		It("should leave the cell unchanged when the input has ended", func() {
			lines()
			c := build("+,.")

			Expect(c.Run(context.Background())).To(Succeed())
			Expect(out.Bytes()).To(Equal([]byte{1}))
		})

		It("should stop a loop that never ends when the context is cancelled", func() {
			c := build("+[]")
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			done := make(chan error, 1)
			go func() { done <- c.Run(ctx) }()

			Eventually(done, "2s").Should(Receive(MatchError(context.Canceled)))
		})

		It("should stop a busy loop cancelled while it runs", func() {
			c := build("+[>+<]")
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()

			done := make(chan error, 1)
			go func() { done <- c.Run(ctx) }()

			Eventually(done, "2s").Should(Receive(MatchError(context.DeadlineExceeded)))
			Expect(c.Steps()).To(BeNumerically(">", 2))
		})

		It("should stop when the context is cancelled", func() {
			input.EXPECT().ReadLine(gomock.Any()).Return("", context.Canceled)
			c := build(",.")

			err := c.Run(context.Background())

			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
			Expect(out.Len()).To(Equal(0))
		})
	})

	Context("when debugging", func() {
		It("should stop before every instruction after a breakpoint", func() {
			lines("next", "exit")
			c := build("!++.")

			Expect(c.Run(context.Background())).To(Succeed())
			Expect(out.String()).To(Equal(
				"(brainfuck 0x00000001:0x00000000:+) " +
					"(brainfuck 0x00000002:0x00000000:+) " +
					"\x02"))
			Expect(c.Mode()).To(Equal(Running))
			Expect(stats.Breakpoints).To(Equal(uint64(1)))
			Expect(stats.ModeChanges).To(Equal(uint64(2)))
		})

		It("should stop again at the next breakpoint", func() {
			lines("q", "q")
			c := build("!+!+")

			Expect(c.Run(context.Background())).To(Succeed())
			Expect(strings.Count(out.String(), "(brainfuck")).To(Equal(2))
			Expect(out.String()).To(ContainSubstring("(brainfuck 0x00000003:0x00000000:+) "))
		})

		It("should follow output with a newline", func() {
			lines("n")
			c := build("+!.")

			Expect(c.Run(context.Background())).To(Succeed())
			Expect(out.String()).To(Equal("(brainfuck 0x00000002:0x00000000:.) \x01\n"))
		})

		It("should start in the debugger when asked to", func() {
			lines("n", "quit")
			c := build("+>+", func(b Builder) Builder {
				return b.WithDebugging(true)
			})

			Expect(c.Run(context.Background())).To(Succeed())
			Expect(out.String()).To(Equal(
				"(brainfuck 0x00000000:0x00000000:+) " +
					"(brainfuck 0x00000001:0x00000000:>) "))
			Expect(c.Pointer()).To(Equal(1))
		})

		It("should reprint the prompt on an empty line", func() {
			lines("", "  ", "exit")
			c := build("!+")

			Expect(c.Run(context.Background())).To(Succeed())
			Expect(strings.Count(out.String(), "(brainfuck 0x00000001:0x00000000:+) ")).
				To(Equal(3))
		})

		It("should report unknown commands and keep waiting", func() {
			lines("jump", "exit")
			c := build("!+")

			Expect(c.Run(context.Background())).To(Succeed())
			Expect(out.String()).To(Equal(
				"(brainfuck 0x00000001:0x00000000:+) " +
					"Unable to parse command: jump\n" +
					"(brainfuck 0x00000001:0x00000000:+) "))
		})

		It("should list upcoming code", func() {
			lines("code", "exit")
			c := build("!+[->+<]")

			Expect(c.Run(context.Background())).To(Succeed())
			Expect(out.String()).To(ContainSubstring(":+) +[->+<]\n(brainfuck"))
		})

		It("should list at most 8 rows of 64 instructions", func() {
			lines("c", "q")
			c := build("!" + strings.Repeat("+", 1000))

			Expect(c.Run(context.Background())).To(Succeed())

			listing := strings.Split(out.String(), "\n")
			Expect(listing[0]).To(HaveSuffix(strings.Repeat("+", 64)))
			Expect(listing[1:8]).To(HaveEach(Equal(strings.Repeat("+", 64))))
			Expect(listing[8]).To(HavePrefix("(brainfuck"))
		})

		It("should dump memory around the data pointer", func() {
			lines("m", "exit")
			src := strings.Repeat(">", 17) + strings.Repeat("+", 65) + "!."
			c := build(src, func(b Builder) Builder {
				return b.WithTapeLength(40)
			})

			Expect(c.Run(context.Background())).To(Succeed())

			text := out.String()
			Expect(text).To(ContainSubstring(
				"0x00000010  00 41 00 00 00 00 00 00 00 00 00 00 00 00 00 00  .A..............\n"))
			Expect(text).To(ContainSubstring(
				"0x00000020  00 00 00 00 00 00 00 00  ........\n"))
			Expect(text).NotTo(ContainSubstring("0x00000030"))
		})

		It("should show the core state", func() {
			lines("info", "help", "exit")
			c := build("+!-")

			Expect(c.Run(context.Background())).To(Succeed())
			Expect(out.String()).To(MatchRegexp("(?i)core state"))
			Expect(out.String()).To(ContainSubstring("Decrement"))
			Expect(out.String()).To(ContainSubstring("leave the debugger"))
		})

		It("should leave the debugger when the input ends", func() {
			lines()
			c := build("!+++.")

			Expect(c.Run(context.Background())).To(Succeed())
			Expect(out.String()).To(Equal("(brainfuck 0x00000001:0x00000000:+) \x03"))
			Expect(c.Mode()).To(Equal(Running))
		})

		It("should share the input between commands and the program", func() {
			lines("n", "Z", "exit")
			c := build("!,.")

			Expect(c.Run(context.Background())).To(Succeed())
			Expect(out.String()).To(Equal(
				"(brainfuck 0x00000001:0x00000000:,) " +
					"(brainfuck 0x00000002:0x00000000:.) Z"))
		})
	})
})
