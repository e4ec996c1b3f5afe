package vm_test

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"

	"github.com/agenthands/nbf/pkg/compiler/ast"
	"github.com/agenthands/nbf/pkg/compiler/lexer"
	"github.com/agenthands/nbf/pkg/compiler/parser"
	"github.com/agenthands/nbf/pkg/core/tape"
	"github.com/agenthands/nbf/pkg/vm"
)

func compile(src string) []ast.Instruction {
	prog, err := parser.Parse(lexer.Lex([]byte(src)))
	Expect(err).NotTo(HaveOccurred())
	return prog.Instructions
}

type flushCounter struct {
	bytes.Buffer
	flushes int
}

func (f *flushCounter) Flush() error {
	f.flushes++
	return nil
}

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Debugf(format string, args ...interface{}) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

var _ = Describe("Machine", func() {
	var (
		mockCtrl *gomock.Controller
		in       *MockInput
		out      *MockOutput
		tp       *tape.Tape
		m        *vm.Machine
		ctx      context.Context
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		in = NewMockInput(mockCtrl)
		out = NewMockOutput(mockCtrl)

		var err error
		tp, err = tape.New(16)
		Expect(err).NotTo(HaveOccurred())

		m = vm.NewMachine(tp, in, out)
		ctx = context.Background()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	Context("Leaf instructions", func() {
		It("should write the character with code point 2 for ++.", func() {
			out.EXPECT().WriteByte(byte(2)).Return(nil)

			Expect(m.Run(ctx, compile("++."))).To(Succeed())
		})

		It("should read one byte and write it back for ,.", func() {
			gomock.InOrder(
				in.EXPECT().ReadByte().Return(byte('A'), nil),
				out.EXPECT().WriteByte(byte('A')).Return(nil),
			)

			Expect(m.Run(ctx, compile(",."))).To(Succeed())
		})

		It("should wrap decrement below zero", func() {
			out.EXPECT().WriteByte(byte(255)).Return(nil)

			Expect(m.Run(ctx, compile("-."))).To(Succeed())
		})

		It("should wrap increment above 255", func() {
			tp.Set(255)
			Expect(m.Run(ctx, compile("+"))).To(Succeed())
			Expect(tp.Get()).To(Equal(byte(0)))
		})

		It("should move the cursor in both directions", func() {
			start := tp.Cursor()
			Expect(m.Run(ctx, compile(">>+<"))).To(Succeed())
			Expect(tp.Cursor()).To(Equal(start + 1))
			Expect(tp.Window(start+2, start+3)).To(Equal([]byte{1}))
		})
	})

	Context("Loops", func() {
		It("should count a cell of 5 down to zero with [-]", func() {
			tp.Set(5)
			Expect(m.Run(ctx, compile("[-]"))).To(Succeed())
			Expect(tp.Get()).To(Equal(byte(0)))
			// 1 loop entry + 5 decrements + 5 condition re-checks.
			Expect(m.Steps()).To(Equal(11))
		})

		It("should skip the body when the cell starts at zero", func() {
			// No WriteByte expectation: any call fails the test.
			Expect(m.Run(ctx, compile("[.]"))).To(Succeed())
		})

		It("should only check the condition after a full pass", func() {
			// The body zeroes cell 0 midway, then restores and re-zeroes it.
			Expect(m.Run(ctx, compile("+[-+>+<-]"))).To(Succeed())
			Expect(tp.Get()).To(Equal(byte(0)))
			Expect(tp.Window(tp.Cursor()+1, tp.Cursor()+2)).To(Equal([]byte{1}))
		})

		It("should run nested loops", func() {
			// 3 * 4 added to the cell two to the right.
			out.EXPECT().WriteByte(byte(12)).Return(nil)

			Expect(m.Run(ctx, compile("+++[>++++[>+<-]<-]>>."))).To(Succeed())
		})
	})

	Context("Errors", func() {
		It("should fail when input is exhausted", func() {
			in.EXPECT().ReadByte().Return(byte(0), io.EOF)

			err := m.Run(ctx, compile(","))
			Expect(err).To(MatchError(vm.ErrInputExhausted))
		})

		It("should wrap other read failures", func() {
			boom := errors.New("boom")
			in.EXPECT().ReadByte().Return(byte(0), boom)

			err := m.Run(ctx, compile(","))
			Expect(errors.Is(err, boom)).To(BeTrue())
			Expect(err.Error()).To(HavePrefix("vm: read"))
		})

		It("should wrap write failures", func() {
			boom := errors.New("disk full")
			out.EXPECT().WriteByte(byte(1)).Return(boom)

			err := m.Run(ctx, compile("+.+."))
			Expect(errors.Is(err, boom)).To(BeTrue())
		})

		It("should stop when the cursor leaves the tape", func() {
			err := m.Run(ctx, compile("<<<<<<<<<"))
			Expect(err).To(MatchError(tape.ErrCursorOutOfRange))
			Expect(tp.Cursor()).To(Equal(0))
		})

		It("should stop when the cursor runs off the right end", func() {
			err := m.Run(ctx, compile("+[>+]"))
			Expect(err).To(MatchError(tape.ErrCursorOutOfRange))
			Expect(tp.Cursor()).To(Equal(tp.Len() - 1))
		})

		It("should log the tape around the cursor on failure", func() {
			log := &recordingLogger{}
			m.Logger = log

			Expect(m.Run(ctx, compile("<<<<<<<<<"))).NotTo(Succeed())
			Expect(log.lines).To(HaveLen(1))
			Expect(log.lines[0]).To(ContainSubstring("at cell 0"))
		})

		It("should require a tape", func() {
			m.Tape = nil
			Expect(m.Run(ctx, compile("+"))).To(MatchError(vm.ErrNoTape))
		})

		It("should require an output for write", func() {
			m.Out = nil
			Expect(m.Run(ctx, compile("."))).To(MatchError(vm.ErrNoOutput))
		})

		It("should treat a missing input as exhausted", func() {
			m.In = nil
			Expect(m.Run(ctx, compile(","))).To(MatchError(vm.ErrInputExhausted))
		})
	})

	Context("Limits", func() {
		It("should stop an endless loop once gas runs out", func() {
			m.GasLimit = 100

			err := m.Run(ctx, compile("+[]"))
			Expect(err).To(MatchError(vm.ErrGasExhausted))
			Expect(m.Steps()).To(Equal(101))
		})

		It("should stop an endless loop when the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			err := m.Run(cctx, compile("+[]"))
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		})

		It("should not consult the context outside loops", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			Expect(m.Run(cctx, compile("+++"))).To(Succeed())
			Expect(tp.Get()).To(Equal(byte(3)))
		})
	})

	It("should flush buffered output before blocking on input", func() {
		buf := &flushCounter{}
		m.Out = buf
		m.In = bytes.NewReader([]byte("z"))

		Expect(m.Run(ctx, compile("+++.,."))).To(Succeed())
		Expect(buf.flushes).To(Equal(1))
		Expect(buf.Bytes()).To(Equal([]byte{3, 'z'}))
	})

	It("should reset the tape and step counter", func() {
		Expect(m.Run(ctx, compile("+>+"))).To(Succeed())
		m.Reset()
		Expect(m.Steps()).To(Equal(0))
		Expect(tp.Cursor()).To(Equal(8))
		Expect(tp.Get()).To(Equal(byte(0)))
	})
})
