package vm

import (
	"context"
	"io"

	"github.com/pkg/errors"

	"github.com/agenthands/nbf/pkg/compiler/ast"
	"github.com/agenthands/nbf/pkg/core/tape"
)

var (
	ErrInputExhausted = errors.New("vm: input exhausted")
	ErrGasExhausted   = errors.New("vm: gas exhausted")
	ErrNoTape         = errors.New("vm: no tape attached")
	ErrNoOutput       = errors.New("vm: no output attached")
)

// Input supplies program input one byte at a time.
type Input interface {
	ReadByte() (byte, error)
}

// Output receives program output one byte at a time.
type Output interface {
	WriteByte(c byte) error
}

// flusher is implemented by buffered outputs.
type flusher interface {
	Flush() error
}

// Logger is the subset of github.com/jcgregorio/logger used by the VM.
type Logger interface {
	Debugf(format string, args ...interface{})
}

// dumpRadius is how many cells either side of the cursor are logged when a
// run fails.
const dumpRadius = 8

// Machine executes an instruction tree against a tape.
// It is not safe for concurrent use.
type Machine struct {
	Tape *tape.Tape
	In   Input
	Out  Output

	// GasLimit caps the number of executed steps; zero means unlimited.
	// A step is one leaf instruction or one loop condition check.
	GasLimit int

	Logger Logger

	steps int
}

// NewMachine returns a machine bound to t and the given ports.
func NewMachine(t *tape.Tape, in Input, out Output) *Machine {
	return &Machine{Tape: t, In: in, Out: out}
}

// Steps returns the number of steps executed since the last Reset.
func (m *Machine) Steps() int { return m.steps }

// Reset clears the step counter and the tape for reuse.
func (m *Machine) Reset() {
	m.steps = 0
	if m.Tape != nil {
		m.Tape.Reset()
	}
}

// Run executes instrs in order. Loop conditions are checked before each
// pass through the body; ctx is checked once per loop iteration.
func (m *Machine) Run(ctx context.Context, instrs []ast.Instruction) error {
	if m.Tape == nil {
		return ErrNoTape
	}
	err := m.exec(ctx, instrs)
	if err != nil && m.Logger != nil {
		c := m.Tape.Cursor()
		m.Logger.Debugf("vm: stopped after %d steps at cell %d (% x): %v",
			m.steps, c, m.Tape.Window(c-dumpRadius, c+dumpRadius+1), err)
	}
	return err
}

func (m *Machine) exec(ctx context.Context, instrs []ast.Instruction) error {
	t := m.Tape
	for _, in := range instrs {
		if err := m.charge(); err != nil {
			return err
		}

		switch n := in.(type) {
		case ast.MoveRight:
			if err := t.Move(1); err != nil {
				return err
			}

		case ast.MoveLeft:
			if err := t.Move(-1); err != nil {
				return err
			}

		case ast.Increment:
			t.Inc()

		case ast.Decrement:
			t.Dec()

		case ast.Write:
			if m.Out == nil {
				return ErrNoOutput
			}
			if err := m.Out.WriteByte(t.Get()); err != nil {
				return errors.Wrap(err, "vm: write")
			}

		case ast.Read:
			b, err := m.read()
			if err != nil {
				return err
			}
			t.Set(b)

		case ast.Loop:
			for t.Get() != 0 {
				if err := ctx.Err(); err != nil {
					return errors.Wrap(err, "vm: run cancelled")
				}
				if err := m.exec(ctx, n.Body); err != nil {
					return err
				}
				if err := m.charge(); err != nil {
					return err
				}
			}

		default:
			return errors.Errorf("vm: unknown instruction %T", in)
		}
	}
	return nil
}

// read flushes pending output, then blocks for exactly one input byte.
func (m *Machine) read() (byte, error) {
	if f, ok := m.Out.(flusher); ok {
		if err := f.Flush(); err != nil {
			return 0, errors.Wrap(err, "vm: flush before read")
		}
	}
	if m.In == nil {
		return 0, ErrInputExhausted
	}
	b, err := m.In.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, ErrInputExhausted
		}
		return 0, errors.Wrap(err, "vm: read")
	}
	return b, nil
}

func (m *Machine) charge() error {
	m.steps++
	if m.GasLimit > 0 && m.steps > m.GasLimit {
		return ErrGasExhausted
	}
	return nil
}
