// Package engine wires the lexer, parser and VM into a single call and
// sorts the errors they return into classes a front end can act on.
package engine

import (
	"context"
	"io"

	"github.com/pkg/errors"

	"github.com/agenthands/nbf/pkg/compiler/ast"
	"github.com/agenthands/nbf/pkg/compiler/lexer"
	"github.com/agenthands/nbf/pkg/compiler/parser"
	"github.com/agenthands/nbf/pkg/core/tape"
	"github.com/agenthands/nbf/pkg/stdlib"
	"github.com/agenthands/nbf/pkg/vm"
)

// ErrNoProgram is returned by Execute when it is given a nil program.
var ErrNoProgram = errors.New("engine: no program")

// Options tunes a run. The zero value is a standard interpreter.
type Options struct {
	// TapeSize is the number of cells; zero means tape.DefaultSize.
	TapeSize int
	// GasLimit caps executed steps; zero means unlimited.
	GasLimit int
	// Logger receives debug output; nil means silent.
	// *logger.Logger from github.com/jcgregorio/logger satisfies it.
	Logger vm.Logger
}

// Compile turns source text into an instruction tree. Syntax errors carry
// the line and column of the offending bracket.
func Compile(src []byte, log vm.Logger) (*ast.Program, error) {
	tokens := lexer.Lex(src)
	prog, err := parser.Parse(tokens)
	if err != nil {
		return nil, withPosition(src, err)
	}
	if log != nil {
		log.Debugf("engine: %d tokens, %d instructions, loop depth %d",
			len(tokens), ast.Count(prog.Instructions), ast.Depth(prog.Instructions))
	}
	return prog, nil
}

// Execute runs prog on a fresh tape. The caller owns in and out; buffered
// output is not flushed.
func Execute(ctx context.Context, prog *ast.Program, in vm.Input, out vm.Output, opts Options) error {
	if prog == nil {
		return ErrNoProgram
	}
	size := opts.TapeSize
	if size == 0 {
		size = tape.DefaultSize
	}
	t, err := tape.New(size)
	if err != nil {
		return err
	}

	m := vm.NewMachine(t, in, out)
	m.GasLimit = opts.GasLimit
	m.Logger = opts.Logger

	if err := m.Run(ctx, prog.Instructions); err != nil {
		return err
	}
	if opts.Logger != nil {
		opts.Logger.Debugf("engine: finished in %d steps", m.Steps())
	}
	return nil
}

// Run compiles src and executes it, reading program input from in and
// writing program output to out. Nothing is executed if src does not
// parse. Output is flushed before Run returns, even on failure.
func Run(ctx context.Context, src []byte, in io.Reader, out io.Writer, opts Options) error {
	prog, err := Compile(src, opts.Logger)
	if err != nil {
		return err
	}

	output := stdlib.NewByteOutput(out)
	runErr := Execute(ctx, prog, stdlib.NewByteInput(in), output, opts)
	if err := output.Flush(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}
