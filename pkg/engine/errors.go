package engine

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/agenthands/nbf/pkg/compiler/lexer"
	"github.com/agenthands/nbf/pkg/compiler/parser"
	"github.com/agenthands/nbf/pkg/core/tape"
	"github.com/agenthands/nbf/pkg/stdlib"
	"github.com/agenthands/nbf/pkg/vm"
)

// Class groups failures by how a front end should report them.
type Class int

const (
	ClassNone Class = iota
	ClassIO
	ClassSyntax
	ClassRuntime
	ClassCanceled
)

func (c Class) String() string {
	switch c {
	case ClassNone:
		return "none"
	case ClassIO:
		return "I/O Error"
	case ClassSyntax:
		return "Syntax Error"
	case ClassRuntime:
		return "Runtime Error"
	case ClassCanceled:
		return "Interrupted"
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// Classify reports the class of err. Errors that do not come from the
// parser, the tape or the VM's own checks are treated as I/O failures of
// the program's input or output.
func Classify(err error) Class {
	var (
		synErr *parser.SyntaxError
		srcErr *stdlib.SourceError
	)
	switch {
	case err == nil:
		return ClassNone
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ClassCanceled
	case errors.As(err, &synErr):
		return ClassSyntax
	case errors.As(err, &srcErr), errors.Is(err, vm.ErrInputExhausted):
		return ClassIO
	case errors.Is(err, tape.ErrCursorOutOfRange),
		errors.Is(err, tape.ErrInvalidSize),
		errors.Is(err, vm.ErrGasExhausted),
		errors.Is(err, vm.ErrNoTape),
		errors.Is(err, vm.ErrNoOutput),
		errors.Is(err, ErrNoProgram):
		return ClassRuntime
	}
	return ClassIO
}

// LocatedError is a syntax error pinned to a place in the source text.
type LocatedError struct {
	Pos lexer.Position
	Err error
}

func (e *LocatedError) Error() string {
	return fmt.Sprintf("line %d, column %d: %v", e.Pos.Line, e.Pos.Column, e.Err)
}

func (e *LocatedError) Unwrap() error { return e.Err }

func withPosition(src []byte, err error) error {
	var synErr *parser.SyntaxError
	if !errors.As(err, &synErr) {
		return err
	}
	pos, ok := lexer.Locate(src, synErr.Index)
	if !ok {
		return err
	}
	return &LocatedError{Pos: pos, Err: err}
}
