package ast

import (
	"strings"

	"github.com/agenthands/nbf/pkg/compiler/lexer"
)

// Instruction is a node of the instruction tree. Leaves map to single
// tokens; a Loop owns its body outright.
type Instruction interface {
	instrNode()
}

// Program is the root node.
type Program struct {
	Instructions []Instruction
}

type MoveRight struct{}

func (MoveRight) instrNode() {}

type MoveLeft struct{}

func (MoveLeft) instrNode() {}

type Increment struct{}

func (Increment) instrNode() {}

type Decrement struct{}

func (Decrement) instrNode() {}

// Write emits the current cell.
type Write struct{}

func (Write) instrNode() {}

// Read stores one input byte in the current cell.
type Read struct{}

func (Read) instrNode() {}

// Loop: [ BODY ]
type Loop struct {
	Body []Instruction
}

func (Loop) instrNode() {}

// Leaf returns the leaf instruction for a non-bracket token.
func Leaf(tok lexer.Token) (Instruction, bool) {
	switch tok {
	case lexer.TokenMoveRight:
		return MoveRight{}, true
	case lexer.TokenMoveLeft:
		return MoveLeft{}, true
	case lexer.TokenIncrement:
		return Increment{}, true
	case lexer.TokenDecrement:
		return Decrement{}, true
	case lexer.TokenWrite:
		return Write{}, true
	case lexer.TokenRead:
		return Read{}, true
	}
	return nil, false
}

// Flatten expands the tree back into its bracketed token form.
func Flatten(instrs []Instruction) []lexer.Token {
	return appendTokens(nil, instrs)
}

func appendTokens(dst []lexer.Token, instrs []Instruction) []lexer.Token {
	for _, in := range instrs {
		switch n := in.(type) {
		case MoveRight:
			dst = append(dst, lexer.TokenMoveRight)
		case MoveLeft:
			dst = append(dst, lexer.TokenMoveLeft)
		case Increment:
			dst = append(dst, lexer.TokenIncrement)
		case Decrement:
			dst = append(dst, lexer.TokenDecrement)
		case Write:
			dst = append(dst, lexer.TokenWrite)
		case Read:
			dst = append(dst, lexer.TokenRead)
		case Loop:
			dst = append(dst, lexer.TokenLoopStart)
			dst = appendTokens(dst, n.Body)
			dst = append(dst, lexer.TokenLoopEnd)
		}
	}
	return dst
}

// Format renders the tree as canonical source, comments stripped.
func Format(instrs []Instruction) string {
	toks := Flatten(instrs)
	var b strings.Builder
	b.Grow(len(toks))
	for _, t := range toks {
		b.WriteByte(t.Byte())
	}
	return b.String()
}

// Depth returns the deepest loop nesting in instrs.
func Depth(instrs []Instruction) int {
	deepest := 0
	for _, in := range instrs {
		if l, ok := in.(Loop); ok {
			if d := 1 + Depth(l.Body); d > deepest {
				deepest = d
			}
		}
	}
	return deepest
}

// Count returns the number of instructions in the tree, loops included.
func Count(instrs []Instruction) int {
	n := len(instrs)
	for _, in := range instrs {
		if l, ok := in.(Loop); ok {
			n += Count(l.Body)
		}
	}
	return n
}
