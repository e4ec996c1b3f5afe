package parser

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/agenthands/nbf/pkg/compiler/ast"
	"github.com/agenthands/nbf/pkg/compiler/lexer"
)

var (
	ErrUnmatchedLoopEnd = errors.New("parser: unmatched loop end")
	ErrUnterminatedLoop = errors.New("parser: unterminated loop")
	ErrUnknownToken     = errors.New("parser: unknown token")
)

// SyntaxError reports a bracket mismatch or a token no instruction maps
// to. Index is the position of the
// offending token in the token stream handed to Parse.
type SyntaxError struct {
	Err   error
	Index int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v at token %d", e.Err, e.Index)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// Parser builds an instruction tree from a scanner's tokens.
type Parser struct {
	scanner *lexer.Scanner
}

func NewParser(s *lexer.Scanner) *Parser {
	return &Parser{scanner: s}
}

// Parse drains the scanner and parses the result.
func (p *Parser) Parse() (*ast.Program, error) {
	var tokens []lexer.Token
	for {
		tok, ok := p.scanner.Next()
		if !ok {
			break
		}
		tokens = append(tokens, tok)
	}
	return Parse(tokens)
}

// Parse resolves bracket nesting in tokens. On error no tree is returned.
func Parse(tokens []lexer.Token) (*ast.Program, error) {
	instrs, err := parse(tokens, 0)
	if err != nil {
		return nil, err
	}
	return &ast.Program{Instructions: instrs}, nil
}

// parse handles one nesting level. base is the index of tokens[0] in the
// top-level stream so errors point at the right token.
func parse(tokens []lexer.Token, base int) ([]ast.Instruction, error) {
	instrs := []ast.Instruction{}
	depth := 0
	start := 0

	for i, tok := range tokens {
		if depth == 0 {
			switch tok {
			case lexer.TokenLoopStart:
				start = i
				depth++
			case lexer.TokenLoopEnd:
				return nil, &SyntaxError{Err: ErrUnmatchedLoopEnd, Index: base + i}
			default:
				leaf, ok := ast.Leaf(tok)
				if !ok {
					return nil, &SyntaxError{Err: ErrUnknownToken, Index: base + i}
				}
				instrs = append(instrs, leaf)
			}
			continue
		}

		// Loop bodies are checked when they are parsed recursively.
		if !tok.IsBracket() {
			continue
		}
		switch tok {
		case lexer.TokenLoopStart:
			depth++
		case lexer.TokenLoopEnd:
			depth--
			if depth == 0 {
				body, err := parse(tokens[start+1:i], base+start+1)
				if err != nil {
					return nil, err
				}
				instrs = append(instrs, ast.Loop{Body: body})
			}
		}
	}

	if depth != 0 {
		return nil, &SyntaxError{Err: ErrUnterminatedLoop, Index: base + start}
	}
	return instrs, nil
}
