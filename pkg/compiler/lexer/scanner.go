package lexer

// Position is a 1-based line and column in the source.
type Position struct {
	Line   int
	Column int
}

// Scanner performs lexical analysis on program source. Every byte that is
// not an instruction symbol is a comment and is skipped.
type Scanner struct {
	source []byte
	cursor int
	line   int
	col    int

	pos Position // of the last token returned
}

// NewScanner creates a new scanner for the given source.
func NewScanner(source []byte) *Scanner {
	return &Scanner{
		source: source,
		line:   1,
		col:    1,
	}
}

// Reset re-initializes the scanner with new source.
func (s *Scanner) Reset(source []byte) {
	s.source = source
	s.cursor = 0
	s.line = 1
	s.col = 1
	s.pos = Position{}
}

// Next returns the next token. The second result is false once the source
// is exhausted.
func (s *Scanner) Next() (Token, bool) {
	for s.cursor < len(s.source) {
		ch := s.source[s.cursor]
		line, col := s.line, s.col
		s.advance(ch)

		if tok, ok := Lookup(ch); ok {
			s.pos = Position{Line: line, Column: col}
			return tok, true
		}
	}
	return 0, false
}

// Pos returns the position of the token most recently returned by Next.
func (s *Scanner) Pos() Position {
	return s.pos
}

func (s *Scanner) advance(ch byte) {
	s.cursor++
	if ch == '\n' {
		s.line++
		s.col = 1
		return
	}
	// Columns count characters, so UTF-8 continuation bytes don't advance.
	if ch&0xC0 != 0x80 {
		s.col++
	}
}

// Lex returns every token of source in order.
func Lex(source []byte) []Token {
	tokens := make([]Token, 0, len(source))
	s := NewScanner(source)
	for {
		tok, ok := s.Next()
		if !ok {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}

// Locate returns the source position of the index-th token of source.
func Locate(source []byte, index int) (Position, bool) {
	if index < 0 {
		return Position{}, false
	}
	s := NewScanner(source)
	for i := 0; ; i++ {
		if _, ok := s.Next(); !ok {
			return Position{}, false
		}
		if i == index {
			return s.Pos(), true
		}
	}
}
