package lexer

// Token is one of the eight instruction symbols. It carries no payload.
type Token uint8

const (
	TokenMoveRight Token = iota // >
	TokenMoveLeft               // <
	TokenIncrement              // +
	TokenDecrement              // -
	TokenWrite                  // .
	TokenRead                   // ,
	TokenLoopStart              // [
	TokenLoopEnd                // ]
)

// symbols maps every byte to (token+1), zero meaning "not an instruction".
var symbols = [256]uint8{
	'>': uint8(TokenMoveRight) + 1,
	'<': uint8(TokenMoveLeft) + 1,
	'+': uint8(TokenIncrement) + 1,
	'-': uint8(TokenDecrement) + 1,
	'.': uint8(TokenWrite) + 1,
	',': uint8(TokenRead) + 1,
	'[': uint8(TokenLoopStart) + 1,
	']': uint8(TokenLoopEnd) + 1,
}

var glyphs = [...]byte{'>', '<', '+', '-', '.', ',', '[', ']'}

// Lookup reports the token for ch, if ch is an instruction symbol.
func Lookup(ch byte) (Token, bool) {
	t := symbols[ch]
	if t == 0 {
		return 0, false
	}
	return Token(t - 1), true
}

// Byte returns the source character of t.
func (t Token) Byte() byte {
	if int(t) >= len(glyphs) {
		return '?'
	}
	return glyphs[t]
}

func (t Token) String() string {
	return string(t.Byte())
}

// IsBracket reports whether t opens or closes a loop.
func (t Token) IsBracket() bool {
	return t == TokenLoopStart || t == TokenLoopEnd
}
