// Package tape implements the interpreter's memory: a fixed row of byte
// cells and a cursor addressing one of them.
//
// Cell arithmetic wraps modulo 256. Moving the cursor off either end is an
// error and leaves the cursor where it was.
package tape

import (
	"github.com/pkg/errors"
)

// DefaultSize is the conventional tape length.
const DefaultSize = 30000

var (
	ErrCursorOutOfRange = errors.New("tape: cursor out of range")
	ErrInvalidSize      = errors.New("tape: size must be positive")
)

// Tape owns the cells and the cursor. It is not safe for concurrent use.
type Tape struct {
	cells  []byte
	cursor int
}

// New allocates a zeroed tape of size cells with the cursor in the middle.
func New(size int) (*Tape, error) {
	if size <= 0 {
		return nil, errors.Wrapf(ErrInvalidSize, "got %d", size)
	}
	return &Tape{
		cells:  make([]byte, size),
		cursor: size / 2,
	}, nil
}

// Len returns the number of cells.
func (t *Tape) Len() int { return len(t.cells) }

// Cursor returns the index of the current cell.
func (t *Tape) Cursor() int { return t.cursor }

// Get returns the current cell.
func (t *Tape) Get() byte { return t.cells[t.cursor] }

// Set stores b in the current cell.
func (t *Tape) Set(b byte) { t.cells[t.cursor] = b }

// Inc adds one to the current cell, wrapping 255 to 0.
func (t *Tape) Inc() { t.cells[t.cursor]++ }

// Dec subtracts one from the current cell, wrapping 0 to 255.
func (t *Tape) Dec() { t.cells[t.cursor]-- }

// Move shifts the cursor by delta cells.
func (t *Tape) Move(delta int) error {
	return t.Seek(t.cursor + delta)
}

// Seek places the cursor at an absolute index.
func (t *Tape) Seek(index int) error {
	if index < 0 || index >= len(t.cells) {
		return errors.Wrapf(ErrCursorOutOfRange, "move to cell %d of %d", index, len(t.cells))
	}
	t.cursor = index
	return nil
}

// Window returns a copy of the cells in [from, to), clamped to the tape.
func (t *Tape) Window(from, to int) []byte {
	if from < 0 {
		from = 0
	}
	if to > len(t.cells) {
		to = len(t.cells)
	}
	if from >= to {
		return []byte{}
	}
	out := make([]byte, to-from)
	copy(out, t.cells[from:to])
	return out
}

// Reset zeroes every cell and recentres the cursor.
func (t *Tape) Reset() {
	for i := range t.cells {
		t.cells[i] = 0
	}
	t.cursor = len(t.cells) / 2
}
