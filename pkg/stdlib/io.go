package stdlib

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
)

// ByteInput reads exactly one byte per call from the underlying reader.
// It never reads ahead, so bytes it has not returned stay in r.
type ByteInput struct {
	r   io.Reader
	buf [1]byte
}

func NewByteInput(r io.Reader) *ByteInput {
	return &ByteInput{r: r}
}

// ReadByte blocks until one byte is available. It returns io.EOF once the
// reader is exhausted.
func (in *ByteInput) ReadByte() (byte, error) {
	for {
		n, err := in.r.Read(in.buf[:])
		if n == 1 {
			return in.buf[0], nil
		}
		if err != nil {
			if err == io.EOF {
				return 0, io.EOF
			}
			return 0, errors.Wrap(err, "stdlib/io: read")
		}
		// A zero-byte read without error is legal; try again.
	}
}

// ByteOutput buffers program output for w.
type ByteOutput struct {
	w *bufio.Writer
}

func NewByteOutput(w io.Writer) *ByteOutput {
	return &ByteOutput{w: bufio.NewWriter(w)}
}

func (out *ByteOutput) WriteByte(c byte) error {
	return out.w.WriteByte(c)
}

// Flush writes any buffered bytes to the underlying writer.
func (out *ByteOutput) Flush() error {
	if err := out.w.Flush(); err != nil {
		return errors.Wrap(err, "stdlib/io: flush")
	}
	return nil
}
