package stdlib

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// MaxSourceSize caps how much program text LoadSource will accept.
const MaxSourceSize = 16 << 20

var (
	ErrFileTooLarge = errors.New("stdlib/fs: file size limit exceeded")
	ErrIsDirectory  = errors.New("stdlib/fs: is a directory")
)

// SourceError reports a source file that could not be loaded.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("cannot load %s: %v", e.Path, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// LoadSource reads the program at path, refusing anything over maxSize
// bytes. A non-positive maxSize means MaxSourceSize.
func LoadSource(path string, maxSize int64) ([]byte, error) {
	if maxSize <= 0 {
		maxSize = MaxSourceSize
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &SourceError{Path: path, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &SourceError{Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &SourceError{Path: path, Err: ErrIsDirectory}
	}
	if info.Mode().IsRegular() && info.Size() > maxSize {
		return nil, &SourceError{Path: path, Err: tooLarge(info.Size(), maxSize)}
	}

	// Pipes and devices report no size, so the limit is enforced on read too.
	data, err := io.ReadAll(io.LimitReader(f, maxSize+1))
	if err != nil {
		return nil, &SourceError{Path: path, Err: err}
	}
	if int64(len(data)) > maxSize {
		return nil, &SourceError{Path: path, Err: tooLarge(int64(len(data)), maxSize)}
	}
	return data, nil
}

func tooLarge(size, limit int64) error {
	return errors.Wrapf(ErrFileTooLarge, "%s exceeds %s",
		humanize.IBytes(uint64(size)), humanize.IBytes(uint64(limit)))
}
