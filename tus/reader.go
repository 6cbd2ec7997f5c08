package tus

import (
	"io"

	"github.com/tusclient/go-tus/internal"
)

// fileWindowReader yields a byte window at an offset from a local file. The
// file handle is opened and released within a single read call; it is never
// held open between calls.
type fileWindowReader struct {
	os internal.OsProxy
}

func newFileWindowReader(os internal.OsProxy) *fileWindowReader {
	return &fileWindowReader{os: os}
}

// read returns up to length bytes starting at offset. If the underlying
// read hits end-of-file before filling the requested length, the shorter
// slice is returned and the caller treats that as the final chunk.
func (r *fileWindowReader) read(path string, offset, length int64) ([]byte, error) {
	f, err := r.os.Open(path)
	if err != nil {
		return nil, &IOFailure{Path: path, Err: err}
	}
	defer f.Close() //nolint:errcheck

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, &IOFailure{Path: path, Err: err}
	}

	buf := make([]byte, length)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, &IOFailure{Path: path, Err: err}
	}

	return buf[:n], nil
}

// size returns the total byte length of the file at path.
func (r *fileWindowReader) size(path string) (int64, error) {
	info, err := r.os.Stat(path)
	if err != nil {
		return 0, &IOFailure{Path: path, Err: err}
	}
	return info.Size(), nil
}
