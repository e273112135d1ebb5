package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"
)

// Source opens named assets. Names are slash-separated and already
// sanitized by the Responder. A missing asset returns an error matching
// fs.ErrNotExist.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadSeekCloser, time.Time, error)
}

// FSSource serves assets from a file system.
type FSSource struct {
	FS fs.FS
}

// DirSource returns a Source reading from a local directory.
func DirSource(dir string) *FSSource {
	return &FSSource{FS: os.DirFS(dir)}
}

// Open opens name. Directories are reported as missing.
func (s *FSSource) Open(_ context.Context, name string) (io.ReadSeekCloser, time.Time, error) {
	f, err := s.FS.Open(name)
	if err != nil {
		return nil, time.Time{}, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, time.Time{}, err
	}
	if info.IsDir() {
		f.Close()
		return nil, time.Time{}, fmt.Errorf("assets: %s is a directory: %w", name, fs.ErrNotExist)
	}

	if rs, ok := f.(io.ReadSeekCloser); ok {
		return rs, info.ModTime(), nil
	}

	// Not seekable: buffer it.
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		return nil, time.Time{}, err
	}
	return nopCloser{bytes.NewReader(data)}, info.ModTime(), nil
}

type nopCloser struct {
	io.ReadSeeker
}

func (nopCloser) Close() error { return nil }

// ErrTooLarge is returned when a remote object exceeds the size limit.
var ErrTooLarge = errors.New("assets: object too large")

// readLimited reads r fully, failing with ErrTooLarge past max bytes.
func readLimited(r io.Reader, max int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > max {
		return nil, ErrTooLarge
	}
	return data, nil
}
