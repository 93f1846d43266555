// Package recordings lists and serves finished capture files.
package recordings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// Lookup errors.
var (
	ErrInvalidName = errors.New("invalid recording name")
	ErrNotFound    = errors.New("recording not found")
)

// Recording is one file in the output directory.
type Recording struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// Listed reports whether a directory entry name is a recording. Job logs and
// hidden files are not.
func Listed(name string) bool {
	return name != "" && !strings.HasPrefix(name, ".") && !strings.EqualFold(filepath.Ext(name), ".log")
}

// List returns the recordings in dir, newest first. A missing directory has
// no recordings.
func List(dir string) ([]Recording, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []Recording{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read output directory: %w", err)
	}

	recordings := make([]Recording, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !Listed(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		recordings = append(recordings, Recording{
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	slices.SortFunc(recordings, func(a, b Recording) int {
		if c := b.ModTime.Compare(a.ModTime); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return recordings, nil
}

// Open opens a recording for download. Only bare file names are accepted so
// a request can never escape dir.
func Open(dir, name string) (*os.File, fs.FileInfo, error) {
	if name != filepath.Base(name) || name == "." || name == ".." || !Listed(name) {
		return nil, nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	f, err := os.Open(filepath.Join(dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return f, info, nil
}
