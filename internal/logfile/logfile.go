// Package logfile reads log files by byte range and by tail window.
// It never writes to the files it reads.
package logfile

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ChunkSize is the read unit for the backward tail scan.
const ChunkSize = 8 * 1024

var (
	// ErrNotConfigured means no log directory is configured for a source.
	ErrNotConfigured = errors.New("log path not configured")

	// ErrNoLogFile means the directory exists but holds no recognizable log file.
	ErrNoLogFile = errors.New("no log file found")
)

// ReadRange reads up to length bytes from path starting at startOffset.
// If the range extends past end-of-file, only the available bytes are
// returned. Open and read failures are returned as errors; callers treat
// them as non-fatal and surface them to the client.
func ReadRange(path string, startOffset, length int64) ([]byte, error) {
	if length <= 0 {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	size := info.Size()
	if startOffset >= size {
		return nil, nil
	}
	if startOffset+length > size {
		length = size - startOffset
	}

	buf := make([]byte, length)
	n, err := f.ReadAt(buf, startOffset)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return buf[:n], nil
}

// Size returns the current size of the file in bytes.
func Size(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.Size(), nil
}
