package logfile

import (
	"fmt"
	"math"
	"os"
	"strings"
)

// TailWindow is the result of a backward tail scan: the last lines of the
// file in original order, plus an estimate of how many lines the whole file
// holds. EstimatedTotal is a display heuristic extrapolated from the average
// line length seen during the scan; it must never be treated as exact.
type TailWindow struct {
	Lines          []string
	EstimatedTotal int
	// Size is the file size observed at scan time. A follower uses it as
	// its starting offset so lines appended mid-scan are picked up by the
	// first poll instead of being lost.
	Size int64
}

// Tail returns up to desiredLineCount complete, non-empty lines from the end
// of the file, oldest first. It reads backward in fixed-size chunks and never
// loads the whole file unless the file fits in one chunk.
func Tail(path string, desiredLineCount int) (TailWindow, error) {
	f, err := os.Open(path)
	if err != nil {
		return TailWindow{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return TailWindow{}, fmt.Errorf("stat %s: %w", path, err)
	}
	size := info.Size()
	if size == 0 || desiredLineCount <= 0 {
		return TailWindow{Size: size}, nil
	}

	var (
		lines   []string
		buf     string // rolling buffer; head may be a partial line
		offset  = size
		scanned int64
	)

	// One extra iteration of headroom guarantees termination on files with
	// no newlines at all.
	maxIters := int(size/ChunkSize) + 2

	for iter := 0; iter < maxIters && offset > 0 && len(lines) < desiredLineCount; iter++ {
		chunkLen := int64(ChunkSize)
		if offset < chunkLen {
			chunkLen = offset
		}
		offset -= chunkLen

		chunk := make([]byte, chunkLen)
		if _, err := f.ReadAt(chunk, offset); err != nil {
			return TailWindow{}, fmt.Errorf("read %s: %w", path, err)
		}
		scanned += chunkLen

		buf = string(chunk) + buf
		parts := strings.Split(buf, "\n")
		// parts[0] may continue into the previous (more backward) chunk;
		// everything after it is complete.
		buf = parts[0]
		complete := parts[1:]

		for i := len(complete) - 1; i >= 0 && len(lines) < desiredLineCount; i-- {
			line := strings.TrimSpace(complete[i])
			if line == "" {
				continue
			}
			lines = append(lines, line)
		}
	}

	// Whatever is left at offset 0 is the first line of the file.
	consumed := scanned
	if offset == 0 && len(lines) < desiredLineCount {
		if line := strings.TrimSpace(buf); line != "" {
			lines = append(lines, line)
		}
	} else {
		// The head fragment and the newline that terminates it belong to
		// lines we never collected; keep them out of the average.
		consumed -= int64(len(buf)) + 1
	}

	// Collected newest-first; flip to file order.
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}

	return TailWindow{
		Lines:          lines,
		EstimatedTotal: estimateTotal(len(lines), consumed, size),
		Size:           size,
	}, nil
}

// estimateTotal extrapolates the file's line count from the average line
// length observed over the consumed portion of the scan.
func estimateTotal(collected int, consumed, size int64) int {
	if collected == 0 || consumed <= 0 {
		return collected
	}
	avg := float64(consumed) / float64(collected)
	est := int(math.Round(float64(size) / avg))
	if est < collected {
		est = collected
	}
	return est
}
