package logfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Resolve picks the canonical log file inside dir. The preferred well-known
// filename wins when it exists; otherwise the lexicographically last file
// matching the suffix is chosen, which for date-stamped names is the most
// recent one.
func Resolve(dir, preferred, suffix string) (string, error) {
	if dir == "" {
		return "", ErrNotConfigured
	}

	if preferred != "" {
		p := filepath.Join(dir, preferred)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read dir %s: %w", dir, err)
	}

	var matches []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if suffix == "" || strings.HasSuffix(e.Name(), suffix) {
			matches = append(matches, e.Name())
		}
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNoLogFile, dir)
	}

	sort.Strings(matches)
	return filepath.Join(dir, matches[len(matches)-1]), nil
}

// ResolveDated returns the path of a date-stamped variant of the preferred
// filename, e.g. server.log + 2026-09-01 -> server.2026-09-01.log.
func ResolveDated(dir, preferred, date string) (string, error) {
	if dir == "" {
		return "", ErrNotConfigured
	}
	ext := filepath.Ext(preferred)
	base := strings.TrimSuffix(preferred, ext)
	p := filepath.Join(dir, base+"."+date+ext)
	if _, err := os.Stat(p); err != nil {
		return "", fmt.Errorf("%w for %s", ErrNoLogFile, date)
	}
	return p, nil
}
