// Package sources loads the YAML manifest describing which service logs the
// dashboard exposes.
package sources

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/opsboard-dev/opsd/internal/logline"
)

// Source is one log-producing service (svn, jenkins, jira, db...).
type Source struct {
	Name string `yaml:"name"`

	// Dir holds the service's log files. Filename is the preferred
	// well-known name inside it; when absent, the lexicographically last
	// file matching Suffix is used instead.
	Dir      string `yaml:"dir"`
	Filename string `yaml:"filename"`
	Suffix   string `yaml:"suffix"`

	// Format is "text" or "json". Derived from Filename's extension when
	// left empty (.json/.jsonl -> json).
	Format string `yaml:"format"`

	// Clean enables the noise-reduction transform by default for this
	// source; clients can override per request.
	Clean bool `yaml:"clean"`
}

// Manifest is the full set of configured sources, keyed by name.
type Manifest struct {
	byName map[string]*Source
}

// Parse loads and validates a manifest file.
func Parse(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sources manifest: %w", err)
	}

	var raw struct {
		Sources []*Source `yaml:"sources"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("sources manifest parse: %w", err)
	}

	m := &Manifest{byName: make(map[string]*Source)}
	for _, s := range raw.Sources {
		if s.Name == "" {
			return nil, fmt.Errorf("sources manifest: source with empty name")
		}
		if _, dup := m.byName[s.Name]; dup {
			return nil, fmt.Errorf("sources manifest: duplicate source %q", s.Name)
		}
		applyDefaults(s)
		m.byName[s.Name] = s
	}
	return m, nil
}

func applyDefaults(s *Source) {
	if s.Suffix == "" {
		s.Suffix = ".log"
	}
	if s.Format == "" {
		switch filepath.Ext(s.Filename) {
		case ".json", ".jsonl":
			s.Format = string(logline.FormatJSON)
		default:
			s.Format = string(logline.FormatText)
		}
	}
}

// Get returns the named source.
func (m *Manifest) Get(name string) (*Source, bool) {
	s, ok := m.byName[name]
	return s, ok
}

// Names returns all source names, sorted.
func (m *Manifest) Names() []string {
	names := make([]string, 0, len(m.byName))
	for n := range m.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len reports how many sources are configured.
func (m *Manifest) Len() int {
	return len(m.byName)
}

// LogFormat returns the source's format as a logline.Format.
func (s *Source) LogFormat() logline.Format {
	if strings.EqualFold(s.Format, string(logline.FormatJSON)) {
		return logline.FormatJSON
	}
	return logline.FormatText
}
