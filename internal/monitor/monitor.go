package monitor

import (
	"log"
	"os"
	"sync"
	"time"

	"github.com/opsboard-dev/opsd/internal/logfile"
	"github.com/opsboard-dev/opsd/internal/sources"
)

// Status is the result of the last availability check for one source.
type Status struct {
	Available bool      `json:"available"`
	Path      string    `json:"path,omitempty"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Monitor periodically verifies that each configured log source still
// resolves to a readable file.
type Monitor struct {
	manifest *sources.Manifest
	interval time.Duration
	done     chan struct{}

	mu     sync.Mutex
	status map[string]Status
}

func New(manifest *sources.Manifest, interval time.Duration) *Monitor {
	return &Monitor{
		manifest: manifest,
		interval: interval,
		done:     make(chan struct{}),
		status:   make(map[string]Status),
	}
}

func (m *Monitor) Start() {
	m.check()
	go m.loop()
	log.Printf("monitor: started (interval=%s)", m.interval)
}

func (m *Monitor) Stop() {
	close(m.done)
	log.Printf("monitor: stopped")
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.check()
		case <-m.done:
			return
		}
	}
}

func (m *Monitor) check() {
	for _, name := range m.manifest.Names() {
		src, _ := m.manifest.Get(name)
		st := Status{CheckedAt: time.Now()}

		path, err := logfile.Resolve(src.Dir, src.Filename, src.Suffix)
		if err == nil {
			st.Path = path
			if f, openErr := os.Open(path); openErr == nil {
				f.Close()
				st.Available = true
			} else {
				err = openErr
			}
		}
		if err != nil {
			st.Error = err.Error()
		}

		m.mu.Lock()
		prev, had := m.status[name]
		m.status[name] = st
		m.mu.Unlock()

		if had && prev.Available != st.Available {
			log.Printf("monitor: source %s availability changed: %v -> %v", name, prev.Available, st.Available)
		}
	}
}

// Status returns the last check result for the named source.
func (m *Monitor) Status(name string) (Status, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.status[name]
	return st, ok
}

// All returns a copy of every source's last check result.
func (m *Monitor) All() map[string]Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make(map[string]Status, len(m.status))
	for k, v := range m.status {
		cp[k] = v
	}
	return cp
}
