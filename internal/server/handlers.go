package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/opsboard-dev/opsd/internal/logfile"
	"github.com/opsboard-dev/opsd/internal/logstream"
	"github.com/opsboard-dev/opsd/internal/sources"
	"github.com/opsboard-dev/opsd/internal/version"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"version":      version.Version,
		"commit":       version.Commit,
		"uptime":       time.Since(s.startTime).Seconds(),
		"source_count": s.manifest.Len(),
		"streaming":    s.cfg.Stream.Enabled,
	})
}

func (s *Server) handleListServices(w http.ResponseWriter, r *http.Request) {
	statuses := s.monitor.All()

	services := make([]map[string]any, 0, s.manifest.Len())
	for _, name := range s.manifest.Names() {
		src, _ := s.manifest.Get(name)
		entry := map[string]any{
			"name":   name,
			"format": src.Format,
			"clean":  src.Clean,
		}
		if st, ok := statuses[name]; ok {
			entry["available"] = st.Available
			entry["path"] = st.Path
			entry["checked_at"] = st.CheckedAt
			if st.Error != "" {
				entry["error"] = st.Error
			}
		}
		services = append(services, entry)
	}

	writeJSON(w, http.StatusOK, map[string]any{"services": services})
}

// handleLogs is the pull-mode endpoint: one tail+classify round trip, no
// session. It is the fallback when streaming is unavailable, and the only
// way to read non-current dates.
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	src, q, ok := s.sourceAndQuery(w, r)
	if !ok {
		return
	}

	path, err := s.resolveSource(src, q.Date)
	if err != nil {
		writeResolveError(w, err)
		return
	}

	payload, err := logstream.Snapshot(path, src.LogFormat(), q.Clean, q.Limit, q.Date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, payload)
}

// sourceAndQuery resolves the {service} path value and the shared query
// params, writing the error response itself on failure.
func (s *Server) sourceAndQuery(w http.ResponseWriter, r *http.Request) (*sources.Source, logQuery, bool) {
	name := r.PathValue("service")
	src, ok := s.manifest.Get(name)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown service: "+name)
		return nil, logQuery{}, false
	}

	q, err := s.parseLogQuery(r, src.Clean)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, logQuery{}, false
	}
	return src, q, true
}

func (s *Server) resolveSource(src *sources.Source, date string) (string, error) {
	if date != "" && date != time.Now().Format("2006-01-02") {
		return logfile.ResolveDated(src.Dir, src.Filename, date)
	}
	return logfile.Resolve(src.Dir, src.Filename, src.Suffix)
}

func writeResolveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, logfile.ErrNotConfigured):
		writeError(w, http.StatusInternalServerError, err.Error())
	case errors.Is(err, logfile.ErrNoLogFile):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
