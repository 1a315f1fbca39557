package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/opsboard-dev/opsd/internal/logstream"
	"github.com/opsboard-dev/opsd/internal/sources"
)

// newSessionFollower validates the streaming preconditions and builds the
// follower for one session. Failures here are synchronous HTTP errors; once
// the follower is running, failures become logError events instead.
func (s *Server) newSessionFollower(w http.ResponseWriter, r *http.Request) (*logstream.Follower, *sources.Source, bool) {
	if !s.cfg.Stream.Enabled {
		writeError(w, http.StatusServiceUnavailable, "streaming is disabled; use the pull endpoint")
		return nil, nil, false
	}

	src, q, ok := s.sourceAndQuery(w, r)
	if !ok {
		return nil, nil, false
	}

	// Streaming follows the live file; historical dates are pull-only.
	if !q.isToday() {
		writeError(w, http.StatusBadRequest, "streaming is only available for the current date")
		return nil, nil, false
	}

	path, err := s.resolveSource(src, "")
	if err != nil {
		writeResolveError(w, err)
		return nil, nil, false
	}

	follower := logstream.NewFollower(logstream.Config{
		Path:         path,
		Format:       src.LogFormat(),
		Clean:        q.Clean,
		Limit:        q.Limit,
		Date:         q.Date,
		PollInterval: s.cfg.PollInterval(),
		InitTimeout:  s.cfg.InitTimeout(),
	})
	return follower, src, true
}

// handleLogStreamSSE streams a session as text/event-stream frames, one
// frame per event, flushed immediately.
func (s *Server) handleLogStreamSSE(w http.ResponseWriter, r *http.Request) {
	follower, src, ok := s.newSessionFollower(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported by connection")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// The request context cancels when the client disconnects; Run stops
	// its ticker and closes the events channel.
	ctx := r.Context()
	go follower.Run(ctx)

	log.Printf("stream: sse session opened for %s", src.Name)
	defer log.Printf("stream: sse session closed for %s", src.Name)

	for ev := range follower.Events() {
		data, err := json.Marshal(ev.Payload)
		if err != nil {
			log.Printf("stream: marshal %s event: %v", ev.Type, err)
			continue
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data); err != nil {
			return
		}
		flusher.Flush()
	}
}
