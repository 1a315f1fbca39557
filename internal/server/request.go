package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// logQuery is the validated query surface shared by the pull and streaming
// log endpoints.
type logQuery struct {
	Limit int
	Clean bool
	Date  string
}

func (s *Server) parseLogQuery(r *http.Request, defaultClean bool) (logQuery, error) {
	q := logQuery{
		Limit: s.cfg.Stream.DefaultLimit,
		Clean: defaultClean,
	}

	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return q, errBadParam("limit must be a positive integer")
		}
		if n > s.cfg.Stream.MaxLimit {
			n = s.cfg.Stream.MaxLimit
		}
		q.Limit = n
	}

	if v := r.URL.Query().Get("clean"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return q, errBadParam("clean must be a boolean")
		}
		q.Clean = b
	}

	if v := r.URL.Query().Get("date"); v != "" {
		if _, err := time.Parse("2006-01-02", v); err != nil {
			return q, errBadParam("date must be YYYY-MM-DD")
		}
		q.Date = v
	}

	return q, nil
}

// isToday reports whether the date param (empty means today) is the current
// date in server-local time.
func (q logQuery) isToday() bool {
	return q.Date == "" || q.Date == time.Now().Format("2006-01-02")
}

type badParamError string

func (e badParamError) Error() string { return string(e) }

func errBadParam(msg string) error { return badParamError(msg) }
