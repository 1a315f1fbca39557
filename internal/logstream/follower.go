package logstream

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/opsboard-dev/opsd/internal/logfile"
	"github.com/opsboard-dev/opsd/internal/logline"
)

// Config describes one streaming session.
type Config struct {
	Path   string
	Format logline.Format
	Clean  bool
	Limit  int    // max lines in the initial window
	Date   string // echoed in metadata when set

	PollInterval time.Duration // default 1s
	InitTimeout  time.Duration // bound on the initial tail, default 5s
}

func (c *Config) withDefaults() Config {
	cfg := *c
	if cfg.Limit <= 0 {
		cfg.Limit = 500
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.InitTimeout <= 0 {
		cfg.InitTimeout = 5 * time.Second
	}
	return cfg
}

// Follower owns the state of one streaming session: last known file size,
// last emitted line number and any partial line carried across polls. It is
// never shared between sessions; concurrent followers on the same file do
// not interfere since all reads are read-only.
type Follower struct {
	cfg    Config
	events chan Event

	lastKnownSize  int64
	lastLineNumber int
	pendingPartial string
	totalSeen      int
}

// NewFollower creates a follower for one session. Run must be called to
// start it.
func NewFollower(cfg Config) *Follower {
	return &Follower{
		cfg:    cfg.withDefaults(),
		events: make(chan Event, 64),
	}
}

// Events returns the session's event channel. It is closed when Run returns.
func (f *Follower) Events() <-chan Event {
	return f.events
}

// Run performs the initial tail, emits init, then polls the file until ctx
// is cancelled or an unrecoverable error occurs. The events channel is
// closed on return; no events are emitted after that.
func (f *Follower) Run(ctx context.Context) {
	defer close(f.events)

	window, err := f.initialTail(ctx)
	if err != nil {
		f.emit(ctx, Event{Type: EventLogError, Payload: ErrorPayload{Message: err.Error()}})
		return
	}

	records := f.classifyWindow(window)
	f.emit(ctx, Event{Type: EventInit, Payload: LogsPayload{
		Logs:     records,
		Metadata: f.metadata(len(records), window.EstimatedTotal, len(window.Lines) >= f.cfg.Limit),
	}})

	ticker := time.NewTicker(f.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !f.poll(ctx) {
				return
			}
		}
	}
}

// initialTail runs the backward scan with a deadline. A timeout is treated
// exactly like a read failure: the session never starts.
func (f *Follower) initialTail(ctx context.Context) (logfile.TailWindow, error) {
	type result struct {
		window logfile.TailWindow
		err    error
	}
	ch := make(chan result, 1)
	go func() {
		w, err := logfile.Tail(f.cfg.Path, f.cfg.Limit)
		ch <- result{w, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return logfile.TailWindow{}, r.err
		}
		f.lastKnownSize = r.window.Size
		return r.window, nil
	case <-time.After(f.cfg.InitTimeout):
		return logfile.TailWindow{}, fmt.Errorf("initial read of %s timed out after %s", f.cfg.Path, f.cfg.InitTimeout)
	case <-ctx.Done():
		return logfile.TailWindow{}, ctx.Err()
	}
}

// classifyWindow numbers and classifies the initial window. The window's
// starting line number is estimated from the total-line heuristic so that
// subsequent updates continue the sequence.
func (f *Follower) classifyWindow(window logfile.TailWindow) []*logline.Record {
	base := window.EstimatedTotal - len(window.Lines)
	if base < 0 {
		base = 0
	}
	f.lastLineNumber = base

	records := make([]*logline.Record, 0, len(window.Lines))
	for _, line := range window.Lines {
		rec := logline.Classify(line, f.cfg.Format, f.cfg.Clean)
		if rec == nil {
			continue
		}
		f.lastLineNumber++
		rec.LineNumber = f.lastLineNumber
		records = append(records, rec)
	}
	f.totalSeen = window.EstimatedTotal
	return records
}

// poll is one tick of the follower. Returns false when the session must
// stop (unrecoverable stat failure or cancelled context).
func (f *Follower) poll(ctx context.Context) bool {
	size, err := logfile.Size(f.cfg.Path)
	if err != nil {
		// Stop after the first unrecoverable error rather than flooding
		// the client with one logError per tick.
		f.emit(ctx, Event{Type: EventLogError, Payload: ErrorPayload{Message: err.Error()}})
		return false
	}

	switch {
	case size == f.lastKnownSize:
		return true

	case size < f.lastKnownSize:
		// Truncation or rotation. Baseline moves to the new smaller size,
		// not zero: bytes already on disk at detection time were never
		// part of this session and must not be replayed.
		f.lastKnownSize = size
		f.lastLineNumber = 0
		f.totalSeen = 0
		f.pendingPartial = ""
		f.emit(ctx, Event{Type: EventReset, Payload: ResetPayload{
			Reason:   "truncated",
			Metadata: f.metadata(0, 0, false),
		}})
		return true
	}

	delta, err := logfile.ReadRange(f.cfg.Path, f.lastKnownSize, size-f.lastKnownSize)
	if err != nil {
		// Stat-then-read race: the file shrank or vanished between the
		// size check and the read. The next tick sees the new size and
		// resolves it as a truncation.
		return true
	}

	chunk := f.pendingPartial + string(delta)
	parts := strings.Split(chunk, "\n")
	f.pendingPartial = parts[len(parts)-1]
	complete := parts[:len(parts)-1]
	f.lastKnownSize = size

	records := make([]*logline.Record, 0, len(complete))
	for _, line := range complete {
		f.totalSeen++
		rec := logline.Classify(line, f.cfg.Format, f.cfg.Clean)
		if rec == nil {
			continue
		}
		f.lastLineNumber++
		rec.LineNumber = f.lastLineNumber
		records = append(records, rec)
	}

	// A tick whose lines were all filtered out emits nothing.
	if len(records) == 0 {
		return true
	}

	f.emit(ctx, Event{Type: EventUpdate, Payload: LogsPayload{
		Logs:     records,
		Append:   true,
		Metadata: f.metadata(len(records), f.totalSeen, false),
	}})
	return true
}

func (f *Follower) metadata(lineCount, total int, limited bool) Metadata {
	return Metadata{
		Path:             f.cfg.Path,
		Date:             f.cfg.Date,
		LineCount:        lineCount,
		ReadAt:           nowStamp(),
		TotalLinesInFile: total,
		Limited:          limited,
		Method:           "stream",
		Cleaned:          f.cfg.Clean,
		Format:           f.cfg.Format,
	}
}

func (f *Follower) emit(ctx context.Context, ev Event) {
	select {
	case f.events <- ev:
	case <-ctx.Done():
	}
}
