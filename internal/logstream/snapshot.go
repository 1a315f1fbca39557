package logstream

import (
	"github.com/opsboard-dev/opsd/internal/logfile"
	"github.com/opsboard-dev/opsd/internal/logline"
)

// Snapshot runs the tail+classify pipeline once, with no session semantics.
// It backs the pull endpoint used when streaming is unavailable (non-current
// dates, or deployments with streaming disabled).
func Snapshot(path string, format logline.Format, clean bool, limit int, date string) (LogsPayload, error) {
	if limit <= 0 {
		limit = 500
	}

	window, err := logfile.Tail(path, limit)
	if err != nil {
		return LogsPayload{}, err
	}

	base := window.EstimatedTotal - len(window.Lines)
	if base < 0 {
		base = 0
	}

	records := make([]*logline.Record, 0, len(window.Lines))
	n := base
	for _, line := range window.Lines {
		rec := logline.Classify(line, format, clean)
		if rec == nil {
			continue
		}
		n++
		rec.LineNumber = n
		records = append(records, rec)
	}

	return LogsPayload{
		Logs: records,
		Metadata: Metadata{
			Path:             path,
			Date:             date,
			LineCount:        len(records),
			ReadAt:           nowStamp(),
			TotalLinesInFile: window.EstimatedTotal,
			Limited:          len(window.Lines) >= limit,
			Method:           "poll",
			Cleaned:          clean,
			Format:           format,
		},
	}, nil
}
