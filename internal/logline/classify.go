package logline

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	// "DebugHandler [CommitHook]" -> handler name CommitHook.
	handlerRe = regexp.MustCompile(`\b\w+Handler \[([^\]]+)\]`)

	// "... event 'RepoSync' ..." -> event name RepoSync.
	eventRe = regexp.MustCompile(`(?i)\bevent '([^']+)'`)

	// "  key = 'value'" on its own line within a message body.
	kvLineRe = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*) = '([^']*)'\s*$`)

	// Characters allowed in a sanitized event name.
	eventSanitizeRe = regexp.MustCompile(`[^\w:-]+`)

	// Best-effort extraction for plain text lines.
	textTimestampRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(?:[.,]\d+)?(?:Z|[+-]\d{2}:?\d{2})?)`)
	textLevelRe     = regexp.MustCompile(`\b(FATAL|ERROR|WARN(?:ING)?|INFO|DEBUG|TRACE)\b`)
)

// Classify parses one raw line into a Record. A nil Record means the line is
// suppressed: either cleaning dropped it as noise, or a structured line was
// not valid JSON. Classification never returns an error; partially corrupt
// files must not abort a stream.
func Classify(raw string, format Format, cleaningEnabled bool) *Record {
	if format == FormatJSON {
		return classifyJSON(raw)
	}
	return classifyText(raw, cleaningEnabled)
}

func classifyText(raw string, cleaningEnabled bool) *Record {
	trimmed := strings.TrimRight(raw, "\r\n")
	display := trimmed
	if cleaningEnabled {
		cleaned, keep := Clean(trimmed)
		if !keep {
			return nil
		}
		display = cleaned
	} else if strings.TrimSpace(trimmed) == "" {
		return nil
	}

	rec := &Record{
		RawText:     trimmed,
		DisplayText: display,
	}
	if m := textTimestampRe.FindStringSubmatch(trimmed); m != nil {
		rec.Timestamp = m[1]
	}
	if m := textLevelRe.FindStringSubmatch(trimmed); m != nil {
		rec.Level = normalizeLevel(m[1])
	}
	return rec
}

func classifyJSON(raw string) *Record {
	trimmed := strings.TrimRight(raw, "\r\n")
	if strings.TrimSpace(trimmed) == "" {
		return nil
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(trimmed), &data); err != nil {
		return nil
	}

	message, _ := data["message"].(string)
	firstLine := message
	if i := strings.IndexByte(message, '\n'); i >= 0 {
		firstLine = message[:i]
	}

	rec := &Record{
		RawText:     trimmed,
		DisplayText: firstLine,
	}

	if m := handlerRe.FindStringSubmatch(message); m != nil {
		rec.HandlerName = m[1]
	} else if v, ok := data["handler"].(string); ok {
		rec.HandlerName = v
	}

	if m := eventRe.FindStringSubmatch(message); m != nil {
		rec.EventName = m[1]
	} else if v, ok := data["event"].(string); ok {
		rec.EventName = eventSanitizeRe.ReplaceAllString(v, "")
	}

	fields := make(map[string]string)
	for _, line := range strings.Split(message, "\n") {
		if m := kvLineRe.FindStringSubmatch(line); m != nil {
			fields[m[1]] = m[2]
		}
	}
	if firstLine != message {
		// Keep the full multi-line body available alongside the summary.
		fields["message"] = message
	}
	if len(fields) > 0 {
		rec.StructuredFields = fields
	}

	if v, ok := data["timestamp"].(string); ok {
		rec.Timestamp = v
	}

	for _, key := range []string{"level", "severity", "levelname"} {
		if v, ok := data[key].(string); ok && v != "" {
			rec.Level = strings.ToUpper(v)
			break
		}
	}
	if rec.Level == "" && rec.HandlerName != "" {
		rec.Level = "DEBUG"
	}

	return rec
}

// normalizeLevel maps severity spellings onto the standard uppercase set.
func normalizeLevel(s string) string {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "FATAL", "CRITICAL", "CRIT":
		return "FATAL"
	case "ERROR", "ERR":
		return "ERROR"
	case "WARN", "WARNING":
		return "WARN"
	case "DEBUG":
		return "DEBUG"
	case "TRACE":
		return "TRACE"
	default:
		return "INFO"
	}
}
