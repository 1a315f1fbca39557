package logline

import (
	"testing"
)

func TestClassifyTextPlain(t *testing.T) {
	rec := Classify("checkout finished in 12s\n", FormatText, false)
	if rec == nil {
		t.Fatal("got nil record")
	}
	if rec.RawText != "checkout finished in 12s" {
		t.Errorf("rawText = %q", rec.RawText)
	}
	if rec.DisplayText != rec.RawText {
		t.Errorf("displayText = %q, want equal to rawText when cleaning is off", rec.DisplayText)
	}
}

func TestClassifyTextExtractsTimestampAndLevel(t *testing.T) {
	rec := Classify("2026-09-01T10:15:00Z ERROR checkout failed", FormatText, false)
	if rec == nil {
		t.Fatal("got nil record")
	}
	if rec.Timestamp != "2026-09-01T10:15:00Z" {
		t.Errorf("timestamp = %q", rec.Timestamp)
	}
	if rec.Level != "ERROR" {
		t.Errorf("level = %q, want ERROR", rec.Level)
	}
}

func TestClassifyTextCleaningDropsNoise(t *testing.T) {
	if rec := Classify("Caused by: java.io.EOFException", FormatText, true); rec != nil {
		t.Errorf("got %+v, want suppressed", rec)
	}
	// The same line survives with cleaning off.
	if rec := Classify("Caused by: java.io.EOFException", FormatText, false); rec == nil {
		t.Error("line dropped with cleaning disabled")
	}
}

func TestClassifyJSONHandlerAndEvent(t *testing.T) {
	line := `{"message":"DebugHandler [Foo] processing event 'Bar' for repo main","level":"info"}`

	rec := Classify(line, FormatJSON, false)
	if rec == nil {
		t.Fatal("got nil record")
	}
	if rec.HandlerName != "Foo" {
		t.Errorf("handlerName = %q, want Foo", rec.HandlerName)
	}
	if rec.EventName != "Bar" {
		t.Errorf("eventName = %q, want Bar", rec.EventName)
	}
	if rec.Level != "INFO" {
		t.Errorf("level = %q, want INFO", rec.Level)
	}
}

func TestClassifyJSONMalformed(t *testing.T) {
	if rec := Classify(`{"message": "trunc`, FormatJSON, false); rec != nil {
		t.Errorf("got %+v, want nil for malformed JSON", rec)
	}
	if rec := Classify("not json at all", FormatJSON, false); rec != nil {
		t.Errorf("got %+v, want nil for non-JSON line", rec)
	}
}

func TestClassifyJSONMultilineMessage(t *testing.T) {
	line := `{"message":"CommitHandler [Hooks] dispatch\n  repo = 'frontend'\n  rev = '4021'","timestamp":"2026-09-01T09:00:00Z"}`

	rec := Classify(line, FormatJSON, false)
	if rec == nil {
		t.Fatal("got nil record")
	}
	if rec.DisplayText != "CommitHandler [Hooks] dispatch" {
		t.Errorf("displayText = %q, want first message line", rec.DisplayText)
	}
	if rec.StructuredFields["repo"] != "frontend" || rec.StructuredFields["rev"] != "4021" {
		t.Errorf("structuredFields = %v", rec.StructuredFields)
	}
	if rec.StructuredFields["message"] == "" {
		t.Error("full multi-line message not retained")
	}
	if rec.Timestamp != "2026-09-01T09:00:00Z" {
		t.Errorf("timestamp = %q", rec.Timestamp)
	}
	// Handler found but no level field: defaults to DEBUG.
	if rec.Level != "DEBUG" {
		t.Errorf("level = %q, want DEBUG default", rec.Level)
	}
}

func TestClassifyJSONFieldFallbacks(t *testing.T) {
	line := `{"message":"plain body","handler":"Sync","event":"repo updated!","severity":"warn"}`

	rec := Classify(line, FormatJSON, false)
	if rec == nil {
		t.Fatal("got nil record")
	}
	if rec.HandlerName != "Sync" {
		t.Errorf("handlerName = %q, want Sync (field fallback)", rec.HandlerName)
	}
	// Sanitized fallback keeps word, hyphen and colon characters only.
	if rec.EventName != "repoupdated" {
		t.Errorf("eventName = %q, want repoupdated", rec.EventName)
	}
	if rec.Level != "WARN" {
		t.Errorf("level = %q, want WARN", rec.Level)
	}
}

func TestNormalizeLevel(t *testing.T) {
	cases := map[string]string{
		"warning": "WARN",
		"crit":    "FATAL",
		"err":     "ERROR",
		"trace":   "TRACE",
		"notice":  "INFO",
	}
	for in, want := range cases {
		if got := normalizeLevel(in); got != want {
			t.Errorf("normalizeLevel(%q) = %q, want %q", in, got, want)
		}
	}
}
