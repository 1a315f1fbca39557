// Package logline turns raw log lines into normalized records.
// Two line formats are understood: free-form text and one-JSON-object-per-line.
package logline

// Format selects how a line is interpreted.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Record is a normalized, format-agnostic log line.
type Record struct {
	// LineNumber is the 1-based position within the logical file,
	// strictly increasing within one file generation.
	LineNumber int `json:"lineNumber"`

	// RawText is the original line, trimmed of its trailing newline.
	RawText string `json:"rawText"`

	// DisplayText is the line after the cleaning transform; equal to
	// RawText when cleaning is disabled.
	DisplayText string `json:"displayText"`

	Timestamp string `json:"timestamp,omitempty"` // ISO-8601 when known
	Level     string `json:"level,omitempty"`     // uppercase severity token

	// StructuredFields holds key/value pairs extracted from structured
	// message bodies (JSON format only).
	StructuredFields map[string]string `json:"structuredFields,omitempty"`

	HandlerName string `json:"handlerName,omitempty"`
	EventName   string `json:"eventName,omitempty"`
}
