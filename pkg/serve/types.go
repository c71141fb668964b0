package serve

import (
	"encoding/json"

	"github.com/praetorian-inc/linenorm"
)

// Request represents an incoming NDJSON request
type Request struct {
	Type    string          `json:"type"` // "normalize" | "normalize_batch" | "patterns" | "close"
	Payload json.RawMessage `json:"payload"`
}

// NormalizePayload is the payload for "normalize" requests
// Raw, base64 encoded, carries bytes that are not valid UTF-8 and replaces
// Content when set.
type NormalizePayload struct {
	Content string `json:"content"`
	Raw     []byte `json:"raw,omitempty"`
	Source  string `json:"source"`
}

// NormalizeBatchPayload is the payload for "normalize_batch" requests
type NormalizeBatchPayload struct {
	Items []NormalizePayload `json:"items"`
}

// Response represents an outgoing NDJSON response
type Response struct {
	Success bool            `json:"success"`
	Type    string          `json:"type"` // "ready" | "normalize" | "normalize_batch" | "patterns" | "decode"
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// ReadyData is the data field for "ready" responses
type ReadyData struct {
	Version string `json:"version"`
	Engine  string `json:"engine"`
}

// LineResult is one normalized line of a response. Raw holds the exact line
// bytes, base64 encoded, when they are not valid UTF-8; section offsets index
// into Raw in that case.
type LineResult struct {
	Number   int64              `json:"number"`
	Offset   int64              `json:"offset"`
	Text     string             `json:"text"`
	Raw      []byte             `json:"raw,omitempty"`
	Template string             `json:"template"`
	Shape    string             `json:"shape"`
	Sections []linenorm.Section `json:"sections"`
}

// NormalizeResult is the data field for "normalize" responses and one item
// of a "normalize_batch" response.
type NormalizeResult struct {
	Source string       `json:"source"`
	Lines  []LineResult `json:"lines"`
	Error  string       `json:"error,omitempty"`
}

// PatternInfo is one entry of a "patterns" response.
type PatternInfo struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Placeholder string `json:"placeholder"`
}
