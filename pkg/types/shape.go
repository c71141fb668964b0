package types

import (
	"database/sql/driver"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// ShapeID is a SHA-1 over the literal bytes and section pattern IDs of a line (20 bytes).
type ShapeID [20]byte

// Hex returns 40-character hex string.
func (id ShapeID) Hex() string {
	return hex.EncodeToString(id[:])
}

// String implements Stringer (returns Hex()).
func (id ShapeID) String() string {
	return id.Hex()
}

// ParseShapeID parses 40-char hex string to ShapeID.
func ParseShapeID(hexStr string) (ShapeID, error) {
	if len(hexStr) != 40 {
		return ShapeID{}, fmt.Errorf("invalid shape ID length: expected 40, got %d", len(hexStr))
	}

	decoded, err := hex.DecodeString(hexStr)
	if err != nil {
		return ShapeID{}, fmt.Errorf("invalid hex string: %w", err)
	}

	var id ShapeID
	copy(id[:], decoded)
	return id, nil
}

// MarshalJSON implements json.Marshaler.
func (id ShapeID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.Hex())
}

// UnmarshalJSON implements json.Unmarshaler.
func (id *ShapeID) UnmarshalJSON(data []byte) error {
	var hexStr string
	if err := json.Unmarshal(data, &hexStr); err != nil {
		return err
	}

	parsed, err := ParseShapeID(hexStr)
	if err != nil {
		return err
	}

	*id = parsed
	return nil
}

// Value implements driver.Valuer for SQL serialization.
func (id ShapeID) Value() (driver.Value, error) {
	return id.Hex(), nil
}

// Scan implements sql.Scanner for SQL deserialization.
func (id *ShapeID) Scan(value interface{}) error {
	if value == nil {
		return fmt.Errorf("cannot scan nil into ShapeID")
	}

	var hexStr string
	switch v := value.(type) {
	case string:
		hexStr = v
	case []byte:
		hexStr = string(v)
	default:
		return fmt.Errorf("cannot scan type %T into ShapeID", value)
	}

	parsed, err := ParseShapeID(hexStr)
	if err != nil {
		return err
	}

	*id = parsed
	return nil
}

// Shape groups lines that differ only in the contents of their sections.
type Shape struct {
	ID      ShapeID `json:"id"`
	Count   int64   `json:"count"`
	Example *Line   `json:"-"` // first line seen with this shape
}

// Source describes where a stream of lines came from.
type Source struct {
	Path string // file path, or "-" for standard input
	Size int64  // size in bytes when known, otherwise 0
}

// Kind returns "stdin" for standard input and "file" otherwise.
func (s Source) Kind() string {
	if s.Path == "-" || s.Path == "" {
		return "stdin"
	}
	return "file"
}
