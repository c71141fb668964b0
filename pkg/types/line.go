package types

import (
	"crypto/sha1"
	"encoding/binary"
	"io"
	"strings"
)

// Section is a half-open byte range [Start, End) of a line attributed to a pattern.
// Offsets are relative to the start of the line.
type Section struct {
	Start     int  `json:"start"`
	End       int  `json:"end"`
	PatternID uint `json:"pattern_id"`
}

// Len returns the section length in bytes.
func (s Section) Len() int {
	return s.End - s.Start
}

// Contains reports whether other lies entirely within s.
func (s Section) Contains(other Section) bool {
	return other.Start >= s.Start && other.End <= s.End
}

// Overlaps reports whether s and other share at least one byte.
func (s Section) Overlaps(other Section) bool {
	return s.Start < other.End && other.Start < s.End
}

// Line is one normalized line: its text (terminator excluded) and the
// ordered, non-overlapping sections found in it.
type Line struct {
	Number   int64     // 1-based line number within the stream
	Offset   int64     // absolute byte offset of the line start within the stream
	Text     []byte    // line bytes without the terminator
	Sections []Section // ordered by Start, non-overlapping
}

// Shape returns the shape ID of the line. Lines that differ only in the
// contents of their sections share a shape.
func (l *Line) Shape() ShapeID {
	h := sha1.New()
	var buf [binary.MaxVarintLen64]byte
	pos := 0
	for _, s := range l.Sections {
		writeLiteral(h, l.Text[pos:s.Start])
		n := binary.PutUvarint(buf[:], uint64(s.PatternID))
		h.Write([]byte{0xff})
		h.Write(buf[:n])
		pos = s.End
	}
	writeLiteral(h, l.Text[pos:])

	var id ShapeID
	copy(id[:], h.Sum(nil))
	return id
}

func writeLiteral(w io.Writer, b []byte) {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], uint64(len(b)))
	w.Write([]byte{0x00})
	w.Write(buf[:n])
	w.Write(b)
}

// Template renders the line with every section replaced by the placeholder
// returned from placeholder. A nil or empty placeholder leaves the bytes as is.
func (l *Line) Template(placeholder func(id uint) string) string {
	var sb strings.Builder
	sb.Grow(len(l.Text))
	pos := 0
	for _, s := range l.Sections {
		sb.Write(l.Text[pos:s.Start])
		token := ""
		if placeholder != nil {
			token = placeholder(s.PatternID)
		}
		if token == "" {
			sb.Write(l.Text[s.Start:s.End])
		} else {
			sb.WriteString(token)
		}
		pos = s.End
	}
	sb.Write(l.Text[pos:])
	return sb.String()
}

// Clone returns a deep copy.
func (l *Line) Clone() *Line {
	c := *l
	c.Text = append([]byte(nil), l.Text...)
	c.Sections = append([]Section(nil), l.Sections...)
	return &c
}
