// Package framing recovers complete text lines from an arbitrarily chunked
// byte stream. The sensor writes newline-terminated records, but reads from
// its stdout pipe carry no alignment guarantee; the framer re-assembles
// records across chunk boundaries.
package framing

import (
	"bytes"
	"strings"
)

// Framer splits a byte stream into complete lines. It retains only the
// undelimited tail of the most recent chunk, so its memory is bounded by
// the longest single line the producer emits, not by stream length.
// A Framer is not safe for concurrent use; it is re-entered once per chunk
// by a single reader.
type Framer struct {
	carry []byte
}

// NewFramer returns an empty framer.
func NewFramer() *Framer {
	return &Framer{}
}

// Push consumes one chunk and returns every line completed by it, in
// receipt order, with the delimiter stripped and surrounding whitespace
// trimmed. Blank lines are filtered out. A line is never returned before
// its delimiter has been observed.
func (f *Framer) Push(chunk []byte) []string {
	if len(chunk) == 0 {
		return nil
	}
	f.carry = append(f.carry, chunk...)

	var lines []string
	for {
		i := bytes.IndexByte(f.carry, '\n')
		if i < 0 {
			break
		}
		line := strings.TrimSpace(string(f.carry[:i]))
		f.carry = f.carry[i+1:]
		if line != "" {
			lines = append(lines, line)
		}
	}

	// Reclaim the consumed prefix so carry does not grow with the stream.
	if len(f.carry) == 0 {
		f.carry = nil
	} else {
		f.carry = append([]byte(nil), f.carry...)
	}
	return lines
}

// Remainder returns the trimmed, undelimited tail held by the framer. The
// reader consults it when the stream has explicitly ended: a non-empty
// remainder at EOF is a fragment the producer never terminated and is
// dropped (after logging) rather than emitted as a line.
func (f *Framer) Remainder() string {
	return strings.TrimSpace(string(f.carry))
}

// Reset discards any carried fragment. Used when a new sensor generation
// starts so a crashed process's partial output cannot prefix the next one.
func (f *Framer) Reset() {
	f.carry = nil
}
