package main

import "strings"

// LineDecoder reassembles newline-delimited records from a transport that
// delivers arbitrary chunk boundaries. Text after the last newline of a
// chunk is held back and prepended to the next chunk, so a record is never
// split across two Feed calls and no byte is ever dropped.
//
// One decoder per stream; it carries state between chunks.
type LineDecoder struct {
	pending string
}

// NewLineDecoder creates a decoder with no buffered input.
func NewLineDecoder() *LineDecoder {
	return &LineDecoder{}
}

// Feed consumes the next transport chunk and returns the complete records
// whose terminating newline has now arrived, in order. Blank lines are
// skipped. A trailing CR is stripped so CRLF framing works too.
func (d *LineDecoder) Feed(chunk string) []string {
	if chunk == "" {
		return nil
	}

	buf := d.pending + chunk
	idx := strings.LastIndexByte(buf, '\n')
	if idx == -1 {
		d.pending = buf
		return nil
	}
	d.pending = buf[idx+1:]

	var records []string
	for _, line := range strings.Split(buf[:idx], "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		records = append(records, line)
	}
	return records
}

// Flush returns the unterminated tail left over at end of stream, if any.
// The stream is framed by connection close, so a non-empty tail means the
// final record was truncated; callers surface it instead of dropping it.
func (d *LineDecoder) Flush() (string, bool) {
	tail := strings.TrimSuffix(d.pending, "\r")
	d.pending = ""
	if tail == "" {
		return "", false
	}
	return tail, true
}
