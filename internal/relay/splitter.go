package relay

import "bytes"

// lineSplitter re-segments an arbitrarily chunked byte stream into complete
// newline-delimited lines. The upstream may split a single SSE line across
// several delivered chunks, so the unterminated tail of each chunk is carried
// over until the closing newline arrives.
//
// A splitter is owned by exactly one stream and is not safe for concurrent use.
type lineSplitter struct {
	buf []byte
}

// Push appends chunk to the carry-over buffer and returns every complete line
// it now contains, in arrival order and without the trailing newline. The
// bytes after the last newline are retained as the new buffer state.
func (s *lineSplitter) Push(chunk []byte) []string {
	if len(chunk) == 0 {
		return nil
	}
	s.buf = append(s.buf, chunk...)

	var lines []string
	for {
		idx := bytes.IndexByte(s.buf, '\n')
		if idx < 0 {
			break
		}
		lines = append(lines, string(s.buf[:idx]))
		s.buf = s.buf[idx+1:]
	}
	return lines
}

// Rest returns the unterminated remainder held in the buffer. At stream end
// it may be discarded unread; an incomplete final line is not an error.
func (s *lineSplitter) Rest() string {
	return string(s.buf)
}
