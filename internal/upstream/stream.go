package upstream

import (
	"bufio"
	"io"
	"strings"
)

// Individual SSE data lines can carry large JSON payloads.
const maxChunkLineSize = 1 << 20

// ChunkStream iterates the data payloads of an upstream SSE response body.
// Blank lines, comment lines and non-data fields are skipped; the
// "[DONE]" terminator ends iteration. Streams that close without a
// terminator also end cleanly.
type ChunkStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	current []byte
	err     error
	done    bool
}

// NewChunkStream wraps an SSE response body.
func NewChunkStream(body io.ReadCloser) *ChunkStream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxChunkLineSize)
	return &ChunkStream{body: body, scanner: scanner}
}

// Next advances to the next data payload. It returns false at end of
// stream or on read error; check Err afterwards.
func (s *ChunkStream) Next() bool {
	if s.done {
		return false
	}
	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)
		if data == "[DONE]" {
			s.done = true
			return false
		}
		s.current = []byte(data)
		return true
	}
	s.done = true
	s.err = s.scanner.Err()
	return false
}

// Current returns the data payload positioned by the last Next call.
func (s *ChunkStream) Current() []byte {
	return s.current
}

// Err reports a read error, if any, once Next has returned false.
func (s *ChunkStream) Err() error {
	return s.err
}

// Close releases the underlying response body.
func (s *ChunkStream) Close() error {
	return s.body.Close()
}
