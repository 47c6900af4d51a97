package cmdutil

import (
	"bytes"
	"sync"
)

// lineStream delivers lines from any number of writers to one handler.
// The handler is never called concurrently.
type lineStream struct {
	mu      sync.Mutex
	handler OutputLineHandler
}

func newLineStream(handler OutputLineHandler) *lineStream {
	return &lineStream{handler: handler}
}

func (s *lineStream) emit(line []byte) {
	line = bytes.TrimSuffix(line, []byte{'\r'})
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler(string(line))
}

// writer returns an io.Writer feeding s. Each writer keeps its own partial
// line, so stdout and stderr never splice into one line.
func (s *lineStream) writer() *lineWriter {
	return &lineWriter{stream: s}
}

// lineWriter splits written bytes into lines for a lineStream. npm on Windows
// ends lines with CRLF; the trailing CR is dropped.
type lineWriter struct {
	stream *lineStream
	mu     sync.Mutex
	buf    []byte
}

func (lw *lineWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	lw.buf = append(lw.buf, p...)
	for {
		idx := bytes.IndexByte(lw.buf, '\n')
		if idx < 0 {
			break
		}
		lw.stream.emit(lw.buf[:idx])
		lw.buf = lw.buf[idx+1:]
	}
	return len(p), nil
}

// Flush emits any buffered partial line.
func (lw *lineWriter) Flush() {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	if len(lw.buf) > 0 {
		lw.stream.emit(lw.buf)
		lw.buf = nil
	}
}
