package ui

import (
	"bytes"
	"strings"
	"sync"
)

const maxLineWriterBuffer = 16 * 1024

// lineWriter adapts an append-line callback to io.Writer so the standard
// logger can be routed into a pane. Partial writes are buffered until a
// newline arrives; the buffer is bounded to keep a writer that never
// sends newlines from growing without limit.
type lineWriter struct {
	append func(string)
	buf    []byte
	mu     sync.Mutex
}

func (w *lineWriter) Write(p []byte) (int, error) {
	if w == nil || w.append == nil {
		return len(p), nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		idx := bytes.IndexByte(w.buf, '\n')
		if idx == -1 {
			break
		}
		line := strings.TrimRight(string(w.buf[:idx]), "\r")
		w.append(line)
		w.buf = w.buf[idx+1:]
	}
	if len(w.buf) > maxLineWriterBuffer {
		// Force out the oversized partial line instead of growing forever.
		if trimmed := strings.TrimRight(string(w.buf), "\r"); trimmed != "" {
			w.append(trimmed)
		}
		w.buf = w.buf[:0]
	}
	return len(p), nil
}
