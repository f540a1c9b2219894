package ui

import (
	"bytes"
	"log"
	"sync"
	"time"

	"dockdash/internal/ratelimit"
)

const paneWriterMaxBytes = 64 * 1024

// paneWriter turns log output into one event per line. It is what the
// dashboard hands to log.SetOutput through the logging fan-out.
type paneWriter struct {
	appendLine func(string)
	// buf holds any partial line; it is bounded to avoid unbounded growth when no newline arrives.
	buf          []byte
	mu           sync.Mutex
	droppedBytes uint64
	dropLog      *ratelimit.Counter
}

// newPaneWriter returns an io.Writer that calls appendLine once per complete line.
func newPaneWriter(appendLine func(string)) *paneWriter {
	return &paneWriter{appendLine: appendLine, dropLog: ratelimit.NewCounter(30 * time.Second)}
}

func (w *paneWriter) Write(p []byte) (int, error) {
	if w == nil || w.appendLine == nil {
		return len(p), nil
	}
	var logDrop bool
	var dropBytes uint64
	var totalDropped uint64
	w.mu.Lock()
	w.buf = append(w.buf, p...)
	if excess := len(w.buf) - paneWriterMaxBytes; excess > 0 {
		w.buf = w.buf[excess:]
		w.droppedBytes += uint64(excess)
		dropBytes = uint64(excess)
		totalDropped = w.droppedBytes
		if w.dropLog != nil {
			_, logDrop = w.dropLog.Inc()
		}
	}
	var lines []string
	data := w.buf
	for {
		idx := bytes.IndexByte(data, '\n')
		if idx == -1 {
			break
		}
		lines = append(lines, string(bytes.TrimRight(data[:idx], "\r")))
		data = data[idx+1:]
	}
	w.buf = append(w.buf[:0], data...)
	w.mu.Unlock()

	if logDrop {
		log.Printf("UI: paneWriter dropped %d bytes (total %d) due to missing newline", dropBytes, totalDropped)
	}
	for _, line := range lines {
		w.appendLine(line)
	}
	return len(p), nil
}
