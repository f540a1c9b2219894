package stream

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// ErrEventTooLarge is returned when one event's data exceeds the scanner limit.
var ErrEventTooLarge = errors.New("stream: event exceeds size limit")

const (
	scannerBufferSize = 64 * 1024
	// lineOverhead leaves room for a field name and separator on a line
	// carrying maxBytes of data.
	lineOverhead = 64
)

// Event is one server-sent event.
type Event struct {
	Type string
	ID   string
	Data string
}

// Scanner splits a text/event-stream body into events. Events end at a blank
// line; multiple data lines are joined with "\n"; comments and unknown fields
// are skipped. A block with no data field produces no event.
type Scanner struct {
	r        *bufio.Reader
	maxBytes int
	cur      Event
	err      error
}

// NewScanner reads events from r. maxBytes <= 0 disables the size limit.
func NewScanner(r io.Reader, maxBytes int) *Scanner {
	return &Scanner{r: bufio.NewReaderSize(r, scannerBufferSize), maxBytes: maxBytes}
}

// Next advances to the next event. It returns false at EOF or on error.
func (s *Scanner) Next() bool {
	if s.err != nil {
		return false
	}
	var (
		data    strings.Builder
		hasData bool
		evType  string
		evID    string
	)
	emit := func() bool {
		s.cur = Event{Type: evType, ID: evID, Data: data.String()}
		return true
	}
	for {
		line, err := s.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) && line == "" {
				s.err = io.EOF
				if hasData {
					return emit()
				}
				return false
			}
			if !errors.Is(err, io.EOF) {
				s.err = err
				return false
			}
			// Final line without a terminator: process it, then stop.
			s.err = io.EOF
		}
		line = strings.TrimRight(line, "\r\n")

		if line == "" {
			if s.err == nil && !hasData {
				evType, evID = "", ""
				continue
			}
			if hasData {
				return emit()
			}
			return false
		}
		if !strings.HasPrefix(line, ":") {
			field, value, found := strings.Cut(line, ":")
			if found {
				value = strings.TrimPrefix(value, " ")
			}
			switch field {
			case "data":
				if hasData {
					data.WriteByte('\n')
				}
				data.WriteString(value)
				hasData = true
				if s.maxBytes > 0 && data.Len() > s.maxBytes {
					s.err = ErrEventTooLarge
					return false
				}
			case "event":
				evType = value
			case "id":
				evID = value
			}
		}
		if s.err != nil {
			if hasData {
				return emit()
			}
			return false
		}
	}
}

// readLine returns the next line including its terminator. With a limit set
// it stops reading once the line cannot fit, so an oversized line costs at
// most one buffer beyond the limit.
func (s *Scanner) readLine() (string, error) {
	var line []byte
	for {
		chunk, err := s.r.ReadSlice('\n')
		if s.maxBytes > 0 && len(line)+len(chunk) > s.maxBytes+lineOverhead {
			return "", ErrEventTooLarge
		}
		line = append(line, chunk...)
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return string(line), err
	}
}

// Event returns the event parsed by the last successful Next.
func (s *Scanner) Event() Event {
	return s.cur
}

// Err returns the error that stopped the scanner, or nil after a clean EOF.
func (s *Scanner) Err() error {
	if errors.Is(s.err, io.EOF) {
		return nil
	}
	return s.err
}
