package main

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"dockdash/clock"
	"dockdash/config"
	"dockdash/internal/ratelimit"
)

const (
	logTimestampLayout = "2006/01/02 15:04:05"
	logFileDateLayout  = "02-Jan-2006"
	maxPartialLine     = 16 * 1024
	statsLinePrefix    = "Stats: "
)

// logSink receives complete lines without a trailing newline.
type logSink interface {
	writeLine(line string, at time.Time)
	Close() error
}

type consoleSink struct {
	w     io.Writer
	stamp bool
}

func (s *consoleSink) writeLine(line string, at time.Time) {
	if s.stamp {
		line = stampLine(line, at)
	}
	_, _ = io.WriteString(s.w, line+"\n")
}

func (s *consoleSink) Close() error { return nil }

// dailyLog appends to DD-Mon-YYYY.log under dir, switching files at UTC
// midnight and deleting files older than keepDays. A file opened by a day
// change starts with a pointer to the previous file and the day header.
type dailyLog struct {
	dir      string
	keepDays int
	errLog   *ratelimit.Counter

	mu     sync.Mutex
	day    string
	path   string
	file   *os.File
	header func() []string
}

func openDailyLog(dir string, keepDays int, now time.Time) (*dailyLog, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("log directory is empty")
	}
	if keepDays <= 0 {
		keepDays = 7
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory %q: %w", dir, err)
	}
	d := &dailyLog{dir: dir, keepDays: keepDays, errLog: ratelimit.NewCounter(time.Minute)}
	if err := pruneLogs(dir, now, keepDays); err != nil {
		d.report(fmt.Errorf("cleanup %s: %w", dir, err))
	}
	return d, nil
}

func (d *dailyLog) setHeader(header func() []string) {
	d.mu.Lock()
	d.header = header
	d.mu.Unlock()
}

func (d *dailyLog) writeLine(line string, at time.Time) {
	at = at.UTC()
	d.mu.Lock()
	defer d.mu.Unlock()
	if day := at.Format(logFileDateLayout); d.file == nil || d.day != day {
		d.switchDayLocked(day, at)
	}
	if d.file == nil {
		return
	}
	if _, err := d.file.WriteString(stampLine(line, at) + "\n"); err != nil {
		d.report(fmt.Errorf("write %s: %w", d.path, err))
	}
}

// switchDayLocked opens the file for day. The header provider runs under
// d.mu, so it must not log.
func (d *dailyLog) switchDayLocked(day string, at time.Time) {
	prev := d.path
	if d.file != nil {
		_ = d.file.Close()
		d.file = nil
	}
	path := filepath.Join(d.dir, day+".log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		d.report(fmt.Errorf("open %s: %w", path, err))
		return
	}
	d.file, d.day, d.path = file, day, path
	if err := pruneLogs(d.dir, at, d.keepDays); err != nil {
		d.report(fmt.Errorf("cleanup %s: %w", d.dir, err))
	}
	if prev == "" {
		return
	}
	lines := []string{"Continued from " + filepath.Base(prev)}
	if d.header != nil {
		for _, line := range d.header() {
			lines = append(lines, statsLinePrefix+line)
		}
	}
	for _, line := range lines {
		_, _ = file.WriteString(stampLine(line, at) + "\n")
	}
}

func (d *dailyLog) report(err error) {
	if _, ok := d.errLog.Inc(); ok {
		fmt.Fprintf(os.Stderr, "Logging: %v\n", err)
	}
}

func (d *dailyLog) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file, d.day, d.path = nil, "", ""
	return err
}

// logFanout is the log package's output. It splits writes into lines and
// hands each line to the console (stdout or the dashboard's system pane)
// and to the daily file.
type logFanout struct {
	clock clock.Clock

	mu      sync.Mutex
	partial []byte
	console logSink
	file    *dailyLog
}

func newLogFanout(console io.Writer, stamp bool) *logFanout {
	f := &logFanout{clock: clock.Real()}
	f.UseConsole(console, stamp)
	return f
}

// Purpose: Route the log package through a fanout for the configured sinks.
// Key aspects: File logging failures leave console logging in place.
// Upstream: run.
// Downstream: openDailyLog.
func setupLogging(cfg config.LoggingConfig, console io.Writer) (*logFanout, error) {
	fanout := newLogFanout(console, true)
	if cfg.Enabled {
		file, err := openDailyLog(cfg.Dir, cfg.RetentionDays, fanout.clock.Now())
		if err != nil {
			return fanout, err
		}
		fanout.file = file
	}
	return fanout, nil
}

// UseConsole swaps the console writer; nil silences the console.
func (f *logFanout) UseConsole(w io.Writer, stamp bool) {
	var sink logSink
	if w != nil {
		sink = &consoleSink{w: w, stamp: stamp}
	}
	f.mu.Lock()
	f.console = sink
	f.mu.Unlock()
}

// SetDayHeader supplies the stats lines written at the top of each new
// day's log file.
func (f *logFanout) SetDayHeader(header func() []string) {
	if f.file != nil {
		f.file.setHeader(header)
	}
}

func (f *logFanout) Write(p []byte) (int, error) {
	f.mu.Lock()
	f.partial = append(f.partial, p...)
	var lines []string
	for {
		idx := bytes.IndexByte(f.partial, '\n')
		if idx < 0 {
			break
		}
		lines = append(lines, string(bytes.TrimRight(f.partial[:idx], "\r")))
		f.partial = f.partial[idx+1:]
	}
	if len(f.partial) > maxPartialLine {
		lines = append(lines, string(f.partial))
		f.partial = nil
	}
	console, file := f.console, f.file
	f.mu.Unlock()

	at := f.clock.Now()
	for _, line := range lines {
		if console != nil {
			console.writeLine(line, at)
		}
		if file != nil {
			file.writeLine(line, at)
		}
	}
	return len(p), nil
}

// WriteStats appends stats lines to the log file only, so the periodic
// summary does not flood the dashboard's system pane.
func (f *logFanout) WriteStats(lines []string, at time.Time) {
	if f.file == nil {
		return
	}
	for _, line := range lines {
		f.file.writeLine(statsLinePrefix+line, at)
	}
}

func (f *logFanout) Close() error {
	if f.file == nil {
		return nil
	}
	return f.file.Close()
}

// throttledLog logs at most once per interval per key and reports how many
// events each logged line stands for.
type throttledLog struct {
	counts *ratelimit.Keyed
}

func newThrottledLog(interval time.Duration) *throttledLog {
	return &throttledLog{counts: ratelimit.NewKeyed(interval)}
}

// Printf counts one event for key and logs it when the key's interval allows.
// It reports whether the line was logged.
func (t *throttledLog) Printf(key, format string, args ...any) bool {
	total, ok := t.counts.Inc(key)
	if !ok {
		return false
	}
	log.Printf("%s (%d so far)", fmt.Sprintf(format, args...), total)
	return true
}

func stampLine(line string, at time.Time) string {
	return at.UTC().Format(logTimestampLayout) + " " + line
}

func parseLogFileDate(name string) (time.Time, bool) {
	day, ok := strings.CutSuffix(name, ".log")
	if !ok {
		return time.Time{}, false
	}
	parsed, err := time.ParseInLocation(logFileDateLayout, day, time.UTC)
	return parsed, err == nil
}

// pruneLogs removes day files older than keepDays, counting today.
func pruneLogs(dir string, now time.Time, keepDays int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	y, m, d := now.UTC().Date()
	cutoff := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1-keepDays)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if day, ok := parseLogFileDate(entry.Name()); ok && day.Before(cutoff) {
			_ = os.Remove(filepath.Join(dir, entry.Name()))
		}
	}
	return nil
}
