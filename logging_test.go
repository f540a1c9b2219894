package main

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dockdash/clock"
	"dockdash/config"
)

func readLogFile(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(data)
}

func TestParseLogFileDate(t *testing.T) {
	parsed, ok := parseLogFileDate("22-Jan-2026.log")
	if !ok {
		t.Fatalf("expected parse to succeed")
	}
	if parsed.Year() != 2026 || parsed.Month() != time.January || parsed.Day() != 22 {
		t.Fatalf("unexpected parsed date: %s", parsed.Format(time.RFC3339))
	}
	if _, ok := parseLogFileDate("notes.txt"); ok {
		t.Fatalf("expected non-log file to be rejected")
	}
	if _, ok := parseLogFileDate("dockdash.log"); ok {
		t.Fatalf("expected undated log file to be rejected")
	}
}

func TestPruneLogsKeepsRetentionWindow(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"20-Jan-2026.log", "21-Jan-2026.log", "22-Jan-2026.log", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	now := time.Date(2026, time.January, 22, 12, 0, 0, 0, time.UTC)
	if err := pruneLogs(dir, now, 2); err != nil {
		t.Fatalf("prune: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "20-Jan-2026.log")); !os.IsNotExist(err) {
		t.Fatalf("expected 20-Jan-2026.log to be removed, stat err %v", err)
	}
	for _, name := range []string{"21-Jan-2026.log", "22-Jan-2026.log", "notes.txt"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s to remain: %v", name, err)
		}
	}
}

func TestOpenDailyLogRejectsEmptyDir(t *testing.T) {
	if _, err := openDailyLog("  ", 3, time.Now()); err == nil {
		t.Fatalf("expected an error for an empty directory")
	}
}

func TestDailyLogNewDayStartsWithStatsHeader(t *testing.T) {
	dir := t.TempDir()
	day1 := time.Date(2026, time.January, 22, 23, 59, 0, 0, time.UTC)
	day2 := day1.Add(2 * time.Minute)
	daily, err := openDailyLog(dir, 3, day1)
	if err != nil {
		t.Fatalf("openDailyLog: %v", err)
	}
	defer daily.Close()
	daily.setHeader(func() []string { return []string{"Streams 3 up", "Actions 2 ok 0 failed"} })

	daily.writeLine("first", day1)
	daily.writeLine("second", day2)

	if got := readLogFile(t, dir, "22-Jan-2026.log"); got != "2026/01/22 23:59:00 first\n" {
		t.Fatalf("first day contents = %q", got)
	}
	want := "2026/01/23 00:01:00 Continued from 22-Jan-2026.log\n" +
		"2026/01/23 00:01:00 Stats: Streams 3 up\n" +
		"2026/01/23 00:01:00 Stats: Actions 2 ok 0 failed\n" +
		"2026/01/23 00:01:00 second\n"
	if got := readLogFile(t, dir, "23-Jan-2026.log"); got != want {
		t.Fatalf("second day contents = %q, want %q", got, want)
	}
}

func TestDailyLogFirstFileHasNoHeader(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, time.January, 22, 8, 0, 0, 0, time.UTC)
	daily, err := openDailyLog(dir, 3, now)
	if err != nil {
		t.Fatalf("openDailyLog: %v", err)
	}
	daily.setHeader(func() []string { return []string{"should not appear"} })
	daily.writeLine("hello", now)
	if err := daily.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if got := readLogFile(t, dir, "22-Jan-2026.log"); got != "2026/01/22 08:00:00 hello\n" {
		t.Fatalf("contents = %q", got)
	}
}

func TestLogFanoutTimestampsConsoleLines(t *testing.T) {
	var console bytes.Buffer
	fanout := newLogFanout(&console, true)
	fanout.clock = clock.NewFake(time.Date(2026, time.March, 4, 5, 6, 7, 0, time.UTC))

	logger := log.New(fanout, "", 0)
	logger.Print("Stream containerlist: connected")
	fanout.Write([]byte("Action containers/stop: "))
	if console.Len() == 0 {
		t.Fatalf("expected first line on console")
	}
	fanout.Write([]byte("boom\n"))

	want := "2026/03/04 05:06:07 Stream containerlist: connected\n" +
		"2026/03/04 05:06:07 Action containers/stop: boom\n"
	if got := console.String(); got != want {
		t.Fatalf("console = %q, want %q", got, want)
	}
}

func TestLogFanoutUseConsoleSwapsSink(t *testing.T) {
	var first, pane bytes.Buffer
	fanout := newLogFanout(&first, true)
	fanout.UseConsole(&pane, false)
	fanout.Write([]byte("Stream images: connected\n"))
	if first.Len() != 0 {
		t.Fatalf("old console still receiving lines: %q", first.String())
	}
	if got := pane.String(); got != "Stream images: connected\n" {
		t.Fatalf("pane = %q", got)
	}
	fanout.UseConsole(nil, false)
	fanout.Write([]byte("dropped\n"))
	if strings.Contains(pane.String(), "dropped") {
		t.Fatalf("silenced console received a line")
	}
}

func TestLogFanoutWriteStatsSkipsConsole(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer
	fanout, err := setupLogging(config.LoggingConfig{Enabled: true, Dir: dir, RetentionDays: 2}, &console)
	if err != nil {
		t.Fatalf("setupLogging: %v", err)
	}
	now := time.Date(2026, time.March, 4, 5, 6, 7, 0, time.UTC)
	fanout.WriteStats([]string{"Msgs 3", "Decode failures 0"}, now)
	if err := fanout.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if console.Len() != 0 {
		t.Fatalf("stats reached console: %q", console.String())
	}
	want := "2026/03/04 05:06:07 Stats: Msgs 3\n2026/03/04 05:06:07 Stats: Decode failures 0\n"
	if got := readLogFile(t, dir, "04-Mar-2026.log"); got != want {
		t.Fatalf("file contents = %q, want %q", got, want)
	}
}

func TestLogFanoutWithoutFileIgnoresStats(t *testing.T) {
	var console bytes.Buffer
	fanout, err := setupLogging(config.LoggingConfig{}, &console)
	if err != nil {
		t.Fatalf("setupLogging: %v", err)
	}
	fanout.SetDayHeader(func() []string { return nil })
	fanout.WriteStats([]string{"Msgs 1"}, time.Now())
	if console.Len() != 0 {
		t.Fatalf("stats reached console: %q", console.String())
	}
	if err := fanout.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestThrottledLogCountsSuppressedLines(t *testing.T) {
	var out bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&out)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	})

	throttle := newThrottledLog(time.Hour)
	if !throttle.Printf("containerlist", "Stream %s: bad payload", "containerlist") {
		t.Fatalf("expected first line to be logged")
	}
	if throttle.Printf("containerlist", "Stream %s: bad payload", "containerlist") {
		t.Fatalf("expected repeat within interval to be suppressed")
	}
	if !throttle.Printf("imagelist", "Stream %s: bad payload", "imagelist") {
		t.Fatalf("expected a different key to log")
	}

	want := "Stream containerlist: bad payload (1 so far)\nStream imagelist: bad payload (1 so far)\n"
	if got := out.String(); got != want {
		t.Fatalf("log output = %q, want %q", got, want)
	}
	if total, _ := throttle.counts.Inc("containerlist"); total != 3 {
		t.Fatalf("expected suppressed lines to be counted, total %d", total)
	}
}
