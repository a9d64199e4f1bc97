package main

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"hostmon/config"
)

func TestLogFileNameForDate(t *testing.T) {
	when := time.Date(2026, time.January, 22, 12, 0, 0, 0, time.UTC)
	if got := logFileNameForDate(when); got != "22-Jan-2026.log" {
		t.Fatalf("expected log filename to be 22-Jan-2026.log, got %q", got)
	}
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
}

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		"20-Jan-2026.log",
		"21-Jan-2026.log",
		"22-Jan-2026.log",
		"notes.txt",
	}
	for _, name := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	now := time.Date(2026, time.January, 22, 12, 0, 0, 0, time.UTC)
	if err := cleanupOldLogs(dir, now, 2); err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	expectMissing := []string{"20-Jan-2026.log"}
	for _, name := range expectMissing {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			t.Fatalf("expected %s to be removed", name)
		} else if !os.IsNotExist(err) {
			t.Fatalf("stat %s: %v", name, err)
		}
	}
	expectPresent := []string{"21-Jan-2026.log", "22-Jan-2026.log", "notes.txt"}
	for _, name := range expectPresent {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s to remain: %v", name, err)
		}
	}
}

func TestDailyFileSinkRotatesOnDayChange(t *testing.T) {
	dir := t.TempDir()
	sink, err := newDailyFileSink(dir, 7)
	if err != nil {
		t.Fatalf("newDailyFileSink: %v", err)
	}
	defer sink.Close()

	day1 := time.Date(2026, time.January, 22, 12, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)
	sink.WriteLine("first", day1)
	sink.WriteLine("second", day2)

	data1, err := os.ReadFile(filepath.Join(dir, "22-Jan-2026.log"))
	if err != nil {
		t.Fatalf("read day1 log: %v", err)
	}
	if !strings.Contains(string(data1), "first") {
		t.Fatalf("expected day1 log to hold the first line, got %q", data1)
	}
	data2, err := os.ReadFile(filepath.Join(dir, "23-Jan-2026.log"))
	if err != nil {
		t.Fatalf("read day2 log: %v", err)
	}
	if !strings.Contains(string(data2), "second") {
		t.Fatalf("expected day2 log to hold the second line, got %q", data2)
	}
	if strings.Contains(string(data2), "first") {
		t.Fatalf("expected the first line to stay in the day1 file, got %q", data2)
	}
}

func TestLogFanoutBuffersPartialLines(t *testing.T) {
	var out bytes.Buffer
	fanout := newLogFanout(&ioLineSink{w: &out}, nil)

	if _, err := fanout.Write([]byte("partial")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected nothing before a newline, got %q", out.String())
	}
	if _, err := fanout.Write([]byte(" done\n")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if got := out.String(); got != "partial done\n" {
		t.Fatalf("expected the joined line, got %q", got)
	}
}

func TestLogFanoutDedupesRepeatedWarnings(t *testing.T) {
	var out bytes.Buffer
	fanout := newLogFanout(&ioLineSink{w: &out}, nil)
	fanout.dedupe = newWarnDeduper(time.Minute, 8)
	logger := log.New(fanout, "", 0)

	logger.Print("Collector: cpu usage read failed: boom")
	logger.Print("Collector: cpu usage read failed: boom")
	logger.Print("sampling resumed")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 emitted lines, got %d: %v", len(lines), lines)
	}
	if !strings.Contains(lines[0], "cpu usage read failed") {
		t.Fatalf("expected the first warning to pass, got %q", lines[0])
	}
	if lines[1] != "sampling resumed" {
		t.Fatalf("expected the unkeyed line to pass, got %q", lines[1])
	}
}

func TestLogFanoutConsoleSwap(t *testing.T) {
	var first, second bytes.Buffer
	fanout := newLogFanout(&ioLineSink{w: &first}, nil)
	logger := log.New(fanout, "", 0)

	logger.Print("before swap")
	fanout.SetConsoleSink(&second, false)
	logger.Print("after swap")

	if !strings.Contains(first.String(), "before swap") || strings.Contains(first.String(), "after swap") {
		t.Fatalf("expected only the first line on the old sink, got %q", first.String())
	}
	if !strings.Contains(second.String(), "after swap") {
		t.Fatalf("expected the new sink to receive later lines, got %q", second.String())
	}
}

func TestSetupLoggingWithoutFileSink(t *testing.T) {
	var out bytes.Buffer
	cfg := config.LoggingConfig{
		Enabled:            false,
		DedupWindowSeconds: 30,
		DedupMaxKeys:       16,
	}
	fanout, err := setupLogging(cfg, &out)
	if err != nil {
		t.Fatalf("setupLogging: %v", err)
	}
	if fanout.file != nil {
		t.Fatal("expected no file sink when file logging is disabled")
	}
	if fanout.dedupe == nil {
		t.Fatal("expected the warning deduper to be active")
	}
}

func TestSetupLoggingCreatesLogDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	cfg := config.LoggingConfig{
		Enabled:       true,
		Dir:           dir,
		RetentionDays: 3,
	}
	fanout, err := setupLogging(cfg, os.Stdout)
	if err != nil {
		t.Fatalf("setupLogging: %v", err)
	}
	defer fanout.Close()
	if fanout.file == nil {
		t.Fatal("expected a file sink")
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("expected the log directory to exist: %v", err)
	}
}
