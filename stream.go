package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/dustin/go-humanize"
	jsoniter "github.com/json-iterator/go"

	"hostmon/collector"
)

var streamJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// snapshotStream appends one JSON document per sample, newline-delimited
// for line-oriented consumers. The writer flushes after every record so
// a tailing reader never waits on a partial line.
type snapshotStream struct {
	mu      sync.Mutex
	w       *bufio.Writer
	closer  io.Closer
	target  string
	records uint64
}

// Purpose: Open the snapshot stream for a path or stdout.
// Key aspects: "-" selects stdout and is never closed; files are opened
// in append mode so restarts extend the series.
// Upstream: main startup when stream.enabled is set.
// Downstream: os.OpenFile.
func newSnapshotStream(path string) (*snapshotStream, error) {
	if path == "-" {
		return &snapshotStream{
			w:      bufio.NewWriter(os.Stdout),
			target: "stdout",
		}, nil
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open stream file: %w", err)
	}
	return &snapshotStream{
		w:      bufio.NewWriter(file),
		closer: file,
		target: path,
	}, nil
}

func (s *snapshotStream) Target() string {
	if s == nil {
		return ""
	}
	return s.target
}

// Purpose: Encode and append one snapshot record.
// Key aspects: A failed write leaves the stream usable; the caller logs
// and the next sample tries again.
// Upstream: the sampling loop after each pass.
// Downstream: jsoniter marshal and bufio.Writer.
func (s *snapshotStream) Emit(snap collector.Snapshot) error {
	if s == nil {
		return nil
	}
	data, err := streamJSON.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(data); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("flush failed: %w", err)
	}
	s.records++
	return nil
}

// Purpose: Flush and close the stream target.
// Key aspects: stdout stays open; only file targets are closed.
// Upstream: main shutdown.
// Downstream: bufio.Writer.Flush and os.File.Close.
func (s *snapshotStream) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	if s.w != nil {
		firstErr = s.w.Flush()
	}
	if s.closer != nil {
		if err := s.closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.records > 0 {
		log.Printf("Stream: wrote %s snapshots to %s", humanize.Comma(int64(s.records)), s.target)
	}
	return firstErr
}
