package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/zeebo/xxh3"
)

// warnDeduper rate-limits repeated sampling warnings. A probe that keeps
// failing would otherwise emit an identical line every interval; the
// deduper lets one line through per window and folds the rest into a
// suppressed count.
type warnDeduper struct {
	mu      sync.Mutex
	window  time.Duration
	maxKeys int
	now     func() time.Time
	entries map[uint64]warnDedupeEntry
}

type warnDedupeEntry struct {
	nextEmit   time.Time
	lastSeen   time.Time
	suppressed uint64
}

// newWarnDeduper returns nil when the window or key bound disables
// deduplication; a nil deduper passes every line through.
func newWarnDeduper(window time.Duration, maxKeys int) *warnDeduper {
	if window <= 0 || maxKeys <= 0 {
		return nil
	}
	return &warnDeduper{
		window:  window,
		maxKeys: maxKeys,
		now:     func() time.Time { return time.Now().UTC() },
		entries: make(map[uint64]warnDedupeEntry, maxKeys),
	}
}

// Process decides whether a log line should be emitted. Lines without a
// dedupe key always pass. The first occurrence of a keyed line passes
// and opens a window; repeats inside the window are dropped and counted,
// and the next emission carries the suppressed total.
func (d *warnDeduper) Process(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false
	}
	if d == nil {
		return line, true
	}
	key, ok := warnDedupeKey(line)
	if !ok {
		return line, true
	}
	now := d.now()
	d.mu.Lock()
	defer d.mu.Unlock()

	entry, found := d.entries[key]
	if !found {
		d.evictOneIfNeededLocked()
		d.entries[key] = warnDedupeEntry{
			nextEmit: now.Add(d.window),
			lastSeen: now,
		}
		return line, true
	}
	entry.lastSeen = now
	if now.Before(entry.nextEmit) {
		entry.suppressed++
		d.entries[key] = entry
		return "", false
	}
	suppressed := entry.suppressed
	entry.suppressed = 0
	entry.nextEmit = now.Add(d.window)
	d.entries[key] = entry
	if suppressed > 0 {
		line = fmt.Sprintf("%s (suppressed=%d over %s)", line, suppressed, d.window)
	}
	return line, true
}

func (d *warnDeduper) evictOneIfNeededLocked() {
	if d == nil || d.maxKeys <= 0 {
		return
	}
	if len(d.entries) < d.maxKeys {
		return
	}
	var oldestKey uint64
	var oldestSeen time.Time
	haveOldest := false
	for key, entry := range d.entries {
		if !haveOldest || entry.lastSeen.Before(oldestSeen) {
			oldestKey = key
			oldestSeen = entry.lastSeen
			haveOldest = true
		}
	}
	if haveOldest {
		delete(d.entries, oldestKey)
	}
}

// warnDedupeKey extracts the stable part of a sampling warning. The
// collector and the stream writer log in the form
// "<Subsystem>: <what> failed[ for <target>]: <error>"; the key covers
// everything before the error text so the same failure keeps one key
// regardless of the error detail. Uses xxh3 so the map stores 8-byte
// keys instead of line prefixes.
func warnDedupeKey(line string) (uint64, bool) {
	if !strings.HasPrefix(line, "Collector: ") && !strings.HasPrefix(line, "Stream: ") {
		return 0, false
	}
	idx := strings.Index(line, " failed")
	if idx == -1 {
		return 0, false
	}
	rest := line[idx:]
	if colon := strings.IndexByte(rest, ':'); colon != -1 {
		return xxh3.HashString(line[:idx+colon]), true
	}
	return xxh3.HashString(line), true
}
