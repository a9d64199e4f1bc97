package main

import (
	"strings"
	"testing"
	"time"
)

func TestWarnDedupeKey(t *testing.T) {
	tests := []struct {
		name string
		line string
		ok   bool
	}{
		{
			name: "collector warning",
			line: "Collector: cpu usage read failed: context deadline exceeded",
			ok:   true,
		},
		{
			name: "per partition warning",
			line: "Collector: disk usage read failed for /mnt/flaky: input/output error",
			ok:   true,
		},
		{
			name: "stream warning",
			line: "Stream: write failed: broken pipe",
			ok:   true,
		},
		{
			name: "unprefixed line",
			line: "UI: tview error: terminal too small",
			ok:   false,
		},
		{
			name: "prefix without failure",
			line: "Collector: primed 182 process handles",
			ok:   false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, ok := warnDedupeKey(tc.line); ok != tc.ok {
				t.Fatalf("expected ok=%v, got %v", tc.ok, ok)
			}
		})
	}
}

func TestWarnDedupeKeyIgnoresErrorDetail(t *testing.T) {
	a, okA := warnDedupeKey("Collector: memory read failed: transient glitch")
	b, okB := warnDedupeKey("Collector: memory read failed: different glitch entirely")
	if !okA || !okB {
		t.Fatal("expected both lines to be keyed")
	}
	if a != b {
		t.Fatalf("expected the same key regardless of error detail, got %d and %d", a, b)
	}

	c, okC := warnDedupeKey("Collector: disk usage read failed for /mnt/a: err")
	d, okD := warnDedupeKey("Collector: disk usage read failed for /mnt/b: err")
	if !okC || !okD {
		t.Fatal("expected both partition lines to be keyed")
	}
	if c == d {
		t.Fatal("expected different partitions to dedupe independently")
	}
}

func TestWarnDeduperSuppressesWithinWindow(t *testing.T) {
	now := time.Date(2026, 2, 6, 0, 0, 0, 0, time.UTC)
	d := newWarnDeduper(10*time.Second, 16)
	if d == nil {
		t.Fatal("expected deduper")
	}
	d.now = func() time.Time { return now }

	line := "Collector: swap read failed: probe unavailable"
	out, ok := d.Process(line)
	if !ok || out != line {
		t.Fatalf("expected first line to pass through, got ok=%v out=%q", ok, out)
	}

	out, ok = d.Process(line)
	if ok || out != "" {
		t.Fatalf("expected second line to be suppressed, got ok=%v out=%q", ok, out)
	}

	now = now.Add(11 * time.Second)
	out, ok = d.Process(line)
	if !ok {
		t.Fatalf("expected line after window, got suppressed")
	}
	if !strings.Contains(out, "suppressed=1") {
		t.Fatalf("expected suppression summary, got %q", out)
	}
}

func TestWarnDeduperPassesUnkeyedLines(t *testing.T) {
	d := newWarnDeduper(10*time.Second, 16)
	line := "hostmon v1.0.0 starting"
	for i := 0; i < 3; i++ {
		out, ok := d.Process(line)
		if !ok || out != line {
			t.Fatalf("expected unkeyed line to always pass, got ok=%v out=%q", ok, out)
		}
	}
}

func TestWarnDeduperNilPassesThrough(t *testing.T) {
	var d *warnDeduper
	line := "Collector: cpu usage read failed: whatever"
	for i := 0; i < 3; i++ {
		out, ok := d.Process(line)
		if !ok || out != line {
			t.Fatalf("expected nil deduper to pass lines, got ok=%v out=%q", ok, out)
		}
	}
}

func TestWarnDeduperEvictsOldestKey(t *testing.T) {
	now := time.Date(2026, 2, 6, 0, 0, 0, 0, time.UTC)
	d := newWarnDeduper(30*time.Second, 2)
	if d == nil {
		t.Fatal("expected deduper")
	}
	d.now = func() time.Time { return now }

	line1 := "Collector: disk usage read failed for /mnt/a: err"
	line2 := "Collector: disk usage read failed for /mnt/b: err"
	line3 := "Collector: disk usage read failed for /mnt/c: err"

	if _, ok := d.Process(line1); !ok {
		t.Fatal("expected line1 to pass")
	}
	now = now.Add(time.Second)
	if _, ok := d.Process(line2); !ok {
		t.Fatal("expected line2 to pass")
	}
	now = now.Add(time.Second)
	if _, ok := d.Process(line3); !ok {
		t.Fatal("expected line3 to pass")
	}

	if len(d.entries) != 2 {
		t.Fatalf("expected 2 entries after eviction, got %d", len(d.entries))
	}
	oldest, _ := warnDedupeKey(line1)
	if _, ok := d.entries[oldest]; ok {
		t.Fatalf("expected the oldest key to be evicted")
	}
}
