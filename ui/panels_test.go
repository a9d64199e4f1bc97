package ui

import (
	"math"
	"strings"
	"testing"
	"time"

	"hostmon/collector"
)

func sampleSnapshot() collector.Snapshot {
	return collector.Snapshot{
		CPU: collector.CPUInfo{
			Usage: 42.5,
			Count: 8,
			LoadAverage: collector.LoadAverage{
				One:     0.5,
				Five:    0.4,
				Fifteen: 0.3,
			},
		},
		Memory: collector.MemoryInfo{
			Used:      4 << 30,
			Total:     16 << 30,
			UsedSwap:  0,
			TotalSwap: 0,
		},
		Disks: []collector.DiskStat{
			{Name: "/dev/sda1", Total: 100 << 30, Available: 40 << 30, MountPoint: "/"},
			{Name: "/dev/sdb1", Total: 200 << 30, Available: 10 << 30, MountPoint: "/data"},
			{Name: "/dev/sdc1", Total: 50 << 30, Available: 25 << 30, MountPoint: "/media/external-backup"},
		},
		Network: []collector.NetStat{
			{Interface: "eth0", Received: 10 << 20, Transmitted: 5 << 20},
			{Interface: "wlan0", Received: 1 << 20, Transmitted: 1 << 20},
		},
		Processes: []collector.ProcessStat{
			{Name: "hot", PID: 12, CPUUsage: 95.5, Memory: 512 << 20},
			{Name: "mid", PID: 10, CPUUsage: 40, Memory: 128 << 20},
			{Name: "cold", PID: 13, CPUUsage: 0.2, Memory: 16 << 20},
		},
		System:    collector.SystemInfo{Uptime: 3725},
		Timestamp: time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC).Unix(),
	}
}

func TestGaugeBar(t *testing.T) {
	tests := []struct {
		name   string
		pct    float64
		filled int
	}{
		{name: "empty", pct: 0, filled: 0},
		{name: "half", pct: 50, filled: 8},
		{name: "full", pct: 100, filled: 16},
		{name: "over full clamps", pct: 150, filled: 16},
		{name: "negative clamps", pct: -5, filled: 0},
		{name: "nan renders empty", pct: math.NaN(), filled: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := gaugeBar(tt.pct, 16, "green")
			if got := strings.Count(bar, "█"); got != tt.filled {
				t.Fatalf("expected %d filled cells, got %d (%q)", tt.filled, got, bar)
			}
			if got := strings.Count(bar, "░"); got != 16-tt.filled {
				t.Fatalf("expected %d empty cells, got %d (%q)", 16-tt.filled, got, bar)
			}
		})
	}
}

func TestCPULines(t *testing.T) {
	lines := cpuLines(sampleSnapshot())
	if len(lines) != 2 {
		t.Fatalf("expected 2 cpu lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], " 42.5%") {
		t.Fatalf("expected usage percentage in %q", lines[0])
	}
	if lines[1] != "Cores: 8  Load: 0.50 0.40 0.30" {
		t.Fatalf("unexpected cores line: %q", lines[1])
	}
}

func TestSwapLinesWithoutSwap(t *testing.T) {
	lines := swapLines(sampleSnapshot())
	if !strings.Contains(lines[0], "  0.0%") {
		t.Fatalf("expected zero swap percentage, got %q", lines[0])
	}
	if lines[1] != "Used: 0.0G / 0.0G" {
		t.Fatalf("unexpected swap usage line: %q", lines[1])
	}
}

func TestDiskLinesHonourLimit(t *testing.T) {
	snap := sampleSnapshot()

	lines := diskLines(snap, 2)
	if len(lines) != 2 {
		t.Fatalf("expected 2 disk lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "root") {
		t.Fatalf("expected shortened root mount in %q", lines[0])
	}
	if !strings.Contains(lines[0], "40.0G free") {
		t.Fatalf("expected free space figure in %q", lines[0])
	}

	snap.Disks = nil
	empty := diskLines(snap, 2)
	if len(empty) != 1 || !strings.Contains(empty[0], "no disks") {
		t.Fatalf("expected placeholder for empty disk list, got %v", empty)
	}
}

func TestNetworkLines(t *testing.T) {
	lines := networkLines(sampleSnapshot(), 4)
	if len(lines) != 2 {
		t.Fatalf("expected 2 network lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "eth0") || !strings.Contains(lines[0], "↓") || !strings.Contains(lines[0], "↑") {
		t.Fatalf("unexpected network line: %q", lines[0])
	}
	if !strings.Contains(lines[0], "10.0M") {
		t.Fatalf("expected received figure in %q", lines[0])
	}
}

func TestProcessLines(t *testing.T) {
	procs := sampleSnapshot().Processes

	t.Run("window with scroll", func(t *testing.T) {
		lines := processLines(procs, 1, 2)
		if len(lines) != 2 {
			t.Fatalf("expected 2 lines, got %d", len(lines))
		}
		if !strings.Contains(lines[0], "mid") || !strings.Contains(lines[1], "cold") {
			t.Fatalf("unexpected window contents: %v", lines)
		}
	})

	t.Run("scroll past end yields nothing", func(t *testing.T) {
		if lines := processLines(procs, 10, 2); lines != nil {
			t.Fatalf("expected nil, got %v", lines)
		}
	})

	t.Run("long names are shortened", func(t *testing.T) {
		long := []collector.ProcessStat{{Name: strings.Repeat("x", 40), PID: 1, CPUUsage: 1, Memory: 1 << 20}}
		lines := processLines(long, 0, 1)
		if !strings.Contains(lines[0], "...") {
			t.Fatalf("expected shortened name in %q", lines[0])
		}
	})
}

func TestStatusLine(t *testing.T) {
	if got := statusLine(true); !strings.Contains(got, "PAUSED") {
		t.Fatalf("expected paused marker, got %q", got)
	}
	normal := statusLine(false)
	for _, want := range []string{"quit", "pause", "section", "refresh"} {
		if !strings.Contains(normal, want) {
			t.Fatalf("expected %q in status line %q", want, normal)
		}
	}
}

func TestUptimeLine(t *testing.T) {
	if got := uptimeLine(sampleSnapshot()); got != "Uptime: 1h 2m" {
		t.Fatalf("unexpected uptime line: %q", got)
	}
}

func TestBuildPanesOrder(t *testing.T) {
	panes := buildPanes(sampleSnapshot(), Options{MaxDisks: 4, MaxInterfaces: 4})
	titles := make([]string, 0, len(panes))
	for _, p := range panes {
		titles = append(titles, p.title)
	}
	expected := []string{"CPU", "Memory", "Swap", "Disks", "Network", "Processes", "System"}
	if len(titles) != len(expected) {
		t.Fatalf("expected %d panes, got %d (%v)", len(expected), len(titles), titles)
	}
	for i := range expected {
		if titles[i] != expected[i] {
			t.Fatalf("expected pane %d to be %q, got %q", i, expected[i], titles[i])
		}
	}
}

func TestHeaderLine(t *testing.T) {
	got := headerLine(sampleSnapshot(), 2*time.Second)
	if !strings.Contains(got, "System Monitor") || !strings.Contains(got, "sampling every 2s") {
		t.Fatalf("unexpected header: %q", got)
	}
}
