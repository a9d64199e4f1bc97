package collector

import (
	"math"
	"time"
)

// Snapshot is an immutable copy of the collector's readings at one point
// in time. Front-ends and the JSON stream consume Snapshots only, never
// the Collector itself, so a slow renderer can never block sampling.
type Snapshot struct {
	CPU       CPUInfo       `json:"cpu"`
	Memory    MemoryInfo    `json:"memory"`
	Disks     []DiskStat    `json:"disks"`
	Network   []NetStat     `json:"network"`
	Processes []ProcessStat `json:"processes"`
	System    SystemInfo    `json:"system"`
	Timestamp int64         `json:"timestamp"`
}

// CPUInfo describes aggregate CPU state.
type CPUInfo struct {
	Usage       float64     `json:"usage"`
	Count       int         `json:"count"`
	LoadAverage LoadAverage `json:"load_average"`
}

// LoadAverage holds the classic 1, 5 and 15 minute figures.
type LoadAverage struct {
	One     float64 `json:"one"`
	Five    float64 `json:"five"`
	Fifteen float64 `json:"fifteen"`
}

// MemoryInfo holds physical and swap usage in bytes.
type MemoryInfo struct {
	Used      uint64 `json:"used"`
	Total     uint64 `json:"total"`
	UsedSwap  uint64 `json:"used_swap"`
	TotalSwap uint64 `json:"total_swap"`
}

// DiskStat describes one mounted partition.
type DiskStat struct {
	Name       string `json:"name"`
	Total      uint64 `json:"total"`
	Available  uint64 `json:"available"`
	MountPoint string `json:"mount_point"`
}

// NetStat holds cumulative traffic counters for one interface.
type NetStat struct {
	Interface   string `json:"interface"`
	Received    uint64 `json:"received"`
	Transmitted uint64 `json:"transmitted"`
}

// ProcessStat describes one process. CPUUsage is a percentage of a single
// core and can exceed 100 on multi-threaded processes; Memory is resident
// set size in bytes.
type ProcessStat struct {
	Name     string  `json:"name"`
	PID      int32   `json:"pid"`
	CPUUsage float64 `json:"cpu_usage"`
	Memory   uint64  `json:"memory"`
}

// SystemInfo holds host-wide figures.
type SystemInfo struct {
	Uptime uint64 `json:"uptime"`
}

// TakeSnapshot freezes the collector's current readings into a Snapshot
// holding the topN processes by CPU usage. It performs no sampling: two
// snapshots taken without an intervening Refresh differ only in their
// timestamps. Non-finite floats are mapped to zero so every snapshot
// serialises as plain JSON numbers.
func TakeSnapshot(c *Collector, topN int) Snapshot {
	memUsed, memTotal := c.MemoryUsage()
	swapUsed, swapTotal := c.SwapUsage()
	procs := c.TopProcesses(topN)
	for i := range procs {
		procs[i].CPUUsage = sanitizeFloat(procs[i].CPUUsage)
	}
	avg := c.LoadAverage()
	return Snapshot{
		CPU: CPUInfo{
			Usage: sanitizeFloat(c.CPUUsage()),
			Count: c.CPUCount(),
			LoadAverage: LoadAverage{
				One:     sanitizeFloat(avg.One),
				Five:    sanitizeFloat(avg.Five),
				Fifteen: sanitizeFloat(avg.Fifteen),
			},
		},
		Memory: MemoryInfo{
			Used:      memUsed,
			Total:     memTotal,
			UsedSwap:  swapUsed,
			TotalSwap: swapTotal,
		},
		Disks:     c.DiskStats(),
		Network:   c.NetworkStats(),
		Processes: procs,
		System:    SystemInfo{Uptime: c.Uptime()},
		Timestamp: time.Now().Unix(),
	}
}

func sanitizeFloat(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
