// Package collector samples host telemetry through gopsutil and caches the
// latest reading for each subsystem. A Collector is owned by a single
// goroutine: the driving loop calls Refresh on its cadence and hands
// immutable Snapshots to the front-ends, so no locking is needed here.
package collector

import (
	"fmt"
	"log"
	"math"
	"runtime"
	"sort"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	psnet "github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/process"
)

// Collector holds the most recent reading per subsystem. Refresh is
// best-effort: a subsystem that cannot be read keeps its previous value,
// so accessors always return the last known good data.
type Collector struct {
	probes probes

	cpuUsage  float64
	cpuCount  int
	load      LoadAverage
	memUsed   uint64
	memTotal  uint64
	swapUsed  uint64
	swapTotal uint64
	processes []ProcessStat
	nets      []NetStat
	disks     []DiskStat
	uptime    uint64
}

// probes are the OS sampling functions, swappable in tests.
type probes struct {
	cpuPercent func() (float64, error)
	cpuCounts  func() (int, error)
	memory     func() (*mem.VirtualMemoryStat, error)
	swap       func() (*mem.SwapMemoryStat, error)
	processes  func() ([]ProcessStat, error)
	netIO      func() ([]psnet.IOCountersStat, error)
	partitions func() ([]disk.PartitionStat, error)
	usage      func(path string) (*disk.UsageStat, error)
	loadAvg    func() (*load.AvgStat, error)
	uptime     func() (uint64, error)
}

func defaultProbes() probes {
	sampler := newProcessSampler()
	return probes{
		cpuPercent: sampleCPUPercent,
		cpuCounts:  func() (int, error) { return cpu.Counts(true) },
		memory:     mem.VirtualMemory,
		swap:       mem.SwapMemory,
		processes:  sampler.sample,
		netIO:      func() ([]psnet.IOCountersStat, error) { return psnet.IOCounters(true) },
		partitions: func() ([]disk.PartitionStat, error) { return disk.Partitions(false) },
		usage:      disk.Usage,
		loadAvg:    load.Avg,
		uptime:     host.Uptime,
	}
}

// sampleCPUPercent reads the aggregate CPU utilisation since the previous
// call. gopsutil keeps the baseline internally when interval is zero.
func sampleCPUPercent() (float64, error) {
	percents, err := cpu.Percent(0, false)
	if err != nil {
		return 0, err
	}
	if len(percents) == 0 {
		return 0, fmt.Errorf("no aggregate cpu sample")
	}
	return percents[0], nil
}

// New builds a Collector, primes the interval-based samplers and loads
// the initial interface and partition lists. A host where the core CPU,
// memory, network or disk queries fail outright cannot be monitored, so
// those errors surface here instead of degrading every later Refresh.
func New() (*Collector, error) {
	return newWithProbes(defaultProbes())
}

func newWithProbes(p probes) (*Collector, error) {
	c := &Collector{
		probes:   p,
		cpuCount: runtime.NumCPU(),
	}
	// Prime the delta-based samplers so the first Refresh reports
	// activity since startup instead of since boot.
	if _, err := p.cpuPercent(); err != nil {
		return nil, fmt.Errorf("cpu sampling unavailable: %w", err)
	}
	if count, err := p.cpuCounts(); err == nil && count > 0 {
		c.cpuCount = count
	}
	vm, err := p.memory()
	if err != nil {
		return nil, fmt.Errorf("memory sampling unavailable: %w", err)
	}
	if vm != nil {
		c.memUsed, c.memTotal = vm.Used, vm.Total
	}
	_, _ = p.processes()
	counters, err := p.netIO()
	if err != nil {
		return nil, fmt.Errorf("network counters unavailable: %w", err)
	}
	c.storeNetwork(counters)
	parts, err := p.partitions()
	if err != nil {
		return nil, fmt.Errorf("disk partitions unavailable: %w", err)
	}
	c.storeDisks(parts)
	return c, nil
}

// Refresh samples every subsystem in a fixed order: CPU, memory,
// processes, network, disks, then system-wide figures. Each subsystem is
// independent; a failed read logs a warning and leaves the previous value
// in place, so Refresh itself never fails.
func (c *Collector) Refresh() {
	c.refreshCPU()
	c.refreshMemory()
	c.refreshProcesses()
	c.refreshNetwork()
	c.refreshDisks()
	c.refreshSystem()
}

func (c *Collector) refreshCPU() {
	if usage, err := c.probes.cpuPercent(); err == nil {
		c.cpuUsage = usage
	} else {
		log.Printf("Collector: cpu usage read failed: %v", err)
	}
	if count, err := c.probes.cpuCounts(); err == nil && count > 0 {
		c.cpuCount = count
	} else if err != nil {
		log.Printf("Collector: cpu count read failed: %v", err)
	}
}

func (c *Collector) refreshMemory() {
	if vm, err := c.probes.memory(); err == nil && vm != nil {
		c.memUsed, c.memTotal = vm.Used, vm.Total
	} else if err != nil {
		log.Printf("Collector: memory read failed: %v", err)
	}
	if sw, err := c.probes.swap(); err == nil && sw != nil {
		c.swapUsed, c.swapTotal = sw.Used, sw.Total
	} else if err != nil {
		log.Printf("Collector: swap read failed: %v", err)
	}
}

func (c *Collector) refreshProcesses() {
	stats, err := c.probes.processes()
	if err != nil {
		log.Printf("Collector: process table read failed: %v", err)
		return
	}
	c.processes = stats
}

func (c *Collector) refreshNetwork() {
	counters, err := c.probes.netIO()
	if err != nil {
		log.Printf("Collector: network counters read failed: %v", err)
		return
	}
	c.storeNetwork(counters)
}

func (c *Collector) storeNetwork(counters []psnet.IOCountersStat) {
	nets := make([]NetStat, 0, len(counters))
	for _, nic := range counters {
		nets = append(nets, NetStat{
			Interface:   nic.Name,
			Received:    nic.BytesRecv,
			Transmitted: nic.BytesSent,
		})
	}
	c.nets = nets
}

func (c *Collector) refreshDisks() {
	parts, err := c.probes.partitions()
	if err != nil {
		log.Printf("Collector: disk partition read failed: %v", err)
		return
	}
	c.storeDisks(parts)
}

func (c *Collector) storeDisks(parts []disk.PartitionStat) {
	disks := make([]DiskStat, 0, len(parts))
	for _, part := range parts {
		du, err := c.probes.usage(part.Mountpoint)
		if err != nil || du == nil {
			if err != nil {
				log.Printf("Collector: disk usage read failed for %s: %v", part.Mountpoint, err)
			}
			continue
		}
		disks = append(disks, DiskStat{
			Name:       part.Device,
			Total:      du.Total,
			Available:  du.Free,
			MountPoint: part.Mountpoint,
		})
	}
	c.disks = disks
}

func (c *Collector) refreshSystem() {
	if avg, err := c.probes.loadAvg(); err == nil && avg != nil {
		c.load = LoadAverage{One: avg.Load1, Five: avg.Load5, Fifteen: avg.Load15}
	} else if err != nil {
		log.Printf("Collector: load average read failed: %v", err)
	}
	if up, err := c.probes.uptime(); err == nil {
		c.uptime = up
	} else {
		log.Printf("Collector: uptime read failed: %v", err)
	}
}

// CPUUsage returns the aggregate CPU utilisation in percent (0-100).
func (c *Collector) CPUUsage() float64 { return c.cpuUsage }

// CPUCount returns the number of logical CPUs, never less than 1.
func (c *Collector) CPUCount() int { return c.cpuCount }

// LoadAverage returns the 1, 5 and 15 minute load averages.
func (c *Collector) LoadAverage() LoadAverage { return c.load }

// MemoryUsage returns used and total physical memory in bytes.
func (c *Collector) MemoryUsage() (used, total uint64) { return c.memUsed, c.memTotal }

// SwapUsage returns used and total swap in bytes. Both are zero on hosts
// without swap.
func (c *Collector) SwapUsage() (used, total uint64) { return c.swapUsed, c.swapTotal }

// NetworkStats returns per-interface cumulative traffic counters.
func (c *Collector) NetworkStats() []NetStat {
	out := make([]NetStat, len(c.nets))
	copy(out, c.nets)
	return out
}

// DiskStats returns one entry per partition whose usage was readable on
// the last Refresh.
func (c *Collector) DiskStats() []DiskStat {
	out := make([]DiskStat, len(c.disks))
	copy(out, c.disks)
	return out
}

// Uptime returns the host uptime in seconds.
func (c *Collector) Uptime() uint64 { return c.uptime }

// TopProcesses returns up to n processes ordered by descending CPU usage.
// NaN readings sort below every number so a bad sample cannot float to the
// top. n of zero or less yields an empty slice.
func (c *Collector) TopProcesses(n int) []ProcessStat {
	if n <= 0 {
		return []ProcessStat{}
	}
	ranked := make([]ProcessStat, len(c.processes))
	copy(ranked, c.processes)
	sort.Slice(ranked, func(i, j int) bool {
		return cpuRanksAbove(ranked[i].CPUUsage, ranked[j].CPUUsage)
	})
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// cpuRanksAbove orders by descending CPU usage with NaN below every
// number.
func cpuRanksAbove(a, b float64) bool {
	switch {
	case math.IsNaN(a):
		return false
	case math.IsNaN(b):
		return true
	default:
		return a > b
	}
}

// processSampler walks the OS process table. It keeps the gopsutil handle
// for each pid alive across samples so per-process CPU percentages cover
// the interval between calls instead of the process lifetime.
type processSampler struct {
	handles map[int32]*process.Process
}

func newProcessSampler() *processSampler {
	return &processSampler{handles: make(map[int32]*process.Process)}
}

func (s *processSampler) sample() ([]ProcessStat, error) {
	list, err := process.Processes()
	if err != nil {
		return nil, err
	}
	next := make(map[int32]*process.Process, len(list))
	stats := make([]ProcessStat, 0, len(list))
	for _, candidate := range list {
		handle, ok := s.handles[candidate.Pid]
		if !ok {
			handle = candidate
		}
		next[candidate.Pid] = handle
		name, err := handle.Name()
		if err != nil {
			continue // exited between listing and inspection
		}
		cpuPct, err := handle.Percent(0)
		if err != nil {
			continue
		}
		var rss uint64
		if info, err := handle.MemoryInfo(); err == nil && info != nil {
			rss = info.RSS
		}
		stats = append(stats, ProcessStat{
			Name:     name,
			PID:      candidate.Pid,
			CPUUsage: cpuPct,
			Memory:   rss,
		})
	}
	s.handles = next
	return stats, nil
}
