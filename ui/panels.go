package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"hostmon/collector"
	"hostmon/strutil"
)

// Pane colors. The focused section swaps to the focus color so the
// active border is visible while cycling with Tab.
var (
	uiBorderColor = tcell.ColorGray
	uiTitleColor  = tcell.ColorAqua
	uiFocusColor  = tcell.ColorYellow
)

const (
	accentTag   = "[cyan]"
	accentReset = "[-]"

	gaugeWidth     = 16
	listGaugeWidth = 10

	mountLabelWidth = 10
	ifaceLabelWidth = 10
	procNameWidth   = 24
)

func accentText(text string) string {
	if text == "" {
		return ""
	}
	return accentTag + text + accentReset
}

// pane is one titled section of the report, shared by the plain and the
// ANSI renderers. Line text uses tview markup tags; the consumers color
// or strip them as appropriate.
type pane struct {
	title string
	lines []string
}

// buildPanes assembles the full report for the given snapshot. The
// process section relies on the snapshot already carrying only the
// top-N entries.
func buildPanes(snap collector.Snapshot, opts Options) []pane {
	processes := append([]string{processHeader()}, processLines(snap.Processes, 0, len(snap.Processes))...)
	return []pane{
		{title: "CPU", lines: cpuLines(snap)},
		{title: "Memory", lines: memoryLines(snap)},
		{title: "Swap", lines: swapLines(snap)},
		{title: "Disks", lines: diskLines(snap, opts.MaxDisks)},
		{title: "Network", lines: networkLines(snap, opts.MaxInterfaces)},
		{title: "Processes", lines: processes},
		{title: "System", lines: []string{uptimeLine(snap)}},
	}
}

func headerLine(snap collector.Snapshot, interval time.Duration) string {
	at := time.Unix(snap.Timestamp, 0).Format("15:04:05")
	return fmt.Sprintf("System Monitor  %s  sampling every %s", at, interval)
}

func cpuLines(snap collector.Snapshot) []string {
	usage := snap.CPU.Usage
	avg := snap.CPU.LoadAverage
	return []string{
		fmt.Sprintf("%s %5.1f%%", gaugeBar(usage, gaugeWidth, cpuGaugeColor(usage)), usage),
		fmt.Sprintf("Cores: %d  Load: %.2f %.2f %.2f", snap.CPU.Count, avg.One, avg.Five, avg.Fifteen),
	}
}

func memoryLines(snap collector.Snapshot) []string {
	pct := collector.Percentage(snap.Memory.Used, snap.Memory.Total)
	return []string{
		fmt.Sprintf("%s %5.1f%%", gaugeBar(pct, gaugeWidth, "blue"), pct),
		fmt.Sprintf("Used: %.1fG / %.1fG", collector.BytesToGB(snap.Memory.Used), collector.BytesToGB(snap.Memory.Total)),
	}
}

func swapLines(snap collector.Snapshot) []string {
	pct := collector.Percentage(snap.Memory.UsedSwap, snap.Memory.TotalSwap)
	return []string{
		fmt.Sprintf("%s %5.1f%%", gaugeBar(pct, gaugeWidth, "magenta"), pct),
		fmt.Sprintf("Used: %.1fG / %.1fG", collector.BytesToGB(snap.Memory.UsedSwap), collector.BytesToGB(snap.Memory.TotalSwap)),
	}
}

func diskLines(snap collector.Snapshot, max int) []string {
	if len(snap.Disks) == 0 {
		return []string{"[gray]no disks detected[-]"}
	}
	limit := len(snap.Disks)
	if max > 0 && limit > max {
		limit = max
	}
	lines := make([]string, 0, limit)
	for _, d := range snap.Disks[:limit] {
		used := uint64(0)
		if d.Total > d.Available {
			used = d.Total - d.Available
		}
		pct := collector.Percentage(used, d.Total)
		lines = append(lines, fmt.Sprintf("%-*s %s %4.0f%%  %6.1fG free",
			mountLabelWidth, strutil.ShortenMountPoint(d.MountPoint, mountLabelWidth),
			gaugeBar(pct, listGaugeWidth, diskGaugeColor(pct)), pct,
			collector.BytesToGB(d.Available)))
	}
	return lines
}

func networkLines(snap collector.Snapshot, max int) []string {
	if len(snap.Network) == 0 {
		return []string{"[gray]no interfaces detected[-]"}
	}
	limit := len(snap.Network)
	if max > 0 && limit > max {
		limit = max
	}
	lines := make([]string, 0, limit)
	for _, nic := range snap.Network[:limit] {
		lines = append(lines, fmt.Sprintf("%-*s [cyan]↓[-]%9.1fM  [magenta]↑[-]%9.1fM",
			ifaceLabelWidth, strutil.ShortenInterface(nic.Interface, ifaceLabelWidth),
			collector.BytesToMB(nic.Received), collector.BytesToMB(nic.Transmitted)))
	}
	return lines
}

func processHeader() string {
	return fmt.Sprintf("[yellow]%7s %6s %9s  %s[-]", "PID", "CPU%", "MEM", "NAME")
}

// processLines renders the ranked process table. scroll skips leading
// rows and max bounds the output; max of zero or less means all rows.
func processLines(procs []collector.ProcessStat, scroll, max int) []string {
	if scroll < 0 {
		scroll = 0
	}
	if scroll >= len(procs) {
		return nil
	}
	window := procs[scroll:]
	if max > 0 && len(window) > max {
		window = window[:max]
	}
	lines := make([]string, 0, len(window))
	for _, p := range window {
		lines = append(lines, fmt.Sprintf("%7d %5.1f%% %8.1fM  %s",
			p.PID, p.CPUUsage, collector.BytesToMB(p.Memory),
			strutil.ShortenName(p.Name, procNameWidth)))
	}
	return lines
}

func uptimeLine(snap collector.Snapshot) string {
	hours, minutes := collector.UptimeParts(snap.System.Uptime)
	return fmt.Sprintf("Uptime: %dh %dm", hours, minutes)
}

func statusLine(paused bool) string {
	if paused {
		return "[yellow]PAUSED[-]  press SPACE to resume"
	}
	return accentText("Q") + ":quit  " + accentText("SPACE") + ":pause  " +
		accentText("TAB") + ":section  " + accentText("R") + ":refresh  " +
		accentText("↑↓") + ":scroll"
}

// gaugeBar renders a fixed-width usage bar in markup form. pct is
// clamped to [0,100]; NaN renders as empty.
func gaugeBar(pct float64, width int, color string) string {
	if math.IsNaN(pct) || pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int(pct / 100 * float64(width))
	if filled > width {
		filled = width
	}
	bar := "[" + color + "]" + strings.Repeat("█", filled) + accentReset
	if empty := width - filled; empty > 0 {
		bar += "[gray]" + strings.Repeat("░", empty) + accentReset
	}
	return bar
}

func cpuGaugeColor(pct float64) string {
	switch {
	case pct >= 85:
		return "red"
	case pct >= 60:
		return "yellow"
	default:
		return "green"
	}
}

func diskGaugeColor(pct float64) string {
	if pct >= 90 {
		return "red"
	}
	return "green"
}

// newBoxedTextView builds the standard bordered pane used by the
// dashboard sections.
func newBoxedTextView(title string) *tview.TextView {
	tv := tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	tv.SetBorder(true)
	if title != "" {
		tv.SetTitle(" " + title + " ").SetTitleAlign(tview.AlignLeft)
	}
	tv.SetBorderColor(uiBorderColor)
	tv.SetTitleColor(uiTitleColor)
	return tv
}

func applyFocusStyle(tv *tview.TextView, focused bool) {
	if tv == nil {
		return
	}
	if focused {
		tv.SetBorderColor(uiFocusColor)
		tv.SetTitleColor(uiFocusColor)
		return
	}
	tv.SetBorderColor(uiBorderColor)
	tv.SetTitleColor(uiTitleColor)
}

// focusable abstracts a focusable primitive with optional scroll handling.
type focusable interface {
	Primitive() tview.Primitive
	SetFocused(focused bool)
	HandleScroll(event *tcell.EventKey) bool
}

// focusBox wraps a boxed TextView with focus styling metadata.
type focusBox struct {
	tv         *tview.TextView
	scrollable bool
}

func newFocusBox(tv *tview.TextView, scrollable bool) *focusBox {
	return &focusBox{tv: tv, scrollable: scrollable}
}

func (b *focusBox) Primitive() tview.Primitive {
	if b == nil {
		return nil
	}
	return b.tv
}

func (b *focusBox) SetFocused(focused bool) {
	if b == nil {
		return
	}
	applyFocusStyle(b.tv, focused)
}

func (b *focusBox) HandleScroll(event *tcell.EventKey) bool {
	if b == nil || !b.scrollable {
		return false
	}
	return scrollTextView(b.tv, event)
}

// focusGroup manages focus cycling and scroll handling for the dashboard
// sections.
type focusGroup struct {
	items []focusable
	index int
}

func newFocusGroup(items ...focusable) focusGroup {
	filtered := make([]focusable, 0, len(items))
	for _, item := range items {
		if item == nil || item.Primitive() == nil {
			continue
		}
		filtered = append(filtered, item)
	}
	return focusGroup{items: filtered}
}

func (g *focusGroup) set(app *tview.Application, idx int) {
	if g == nil || len(g.items) == 0 {
		return
	}
	if idx < 0 || idx >= len(g.items) {
		idx = 0
	}
	g.index = idx
	for i, item := range g.items {
		item.SetFocused(i == idx)
	}
	if app != nil {
		app.SetFocus(g.items[idx].Primitive())
	}
}

func (g *focusGroup) cycle(app *tview.Application, delta int) {
	if g == nil || len(g.items) == 0 {
		return
	}
	next := g.index + delta
	if next < 0 {
		next = len(g.items) - 1
	} else if next >= len(g.items) {
		next = 0
	}
	g.set(app, next)
}

func (g *focusGroup) handleScroll(event *tcell.EventKey) bool {
	if g == nil || event == nil {
		return false
	}
	if g.index < 0 || g.index >= len(g.items) {
		return false
	}
	return g.items[g.index].HandleScroll(event)
}

func scrollTextView(target *tview.TextView, event *tcell.EventKey) bool {
	if target == nil || event == nil {
		return false
	}
	row, col := target.GetScrollOffset()
	page := 10
	_, _, _, height := target.GetInnerRect()
	if height > 0 {
		page = height - 1
		if page < 1 {
			page = 1
		}
	}
	switch event.Key() {
	case tcell.KeyUp:
		if row > 0 {
			row--
		}
	case tcell.KeyDown:
		row++
	case tcell.KeyPgUp:
		row -= page
		if row < 0 {
			row = 0
		}
	case tcell.KeyPgDn:
		row += page
	case tcell.KeyHome:
		row = 0
	case tcell.KeyEnd:
		row = 1 << 30
	default:
		return false
	}
	target.ScrollTo(row, col)
	return true
}
