package ui

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"hostmon/collector"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// logScrollback scales the log pane height into the number of retained
// lines, so focused scrolling has some history to move through.
const logScrollback = 4

// Dashboard is the full-screen tview surface. It owns the terminal,
// batches pane updates through the frame scheduler and reports keyboard
// intents on its event channel.
type Dashboard struct {
	app       *tview.Application
	scheduler *frameScheduler
	metrics   *Metrics

	ready chan struct{}
	opts  Options

	header    *tview.TextView
	cpuView   *tview.TextView
	memView   *tview.TextView
	swapView  *tview.TextView
	diskView  *tview.TextView
	netView   *tview.TextView
	procView  *tview.TextView
	logView   *tview.TextView
	statusBar *tview.TextView

	sections focusGroup

	snapMu  sync.RWMutex
	snap    collector.Snapshot
	hasSnap bool

	logMu    sync.Mutex
	logLines []string

	paused  atomic.Bool
	samples atomic.Uint64
	events  chan Event

	stopOnce sync.Once
}

// NewDashboard constructs the tview surface and starts its draw loop.
func NewDashboard(opts Options) *Dashboard {
	opts = opts.withDefaults()

	app := tview.NewApplication().EnableMouse(false)
	ready := make(chan struct{})
	var once sync.Once
	app.SetBeforeDrawFunc(func(screen tcell.Screen) bool {
		once.Do(func() { close(ready) })
		return false
	})

	d := &Dashboard{
		app:     app,
		metrics: NewMetrics(),
		ready:   ready,
		opts:    opts,
		events:  make(chan Event, 8),
	}

	d.header = tview.NewTextView().SetDynamicColors(true)
	d.cpuView = newBoxedTextView("CPU")
	d.memView = newBoxedTextView("Memory")
	d.swapView = newBoxedTextView("Swap")
	d.diskView = newBoxedTextView("Disks")
	d.netView = newBoxedTextView("Network")
	d.procView = newBoxedTextView("Processes")
	d.procView.SetScrollable(true)
	d.logView = newBoxedTextView("Log")
	d.logView.SetScrollable(true)
	d.statusBar = tview.NewTextView().SetDynamicColors(true)
	d.statusBar.SetText(statusLine(false))
	d.seedPlaceholders()

	d.sections = newFocusGroup(
		newFocusBox(d.cpuView, false),
		newFocusBox(d.memView, false),
		newFocusBox(d.swapView, false),
		newFocusBox(d.diskView, true),
		newFocusBox(d.netView, true),
		newFocusBox(d.procView, true),
		newFocusBox(d.logView, true),
	)

	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(d.header, 1, 0, false).
		AddItem(d.cpuView, 4, 0, false).
		AddItem(d.memView, 4, 0, false).
		AddItem(d.swapView, 4, 0, false).
		AddItem(d.diskView, opts.MaxDisks+2, 0, false).
		AddItem(d.netView, opts.MaxInterfaces+2, 0, false).
		AddItem(d.procView, 0, 1, false).
		AddItem(d.logView, opts.LogLines+2, 0, false).
		AddItem(d.statusBar, 1, 0, false)
	app.SetRoot(root, true)
	d.sections.set(app, 0)

	d.scheduler = newFrameScheduler(app, opts.TargetFPS, 100*time.Millisecond, d.metrics.ObserveDraw)
	d.scheduler.Start()

	app.SetInputCapture(d.handleKey)

	go func() {
		if err := app.Run(); err != nil {
			log.Printf("UI: tview error: %v", err)
		}
	}()

	return d
}

func (d *Dashboard) seedPlaceholders() {
	placeholder := "[gray]waiting for first sample[-]"
	for _, tv := range []*tview.TextView{d.cpuView, d.memView, d.swapView, d.diskView, d.netView, d.procView} {
		tv.SetText(placeholder)
	}
}

func (d *Dashboard) handleKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		d.send(EventQuit)
		return nil
	case tcell.KeyTab:
		d.sections.cycle(d.app, 1)
		return nil
	case tcell.KeyBacktab:
		d.sections.cycle(d.app, -1)
		return nil
	}

	switch event.Rune() {
	case 'q', 'Q':
		d.send(EventQuit)
		return nil
	case ' ':
		d.send(EventTogglePause)
		return nil
	case 'r', 'R':
		d.metrics.ForcedRefresh()
		d.send(EventForceRefresh)
		return nil
	}

	if d.sections.handleScroll(event) {
		return nil
	}
	return event
}

// send drops the event when the channel is full rather than block the
// tview input goroutine.
func (d *Dashboard) send(ev Event) {
	select {
	case d.events <- ev:
	default:
	}
}

// Events reports keyboard intents. The channel is never closed.
func (d *Dashboard) Events() <-chan Event {
	return d.events
}

func (d *Dashboard) WaitReady() {
	if d == nil || d.ready == nil {
		return
	}
	<-d.ready
}

func (d *Dashboard) Stop() {
	if d == nil {
		return
	}
	d.stopOnce.Do(func() {
		if d.scheduler != nil {
			d.scheduler.Stop()
		}
		if d.app != nil {
			d.app.Stop()
		}
	})
}

func (d *Dashboard) Render(snap collector.Snapshot) {
	if d == nil {
		return
	}
	d.snapMu.Lock()
	d.snap = snap
	d.hasSnap = true
	d.snapMu.Unlock()
	d.samples.Add(1)
	d.scheduler.Schedule("snapshot", d.redrawSnapshot)
	d.scheduleStatus()
}

func (d *Dashboard) redrawSnapshot() {
	d.snapMu.RLock()
	snap := d.snap
	ok := d.hasSnap
	d.snapMu.RUnlock()
	if !ok {
		return
	}

	d.header.SetText(headerLine(snap, d.opts.Interval))
	d.cpuView.SetText(strings.Join(cpuLines(snap), "\n"))
	d.memView.SetText(strings.Join(memoryLines(snap), "\n"))
	d.swapView.SetText(strings.Join(swapLines(snap), "\n"))
	d.diskView.SetText(strings.Join(diskLines(snap, 0), "\n"))
	d.netView.SetText(strings.Join(networkLines(snap, 0), "\n"))

	procs := append([]string{processHeader()}, processLines(snap.Processes, 0, 0)...)
	d.procView.SetText(strings.Join(procs, "\n"))
	d.procView.SetTitle(fmt.Sprintf(" Processes (%d) ", len(snap.Processes)))
}

// SetPaused updates the status bar; the sampling loop owns the actual
// pause state.
func (d *Dashboard) SetPaused(paused bool) {
	if d == nil {
		return
	}
	d.paused.Store(paused)
	d.scheduleStatus()
}

// ObserveRefresh records how long a sampling pass took.
func (d *Dashboard) ObserveRefresh(took time.Duration) {
	if d == nil {
		return
	}
	d.metrics.ObserveRefresh(took)
	d.scheduleStatus()
}

func (d *Dashboard) scheduleStatus() {
	d.scheduler.Schedule("status", func() {
		d.statusBar.SetText(d.statusText())
	})
}

func (d *Dashboard) statusText() string {
	text := statusLine(d.paused.Load())
	if n := d.samples.Load(); n > 0 {
		text += fmt.Sprintf("   [gray]samples %s[-]", humanize.Comma(int64(n)))
	}
	if lat := d.metrics.RefreshSnapshot(); lat.N > 0 {
		text += fmt.Sprintf(" [gray]sample p99 %s[-]", lat.P99.Round(time.Millisecond))
	}
	return text
}

// SystemWriter routes standard logger output into the log pane.
func (d *Dashboard) SystemWriter() io.Writer {
	if d == nil {
		return nil
	}
	return &lineWriter{append: d.appendLog}
}

func (d *Dashboard) appendLog(line string) {
	stamped := time.Now().Format("15:04:05") + " " + line
	d.logMu.Lock()
	d.logLines = append(d.logLines, stamped)
	if max := d.opts.LogLines * logScrollback; len(d.logLines) > max {
		d.logLines = d.logLines[len(d.logLines)-max:]
	}
	text := strings.Join(d.logLines, "\n")
	d.logMu.Unlock()

	d.scheduler.Schedule("log", func() {
		d.logView.SetText(text)
		d.logView.ScrollToEnd()
	})
}
