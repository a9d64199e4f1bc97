package ui

import (
	"bytes"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"hostmon/collector"
)

const ansiReset = "\x1b[0m"

// ansiColorReplacer rewrites the markup tags shared with the tview
// dashboard into ANSI escape codes.
var ansiColorReplacer = strings.NewReplacer(
	"[red]", "\x1b[31m",
	"[green]", "\x1b[32m",
	"[yellow]", "\x1b[33m",
	"[blue]", "\x1b[34m",
	"[magenta]", "\x1b[35m",
	"[cyan]", "\x1b[36m",
	"[white]", "\x1b[37m",
	"[gray]", "\x1b[90m",
	"[-]", ansiReset,
)

// ansiStripReplacer drops the markup tags for monochrome output.
var ansiStripReplacer = strings.NewReplacer(
	"[red]", "",
	"[green]", "",
	"[yellow]", "",
	"[blue]", "",
	"[magenta]", "",
	"[cyan]", "",
	"[white]", "",
	"[gray]", "",
	"[-]", "",
)

func stripMarkup(line string) string {
	return ansiStripReplacer.Replace(line)
}

func applyANSIMarkup(line string, color bool) string {
	if !color {
		return stripMarkup(line)
	}
	out := ansiColorReplacer.Replace(line)
	if out != line && !strings.HasSuffix(out, ansiReset) {
		out += ansiReset
	}
	return out
}

// ringPane keeps the last n lines for a scrolling pane region.
type ringPane struct {
	lines []string
	idx   int
	count int
}

func newRingPane(n int) ringPane {
	if n < 1 {
		n = 1
	}
	return ringPane{lines: make([]string, n)}
}

func (r *ringPane) append(line string) {
	r.lines[r.idx] = line
	r.idx = (r.idx + 1) % len(r.lines)
	if r.count < len(r.lines) {
		r.count++
	}
}

// snapshot copies the retained lines oldest-first into dst.
func (r *ringPane) snapshot(dst []string) []string {
	dst = dst[:0]
	start := r.idx - r.count
	if start < 0 {
		start += len(r.lines)
	}
	for i := 0; i < r.count; i++ {
		dst = append(dst, r.lines[(start+i)%len(r.lines)])
	}
	return dst
}

// ansiConsole renders each sample in place with ANSI escape codes. It has
// no input handling and no refresh clock of its own; it repaints whenever
// a new snapshot or log line arrives.
type ansiConsole struct {
	opts Options
	out  io.Writer

	mu        sync.Mutex
	snap      collector.Snapshot
	hasSnap   bool
	logRing   ringPane
	logBuf    []string
	cleared   bool
	renderBuf bytes.Buffer

	stopOnce sync.Once
}

// NewANSIConsole returns the escape-code surface writing to out, or to
// stdout when out is nil.
func NewANSIConsole(opts Options, out io.Writer) Surface {
	if out == nil {
		out = os.Stdout
	}
	c := &ansiConsole{opts: opts.withDefaults(), out: out}
	c.logRing = newRingPane(c.opts.LogLines)
	return c
}

func (c *ansiConsole) WaitReady() {}

func (c *ansiConsole) Stop() {
	if c == nil {
		return
	}
	c.stopOnce.Do(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.opts.Color {
			_, _ = io.WriteString(c.out, ansiReset)
		}
		_, _ = io.WriteString(c.out, "\n")
	})
}

func (c *ansiConsole) SystemWriter() io.Writer {
	if c == nil {
		return nil
	}
	return &lineWriter{append: c.appendLog}
}

func (c *ansiConsole) appendLog(line string) {
	stamped := time.Now().Format("15:04:05") + " " + line
	c.mu.Lock()
	c.logRing.append(applyANSIMarkup(stamped, c.opts.Color))
	c.mu.Unlock()
	c.render()
}

func (c *ansiConsole) Render(snap collector.Snapshot) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.snap = snap
	c.hasSnap = true
	c.mu.Unlock()
	c.render()
}

func (c *ansiConsole) render() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasSnap {
		return
	}

	buf := &c.renderBuf
	buf.Reset()
	emit := func(line string) {
		buf.WriteString(line)
		if c.opts.ClearScreen {
			// Erase to end of line so shorter lines do not leave stale tails.
			buf.WriteString("\x1b[K")
		}
		buf.WriteByte('\n')
	}

	if c.opts.ClearScreen {
		if !c.cleared {
			buf.WriteString("\x1b[2J")
			c.cleared = true
		}
		buf.WriteString("\x1b[H")
	}

	emit(applyANSIMarkup(headerLine(c.snap, c.opts.Interval), c.opts.Color))
	for _, p := range buildPanes(c.snap, c.opts) {
		emit("")
		emit("---- " + p.title + " ----")
		for _, line := range p.lines {
			emit(applyANSIMarkup(line, c.opts.Color))
		}
	}

	c.logBuf = c.logRing.snapshot(c.logBuf)
	if len(c.logBuf) > 0 {
		emit("")
		emit("---- Log ----")
		for _, line := range c.logBuf {
			emit(line)
		}
	}

	if c.opts.ClearScreen {
		buf.WriteString("\x1b[J")
	}
	_, _ = buf.WriteTo(c.out)
}
