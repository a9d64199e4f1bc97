package ui

import (
	"bytes"
	"io"
	"os"
	"sync"

	"hostmon/collector"
)

// PlainConsole prints one full plain-text report per sample. It is the
// fallback surface for pipes and terminals without escape-code support
// and never takes over the screen.
type PlainConsole struct {
	opts Options
	out  io.Writer

	mu  sync.Mutex
	buf bytes.Buffer
}

// NewPlainConsole returns the plain-text surface writing to out, or to
// stdout when out is nil.
func NewPlainConsole(opts Options, out io.Writer) Surface {
	if out == nil {
		out = os.Stdout
	}
	return &PlainConsole{opts: opts.withDefaults(), out: out}
}

func (p *PlainConsole) WaitReady() {}

func (p *PlainConsole) Stop() {}

// SystemWriter returns nil; log output stays on its process-level sink.
func (p *PlainConsole) SystemWriter() io.Writer { return nil }

func (p *PlainConsole) Render(snap collector.Snapshot) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.buf.Reset()
	p.buf.WriteString(stripMarkup(headerLine(snap, p.opts.Interval)))
	p.buf.WriteByte('\n')
	for _, pane := range buildPanes(snap, p.opts) {
		p.buf.WriteByte('\n')
		p.buf.WriteString(pane.title)
		p.buf.WriteByte('\n')
		for _, line := range pane.lines {
			p.buf.WriteString("  ")
			p.buf.WriteString(stripMarkup(line))
			p.buf.WriteByte('\n')
		}
	}
	_, _ = p.buf.WriteTo(p.out)
}
