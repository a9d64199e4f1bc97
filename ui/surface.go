// Package ui contains the presentation front-ends for the monitor: a
// plain console report, an ANSI escape-code renderer, and a full-screen
// tview dashboard. All of them consume collector.Snapshot values and
// never touch the collector itself.
package ui

import (
	"io"
	"time"

	"hostmon/collector"
)

// Surface abstracts a presentation front-end so the refresh loop stays
// renderer-agnostic. Render is called from the driving loop on every
// sample; implementations handle their own synchronization.
type Surface interface {
	WaitReady()
	Stop()
	Render(snap collector.Snapshot)
	SystemWriter() io.Writer
}

// Event is a control action reported by an interactive surface.
type Event int

const (
	// EventQuit asks the driving loop to shut the program down.
	EventQuit Event = iota
	// EventTogglePause suspends or resumes the sampling cadence.
	EventTogglePause
	// EventForceRefresh requests an immediate out-of-cadence sample.
	EventForceRefresh
)

// EventSource is implemented by surfaces that accept keyboard control.
type EventSource interface {
	Events() <-chan Event
}

// PauseIndicator is implemented by surfaces that can display the paused
// state owned by the driving loop.
type PauseIndicator interface {
	SetPaused(paused bool)
}

// RefreshObserver is implemented by surfaces that display sampling
// latency figures.
type RefreshObserver interface {
	ObserveRefresh(d time.Duration)
}

// Options carries the renderer settings shared by all surfaces. The
// driving loop fills it from configuration so this package does not
// depend on the config layer.
type Options struct {
	Color         bool
	ClearScreen   bool
	MaxDisks      int
	MaxInterfaces int
	TargetFPS     int
	LogLines      int
	Interval      time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxDisks <= 0 {
		o.MaxDisks = 4
	}
	if o.MaxInterfaces <= 0 {
		o.MaxInterfaces = 4
	}
	if o.TargetFPS <= 0 {
		o.TargetFPS = 30
	}
	if o.LogLines <= 0 {
		o.LogLines = 5
	}
	if o.Interval <= 0 {
		o.Interval = time.Second
	}
	return o
}
