// Program hostmon samples host CPU, memory, swap, disk, network and
// process telemetry on a fixed interval and renders it to one of several
// front-ends: a full-screen tview dashboard, an in-place ANSI console, a
// plain text report, or nothing at all with a JSON snapshot stream for
// machine consumers.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"hostmon/collector"
	"hostmon/config"
	"hostmon/ui"

	"golang.org/x/term"
)

const (
	defaultConfigPath = "hostmon.yaml"
	envConfigPath     = "HOSTMON_CONFIG"
)

// Version will be set at build time
var Version = "dev"

// Purpose: Report whether stdout is a TTY for UI gating.
// Key aspects: Uses term.IsTerminal on stdout fd.
// Upstream: main UI selection.
// Downstream: term.IsTerminal.
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// cliOverrides carries flag values that take precedence over the file.
type cliOverrides struct {
	interval int
	top      int
	mode     string
	stream   string
}

// Purpose: Load configuration from flag/env/default locations.
// Key aspects: An explicit -config path must exist; the env and default
// candidates may be missing, in which case built-in defaults apply.
// Upstream: main startup.
// Downstream: config.Load and errors.Is on os.ErrNotExist.
func loadMonitorConfig(flagPath string) (*config.Config, string, error) {
	if path := strings.TrimSpace(flagPath); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, path, err
		}
		return cfg, path, nil
	}

	candidates := make([]string, 0, 2)
	if envPath := strings.TrimSpace(os.Getenv(envConfigPath)); envPath != "" {
		candidates = append(candidates, envPath)
	}
	candidates = append(candidates, defaultConfigPath)

	for _, path := range candidates {
		cfg, err := config.Load(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, path, err
		}
		return cfg, path, nil
	}
	return config.Default(), "defaults", nil
}

func applyOverrides(cfg *config.Config, o cliOverrides) {
	if o.interval > 0 {
		cfg.Monitor.IntervalSeconds = o.interval
	}
	if o.top >= 0 {
		cfg.Monitor.TopProcesses = o.top
	}
	if mode := strings.TrimSpace(o.mode); mode != "" {
		cfg.UI.Mode = mode
	}
	if stream := strings.TrimSpace(o.stream); stream != "" {
		cfg.Stream.Enabled = true
		cfg.Stream.Path = stream
	}
}

// Purpose: Resolve the effective UI mode for this terminal.
// Key aspects: auto picks tview on a TTY and plain otherwise; explicit
// interactive modes downgrade to headless when stdout is not a terminal.
// Upstream: main UI selection.
// Downstream: None.
func resolveUIMode(mode string, tty bool) string {
	switch mode {
	case config.UIModeAuto:
		if tty {
			return config.UIModeTview
		}
		return config.UIModePlain
	case config.UIModeTview, config.UIModeANSI:
		if !tty {
			return config.UIModeHeadless
		}
	}
	return mode
}

// monitorLoop drives sampling: one immediate pass, then one per tick.
// Keyboard events from the dashboard pause, resume, force an extra pass
// or quit.
type monitorLoop struct {
	collector *collector.Collector
	surface   ui.Surface
	stream    *snapshotStream
	events    <-chan ui.Event
	interval  time.Duration
	topN      int
	paused    bool
}

func (l *monitorLoop) run(ctx context.Context, cancel context.CancelFunc) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.cycle()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if l.paused {
				continue
			}
			l.cycle()
		case ev := <-l.events:
			switch ev {
			case ui.EventQuit:
				cancel()
				return
			case ui.EventTogglePause:
				l.paused = !l.paused
				l.indicatePaused(l.paused)
				if l.paused {
					log.Printf("Sampling paused")
				} else {
					log.Printf("Sampling resumed")
					l.cycle()
				}
			case ui.EventForceRefresh:
				l.cycle()
			}
		}
	}
}

// cycle runs one sampling pass and distributes the resulting snapshot.
func (l *monitorLoop) cycle() {
	start := time.Now()
	l.collector.Refresh()
	if obs, ok := l.surface.(ui.RefreshObserver); ok {
		obs.ObserveRefresh(time.Since(start))
	}

	snap := collector.TakeSnapshot(l.collector, l.topN)
	if l.surface != nil {
		l.surface.Render(snap)
	}
	if l.stream != nil {
		if err := l.stream.Emit(snap); err != nil {
			log.Printf("Stream: %v", err)
		}
	}
}

func (l *monitorLoop) indicatePaused(paused bool) {
	if p, ok := l.surface.(ui.PauseIndicator); ok {
		p.SetPaused(paused)
	}
}

// Purpose: Program entrypoint; wires configuration, collector, UI and
// stream, then runs the sampling loop until a signal or quit key.
// Key aspects: All fatal exits happen before the terminal is taken over.
// Upstream: OS process start.
// Downstream: Startup helpers, the sampling loop and graceful shutdown.
func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	interval := flag.Int("interval", 0, "sampling interval in seconds (overrides config)")
	top := flag.Int("top", -1, "number of processes to keep by CPU usage (overrides config)")
	mode := flag.String("mode", "", "ui mode: auto, plain, ansi, tview or headless (overrides config)")
	stream := flag.String("stream", "", "append JSON snapshots to this path, - for stdout (overrides config)")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("hostmon %s\n", Version)
		return
	}

	cfg, configSource, err := loadMonitorConfig(*configPath)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	applyOverrides(cfg, cliOverrides{
		interval: *interval,
		top:      *top,
		mode:     *mode,
		stream:   *stream,
	})
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// A stream on stdout owns that descriptor outright; human output
	// moves to stderr so the record stream stays parseable.
	consoleOut := io.Writer(os.Stdout)
	streamOwnsStdout := cfg.Stream.Enabled && cfg.Stream.Path == "-"
	if streamOwnsStdout {
		consoleOut = os.Stderr
	}

	fanout, err := setupLogging(cfg.Logging, consoleOut)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging unavailable: %v\n", err)
	}
	// The fanout stamps every line itself; drop the default prefixes.
	log.SetFlags(0)
	log.SetOutput(fanout)
	defer fanout.Close()

	log.Printf("hostmon v%s starting...", Version)
	log.Printf("Loaded configuration from %s", configSource)

	mon, err := collector.New()
	if err != nil {
		log.Fatalf("Error initializing collector: %v", err)
	}

	var snapStream *snapshotStream
	if cfg.Stream.Enabled {
		snapStream, err = newSnapshotStream(cfg.Stream.Path)
		if err != nil {
			log.Fatalf("Error opening snapshot stream: %v", err)
		}
		defer snapStream.Close()
		log.Printf("Stream: writing JSON snapshots to %s", snapStream.Target())
	}

	sampleInterval := time.Duration(cfg.Monitor.IntervalSeconds) * time.Second
	opts := ui.Options{
		Color:         cfg.UI.Color,
		ClearScreen:   cfg.UI.ClearScreen,
		MaxDisks:      cfg.UI.MaxDisks,
		MaxInterfaces: cfg.UI.MaxInterfaces,
		TargetFPS:     cfg.UI.TargetFPS,
		LogLines:      cfg.UI.LogLines,
		Interval:      sampleInterval,
	}

	uiMode := resolveUIMode(cfg.UI.Mode, isStdoutTTY())
	if uiMode != cfg.UI.Mode && cfg.UI.Mode != config.UIModeAuto {
		log.Printf("UI disabled (%s requires an interactive console)", cfg.UI.Mode)
	}

	var surface ui.Surface
	var dash *ui.Dashboard
	switch uiMode {
	case config.UIModeHeadless:
		log.Printf("UI disabled (mode=headless)")
	case config.UIModeTview:
		dash = ui.NewDashboard(opts)
		surface = dash
	case config.UIModeANSI:
		surface = ui.NewANSIConsole(opts, os.Stdout)
	case config.UIModePlain:
		surface = ui.NewPlainConsole(opts, os.Stdout)
	}

	if surface != nil {
		surface.WaitReady()
		if w := surface.SystemWriter(); w != nil {
			// The pane stamps its own timestamps.
			fanout.SetConsoleSink(w, false)
		}
	} else if !streamOwnsStdout {
		cfg.Print()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var events <-chan ui.Event
	if dash != nil {
		events = dash.Events()
	}

	log.Printf("Sampling every %s, keeping top %d processes", sampleInterval, cfg.Monitor.TopProcesses)
	if dash != nil {
		log.Println("Keys: q quit, space pause, r refresh, tab section, arrows scroll")
	} else {
		log.Println("Monitor is running. Press Ctrl+C to stop.")
	}
	log.Println("---")

	loop := &monitorLoop{
		collector: mon,
		surface:   surface,
		stream:    snapStream,
		events:    events,
		interval:  sampleInterval,
		topN:      cfg.Monitor.TopProcesses,
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		loop.run(ctx, cancel)
	}()

	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
		cancel()
		<-done
	case <-done:
	}

	if surface != nil {
		surface.Stop()
		// Put the closing lines back on the terminal.
		fanout.SetConsoleSink(consoleOut, true)
	}
	log.Println("Shutting down gracefully...")
}
