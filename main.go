// Program dockdash renders a live terminal dashboard for a Docker
// management API: event streams feed the container, image, stats and
// compose tables, and key bindings dispatch actions back to the API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"dockdash/action"
	"dockdash/api"
	"dockdash/clock"
	"dockdash/config"
	"dockdash/recorder"
	"dockdash/stats"
	"dockdash/stream"
	"dockdash/ui"

	"github.com/spf13/pflag"
	"golang.org/x/term"
)

const (
	defaultConfigPath = "data/config"
	envConfigPath     = "DOCKDASH_CONFIG_PATH"
	statsTick         = time.Second
)

// Version will be set at build time
var Version = "dev"

type options struct {
	configPath string
	apiURL     string
	headless   bool
	version    bool
}

// Purpose: Parse command line flags.
// Key aspects: Returns pflag.ErrHelp unchanged so main can exit cleanly.
// Upstream: main.
// Downstream: pflag.FlagSet.Parse.
func parseOptions(args []string) (options, error) {
	var opts options
	flagSet := pflag.NewFlagSet("dockdash", pflag.ContinueOnError)
	flagSet.StringVarP(&opts.configPath, "config", "c", "", "config directory (default $"+envConfigPath+" or "+defaultConfigPath+")")
	flagSet.StringVar(&opts.apiURL, "api", "", "backend base URL, overrides api.base_url")
	flagSet.BoolVar(&opts.headless, "headless", false, "log to stdout instead of drawing the dashboard")
	flagSet.BoolVarP(&opts.version, "version", "v", false, "print the version and exit")
	if err := flagSet.Parse(args); err != nil {
		return opts, err
	}
	if extra := flagSet.Args(); len(extra) > 0 {
		return opts, fmt.Errorf("unexpected argument: %s", extra[0])
	}
	return opts, nil
}

// Purpose: Report whether stdout is a TTY for UI gating.
// Key aspects: Uses term.IsTerminal on stdout fd.
// Upstream: main UI selection.
// Downstream: term.IsTerminal.
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Purpose: Load configuration from flag/env/default locations.
// Key aspects: An explicit flag must exist; env and default fall through,
// and with nothing on disk the built-in defaults apply.
// Upstream: main startup.
// Downstream: config.Load and os.IsNotExist.
func loadDashboardConfig(flagPath string) (*config.Config, string, error) {
	if path := strings.TrimSpace(flagPath); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, path, err
		}
		return cfg, cfg.LoadedFrom, nil
	}
	candidates := make([]string, 0, 2)
	if envPath := strings.TrimSpace(os.Getenv(envConfigPath)); envPath != "" {
		candidates = append(candidates, envPath)
	}
	candidates = append(candidates, defaultConfigPath)

	for _, path := range candidates {
		cfg, err := config.Load(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, path, err
		}
		return cfg, cfg.LoadedFrom, nil
	}
	cfg := config.Default()
	cfg.LoadedFrom = "built-in defaults"
	return cfg, cfg.LoadedFrom, nil
}

// Purpose: Program entrypoint; wires configuration, streams, actions, and UI.
// Key aspects: Runs until a signal arrives or the dashboard quits.
// Upstream: OS process start.
// Downstream: run.
func main() {
	opts, err := parseOptions(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
	if opts.version {
		fmt.Printf("dockdash %s\n", Version)
		return
	}
	if err := run(opts); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run(opts options) error {
	cfg, configSource, err := loadDashboardConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config %s: %w", configSource, err)
	}
	if opts.apiURL != "" {
		cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(opts.apiURL), "/")
	}
	if opts.headless {
		cfg.UI.Mode = "headless"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	fanout, logErr := setupLogging(cfg.Logging, os.Stdout)
	log.SetFlags(0)
	log.SetOutput(fanout)
	defer fanout.Close()
	if logErr != nil {
		log.Printf("Logging: file logging disabled: %v", logErr)
	}
	log.Printf("Dockdash v%s starting (config %s)", Version, configSource)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := api.NewClient(api.Options{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   time.Duration(cfg.API.RequestTimeoutSeconds) * time.Second,
		UserAgent: cfg.API.UserAgent,
	})
	if err != nil {
		return err
	}

	cmds := newCommands(ctx)
	var surface uiSurface
	switch {
	case cfg.UI.Mode != "tview":
		log.Printf("UI disabled (mode=%s)", cfg.UI.Mode)
	case !isStdoutTTY():
		log.Printf("UI disabled (tview requires an interactive console)")
	default:
		dash := ui.NewDashboard(cfg.UI, cmds.handlers())
		dash.WaitReady()
		fanout.UseConsole(dash.SystemWriter(), false)
		surface = dash
	}
	if surface == nil {
		surface = newHeadlessSurface()
		cfg.Print()
	}
	defer surface.Stop()

	tracker := stats.NewTracker()
	var rec *recorder.Recorder
	if cfg.Recorder.Enabled {
		rec, err = recorder.New(cfg.Recorder.Path, cfg.Recorder.PerStreamLimit)
		if err != nil {
			log.Printf("Recorder: disabled: %v", err)
			rec = nil
		} else {
			log.Printf("Recorder: capturing streams to %s", cfg.Recorder.Path)
		}
	}

	clk := clock.Real()
	dispatcher, err := action.NewDispatcher(action.Options{
		Backend:    client,
		Controls:   surface,
		Board:      action.NewStatusBoard(surface.SetStatuses),
		Clock:      clk,
		PullTTL:    time.Duration(cfg.Actions.PullStatusTTLSeconds) * time.Second,
		DefaultTag: cfg.Actions.DefaultTag,
		OnResult:   actionReporter(tracker, func() uiSurface { return surface }),
	})
	if err != nil {
		return err
	}
	cmds.attach(surface, dispatcher)

	logInterval := time.Duration(cfg.Streams.ErrorLogIntervalSeconds) * time.Second
	feed := newFeed(surface, tracker, rec, clk, logInterval)
	manager := stream.NewManager(stream.Options{
		HTTPClient:       client.HTTPClient(),
		URLFor:           client.StreamURL,
		UserAgent:        client.UserAgent(),
		ReconnectDelay:   time.Duration(cfg.Streams.ReconnectDelayMS) * time.Millisecond,
		MaxEventBytes:    cfg.Streams.MaxEventBytes,
		Clock:            clk,
		ErrorLogInterval: logInterval,
		OnState:          feed.onState,
	})
	for _, name := range cfg.Streams.Enabled {
		handler, err := feed.handler(name)
		if err != nil {
			log.Printf("Stream %s: skipped: %v", name, err)
			continue
		}
		if _, err := manager.Open(name, handler); err != nil {
			log.Printf("Stream %s: open failed: %v", name, err)
		}
	}
	log.Printf("Streaming from %s (%s)", cfg.API.BaseURL, strings.Join(cfg.Streams.Enabled, ", "))

	fanout.SetDayHeader(tracker.SnapshotLines)

	_, interactive := surface.(*ui.Dashboard)
	statsInterval := time.Duration(cfg.UI.StatsInterval) * time.Second
	// Purpose: Periodically emit stats to the UI or logs.
	// Key aspects: Runs on ticker interval until shutdown.
	// Upstream: main startup.
	// Downstream: runStatsLoop.
	go runStatsLoop(ctx, statsInterval, tracker, surface, fanout, interactive)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	log.Println("Dashboard is running. Press Ctrl+C to stop.")
	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
	case <-surface.Done():
		log.Printf("Dashboard closed")
	}
	log.Println("Shutting down gracefully...")

	cancel()
	manager.CloseAll()
	if rec != nil {
		if err := rec.Close(); err != nil {
			log.Printf("Recorder: close: %v", err)
		}
	}
	surface.Stop()
	// The dashboard pane is gone; send the final lines to stdout.
	fanout.UseConsole(os.Stdout, true)
	for _, line := range tracker.SnapshotLines() {
		log.Printf("Stats: %s", line)
	}
	log.Println("Dockdash stopped")
	return nil
}

// Purpose: Drive the stats display.
// Key aspects: The dashboard gets a fresh status line every tick and the
// full summary every interval; headless output logs only on the interval.
// Upstream: run.
// Downstream: uiSurface.SetStats and logFanout.WriteStats.
func runStatsLoop(ctx context.Context, interval time.Duration, tracker *stats.Tracker, surface uiSurface, fanout *logFanout, interactive bool) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(statsTick)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			full := now.Sub(last) >= interval
			if full {
				last = now
			}
			emitStats(now, full, tracker, surface, fanout, interactive)
		}
	}
}

func emitStats(now time.Time, full bool, tracker *stats.Tracker, surface uiSurface, fanout *logFanout, interactive bool) {
	if !interactive {
		if full {
			surface.SetStats(tracker.StatusLine(), tracker.SnapshotLines())
		}
		return
	}
	lines := tracker.SnapshotLines()
	surface.SetStats(tracker.StatusLine(), lines)
	if full {
		fanout.WriteStats(lines, now)
	}
}
