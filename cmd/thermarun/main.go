// Package main is the entry point for the thermarun supervisor.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"thermarun/internal/config"
	"thermarun/internal/control"
	"thermarun/internal/events"
	"thermarun/internal/governor"
	"thermarun/internal/logger"
	"thermarun/internal/sensors"
	"thermarun/internal/supervisor"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] <hot_threshold> <cool_threshold> <program> [args...]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Runs program, suspending its process group while the maximum sensor\n")
	fmt.Fprintf(os.Stderr, "temperature is above hot_threshold, until it drops below cool_threshold.\n\n")
	flag.PrintDefaults()
}

func main() {
	var (
		configPath  = flag.String("config", "", "Path to configuration file (defaults apply when empty)")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Printf("thermarun %s (built %s)\n", version, buildTime)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) < 3 {
		usage()
		os.Exit(2)
	}

	hot, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid hot threshold %q: %v\n", args[0], err)
		os.Exit(2)
	}
	cool, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid cool threshold %q: %v\n", args[1], err)
		os.Exit(2)
	}

	thresholds, err := config.NewThresholds(hot, cool)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid thresholds: %v\n", err)
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log := logger.WithComponent("main")
	log.Info().
		Str("version", version).
		Float64("hot_threshold", thresholds.Hot).
		Float64("cool_threshold", thresholds.Cool).
		Str("program", args[2]).
		Msg("Starting thermarun")

	status, err := run(context.Background(), cfg, thresholds, *configPath, args[2], args[3:])
	if err != nil {
		log.Error().Err(err).Msg("Supervision failed")
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	log.Info().Int("status", status).Msg("Child exited")
	os.Exit(status)
}

// run performs the phased setup and drives the loop to completion. The
// returned status is the child's exit status.
func run(ctx context.Context, cfg *config.Config, thresholds config.Thresholds, configPath, program string, args []string) (int, error) {
	log := logger.WithComponent("main")

	// Phase 1: sensors. Resolution failures are fatal before the child ever
	// starts.
	backend, err := sensors.NewBackend(cfg.Backend)
	if err != nil {
		return 0, err
	}

	temps, err := sensors.Resolve(ctx, backend, cfg.TemperatureFeatures, sensors.TempInput)
	if err != nil {
		return 0, fmt.Errorf("resolve temperature features: %w", err)
	}

	fans, err := sensors.Resolve(ctx, backend, cfg.FanFeatures, sensors.FanInput)
	if err != nil {
		return 0, fmt.Errorf("resolve fan features: %w", err)
	}

	// Phase 2: event sinks.
	sinks, err := events.BuildSinks(cfg.Events)
	if err != nil {
		return 0, fmt.Errorf("build event sinks: %w", err)
	}
	emitter := events.NewEmitter(sinks...)
	defer emitter.Close()

	// Phase 3: child process.
	sup := supervisor.New()
	child, err := sup.Spawn(program, args)
	if err != nil {
		return 0, fmt.Errorf("spawn %s: %w", program, err)
	}
	log.Info().Int("pid", child.Pid).Str("program", program).Msg("Child started")

	// Phase 4: interrupt watcher. From here on Ctrl-C belongs to the loop.
	intr := supervisor.WatchInterrupts()
	defer intr.Stop()

	// Phase 5: logging hot reload.
	if configPath != "" {
		watcher, err := config.NewLoggingWatcher(configPath, func(lc logger.Config) {
			if err := logger.Init(lc); err != nil {
				log.Error().Err(err).Msg("Failed to update logging configuration")
			}
		})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to create logging watcher, hot reload disabled")
		} else if err := watcher.Start(); err != nil {
			log.Warn().Err(err).Msg("Failed to start logging watcher")
		} else {
			defer watcher.Stop()
		}
	}

	// Phase 6: the loop.
	loop := control.New(control.Config{
		Governor:   governor.New(thresholds.Hot, thresholds.Cool),
		Process:    control.NewSupervisedProcess(sup, child),
		Interrupts: intr,
		Sink:       emitter,
		Intervals: control.Intervals{
			Hot:       cfg.Intervals.HotPoll,
			Cool:      cfg.Intervals.CoolPoll,
			FanReport: cfg.Intervals.FanReport,
		},
		SampleMax: func(ctx context.Context) (float64, error) {
			return sensors.MaxTemperature(ctx, temps)
		},
		ReadFans: func(ctx context.Context) ([]sensors.FanReading, error) {
			return sensors.ReadFans(ctx, fans)
		},
	})

	return loop.Run(ctx)
}
