// Command lodsim runs the LOD system headless over a generated field, with an
// orbiting camera and a frame cost that follows the visible polygon count.
// Lines read from stdin are executed as terminal commands between frames.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"lod-engine/internal/commands"
	"lod-engine/internal/engineconfig"
	"lod-engine/internal/env"
	"lod-engine/internal/primitives"
	"lod-engine/internal/sim"
	"lod-engine/internal/telemetry"
)

func main() {
	configPath := flag.String("config", engineconfig.EngineConfigPath, "engine preferences file")
	primitivesDir := flag.String("primitives", primitives.DefaultDir, "directory of primitive definitions")
	frames := flag.Int("frames", 3600, "frames to simulate (0 runs until interrupted)")
	report := flag.Int("report", 300, "log a report every N frames")
	seed := flag.Int64("seed", 1, "field seed (0 picks one from the clock)")
	interactive := flag.Bool("stdin", false, `execute "cmd ..." lines from stdin`)
	flag.Parse()

	if _, err := env.Load(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	prefs, _ := engineconfig.LoadFile(*configPath)
	prefs = engineconfig.ApplyEnv(prefs)
	log := newLogger(prefs.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reg := primitives.NewRegistry()
	if err := reg.LoadDir(*primitivesDir); err != nil {
		log.Warn("primitive definitions not loaded, using built-ins", zap.String("dir", *primitivesDir), zap.Error(err))
	}

	opts := sim.DefaultOptions()
	opts.Field.Seed = *seed
	s, err := sim.New(reg, prefs.LOD.Settings(), prefs.Perf, opts, log)
	if err != nil {
		log.Fatal("simulation setup failed", zap.Error(err))
	}
	defer s.Close()

	tel := telemetry.New(prometheus.DefaultRegisterer)
	defer tel.Bind(s.Monitor, s.System)()
	if prefs.MetricsAddr != "" {
		go func() {
			if err := telemetry.Serve(ctx, prefs.MetricsAddr, prometheus.DefaultGatherer, log); err != nil {
				log.Error("metrics endpoint stopped", zap.Error(err))
			}
		}()
	}

	cmds := commands.NewRegistry()
	commands.RegisterLOD(cmds, s.System, s.Monitor, os.Stdout)
	var lines <-chan string
	if *interactive {
		lines = readLines(os.Stdin)
	}

	for n := 1; *frames == 0 || n <= *frames; n++ {
		if ctx.Err() != nil {
			break
		}
		drain(lines, cmds, log)
		rep := s.Step()
		if *report > 0 && rep.Frame%*report == 0 {
			logReport(log, rep)
		}
	}
	logReport(log, s.Report())
}

func newLogger(level string) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	cfg.DisableStacktrace = true
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func readLines(f *os.File) <-chan string {
	out := make(chan string, 16)
	go func() {
		defer close(out)
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			out <- sc.Text()
		}
	}()
	return out
}

// drain executes the lines that arrived since the last frame without blocking.
func drain(lines <-chan string, cmds *commands.Registry, log *zap.Logger) {
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return
			}
			args, isCmd := commands.Parse(line)
			if !isCmd {
				log.Warn(`ignoring line without "cmd " prefix`, zap.String("line", line))
				continue
			}
			if err := cmds.Execute(args); err != nil {
				log.Warn("command failed", zap.String("line", line), zap.Error(err))
			}
		default:
			return
		}
	}
}

func logReport(log *zap.Logger, rep sim.Report) {
	log.Info("frame report",
		zap.Int("frame", rep.Frame),
		zap.Duration("elapsed", rep.Elapsed),
		zap.Float64("fps", rep.Metrics.FPS),
		zap.Float64("average_fps", rep.Metrics.AverageFPS),
		zap.Stringer("mode", rep.Mode),
		zap.Stringer("quality", rep.Stats.CurrentQuality),
		zap.Int("visible", rep.Stats.VisibleObjects),
		zap.Int("objects", rep.Stats.TotalObjects),
		zap.Int("polygons", rep.Stats.TotalPolygons),
		zap.Int("frustum_culled", rep.Stats.FrustumCulled),
		zap.Int("size_culled", rep.Stats.OcclusionCulled),
	)
}
