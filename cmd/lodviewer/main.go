package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"lod-engine/internal/clock"
	"lod-engine/internal/commands"
	"lod-engine/internal/debug"
	"lod-engine/internal/engineconfig"
	"lod-engine/internal/env"
	"lod-engine/internal/graphics"
	"lod-engine/internal/lod"
	"lod-engine/internal/logger"
	"lod-engine/internal/mapgen"
	"lod-engine/internal/perf"
	"lod-engine/internal/primitives"
	"lod-engine/internal/quality"
	"lod-engine/internal/scene"
	"lod-engine/internal/scenegraph"
	"lod-engine/internal/schedule"
	"lod-engine/internal/telemetry"
	"lod-engine/internal/terminal"
	"lod-engine/internal/ui"
)

func main() {
	configPath := flag.String("config", engineconfig.EngineConfigPath, "engine preferences file")
	primitivesDir := flag.String("primitives", primitives.DefaultDir, "directory of primitive definitions")
	cssPath := flag.String("css", "assets/ui/overlay.css", "overlay stylesheet")
	seed := flag.Int64("seed", 1, "field seed (0 picks one from the clock)")
	flag.Parse()

	if _, err := env.Load(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	prefs, _ := engineconfig.LoadFile(*configPath)
	prefs = engineconfig.ApplyEnv(prefs)
	level, err := zapcore.ParseLevel(prefs.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	log := logger.New(level)
	defer log.Close()
	zl := log.Zap()

	reg := primitives.NewRegistry()
	if err := reg.LoadDir(*primitivesDir); err != nil {
		zl.Warn("primitive definitions not loaded, using built-ins", zap.String("dir", *primitivesDir), zap.Error(err))
	}

	graph := scenegraph.New()
	loop := schedule.NewLoop(clock.Real{})
	scn := scene.New(graph, reg)
	scn.SetGridVisible(prefs.GridVisible)

	mon := perf.NewMonitor(prefs.Perf, loop,
		perf.WithLogger(zl.Named("perf")),
		perf.WithRenderInfo(scn.RenderInfo),
	)
	perf.SetDefault(mon)
	sys := lod.New(prefs.LOD.Settings(),
		lod.WithScheduler(loop),
		lod.WithFPSSource(mon),
		lod.WithLogger(zl.Named("lod")),
	)
	sys.Initialize(scn.View(), graph)
	defer sys.Dispose()

	if err := populate(graph, reg, sys, *seed); err != nil {
		zl.Error("scene population failed", zap.Error(err))
	}
	zl.Info("scene ready", zap.Int("objects", len(sys.ObjectIDs())), zap.Int("nodes", graph.Len()))

	mon.OnModeChange(func(m quality.Mode) {
		zl.Info("performance mode changed", zap.Stringer("mode", m))
	})
	tel := telemetry.New(prometheus.DefaultRegisterer)
	defer tel.Bind(mon, sys)()
	if prefs.MetricsAddr != "" {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			if err := telemetry.Serve(ctx, prefs.MetricsAddr, prometheus.DefaultGatherer, zl); err != nil {
				zl.Error("metrics endpoint stopped", zap.Error(err))
			}
		}()
	}

	cmds := commands.NewRegistry()
	commands.RegisterLOD(cmds, sys, mon, log.Writer())
	registerGrid(cmds, scn, log)
	var selected string
	commands.RegisterSelect(cmds, sys, log.Writer(), func(id string) { selected = id })
	term := terminal.New(log, cmds)

	panel := debug.NewPanel(loadStylesheet(zl, *cssPath))
	var inspector ui.Inspector

	dbg := debug.New()
	dbg.ShowFPS = prefs.ShowFPS
	dbg.ShowMemAlloc = prefs.ShowMemAlloc
	dbg.ShowLODStats = prefs.ShowLODStats

	mon.Start()
	defer mon.Stop()

	update := func() {
		term.Update()
		if !term.IsOpen() {
			scn.Update()
		}
		loop.Step()
		sys.Update()
	}
	draw := func() {
		scn.Draw()
		dbg.Draw(debug.Frame{
			Metrics: mon.Metrics(),
			Mode:    mon.Mode().String(),
			Stats:   sys.Statistics(),
			Log:     log.Lines(),
		})
		if selected != "" {
			cfg, ok := sys.Configuration(selected)
			info, _ := sys.ObjectDebugInfo(selected)
			if ok {
				panel.Draw(inspector.Nodes(selected, cfg, info))
			}
		}
		term.Draw()
	}
	graphics.Run(graphics.Window{Title: "lod viewer", Fullscreen: true, TargetFPS: 0}, update, draw)
	scn.Unload()
}

// populate lays a ground plane under a procedural field of props.
func populate(g *scenegraph.Graph, reg *primitives.Registry, sys *lod.System, seed int64) error {
	ground, err := reg.Spawn(g, "ground", "plane", mgl32.Vec3{})
	if err != nil {
		return err
	}
	cfg, err := reg.Configuration("ground", "plane", ground)
	if err != nil {
		return err
	}
	if err := sys.RegisterObject(cfg); err != nil {
		return err
	}
	opts := mapgen.DefaultFieldOptions()
	opts.Seed = seed
	_, err = mapgen.Populate(g, reg, sys, mapgen.GenerateField(opts))
	return err
}

// loadStylesheet reads path, falling back to the built-in styles.
func loadStylesheet(log *zap.Logger, path string) *ui.Stylesheet {
	if data, err := os.ReadFile(path); err == nil {
		sheet, err := ui.ParseCSS(string(data))
		if err == nil {
			return sheet
		}
		log.Warn("invalid stylesheet, using built-in styles", zap.String("path", path), zap.Error(err))
	}
	sheet, _ := ui.ParseCSS(ui.DefaultCSS)
	return sheet
}

func registerGrid(r *commands.Registry, scn *scene.Scene, log *logger.Logger) {
	fs := flag.NewFlagSet("grid", flag.ContinueOnError)
	fs.SetOutput(log.Writer())
	show := fs.Bool("show", false, "show the editor grid")
	hide := fs.Bool("hide", false, "hide the editor grid")
	r.Register("grid", fs, func() error {
		defer func() { *show, *hide = false, false }()
		if *show == *hide {
			return errors.New("use exactly one of --show, --hide")
		}
		scn.SetGridVisible(*show)
		log.Log(fmt.Sprintf("grid visible: %t", *show))
		return nil
	})
}

