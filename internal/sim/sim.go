// Package sim drives the LOD system without a window. Time comes from a mock
// clock advanced by a frame cost derived from the polygons the last LOD pass
// left visible, so automatic quality adjustment sees the load it creates.
package sim

import (
	"fmt"
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"lod-engine/internal/clock"
	"lod-engine/internal/lod"
	"lod-engine/internal/mapgen"
	"lod-engine/internal/perf"
	"lod-engine/internal/primitives"
	"lod-engine/internal/quality"
	"lod-engine/internal/scenegraph"
	"lod-engine/internal/schedule"
)

// Options shapes the simulated scene and its cost model.
type Options struct {
	Field mapgen.FieldOptions

	// Frame time is BaseFrameTime plus CostPerKPoly for every thousand visible polygons.
	BaseFrameTime time.Duration
	CostPerKPoly  time.Duration

	// The camera orbits the origin at Height, swinging between NearRadius and
	// FarRadius once per OrbitPeriod.
	NearRadius  float32
	FarRadius   float32
	Height      float32
	OrbitPeriod time.Duration

	Start time.Time
}

// DefaultOptions returns a 40x40 field viewed from an orbit that dips into it.
func DefaultOptions() Options {
	field := mapgen.DefaultFieldOptions()
	field.Seed = 1
	return Options{
		Field:         field,
		BaseFrameTime: 4 * time.Millisecond,
		CostPerKPoly:  80 * time.Microsecond,
		NearRadius:    10,
		FarRadius:     120,
		Height:        12,
		OrbitPeriod:   40 * time.Second,
		Start:         time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Report is a snapshot of the simulation after a frame.
type Report struct {
	Frame   int
	Elapsed time.Duration
	Metrics perf.Metrics
	Mode    quality.Mode
	Stats   lod.Statistics
}

// Sim owns a scene, a monitor and a LOD system stepped by a mock clock.
type Sim struct {
	Clock   *clock.Mock
	Loop    *schedule.Loop
	Graph   *scenegraph.Graph
	Camera  *scenegraph.Camera
	Monitor *perf.Monitor
	System  *lod.System

	opts  Options
	log   *zap.Logger
	frame int
	angle float32
	last  lod.Statistics
}

// New builds the field from reg and starts the monitor.
func New(reg *primitives.Registry, settings lod.Settings, perfCfg perf.Config, opts Options, log *zap.Logger) (*Sim, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.OrbitPeriod <= 0 {
		opts.OrbitPeriod = DefaultOptions().OrbitPeriod
	}
	s := &Sim{
		Clock:  clock.NewMock(opts.Start),
		Graph:  scenegraph.New(),
		opts:   opts,
		log:    log,
		Camera: scenegraph.NewCamera(mgl32.Vec3{opts.NearRadius, opts.Height, 0}, mgl32.Vec3{}),
	}
	s.Loop = schedule.NewLoop(s.Clock)
	s.Monitor = perf.NewMonitor(perfCfg, s.Loop,
		perf.WithLogger(log.Named("perf")),
		perf.WithRenderInfo(s.renderInfo),
	)
	s.System = lod.New(settings,
		lod.WithClock(s.Clock),
		lod.WithScheduler(s.Loop),
		lod.WithFPSSource(s.Monitor),
		lod.WithLogger(log.Named("lod")),
	)
	s.System.Initialize(s.Camera, s.Graph)

	ids, err := mapgen.Populate(s.Graph, reg, s.System, mapgen.GenerateField(opts.Field))
	if err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}
	log.Info("field generated", zap.Int("objects", len(ids)), zap.Int64("seed", opts.Field.Seed))

	s.Monitor.Start()
	s.System.Update()
	s.last = s.System.Statistics()
	return s, nil
}

// FrameTime is the simulated cost of drawing polygons.
func (s *Sim) FrameTime(polygons int) time.Duration {
	d := s.opts.BaseFrameTime + time.Duration(float64(s.opts.CostPerKPoly)*float64(polygons)/1000)
	return max(d, time.Millisecond)
}

// Step advances time by the cost of the previous frame, moves the camera and
// runs one frame of the scheduler and the LOD pass.
func (s *Sim) Step() Report {
	dt := s.FrameTime(s.last.TotalPolygons)
	s.Clock.Advance(dt)
	s.orbit(dt)
	s.Loop.Step()
	s.System.Update()
	s.last = s.System.Statistics()
	s.frame++
	return s.Report()
}

// Report returns the current snapshot.
func (s *Sim) Report() Report {
	return Report{
		Frame:   s.frame,
		Elapsed: s.Clock.Since(s.opts.Start),
		Metrics: s.Monitor.Metrics(),
		Mode:    s.Monitor.Mode(),
		Stats:   s.last,
	}
}

// Close stops sampling and releases generated nodes.
func (s *Sim) Close() {
	s.Monitor.Stop()
	s.System.Dispose()
}

func (s *Sim) orbit(dt time.Duration) {
	s.angle += 2 * math32.Pi * float32(dt) / float32(s.opts.OrbitPeriod)
	if s.angle > 2*math32.Pi {
		s.angle -= 2 * math32.Pi
	}
	r := s.opts.NearRadius + (s.opts.FarRadius-s.opts.NearRadius)*(0.5-0.5*math32.Cos(s.angle))
	s.Camera.Eye = mgl32.Vec3{r * math32.Cos(s.angle), s.opts.Height, r * math32.Sin(s.angle)}
}

func (s *Sim) renderInfo() (drawCalls, triangles int) {
	return s.last.VisibleObjects, s.last.TotalPolygons
}
