package lod

import (
	"errors"
	"testing"
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lod-engine/internal/clock"
	"lod-engine/internal/geom"
	"lod-engine/internal/quality"
	"lod-engine/internal/schedule"
	"lod-engine/internal/scenegraph"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// blob returns n identical triangles with a bounding sphere of radius √2 around
// the origin.
func blob(n int) *geom.Geometry {
	g := &geom.Geometry{}
	for i := 0; i < n; i++ {
		g.Positions = append(g.Positions, mgl32.Vec3{-1, -1, 0}, mgl32.Vec3{1, -1, 0}, mgl32.Vec3{0, 1, 0})
	}
	return g
}

type fixture struct {
	sys    *System
	graph  *scenegraph.Graph
	camera *scenegraph.Camera
	clock  *clock.Mock
}

// newFixture returns an initialized System whose camera sits at the origin
// looking down -Z. Updates are not throttled.
func newFixture(t *testing.T, settings Settings, opts ...Option) *fixture {
	t.Helper()
	c := clock.NewMock(epoch)
	f := &fixture{
		graph:  scenegraph.New(),
		camera: scenegraph.NewCamera(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}),
		clock:  c,
	}
	f.sys = New(settings, append([]Option{WithClock(c)}, opts...)...)
	f.sys.Initialize(f.camera, f.graph)
	return f
}

// ahead adds a base node d units in front of the camera.
func (f *fixture) ahead(name string, d float32, g *geom.Geometry) scenegraph.NodeID {
	return f.graph.Add(name, g, 1, geom.At(mgl32.Vec3{0, 0, -d}))
}

func (f *fixture) moveTo(id scenegraph.NodeID, p mgl32.Vec3) {
	f.graph.SetTransform(id, geom.At(p))
}

func threeLevels() []Level {
	return []Level{{Distance: 0}, {Distance: 20}, {Distance: 50}}
}

func (f *fixture) register(t *testing.T, cfg Configuration) {
	t.Helper()
	require.NoError(t, f.sys.RegisterObject(cfg))
}

func (f *fixture) debug(t *testing.T, id string) DebugInfo {
	t.Helper()
	info, ok := f.sys.ObjectDebugInfo(id)
	require.True(t, ok)
	return info
}

func TestRegisterObject_SortsLevels(t *testing.T) {
	f := newFixture(t, Settings{})
	base := f.ahead("tree", 5, blob(8))
	f.register(t, Configuration{
		ObjectID:  "tree",
		BaseModel: base,
		Levels:    []Level{{Distance: 50}, {Distance: 10}, {Distance: 25}},
	})

	cfg, ok := f.sys.Configuration("tree")
	require.True(t, ok)
	var got []float32
	for _, l := range cfg.Levels {
		got = append(got, l.Distance)
		assert.Equal(t, PriorityMedium, l.Priority)
	}
	assert.Equal(t, []float32{10, 25, 50}, got)
}

func TestRegisterObject_Rejects(t *testing.T) {
	f := newFixture(t, Settings{})
	base := f.ahead("rock", 5, blob(8))
	f.register(t, Configuration{ObjectID: "rock", BaseModel: base, Levels: threeLevels()})

	tests := []struct {
		name  string
		cfg   Configuration
		field string
	}{
		{"empty id", Configuration{BaseModel: base, Levels: threeLevels()}, "ObjectID"},
		{"no base", Configuration{ObjectID: "a", Levels: threeLevels()}, "BaseModel"},
		{"no levels", Configuration{ObjectID: "a", BaseModel: base}, "Levels"},
		{"negative hysteresis", Configuration{ObjectID: "a", BaseModel: base, Levels: threeLevels(), Hysteresis: -1}, "Hysteresis"},
		{"negative screen size", Configuration{ObjectID: "a", BaseModel: base, Levels: threeLevels(), MinimumScreenSize: -2}, "MinimumScreenSize"},
		{"negative distance", Configuration{ObjectID: "a", BaseModel: base, Levels: []Level{{Distance: -1}, {Distance: 10}}}, "Levels[0].Distance"},
		{"duplicate distance", Configuration{ObjectID: "a", BaseModel: base, Levels: []Level{{Distance: 10}, {Distance: 0}, {Distance: 10}}}, "Levels[2].Distance"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.sys.RegisterObject(tt.cfg)
			require.ErrorIs(t, err, ErrInvalidConfiguration)
			var cerr *ConfigurationError
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, tt.field, cerr.Field)
		})
	}

	err := f.sys.RegisterObject(Configuration{ObjectID: "rock", BaseModel: base, Levels: threeLevels()})
	assert.ErrorIs(t, err, ErrDuplicateObject)

	assert.Equal(t, []string{"rock"}, f.sys.ObjectIDs())
	assert.Equal(t, 1, f.sys.Statistics().TotalObjects)
}

func TestRegisterObject_DoesNotAliasLevels(t *testing.T) {
	f := newFixture(t, Settings{})
	base := f.ahead("rock", 5, blob(8))
	levels := threeLevels()
	f.register(t, Configuration{ObjectID: "rock", BaseModel: base, Levels: levels})

	levels[1].Distance = 999
	cfg, _ := f.sys.Configuration("rock")
	assert.Equal(t, float32(20), cfg.Levels[1].Distance)
}

func TestUpdate_NearObjectUsesFirstLevel(t *testing.T) {
	f := newFixture(t, Settings{})
	base := f.ahead("crate", 5, blob(8))
	f.register(t, Configuration{ObjectID: "crate", BaseModel: base, Levels: threeLevels()})

	require.True(t, f.sys.Update())

	info := f.debug(t, "crate")
	assert.Equal(t, 0, info.ActiveLevel)
	assert.InDelta(t, 5, info.Distance, 1e-5)
	assert.True(t, info.Visible)
	assert.True(t, f.graph.Visible(base), "level 0 without a model renders the base")

	st := f.sys.Statistics()
	assert.Equal(t, Statistics{
		TotalObjects:   1,
		VisibleObjects: 1,
		TotalPolygons:  8,
		CurrentQuality: quality.High,
	}, st)
}

func TestUpdate_GeneratesDecimatedLevels(t *testing.T) {
	f := newFixture(t, Settings{})
	base := f.ahead("crate", 60, blob(8))
	f.register(t, Configuration{ObjectID: "crate", BaseModel: base, Levels: threeLevels()})

	cfg, _ := f.sys.Configuration("crate")
	var counts []int
	for _, l := range cfg.Levels {
		counts = append(counts, l.PolygonCount)
	}
	assert.Equal(t, []int{8, 4, 2}, counts)

	before := f.graph.Len()
	f.sys.Update()
	assert.Equal(t, 2, f.debug(t, "crate").ActiveLevel)
	assert.Equal(t, before+1, f.graph.Len(), "one node built for the far level")
	assert.False(t, f.graph.Visible(base))

	var generated scenegraph.NodeID
	f.graph.Each(func(id scenegraph.NodeID, n *scenegraph.Node) {
		if n.Name == "crate#lod2" {
			generated = id
		}
	})
	require.NotEqual(t, scenegraph.None, generated)
	assert.True(t, f.graph.Visible(generated))
	assert.Equal(t, 2, f.graph.Geometry(generated).TriangleCount())
	assert.Equal(t, scenegraph.MaterialID(1), f.graph.Material(generated), "inherits the base material")
	tr, _ := f.graph.Transform(generated)
	assert.Equal(t, mgl32.Vec3{0, 0, -60}, tr.Position)

	// Near and back: the far node is reused, not rebuilt.
	f.moveTo(base, mgl32.Vec3{0, 0, -5})
	f.sys.Update()
	assert.False(t, f.graph.Visible(generated))
	assert.True(t, f.graph.Visible(base))

	f.moveTo(base, mgl32.Vec3{0, 0, -60})
	f.sys.Update()
	assert.True(t, f.graph.Visible(generated))
	assert.Equal(t, before+1, f.graph.Len())
}

func TestUpdate_ExplicitLevelModel(t *testing.T) {
	f := newFixture(t, Settings{})
	base := f.ahead("house", 40, blob(8))
	impostor := f.graph.Add("house-impostor", blob(1), 2, geom.Identity())
	f.register(t, Configuration{
		ObjectID:  "house",
		BaseModel: base,
		Levels:    []Level{{Distance: 0}, {Distance: 30, Model: impostor}},
	})

	f.sys.Update()
	assert.Equal(t, 1, f.debug(t, "house").ActiveLevel)
	assert.True(t, f.graph.Visible(impostor))
	assert.False(t, f.graph.Visible(base))
	tr, _ := f.graph.Transform(impostor)
	assert.Equal(t, mgl32.Vec3{0, 0, -40}, tr.Position, "follows the base transform")
	assert.Equal(t, 1, f.sys.Statistics().TotalPolygons)

	require.NoError(t, f.sys.UnregisterObject("house"))
	assert.True(t, f.graph.Exists(impostor), "borrowed nodes are not removed")
	assert.False(t, f.graph.Visible(impostor))
	assert.True(t, f.graph.Visible(base))
}

func TestUpdate_HysteresisHoldsLevel(t *testing.T) {
	f := newFixture(t, Settings{})
	base := f.ahead("lamp", 15, blob(8))
	f.register(t, Configuration{ObjectID: "lamp", BaseModel: base, Levels: threeLevels(), Hysteresis: 5})

	f.sys.Update()
	require.Equal(t, 0, f.debug(t, "lamp").ActiveLevel)

	switches := 0
	last := 0
	for i := 0; i < 20; i++ {
		d := float32(19)
		if i%2 == 0 {
			d = 21
		}
		f.moveTo(base, mgl32.Vec3{0, 0, -d})
		f.sys.Update()
		if lvl := f.debug(t, "lamp").ActiveLevel; lvl != last {
			switches++
			last = lvl
		}
	}
	assert.Zero(t, switches)

	f.moveTo(base, mgl32.Vec3{0, 0, -26})
	f.sys.Update()
	assert.Equal(t, 1, f.debug(t, "lamp").ActiveLevel)

	f.moveTo(base, mgl32.Vec3{0, 0, -19})
	f.sys.Update()
	assert.Equal(t, 1, f.debug(t, "lamp").ActiveLevel, "held until below 20-5")

	f.moveTo(base, mgl32.Vec3{0, 0, -14})
	f.sys.Update()
	assert.Equal(t, 0, f.debug(t, "lamp").ActiveLevel)
}

func TestUpdate_SizeCulling(t *testing.T) {
	f := newFixture(t, Settings{})
	base := f.ahead("pebble", 200, blob(8))
	f.register(t, Configuration{ObjectID: "pebble", BaseModel: base, Levels: threeLevels(), MinimumScreenSize: 50})

	f.sys.Update()

	info := f.debug(t, "pebble")
	assert.False(t, info.Visible)
	assert.Equal(t, -1, info.ActiveLevel)
	assert.Equal(t, CulledSize, info.Culled)
	assert.Less(t, info.ScreenSize, float32(50))
	assert.False(t, f.graph.Visible(base))

	st := f.sys.Statistics()
	assert.Equal(t, 0, st.VisibleObjects)
	assert.Equal(t, 1, st.OcclusionCulled)
	assert.Equal(t, 0, st.TotalPolygons)

	f.moveTo(base, mgl32.Vec3{0, 0, -5})
	f.sys.Update()
	assert.True(t, f.graph.Visible(base))
	assert.Zero(t, f.sys.Statistics().OcclusionCulled)
}

func TestSetQualityLevel_KeepsCulledObjectsHidden(t *testing.T) {
	f := newFixture(t, Settings{})
	base := f.ahead("pebble", 200, blob(8))
	f.register(t, Configuration{ObjectID: "pebble", BaseModel: base, Levels: threeLevels(), MinimumScreenSize: 50})
	f.sys.Update()
	require.False(t, f.graph.Visible(base))

	f.sys.SetQualityLevel(quality.High)

	assert.False(t, f.graph.Visible(base))
	info := f.debug(t, "pebble")
	assert.Equal(t, CulledSize, info.Culled)
	assert.Equal(t, -1, info.ActiveLevel)
	st := f.sys.Statistics()
	assert.Equal(t, 0, st.VisibleObjects)
	assert.Equal(t, 0, st.TotalPolygons)
}

func TestUpdate_FrustumCulling(t *testing.T) {
	f := newFixture(t, Settings{})
	culled := f.graph.Add("east", blob(8), 1, geom.At(mgl32.Vec3{1000, 0, -10}))
	kept := f.graph.Add("east-unculled", blob(8), 1, geom.At(mgl32.Vec3{1000, 0, -10}))
	f.register(t, Configuration{ObjectID: "east", BaseModel: culled, Levels: threeLevels(), EnableFrustumCulling: true})
	f.register(t, Configuration{ObjectID: "east-unculled", BaseModel: kept, Levels: threeLevels()})

	f.sys.Update()

	info := f.debug(t, "east")
	assert.False(t, info.InFrustum)
	assert.Equal(t, CulledFrust, info.Culled)
	assert.False(t, f.graph.Visible(culled))
	assert.True(t, f.debug(t, "east-unculled").Visible)

	st := f.sys.Statistics()
	assert.Equal(t, 1, st.FrustumCulled)
	assert.Equal(t, 1, st.VisibleObjects)
}

func TestUpdate_MissingBoundsCountsAsVisible(t *testing.T) {
	f := newFixture(t, Settings{})
	base := f.graph.Add("streaming", nil, 1, geom.At(mgl32.Vec3{1000, 0, -10}))
	f.register(t, Configuration{
		ObjectID:             "streaming",
		BaseModel:            base,
		Levels:               threeLevels(),
		EnableFrustumCulling: true,
		MinimumScreenSize:    10,
	})

	f.sys.Update()

	info := f.debug(t, "streaming")
	assert.True(t, info.Visible)
	assert.True(t, info.InFrustum)
	assert.Equal(t, float32(math32.MaxFloat32), info.ScreenSize)
	assert.Equal(t, 0, info.ActiveLevel, "generated levels fall back to the base until geometry arrives")

	// Geometry arrives: derived levels become available.
	f.graph.SetGeometry(base, blob(8))
	f.graph.SetTransform(base, geom.At(mgl32.Vec3{0, 0, -60}))
	f.sys.Update()
	assert.Equal(t, 2, f.debug(t, "streaming").ActiveLevel)
	cfg, _ := f.sys.Configuration("streaming")
	assert.Equal(t, 2, cfg.Levels[2].PolygonCount)
}

func TestUpdate_MissingBaseHides(t *testing.T) {
	f := newFixture(t, Settings{})
	base := f.ahead("gone", 5, blob(8))
	f.register(t, Configuration{ObjectID: "gone", BaseModel: base, Levels: threeLevels()})
	f.graph.Remove(base)

	f.sys.Update()
	info := f.debug(t, "gone")
	assert.False(t, info.Visible)
	assert.Equal(t, CulledNoBase, info.Culled)
}

func TestUpdate_Throttled(t *testing.T) {
	f := newFixture(t, Settings{UpdateFrequency: 100 * time.Millisecond})
	base := f.ahead("crate", 5, blob(8))
	f.register(t, Configuration{ObjectID: "crate", BaseModel: base, Levels: threeLevels()})

	assert.True(t, f.sys.Update())
	assert.False(t, f.sys.Update())
	f.clock.Advance(99 * time.Millisecond)
	assert.False(t, f.sys.Update())
	f.clock.Advance(time.Millisecond)
	assert.True(t, f.sys.Update())
}

func TestUpdate_BeforeInitialize(t *testing.T) {
	s := New(Settings{})
	assert.False(t, s.Update())
	assert.Equal(t, quality.High, s.Quality())
}

func TestUpdate_PolygonBudgetForcesLowQuality(t *testing.T) {
	f := newFixture(t, Settings{MaxPolygons: 10})
	var got []quality.Mode
	f.sys.OnQualityChange(func(q quality.Mode) { got = append(got, q) })

	for _, name := range []string{"a", "b"} {
		base := f.ahead(name, 5, blob(8))
		f.register(t, Configuration{ObjectID: name, BaseModel: base, Levels: []Level{{Distance: 0}}})
	}
	f.sys.Update()

	st := f.sys.Statistics()
	assert.Equal(t, 16, st.TotalPolygons)
	assert.NotEqual(t, quality.High, st.CurrentQuality)
	assert.Equal(t, []quality.Mode{quality.Low}, got)

	f.sys.Update()
	assert.Len(t, got, 1, "already low, no repeat notification")
}

func TestSetQualityLevel(t *testing.T) {
	f := newFixture(t, Settings{})
	base := f.ahead("tree", 5, blob(8))
	f.register(t, Configuration{ObjectID: "tree", BaseModel: base, Levels: threeLevels()})
	f.sys.Update()

	f.sys.SetQualityLevel(quality.Low)
	assert.Equal(t, 2, f.debug(t, "tree").ActiveLevel, "applied without waiting for Update")
	assert.Equal(t, quality.Low, f.sys.Quality())
	assert.True(t, f.sys.Forced())
	assert.False(t, f.graph.Visible(base))

	f.sys.Update()
	assert.Equal(t, 2, f.debug(t, "tree").ActiveLevel, "distance no longer decides")

	f.sys.SetQualityLevel(quality.Medium)
	assert.Equal(t, 1, f.debug(t, "tree").ActiveLevel)

	f.sys.SetQualityLevel(quality.High)
	assert.Equal(t, 0, f.debug(t, "tree").ActiveLevel)
	assert.True(t, f.graph.Visible(base))

	f.sys.SetQualityLevel(quality.Mode("ultra"))
	assert.Equal(t, quality.High, f.sys.Quality())
}

func TestForcedIndex(t *testing.T) {
	assert.Equal(t, 0, forcedIndex(quality.High, 3))
	assert.Equal(t, 1, forcedIndex(quality.Medium, 3))
	assert.Equal(t, 2, forcedIndex(quality.Low, 3))
	assert.Equal(t, 0, forcedIndex(quality.Medium, 1))
	assert.Equal(t, 0, forcedIndex(quality.Low, 1))
}

type fakeFPS struct{ avg float64 }

func (f *fakeFPS) AverageFPS() float64 { return f.avg }

func TestOptimize_StepsQualityOnInterval(t *testing.T) {
	fps := &fakeFPS{avg: 20}
	c := clock.NewMock(epoch)
	loop := schedule.NewLoop(c)
	s := New(Settings{
		EnableAutoOptimization: true,
		PerformanceThreshold:   30,
		QualityMargin:          15,
		OptimizationInterval:   2 * time.Second,
	},
		WithClock(c), WithScheduler(loop), WithFPSSource(fps))
	s.Initialize(scenegraph.NewCamera(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}), scenegraph.New())
	s.Initialize(scenegraph.NewCamera(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}), scenegraph.New())
	require.Equal(t, 1, loop.Intervals(), "initializing twice arms one interval")

	var got []quality.Mode
	s.OnQualityChange(func(q quality.Mode) { got = append(got, q) })

	c.Advance(time.Second)
	loop.Step()
	assert.Equal(t, quality.High, s.Quality(), "not due yet")

	c.Advance(time.Second)
	loop.Step()
	assert.Equal(t, quality.Medium, s.Quality())

	c.Advance(2 * time.Second)
	loop.Step()
	assert.Equal(t, quality.Low, s.Quality())

	c.Advance(2 * time.Second)
	loop.Step()
	assert.Equal(t, quality.Low, s.Quality(), "bottom reached")

	fps.avg = 40 // inside the margin band
	c.Advance(2 * time.Second)
	loop.Step()
	assert.Equal(t, quality.Low, s.Quality())

	fps.avg = 50
	c.Advance(2 * time.Second)
	loop.Step()
	assert.Equal(t, quality.Medium, s.Quality())

	assert.Equal(t, []quality.Mode{quality.Medium, quality.Low, quality.Medium}, got)

	s.SetAutoOptimization(false)
	assert.Zero(t, loop.Intervals())
	assert.False(t, s.Settings().EnableAutoOptimization)
	s.SetAutoOptimization(true)
	s.SetAutoOptimization(true)
	assert.Equal(t, 1, loop.Intervals())

	s.Dispose()
	assert.Zero(t, loop.Intervals())
}

func TestOptimize_ClearsForcedQuality(t *testing.T) {
	fps := &fakeFPS{}
	s := New(Settings{}, WithFPSSource(fps))
	s.SetQualityLevel(quality.High)
	require.True(t, s.Forced())

	s.Optimize()
	assert.True(t, s.Forced(), "no samples, no change")

	fps.avg = 10
	s.Optimize()
	assert.False(t, s.Forced())
	assert.Equal(t, quality.Medium, s.Quality())
}

func TestOnQualityChange_SubscriberPanicIsIsolated(t *testing.T) {
	s := New(Settings{})
	var got []quality.Mode
	s.OnQualityChange(func(quality.Mode) { panic("boom") })
	unsub := s.OnQualityChange(func(q quality.Mode) { got = append(got, q) })

	assert.NotPanics(t, func() { s.SetQualityLevel(quality.Low) })
	assert.Equal(t, []quality.Mode{quality.Low}, got)

	unsub()
	s.SetQualityLevel(quality.High)
	assert.Len(t, got, 1)
}

func TestUpdateObject(t *testing.T) {
	f := newFixture(t, Settings{})
	base := f.ahead("crate", 60, blob(8))
	f.register(t, Configuration{ObjectID: "crate", BaseModel: base, Levels: threeLevels()})
	f.sys.Update()
	require.Equal(t, 2, f.debug(t, "crate").ActiveLevel)
	nodes := f.graph.Len()

	assert.ErrorIs(t, f.sys.UpdateObject("nope", Patch{}), ErrUnknownObject)

	neg := float32(-1)
	err := f.sys.UpdateObject("crate", Patch{Hysteresis: &neg})
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	disabled := true
	require.NoError(t, f.sys.UpdateObject("crate", Patch{Disabled: &disabled}))
	info := f.debug(t, "crate")
	assert.False(t, info.Visible)
	assert.Equal(t, CulledOff, info.Culled)
	f.sys.Update()
	assert.Equal(t, CulledOff, f.debug(t, "crate").Culled)

	disabled = false
	require.NoError(t, f.sys.UpdateObject("crate", Patch{
		Disabled: &disabled,
		Levels:   []Level{{Distance: 0}, {Distance: 100}},
	}))
	assert.Equal(t, nodes-1, f.graph.Len(), "generated nodes discarded on level change")

	f.sys.Update()
	assert.Equal(t, 0, f.debug(t, "crate").ActiveLevel)
	assert.True(t, f.graph.Visible(base))

	hyst := float32(3)
	require.NoError(t, f.sys.UpdateObject("crate", Patch{Hysteresis: &hyst}))
	cfg, _ := f.sys.Configuration("crate")
	want := Configuration{
		ObjectID:  "crate",
		BaseModel: base,
		Levels: []Level{
			{Distance: 0, Visible: true, PolygonCount: 8, Priority: PriorityMedium},
			{Distance: 100, PolygonCount: 4, Priority: PriorityMedium},
		},
		Hysteresis: 3,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("configuration mismatch (-want +got):\n%s", diff)
	}
}

func TestConfiguration_ReturnsCopy(t *testing.T) {
	f := newFixture(t, Settings{})
	base := f.ahead("crate", 5, blob(8))
	f.register(t, Configuration{ObjectID: "crate", BaseModel: base, Levels: threeLevels()})

	cfg, ok := f.sys.Configuration("crate")
	require.True(t, ok)
	cfg.Levels[0].Distance = 42

	again, _ := f.sys.Configuration("crate")
	assert.Equal(t, float32(0), again.Levels[0].Distance)

	_, ok = f.sys.Configuration("missing")
	assert.False(t, ok)
}

func TestUnregisterObject(t *testing.T) {
	f := newFixture(t, Settings{})
	base := f.ahead("crate", 60, blob(8))
	f.register(t, Configuration{ObjectID: "crate", BaseModel: base, Levels: threeLevels()})
	nodes := f.graph.Len()
	f.sys.Update()
	require.Equal(t, nodes+1, f.graph.Len())

	require.NoError(t, f.sys.UnregisterObject("crate"))
	assert.Equal(t, nodes, f.graph.Len())
	assert.True(t, f.graph.Visible(base))
	assert.ErrorIs(t, f.sys.UnregisterObject("crate"), ErrUnknownObject)
	assert.Empty(t, f.sys.ObjectIDs())
}

func TestDispose(t *testing.T) {
	f := newFixture(t, Settings{})
	for _, name := range []string{"a", "b", "c"} {
		base := f.ahead(name, 60, blob(8))
		f.register(t, Configuration{ObjectID: name, BaseModel: base, Levels: threeLevels()})
	}
	f.sys.Update()
	f.sys.SetQualityLevel(quality.Low)
	require.Equal(t, 6, f.graph.Len())

	f.sys.Dispose()
	f.sys.Dispose()

	st := f.sys.Statistics()
	assert.Equal(t, 0, st.TotalObjects)
	assert.Equal(t, quality.High, st.CurrentQuality)
	assert.Equal(t, 3, f.graph.Len(), "only the base nodes remain")
	f.graph.Each(func(_ scenegraph.NodeID, n *scenegraph.Node) {
		assert.True(t, n.Visible, n.Name)
	})
	assert.False(t, f.sys.Update())
}
