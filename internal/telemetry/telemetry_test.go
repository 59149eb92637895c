package telemetry

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lod-engine/internal/clock"
	"lod-engine/internal/geom"
	"lod-engine/internal/lod"
	"lod-engine/internal/perf"
	"lod-engine/internal/quality"
	"lod-engine/internal/schedule"
	"lod-engine/internal/scenegraph"
)

func TestBind(t *testing.T) {
	c := clock.NewMock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	loop := schedule.NewLoop(c)
	mon := perf.NewMonitor(perf.DefaultConfig(), loop,
		perf.WithMemoryReader(func() (uint64, uint64, bool) { return 1 << 20, 0, true }))

	g := scenegraph.New()
	sys := lod.New(lod.Settings{})
	sys.Initialize(scenegraph.NewCamera(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}), g)
	base := g.Add("crate", &geom.Geometry{Positions: []mgl32.Vec3{{-1, -1, 0}, {1, -1, 0}, {0, 1, 0}}}, 1, geom.At(mgl32.Vec3{0, 0, -5}))
	require.NoError(t, sys.RegisterObject(lod.Configuration{ObjectID: "crate", BaseModel: base, Levels: []lod.Level{{Distance: 0}}}))
	sys.Update()

	reg := prometheus.NewRegistry()
	tel := New(reg)
	unbind := tel.Bind(mon, sys)
	assert.Equal(t, 1.0, testutil.ToFloat64(tel.Quality.WithLabelValues("high")))
	assert.Equal(t, 1.0, testutil.ToFloat64(tel.Mode.WithLabelValues("high")))

	mon.Start()
	for i := 0; i < 21; i++ {
		c.Advance(25 * time.Millisecond)
		loop.Step()
	}

	assert.InDelta(t, 40, testutil.ToFloat64(tel.AverageFPS), 1e-9)
	assert.InDelta(t, 40, testutil.ToFloat64(tel.FPS), 1e-9)
	assert.Equal(t, float64(1<<20), testutil.ToFloat64(tel.HeapBytes))
	assert.Equal(t, 1.0, testutil.ToFloat64(tel.Objects))
	assert.Equal(t, 1.0, testutil.ToFloat64(tel.VisibleObjects))
	assert.Equal(t, 1.0, testutil.ToFloat64(tel.Polygons))
	assert.Equal(t, 1.0, testutil.ToFloat64(tel.ModeChanges), "high to medium once")
	assert.Equal(t, 1.0, testutil.ToFloat64(tel.Mode.WithLabelValues("medium")))
	assert.Equal(t, 0.0, testutil.ToFloat64(tel.Mode.WithLabelValues("high")))

	families, err := reg.Gather()
	require.NoError(t, err)
	var frameTime *dto.MetricFamily
	for _, mf := range families {
		if mf.GetName() == "lod_engine_frame_time_seconds" {
			frameTime = mf
		}
	}
	require.NotNil(t, frameTime)
	h := frameTime.GetMetric()[0].GetHistogram()
	assert.Equal(t, uint64(2), h.GetSampleCount())
	assert.InDelta(t, 0.05, h.GetSampleSum(), 1e-9)

	sys.SetQualityLevel(quality.Low)
	assert.Equal(t, 1.0, testutil.ToFloat64(tel.QualityChanges))
	assert.Equal(t, 1.0, testutil.ToFloat64(tel.Quality.WithLabelValues("low")))

	unbind()
	sys.SetQualityLevel(quality.High)
	assert.Equal(t, 1.0, testutil.ToFloat64(tel.QualityChanges))
}

func TestObserveLOD(t *testing.T) {
	tel := New(prometheus.NewRegistry())
	tel.ObserveLOD(lod.Statistics{
		TotalObjects:    10,
		VisibleObjects:  6,
		TotalPolygons:   1200,
		CurrentQuality:  quality.Medium,
		FrustumCulled:   3,
		OcclusionCulled: 1,
	})
	assert.Equal(t, 3.0, testutil.ToFloat64(tel.Culled.WithLabelValues("frustum")))
	assert.Equal(t, 1.0, testutil.ToFloat64(tel.Culled.WithLabelValues("size")))
	assert.Equal(t, 1.0, testutil.ToFloat64(tel.Quality.WithLabelValues("medium")))
	assert.Equal(t, 3, testutil.CollectAndCount(tel.Quality))
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	tel := New(reg)
	tel.ObserveFrame(perf.Metrics{FPS: 59, AverageFPS: 58.5, FrameTime: 17})

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "lod_engine_frame_fps_average 58.5")
	assert.Contains(t, string(body), "lod_engine_frame_time_seconds_count 1")
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}

func TestServe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, Serve(ctx, "127.0.0.1:0", prometheus.NewRegistry(), zap.NewNop()), "a cancelled server exits cleanly")

	assert.Error(t, Serve(context.Background(), "127.0.0.1:-1", prometheus.NewRegistry(), zap.NewNop()))
}
