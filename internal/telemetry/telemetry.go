// Package telemetry exports frame and LOD statistics as Prometheus metrics.
package telemetry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"lod-engine/internal/lod"
	"lod-engine/internal/perf"
	"lod-engine/internal/quality"
)

const namespace = "lod_engine"

var modes = []quality.Mode{quality.High, quality.Medium, quality.Low}

// Telemetry holds the exported collectors.
type Telemetry struct {
	FPS        prometheus.Gauge
	AverageFPS prometheus.Gauge
	FPSStdDev  prometheus.Gauge
	FrameTime  prometheus.Histogram
	HeapBytes  prometheus.Gauge
	GPUBytes   prometheus.Gauge

	Objects        prometheus.Gauge
	VisibleObjects prometheus.Gauge
	Polygons       prometheus.Gauge
	Culled         *prometheus.GaugeVec // by reason: frustum, size

	Quality        *prometheus.GaugeVec // 1 for the current quality, 0 otherwise
	QualityChanges prometheus.Counter
	Mode           *prometheus.GaugeVec
	ModeChanges    prometheus.Counter
}

// New registers the collectors with reg (prometheus.DefaultRegisterer when nil).
func New(reg prometheus.Registerer) *Telemetry {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Telemetry{
		FPS: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "frame", Name: "fps",
			Help: "Instantaneous frames per second of the last frame",
		}),
		AverageFPS: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "frame", Name: "fps_average",
			Help: "Mean FPS over the rolling sample window",
		}),
		FPSStdDev: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "frame", Name: "fps_stddev",
			Help: "Standard deviation of FPS over the rolling sample window",
		}),
		FrameTime: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "frame", Name: "time_seconds",
			Help:    "Frame time at each metrics publication",
			Buckets: prometheus.ExponentialBuckets(0.002, 2, 8), // 2ms to ~256ms
		}),
		HeapBytes: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "memory", Name: "heap_bytes",
			Help: "Heap memory in use",
		}),
		GPUBytes: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "memory", Name: "gpu_bytes",
			Help: "GPU memory in use, 0 when unknown",
		}),
		Objects: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "lod", Name: "objects",
			Help: "Registered LOD objects",
		}),
		VisibleObjects: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "lod", Name: "visible_objects",
			Help: "Objects shown after the last LOD pass",
		}),
		Polygons: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "lod", Name: "polygons",
			Help: "Polygons of the visible levels",
		}),
		Culled: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "lod", Name: "culled_objects",
			Help: "Objects hidden by the last LOD pass",
		}, []string{"reason"}),
		Quality: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "lod", Name: "quality",
			Help: "Current global LOD quality (1 for the active one)",
		}, []string{"quality"}),
		QualityChanges: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "lod", Name: "quality_changes_total",
			Help: "Global LOD quality changes",
		}),
		Mode: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "perf", Name: "mode",
			Help: "Current performance mode (1 for the active one)",
		}, []string{"mode"}),
		ModeChanges: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "perf", Name: "mode_changes_total",
			Help: "Performance mode changes",
		}),
	}
}

// ObserveFrame records one metrics publication.
func (t *Telemetry) ObserveFrame(m perf.Metrics) {
	t.FPS.Set(m.FPS)
	t.AverageFPS.Set(m.AverageFPS)
	t.FPSStdDev.Set(m.FPSStdDev)
	t.FrameTime.Observe(m.FrameTime / 1000)
	t.HeapBytes.Set(float64(m.MemoryUsage))
	t.GPUBytes.Set(float64(m.GPUMemory))
}

// ObserveLOD records LOD statistics.
func (t *Telemetry) ObserveLOD(st lod.Statistics) {
	t.Objects.Set(float64(st.TotalObjects))
	t.VisibleObjects.Set(float64(st.VisibleObjects))
	t.Polygons.Set(float64(st.TotalPolygons))
	t.Culled.WithLabelValues("frustum").Set(float64(st.FrustumCulled))
	t.Culled.WithLabelValues("size").Set(float64(st.OcclusionCulled))
	setOneHot(t.Quality, st.CurrentQuality)
}

// QualityChanged records a global quality change.
func (t *Telemetry) QualityChanged(q quality.Mode) {
	t.QualityChanges.Inc()
	setOneHot(t.Quality, q)
}

// ModeChanged records a performance mode change.
func (t *Telemetry) ModeChanged(m quality.Mode) {
	t.ModeChanges.Inc()
	setOneHot(t.Mode, m)
}

// Bind subscribes to the monitor and the system. LOD statistics are sampled
// whenever the monitor publishes. The returned func unsubscribes.
func (t *Telemetry) Bind(mon *perf.Monitor, sys *lod.System) (unbind func()) {
	setOneHot(t.Mode, mon.Mode())
	setOneHot(t.Quality, sys.Quality())
	unsubs := []func(){
		mon.Subscribe(func(m perf.Metrics) {
			t.ObserveFrame(m)
			t.ObserveLOD(sys.Statistics())
		}),
		mon.OnModeChange(t.ModeChanged),
		sys.OnQualityChange(t.QualityChanged),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

// Handler serves the metrics gathered by g (prometheus.DefaultGatherer when nil).
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Serve exposes Handler(g) on addr under /metrics until ctx is done.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer, log *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(g))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("serving metrics", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func setOneHot(v *prometheus.GaugeVec, current quality.Mode) {
	for _, m := range modes {
		val := 0.0
		if m == current {
			val = 1
		}
		v.WithLabelValues(m.String()).Set(val)
	}
}
