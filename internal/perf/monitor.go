package perf

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"lod-engine/internal/quality"
	"lod-engine/internal/schedule"
)

// MemoryReader reports heap and GPU memory in bytes. ok is false when the
// platform exposes neither, in which case both are reported as 0.
type MemoryReader func() (heap, gpu uint64, ok bool)

// RenderInfo reports the renderer's draw calls and triangles for the last frame.
type RenderInfo func() (drawCalls, triangles int)

// RuntimeMemory reads Go heap usage via runtime.ReadMemStats.
func RuntimeMemory() (heap, gpu uint64, ok bool) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapAlloc, 0, true
}

// CallbackError wraps a panic raised by a subscriber. It is logged and
// never propagated to the frame loop.
type CallbackError struct {
	Callback  string
	Recovered any
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("perf: %s callback panicked: %v", e.Callback, e.Recovered)
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithLogger sets the logger used for callback failures and memory warnings.
func WithLogger(l *zap.Logger) Option {
	return func(m *Monitor) { m.log = l }
}

// WithMemoryReader replaces RuntimeMemory.
func WithMemoryReader(r MemoryReader) Option {
	return func(m *Monitor) { m.readMemory = r }
}

// WithRenderInfo sets the source of draw call and triangle counts.
func WithRenderInfo(r RenderInfo) Option {
	return func(m *Monitor) { m.renderInfo = r }
}

type metricsSub struct {
	id int
	fn func(Metrics)
}

type modeSub struct {
	id int
	fn func(quality.Mode)
}

// Monitor samples frame timing from the scheduler and publishes metrics every
// Config.MetricsInterval frames.
type Monitor struct {
	mu         sync.Mutex
	cfg        Config
	sched      schedule.Scheduler
	log        *zap.Logger
	readMemory MemoryReader
	renderInfo RenderInfo

	running bool
	frameID schedule.FrameID
	// chain changes on every Start and Stop; a frame callback from an older
	// chain neither samples nor reschedules.
	chain uint64

	last    time.Time
	hasLast bool
	window  []float64
	frames  int
	metrics Metrics
	mode    quality.Mode
	memHigh bool

	nextID   int
	subs     []metricsSub
	modeSubs []modeSub
}

// NewMonitor returns a stopped Monitor in High mode.
func NewMonitor(cfg Config, sched schedule.Scheduler, opts ...Option) *Monitor {
	m := &Monitor{
		cfg:        cfg.withDefaults(),
		sched:      sched,
		log:        zap.NewNop(),
		readMemory: RuntimeMemory,
		mode:       quality.High,
	}
	for _, o := range opts {
		o(m)
	}
	m.window = make([]float64, 0, m.cfg.SampleSize)
	return m
}

// Config returns the effective configuration.
func (m *Monitor) Config() Config {
	return m.cfg
}

// Start schedules sampling on the next frame. Calling it while running is a no-op.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	m.running = true
	m.hasLast = false
	m.chain++
	m.request()
}

// request queues the next frame of the current chain. m.mu must be held.
func (m *Monitor) request() {
	chain := m.chain
	m.frameID = m.sched.RequestFrame(func(now time.Time) { m.frame(chain, now) })
}

// Stop cancels the scheduled frame. History and the last average are kept.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	m.running = false
	m.chain++
	m.sched.CancelFrame(m.frameID)
	m.frameID = 0
}

// Running reports whether sampling is scheduled.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Monitor) frame(chain uint64, now time.Time) {
	if !m.live(chain) {
		return
	}
	m.Tick(now)
	m.mu.Lock()
	if m.running && m.chain == chain {
		m.request()
	}
	m.mu.Unlock()
}

func (m *Monitor) live(chain uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running && m.chain == chain
}

// Tick records one frame at timestamp now. The first tick after Start or Reset
// only stores the timestamp; ticks that do not advance time are ignored.
func (m *Monitor) Tick(now time.Time) {
	m.mu.Lock()
	if !m.hasLast {
		m.last, m.hasLast = now, true
		m.mu.Unlock()
		return
	}
	delta := now.Sub(m.last)
	m.last = now
	if delta <= 0 {
		m.mu.Unlock()
		return
	}
	frameTime := float64(delta) / float64(time.Millisecond)
	fps := 1000 / frameTime
	if len(m.window) == m.cfg.SampleSize {
		copy(m.window, m.window[1:])
		m.window = m.window[:len(m.window)-1]
	}
	m.window = append(m.window, fps)
	m.frames++
	m.metrics.FPS = fps
	m.metrics.FrameTime = frameTime

	if m.frames%m.cfg.MetricsInterval != 0 {
		m.mu.Unlock()
		return
	}

	avg, std := stat.Mean(m.window, nil), 0.0
	if len(m.window) > 1 {
		std = stat.StdDev(m.window, nil)
	}
	m.metrics.AverageFPS = avg
	m.metrics.FPSStdDev = std
	m.metrics.Timestamp = now
	m.metrics.MemoryUsage, m.metrics.GPUMemory = 0, 0
	if m.readMemory != nil {
		if heap, gpu, ok := m.readMemory(); ok {
			m.metrics.MemoryUsage, m.metrics.GPUMemory = heap, gpu
		}
	}
	if m.renderInfo != nil {
		m.metrics.DrawCalls, m.metrics.Triangles = m.renderInfo()
	}
	snapshot := m.metrics

	warnMemory := false
	if snapshot.MemoryUsage > m.cfg.MemoryWarningThreshold {
		warnMemory = !m.memHigh
		m.memHigh = true
	} else {
		m.memHigh = false
	}

	next := m.cfg.ModeFor(avg)
	changed := next != m.mode
	m.mode = next
	subs := append([]metricsSub(nil), m.subs...)
	var modeSubs []modeSub
	if changed {
		modeSubs = append(modeSubs, m.modeSubs...)
	}
	m.mu.Unlock()

	if warnMemory {
		m.log.Warn("memory usage above threshold",
			zap.Uint64("bytes", snapshot.MemoryUsage),
			zap.Uint64("threshold", m.cfg.MemoryWarningThreshold))
	}
	for _, s := range subs {
		m.call("metrics", func() { s.fn(snapshot) })
	}
	if changed {
		m.log.Info("quality mode changed", zap.Stringer("mode", next), zap.Float64("average_fps", avg))
		for _, s := range modeSubs {
			m.call("mode-change", func() { s.fn(next) })
		}
	}
}

// call runs fn, turning a panic into a logged CallbackError.
func (m *Monitor) call(kind string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("subscriber failed", zap.Error(&CallbackError{Callback: kind, Recovered: r}))
		}
	}()
	fn()
}

// SetMode forces the mode and notifies mode subscribers even if it did not change.
func (m *Monitor) SetMode(mode quality.Mode) {
	m.mu.Lock()
	m.mode = mode
	subs := append([]modeSub(nil), m.modeSubs...)
	m.mu.Unlock()
	for _, s := range subs {
		m.call("mode-change", func() { s.fn(mode) })
	}
}

// Subscribe registers fn for every published snapshot and returns its unsubscribe func.
func (m *Monitor) Subscribe(fn func(Metrics)) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := m.nextID
	m.subs = append(m.subs, metricsSub{id: id, fn: fn})
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, s := range m.subs {
			if s.id == id {
				m.subs = append(m.subs[:i], m.subs[i+1:]...)
				return
			}
		}
	}
}

// OnModeChange registers fn for mode transitions and returns its unsubscribe func.
func (m *Monitor) OnModeChange(fn func(quality.Mode)) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := m.nextID
	m.modeSubs = append(m.modeSubs, modeSub{id: id, fn: fn})
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, s := range m.modeSubs {
			if s.id == id {
				m.modeSubs = append(m.modeSubs[:i], m.modeSubs[i+1:]...)
				return
			}
		}
	}
}

// Reset clears the rolling window and frame counter. Scheduling is unaffected.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.window = m.window[:0]
	m.frames = 0
	m.hasLast = false
}

// AverageFPS returns the last computed window mean, 0 before the first publication.
func (m *Monitor) AverageFPS() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.metrics.AverageFPS
}

// Metrics returns the latest snapshot.
func (m *Monitor) Metrics() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.metrics
}

// Mode returns the current quality mode.
func (m *Monitor) Mode() quality.Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// Samples returns a copy of the rolling FPS window, oldest first.
func (m *Monitor) Samples() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.window...)
}

var (
	defaultMu      sync.RWMutex
	defaultMonitor *Monitor
)

// SetDefault installs m as the process-wide monitor returned by Default.
func SetDefault(m *Monitor) {
	defaultMu.Lock()
	defaultMonitor = m
	defaultMu.Unlock()
}

// Default returns the monitor installed with SetDefault, or nil.
func Default() *Monitor {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultMonitor
}
