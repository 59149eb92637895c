// Package lod selects, every frame, which detail level of each registered
// object is shown. Selection uses camera distance with hysteresis, projected
// screen size and frustum visibility; a slower loop adjusts global quality from
// the measured frame rate and the polygon budget.
package lod

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/jinzhu/copier"
	"go.uber.org/zap"

	"lod-engine/internal/clock"
	"lod-engine/internal/geom"
	"lod-engine/internal/quality"
	"lod-engine/internal/schedule"
	"lod-engine/internal/scenegraph"
)

// Camera is the view the System evaluates objects against.
type Camera interface {
	Position() mgl32.Vec3
	ViewMatrix() mgl32.Mat4 // world inverse
	ProjectionMatrix() mgl32.Mat4
	FOV() float32 // vertical, degrees
	ViewportHeight() float32
}

// Scene is the host scene graph. The System borrows base and explicit level
// nodes and only removes the nodes it adds itself.
type Scene interface {
	Exists(id scenegraph.NodeID) bool
	Transform(id scenegraph.NodeID) (geom.Transform, bool)
	SetTransform(id scenegraph.NodeID, t geom.Transform)
	SetVisible(id scenegraph.NodeID, visible bool)
	Geometry(id scenegraph.NodeID) *geom.Geometry
	Material(id scenegraph.NodeID) scenegraph.MaterialID
	Add(name string, g *geom.Geometry, m scenegraph.MaterialID, t geom.Transform) scenegraph.NodeID
	Remove(id scenegraph.NodeID)
}

// FPSSource provides the rolling average frame rate (perf.Monitor).
type FPSSource interface {
	AverageFPS() float64
}

// Option configures a System.
type Option func(*System)

// WithClock replaces the wall clock used for update throttling.
func WithClock(c clock.Clock) Option {
	return func(s *System) { s.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *System) { s.log = l }
}

// WithScheduler sets the loop that runs automatic quality adjustment.
func WithScheduler(sched schedule.Scheduler) Option {
	return func(s *System) { s.sched = sched }
}

// WithFPSSource sets where automatic adjustment reads the average frame rate.
func WithFPSSource(f FPSSource) Option {
	return func(s *System) { s.fps = f }
}

// Statistics summarizes the last Update pass.
type Statistics struct {
	TotalObjects   int
	VisibleObjects int
	TotalPolygons  int
	CurrentQuality quality.Mode
	FrustumCulled  int
	// OcclusionCulled counts objects hidden for being smaller than their
	// MinimumScreenSize, the only occlusion approximation performed.
	OcclusionCulled int
}

// CullReason says why an object is hidden.
type CullReason string

const (
	NotCulled    CullReason = ""
	CulledSize   CullReason = "size"
	CulledFrust  CullReason = "frustum"
	CulledOff    CullReason = "disabled"
	CulledNoBase CullReason = "missing-base"
)

// DebugInfo is the last computed state of one object.
type DebugInfo struct {
	Distance     float32
	ActiveLevel  int // -1 when hidden
	InFrustum    bool
	ScreenSize   float32
	PolygonCount int
	Visible      bool
	Culled       CullReason
}

type modelKind int

const (
	modelBase      modelKind = iota // the base model renders the level
	modelExplicit                   // a node supplied in Level.Model
	modelGenerated                  // a node built lazily from geometry
)

// levelModel is the resolved source of a level's node.
type levelModel struct {
	kind     modelKind
	node     scenegraph.NodeID // None for generated levels until first shown
	geometry *geom.Geometry    // generated levels only; nil while the base geometry is unavailable
	material scenegraph.MaterialID
}

type object struct {
	cfg          Configuration
	models       []levelModel
	active       int
	debug        DebugInfo
	warnedBounds bool
}

type qualitySub struct {
	id int
	fn func(quality.Mode)
}

// System owns the LOD configurations of a scene.
type System struct {
	mu       sync.Mutex
	settings Settings
	clock    clock.Clock
	log      *zap.Logger
	sched    schedule.Scheduler
	fps      FPSSource

	camera         Camera
	scene          Scene
	initialized    bool
	cancelOptimize func()

	objects map[string]*object
	order   []string

	quality    quality.Mode
	forced     bool
	lastUpdate time.Time
	hasUpdated bool
	culled     struct{ frustum, size int }

	nextSub     int
	qualitySubs []qualitySub
}

// New returns an empty System. Update does nothing until Initialize.
func New(settings Settings, opts ...Option) *System {
	s := &System{
		settings: settings.withDefaults(),
		clock:    clock.Real{},
		log:      zap.NewNop(),
		objects:  make(map[string]*object),
		quality:  quality.High,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Settings returns the effective settings.
func (s *System) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Initialize binds the camera and scene. With auto optimization enabled and a
// scheduler and FPS source configured, it also starts the adjustment interval.
func (s *System) Initialize(camera Camera, scene Scene) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.camera = camera
	s.scene = scene
	s.initialized = camera != nil && scene != nil
	for _, id := range s.order {
		s.prepare(s.objects[id])
	}
	if s.cancelOptimize == nil && s.settings.EnableAutoOptimization && s.sched != nil && s.fps != nil {
		s.cancelOptimize = s.sched.Every(s.settings.OptimizationInterval, s.Optimize)
	}
}

// RegisterObject validates and stores cfg. Levels are sorted by distance and
// levels without a model or geometry get decimated base geometry.
func (s *System) RegisterObject(cfg Configuration) error {
	cfg.Levels = append([]Level(nil), cfg.Levels...)
	if err := validate(&cfg); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[cfg.ObjectID]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateObject, cfg.ObjectID)
	}
	obj := &object{cfg: cfg, active: -1, debug: DebugInfo{ActiveLevel: -1}}
	obj.models = resolveModels(cfg)
	s.prepare(obj)
	s.objects[cfg.ObjectID] = obj
	s.order = append(s.order, cfg.ObjectID)
	return nil
}

// UnregisterObject removes the object, deletes the nodes generated for it and
// makes its base model visible again.
func (s *System) UnregisterObject(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownObject, id)
	}
	s.release(obj)
	delete(s.objects, id)
	for i, x := range s.order {
		if x == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// UpdateObject applies p to a registered object. Changing the levels or the base
// model discards generated nodes; they are rebuilt on demand.
func (s *System) UpdateObject(id string, p Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownObject, id)
	}
	next := obj.cfg
	rebuild := false
	if p.BaseModel != nil {
		next.BaseModel = *p.BaseModel
		rebuild = true
	}
	if p.Levels != nil {
		next.Levels = append([]Level(nil), p.Levels...)
		rebuild = true
	} else {
		next.Levels = append([]Level(nil), obj.cfg.Levels...)
	}
	if p.EnableFrustumCulling != nil {
		next.EnableFrustumCulling = *p.EnableFrustumCulling
	}
	if p.EnableOcclusionCulling != nil {
		next.EnableOcclusionCulling = *p.EnableOcclusionCulling
	}
	if p.MinimumScreenSize != nil {
		next.MinimumScreenSize = *p.MinimumScreenSize
	}
	if p.Hysteresis != nil {
		next.Hysteresis = *p.Hysteresis
	}
	if p.Disabled != nil {
		next.Disabled = *p.Disabled
	}
	if err := validate(&next); err != nil {
		return err
	}

	if rebuild {
		s.release(obj)
		obj.cfg = next
		obj.models = resolveModels(next)
		obj.active = -1
		obj.debug = DebugInfo{ActiveLevel: -1}
		obj.warnedBounds = false
		s.prepare(obj)
		return nil
	}
	obj.cfg = next
	if next.Disabled && s.scene != nil {
		s.hide(obj, CulledOff)
	}
	return nil
}

// Configuration returns a deep copy of the stored configuration.
func (s *System) Configuration(id string) (Configuration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[id]
	if !ok {
		return Configuration{}, false
	}
	var out Configuration
	if err := copier.CopyWithOption(&out, &obj.cfg, copier.Option{DeepCopy: true}); err != nil {
		s.log.Warn("configuration copy failed", zap.String("object", id), zap.Error(err))
		return Configuration{}, false
	}
	return out, true
}

// ObjectDebugInfo returns the last computed state of an object.
func (s *System) ObjectDebugInfo(id string) (DebugInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[id]
	if !ok {
		return DebugInfo{}, false
	}
	return obj.debug, true
}

// ObjectIDs returns the registered ids in registration order.
func (s *System) ObjectIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

// Statistics reports totals over the registered objects.
func (s *System) Statistics() Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Statistics{
		TotalObjects:    len(s.objects),
		CurrentQuality:  s.quality,
		FrustumCulled:   s.culled.frustum,
		OcclusionCulled: s.culled.size,
	}
	for _, obj := range s.objects {
		if obj.active >= 0 {
			st.VisibleObjects++
			st.TotalPolygons += obj.cfg.Levels[obj.active].PolygonCount
		}
	}
	return st
}

// Dispose releases every object and stops automatic adjustment. The System is
// empty afterwards and can be initialized again. Safe to call repeatedly.
func (s *System) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order {
		s.release(s.objects[id])
	}
	s.objects = make(map[string]*object)
	s.order = nil
	if s.cancelOptimize != nil {
		s.cancelOptimize()
		s.cancelOptimize = nil
	}
	s.camera, s.scene = nil, nil
	s.initialized = false
	s.quality = quality.High
	s.forced = false
	s.hasUpdated = false
	s.culled.frustum, s.culled.size = 0, 0
}

func validate(cfg *Configuration) error {
	switch {
	case cfg.ObjectID == "":
		return invalid("", "ObjectID", "is empty")
	case cfg.BaseModel == scenegraph.None:
		return invalid(cfg.ObjectID, "BaseModel", "is missing")
	case len(cfg.Levels) == 0:
		return invalid(cfg.ObjectID, "Levels", "is empty")
	case cfg.Hysteresis < 0:
		return invalid(cfg.ObjectID, "Hysteresis", "is negative")
	case cfg.MinimumScreenSize < 0:
		return invalid(cfg.ObjectID, "MinimumScreenSize", "is negative")
	}
	sort.SliceStable(cfg.Levels, func(i, j int) bool {
		return cfg.Levels[i].Distance < cfg.Levels[j].Distance
	})
	for i, l := range cfg.Levels {
		if l.Distance < 0 {
			return invalid(cfg.ObjectID, fmt.Sprintf("Levels[%d].Distance", i), "is negative")
		}
		if i > 0 && l.Distance == cfg.Levels[i-1].Distance {
			return invalid(cfg.ObjectID, fmt.Sprintf("Levels[%d].Distance", i), "duplicates the previous level")
		}
		if l.Priority == "" {
			cfg.Levels[i].Priority = PriorityMedium
		}
	}
	return nil
}

// resolveModels decides once, per level, which kind of node renders it.
func resolveModels(cfg Configuration) []levelModel {
	models := make([]levelModel, len(cfg.Levels))
	for i, l := range cfg.Levels {
		switch {
		case l.Model != scenegraph.None:
			models[i] = levelModel{kind: modelExplicit, node: l.Model}
		case l.Geometry != nil:
			models[i] = levelModel{kind: modelGenerated, geometry: l.Geometry, material: l.Material}
		case i == 0:
			models[i] = levelModel{kind: modelBase, node: cfg.BaseModel}
		default:
			models[i] = levelModel{kind: modelGenerated, material: l.Material}
		}
	}
	return models
}

// decimationRatio is the share of base triangles kept by a derived level.
func decimationRatio(index int) float32 {
	r := float32(1)
	for i := 0; i < index; i++ {
		r *= 0.5
	}
	return r
}

// prepare fills in derived geometry and polygon counts once the scene is bound
// and the base geometry is available. It is retried until both hold.
func (s *System) prepare(obj *object) {
	if s.scene == nil {
		return
	}
	base := s.scene.Geometry(obj.cfg.BaseModel)
	for i := range obj.models {
		m := &obj.models[i]
		lvl := &obj.cfg.Levels[i]
		if m.kind == modelGenerated && m.geometry == nil && base.TriangleCount() > 0 {
			m.geometry = base.Decimate(decimationRatio(i))
		}
		if m.kind == modelGenerated && m.material == 0 {
			m.material = s.scene.Material(obj.cfg.BaseModel)
		}
		if lvl.PolygonCount > 0 {
			continue
		}
		switch m.kind {
		case modelBase:
			lvl.PolygonCount = base.TriangleCount()
		case modelExplicit:
			lvl.PolygonCount = s.scene.Geometry(m.node).TriangleCount()
		case modelGenerated:
			lvl.PolygonCount = m.geometry.TriangleCount()
		}
	}
}

// release hides explicit level nodes, removes generated ones and shows the base model.
func (s *System) release(obj *object) {
	if obj == nil || s.scene == nil {
		return
	}
	for i := range obj.models {
		m := &obj.models[i]
		switch m.kind {
		case modelGenerated:
			if m.node != scenegraph.None {
				s.scene.Remove(m.node)
				m.node = scenegraph.None
			}
		case modelExplicit:
			s.scene.SetVisible(m.node, false)
		}
	}
	s.scene.SetVisible(obj.cfg.BaseModel, true)
}
