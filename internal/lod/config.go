package lod

import (
	"time"

	"lod-engine/internal/geom"
	"lod-engine/internal/scenegraph"
)

// Priority hints how important a level is to keep when budgets are tight.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Level is one detail level of an object. It becomes eligible once the camera
// is at least Distance away.
//
// The level is rendered by Model when set, otherwise by a node built lazily from
// Geometry and Material. When both are absent the System derives the geometry by
// decimating the base model's geometry (level 0 then renders the base model itself).
type Level struct {
	Distance     float32
	Model        scenegraph.NodeID
	Geometry     *geom.Geometry
	Material     scenegraph.MaterialID // zero means the base model's material
	Visible      bool                  // maintained by the System: this level is shown
	PolygonCount int                   // computed from the geometry when zero
	Priority     Priority
}

// Configuration describes one LOD-managed object.
type Configuration struct {
	ObjectID  string
	BaseModel scenegraph.NodeID // borrowed; provides the transform and base geometry
	Levels    []Level

	EnableFrustumCulling bool
	// EnableOcclusionCulling is stored and reported back but has no effect:
	// only screen-size culling approximates occlusion.
	EnableOcclusionCulling bool

	MinimumScreenSize float32 // pixels; smaller projections are hidden
	Hysteresis        float32 // distance buffer around level thresholds
	Disabled          bool    // hidden and skipped by Update
}

// Patch changes selected fields of a registered Configuration. Nil fields are kept.
type Patch struct {
	BaseModel              *scenegraph.NodeID
	Levels                 []Level
	EnableFrustumCulling   *bool
	EnableOcclusionCulling *bool
	MinimumScreenSize      *float32
	Hysteresis             *float32
	Disabled               *bool
}

// Settings tunes the System.
type Settings struct {
	// UpdateFrequency is the minimum time between two Update passes.
	UpdateFrequency time.Duration
	// MaxPolygons is the polygon budget; exceeding it forces low quality.
	MaxPolygons int

	EnableAutoOptimization bool
	// PerformanceThreshold is the average FPS below which quality steps down.
	PerformanceThreshold float64
	// QualityMargin is added to PerformanceThreshold to get the step-up FPS.
	QualityMargin float64
	// OptimizationInterval is how often automatic quality adjustment runs.
	OptimizationInterval time.Duration
}

// DefaultSettings returns the settings used when a field is left zero.
func DefaultSettings() Settings {
	return Settings{
		UpdateFrequency:        100 * time.Millisecond,
		MaxPolygons:            500_000,
		EnableAutoOptimization: true,
		PerformanceThreshold:   30,
		QualityMargin:          15,
		OptimizationInterval:   2 * time.Second,
	}
}

func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.UpdateFrequency < 0 {
		s.UpdateFrequency = 0
	}
	if s.MaxPolygons <= 0 {
		s.MaxPolygons = d.MaxPolygons
	}
	if s.PerformanceThreshold <= 0 {
		s.PerformanceThreshold = d.PerformanceThreshold
	}
	if s.QualityMargin < 0 {
		s.QualityMargin = 0
	}
	if s.OptimizationInterval <= 0 {
		s.OptimizationInterval = d.OptimizationInterval
	}
	return s
}
