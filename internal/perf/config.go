// Package perf samples frame timing, keeps a rolling FPS window and derives a
// quality mode from it. A Monitor is owned by the render loop driver; Default
// is only a convenience for collaborators that cannot be handed one.
package perf

import (
	"time"

	"lod-engine/internal/quality"
)

// Config controls sampling and mode thresholds.
type Config struct {
	TargetFPS              float64 `json:"target_fps"`
	LowFPSThreshold        float64 `json:"low_fps_threshold"`
	MediumFPSThreshold     float64 `json:"medium_fps_threshold"`
	MemoryWarningThreshold uint64  `json:"memory_warning_threshold"` // bytes
	SampleSize             int     `json:"sample_size"`
	// MetricsInterval is the number of frames between metric publications.
	MetricsInterval int `json:"metrics_interval"`
}

// DefaultConfig returns thresholds for a 60 FPS target.
func DefaultConfig() Config {
	return Config{
		TargetFPS:              60,
		LowFPSThreshold:        30,
		MediumFPSThreshold:     45,
		MemoryWarningThreshold: 512 << 20,
		SampleSize:             60,
		MetricsInterval:        10,
	}
}

// withDefaults fills zero or invalid fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TargetFPS <= 0 {
		c.TargetFPS = d.TargetFPS
	}
	if c.LowFPSThreshold <= 0 {
		c.LowFPSThreshold = d.LowFPSThreshold
	}
	if c.MediumFPSThreshold <= 0 {
		c.MediumFPSThreshold = d.MediumFPSThreshold
	}
	if c.MediumFPSThreshold < c.LowFPSThreshold {
		c.MediumFPSThreshold = c.LowFPSThreshold
	}
	if c.MemoryWarningThreshold == 0 {
		c.MemoryWarningThreshold = d.MemoryWarningThreshold
	}
	if c.SampleSize <= 0 {
		c.SampleSize = d.SampleSize
	}
	if c.MetricsInterval <= 0 {
		c.MetricsInterval = d.MetricsInterval
	}
	return c
}

// ModeFor maps an average FPS onto a quality mode using the configured thresholds.
func (c Config) ModeFor(averageFPS float64) quality.Mode {
	switch {
	case averageFPS < c.LowFPSThreshold:
		return quality.Low
	case averageFPS < c.MediumFPSThreshold:
		return quality.Medium
	default:
		return quality.High
	}
}

// Metrics is one published snapshot.
type Metrics struct {
	FPS         float64 // instantaneous, from the last frame
	FrameTime   float64 // milliseconds
	MemoryUsage uint64  // heap bytes, 0 when unknown
	DrawCalls   int
	Triangles   int
	AverageFPS  float64 // mean of the rolling window
	GPUMemory   uint64  // bytes, 0 when the platform does not expose it
	FPSStdDev   float64
	Timestamp   time.Time
}
