package engineconfig

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"lod-engine/internal/lod"
	"lod-engine/internal/perf"
)

// EngineConfigPath is the path to the engine config file, relative to the process working directory.
const EngineConfigPath = "config/engine.json"

// Environment overrides applied by ApplyEnv.
const (
	EnvMetricsAddr = "LOD_ENGINE_METRICS_ADDR"
	EnvLogLevel    = "LOD_ENGINE_LOG_LEVEL"
	EnvMaxPolygons = "LOD_ENGINE_MAX_POLYGONS"
)

// EnginePrefs holds viewer preferences and the tuning of the performance
// monitor and the LOD system. Persisted across runs.
type EnginePrefs struct {
	ShowFPS      bool   `json:"show_fps"`
	ShowMemAlloc bool   `json:"show_memalloc"`
	ShowLODStats bool   `json:"show_lod_stats"`
	GridVisible  bool   `json:"grid_visible"`
	MetricsAddr  string `json:"metrics_addr,omitempty"` // empty disables the /metrics endpoint
	LogLevel     string `json:"log_level,omitempty"`

	Perf perf.Config `json:"perf"`
	LOD  LODPrefs    `json:"lod"`
}

// LODPrefs is the JSON form of lod.Settings; durations are milliseconds.
type LODPrefs struct {
	UpdateFrequencyMS      int     `json:"update_frequency_ms"`
	MaxPolygons            int     `json:"max_polygons"`
	EnableAutoOptimization bool    `json:"enable_auto_optimization"`
	PerformanceThreshold   float64 `json:"performance_threshold"`
	QualityMargin          float64 `json:"quality_margin"`
	OptimizationIntervalMS int     `json:"optimization_interval_ms"`
}

// Settings converts the preferences to lod.Settings.
func (p LODPrefs) Settings() lod.Settings {
	return lod.Settings{
		UpdateFrequency:        time.Duration(p.UpdateFrequencyMS) * time.Millisecond,
		MaxPolygons:            p.MaxPolygons,
		EnableAutoOptimization: p.EnableAutoOptimization,
		PerformanceThreshold:   p.PerformanceThreshold,
		QualityMargin:          p.QualityMargin,
		OptimizationInterval:   time.Duration(p.OptimizationIntervalMS) * time.Millisecond,
	}
}

// Default returns default engine preferences (FPS overlay on, grid on, no metrics endpoint).
func Default() EnginePrefs {
	s := lod.DefaultSettings()
	return EnginePrefs{
		ShowFPS:      true,
		ShowMemAlloc: false,
		ShowLODStats: true,
		GridVisible:  true,
		LogLevel:     "info",
		Perf:         perf.DefaultConfig(),
		LOD: LODPrefs{
			UpdateFrequencyMS:      int(s.UpdateFrequency / time.Millisecond),
			MaxPolygons:            s.MaxPolygons,
			EnableAutoOptimization: s.EnableAutoOptimization,
			PerformanceThreshold:   s.PerformanceThreshold,
			QualityMargin:          s.QualityMargin,
			OptimizationIntervalMS: int(s.OptimizationInterval / time.Millisecond),
		},
	}
}

// Load reads engine preferences from config/engine.json. If the file is missing or invalid,
// returns Default() and does not create a file.
func Load() (EnginePrefs, error) {
	return LoadFile(EngineConfigPath)
}

// LoadFile is Load for an explicit path. Keys absent from the file keep their defaults.
func LoadFile(path string) (EnginePrefs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), nil
	}
	p := Default()
	if err := json.Unmarshal(data, &p); err != nil {
		return Default(), nil
	}
	return p, nil
}

// Save writes engine preferences to config/engine.json, creating the config directory if needed.
func Save(p EnginePrefs) error {
	return SaveFile(EngineConfigPath, p)
}

// SaveFile is Save for an explicit path.
func SaveFile(path string, p EnginePrefs) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overrides p from the environment. A malformed polygon budget is ignored.
func ApplyEnv(p EnginePrefs) EnginePrefs {
	if v, ok := os.LookupEnv(EnvMetricsAddr); ok {
		p.MetricsAddr = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		p.LogLevel = v
	}
	if v, ok := os.LookupEnv(EnvMaxPolygons); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.LOD.MaxPolygons = n
		}
	}
	return p
}
