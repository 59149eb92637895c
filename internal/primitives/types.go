package primitives

// PrimitiveDef is the YAML definition of a primitive (e.g. assets/primitives/cube.yaml):
// default size and color, base mesh resolution and its detail levels.
type PrimitiveDef struct {
	Type       string     `yaml:"type"`
	Size       [3]float32 `yaml:"size,omitempty"`
	Color      string     `yaml:"color,omitempty"`
	Resolution int        `yaml:"resolution,omitempty"`
	LOD        LODDef     `yaml:"lod,omitempty"`
}

// LODDef is the detail preset applied to every instance of a primitive.
type LODDef struct {
	Hysteresis        float32    `yaml:"hysteresis,omitempty"`
	MinimumScreenSize float32    `yaml:"minimum_screen_size,omitempty"`
	FrustumCulling    bool       `yaml:"frustum_culling,omitempty"`
	Levels            []LevelDef `yaml:"levels,omitempty"`
}

// LevelDef is one detail level. A zero Resolution leaves the level to be
// derived from the base mesh by decimation.
type LevelDef struct {
	Distance   float32 `yaml:"distance"`
	Resolution int     `yaml:"resolution,omitempty"`
	Priority   string  `yaml:"priority,omitempty"`
}

// builtin definitions, used for types with no YAML file.
var builtin = []PrimitiveDef{
	{
		Type: "cube", Color: "#808080",
		LOD: LODDef{Hysteresis: 2, MinimumScreenSize: 2, FrustumCulling: true,
			Levels: []LevelDef{{Distance: 0}, {Distance: 40}}},
	},
	{
		Type: "sphere", Color: "#8c9db5", Resolution: 24,
		LOD: LODDef{Hysteresis: 2, MinimumScreenSize: 2, FrustumCulling: true,
			Levels: []LevelDef{
				{Distance: 0, Priority: "high"},
				{Distance: 20, Resolution: 12},
				{Distance: 50, Resolution: 6, Priority: "low"},
			}},
	},
	{
		Type: "cylinder", Color: "#b59a7a", Resolution: 24,
		LOD: LODDef{Hysteresis: 2, MinimumScreenSize: 2, FrustumCulling: true,
			Levels: []LevelDef{
				{Distance: 0},
				{Distance: 25, Resolution: 10},
				{Distance: 60},
			}},
	},
	{
		Type: "plane", Color: "#5f7f5a", Resolution: 8,
		LOD: LODDef{FrustumCulling: true,
			Levels: []LevelDef{{Distance: 0}, {Distance: 80, Resolution: 1}}},
	},
}
