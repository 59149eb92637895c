package mapgen

import (
	"fmt"
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"lod-engine/internal/lod"
	"lod-engine/internal/primitives"
	"lod-engine/internal/scenegraph"
)

// FieldOptions controls procedural prop placement on a grid.
// Width/Depth are in cells; CellSize is the world size of one cell on X/Z.
// Density in [0,1] is roughly the share of cells that receive a prop.
// Seed controls randomness; Seed == 0 uses a time-based seed.
// Octaves, Frequency, Lacunarity, and Gain control the fractal noise shape.
type FieldOptions struct {
	Width    int
	Depth    int
	CellSize float32
	Density  float32
	Types    []string // prop types, picked per cell by a second noise channel
	MinScale float32
	MaxScale float32

	Seed       int64
	Octaves    int
	Frequency  float32
	Lacunarity float32
	Gain       float32
}

// DefaultFieldOptions returns a 40×40 field of mixed props.
func DefaultFieldOptions() FieldOptions {
	return FieldOptions{
		Width:      40,
		Depth:      40,
		CellSize:   4,
		Density:    0.35,
		Types:      []string{"sphere", "cube", "cylinder"},
		MinScale:   0.6,
		MaxScale:   2.2,
		Seed:       0,
		Octaves:    4,
		Frequency:  0.12,
		Lacunarity: 2.0,
		Gain:       0.5,
	}
}

// Placement is one generated prop. ID is derived from the seed and cell, so the
// same options always produce the same ids.
type Placement struct {
	ID       string
	Type     string
	Position mgl32.Vec3
	Scale    float32
}

// GenerateField places props on cells where fractal noise passes the density
// threshold. Props sit on Y=0, jittered inside their cell, and the field is
// centered around the world origin on XZ.
func GenerateField(opts FieldOptions) []Placement {
	if opts.Width <= 0 || opts.Depth <= 0 || len(opts.Types) == 0 {
		return nil
	}
	if opts.CellSize <= 0 {
		opts.CellSize = 1
	}
	if opts.Density <= 0 {
		return nil
	}
	if opts.MinScale <= 0 {
		opts.MinScale = 1
	}
	if opts.MaxScale < opts.MinScale {
		opts.MaxScale = opts.MinScale
	}
	if opts.Octaves <= 0 {
		opts.Octaves = 1
	}
	if opts.Frequency <= 0 {
		opts.Frequency = 0.05
	}
	if opts.Lacunarity <= 0 {
		opts.Lacunarity = 2.0
	}
	if opts.Gain <= 0 {
		opts.Gain = 0.5
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	halfCell := opts.CellSize * 0.5
	startX := -float32(opts.Width)*halfCell + halfCell
	startZ := -float32(opts.Depth)*halfCell + halfCell
	threshold := 1 - opts.Density

	var out []Placement
	for z := 0; z < opts.Depth; z++ {
		for x := 0; x < opts.Width; x++ {
			nx := float32(x) * opts.Frequency
			nz := float32(z) * opts.Frequency
			// Value noise clusters around 0.5; stretch it so Density maps to a share of cells.
			n := fractalValueNoise2D(nx, nz, seed, opts.Octaves, opts.Lacunarity, opts.Gain)
			n = clamp01((n-0.5)*2.5 + 0.5)
			if !isFinite(n) || n < threshold {
				continue
			}

			kind := hash2D(int32(x), int32(z), int32(seed)^0x5bd1e995)
			typ := opts.Types[int(kind*float32(len(opts.Types)))%len(opts.Types)]
			jx := (hash2D(int32(x), int32(z), int32(seed)+17) - 0.5) * opts.CellSize * 0.6
			jz := (hash2D(int32(x), int32(z), int32(seed)+31) - 0.5) * opts.CellSize * 0.6
			scale := opts.MinScale + (opts.MaxScale-opts.MinScale)*(n-threshold)/math32.Max(opts.Density, 1e-3)

			out = append(out, Placement{
				ID:   cellID(seed, x, z, typ),
				Type: typ,
				Position: mgl32.Vec3{
					startX + float32(x)*opts.CellSize + jx,
					scale * 0.5, // bottom at Y=0
					startZ + float32(z)*opts.CellSize + jz,
				},
				Scale: scale,
			})
		}
	}
	return out
}

func cellID(seed int64, x, z int, typ string) string {
	u := uuid.NewSHA1(uuid.NameSpaceOID, fmt.Appendf(nil, "%d/%d/%d", seed, x, z))
	return typ + "-" + u.String()[:8]
}

// Populate spawns every placement into the graph and registers it with the
// LOD system using the primitive's preset. It stops at the first failure and
// returns the ids registered so far.
func Populate(g *scenegraph.Graph, reg *primitives.Registry, sys *lod.System, placements []Placement) ([]string, error) {
	ids := make([]string, 0, len(placements))
	for _, p := range placements {
		node, err := reg.Spawn(g, p.ID, p.Type, p.Position)
		if err != nil {
			return ids, fmt.Errorf("mapgen: spawn %s: %w", p.ID, err)
		}
		if p.Scale > 0 {
			t, _ := g.Transform(node)
			t.Scale = t.Scale.Mul(p.Scale)
			g.SetTransform(node, t)
		}
		cfg, err := reg.Configuration(p.ID, p.Type, node)
		if err != nil {
			g.Remove(node)
			return ids, fmt.Errorf("mapgen: configure %s: %w", p.ID, err)
		}
		if err := sys.RegisterObject(cfg); err != nil {
			g.Remove(node)
			return ids, fmt.Errorf("mapgen: register %s: %w", p.ID, err)
		}
		ids = append(ids, p.ID)
	}
	return ids, nil
}
