package primitives

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"lod-engine/internal/geom"
	"lod-engine/internal/lod"
	"lod-engine/internal/scenegraph"
)

// DefaultDir holds the YAML definitions shipped with the viewer.
const DefaultDir = "assets/primitives"

// ErrUnknownType is returned for primitive types without a mesh generator.
var ErrUnknownType = errors.New("primitives: unknown type")

type meshKey struct {
	typ        string
	resolution int
}

// Registry maps primitive type names to definitions, materials and meshes.
// Meshes are generated on first use and shared by every instance.
type Registry struct {
	mu        sync.Mutex
	defs      map[string]PrimitiveDef
	materials map[string]scenegraph.MaterialID
	colors    []Color // indexed by MaterialID-1
	cache     map[meshKey]*geom.Geometry
}

// NewRegistry returns a registry holding the built-in cube, sphere, cylinder and plane.
func NewRegistry() *Registry {
	r := &Registry{
		defs:      make(map[string]PrimitiveDef),
		materials: make(map[string]scenegraph.MaterialID),
		cache:     make(map[meshKey]*geom.Geometry),
	}
	for _, d := range builtin {
		r.define(d)
	}
	return r
}

// LoadDir reads every *.yaml file in dir, replacing definitions of the same type.
func (r *Registry) LoadDir(dir string) error {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return fmt.Errorf("primitives: %w", err)
	}
	sort.Strings(paths)
	for _, p := range paths {
		if err := r.LoadFile(p); err != nil {
			return err
		}
	}
	return nil
}

// LoadFile reads one YAML definition. Unknown keys are rejected.
func (r *Registry) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("primitives: %w", err)
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	var d PrimitiveDef
	if err := dec.Decode(&d); err != nil {
		return fmt.Errorf("primitives: %s: %w", path, err)
	}
	if _, err := generate(d.Type, 0); err != nil {
		return fmt.Errorf("primitives: %s: %w", path, err)
	}
	if _, err := ParseColor(d.Color); d.Color != "" && err != nil {
		return fmt.Errorf("primitives: %s: %w", path, err)
	}
	r.define(d)
	return nil
}

func (r *Registry) define(d PrimitiveDef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs[d.Type] = d
	c, err := ParseColor(d.Color)
	if err != nil {
		c = DefaultColor
	}
	if id, ok := r.materials[d.Type]; ok {
		r.colors[id-1] = c
		return
	}
	r.colors = append(r.colors, c)
	r.materials[d.Type] = scenegraph.MaterialID(len(r.colors))
}

// Def returns the definition of a type.
func (r *Registry) Def(typ string) (PrimitiveDef, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.defs[typ]
	return d, ok
}

// Types returns the defined type names, sorted.
func (r *Registry) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.defs))
	for t := range r.defs {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Material returns the material of a type; zero for unknown types.
func (r *Registry) Material(typ string) scenegraph.MaterialID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.materials[typ]
}

// MaterialColor returns the albedo of a material, DefaultColor for unknown ids.
func (r *Registry) MaterialColor(id scenegraph.MaterialID) Color {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id <= 0 || int(id) > len(r.colors) {
		return DefaultColor
	}
	return r.colors[id-1]
}

// Geometry returns the shared mesh for typ at resolution (0: the type's default).
func (r *Registry) Geometry(typ string, resolution int) (*geom.Geometry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if resolution <= 0 {
		resolution = r.defs[typ].Resolution
	}
	key := meshKey{typ, resolution}
	if g, ok := r.cache[key]; ok {
		return g, nil
	}
	g, err := generate(typ, resolution)
	if err != nil {
		return nil, err
	}
	r.cache[key] = g
	return g, nil
}

// Cached returns the number of generated meshes.
func (r *Registry) Cached() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cache)
}

// Spawn adds a base node of type typ to the graph at position, scaled by the
// definition's size.
func (r *Registry) Spawn(g *scenegraph.Graph, name, typ string, position mgl32.Vec3) (scenegraph.NodeID, error) {
	def, ok := r.Def(typ)
	if !ok {
		return scenegraph.None, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
	mesh, err := r.Geometry(typ, 0)
	if err != nil {
		return scenegraph.None, err
	}
	t := geom.At(position)
	if def.Size != ([3]float32{}) {
		t.Scale = mgl32.Vec3(def.Size)
	}
	return g.Add(name, mesh, r.Material(typ), t), nil
}

// Configuration builds the LOD configuration of one instance of typ whose base
// node is base. Levels with a resolution get their own mesh; the others are
// left to decimation.
func (r *Registry) Configuration(id, typ string, base scenegraph.NodeID) (lod.Configuration, error) {
	def, ok := r.Def(typ)
	if !ok {
		return lod.Configuration{}, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
	cfg := lod.Configuration{
		ObjectID:             id,
		BaseModel:            base,
		EnableFrustumCulling: def.LOD.FrustumCulling,
		MinimumScreenSize:    def.LOD.MinimumScreenSize,
		Hysteresis:           def.LOD.Hysteresis,
	}
	levels := def.LOD.Levels
	if len(levels) == 0 {
		levels = []LevelDef{{Distance: 0}}
	}
	for _, l := range levels {
		lvl := lod.Level{Distance: l.Distance, Priority: lod.Priority(strings.ToLower(l.Priority))}
		if l.Resolution > 0 {
			g, err := r.Geometry(typ, l.Resolution)
			if err != nil {
				return lod.Configuration{}, err
			}
			lvl.Geometry = g
		}
		cfg.Levels = append(cfg.Levels, lvl)
	}
	return cfg, nil
}

func generate(typ string, resolution int) (*geom.Geometry, error) {
	switch typ {
	case "cube":
		return Cube(resolution), nil
	case "sphere":
		return Sphere(resolution, resolution), nil
	case "cylinder":
		return Cylinder(resolution), nil
	case "plane":
		return Plane(resolution), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, typ)
}

// Color is an 8-bit RGBA color.
type Color [4]uint8

// DefaultColor is the albedo tint of primitives without a color.
var DefaultColor = Color{128, 128, 128, 255}

// ParseColor parses "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, fmt.Errorf("primitives: invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("primitives: invalid color %q: %w", s, err)
	}
	if len(hex) == 6 {
		v = v<<8 | 0xff
	}
	return Color{uint8(v >> 24), uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
}
