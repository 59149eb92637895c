package mapgen

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lod-engine/internal/lod"
	"lod-engine/internal/primitives"
	"lod-engine/internal/scenegraph"
)

func smallField() FieldOptions {
	opts := DefaultFieldOptions()
	opts.Width, opts.Depth = 12, 10
	opts.Seed = 42
	return opts
}

func TestGenerateField_Deterministic(t *testing.T) {
	a := GenerateField(smallField())
	b := GenerateField(smallField())
	require.NotEmpty(t, a)
	assert.Equal(t, a, b)

	other := smallField()
	other.Seed = 43
	assert.NotEqual(t, a, GenerateField(other))
}

func TestGenerateField_Bounds(t *testing.T) {
	opts := smallField()
	opts.Density = 1
	ps := GenerateField(opts)
	assert.Len(t, ps, opts.Width*opts.Depth, "full density fills every cell")

	halfX := float32(opts.Width) * opts.CellSize / 2
	halfZ := float32(opts.Depth) * opts.CellSize / 2
	seen := make(map[string]bool)
	for _, p := range ps {
		assert.Contains(t, opts.Types, p.Type)
		assert.LessOrEqual(t, math32.Abs(p.Position.X()), halfX)
		assert.LessOrEqual(t, math32.Abs(p.Position.Z()), halfZ)
		assert.GreaterOrEqual(t, p.Scale, opts.MinScale)
		assert.LessOrEqual(t, p.Scale, opts.MaxScale+1e-4)
		assert.InDelta(t, p.Scale/2, p.Position.Y(), 1e-5)
		assert.False(t, seen[p.ID], "duplicate id %s", p.ID)
		seen[p.ID] = true
	}
}

func TestGenerateField_Empty(t *testing.T) {
	opts := smallField()
	opts.Density = 0
	assert.Empty(t, GenerateField(opts))

	opts = smallField()
	opts.Types = nil
	assert.Empty(t, GenerateField(opts))

	opts = smallField()
	opts.Width = 0
	assert.Empty(t, GenerateField(opts))
}

func TestPopulate(t *testing.T) {
	g := scenegraph.New()
	sys := lod.New(lod.Settings{})
	sys.Initialize(scenegraph.NewCamera(mgl32.Vec3{0, 10, 60}, mgl32.Vec3{}), g)
	ps := GenerateField(smallField())

	ids, err := Populate(g, primitives.NewRegistry(), sys, ps)
	require.NoError(t, err)
	assert.Len(t, ids, len(ps))
	assert.Equal(t, len(ps), g.Len())
	assert.Equal(t, ids, sys.ObjectIDs())

	n, ok := g.Get(1)
	require.True(t, ok)
	assert.Equal(t, ps[0].ID, n.Name)
	assert.InDelta(t, ps[0].Scale, n.Transform.Scale.X(), 1e-5)

	require.True(t, sys.Update())
	st := sys.Statistics()
	assert.Equal(t, len(ps), st.TotalObjects)
	assert.Positive(t, st.VisibleObjects)
}

func TestPopulate_StopsOnUnknownType(t *testing.T) {
	g := scenegraph.New()
	sys := lod.New(lod.Settings{})
	ps := []Placement{
		{ID: "a", Type: "cube", Position: mgl32.Vec3{1, 0, 0}, Scale: 1},
		{ID: "b", Type: "torus"},
		{ID: "c", Type: "cube"},
	}

	ids, err := Populate(g, primitives.NewRegistry(), sys, ps)
	assert.ErrorIs(t, err, primitives.ErrUnknownType)
	assert.Equal(t, []string{"a"}, ids)
	assert.Equal(t, 1, g.Len())
}

func TestNoise(t *testing.T) {
	for i := 0; i < 100; i++ {
		v := fractalValueNoise2D(float32(i)*0.37, float32(i)*0.11, 7, 4, 2, 0.5)
		assert.GreaterOrEqual(t, v, float32(0))
		assert.LessOrEqual(t, v, float32(1))
	}
	assert.Equal(t, hash2D(3, 4, 5), hash2D(3, 4, 5))
	assert.Equal(t, float32(0), smoothStep(-1))
	assert.Equal(t, float32(1), smoothStep(2))
	assert.Equal(t, float32(0.5), smoothStep(0.5))
}
