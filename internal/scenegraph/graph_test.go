package scenegraph

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lod-engine/internal/geom"
)

func TestGraph_AddGetRemove(t *testing.T) {
	g := New()
	tri := &geom.Geometry{Positions: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}}

	a := g.Add("a", tri, 3, geom.At(mgl32.Vec3{1, 2, 3}))
	b := g.Add("b", nil, 0, geom.Identity())
	require.NotEqual(t, None, a)
	require.NotEqual(t, a, b)
	assert.Equal(t, 2, g.Len())

	n, ok := g.Get(a)
	require.True(t, ok)
	assert.Equal(t, "a", n.Name)
	assert.True(t, n.Visible)
	assert.Equal(t, MaterialID(3), g.Material(a))
	assert.Same(t, tri, g.Geometry(a))
	assert.Nil(t, g.Geometry(b))

	g.Remove(a)
	g.Remove(a)
	assert.False(t, g.Exists(a))
	assert.True(t, g.Exists(b))
	assert.Equal(t, 1, g.Len())

	c := g.Add("c", nil, 0, geom.Identity())
	assert.NotEqual(t, a, c, "handles are not reused")
}

func TestGraph_UnknownHandles(t *testing.T) {
	g := New()
	for _, id := range []NodeID{None, -4, 99} {
		assert.False(t, g.Exists(id))
		assert.False(t, g.Visible(id))
		_, ok := g.Transform(id)
		assert.False(t, ok)
		g.SetVisible(id, true)
		g.SetTransform(id, geom.Identity())
		g.SetGeometry(id, nil)
		g.Remove(id)
	}
	assert.Equal(t, 0, g.Len())
}

func TestGraph_MutateAndEach(t *testing.T) {
	g := New()
	a := g.Add("a", nil, 0, geom.Identity())
	b := g.Add("b", nil, 0, geom.Identity())
	c := g.Add("c", nil, 0, geom.Identity())
	g.Remove(b)

	g.SetVisible(a, false)
	g.SetTransform(c, geom.At(mgl32.Vec3{5, 0, 0}))
	tri := &geom.Geometry{Positions: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}}
	g.SetGeometry(c, tri)

	var seen []NodeID
	g.Each(func(id NodeID, n *Node) { seen = append(seen, id) })
	assert.Equal(t, []NodeID{a, c}, seen)

	assert.False(t, g.Visible(a))
	tr, ok := g.Transform(c)
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{5, 0, 0}, tr.Position)
	assert.Equal(t, 1, g.Geometry(c).TriangleCount())
}
