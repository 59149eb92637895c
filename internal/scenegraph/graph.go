// Package scenegraph is the host scene: a flat arena of nodes addressed by
// integer handles. Handles stay valid until the node is removed and are never
// reused, so subsystems can hold them without owning the node.
package scenegraph

import (
	"sync"

	"lod-engine/internal/geom"
)

// NodeID is a handle into a Graph. The zero value refers to no node.
type NodeID int

// None is the absent node.
const None NodeID = 0

// MaterialID identifies a material owned by the renderer. Zero is the default material.
type MaterialID int

// Node is one renderable entry. Geometry may be nil while an asset is still loading.
type Node struct {
	Name      string
	Transform geom.Transform
	Visible   bool
	Geometry  *geom.Geometry
	Material  MaterialID
	removed   bool
}

// Graph holds nodes in insertion order; node i has handle i+1.
type Graph struct {
	mu    sync.RWMutex
	nodes []Node
	live  int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{}
}

// Add appends a visible node and returns its handle.
func (g *Graph) Add(name string, geometry *geom.Geometry, material MaterialID, t geom.Transform) NodeID {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nodes = append(g.nodes, Node{
		Name:      name,
		Transform: t,
		Visible:   true,
		Geometry:  geometry,
		Material:  material,
	})
	g.live++
	return NodeID(len(g.nodes))
}

// Remove drops the node. Removing an unknown or removed node is a no-op.
func (g *Graph) Remove(id NodeID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := g.node(id)
	if n == nil {
		return
	}
	*n = Node{removed: true}
	g.live--
}

// Exists reports whether id refers to a live node.
func (g *Graph) Exists(id NodeID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.node(id) != nil
}

// Get returns a copy of the node.
func (g *Graph) Get(id NodeID) (Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n := g.node(id)
	if n == nil {
		return Node{}, false
	}
	return *n, true
}

// Transform returns the node's world transform.
func (g *Graph) Transform(id NodeID) (geom.Transform, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n := g.node(id)
	if n == nil {
		return geom.Transform{}, false
	}
	return n.Transform, true
}

// SetTransform replaces the node's world transform.
func (g *Graph) SetTransform(id NodeID, t geom.Transform) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n := g.node(id); n != nil {
		n.Transform = t
	}
}

// Visible reports whether the node will be drawn.
func (g *Graph) Visible(id NodeID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n := g.node(id)
	return n != nil && n.Visible
}

// SetVisible shows or hides the node.
func (g *Graph) SetVisible(id NodeID, visible bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n := g.node(id); n != nil {
		n.Visible = visible
	}
}

// Geometry returns the node's geometry, nil while unavailable.
func (g *Graph) Geometry(id NodeID) *geom.Geometry {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if n := g.node(id); n != nil {
		return n.Geometry
	}
	return nil
}

// SetGeometry replaces the node's geometry (e.g. when a streamed asset arrives).
func (g *Graph) SetGeometry(id NodeID, geometry *geom.Geometry) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n := g.node(id); n != nil {
		n.Geometry = geometry
	}
}

// Material returns the node's material.
func (g *Graph) Material(id NodeID) MaterialID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if n := g.node(id); n != nil {
		return n.Material
	}
	return 0
}

// Len returns the number of live nodes.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.live
}

// Each calls fn for every live node in insertion order. fn must not modify the graph.
func (g *Graph) Each(fn func(id NodeID, n *Node)) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for i := range g.nodes {
		if g.nodes[i].removed {
			continue
		}
		fn(NodeID(i+1), &g.nodes[i])
	}
}

// node returns the live node for id or nil. Caller holds the lock.
func (g *Graph) node(id NodeID) *Node {
	i := int(id) - 1
	if i < 0 || i >= len(g.nodes) || g.nodes[i].removed {
		return nil
	}
	return &g.nodes[i]
}
