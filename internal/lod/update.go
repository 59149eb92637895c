package lod

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"lod-engine/internal/geom"
	"lod-engine/internal/quality"
	"lod-engine/internal/scenegraph"
)

// view is the camera state captured once per Update pass.
type view struct {
	position       mgl32.Vec3
	frustum        geom.Frustum
	fov            float32
	viewportHeight float32
	distanceScale  float32
}

// Update runs one LOD pass if at least Settings.UpdateFrequency has passed since
// the previous one, and reports whether it ran. Calling it every frame is fine.
func (s *System) Update() bool {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return false
	}
	now := s.clock.Now()
	if s.hasUpdated && now.Sub(s.lastUpdate) < s.settings.UpdateFrequency {
		s.mu.Unlock()
		return false
	}
	s.lastUpdate, s.hasUpdated = now, true

	v := view{
		position:       s.camera.Position(),
		frustum:        geom.FrustumFromMatrix(s.camera.ProjectionMatrix().Mul4(s.camera.ViewMatrix())),
		fov:            s.camera.FOV(),
		viewportHeight: s.camera.ViewportHeight(),
		distanceScale:  distanceScale(s.quality),
	}
	s.culled.frustum, s.culled.size = 0, 0
	total := 0
	for _, id := range s.order {
		obj := s.objects[id]
		s.evaluate(obj, v)
		if obj.active >= 0 {
			total += obj.cfg.Levels[obj.active].PolygonCount
		}
	}

	var changed []func()
	if total > s.settings.MaxPolygons && s.quality != quality.Low {
		s.log.Warn("polygon budget exceeded, forcing low quality",
			zap.Int("polygons", total), zap.Int("budget", s.settings.MaxPolygons))
		changed = s.setQualityLocked(quality.Low)
	}
	s.mu.Unlock()
	s.notify(changed)
	return true
}

// evaluate culls obj or picks and applies its level. Caller holds the lock.
func (s *System) evaluate(obj *object, v view) {
	if obj.cfg.Disabled {
		s.hide(obj, CulledOff)
		return
	}
	base, ok := s.scene.Transform(obj.cfg.BaseModel)
	if !ok {
		s.hide(obj, CulledNoBase)
		return
	}
	s.prepare(obj)

	d := base.Position.Sub(v.position).Len()
	obj.debug.Distance = d
	obj.debug.InFrustum = true
	obj.debug.ScreenSize = math32.MaxFloat32

	local, err := s.scene.Geometry(obj.cfg.BaseModel).BoundingSphere()
	if err != nil {
		// Streaming or empty geometry: treat as visible and large.
		if !obj.warnedBounds {
			s.log.Debug("bounding sphere unavailable, assuming visible",
				zap.String("object", obj.cfg.ObjectID), zap.Error(err))
			obj.warnedBounds = true
		}
	} else {
		obj.warnedBounds = false
		world := local.Transform(base)
		obj.debug.InFrustum = v.frustum.IntersectsSphere(world)
		obj.debug.ScreenSize = geom.ScreenSize(world.Radius, d, v.fov, v.viewportHeight)
	}

	switch {
	case obj.debug.ScreenSize < obj.cfg.MinimumScreenSize:
		s.culled.size++
		s.hide(obj, CulledSize)
		return
	case obj.cfg.EnableFrustumCulling && !obj.debug.InFrustum:
		s.culled.frustum++
		s.hide(obj, CulledFrust)
		return
	}

	var idx int
	if s.forced {
		idx = forcedIndex(s.quality, len(obj.cfg.Levels))
	} else {
		idx = selectLevel(obj.cfg.Levels, d*v.distanceScale, obj.active, obj.cfg.Hysteresis)
	}
	s.apply(obj, idx, base)
}

// selectLevel picks the deepest level whose threshold distance has been reached,
// then holds on to current until distance clears the crossed boundary by more
// than hysteresis. current < 0 means no level is shown.
func selectLevel(levels []Level, distance float32, current int, hysteresis float32) int {
	target := 0
	for i, l := range levels {
		if distance >= l.Distance {
			target = i
		}
	}
	if current < 0 || current >= len(levels) || target == current {
		return target
	}
	if target > current {
		for target > current && distance <= levels[target].Distance+hysteresis {
			target--
		}
		return target
	}
	for target < current && distance >= levels[target+1].Distance-hysteresis {
		target++
	}
	return target
}

// forcedIndex maps a quality onto a fixed level index for SetQualityLevel.
func forcedIndex(q quality.Mode, levels int) int {
	switch q {
	case quality.Low:
		return levels - 1
	case quality.Medium:
		return min(1, levels-1)
	default:
		return 0
	}
}

// distanceScale makes lower qualities reach coarser levels sooner.
func distanceScale(q quality.Mode) float32 {
	switch q {
	case quality.Low:
		return 2
	case quality.Medium:
		return 1.5
	default:
		return 1
	}
}

// apply shows level idx and hides every other node of obj in one step.
// A level whose node cannot be produced yet falls back to level 0.
func (s *System) apply(obj *object, idx int, base geom.Transform) {
	node := s.resolve(obj, idx, base)
	if node == scenegraph.None && idx != 0 {
		idx = 0
		node = s.resolve(obj, 0, base)
	}
	if node == scenegraph.None {
		node = obj.cfg.BaseModel
	}

	for i := range obj.models {
		m := obj.models[i]
		if i != idx && m.node != scenegraph.None && m.node != obj.cfg.BaseModel && m.node != node {
			s.scene.SetVisible(m.node, false)
		}
		obj.cfg.Levels[i].Visible = i == idx
	}
	if node != obj.cfg.BaseModel {
		s.scene.SetTransform(node, base)
	}
	s.scene.SetVisible(node, true)
	s.scene.SetVisible(obj.cfg.BaseModel, node == obj.cfg.BaseModel)

	obj.active = idx
	obj.debug.ActiveLevel = idx
	obj.debug.PolygonCount = obj.cfg.Levels[idx].PolygonCount
	obj.debug.Visible = true
	obj.debug.Culled = NotCulled
}

// resolve returns the node rendering level idx, building generated nodes on first use.
func (s *System) resolve(obj *object, idx int, base geom.Transform) scenegraph.NodeID {
	m := &obj.models[idx]
	switch m.kind {
	case modelBase:
		return obj.cfg.BaseModel
	case modelExplicit:
		if s.scene.Exists(m.node) {
			return m.node
		}
		return scenegraph.None
	}
	if m.node != scenegraph.None {
		return m.node
	}
	if m.geometry.TriangleCount() == 0 {
		return scenegraph.None
	}
	name := fmt.Sprintf("%s#lod%d", obj.cfg.ObjectID, idx)
	m.node = s.scene.Add(name, m.geometry, m.material, base)
	s.scene.SetVisible(m.node, false)
	return m.node
}

// hide makes every node of obj invisible.
func (s *System) hide(obj *object, reason CullReason) {
	for i := range obj.models {
		if n := obj.models[i].node; n != scenegraph.None {
			s.scene.SetVisible(n, false)
		}
		obj.cfg.Levels[i].Visible = false
	}
	s.scene.SetVisible(obj.cfg.BaseModel, false)
	obj.active = -1
	obj.debug.ActiveLevel = -1
	obj.debug.PolygonCount = 0
	obj.debug.Visible = false
	obj.debug.Culled = reason
}
