// Package renderer receives resolved scene lists and prepares culled draw batches.
package renderer

import (
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-scene/internal/engine/camera"
	"github.com/Faultbox/midgard-scene/internal/engine/lighting"
	"github.com/Faultbox/midgard-scene/internal/engine/model"
	"github.com/Faultbox/midgard-scene/internal/world/entity"
	"github.com/Faultbox/midgard-scene/pkg/math"
)

// DrawItem is one visible renderable.
type DrawItem struct {
	Entity   *entity.Entity
	Mesh     string
	Material string
	World    math.Mat4
	Bounds   math.AABB // World-space
}

// Frame is everything needed to draw one camera view.
type Frame struct {
	View        math.Mat4
	Projection  math.Mat4
	ClearColor  [4]float32
	Items       []DrawItem
	Culled      int
	SunDir      math.Vec3 // Toward the first directional light
	SunColor    [3]float32
	SunStrength float32
	PointLights *lighting.PointLightBuffer
}

// Queue holds the latest lists pushed by the scene resolver.
type Queue struct {
	log *zap.Logger

	renderables []*entity.Entity
	directional []*entity.Entity
	point       []*entity.Entity

	pointLights *lighting.PointLightBuffer
	updates     int
}

// NewQueue creates an empty queue. A nil logger disables logging.
func NewQueue(log *zap.Logger) *Queue {
	if log == nil {
		log = zap.NewNop()
	}
	return &Queue{
		log:         log,
		pointLights: lighting.NewPointLightBuffer(),
	}
}

// Update replaces the categorized lists. The slices are copied.
func (q *Queue) Update(renderables, directional, point []*entity.Entity) {
	q.renderables = append(q.renderables[:0], renderables...)
	q.directional = append(q.directional[:0], directional...)
	q.point = append(q.point[:0], point...)

	if dropped := q.pointLights.SetLights(lighting.FromEntities(q.point)); dropped > 0 {
		q.log.Warn("point lights truncated",
			zap.Int("dropped", dropped),
			zap.Int("max", lighting.MaxPointLights))
	}
	q.updates++
}

// Clear drops all lists.
func (q *Queue) Clear() {
	q.renderables = q.renderables[:0]
	q.directional = q.directional[:0]
	q.point = q.point[:0]
	q.pointLights.Clear()
}

// Renderables returns the last pushed renderables.
func (q *Queue) Renderables() []*entity.Entity { return q.renderables }

// DirectionalLights returns the last pushed directional lights.
func (q *Queue) DirectionalLights() []*entity.Entity { return q.directional }

// PointLights returns the last pushed point lights.
func (q *Queue) PointLights() []*entity.Entity { return q.point }

// Updates returns how many times Update has been called.
func (q *Queue) Updates() int { return q.updates }

// Build culls renderables against cam and returns the frame. A nil camera yields an
// empty frame.
func (q *Queue) Build(cam *camera.Camera) Frame {
	if cam == nil {
		return Frame{PointLights: q.pointLights}
	}

	frame := Frame{
		View:        cam.ViewMatrix(),
		Projection:  cam.ProjectionMatrix(),
		ClearColor:  cam.ClearColor(),
		PointLights: q.pointLights,
	}

	for _, e := range q.renderables {
		filter, ok := entity.Get[*model.MeshFilter](e)
		if !ok {
			continue
		}
		mr, ok := entity.Get[*model.MeshRenderer](e)
		if !ok {
			continue
		}
		world := e.Transform.WorldMatrix()
		bounds := filter.WorldBounds(world)
		if !cam.IsInViewFrustumAABB(bounds) {
			frame.Culled++
			continue
		}
		frame.Items = append(frame.Items, DrawItem{
			Entity:   e,
			Mesh:     filter.Mesh,
			Material: mr.Material,
			World:    world,
			Bounds:   bounds,
		})
	}

	if len(q.directional) > 0 {
		sun := q.directional[0]
		if l, ok := entity.Get[*lighting.Light](sun); ok {
			frame.SunDir = lighting.ToLight(sun.Transform.Rotation())
			frame.SunColor = l.Color
			frame.SunStrength = l.Intensity
		}
	}

	q.log.Debug("frame built",
		zap.Int("visible", len(frame.Items)),
		zap.Int("culled", frame.Culled),
		zap.Int("point_lights", frame.PointLights.Len()))
	return frame
}
