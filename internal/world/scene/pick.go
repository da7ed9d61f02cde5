package scene

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-scene/internal/engine/model"
	"github.com/Faultbox/midgard-scene/internal/engine/picking"
	"github.com/Faultbox/midgard-scene/internal/world/entity"
	"github.com/Faultbox/midgard-scene/pkg/math"
)

// PickMode selects how screen points resolve to entities.
type PickMode uint8

const (
	// PickTrace traces a camera ray against world geometry and takes the nearest
	// hit along the ray.
	PickTrace PickMode = iota
	// PickSphere tests bounding spheres and takes the intersected entity nearest
	// to the camera position.
	PickSphere
)

// ParsePickMode converts a config value to a PickMode.
func ParsePickMode(s string) (PickMode, error) {
	switch s {
	case "", "trace":
		return PickTrace, nil
	case "sphere":
		return PickSphere, nil
	default:
		return PickTrace, fmt.Errorf("unknown pick mode %q", s)
	}
}

// String returns the config name of the mode.
func (m PickMode) String() string {
	if m == PickSphere {
		return "sphere"
	}
	return "trace"
}

// Picker resolves a window pixel to an entity, or nil.
type Picker interface {
	Pick(screen math.Vec2) *entity.Entity
}

// TracePicker picks through the main camera's ray and the scene tracer.
// Ties in hit distance keep the order the tracer reported them in.
type TracePicker struct {
	Scene *Scene
}

// Pick implements Picker.
func (p TracePicker) Pick(screen math.Vec2) *entity.Entity {
	s := p.Scene
	if s.camera == nil {
		return nil
	}
	hit, ok := s.camera.Pick(screen, s.Tracer())
	if !ok {
		return nil
	}
	e, _ := s.pool.Get(hit.ID)
	return e
}

// SpherePicker picks with MousePick.
type SpherePicker struct {
	Scene *Scene
}

// Pick implements Picker.
func (p SpherePicker) Pick(screen math.Vec2) *entity.Entity {
	return p.Scene.MousePick(screen)
}

// Picker returns the picker for the configured mode.
func (s *Scene) Picker() Picker {
	if s.opts.PickMode == PickSphere {
		return SpherePicker{Scene: s}
	}
	return TracePicker{Scene: s}
}

// Tracer returns the injected tracer, or one over the current renderables' world bounds.
func (s *Scene) Tracer() picking.Tracer {
	if s.tracer != nil {
		return s.tracer
	}
	targets := make([]picking.Target, 0, len(s.renderables))
	for _, e := range s.renderables {
		f, ok := entity.Get[*model.MeshFilter](e)
		if !ok {
			continue
		}
		targets = append(targets, picking.Target{ID: e.ID, Bounds: f.WorldBounds(e.Transform.WorldMatrix())})
	}
	return &picking.BoundsTracer{Targets: targets}
}

// MousePick unprojects a point given in backbuffer pixels and tests it against the
// bounding sphere of every renderable, centered on its world-space bounds center. Among the intersected entities, the one whose
// position is nearest the camera position wins; on equal distance the earlier one
// in the renderable list is kept. Returns nil without a camera or a hit.
func (s *Scene) MousePick(screen math.Vec2) *entity.Entity {
	if s.camera == nil || len(s.renderables) == 0 {
		return nil
	}
	cam := s.camera
	ray := picking.ScreenToRay(screen, s.opts.Resolution, cam.InverseViewProjection(), cam.NearDepth(), cam.FarDepth())
	camPos := s.mainCamera.Transform.Position()

	var (
		closest *entity.Entity
		minDist float32
	)
	for _, e := range s.renderables {
		f, ok := entity.Get[*model.MeshFilter](e)
		if !ok {
			continue
		}
		center := e.Transform.WorldMatrix().TransformPoint(f.Center)
		sphere := math.Sphere{Center: center, Radius: f.BoundingRadius(e.Transform.Scale())}
		if !ray.IntersectsSphere(sphere) {
			continue
		}
		if d := e.Transform.Position().Distance(camPos); closest == nil || d < minDist {
			closest, minDist = e, d
		}
	}
	return closest
}

// SetSelectionListener registers fn to be called after every Select.
func (s *Scene) SetSelectionListener(fn func(*entity.Entity)) {
	s.onSelect = fn
}

// Select picks with the configured picker, records the result as the selection and
// notifies the listener. A miss clears the selection.
func (s *Scene) Select(screen math.Vec2) *entity.Entity {
	picked := s.Picker().Pick(screen)
	s.selected = picked
	if picked != nil {
		s.log.Debug("entity selected", zap.String("name", picked.Name), zap.Stringer("id", picked.ID))
	}
	if s.onSelect != nil {
		s.onSelect(picked)
	}
	return picked
}

// Selected returns the current selection, or nil.
func (s *Scene) Selected() *entity.Entity {
	return s.selected
}
