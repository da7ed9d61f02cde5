// Package scene resolves the live entity set into renderer-facing lists each frame,
// picks entities from screen coordinates, and saves and loads scene files.
package scene

import (
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-scene/internal/engine/camera"
	"github.com/Faultbox/midgard-scene/internal/engine/lighting"
	"github.com/Faultbox/midgard-scene/internal/engine/model"
	"github.com/Faultbox/midgard-scene/internal/engine/picking"
	"github.com/Faultbox/midgard-scene/internal/engine/viewport"
	"github.com/Faultbox/midgard-scene/internal/world/entity"
	"github.com/Faultbox/midgard-scene/internal/world/resource"
	"github.com/Faultbox/midgard-scene/pkg/math"
)

// DefaultExtension is the scene file suffix used when Options leaves it empty.
const DefaultExtension = ".scene"

// Sink receives the categorized lists after every resolve.
type Sink interface {
	Update(renderables, directional, point []*entity.Entity)
	Clear()
}

// Deps are the collaborators a scene works against.
type Deps struct {
	Pool      *entity.Pool
	Sink      Sink
	Viewport  viewport.Provider // Optional; defaults to an empty rectangle
	Resources *resource.Cache
	Materials *resource.MaterialPool
	Tracer    picking.Tracer // Optional; defaults to tracing renderable world bounds
	Logger    *zap.Logger
}

// Options configures scene behavior.
type Options struct {
	ReverseZ   bool
	Resolution math.Vec2 // Backbuffer size used by MousePick
	Extension  string
	PickMode   PickMode
}

// Scene owns the per-frame categorized view of the entity pool.
type Scene struct {
	pool      *entity.Pool
	sink      Sink
	viewport  viewport.Provider
	resources *resource.Cache
	materials *resource.MaterialPool
	tracer    picking.Tracer
	log       *zap.Logger
	opts      Options
	registry  *entity.Registry

	ambient     math.Vec3
	mainCamera  *entity.Entity
	camera      *camera.Camera
	renderables []*entity.Entity
	directional []*entity.Entity
	point       []*entity.Entity

	selected *entity.Entity
	onSelect func(*entity.Entity)
}

// New creates a scene over the given collaborators.
func New(deps Deps, opts Options) *Scene {
	if opts.Extension == "" {
		opts.Extension = DefaultExtension
	}
	if deps.Viewport == nil {
		deps.Viewport = viewport.NewState(viewport.Rect{})
	}
	if opts.Resolution == (math.Vec2{}) {
		if vp := deps.Viewport.Viewport(); vp.Valid() {
			opts.Resolution = vp.Size()
		}
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	s := &Scene{
		pool:      deps.Pool,
		sink:      deps.Sink,
		viewport:  deps.Viewport,
		resources: deps.Resources,
		materials: deps.Materials,
		tracer:    deps.Tracer,
		log:       log,
		opts:      opts,
	}
	s.registry = s.newRegistry()
	return s
}

func (s *Scene) newRegistry() *entity.Registry {
	reg := entity.NewRegistry()
	reg.Register(camera.ComponentName, func(e *entity.Entity) entity.Serializable { return s.newCamera(e) })
	reg.Register(lighting.ComponentName, func(*entity.Entity) entity.Serializable { return &lighting.Light{} })
	reg.Register(model.MeshFilterName, func(*entity.Entity) entity.Serializable { return &model.MeshFilter{} })
	reg.Register(model.MeshRendererName, func(*entity.Entity) entity.Serializable { return &model.MeshRenderer{} })
	reg.Register(model.SkyboxName, func(*entity.Entity) entity.Serializable { return &model.Skybox{} })
	return reg
}

func (s *Scene) newCamera(e *entity.Entity) *camera.Camera {
	return camera.New(e.Transform, s.viewport, camera.Options{
		ReverseZ: s.opts.ReverseZ,
		Logger:   s.log.Named("camera"),
	})
}

// AddCamera attaches a camera configured for this scene to e.
func (s *Scene) AddCamera(e *entity.Entity) *camera.Camera {
	return e.AddComponent(s.newCamera(e)).(*camera.Camera)
}

// Registry returns the component registry used to decode scene files.
func (s *Scene) Registry() *entity.Registry {
	return s.registry
}

// Pool returns the live entity pool.
func (s *Scene) Pool() *entity.Pool {
	return s.pool
}

// Resources returns the resource metadata cache.
func (s *Scene) Resources() *resource.Cache {
	return s.resources
}

// Materials returns the material pool.
func (s *Scene) Materials() *resource.MaterialPool {
	return s.materials
}

// Resolve rebuilds the main camera and the categorized lists from the live entity
// set, then pushes the lists to the sink. The last camera in pool order wins.
func (s *Scene) Resolve() {
	var (
		mainCamera  *entity.Entity
		cam         *camera.Camera
		renderables []*entity.Entity
		directional []*entity.Entity
		point       []*entity.Entity
	)

	for _, e := range s.pool.All() {
		if c, ok := entity.Get[*camera.Camera](e); ok {
			mainCamera, cam = e, c
		}
		if entity.Has[*model.MeshFilter](e) && entity.Has[*model.MeshRenderer](e) {
			renderables = append(renderables, e)
		}
		if l, ok := entity.Get[*lighting.Light](e); ok {
			switch l.Type {
			case lighting.Directional:
				directional = append(directional, e)
			case lighting.Point:
				point = append(point, e)
			}
		}
	}

	s.mainCamera, s.camera = mainCamera, cam
	s.renderables, s.directional, s.point = renderables, directional, point

	if cam != nil {
		cam.Tick()
	}
	s.sink.Update(renderables, directional, point)

	s.log.Debug("scene resolved",
		zap.Int("entities", s.pool.Count()),
		zap.Bool("camera", mainCamera != nil),
		zap.Int("renderables", len(renderables)),
		zap.Int("directional", len(directional)),
		zap.Int("point", len(point)))
}

// MainCamera returns the entity holding the main camera, or nil.
func (s *Scene) MainCamera() *entity.Entity {
	return s.mainCamera
}

// Camera returns the main camera component, or nil.
func (s *Scene) Camera() *camera.Camera {
	return s.camera
}

// Renderables returns entities with both geometry and material, in pool order.
func (s *Scene) Renderables() []*entity.Entity {
	return s.renderables
}

// DirectionalLights returns directional light entities, in pool order.
func (s *Scene) DirectionalLights() []*entity.Entity {
	return s.directional
}

// PointLights returns point light entities, in pool order.
func (s *Scene) PointLights() []*entity.Entity {
	return s.point
}

// AmbientLight returns the scene ambient light.
func (s *Scene) AmbientLight() math.Vec3 {
	return s.ambient
}

// SetAmbientLight sets the scene ambient light. It survives Resolve.
func (s *Scene) SetAmbientLight(v math.Vec3) {
	s.ambient = v
}

// Skybox returns the first entity holding a Skybox, or nil.
func (s *Scene) Skybox() *entity.Entity {
	for _, e := range s.pool.All() {
		if entity.Has[*model.Skybox](e) {
			return e
		}
	}
	return nil
}

// Initialize fills an empty scene with a camera, a skybox and a directional light.
func (s *Scene) Initialize() {
	cam := s.pool.Create("Camera")
	cam.Transform.LocalPosition = math.Vec3{Y: 1, Z: -5}
	s.AddCamera(cam)

	s.createSkybox()

	sun := s.pool.Create("DirectionalLight")
	sun.Transform.LocalRotation = math.QuatFromEulerDeg(30, 0, 0)
	sun.AddComponent(lighting.NewDirectional(4))

	s.Resolve()
	s.log.Info("scene initialized", zap.Int("entities", s.pool.Count()))
}

func (s *Scene) createSkybox() *entity.Entity {
	sky := s.pool.Create("Skybox")
	sky.HierarchyVisible = false
	sky.AddComponent(&model.Skybox{Material: skyMaterial})
	if _, ok := s.materials.Get(skyMaterial); !ok {
		s.materials.Set(skyMaterial, &resource.Material{Name: "Skybox", Shader: "skybox", Color: [4]float32{1, 1, 1, 1}})
	}
	return sky
}

// skyMaterial is the material path of the default skybox.
const skyMaterial = "materials/skybox.mat"

// Clear drops every entity, resource and material, and empties the sink.
// The ambient light is kept.
func (s *Scene) Clear() {
	s.mainCamera, s.camera = nil, nil
	s.renderables, s.directional, s.point = nil, nil, nil
	s.selected = nil

	s.resources.Clear()
	s.materials.Clear()
	s.pool.Clear()
	s.sink.Clear()
}
