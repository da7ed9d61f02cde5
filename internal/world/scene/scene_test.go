package scene

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-scene/internal/engine/camera"
	"github.com/Faultbox/midgard-scene/internal/engine/lighting"
	"github.com/Faultbox/midgard-scene/internal/engine/model"
	"github.com/Faultbox/midgard-scene/internal/engine/viewport"
	"github.com/Faultbox/midgard-scene/internal/world/entity"
	"github.com/Faultbox/midgard-scene/internal/world/resource"
	"github.com/Faultbox/midgard-scene/pkg/formats"
	"github.com/Faultbox/midgard-scene/pkg/math"
)

type recordingSink struct {
	updates     int
	clears      int
	renderables []*entity.Entity
	directional []*entity.Entity
	point       []*entity.Entity
}

func (r *recordingSink) Update(renderables, directional, point []*entity.Entity) {
	r.updates++
	r.renderables, r.directional, r.point = renderables, directional, point
}

func (r *recordingSink) Clear() {
	r.clears++
	r.renderables, r.directional, r.point = nil, nil, nil
}

type fixture struct {
	scene *Scene
	pool  *entity.Pool
	sink  *recordingSink
	dir   string
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	dir := t.TempDir()
	pool := entity.NewPool()
	sink := &recordingSink{}
	s := New(Deps{
		Pool:      pool,
		Sink:      sink,
		Viewport:  viewport.NewState(viewport.Rect{Width: 800, Height: 600}),
		Resources: resource.NewCache(filepath.Join(dir, "assets"), nil),
		Materials: resource.NewMaterialPool(filepath.Join(dir, "assets"), nil),
	}, opts)
	return &fixture{scene: s, pool: pool, sink: sink, dir: dir}
}

func (f *fixture) addCamera(name string, pos math.Vec3) *entity.Entity {
	e := f.pool.Create(name)
	e.Transform.LocalPosition = pos
	f.scene.AddCamera(e)
	return e
}

func (f *fixture) addRenderable(name string, pos math.Vec3) *entity.Entity {
	e := f.pool.Create(name)
	e.Transform.LocalPosition = pos
	e.AddComponent(model.NewMeshFilter(model.BuiltinCube, model.Cube()))
	e.AddComponent(&model.MeshRenderer{Material: "materials/default.mat"})
	return e
}

func (f *fixture) addLight(name string, l *lighting.Light) *entity.Entity {
	e := f.pool.Create(name)
	e.AddComponent(l)
	return e
}

func TestResolveCategorizes(t *testing.T) {
	f := newFixture(t, Options{})

	crate := f.addRenderable("crate", math.Vec3{Z: 5})
	geometryOnly := f.pool.Create("geometry only")
	geometryOnly.AddComponent(model.NewMeshFilter(model.BuiltinCube, model.Cube()))
	sun := f.addLight("sun", lighting.NewDirectional(4))
	lamp := f.addLight("lamp", lighting.NewPoint(1, 5))
	rock := f.addRenderable("rock", math.Vec3{Z: 9})
	moon := f.addLight("moon", lighting.NewDirectional(0.5))

	f.scene.Resolve()

	assert.Nil(t, f.scene.MainCamera())
	assert.Nil(t, f.scene.Camera())
	assert.Equal(t, []*entity.Entity{crate, rock}, f.scene.Renderables())
	assert.Equal(t, []*entity.Entity{sun, moon}, f.scene.DirectionalLights())
	assert.Equal(t, []*entity.Entity{lamp}, f.scene.PointLights())

	assert.Equal(t, 1, f.sink.updates)
	assert.Equal(t, f.scene.Renderables(), f.sink.renderables)
	assert.Equal(t, f.scene.DirectionalLights(), f.sink.directional)
	assert.Equal(t, f.scene.PointLights(), f.sink.point)
}

func TestResolveIsIdempotent(t *testing.T) {
	f := newFixture(t, Options{})
	f.addCamera("cam", math.Vec3{})
	f.addRenderable("a", math.Vec3{Z: 3})
	f.addLight("lamp", lighting.NewPoint(1, 5))

	f.scene.Resolve()
	cam := f.scene.MainCamera()
	renderables := f.scene.Renderables()
	point := f.scene.PointLights()
	recomputes := f.scene.Camera().Recomputes()

	f.scene.Resolve()
	assert.Same(t, cam, f.scene.MainCamera())
	assert.Equal(t, renderables, f.scene.Renderables())
	assert.Equal(t, point, f.scene.PointLights())
	assert.Empty(t, f.scene.DirectionalLights())
	assert.Equal(t, recomputes, f.scene.Camera().Recomputes(), "unchanged camera is not recomputed")
}

func TestResolveLastCameraWins(t *testing.T) {
	f := newFixture(t, Options{})
	f.addCamera("first", math.Vec3{})
	second := f.addCamera("second", math.Vec3{X: 1})

	f.scene.Resolve()
	assert.Same(t, second, f.scene.MainCamera())

	f.pool.Remove(second.ID)
	f.scene.Resolve()
	assert.Equal(t, "first", f.scene.MainCamera().Name)
}

func TestResolveDropsRemovedEntities(t *testing.T) {
	f := newFixture(t, Options{})
	a := f.addRenderable("a", math.Vec3{})
	b := f.addRenderable("b", math.Vec3{})
	f.scene.Resolve()
	require.Len(t, f.scene.Renderables(), 2)

	f.pool.Remove(a.ID)
	b.RemoveComponent(model.MeshRendererName)
	f.scene.Resolve()
	assert.Empty(t, f.scene.Renderables())
}

func TestMousePickNearestToCamera(t *testing.T) {
	for _, reverseZ := range []bool{false, true} {
		t.Run(fmt.Sprintf("reverseZ=%v", reverseZ), func(t *testing.T) {
			f := newFixture(t, Options{Resolution: math.Vec2{X: 800, Y: 600}, ReverseZ: reverseZ})
			f.addCamera("cam", math.Vec3{})
			far := f.addRenderable("B", math.Vec3{Z: 5})
			near := f.addRenderable("A", math.Vec3{Z: 2})
			f.scene.Resolve()

			assert.Same(t, near, f.scene.MousePick(math.Vec2{X: 400, Y: 300}))

			f.pool.Remove(near.ID)
			f.scene.Resolve()
			assert.Same(t, far, f.scene.MousePick(math.Vec2{X: 400, Y: 300}))
		})
	}
}

func TestMousePickOffCenterPixel(t *testing.T) {
	for _, reverseZ := range []bool{false, true} {
		t.Run(fmt.Sprintf("reverseZ=%v", reverseZ), func(t *testing.T) {
			f := newFixture(t, Options{Resolution: math.Vec2{X: 800, Y: 600}, ReverseZ: reverseZ})
			f.addCamera("cam", math.Vec3{})
			f.addRenderable("ahead", math.Vec3{Z: 10})
			right := f.addRenderable("right", math.Vec3{X: 5, Z: 10})
			f.scene.Resolve()

			// Half way to the right edge looks along x = z/2 with a 90 degree FOV
			assert.Same(t, right, f.scene.MousePick(math.Vec2{X: 600, Y: 300}))
		})
	}
}

func TestMousePickUsesBoundsCenter(t *testing.T) {
	f := newFixture(t, Options{Resolution: math.Vec2{X: 800, Y: 600}})
	f.addCamera("cam", math.Vec3{})

	offset := f.pool.Create("offset")
	offset.Transform.LocalPosition = math.Vec3{Z: 10}
	offset.AddComponent(&model.MeshFilter{Mesh: "meshes/offset.mesh", Center: math.Vec3{X: 8}, Extent: math.Vec3One})
	offset.AddComponent(&model.MeshRenderer{Material: "materials/default.mat"})
	f.scene.Resolve()

	screen := math.Vec2{X: 400, Y: 300}
	assert.Nil(t, f.scene.MousePick(screen), "geometry spans x 7..9, away from the ray")
	assert.Nil(t, TracePicker{Scene: f.scene}.Pick(screen))

	offset.Transform.LocalPosition = math.Vec3{X: -8, Z: 10}
	assert.Same(t, offset, f.scene.MousePick(screen), "geometry recentered on the ray")
	assert.Same(t, offset, TracePicker{Scene: f.scene}.Pick(screen))
}

func TestMousePickTieKeepsEarlier(t *testing.T) {
	f := newFixture(t, Options{Resolution: math.Vec2{X: 800, Y: 600}})
	f.addCamera("cam", math.Vec3{})
	left := f.addRenderable("left", math.Vec3{X: -0.5, Z: 4})
	f.addRenderable("right", math.Vec3{X: 0.5, Z: 4})
	f.scene.Resolve()

	assert.Same(t, left, f.scene.MousePick(math.Vec2{X: 400, Y: 300}))
}

func TestMousePickUsesScaledRadius(t *testing.T) {
	f := newFixture(t, Options{Resolution: math.Vec2{X: 800, Y: 600}, ReverseZ: true})
	f.addCamera("cam", math.Vec3{})
	box := f.addRenderable("box", math.Vec3{X: 3, Z: 10})
	f.scene.Resolve()

	require.Nil(t, f.scene.MousePick(math.Vec2{X: 400, Y: 300}))

	box.Transform.LocalScale = math.Vec3{X: 4, Y: 1, Z: 1}
	assert.Same(t, box, f.scene.MousePick(math.Vec2{X: 400, Y: 300}))
}

func TestPickWithoutCamera(t *testing.T) {
	f := newFixture(t, Options{})
	f.addRenderable("a", math.Vec3{Z: 3})
	f.scene.Resolve()

	assert.Nil(t, f.scene.MousePick(math.Vec2{X: 400, Y: 300}))
	assert.Nil(t, TracePicker{Scene: f.scene}.Pick(math.Vec2{X: 400, Y: 300}))
}

func TestSelectNotifiesListener(t *testing.T) {
	for _, mode := range []PickMode{PickTrace, PickSphere} {
		t.Run(mode.String(), func(t *testing.T) {
			f := newFixture(t, Options{PickMode: mode})
			f.addCamera("cam", math.Vec3{})
			f.addRenderable("far", math.Vec3{Z: 9})
			near := f.addRenderable("near", math.Vec3{Z: 4})
			f.scene.Resolve()

			var notified []*entity.Entity
			f.scene.SetSelectionListener(func(e *entity.Entity) { notified = append(notified, e) })

			assert.Same(t, near, f.scene.Select(math.Vec2{X: 400, Y: 300}))
			assert.Same(t, near, f.scene.Selected())
			assert.Nil(t, f.scene.Select(math.Vec2{X: 0, Y: 0}))
			assert.Nil(t, f.scene.Selected())

			require.Len(t, notified, 2)
			assert.Same(t, near, notified[0])
			assert.Nil(t, notified[1])
		})
	}
}

func TestPickerForMode(t *testing.T) {
	f := newFixture(t, Options{})
	assert.IsType(t, TracePicker{}, f.scene.Picker())

	g := newFixture(t, Options{PickMode: PickSphere})
	assert.IsType(t, SpherePicker{}, g.scene.Picker())

	mode, err := ParsePickMode("sphere")
	require.NoError(t, err)
	assert.Equal(t, PickSphere, mode)
	_, err = ParsePickMode("laser")
	assert.Error(t, err)
}

func TestTracePickerViewportOffset(t *testing.T) {
	f := newFixture(t, Options{})
	vp := viewport.NewState(viewport.Rect{X: 200, Y: 100, Width: 800, Height: 600})
	f.scene.viewport = vp
	f.addCamera("cam", math.Vec3{})
	target := f.addRenderable("target", math.Vec3{Z: 6})
	f.scene.Resolve()

	assert.Same(t, target, f.scene.Picker().Pick(math.Vec2{X: 600, Y: 400}))
}

func TestAmbientLightPersists(t *testing.T) {
	f := newFixture(t, Options{})
	assert.Equal(t, math.Vec3{}, f.scene.AmbientLight())

	f.scene.SetAmbientLight(math.Vec3{X: 0.1, Y: 0.2, Z: 0.3})
	f.scene.Resolve()
	f.scene.Clear()
	assert.Equal(t, math.Vec3{X: 0.1, Y: 0.2, Z: 0.3}, f.scene.AmbientLight())
}

func TestInitialize(t *testing.T) {
	f := newFixture(t, Options{})
	f.scene.Initialize()

	cam := f.scene.MainCamera()
	require.NotNil(t, cam)
	assert.Equal(t, math.Vec3{Y: 1, Z: -5}, cam.Transform.Position())
	assert.Equal(t, camera.DefaultFarPlane, f.scene.Camera().FarPlane())

	sky := f.scene.Skybox()
	require.NotNil(t, sky)
	assert.False(t, sky.HierarchyVisible)

	require.Len(t, f.scene.DirectionalLights(), 1)
	sun := f.scene.DirectionalLights()[0]
	l, ok := entity.Get[*lighting.Light](sun)
	require.True(t, ok)
	assert.Equal(t, float32(4), l.Intensity)
	assert.True(t, sun.Transform.Rotation().Forward().ApproxEqual(math.QuatFromEulerDeg(30, 0, 0).Forward(), 1e-6))
}

func TestClear(t *testing.T) {
	f := newFixture(t, Options{})
	f.scene.Initialize()
	f.addRenderable("a", math.Vec3{})
	f.scene.Resolve()

	f.scene.Clear()
	assert.Nil(t, f.scene.MainCamera())
	assert.Nil(t, f.scene.Skybox())
	assert.Empty(t, f.scene.Renderables())
	assert.Empty(t, f.scene.DirectionalLights())
	assert.Zero(t, f.pool.Count())
	assert.Empty(t, f.scene.materials.FilePaths())
	assert.Equal(t, 1, f.sink.clears)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	f := newFixture(t, Options{})
	f.scene.Initialize()
	crate := f.addRenderable("crate", math.Vec3{X: 1, Z: 4})
	child := f.addRenderable("lid", math.Vec3{Y: 1})
	child.SetParent(crate)
	f.addLight("lamp", lighting.NewPoint(2, 8))
	f.scene.Camera().SetFarPlane(300)

	f.scene.resources.Add("meshes/crate.mesh")
	f.scene.resources.Add("textures/crate.png")
	f.scene.materials.Set("materials/crate.mat", &resource.Material{Name: "crate", Shader: "lit"})
	f.scene.Resolve()

	wantEntities := f.pool.Count()
	wantResources := f.scene.resources.FilePaths()
	wantMaterials := f.scene.materials.FilePaths()

	path := filepath.Join(f.dir, "levels", "test")
	require.NoError(t, f.scene.Save(path))
	assert.FileExists(t, path+DefaultExtension)

	g := newFixture(t, Options{})
	g.scene.resources = resource.NewCache(filepath.Join(f.dir, "assets"), nil)
	g.scene.materials = resource.NewMaterialPool(filepath.Join(f.dir, "assets"), nil)
	require.NoError(t, g.scene.Load(context.Background(), path+DefaultExtension))

	assert.Equal(t, wantEntities, g.pool.Count())
	assert.Equal(t, wantResources, g.scene.resources.FilePaths())
	assert.Equal(t, wantMaterials, g.scene.materials.FilePaths())

	require.NotNil(t, g.scene.Camera())
	assert.Equal(t, float32(300), g.scene.Camera().FarPlane())
	assert.Len(t, g.scene.Renderables(), 2)
	assert.Len(t, g.scene.PointLights(), 1)
	assert.Len(t, g.scene.DirectionalLights(), 1)
	require.NotNil(t, g.scene.Skybox())

	lid, ok := g.pool.Get(child.ID)
	require.True(t, ok)
	require.NotNil(t, lid.Parent())
	assert.Equal(t, crate.ID, lid.Parent().ID)
	assert.True(t, lid.Transform.Position().ApproxEqual(math.Vec3{X: 1, Y: 1, Z: 4}, 1e-5))
}

func TestLoadMissingFile(t *testing.T) {
	f := newFixture(t, Options{})
	f.scene.Initialize()
	before := f.pool.Count()

	err := f.scene.Load(context.Background(), filepath.Join(f.dir, "nope"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Equal(t, before, f.pool.Count(), "scene untouched")
	assert.NotNil(t, f.scene.MainCamera())
}

func TestLoadCorruptFile(t *testing.T) {
	f := newFixture(t, Options{})
	f.scene.Initialize()
	path := filepath.Join(f.dir, "bad.scene")
	require.NoError(t, os.WriteFile(path, []byte("NOPE\x02\x00"), 0644))

	err := f.scene.Load(context.Background(), path)
	assert.ErrorIs(t, err, formats.ErrInvalidSceneMagic)
	assert.NotNil(t, f.scene.MainCamera(), "scene untouched")
}

func TestAsyncSaveLoad(t *testing.T) {
	f := newFixture(t, Options{})
	f.scene.Initialize()
	path := filepath.Join(f.dir, "async.scene")

	require.NoError(t, <-f.scene.SaveAsync(path))

	g := newFixture(t, Options{})
	g.scene.materials = resource.NewMaterialPool(filepath.Join(f.dir, "assets"), nil)
	require.NoError(t, <-g.scene.LoadAsync(context.Background(), path))
	assert.Equal(t, f.pool.Count(), g.pool.Count())

	assert.ErrorIs(t, <-g.scene.LoadAsync(context.Background(), filepath.Join(f.dir, "missing")), ErrNotFound)
}

func TestNormalizePath(t *testing.T) {
	f := newFixture(t, Options{})
	assert.Equal(t, "level.scene", f.scene.NormalizePath("level"))
	assert.Equal(t, "level.scene", f.scene.NormalizePath("level.scene"))
	assert.Equal(t, "level.txt.scene", f.scene.NormalizePath("level.txt"))

	g := newFixture(t, Options{Extension: ".scn"})
	assert.Equal(t, "a.scn", g.scene.NormalizePath("a"))
}

func TestNewWithoutViewport(t *testing.T) {
	pool := entity.NewPool()
	var s *Scene
	assert.NotPanics(t, func() {
		s = New(Deps{
			Pool:      pool,
			Sink:      &recordingSink{},
			Resources: resource.NewCache(t.TempDir(), nil),
			Materials: resource.NewMaterialPool(t.TempDir(), nil),
		}, Options{})
		s.Resolve()
	})
	assert.Nil(t, s.MainCamera())
}

func TestLoadMissingMaterialKeepsScene(t *testing.T) {
	f := newFixture(t, Options{})
	f.scene.Initialize()
	f.scene.Materials().Set("materials/crate.mat", &resource.Material{Name: "crate"})
	path := filepath.Join(f.dir, "kept.scene")
	require.NoError(t, f.scene.Save(path))

	g := newFixture(t, Options{})
	g.scene.Initialize()
	before := g.pool.Count()
	cam := g.scene.MainCamera()

	// g's assets dir has none of the saved materials
	err := g.scene.Load(context.Background(), path)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, before, g.pool.Count(), "entities kept")
	assert.Same(t, cam, g.scene.MainCamera())
	assert.Len(t, g.scene.Materials().FilePaths(), 1, "only the skybox material")
}
