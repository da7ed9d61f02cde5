// scenetool creates, inspects and edits scene files from the command line.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-scene/internal/config"
	"github.com/Faultbox/midgard-scene/internal/engine/camera"
	"github.com/Faultbox/midgard-scene/internal/engine/model"
	"github.com/Faultbox/midgard-scene/internal/engine/renderer"
	"github.com/Faultbox/midgard-scene/internal/engine/viewport"
	"github.com/Faultbox/midgard-scene/internal/logger"
	"github.com/Faultbox/midgard-scene/internal/world/entity"
	"github.com/Faultbox/midgard-scene/internal/world/resource"
	"github.com/Faultbox/midgard-scene/internal/world/scene"
	"github.com/Faultbox/midgard-scene/pkg/math"
)

func main() {
	config.ParseFlags()
	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	command := args[0]
	args = args[1:]

	switch command {
	case "new":
		err = cmdNew(cfg, args)
	case "info":
		err = cmdInfo(cfg, args)
	case "resolve":
		err = cmdResolve(cfg, args)
	case "pick":
		err = cmdPick(cfg, args)
	case "frame":
		err = cmdFrame(cfg, args)
	case "config":
		err = cmdConfig(cfg, args)
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`scenetool - scene file utility

Usage:
  scenetool [flags] <command> [options]

Commands:
  new <file> [-cubes N]       Create a scene with a camera, skybox, sun and N cubes
  info <file>                 Show entities and manifest
  resolve <file>              Resolve the scene and report the culled frame
  pick <file> <x> <y>         Pick the entity under a window pixel
  frame <file>                Orbit the main camera to fit every renderable and save
  config [path]               Write the effective config (default: user config dir)

Flags:
  -config <path>   Config file
  -debug           Debug logging
  -reverse-z       Reversed depth
  -width, -height  Viewport size
  -pick <mode>     trace or sphere

Examples:
  scenetool new levels/test -cubes 5
  scenetool -pick sphere pick levels/test.scene 640 360`)
}

// session is a scene wired to a renderer queue and the configured viewport.
type session struct {
	cfg   *config.Config
	scene *scene.Scene
	queue *renderer.Queue
	log   *zap.Logger
}

func newSession(cfg *config.Config) (*session, error) {
	mode, err := scene.ParsePickMode(cfg.Picking.Mode)
	if err != nil {
		return nil, err
	}

	log := logger.Named("scene")
	queue := renderer.NewQueue(logger.Named("renderer"))
	vp := viewport.NewState(viewport.Rect{
		X:      cfg.Viewport.X,
		Y:      cfg.Viewport.Y,
		Width:  cfg.Viewport.Width,
		Height: cfg.Viewport.Height,
	})

	s := scene.New(scene.Deps{
		Pool:      entity.NewPool(),
		Sink:      queue,
		Viewport:  vp,
		Resources: resource.NewCache(cfg.Scene.AssetsDir, logger.Named("resources")),
		Materials: resource.NewMaterialPool(cfg.Scene.AssetsDir, logger.Named("materials")),
		Logger:    log,
	}, scene.Options{
		ReverseZ:   cfg.Render.ReverseZ,
		Resolution: math.Vec2{X: cfg.Render.Resolution.Width, Y: cfg.Render.Resolution.Height},
		Extension:  cfg.Scene.Extension,
		PickMode:   mode,
	})
	return &session{cfg: cfg, scene: s, queue: queue, log: log}, nil
}

func (ss *session) load(path string) error {
	return ss.scene.Load(context.Background(), path)
}

// applyCameraDefaults copies the configured camera settings onto cam.
func applyCameraDefaults(cam *camera.Camera, c config.CameraConfig) {
	cam.SetNearPlane(c.Near)
	cam.SetFarPlane(c.Far)
	cam.SetFOVHorizontalDeg(c.FOVDeg)
	cam.SetClearColor(c.ClearColor)
	if c.Projection == config.ProjectionOrthographic {
		cam.SetProjection(camera.Orthographic)
	} else {
		cam.SetProjection(camera.Perspective)
	}
}

func cmdNew(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("new", flag.ExitOnError)
	cubes := fs.Int("cubes", 0, "Number of cubes to place along +X")
	if len(args) < 1 {
		return fmt.Errorf("usage: scenetool new <file> [-cubes N]")
	}
	path := args[0]
	fs.Parse(args[1:])

	ss, err := newSession(cfg)
	if err != nil {
		return err
	}
	ss.scene.Initialize()
	applyCameraDefaults(ss.scene.Camera(), cfg.Camera)

	if *cubes > 0 {
		ss.scene.Resources().Add(model.BuiltinCube)
	}
	for i := range *cubes {
		e := ss.scene.Pool().Create(fmt.Sprintf("Cube %d", i))
		e.Transform.LocalPosition = math.Vec3{X: float32(i) * 3}
		e.AddComponent(model.NewMeshFilter(model.BuiltinCube, model.Cube()))
		e.AddComponent(&model.MeshRenderer{Material: "materials/default.mat", CastShadows: true})
	}
	ss.scene.Resolve()

	if err := ss.scene.Save(path); err != nil {
		return err
	}
	fmt.Printf("Created %s (%d entities)\n", ss.scene.NormalizePath(path), ss.scene.Pool().Count())
	return nil
}

func cmdInfo(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: scenetool info <file>")
	}
	ss, err := newSession(cfg)
	if err != nil {
		return err
	}
	if err := ss.load(args[0]); err != nil {
		return err
	}

	s := ss.scene
	fmt.Printf("Scene:     %s\n", s.NormalizePath(args[0]))
	fmt.Printf("Entities:  %d\n", s.Pool().Count())
	fmt.Printf("Resources: %d\n", len(s.Resources().FilePaths()))
	fmt.Printf("Materials: %d\n", len(s.Materials().FilePaths()))
	fmt.Println()

	for _, e := range s.Pool().All() {
		parent := "-"
		if p := e.Parent(); p != nil {
			parent = p.Name
		}
		fmt.Printf("  %-24s %s parent=%s\n", e.Name, e.ID, parent)
		for _, c := range e.Components() {
			fmt.Printf("    %s\n", c.ComponentName())
		}
	}
	return nil
}

func cmdResolve(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: scenetool resolve <file>")
	}
	ss, err := newSession(cfg)
	if err != nil {
		return err
	}
	if err := ss.load(args[0]); err != nil {
		return err
	}

	s := ss.scene
	cam := s.MainCamera()
	if cam == nil {
		fmt.Println("Main camera: none")
	} else {
		fmt.Printf("Main camera: %s at %v\n", cam.Name, cam.Transform.Position())
	}
	fmt.Printf("Renderables:        %d\n", len(s.Renderables()))
	fmt.Printf("Directional lights: %d\n", len(s.DirectionalLights()))
	fmt.Printf("Point lights:       %d\n", len(s.PointLights()))

	frame := ss.queue.Build(s.Camera())
	fmt.Printf("Visible: %d  Culled: %d\n", len(frame.Items), frame.Culled)
	for _, item := range frame.Items {
		fmt.Printf("  %-24s mesh=%s material=%s\n", item.Entity.Name, item.Mesh, item.Material)
	}
	return nil
}

func cmdPick(cfg *config.Config, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: scenetool pick <file> <x> <y>")
	}
	x, err := strconv.ParseFloat(args[1], 32)
	if err != nil {
		return fmt.Errorf("invalid x: %w", err)
	}
	y, err := strconv.ParseFloat(args[2], 32)
	if err != nil {
		return fmt.Errorf("invalid y: %w", err)
	}

	ss, err := newSession(cfg)
	if err != nil {
		return err
	}
	if err := ss.load(args[0]); err != nil {
		return err
	}

	picked := ss.scene.Select(math.Vec2{X: float32(x), Y: float32(y)})
	if picked == nil {
		fmt.Println("Nothing picked")
		return nil
	}
	fmt.Printf("Picked %s (%s) at %v\n", picked.Name, picked.ID, picked.Transform.Position())
	return nil
}

func cmdFrame(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: scenetool frame <file>")
	}
	ss, err := newSession(cfg)
	if err != nil {
		return err
	}
	if err := ss.load(args[0]); err != nil {
		return err
	}

	s := ss.scene
	cam := s.MainCamera()
	if cam == nil {
		return fmt.Errorf("scene has no camera")
	}
	if len(s.Renderables()) == 0 {
		return fmt.Errorf("scene has nothing to frame")
	}

	var bounds math.AABB
	for i, e := range s.Renderables() {
		f, _ := entity.Get[*model.MeshFilter](e)
		b := f.WorldBounds(e.Transform.WorldMatrix())
		if i == 0 {
			bounds = b
		} else {
			bounds = bounds.Union(b)
		}
	}

	orbit := camera.NewOrbit()
	orbit.FitToBounds(bounds)
	orbit.Apply(cam.Transform)
	s.Resolve()

	frame := ss.queue.Build(s.Camera())
	ss.log.Info("camera framed",
		zap.Stringer("center", bounds.Center()),
		zap.Float32("distance", orbit.Distance),
		zap.Int("visible", len(frame.Items)),
		zap.Int("culled", frame.Culled))

	if err := s.Save(args[0]); err != nil {
		return err
	}
	fmt.Printf("Framed %d renderables, %d visible\n", len(s.Renderables()), len(frame.Items))
	return nil
}

func cmdConfig(cfg *config.Config, args []string) error {
	path := config.DefaultPath()
	if len(args) > 0 {
		path = args[0]
	}
	if err := cfg.SaveTo(path); err != nil {
		return err
	}
	logger.Info("config written", zap.String("path", path))
	fmt.Printf("Wrote %s\n", path)
	return nil
}
