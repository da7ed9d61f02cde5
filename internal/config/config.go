// Package config handles scene tool configuration loading and management.
package config

// Config holds all scene tool settings.
type Config struct {
	Viewport ViewportConfig `yaml:"viewport"`
	Camera   CameraConfig   `yaml:"camera"`
	Render   RenderConfig   `yaml:"render"`
	Picking  PickingConfig  `yaml:"picking"`
	Scene    SceneConfig    `yaml:"scene"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ViewportConfig is the persisted viewport rectangle in pixels.
type ViewportConfig struct {
	X      float32 `yaml:"x"`
	Y      float32 `yaml:"y"`
	Width  float32 `yaml:"width"`
	Height float32 `yaml:"height"`
}

// CameraConfig holds defaults applied to newly created cameras.
type CameraConfig struct {
	Near       float32    `yaml:"near"`
	Far        float32    `yaml:"far"`
	FOVDeg     float32    `yaml:"fov_deg"`
	Projection string     `yaml:"projection"` // "perspective" or "orthographic"
	ClearColor [4]float32 `yaml:"clear_color"`
}

// RenderConfig holds rendering conventions.
type RenderConfig struct {
	ReverseZ   bool             `yaml:"reverse_z"`
	Resolution ResolutionConfig `yaml:"resolution"`
}

// ResolutionConfig is the fixed backbuffer size used by the sphere pick.
type ResolutionConfig struct {
	Width  float32 `yaml:"width"`
	Height float32 `yaml:"height"`
}

// PickingConfig selects the picking strategy.
type PickingConfig struct {
	Mode string `yaml:"mode"` // "trace" or "sphere"
}

// SceneConfig holds scene file settings.
type SceneConfig struct {
	Extension string `yaml:"extension"`
	AssetsDir string `yaml:"assets_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Picking modes.
const (
	PickTrace  = "trace"
	PickSphere = "sphere"
)

// Projection names.
const (
	ProjectionPerspective  = "perspective"
	ProjectionOrthographic = "orthographic"
)

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Viewport: ViewportConfig{
			X:      0,
			Y:      0,
			Width:  1280,
			Height: 720,
		},
		Camera: CameraConfig{
			Near:       0.3,
			Far:        1000,
			FOVDeg:     90,
			Projection: ProjectionPerspective,
			ClearColor: [4]float32{0.396, 0.611, 0.937, 1},
		},
		Render: RenderConfig{
			ReverseZ: false,
			Resolution: ResolutionConfig{
				Width:  1920,
				Height: 1080,
			},
		},
		Picking: PickingConfig{
			Mode: PickTrace,
		},
		Scene: SceneConfig{
			Extension: ".scene",
			AssetsDir: "assets",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
