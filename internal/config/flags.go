package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagReverseZ = flag.Bool("reverse-z", false, "Use reversed depth (1 at near, 0 at far)")
	flagWidth    = flag.Int("width", 0, "Viewport width")
	flagHeight   = flag.Int("height", 0, "Viewport height")
	flagPick     = flag.String("pick", "", "Picking mode: trace or sphere")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagReverseZ {
		cfg.Render.ReverseZ = true
	}
	if *flagWidth > 0 {
		cfg.Viewport.Width = float32(*flagWidth)
	}
	if *flagHeight > 0 {
		cfg.Viewport.Height = float32(*flagHeight)
	}
	if *flagPick != "" {
		cfg.Picking.Mode = *flagPick
	}
}
