package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagSeed     = flag.Uint("seed", 0, "Noise seed override (0 = use config)")
	flagHalfSize = flag.Uint("half-size", 0, "Terrain half size override")
	flagDensity  = flag.Float64("density", -1, "Scatter density override in [0,1]")
	flagOut      = flag.String("out", "", "Output directory override")
	flagWatch    = flag.Bool("watch", false, "Watch the config file and regenerate on change")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// WatchEnabled reports whether --watch was requested.
func WatchEnabled() bool {
	return *flagWatch
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagSeed > 0 {
		cfg.Terrain.Seed = uint32(*flagSeed)
	}
	if *flagHalfSize > 0 {
		cfg.Terrain.HalfSize = uint32(*flagHalfSize)
	}
	if *flagDensity >= 0 {
		cfg.Scatter.Density = float32(*flagDensity)
	}
	if *flagOut != "" {
		cfg.Output.Dir = *flagOut
	}
}
