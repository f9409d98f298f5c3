package config

import "flag"

var (
	flagConfig       = flag.String("config", "", "Path to config file")
	flagDebug        = flag.Bool("debug", false, "Enable debug logging")
	flagChunkLimit   = flag.Int("chunk-limit", 0, "Maximum vertices per chunk")
	flagHeightColors = flag.Bool("height-colors", false, "Color points by height instead of their own colors")
	flagInvertYZ     = flag.Bool("invert-yz", false, "Swap the Y and Z axes on load")
	flagScale        = flag.Float64("scale", 0, "Scale applied to every position")
	flagNameEncoding = flag.String("name-encoding", "", "Text encoding of group names (e.g. euc-kr, shift_jis)")
	flagWidth        = flag.Int("width", 0, "Window width")
	flagHeight       = flag.Int("height", 0, "Window height")
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
	if *flagChunkLimit > 0 {
		cfg.Ingest.ChunkLimit = *flagChunkLimit
	}
	if *flagHeightColors {
		cfg.Ingest.ColorMode = "height"
	}
	if *flagInvertYZ {
		cfg.Ingest.InvertYZ = true
	}
	if *flagScale != 0 {
		cfg.Ingest.Scale = float32(*flagScale)
	}
	if *flagNameEncoding != "" {
		cfg.Ingest.NameEncoding = *flagNameEncoding
	}
	if *flagWidth > 0 {
		cfg.Viewer.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Viewer.Height = *flagHeight
	}
}
