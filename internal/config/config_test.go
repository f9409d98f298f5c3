package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/pointcloud-viewer/internal/ingest"
	"github.com/Faultbox/pointcloud-viewer/pkg/math"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Ingest.ChunkLimit != 65000 {
		t.Errorf("expected chunk limit 65000, got %d", cfg.Ingest.ChunkLimit)
	}
	if cfg.Ingest.BatchLines != 50000 {
		t.Errorf("expected batch lines 50000, got %d", cfg.Ingest.BatchLines)
	}
	if cfg.Ingest.LineEstimate != 10000000 {
		t.Errorf("expected line estimate 10000000, got %d", cfg.Ingest.LineEstimate)
	}
	if cfg.Ingest.ColorMode != "source" {
		t.Errorf("expected color mode 'source', got %s", cfg.Ingest.ColorMode)
	}
	if cfg.Ingest.Scale != 1 {
		t.Errorf("expected scale 1, got %f", cfg.Ingest.Scale)
	}

	if cfg.Viewer.Width != 1280 || cfg.Viewer.Height != 720 {
		t.Errorf("expected 1280x720, got %dx%d", cfg.Viewer.Width, cfg.Viewer.Height)
	}
	if !cfg.Viewer.VSync {
		t.Error("expected vsync to be true by default")
	}

	if cfg.Preview.Format != "webp" {
		t.Errorf("expected preview format 'webp', got %s", cfg.Preview.Format)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestIngestOptions(t *testing.T) {
	cfg := Default()
	cfg.Ingest.ColorMode = "height"
	cfg.Ingest.InvertYZ = true
	cfg.Ingest.Scale = 0.5

	opts := cfg.Ingest.Options()
	if opts.ChunkLimit != 65000 {
		t.Errorf("expected chunk limit 65000, got %d", opts.ChunkLimit)
	}
	if opts.ColorMode != ingest.ColorHeight {
		t.Errorf("expected height color mode, got %s", opts.ColorMode)
	}
	if opts.Builder.DefaultColor != math.Green {
		t.Errorf("expected green default color, got %v", opts.Builder.DefaultColor)
	}
	if !opts.Builder.InvertYZ || opts.Builder.Scale != 0.5 {
		t.Errorf("transform not carried over: %+v", opts.Builder)
	}
	if opts.Builder.DecodeName != nil {
		t.Error("default config should not decode group names")
	}

	cfg.Ingest.NameEncoding = "euc-kr"
	decode := cfg.Ingest.Options().Builder.DecodeName
	if decode == nil {
		t.Fatal("expected a name decoder for euc-kr")
	}
	if got := decode("\xc7\xd1\xb1\xb9"); got != "한국" {
		t.Errorf("decoded name = %q, want 한국", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"chunk limit", func(c *Config) { c.Ingest.ChunkLimit = 0 }, "chunk limit"},
		{"color mode", func(c *Config) { c.Ingest.ColorMode = "rainbow" }, "color mode"},
		{"scale", func(c *Config) { c.Ingest.Scale = 0 }, "scale"},
		{"name encoding", func(c *Config) { c.Ingest.NameEncoding = "klingon" }, "unknown text encoding"},
		{"viewer size", func(c *Config) { c.Viewer.Width = 0 }, "viewer"},
		{"preview format", func(c *Config) { c.Preview.Format = "gif" }, "format"},
		{"preview size", func(c *Config) { c.Preview.Size = 100000 }, "preview too large"},
		{"preview supersample", func(c *Config) { c.Preview.Supersample = 0 }, "must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
ingest:
  chunk_limit: 30000
  batch_lines: 1000
  default_color: [1, 1, 1, 1]
  invert_yz: true
  color_mode: height

viewer:
  width: 1920
  height: 1080
  fullscreen: true
  point_size: 3.5

preview:
  size: 512
  format: tga

logging:
  level: "debug"
  log_file: "viewer.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Ingest.ChunkLimit != 30000 {
		t.Errorf("expected chunk limit 30000, got %d", cfg.Ingest.ChunkLimit)
	}
	if cfg.Ingest.BatchLines != 1000 {
		t.Errorf("expected batch lines 1000, got %d", cfg.Ingest.BatchLines)
	}
	if cfg.Ingest.DefaultColor != [4]float32{1, 1, 1, 1} {
		t.Errorf("expected white default color, got %v", cfg.Ingest.DefaultColor)
	}
	if !cfg.Ingest.InvertYZ {
		t.Error("expected invert_yz to be true")
	}
	if cfg.Ingest.ColorMode != "height" {
		t.Errorf("expected color mode 'height', got %s", cfg.Ingest.ColorMode)
	}
	// Unset keys keep their defaults.
	if cfg.Ingest.LineEstimate != 10000000 {
		t.Errorf("expected default line estimate, got %d", cfg.Ingest.LineEstimate)
	}

	if cfg.Viewer.Width != 1920 || cfg.Viewer.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Viewer.Width, cfg.Viewer.Height)
	}
	if !cfg.Viewer.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Viewer.PointSize != 3.5 {
		t.Errorf("expected point size 3.5, got %f", cfg.Viewer.PointSize)
	}

	if cfg.Preview.Size != 512 || cfg.Preview.Format != "tga" {
		t.Errorf("expected 512 tga preview, got %d %s", cfg.Preview.Size, cfg.Preview.Format)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "viewer.log" {
		t.Errorf("expected log file 'viewer.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
ingest:
  chunk_limit: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("viewer:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "chunk limit flag",
			setup: func() { *flagChunkLimit = 1000 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Ingest.ChunkLimit != 1000 {
					t.Errorf("expected chunk limit 1000, got %d", cfg.Ingest.ChunkLimit)
				}
			},
			teardown: func() { *flagChunkLimit = 0 },
		},
		{
			name:  "height colors flag",
			setup: func() { *flagHeightColors = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Ingest.ColorMode != "height" {
					t.Errorf("expected color mode 'height', got %s", cfg.Ingest.ColorMode)
				}
			},
			teardown: func() { *flagHeightColors = false },
		},
		{
			name: "transform flags",
			setup: func() {
				*flagInvertYZ = true
				*flagScale = 0.01
			},
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Ingest.InvertYZ {
					t.Error("expected invert_yz with flag")
				}
				if cfg.Ingest.Scale != 0.01 {
					t.Errorf("expected scale 0.01, got %f", cfg.Ingest.Scale)
				}
			},
			teardown: func() {
				*flagInvertYZ = false
				*flagScale = 0
			},
		},
		{
			name:  "name encoding flag",
			setup: func() { *flagNameEncoding = "shift_jis" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Ingest.NameEncoding != "shift_jis" {
					t.Errorf("expected shift_jis, got %q", cfg.Ingest.NameEncoding)
				}
			},
			teardown: func() { *flagNameEncoding = "" },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Viewer.Width != 2560 || cfg.Viewer.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Viewer.Width, cfg.Viewer.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
ingest:
  chunk_limit: 20000
viewer:
  height: 900
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagChunkLimit = 500
	defer func() {
		*flagConfig = ""
		*flagChunkLimit = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Ingest.ChunkLimit != 500 {
		t.Errorf("expected chunk limit 500 from flag, got %d", cfg.Ingest.ChunkLimit)
	}
	if cfg.Viewer.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Viewer.Height)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("ingest:\n  color_mode: rainbow\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); err == nil {
		t.Error("expected Load to reject an unknown color mode")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Ingest.ChunkLimit = 1234
	cfg.Viewer.PointSize = 4
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload: %v", err)
	}
	if loaded.Ingest.ChunkLimit != 1234 || loaded.Viewer.PointSize != 4 {
		t.Errorf("round trip lost values: %+v", loaded.Ingest)
	}
}
