// Package config handles viewer and ingest configuration loading and management.
package config

import (
	"fmt"

	"github.com/Faultbox/pointcloud-viewer/internal/ingest"
	"github.com/Faultbox/pointcloud-viewer/internal/preview"
	"github.com/Faultbox/pointcloud-viewer/pkg/encoding"
	"github.com/Faultbox/pointcloud-viewer/pkg/math"
	"github.com/Faultbox/pointcloud-viewer/pkg/pointcloud"
)

// Config holds all settings.
type Config struct {
	Ingest  IngestConfig  `yaml:"ingest"`
	Viewer  ViewerConfig  `yaml:"viewer"`
	Preview PreviewConfig `yaml:"preview"`
	Logging LoggingConfig `yaml:"logging"`
}

// IngestConfig controls parsing and chunking.
type IngestConfig struct {
	ChunkLimit     int        `yaml:"chunk_limit"`
	BatchLines     int        `yaml:"batch_lines"`
	LineEstimate   int        `yaml:"line_estimate"`
	ChunksPerYield int        `yaml:"chunks_per_yield"`
	DefaultColor   [4]float32 `yaml:"default_color,flow"`
	Scale          float32    `yaml:"scale"`
	InvertYZ       bool       `yaml:"invert_yz"`
	ColorMode      string     `yaml:"color_mode"`    // "source" or "height"
	NameEncoding   string     `yaml:"name_encoding"` // legacy encoding of group names, e.g. "euc-kr"
}

// ViewerConfig holds display settings.
type ViewerConfig struct {
	Width              int        `yaml:"width"`
	Height             int        `yaml:"height"`
	Fullscreen         bool       `yaml:"fullscreen"`
	VSync              bool       `yaml:"vsync"`
	PointSize          float32    `yaml:"point_size"`
	Background         [3]float32 `yaml:"background,flow"`
	CameraHeightFactor float32    `yaml:"camera_height_factor"`
}

// PreviewConfig holds offline preview settings.
type PreviewConfig struct {
	Size        int        `yaml:"size"`
	Supersample int        `yaml:"supersample"`
	Format      string     `yaml:"format"` // webp, tga or png
	Background  [4]float32 `yaml:"background,flow"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Ingest: IngestConfig{
			ChunkLimit:     pointcloud.DefaultChunkLimit,
			BatchLines:     ingest.DefaultBatchLines,
			LineEstimate:   ingest.DefaultLineEstimate,
			ChunksPerYield: ingest.DefaultChunksPerYield,
			DefaultColor:   [4]float32{0, 1, 0, 1},
			Scale:          1,
			InvertYZ:       false,
			ColorMode:      string(ingest.ColorSource),
		},
		Viewer: ViewerConfig{
			Width:              1280,
			Height:             720,
			Fullscreen:         false,
			VSync:              true,
			PointSize:          2,
			Background:         [3]float32{0.1, 0.1, 0.12},
			CameraHeightFactor: 1.1,
		},
		Preview: PreviewConfig{
			Size:        1024,
			Supersample: 2,
			Format:      "webp",
			Background:  [4]float32{0, 0, 0, 1},
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if err := c.Ingest.Options().Validate(); err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	if _, err := encoding.NewDecoder(c.Ingest.NameEncoding); err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	if c.Ingest.Scale == 0 {
		return fmt.Errorf("ingest: scale must not be zero")
	}
	if c.Viewer.Width <= 0 || c.Viewer.Height <= 0 {
		return fmt.Errorf("viewer: invalid size %dx%d", c.Viewer.Width, c.Viewer.Height)
	}
	if err := (preview.Options{Size: c.Preview.Size, Supersample: c.Preview.Supersample}).Validate(); err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	switch c.Preview.Format {
	case "webp", "tga", "png":
	default:
		return fmt.Errorf("preview: unknown format %q", c.Preview.Format)
	}
	return nil
}

// Options converts the ingest settings for the driver.
// An unknown name encoding is ignored here; Validate reports it.
func (c IngestConfig) Options() ingest.Options {
	decode, _ := encoding.NewDecoder(c.NameEncoding)
	return ingest.Options{
		ChunkLimit:     c.ChunkLimit,
		BatchLines:     c.BatchLines,
		LineEstimate:   c.LineEstimate,
		ChunksPerYield: c.ChunksPerYield,
		ColorMode:      ingest.ColorMode(c.ColorMode),
		Builder: pointcloud.BuilderOptions{
			DefaultColor: math.ColorFromSlice(c.DefaultColor[:]),
			Scale:        c.Scale,
			InvertYZ:     c.InvertYZ,
			DecodeName:   decode,
		},
	}
}
