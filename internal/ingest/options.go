package ingest

import (
	"fmt"

	"github.com/Faultbox/pointcloud-viewer/pkg/math"
	"github.com/Faultbox/pointcloud-viewer/pkg/pointcloud"
)

// ColorMode selects the colors a finished cloud is delivered with.
type ColorMode string

// Color modes.
const (
	ColorSource ColorMode = "source" // inline vertex colors, or the default color
	ColorHeight ColorMode = "height" // green by normalized height
)

// Defaults for Options.
const (
	DefaultLineEstimate   = 10_000_000
	DefaultBatchLines     = DefaultLineEstimate / 200
	DefaultChunksPerYield = 10
)

// Options configures an ingest run. Zero fields take the values of
// DefaultOptions, so Options{} is a valid configuration. Negative values are
// reported by Validate.
type Options struct {
	ChunkLimit     int // max vertices per chunk
	BatchLines     int // lines parsed between yields
	LineEstimate   int // assumed line count when the file size is unknown
	ChunksPerYield int // chunks produced between yields
	ColorMode      ColorMode
	Builder        pointcloud.BuilderOptions
}

// DefaultOptions returns the standard settings.
func DefaultOptions() Options {
	return Options{
		ChunkLimit:     pointcloud.DefaultChunkLimit,
		BatchLines:     DefaultBatchLines,
		LineEstimate:   DefaultLineEstimate,
		ChunksPerYield: DefaultChunksPerYield,
		ColorMode:      ColorSource,
		Builder:        pointcloud.DefaultBuilderOptions(),
	}
}

// withDefaults fills zero-valued fields. A zero DefaultColor (transparent
// black) becomes opaque green.
func (o Options) withDefaults() Options {
	if o.ChunkLimit == 0 {
		o.ChunkLimit = pointcloud.DefaultChunkLimit
	}
	if o.BatchLines == 0 {
		o.BatchLines = DefaultBatchLines
	}
	if o.LineEstimate == 0 {
		o.LineEstimate = DefaultLineEstimate
	}
	if o.ChunksPerYield == 0 {
		o.ChunksPerYield = DefaultChunksPerYield
	}
	if o.ColorMode == "" {
		o.ColorMode = ColorSource
	}
	if o.Builder.Scale == 0 {
		o.Builder.Scale = 1
	}
	if o.Builder.DefaultColor == (math.Color{}) {
		o.Builder.DefaultColor = math.Green
	}
	return o
}

// Validate checks the options.
func (o Options) Validate() error {
	if o.ChunkLimit < 1 {
		return fmt.Errorf("%w: got %d", pointcloud.ErrInvalidChunkLimit, o.ChunkLimit)
	}
	if o.BatchLines < 1 {
		return fmt.Errorf("batch lines must be at least 1, got %d", o.BatchLines)
	}
	if o.LineEstimate < 1 {
		return fmt.Errorf("line estimate must be at least 1, got %d", o.LineEstimate)
	}
	if o.ChunksPerYield < 1 {
		return fmt.Errorf("chunks per yield must be at least 1, got %d", o.ChunksPerYield)
	}
	switch o.ColorMode {
	case ColorSource, ColorHeight:
	default:
		return fmt.Errorf("unknown color mode %q", o.ColorMode)
	}
	return nil
}
