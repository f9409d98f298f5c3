// Package preview renders a top-down raster image of a point cloud and
// encodes it for offline inspection.
package preview

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/draw"

	"github.com/Faultbox/pointcloud-viewer/pkg/math"
	"github.com/Faultbox/pointcloud-viewer/pkg/pointcloud"
)

// Preview errors.
var (
	ErrUnknownFormat = errors.New("unknown preview format")
	ErrTooLarge      = errors.New("preview too large")
)

// Size limits. Render clamps larger requests; Validate rejects them.
const (
	MaxSize       = 8192  // output edge length
	MaxCanvasSize = 16384 // supersampled edge length
)

// Format is an output image encoding.
type Format string

// Supported formats.
const (
	FormatWebP Format = "webp"
	FormatTGA  Format = "tga"
	FormatPNG  Format = "png"
)

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case FormatWebP, FormatTGA, FormatPNG:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Options controls rasterization.
type Options struct {
	Size        int        // output edge length in pixels
	Supersample int        // render at Size*Supersample, then downscale
	Background  math.Color // fill color
}

// DefaultOptions returns a 1024px, 2x supersampled preview on black.
func DefaultOptions() Options {
	return Options{Size: 1024, Supersample: 2, Background: math.Black}
}

// Validate reports a non-positive or oversized request.
func (o Options) Validate() error {
	if o.Size < 1 || o.Supersample < 1 {
		return fmt.Errorf("size and supersample must be positive, got %d and %d", o.Size, o.Supersample)
	}
	if o.Size > MaxSize {
		return fmt.Errorf("%w: size %d exceeds %d", ErrTooLarge, o.Size, MaxSize)
	}
	if o.Supersample > MaxCanvasSize/o.Size {
		return fmt.Errorf("%w: %dx supersampling of %d exceeds %d", ErrTooLarge, o.Supersample, o.Size, MaxCanvasSize)
	}
	return nil
}

// clamped replaces unset values with defaults and shrinks oversized ones.
func (o Options) clamped() Options {
	if o.Size <= 0 {
		o.Size = DefaultOptions().Size
	}
	if o.Size > MaxSize {
		o.Size = MaxSize
	}
	if o.Supersample <= 0 {
		o.Supersample = 1
	}
	if o.Supersample > MaxCanvasSize/o.Size {
		o.Supersample = MaxCanvasSize / o.Size
	}
	return o
}

// Render draws the cloud looking down the Y axis: X maps to columns and Z to
// rows, with the larger of the two extents filling the image. Points are drawn
// in chunk order using each chunk's display colors, higher points winning.
func Render(cloud *pointcloud.PointCloud, opts Options) *image.NRGBA {
	opts = opts.clamped()
	canvasSize := opts.Size * opts.Supersample

	canvas := image.NewNRGBA(image.Rect(0, 0, canvasSize, canvasSize))
	bg := toNRGBA(opts.Background)
	for i := 0; i < len(canvas.Pix); i += 4 {
		canvas.Pix[i], canvas.Pix[i+1], canvas.Pix[i+2], canvas.Pix[i+3] = bg.R, bg.G, bg.B, bg.A
	}

	if cloud != nil && !cloud.Bounds.IsEmpty() {
		plot(canvas, cloud, canvasSize)
	}

	if opts.Supersample == 1 {
		return canvas
	}
	return downsample(canvas, opts.Size)
}

func plot(canvas *image.NRGBA, cloud *pointcloud.PointCloud, size int) {
	b := cloud.Bounds
	span := b.Size()
	extent := span.X
	if span.Z > extent {
		extent = span.Z
	}
	if extent == 0 {
		extent = 1
	}
	scale := float32(size-1) / extent

	// Center the shorter axis.
	offX := (float32(size-1) - span.X*scale) / 2
	offZ := (float32(size-1) - span.Z*scale) / 2

	height := make([]float32, size*size)
	filled := make([]bool, size*size)

	for _, c := range cloud.Chunks {
		for i, v := range c.Vertices {
			px := int(offX + (v.X-b.Min.X)*scale + 0.5)
			py := int(offZ + (v.Z-b.Min.Z)*scale + 0.5)
			if px < 0 || py < 0 || px >= size || py >= size {
				continue
			}
			k := py*size + px
			if filled[k] && height[k] >= v.Y {
				continue
			}
			filled[k] = true
			height[k] = v.Y
			canvas.SetNRGBA(px, py, toNRGBA(c.Colors[i]))
		}
	}
}

func toNRGBA(c math.Color) color.NRGBA {
	r, g, b, a := c.RGBA8()
	return color.NRGBA{R: r, G: g, B: b, A: a}
}

// downsample scales img to size x size with CatmullRom filtering.
func downsample(img *image.NRGBA, size int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, format Format) error {
	switch format {
	case FormatWebP:
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("webp encode: %w", err)
		}
	case FormatTGA:
		if err := tga.Encode(w, img); err != nil {
			return fmt.Errorf("tga encode: %w", err)
		}
	case FormatPNG:
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("png encode: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return nil
}
