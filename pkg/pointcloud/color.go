package pointcloud

import "github.com/Faultbox/pointcloud-viewer/pkg/math"

// HeightColor maps y to a green intensity proportional to its position in
// [min, max]. A degenerate range yields opaque black.
func HeightColor(y, min, max float32) math.Color {
	if max == min {
		return math.Black
	}
	value := math.Clamp01((y - min) / (max - min))
	return math.Color{R: 0, G: value, B: 0, A: 1}
}

// HeightRange scans every vertex for the lowest and highest Y.
// ok is false when the chunks hold no vertices.
func HeightRange(chunks []*MeshChunk) (min, max float32, ok bool) {
	for _, c := range chunks {
		for _, v := range c.Vertices {
			if !ok {
				min, max, ok = v.Y, v.Y, true
				continue
			}
			if v.Y < min {
				min = v.Y
			}
			if v.Y > max {
				max = v.Y
			}
		}
	}
	return min, max, ok
}

// RecolorByHeight returns new color arrays, one per chunk, for the given
// height range. The chunks are not modified.
func RecolorByHeight(chunks []*MeshChunk, max, min float32) [][]math.Color {
	out := make([][]math.Color, len(chunks))
	for i, c := range chunks {
		colors := make([]math.Color, len(c.Vertices))
		for j, v := range c.Vertices {
			colors[j] = HeightColor(v.Y, min, max)
		}
		out[i] = colors
	}
	return out
}

// ApplyColors overwrites each chunk's display colors in place.
// colors must come from RecolorByHeight on the same chunks.
func ApplyColors(chunks []*MeshChunk, colors [][]math.Color) {
	for i, c := range chunks {
		if i >= len(colors) {
			return
		}
		copy(c.Colors, colors[i])
	}
}

// ColorByHeight scans the chunks for their height range and recolors them in place.
func ColorByHeight(chunks []*MeshChunk) {
	min, max, ok := HeightRange(chunks)
	if !ok {
		return
	}
	ApplyColors(chunks, RecolorByHeight(chunks, max, min))
}

// RestoreColors copies the parsed colors back over the display colors.
func RestoreColors(chunks []*MeshChunk) {
	for _, c := range chunks {
		copy(c.Colors, c.SourceColors)
	}
}
