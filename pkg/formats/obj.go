// Package formats provides parsers for the point cloud text formats.
package formats

import (
	"errors"
	"fmt"
	gomath "math"
	"strconv"
	"strings"

	"github.com/Faultbox/pointcloud-viewer/pkg/math"
)

// OBJ format errors.
var (
	ErrMalformedLine        = errors.New("malformed line")
	ErrMalformedFace        = errors.New("malformed face")
	ErrUnsupportedIndexForm = errors.New("unsupported index form")
)

// DefaultGroup is the group faces belong to before any g/o directive.
const DefaultGroup = "default"

// Directive identifies the keyword of an OBJ line.
type Directive int

// Supported directives. Everything else parses as DirectiveUnknown and is skipped.
const (
	DirectiveUnknown Directive = iota
	DirectiveVertex
	DirectiveNormal
	DirectiveUV
	DirectiveGroup
	DirectiveFace
)

var directiveNames = map[string]Directive{
	"v":  DirectiveVertex,
	"vn": DirectiveNormal,
	"vt": DirectiveUV,
	"g":  DirectiveGroup,
	"o":  DirectiveGroup,
	"f":  DirectiveFace,
}

// String returns the canonical keyword.
func (d Directive) String() string {
	switch d {
	case DirectiveVertex:
		return "v"
	case DirectiveNormal:
		return "vn"
	case DirectiveUV:
		return "vt"
	case DirectiveGroup:
		return "g"
	case DirectiveFace:
		return "f"
	default:
		return "unknown"
	}
}

// Line is a tokenized OBJ line.
type Line struct {
	Directive Directive
	Keyword   string
	Fields    []string
}

// Tokenize splits a raw line into a keyword and its argument fields.
// Runs of whitespace collapse. Blank lines and lines whose first
// non-space character is '#' return ok == false.
func Tokenize(raw string) (line Line, ok bool) {
	tokens := strings.Fields(raw)
	if len(tokens) == 0 || strings.HasPrefix(tokens[0], "#") {
		return Line{}, false
	}
	return Line{
		Directive: directiveNames[tokens[0]],
		Keyword:   tokens[0],
		Fields:    tokens[1:],
	}, true
}

// VertexRecord is a parsed "v" line.
type VertexRecord struct {
	Position math.Vec3
	Color    math.Color
	HasColor bool
}

// ParseVertex parses "v x y z [r g b]" fields.
// Three fields give a position only; six give a position and an inline color.
func ParseVertex(fields []string) (VertexRecord, error) {
	if len(fields) != 3 && len(fields) != 6 {
		return VertexRecord{}, fmt.Errorf("%w: vertex needs 3 or 6 fields, got %d", ErrMalformedLine, len(fields))
	}

	var xyz [3]float32
	if err := parseFloats(fields[:3], xyz[:]); err != nil {
		return VertexRecord{}, err
	}
	rec := VertexRecord{Position: math.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}}

	if len(fields) == 6 {
		var rgb [3]float32
		if err := parseFloats(fields[3:6], rgb[:]); err != nil {
			return VertexRecord{}, err
		}
		rec.Color = math.RGB(rgb[0], rgb[1], rgb[2])
		rec.HasColor = true
	}

	return rec, nil
}

// ParseNormal parses "vn x y z" fields.
func ParseNormal(fields []string) (math.Vec3, error) {
	if len(fields) < 3 {
		return math.Vec3{}, fmt.Errorf("%w: normal needs 3 components, got %d", ErrMalformedLine, len(fields))
	}
	var n [3]float32
	if err := parseFloats(fields[:3], n[:]); err != nil {
		return math.Vec3{}, err
	}
	return math.Vec3{X: n[0], Y: n[1], Z: n[2]}, nil
}

// ParseUV parses "vt u v [w]" fields. The w component is validated and dropped.
func ParseUV(fields []string) (math.Vec2, error) {
	if len(fields) < 2 || len(fields) > 3 {
		return math.Vec2{}, fmt.Errorf("%w: texture coordinate needs 2 or 3 components, got %d", ErrMalformedLine, len(fields))
	}
	var uv [3]float32
	if err := parseFloats(fields, uv[:len(fields)]); err != nil {
		return math.Vec2{}, err
	}
	return math.Vec2{X: uv[0], Y: uv[1]}, nil
}

// ParseGroupName returns the name set by a g/o line.
// Names may contain spaces; a bare directive names the default group.
func ParseGroupName(fields []string) string {
	if len(fields) == 0 {
		return DefaultGroup
	}
	return strings.Join(fields, " ")
}

// parseFloats rejects NaN and infinities along with unparseable text.
func parseFloats(fields []string, out []float32) error {
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return fmt.Errorf("%w: %q is not a number", ErrMalformedLine, f)
		}
		if gomath.IsNaN(v) || gomath.IsInf(v, 0) {
			return fmt.Errorf("%w: %q is not a finite number", ErrMalformedLine, f)
		}
		out[i] = float32(v)
	}
	return nil
}

// NoIndex marks an absent uv or normal reference in a Corner.
const NoIndex = -1

// Corner is one face-vertex reference with 0-based indices.
// UV and Normal are NoIndex when omitted.
type Corner struct {
	Position int
	UV       int
	Normal   int
}

// ParseCorner parses a face corner token: "p", "p/t", "p//n" or "p/t/n".
// Source indices are 1-based; relative (negative) indices are rejected.
func ParseCorner(token string) (Corner, error) {
	parts := strings.Split(token, "/")
	if len(parts) > 3 {
		return Corner{}, fmt.Errorf("%w: corner %q has too many components", ErrMalformedFace, token)
	}

	c := Corner{UV: NoIndex, Normal: NoIndex}

	var err error
	if c.Position, err = parseIndex(parts[0], token); err != nil {
		return Corner{}, err
	}
	if len(parts) == 2 && parts[1] == "" {
		return Corner{}, fmt.Errorf("%w: corner %q has an empty uv index", ErrMalformedFace, token)
	}
	if len(parts) >= 2 && parts[1] != "" {
		if c.UV, err = parseIndex(parts[1], token); err != nil {
			return Corner{}, err
		}
	}
	if len(parts) == 3 {
		if parts[2] == "" {
			return Corner{}, fmt.Errorf("%w: corner %q has an empty normal index", ErrMalformedFace, token)
		}
		if c.Normal, err = parseIndex(parts[2], token); err != nil {
			return Corner{}, err
		}
	}

	return c, nil
}

func parseIndex(s, token string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: corner %q has an empty index", ErrMalformedFace, token)
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: corner %q: %q is not an index", ErrMalformedLine, token, s)
	}
	if i < 0 {
		return 0, fmt.Errorf("%w: relative index %d in corner %q", ErrUnsupportedIndexForm, i, token)
	}
	if i == 0 {
		return 0, fmt.Errorf("%w: corner %q uses index 0", ErrMalformedFace, token)
	}
	return i - 1, nil
}

// ParseFace parses the corners of an "f" line. Only triangles and quads are accepted.
func ParseFace(fields []string) ([]Corner, error) {
	if len(fields) < 3 || len(fields) > 4 {
		return nil, fmt.Errorf("%w: expected 3 or 4 corners, got %d", ErrMalformedFace, len(fields))
	}
	corners := make([]Corner, len(fields))
	for i, f := range fields {
		c, err := ParseCorner(f)
		if err != nil {
			return nil, err
		}
		corners[i] = c
	}
	return corners, nil
}

var (
	triangleFan = [][3]int{{0, 1, 2}}
	quadFan     = [][3]int{{0, 1, 2}, {2, 3, 0}}
)

// Triangulate returns the corner order of the triangles for a face with n corners.
// A quad splits into (0,1,2) and (2,3,0). Other counts return nil.
func Triangulate(n int) [][3]int {
	switch n {
	case 3:
		return triangleFan
	case 4:
		return quadFan
	default:
		return nil
	}
}
