package math

// Bounds is an axis-aligned bounding box. The zero value is empty.
type Bounds struct {
	Min, Max Vec3
	valid    bool
}

// NewBounds returns a box spanning min and max.
func NewBounds(min, max Vec3) Bounds {
	return Bounds{Min: min, Max: max, valid: true}
}

// IsEmpty reports whether no point has been added.
func (b Bounds) IsEmpty() bool {
	return !b.valid
}

// Extend grows the box to contain p.
func (b *Bounds) Extend(p Vec3) {
	if !b.valid {
		b.Min, b.Max, b.valid = p, p, true
		return
	}
	b.Min = b.Min.Min(p)
	b.Max = b.Max.Max(p)
}

// Union grows the box to contain other.
func (b *Bounds) Union(other Bounds) {
	if other.IsEmpty() {
		return
	}
	b.Extend(other.Min)
	b.Extend(other.Max)
}

// Center returns the midpoint of the box.
func (b Bounds) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the box dimensions.
func (b Bounds) Size() Vec3 {
	if !b.valid {
		return Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Extents returns half the box dimensions.
func (b Bounds) Extents() Vec3 {
	return b.Size().Scale(0.5)
}
