// Package mesh holds decoded mesh data and the decoder capability that
// produces it from a URL.
package mesh

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// Attribute is a named vertex attribute. Array holds Count*ItemSize values.
type Attribute struct {
	Name     string    `json:"-"`
	ItemSize int       `json:"itemSize"`
	Array    []float64 `json:"array"`
}

// Count is the number of vertices covered by the attribute.
func (a *Attribute) Count() int {
	if a == nil || a.ItemSize <= 0 {
		return 0
	}
	return len(a.Array) / a.ItemSize
}

// Vec3 reads item i as a vector, zero-padding attributes narrower than 3.
func (a *Attribute) Vec3(i int) mgl64.Vec3 {
	var v mgl64.Vec3
	base := i * a.ItemSize
	for k := 0; k < a.ItemSize && k < 3; k++ {
		v[k] = a.Array[base+k]
	}
	return v
}

// Scalar reads item i as a single value: the value itself for ItemSize 1,
// the vector length otherwise.
func (a *Attribute) Scalar(i int) float64 {
	if a.ItemSize == 1 {
		return a.Array[i]
	}
	return a.Vec3(i).Len()
}

// Range is the min/max metadata shipped alongside a field attribute.
type Range struct {
	Min float64
	Max float64
}

// Box is an axis-aligned bounding box.
type Box struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// Center of the box.
func (b Box) Center() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Data is a decoded mesh: geometry buffers plus per-attribute range metadata.
// It is the geometry half of a renderable object and must be disposed.
type Data struct {
	URL string

	mu         sync.Mutex
	attributes map[string]*Attribute
	ranges     map[string]Range
	bbox       *Box
	disposed   int
}

// NewData builds mesh data from attributes and range metadata.
func NewData(url string, attrs map[string]*Attribute, ranges map[string]Range) *Data {
	d := &Data{
		URL:        url,
		attributes: make(map[string]*Attribute, len(attrs)),
		ranges:     make(map[string]Range, len(ranges)),
	}
	for name, a := range attrs {
		a.Name = name
		d.attributes[name] = a
	}
	for name, r := range ranges {
		d.ranges[name] = r
	}
	return d
}

// Attribute returns the named vertex attribute.
func (d *Data) Attribute(name string) (*Attribute, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	a, ok := d.attributes[name]
	return a, ok
}

// HasAttribute reports whether the named attribute exists.
func (d *Data) HasAttribute(name string) bool {
	_, ok := d.Attribute(name)
	return ok
}

// Range returns the min/max metadata of the named attribute.
func (d *Data) Range(name string) (Range, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.ranges[name]
	return r, ok
}

// FieldRange returns the range of a field that is usable for colouring:
// the attribute must exist and carry range metadata.
func (d *Data) FieldRange(name string) (Range, bool) {
	if !d.HasAttribute(name) {
		return Range{}, false
	}
	return d.Range(name)
}

// VertexCount is the number of positions.
func (d *Data) VertexCount() int {
	a, _ := d.Attribute("position")
	return a.Count()
}

// Position returns vertex i in mesh space.
func (d *Data) Position(i int) mgl64.Vec3 {
	a, _ := d.Attribute("position")
	return a.Vec3(i)
}

// RotateX rotates positions and normals around the X axis, in place.
func (d *Data) RotateX(angle float64) {
	rot := mgl64.Rotate3DX(angle)

	d.mu.Lock()
	defer d.mu.Unlock()
	for _, name := range []string{"position", "normal"} {
		a, ok := d.attributes[name]
		if !ok || a.ItemSize != 3 {
			continue
		}
		for i := 0; i < a.Count(); i++ {
			v := rot.Mul3x1(a.Vec3(i))
			copy(a.Array[i*3:i*3+3], v[:])
		}
	}
	d.bbox = nil
}

// Translate offsets every position by v, in place.
func (d *Data) Translate(v mgl64.Vec3) {
	d.mu.Lock()
	defer d.mu.Unlock()
	a, ok := d.attributes["position"]
	if !ok || a.ItemSize != 3 {
		return
	}
	for i := 0; i < a.Count(); i++ {
		p := a.Vec3(i).Add(v)
		copy(a.Array[i*3:i*3+3], p[:])
	}
	d.bbox = nil
}

// ComputeBoundingBox computes and caches the bounding box of the positions.
func (d *Data) ComputeBoundingBox() Box {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.bbox != nil {
		return *d.bbox
	}

	box := Box{
		Min: mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)},
		Max: mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)},
	}
	if a, ok := d.attributes["position"]; ok {
		for i := 0; i < a.Count(); i++ {
			v := a.Vec3(i)
			for k := 0; k < 3; k++ {
				box.Min[k] = math.Min(box.Min[k], v[k])
				box.Max[k] = math.Max(box.Max[k], v[k])
			}
		}
	}
	d.bbox = &box
	return box
}

// Dispose releases the buffers. Later calls are counted but do nothing else.
func (d *Data) Dispose() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.disposed++
	if d.disposed == 1 {
		d.attributes = map[string]*Attribute{}
		d.bbox = nil
	}
	return nil
}

// DisposeCount reports how many times Dispose was called.
func (d *Data) DisposeCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.disposed
}
