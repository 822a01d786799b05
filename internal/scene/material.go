package scene

import "sync/atomic"

// MaterialType names the shading model of a material.
type MaterialType string

const (
	MeshBasicMaterial   MaterialType = "MeshBasicMaterial"
	MeshLambertMaterial MaterialType = "MeshLambertMaterial"
	LineBasicMaterial   MaterialType = "LineBasicMaterial"
)

// Side selects which faces are drawn.
type Side int

const (
	FrontSide Side = iota
	DoubleSide
)

type disposeCounter struct {
	n atomic.Int32
}

func (d *disposeCounter) Dispose() error {
	d.n.Add(1)
	return nil
}

// DisposeCount reports how many times Dispose was called.
func (d *disposeCounter) DisposeCount() int { return int(d.n.Load()) }

// BasicMaterial is a flat surface material.
type BasicMaterial struct {
	disposeCounter
	Color       uint32
	Side        Side
	Wireframe   bool
	Transparent bool
	Opacity     float64
}

// BasicOptions configures a BasicMaterial. Opacity 0 means opaque.
type BasicOptions struct {
	Color       uint32
	Side        Side
	Wireframe   bool
	Transparent bool
	Opacity     float64
}

func NewBasicMaterial(o BasicOptions) *BasicMaterial {
	if o.Opacity == 0 {
		o.Opacity = 1
	}
	return &BasicMaterial{
		Color:       o.Color,
		Side:        o.Side,
		Wireframe:   o.Wireframe,
		Transparent: o.Transparent,
		Opacity:     o.Opacity,
	}
}

// LineMaterial shades line segments, either in a flat colour or from the
// geometry's color attribute.
type LineMaterial struct {
	disposeCounter
	Color        uint32
	VertexColors bool
}

func NewLineMaterial(color uint32, vertexColors bool) *LineMaterial {
	return &LineMaterial{Color: color, VertexColors: vertexColors}
}

// ShaderOptions configures a ShaderMaterial.
type ShaderOptions struct {
	// MinValue and MaxValue bound the colour ramp when HasRange is set.
	MinValue float64
	MaxValue float64
	HasRange bool

	MaterialType MaterialType
	// ColorList overrides the ramp; a single entry paints a flat colour.
	ColorList []uint32
	// Center recentres the geometry on its bounding box.
	Center bool
}

// ShaderMaterial maps a named attribute through a (min,max) colour ramp.
type ShaderMaterial struct {
	disposeCounter
	Attribute string
	ShaderOptions
}

func NewShaderMaterial(attr string, o ShaderOptions) *ShaderMaterial {
	if o.MaterialType == "" {
		o.MaterialType = MeshBasicMaterial
	}
	return &ShaderMaterial{Attribute: attr, ShaderOptions: o}
}

// Flat reports whether the material paints a single colour.
func (m *ShaderMaterial) Flat() bool {
	return len(m.ColorList) == 1
}
