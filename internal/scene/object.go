// Package scene is a headless scene graph: renderable objects, materials,
// lights, camera, controls and the container that owns them. It stands in
// for the rendering engine behind the viewer and keeps the same disposal
// contract: geometry and materials must be released explicitly.
package scene

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/daryltucker/turbine-viewer/internal/mesh"
)

// Releasable is anything holding renderer-side buffers.
type Releasable interface {
	Dispose() error
}

// Geometry is the buffer half of an object.
type Geometry interface {
	Releasable
}

// Material is the shading half of an object.
type Material interface {
	Releasable
}

// Object is a renderable handle. Its geometry and every material must be
// disposed before the object is dropped.
type Object interface {
	ID() string
	Geometry() Geometry
	Materials() []Material
}

// Kind of a renderable object.
type Kind string

const (
	KindMesh         Kind = "mesh"
	KindLineSegments Kind = "line_segments"
	KindShaderMesh   Kind = "shader_mesh"
)

// Transform is position, XYZ Euler rotation (radians) and scale.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Vec3
	Scale    mgl64.Vec3
}

// Identity is the transform at origin, unrotated, unit scale.
func Identity() Transform {
	return Transform{Scale: mgl64.Vec3{1, 1, 1}}
}

// Matrix composes translation * Rx * Ry * Rz * scale.
func (t Transform) Matrix() mgl64.Mat4 {
	rot := mgl64.HomogRotate3DX(t.Rotation.X()).
		Mul4(mgl64.HomogRotate3DY(t.Rotation.Y())).
		Mul4(mgl64.HomogRotate3DZ(t.Rotation.Z()))
	return mgl64.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z()).
		Mul4(rot).
		Mul4(mgl64.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}

// Mesh is the concrete renderable: a mesh, line segments, or a shader mesh
// colouring a named attribute.
type Mesh struct {
	id        string
	kind      Kind
	data      *mesh.Data
	materials []Material

	// Attribute is the attribute a shader mesh colours by.
	Attribute string

	mu        sync.Mutex
	transform Transform
}

func newObject(kind Kind, data *mesh.Data, mats ...Material) *Mesh {
	return &Mesh{
		id:        uuid.NewString(),
		kind:      kind,
		data:      data,
		materials: mats,
		transform: Identity(),
	}
}

// NewMesh wraps data with a surface material.
func NewMesh(data *mesh.Data, mat *BasicMaterial) *Mesh {
	return newObject(KindMesh, data, mat)
}

// NewLineSegments wraps data as line segments.
func NewLineSegments(data *mesh.Data, mat *LineMaterial) *Mesh {
	return newObject(KindLineSegments, data, mat)
}

// NewShaderMesh colours data by attr through a ramp material.
func NewShaderMesh(data *mesh.Data, attr string, opts ShaderOptions) *Mesh {
	if opts.Center && data != nil {
		data.Translate(data.ComputeBoundingBox().Center().Mul(-1))
	}
	m := newObject(KindShaderMesh, data, NewShaderMaterial(attr, opts))
	m.Attribute = attr
	return m
}

func (m *Mesh) ID() string            { return m.id }
func (m *Mesh) Kind() Kind            { return m.kind }
func (m *Mesh) Data() *mesh.Data      { return m.data }
func (m *Mesh) Materials() []Material { return m.materials }

func (m *Mesh) Geometry() Geometry {
	if m.data == nil {
		return nil
	}
	return m.data
}

// Material returns the first material, which is the only one for every kind
// built by this package.
func (m *Mesh) Material() Material {
	if len(m.materials) == 0 {
		return nil
	}
	return m.materials[0]
}

func (m *Mesh) Transform() Transform {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transform
}

func (m *Mesh) SetTransform(t Transform) {
	m.mu.Lock()
	m.transform = t
	m.mu.Unlock()
}

// WorldMatrix is the object's model matrix.
func (m *Mesh) WorldMatrix() mgl64.Mat4 {
	return m.Transform().Matrix()
}
