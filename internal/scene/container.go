package scene

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// ErrNotChild is returned when removing a surface its host does not hold.
var ErrNotChild = errors.New("surface is not a child of this host")

// Host is the mount point a renderer's output surface is attached to.
type Host struct {
	Name string

	mu       sync.Mutex
	surfaces map[*Surface]struct{}
}

func NewHost(name string) *Host {
	return &Host{Name: name, surfaces: make(map[*Surface]struct{})}
}

// Append attaches s, detaching it from any previous host first.
func (h *Host) Append(s *Surface) {
	if prev := s.Parent(); prev != nil && prev != h {
		_ = s.Detach()
	}
	h.mu.Lock()
	h.surfaces[s] = struct{}{}
	h.mu.Unlock()

	s.mu.Lock()
	s.parent = h
	s.mu.Unlock()
}

// Remove drops s from the host. Removing a surface the host does not hold
// fails with ErrNotChild.
func (h *Host) Remove(s *Surface) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.surfaces[s]; !ok {
		return fmt.Errorf("host %s: %w", h.Name, ErrNotChild)
	}
	delete(h.surfaces, s)
	return nil
}

// Unmount drops every surface without telling them, the way a parent
// element disappears from under its children.
func (h *Host) Unmount() {
	h.mu.Lock()
	h.surfaces = make(map[*Surface]struct{})
	h.mu.Unlock()
}

// Holds reports whether s is attached to the host.
func (h *Host) Holds(s *Surface) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.surfaces[s]
	return ok
}

// Len is the number of attached surfaces.
func (h *Host) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.surfaces)
}

// Surface is a renderer's output.
type Surface struct {
	mu     sync.Mutex
	parent *Host
}

// Parent is the host the surface believes it is attached to.
func (s *Surface) Parent() *Host {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.parent
}

// Detach removes the surface from its parent and forgets the parent even
// when the removal fails. Detaching a detached surface is a no-op.
func (s *Surface) Detach() error {
	s.mu.Lock()
	h := s.parent
	s.parent = nil
	s.mu.Unlock()
	if h == nil {
		return nil
	}
	return h.Remove(s)
}

// Camera is a perspective camera.
type Camera struct {
	Position    mgl64.Vec3
	Orientation mgl64.Quat
	Up          mgl64.Vec3
	FOV         float64

	// ProjectionUpdates counts UpdateProjectionMatrix calls.
	ProjectionUpdates int
}

func (c *Camera) UpdateProjectionMatrix() {
	c.ProjectionUpdates++
}

// Controls orbit the camera around Target.
type Controls struct {
	Target        mgl64.Vec3
	MinPolarAngle float64
	MaxPolarAngle float64
	EnablePan     bool

	camera *Camera
}

// Update points the camera at the target.
func (c *Controls) Update() {
	if c.camera.Position.ApproxEqual(c.Target) {
		return
	}
	c.camera.Orientation = mgl64.QuatLookAtV(c.camera.Position, c.Target, c.camera.Up)
}

// Renderer draws the scene into its surface.
type Renderer struct {
	Antialias  bool
	AutoClear  bool
	ClearAlpha float64

	surface  *Surface
	disposed bool
}

func (r *Renderer) Surface() *Surface { return r.surface }

func (r *Renderer) SetClearAlpha(a float64) { r.ClearAlpha = a }

// CameraPose is a restorable snapshot of camera and controls.
type CameraPose struct {
	Position    mgl64.Vec3
	Orientation mgl64.Quat
	Target      mgl64.Vec3
	FOV         float64
}

// ContainerOptions configures NewContainer.
type ContainerOptions struct {
	Host      *Host
	Antialias bool
	Debug     bool
}

// Container owns a scene with its camera, renderer and controls.
// The renderer's surface is appended to Host on creation.
type Container struct {
	ID       string
	Host     *Host
	Scene    *Scene
	Camera   *Camera
	Controls *Controls
	Renderer *Renderer

	mu       sync.Mutex
	disposed bool
}

func NewContainer(o ContainerOptions) *Container {
	cam := &Camera{
		Orientation: mgl64.QuatIdent(),
		Up:          mgl64.Vec3{0, 1, 0},
		FOV:         50,
	}
	c := &Container{
		ID:       uuid.NewString(),
		Host:     o.Host,
		Scene:    NewScene(),
		Camera:   cam,
		Controls: &Controls{camera: cam, MaxPolarAngle: 3.141592653589793},
		Renderer: &Renderer{Antialias: o.Antialias, surface: &Surface{}},
	}
	if o.Host != nil {
		o.Host.Append(c.Renderer.surface)
	}
	return c
}

// Pose captures the current camera pose.
func (c *Container) Pose() CameraPose {
	return CameraPose{
		Position:    c.Camera.Position,
		Orientation: c.Camera.Orientation,
		Target:      c.Controls.Target,
		FOV:         c.Camera.FOV,
	}
}

// RestorePose copies p back onto camera and controls.
func (c *Container) RestorePose(p CameraPose) {
	c.Camera.Position = p.Position
	c.Camera.Orientation = p.Orientation
	if p.FOV > 0 {
		c.Camera.FOV = p.FOV
		c.Camera.UpdateProjectionMatrix()
	}
	c.Controls.Target = p.Target
	c.Controls.Update()
}

func (c *Container) Disposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disposed
}

// Dispose detaches the surface and drops the scene. If the surface's host
// was unmounted underneath it the removal fails; callers tearing down should
// Detach the surface first. Repeated calls return nil.
func (c *Container) Dispose() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return nil
	}
	c.disposed = true
	c.Renderer.disposed = true
	c.Scene.clear()

	if err := c.Renderer.surface.Detach(); err != nil {
		return fmt.Errorf("dispose container %s: %w", c.ID, err)
	}
	return nil
}
